// Package delivery defines the contract every transport entry point
// (HTTP today, possibly workers later) must satisfy.
package delivery

import "context"

// Delivery is a long-running transport server started by the application
// runtime and stopped through its lifecycle hooks.
type Delivery interface {
	// Serve blocks until the server stops or fails.
	Serve(ctx context.Context) error
}
