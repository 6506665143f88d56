// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is the core entity in the system, representing an account that can
// authenticate. A CLIENT user owns credit requests; AGENT and ADMIN users
// do not own requests but may act on any request.
type User struct {
	ID            uuid.UUID // The unique identifier for the user.
	Username      string    // The login identifier.
	Email         string    // The user's contact email.
	PasswordHash  string    // Stores the bcrypt-hashed password.
	Role          Role      // CLIENT, AGENT or ADMIN.
	Phone         string    // Contact phone number.
	Cin           string    // Moroccan national identity card number.
	Address       string    // Postal address.
	Employed      bool      // Whether the user declared an employment.
	MonthlyIncome float64   // Declared monthly income, in MAD.
	Profession    string    // Declared profession.
	FullName      string    // Full legal name, usually filled from the ID card.
	CreatedAt     time.Time // Timestamp of when this account was created.
	UpdatedAt     time.Time // Timestamp of the last modification.
}

// Owns reports whether the user is the owning client of the given request.
func (u *User) Owns(req *CreditRequest) bool {
	return u.Role == RoleClient && req.UserID == u.ID
}
