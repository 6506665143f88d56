package repository

import (
	"context"
	"errors"

	"salaf/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrCreditNotFound is returned when a credit request does not exist.
var ErrCreditNotFound = errors.New("credit request not found")

// ErrStaleStatus is returned by Save when the persisted status is no longer
// a legal predecessor of the one being written: a concurrent update won the
// race and the caller's transition must not overwrite it.
var ErrStaleStatus = errors.New("credit request status changed concurrently")

// CreditFilter narrows agent listings. Zero-value fields are ignored.
type CreditFilter struct {
	Status    *entity.CreditStatus
	RiskLevel *entity.RiskLevel
	MinAmount *float64
	MaxAmount *float64
}

// CreditStats are the aggregate counters shown on the admin overview.
type CreditStats struct {
	TotalCredits    int64
	PendingCredits  int64
	ApprovedCredits int64
	RejectedCredits int64
	TotalAmount     float64
	PendingAmount   float64
	ApprovedAmount  float64
}

// CreditRepository defines persistence operations for credit requests.
// Requests are never physically deleted: terminal states keep the record
// for audit.
type CreditRepository interface {
	// Create persists a new request atomically; on error nothing is stored.
	Create(ctx context.Context, req *entity.CreditRequest) error

	// FindByID retrieves a single request.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.CreditRequest, error)

	// FindByUser returns the requests owned by a client, newest first.
	FindByUser(ctx context.Context, userID uuid.UUID) ([]*entity.CreditRequest, error)

	// FindAll returns every request matching the filter, newest first.
	FindAll(ctx context.Context, filter CreditFilter) ([]*entity.CreditRequest, error)

	// FindPending returns the review queue: PENDING and IN_REVIEW requests,
	// oldest first so agents drain it in submission order.
	FindPending(ctx context.Context) ([]*entity.CreditRequest, error)

	// FindReviewedBy returns the requests an agent has decided, newest first.
	FindReviewedBy(ctx context.Context, agentID uuid.UUID) ([]*entity.CreditRequest, error)

	// Save persists a lifecycle transition: status and the review fields.
	// The write is guarded by the transition table; it returns
	// ErrStaleStatus when the persisted status already moved past the
	// transition being written.
	Save(ctx context.Context, req *entity.CreditRequest) error

	// SaveScoring persists only the scoring snapshot of an existing
	// request. Status and review fields are never written, so a snapshot
	// computed against a stale read cannot undo a committed decision.
	SaveScoring(ctx context.Context, req *entity.CreditRequest) error

	// Stats aggregates counters over all requests.
	Stats(ctx context.Context) (*CreditStats, error)
}
