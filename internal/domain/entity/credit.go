package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// CreditStatus is the lifecycle state of a credit request.
type CreditStatus string

const (
	// StatusPending is the initial state after submission.
	StatusPending CreditStatus = "PENDING"
	// StatusInReview means an agent has claimed the request.
	StatusInReview CreditStatus = "IN_REVIEW"
	// StatusApproved means an agent approved the request.
	StatusApproved CreditStatus = "APPROVED"
	// StatusRejected means an agent rejected the request. Terminal.
	StatusRejected CreditStatus = "REJECTED"
	// StatusCancelled means the owning client withdrew the request. Terminal.
	StatusCancelled CreditStatus = "CANCELLED"
	// StatusPaid means the approved loan was disbursed. Terminal.
	StatusPaid CreditStatus = "PAID"
)

// String returns the string representation of the status.
func (s CreditStatus) String() string {
	return string(s)
}

// IsValid checks if the status is a known value.
func (s CreditStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusInReview, StatusApproved, StatusRejected, StatusCancelled, StatusPaid:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transition is permitted from s.
func (s CreditStatus) IsTerminal() bool {
	switch s {
	case StatusRejected, StatusCancelled, StatusPaid:
		return true
	default:
		return false
	}
}

// legalTransitions is the closed transition table of the lifecycle.
// Review decisions are legal from both PENDING and IN_REVIEW, and the client
// may cancel from either non-terminal pre-decision state.
var legalTransitions = map[CreditStatus][]CreditStatus{
	StatusPending:  {StatusInReview, StatusApproved, StatusRejected, StatusCancelled},
	StatusInReview: {StatusApproved, StatusRejected, StatusCancelled},
	StatusApproved: {StatusPaid},
}

// PriorStatuses returns the statuses from which s can legally be reached.
// The persistence layer uses it to guard transition writes against
// concurrent updates.
func (s CreditStatus) PriorStatuses() []CreditStatus {
	var priors []CreditStatus
	for _, from := range []CreditStatus{StatusPending, StatusInReview, StatusApproved} {
		if from.CanTransitionTo(s) {
			priors = append(priors, from)
		}
	}

	return priors
}

// CanTransitionTo reports whether moving from s to next is legal.
func (s CreditStatus) CanTransitionTo(next CreditStatus) bool {
	for _, allowed := range legalTransitions[s] {
		if allowed == next {
			return true
		}
	}

	return false
}

// Decision is a review outcome chosen by an agent.
type Decision string

const (
	// DecisionApprove approves the request.
	DecisionApprove Decision = "APPROVE"
	// DecisionReject rejects the request. Rejections require notes.
	DecisionReject Decision = "REJECT"
)

// IsValid checks if the decision is a known value.
func (d Decision) IsValid() bool {
	return d == DecisionApprove || d == DecisionReject
}

// Status returns the lifecycle status the decision leads to.
func (d Decision) Status() CreditStatus {
	if d == DecisionApprove {
		return StatusApproved
	}

	return StatusRejected
}

// RiskLevel is the ML-assigned risk category of a scored request.
type RiskLevel string

const (
	// RiskLow means faible risque.
	RiskLow RiskLevel = "FAIBLE"
	// RiskMedium means risque moyen.
	RiskMedium RiskLevel = "MOYEN"
	// RiskHigh means risque élevé.
	RiskHigh RiskLevel = "ÉLEVÉ"
)

// IsValid checks if the risk level is a known value.
func (r RiskLevel) IsValid() bool {
	switch r {
	case RiskLow, RiskMedium, RiskHigh:
		return true
	default:
		return false
	}
}

// ScoringSnapshot is the set of ML-derived fields attached to a request at a
// point in time. It is advisory data: attaching or refreshing it never moves
// the lifecycle. The snapshot is held as a single nullable value so the
// scoring fields are either all present or all absent.
type ScoringSnapshot struct {
	Score                int       // Credit score, 0–850.
	RiskLevel            RiskLevel // FAIBLE, MOYEN or ÉLEVÉ.
	ProbabilityDefault   float64   // Estimated probability of default, 0.0–1.0.
	Recommendation       string    // Free-text recommendation from the model.
	RedFlags             []string  // Ordered warning factors.
	PositiveFactors      []string  // Ordered favorable factors.
	MaxRecommendedAmount float64   // Largest amount the model would suggest.
	SuggestedDuration    int       // Suggested duration in months.
	ScoredAt             time.Time // When the snapshot was produced.
}

// Guarantor holds the optional guarantor identity attached to a request.
type Guarantor struct {
	Name    string
	Cin     string
	Phone   string
	Address string
}

// CreditRequest is a loan application and the aggregate the lifecycle
// controller operates on. Applicant-submitted fields are immutable after
// submission; the scoring snapshot and review fields are attached later.
type CreditRequest struct {
	ID              uuid.UUID // Server-assigned, immutable once created.
	UserID          uuid.UUID // The owning CLIENT user.
	Amount          float64   // Requested amount, in MAD.
	Duration        int       // Requested duration, in months.
	InterestRate    float64   // Annual interest rate, percent.
	Purpose         string    // What the loan is for.
	MonthlyIncome   float64   // Declared monthly income at submission time.
	Employed        bool      // Employment flag at submission time.
	IsFunctionnaire bool      // Public-sector employee flag.
	Age             int       // Derived from the applicant's birth date, never raw input.
	Profession      string
	HasGuarantor    bool
	Guarantor       *Guarantor // Present only when HasGuarantor is true.

	Scoring *ScoringSnapshot // nil until the request has been scored.

	Status     CreditStatus
	AssignedTo *uuid.UUID // Agent who claimed the request, if any.
	ReviewedBy *uuid.UUID // Agent who decided, set together with ReviewedAt.
	ReviewedAt *time.Time
	AgentNotes string // Review notes. Mandatory on rejection.

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Transition errors. The usecase layer maps them onto AppError values; the
// entity keeps them as sentinels so tests can assert on the exact cause.
var (
	ErrInvalidTransition  = errors.New("illegal credit status transition")
	ErrRejectWithoutNotes = errors.New("rejection requires non-empty notes")
	ErrNotOwner           = errors.New("caller does not own this credit request")
)

// Scored reports whether a scoring snapshot is attached.
func (r *CreditRequest) Scored() bool {
	return r.Scoring != nil
}

// Assign claims the request for an agent, moving PENDING → IN_REVIEW.
func (r *CreditRequest) Assign(agentID uuid.UUID, now time.Time) error {
	if !r.Status.CanTransitionTo(StatusInReview) {
		return errors.Wrapf(ErrInvalidTransition, "cannot assign request in status %s", r.Status)
	}

	r.Status = StatusInReview
	r.AssignedTo = &agentID
	r.UpdatedAt = now

	return nil
}

// Review records an agent decision. Legal only from PENDING or IN_REVIEW.
// A rejection with empty notes is refused here, before any side effect:
// rejection feedback must never be silently absent.
func (r *CreditRequest) Review(agentID uuid.UUID, decision Decision, notes string, now time.Time) error {
	if decision == DecisionReject && notes == "" {
		return ErrRejectWithoutNotes
	}

	target := decision.Status()
	if !r.Status.CanTransitionTo(target) {
		return errors.Wrapf(ErrInvalidTransition, "cannot %s request in status %s", decision, r.Status)
	}

	r.Status = target
	r.ReviewedBy = &agentID
	r.ReviewedAt = &now
	r.AgentNotes = notes
	r.UpdatedAt = now

	return nil
}

// Cancel withdraws the request on behalf of its owning client.
func (r *CreditRequest) Cancel(byUserID uuid.UUID, now time.Time) error {
	if r.UserID != byUserID {
		return ErrNotOwner
	}
	if !r.Status.CanTransitionTo(StatusCancelled) {
		return errors.Wrapf(ErrInvalidTransition, "cannot cancel request in status %s", r.Status)
	}

	r.Status = StatusCancelled
	r.UpdatedAt = now

	return nil
}

// MarkPaid records the external disbursement of an approved loan.
func (r *CreditRequest) MarkPaid(now time.Time) error {
	if !r.Status.CanTransitionTo(StatusPaid) {
		return errors.Wrapf(ErrInvalidTransition, "cannot mark request in status %s as paid", r.Status)
	}

	r.Status = StatusPaid
	r.UpdatedAt = now

	return nil
}

// AttachScoring stores a fresh snapshot. Scoring is idempotent and advisory:
// it never touches the status or the applicant-submitted fields.
func (r *CreditRequest) AttachScoring(snapshot *ScoringSnapshot) {
	r.Scoring = snapshot
}
