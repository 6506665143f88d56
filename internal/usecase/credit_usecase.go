package usecase

import (
	"context"
	"time"

	"salaf/internal/domain/entity"
	"salaf/internal/domain/repository"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// SubmitInput is the applicant-filled draft of a credit request. Age is
// derived from BirthDate server-side; it is never trusted as raw input so it
// cannot drift from the ID-card-derived fields.
type SubmitInput struct {
	Amount           float64 `json:"amount" validate:"required,gt=0"`
	Duration         int     `json:"duration" validate:"required,gt=0"`
	InterestRate     float64 `json:"interestRate" validate:"omitempty,gte=0,lte=100"`
	Purpose          string  `json:"purpose" validate:"required"`
	MonthlyIncome    float64 `json:"monthlyIncome" validate:"required,gt=0"`
	Employed         bool    `json:"employed"`
	IsFunctionnaire  bool    `json:"isFunctionnaire"`
	BirthDate        string  `json:"birthDate" validate:"required"` // ISO date, yyyy-mm-dd.
	Profession       string  `json:"profession"`
	HasGuarantor     bool    `json:"hasGuarantor"`
	GuarantorName    string  `json:"guarantorName" validate:"required_if=HasGuarantor true"`
	GuarantorCin     string  `json:"guarantorCin" validate:"required_if=HasGuarantor true"`
	GuarantorPhone   string  `json:"guarantorPhone"`
	GuarantorAddress string  `json:"guarantorAddress"`
}

// ReviewInput carries an agent decision.
type ReviewInput struct {
	Decision entity.Decision `json:"decisionType" validate:"required,oneof=APPROVE REJECT"`
	Notes    string          `json:"comments"`
}

// CreditListFilter narrows the agent listing of all requests.
type CreditListFilter struct {
	Status    string  `query:"status"`
	RiskLevel string  `query:"riskLevel"`
	MinAmount float64 `query:"minAmount"`
	MaxAmount float64 `query:"maxAmount"`
}

// --- Output DTOs ---

// ScoringView is the scoring snapshot as exposed to agents and admins.
type ScoringView struct {
	Score                int       `json:"score"`
	RiskLevel            string    `json:"riskLevel"`
	ProbabilityDefault   float64   `json:"probabilityDefault"`
	Recommendation       string    `json:"recommendation"`
	RedFlags             []string  `json:"redFlags"`
	PositiveFactors      []string  `json:"positiveFactors"`
	MaxRecommendedAmount float64   `json:"maxRecommendedAmount"`
	SuggestedDuration    int       `json:"suggestedDuration"`
	ScoredAt             time.Time `json:"scoredAt"`
}

// NewScoringView maps a snapshot onto its agent-facing projection.
func NewScoringView(s *entity.ScoringSnapshot) *ScoringView {
	if s == nil {
		return nil
	}

	return &ScoringView{
		Score:                s.Score,
		RiskLevel:            string(s.RiskLevel),
		ProbabilityDefault:   s.ProbabilityDefault,
		Recommendation:       s.Recommendation,
		RedFlags:             s.RedFlags,
		PositiveFactors:      s.PositiveFactors,
		MaxRecommendedAmount: s.MaxRecommendedAmount,
		SuggestedDuration:    s.SuggestedDuration,
		ScoredAt:             s.ScoredAt,
	}
}

// ClientCreditView is what the owning client sees of their own request.
// It has no scoring fields at all: the type itself enforces the visibility
// rule. The one deliberate asymmetry is RejectionFeedback, which surfaces
// the agent notes of a rejected request so a refusal is never unexplained.
type ClientCreditView struct {
	ID                uuid.UUID `json:"id"`
	Amount            float64   `json:"amount"`
	Duration          int       `json:"duration"`
	InterestRate      float64   `json:"interestRate"`
	Purpose           string    `json:"purpose"`
	Status            string    `json:"status"`
	RejectionFeedback string    `json:"rejectionFeedback,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// NewClientCreditView maps a request onto its client-facing projection.
func NewClientCreditView(r *entity.CreditRequest) *ClientCreditView {
	view := &ClientCreditView{
		ID:           r.ID,
		Amount:       r.Amount,
		Duration:     r.Duration,
		InterestRate: r.InterestRate,
		Purpose:      r.Purpose,
		Status:       r.Status.String(),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
	if r.Status == entity.StatusRejected {
		view.RejectionFeedback = r.AgentNotes
	}

	return view
}

// GuarantorView mirrors the optional guarantor identity.
type GuarantorView struct {
	Name    string `json:"name"`
	Cin     string `json:"cin"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

// AgentCreditView is the full projection shown to agents and admins,
// including the scoring snapshot and review evidence.
type AgentCreditView struct {
	ID              uuid.UUID      `json:"id"`
	UserID          uuid.UUID      `json:"userId"`
	Amount          float64        `json:"amount"`
	Duration        int            `json:"duration"`
	InterestRate    float64        `json:"interestRate"`
	Purpose         string         `json:"purpose"`
	MonthlyIncome   float64        `json:"monthlyIncome"`
	Employed        bool           `json:"employed"`
	IsFunctionnaire bool           `json:"isFunctionnaire"`
	Age             int            `json:"age"`
	Profession      string         `json:"profession,omitempty"`
	HasGuarantor    bool           `json:"hasGuarantor"`
	Guarantor       *GuarantorView `json:"guarantor,omitempty"`
	Scoring         *ScoringView   `json:"scoring,omitempty"`
	Status          string         `json:"status"`
	AssignedTo      *uuid.UUID     `json:"assignedTo,omitempty"`
	ReviewedBy      *uuid.UUID     `json:"reviewedBy,omitempty"`
	ReviewedAt      *time.Time     `json:"reviewedAt,omitempty"`
	AgentNotes      string         `json:"agentNotes,omitempty"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}

// NewAgentCreditView maps a request onto its agent-facing projection.
func NewAgentCreditView(r *entity.CreditRequest) *AgentCreditView {
	view := &AgentCreditView{
		ID:              r.ID,
		UserID:          r.UserID,
		Amount:          r.Amount,
		Duration:        r.Duration,
		InterestRate:    r.InterestRate,
		Purpose:         r.Purpose,
		MonthlyIncome:   r.MonthlyIncome,
		Employed:        r.Employed,
		IsFunctionnaire: r.IsFunctionnaire,
		Age:             r.Age,
		Profession:      r.Profession,
		HasGuarantor:    r.HasGuarantor,
		Scoring:         NewScoringView(r.Scoring),
		Status:          r.Status.String(),
		AssignedTo:      r.AssignedTo,
		ReviewedBy:      r.ReviewedBy,
		ReviewedAt:      r.ReviewedAt,
		AgentNotes:      r.AgentNotes,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
	if r.Guarantor != nil {
		view.Guarantor = &GuarantorView{
			Name:    r.Guarantor.Name,
			Cin:     r.Guarantor.Cin,
			Phone:   r.Guarantor.Phone,
			Address: r.Guarantor.Address,
		}
	}

	return view
}

// CreditUsecase is the lifecycle controller: it enforces legal status
// transitions, validation bounds and the role visibility rules. Client and
// agent reads return distinct view types on purpose; there is no method that
// could hand scoring data to a client.
type CreditUsecase interface {
	// Submit validates the draft against the system settings and creates a
	// PENDING request with no scoring fields. Create-or-fail: a repository
	// error leaves nothing behind.
	Submit(ctx context.Context, clientID uuid.UUID, input *SubmitInput) (*ClientCreditView, error)

	// Simulate scores a draft without persisting anything.
	Simulate(ctx context.Context, input *SubmitInput) (*ScoringView, error)

	// MyRequests lists the caller's own requests.
	MyRequests(ctx context.Context, clientID uuid.UUID) ([]*ClientCreditView, error)

	// GetForClient returns one request, owner-checked, client projection.
	GetForClient(ctx context.Context, clientID, requestID uuid.UUID) (*ClientCreditView, error)

	// Cancel withdraws a request on behalf of its owner.
	Cancel(ctx context.Context, clientID, requestID uuid.UUID) (*ClientCreditView, error)

	// AllRequests lists every request for agents, with optional filters.
	AllRequests(ctx context.Context, filter *CreditListFilter) ([]*AgentCreditView, error)

	// PendingQueue lists the review queue, oldest first.
	PendingQueue(ctx context.Context) ([]*AgentCreditView, error)

	// GetForAgent returns one request in the agent projection.
	GetForAgent(ctx context.Context, requestID uuid.UUID) (*AgentCreditView, error)

	// Assign claims a pending request for the calling agent.
	Assign(ctx context.Context, agentID, requestID uuid.UUID) (*AgentCreditView, error)

	// Score produces or retrieves the scoring snapshot for a request.
	// Idempotent; never transitions the status.
	Score(ctx context.Context, requestID uuid.UUID) (*ScoringView, error)

	// Review records an approve/reject decision. The request leaves the
	// pending queue only once the transition is committed.
	Review(ctx context.Context, agentID, requestID uuid.UUID, input *ReviewInput) (*AgentCreditView, error)

	// History lists the requests the calling agent has decided.
	History(ctx context.Context, agentID uuid.UUID) ([]*AgentCreditView, error)

	// MarkPaid records the external disbursement of an approved loan.
	MarkPaid(ctx context.Context, requestID uuid.UUID) (*AgentCreditView, error)

	// Stats aggregates counters for the admin overview.
	Stats(ctx context.Context) (*repository.CreditStats, error)
}
