package service

import (
	"context"

	"salaf/internal/domain/entity"

	"github.com/google/uuid"
)

// ScoringInput is the applicant data the ML model scores. It carries no
// identity: the same input always describes the same risk.
type ScoringInput struct {
	Amount          float64
	Duration        int
	InterestRate    float64
	MonthlyIncome   float64
	Employed        bool
	IsFunctionnaire bool
	Age             int
	Profession      string
	HasGuarantor    bool
}

// Scorer asks the external ML scoring service for a risk assessment.
// Scoring is a pure read/compute: implementations must be safe to call
// repeatedly and concurrently for the same input.
type Scorer interface {
	Score(ctx context.Context, input ScoringInput) (*entity.ScoringSnapshot, error)
}

// ScoringCache holds scoring snapshots keyed by request ID so repeated
// score calls for the same request do not hit the model again. A cache
// miss is returned as (nil, nil).
type ScoringCache interface {
	Get(ctx context.Context, requestID uuid.UUID) (*entity.ScoringSnapshot, error)
	Set(ctx context.Context, requestID uuid.UUID, snapshot *entity.ScoringSnapshot) error
}
