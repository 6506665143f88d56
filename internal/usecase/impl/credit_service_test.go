package impl

import (
	"context"
	"testing"
	"time"

	"salaf/internal/domain/entity"
	domainerrors "salaf/internal/domain/errors"
	"salaf/internal/domain/repository"
	"salaf/internal/domain/service"
	"salaf/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCreditService(credit *fakeCreditRepo, settings *fakeSettingsRepo, scorer *fakeScorer, cache *fakeScoringCache) (usecase.CreditUsecase, *fakeTxManager) {
	tx := &fakeTxManager{factory: &fakeRepoFactory{credit: credit, settings: settings}}
	svc := NewCreditService(CreditServiceParams{
		TxManager:    tx,
		CreditRepo:   credit,
		SettingsRepo: settings,
		Scorer:       scorer,
		ScoringCache: cache,
		Logger:       testLogger(),
	})

	return svc, tx
}

func validSubmitInput() *usecase.SubmitInput {
	return &usecase.SubmitInput{
		Amount:        25000,
		Duration:      24,
		Purpose:       "Achat de matériel",
		MonthlyIncome: 8000,
		Employed:      true,
		BirthDate:     "1990-05-10",
		Profession:    "Commerçant",
	}
}

func pendingRequest(id uuid.UUID) *entity.CreditRequest {
	return &entity.CreditRequest{
		ID:            id,
		UserID:        uuid.New(),
		Amount:        25000,
		Duration:      24,
		InterestRate:  5.5,
		MonthlyIncome: 8000,
		Age:           34,
		Status:        entity.StatusPending,
		CreatedAt:     time.Now().UTC().Add(-time.Hour),
	}
}

func snapshot() *entity.ScoringSnapshot {
	return &entity.ScoringSnapshot{
		Score:              712,
		RiskLevel:          entity.RiskLow,
		ProbabilityDefault: 0.04,
		ScoredAt:           time.Now().UTC(),
	}
}

func appErrorCode(t *testing.T, err error) string {
	t.Helper()

	var appErr domainerrors.AppError
	require.ErrorAs(t, err, &appErr)

	return appErr.ErrorCode()
}

func TestSubmit_CreatesPendingUnscoredRequest(t *testing.T) {
	var created *entity.CreditRequest
	credit := &fakeCreditRepo{
		CreateFn: func(_ context.Context, req *entity.CreditRequest) error {
			req.ID = uuid.New()
			created = req

			return nil
		},
	}
	svc, _ := newCreditService(credit, &fakeSettingsRepo{}, &fakeScorer{}, &fakeScoringCache{})

	clientID := uuid.New()
	view, err := svc.Submit(context.Background(), clientID, validSubmitInput())
	require.NoError(t, err)

	require.NotNil(t, created)
	assert.Equal(t, entity.StatusPending, created.Status)
	assert.Nil(t, created.Scoring)
	assert.Equal(t, clientID, created.UserID)
	// Interest rate falls back to the configured default.
	assert.Equal(t, entity.DefaultSettings().DefaultInterestRate, created.InterestRate)
	// Age is derived from the birth date, never taken from the input.
	assert.GreaterOrEqual(t, created.Age, 18)

	assert.Equal(t, "PENDING", view.Status)
	assert.Empty(t, view.RejectionFeedback)
}

func TestSubmit_AmountAboveMaxRefusedBeforeCreate(t *testing.T) {
	credit := &fakeCreditRepo{
		CreateFn: func(_ context.Context, _ *entity.CreditRequest) error {
			t.Fatal("Create must not be called for an out-of-bounds draft")

			return nil
		},
	}
	svc, _ := newCreditService(credit, &fakeSettingsRepo{}, &fakeScorer{}, &fakeScoringCache{})

	input := validSubmitInput()
	input.Amount = 200000 // max is 100000

	_, err := svc.Submit(context.Background(), uuid.New(), input)
	assert.Equal(t, domainerrors.ErrValidationFailed.ErrorCode(), appErrorCode(t, err))
}

func TestSubmit_DurationOutOfBounds(t *testing.T) {
	svc, _ := newCreditService(&fakeCreditRepo{}, &fakeSettingsRepo{}, &fakeScorer{}, &fakeScoringCache{})

	input := validSubmitInput()
	input.Duration = 120 // max is 60 months

	_, err := svc.Submit(context.Background(), uuid.New(), input)
	assert.Equal(t, domainerrors.ErrValidationFailed.ErrorCode(), appErrorCode(t, err))
}

func TestSubmit_UnderageApplicantRefused(t *testing.T) {
	svc, _ := newCreditService(&fakeCreditRepo{}, &fakeSettingsRepo{}, &fakeScorer{}, &fakeScoringCache{})

	input := validSubmitInput()
	input.BirthDate = time.Now().UTC().AddDate(-17, 0, 0).Format("2006-01-02")

	_, err := svc.Submit(context.Background(), uuid.New(), input)
	assert.Equal(t, domainerrors.ErrValidationFailed.ErrorCode(), appErrorCode(t, err))
}

func TestSubmit_MalformedBirthDateRefused(t *testing.T) {
	svc, _ := newCreditService(&fakeCreditRepo{}, &fakeSettingsRepo{}, &fakeScorer{}, &fakeScoringCache{})

	input := validSubmitInput()
	input.BirthDate = "10/05/1990"

	_, err := svc.Submit(context.Background(), uuid.New(), input)
	assert.Equal(t, domainerrors.ErrValidationFailed.ErrorCode(), appErrorCode(t, err))
}

func TestSubmit_RefusedDuringMaintenance(t *testing.T) {
	settings := &fakeSettingsRepo{
		GetFn: func(_ context.Context) (*entity.SystemSettings, error) {
			s := entity.DefaultSettings()
			s.SystemMaintenance = true
			s.MaintenanceMessage = "Maintenance en cours"

			return s, nil
		},
	}
	svc, _ := newCreditService(&fakeCreditRepo{}, settings, &fakeScorer{}, &fakeScoringCache{})

	_, err := svc.Submit(context.Background(), uuid.New(), validSubmitInput())
	assert.Equal(t, domainerrors.ErrMaintenanceMode.ErrorCode(), appErrorCode(t, err))
}

func TestSimulate_ScoresWithoutPersisting(t *testing.T) {
	scorer := &fakeScorer{
		ScoreFn: func(_ context.Context, input service.ScoringInput) (*entity.ScoringSnapshot, error) {
			assert.Equal(t, 25000.0, input.Amount)

			return snapshot(), nil
		},
	}
	// No CreateFn wired: any repository write would fail the test.
	svc, _ := newCreditService(&fakeCreditRepo{}, &fakeSettingsRepo{}, scorer, &fakeScoringCache{})

	view, err := svc.Simulate(context.Background(), validSubmitInput())
	require.NoError(t, err)
	assert.Equal(t, 712, view.Score)
	assert.Equal(t, "FAIBLE", view.RiskLevel)
}

func TestScore_AlreadyScoredReturnsSnapshotWithoutScorerCall(t *testing.T) {
	req := pendingRequest(uuid.New())
	req.AttachScoring(snapshot())

	credit := &fakeCreditRepo{
		FindByIDFn: func(_ context.Context, _ uuid.UUID) (*entity.CreditRequest, error) {
			return req, nil
		},
	}
	scorer := &fakeScorer{}
	svc, _ := newCreditService(credit, &fakeSettingsRepo{}, scorer, &fakeScoringCache{})

	view, err := svc.Score(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, 712, view.Score)
	assert.Zero(t, scorer.Calls)
}

func TestScore_CacheHitSkipsScorer(t *testing.T) {
	req := pendingRequest(uuid.New())
	saved := false
	credit := &fakeCreditRepo{
		FindByIDFn: func(_ context.Context, _ uuid.UUID) (*entity.CreditRequest, error) {
			return req, nil
		},
		SaveScoringFn: func(_ context.Context, r *entity.CreditRequest) error {
			saved = true

			return nil
		},
	}
	cache := &fakeScoringCache{
		GetFn: func(_ context.Context, _ uuid.UUID) (*entity.ScoringSnapshot, error) {
			return snapshot(), nil
		},
	}
	scorer := &fakeScorer{}
	svc, _ := newCreditService(credit, &fakeSettingsRepo{}, scorer, cache)

	view, err := svc.Score(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, 712, view.Score)
	assert.Zero(t, scorer.Calls)
	assert.True(t, saved)
	assert.Equal(t, entity.StatusPending, req.Status)
}

func TestScore_CacheMissCallsScorerOnceAndPersists(t *testing.T) {
	req := pendingRequest(uuid.New())
	saved := false
	credit := &fakeCreditRepo{
		FindByIDFn: func(_ context.Context, _ uuid.UUID) (*entity.CreditRequest, error) {
			return req, nil
		},
		SaveScoringFn: func(_ context.Context, r *entity.CreditRequest) error {
			require.NotNil(t, r.Scoring)
			saved = true

			return nil
		},
	}
	scorer := &fakeScorer{
		ScoreFn: func(_ context.Context, _ service.ScoringInput) (*entity.ScoringSnapshot, error) {
			return snapshot(), nil
		},
	}
	cache := &fakeScoringCache{}
	svc, _ := newCreditService(credit, &fakeSettingsRepo{}, scorer, cache)

	view, err := svc.Score(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, 712, view.Score)
	assert.Equal(t, 1, scorer.Calls)
	assert.True(t, saved)
	assert.Equal(t, 1, cache.Sets)
	// Scoring is advisory: the status is untouched.
	assert.Equal(t, entity.StatusPending, req.Status)
}

func TestScore_ScorerFailureLeavesRequestUntouched(t *testing.T) {
	req := pendingRequest(uuid.New())
	credit := &fakeCreditRepo{
		FindByIDFn: func(_ context.Context, _ uuid.UUID) (*entity.CreditRequest, error) {
			return req, nil
		},
		// No SaveFn: a save would fail the test.
	}
	scorer := &fakeScorer{
		ScoreFn: func(_ context.Context, _ service.ScoringInput) (*entity.ScoringSnapshot, error) {
			return nil, errors.New("scorer down")
		},
	}
	svc, _ := newCreditService(credit, &fakeSettingsRepo{}, scorer, &fakeScoringCache{})

	_, err := svc.Score(context.Background(), req.ID)
	assert.Equal(t, domainerrors.ErrScoringUnavailable.ErrorCode(), appErrorCode(t, err))
	assert.Nil(t, req.Scoring)
}

func TestScore_ReviewCommittedMidScoringSurvives(t *testing.T) {
	agentID := uuid.New()
	stored := pendingRequest(uuid.New())
	credit := &fakeCreditRepo{
		FindByIDFn: func(_ context.Context, _ uuid.UUID) (*entity.CreditRequest, error) {
			stale := *stored

			return &stale, nil
		},
		// The scoring write carries only the snapshot; leaving SaveFn
		// unset makes any lifecycle write fail the test.
		SaveScoringFn: func(_ context.Context, r *entity.CreditRequest) error {
			stored.Scoring = r.Scoring

			return nil
		},
	}
	scorer := &fakeScorer{
		ScoreFn: func(_ context.Context, _ service.ScoringInput) (*entity.ScoringSnapshot, error) {
			// An agent decision lands while the scoring call is in flight.
			require.NoError(t, stored.Review(agentID, entity.DecisionApprove, "", time.Now().UTC()))

			return snapshot(), nil
		},
	}
	svc, _ := newCreditService(credit, &fakeSettingsRepo{}, scorer, &fakeScoringCache{})

	_, err := svc.Score(context.Background(), stored.ID)
	require.NoError(t, err)

	assert.Equal(t, entity.StatusApproved, stored.Status)
	require.NotNil(t, stored.ReviewedBy)
	assert.Equal(t, agentID, *stored.ReviewedBy)
	require.NotNil(t, stored.Scoring)
}

func TestReview_RejectWithEmptyNotesRefusedBeforeAnyEffect(t *testing.T) {
	svc, tx := newCreditService(&fakeCreditRepo{}, &fakeSettingsRepo{}, &fakeScorer{}, &fakeScoringCache{})

	_, err := svc.Review(context.Background(), uuid.New(), uuid.New(), &usecase.ReviewInput{
		Decision: entity.DecisionReject,
		Notes:    "",
	})
	assert.Equal(t, domainerrors.ErrRejectionNotesRequired.ErrorCode(), appErrorCode(t, err))
	// No transaction was even started.
	assert.Zero(t, tx.Executed)
}

func TestReview_ApproveCommitsTransition(t *testing.T) {
	req := pendingRequest(uuid.New())
	saved := false
	credit := &fakeCreditRepo{
		FindByIDFn: func(_ context.Context, _ uuid.UUID) (*entity.CreditRequest, error) {
			return req, nil
		},
		SaveFn: func(_ context.Context, r *entity.CreditRequest) error {
			assert.Equal(t, entity.StatusApproved, r.Status)
			saved = true

			return nil
		},
	}
	svc, tx := newCreditService(credit, &fakeSettingsRepo{}, &fakeScorer{}, &fakeScoringCache{})

	agentID := uuid.New()
	view, err := svc.Review(context.Background(), agentID, req.ID, &usecase.ReviewInput{Decision: entity.DecisionApprove})
	require.NoError(t, err)
	assert.True(t, saved)
	assert.Equal(t, 1, tx.Executed)
	assert.Equal(t, "APPROVED", view.Status)
	require.NotNil(t, view.ReviewedBy)
	assert.Equal(t, agentID, *view.ReviewedBy)
}

func TestReview_LostRaceReportedAsInvalidTransition(t *testing.T) {
	req := pendingRequest(uuid.New())
	credit := &fakeCreditRepo{
		FindByIDFn: func(_ context.Context, _ uuid.UUID) (*entity.CreditRequest, error) {
			return req, nil
		},
		SaveFn: func(_ context.Context, _ *entity.CreditRequest) error {
			return repository.ErrStaleStatus
		},
	}
	svc, _ := newCreditService(credit, &fakeSettingsRepo{}, &fakeScorer{}, &fakeScoringCache{})

	_, err := svc.Review(context.Background(), uuid.New(), req.ID, &usecase.ReviewInput{Decision: entity.DecisionApprove})
	assert.Equal(t, domainerrors.ErrInvalidTransition.ErrorCode(), appErrorCode(t, err))
}

func TestReview_RejectStoresNotes(t *testing.T) {
	req := pendingRequest(uuid.New())
	credit := &fakeCreditRepo{
		FindByIDFn: func(_ context.Context, _ uuid.UUID) (*entity.CreditRequest, error) {
			return req, nil
		},
		SaveFn: func(_ context.Context, _ *entity.CreditRequest) error { return nil },
	}
	svc, _ := newCreditService(credit, &fakeSettingsRepo{}, &fakeScorer{}, &fakeScoringCache{})

	view, err := svc.Review(context.Background(), uuid.New(), req.ID, &usecase.ReviewInput{
		Decision: entity.DecisionReject,
		Notes:    "Revenu insuffisant pour la durée demandée",
	})
	require.NoError(t, err)
	assert.Equal(t, "REJECTED", view.Status)
	assert.Equal(t, "Revenu insuffisant pour la durée demandée", view.AgentNotes)

	// The owning client sees the notes as rejection feedback.
	clientView := usecase.NewClientCreditView(req)
	assert.Equal(t, "Revenu insuffisant pour la durée demandée", clientView.RejectionFeedback)
}

func TestReview_TerminalStatusRefused(t *testing.T) {
	req := pendingRequest(uuid.New())
	req.Status = entity.StatusCancelled
	credit := &fakeCreditRepo{
		FindByIDFn: func(_ context.Context, _ uuid.UUID) (*entity.CreditRequest, error) {
			return req, nil
		},
	}
	svc, _ := newCreditService(credit, &fakeSettingsRepo{}, &fakeScorer{}, &fakeScoringCache{})

	_, err := svc.Review(context.Background(), uuid.New(), req.ID, &usecase.ReviewInput{Decision: entity.DecisionApprove})
	assert.Equal(t, domainerrors.ErrInvalidTransition.ErrorCode(), appErrorCode(t, err))
	assert.Equal(t, entity.StatusCancelled, req.Status)
}

func TestReview_UnknownDecisionRefused(t *testing.T) {
	svc, tx := newCreditService(&fakeCreditRepo{}, &fakeSettingsRepo{}, &fakeScorer{}, &fakeScoringCache{})

	_, err := svc.Review(context.Background(), uuid.New(), uuid.New(), &usecase.ReviewInput{Decision: "MAYBE"})
	assert.Equal(t, domainerrors.ErrValidationFailed.ErrorCode(), appErrorCode(t, err))
	assert.Zero(t, tx.Executed)
}

func TestCancel_OwnerOnly(t *testing.T) {
	req := pendingRequest(uuid.New())
	credit := &fakeCreditRepo{
		FindByIDFn: func(_ context.Context, _ uuid.UUID) (*entity.CreditRequest, error) {
			return req, nil
		},
	}
	svc, _ := newCreditService(credit, &fakeSettingsRepo{}, &fakeScorer{}, &fakeScoringCache{})

	_, err := svc.Cancel(context.Background(), uuid.New(), req.ID)
	assert.Equal(t, domainerrors.ErrNotRequestOwner.ErrorCode(), appErrorCode(t, err))
	assert.Equal(t, entity.StatusPending, req.Status)
}

func TestCancel_OwnerSucceeds(t *testing.T) {
	req := pendingRequest(uuid.New())
	credit := &fakeCreditRepo{
		FindByIDFn: func(_ context.Context, _ uuid.UUID) (*entity.CreditRequest, error) {
			return req, nil
		},
		SaveFn: func(_ context.Context, _ *entity.CreditRequest) error { return nil },
	}
	svc, _ := newCreditService(credit, &fakeSettingsRepo{}, &fakeScorer{}, &fakeScoringCache{})

	view, err := svc.Cancel(context.Background(), req.UserID, req.ID)
	require.NoError(t, err)
	assert.Equal(t, "CANCELLED", view.Status)
}

func TestAssign_PendingToInReview(t *testing.T) {
	req := pendingRequest(uuid.New())
	credit := &fakeCreditRepo{
		FindByIDFn: func(_ context.Context, _ uuid.UUID) (*entity.CreditRequest, error) {
			return req, nil
		},
		SaveFn: func(_ context.Context, _ *entity.CreditRequest) error { return nil },
	}
	svc, _ := newCreditService(credit, &fakeSettingsRepo{}, &fakeScorer{}, &fakeScoringCache{})

	agentID := uuid.New()
	view, err := svc.Assign(context.Background(), agentID, req.ID)
	require.NoError(t, err)
	assert.Equal(t, "IN_REVIEW", view.Status)
	require.NotNil(t, view.AssignedTo)
	assert.Equal(t, agentID, *view.AssignedTo)
}

func TestAssign_TerminalRefused(t *testing.T) {
	req := pendingRequest(uuid.New())
	req.Status = entity.StatusRejected
	credit := &fakeCreditRepo{
		FindByIDFn: func(_ context.Context, _ uuid.UUID) (*entity.CreditRequest, error) {
			return req, nil
		},
	}
	svc, _ := newCreditService(credit, &fakeSettingsRepo{}, &fakeScorer{}, &fakeScoringCache{})

	_, err := svc.Assign(context.Background(), uuid.New(), req.ID)
	assert.Equal(t, domainerrors.ErrInvalidTransition.ErrorCode(), appErrorCode(t, err))
}

func TestGetForClient_OwnershipChecked(t *testing.T) {
	req := pendingRequest(uuid.New())
	credit := &fakeCreditRepo{
		FindByIDFn: func(_ context.Context, _ uuid.UUID) (*entity.CreditRequest, error) {
			return req, nil
		},
	}
	svc, _ := newCreditService(credit, &fakeSettingsRepo{}, &fakeScorer{}, &fakeScoringCache{})

	_, err := svc.GetForClient(context.Background(), uuid.New(), req.ID)
	assert.Equal(t, domainerrors.ErrNotRequestOwner.ErrorCode(), appErrorCode(t, err))

	view, err := svc.GetForClient(context.Background(), req.UserID, req.ID)
	require.NoError(t, err)
	assert.Equal(t, req.ID, view.ID)
}

func TestGetForClient_NotFound(t *testing.T) {
	credit := &fakeCreditRepo{
		FindByIDFn: func(_ context.Context, _ uuid.UUID) (*entity.CreditRequest, error) {
			return nil, repository.ErrCreditNotFound
		},
	}
	svc, _ := newCreditService(credit, &fakeSettingsRepo{}, &fakeScorer{}, &fakeScoringCache{})

	_, err := svc.GetForClient(context.Background(), uuid.New(), uuid.New())
	assert.Equal(t, domainerrors.ErrCreditNotFound.ErrorCode(), appErrorCode(t, err))
}

func TestAllRequests_InvalidFilterRefused(t *testing.T) {
	svc, _ := newCreditService(&fakeCreditRepo{}, &fakeSettingsRepo{}, &fakeScorer{}, &fakeScoringCache{})

	_, err := svc.AllRequests(context.Background(), &usecase.CreditListFilter{Status: "UNKNOWN"})
	assert.Equal(t, domainerrors.ErrValidationFailed.ErrorCode(), appErrorCode(t, err))

	_, err = svc.AllRequests(context.Background(), &usecase.CreditListFilter{RiskLevel: "EXTREME"})
	assert.Equal(t, domainerrors.ErrValidationFailed.ErrorCode(), appErrorCode(t, err))
}

func TestAllRequests_FilterForwarded(t *testing.T) {
	credit := &fakeCreditRepo{
		FindAllFn: func(_ context.Context, filter repository.CreditFilter) ([]*entity.CreditRequest, error) {
			require.NotNil(t, filter.Status)
			assert.Equal(t, entity.StatusPending, *filter.Status)
			require.NotNil(t, filter.MinAmount)
			assert.Equal(t, 5000.0, *filter.MinAmount)

			return []*entity.CreditRequest{pendingRequest(uuid.New())}, nil
		},
	}
	svc, _ := newCreditService(credit, &fakeSettingsRepo{}, &fakeScorer{}, &fakeScoringCache{})

	views, err := svc.AllRequests(context.Background(), &usecase.CreditListFilter{Status: "PENDING", MinAmount: 5000})
	require.NoError(t, err)
	assert.Len(t, views, 1)
}

func TestMarkPaid_OnlyFromApproved(t *testing.T) {
	req := pendingRequest(uuid.New())
	req.Status = entity.StatusApproved
	credit := &fakeCreditRepo{
		FindByIDFn: func(_ context.Context, _ uuid.UUID) (*entity.CreditRequest, error) {
			return req, nil
		},
		SaveFn: func(_ context.Context, _ *entity.CreditRequest) error { return nil },
	}
	svc, _ := newCreditService(credit, &fakeSettingsRepo{}, &fakeScorer{}, &fakeScoringCache{})

	view, err := svc.MarkPaid(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, "PAID", view.Status)

	// PAID is terminal.
	_, err = svc.MarkPaid(context.Background(), req.ID)
	assert.Equal(t, domainerrors.ErrInvalidTransition.ErrorCode(), appErrorCode(t, err))
}
