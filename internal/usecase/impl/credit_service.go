// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	deliverycontext "salaf/internal/delivery/context"
	"salaf/internal/domain/entity"
	domainerrors "salaf/internal/domain/errors"
	"salaf/internal/domain/repository"
	"salaf/internal/domain/service"
	"salaf/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const (
	minApplicantAge = 18
	maxApplicantAge = 70
)

// creditService is the lifecycle controller. It owns every legal status
// transition of a credit request and the validation that runs before any
// persistence or network effect.
type creditService struct {
	txManager    repository.TransactionManager
	creditRepo   repository.CreditRepository
	settingsRepo repository.SettingsRepository
	scorer       service.Scorer
	scoringCache service.ScoringCache
	logger       *slog.Logger
}

// CreditServiceParams holds dependencies for the credit service, injected by Fx.
type CreditServiceParams struct {
	fx.In

	TxManager    repository.TransactionManager
	CreditRepo   repository.CreditRepository
	SettingsRepo repository.SettingsRepository
	Scorer       service.Scorer
	ScoringCache service.ScoringCache
	Logger       *slog.Logger
}

// NewCreditService is the constructor for creditService.
func NewCreditService(params CreditServiceParams) usecase.CreditUsecase {
	return &creditService{
		txManager:    params.TxManager,
		creditRepo:   params.CreditRepo,
		settingsRepo: params.SettingsRepo,
		scorer:       params.Scorer,
		scoringCache: params.ScoringCache,
		logger:       params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *creditService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Submit validates the draft and creates a PENDING request. Validation
// failures never reach the repository, and a repository failure leaves no
// partial request behind.
func (srv *creditService) Submit(ctx context.Context, clientID uuid.UUID, input *usecase.SubmitInput) (*usecase.ClientCreditView, error) {
	settings, err := srv.settingsRepo.Get(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load system settings")
	}
	if settings.SystemMaintenance {
		return nil, domainerrors.ErrMaintenanceMode.WithDetails(settings.MaintenanceMessage)
	}

	age, err := srv.validateDraft(input, settings)
	if err != nil {
		srv.log(ctx).Warn("Credit draft refused by validation", slog.Any("clientID", clientID), slog.Any("error", err))

		return nil, err
	}

	req := buildRequest(clientID, input, settings, age)
	if err := srv.creditRepo.Create(ctx, req); err != nil {
		srv.log(ctx).Error("Failed to create credit request", slog.Any("clientID", clientID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to create credit request")
	}

	srv.log(ctx).Info("Credit request submitted",
		slog.Any("requestID", req.ID), slog.Any("clientID", clientID), slog.Float64("amount", req.Amount))

	return usecase.NewClientCreditView(req), nil
}

// Simulate scores a draft without persisting anything. The same bounds apply
// as for a real submission so a simulation is always an honest preview.
func (srv *creditService) Simulate(ctx context.Context, input *usecase.SubmitInput) (*usecase.ScoringView, error) {
	settings, err := srv.settingsRepo.Get(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load system settings")
	}

	age, err := srv.validateDraft(input, settings)
	if err != nil {
		return nil, err
	}

	snapshot, err := srv.scorer.Score(ctx, scoringInput(input, age))
	if err != nil {
		srv.log(ctx).Warn("Scoring simulation failed", slog.Any("error", err))

		return nil, domainerrors.ErrScoringUnavailable.WrapMessage("simulation failed")
	}

	return usecase.NewScoringView(snapshot), nil
}

// MyRequests lists the caller's own requests in the client projection.
func (srv *creditService) MyRequests(ctx context.Context, clientID uuid.UUID) ([]*usecase.ClientCreditView, error) {
	reqs, err := srv.creditRepo.FindByUser(ctx, clientID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list client credit requests")
	}

	views := make([]*usecase.ClientCreditView, 0, len(reqs))
	for _, req := range reqs {
		views = append(views, usecase.NewClientCreditView(req))
	}

	return views, nil
}

// GetForClient returns one request in the client projection. Ownership is
// checked here: a client can never read someone else's request, whatever its
// ID.
func (srv *creditService) GetForClient(ctx context.Context, clientID, requestID uuid.UUID) (*usecase.ClientCreditView, error) {
	req, err := srv.findRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.UserID != clientID {
		return nil, domainerrors.ErrNotRequestOwner.WrapMessage("read refused")
	}

	return usecase.NewClientCreditView(req), nil
}

// Cancel withdraws the caller's own request.
func (srv *creditService) Cancel(ctx context.Context, clientID, requestID uuid.UUID) (*usecase.ClientCreditView, error) {
	var view *usecase.ClientCreditView
	err := srv.txManager.Execute(ctx, func(repos repository.RepositoryFactory) error {
		req, err := srv.findRequestIn(ctx, repos.CreditRepo(), requestID)
		if err != nil {
			return err
		}

		if err := req.Cancel(clientID, time.Now().UTC()); err != nil {
			return mapEntityError(err)
		}

		if err := repos.CreditRepo().Save(ctx, req); err != nil {
			return mapSaveError(err, "failed to save cancelled request")
		}

		view = usecase.NewClientCreditView(req)

		return nil
	})
	if err != nil {
		return nil, err
	}

	srv.log(ctx).Info("Credit request cancelled", slog.Any("requestID", requestID), slog.Any("clientID", clientID))

	return view, nil
}

// AllRequests lists every request for agents, optionally filtered.
func (srv *creditService) AllRequests(ctx context.Context, filter *usecase.CreditListFilter) ([]*usecase.AgentCreditView, error) {
	repoFilter, err := buildRepoFilter(filter)
	if err != nil {
		return nil, err
	}

	reqs, err := srv.creditRepo.FindAll(ctx, repoFilter)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list credit requests")
	}

	return agentViews(reqs), nil
}

// PendingQueue lists the review queue, oldest first.
func (srv *creditService) PendingQueue(ctx context.Context) ([]*usecase.AgentCreditView, error) {
	reqs, err := srv.creditRepo.FindPending(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list pending credit requests")
	}

	return agentViews(reqs), nil
}

// GetForAgent returns one request in the full agent projection.
func (srv *creditService) GetForAgent(ctx context.Context, requestID uuid.UUID) (*usecase.AgentCreditView, error) {
	req, err := srv.findRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	return usecase.NewAgentCreditView(req), nil
}

// Assign claims a pending request for the calling agent (PENDING → IN_REVIEW).
func (srv *creditService) Assign(ctx context.Context, agentID, requestID uuid.UUID) (*usecase.AgentCreditView, error) {
	var view *usecase.AgentCreditView
	err := srv.txManager.Execute(ctx, func(repos repository.RepositoryFactory) error {
		req, err := srv.findRequestIn(ctx, repos.CreditRepo(), requestID)
		if err != nil {
			return err
		}

		if err := req.Assign(agentID, time.Now().UTC()); err != nil {
			return mapEntityError(err)
		}

		if err := repos.CreditRepo().Save(ctx, req); err != nil {
			return mapSaveError(err, "failed to save assigned request")
		}

		view = usecase.NewAgentCreditView(req)

		return nil
	})
	if err != nil {
		return nil, err
	}

	srv.log(ctx).Info("Credit request assigned", slog.Any("requestID", requestID), slog.Any("agentID", agentID))

	return view, nil
}

// Score produces or retrieves the scoring snapshot for a request. Idempotent:
// repeated calls, including concurrent ones from several agents, return the
// same snapshot and never move the status or touch applicant fields. A
// scorer failure alters nothing and the call is simply retried.
func (srv *creditService) Score(ctx context.Context, requestID uuid.UUID) (*usecase.ScoringView, error) {
	req, err := srv.findRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if req.Scored() {
		return usecase.NewScoringView(req.Scoring), nil
	}

	if cached, err := srv.scoringCache.Get(ctx, requestID); err == nil && cached != nil {
		req.AttachScoring(cached)
		if err := srv.creditRepo.SaveScoring(ctx, req); err != nil {
			return nil, errors.Wrap(err, "failed to persist cached scoring snapshot")
		}

		return usecase.NewScoringView(cached), nil
	}

	snapshot, err := srv.scorer.Score(ctx, scoringInputFromRequest(req))
	if err != nil {
		srv.log(ctx).Warn("Scoring call failed", slog.Any("requestID", requestID), slog.Any("error", err))

		return nil, domainerrors.ErrScoringUnavailable.WrapMessage("scoring call failed")
	}

	req.AttachScoring(snapshot)
	if err := srv.creditRepo.SaveScoring(ctx, req); err != nil {
		return nil, errors.Wrap(err, "failed to persist scoring snapshot")
	}

	// Cache write is best effort; the repository already holds the snapshot.
	if err := srv.scoringCache.Set(ctx, requestID, snapshot); err != nil {
		srv.log(ctx).Warn("Failed to cache scoring snapshot", slog.Any("requestID", requestID), slog.Any("error", err))
	}

	srv.log(ctx).Info("Credit request scored",
		slog.Any("requestID", requestID), slog.Int("score", snapshot.Score), slog.String("riskLevel", string(snapshot.RiskLevel)))

	return usecase.NewScoringView(snapshot), nil
}

// Review records an agent decision. A rejection with empty notes is refused
// before any repository work. The transition is committed transactionally;
// only then does the request leave the pending queue, so a failed review
// leaves the item in place.
func (srv *creditService) Review(ctx context.Context, agentID, requestID uuid.UUID, input *usecase.ReviewInput) (*usecase.AgentCreditView, error) {
	if !input.Decision.IsValid() {
		return nil, domainerrors.ErrValidationFailed.WithDetails(fmt.Sprintf("unknown decision %q", input.Decision))
	}
	if input.Decision == entity.DecisionReject && input.Notes == "" {
		return nil, domainerrors.ErrRejectionNotesRequired
	}

	var view *usecase.AgentCreditView
	err := srv.txManager.Execute(ctx, func(repos repository.RepositoryFactory) error {
		req, err := srv.findRequestIn(ctx, repos.CreditRepo(), requestID)
		if err != nil {
			return err
		}

		if err := req.Review(agentID, input.Decision, input.Notes, time.Now().UTC()); err != nil {
			return mapEntityError(err)
		}

		if err := repos.CreditRepo().Save(ctx, req); err != nil {
			return mapSaveError(err, "failed to save reviewed request")
		}

		view = usecase.NewAgentCreditView(req)

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Credit review failed",
			slog.Any("requestID", requestID), slog.Any("agentID", agentID), slog.Any("error", err))

		return nil, err
	}

	srv.log(ctx).Info("Credit request reviewed",
		slog.Any("requestID", requestID), slog.Any("agentID", agentID), slog.String("decision", string(input.Decision)))

	return view, nil
}

// History lists the requests the calling agent has decided.
func (srv *creditService) History(ctx context.Context, agentID uuid.UUID) ([]*usecase.AgentCreditView, error) {
	reqs, err := srv.creditRepo.FindReviewedBy(ctx, agentID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list agent decision history")
	}

	return agentViews(reqs), nil
}

// MarkPaid records the external disbursement of an approved loan.
func (srv *creditService) MarkPaid(ctx context.Context, requestID uuid.UUID) (*usecase.AgentCreditView, error) {
	var view *usecase.AgentCreditView
	err := srv.txManager.Execute(ctx, func(repos repository.RepositoryFactory) error {
		req, err := srv.findRequestIn(ctx, repos.CreditRepo(), requestID)
		if err != nil {
			return err
		}

		if err := req.MarkPaid(time.Now().UTC()); err != nil {
			return mapEntityError(err)
		}

		if err := repos.CreditRepo().Save(ctx, req); err != nil {
			return mapSaveError(err, "failed to save paid request")
		}

		view = usecase.NewAgentCreditView(req)

		return nil
	})
	if err != nil {
		return nil, err
	}

	srv.log(ctx).Info("Credit request marked paid", slog.Any("requestID", requestID))

	return view, nil
}

// Stats aggregates counters for the admin overview.
func (srv *creditService) Stats(ctx context.Context) (*repository.CreditStats, error) {
	stats, err := srv.creditRepo.Stats(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to aggregate credit stats")
	}

	return stats, nil
}

// --- helpers ---

func (srv *creditService) findRequest(ctx context.Context, requestID uuid.UUID) (*entity.CreditRequest, error) {
	return srv.findRequestIn(ctx, srv.creditRepo, requestID)
}

func (srv *creditService) findRequestIn(ctx context.Context, repo repository.CreditRepository, requestID uuid.UUID) (*entity.CreditRequest, error) {
	req, err := repo.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repository.ErrCreditNotFound) {
			return nil, domainerrors.ErrCreditNotFound.WrapMessage("request lookup failed")
		}

		return nil, errors.Wrap(err, "failed to load credit request")
	}

	return req, nil
}

// validateDraft applies the bound checks that must run before any network or
// repository effect: amount and duration within the system settings, income
// strictly positive, applicant age between 18 and 70 inclusive.
func (srv *creditService) validateDraft(input *usecase.SubmitInput, settings *entity.SystemSettings) (int, error) {
	if input.MonthlyIncome <= 0 {
		return 0, domainerrors.ErrValidationFailed.WithDetails("monthlyIncome must be strictly positive")
	}
	if !settings.AmountInBounds(input.Amount) {
		return 0, domainerrors.ErrValidationFailed.WithDetails(
			fmt.Sprintf("amount must be between %.0f and %.0f", settings.MinLoanAmount, settings.MaxLoanAmount))
	}
	if !settings.DurationInBounds(input.Duration) {
		return 0, domainerrors.ErrValidationFailed.WithDetails(
			fmt.Sprintf("duration must be between %d and %d months", settings.MinLoanDuration, settings.MaxLoanDuration))
	}

	birthDate, err := time.Parse("2006-01-02", input.BirthDate)
	if err != nil {
		return 0, domainerrors.ErrValidationFailed.WithDetails("birthDate must be an ISO date (yyyy-mm-dd)")
	}

	age := ageAt(birthDate, time.Now().UTC())
	if age < minApplicantAge || age > maxApplicantAge {
		return 0, domainerrors.ErrValidationFailed.WithDetails(
			fmt.Sprintf("applicant age must be between %d and %d", minApplicantAge, maxApplicantAge))
	}

	return age, nil
}

// ageAt computes full years between birth and now.
func ageAt(birth, now time.Time) int {
	years := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		years--
	}

	return years
}

func buildRequest(clientID uuid.UUID, input *usecase.SubmitInput, settings *entity.SystemSettings, age int) *entity.CreditRequest {
	rate := input.InterestRate
	if rate == 0 {
		rate = settings.DefaultInterestRate
	}

	req := &entity.CreditRequest{
		UserID:          clientID,
		Amount:          input.Amount,
		Duration:        input.Duration,
		InterestRate:    rate,
		Purpose:         input.Purpose,
		MonthlyIncome:   input.MonthlyIncome,
		Employed:        input.Employed,
		IsFunctionnaire: input.IsFunctionnaire,
		Age:             age,
		Profession:      input.Profession,
		HasGuarantor:    input.HasGuarantor,
		Status:          entity.StatusPending,
	}
	if input.HasGuarantor {
		req.Guarantor = &entity.Guarantor{
			Name:    input.GuarantorName,
			Cin:     input.GuarantorCin,
			Phone:   input.GuarantorPhone,
			Address: input.GuarantorAddress,
		}
	}

	return req
}

func scoringInput(input *usecase.SubmitInput, age int) service.ScoringInput {
	return service.ScoringInput{
		Amount:          input.Amount,
		Duration:        input.Duration,
		InterestRate:    input.InterestRate,
		MonthlyIncome:   input.MonthlyIncome,
		Employed:        input.Employed,
		IsFunctionnaire: input.IsFunctionnaire,
		Age:             age,
		Profession:      input.Profession,
		HasGuarantor:    input.HasGuarantor,
	}
}

func scoringInputFromRequest(req *entity.CreditRequest) service.ScoringInput {
	return service.ScoringInput{
		Amount:          req.Amount,
		Duration:        req.Duration,
		InterestRate:    req.InterestRate,
		MonthlyIncome:   req.MonthlyIncome,
		Employed:        req.Employed,
		IsFunctionnaire: req.IsFunctionnaire,
		Age:             req.Age,
		Profession:      req.Profession,
		HasGuarantor:    req.HasGuarantor,
	}
}

func buildRepoFilter(filter *usecase.CreditListFilter) (repository.CreditFilter, error) {
	var repoFilter repository.CreditFilter
	if filter == nil {
		return repoFilter, nil
	}

	if filter.Status != "" {
		status := entity.CreditStatus(filter.Status)
		if !status.IsValid() {
			return repoFilter, domainerrors.ErrValidationFailed.WithDetails(fmt.Sprintf("unknown status %q", filter.Status))
		}
		repoFilter.Status = &status
	}
	if filter.RiskLevel != "" {
		risk := entity.RiskLevel(filter.RiskLevel)
		if !risk.IsValid() {
			return repoFilter, domainerrors.ErrValidationFailed.WithDetails(fmt.Sprintf("unknown risk level %q", filter.RiskLevel))
		}
		repoFilter.RiskLevel = &risk
	}
	if filter.MinAmount > 0 {
		repoFilter.MinAmount = &filter.MinAmount
	}
	if filter.MaxAmount > 0 {
		repoFilter.MaxAmount = &filter.MaxAmount
	}

	return repoFilter, nil
}

func agentViews(reqs []*entity.CreditRequest) []*usecase.AgentCreditView {
	views := make([]*usecase.AgentCreditView, 0, len(reqs))
	for _, req := range reqs {
		views = append(views, usecase.NewAgentCreditView(req))
	}

	return views
}

// mapEntityError converts entity sentinels into AppError values the delivery
// layer knows how to surface.
// mapSaveError converts a lost transition race into the same error an
// illegal transition produces: by the time the write ran, the request was
// no longer in a state the transition is legal from.
func mapSaveError(err error, msg string) error {
	if errors.Is(err, repository.ErrStaleStatus) {
		return domainerrors.ErrInvalidTransition.WithDetails("the request was updated concurrently")
	}

	return errors.Wrap(err, msg)
}

func mapEntityError(err error) error {
	switch {
	case errors.Is(err, entity.ErrRejectWithoutNotes):
		return domainerrors.ErrRejectionNotesRequired
	case errors.Is(err, entity.ErrNotOwner):
		return domainerrors.ErrNotRequestOwner
	case errors.Is(err, entity.ErrInvalidTransition):
		return domainerrors.ErrInvalidTransition.WithDetails(err.Error())
	default:
		return err
	}
}
