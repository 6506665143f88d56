package postgres

import (
	"context"
	"encoding/json"

	"salaf/internal/domain/entity"
	domainerrors "salaf/internal/domain/errors"
	"salaf/internal/domain/repository"
	"salaf/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// creditRepository implements the domain's CreditRepository interface using GORM.
type creditRepository struct {
	db *gorm.DB
}

// NewCreditRepository is the constructor for creditRepository.
func NewCreditRepository(db *gorm.DB) repository.CreditRepository {
	return &creditRepository{db: db}
}

// Create persists a new credit request.
func (repo *creditRepository) Create(ctx context.Context, req *entity.CreditRequest) error {
	creditM, err := fromCreditDomain(req)
	if err != nil {
		return err
	}
	if creditM.ID == uuid.Nil {
		creditM.ID = uuid.New()
	}

	if err := repo.db.WithContext(ctx).Create(creditM).Error; err != nil {
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("missing required credit request information")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create credit request")
	}

	req.ID = creditM.ID
	req.CreatedAt = creditM.CreatedAt
	req.UpdatedAt = creditM.UpdatedAt

	return nil
}

// FindByID retrieves a single credit request.
func (repo *creditRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.CreditRequest, error) {
	var creditM model.CreditRequestModel
	if err := repo.db.WithContext(ctx).First(&creditM, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrCreditNotFound
		}

		return nil, errors.Wrap(err, "failed to find credit request by id")
	}

	return toCreditDomain(&creditM)
}

// FindByUser returns the requests owned by a client, newest first.
func (repo *creditRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]*entity.CreditRequest, error) {
	var models []*model.CreditRequestModel
	err := repo.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list credit requests by user")
	}

	return toCreditDomains(models)
}

// FindAll returns every request matching the filter, newest first.
func (repo *creditRepository) FindAll(ctx context.Context, filter repository.CreditFilter) ([]*entity.CreditRequest, error) {
	query := repo.db.WithContext(ctx).Model(&model.CreditRequestModel{}).Order("created_at DESC")
	if filter.Status != nil {
		query = query.Where("status = ?", filter.Status.String())
	}
	if filter.RiskLevel != nil {
		query = query.Where("risk_level = ?", string(*filter.RiskLevel))
	}
	if filter.MinAmount != nil {
		query = query.Where("amount >= ?", *filter.MinAmount)
	}
	if filter.MaxAmount != nil {
		query = query.Where("amount <= ?", *filter.MaxAmount)
	}

	var models []*model.CreditRequestModel
	if err := query.Find(&models).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list credit requests")
	}

	return toCreditDomains(models)
}

// FindPending returns the review queue, oldest submission first so agents
// drain it in arrival order.
func (repo *creditRepository) FindPending(ctx context.Context) ([]*entity.CreditRequest, error) {
	var models []*model.CreditRequestModel
	err := repo.db.WithContext(ctx).
		Where("status IN ?", []string{entity.StatusPending.String(), entity.StatusInReview.String()}).
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list pending credit requests")
	}

	return toCreditDomains(models)
}

// FindReviewedBy returns the requests an agent has decided, newest first.
func (repo *creditRepository) FindReviewedBy(ctx context.Context, agentID uuid.UUID) ([]*entity.CreditRequest, error) {
	var models []*model.CreditRequestModel
	err := repo.db.WithContext(ctx).
		Where("reviewed_by = ?", agentID).
		Order("reviewed_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list reviewed credit requests")
	}

	return toCreditDomains(models)
}

// Save persists a lifecycle transition. The update only matches rows whose
// current status is a legal predecessor of the one being written, so a
// transition racing a committed concurrent update affects zero rows instead
// of overwriting it.
func (repo *creditRepository) Save(ctx context.Context, req *entity.CreditRequest) error {
	creditM, err := fromCreditDomain(req)
	if err != nil {
		return err
	}

	priors := req.Status.PriorStatuses()
	priorStrings := make([]string, 0, len(priors))
	for _, s := range priors {
		priorStrings = append(priorStrings, s.String())
	}

	result := repo.db.WithContext(ctx).
		Model(&model.CreditRequestModel{}).
		Where("id = ? AND status IN ?", creditM.ID, priorStrings).
		Select("Status", "AssignedTo", "ReviewedBy", "ReviewedAt", "AgentNotes", "UpdatedAt").
		Updates(creditM)
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to save credit request")
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := repo.db.WithContext(ctx).
			Model(&model.CreditRequestModel{}).
			Where("id = ?", creditM.ID).
			Count(&count).Error; err != nil {
			return errors.Wrap(err, "failed to check credit request existence")
		}
		if count == 0 {
			return repository.ErrCreditNotFound
		}

		return repository.ErrStaleStatus
	}

	return nil
}

// SaveScoring persists the scoring snapshot of an existing request. The
// column list excludes status and the review fields: scoring is advisory and
// must never move the lifecycle, even from a read taken before a concurrent
// decision committed.
func (repo *creditRepository) SaveScoring(ctx context.Context, req *entity.CreditRequest) error {
	creditM, err := fromCreditDomain(req)
	if err != nil {
		return err
	}

	result := repo.db.WithContext(ctx).
		Model(&model.CreditRequestModel{}).
		Where("id = ?", creditM.ID).
		Select("Score", "RiskLevel", "ProbabilityDefault", "Recommendation",
			"RedFlags", "PositiveFactors", "MaxRecommendedAmount", "SuggestedDuration",
			"ScoredAt", "UpdatedAt").
		Updates(creditM)
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to save scoring snapshot")
	}
	if result.RowsAffected == 0 {
		return repository.ErrCreditNotFound
	}

	return nil
}

// Stats aggregates counters over all requests for the admin overview.
func (repo *creditRepository) Stats(ctx context.Context) (*repository.CreditStats, error) {
	type statusAgg struct {
		Status string
		Count  int64
		Total  float64
	}

	var rows []statusAgg
	err := repo.db.WithContext(ctx).
		Model(&model.CreditRequestModel{}).
		Select("status, count(*) as count, coalesce(sum(amount), 0) as total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to aggregate credit stats")
	}

	stats := &repository.CreditStats{}
	for _, row := range rows {
		stats.TotalCredits += row.Count
		stats.TotalAmount += row.Total

		switch entity.CreditStatus(row.Status) {
		case entity.StatusPending, entity.StatusInReview:
			stats.PendingCredits += row.Count
			stats.PendingAmount += row.Total
		case entity.StatusApproved, entity.StatusPaid:
			stats.ApprovedCredits += row.Count
			stats.ApprovedAmount += row.Total
		case entity.StatusRejected:
			stats.RejectedCredits += row.Count
		}
	}

	return stats, nil
}

func toCreditDomains(models []*model.CreditRequestModel) ([]*entity.CreditRequest, error) {
	reqs := make([]*entity.CreditRequest, 0, len(models))
	for _, creditM := range models {
		req, err := toCreditDomain(creditM)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}

	return reqs, nil
}

// toCreditDomain maps the persistence model to the domain aggregate. The
// scoring snapshot is reconstructed only when the scoring columns are all
// populated, keeping the all-or-nothing shape of the snapshot.
func toCreditDomain(creditM *model.CreditRequestModel) (*entity.CreditRequest, error) {
	req := &entity.CreditRequest{
		ID:              creditM.ID,
		UserID:          creditM.UserID,
		Amount:          creditM.Amount,
		Duration:        creditM.Duration,
		InterestRate:    creditM.InterestRate,
		Purpose:         creditM.Purpose,
		MonthlyIncome:   creditM.MonthlyIncome,
		Employed:        creditM.Employed,
		IsFunctionnaire: creditM.Functionnaire,
		Age:             creditM.Age,
		Profession:      creditM.Profession,
		HasGuarantor:    creditM.HasGuarantor,
		Status:          entity.CreditStatus(creditM.Status),
		AssignedTo:      creditM.AssignedTo,
		ReviewedBy:      creditM.ReviewedBy,
		ReviewedAt:      creditM.ReviewedAt,
		AgentNotes:      creditM.AgentNotes,
		CreatedAt:       creditM.CreatedAt,
		UpdatedAt:       creditM.UpdatedAt,
	}

	if creditM.HasGuarantor {
		req.Guarantor = &entity.Guarantor{
			Name:    creditM.GuarantorName,
			Cin:     creditM.GuarantorCin,
			Phone:   creditM.GuarantorPhone,
			Address: creditM.GuarantorAddress,
		}
	}

	if creditM.Score != nil && creditM.RiskLevel != nil && creditM.ScoredAt != nil {
		redFlags, err := decodeFactors(creditM.RedFlags)
		if err != nil {
			return nil, errors.Wrap(err, "failed to decode red flags")
		}
		positiveFactors, err := decodeFactors(creditM.PositiveFactors)
		if err != nil {
			return nil, errors.Wrap(err, "failed to decode positive factors")
		}

		snapshot := &entity.ScoringSnapshot{
			Score:           *creditM.Score,
			RiskLevel:       entity.RiskLevel(*creditM.RiskLevel),
			RedFlags:        redFlags,
			PositiveFactors: positiveFactors,
			ScoredAt:        *creditM.ScoredAt,
		}
		if creditM.ProbabilityDefault != nil {
			snapshot.ProbabilityDefault = *creditM.ProbabilityDefault
		}
		if creditM.Recommendation != nil {
			snapshot.Recommendation = *creditM.Recommendation
		}
		if creditM.MaxRecommendedAmount != nil {
			snapshot.MaxRecommendedAmount = *creditM.MaxRecommendedAmount
		}
		if creditM.SuggestedDuration != nil {
			snapshot.SuggestedDuration = *creditM.SuggestedDuration
		}
		req.Scoring = snapshot
	}

	return req, nil
}

// fromCreditDomain maps the domain aggregate to the persistence model.
func fromCreditDomain(req *entity.CreditRequest) (*model.CreditRequestModel, error) {
	creditM := &model.CreditRequestModel{
		ID:              req.ID,
		UserID:          req.UserID,
		Amount:          req.Amount,
		Duration:        req.Duration,
		InterestRate:    req.InterestRate,
		Purpose:         req.Purpose,
		MonthlyIncome:   req.MonthlyIncome,
		Employed:        req.Employed,
		Functionnaire:   req.IsFunctionnaire,
		Age:             req.Age,
		Profession:      req.Profession,
		HasGuarantor:    req.HasGuarantor,
		Status:          req.Status.String(),
		AssignedTo:      req.AssignedTo,
		ReviewedBy:      req.ReviewedBy,
		ReviewedAt:      req.ReviewedAt,
		AgentNotes:      req.AgentNotes,
		CreatedAt:       req.CreatedAt,
		UpdatedAt:       req.UpdatedAt,
	}

	if req.Guarantor != nil {
		creditM.GuarantorName = req.Guarantor.Name
		creditM.GuarantorCin = req.Guarantor.Cin
		creditM.GuarantorPhone = req.Guarantor.Phone
		creditM.GuarantorAddress = req.Guarantor.Address
	}

	if req.Scoring != nil {
		redFlags, err := encodeFactors(req.Scoring.RedFlags)
		if err != nil {
			return nil, errors.Wrap(err, "failed to encode red flags")
		}
		positiveFactors, err := encodeFactors(req.Scoring.PositiveFactors)
		if err != nil {
			return nil, errors.Wrap(err, "failed to encode positive factors")
		}

		riskLevel := string(req.Scoring.RiskLevel)
		creditM.Score = &req.Scoring.Score
		creditM.RiskLevel = &riskLevel
		creditM.ProbabilityDefault = &req.Scoring.ProbabilityDefault
		creditM.Recommendation = &req.Scoring.Recommendation
		creditM.RedFlags = redFlags
		creditM.PositiveFactors = positiveFactors
		creditM.MaxRecommendedAmount = &req.Scoring.MaxRecommendedAmount
		creditM.SuggestedDuration = &req.Scoring.SuggestedDuration
		creditM.ScoredAt = &req.Scoring.ScoredAt
	}

	return creditM, nil
}

func encodeFactors(factors []string) (*string, error) {
	if factors == nil {
		factors = []string{}
	}

	raw, err := json.Marshal(factors)
	if err != nil {
		return nil, err
	}
	encoded := string(raw)

	return &encoded, nil
}

func decodeFactors(raw *string) ([]string, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}

	var factors []string
	if err := json.Unmarshal([]byte(*raw), &factors); err != nil {
		return nil, err
	}

	return factors, nil
}
