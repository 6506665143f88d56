package postgres

import (
	"context"

	"salaf/internal/domain/entity"
	domainerrors "salaf/internal/domain/errors"
	"salaf/internal/domain/repository"
	"salaf/internal/infra/persistence/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// settingsRepository implements the domain's SettingsRepository interface
// using GORM. The table holds at most one row.
type settingsRepository struct {
	db *gorm.DB
}

// NewSettingsRepository is the constructor for settingsRepository.
func NewSettingsRepository(db *gorm.DB) repository.SettingsRepository {
	return &settingsRepository{db: db}
}

// Get returns the saved settings, falling back to the defaults when no admin
// ever saved any.
func (repo *settingsRepository) Get(ctx context.Context) (*entity.SystemSettings, error) {
	var settingsM model.SettingsModel
	if err := repo.db.WithContext(ctx).First(&settingsM, "id = ?", model.SettingsRowID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entity.DefaultSettings(), nil
		}

		return nil, errors.Wrap(err, "failed to load system settings")
	}

	return &entity.SystemSettings{
		DefaultInterestRate: settingsM.DefaultInterestRate,
		MinLoanAmount:       settingsM.MinLoanAmount,
		MaxLoanAmount:       settingsM.MaxLoanAmount,
		MinLoanDuration:     settingsM.MinLoanDuration,
		MaxLoanDuration:     settingsM.MaxLoanDuration,
		SystemMaintenance:   settingsM.SystemMaintenance,
		MaintenanceMessage:  settingsM.MaintenanceMessage,
		UpdatedAt:           settingsM.UpdatedAt,
	}, nil
}

// Save upserts the single settings row.
func (repo *settingsRepository) Save(ctx context.Context, settings *entity.SystemSettings) error {
	settingsM := &model.SettingsModel{
		ID:                  model.SettingsRowID,
		DefaultInterestRate: settings.DefaultInterestRate,
		MinLoanAmount:       settings.MinLoanAmount,
		MaxLoanAmount:       settings.MaxLoanAmount,
		MinLoanDuration:     settings.MinLoanDuration,
		MaxLoanDuration:     settings.MaxLoanDuration,
		SystemMaintenance:   settings.SystemMaintenance,
		MaintenanceMessage:  settings.MaintenanceMessage,
	}

	err := repo.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(settingsM).Error
	if err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to save system settings")
	}

	settings.UpdatedAt = settingsM.UpdatedAt

	return nil
}
