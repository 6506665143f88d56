package repository

import (
	"context"

	"salaf/internal/domain/entity"
)

// SettingsRepository persists the singleton system settings record.
type SettingsRepository interface {
	// Get returns the current settings, or the defaults when none were
	// ever saved.
	Get(ctx context.Context) (*entity.SystemSettings, error)

	// Save replaces the settings record.
	Save(ctx context.Context, settings *entity.SystemSettings) error
}
