package model

import "time"

// SettingsRowID pins the settings table to a single row.
const SettingsRowID = 1

// SettingsModel mirrors the 'system_settings' table, which holds exactly one
// row with the platform-wide credit parameters.
type SettingsModel struct {
	ID                  uint `gorm:"primaryKey"`
	DefaultInterestRate float64
	MinLoanAmount       float64
	MaxLoanAmount       float64
	MinLoanDuration     int
	MaxLoanDuration     int
	SystemMaintenance   bool
	MaintenanceMessage  string `gorm:"type:text"`
	UpdatedAt           time.Time
}

// TableName explicitly sets the table name for GORM.
func (SettingsModel) TableName() string {
	return "system_settings"
}
