package entity

import (
	"time"

	"github.com/pkg/errors"
)

// SystemSettings is the singleton record of platform-wide bounds. Mutated
// only by admins; every client submission is validated against it.
type SystemSettings struct {
	DefaultInterestRate float64 // Percent, 0–100.
	MinLoanAmount       float64
	MaxLoanAmount       float64
	MinLoanDuration     int // Months.
	MaxLoanDuration     int
	SystemMaintenance   bool // When set, client submissions are refused.
	MaintenanceMessage  string
	UpdatedAt           time.Time
}

// DefaultSettings are the bounds applied before an admin ever saves any.
func DefaultSettings() *SystemSettings {
	return &SystemSettings{
		DefaultInterestRate: 5.5,
		MinLoanAmount:       1000,
		MaxLoanAmount:       100000,
		MinLoanDuration:     6,
		MaxLoanDuration:     60,
	}
}

// Validate enforces the settings invariants.
func (s *SystemSettings) Validate() error {
	if s.MinLoanAmount >= s.MaxLoanAmount {
		return errors.New("minLoanAmount must be strictly below maxLoanAmount")
	}
	if s.MinLoanDuration >= s.MaxLoanDuration {
		return errors.New("minLoanDuration must be strictly below maxLoanDuration")
	}
	if s.DefaultInterestRate < 0 || s.DefaultInterestRate > 100 {
		return errors.New("defaultInterestRate must be between 0 and 100")
	}

	return nil
}

// AmountInBounds reports whether the amount falls within the configured range.
func (s *SystemSettings) AmountInBounds(amount float64) bool {
	return amount >= s.MinLoanAmount && amount <= s.MaxLoanAmount
}

// DurationInBounds reports whether the duration falls within the configured range.
func (s *SystemSettings) DurationInBounds(months int) bool {
	return months >= s.MinLoanDuration && months <= s.MaxLoanDuration
}
