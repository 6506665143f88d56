package model

import (
	"time"

	"github.com/google/uuid"
)

// CreditRequestModel mirrors the 'credit_requests' table. The guarantor and
// scoring blocks are flattened into nullable columns; a row is considered
// scored only when every scoring column is populated.
type CreditRequestModel struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID uuid.UUID `gorm:"type:uuid;index;not null"`

	Amount        float64 `gorm:"not null"`
	Duration      int     `gorm:"not null"`
	InterestRate  float64 `gorm:"not null"`
	Purpose       string  `gorm:"type:text"`
	MonthlyIncome float64
	Employed      bool
	Functionnaire bool
	Age           int
	Profession    string `gorm:"type:varchar(100)"`

	HasGuarantor     bool
	GuarantorName    string `gorm:"type:varchar(150)"`
	GuarantorCin     string `gorm:"type:varchar(16)"`
	GuarantorPhone   string `gorm:"type:varchar(32)"`
	GuarantorAddress string `gorm:"type:text"`

	Score                *int
	RiskLevel            *string `gorm:"type:varchar(16)"`
	ProbabilityDefault   *float64
	Recommendation       *string `gorm:"type:text"`
	RedFlags             *string `gorm:"type:text"`
	PositiveFactors      *string `gorm:"type:text"`
	MaxRecommendedAmount *float64
	SuggestedDuration    *int
	ScoredAt             *time.Time

	Status     string     `gorm:"type:varchar(16);index;not null"`
	AssignedTo *uuid.UUID `gorm:"type:uuid;index"`
	ReviewedBy *uuid.UUID `gorm:"type:uuid;index"`
	ReviewedAt *time.Time
	AgentNotes string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (CreditRequestModel) TableName() string {
	return "credit_requests"
}
