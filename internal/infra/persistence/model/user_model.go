// Package model holds the GORM persistence models, kept separate from the
// pure domain entities.
package model

import (
	"time"

	"github.com/google/uuid"
)

// UserModel mirrors the 'users' table. UUIDs are generated application-side
// so the schema works on both PostgreSQL and the SQLite used in tests.
type UserModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	Username      string    `gorm:"type:varchar(64);uniqueIndex;not null"`
	Email         string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash  string    `gorm:"type:varchar(100);not null"`
	Role          string    `gorm:"type:varchar(16);index;not null"`
	Phone         string    `gorm:"type:varchar(32)"`
	Cin           string    `gorm:"type:varchar(16);index"`
	Address       string    `gorm:"type:text"`
	Employed      bool
	MonthlyIncome float64
	Profession    string `gorm:"type:varchar(100)"`
	FullName      string `gorm:"type:varchar(150)"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName explicitly sets the table name for GORM.
func (UserModel) TableName() string {
	return "users"
}
