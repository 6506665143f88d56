package postgres

import (
	"testing"
	"time"

	"salaf/internal/domain/entity"
	"salaf/internal/infra/persistence/model"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// openTestDB creates an in-memory sqlite DB and migrates the real models.
// The schema uses no postgres-only column types, so the same models work
// under both drivers.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// A single connection keeps every session on the same in-memory database.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&model.UserModel{}, &model.CreditRequestModel{}, &model.SettingsModel{}); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}

	return db
}

func makeUser(username string, role entity.Role) *entity.User {
	return &entity.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        username + "@example.ma",
		PasswordHash: "$2a$10$notarealhash",
		Role:         role,
		FullName:     "Test User",
	}
}

func makeCreditRequest(userID uuid.UUID) *entity.CreditRequest {
	return &entity.CreditRequest{
		ID:            uuid.New(),
		UserID:        userID,
		Amount:        25000,
		Duration:      24,
		InterestRate:  5.5,
		Purpose:       "Achat de matériel",
		MonthlyIncome: 8000,
		Employed:      true,
		Age:           34,
		Profession:    "Commerçant",
		Status:        entity.StatusPending,
	}
}

func makeSnapshot() *entity.ScoringSnapshot {
	return &entity.ScoringSnapshot{
		Score:                712,
		RiskLevel:            entity.RiskLow,
		ProbabilityDefault:   0.04,
		Recommendation:       "Dossier solide",
		RedFlags:             []string{"Durée longue"},
		PositiveFactors:      []string{"Revenu stable", "Fonctionnaire"},
		MaxRecommendedAmount: 40000,
		SuggestedDuration:    18,
		ScoredAt:             time.Now().UTC().Truncate(time.Second),
	}
}
