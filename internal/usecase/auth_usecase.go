// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"salaf/internal/domain/entity"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// SignupInput defines the data required to register a new account.
// Role defaults to CLIENT; creating an AGENT or ADMIN account requires the
// configured admin secret.
type SignupInput struct {
	Username      string  `json:"username" validate:"required,min=3,max=64"`
	Email         string  `json:"email" validate:"required,email"`
	Password      string  `json:"password" validate:"required,min=8,max=128"`
	Phone         string  `json:"phone" validate:"required"`
	Cin           string  `json:"cin" validate:"required"`
	Address       string  `json:"address" validate:"required"`
	Employed      bool    `json:"employed"`
	MonthlyIncome float64 `json:"monthlyIncome" validate:"omitempty,gt=0"`
	Profession    string  `json:"profession"`
	Role          string  `json:"role" validate:"omitempty,oneof=CLIENT AGENT ADMIN"`
	AdminSecret   string  `json:"adminSecret"`
}

// LoginInput defines the data required to sign in.
type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// --- Output DTOs ---

// UserView is the public projection of a user account. It never carries the
// password hash.
type UserView struct {
	ID            uuid.UUID `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	Role          string    `json:"role"`
	Phone         string    `json:"phone"`
	Cin           string    `json:"cin"`
	Address       string    `json:"address"`
	Employed      bool      `json:"employed"`
	MonthlyIncome float64   `json:"monthlyIncome,omitempty"`
	Profession    string    `json:"profession,omitempty"`
	FullName      string    `json:"fullname,omitempty"`
}

// NewUserView maps a user entity onto its public projection.
func NewUserView(u *entity.User) *UserView {
	return &UserView{
		ID:            u.ID,
		Username:      u.Username,
		Email:         u.Email,
		Role:          u.Role.String(),
		Phone:         u.Phone,
		Cin:           u.Cin,
		Address:       u.Address,
		Employed:      u.Employed,
		MonthlyIncome: u.MonthlyIncome,
		Profession:    u.Profession,
		FullName:      u.FullName,
	}
}

// LoginOutput returns the generated tokens after a successful login.
type LoginOutput struct {
	Token        string    `json:"token"`
	RefreshToken string    `json:"refreshToken"`
	Type         string    `json:"type"` // Always "Bearer".
	User         *UserView `json:"user"`
}

// AuthUsecase defines the interface for authentication operations.
// This is the contract that the delivery layer depends on.
type AuthUsecase interface {
	Signup(ctx context.Context, input *SignupInput) (*UserView, error)
	Login(ctx context.Context, input *LoginInput) (*LoginOutput, error)
	Profile(ctx context.Context, userID uuid.UUID) (*UserView, error)
}
