package usecase

import (
	"context"

	"salaf/internal/domain/entity"

	"github.com/google/uuid"
)

// OverviewStats is the admin dashboard aggregate.
type OverviewStats struct {
	TotalUsers      int64   `json:"totalUsers"`
	ActiveClients   int64   `json:"activeClients"`
	TotalAgents     int64   `json:"totalAgents"`
	TotalAdmins     int64   `json:"totalAdmins"`
	TotalCredits    int64   `json:"totalCredits"`
	PendingCredits  int64   `json:"pendingCredits"`
	ApprovedCredits int64   `json:"approvedCredits"`
	RejectedCredits int64   `json:"rejectedCredits"`
	TotalAmount     float64 `json:"totalAmount"`
	PendingAmount   float64 `json:"pendingAmount"`
	ApprovedAmount  float64 `json:"approvedAmount"`
}

// UpdateRoleInput changes a user's role.
type UpdateRoleInput struct {
	Role string `json:"role" validate:"required,oneof=CLIENT AGENT ADMIN"`
}

// SettingsInput mirrors the singleton settings record for admin updates.
type SettingsInput struct {
	DefaultInterestRate float64 `json:"defaultInterestRate" validate:"gte=0,lte=100"`
	MinLoanAmount       float64 `json:"minLoanAmount" validate:"gt=0"`
	MaxLoanAmount       float64 `json:"maxLoanAmount" validate:"gt=0"`
	MinLoanDuration     int     `json:"minLoanDuration" validate:"gt=0"`
	MaxLoanDuration     int     `json:"maxLoanDuration" validate:"gt=0"`
	SystemMaintenance   bool    `json:"systemMaintenance"`
	MaintenanceMessage  string  `json:"maintenanceMessage"`
}

// SettingsView is the settings record as returned to admins.
type SettingsView struct {
	DefaultInterestRate float64 `json:"defaultInterestRate"`
	MinLoanAmount       float64 `json:"minLoanAmount"`
	MaxLoanAmount       float64 `json:"maxLoanAmount"`
	MinLoanDuration     int     `json:"minLoanDuration"`
	MaxLoanDuration     int     `json:"maxLoanDuration"`
	SystemMaintenance   bool    `json:"systemMaintenance"`
	MaintenanceMessage  string  `json:"maintenanceMessage,omitempty"`
}

// NewSettingsView maps the settings entity onto its admin projection.
func NewSettingsView(s *entity.SystemSettings) *SettingsView {
	return &SettingsView{
		DefaultInterestRate: s.DefaultInterestRate,
		MinLoanAmount:       s.MinLoanAmount,
		MaxLoanAmount:       s.MaxLoanAmount,
		MinLoanDuration:     s.MinLoanDuration,
		MaxLoanDuration:     s.MaxLoanDuration,
		SystemMaintenance:   s.SystemMaintenance,
		MaintenanceMessage:  s.MaintenanceMessage,
	}
}

// AdminUsecase groups the administration operations: user management,
// system settings and the statistics overview.
type AdminUsecase interface {
	Overview(ctx context.Context) (*OverviewStats, error)
	ListUsers(ctx context.Context, role string) ([]*UserView, error)
	UpdateUserRole(ctx context.Context, userID uuid.UUID, input *UpdateRoleInput) (*UserView, error)
	DeleteUser(ctx context.Context, userID uuid.UUID) error
	GetSettings(ctx context.Context) (*SettingsView, error)
	UpdateSettings(ctx context.Context, input *SettingsInput) (*SettingsView, error)
}
