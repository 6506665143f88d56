package impl

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "salaf/internal/delivery/context"
	"salaf/internal/domain/entity"
	domainerrors "salaf/internal/domain/errors"
	"salaf/internal/domain/repository"
	"salaf/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// adminService implements the AdminUsecase interface.
type adminService struct {
	userRepo     repository.UserRepository
	creditRepo   repository.CreditRepository
	settingsRepo repository.SettingsRepository
	logger       *slog.Logger
}

// AdminServiceParams holds dependencies for AdminService, injected by Fx.
type AdminServiceParams struct {
	fx.In

	UserRepo     repository.UserRepository
	CreditRepo   repository.CreditRepository
	SettingsRepo repository.SettingsRepository
	Logger       *slog.Logger
}

// NewAdminService is the constructor for adminService.
func NewAdminService(params AdminServiceParams) usecase.AdminUsecase {
	return &adminService{
		userRepo:     params.UserRepo,
		creditRepo:   params.CreditRepo,
		settingsRepo: params.SettingsRepo,
		logger:       params.Logger,
	}
}

func (srv *adminService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Overview aggregates the dashboard counters.
func (srv *adminService) Overview(ctx context.Context) (*usecase.OverviewStats, error) {
	users, err := srv.userRepo.List(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list users for overview")
	}

	creditStats, err := srv.creditRepo.Stats(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to aggregate credit stats for overview")
	}

	stats := &usecase.OverviewStats{
		TotalUsers:      int64(len(users)),
		TotalCredits:    creditStats.TotalCredits,
		PendingCredits:  creditStats.PendingCredits,
		ApprovedCredits: creditStats.ApprovedCredits,
		RejectedCredits: creditStats.RejectedCredits,
		TotalAmount:     creditStats.TotalAmount,
		PendingAmount:   creditStats.PendingAmount,
		ApprovedAmount:  creditStats.ApprovedAmount,
	}
	for _, user := range users {
		switch user.Role {
		case entity.RoleClient:
			stats.ActiveClients++
		case entity.RoleAgent:
			stats.TotalAgents++
		case entity.RoleAdmin:
			stats.TotalAdmins++
		}
	}

	return stats, nil
}

// ListUsers returns every account, optionally restricted to one role.
func (srv *adminService) ListUsers(ctx context.Context, role string) ([]*usecase.UserView, error) {
	var roleFilter *entity.Role
	if role != "" {
		r := entity.Role(role)
		if !r.IsValid() {
			return nil, domainerrors.ErrValidationFailed.WithDetails("unknown role " + role)
		}
		roleFilter = &r
	}

	users, err := srv.userRepo.List(ctx, roleFilter)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list users")
	}

	views := make([]*usecase.UserView, 0, len(users))
	for _, user := range users {
		views = append(views, usecase.NewUserView(user))
	}

	return views, nil
}

// UpdateUserRole changes a user's role.
func (srv *adminService) UpdateUserRole(ctx context.Context, userID uuid.UUID, input *usecase.UpdateRoleInput) (*usecase.UserView, error) {
	role := entity.Role(input.Role)
	if !role.IsValid() {
		return nil, domainerrors.ErrValidationFailed.WithDetails("unknown role " + input.Role)
	}

	user, err := srv.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domainerrors.ErrUserNotFound.WrapMessage("role update failed")
		}

		return nil, errors.Wrap(err, "failed to load user for role update")
	}

	user.Role = role
	if err := srv.userRepo.Update(ctx, user); err != nil {
		return nil, errors.Wrap(err, "failed to update user role")
	}

	srv.log(ctx).Info("User role updated", slog.Any("userID", userID), slog.String("role", role.String()))

	return usecase.NewUserView(user), nil
}

// DeleteUser removes an account. Their credit requests stay behind for audit.
func (srv *adminService) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	if err := srv.userRepo.Delete(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return domainerrors.ErrUserNotFound.WrapMessage("delete failed")
		}

		return errors.Wrap(err, "failed to delete user")
	}

	srv.log(ctx).Info("User deleted", slog.Any("userID", userID))

	return nil
}

// GetSettings returns the current system settings.
func (srv *adminService) GetSettings(ctx context.Context) (*usecase.SettingsView, error) {
	settings, err := srv.settingsRepo.Get(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load system settings")
	}

	return usecase.NewSettingsView(settings), nil
}

// UpdateSettings replaces the singleton settings record after validating its
// invariants.
func (srv *adminService) UpdateSettings(ctx context.Context, input *usecase.SettingsInput) (*usecase.SettingsView, error) {
	settings := &entity.SystemSettings{
		DefaultInterestRate: input.DefaultInterestRate,
		MinLoanAmount:       input.MinLoanAmount,
		MaxLoanAmount:       input.MaxLoanAmount,
		MinLoanDuration:     input.MinLoanDuration,
		MaxLoanDuration:     input.MaxLoanDuration,
		SystemMaintenance:   input.SystemMaintenance,
		MaintenanceMessage:  input.MaintenanceMessage,
		UpdatedAt:           time.Now().UTC(),
	}
	if err := settings.Validate(); err != nil {
		return nil, domainerrors.ErrValidationFailed.WithDetails(err.Error())
	}

	if err := srv.settingsRepo.Save(ctx, settings); err != nil {
		return nil, errors.Wrap(err, "failed to save system settings")
	}

	srv.log(ctx).Info("System settings updated",
		slog.Float64("maxLoanAmount", settings.MaxLoanAmount), slog.Bool("maintenance", settings.SystemMaintenance))

	return usecase.NewSettingsView(settings), nil
}
