package impl

import (
	"context"
	"log/slog"

	deliverycontext "salaf/internal/delivery/context"
	"salaf/internal/domain/entity"
	domainerrors "salaf/internal/domain/errors"
	"salaf/internal/domain/repository"
	"salaf/internal/domain/service"
	"salaf/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// authService implements the AuthUsecase interface.
type authService struct {
	userRepo    repository.UserRepository
	hasher      service.PasswordHasher
	tokenSvc    service.TokenService
	adminSecret string
	logger      *slog.Logger
}

// AuthServiceParams holds dependencies for AuthService, injected by Fx.
type AuthServiceParams struct {
	fx.In

	UserRepo    repository.UserRepository
	Hasher      service.PasswordHasher
	TokenSvc    service.TokenService
	AdminSecret string `name:"adminSecret"`
	Logger      *slog.Logger
}

// NewAuthService is the constructor for authService.
func NewAuthService(params AuthServiceParams) usecase.AuthUsecase {
	return &authService{
		userRepo:    params.UserRepo,
		hasher:      params.Hasher,
		tokenSvc:    params.TokenSvc,
		adminSecret: params.AdminSecret,
		logger:      params.Logger,
	}
}

func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Signup registers a new account. Roles other than CLIENT require the
// configured admin secret; an empty or wrong secret refuses the elevation
// before anything is stored.
func (srv *authService) Signup(ctx context.Context, input *usecase.SignupInput) (*usecase.UserView, error) {
	role := entity.RoleClient
	if input.Role != "" {
		role = entity.Role(input.Role)
		if !role.IsValid() {
			return nil, domainerrors.ErrValidationFailed.WithDetails("unknown role " + input.Role)
		}
	}
	if role != entity.RoleClient && input.AdminSecret != srv.adminSecret {
		srv.log(ctx).Warn("Signup refused: bad admin secret", slog.String("username", input.Username), slog.String("role", role.String()))

		return nil, domainerrors.ErrAdminSecretInvalid
	}

	if _, err := srv.userRepo.FindByUsername(ctx, input.Username); err == nil {
		return nil, domainerrors.ErrUserAlreadyExists.WrapMessage("username taken")
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, errors.Wrap(err, "failed to check username availability")
	}

	hash, err := srv.hasher.Hash(input.Password)
	if err != nil {
		return nil, errors.Wrap(err, "failed to hash password during signup")
	}

	user := &entity.User{
		Username:      input.Username,
		Email:         input.Email,
		PasswordHash:  hash,
		Role:          role,
		Phone:         input.Phone,
		Cin:           input.Cin,
		Address:       input.Address,
		Employed:      input.Employed,
		MonthlyIncome: input.MonthlyIncome,
		Profession:    input.Profession,
	}
	if err := srv.userRepo.Create(ctx, user); err != nil {
		return nil, errors.Wrap(err, "failed to create user during signup")
	}

	srv.log(ctx).Info("User registered", slog.Any("userID", user.ID), slog.String("role", role.String()))

	return usecase.NewUserView(user), nil
}

// Login verifies credentials and issues the token pair.
func (srv *authService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.LoginOutput, error) {
	user, err := srv.userRepo.FindByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// Same answer as a wrong password so usernames cannot be probed.
			return nil, domainerrors.ErrInvalidCredentials
		}

		return nil, errors.Wrap(err, "failed to load user during login")
	}

	if !srv.hasher.Check(input.Password, user.PasswordHash) {
		srv.log(ctx).Warn("Login refused: password mismatch", slog.String("username", input.Username))

		return nil, domainerrors.ErrInvalidCredentials
	}

	access, refresh, err := srv.tokenSvc.GenerateTokens(user.ID, entity.Roles{user.Role}.ToStrings())
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate tokens during login")
	}

	srv.log(ctx).Info("User logged in", slog.Any("userID", user.ID), slog.String("role", user.Role.String()))

	return &usecase.LoginOutput{
		Token:        access,
		RefreshToken: refresh,
		Type:         "Bearer",
		User:         usecase.NewUserView(user),
	}, nil
}

// Profile returns the authenticated user's own record.
func (srv *authService) Profile(ctx context.Context, userID uuid.UUID) (*usecase.UserView, error) {
	user, err := srv.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domainerrors.ErrUserNotFound.WrapMessage("profile lookup failed")
		}

		return nil, errors.Wrap(err, "failed to load user profile")
	}

	return usecase.NewUserView(user), nil
}
