package main

import (
	"context"
	"log/slog"
	"os"

	"salaf/config"
	"salaf/internal/delivery"
	"salaf/internal/delivery/http"
	"salaf/internal/delivery/http/middleware"
	"salaf/internal/delivery/http/router/handler"
	"salaf/internal/infra/auth"
	logs "salaf/internal/infra/log"
	"salaf/internal/infra/ocr"
	"salaf/internal/infra/persistence/postgres"
	"salaf/internal/infra/scoring"
	"salaf/internal/usecase/impl"

	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		injectRepo(),
		injectService(),
		injectUsecase(),
		injectDelivery(),
		injectMiddleware(),
		injectHandler(),
		fx.Invoke(
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		context.Background,
		postgres.New,
		scoring.OpenRedis,
	)
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			postgres.NewUserRepository,
			postgres.NewCreditRepository,
			postgres.NewSettingsRepository,
			postgres.NewTransactionManager,
		),
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			auth.NewBcryptHasher,
			auth.NewJWTService,
			scoring.NewHTTPScorer,
			scoring.NewRedisCache,
			ocr.NewHTTPRecognizer,
			fx.Annotate(
				newAdminSecret,
				fx.ResultTags(`name:"adminSecret"`),
			),
		),
	)
}

// newAdminSecret exposes the configured admin secret as a named dependency.
func newAdminSecret(cfg *config.Config) string {
	return cfg.Auth.AdminSecret
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewAuthService,
			impl.NewCreditService,
			impl.NewOcrService,
			impl.NewAdminService,
		),
	)
}

func injectMiddleware() fx.Option {
	return fx.Options(
		fx.Provide(
			middleware.NewAuthMiddleware,
			middleware.NewErrorMiddleware,
			middleware.NewRequestIDMiddleware,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewAuthHandler,
			handler.NewCreditHandler,
			handler.NewAdminHandler,
			handler.NewOcrHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				http.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))
				os.Exit(1)
			}
		}()
	}
}
