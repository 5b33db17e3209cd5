package main

import (
	"context"
	"errors"

	"github.com/joho/godotenv"

	"github.com/oksasatya/crm-accounts/config"
	"github.com/oksasatya/crm-accounts/internal/application"
	"github.com/oksasatya/crm-accounts/internal/domain/entity"
	pginfra "github.com/oksasatya/crm-accounts/internal/infrastructure/postgres"
	"github.com/oksasatya/crm-accounts/pkg/helpers"
)

// seed creates the first super administrator. It is idempotent on SEED_EMAIL.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env, cfg.LogLevel)

	if cfg.SeedPassword == "" {
		logger.Fatal("SEED_PASSWORD is required")
	}

	ctx := context.Background()
	pool, err := pginfra.NewPool(ctx, pginfra.PoolOptions{DSN: cfg.PostgresDSN(), AppName: cfg.AppName + "-seed", MaxConns: 2})
	if err != nil {
		logger.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	repo := pginfra.NewAccountRepository(pool)
	svc := application.NewAccountService(repo, helpers.BcryptHasher{}, nil, logger)

	// the seed runs as the system, outside any session
	system := application.Actor{Role: entity.RoleSuperAdmin}
	a, err := svc.CreateAccount(ctx, system, application.CreateAccountInput{
		FirstName: cfg.SeedFirstName,
		LastName:  cfg.SeedLastName,
		Email:     cfg.SeedEmail,
		Role:      string(entity.RoleSuperAdmin),
		Password:  cfg.SeedPassword,
		IsActive:  "true",
	})
	switch {
	case errors.Is(err, application.ErrDuplicateEmail):
		logger.WithField("email", cfg.SeedEmail).Info("super administrator already seeded")
	case err != nil:
		logger.Fatalf("failed to seed super administrator: %v", err)
	default:
		logger.WithFields(map[string]any{"id": a.ID, "username": a.Username, "email": a.Email}).Info("seeded super administrator")
	}
}
