package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"zerobarrier/internal/auth"
	"zerobarrier/internal/config"
	"zerobarrier/internal/logging"
	"zerobarrier/internal/notifier"
	"zerobarrier/internal/repository"
	"zerobarrier/internal/server"
	"zerobarrier/internal/service"
)

func main() {
	os.Exit(run())
}

// run returns the process exit code so deferred cleanup finishes before exit.
func run() int {
	// Load configuration
	cfg, err := config.LoadConfig(config.Path())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return 1
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		return 1
	}
	defer func() {
		_ = logger.Sync() // Flushes buffer, if any
	}()

	// Context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Database connection
	connectCtx, connectCancel := context.WithTimeout(ctx, 15*time.Second)
	repo, err := repository.Open(connectCtx, cfg.Database, logger)
	connectCancel()
	if err != nil {
		logger.Error("Failed to connect to database", zap.String("driver", cfg.Database.Driver), zap.Error(err))
		return 1
	}
	defer func() {
		if err := repo.Close(); err != nil {
			logger.Warn("Failed to close database", zap.Error(err))
		}
	}()

	hasher, err := auth.NewPasswordHasher(cfg.Auth.BcryptCost)
	if err != nil {
		logger.Error("Failed to initialize password hasher", zap.Error(err))
		return 1
	}
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	verifier, err := notifier.New(cfg.Notifier.Telegram, logger)
	if err != nil {
		logger.Warn("Failed to initialize Telegram notifier, falling back to log", zap.Error(err))
		verifier = notifier.NewLogNotifier(logger)
	}

	authService := service.NewAuthService(repo, tokens, hasher, verifier,
		service.AuthOptions{RequireVerification: cfg.Auth.RequireVerification}, logger)
	settingsService := service.NewSettingsService(repo, logger)

	// Initialize and run the server
	srv := server.NewServer(server.Deps{
		Config:   cfg,
		Repo:     repo,
		Auth:     authService,
		Settings: settingsService,
		Logger:   logger,
	})

	logger.Info("Zero Barrier API starting",
		zap.String("environment", cfg.Server.Environment),
		zap.String("database", cfg.Database.Driver),
		zap.Bool("require_verification", cfg.Auth.RequireVerification),
	)

	if err := srv.Run(ctx); err != nil {
		logger.Error("Server failed", zap.Error(err))
		return 1
	}
	logger.Info("Application stopped.")
	return 0
}
