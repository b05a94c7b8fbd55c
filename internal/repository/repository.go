package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"zerobarrier/internal/config"
	"zerobarrier/internal/models"
)

var (
	ErrNotFound       = errors.New("account not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

// AccountRepository persists accounts. Every backend enforces email
// uniqueness itself.
type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	GetByID(ctx context.Context, id string) (*models.Account, error)
	UpdatePassword(ctx context.Context, id, passwordHash string, at time.Time) error
	MarkVerified(ctx context.Context, id string, at time.Time) error
	UpdateEmployerProfile(ctx context.Context, id, email, phone string, profile *models.EmployerProfile, at time.Time) error
	UpdateNotificationSettings(ctx context.Context, id string, settings models.NotificationSettings, at time.Time) error
	Ping(ctx context.Context) error
	Close() error
}

// Open connects the backend named by cfg.Driver and prepares its schema.
func Open(ctx context.Context, cfg config.Database, logger *zap.Logger) (AccountRepository, error) {
	switch cfg.Driver {
	case "mongo":
		return NewMongoRepository(ctx, cfg.URL, cfg.Name, logger)
	case "postgres":
		db, err := NewPostgresDB(cfg.URL, logger)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := MigrateDB(db, logger); err != nil {
			db.Close()
			return nil, err
		}
		return NewSQLRepository(db, logger), nil
	case "sqlite":
		db, err := NewSQLiteDB(cfg.URL, logger)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		if err := MigrateDB(db, logger); err != nil {
			db.Close()
			return nil, err
		}
		return NewSQLRepository(db, logger), nil
	case "memory":
		logger.Warn("Using in-memory account store; data is lost on restart")
		return NewMemoryRepository(), nil
	}
	return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
}
