package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"zerobarrier/internal/models"
)

type accountRow struct {
	ID                    string                                  `db:"id"`
	Email                 string                                  `db:"email"`
	Phone                 string                                  `db:"phone"`
	PasswordHash          string                                  `db:"password_hash"`
	Role                  string                                  `db:"role"`
	IsVerified            bool                                    `db:"is_verified"`
	VerificationTokenHash string                                  `db:"verification_token_hash"`
	Profile               models.Profile                          `db:"profile"`
	Notifications         jsonColumn[models.NotificationSettings] `db:"notifications"`
	Preferences           jsonColumn[models.Preferences]          `db:"preferences"`
	CreatedAt             time.Time                               `db:"created_at"`
	UpdatedAt             time.Time                               `db:"updated_at"`
}

func (r *accountRow) toModel() (*models.Account, error) {
	role, err := models.ParseRole(r.Role)
	if err != nil {
		return nil, fmt.Errorf("account %s: %w", r.ID, err)
	}
	return &models.Account{
		ID:                    r.ID,
		Email:                 r.Email,
		Phone:                 r.Phone,
		PasswordHash:          r.PasswordHash,
		Role:                  role,
		IsVerified:            r.IsVerified,
		VerificationTokenHash: r.VerificationTokenHash,
		Profile:               r.Profile,
		Notifications:         r.Notifications.V,
		Preferences:           r.Preferences.V,
		CreatedAt:             r.CreatedAt,
		UpdatedAt:             r.UpdatedAt,
	}, nil
}

// jsonColumn maps an optional value to a nullable JSON document column.
type jsonColumn[T any] struct {
	V *T
}

func (c jsonColumn[T]) Value() (driver.Value, error) {
	if c.V == nil {
		return nil, nil
	}
	b, err := json.Marshal(c.V)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (c *jsonColumn[T]) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		c.V = nil
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("json column: unsupported type %T", src)
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("json column: %w", err)
	}
	c.V = &out
	return nil
}

const accountColumns = `id, email, phone, password_hash, role, is_verified, verification_token_hash, profile, notifications, preferences, created_at, updated_at`

// SQLRepository stores accounts in PostgreSQL or SQLite through sqlx.
type SQLRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewSQLRepository(db *sqlx.DB, logger *zap.Logger) *SQLRepository {
	return &SQLRepository{db: db, logger: logger}
}

func (r *SQLRepository) Create(ctx context.Context, account *models.Account) error {
	query := r.db.Rebind(`INSERT INTO accounts (` + accountColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := r.db.ExecContext(ctx, query,
		account.ID,
		account.Email,
		account.Phone,
		account.PasswordHash,
		account.Role.String(),
		account.IsVerified,
		account.VerificationTokenHash,
		account.Profile,
		jsonColumn[models.NotificationSettings]{V: account.Notifications},
		jsonColumn[models.Preferences]{V: account.Preferences},
		account.CreatedAt.UTC(),
		account.UpdatedAt.UTC(),
	)
	if isUniqueViolation(err) {
		return ErrDuplicateEmail
	}
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

func (r *SQLRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	return r.getOne(ctx, `SELECT `+accountColumns+` FROM accounts WHERE email = ?`, email)
}

func (r *SQLRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	return r.getOne(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)
}

func (r *SQLRepository) getOne(ctx context.Context, query string, arg string) (*models.Account, error) {
	var row accountRow
	err := r.db.GetContext(ctx, &row, r.db.Rebind(query), arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select account: %w", err)
	}
	return row.toModel()
}

func (r *SQLRepository) UpdatePassword(ctx context.Context, id, passwordHash string, at time.Time) error {
	return r.updateOne(ctx, `UPDATE accounts SET password_hash = ?, updated_at = ? WHERE id = ?`,
		passwordHash, at.UTC(), id)
}

func (r *SQLRepository) MarkVerified(ctx context.Context, id string, at time.Time) error {
	return r.updateOne(ctx, `UPDATE accounts SET is_verified = ?, verification_token_hash = '', updated_at = ? WHERE id = ?`,
		true, at.UTC(), id)
}

func (r *SQLRepository) UpdateEmployerProfile(ctx context.Context, id, email, phone string, profile *models.EmployerProfile, at time.Time) error {
	return r.updateOne(ctx, `UPDATE accounts SET email = ?, phone = ?, profile = ?, updated_at = ? WHERE id = ?`,
		email, phone, models.Profile{Employer: profile}, at.UTC(), id)
}

func (r *SQLRepository) UpdateNotificationSettings(ctx context.Context, id string, settings models.NotificationSettings, at time.Time) error {
	return r.updateOne(ctx, `UPDATE accounts SET notifications = ?, updated_at = ? WHERE id = ?`,
		jsonColumn[models.NotificationSettings]{V: &settings}, at.UTC(), id)
}

func (r *SQLRepository) updateOne(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if isUniqueViolation(err) {
		return ErrDuplicateEmail
	}
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLRepository) Close() error {
	return r.db.Close()
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}
