package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"zerobarrier/internal/auth"
	"zerobarrier/internal/models"
	"zerobarrier/internal/notifier"
	"zerobarrier/internal/repository"
)

const minPasswordLength = 6

type AuthService interface {
	Signup(ctx context.Context, in SignupInput) (*models.Account, error)
	Login(ctx context.Context, email, password string) (*Session, error)
	// Authenticate resolves a session token to an identity. It returns nil
	// for every failure and never returns an error.
	Authenticate(ctx context.Context, token string) *models.Identity
	Me(ctx context.Context, userID string) (*models.Account, error)
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error
	Verify(ctx context.Context, email, token string) error
	TokenTTL() time.Duration
}

type SignupInput struct {
	Email         string
	Password      string
	CompanyName   string
	ContactPerson string
	Phone         string
}

// Session is the result of a successful login.
type Session struct {
	Account   *models.Account
	Token     string
	ExpiresAt time.Time
}

type AuthOptions struct {
	// RequireVerification makes signup leave accounts unverified and login
	// refuse them until the emailed token is confirmed.
	RequireVerification bool
}

type authService struct {
	repo     repository.AccountRepository
	tokens   *auth.TokenManager
	hasher   *auth.PasswordHasher
	notifier notifier.Notifier
	opts     AuthOptions
	logger   *zap.Logger
	now      func() time.Time
}

func NewAuthService(
	repo repository.AccountRepository,
	tokens *auth.TokenManager,
	hasher *auth.PasswordHasher,
	n notifier.Notifier,
	opts AuthOptions,
	logger *zap.Logger,
) AuthService {
	return &authService{
		repo:     repo,
		tokens:   tokens,
		hasher:   hasher,
		notifier: n,
		opts:     opts,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *authService) TokenTTL() time.Duration { return s.tokens.TTL() }

func (s *authService) Signup(ctx context.Context, in SignupInput) (*models.Account, error) {
	if blank(in.Email) || blank(in.Password) || blank(in.CompanyName) || blank(in.ContactPerson) {
		return nil, ErrMissingFields
	}
	if !validEmail(in.Email) {
		return nil, ErrInvalidEmail
	}
	if err := checkPasswordLength(in.Password); err != nil {
		return nil, err
	}

	_, err := s.repo.GetByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return nil, ErrEmailTaken
	case !errors.Is(err, repository.ErrNotFound):
		s.logger.Error("Failed to look up email on signup", zap.Error(err))
		return nil, ErrStoreUnavailable.WithCause(err)
	}

	passwordHash, err := s.hasher.Hash(in.Password)
	if err != nil {
		s.logger.Error("Failed to hash password", zap.Error(err))
		return nil, ErrInternal.WithCause(err)
	}

	now := s.now().UTC()
	account := &models.Account{
		ID:           uuid.NewString(),
		Email:        in.Email,
		Phone:        in.Phone,
		PasswordHash: passwordHash,
		Role:         models.RoleEmployer,
		IsVerified:   !s.opts.RequireVerification,
		Profile:      models.Profile{Employer: models.NewEmployerProfile(in.CompanyName, in.ContactPerson, in.Phone)},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	var verificationToken string
	if s.opts.RequireVerification {
		verificationToken, err = newVerificationToken()
		if err != nil {
			s.logger.Error("Failed to generate verification token", zap.Error(err))
			return nil, ErrInternal.WithCause(err)
		}
		account.VerificationTokenHash = hashToken(verificationToken)
	}

	if err := s.repo.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		s.logger.Error("Failed to create account", zap.Error(err))
		return nil, ErrStoreUnavailable.WithCause(err)
	}

	if verificationToken != "" {
		if err := s.notifier.SendVerification(ctx, account.Email, verificationToken); err != nil {
			s.logger.Warn("Verification token was not delivered", zap.String("user_id", account.ID), zap.Error(err))
		}
	}

	s.logger.Info("Employer signed up",
		zap.String("user_id", account.ID),
		zap.Bool("verified", account.IsVerified),
	)
	return account, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*Session, error) {
	if email == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	account, err := s.verifyCredentials(ctx, email, password)
	if err != nil {
		return nil, err
	}

	if s.opts.RequireVerification && !account.IsVerified {
		s.logger.Info("Login refused for unverified account", zap.String("user_id", account.ID))
		return nil, ErrNotVerified
	}

	token, expiresAt, err := s.tokens.Issue(account.ID, account.Email, account.Role)
	if err != nil {
		s.logger.Error("Failed to generate JWT token", zap.Error(err))
		return nil, ErrInternal.WithCause(err)
	}

	s.logger.Info("User logged in successfully.", zap.String("user_id", account.ID), zap.Stringer("role", account.Role))
	return &Session{Account: account, Token: token, ExpiresAt: expiresAt}, nil
}

// verifyCredentials returns the account only when password matches. Unknown
// email and wrong password fail with the same error after the same amount of
// bcrypt work.
func (s *authService) verifyCredentials(ctx context.Context, email, password string) (*models.Account, error) {
	account, err := s.repo.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		s.hasher.CompareDummy(password)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		s.logger.Error("Failed to get user by email", zap.Error(err))
		return nil, ErrStoreUnavailable.WithCause(err)
	}

	ok, err := s.hasher.Compare(account.PasswordHash, password)
	if err != nil {
		s.logger.Error("Stored password hash is unreadable", zap.String("user_id", account.ID), zap.Error(err))
		return nil, ErrInternal.WithCause(err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}
	return account, nil
}

func (s *authService) Authenticate(ctx context.Context, token string) *models.Identity {
	if token == "" {
		return nil
	}

	identity, err := s.tokens.Parse(token)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidPayload) {
			s.logger.Warn("Invalid token payload", zap.Error(err))
		} else {
			s.logger.Debug("Rejected session token", zap.Error(err))
		}
		return nil
	}

	if _, err := s.repo.GetByID(ctx, identity.UserID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("Token refers to a missing account", zap.String("user_id", identity.UserID))
		} else {
			s.logger.Error("Failed to load account for token", zap.String("user_id", identity.UserID), zap.Error(err))
		}
		return nil
	}

	return &identity
}

func (s *authService) Me(ctx context.Context, userID string) (*models.Account, error) {
	return loadAccount(ctx, s.repo, s.logger, userID)
}

func (s *authService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if currentPassword == "" || newPassword == "" {
		return ErrMissingPasswords
	}
	if err := checkPasswordLength(newPassword); err != nil {
		return err
	}

	account, err := loadAccount(ctx, s.repo, s.logger, userID)
	if err != nil {
		return err
	}

	ok, err := s.hasher.Compare(account.PasswordHash, currentPassword)
	if err != nil {
		s.logger.Error("Stored password hash is unreadable", zap.String("user_id", userID), zap.Error(err))
		return ErrInternal.WithCause(err)
	}
	if !ok {
		return ErrWrongCurrentPassword
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return ErrInternal.WithCause(err)
	}

	if err := s.repo.UpdatePassword(ctx, userID, hash, s.now().UTC()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAccountNotFound
		}
		s.logger.Error("Failed to update password", zap.String("user_id", userID), zap.Error(err))
		return ErrStoreUnavailable.WithCause(err)
	}

	s.logger.Info("Password changed", zap.String("user_id", userID))
	return nil
}

// Verify confirms an account with the token sent at signup. Unknown emails and
// wrong tokens fail alike. Verifying an already verified account succeeds.
func (s *authService) Verify(ctx context.Context, email, token string) error {
	if email == "" || (s.opts.RequireVerification && token == "") {
		return ErrMissingVerification
	}

	account, err := s.repo.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrInvalidVerification
	}
	if err != nil {
		s.logger.Error("Failed to get user by email", zap.Error(err))
		return ErrStoreUnavailable.WithCause(err)
	}

	if account.IsVerified {
		return nil
	}

	if account.VerificationTokenHash == "" ||
		subtle.ConstantTimeCompare([]byte(hashToken(token)), []byte(account.VerificationTokenHash)) != 1 {
		return ErrInvalidVerification
	}

	if err := s.repo.MarkVerified(ctx, account.ID, s.now().UTC()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidVerification
		}
		s.logger.Error("Failed to mark account verified", zap.String("user_id", account.ID), zap.Error(err))
		return ErrStoreUnavailable.WithCause(err)
	}

	s.logger.Info("Account verified", zap.String("user_id", account.ID))
	return nil
}

func loadAccount(ctx context.Context, repo repository.AccountRepository, logger *zap.Logger, userID string) (*models.Account, error) {
	account, err := repo.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		logger.Error("Failed to get user by id", zap.String("user_id", userID), zap.Error(err))
		return nil, ErrStoreUnavailable.WithCause(err)
	}
	return account, nil
}

func newVerificationToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func checkPasswordLength(password string) error {
	switch {
	case len(password) < minPasswordLength:
		return ErrWeakPassword
	case len(password) > auth.MaxPasswordLength:
		return ErrPasswordTooLong
	}
	return nil
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

// validEmail only checks shape: exactly one @ with something on both sides.
func validEmail(email string) bool {
	local, domain, ok := strings.Cut(email, "@")
	return ok && local != "" && domain != "" && !strings.Contains(domain, "@")
}
