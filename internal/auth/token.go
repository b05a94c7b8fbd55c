// Package auth issues and verifies session tokens and hashes passwords.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"zerobarrier/internal/models"
)

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrInvalidPayload = errors.New("invalid token payload")
)

// TokenManager signs and parses HS256 session tokens with a process-wide
// secret.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL is the lifetime of every issued token.
func (m *TokenManager) TTL() time.Duration { return m.ttl }

// Issue signs a token for the account and returns it with its expiry.
func (m *TokenManager) Issue(userID, email string, role models.Role) (string, time.Time, error) {
	if !role.Valid() {
		return "", time.Time{}, fmt.Errorf("issue token: %w", models.ErrUnknownRole)
	}

	issuedAt := m.now()
	expiresAt := issuedAt.Add(m.ttl)

	claims := &models.Claims{
		UserID: userID,
		Email:  email,
		Role:   role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return tokenString, expiresAt, nil
}

// Parse checks signature and expiry and returns the identity the token
// claims. It does not consult the account store.
func (m *TokenManager) Parse(tokenString string) (models.Identity, error) {
	claims := &models.Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return models.Identity{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid {
		return models.Identity{}, ErrInvalidToken
	}

	if claims.UserID == "" || claims.Email == "" || claims.Role == "" {
		return models.Identity{}, ErrInvalidPayload
	}
	role, err := models.ParseRole(claims.Role)
	if err != nil {
		return models.Identity{}, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}

	return models.Identity{UserID: claims.UserID, Email: claims.Email, Role: role}, nil
}
