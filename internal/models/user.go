package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Account is a registered employer or worker.
type Account struct {
	ID                    string
	Email                 string
	Phone                 string
	PasswordHash          string
	Role                  Role
	IsVerified            bool
	VerificationTokenHash string
	Profile               Profile
	// Nil until the employer saves them; see NotificationsOrDefault.
	Notifications         *NotificationSettings
	Preferences           *Preferences
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// Identity is the caller resolved from a verified session token.
type Identity struct {
	UserID string `json:"id"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
}

func (a *Account) Identity() Identity {
	return Identity{UserID: a.ID, Email: a.Email, Role: a.Role}
}

// AccountView is an account with every secret stripped, safe to return to
// its owner.
type AccountView struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone,omitempty"`
	Role       Role      `json:"role"`
	IsVerified bool      `json:"isVerified"`
	Profile    any       `json:"profile"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (a *Account) View() AccountView {
	return AccountView{
		ID:         a.ID,
		Email:      a.Email,
		Phone:      a.Phone,
		Role:       a.Role,
		IsVerified: a.IsVerified,
		Profile:    a.Profile.For(a.Role),
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
}

// Claims defines the structure of the JWT claims.
type Claims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}
