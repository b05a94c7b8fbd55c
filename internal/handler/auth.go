package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"zerobarrier/internal/access"
	"zerobarrier/internal/apperr"
	"zerobarrier/internal/middleware"
	"zerobarrier/internal/models"
	"zerobarrier/internal/service"
)

var errMalformedJSON = apperr.New(apperr.KindValidation, "invalid_json", "Invalid request body")

type AuthHandler interface {
	Signup(c *gin.Context)
	Login(c *gin.Context)
	Logout(c *gin.Context)
	Me(c *gin.Context)
	ChangePassword(c *gin.Context)
	Verify(c *gin.Context)
	Access(c *gin.Context)
}

type authHandler struct {
	authService  service.AuthService
	secureCookie bool
	logger       *zap.Logger
}

// NewAuthHandler builds the auth endpoints. secureCookie marks the session
// cookie Secure and is set in production.
func NewAuthHandler(authService service.AuthService, secureCookie bool, logger *zap.Logger) AuthHandler {
	return &authHandler{authService: authService, secureCookie: secureCookie, logger: logger}
}

type SignupRequest struct {
	Email         string `json:"email"`
	Password      string `json:"password"`
	CompanyName   string `json:"companyName"`
	ContactPerson string `json:"contactPerson"`
	Phone         string `json:"phone"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type VerifyRequest struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

// loginUser is the account summary returned by login.
type loginUser struct {
	ID      string      `json:"id"`
	Email   string      `json:"email"`
	Role    models.Role `json:"role"`
	Profile any         `json:"profile"`
}

func (h *authHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("Failed to bind JSON for signup", zap.Error(err))
		respondError(c, h.logger, errMalformedJSON)
		return
	}

	account, err := h.authService.Signup(c.Request.Context(), service.SignupInput{
		Email:         req.Email,
		Password:      req.Password,
		CompanyName:   req.CompanyName,
		ContactPerson: req.ContactPerson,
		Phone:         req.Phone,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	message := "Account created successfully. You can now sign in."
	if !account.IsVerified {
		message = "Account created successfully. Please check your email for verification."
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": message,
		"userId":  account.ID,
	})
}

func (h *authHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("Failed to bind JSON for login", zap.Error(err))
		respondError(c, h.logger, errMalformedJSON)
		return
	}

	session, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.setSessionCookie(c, session.Token, int(h.authService.TokenTTL().Seconds()))
	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"user": loginUser{
			ID:      session.Account.ID,
			Email:   session.Account.Email,
			Role:    session.Account.Role,
			Profile: session.Account.Profile.For(session.Account.Role),
		},
	})
}

func (h *authHandler) Logout(c *gin.Context) {
	h.setSessionCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"message": "Logout successful"})
}

func (h *authHandler) Me(c *gin.Context) {
	identity, _ := middleware.IdentityFrom(c)

	account, err := h.authService.Me(c.Request.Context(), identity.UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": account.View()})
}

func (h *authHandler) ChangePassword(c *gin.Context) {
	identity, _ := middleware.IdentityFrom(c)

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, errMalformedJSON)
		return
	}

	if err := h.authService.ChangePassword(c.Request.Context(), identity.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *authHandler) Verify(c *gin.Context) {
	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, errMalformedJSON)
		return
	}

	if err := h.authService.Verify(c.Request.Context(), req.Email, req.Token); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "User verified successfully",
		"email":   req.Email,
	})
}

// Access reports where the client should route the caller for the employer
// surface. Unauthenticated callers get 200 with the login redirect.
func (h *authHandler) Access(c *gin.Context) {
	identity, _ := middleware.IdentityFrom(c)
	c.JSON(http.StatusOK, access.Decide(identity, models.RoleEmployer))
}

func (h *authHandler) setSessionCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, value, maxAge, "/", "", h.secureCookie, true)
}
