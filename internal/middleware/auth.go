package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"zerobarrier/internal/access"
	"zerobarrier/internal/apperr"
	"zerobarrier/internal/models"
	"zerobarrier/internal/service"
)

const (
	// TokenCookie carries the session token.
	TokenCookie = "auth-token"

	protectedPrefix = "/api/"
	publicPrefix    = "/api/auth/"

	identityKey = "identity"
)

var errNoCookie = apperr.New(apperr.KindAuthentication, "", "Unauthorized")

// Authenticator resolves a session token to an identity, nil when the token
// is not acceptable.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) *models.Identity
}

// RequireTokenCookie rejects requests to protected API paths that carry no
// session cookie. It only checks presence; Authenticate validates the token.
func RequireTokenCookie() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if !strings.HasPrefix(path, protectedPrefix) || strings.HasPrefix(path, publicPrefix) {
			c.Next()
			return
		}

		if token, err := c.Cookie(TokenCookie); err != nil || token == "" {
			abort(c, errNoCookie)
			return
		}
		c.Next()
	}
}

// Authenticate verifies the session cookie and stores the identity in the
// context. Requests without a valid session get 401.
func Authenticate(authn Authenticator, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := identify(c, authn)
		if identity == nil {
			logger.Debug("Unauthenticated request", zap.String("path", c.Request.URL.Path))
			abort(c, service.ErrUnauthorized)
			return
		}
		c.Set(identityKey, identity)
		c.Next()
	}
}

// Identify is Authenticate without the rejection: the identity is stored when
// the session is valid and the request continues either way.
func Identify(authn Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if identity := identify(c, authn); identity != nil {
			c.Set(identityKey, identity)
		}
		c.Next()
	}
}

// RequireRole lets through only callers whose role is required. It must run
// after Authenticate or Identify.
func RequireRole(required models.Role, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, _ := IdentityFrom(c)
		decision := access.Decide(identity, required)

		switch decision.State {
		case access.AuthenticatedCorrectRole:
			c.Next()
		case access.AuthenticatedWrongRole:
			logger.Info("Access denied",
				zap.String("user_id", identity.UserID),
				zap.Stringer("role", identity.Role),
				zap.Stringer("required", required),
				zap.String("path", c.Request.URL.Path),
			)
			status, body := apperr.Response(service.ErrAccessDenied)
			body.Redirect = decision.Redirect
			c.AbortWithStatusJSON(status, body)
		default:
			abort(c, service.ErrUnauthorized)
		}
	}
}

// IdentityFrom returns the identity stored by Authenticate or Identify.
func IdentityFrom(c *gin.Context) (*models.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil, false
	}
	identity, ok := v.(*models.Identity)
	return identity, ok && identity != nil
}

func identify(c *gin.Context, authn Authenticator) *models.Identity {
	token, err := c.Cookie(TokenCookie)
	if err != nil || token == "" {
		return nil
	}
	return authn.Authenticate(c.Request.Context(), token)
}

func abort(c *gin.Context, err error) {
	status, body := apperr.Response(err)
	c.AbortWithStatusJSON(status, body)
}
