package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"zerobarrier/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubAuthenticator accepts a fixed set of tokens.
type stubAuthenticator map[string]*models.Identity

func (s stubAuthenticator) Authenticate(_ context.Context, token string) *models.Identity {
	return s[token]
}

var (
	employer = &models.Identity{UserID: "e1", Email: "boss@acme.com", Role: models.RoleEmployer}
	worker   = &models.Identity{UserID: "w1", Email: "w@example.com", Role: models.RoleWorker}
	authn    = stubAuthenticator{"employer-token": employer, "worker-token": worker}
)

func ok(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) }

func do(r http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: TokenCookie, Value: token})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestRequireTokenCookie(t *testing.T) {
	r := gin.New()
	r.Use(RequireTokenCookie())
	r.GET("/api/settings/company", ok)
	r.GET("/api/auth/me", ok)
	r.GET("/ping", ok)

	t.Run("protected without cookie", func(t *testing.T) {
		w := do(r, http.MethodGet, "/api/settings/company", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"error":"Unauthorized"}`, w.Body.String())
	})

	t.Run("protected with any cookie passes", func(t *testing.T) {
		w := do(r, http.MethodGet, "/api/settings/company", "not-even-a-jwt")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("auth routes are public", func(t *testing.T) {
		w := do(r, http.MethodGet, "/api/auth/me", "")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("non api routes are public", func(t *testing.T) {
		w := do(r, http.MethodGet, "/ping", "")
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestAuthenticate(t *testing.T) {
	r := gin.New()
	r.GET("/me", Authenticate(authn, zap.NewNop()), func(c *gin.Context) {
		id, found := IdentityFrom(c)
		require.True(t, found)
		c.JSON(http.StatusOK, id)
	})

	w := do(r, http.MethodGet, "/me", "employer-token")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"e1","email":"boss@acme.com","role":"employer"}`, w.Body.String())

	for _, token := range []string{"", "forged"} {
		w := do(r, http.MethodGet, "/me", token)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "unauthorized", decode(t, w)["code"])
	}
}

func TestIdentify_NeverRejects(t *testing.T) {
	r := gin.New()
	r.GET("/access", Identify(authn), func(c *gin.Context) {
		_, found := IdentityFrom(c)
		c.JSON(http.StatusOK, gin.H{"found": found})
	})

	assert.JSONEq(t, `{"found":true}`, do(r, http.MethodGet, "/access", "worker-token").Body.String())
	assert.JSONEq(t, `{"found":false}`, do(r, http.MethodGet, "/access", "forged").Body.String())
	assert.JSONEq(t, `{"found":false}`, do(r, http.MethodGet, "/access", "").Body.String())
}

func TestRequireRole(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	r := gin.New()
	r.GET("/employer", Authenticate(authn, logger), RequireRole(models.RoleEmployer, logger), ok)
	r.GET("/open", Identify(authn), RequireRole(models.RoleEmployer, logger), ok)

	t.Run("employer allowed", func(t *testing.T) {
		w := do(r, http.MethodGet, "/employer", "employer-token")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("worker denied with distinct outcome", func(t *testing.T) {
		w := do(r, http.MethodGet, "/employer", "worker-token")
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.JSONEq(t,
			`{"error":"Access denied","code":"access_denied","redirect":"/access-denied"}`,
			w.Body.String())

		entries := logs.FilterMessage("Access denied").All()
		require.Len(t, entries, 1)
		assert.Equal(t, "w1", entries[0].ContextMap()["user_id"])
	})

	t.Run("unauthenticated is 401 not 403", func(t *testing.T) {
		w := do(r, http.MethodGet, "/open", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRecovery(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	r := gin.New()
	r.Use(Recovery(zap.New(core)))
	r.GET("/boom", func(*gin.Context) { panic("boom") })

	w := do(r, http.MethodGet, "/boom", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal server error","code":"internal"}`, w.Body.String())
	assert.Equal(t, 1, logs.FilterMessage("Recovered from panic").Len())
}

func TestRequestLogger_Levels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := gin.New()
	r.Use(RequestLogger(zap.New(core)))
	r.GET("/ok", ok)
	r.GET("/bad", func(c *gin.Context) { c.Status(http.StatusBadRequest) })
	r.GET("/fail", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	do(r, http.MethodGet, "/ok", "")
	do(r, http.MethodGet, "/bad", "")
	do(r, http.MethodGet, "/fail", "")

	all := logs.All()
	require.Len(t, all, 3)
	assert.Equal(t, zapcore.InfoLevel, all[0].Level)
	assert.Equal(t, zapcore.WarnLevel, all[1].Level)
	assert.Equal(t, zapcore.ErrorLevel, all[2].Level)
	assert.EqualValues(t, 400, all[1].ContextMap()["status"])
}
