package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"zerobarrier/internal/config"
	"zerobarrier/internal/handler"
	"zerobarrier/internal/middleware"
	"zerobarrier/internal/models"
	"zerobarrier/internal/repository"
	"zerobarrier/internal/service"
)

const shutdownTimeout = 5 * time.Second

// Deps are the collaborators the HTTP layer is built from.
type Deps struct {
	Config   *config.Config
	Repo     repository.AccountRepository
	Auth     service.AuthService
	Settings service.SettingsService
	Logger   *zap.Logger
}

type Server struct {
	router *gin.Engine
	cfg    *config.Config
	repo   repository.AccountRepository
	log    *zap.Logger
}

func NewServer(deps Deps) *Server {
	if deps.Config.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.Recovery(deps.Logger), middleware.RequestLogger(deps.Logger))
	if len(deps.Config.Server.AllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     deps.Config.Server.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	router.Use(middleware.RequireTokenCookie())

	s := &Server{
		router: router,
		cfg:    deps.Config,
		repo:   deps.Repo,
		log:    deps.Logger,
	}
	s.setupRoutes(deps)
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) setupRoutes(deps Deps) {
	authHandler := handler.NewAuthHandler(deps.Auth, deps.Config.Production(), s.log)
	settingsHandler := handler.NewSettingsHandler(deps.Settings, s.log)

	authenticated := middleware.Authenticate(deps.Auth, s.log)
	employerOnly := middleware.RequireRole(models.RoleEmployer, s.log)

	// Ping route for health check
	s.router.GET("/ping", func(c *gin.Context) {
		if err := s.repo.Ping(c.Request.Context()); err != nil {
			s.log.Error("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"message": "database unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Authentication routes
	authGroup := s.router.Group("/api/auth")
	authGroup.POST("/signup", authHandler.Signup)
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/logout", authHandler.Logout)
	authGroup.POST("/verify", authHandler.Verify)
	authGroup.GET("/access", middleware.Identify(deps.Auth), authHandler.Access)
	authGroup.GET("/me", authenticated, authHandler.Me)
	authGroup.PUT("/change-password", authenticated, authHandler.ChangePassword)

	// Employer routes
	settingsGroup := s.router.Group("/api/settings", authenticated, employerOnly)
	settingsGroup.GET("", settingsHandler.Get)
	settingsGroup.GET("/company", settingsHandler.GetCompany)
	settingsGroup.PUT("/company", settingsHandler.UpdateCompany)
	settingsGroup.PUT("/notifications", settingsHandler.UpdateNotifications)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + s.cfg.Server.Port,
		Handler:           s.router,
		ReadHeaderTimeout: s.cfg.Server.ReadHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Server starting", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.log.Info("Server exited")
	return nil
}
