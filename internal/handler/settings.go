package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"zerobarrier/internal/middleware"
	"zerobarrier/internal/models"
	"zerobarrier/internal/service"
)

type SettingsHandler interface {
	Get(c *gin.Context)
	GetCompany(c *gin.Context)
	UpdateCompany(c *gin.Context)
	UpdateNotifications(c *gin.Context)
}

type settingsHandler struct {
	settings service.SettingsService
	logger   *zap.Logger
}

func NewSettingsHandler(settings service.SettingsService, logger *zap.Logger) SettingsHandler {
	return &settingsHandler{settings: settings, logger: logger}
}

// UpdateCompanyRequest represents the company settings update request
type UpdateCompanyRequest struct {
	Name          string              `json:"name"`
	ContactPerson string              `json:"contactPerson"`
	Email         string              `json:"email"`
	Phone         string              `json:"phone"`
	Address       *models.Address     `json:"address"`
	Website       string              `json:"website"`
	GSTNumber     string              `json:"gstNumber"`
	PANNumber     string              `json:"panNumber"`
	Description   string              `json:"description"`
	EmployerType  models.EmployerType `json:"employerType"`
	CompanyType   string              `json:"companyType"`
	Industry      string              `json:"industry"`
	CompanySize   models.CompanySize  `json:"companySize"`
}

// UpdateNotificationsRequest holds the notification switches. Omitted fields
// are left unchanged.
type UpdateNotificationsRequest struct {
	NewApplications  *bool               `json:"newApplications"`
	JobExpiry        *bool               `json:"jobExpiry"`
	WorkerMessages   *bool               `json:"workerMessages"`
	SystemUpdates    *bool               `json:"systemUpdates"`
	MarketingEmails  *bool               `json:"marketingEmails"`
	SMSNotifications *bool               `json:"smsNotifications"`
	EmailDigest      *models.EmailDigest `json:"emailDigest"`
}

// Get handles GET /api/settings
func (h *settingsHandler) Get(c *gin.Context) {
	identity, _ := middleware.IdentityFrom(c)

	settings, err := h.settings.Get(c.Request.Context(), identity.UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// GetCompany handles GET /api/settings/company
func (h *settingsHandler) GetCompany(c *gin.Context) {
	identity, _ := middleware.IdentityFrom(c)

	company, err := h.settings.GetCompany(c.Request.Context(), identity.UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"company": company})
}

// UpdateCompany handles PUT /api/settings/company
func (h *settingsHandler) UpdateCompany(c *gin.Context) {
	identity, _ := middleware.IdentityFrom(c)

	var req UpdateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("Failed to bind company settings request", zap.Error(err))
		respondError(c, h.logger, errMalformedJSON)
		return
	}

	company, err := h.settings.UpdateCompany(c.Request.Context(), identity.UserID, service.CompanyUpdate{
		Name:          req.Name,
		ContactPerson: req.ContactPerson,
		Email:         req.Email,
		Phone:         req.Phone,
		Address:       req.Address,
		Website:       req.Website,
		GSTNumber:     req.GSTNumber,
		PANNumber:     req.PANNumber,
		Description:   req.Description,
		EmployerType:  req.EmployerType,
		CompanyType:   req.CompanyType,
		Industry:      req.Industry,
		CompanySize:   req.CompanySize,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "company": company})
}

// UpdateNotifications handles PUT /api/settings/notifications
func (h *settingsHandler) UpdateNotifications(c *gin.Context) {
	identity, _ := middleware.IdentityFrom(c)

	var req UpdateNotificationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("Failed to bind notification settings request", zap.Error(err))
		respondError(c, h.logger, errMalformedJSON)
		return
	}

	notifications, err := h.settings.UpdateNotifications(c.Request.Context(), identity.UserID, service.NotificationUpdate{
		NewApplications:  req.NewApplications,
		JobExpiry:        req.JobExpiry,
		WorkerMessages:   req.WorkerMessages,
		SystemUpdates:    req.SystemUpdates,
		MarketingEmails:  req.MarketingEmails,
		SMSNotifications: req.SMSNotifications,
		EmailDigest:      req.EmailDigest,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "notifications": notifications})
}
