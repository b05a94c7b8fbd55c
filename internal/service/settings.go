package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"zerobarrier/internal/models"
	"zerobarrier/internal/repository"
)

// CompanySettings is the flat view of an employer profile used by the
// settings page.
type CompanySettings struct {
	Name               string                `json:"name"`
	ContactPerson      string                `json:"contactPerson"`
	Email              string                `json:"email"`
	Phone              string                `json:"phone"`
	Address            models.Address        `json:"address"`
	Website            string                `json:"website"`
	GSTNumber          string                `json:"gstNumber"`
	PANNumber          string                `json:"panNumber"`
	Description        string                `json:"description"`
	EmployerType       models.EmployerType   `json:"employerType"`
	CompanyType        string                `json:"companyType"`
	Industry           string                `json:"industry"`
	CompanySize        models.CompanySize    `json:"companySize"`
	VerificationStatus models.DocumentStatus `json:"verificationStatus"`
	Logo               string                `json:"logo"`
}

// CompanyUpdate replaces the editable company fields. Empty optional fields
// are reset to their defaults.
type CompanyUpdate struct {
	Name          string
	ContactPerson string
	Email         string
	Phone         string
	Address       *models.Address
	Website       string
	GSTNumber     string
	PANNumber     string
	Description   string
	EmployerType  models.EmployerType
	CompanyType   string
	Industry      string
	CompanySize   models.CompanySize
}

// Settings is the whole settings page: company details plus notification
// settings and preferences, defaulted when never saved.
type Settings struct {
	Company       *CompanySettings            `json:"company"`
	Notifications models.NotificationSettings `json:"notifications"`
	Preferences   models.Preferences          `json:"preferences"`
}

// NotificationUpdate changes notification settings. Nil fields keep their
// current value.
type NotificationUpdate struct {
	NewApplications  *bool
	JobExpiry        *bool
	WorkerMessages   *bool
	SystemUpdates    *bool
	MarketingEmails  *bool
	SMSNotifications *bool
	EmailDigest      *models.EmailDigest
}

type SettingsService interface {
	Get(ctx context.Context, userID string) (*Settings, error)
	GetCompany(ctx context.Context, userID string) (*CompanySettings, error)
	UpdateCompany(ctx context.Context, userID string, in CompanyUpdate) (*CompanySettings, error)
	UpdateNotifications(ctx context.Context, userID string, in NotificationUpdate) (*models.NotificationSettings, error)
}

type settingsService struct {
	repo   repository.AccountRepository
	logger *zap.Logger
	now    func() time.Time
}

func NewSettingsService(repo repository.AccountRepository, logger *zap.Logger) SettingsService {
	return &settingsService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

func (s *settingsService) Get(ctx context.Context, userID string) (*Settings, error) {
	account, err := s.employer(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Settings{
		Company:       companyView(account),
		Notifications: account.NotificationsOrDefault(),
		Preferences:   account.PreferencesOrDefault(),
	}, nil
}

func (s *settingsService) GetCompany(ctx context.Context, userID string) (*CompanySettings, error) {
	account, err := s.employer(ctx, userID)
	if err != nil {
		return nil, err
	}
	return companyView(account), nil
}

func (s *settingsService) UpdateCompany(ctx context.Context, userID string, in CompanyUpdate) (*CompanySettings, error) {
	if blank(in.Name) || blank(in.ContactPerson) || blank(in.Email) {
		return nil, ErrMissingCompanyFields
	}
	if !validEmail(in.Email) {
		return nil, ErrInvalidEmail
	}
	if in.EmployerType == "" {
		in.EmployerType = models.EmployerTypeCompany
	} else if !in.EmployerType.Valid() {
		return nil, ErrInvalidEmployerType
	}
	if in.CompanySize == "" {
		in.CompanySize = models.CompanySize2To10
	} else if !in.CompanySize.Valid() {
		return nil, ErrInvalidCompanySize
	}
	if in.CompanyType == "" {
		in.CompanyType = "Private Limited"
	}
	if in.Industry == "" {
		in.Industry = "Other"
	}

	account, err := s.employer(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile := *account.Profile.Employer
	profile.CompanyName = in.Name
	profile.ContactPerson.Name = in.ContactPerson
	profile.ContactPerson.Phone = in.Phone
	profile.Address = models.Address{}
	if in.Address != nil {
		profile.Address = *in.Address
	}
	profile.Website = in.Website
	profile.Documents.GST = in.GSTNumber
	profile.Documents.PAN = in.PANNumber
	profile.Description = in.Description
	profile.EmployerType = in.EmployerType
	profile.CompanyType = in.CompanyType
	profile.Industry = in.Industry
	profile.CompanySize = in.CompanySize

	now := s.now().UTC()
	if err := s.repo.UpdateEmployerProfile(ctx, userID, in.Email, in.Phone, &profile, now); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateEmail):
			return nil, ErrEmailTaken
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrAccountNotFound
		}
		s.logger.Error("Failed to update company settings", zap.String("user_id", userID), zap.Error(err))
		return nil, ErrStoreUnavailable.WithCause(err)
	}

	account.Email = in.Email
	account.Phone = in.Phone
	account.Profile.Employer = &profile
	account.UpdatedAt = now

	s.logger.Info("Company settings updated", zap.String("user_id", userID))
	return companyView(account), nil
}

func (s *settingsService) UpdateNotifications(ctx context.Context, userID string, in NotificationUpdate) (*models.NotificationSettings, error) {
	if in.EmailDigest != nil && !in.EmailDigest.Valid() {
		return nil, ErrInvalidEmailDigest
	}

	account, err := s.employer(ctx, userID)
	if err != nil {
		return nil, err
	}

	settings := account.NotificationsOrDefault()
	setBool(&settings.NewApplications, in.NewApplications)
	setBool(&settings.JobExpiry, in.JobExpiry)
	setBool(&settings.WorkerMessages, in.WorkerMessages)
	setBool(&settings.SystemUpdates, in.SystemUpdates)
	setBool(&settings.MarketingEmails, in.MarketingEmails)
	setBool(&settings.SMSNotifications, in.SMSNotifications)
	if in.EmailDigest != nil {
		settings.EmailDigest = *in.EmailDigest
	}

	if err := s.repo.UpdateNotificationSettings(ctx, userID, settings, s.now().UTC()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		s.logger.Error("Failed to update notification settings", zap.String("user_id", userID), zap.Error(err))
		return nil, ErrStoreUnavailable.WithCause(err)
	}

	s.logger.Info("Notification settings updated", zap.String("user_id", userID))
	return &settings, nil
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func (s *settingsService) employer(ctx context.Context, userID string) (*models.Account, error) {
	account, err := loadAccount(ctx, s.repo, s.logger, userID)
	if err != nil {
		return nil, err
	}
	if account.Role != models.RoleEmployer {
		return nil, ErrAccessDenied
	}
	if account.Profile.Employer == nil {
		return nil, ErrEmployerProfileAbsent
	}
	return account, nil
}

func companyView(a *models.Account) *CompanySettings {
	p := a.Profile.Employer
	phone := p.ContactPerson.Phone
	if phone == "" {
		phone = a.Phone
	}
	return &CompanySettings{
		Name:               p.CompanyName,
		ContactPerson:      p.ContactPerson.Name,
		Email:              a.Email,
		Phone:              phone,
		Address:            p.Address,
		Website:            p.Website,
		GSTNumber:          p.Documents.GST,
		PANNumber:          p.Documents.PAN,
		Description:        p.Description,
		EmployerType:       p.EmployerType,
		CompanyType:        p.CompanyType,
		Industry:           p.Industry,
		CompanySize:        p.CompanySize,
		VerificationStatus: p.Documents.Status,
		Logo:               p.Logo,
	}
}
