package models

// EmailDigest is how often an employer receives the summary email.
type EmailDigest string

const (
	DigestRealtime EmailDigest = "realtime"
	DigestDaily    EmailDigest = "daily"
	DigestWeekly   EmailDigest = "weekly"
	DigestNever    EmailDigest = "never"
)

func (d EmailDigest) Valid() bool {
	switch d {
	case DigestRealtime, DigestDaily, DigestWeekly, DigestNever:
		return true
	}
	return false
}

// NotificationSettings are the employer's delivery choices.
type NotificationSettings struct {
	NewApplications  bool        `json:"newApplications" bson:"new_applications"`
	JobExpiry        bool        `json:"jobExpiry" bson:"job_expiry"`
	WorkerMessages   bool        `json:"workerMessages" bson:"worker_messages"`
	SystemUpdates    bool        `json:"systemUpdates" bson:"system_updates"`
	MarketingEmails  bool        `json:"marketingEmails" bson:"marketing_emails"`
	SMSNotifications bool        `json:"smsNotifications" bson:"sms_notifications"`
	EmailDigest      EmailDigest `json:"emailDigest" bson:"email_digest"`
}

func DefaultNotificationSettings() NotificationSettings {
	return NotificationSettings{
		NewApplications:  true,
		JobExpiry:        true,
		WorkerMessages:   true,
		SMSNotifications: true,
		EmailDigest:      DigestDaily,
	}
}

// Preferences are display and tooling preferences of the dashboard.
type Preferences struct {
	Language       string `json:"language" bson:"language"`
	Timezone       string `json:"timezone" bson:"timezone"`
	Currency       string `json:"currency" bson:"currency"`
	AutoTranslate  bool   `json:"autoTranslate" bson:"auto_translate"`
	AISuggestions  bool   `json:"aiSuggestions" bson:"ai_suggestions"`
	BulkOperations bool   `json:"bulkOperations" bson:"bulk_operations"`
}

func DefaultPreferences() Preferences {
	return Preferences{
		Language:       "english",
		Timezone:       "asia/kolkata",
		Currency:       "inr",
		AutoTranslate:  true,
		AISuggestions:  true,
		BulkOperations: true,
	}
}

// NotificationsOrDefault returns the stored notification settings, or the
// defaults when the account never saved any.
func (a *Account) NotificationsOrDefault() NotificationSettings {
	if a.Notifications != nil {
		return *a.Notifications
	}
	return DefaultNotificationSettings()
}

func (a *Account) PreferencesOrDefault() Preferences {
	if a.Preferences != nil {
		return *a.Preferences
	}
	return DefaultPreferences()
}
