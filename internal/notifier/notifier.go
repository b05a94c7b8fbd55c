// Package notifier delivers account verification tokens out of band.
package notifier

import (
	"context"

	"go.uber.org/zap"

	"zerobarrier/internal/config"
)

// Notifier sends a freshly generated verification token to whoever is
// expected to pass it on to the account owner.
type Notifier interface {
	SendVerification(ctx context.Context, email, token string) error
}

// LogNotifier writes the token to the log. Development only.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) SendVerification(_ context.Context, email, token string) error {
	n.logger.Info("Verification token generated",
		zap.String("email", email),
		zap.String("token", token),
	)
	return nil
}

// New returns the telegram notifier when it is enabled and the log notifier
// otherwise.
func New(cfg config.Telegram, logger *zap.Logger) (Notifier, error) {
	if !cfg.Enabled {
		logger.Info("Telegram notifier is disabled, verification tokens go to the log")
		return NewLogNotifier(logger), nil
	}
	return NewTelegramNotifier(cfg.BotToken, cfg.ChatID, logger)
}
