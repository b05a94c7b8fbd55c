package notifier

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Sender is the part of tgbotapi.BotAPI the notifier uses.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier posts verification tokens to an operator chat.
type TelegramNotifier struct {
	api    Sender
	chatID int64
	logger *zap.Logger
}

// NewTelegramNotifier authorizes the bot token with the Telegram API.
func NewTelegramNotifier(botToken string, chatID int64, logger *zap.Logger) (*TelegramNotifier, error) {
	botAPI, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot API: %w", err)
	}

	logger.Info("Telegram bot authorized", zap.String("username", botAPI.Self.UserName))

	return NewTelegramNotifierWithSender(botAPI, chatID, logger), nil
}

func NewTelegramNotifierWithSender(api Sender, chatID int64, logger *zap.Logger) *TelegramNotifier {
	return &TelegramNotifier{api: api, chatID: chatID, logger: logger}
}

func (n *TelegramNotifier) SendVerification(ctx context.Context, email, token string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	text := fmt.Sprintf(
		"New employer signup\n\nEmail: %s\nVerification token: %s\n\n"+
			"Send the token to the account owner. They confirm it at POST /api/auth/verify.",
		email, token,
	)

	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.DisableWebPagePreview = true

	if _, err := n.api.Send(msg); err != nil {
		n.logger.Error("Failed to send verification notification", zap.String("email", email), zap.Error(err))
		return fmt.Errorf("send telegram message: %w", err)
	}

	n.logger.Info("Verification notification sent", zap.String("email", email), zap.Int64("chat_id", n.chatID))
	return nil
}
