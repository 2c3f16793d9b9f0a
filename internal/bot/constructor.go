package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"helpdesk/internal/graph"
	"helpdesk/internal/storage"
)

// NewBot creates a new Telegram bot
func NewBot(token string, tokens storage.TokenStore, desk HelpdeskAPI, mail MailAPI, oauth *graph.OAuth, supportEmail string, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		logger.Error("Failed to create bot API", zap.Error(err))
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	logger.Info("Bot created", zap.String("bot_username", api.Self.UserName))

	return &Bot{
		api:          api,
		tokens:       tokens,
		desk:         desk,
		mail:         mail,
		oauth:        oauth,
		drafts:       NewDraftStore(),
		msgRefs:      NewMessageRefs(),
		supportEmail: supportEmail,
		logger:       logger,
	}, nil
}

// GetAPI returns the bot API for testing
func (b *Bot) GetAPI() *tgbotapi.BotAPI {
	return b.api
}
