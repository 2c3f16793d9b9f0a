package bot

import (
	"context"
	"time"

	"go.uber.org/zap"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"helpdesk/internal/graph"
	"helpdesk/internal/models"
	"helpdesk/internal/storage"
)

// HelpdeskAPI is the subset of the helpdesk REST API the bot consumes.
type HelpdeskAPI interface {
	Instructions(ctx context.Context) ([]models.Instruction, error)
	Events(ctx context.Context) ([]models.Event, error)
	FAQs(ctx context.Context) ([]models.FAQ, error)
	Clubs(ctx context.Context) ([]models.Club, error)
	Contacts(ctx context.Context) ([]models.Contact, error)
	CreateMedicalRequest(ctx context.Context, userID int64, reason string, date time.Time) (int64, error)
	UploadMedicalFile(ctx context.Context, requestID int64, filename, mimeType string, data []byte) (string, error)
}

// MailAPI is the subset of the Graph mail API the bot consumes.
type MailAPI interface {
	Profile(ctx context.Context, token string) (graph.Profile, error)
	ListInbox(ctx context.Context, token string, top int) ([]graph.Message, error)
	GetMessage(ctx context.Context, token, id string) (graph.Message, error)
	SendMail(ctx context.Context, token, to, subject, body string) error
}

// Bot represents the Telegram bot wrapper
type Bot struct {
	api          *tgbotapi.BotAPI
	tokens       storage.TokenStore
	desk         HelpdeskAPI
	mail         MailAPI
	oauth        *graph.OAuth
	drafts       *DraftStore
	msgRefs      *MessageRefs
	supportEmail string
	logger       *zap.Logger
}
