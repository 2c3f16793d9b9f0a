package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// handleMessage dispatches a single inbound message. Resolution order:
// attachment with an open file draft, then commands, then the
// highest-priority open draft, otherwise the message is dropped.
func (b *Bot) handleMessage(message *tgbotapi.Message) {
	// Recover from panics to prevent bot crashes
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Recovered from panic in handleMessage", zap.Any("panic", r))
			b.reply(message.Chat.ID, "An error occurred while processing your request. Please try again.")
		}
	}()

	userID := message.From.ID
	ctx := context.Background()

	if message.Document != nil || len(message.Photo) > 0 {
		if _, ok := b.drafts.Get(userID, KindFile); ok {
			b.handleMedicalFile(ctx, message)
		}
		// No open file draft: the attachment is not part of any flow
		return
	}

	if message.IsCommand() {
		b.handleCommand(ctx, message)
		return
	}

	if draft, ok := b.drafts.FirstOpen(userID); ok {
		b.handleDraftText(ctx, message, draft)
		return
	}

	// Free text with no open draft is ignored
}

// handleCommand routes a command to its start handler. Starting a flow
// replaces any same-kind draft the user already had open.
func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	switch message.Command() {
	case "start":
		b.handleStart(ctx, message)
	case "login":
		b.handleLogin(message)
	case "sendemail":
		b.handleSendEmailStart(ctx, message)
	case "inbox":
		b.handleInbox(ctx, message)
	case "replyinbox":
		b.handleReplyInboxStart(ctx, message)
	case "instructions":
		b.handleInstructions(ctx, message)
	case "events":
		b.handleEvents(ctx, message)
	case "faqs":
		b.handleFAQs(ctx, message)
	case "clubs":
		b.handleClubs(ctx, message)
	case "contacts":
		b.handleContacts(ctx, message)
	case "medical":
		b.handleMedicalStart(message)
	case "medfile":
		b.handleMedFileStart(message)
	case "support":
		b.handleSupportStart(ctx, message)
	case "idcard":
		b.handleIDCardStart(ctx, message)
	default:
		b.reply(message.Chat.ID, "Unknown command. Use /start to see available commands.")
	}
}
