package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// handleCallbackQuery processes inline keyboard button clicks
func (b *Bot) handleCallbackQuery(query *tgbotapi.CallbackQuery) {
	// Recover from panics
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Recovered from panic in handleCallbackQuery", zap.Any("panic", r))
		}
	}()

	ctx := context.Background()

	// Answer the callback query to remove the loading state
	if b.api != nil {
		b.api.Request(tgbotapi.NewCallback(query.ID, ""))
	}

	data := query.Data
	switch {
	case strings.HasPrefix(data, "instr_"):
		b.handleInstructionCallback(ctx, query)
	case strings.HasPrefix(data, "reply_"):
		b.handleReplyCallback(ctx, query)
	}
}

// handleInstructionCallback shows the chosen instruction, as a bare link when
// the body is one
func (b *Bot) handleInstructionCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	chatID := query.Message.Chat.ID

	id, err := strconv.Atoi(strings.TrimPrefix(query.Data, "instr_"))
	if err != nil {
		b.reply(chatID, "Instruction not found.")
		return
	}

	instructions, err := b.desk.Instructions(ctx)
	if err != nil {
		b.logger.Warn("Failed to fetch instructions", zap.Error(err))
		b.reply(chatID, "Failed to fetch the instruction.")
		return
	}

	for _, instr := range instructions {
		if instr.ID != id {
			continue
		}
		if strings.Contains(instr.TextRU, "http") || strings.Contains(instr.TextRU, "www.") {
			b.reply(chatID, fmt.Sprintf("🔗 Link: %s", instr.TextRU))
		} else {
			b.replyHTML(chatID, fmt.Sprintf("<b>%s</b>\n\n%s", instr.TitleRU, instr.TextRU))
		}
		return
	}

	b.reply(chatID, "Instruction not found.")
}

// handleReplyCallback resolves the selected message's sender and opens a
// reply draft for it
func (b *Bot) handleReplyCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	userID := query.From.ID
	chatID := query.Message.Chat.ID
	short := strings.TrimPrefix(query.Data, "reply_")

	fullID, ok := b.msgRefs.Resolve(userID, short)
	if !ok {
		b.reply(chatID, "❌ Expired or message not found.")
		return
	}

	token, ok := b.requireToken(ctx, userID, chatID)
	if !ok {
		return
	}

	message, err := b.mail.GetMessage(ctx, token, fullID)
	if err != nil {
		b.logger.Warn("Failed to fetch message",
			zap.Int64("user_id", userID),
			zap.String("message_id", fullID),
			zap.Error(err))
		b.reply(chatID, "Failed to fetch the message.")
		return
	}

	sender := message.Sender()
	if sender == "" {
		b.reply(chatID, "Could not determine the sender.")
		return
	}

	b.drafts.Put(userID, ReplyDraft{MessageID: fullID, ToEmail: sender})
	b.reply(chatID, fmt.Sprintf("✉️ Enter your reply for %s:", sender))
}
