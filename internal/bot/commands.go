package bot

import (
	"context"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// handleStart greets the user, showing their mailbox identity when a valid
// credential exists
func (b *Bot) handleStart(ctx context.Context, message *tgbotapi.Message) {
	userID := message.From.ID
	chatID := message.Chat.ID

	token, err := b.tokens.GetToken(ctx, userID)
	if err != nil {
		b.reply(chatID, "Hi! To use the bot, please authorize first: /login")
		return
	}

	profile, err := b.mail.Profile(ctx, token)
	if err != nil || profile.EmailAddress() == "" {
		b.reply(chatID, "Could not fetch your email. Please authorize again: /login")
		return
	}

	email := profile.EmailAddress()
	b.reply(chatID, fmt.Sprintf("Welcome, %s!\nYour role: %s.", email, roleForEmail(email)))
}

// handleLogin sends the Microsoft authorization link
func (b *Bot) handleLogin(message *tgbotapi.Message) {
	state := strconv.FormatInt(message.From.ID, 10)
	authURL := b.oauth.AuthorizeURL(state)

	msg := tgbotapi.NewMessage(message.Chat.ID,
		fmt.Sprintf("To authorize, follow the link: [Sign in](%s)", authURL))
	msg.ParseMode = tgbotapi.ModeMarkdown
	b.sendMessage(msg)
}

// handleSendEmailStart opens an email-compose draft
func (b *Bot) handleSendEmailStart(ctx context.Context, message *tgbotapi.Message) {
	userID := message.From.ID
	chatID := message.Chat.ID

	if _, ok := b.requireToken(ctx, userID, chatID); !ok {
		return
	}

	b.drafts.Put(userID, EmailDraft{})
	b.reply(chatID, "Enter the recipient's email address:")
}

// handleInbox lists the five most recent inbox messages
func (b *Bot) handleInbox(ctx context.Context, message *tgbotapi.Message) {
	userID := message.From.ID
	chatID := message.Chat.ID

	token, ok := b.requireToken(ctx, userID, chatID)
	if !ok {
		return
	}

	messages, err := b.mail.ListInbox(ctx, token, 5)
	if err != nil {
		b.logger.Warn("Failed to fetch inbox", zap.Int64("user_id", userID), zap.Error(err))
		b.reply(chatID, "Failed to fetch your messages.")
		return
	}
	if len(messages) == 0 {
		b.reply(chatID, "Your inbox is empty.")
		return
	}

	b.replyHTML(chatID, formatInbox(messages))
}

// handleReplyInboxStart lists recent messages as inline buttons. Short ids
// stand in for the full Graph ids in the callback payload; the previous map
// for the user is replaced wholesale.
func (b *Bot) handleReplyInboxStart(ctx context.Context, message *tgbotapi.Message) {
	userID := message.From.ID
	chatID := message.Chat.ID

	token, ok := b.requireToken(ctx, userID, chatID)
	if !ok {
		return
	}

	messages, err := b.mail.ListInbox(ctx, token, 5)
	if err != nil {
		b.logger.Warn("Failed to fetch inbox", zap.Int64("user_id", userID), zap.Error(err))
		b.reply(chatID, "Failed to fetch your messages.")
		return
	}
	if len(messages) == 0 {
		b.reply(chatID, "No messages to reply to.")
		return
	}

	refs := make(map[string]string, len(messages))
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, m := range messages {
		short := uuid.NewString()[:8]
		refs[short] = m.ID

		subject := m.Subject
		if subject == "" {
			subject = "(no subject)"
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(subject, "reply_"+short),
		))
	}
	b.msgRefs.Replace(userID, refs)

	msg := tgbotapi.NewMessage(chatID, "📥 Choose a message to reply to:")
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	b.sendMessage(msg)
}

// handleInstructions shows the instruction topics as inline buttons
func (b *Bot) handleInstructions(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID

	instructions, err := b.desk.Instructions(ctx)
	if err != nil {
		b.logger.Warn("Failed to fetch instructions", zap.Error(err))
		b.reply(chatID, "Failed to fetch instructions.")
		return
	}
	if len(instructions) == 0 {
		b.reply(chatID, "No instructions found.")
		return
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, instr := range instructions {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(instr.TitleRU, fmt.Sprintf("instr_%d", instr.ID)),
		))
	}

	msg := tgbotapi.NewMessage(chatID, "📘 Choose an instruction topic:")
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	b.sendMessage(msg)
}

// handleEvents lists upcoming events grouped per locale
func (b *Bot) handleEvents(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID

	events, err := b.desk.Events(ctx)
	if err != nil {
		b.logger.Warn("Failed to fetch events", zap.Error(err))
		b.reply(chatID, "Failed to fetch data from the API.")
		return
	}
	if len(events) == 0 {
		b.reply(chatID, "No events found.")
		return
	}

	b.replyHTML(chatID, formatEvents(events))
}

// handleFAQs lists FAQ entries grouped per locale
func (b *Bot) handleFAQs(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID

	faqs, err := b.desk.FAQs(ctx)
	if err != nil {
		b.logger.Warn("Failed to fetch FAQs", zap.Error(err))
		b.reply(chatID, "Failed to fetch data from the API.")
		return
	}
	if len(faqs) == 0 {
		b.reply(chatID, "No questions and answers found.")
		return
	}

	b.replyHTML(chatID, formatFAQs(faqs))
}

// handleClubs lists student clubs
func (b *Bot) handleClubs(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID

	clubs, err := b.desk.Clubs(ctx)
	if err != nil {
		b.logger.Warn("Failed to fetch clubs", zap.Error(err))
		b.reply(chatID, "Failed to fetch clubs from the API.")
		return
	}
	if len(clubs) == 0 {
		b.reply(chatID, "No clubs found.")
		return
	}

	b.replyHTML(chatID, formatClubs(clubs))
}

// handleContacts lists department contacts
func (b *Bot) handleContacts(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID

	contacts, err := b.desk.Contacts(ctx)
	if err != nil {
		b.logger.Warn("Failed to fetch contacts", zap.Error(err))
		b.reply(chatID, "Failed to fetch contacts from the API.")
		return
	}
	if len(contacts) == 0 {
		b.reply(chatID, "No contacts found.")
		return
	}

	b.replyHTML(chatID, formatContacts(contacts))
}

// handleMedicalStart opens a medical-request draft
func (b *Bot) handleMedicalStart(message *tgbotapi.Message) {
	b.drafts.Put(message.From.ID, MedicalDraft{})
	b.reply(message.Chat.ID, "📝 Enter the reason for your medical office visit:")
}

// handleMedFileStart opens a file-upload draft
func (b *Bot) handleMedFileStart(message *tgbotapi.Message) {
	b.drafts.Put(message.From.ID, FileDraft{})
	b.reply(message.Chat.ID, "📎 Please send a photo or PDF of your medical certificate.")
}

// handleSupportStart opens a support draft
func (b *Bot) handleSupportStart(ctx context.Context, message *tgbotapi.Message) {
	userID := message.From.ID
	chatID := message.Chat.ID

	if _, ok := b.requireToken(ctx, userID, chatID); !ok {
		return
	}

	b.drafts.Put(userID, SupportDraft{})
	b.reply(chatID, "✍️ Please enter your message for technical support:")
}

// handleIDCardStart opens an ID-card draft
func (b *Bot) handleIDCardStart(ctx context.Context, message *tgbotapi.Message) {
	userID := message.From.ID
	chatID := message.Chat.ID

	if _, ok := b.requireToken(ctx, userID, chatID); !ok {
		return
	}

	b.drafts.Put(userID, IDCardDraft{})
	b.reply(chatID, "🪪 Please describe your ID-card issue (lost card, replacement request, etc.):")
}
