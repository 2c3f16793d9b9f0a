package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const (
	emailSubject   = "Message from the Telegram bot"
	supportSubject = "Support request via Telegram"
	idCardSubject  = "ID-card request via Telegram"
	replySubject   = "Reply from the Telegram bot"

	medicalDateLayout = "2006-01-02 15:04"
)

// sendEmailAs sends an email on behalf of the user, looking up their token
func (b *Bot) sendEmailAs(ctx context.Context, userID int64, to, subject, body string) error {
	token, err := b.tokens.GetToken(ctx, userID)
	if err != nil {
		return fmt.Errorf("no usable credential: %w", err)
	}
	return b.mail.SendMail(ctx, token, to, subject, body)
}

// handleDraftText advances the user's open draft with one text input. Each
// flow collects its fields in a fixed order and fires a single terminal
// action once complete; the draft is removed when that action is dispatched,
// whether or not the upstream call succeeded.
func (b *Bot) handleDraftText(ctx context.Context, message *tgbotapi.Message, draft Draft) {
	userID := message.From.ID
	chatID := message.Chat.ID
	text := message.Text

	switch d := draft.(type) {
	case SupportDraft:
		err := b.sendEmailAs(ctx, userID, b.supportEmail, supportSubject, text)
		b.drafts.Delete(userID, KindSupport)
		if err != nil {
			b.logger.Warn("Support email failed", zap.Int64("user_id", userID), zap.Error(err))
			b.reply(chatID, "❌ Failed to send your message. Please try again later.")
			return
		}
		b.reply(chatID, "✅ Your message has been sent to technical support!")

	case IDCardDraft:
		err := b.sendEmailAs(ctx, userID, b.supportEmail, idCardSubject, text)
		b.drafts.Delete(userID, KindIDCard)
		if err != nil {
			b.logger.Warn("ID-card email failed", zap.Int64("user_id", userID), zap.Error(err))
			b.reply(chatID, "❌ Failed to send your message. Please try again later.")
			return
		}
		b.reply(chatID, "✅ Your ID-card request has been sent to the responsible department!")

	case ReplyDraft:
		err := b.sendEmailAs(ctx, userID, d.ToEmail, replySubject, text)
		b.drafts.Delete(userID, KindReply)
		if err != nil {
			b.logger.Warn("Reply email failed", zap.Int64("user_id", userID), zap.Error(err))
			b.reply(chatID, "❌ Failed to send the reply.")
			return
		}
		b.reply(chatID, fmt.Sprintf("✅ Reply sent to %s.", d.ToEmail))

	case EmailDraft:
		if d.Recipient == "" {
			d.Recipient = text
			b.drafts.Put(userID, d)
			b.reply(chatID, "Now enter the message text:")
			return
		}

		err := b.sendEmailAs(ctx, userID, d.Recipient, emailSubject, text)
		b.drafts.Delete(userID, KindEmail)
		if err != nil {
			b.logger.Warn("Email send failed", zap.Int64("user_id", userID), zap.Error(err))
			b.reply(chatID, "Failed to send the email. Please try again later.")
			return
		}
		b.reply(chatID, fmt.Sprintf("Email sent to %s!", d.Recipient))

	case MedicalDraft:
		if d.Reason == "" {
			d.Reason = text
			b.drafts.Put(userID, d)
			b.reply(chatID, "📅 Enter the appointment date and time as YYYY-MM-DD HH:MM")
			return
		}

		date, err := time.Parse(medicalDateLayout, strings.TrimSpace(text))
		if err != nil {
			// Recoverable: the reason and the draft survive a bad date
			b.reply(chatID, "❗ Invalid format. Try again (example: 2025-05-18 14:30)")
			return
		}

		_, err = b.desk.CreateMedicalRequest(ctx, userID, d.Reason, date)
		b.drafts.Delete(userID, KindMedical)
		if err != nil {
			b.logger.Warn("Medical request failed", zap.Int64("user_id", userID), zap.Error(err))
			b.reply(chatID, "❌ Failed to create the request. Please try again later.")
			return
		}
		b.reply(chatID, "✅ Your medical office request has been filed. Await confirmation.")
	}
}

// handleMedicalFile fires the file-upload draft's terminal action: create a
// medical request, then attach the received file to it
func (b *Bot) handleMedicalFile(ctx context.Context, message *tgbotapi.Message) {
	userID := message.From.ID
	chatID := message.Chat.ID

	// The draft is consumed by this single attachment, whatever happens next
	defer b.drafts.Delete(userID, KindFile)

	fileID, filename, mimeType, ok := attachmentInfo(message)
	if !ok {
		b.reply(chatID, "Please send a document or a photo.")
		return
	}

	data, err := b.downloadFile(ctx, fileID)
	if err != nil {
		b.logger.Warn("File download failed", zap.Int64("user_id", userID), zap.Error(err))
		b.reply(chatID, "⚠️ Failed to read the attached file.")
		return
	}

	requestID, err := b.desk.CreateMedicalRequest(ctx, userID,
		"Medical certificate submitted via Telegram", time.Now().UTC())
	if err != nil {
		b.logger.Warn("Medical request failed", zap.Int64("user_id", userID), zap.Error(err))
		b.reply(chatID, "❌ Failed to create the request.")
		return
	}

	if _, err := b.desk.UploadMedicalFile(ctx, requestID, filename, mimeType, data); err != nil {
		b.logger.Warn("File upload failed",
			zap.Int64("user_id", userID),
			zap.Int64("request_id", requestID),
			zap.Error(err))
		b.reply(chatID, "⚠️ Failed to upload the file.")
		return
	}

	b.reply(chatID, "✅ Your medical certificate has been sent to the dean's office.")
}

// attachmentInfo extracts the file id, name, and MIME type from a message.
// Photos come in several sizes; the largest is last.
func attachmentInfo(message *tgbotapi.Message) (fileID, filename, mimeType string, ok bool) {
	if message.Document != nil {
		doc := message.Document
		name := doc.FileName
		if name == "" {
			name = doc.FileID
		}
		mime := doc.MimeType
		if mime == "" {
			mime = "application/octet-stream"
		}
		return doc.FileID, name, mime, true
	}

	if len(message.Photo) > 0 {
		photo := message.Photo[len(message.Photo)-1]
		return photo.FileID, photo.FileID + ".jpg", "image/jpeg", true
	}

	return "", "", "", false
}
