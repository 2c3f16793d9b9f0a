package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"helpdesk/internal/storage"
)

// sendMessage sends a prepared message, logging delivery failures
func (b *Bot) sendMessage(msg tgbotapi.Chattable) {
	if b.api == nil {
		return // For testing
	}

	if _, err := b.api.Send(msg); err != nil {
		b.logger.Warn("Failed to send message", zap.Error(err))
	}
}

// reply sends a plain-text message to the chat
func (b *Bot) reply(chatID int64, text string) {
	b.sendMessage(tgbotapi.NewMessage(chatID, text))
}

// replyHTML sends an HTML-formatted message to the chat
func (b *Bot) replyHTML(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	b.sendMessage(msg)
}

// requireToken looks up the user's credential and redirects to /login when it
// is absent or expired. Returns the token and whether the caller may proceed.
func (b *Bot) requireToken(ctx context.Context, userID, chatID int64) (string, bool) {
	token, err := b.tokens.GetToken(ctx, userID)
	if errors.Is(err, storage.ErrTokenNotFound) {
		b.reply(chatID, "You are not authorized! Use /login.")
		return "", false
	}
	if err != nil {
		b.logger.Error("Token lookup failed", zap.Int64("user_id", userID), zap.Error(err))
		b.reply(chatID, "Something went wrong. Please try again later.")
		return "", false
	}
	return token, true
}

// downloadFile fetches the raw bytes of a Telegram file by its file id
func (b *Bot) downloadFile(ctx context.Context, fileID string) ([]byte, error) {
	if b.api == nil {
		return nil, fmt.Errorf("bot API not available")
	}

	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve file: %w", err)
	}

	url := file.Link(b.api.Token)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d downloading file", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}
