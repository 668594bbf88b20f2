package telegram

import (
	"context"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/tgrelay/internal/errors"
)

// Sender sends single text messages through a Bot API client.
// It is safe for concurrent use.
type Sender struct {
	bot    *bot.Bot
	logger *slog.Logger
}

// NewSender wraps an existing Bot API client.
func NewSender(b *bot.Bot, logger *slog.Logger) *Sender {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sender{
		bot:    b,
		logger: logger.With("component", "telegram_sender"),
	}
}

// SendMessage makes exactly one sendMessage call for recipientID.
// Any failure, whether a rejected request or a transport error, is returned
// as a SendError.
func (s *Sender) SendMessage(ctx context.Context, recipientID int64, text, parseMode string) error {
	// go-telegram/bot posts the parameters as multipart form fields, not JSON.
	_, err := s.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    recipientID,
		Text:      text,
		ParseMode: models.ParseMode(parseMode),
	})
	if err != nil {
		s.logger.DebugContext(ctx, "sendMessage failed", "chat_id", recipientID, "error", err)
		return errors.NewSendError(recipientID, err)
	}

	s.logger.DebugContext(ctx, "sendMessage succeeded", "chat_id", recipientID)
	return nil
}
