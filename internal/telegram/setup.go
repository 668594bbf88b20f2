// Package telegram delivers messages through the Telegram Bot API.
package telegram

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-telegram/bot"
)

// defaultRequestTimeout matches the go-telegram/bot client default.
const defaultRequestTimeout = time.Minute

// NewTelegramBot creates a Bot API client for token using the go-telegram/bot library.
// The client never contacts Telegram during construction and treats every
// non-200 response as a failed request.
func NewTelegramBot(token, serverURL string, logger *slog.Logger, opts ...bot.Option) (*bot.Bot, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram bot token cannot be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "telegram_bot")

	botOpts := []bot.Option{
		bot.WithSkipGetMe(),
		bot.WithHTTPClient(defaultRequestTimeout, &statusClient{
			client: &http.Client{Timeout: defaultRequestTimeout},
		}),
	}
	if serverURL != "" {
		botOpts = append(botOpts, bot.WithServerURL(serverURL))
	}
	botOpts = append(botOpts, opts...)

	b, err := bot.New(token, botOpts...)
	if err != nil {
		log.Error("Failed to create Telegram bot instance", "error", err)
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	log.Info("Telegram bot instance created successfully", "token_prefix", MaskToken(token), "server_url", serverURL)
	return b, nil
}

// MaskToken returns a log-safe prefix of a bot token.
func MaskToken(token string) string {
	const visible = 8
	if len(token) <= visible {
		return "***"
	}
	return token[:visible] + "..."
}

// StatusError reports a Bot API response with a status other than 200.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("telegram api responded with status %d: %s", e.StatusCode, e.Body)
}

// statusClient rejects non-200 responses before go-telegram/bot decodes them,
// so delivery success is decided by the HTTP status alone.
type statusClient struct {
	client *http.Client
}

func (c *statusClient) Do(req *http.Request) (*http.Response, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		// url.Error carries the request URL, which embeds the bot token.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			return nil, fmt.Errorf("%s request failed: %w", urlErr.Op, urlErr.Err)
		}
		return nil, err
	}
	if resp.StatusCode == http.StatusOK {
		return resp, nil
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
}
