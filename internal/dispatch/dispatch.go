// Package dispatch relays one message to a list of recipients, one at a time,
// and records which deliveries succeeded.
package dispatch

import (
	"context"
	"log/slog"
	"time"

	"github.com/edgard/tgrelay/internal/logger"
)

// DefaultFormatMode is applied when a request does not name a format mode.
const DefaultFormatMode = "MarkdownV2"

// MessageSender delivers a single message to a single recipient.
type MessageSender interface {
	SendMessage(ctx context.Context, recipientID int64, text, formatMode string) error
}

// Request is one relay request.
type Request struct {
	Message    string
	FormatMode string
	Recipients []int64
}

// Result holds per-recipient outcomes in the order they were attempted.
type Result struct {
	Successful []int64
	Failed     []int64
}

// Dispatcher sends a message to every recipient of a Request in order.
type Dispatcher struct {
	sender MessageSender
	logger *slog.Logger
}

// NewDispatcher creates a Dispatcher that delivers through sender.
func NewDispatcher(sender MessageSender, log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{
		sender: sender,
		logger: log.With("component", "dispatcher"),
	}
}

// Dispatch attempts delivery to each recipient sequentially, waiting for each
// call to finish before starting the next. It never fails as a whole: a
// recipient whose delivery fails is recorded in Result.Failed and dispatch
// continues with the next one. Duplicate recipients are attempted once per
// occurrence.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) Result {
	formatMode := req.FormatMode
	if formatMode == "" {
		formatMode = DefaultFormatMode
	}

	result := Result{
		Successful: make([]int64, 0, len(req.Recipients)),
		Failed:     make([]int64, 0),
	}

	log := d.logger.With(
		"recipients", len(req.Recipients),
		"format_mode", formatMode,
		"text_preview", logger.TruncateString(req.Message, 50),
	)
	log.DebugContext(ctx, "Dispatching message")
	startTime := time.Now()

	for _, recipientID := range req.Recipients {
		if err := d.sender.SendMessage(ctx, recipientID, req.Message, formatMode); err != nil {
			log.WarnContext(ctx, "Failed to deliver message", "recipient_id", recipientID, "error", err)
			result.Failed = append(result.Failed, recipientID)
			continue
		}
		result.Successful = append(result.Successful, recipientID)
	}

	log.InfoContext(ctx, "Dispatch finished",
		"successful", len(result.Successful),
		"failed", len(result.Failed),
		"duration", time.Since(startTime))

	return result
}
