// Package mailer provides message transports for notifications.
package mailer

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bp848/mqdriven-sub001/internal/middleware"
)

// LogMailer writes messages to the request logger instead of delivering them.
type LogMailer struct {
	now func() time.Time
}

// NewLogMailer creates a LogMailer.
func NewLogMailer() *LogMailer {
	return &LogMailer{now: time.Now}
}

// Send implements the notification Mailer port.
func (m *LogMailer) Send(ctx context.Context, recipients []string, subject, body string) (string, time.Time, error) {
	if err := ctx.Err(); err != nil {
		return "", time.Time{}, err
	}
	messageID := "log-" + uuid.NewString()
	sentAt := m.now().UTC()
	middleware.GetLoggerFromCtx(ctx).Info("Notification mail",
		slog.String("message_id", messageID),
		slog.String("to", strings.Join(recipients, ",")),
		slog.String("subject", subject),
		slog.Int("body_bytes", len(body)))
	return messageID, sentAt, nil
}
