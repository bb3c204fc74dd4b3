package services

import (
	"context"
	"time"

	"github.com/bp848/mqdriven-sub001/internal/core/domain"
)

// Mailer transports a rendered message. Implementations decide how.
type Mailer interface {
	Send(ctx context.Context, recipients []string, subject, body string) (messageID string, sentAt time.Time, err error)
}

// NotificationSvc dispatches transition notifications. Dispatch is best effort:
// failures are logged by the implementation and never returned.
type NotificationSvc interface {
	Notify(ctx context.Context, req domain.NotificationRequest)
}
