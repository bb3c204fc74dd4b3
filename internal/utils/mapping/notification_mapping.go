package mapping

import (
	"github.com/bp848/mqdriven-sub001/internal/core/domain"
	portsrepo "github.com/bp848/mqdriven-sub001/internal/core/ports/repositories"
)

// ToRowNotificationEmail converts an audit record to an application_notification_emails row
func ToRowNotificationEmail(d domain.ApplicationNotificationEmail) portsrepo.Row {
	return portsrepo.Row{
		"id":             d.ID,
		"application_id": d.ApplicationID,
		"audience":       string(d.Audience),
		"recipients":     d.Recipients,
		"subject":        d.Subject,
		"body":           d.Body,
		"status_at_send": string(d.StatusAtSend),
		"message_id":     d.MessageID,
		"sent_at":        d.SentAt,
	}
}

// ToDomainNotificationEmail converts an application_notification_emails row
func ToDomainNotificationEmail(r portsrepo.Row) domain.ApplicationNotificationEmail {
	return domain.ApplicationNotificationEmail{
		ID:            str(r, "id"),
		ApplicationID: str(r, "application_id"),
		Audience:      domain.NotificationAudience(str(r, "audience")),
		Recipients:    stringList(r, "recipients"),
		Subject:       str(r, "subject"),
		Body:          str(r, "body"),
		StatusAtSend:  domain.ApplicationStatus(str(r, "status_at_send")),
		MessageID:     str(r, "message_id"),
		SentAt:        timestamp(r, "sent_at"),
	}
}
