package domain

import "time"

// NotificationAudience distinguishes who a dispatched message was addressed to.
type NotificationAudience string

const (
	AudienceApprovalRoute NotificationAudience = "approval_route"
	AudienceApplicant     NotificationAudience = "applicant"
)

// NotificationEvent is the transition that triggered a notification.
type NotificationEvent string

const (
	EventSubmitted   NotificationEvent = "submitted"
	EventStepForward NotificationEvent = "step_forward"
	EventApproved    NotificationEvent = "approved"
	EventRejected    NotificationEvent = "rejected"
)

// ApplicationNotificationEmail is the append-only audit record of a dispatched message.
type ApplicationNotificationEmail struct {
	ID            string               `json:"id"`
	ApplicationID string               `json:"applicationID"`
	Audience      NotificationAudience `json:"audience"`
	Recipients    []string             `json:"recipients"`
	Subject       string               `json:"subject"`
	Body          string               `json:"body"`
	StatusAtSend  ApplicationStatus    `json:"statusAtSend"`
	MessageID     string               `json:"messageID"`
	SentAt        time.Time            `json:"sentAt"`
}

// NotificationRequest describes one audience to notify about a transition.
// Only recipient user ids are decided here; addresses are resolved by the dispatcher.
type NotificationRequest struct {
	Event            NotificationEvent
	Audience         NotificationAudience
	Application      Application
	RecipientUserIDs []string
	Reason           string // Set for rejections
}
