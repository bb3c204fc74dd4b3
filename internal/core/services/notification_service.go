package services

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"text/template"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/bp848/mqdriven-sub001/internal/core/domain"
	portsrepo "github.com/bp848/mqdriven-sub001/internal/core/ports/repositories"
	portssvc "github.com/bp848/mqdriven-sub001/internal/core/ports/services"
)

type messageTemplate struct {
	subject *template.Template
	body    *template.Template
}

func mustMessage(event domain.NotificationEvent, subject, body string) messageTemplate {
	return messageTemplate{
		subject: template.Must(template.New(string(event) + ".subject").Parse(subject)),
		body:    template.Must(template.New(string(event) + ".body").Parse(body)),
	}
}

var messageTemplates = map[domain.NotificationEvent]messageTemplate{
	domain.EventSubmitted: mustMessage(domain.EventSubmitted,
		`{{if .ToApplicant}}[受付]{{else}}[承認依頼]{{end}} {{.CodeName}}`,
		`{{if .ToApplicant}}申請 {{.ApplicationID}} を受け付けました。{{else}}申請 {{.ApplicationID}} の承認をお願いします。{{end}}
`),
	domain.EventStepForward: mustMessage(domain.EventStepForward,
		`[承認依頼] {{.CodeName}} (第{{.Level}}承認)`,
		`申請 {{.ApplicationID}} が第{{.Level}}承認に進みました。承認をお願いします。
`),
	domain.EventApproved: mustMessage(domain.EventApproved,
		`[承認] {{.CodeName}}`,
		`申請 {{.ApplicationID}} が承認されました。
`),
	domain.EventRejected: mustMessage(domain.EventRejected,
		`[却下] {{.CodeName}}`,
		`申請 {{.ApplicationID}} が却下されました。
理由: {{.Reason}}
`),
}

type messageData struct {
	ApplicationID string
	CodeName      string
	Level         int
	Reason        string
	ToApplicant   bool
}

// notificationService renders and dispatches transition messages.
type notificationService struct {
	BaseService
	userRepo         portsrepo.UserRepositoryFacade
	codeRepo         portsrepo.ApplicationCodeRepositoryFacade
	notificationRepo portsrepo.NotificationRepositoryFacade
	mailer           portssvc.Mailer
	validate         *validator.Validate
}

// NewNotificationService creates a new NotificationSvc.
func NewNotificationService(
	userRepo portsrepo.UserRepositoryFacade,
	codeRepo portsrepo.ApplicationCodeRepositoryFacade,
	notificationRepo portsrepo.NotificationRepositoryFacade,
	mailer portssvc.Mailer,
) portssvc.NotificationSvc {
	return &notificationService{
		userRepo:         userRepo,
		codeRepo:         codeRepo,
		notificationRepo: notificationRepo,
		mailer:           mailer,
		validate:         validator.New(),
	}
}

var _ portssvc.NotificationSvc = (*notificationService)(nil)

// Notify implements portssvc.NotificationSvc
func (s *notificationService) Notify(ctx context.Context, req domain.NotificationRequest) {
	attrs := []any{
		slog.String("application_id", req.Application.ApplicationID),
		slog.String("event", string(req.Event)),
		slog.String("audience", string(req.Audience)),
	}

	recipients, err := s.recipients(ctx, req.RecipientUserIDs)
	if err != nil {
		s.LogWarn(ctx, err, "Could not resolve notification recipients", attrs...)
		return
	}
	if len(recipients) == 0 {
		s.LogDebug(ctx, "No deliverable recipients; notification skipped", attrs...)
		return
	}

	subject, body, err := s.render(ctx, req)
	if err != nil {
		s.LogWarn(ctx, err, "Failed to render notification", attrs...)
		return
	}

	messageID, sentAt, err := s.mailer.Send(ctx, recipients, subject, body)
	if err != nil {
		s.LogWarn(ctx, err, "Failed to send notification", attrs...)
		return
	}

	record := domain.ApplicationNotificationEmail{
		ID:            uuid.NewString(),
		ApplicationID: req.Application.ApplicationID,
		Audience:      req.Audience,
		Recipients:    recipients,
		Subject:       subject,
		Body:          body,
		StatusAtSend:  req.Application.Status,
		MessageID:     messageID,
		SentAt:        sentAt.UTC(),
	}
	if err := s.notificationRepo.SaveNotification(ctx, record); err != nil {
		s.LogWarn(ctx, err, "Notification sent but audit record was not stored",
			append(attrs, slog.String("message_id", messageID))...)
	}
}

// recipients resolves user ids to distinct, well-formed email addresses.
func (s *notificationService) recipients(ctx context.Context, userIDs []string) ([]string, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	users, err := s.userRepo.FindUsersByIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(userIDs))
	var out []string
	for _, id := range userIDs {
		user, ok := users[id]
		if !ok {
			continue
		}
		email := strings.TrimSpace(user.Email)
		if err := s.validate.Var(email, "required,email"); err != nil {
			continue
		}
		if _, dup := seen[email]; dup {
			continue
		}
		seen[email] = struct{}{}
		out = append(out, email)
	}
	return out, nil
}

func (s *notificationService) render(ctx context.Context, req domain.NotificationRequest) (string, string, error) {
	tmpl, ok := messageTemplates[req.Event]
	if !ok {
		return "", "", fmt.Errorf("no template for event %q", req.Event)
	}

	data := messageData{
		ApplicationID: req.Application.ApplicationID,
		CodeName:      "申請",
		Level:         req.Application.CurrentLevel,
		Reason:        req.Reason,
		ToApplicant:   req.Audience == domain.AudienceApplicant,
	}
	if code, err := s.codeRepo.FindApplicationCodeByID(ctx, req.Application.ApplicationCodeID); err == nil {
		data.CodeName = code.Name
	}

	var subject, body bytes.Buffer
	if err := tmpl.subject.Execute(&subject, data); err != nil {
		return "", "", err
	}
	if err := tmpl.body.Execute(&body, data); err != nil {
		return "", "", err
	}
	return subject.String(), body.String(), nil
}
