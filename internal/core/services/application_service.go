package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bp848/mqdriven-sub001/internal/apperrors"
	"github.com/bp848/mqdriven-sub001/internal/core/domain"
	portsrepo "github.com/bp848/mqdriven-sub001/internal/core/ports/repositories"
	portssvc "github.com/bp848/mqdriven-sub001/internal/core/ports/services"
	"github.com/bp848/mqdriven-sub001/internal/dto"
)

// applicationService drives the approval lifecycle of applications.
type applicationService struct {
	BaseService
	appRepo      portsrepo.ApplicationRepositoryFacade
	codeRepo     portsrepo.ApplicationCodeRepositoryFacade
	routeRepo    portsrepo.ApprovalRouteRepositoryFacade
	notifier     portssvc.NotificationSvc
	journal      portssvc.JournalWriterSvc
	journalCodes map[string]struct{}
}

// ApplicationServiceOption is a functional option for configuring the application service
type ApplicationServiceOption func(*applicationService)

// WithNotifier sets the dispatcher used for transition notifications
func WithNotifier(n portssvc.NotificationSvc) ApplicationServiceOption {
	return func(s *applicationService) {
		s.notifier = n
	}
}

// WithJournalGeneration derives a journal batch on final approval for the given application codes
func WithJournalGeneration(journal portssvc.JournalWriterSvc, codes ...string) ApplicationServiceOption {
	return func(s *applicationService) {
		s.journal = journal
		s.journalCodes = make(map[string]struct{}, len(codes))
		for _, c := range codes {
			s.journalCodes[strings.ToUpper(strings.TrimSpace(c))] = struct{}{}
		}
	}
}

// WithApplicationClock overrides the time source
func WithApplicationClock(clock func() time.Time) ApplicationServiceOption {
	return func(s *applicationService) {
		s.Clock = clock
	}
}

// NewApplicationService creates a new application service with the provided options
func NewApplicationService(
	appRepo portsrepo.ApplicationRepositoryFacade,
	codeRepo portsrepo.ApplicationCodeRepositoryFacade,
	routeRepo portsrepo.ApprovalRouteRepositoryFacade,
	options ...ApplicationServiceOption,
) portssvc.ApplicationSvcFacade {
	svc := &applicationService{
		appRepo:   appRepo,
		codeRepo:  codeRepo,
		routeRepo: routeRepo,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

// Ensure applicationService implements the ApplicationSvcFacade interface
var _ portssvc.ApplicationSvcFacade = (*applicationService)(nil)

func (s *applicationService) GetApplication(ctx context.Context, applicationID string) (*domain.Application, error) {
	return s.appRepo.FindApplicationByID(ctx, applicationID)
}

func (s *applicationService) ListApplications(ctx context.Context, userID string) ([]domain.Application, error) {
	apps, err := s.appRepo.ListApplicationsForUser(ctx, userID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list applications", slog.String("user_id", userID))
		return nil, err
	}
	return apps, nil
}

// checkCode verifies the application code exists.
func (s *applicationService) checkCode(ctx context.Context, codeID string) (*domain.ApplicationCode, error) {
	code, err := s.codeRepo.FindApplicationCodeByID(ctx, codeID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("%w: unknown application code %s", apperrors.ErrValidation, codeID)
	}
	return code, err
}

// firstApprover loads the route and returns the approver of its first step.
func (s *applicationService) firstApprover(ctx context.Context, routeID string) (string, error) {
	if routeID == "" {
		return "", fmt.Errorf("%w: approval route is required", apperrors.ErrValidation)
	}
	route, err := s.routeRepo.FindRouteByID(ctx, routeID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return "", fmt.Errorf("%w: unknown approval route %s", apperrors.ErrValidation, routeID)
	}
	if err != nil {
		return "", err
	}
	if err := route.Validate(); err != nil {
		return "", fmt.Errorf("%w: %w", apperrors.ErrValidation, err)
	}
	approver, _ := route.ApproverAt(1)
	return approver, nil
}

func (s *applicationService) Submit(ctx context.Context, req dto.SubmitApplicationRequest, applicantID string) (*domain.Application, error) {
	if req.IsDraft() {
		return s.SaveDraft(ctx, dto.SaveDraftRequest{
			ApplicationCodeID: req.ApplicationCodeID,
			ApprovalRouteID:   req.ApprovalRouteID,
			FormData:          req.FormData,
		}, applicantID)
	}

	if _, err := s.checkCode(ctx, req.ApplicationCodeID); err != nil {
		return nil, err
	}
	approver, err := s.firstApprover(ctx, req.ApprovalRouteID)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	var saved *domain.Application
	if req.DraftID != "" {
		saved, err = s.promoteDraft(ctx, req, applicantID, approver, now)
	} else {
		formData := req.FormData
		if formData == nil {
			formData = map[string]any{}
		}
		saved, err = s.appRepo.SaveApplication(ctx, domain.Application{
			ApplicationID:     uuid.NewString(),
			ApplicantID:       applicantID,
			ApplicationCodeID: req.ApplicationCodeID,
			FormData:          formData,
			Status:            domain.StatusPendingApproval,
			SubmittedAt:       &now,
			CurrentLevel:      1,
			ApproverID:        &approver,
			ApprovalRouteID:   req.ApprovalRouteID,
			AccountingStatus:  domain.AccountingNone,
			Timestamps:        domain.Timestamps{CreatedAt: now, UpdatedAt: now},
		})
	}
	if err != nil {
		s.LogError(ctx, err, "Failed to submit application", slog.String("applicant_id", applicantID))
		return nil, err
	}

	s.LogInfo(ctx, "Application submitted",
		slog.String("application_id", saved.ApplicationID),
		slog.String("approver_id", approver))

	s.notify(ctx, domain.NotificationRequest{
		Event:            domain.EventSubmitted,
		Audience:         domain.AudienceApprovalRoute,
		Application:      *saved,
		RecipientUserIDs: []string{approver},
	})
	s.notify(ctx, domain.NotificationRequest{
		Event:            domain.EventSubmitted,
		Audience:         domain.AudienceApplicant,
		Application:      *saved,
		RecipientUserIDs: []string{applicantID},
	})
	return saved, nil
}

// promoteDraft turns the applicant's draft into a pending application in place.
func (s *applicationService) promoteDraft(ctx context.Context, req dto.SubmitApplicationRequest, applicantID, approver string, now time.Time) (*domain.Application, error) {
	draft, err := s.appRepo.FindApplicationByID(ctx, req.DraftID)
	if err != nil {
		return nil, err
	}
	if draft.ApplicantID != applicantID {
		return nil, fmt.Errorf("%w: draft %s belongs to another applicant", apperrors.ErrForbidden, req.DraftID)
	}
	if draft.Status != domain.StatusDraft {
		return nil, fmt.Errorf("%w: application %s is %s, not a draft", apperrors.ErrInvalidState, draft.ApplicationID, draft.Status)
	}

	draft.ApplicationCodeID = req.ApplicationCodeID
	draft.ApprovalRouteID = req.ApprovalRouteID
	if req.FormData != nil {
		draft.FormData = req.FormData
	}
	draft.Status = domain.StatusPendingApproval
	draft.SubmittedAt = &now
	draft.CurrentLevel = 1
	draft.ApproverID = &approver
	draft.UpdatedAt = now
	return s.appRepo.UpdateApplicationFrom(ctx, domain.StatusDraft, *draft)
}

func (s *applicationService) SaveDraft(ctx context.Context, req dto.SaveDraftRequest, applicantID string) (*domain.Application, error) {
	if _, err := s.checkCode(ctx, req.ApplicationCodeID); err != nil {
		return nil, err
	}
	if req.ApprovalRouteID != "" {
		if _, err := s.routeRepo.FindRouteByID(ctx, req.ApprovalRouteID); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: unknown approval route %s", apperrors.ErrValidation, req.ApprovalRouteID)
			}
			return nil, err
		}
	}

	formData := req.FormData
	if formData == nil {
		formData = map[string]any{}
	}
	now := s.Now()

	draft, err := s.appRepo.FindDraft(ctx, applicantID, req.ApplicationCodeID)
	switch {
	case err == nil:
		draft.FormData = formData
		draft.ApprovalRouteID = req.ApprovalRouteID
		draft.UpdatedAt = now
		return s.appRepo.UpdateApplicationFrom(ctx, domain.StatusDraft, *draft)
	case errors.Is(err, apperrors.ErrNotFound):
		return s.appRepo.SaveApplication(ctx, domain.Application{
			ApplicationID:     uuid.NewString(),
			ApplicantID:       applicantID,
			ApplicationCodeID: req.ApplicationCodeID,
			FormData:          formData,
			Status:            domain.StatusDraft,
			ApprovalRouteID:   req.ApprovalRouteID,
			AccountingStatus:  domain.AccountingNone,
			Timestamps:        domain.Timestamps{CreatedAt: now, UpdatedAt: now},
		})
	default:
		return nil, err
	}
}

// loadPending fetches an application and checks that actorID may act on its current step.
func (s *applicationService) loadPending(ctx context.Context, applicationID, actorID string) (*domain.Application, error) {
	app, err := s.appRepo.FindApplicationByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if !app.IsPending() {
		return nil, fmt.Errorf("%w: application %s is %s", apperrors.ErrInvalidState, applicationID, app.Status)
	}
	if !app.IsCurrentApprover(actorID) {
		return nil, fmt.Errorf("%w: user %s is not the current approver of %s", apperrors.ErrForbidden, actorID, applicationID)
	}
	return app, nil
}

func (s *applicationService) Approve(ctx context.Context, applicationID string, approverID string) (*domain.Application, error) {
	app, err := s.loadPending(ctx, applicationID, approverID)
	if err != nil {
		return nil, err
	}
	route, err := s.routeRepo.FindRouteByID(ctx, app.ApprovalRouteID)
	if err != nil {
		return nil, fmt.Errorf("load approval route of %s: %w", applicationID, err)
	}
	// Every step must name an approver; a blank one is not the end of the route.
	if err := route.Validate(); err != nil {
		return nil, fmt.Errorf("approve %s: %w", applicationID, err)
	}

	now := s.Now()
	fromLevel := app.CurrentLevel
	nextLevel := fromLevel + 1

	if next, ok := route.ApproverAt(nextLevel); ok {
		app.CurrentLevel = nextLevel
		app.ApproverID = &next
		app.UpdatedAt = now
		updated, err := s.appRepo.UpdatePendingApplication(ctx, fromLevel, *app)
		if err != nil {
			return nil, err
		}
		s.LogInfo(ctx, "Application moved to next approval step",
			slog.String("application_id", applicationID),
			slog.Int("level", nextLevel))
		s.notify(ctx, domain.NotificationRequest{
			Event:            domain.EventStepForward,
			Audience:         domain.AudienceApprovalRoute,
			Application:      *updated,
			RecipientUserIDs: []string{next},
		})
		return updated, nil
	}

	app.Status = domain.StatusApproved
	app.ApprovedAt = &now
	app.RejectedAt = nil
	app.RejectionReason = nil
	app.CurrentLevel = nextLevel
	app.ApproverID = &approverID
	app.UpdatedAt = now
	updated, err := s.appRepo.UpdatePendingApplication(ctx, fromLevel, *app)
	if err != nil {
		return nil, err
	}
	s.LogInfo(ctx, "Application approved", slog.String("application_id", applicationID))

	s.notifyDecision(ctx, domain.EventApproved, *updated, route, approverID, "")
	s.deriveJournal(ctx, updated)
	return updated, nil
}

func (s *applicationService) Reject(ctx context.Context, applicationID string, reason string, approverID string) (*domain.Application, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: rejection reason is required", apperrors.ErrValidation)
	}
	app, err := s.loadPending(ctx, applicationID, approverID)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	app.Status = domain.StatusRejected
	app.RejectedAt = &now
	app.ApprovedAt = nil
	app.RejectionReason = &reason
	app.UpdatedAt = now
	updated, err := s.appRepo.UpdatePendingApplication(ctx, app.CurrentLevel, *app)
	if err != nil {
		return nil, err
	}
	s.LogInfo(ctx, "Application rejected", slog.String("application_id", applicationID))

	route, err := s.routeRepo.FindRouteByID(ctx, updated.ApprovalRouteID)
	if err != nil {
		s.LogWarn(ctx, err, "Approval route unavailable; notifying applicant only",
			slog.String("application_id", applicationID))
		route = &domain.ApprovalRoute{}
	}
	s.notifyDecision(ctx, domain.EventRejected, *updated, route, approverID, reason)
	return updated, nil
}

// notifyDecision informs the applicant and the route approvers other than the actor.
func (s *applicationService) notifyDecision(ctx context.Context, event domain.NotificationEvent, app domain.Application, route *domain.ApprovalRoute, actorID, reason string) {
	s.notify(ctx, domain.NotificationRequest{
		Event:            event,
		Audience:         domain.AudienceApplicant,
		Application:      app,
		RecipientUserIDs: []string{app.ApplicantID},
		Reason:           reason,
	})

	var others []string
	for _, id := range route.ApproverIDs() {
		if id != actorID {
			others = append(others, id)
		}
	}
	if len(others) > 0 {
		s.notify(ctx, domain.NotificationRequest{
			Event:            event,
			Audience:         domain.AudienceApprovalRoute,
			Application:      app,
			RecipientUserIDs: others,
			Reason:           reason,
		})
	}
}

func (s *applicationService) notify(ctx context.Context, req domain.NotificationRequest) {
	if s.notifier != nil {
		s.notifier.Notify(ctx, req)
	}
}

// deriveJournal generates the batch of an approved application when its code asks for one.
// The approval stands whatever happens here.
func (s *applicationService) deriveJournal(ctx context.Context, app *domain.Application) {
	if s.journal == nil || len(s.journalCodes) == 0 {
		return
	}
	code, err := s.codeRepo.FindApplicationCodeByID(ctx, app.ApplicationCodeID)
	if err != nil {
		s.LogWarn(ctx, err, "Could not resolve application code for journal derivation",
			slog.String("application_id", app.ApplicationID))
		return
	}
	if _, ok := s.journalCodes[strings.ToUpper(code.Code)]; !ok {
		return
	}

	batch, err := s.journal.Generate(ctx, app.ApplicationID)
	if err != nil {
		s.LogWarn(ctx, err, "Journal generation failed after approval",
			slog.String("application_id", app.ApplicationID),
			slog.String("code", code.Code))
		return
	}
	app.AccountingStatus = domain.AccountingStatus(batch.Status)
}
