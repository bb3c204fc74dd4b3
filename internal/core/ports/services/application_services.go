package services

import (
	"context"

	"github.com/bp848/mqdriven-sub001/internal/core/domain"
	"github.com/bp848/mqdriven-sub001/internal/dto"
)

// ApplicationReaderSvc defines read operations for applications
type ApplicationReaderSvc interface {
	// GetApplication retrieves an application by its ID.
	GetApplication(ctx context.Context, applicationID string) (*domain.Application, error)

	// ListApplications lists applications the user submitted or is currently asked to approve.
	ListApplications(ctx context.Context, userID string) ([]domain.Application, error)
}

// ApplicationWorkflowSvc defines the lifecycle transitions of an application
type ApplicationWorkflowSvc interface {
	// Submit creates an application (or promotes the applicant's draft) and starts its approval flow,
	// unless the request asks for a draft.
	Submit(ctx context.Context, req dto.SubmitApplicationRequest, applicantID string) (*domain.Application, error)

	// SaveDraft creates or replaces the applicant's draft for an application code.
	SaveDraft(ctx context.Context, req dto.SaveDraftRequest, applicantID string) (*domain.Application, error)

	// Approve approves the current step. The final step approves the application.
	Approve(ctx context.Context, applicationID string, approverID string) (*domain.Application, error)

	// Reject rejects a pending application with a mandatory reason.
	Reject(ctx context.Context, applicationID string, reason string, approverID string) (*domain.Application, error)
}

// ApplicationSvcFacade combines all application-related service interfaces
type ApplicationSvcFacade interface {
	ApplicationReaderSvc
	ApplicationWorkflowSvc
}
