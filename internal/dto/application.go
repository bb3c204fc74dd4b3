package dto

import (
	"time"

	"github.com/bp848/mqdriven-sub001/internal/core/domain"
)

// SubmitApplicationRequest defines the data needed to submit an application.
// Status "draft" stores it without starting the approval flow.
type SubmitApplicationRequest struct {
	ApplicationCodeID string         `json:"applicationCodeID" binding:"required,uuid"`
	ApprovalRouteID   string         `json:"approvalRouteID" binding:"omitempty,uuid"`
	FormData          map[string]any `json:"formData"`
	Status            string         `json:"status" binding:"omitempty,oneof=draft pending_approval"`
	DraftID           string         `json:"draftID" binding:"omitempty,uuid"` // Promote this draft instead of inserting
}

// IsDraft reports whether the caller asked to store a draft.
func (r SubmitApplicationRequest) IsDraft() bool {
	return r.Status == string(domain.StatusDraft)
}

// SaveDraftRequest defines the data stored in an applicant's draft.
type SaveDraftRequest struct {
	ApplicationCodeID string         `json:"applicationCodeID" binding:"required,uuid"`
	ApprovalRouteID   string         `json:"approvalRouteID" binding:"omitempty,uuid"`
	FormData          map[string]any `json:"formData"`
}

// RejectApplicationRequest carries the mandatory rejection reason.
type RejectApplicationRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// ApplicationResponse defines the data returned for an application.
type ApplicationResponse struct {
	ApplicationID     string                   `json:"applicationID"`
	ApplicantID       string                   `json:"applicantID"`
	ApplicationCodeID string                   `json:"applicationCodeID"`
	FormData          map[string]any           `json:"formData"`
	Status            domain.ApplicationStatus `json:"status"`
	AccountingStatus  domain.AccountingStatus  `json:"accountingStatus"`
	CurrentLevel      int                      `json:"currentLevel"`
	ApproverID        *string                  `json:"approverID,omitempty"`
	ApprovalRouteID   string                   `json:"approvalRouteID,omitempty"`
	RejectionReason   *string                  `json:"rejectionReason,omitempty"`
	SubmittedAt       *time.Time               `json:"submittedAt,omitempty"`
	ApprovedAt        *time.Time               `json:"approvedAt,omitempty"`
	RejectedAt        *time.Time               `json:"rejectedAt,omitempty"`
	CreatedAt         time.Time                `json:"createdAt"`
	UpdatedAt         time.Time                `json:"updatedAt"`
}

// ListApplicationsResponse wraps a list of applications.
type ListApplicationsResponse struct {
	Applications []ApplicationResponse `json:"applications"`
}

// ToApplicationResponse converts a domain.Application to ApplicationResponse DTO.
func ToApplicationResponse(a *domain.Application) ApplicationResponse {
	return ApplicationResponse{
		ApplicationID:     a.ApplicationID,
		ApplicantID:       a.ApplicantID,
		ApplicationCodeID: a.ApplicationCodeID,
		FormData:          a.FormData,
		Status:            a.Status,
		AccountingStatus:  a.AccountingStatus,
		CurrentLevel:      a.CurrentLevel,
		ApproverID:        a.ApproverID,
		ApprovalRouteID:   a.ApprovalRouteID,
		RejectionReason:   a.RejectionReason,
		SubmittedAt:       a.SubmittedAt,
		ApprovedAt:        a.ApprovedAt,
		RejectedAt:        a.RejectedAt,
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}
}

// ToListApplicationsResponse converts a slice of domain.Application.
func ToListApplicationsResponse(apps []domain.Application) ListApplicationsResponse {
	list := make([]ApplicationResponse, len(apps))
	for i := range apps {
		list[i] = ToApplicationResponse(&apps[i])
	}
	return ListApplicationsResponse{Applications: list}
}
