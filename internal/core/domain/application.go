package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ApplicationStatus is the business lifecycle state of an application.
type ApplicationStatus string

const (
	StatusDraft           ApplicationStatus = "draft"
	StatusPendingApproval ApplicationStatus = "pending_approval"
	StatusApproved        ApplicationStatus = "approved"
	StatusRejected        ApplicationStatus = "rejected"
)

// AccountingStatus is the secondary axis tracking journal derivation for an application.
// It is only meaningful once the application is approved.
type AccountingStatus string

const (
	AccountingNone   AccountingStatus = "none"
	AccountingDraft  AccountingStatus = "draft"
	AccountingPosted AccountingStatus = "posted"
)

// Application is a submitted business request (expense, travel, leave, purchase...).
type Application struct {
	ApplicationID     string            `json:"applicationID"` // Primary Key (UUID)
	ApplicantID       string            `json:"applicantID"`
	ApplicationCodeID string            `json:"applicationCodeID"`
	FormData          map[string]any    `json:"formData"`
	Status            ApplicationStatus `json:"status"`
	SubmittedAt       *time.Time        `json:"submittedAt,omitempty"`
	ApprovedAt        *time.Time        `json:"approvedAt,omitempty"`
	RejectedAt        *time.Time        `json:"rejectedAt,omitempty"`
	CurrentLevel      int               `json:"currentLevel"`
	ApproverID        *string           `json:"approverID,omitempty"`
	RejectionReason   *string           `json:"rejectionReason,omitempty"`
	ApprovalRouteID   string            `json:"approvalRouteID"`
	AccountingStatus  AccountingStatus  `json:"accountingStatus"`
	Timestamps
}

// IsPending reports whether approve/reject may be applied.
func (a Application) IsPending() bool {
	return a.Status == StatusPendingApproval
}

// IsCurrentApprover reports whether userID is the approver assigned to the current level.
func (a Application) IsCurrentApprover(userID string) bool {
	return a.ApproverID != nil && *a.ApproverID == userID
}

// ApplicationCode names an application type, e.g. EXP (expense) or TRP (travel).
type ApplicationCode struct {
	ID   string `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// ApprovalStep names the approver for one level of a route.
type ApprovalStep struct {
	ApproverID string `json:"approver_id"`
}

// ApprovalRoute is an ordered list of approval steps. Level N (1-based) maps to Steps[N-1].
type ApprovalRoute struct {
	RouteID   string         `json:"routeID"`
	Name      string         `json:"name"`
	Steps     []ApprovalStep `json:"steps"`
	CreatedAt time.Time      `json:"createdAt"`
}

// ErrRouteHasNoSteps is returned by Validate for a route without steps.
var ErrRouteHasNoSteps = errors.New("approval route has no steps")

// Validate checks that the route has at least one step and that every step names an approver.
func (r ApprovalRoute) Validate() error {
	if len(r.Steps) == 0 {
		return ErrRouteHasNoSteps
	}
	for i, step := range r.Steps {
		if strings.TrimSpace(step.ApproverID) == "" {
			return fmt.Errorf("approval route %s: step %d has no approver", r.RouteID, i+1)
		}
	}
	return nil
}

// ApproverAt returns the approver for a 1-based level. ok is false past the last step.
func (r ApprovalRoute) ApproverAt(level int) (approverID string, ok bool) {
	if level < 1 || level > len(r.Steps) {
		return "", false
	}
	return r.Steps[level-1].ApproverID, true
}

// ApproverIDs returns all non-empty approver ids in route order.
func (r ApprovalRoute) ApproverIDs() []string {
	ids := make([]string, 0, len(r.Steps))
	for _, s := range r.Steps {
		if s.ApproverID != "" {
			ids = append(ids, s.ApproverID)
		}
	}
	return ids
}

// ApprovedApplication is an approved application joined with its journal batch, if any.
type ApprovedApplication struct {
	Application
	ApplicationCode *ApplicationCode `json:"applicationCode,omitempty"`
	JournalBatch    *JournalBatch    `json:"journalBatch,omitempty"`
}
