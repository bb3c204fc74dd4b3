package mapping

import (
	"github.com/bp848/mqdriven-sub001/internal/core/domain"
	portsrepo "github.com/bp848/mqdriven-sub001/internal/core/ports/repositories"
)

// ToRowApplication converts a domain Application to an applications row
func ToRowApplication(d domain.Application) portsrepo.Row {
	return portsrepo.Row{
		"id":                  d.ApplicationID,
		"applicant_id":        d.ApplicantID,
		"application_code_id": d.ApplicationCodeID,
		"form_data":           d.FormData,
		"status":              string(d.Status),
		"submitted_at":        d.SubmittedAt,
		"approved_at":         d.ApprovedAt,
		"rejected_at":         d.RejectedAt,
		"current_level":       d.CurrentLevel,
		"approver_id":         d.ApproverID,
		"rejection_reason":    d.RejectionReason,
		"approval_route_id":   d.ApprovalRouteID,
		"accounting_status":   string(d.AccountingStatus),
		"created_at":          d.CreatedAt,
		"updated_at":          d.UpdatedAt,
	}
}

// ToRowApplicationPatch renders the columns a lifecycle transition may change.
func ToRowApplicationPatch(d domain.Application) portsrepo.Row {
	row := ToRowApplication(d)
	delete(row, "id")
	delete(row, "applicant_id")
	delete(row, "created_at")
	return row
}

// ToDomainApplication converts an applications row to a domain Application
func ToDomainApplication(r portsrepo.Row) domain.Application {
	accounting := domain.AccountingStatus(str(r, "accounting_status"))
	if accounting == "" {
		accounting = domain.AccountingNone
	}
	return domain.Application{
		ApplicationID:     str(r, "id"),
		ApplicantID:       str(r, "applicant_id"),
		ApplicationCodeID: str(r, "application_code_id"),
		FormData:          object(r, "form_data"),
		Status:            domain.ApplicationStatus(str(r, "status")),
		SubmittedAt:       timePtr(r, "submitted_at"),
		ApprovedAt:        timePtr(r, "approved_at"),
		RejectedAt:        timePtr(r, "rejected_at"),
		CurrentLevel:      integer(r, "current_level"),
		ApproverID:        strPtr(r, "approver_id"),
		RejectionReason:   strPtr(r, "rejection_reason"),
		ApprovalRouteID:   str(r, "approval_route_id"),
		AccountingStatus:  accounting,
		Timestamps: domain.Timestamps{
			CreatedAt: timestamp(r, "created_at"),
			UpdatedAt: timestamp(r, "updated_at"),
		},
	}
}

// ToDomainApplications converts a slice of rows
func ToDomainApplications(rows []portsrepo.Row) []domain.Application {
	out := make([]domain.Application, len(rows))
	for i, r := range rows {
		out[i] = ToDomainApplication(r)
	}
	return out
}

// ToDomainApplicationCode converts an application_codes row
func ToDomainApplicationCode(r portsrepo.Row) domain.ApplicationCode {
	return domain.ApplicationCode{
		ID:   str(r, "id"),
		Code: str(r, "code"),
		Name: str(r, "name"),
	}
}

// ToDomainApprovalRoute converts an approval_routes row. Steps without an approver are kept
// so that level numbering matches the stored route.
func ToDomainApprovalRoute(r portsrepo.Row) domain.ApprovalRoute {
	raw, _ := r["steps"].([]any)
	steps := make([]domain.ApprovalStep, 0, len(raw))
	for _, s := range raw {
		m, _ := s.(map[string]any)
		approver, _ := m["approver_id"].(string)
		steps = append(steps, domain.ApprovalStep{ApproverID: approver})
	}
	return domain.ApprovalRoute{
		RouteID:   str(r, "id"),
		Name:      str(r, "name"),
		Steps:     steps,
		CreatedAt: timestamp(r, "created_at"),
	}
}
