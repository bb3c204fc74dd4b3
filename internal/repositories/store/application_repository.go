package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/bp848/mqdriven-sub001/internal/apperrors"
	"github.com/bp848/mqdriven-sub001/internal/core/domain"
	portsrepo "github.com/bp848/mqdriven-sub001/internal/core/ports/repositories"
	"github.com/bp848/mqdriven-sub001/internal/repositories/batch"
	"github.com/bp848/mqdriven-sub001/internal/repositories/schema"
	"github.com/bp848/mqdriven-sub001/internal/utils/mapping"
)

type applicationRepository struct {
	db portsrepo.Backend
}

func newApplicationRepository(db portsrepo.Backend) portsrepo.ApplicationRepositoryFacade {
	return &applicationRepository{db: db}
}

// Ensure applicationRepository implements portsrepo.ApplicationRepositoryFacade
var _ portsrepo.ApplicationRepositoryFacade = (*applicationRepository)(nil)

func (r *applicationRepository) FindApplicationByID(ctx context.Context, applicationID string) (*domain.Application, error) {
	if !batch.IsCanonicalUUID(applicationID) {
		return nil, notFound("application", applicationID)
	}
	rows, err := r.db.Select(ctx, schema.Applications, portsrepo.Query{
		Filters: []portsrepo.Filter{portsrepo.Eq("id", applicationID)},
		Limit:   1,
	})
	if err != nil {
		return nil, fmt.Errorf("find application %s: %w", applicationID, err)
	}
	if len(rows) == 0 {
		return nil, notFound("application", applicationID)
	}
	app := mapping.ToDomainApplication(rows[0])
	return &app, nil
}

func (r *applicationRepository) ListApplicationsForUser(ctx context.Context, userID string) ([]domain.Application, error) {
	if !batch.IsCanonicalUUID(userID) {
		return []domain.Application{}, nil
	}
	seen := make(map[string]struct{})
	var apps []domain.Application
	for _, column := range []string{"applicant_id", "approver_id"} {
		rows, err := r.db.Select(ctx, schema.Applications, portsrepo.Query{
			Filters: []portsrepo.Filter{portsrepo.Eq(column, userID)},
		})
		if err != nil {
			return nil, fmt.Errorf("list applications by %s: %w", column, err)
		}
		for _, app := range mapping.ToDomainApplications(rows) {
			if _, dup := seen[app.ApplicationID]; dup {
				continue
			}
			seen[app.ApplicationID] = struct{}{}
			apps = append(apps, app)
		}
	}
	sort.SliceStable(apps, func(i, j int) bool { return apps[i].CreatedAt.After(apps[j].CreatedAt) })
	return apps, nil
}

func (r *applicationRepository) ListApplicationsByStatus(ctx context.Context, status domain.ApplicationStatus) ([]domain.Application, error) {
	rows, err := r.db.Select(ctx, schema.Applications, portsrepo.Query{
		Filters: []portsrepo.Filter{portsrepo.Eq("status", string(status))},
		OrderBy: "created_at",
		Desc:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("list %s applications: %w", status, err)
	}
	return mapping.ToDomainApplications(rows), nil
}

func (r *applicationRepository) FindDraft(ctx context.Context, applicantID, applicationCodeID string) (*domain.Application, error) {
	if !batch.IsCanonicalUUID(applicantID) || !batch.IsCanonicalUUID(applicationCodeID) {
		return nil, notFound("draft", applicationCodeID)
	}
	rows, err := r.db.Select(ctx, schema.Applications, portsrepo.Query{
		Filters: []portsrepo.Filter{
			portsrepo.Eq("applicant_id", applicantID),
			portsrepo.Eq("application_code_id", applicationCodeID),
			portsrepo.Eq("status", string(domain.StatusDraft)),
		},
		OrderBy: "updated_at",
		Desc:    true,
		Limit:   1,
	})
	if err != nil {
		return nil, fmt.Errorf("find draft: %w", err)
	}
	if len(rows) == 0 {
		return nil, notFound("draft", applicationCodeID)
	}
	app := mapping.ToDomainApplication(rows[0])
	return &app, nil
}

func (r *applicationRepository) SaveApplication(ctx context.Context, app domain.Application) (*domain.Application, error) {
	row, err := r.db.Insert(ctx, schema.Applications, mapping.ToRowApplication(app))
	if err != nil {
		return nil, mapWriteErr(err, "insert application "+app.ApplicationID)
	}
	saved := mapping.ToDomainApplication(row)
	return &saved, nil
}

func (r *applicationRepository) UpdateApplicationFrom(ctx context.Context, expected domain.ApplicationStatus, app domain.Application) (*domain.Application, error) {
	return r.updateGuarded(ctx, app, "no longer "+string(expected),
		portsrepo.Eq("status", string(expected)))
}

func (r *applicationRepository) UpdatePendingApplication(ctx context.Context, fromLevel int, app domain.Application) (*domain.Application, error) {
	return r.updateGuarded(ctx, app, fmt.Sprintf("no longer pending at level %d", fromLevel),
		portsrepo.Eq("status", string(domain.StatusPendingApproval)),
		portsrepo.Eq("current_level", fromLevel))
}

// updateGuarded writes app's mutable fields if every guard still holds on the stored row.
func (r *applicationRepository) updateGuarded(ctx context.Context, app domain.Application, lost string, guards ...portsrepo.Filter) (*domain.Application, error) {
	row, err := r.db.Update(ctx, schema.Applications, app.ApplicationID,
		mapping.ToRowApplicationPatch(app), guards...)
	if err == nil {
		updated := mapping.ToDomainApplication(row)
		return &updated, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, mapWriteErr(err, "update application "+app.ApplicationID)
	}

	// The conditional update matched nothing: either the row is gone or it moved on.
	if _, ferr := r.FindApplicationByID(ctx, app.ApplicationID); ferr != nil {
		return nil, ferr
	}
	return nil, fmt.Errorf("application %s is %s: %w", app.ApplicationID, lost, apperrors.ErrStaleState)
}

func (r *applicationRepository) UpdateAccountingStatus(ctx context.Context, applicationID string, status domain.AccountingStatus, updatedAt time.Time) error {
	_, err := r.db.Update(ctx, schema.Applications, applicationID, portsrepo.Row{
		"accounting_status": string(status),
		"updated_at":        updatedAt,
	})
	if err != nil {
		return fmt.Errorf("update accounting status of %s: %w", applicationID, err)
	}
	return nil
}
