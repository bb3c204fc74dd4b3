package store

import (
	"context"
	"fmt"

	"github.com/bp848/mqdriven-sub001/internal/core/domain"
	portsrepo "github.com/bp848/mqdriven-sub001/internal/core/ports/repositories"
	"github.com/bp848/mqdriven-sub001/internal/repositories/batch"
	"github.com/bp848/mqdriven-sub001/internal/repositories/schema"
	"github.com/bp848/mqdriven-sub001/internal/utils/mapping"
)

type notificationRepository struct {
	db portsrepo.Backend
}

func newNotificationRepository(db portsrepo.Backend) portsrepo.NotificationRepositoryFacade {
	return &notificationRepository{db: db}
}

var _ portsrepo.NotificationRepositoryFacade = (*notificationRepository)(nil)

func (r *notificationRepository) SaveNotification(ctx context.Context, n domain.ApplicationNotificationEmail) error {
	if _, err := r.db.Insert(ctx, schema.NotificationEmails, mapping.ToRowNotificationEmail(n)); err != nil {
		return mapWriteErr(err, "insert notification for "+n.ApplicationID)
	}
	return nil
}

func (r *notificationRepository) ListNotificationsByApplication(ctx context.Context, applicationID string) ([]domain.ApplicationNotificationEmail, error) {
	if !batch.IsCanonicalUUID(applicationID) {
		return []domain.ApplicationNotificationEmail{}, nil
	}
	rows, err := r.db.Select(ctx, schema.NotificationEmails, portsrepo.Query{
		Filters: []portsrepo.Filter{portsrepo.Eq("application_id", applicationID)},
		OrderBy: "sent_at",
	})
	if err != nil {
		return nil, fmt.Errorf("list notifications of %s: %w", applicationID, err)
	}
	out := make([]domain.ApplicationNotificationEmail, len(rows))
	for i, row := range rows {
		out[i] = mapping.ToDomainNotificationEmail(row)
	}
	return out, nil
}
