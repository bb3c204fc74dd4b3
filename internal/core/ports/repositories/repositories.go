package repositories

import (
	"context"
	"time"

	"github.com/bp848/mqdriven-sub001/internal/core/domain"
)

// ApplicationReader defines read operations for applications.
type ApplicationReader interface {
	// FindApplicationByID retrieves an application by id or apperrors.ErrNotFound.
	FindApplicationByID(ctx context.Context, applicationID string) (*domain.Application, error)

	// ListApplicationsForUser lists applications the user submitted or must approve, newest first.
	ListApplicationsForUser(ctx context.Context, userID string) ([]domain.Application, error)

	// ListApplicationsByStatus lists applications in a status, newest first.
	ListApplicationsByStatus(ctx context.Context, status domain.ApplicationStatus) ([]domain.Application, error)

	// FindDraft returns the applicant's draft for an application code, or apperrors.ErrNotFound.
	FindDraft(ctx context.Context, applicantID, applicationCodeID string) (*domain.Application, error)
}

// ApplicationWriter defines write operations for applications.
type ApplicationWriter interface {
	// SaveApplication inserts a new application.
	SaveApplication(ctx context.Context, app domain.Application) (*domain.Application, error)

	// UpdateApplicationFrom applies app's mutable fields only if the stored status still equals
	// expected. A lost race yields apperrors.ErrStaleState.
	UpdateApplicationFrom(ctx context.Context, expected domain.ApplicationStatus, app domain.Application) (*domain.Application, error)

	// UpdatePendingApplication applies app's mutable fields only if the stored application is still
	// pending approval at fromLevel, so two deciders on the same step cannot both win.
	UpdatePendingApplication(ctx context.Context, fromLevel int, app domain.Application) (*domain.Application, error)

	// UpdateAccountingStatus sets the accounting axis of an application.
	UpdateAccountingStatus(ctx context.Context, applicationID string, status domain.AccountingStatus, updatedAt time.Time) error
}

// ApplicationRepositoryFacade combines application read and write operations.
type ApplicationRepositoryFacade interface {
	ApplicationReader
	ApplicationWriter
}

// ApplicationCodeRepositoryFacade resolves application type codes.
type ApplicationCodeRepositoryFacade interface {
	FindApplicationCodeByID(ctx context.Context, id string) (*domain.ApplicationCode, error)
	FindApplicationCodesByCode(ctx context.Context, codes []string) ([]domain.ApplicationCode, error)
	FindApplicationCodesByIDs(ctx context.Context, ids []string) (map[string]domain.ApplicationCode, error)
}

// ApprovalRouteRepositoryFacade resolves approval routes.
type ApprovalRouteRepositoryFacade interface {
	FindRouteByID(ctx context.Context, routeID string) (*domain.ApprovalRoute, error)
}

// UserRepositoryFacade resolves reference user data.
type UserRepositoryFacade interface {
	FindUsersByIDs(ctx context.Context, userIDs []string) (map[string]domain.User, error)
}

// AccountRepositoryFacade reads the chart of accounts.
type AccountRepositoryFacade interface {
	// FindAccountsByCodes returns the accounts keyed by code; unknown codes are absent.
	FindAccountsByCodes(ctx context.Context, codes []string) (map[string]domain.AccountItem, error)

	// EnsureAccount returns the account with item's code, creating it when absent.
	EnsureAccount(ctx context.Context, item domain.AccountItem) (*domain.AccountItem, error)
}

// JournalReader defines read operations for journal batches.
type JournalReader interface {
	FindBatchByID(ctx context.Context, batchID string) (*domain.JournalBatch, error)
	FindBatchByApplicationID(ctx context.Context, applicationID string) (*domain.JournalBatch, error)

	// FindBatchesByApplicationIDs returns batches with their lines, keyed by source application id.
	FindBatchesByApplicationIDs(ctx context.Context, applicationIDs []string) (map[string]domain.JournalBatch, error)
}

// JournalWriter defines write operations for journal batches.
type JournalWriter interface {
	// SaveBatch persists a draft batch and all of its lines atomically. A batch that
	// already exists for the source application yields apperrors.ErrDuplicate.
	SaveBatch(ctx context.Context, batch domain.JournalBatch) error

	// MarkBatchPosted flips a draft batch to posted. apperrors.ErrStaleState is returned
	// if the batch was no longer a draft.
	MarkBatchPosted(ctx context.Context, batchID string, postedAt time.Time) (*domain.JournalBatch, error)
}

// JournalRepositoryFacade combines journal read and write operations.
type JournalRepositoryFacade interface {
	JournalReader
	JournalWriter
}

// NotificationRepositoryFacade appends notification audit records.
type NotificationRepositoryFacade interface {
	SaveNotification(ctx context.Context, n domain.ApplicationNotificationEmail) error
	ListNotificationsByApplication(ctx context.Context, applicationID string) ([]domain.ApplicationNotificationEmail, error)
}

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	ApplicationRepo     ApplicationRepositoryFacade
	ApplicationCodeRepo ApplicationCodeRepositoryFacade
	RouteRepo           ApprovalRouteRepositoryFacade
	UserRepo            UserRepositoryFacade
	AccountRepo         AccountRepositoryFacade
	JournalRepo         JournalRepositoryFacade
	NotificationRepo    NotificationRepositoryFacade
}
