// Package store implements the typed repositories on top of the backend contract,
// so the same code serves the database and the fallback store.
package store

import (
	"fmt"

	"github.com/bp848/mqdriven-sub001/internal/apperrors"
	portsrepo "github.com/bp848/mqdriven-sub001/internal/core/ports/repositories"
	"github.com/bp848/mqdriven-sub001/internal/repositories/batch"
	"github.com/bp848/mqdriven-sub001/internal/repositories/errclass"
)

// NewRepositoryProvider wires every repository to db. Multi-row lookups go through exec.
func NewRepositoryProvider(db portsrepo.Backend, exec *batch.Executor) portsrepo.RepositoryProvider {
	accountRepo := newAccountRepository(db, exec)
	return portsrepo.RepositoryProvider{
		ApplicationRepo:     newApplicationRepository(db),
		ApplicationCodeRepo: newApplicationCodeRepository(db, exec),
		RouteRepo:           newApprovalRouteRepository(db),
		UserRepo:            newUserRepository(exec),
		AccountRepo:         accountRepo,
		JournalRepo:         newJournalRepository(db, exec),
		NotificationRepo:    newNotificationRepository(db),
	}
}

// mapWriteErr turns constraint violations into apperrors.ErrDuplicate while keeping the cause.
func mapWriteErr(err error, what string) error {
	if errclass.Classify(err) == errclass.ConstraintViolation {
		return fmt.Errorf("%s: %w: %w", what, apperrors.ErrDuplicate, err)
	}
	return fmt.Errorf("%s: %w", what, err)
}

func notFound(what, id string) error {
	return fmt.Errorf("%s %s: %w", what, id, apperrors.ErrNotFound)
}
