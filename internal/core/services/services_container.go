package services

import (
	portsrepo "github.com/bp848/mqdriven-sub001/internal/core/ports/repositories"
	portssvc "github.com/bp848/mqdriven-sub001/internal/core/ports/services"
	"github.com/bp848/mqdriven-sub001/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(
	cfg *config.Config,
	repos portsrepo.RepositoryProvider,
	mailer portssvc.Mailer,
	storage portssvc.FileStorage,
	extractor portssvc.Extractor,
) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.Notification = NewNotificationService(
		repos.UserRepo,
		repos.ApplicationCodeRepo,
		repos.NotificationRepo,
		mailer,
	)

	container.Journal = NewJournalService(
		repos.ApplicationRepo,
		repos.AccountRepo,
		repos.JournalRepo,
		WithPayableAccount(cfg.PayableAccountCode),
		WithDefaultExpenseAccount(cfg.DefaultExpenseAccountCode),
	)

	// Approval depends on both the dispatcher and the journal generator
	container.Application = NewApplicationService(
		repos.ApplicationRepo,
		repos.ApplicationCodeRepo,
		repos.RouteRepo,
		WithNotifier(container.Notification),
		WithJournalGeneration(container.Journal, cfg.JournalApplicationCodes...),
	)

	container.Accounting = NewAccountingService(
		repos.ApplicationRepo,
		repos.ApplicationCodeRepo,
		repos.JournalRepo,
		repos.AccountRepo,
	)

	container.Intake = NewIntakeService(repos.ApplicationRepo, storage, extractor)

	return container
}
