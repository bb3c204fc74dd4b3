package services

import (
	"context"
	"log/slog"

	"github.com/bp848/mqdriven-sub001/internal/core/domain"
	portsrepo "github.com/bp848/mqdriven-sub001/internal/core/ports/repositories"
	portssvc "github.com/bp848/mqdriven-sub001/internal/core/ports/services"
)

// accountingService joins approved applications with their bookkeeping.
type accountingService struct {
	BaseService
	appRepo     portsrepo.ApplicationReader
	codeRepo    portsrepo.ApplicationCodeRepositoryFacade
	journalRepo portsrepo.JournalReader
	accountRepo portsrepo.AccountRepositoryFacade
}

// NewAccountingService creates a new AccountingService.
func NewAccountingService(
	appRepo portsrepo.ApplicationReader,
	codeRepo portsrepo.ApplicationCodeRepositoryFacade,
	journalRepo portsrepo.JournalReader,
	accountRepo portsrepo.AccountRepositoryFacade,
) portssvc.AccountingSvc {
	return &accountingService{
		appRepo:     appRepo,
		codeRepo:    codeRepo,
		journalRepo: journalRepo,
		accountRepo: accountRepo,
	}
}

var _ portssvc.AccountingSvc = (*accountingService)(nil)

// ListApprovedApplications implements portssvc.AccountingSvc. Only the application read
// can fail the call; the joined hops degrade to missing data.
func (s *accountingService) ListApprovedApplications(ctx context.Context, codes ...string) ([]domain.ApprovedApplication, error) {
	apps, err := s.appRepo.ListApplicationsByStatus(ctx, domain.StatusApproved)
	if err != nil {
		s.LogError(ctx, err, "Failed to list approved applications")
		return nil, err
	}

	if len(codes) > 0 {
		wanted, err := s.codeRepo.FindApplicationCodesByCode(ctx, codes)
		if err != nil {
			return nil, err
		}
		allowed := make(map[string]struct{}, len(wanted))
		for _, c := range wanted {
			allowed[c.ID] = struct{}{}
		}
		filtered := apps[:0]
		for _, app := range apps {
			if _, ok := allowed[app.ApplicationCodeID]; ok {
				filtered = append(filtered, app)
			}
		}
		apps = filtered
	}

	result := make([]domain.ApprovedApplication, len(apps))
	if len(apps) == 0 {
		return result, nil
	}

	appIDs := make([]string, len(apps))
	codeIDs := make([]string, len(apps))
	for i, app := range apps {
		appIDs[i] = app.ApplicationID
		codeIDs[i] = app.ApplicationCodeID
	}

	codeByID, err := s.codeRepo.FindApplicationCodesByIDs(ctx, codeIDs)
	if err != nil {
		s.LogWarn(ctx, err, "Application codes unavailable for approved listing")
	}

	batches, err := s.journalRepo.FindBatchesByApplicationIDs(ctx, appIDs)
	if err != nil {
		s.LogWarn(ctx, err, "Journal batches unavailable for approved listing")
	}
	s.resolveAccountNames(ctx, batches)

	for i, app := range apps {
		result[i] = domain.ApprovedApplication{Application: app}
		if code, ok := codeByID[app.ApplicationCodeID]; ok {
			result[i].ApplicationCode = &code
		}
		if b, ok := batches[app.ApplicationID]; ok {
			result[i].JournalBatch = &b
		}
	}

	s.LogDebug(ctx, "Listed approved applications",
		slog.Int("count", len(result)),
		slog.Int("with_batch", len(batches)))
	return result, nil
}

// resolveAccountNames fills line account names from the chart of accounts.
func (s *accountingService) resolveAccountNames(ctx context.Context, batches map[string]domain.JournalBatch) {
	var codes []string
	for _, b := range batches {
		for _, l := range b.Lines {
			codes = append(codes, l.AccountCode)
		}
	}
	if len(codes) == 0 {
		return
	}
	accounts, err := s.accountRepo.FindAccountsByCodes(ctx, codes)
	if err != nil {
		s.LogWarn(ctx, err, "Chart of accounts unavailable; keeping stored account names")
		return
	}
	for appID, b := range batches {
		for i := range b.Lines {
			if a, ok := accounts[b.Lines[i].AccountCode]; ok {
				b.Lines[i].AccountName = a.Name
			}
		}
		batches[appID] = b
	}
}
