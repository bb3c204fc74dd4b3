package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bp848/mqdriven-sub001/internal/apperrors"
	"github.com/bp848/mqdriven-sub001/internal/core/domain"
	portsrepo "github.com/bp848/mqdriven-sub001/internal/core/ports/repositories"
	portssvc "github.com/bp848/mqdriven-sub001/internal/core/ports/services"
	"github.com/bp848/mqdriven-sub001/internal/utils/accounting"
)

const (
	DefaultPayableAccountCode = "2110"
	DefaultPayableAccountName = "未払金"
	DefaultExpenseAccountCode = "6200"
)

// journalService derives journal batches from approved applications.
type journalService struct {
	BaseService
	appRepo            portsrepo.ApplicationRepositoryFacade
	accountRepo        portsrepo.AccountRepositoryFacade
	journalRepo        portsrepo.JournalRepositoryFacade
	payableCode        string
	defaultExpenseCode string
}

// JournalServiceOption is a functional option for configuring the journal service
type JournalServiceOption func(*journalService)

// WithPayableAccount sets the account credited against every derived batch
func WithPayableAccount(code string) JournalServiceOption {
	return func(s *journalService) {
		if code != "" {
			s.payableCode = code
		}
	}
}

// WithDefaultExpenseAccount sets the debit account for forms that carry no account hint
func WithDefaultExpenseAccount(code string) JournalServiceOption {
	return func(s *journalService) {
		if code != "" {
			s.defaultExpenseCode = code
		}
	}
}

// WithJournalClock overrides the time source
func WithJournalClock(clock func() time.Time) JournalServiceOption {
	return func(s *journalService) {
		s.Clock = clock
	}
}

// NewJournalService creates a new JournalService.
func NewJournalService(
	appRepo portsrepo.ApplicationRepositoryFacade,
	accountRepo portsrepo.AccountRepositoryFacade,
	journalRepo portsrepo.JournalRepositoryFacade,
	options ...JournalServiceOption,
) portssvc.JournalSvcFacade {
	svc := &journalService{
		appRepo:            appRepo,
		accountRepo:        accountRepo,
		journalRepo:        journalRepo,
		payableCode:        DefaultPayableAccountCode,
		defaultExpenseCode: DefaultExpenseAccountCode,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

// Ensure journalService implements the portssvc.JournalSvcFacade interface
var _ portssvc.JournalSvcFacade = (*journalService)(nil)

func (s *journalService) GetBatch(ctx context.Context, batchID string) (*domain.JournalBatch, error) {
	return s.journalRepo.FindBatchByID(ctx, batchID)
}

func (s *journalService) GetBatchForApplication(ctx context.Context, applicationID string) (*domain.JournalBatch, error) {
	return s.journalRepo.FindBatchByApplicationID(ctx, applicationID)
}

// Generate implements portssvc.JournalWriterSvc
func (s *journalService) Generate(ctx context.Context, applicationID string) (*domain.JournalBatch, error) {
	app, err := s.appRepo.FindApplicationByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.Status != domain.StatusApproved {
		return nil, fmt.Errorf("%w: application %s is %s, journal requires approved", apperrors.ErrInvalidState, applicationID, app.Status)
	}

	existing, err := s.journalRepo.FindBatchByApplicationID(ctx, applicationID)
	if err == nil {
		s.syncAccountingStatus(ctx, app, existing)
		return existing, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	batch, err := s.buildBatch(ctx, app)
	if err != nil {
		s.LogError(ctx, err, "Failed to build journal batch", slog.String("application_id", applicationID))
		return nil, err
	}

	if err := s.journalRepo.SaveBatch(ctx, *batch); err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			s.LogError(ctx, err, "Failed to save journal batch", slog.String("application_id", applicationID))
			return nil, err
		}
		// A concurrent generator won the unique source_application_id race.
		winner, ferr := s.journalRepo.FindBatchByApplicationID(ctx, applicationID)
		if ferr != nil {
			return nil, ferr
		}
		s.syncAccountingStatus(ctx, app, winner)
		return winner, nil
	}

	s.LogInfo(ctx, "Journal batch generated",
		slog.String("application_id", applicationID),
		slog.String("batch_id", batch.BatchID),
		slog.Int("lines", len(batch.Lines)))
	s.syncAccountingStatus(ctx, app, batch)
	return batch, nil
}

// buildBatch turns the application's form into a balanced draft batch.
func (s *journalService) buildBatch(ctx context.Context, app *domain.Application) (*domain.JournalBatch, error) {
	form, err := domain.ParseExpenseForm(app.FormData)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrValidation, err)
	}
	if err := form.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrValidation, err)
	}

	var debits []domain.JournalLine
	if form.HasItems() {
		for i, item := range form.Items {
			debits = append(debits, domain.JournalLine{
				AccountCode:  item.AccountCode,
				DebitAmount:  item.Amount,
				CreditAmount: decimal.Zero,
				Description:  lineDescription(item.Description, item.Project, item.Customer),
				SortIndex:    i,
			})
		}
	} else {
		code := form.AccountCode
		if code == "" {
			code = s.defaultExpenseCode
		}
		debits = append(debits, domain.JournalLine{
			AccountCode:  code,
			DebitAmount:  form.TotalAmount,
			CreditAmount: decimal.Zero,
			Description:  form.Description,
		})
	}

	codes := make([]string, 0, len(debits))
	for _, l := range debits {
		codes = append(codes, l.AccountCode)
	}
	accounts, err := s.accountRepo.FindAccountsByCodes(ctx, codes)
	if err != nil {
		return nil, err
	}
	for i := range debits {
		account, ok := accounts[debits[i].AccountCode]
		if !ok {
			return nil, fmt.Errorf("%w: unknown account code %s", apperrors.ErrValidation, debits[i].AccountCode)
		}
		debits[i].AccountName = account.Name
	}

	payable, err := s.accountRepo.EnsureAccount(ctx, domain.AccountItem{
		Code:     s.payableCode,
		Name:     DefaultPayableAccountName,
		Category: domain.Liability,
	})
	if err != nil {
		return nil, err
	}
	lines := append(debits, accounting.BalancingCredit(debits, *payable, form.Description))
	if err := accounting.ValidateBatchBalance(lines); err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrValidation, err)
	}

	batch := &domain.JournalBatch{
		BatchID:             uuid.NewString(),
		SourceApplicationID: app.ApplicationID,
		Status:              domain.JournalDraft,
		CreatedAt:           s.Now(),
	}
	for i := range lines {
		lines[i].LineID = uuid.NewString()
		lines[i].BatchID = batch.BatchID
	}
	batch.Lines = lines
	return batch, nil
}

// Post implements portssvc.JournalWriterSvc
func (s *journalService) Post(ctx context.Context, batchID string) (*domain.JournalBatch, error) {
	batch, err := s.journalRepo.FindBatchByID(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if batch.Status != domain.JournalDraft {
		return nil, fmt.Errorf("%w: journal batch %s is already %s", apperrors.ErrInvalidState, batchID, batch.Status)
	}

	posted, err := s.journalRepo.MarkBatchPosted(ctx, batchID, s.Now())
	if err != nil {
		s.LogError(ctx, err, "Failed to post journal batch", slog.String("batch_id", batchID))
		return nil, err
	}
	s.LogInfo(ctx, "Journal batch posted", slog.String("batch_id", batchID))

	if err := s.appRepo.UpdateAccountingStatus(ctx, posted.SourceApplicationID, domain.AccountingPosted, s.Now()); err != nil {
		s.LogWarn(ctx, err, "Batch posted but application accounting status was not updated",
			slog.String("batch_id", batchID),
			slog.String("application_id", posted.SourceApplicationID))
	}
	return posted, nil
}

// syncAccountingStatus brings the application's accounting axis in line with its batch.
func (s *journalService) syncAccountingStatus(ctx context.Context, app *domain.Application, batch *domain.JournalBatch) {
	want := domain.AccountingStatus(batch.Status)
	if app.AccountingStatus == want {
		return
	}
	if err := s.appRepo.UpdateAccountingStatus(ctx, app.ApplicationID, want, s.Now()); err != nil {
		s.LogWarn(ctx, err, "Failed to update application accounting status",
			slog.String("application_id", app.ApplicationID),
			slog.String("accounting_status", string(want)))
	}
}

// lineDescription joins the non-empty parts of an item description.
func lineDescription(parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " / ")
}
