package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/bp848/mqdriven-sub001/internal/apperrors"
	"github.com/bp848/mqdriven-sub001/internal/core/domain"
	portsrepo "github.com/bp848/mqdriven-sub001/internal/core/ports/repositories"
	"github.com/bp848/mqdriven-sub001/internal/repositories/backend"
	"github.com/bp848/mqdriven-sub001/internal/repositories/batch"
	"github.com/bp848/mqdriven-sub001/internal/repositories/database/memory"
	"github.com/bp848/mqdriven-sub001/internal/repositories/schema"
	"github.com/bp848/mqdriven-sub001/internal/repositories/store"
)

type StoreTestSuite struct {
	suite.Suite
	ctx   context.Context
	mem   *memory.Store
	repos portsrepo.RepositoryProvider
}

func (s *StoreTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.mem = memory.NewSeeded()
	adapter := backend.New(nil, s.mem, backend.Options{})
	s.repos = store.NewRepositoryProvider(adapter, batch.NewExecutor(adapter, batch.Config{}))
}

func TestStoreTestSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}

func (s *StoreTestSuite) newBatch(appID string) domain.JournalBatch {
	batchID := uuid.NewString()
	return domain.JournalBatch{
		BatchID:             batchID,
		SourceApplicationID: appID,
		Status:              domain.JournalDraft,
		CreatedAt:           time.Now().UTC(),
		Lines: []domain.JournalLine{
			{LineID: uuid.NewString(), AccountCode: "6100", AccountName: "旅費交通費", DebitAmount: decimal.NewFromInt(500), CreditAmount: decimal.Zero, SortIndex: 0},
			{LineID: uuid.NewString(), AccountCode: "2110", AccountName: "未払金", DebitAmount: decimal.Zero, CreditAmount: decimal.NewFromInt(500), SortIndex: 1},
		},
	}
}

func (s *StoreTestSuite) TestFindApplication_MalformedIDIsNotFound() {
	_, err := s.repos.ApplicationRepo.FindApplicationByID(s.ctx, "invalid-id")
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *StoreTestSuite) TestUpdateApplicationFrom_StaleState() {
	app, err := s.repos.ApplicationRepo.FindApplicationByID(s.ctx, memory.SeedPendingAppID)
	s.Require().NoError(err)

	app.Status = domain.StatusRejected
	_, err = s.repos.ApplicationRepo.UpdateApplicationFrom(s.ctx, domain.StatusPendingApproval, *app)
	s.Require().NoError(err)

	app.Status = domain.StatusApproved
	_, err = s.repos.ApplicationRepo.UpdateApplicationFrom(s.ctx, domain.StatusPendingApproval, *app)
	s.ErrorIs(err, apperrors.ErrStaleState)
}

func (s *StoreTestSuite) TestSaveBatch_DuplicateForApplication() {
	s.Require().NoError(s.repos.JournalRepo.SaveBatch(s.ctx, s.newBatch(memory.SeedPendingAppID)))

	err := s.repos.JournalRepo.SaveBatch(s.ctx, s.newBatch(memory.SeedPendingAppID))
	s.ErrorIs(err, apperrors.ErrDuplicate)
}

func (s *StoreTestSuite) TestSaveBatch_IsAtomic() {
	b := s.newBatch(memory.SeedPendingAppID)
	b.Lines[1].LineID = b.Lines[0].LineID // second insert collides

	batchesBefore := s.mem.Count(schema.JournalBatches)
	linesBefore := s.mem.Count(schema.JournalLines)

	err := s.repos.JournalRepo.SaveBatch(s.ctx, b)
	s.Require().Error(err)
	s.Equal(batchesBefore, s.mem.Count(schema.JournalBatches))
	s.Equal(linesBefore, s.mem.Count(schema.JournalLines))
}

func (s *StoreTestSuite) TestMarkBatchPosted_OnlyOnce() {
	b := s.newBatch(memory.SeedPendingAppID)
	s.Require().NoError(s.repos.JournalRepo.SaveBatch(s.ctx, b))

	posted, err := s.repos.JournalRepo.MarkBatchPosted(s.ctx, b.BatchID, time.Now())
	s.Require().NoError(err)
	s.Equal(domain.JournalPosted, posted.Status)
	s.NotNil(posted.PostedAt)
	s.Len(posted.Lines, 2)

	_, err = s.repos.JournalRepo.MarkBatchPosted(s.ctx, b.BatchID, time.Now())
	s.ErrorIs(err, apperrors.ErrStaleState)

	_, err = s.repos.JournalRepo.MarkBatchPosted(s.ctx, uuid.NewString(), time.Now())
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *StoreTestSuite) TestFindBatchesByApplicationIDs_JoinsLines() {
	batches, err := s.repos.JournalRepo.FindBatchesByApplicationIDs(s.ctx,
		[]string{memory.SeedPostedAppID, memory.SeedPendingAppID, "invalid-id"})
	s.Require().NoError(err)
	s.Require().Len(batches, 1)

	b := batches[memory.SeedPostedAppID]
	s.Equal(memory.SeedPostedBatchID, b.BatchID)
	s.Require().Len(b.Lines, 3)
	for i, l := range b.Lines {
		s.Equal(i, l.SortIndex)
	}
}

func (s *StoreTestSuite) TestEnsureAccount_ExistingAndNew() {
	existing, err := s.repos.AccountRepo.EnsureAccount(s.ctx, domain.AccountItem{Code: "2110", Name: "ignored", Category: domain.Liability})
	s.Require().NoError(err)
	s.Equal("未払金", existing.Name)

	created, err := s.repos.AccountRepo.EnsureAccount(s.ctx, domain.AccountItem{Code: "2120", Name: "未払費用", Category: domain.Liability})
	s.Require().NoError(err)
	s.Equal("2120", created.Code)

	accounts, err := s.repos.AccountRepo.FindAccountsByCodes(s.ctx, []string{"2110", "2120", "9999"})
	s.Require().NoError(err)
	s.Len(accounts, 2)
}

// insertCounter counts Insert calls per table on top of a real backend.
type insertCounter struct {
	portsrepo.Backend
	inserts map[string]int
}

func (c *insertCounter) Insert(ctx context.Context, table string, row portsrepo.Row) (portsrepo.Row, error) {
	c.inserts[table]++
	return c.Backend.Insert(ctx, table, row)
}

func (s *StoreTestSuite) TestEnsureAccount_ExistingAccountIsNotReinserted() {
	adapter := backend.New(nil, s.mem, backend.Options{})
	counter := &insertCounter{Backend: adapter, inserts: map[string]int{}}
	repos := store.NewRepositoryProvider(counter, batch.NewExecutor(counter, batch.Config{}))

	for i := 0; i < 3; i++ {
		account, err := repos.AccountRepo.EnsureAccount(s.ctx, domain.AccountItem{Code: "2110", Name: "ignored", Category: domain.Liability})
		s.Require().NoError(err)
		s.Equal("未払金", account.Name)
	}
	s.Zero(counter.inserts[schema.ChartOfAccounts])

	_, err := repos.AccountRepo.EnsureAccount(s.ctx, domain.AccountItem{Code: "2120", Name: "未払費用", Category: domain.Liability})
	s.Require().NoError(err)
	_, err = repos.AccountRepo.EnsureAccount(s.ctx, domain.AccountItem{Code: "2120", Name: "未払費用", Category: domain.Liability})
	s.Require().NoError(err)
	s.Equal(1, counter.inserts[schema.ChartOfAccounts])
}

func (s *StoreTestSuite) TestUpdatePendingApplication_GuardsLevel() {
	app, err := s.repos.ApplicationRepo.FindApplicationByID(s.ctx, memory.SeedPendingAppID)
	s.Require().NoError(err)
	s.Require().Equal(1, app.CurrentLevel)

	next := *app
	next.CurrentLevel = 2
	updated, err := s.repos.ApplicationRepo.UpdatePendingApplication(s.ctx, 1, next)
	s.Require().NoError(err)
	s.Equal(2, updated.CurrentLevel)

	// A second writer that loaded level 1 loses even though the status is unchanged.
	_, err = s.repos.ApplicationRepo.UpdatePendingApplication(s.ctx, 1, next)
	s.ErrorIs(err, apperrors.ErrStaleState)
}

func (s *StoreTestSuite) TestListApplicationsForUser() {
	mine, err := s.repos.ApplicationRepo.ListApplicationsForUser(s.ctx, memory.SeedApplicantID)
	s.Require().NoError(err)
	s.Len(mine, 2)

	toApprove, err := s.repos.ApplicationRepo.ListApplicationsForUser(s.ctx, memory.SeedFinalApproverID)
	s.Require().NoError(err)
	s.Empty(toApprove)
}

func (s *StoreTestSuite) TestFindUsersByIDs() {
	users, err := s.repos.UserRepo.FindUsersByIDs(s.ctx, []string{memory.SeedApproverID, memory.SeedFinalApproverID})
	s.Require().NoError(err)
	s.Equal("ichiro.suzuki@example.com", users[memory.SeedApproverID].Email)
	s.Len(users, 2)
}
