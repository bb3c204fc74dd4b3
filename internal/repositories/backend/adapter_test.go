package backend_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	portsrepo "github.com/bp848/mqdriven-sub001/internal/core/ports/repositories"
	"github.com/bp848/mqdriven-sub001/internal/middleware"
	"github.com/bp848/mqdriven-sub001/internal/repositories/backend"
	"github.com/bp848/mqdriven-sub001/internal/repositories/database/memory"
	"github.com/bp848/mqdriven-sub001/internal/repositories/errclass"
	"github.com/bp848/mqdriven-sub001/internal/repositories/schema"
)

// MockBackend is a mock type for the portsrepo.Backend interface
type MockBackend struct {
	mock.Mock
}

func rowsOf(args mock.Arguments) []portsrepo.Row {
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]portsrepo.Row)
}

func (m *MockBackend) Select(ctx context.Context, table string, q portsrepo.Query) ([]portsrepo.Row, error) {
	args := m.Called(ctx, table, q)
	return rowsOf(args), args.Error(1)
}

func (m *MockBackend) SelectIn(ctx context.Context, table string, column string, values []string) ([]portsrepo.Row, error) {
	args := m.Called(ctx, table, column, values)
	return rowsOf(args), args.Error(1)
}

func (m *MockBackend) Insert(ctx context.Context, table string, row portsrepo.Row) (portsrepo.Row, error) {
	args := m.Called(ctx, table, row)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(portsrepo.Row), args.Error(1)
}

func (m *MockBackend) Update(ctx context.Context, table string, id string, patch portsrepo.Row, conds ...portsrepo.Filter) (portsrepo.Row, error) {
	args := m.Called(ctx, table, id, patch, conds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(portsrepo.Row), args.Error(1)
}

func (m *MockBackend) WithTx(ctx context.Context, fn func(tx portsrepo.Backend) error) error {
	args := m.Called(ctx, fn)
	return args.Error(0)
}

func logCtx() (context.Context, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	return middleware.WithLogger(context.Background(), logger), &buf
}

var (
	missingRelation = &pgconn.PgError{Code: "42P01", Message: `relation "journal_batches" does not exist`}
	refused         = &errclass.BackendError{Code: "ECONNREFUSED", Message: "connect ECONNREFUSED 10.0.0.5:5432"}
)

func TestRead_SchemaMissingFallsBackAndWarnsOnce(t *testing.T) {
	ctx, logs := logCtx()
	primary := new(MockBackend)
	primary.On("Select", mock.Anything, schema.JournalBatches, mock.Anything).Return(nil, missingRelation).Twice()
	adapter := backend.New(primary, memory.NewSeeded(), backend.Options{})

	for i := 0; i < 2; i++ {
		res, err := adapter.Read(ctx, schema.JournalBatches, portsrepo.Eq("source_application_id", memory.SeedPostedAppID))
		require.NoError(t, err)
		assert.True(t, res.Degraded)
		assert.Equal(t, errclass.SchemaMissing, res.Class)
		require.Len(t, res.Rows, 1)
		assert.Equal(t, memory.SeedPostedBatchID, res.Rows[0]["id"])
	}

	assert.Equal(t, 1, strings.Count(logs.String(), "schema drift"))
	primary.AssertExpectations(t)

	snap := adapter.Degradations()
	require.Len(t, snap, 1)
	assert.Equal(t, schema.JournalBatches, snap[0].Table)
	assert.Equal(t, 2, snap[0].Fallbacks)
}

func TestRead_UnreachableNamesConnectivity(t *testing.T) {
	ctx, logs := logCtx()
	primary := new(MockBackend)
	primary.On("Select", mock.Anything, schema.Users, mock.Anything).Return(nil, refused)
	adapter := backend.New(primary, memory.NewSeeded(), backend.Options{})

	res, err := adapter.Read(ctx, schema.Users)
	require.NoError(t, err)
	assert.True(t, res.Degraded)
	assert.Equal(t, errclass.BackendUnreachable, res.Class)
	assert.Contains(t, logs.String(), "connectivity")
	assert.NotContains(t, logs.String(), "schema drift")
}

func TestRead_UnknownErrorPropagates(t *testing.T) {
	boom := &pgconn.PgError{Code: "42601", Message: "syntax error"}
	primary := new(MockBackend)
	primary.On("Select", mock.Anything, schema.Users, mock.Anything).Return(nil, boom)
	adapter := backend.New(primary, memory.NewSeeded(), backend.Options{})

	_, err := adapter.Read(context.Background(), schema.Users)
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, adapter.Degradations())
}

func TestRead_HealthyPrimaryIsNotDegraded(t *testing.T) {
	primary := new(MockBackend)
	primary.On("Select", mock.Anything, schema.Users, mock.Anything).Return([]portsrepo.Row{{"id": "u"}}, nil)
	adapter := backend.New(primary, memory.NewSeeded(), backend.Options{})

	res, err := adapter.Read(context.Background(), schema.Users)
	require.NoError(t, err)
	assert.False(t, res.Degraded)
	assert.Len(t, res.Rows, 1)
}

func TestInsert_ConstraintViolationPropagates(t *testing.T) {
	dup := &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"}
	primary := new(MockBackend)
	primary.On("Insert", mock.Anything, schema.JournalBatches, mock.Anything).Return(nil, dup)
	fallback := memory.New()
	adapter := backend.New(primary, fallback, backend.Options{})

	_, err := adapter.Insert(context.Background(), schema.JournalBatches, portsrepo.Row{"source_application_id": memory.SeedPostedAppID})
	assert.ErrorIs(t, err, dup)
	assert.Zero(t, fallback.Count(schema.JournalBatches))
}

func TestNoPrimary_ServesFallback(t *testing.T) {
	adapter := backend.New(nil, memory.NewSeeded(), backend.Options{})
	assert.False(t, adapter.HasPrimary())

	res, err := adapter.Read(context.Background(), schema.ApplicationCodes, portsrepo.Eq("code", "EXP"))
	require.NoError(t, err)
	assert.True(t, res.Degraded)
	assert.Len(t, res.Rows, 1)
}

// blockingBackend waits for its context to end, like a database that stopped answering.
type blockingBackend struct {
	portsrepo.Backend
	writeCtxErr chan error
}

func (b *blockingBackend) Select(ctx context.Context, _ string, _ portsrepo.Query) ([]portsrepo.Row, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (b *blockingBackend) Insert(ctx context.Context, _ string, _ portsrepo.Row) (portsrepo.Row, error) {
	b.writeCtxErr <- ctx.Err()
	return nil, refused
}

func TestRead_TimeoutTriggersFallback(t *testing.T) {
	adapter := backend.New(&blockingBackend{}, memory.NewSeeded(), backend.Options{Timeout: 20 * time.Millisecond})

	start := time.Now()
	res, err := adapter.Read(context.Background(), schema.Users)
	require.NoError(t, err)
	assert.True(t, res.Degraded)
	assert.Equal(t, errclass.BackendUnreachable, res.Class)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestInsert_DetachedFromCallerCancellation(t *testing.T) {
	primary := &blockingBackend{writeCtxErr: make(chan error, 1)}
	fallback := memory.New()
	adapter := backend.New(primary, fallback, backend.Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := adapter.Insert(ctx, schema.Users, portsrepo.Row{"name": "late writer"})
	require.NoError(t, err)
	assert.NoError(t, <-primary.writeCtxErr)
	assert.Equal(t, 1, fallback.Count(schema.Users))
}

func TestWithTx_ReplaysOnFallback(t *testing.T) {
	primary := new(MockBackend)
	primary.On("WithTx", mock.Anything, mock.Anything).Return(missingRelation)
	fallback := memory.New()
	adapter := backend.New(primary, fallback, backend.Options{})

	err := adapter.WithTx(context.Background(), func(tx portsrepo.Backend) error {
		_, err := tx.Insert(context.Background(), schema.Users, portsrepo.Row{"name": "a"})
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 1, fallback.Count(schema.Users))
}

func TestEnsureInsert_ExistingRowIsSuccess(t *testing.T) {
	store := memory.NewSeeded()
	adapter := backend.New(nil, store, backend.Options{})
	before := store.Count(schema.ChartOfAccounts)

	row, err := adapter.EnsureInsert(context.Background(), schema.ChartOfAccounts,
		portsrepo.Row{"code": "2110", "name": "未払金", "category": "LIABILITY"}, "code")
	require.NoError(t, err)
	assert.Equal(t, "2110", row["code"])
	assert.Equal(t, before, store.Count(schema.ChartOfAccounts))
}

func TestEnsureInsert_ViolationWithoutRowPropagates(t *testing.T) {
	fk := &pgconn.PgError{Code: "23503", Message: "violates foreign key constraint"}
	primary := new(MockBackend)
	primary.On("Insert", mock.Anything, schema.JournalLines, mock.Anything).Return(nil, fk)
	primary.On("Select", mock.Anything, schema.JournalLines, mock.Anything).Return([]portsrepo.Row{}, nil)
	adapter := backend.New(primary, memory.New(), backend.Options{})

	_, err := adapter.EnsureInsert(context.Background(), schema.JournalLines, portsrepo.Row{"id": "00000000-0000-4000-8000-000000000999"}, "id")
	assert.True(t, errors.Is(err, fk))
}
