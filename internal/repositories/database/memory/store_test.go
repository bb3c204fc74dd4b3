package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bp848/mqdriven-sub001/internal/apperrors"
	portsrepo "github.com/bp848/mqdriven-sub001/internal/core/ports/repositories"
	"github.com/bp848/mqdriven-sub001/internal/repositories/database/memory"
	"github.com/bp848/mqdriven-sub001/internal/repositories/errclass"
	"github.com/bp848/mqdriven-sub001/internal/repositories/schema"
)

func TestNewSeeded_EveryTableHasRows(t *testing.T) {
	s := memory.NewSeeded()
	for _, name := range schema.Names() {
		assert.Positive(t, s.Count(name), name)
	}
}

func TestNewSeeded_IsDeterministic(t *testing.T) {
	ctx := context.Background()
	a, err := memory.NewSeeded().Select(ctx, schema.JournalLines, portsrepo.Query{OrderBy: "sort_index"})
	require.NoError(t, err)
	b, err := memory.NewSeeded().Select(ctx, schema.JournalLines, portsrepo.Query{OrderBy: "sort_index"})
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestSeededPostedBatchBalances(t *testing.T) {
	lines, err := memory.NewSeeded().SelectIn(context.Background(), schema.JournalLines, "batch_id", []string{memory.SeedPostedBatchID})
	require.NoError(t, err)
	require.Len(t, lines, 3)

	debit, credit := decimal.Zero, decimal.Zero
	for _, l := range lines {
		debit = debit.Add(l["debit_amount"].(decimal.Decimal))
		credit = credit.Add(l["credit_amount"].(decimal.Decimal))
	}
	assert.True(t, debit.Equal(credit))
}

func TestInsert_FillsEveryColumn(t *testing.T) {
	s := memory.New()
	row, err := s.Insert(context.Background(), schema.JournalBatches, portsrepo.Row{"source_application_id": memory.SeedPostedAppID})
	require.NoError(t, err)

	def, _ := schema.Lookup(schema.JournalBatches)
	for _, c := range def.ColumnNames() {
		assert.Contains(t, row, c)
	}
	assert.Equal(t, "draft", row["status"])
}

func TestInsert_UniqueViolation(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	_, err := s.Insert(ctx, schema.JournalBatches, portsrepo.Row{"source_application_id": memory.SeedPostedAppID})
	require.NoError(t, err)

	_, err = s.Insert(ctx, schema.JournalBatches, portsrepo.Row{"source_application_id": memory.SeedPostedAppID})
	require.Error(t, err)
	assert.Equal(t, errclass.ConstraintViolation, errclass.Classify(err))
}

func TestSelect_UnknownColumnAndTable(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	_, err := s.Select(ctx, schema.Applications, portsrepo.Query{Filters: []portsrepo.Filter{portsrepo.Eq("nope", 1)}})
	assert.Equal(t, errclass.ColumnMissing, errclass.Classify(err))

	_, err = s.Select(ctx, "estimates", portsrepo.Query{})
	assert.Equal(t, errclass.SchemaMissing, errclass.Classify(err))

	s.DropTable(schema.Users)
	_, err = s.SelectIn(ctx, schema.Users, "id", []string{memory.SeedApplicantID})
	assert.Equal(t, errclass.SchemaMissing, errclass.Classify(err))
}

func TestSelect_FilterOrderLimit(t *testing.T) {
	s := memory.NewSeeded()
	rows, err := s.Select(context.Background(), schema.ChartOfAccounts, portsrepo.Query{
		Filters: []portsrepo.Filter{portsrepo.Eq("category", "EXPENSE")},
		OrderBy: "code",
		Desc:    true,
		Limit:   2,
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "6400", rows[0]["code"])
	assert.Equal(t, "6300", rows[1]["code"])
}

func TestUpdate_Conditional(t *testing.T) {
	s := memory.NewSeeded()
	ctx := context.Background()

	updated, err := s.Update(ctx, schema.Applications, memory.SeedPendingAppID,
		portsrepo.Row{"status": "approved"}, portsrepo.Eq("status", "pending_approval"))
	require.NoError(t, err)
	assert.Equal(t, "approved", updated["status"])

	_, err = s.Update(ctx, schema.Applications, memory.SeedPendingAppID,
		portsrepo.Row{"status": "rejected"}, portsrepo.Eq("status", "pending_approval"))
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.WithTx(ctx, func(tx portsrepo.Backend) error {
		if _, err := tx.Insert(ctx, schema.Users, portsrepo.Row{"name": "a"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Zero(t, s.Count(schema.Users))

	err = s.WithTx(ctx, func(tx portsrepo.Backend) error {
		_, err := tx.Insert(ctx, schema.Users, portsrepo.Row{"name": "b"})
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 1, s.Count(schema.Users))
}

func TestSelect_ReturnsCopies(t *testing.T) {
	s := memory.NewSeeded()
	ctx := context.Background()
	filter := portsrepo.Query{Filters: []portsrepo.Filter{portsrepo.Eq("id", memory.SeedPendingAppID)}}

	rows, err := s.Select(ctx, schema.Applications, filter)
	require.NoError(t, err)
	rows[0]["form_data"].(map[string]any)["total_amount"] = "1"

	again, err := s.Select(ctx, schema.Applications, filter)
	require.NoError(t, err)
	assert.Equal(t, "32000", again[0]["form_data"].(map[string]any)["total_amount"])
}
