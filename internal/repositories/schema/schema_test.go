package schema_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	portsrepo "github.com/bp848/mqdriven-sub001/internal/core/ports/repositories"
	"github.com/bp848/mqdriven-sub001/internal/repositories/schema"
)

func TestNormalize_CanonicalShapes(t *testing.T) {
	lines, ok := schema.Lookup(schema.JournalLines)
	require.True(t, ok)

	row, err := lines.Normalize(portsrepo.Row{
		"batch_id":      "0F0E0D0C-0000-4000-8000-000000000001",
		"debit_amount":  "7000.00",
		"credit_amount": 0,
		"sort_index":    int32(2),
	})
	require.NoError(t, err)

	assert.Equal(t, "0f0e0d0c-0000-4000-8000-000000000001", row["batch_id"])
	assert.True(t, decimal.NewFromInt(7000).Equal(row["debit_amount"].(decimal.Decimal)))
	assert.True(t, decimal.Zero.Equal(row["credit_amount"].(decimal.Decimal)))
	assert.Equal(t, 2, row["sort_index"])
}

func TestNormalize_JSONMatchesDecodedShape(t *testing.T) {
	emails, _ := schema.Lookup(schema.NotificationEmails)
	row, err := emails.Normalize(portsrepo.Row{"recipients": []string{"a@example.com"}})
	require.NoError(t, err)
	assert.Equal(t, []any{"a@example.com"}, row["recipients"])
}

func TestNormalize_NilPointers(t *testing.T) {
	apps, _ := schema.Lookup(schema.Applications)
	var reason *string
	var approvedAt *time.Time
	row, err := apps.Normalize(portsrepo.Row{"rejection_reason": reason, "approved_at": approvedAt, "approver_id": ""})
	require.NoError(t, err)
	assert.Nil(t, row["rejection_reason"])
	assert.Nil(t, row["approved_at"])
	assert.Nil(t, row["approver_id"])
}

func TestNormalize_UnknownColumn(t *testing.T) {
	apps, _ := schema.Lookup(schema.Applications)
	_, err := apps.Normalize(portsrepo.Row{"nope": 1})
	var unknown *schema.UnknownColumnError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "nope", unknown.Column)
}

func TestComplete_FillsDefaults(t *testing.T) {
	batches, _ := schema.Lookup(schema.JournalBatches)
	row := batches.Complete(portsrepo.Row{"source_application_id": "x"})
	assert.NotEmpty(t, row["id"])
	assert.Equal(t, "draft", row["status"])
	assert.Nil(t, row["posted_at"])
	assert.Len(t, row, len(batches.Columns))
}

func TestTable_IsUnique(t *testing.T) {
	batches, _ := schema.Lookup(schema.JournalBatches)
	assert.True(t, batches.IsUnique("id"))
	assert.True(t, batches.IsUnique("source_application_id"))
	assert.False(t, batches.IsUnique("status"))
}
