package pgsql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	portsrepo "github.com/bp848/mqdriven-sub001/internal/core/ports/repositories"
	"github.com/bp848/mqdriven-sub001/internal/repositories/errclass"
	"github.com/bp848/mqdriven-sub001/internal/repositories/schema"
)

func TestWhere_RendersPositionalArgs(t *testing.T) {
	def, err := tableDef(schema.Applications)
	require.NoError(t, err)

	approver := "0F4A6C1E-2B3D-4E5F-8A9B-0C1D2E3F4A5B"
	var a args
	sql, err := where(def, []portsrepo.Filter{
		{Column: "status", Value: "pending_approval"},
		{Column: "rejection_reason", Value: nil},
		{Column: "approver_id", Value: approver},
	}, &a)

	require.NoError(t, err)
	assert.Equal(t, ` WHERE "status" = $1 AND "rejection_reason" IS NULL AND "approver_id" = $2`, sql)
	assert.Equal(t, args{"pending_approval", "0f4a6c1e-2b3d-4e5f-8a9b-0c1d2e3f4a5b"}, a)
}

func TestWhere_NoFilters(t *testing.T) {
	def, err := tableDef(schema.Users)
	require.NoError(t, err)

	var a args
	sql, err := where(def, nil, &a)
	require.NoError(t, err)
	assert.Empty(t, sql)
	assert.Empty(t, a)
}

func TestWhere_UnknownColumnIsColumnMissing(t *testing.T) {
	def, err := tableDef(schema.JournalBatches)
	require.NoError(t, err)

	var a args
	_, err = where(def, []portsrepo.Filter{{Column: "legacy_flag", Value: true}}, &a)
	require.Error(t, err)
	assert.Equal(t, errclass.ColumnMissing, errclass.Classify(err))
}

func TestTableDef_UnknownTableIsSchemaMissing(t *testing.T) {
	_, err := tableDef("invoices")
	require.Error(t, err)
	assert.Equal(t, errclass.SchemaMissing, errclass.Classify(err))
}

func TestSelectList_CastsUUIDAndDecimalToText(t *testing.T) {
	def, err := tableDef(schema.JournalLines)
	require.NoError(t, err)

	list := selectList(def)
	assert.Contains(t, list, `"id"::text AS "id"`)
	assert.Contains(t, list, `"batch_id"::text AS "batch_id"`)
	assert.Contains(t, list, `"debit_amount"::text AS "debit_amount"`)
	assert.Contains(t, list, `"account_code", "account_name"`)
}

func TestNewBackend_DefaultPredicateBound(t *testing.T) {
	assert.Equal(t, DefaultMaxInPredicate, NewBackend(nil, 0).maxIn)
	assert.Equal(t, 50, NewBackend(nil, 50).maxIn)
}
