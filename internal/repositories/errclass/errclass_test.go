package errclass_test

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"

	"github.com/bp848/mqdriven-sub001/internal/repositories/errclass"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want errclass.Class
	}{
		{"nil", nil, errclass.Unknown},
		{"pg undefined table", &pgconn.PgError{Code: "42P01", Message: `relation "journal_batches" does not exist`}, errclass.SchemaMissing},
		{"pg invalid schema", &pgconn.PgError{Code: "3F000", Message: `schema "acct" does not exist`}, errclass.SchemaMissing},
		{"postgrest missing table", &errclass.BackendError{Code: "PGRST205", Message: "Could not find the table 'public.x' in the schema cache", Status: 404}, errclass.SchemaMissing},
		{"view text only", &errclass.BackendError{Message: `view "v_journal_lines" does not exist`, Status: 400}, errclass.SchemaMissing},
		{"pg undefined column", &pgconn.PgError{Code: "42703", Message: `column "accounting_status" does not exist`}, errclass.ColumnMissing},
		{"column of relation", &pgconn.PgError{Code: "42703", Message: `column "x" of relation "applications" does not exist`}, errclass.ColumnMissing},
		{"postgrest missing column", &errclass.BackendError{Code: "PGRST204", Message: "Could not find the 'foo' column", Status: 400}, errclass.ColumnMissing},
		{"column text only", errors.New(`column applications.accounting_status does not exist`), errclass.ColumnMissing},
		{"econnrefused code", &errclass.BackendError{Code: "ECONNREFUSED", Message: "connect failed"}, errclass.BackendUnreachable},
		{"status 503", &errclass.BackendError{Code: "X", Message: "unavailable", Status: 503}, errclass.BackendUnreachable},
		{"status 504", &errclass.BackendError{Code: "X", Message: "gateway", Status: 504}, errclass.BackendUnreachable},
		{"status 0 no code", &errclass.BackendError{Message: "TypeError"}, errclass.BackendUnreachable},
		{"fetch failed text", errors.New("TypeError: fetch failed"), errclass.BackendUnreachable},
		{"timeout text", errors.New("request timeout after 5s"), errclass.BackendUnreachable},
		{"deadline", fmt.Errorf("select applications: %w", context.DeadlineExceeded), errclass.BackendUnreachable},
		{"syscall refused", fmt.Errorf("dial: %w", syscall.ECONNREFUSED), errclass.BackendUnreachable},
		{"dns", &net.DNSError{Err: "no such host", Name: "db.internal", IsNotFound: true}, errclass.BackendUnreachable},
		{"pg unique", &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"}, errclass.ConstraintViolation},
		{"pg foreign key", &pgconn.PgError{Code: "23503", Message: "insert violates foreign key constraint"}, errclass.ConstraintViolation},
		{"wrapped unique", fmt.Errorf("insert: %w", &errclass.BackendError{Code: "23505", Message: "duplicate", Status: 409}), errclass.ConstraintViolation},
		{"pg syntax", &pgconn.PgError{Code: "42601", Message: "syntax error at or near"}, errclass.Unknown},
		{"plain", errors.New("boom"), errclass.Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errclass.Classify(tt.err))
		})
	}
}

func TestClassify_SchemaBeatsNetworkText(t *testing.T) {
	// A missing relation whose hint mentions the network still classifies as schema drift.
	err := &pgconn.PgError{Code: "42P01", Message: `relation "x" does not exist`, Hint: "check network config"}
	assert.Equal(t, errclass.SchemaMissing, errclass.Classify(err))
}

func TestClass_Degradable(t *testing.T) {
	assert.True(t, errclass.SchemaMissing.Degradable())
	assert.True(t, errclass.ColumnMissing.Degradable())
	assert.True(t, errclass.BackendUnreachable.Degradable())
	assert.False(t, errclass.ConstraintViolation.Degradable())
	assert.False(t, errclass.Unknown.Degradable())
}
