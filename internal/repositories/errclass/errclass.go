// Package errclass maps heterogeneous backend failures onto a small set of
// classes that drive the degradation policy of the data-access layer.
package errclass

import (
	"context"
	"errors"
	"fmt"
	"net"
	"regexp"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgconn"
)

// Class is the outcome of classifying a backend error.
type Class string

const (
	SchemaMissing       Class = "schema_missing"
	ColumnMissing       Class = "column_missing"
	BackendUnreachable  Class = "backend_unreachable"
	ConstraintViolation Class = "constraint_violation"
	Unknown             Class = "unknown"
)

// Degradable reports whether calls failing with this class may be served by the fallback store.
func (c Class) Degradable() bool {
	return c == SchemaMissing || c == ColumnMissing || c == BackendUnreachable
}

// BackendError is the structured error shape of HTTP-style backends (PostgREST and
// friends) and of the in-memory store. Status is the HTTP status of the response; a
// BackendError with neither Code nor Status never got a response at all.
type BackendError struct {
	Code    string
	Message string
	Details string
	Hint    string
	Status  int
}

func (e *BackendError) Error() string {
	var b strings.Builder
	if e.Code != "" {
		fmt.Fprintf(&b, "%s: ", e.Code)
	}
	b.WriteString(e.Message)
	if e.Details != "" {
		fmt.Fprintf(&b, " (%s)", e.Details)
	}
	return b.String()
}

var (
	schemaCodes = map[string]bool{
		"42P01":    true, // undefined_table
		"3F000":    true, // invalid_schema_name
		"PGRST205": true,
		"PGRST106": true,
	}
	columnCodes = map[string]bool{
		"42703":    true, // undefined_column
		"PGRST204": true,
	}
	unreachableCodes = map[string]bool{
		"ECONNREFUSED": true,
		"ENOTFOUND":    true,
		"ETIMEDOUT":    true,
		"ECONNRESET":   true,
		"EAI_AGAIN":    true,
	}
	constraintCodes = map[string]bool{
		"23505": true, // unique_violation
		"23503": true, // foreign_key_violation
	}

	missingRelationRe = regexp.MustCompile(`(?i)(relation|view|schema).*does not exist|could not find the table`)
	missingColumnRe   = regexp.MustCompile(`(?i)column.+does not exist`)
	unreachableRe     = regexp.MustCompile(`(?i)fetch failed|failed to fetch|network|timeout|timed out|connection refused|no such host`)
)

// fields is the normalized view of any recognised error shape.
type fields struct {
	code, message, details, hint string
	noResponse                   bool // HTTP status 0
	gatewayDown                  bool // HTTP 503/504
}

func (f fields) text() string {
	return strings.Join([]string{f.message, f.details, f.hint}, " ")
}

// Classify maps err onto a Class. It is pure and never panics; a nil error is Unknown.
//
// Checks run in priority order: schema missing, column missing, unreachable,
// constraint violation, then unknown.
func Classify(err error) Class {
	if err == nil {
		return Unknown
	}

	f := extract(err)

	switch {
	case schemaCodes[f.code] || (missingRelationRe.MatchString(f.text()) && !columnCodes[f.code] && !missingColumnRe.MatchString(f.text())):
		// "column x of relation y does not exist" names a relation but is a column problem.
		return SchemaMissing
	case columnCodes[f.code] || missingColumnRe.MatchString(f.text()):
		return ColumnMissing
	case unreachableCodes[f.code] || f.noResponse || f.gatewayDown ||
		isTransport(err) || unreachableRe.MatchString(f.message):
		return BackendUnreachable
	case constraintCodes[f.code]:
		return ConstraintViolation
	default:
		return Unknown
	}
}

func extract(err error) fields {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fields{code: pgErr.Code, message: pgErr.Message, details: pgErr.Detail, hint: pgErr.Hint}
	}
	var beErr *BackendError
	if errors.As(err, &beErr) {
		return fields{
			code:        beErr.Code,
			message:     beErr.Message,
			details:     beErr.Details,
			hint:        beErr.Hint,
			noResponse:  beErr.Code == "" && beErr.Status == 0,
			gatewayDown: beErr.Status == 503 || beErr.Status == 504,
		}
	}
	return fields{message: err.Error()}
}

func isTransport(err error) bool {
	var connErr *pgconn.ConnectError
	var dnsErr *net.DNSError
	var netErr net.Error
	var opErr *net.OpError
	switch {
	case errors.As(err, &connErr):
		return true
	case errors.As(err, &dnsErr):
		return true
	case errors.Is(err, syscall.ECONNREFUSED), errors.Is(err, syscall.ECONNRESET), errors.Is(err, syscall.ETIMEDOUT):
		return true
	case errors.Is(err, context.DeadlineExceeded):
		return true
	case errors.As(err, &opErr):
		return true
	case errors.As(err, &netErr):
		return true
	}
	return false
}
