// Package schema describes the relational tables shared by every backend so that
// rows have the same shape whichever store served them.
package schema

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	portsrepo "github.com/bp848/mqdriven-sub001/internal/core/ports/repositories"
)

// Table names.
const (
	Applications       = "applications"
	ApplicationCodes   = "application_codes"
	ApprovalRoutes     = "approval_routes"
	Users              = "users"
	JournalBatches     = "journal_batches"
	JournalLines       = "journal_lines"
	ChartOfAccounts    = "chart_of_accounts"
	NotificationEmails = "application_notification_emails"
)

// Kind is the normalized Go representation of a column.
type Kind int

const (
	Text    Kind = iota // string
	UUID                // string, canonical lowercase
	Int                 // int
	Decimal             // decimal.Decimal
	Time                // time.Time in UTC
	JSON                // map[string]any, []any, string, float64, bool
)

// Column describes one column. Default, when set, fills the column on insert if absent.
type Column struct {
	Name    string
	Kind    Kind
	Default func() any
}

// Table describes one relation.
type Table struct {
	Name       string
	PrimaryKey string
	Unique     []string
	Columns    []Column
}

func newID() any { return uuid.NewString() }
func now() any   { return time.Now().UTC() }

func constant(v any) func() any { return func() any { return v } }

var tables = map[string]Table{
	Applications: {
		Name:       Applications,
		PrimaryKey: "id",
		Columns: []Column{
			{Name: "id", Kind: UUID, Default: newID},
			{Name: "applicant_id", Kind: UUID},
			{Name: "application_code_id", Kind: UUID},
			{Name: "form_data", Kind: JSON, Default: func() any { return map[string]any{} }},
			{Name: "status", Kind: Text, Default: constant("draft")},
			{Name: "submitted_at", Kind: Time},
			{Name: "approved_at", Kind: Time},
			{Name: "rejected_at", Kind: Time},
			{Name: "current_level", Kind: Int, Default: constant(0)},
			{Name: "approver_id", Kind: UUID},
			{Name: "rejection_reason", Kind: Text},
			{Name: "approval_route_id", Kind: UUID},
			{Name: "accounting_status", Kind: Text, Default: constant("none")},
			{Name: "created_at", Kind: Time, Default: now},
			{Name: "updated_at", Kind: Time, Default: now},
		},
	},
	ApplicationCodes: {
		Name:       ApplicationCodes,
		PrimaryKey: "id",
		Unique:     []string{"code"},
		Columns: []Column{
			{Name: "id", Kind: UUID, Default: newID},
			{Name: "code", Kind: Text},
			{Name: "name", Kind: Text},
		},
	},
	ApprovalRoutes: {
		Name:       ApprovalRoutes,
		PrimaryKey: "id",
		Columns: []Column{
			{Name: "id", Kind: UUID, Default: newID},
			{Name: "name", Kind: Text},
			{Name: "steps", Kind: JSON, Default: func() any { return []any{} }},
			{Name: "created_at", Kind: Time, Default: now},
		},
	},
	Users: {
		Name:       Users,
		PrimaryKey: "id",
		Columns: []Column{
			{Name: "id", Kind: UUID, Default: newID},
			{Name: "name", Kind: Text},
			{Name: "email", Kind: Text},
		},
	},
	JournalBatches: {
		Name:       JournalBatches,
		PrimaryKey: "id",
		Unique:     []string{"source_application_id"},
		Columns: []Column{
			{Name: "id", Kind: UUID, Default: newID},
			{Name: "source_application_id", Kind: UUID},
			{Name: "status", Kind: Text, Default: constant("draft")},
			{Name: "created_at", Kind: Time, Default: now},
			{Name: "posted_at", Kind: Time},
		},
	},
	JournalLines: {
		Name:       JournalLines,
		PrimaryKey: "id",
		Columns: []Column{
			{Name: "id", Kind: UUID, Default: newID},
			{Name: "batch_id", Kind: UUID},
			{Name: "account_code", Kind: Text},
			{Name: "account_name", Kind: Text},
			{Name: "debit_amount", Kind: Decimal, Default: constant(decimal.Zero)},
			{Name: "credit_amount", Kind: Decimal, Default: constant(decimal.Zero)},
			{Name: "description", Kind: Text},
			{Name: "sort_index", Kind: Int, Default: constant(0)},
		},
	},
	ChartOfAccounts: {
		Name:       ChartOfAccounts,
		PrimaryKey: "code",
		Columns: []Column{
			{Name: "code", Kind: Text},
			{Name: "name", Kind: Text},
			{Name: "category", Kind: Text},
		},
	},
	NotificationEmails: {
		Name:       NotificationEmails,
		PrimaryKey: "id",
		Columns: []Column{
			{Name: "id", Kind: UUID, Default: newID},
			{Name: "application_id", Kind: UUID},
			{Name: "audience", Kind: Text},
			{Name: "recipients", Kind: JSON, Default: func() any { return []any{} }},
			{Name: "subject", Kind: Text},
			{Name: "body", Kind: Text},
			{Name: "status_at_send", Kind: Text},
			{Name: "message_id", Kind: Text},
			{Name: "sent_at", Kind: Time, Default: now},
		},
	},
}

// Lookup returns the table definition by name.
func Lookup(name string) (Table, bool) {
	t, ok := tables[name]
	return t, ok
}

// Names lists every table in dependency order (referenced tables first).
func Names() []string {
	return []string{Users, ApplicationCodes, ApprovalRoutes, ChartOfAccounts, Applications, JournalBatches, JournalLines, NotificationEmails}
}

// Column returns the named column.
func (t Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// ColumnNames returns the column names in declaration order.
func (t Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// IsUnique reports whether the column holds unique values (primary key included).
func (t Table) IsUnique(column string) bool {
	if column == t.PrimaryKey {
		return true
	}
	for _, u := range t.Unique {
		if u == column {
			return true
		}
	}
	return false
}

// UnknownColumnError reports a column that is not part of the table.
type UnknownColumnError struct {
	Table, Column string
}

func (e *UnknownColumnError) Error() string {
	return fmt.Sprintf("column %q of relation %q does not exist", e.Column, e.Table)
}

// Normalize converts every value of row to its column's canonical representation.
// Columns missing from row are left out; use Complete to fill them.
func (t Table) Normalize(row portsrepo.Row) (portsrepo.Row, error) {
	out := make(portsrepo.Row, len(row))
	for name, v := range row {
		col, ok := t.Column(name)
		if !ok {
			return nil, &UnknownColumnError{Table: t.Name, Column: name}
		}
		nv, err := col.Normalize(v)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", t.Name, name, err)
		}
		out[name] = nv
	}
	return out, nil
}

// Complete returns a copy of row carrying every column: absent columns take their
// default, or nil.
func (t Table) Complete(row portsrepo.Row) portsrepo.Row {
	out := make(portsrepo.Row, len(t.Columns))
	for _, c := range t.Columns {
		if v, ok := row[c.Name]; ok {
			out[c.Name] = v
			continue
		}
		if c.Default != nil {
			out[c.Name] = c.Default()
			continue
		}
		out[c.Name] = nil
	}
	return out
}

// Normalize converts v to the column's canonical representation. Pointers are
// dereferenced and nil stays nil.
func (c Column) Normalize(v any) (any, error) {
	v = deref(v)
	if v == nil {
		return nil, nil
	}
	switch c.Kind {
	case Text:
		return toText(v), nil
	case UUID:
		s := strings.ToLower(strings.TrimSpace(toText(v)))
		if s == "" {
			return nil, nil
		}
		return s, nil
	case Int:
		return toInt(v)
	case Decimal:
		return toDecimal(v)
	case Time:
		return toTime(v)
	case JSON:
		return toJSON(v)
	}
	return nil, fmt.Errorf("unsupported column kind %d", c.Kind)
}

// Equal compares two values already normalized for this column.
func (c Column) Equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch c.Kind {
	case Decimal:
		da, okA := a.(decimal.Decimal)
		db, okB := b.(decimal.Decimal)
		return okA && okB && da.Equal(db)
	case Time:
		ta, okA := a.(time.Time)
		tb, okB := b.(time.Time)
		return okA && okB && ta.Equal(tb)
	case JSON:
		ja, errA := json.Marshal(a)
		jb, errB := json.Marshal(b)
		return errA == nil && errB == nil && string(ja) == string(jb)
	}
	return a == b
}

// Less orders two normalized values of this column; nil sorts first.
func (c Column) Less(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b != nil
	}
	switch c.Kind {
	case Int:
		return a.(int) < b.(int)
	case Decimal:
		return a.(decimal.Decimal).LessThan(b.(decimal.Decimal))
	case Time:
		return a.(time.Time).Before(b.(time.Time))
	case Text, UUID:
		return a.(string) < b.(string)
	}
	return false
}

func deref(v any) any {
	switch p := v.(type) {
	case *string:
		if p == nil {
			return nil
		}
		return *p
	case *int:
		if p == nil {
			return nil
		}
		return *p
	case *time.Time:
		if p == nil {
			return nil
		}
		return *p
	case *decimal.Decimal:
		if p == nil {
			return nil
		}
		return *p
	}
	return v
}

func toText(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	case []byte:
		return string(s)
	}
	return fmt.Sprint(v)
}

func toInt(v any) (any, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int16:
		return int(n), nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	case string:
		i, err := strconv.Atoi(n)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q", n)
		}
		return i, nil
	}
	return nil, fmt.Errorf("unsupported integer type %T", v)
}

func toDecimal(v any) (any, error) {
	switch n := v.(type) {
	case decimal.Decimal:
		return n, nil
	case string:
		d, err := decimal.NewFromString(n)
		if err != nil {
			return nil, fmt.Errorf("invalid decimal %q", n)
		}
		return d, nil
	case int:
		return decimal.NewFromInt(int64(n)), nil
	case int64:
		return decimal.NewFromInt(n), nil
	case float64:
		return decimal.NewFromFloat(n), nil
	}
	return nil, fmt.Errorf("unsupported decimal type %T", v)
}

func toTime(v any) (any, error) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), nil
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, t)
		if err != nil {
			return nil, fmt.Errorf("invalid timestamp %q", t)
		}
		return parsed.UTC(), nil
	}
	return nil, fmt.Errorf("unsupported timestamp type %T", v)
}

// toJSON round-trips v through encoding/json so that structs, typed slices and maps
// come out exactly as a jsonb column decodes.
func toJSON(v any) (any, error) {
	var raw []byte
	switch j := v.(type) {
	case []byte:
		raw = j
	case json.RawMessage:
		raw = j
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode json: %w", err)
		}
		raw = b
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	return out, nil
}
