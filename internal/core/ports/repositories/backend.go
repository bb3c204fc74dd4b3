package repositories

import "context"

// Row is one relational record keyed by column name. Values are normalized to
// string, int, bool, decimal.Decimal, time.Time, JSON (map[string]any / []any) or nil,
// whichever backend served the row.
type Row map[string]any

// Filter is an equality predicate on a single column. A nil Value matches NULL.
type Filter struct {
	Column string
	Value  any
}

// Eq builds an equality Filter.
func Eq(column string, value any) Filter {
	return Filter{Column: column, Value: value}
}

// Query narrows a Select call.
type Query struct {
	Filters []Filter
	OrderBy string // Column name; empty leaves the order to the backend
	Desc    bool
	Limit   int // 0 means unlimited
}

// BackendReader defines read operations against a relational backend.
type BackendReader interface {
	// Select returns rows of table matching every filter in q.
	Select(ctx context.Context, table string, q Query) ([]Row, error)

	// SelectIn returns rows of table whose column equals any of values.
	SelectIn(ctx context.Context, table string, column string, values []string) ([]Row, error)
}

// BackendWriter defines write operations against a relational backend.
type BackendWriter interface {
	// Insert stores row and returns it as persisted (defaults filled in).
	Insert(ctx context.Context, table string, row Row) (Row, error)

	// Update patches the row whose primary key equals id and which also matches every
	// condition. It returns apperrors.ErrNotFound when no row matched.
	Update(ctx context.Context, table string, id string, patch Row, conds ...Filter) (Row, error)
}

// Backend is the narrow contract both the authoritative database and the in-memory
// fallback store implement.
type Backend interface {
	BackendReader
	BackendWriter

	// WithTx runs fn against a transactional view of the backend. Either every write made
	// through tx is applied or none is.
	WithTx(ctx context.Context, fn func(tx Backend) error) error
}
