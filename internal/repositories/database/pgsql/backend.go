package pgsql

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bp848/mqdriven-sub001/internal/apperrors"
	portsrepo "github.com/bp848/mqdriven-sub001/internal/core/ports/repositories"
	"github.com/bp848/mqdriven-sub001/internal/repositories/errclass"
	"github.com/bp848/mqdriven-sub001/internal/repositories/schema"
)

// DefaultMaxInPredicate bounds the number of values sent in one "= ANY($1)" predicate.
const DefaultMaxInPredicate = 200

// Backend implements portsrepo.Backend on PostgreSQL.
type Backend struct {
	BaseRepository
	maxIn int
}

// NewBackend creates the Postgres backend. maxIn <= 0 selects DefaultMaxInPredicate.
func NewBackend(pool *pgxpool.Pool, maxIn int) *Backend {
	if maxIn <= 0 {
		maxIn = DefaultMaxInPredicate
	}
	return &Backend{BaseRepository: BaseRepository{DB: pool}, maxIn: maxIn}
}

// Ensure Backend implements portsrepo.Backend
var _ portsrepo.Backend = (*Backend)(nil)

func tableDef(name string) (schema.Table, error) {
	def, ok := schema.Lookup(name)
	if !ok {
		return schema.Table{}, &errclass.BackendError{Code: "42P01", Message: fmt.Sprintf("relation %q does not exist", name)}
	}
	return def, nil
}

func ident(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

// selectList renders the column list. UUID and numeric columns are read as text so
// that scanning yields the same Go types the in-memory store holds.
func selectList(def schema.Table) string {
	cols := make([]string, len(def.Columns))
	for i, c := range def.Columns {
		switch c.Kind {
		case schema.UUID, schema.Decimal:
			cols[i] = ident(c.Name) + "::text AS " + ident(c.Name)
		default:
			cols[i] = ident(c.Name)
		}
	}
	return strings.Join(cols, ", ")
}

// args collects positional arguments while rendering SQL.
type args []any

func (a *args) add(v any) string {
	*a = append(*a, v)
	return fmt.Sprintf("$%d", len(*a))
}

func where(def schema.Table, filters []portsrepo.Filter, a *args) (string, error) {
	if len(filters) == 0 {
		return "", nil
	}
	parts := make([]string, 0, len(filters))
	for _, f := range filters {
		col, ok := def.Column(f.Column)
		if !ok {
			return "", &errclass.BackendError{Code: "42703", Message: fmt.Sprintf("column %q does not exist", f.Column)}
		}
		v, err := col.Normalize(f.Value)
		if err != nil {
			return "", fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		if v == nil {
			parts = append(parts, ident(col.Name)+" IS NULL")
			continue
		}
		parts = append(parts, ident(col.Name)+" = "+a.add(v))
	}
	return " WHERE " + strings.Join(parts, " AND "), nil
}

func (b *Backend) collect(ctx context.Context, def schema.Table, sql string, a args) ([]portsrepo.Row, error) {
	rows, err := b.DB.Query(ctx, sql, a...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", def.Name, err)
	}
	maps, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", def.Name, err)
	}
	out := make([]portsrepo.Row, 0, len(maps))
	for _, m := range maps {
		row, err := def.Normalize(m)
		if err != nil {
			return nil, fmt.Errorf("normalize %s: %w", def.Name, err)
		}
		out = append(out, row)
	}
	return out, nil
}

// Select implements portsrepo.BackendReader.
func (b *Backend) Select(ctx context.Context, table string, q portsrepo.Query) ([]portsrepo.Row, error) {
	def, err := tableDef(table)
	if err != nil {
		return nil, err
	}
	var a args
	cond, err := where(def, q.Filters, &a)
	if err != nil {
		return nil, err
	}

	sql := "SELECT " + selectList(def) + " FROM " + ident(table) + cond
	if q.OrderBy != "" {
		if _, ok := def.Column(q.OrderBy); !ok {
			return nil, &errclass.BackendError{Code: "42703", Message: fmt.Sprintf("column %q does not exist", q.OrderBy)}
		}
		sql += " ORDER BY " + ident(q.OrderBy)
		if q.Desc {
			sql += " DESC"
		}
	}
	if q.Limit > 0 {
		sql += fmt.Sprintf(" LIMIT %d", q.Limit)
	}
	return b.collect(ctx, def, sql, a)
}

// SelectIn implements portsrepo.BackendReader. Value lists longer than the
// configured predicate bound are split into several queries.
func (b *Backend) SelectIn(ctx context.Context, table string, column string, values []string) ([]portsrepo.Row, error) {
	def, err := tableDef(table)
	if err != nil {
		return nil, err
	}
	if _, ok := def.Column(column); !ok {
		return nil, &errclass.BackendError{Code: "42703", Message: fmt.Sprintf("column %q does not exist", column)}
	}

	sql := "SELECT " + selectList(def) + " FROM " + ident(table) + " WHERE " + ident(column) + " = ANY($1)"
	var out []portsrepo.Row
	for start := 0; start < len(values); start += b.maxIn {
		end := min(start+b.maxIn, len(values))
		rows, err := b.collect(ctx, def, sql, args{values[start:end]})
		if err != nil {
			return nil, err
		}
		out = append(out, rows...)
	}
	return out, nil
}

// Insert implements portsrepo.BackendWriter.
func (b *Backend) Insert(ctx context.Context, table string, row portsrepo.Row) (portsrepo.Row, error) {
	def, err := tableDef(table)
	if err != nil {
		return nil, err
	}
	normalized, err := def.Normalize(row)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	complete := def.Complete(normalized)

	var a args
	cols := make([]string, 0, len(def.Columns))
	placeholders := make([]string, 0, len(def.Columns))
	for _, c := range def.Columns {
		cols = append(cols, ident(c.Name))
		placeholders = append(placeholders, a.add(complete[c.Name]))
	}
	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		ident(table), strings.Join(cols, ", "), strings.Join(placeholders, ", "), selectList(def))

	rows, err := b.collect(ctx, def, sql, a)
	if err != nil {
		return nil, err
	}
	if len(rows) != 1 {
		return nil, apperrors.NewAppError(500, "insert into "+table+" returned no row", nil)
	}
	return rows[0], nil
}

// Update implements portsrepo.BackendWriter.
func (b *Backend) Update(ctx context.Context, table string, id string, patch portsrepo.Row, conds ...portsrepo.Filter) (portsrepo.Row, error) {
	def, err := tableDef(table)
	if err != nil {
		return nil, err
	}
	normalized, err := def.Normalize(patch)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	delete(normalized, def.PrimaryKey)
	if len(normalized) == 0 {
		return nil, fmt.Errorf("%w: empty update of %s", apperrors.ErrValidation, table)
	}

	var a args
	sets := make([]string, 0, len(normalized))
	// Column order keeps the rendered SQL stable for statement caching.
	for _, c := range def.Columns {
		if v, ok := normalized[c.Name]; ok {
			sets = append(sets, ident(c.Name)+" = "+a.add(v))
		}
	}
	cond, err := where(def, append([]portsrepo.Filter{portsrepo.Eq(def.PrimaryKey, id)}, conds...), &a)
	if err != nil {
		return nil, err
	}
	sql := "UPDATE " + ident(table) + " SET " + strings.Join(sets, ", ") + cond + " RETURNING " + selectList(def)

	rows, err := b.collect(ctx, def, sql, a)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s %s: %w", table, id, apperrors.ErrNotFound)
	}
	return rows[0], nil
}

// WithTx implements portsrepo.Backend.
func (b *Backend) WithTx(ctx context.Context, fn func(tx portsrepo.Backend) error) error {
	tx, err := b.Begin(ctx)
	if err != nil {
		return err
	}
	// Will be ignored if transaction is committed successfully
	defer b.Rollback(ctx, tx)

	if err := fn(&Backend{BaseRepository: BaseRepository{DB: tx}, maxIn: b.maxIn}); err != nil {
		return err
	}
	return b.Commit(ctx, tx)
}
