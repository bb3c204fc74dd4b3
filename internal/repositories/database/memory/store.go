// Package memory implements the relational backend contract in process. It serves
// as the demo fallback store when the authoritative database is missing a relation,
// missing a column, or unreachable.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/bp848/mqdriven-sub001/internal/apperrors"
	portsrepo "github.com/bp848/mqdriven-sub001/internal/core/ports/repositories"
	"github.com/bp848/mqdriven-sub001/internal/repositories/errclass"
	"github.com/bp848/mqdriven-sub001/internal/repositories/schema"
)

// Store keeps rows per table in insertion order.
type Store struct {
	mu     sync.RWMutex
	tables map[string][]portsrepo.Row
}

// New returns an empty store with every schema table present.
func New() *Store {
	s := &Store{tables: make(map[string][]portsrepo.Row)}
	for _, name := range schema.Names() {
		s.tables[name] = nil
	}
	return s
}

var _ portsrepo.Backend = (*Store)(nil)

func relationMissing(table string) error {
	return &errclass.BackendError{Code: "42P01", Message: fmt.Sprintf("relation %q does not exist", table), Status: 404}
}

func columnMissing(table, column string) error {
	return &errclass.BackendError{Code: "42703", Message: fmt.Sprintf("column %q of relation %q does not exist", column, table), Status: 400}
}

func uniqueViolation(table, column string) error {
	return &errclass.BackendError{
		Code:    "23505",
		Message: fmt.Sprintf("duplicate key value violates unique constraint %q", table+"_"+column+"_key"),
		Status:  409,
	}
}

// lookup must be called with s.mu held.
func (s *Store) lookup(table string) (schema.Table, error) {
	def, ok := schema.Lookup(table)
	if !ok {
		return schema.Table{}, relationMissing(table)
	}
	if _, ok := s.tables[table]; !ok {
		return schema.Table{}, relationMissing(table)
	}
	return def, nil
}

func normalizeErr(def schema.Table, err error) error {
	var unknown *schema.UnknownColumnError
	if errors.As(err, &unknown) {
		return columnMissing(def.Name, unknown.Column)
	}
	return &errclass.BackendError{Code: "22P02", Message: err.Error(), Status: 400}
}

type predicate struct {
	col   schema.Column
	value any
}

func compile(def schema.Table, filters []portsrepo.Filter) ([]predicate, error) {
	preds := make([]predicate, 0, len(filters))
	for _, f := range filters {
		col, ok := def.Column(f.Column)
		if !ok {
			return nil, columnMissing(def.Name, f.Column)
		}
		v, err := col.Normalize(f.Value)
		if err != nil {
			return nil, normalizeErr(def, err)
		}
		preds = append(preds, predicate{col: col, value: v})
	}
	return preds, nil
}

func matches(row portsrepo.Row, preds []predicate) bool {
	for _, p := range preds {
		if !p.col.Equal(row[p.col.Name], p.value) {
			return false
		}
	}
	return true
}

// Select implements portsrepo.BackendReader.
func (s *Store) Select(ctx context.Context, table string, q portsrepo.Query) ([]portsrepo.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	def, err := s.lookup(table)
	if err != nil {
		return nil, err
	}
	preds, err := compile(def, q.Filters)
	if err != nil {
		return nil, err
	}

	var out []portsrepo.Row
	for _, row := range s.tables[table] {
		if matches(row, preds) {
			out = append(out, cloneRow(row))
		}
	}

	if q.OrderBy != "" {
		col, ok := def.Column(q.OrderBy)
		if !ok {
			return nil, columnMissing(table, q.OrderBy)
		}
		sort.SliceStable(out, func(i, j int) bool {
			if q.Desc {
				return col.Less(out[j][col.Name], out[i][col.Name])
			}
			return col.Less(out[i][col.Name], out[j][col.Name])
		})
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

// SelectIn implements portsrepo.BackendReader.
func (s *Store) SelectIn(ctx context.Context, table string, column string, values []string) ([]portsrepo.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	def, err := s.lookup(table)
	if err != nil {
		return nil, err
	}
	col, ok := def.Column(column)
	if !ok {
		return nil, columnMissing(table, column)
	}

	wanted := make([]any, 0, len(values))
	for _, v := range values {
		nv, err := col.Normalize(v)
		if err != nil {
			return nil, normalizeErr(def, err)
		}
		wanted = append(wanted, nv)
	}

	var out []portsrepo.Row
	for _, row := range s.tables[table] {
		for _, w := range wanted {
			if col.Equal(row[column], w) {
				out = append(out, cloneRow(row))
				break
			}
		}
	}
	return out, nil
}

// Insert implements portsrepo.BackendWriter.
func (s *Store) Insert(ctx context.Context, table string, row portsrepo.Row) (portsrepo.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertLocked(table, row)
}

func (s *Store) insertLocked(table string, row portsrepo.Row) (portsrepo.Row, error) {
	def, err := s.lookup(table)
	if err != nil {
		return nil, err
	}
	normalized, err := def.Normalize(row)
	if err != nil {
		return nil, normalizeErr(def, err)
	}
	complete, err := def.Normalize(def.Complete(normalized))
	if err != nil {
		return nil, normalizeErr(def, err)
	}
	if err := s.checkUnique(def, complete, -1); err != nil {
		return nil, err
	}
	s.tables[table] = append(s.tables[table], complete)
	return cloneRow(complete), nil
}

// checkUnique rejects candidate if it collides with any row other than the one at skip.
func (s *Store) checkUnique(def schema.Table, candidate portsrepo.Row, skip int) error {
	uniques := append([]string{def.PrimaryKey}, def.Unique...)
	for i, existing := range s.tables[def.Name] {
		if i == skip {
			continue
		}
		for _, name := range uniques {
			col, _ := def.Column(name)
			if candidate[name] != nil && col.Equal(existing[name], candidate[name]) {
				return uniqueViolation(def.Name, name)
			}
		}
	}
	return nil
}

// Update implements portsrepo.BackendWriter.
func (s *Store) Update(ctx context.Context, table string, id string, patch portsrepo.Row, conds ...portsrepo.Filter) (portsrepo.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	def, err := s.lookup(table)
	if err != nil {
		return nil, err
	}
	normalized, err := def.Normalize(patch)
	if err != nil {
		return nil, normalizeErr(def, err)
	}
	delete(normalized, def.PrimaryKey)

	preds, err := compile(def, append([]portsrepo.Filter{portsrepo.Eq(def.PrimaryKey, id)}, conds...))
	if err != nil {
		return nil, err
	}

	rows := s.tables[table]
	for i, row := range rows {
		if !matches(row, preds) {
			continue
		}
		updated := cloneRow(row)
		for k, v := range normalized {
			updated[k] = v
		}
		if err := s.checkUnique(def, updated, i); err != nil {
			return nil, err
		}
		rows[i] = updated
		return cloneRow(updated), nil
	}
	return nil, fmt.Errorf("%s %s: %w", table, id, apperrors.ErrNotFound)
}

// WithTx implements portsrepo.Backend. fn runs against a private copy of the store
// which replaces the live tables only if fn succeeds. Other callers wait for the
// transaction to finish.
func (s *Store) WithTx(ctx context.Context, fn func(tx portsrepo.Backend) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &Store{tables: make(map[string][]portsrepo.Row, len(s.tables))}
	for name, rows := range s.tables {
		tx.tables[name] = append([]portsrepo.Row(nil), rows...)
	}
	if err := fn(tx); err != nil {
		return err
	}
	s.tables = tx.tables
	return nil
}

// DropTable removes a relation, simulating schema drift in tests and demos.
func (s *Store) DropTable(table string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tables, table)
}

// Count returns the number of rows in table.
func (s *Store) Count(table string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tables[table])
}

func cloneRow(row portsrepo.Row) portsrepo.Row {
	out := make(portsrepo.Row, len(row))
	for k, v := range row {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, inner := range t {
			m[k] = cloneValue(inner)
		}
		return m
	case []any:
		s := make([]any, len(t))
		for i, inner := range t {
			s[i] = cloneValue(inner)
		}
		return s
	}
	return v
}
