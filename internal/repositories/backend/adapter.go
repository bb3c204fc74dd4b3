// Package backend is the single gateway between services and storage. It routes
// every call to the authoritative database and degrades to the in-memory fallback
// store when the failure is one the error classifier can name as drift or outage.
package backend

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	portsrepo "github.com/bp848/mqdriven-sub001/internal/core/ports/repositories"
	"github.com/bp848/mqdriven-sub001/internal/middleware"
	"github.com/bp848/mqdriven-sub001/internal/repositories/errclass"
)

// DefaultTimeout bounds every call to the primary backend.
const DefaultTimeout = 5 * time.Second

// txScope labels degradations of whole transactions, which span several tables.
const txScope = "(transaction)"

// Fallbacks counts calls served by the fallback store.
var Fallbacks = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "approval_ledger_backend_fallbacks_total",
	Help: "Backend calls served by the in-memory fallback store, by table and error class.",
}, []string{"table", "class"})

// ReadResult carries rows and whether they came from the fallback store.
type ReadResult struct {
	Rows     []portsrepo.Row
	Degraded bool
	Class    errclass.Class // Why the primary failed; empty when it was not consulted or succeeded
}

// Degradation describes a table currently served from the fallback store.
type Degradation struct {
	Table     string         `json:"table"`
	Class     errclass.Class `json:"class"`
	Since     time.Time      `json:"since"`
	LastSeen  time.Time      `json:"lastSeen"`
	Fallbacks int            `json:"fallbacks"`
}

// Options tunes an Adapter.
type Options struct {
	Timeout time.Duration
	Logger  *slog.Logger // Used for startup notices; calls log through the request logger
}

// Adapter implements portsrepo.Backend over a primary and a fallback backend.
type Adapter struct {
	primary  portsrepo.Backend
	fallback portsrepo.Backend
	timeout  time.Duration

	mu       sync.Mutex
	warned   map[string]struct{} // table|condition pairs already logged
	degraded map[string]*Degradation
}

var _ portsrepo.Backend = (*Adapter)(nil)

// New creates an Adapter. A nil primary serves everything from fallback.
func New(primary, fallback portsrepo.Backend, opts Options) *Adapter {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if primary == nil {
		opts.Logger.Warn("No database configured; all data is served from the demo fallback store")
	}
	return &Adapter{
		primary:  primary,
		fallback: fallback,
		timeout:  opts.Timeout,
		warned:   make(map[string]struct{}),
		degraded: make(map[string]*Degradation),
	}
}

// HasPrimary reports whether an authoritative backend is configured.
func (a *Adapter) HasPrimary() bool {
	return a.primary != nil
}

// Degradations returns a snapshot of tables that have fallen back, ordered by table.
func (a *Adapter) Degradations() []Degradation {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Degradation, 0, len(a.degraded))
	for _, d := range a.degraded {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Table < out[j].Table })
	return out
}

// record notes a fallback and reports whether this is the first one of its kind for table.
func (a *Adapter) record(table string, class errclass.Class) bool {
	Fallbacks.WithLabelValues(table, string(class)).Inc()

	now := time.Now().UTC()
	a.mu.Lock()
	defer a.mu.Unlock()

	d, ok := a.degraded[table]
	if !ok {
		d = &Degradation{Table: table, Since: now}
		a.degraded[table] = d
	}
	d.Class = class
	d.LastSeen = now
	d.Fallbacks++

	// Drift and outage are logged separately: they need different operators.
	key := table + "|" + condition(class)
	if _, seen := a.warned[key]; seen {
		return false
	}
	a.warned[key] = struct{}{}
	return true
}

func condition(class errclass.Class) string {
	if class == errclass.BackendUnreachable {
		return "connectivity"
	}
	return "schema"
}

func (a *Adapter) warn(ctx context.Context, table string, class errclass.Class, err error) {
	if !a.record(table, class) {
		return
	}
	logger := middleware.GetLoggerFromCtx(ctx)
	attrs := []any{slog.String("table", table), slog.String("class", string(class)), slog.String("error", err.Error())}
	if class == errclass.BackendUnreachable {
		logger.Warn("Database unreachable (connectivity); serving from demo fallback store", attrs...)
		return
	}
	logger.Warn("Database schema drift: relation or column missing; serving from demo fallback store", attrs...)
}

// readCtx bounds a primary read. Caller cancellation still applies.
func (a *Adapter) readCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, a.timeout)
}

// writeCtx bounds a primary write but detaches it from caller cancellation: a
// write the caller abandoned still completes or fails as a whole.
func (a *Adapter) writeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), a.timeout)
}

// call runs op on the primary under a bounded context and falls back when the
// failure is degradable. The returned class is set when the fallback served.
func call[T any](ctx context.Context, a *Adapter, table string, write bool, op func(context.Context, portsrepo.Backend) (T, error)) (T, errclass.Class, error) {
	if a.primary == nil {
		if write {
			ctx = context.WithoutCancel(ctx)
		}
		v, err := op(ctx, a.fallback)
		return v, "", err
	}

	var bounded context.Context
	var cancel context.CancelFunc
	if write {
		bounded, cancel = a.writeCtx(ctx)
	} else {
		bounded, cancel = a.readCtx(ctx)
	}
	v, err := op(bounded, a.primary)
	cancel()
	if err == nil {
		return v, "", nil
	}

	class := errclass.Classify(err)
	if !class.Degradable() {
		return v, "", err
	}
	a.warn(ctx, table, class, err)

	fctx := ctx
	if write {
		fctx = context.WithoutCancel(ctx)
	}
	fv, ferr := op(fctx, a.fallback)
	if ferr != nil {
		return fv, class, fmt.Errorf("fallback %s: %w", table, ferr)
	}
	return fv, class, nil
}

// Read selects rows matching every filter and reports whether the result is degraded.
func (a *Adapter) Read(ctx context.Context, table string, filters ...portsrepo.Filter) (ReadResult, error) {
	rows, class, err := call(ctx, a, table, false, func(ctx context.Context, b portsrepo.Backend) ([]portsrepo.Row, error) {
		return b.Select(ctx, table, portsrepo.Query{Filters: filters})
	})
	if err != nil {
		return ReadResult{}, err
	}
	return ReadResult{Rows: rows, Degraded: class != "" || a.primary == nil, Class: class}, nil
}

// Select implements portsrepo.BackendReader.
func (a *Adapter) Select(ctx context.Context, table string, q portsrepo.Query) ([]portsrepo.Row, error) {
	rows, _, err := call(ctx, a, table, false, func(ctx context.Context, b portsrepo.Backend) ([]portsrepo.Row, error) {
		return b.Select(ctx, table, q)
	})
	return rows, err
}

// SelectIn implements portsrepo.BackendReader.
func (a *Adapter) SelectIn(ctx context.Context, table string, column string, values []string) ([]portsrepo.Row, error) {
	rows, _, err := call(ctx, a, table, false, func(ctx context.Context, b portsrepo.Backend) ([]portsrepo.Row, error) {
		return b.SelectIn(ctx, table, column, values)
	})
	return rows, err
}

// Insert implements portsrepo.BackendWriter.
func (a *Adapter) Insert(ctx context.Context, table string, row portsrepo.Row) (portsrepo.Row, error) {
	out, _, err := call(ctx, a, table, true, func(ctx context.Context, b portsrepo.Backend) (portsrepo.Row, error) {
		return b.Insert(ctx, table, row)
	})
	return out, err
}

// Update implements portsrepo.BackendWriter.
func (a *Adapter) Update(ctx context.Context, table string, id string, patch portsrepo.Row, conds ...portsrepo.Filter) (portsrepo.Row, error) {
	out, _, err := call(ctx, a, table, true, func(ctx context.Context, b portsrepo.Backend) (portsrepo.Row, error) {
		return b.Update(ctx, table, id, patch, conds...)
	})
	return out, err
}

// WithTx implements portsrepo.Backend. The whole transaction is replayed on the
// fallback store when the primary fails in a degradable way; the primary attempt
// has been rolled back by then.
func (a *Adapter) WithTx(ctx context.Context, fn func(tx portsrepo.Backend) error) error {
	_, _, err := call(ctx, a, txScope, true, func(ctx context.Context, b portsrepo.Backend) (struct{}, error) {
		return struct{}{}, b.WithTx(ctx, fn)
	})
	return err
}

// EnsureInsert inserts row unless a row with the same uniqueColumn value exists.
// See EnsureInsert.
func (a *Adapter) EnsureInsert(ctx context.Context, table string, row portsrepo.Row, uniqueColumn string) (portsrepo.Row, error) {
	return EnsureInsert(ctx, a, table, row, uniqueColumn)
}

// EnsureInsert inserts row through b. On a constraint violation it re-reads once by
// uniqueColumn; an existing row counts as success, otherwise the violation propagates.
func EnsureInsert(ctx context.Context, b portsrepo.Backend, table string, row portsrepo.Row, uniqueColumn string) (portsrepo.Row, error) {
	inserted, err := b.Insert(ctx, table, row)
	if err == nil {
		return inserted, nil
	}
	if errclass.Classify(err) != errclass.ConstraintViolation {
		return nil, err
	}

	existing, rerr := b.Select(ctx, table, portsrepo.Query{
		Filters: []portsrepo.Filter{portsrepo.Eq(uniqueColumn, row[uniqueColumn])},
		Limit:   1,
	})
	if rerr == nil && len(existing) == 1 {
		middleware.GetLoggerFromCtx(ctx).Debug("Row already existed; treating insert as success",
			slog.String("table", table), slog.String("column", uniqueColumn))
		return existing[0], nil
	}
	return nil, err
}
