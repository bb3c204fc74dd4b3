// Package batch fetches rows by large identifier lists without exceeding backend
// predicate limits, isolating failures to the chunk that produced them.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	portsrepo "github.com/bp848/mqdriven-sub001/internal/core/ports/repositories"
	"github.com/bp848/mqdriven-sub001/internal/middleware"
)

const (
	// DefaultChunkSize is the largest IN predicate the backend accepts comfortably.
	DefaultChunkSize = 200
	// DefaultConcurrency bounds the number of chunk queries in flight.
	DefaultConcurrency = 4
)

var uuidShape = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// IsCanonicalUUID reports whether id has the 8-4-4-4-12 hexadecimal shape.
func IsCanonicalUUID(id string) bool {
	return uuidShape.MatchString(id)
}

// Validator decides whether an identifier can possibly match a row.
type Validator func(id string) bool

// Config tunes an Executor. Zero values select the defaults.
type Config struct {
	ChunkSize   int
	Concurrency int
	Validator   Validator
}

// ChunkFailures counts chunk queries that failed and were skipped.
var ChunkFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "approval_ledger_batch_chunk_failures_total",
	Help: "Chunked IN-predicate queries that failed and were left out of a merged result.",
}, []string{"table"})

// Executor runs chunked SelectIn queries against a backend reader.
type Executor struct {
	reader      portsrepo.BackendReader
	chunkSize   int
	concurrency int
	valid       Validator
}

// NewExecutor creates an Executor over reader.
func NewExecutor(reader portsrepo.BackendReader, cfg Config) *Executor {
	e := &Executor{
		reader:      reader,
		chunkSize:   cfg.ChunkSize,
		concurrency: cfg.Concurrency,
		valid:       cfg.Validator,
	}
	if e.chunkSize <= 0 {
		e.chunkSize = DefaultChunkSize
	}
	if e.concurrency <= 0 {
		e.concurrency = DefaultConcurrency
	}
	if e.valid == nil {
		e.valid = IsCanonicalUUID
	}
	return e
}

// WithValidator returns a copy of e that accepts identifiers according to valid.
// Chart-of-accounts codes, for instance, are not UUIDs.
func (e *Executor) WithValidator(valid Validator) *Executor {
	cp := *e
	cp.valid = valid
	return &cp
}

// Sanitize keeps the identifiers that pass the validator, in first-seen order and
// without duplicates.
func (e *Executor) Sanitize(ids []string) (kept []string, dropped int) {
	seen := make(map[string]struct{}, len(ids))
	kept = make([]string, 0, len(ids))
	for _, id := range ids {
		if !e.valid(id) {
			dropped++
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		kept = append(kept, id)
	}
	return kept, dropped
}

// Chunk partitions ids into consecutive slices of at most size elements.
func Chunk(ids []string, size int) [][]string {
	if size <= 0 {
		size = DefaultChunkSize
	}
	chunks := make([][]string, 0, (len(ids)+size-1)/size)
	for start := 0; start < len(ids); start += size {
		chunks = append(chunks, ids[start:min(start+size, len(ids))])
	}
	return chunks
}

// FetchByIDs returns the rows of table whose column matches any of ids.
//
// Malformed identifiers are dropped before querying. Each chunk is queried
// independently; a failed chunk is logged and left out while the rest are still
// returned in chunk order. An error is returned only when every chunk failed.
func (e *Executor) FetchByIDs(ctx context.Context, table, column string, ids []string) ([]portsrepo.Row, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	kept, dropped := e.Sanitize(ids)
	if dropped > 0 {
		logger.Debug("Dropped malformed identifiers before batch fetch",
			slog.String("table", table), slog.String("column", column), slog.Int("dropped", dropped))
	}
	if len(kept) == 0 {
		return nil, nil
	}

	chunks := Chunk(kept, e.chunkSize)
	results := make([][]portsrepo.Row, len(chunks))
	failures := make([]error, len(chunks))

	// Chunk errors are recorded rather than returned so one failure never cancels its siblings.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, chunk := range chunks {
		i, chunk := i, chunk
		g.Go(func() error {
			rows, err := e.reader.SelectIn(gctx, table, column, chunk)
			if err != nil {
				failures[i] = err
				ChunkFailures.WithLabelValues(table).Inc()
				logger.Warn("Failed to fetch part of batch; continuing with remaining chunks",
					slog.String("table", table),
					slog.Int("chunk", i),
					slog.Int("chunk_size", len(chunk)),
					slog.String("error", err.Error()))
				return nil
			}
			results[i] = rows
			return nil
		})
	}
	_ = g.Wait()

	var merged []portsrepo.Row
	failed := 0
	for i := range chunks {
		if failures[i] != nil {
			failed++
			continue
		}
		merged = append(merged, results[i]...)
	}
	if failed == len(chunks) {
		return nil, fmt.Errorf("fetch %s by %s: all %d chunks failed: %w", table, column, failed, errors.Join(failures...))
	}
	return merged, nil
}
