package batch_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	portsrepo "github.com/bp848/mqdriven-sub001/internal/core/ports/repositories"
	"github.com/bp848/mqdriven-sub001/internal/middleware"
	"github.com/bp848/mqdriven-sub001/internal/repositories/batch"
)

// recordingReader answers SelectIn with one row per value and remembers chunk sizes.
type recordingReader struct {
	mu      sync.Mutex
	calls   []int
	failFor map[string]error // keyed by first value of a chunk
}

func (r *recordingReader) Select(context.Context, string, portsrepo.Query) ([]portsrepo.Row, error) {
	return nil, errors.New("not used")
}

func (r *recordingReader) SelectIn(_ context.Context, _ string, column string, values []string) ([]portsrepo.Row, error) {
	r.mu.Lock()
	r.calls = append(r.calls, len(values))
	r.mu.Unlock()

	if err, ok := r.failFor[values[0]]; ok {
		return nil, err
	}
	rows := make([]portsrepo.Row, len(values))
	for i, v := range values {
		rows[i] = portsrepo.Row{column: v}
	}
	return rows, nil
}

func (r *recordingReader) sortedCalls() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := append([]int(nil), r.calls...)
	sort.Sort(sort.Reverse(sort.IntSlice(out)))
	return out
}

func uuidN(n int) string {
	return fmt.Sprintf("00000000-0000-4000-8000-%012d", n)
}

func uuids(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = uuidN(i + 1)
	}
	return ids
}

func captureLogs(t *testing.T) (context.Context, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return middleware.WithLogger(context.Background(), logger), &buf
}

func TestFetchByIDs_ChunksAndDropsMalformed(t *testing.T) {
	reader := &recordingReader{}
	exec := batch.NewExecutor(reader, batch.Config{})

	ids := append(uuids(220), "invalid-id")
	rows, err := exec.FetchByIDs(context.Background(), "journal_batches", "source_application_id", ids)

	require.NoError(t, err)
	assert.Equal(t, []int{200, 20}, reader.sortedCalls())
	assert.Len(t, rows, 220)
	for _, r := range rows {
		assert.NotEqual(t, "invalid-id", r["source_application_id"])
	}
}

func TestFetchByIDs_MergesInChunkOrder(t *testing.T) {
	reader := &recordingReader{}
	exec := batch.NewExecutor(reader, batch.Config{ChunkSize: 3, Concurrency: 8})

	ids := uuids(10)
	rows, err := exec.FetchByIDs(context.Background(), "applications", "id", ids)

	require.NoError(t, err)
	require.Len(t, rows, 10)
	for i, r := range rows {
		assert.Equal(t, ids[i], r["id"])
	}
}

func TestFetchByIDs_PartialFailureKeepsHealthyChunks(t *testing.T) {
	ctx, logs := captureLogs(t)
	reader := &recordingReader{failFor: map[string]error{uuidN(201): errors.New("statement timeout")}}
	exec := batch.NewExecutor(reader, batch.Config{})

	rows, err := exec.FetchByIDs(ctx, "journal_batches", "source_application_id", uuids(220))

	require.NoError(t, err)
	assert.Len(t, rows, 200)
	assert.Contains(t, logs.String(), "Failed to fetch part of batch")
	assert.Contains(t, logs.String(), `"table":"journal_batches"`)
}

func TestFetchByIDs_AllChunksFail(t *testing.T) {
	boom := errors.New("boom")
	reader := &recordingReader{failFor: map[string]error{uuidN(1): boom}}
	exec := batch.NewExecutor(reader, batch.Config{})

	rows, err := exec.FetchByIDs(context.Background(), "journal_lines", "batch_id", uuids(5))

	assert.Nil(t, rows)
	assert.ErrorIs(t, err, boom)
}

func TestFetchByIDs_NoValidIDsSkipsBackend(t *testing.T) {
	reader := &recordingReader{}
	exec := batch.NewExecutor(reader, batch.Config{})

	rows, err := exec.FetchByIDs(context.Background(), "applications", "id", []string{"", "123", "not-a-uuid"})

	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Empty(t, reader.sortedCalls())
}

func TestFetchByIDs_DeduplicatesAndCustomValidator(t *testing.T) {
	reader := &recordingReader{}
	exec := batch.NewExecutor(reader, batch.Config{}).WithValidator(func(code string) bool { return code != "" })

	rows, err := exec.FetchByIDs(context.Background(), "chart_of_accounts", "code", []string{"6100", "6200", "6100", ""})

	require.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.Equal(t, []int{2}, reader.sortedCalls())
}

func TestChunk(t *testing.T) {
	assert.Empty(t, batch.Chunk(nil, 200))
	chunks := batch.Chunk(uuids(401), 200)
	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 200)
	assert.Len(t, chunks[2], 1)
}

func TestIsCanonicalUUID(t *testing.T) {
	assert.True(t, batch.IsCanonicalUUID("0F0E0D0C-0000-4000-8000-000000000001"))
	assert.False(t, batch.IsCanonicalUUID("0f0e0d0c00004000800000000000000001"))
	assert.False(t, batch.IsCanonicalUUID("invalid-id"))
}
