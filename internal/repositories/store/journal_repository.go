package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/bp848/mqdriven-sub001/internal/apperrors"
	"github.com/bp848/mqdriven-sub001/internal/core/domain"
	portsrepo "github.com/bp848/mqdriven-sub001/internal/core/ports/repositories"
	"github.com/bp848/mqdriven-sub001/internal/repositories/batch"
	"github.com/bp848/mqdriven-sub001/internal/repositories/schema"
	"github.com/bp848/mqdriven-sub001/internal/utils/mapping"
)

type journalRepository struct {
	db   portsrepo.Backend
	exec *batch.Executor
}

// newJournalRepository creates a new repository for journal batches and lines.
func newJournalRepository(db portsrepo.Backend, exec *batch.Executor) portsrepo.JournalRepositoryFacade {
	return &journalRepository{db: db, exec: exec}
}

// Ensure journalRepository implements portsrepo.JournalRepositoryFacade
var _ portsrepo.JournalRepositoryFacade = (*journalRepository)(nil)

func sortLines(lines []domain.JournalLine) {
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].SortIndex < lines[j].SortIndex })
}

func (r *journalRepository) findOne(ctx context.Context, column, value string) (*domain.JournalBatch, error) {
	if !batch.IsCanonicalUUID(value) {
		return nil, notFound("journal batch", value)
	}
	rows, err := r.db.Select(ctx, schema.JournalBatches, portsrepo.Query{
		Filters: []portsrepo.Filter{portsrepo.Eq(column, value)},
		Limit:   1,
	})
	if err != nil {
		return nil, fmt.Errorf("find journal batch by %s: %w", column, err)
	}
	if len(rows) == 0 {
		return nil, notFound("journal batch", value)
	}
	b := mapping.ToDomainJournalBatch(rows[0])

	lineRows, err := r.db.Select(ctx, schema.JournalLines, portsrepo.Query{
		Filters: []portsrepo.Filter{portsrepo.Eq("batch_id", b.BatchID)},
		OrderBy: "sort_index",
	})
	if err != nil {
		return nil, fmt.Errorf("find lines of batch %s: %w", b.BatchID, err)
	}
	b.Lines = make([]domain.JournalLine, len(lineRows))
	for i, row := range lineRows {
		b.Lines[i] = mapping.ToDomainJournalLine(row)
	}
	sortLines(b.Lines)
	return &b, nil
}

func (r *journalRepository) FindBatchByID(ctx context.Context, batchID string) (*domain.JournalBatch, error) {
	return r.findOne(ctx, "id", batchID)
}

func (r *journalRepository) FindBatchByApplicationID(ctx context.Context, applicationID string) (*domain.JournalBatch, error) {
	return r.findOne(ctx, "source_application_id", applicationID)
}

// FindBatchesByApplicationIDs joins batches to their lines for many applications at once,
// each hop going through the chunked executor.
func (r *journalRepository) FindBatchesByApplicationIDs(ctx context.Context, applicationIDs []string) (map[string]domain.JournalBatch, error) {
	batchRows, err := r.exec.FetchByIDs(ctx, schema.JournalBatches, "source_application_id", applicationIDs)
	if err != nil {
		return nil, fmt.Errorf("fetch journal batches: %w", err)
	}

	batches := make(map[string]domain.JournalBatch, len(batchRows))
	byID := make(map[string]string, len(batchRows)) // batch id -> application id
	batchIDs := make([]string, 0, len(batchRows))
	for _, row := range batchRows {
		b := mapping.ToDomainJournalBatch(row)
		batches[b.SourceApplicationID] = b
		byID[b.BatchID] = b.SourceApplicationID
		batchIDs = append(batchIDs, b.BatchID)
	}

	lineRows, err := r.exec.FetchByIDs(ctx, schema.JournalLines, "batch_id", batchIDs)
	if err != nil {
		// Batches without lines are still worth returning; the executor already logged the failure.
		return batches, nil
	}
	for _, row := range lineRows {
		line := mapping.ToDomainJournalLine(row)
		appID, ok := byID[line.BatchID]
		if !ok {
			continue
		}
		b := batches[appID]
		b.Lines = append(b.Lines, line)
		batches[appID] = b
	}
	for appID, b := range batches {
		sortLines(b.Lines)
		batches[appID] = b
	}
	return batches, nil
}

func (r *journalRepository) SaveBatch(ctx context.Context, b domain.JournalBatch) error {
	return r.db.WithTx(ctx, func(tx portsrepo.Backend) error {
		if _, err := tx.Insert(ctx, schema.JournalBatches, mapping.ToRowJournalBatch(b)); err != nil {
			return mapWriteErr(err, "insert journal batch for "+b.SourceApplicationID)
		}
		for _, line := range b.Lines {
			line.BatchID = b.BatchID
			if _, err := tx.Insert(ctx, schema.JournalLines, mapping.ToRowJournalLine(line)); err != nil {
				return mapWriteErr(err, fmt.Sprintf("insert journal line %d of %s", line.SortIndex, b.BatchID))
			}
		}
		return nil
	})
}

func (r *journalRepository) MarkBatchPosted(ctx context.Context, batchID string, postedAt time.Time) (*domain.JournalBatch, error) {
	_, err := r.db.Update(ctx, schema.JournalBatches, batchID, portsrepo.Row{
		"status":    string(domain.JournalPosted),
		"posted_at": postedAt,
	}, portsrepo.Eq("status", string(domain.JournalDraft)))
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("post journal batch %s: %w", batchID, err)
		}
		if _, ferr := r.FindBatchByID(ctx, batchID); ferr != nil {
			return nil, ferr
		}
		return nil, fmt.Errorf("journal batch %s is no longer a draft: %w", batchID, apperrors.ErrStaleState)
	}
	return r.FindBatchByID(ctx, batchID)
}
