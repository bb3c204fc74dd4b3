package services

import (
	"context"

	"github.com/bp848/mqdriven-sub001/internal/core/domain"
)

// JournalReaderSvc defines read operations for journal batches
type JournalReaderSvc interface {
	// GetBatch retrieves a batch with its lines.
	GetBatch(ctx context.Context, batchID string) (*domain.JournalBatch, error)

	// GetBatchForApplication retrieves the batch derived from an application.
	GetBatchForApplication(ctx context.Context, applicationID string) (*domain.JournalBatch, error)
}

// JournalWriterSvc defines write operations for journal batches
type JournalWriterSvc interface {
	// Generate derives the balanced draft batch of an approved application. It is idempotent:
	// an existing batch is returned unchanged.
	Generate(ctx context.Context, applicationID string) (*domain.JournalBatch, error)

	// Post moves a draft batch to posted. Posting is one-way.
	Post(ctx context.Context, batchID string) (*domain.JournalBatch, error)
}

// JournalSvcFacade combines all journal-related service interfaces
type JournalSvcFacade interface {
	JournalReaderSvc
	JournalWriterSvc
}

// AccountingSvc lists approved applications joined with their bookkeeping.
type AccountingSvc interface {
	// ListApprovedApplications returns approved applications, optionally restricted to
	// application type codes, each with its journal batch and lines when one exists.
	ListApprovedApplications(ctx context.Context, codes ...string) ([]domain.ApprovedApplication, error)
}
