package services

import (
	"context"

	"github.com/bp848/mqdriven-sub001/internal/dto"
)

// FileStorage stores uploaded documents.
type FileStorage interface {
	Upload(ctx context.Context, data []byte, bucket, name string) (path string, url string, err error)
	Download(ctx context.Context, path string) ([]byte, error)
}

// Extractor turns a document into loosely structured fields. Its output is untrusted.
type Extractor interface {
	Extract(ctx context.Context, data []byte, mimeType string) (map[string]any, error)
}

// IntakeSvc attaches documents to draft applications.
type IntakeSvc interface {
	AttachDocument(ctx context.Context, applicationID string, applicantID string, data []byte, mimeType string) (*dto.AttachDocumentResponse, error)
}
