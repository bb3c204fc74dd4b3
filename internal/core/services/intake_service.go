package services

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"strings"

	"github.com/google/uuid"

	"github.com/bp848/mqdriven-sub001/internal/apperrors"
	"github.com/bp848/mqdriven-sub001/internal/core/domain"
	portsrepo "github.com/bp848/mqdriven-sub001/internal/core/ports/repositories"
	portssvc "github.com/bp848/mqdriven-sub001/internal/core/ports/services"
	"github.com/bp848/mqdriven-sub001/internal/dto"
)

// DocumentBucket is the storage bucket for application attachments.
const DocumentBucket = "application-documents"

// extractedFields are the only extractor keys copied into form data.
var extractedFields = []string{"total_amount", "description", "date", "vendor"}

type intakeService struct {
	BaseService
	appRepo   portsrepo.ApplicationRepositoryFacade
	storage   portssvc.FileStorage
	extractor portssvc.Extractor
}

// NewIntakeService creates a new IntakeSvc. A nil extractor stores documents without extraction.
func NewIntakeService(appRepo portsrepo.ApplicationRepositoryFacade, storage portssvc.FileStorage, extractor portssvc.Extractor) portssvc.IntakeSvc {
	return &intakeService{
		appRepo:   appRepo,
		storage:   storage,
		extractor: extractor,
	}
}

var _ portssvc.IntakeSvc = (*intakeService)(nil)

func (s *intakeService) AttachDocument(ctx context.Context, applicationID string, applicantID string, data []byte, mimeType string) (*dto.AttachDocumentResponse, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: document is empty", apperrors.ErrValidation)
	}
	app, err := s.appRepo.FindApplicationByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.ApplicantID != applicantID {
		return nil, fmt.Errorf("%w: application %s belongs to another applicant", apperrors.ErrForbidden, applicationID)
	}
	if app.Status != domain.StatusDraft {
		return nil, fmt.Errorf("%w: documents can only be attached to drafts, %s is %s", apperrors.ErrInvalidState, applicationID, app.Status)
	}

	name := uuid.NewString() + extensionFor(mimeType)
	path, url, err := s.storage.Upload(ctx, data, DocumentBucket, applicationID+"/"+name)
	if err != nil {
		s.LogError(ctx, err, "Failed to store document", slog.String("application_id", applicationID))
		return nil, err
	}

	merged := map[string]any{}
	if s.extractor != nil {
		fields, err := s.extractor.Extract(ctx, data, mimeType)
		if err != nil {
			s.LogWarn(ctx, err, "Document extraction failed; keeping the upload only",
				slog.String("application_id", applicationID))
		} else {
			merged = pickExtracted(fields)
		}
	}

	form := make(map[string]any, len(app.FormData)+len(merged)+1)
	for k, v := range app.FormData {
		form[k] = v
	}
	for k, v := range merged {
		form[k] = v
	}
	attachments, _ := form["attachments"].([]any)
	form["attachments"] = append(attachments, map[string]any{
		"path":      path,
		"url":       url,
		"mime_type": mimeType,
	})

	app.FormData = form
	app.UpdatedAt = s.Now()
	if _, err := s.appRepo.UpdateApplicationFrom(ctx, domain.StatusDraft, *app); err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Document attached",
		slog.String("application_id", applicationID),
		slog.String("path", path),
		slog.Int("merged_fields", len(merged)))
	return &dto.AttachDocumentResponse{
		ApplicationID: applicationID,
		Path:          path,
		URL:           url,
		Merged:        merged,
	}, nil
}

// pickExtracted keeps whitelisted scalar fields. Extractor output is untrusted.
func pickExtracted(fields map[string]any) map[string]any {
	out := make(map[string]any)
	for _, key := range extractedFields {
		switch v := fields[key].(type) {
		case string:
			if v = strings.TrimSpace(v); v != "" {
				out[key] = v
			}
		case float64, int, int64:
			out[key] = v
		}
	}
	return out
}

func extensionFor(mimeType string) string {
	exts, err := mime.ExtensionsByType(mimeType)
	if err != nil || len(exts) == 0 {
		return ""
	}
	return exts[0]
}
