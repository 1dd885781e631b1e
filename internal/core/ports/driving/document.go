package driving

import (
	"context"

	"github.com/custodia-labs/docucortex/internal/core/domain"
)

// DocumentService accepts uploads and stores their extracted text
type DocumentService interface {
	// Upload extracts text from a PDF or plain-text file and stores it under a new ID.
	// Fails with domain.ErrUnsupportedType, domain.ErrInvalidInput or domain.ErrEmptyDocument.
	Upload(ctx context.Context, upload domain.Upload) (*domain.UploadResult, error)
}
