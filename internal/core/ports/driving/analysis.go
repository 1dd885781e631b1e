package driving

import (
	"context"

	"github.com/custodia-labs/docucortex/internal/core/domain"
)

// AnalysisService produces whole-document analyses
type AnalysisService interface {
	// Summarize returns a summary of the document.
	// Fails with domain.ErrNotFound when the document does not exist.
	Summarize(ctx context.Context, documentID string) (*domain.Summary, error)
}
