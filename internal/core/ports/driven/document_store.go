package driven

import (
	"context"

	"github.com/custodia-labs/docucortex/internal/core/domain"
)

// DocumentStore persists extracted document text.
// The RAG core only reads through GetText; uploads write through Save.
type DocumentStore interface {
	// Save stores a document. Documents are immutable, so saving an existing ID is an error.
	Save(ctx context.Context, doc *domain.Document) error

	// GetText returns the full text of a document.
	// Returns domain.ErrNotFound if the document does not exist.
	GetText(ctx context.Context, id string) (string, error)

	// Ping checks if the store backend is healthy.
	Ping(ctx context.Context) error
}
