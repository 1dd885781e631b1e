package driving

import (
	"context"

	"github.com/custodia-labs/docucortex/internal/core/domain"
)

// ChatService answers questions about a single document
type ChatService interface {
	// Ask answers question using passages retrieved from the document's semantic index.
	// Errors wrap one of domain.ErrNotFound, domain.ErrHarmfulContent,
	// domain.ErrServiceUnavailable or domain.ErrInternal.
	Ask(ctx context.Context, documentID, question string) (*domain.ChatResponse, error)
}
