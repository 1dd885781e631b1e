package driven

import (
	"context"

	"github.com/custodia-labs/docucortex/internal/core/domain"
)

// IndexProvider stores named collections of chunk embeddings
// and answers nearest-neighbour queries against them.
type IndexProvider interface {
	// HasIndex reports whether a named index exists.
	// Implementations answer with a single catalog lookup.
	HasIndex(ctx context.Context, name string) (bool, error)

	// ListIndexNames returns the names of all indexes.
	ListIndexNames(ctx context.Context) ([]string, error)

	// CreateIndex persists chunks and their embeddings under name.
	// embeddings[i] belongs to chunks[i]. Creating an index that already
	// exists is a no-op, so concurrent builders converge on one index.
	CreateIndex(ctx context.Context, name, documentID string, chunks []domain.Chunk, embeddings [][]float32) error

	// Search returns up to k chunks ordered by descending similarity to query.
	// Ties are broken by chunk position.
	Search(ctx context.Context, name string, query []float32, k int) ([]domain.RetrievedChunk, error)
}
