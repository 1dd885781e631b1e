package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/docucortex/internal/core/domain"
	"github.com/custodia-labs/docucortex/internal/core/ports/driven"
)

// Retriever finds the chunks of an index closest to a question.
type Retriever struct {
	indexes    driven.IndexProvider
	embeddings driven.EmbeddingService
}

// NewRetriever creates a new Retriever
func NewRetriever(indexes driven.IndexProvider, embeddings driven.EmbeddingService) *Retriever {
	return &Retriever{
		indexes:    indexes,
		embeddings: embeddings,
	}
}

// Retrieve returns up to k chunks ordered by descending similarity.
// A blank question returns no chunks without calling the embedding provider.
func (r *Retriever) Retrieve(ctx context.Context, index *domain.IndexHandle, question string, k int) ([]domain.RetrievedChunk, error) {
	if strings.TrimSpace(question) == "" || k <= 0 {
		return nil, nil
	}

	vector, err := r.embeddings.EmbedQuery(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	results, err := r.indexes.Search(ctx, index.Name, vector, k)
	if err != nil {
		return nil, fmt.Errorf("search index %s: %w", index.Name, err)
	}

	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}
