package memory

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/custodia-labs/docucortex/internal/core/domain"
	"github.com/custodia-labs/docucortex/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.IndexProvider = (*VectorIndex)(nil)

type entry struct {
	chunk  domain.Chunk
	vector []float32
	norm   float64
}

type index struct {
	documentID string
	dimension  int
	entries    []entry
}

// VectorIndex is an in-memory IndexProvider using brute-force cosine similarity.
type VectorIndex struct {
	mu      sync.RWMutex
	indexes map[string]*index
}

// NewVectorIndex creates an empty VectorIndex.
func NewVectorIndex() *VectorIndex {
	return &VectorIndex{indexes: make(map[string]*index)}
}

func (v *VectorIndex) HasIndex(ctx context.Context, name string) (bool, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	_, ok := v.indexes[name]
	return ok, nil
}

func (v *VectorIndex) ListIndexNames(ctx context.Context) ([]string, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	names := make([]string, 0, len(v.indexes))
	for name := range v.indexes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// CreateIndex stores chunks under name. An existing index is left untouched.
func (v *VectorIndex) CreateIndex(ctx context.Context, name, documentID string, chunks []domain.Chunk, embeddings [][]float32) error {
	if len(chunks) != len(embeddings) {
		return fmt.Errorf("chunks and embeddings length mismatch: %d != %d", len(chunks), len(embeddings))
	}

	idx := &index{documentID: documentID, entries: make([]entry, len(chunks))}
	for i, c := range chunks {
		vec := embeddings[i]
		if len(vec) == 0 {
			return fmt.Errorf("chunk %d has an empty embedding", c.Position)
		}
		if idx.dimension == 0 {
			idx.dimension = len(vec)
		} else if len(vec) != idx.dimension {
			return errors.New("embedding dimension mismatch")
		}
		idx.entries[i] = entry{
			chunk:  c,
			vector: append([]float32(nil), vec...),
			norm:   norm(vec),
		}
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.indexes[name]; ok {
		return nil
	}
	v.indexes[name] = idx
	return nil
}

// Search ranks every chunk of the index by cosine similarity to query.
// Equal scores keep chunk position order.
func (v *VectorIndex) Search(ctx context.Context, name string, query []float32, k int) ([]domain.RetrievedChunk, error) {
	v.mu.RLock()
	idx, ok := v.indexes[name]
	v.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("index %s: %w", name, domain.ErrNotFound)
	}
	if k <= 0 || len(idx.entries) == 0 {
		return []domain.RetrievedChunk{}, nil
	}
	if len(query) != idx.dimension {
		return nil, fmt.Errorf("query dimension %d does not match index dimension %d", len(query), idx.dimension)
	}

	qn := norm(query)
	results := make([]domain.RetrievedChunk, len(idx.entries))
	for i, e := range idx.entries {
		results[i] = domain.RetrievedChunk{Chunk: e.chunk, Score: cosine(e.vector, e.norm, query, qn)}
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Position < results[j].Position
	})

	if k > len(results) {
		k = len(results)
	}
	return results[:k], nil
}

func norm(v []float32) float64 {
	sum := 0.0
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// cosine returns 0 for zero vectors.
func cosine(a []float32, an float64, b []float32, bn float64) float64 {
	if an == 0 || bn == 0 {
		return 0
	}
	dot := 0.0
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot / (an * bn)
}
