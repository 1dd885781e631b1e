package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/docucortex/internal/core/domain"
)

// MockIndexProvider is an in-memory IndexProvider that counts calls.
// Search returns stored chunks in position order unless results were preset.
type MockIndexProvider struct {
	mu      sync.RWMutex
	indexes map[string][]domain.Chunk
	preset  map[string][]domain.RetrievedChunk

	hasCalls    int
	createCalls int
	searchCalls int

	// Optional error injection
	HasErr    error
	CreateErr error
	SearchErr error
}

// NewMockIndexProvider creates a new MockIndexProvider
func NewMockIndexProvider() *MockIndexProvider {
	return &MockIndexProvider{
		indexes: make(map[string][]domain.Chunk),
		preset:  make(map[string][]domain.RetrievedChunk),
	}
}

func (m *MockIndexProvider) HasIndex(ctx context.Context, name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hasCalls++
	if m.HasErr != nil {
		return false, m.HasErr
	}
	_, ok := m.indexes[name]
	return ok, nil
}

func (m *MockIndexProvider) ListIndexNames(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.indexes))
	for name := range m.indexes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (m *MockIndexProvider) CreateIndex(ctx context.Context, name, documentID string, chunks []domain.Chunk, embeddings [][]float32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls++
	if m.CreateErr != nil {
		return m.CreateErr
	}
	if _, ok := m.indexes[name]; ok {
		return nil
	}
	m.indexes[name] = append([]domain.Chunk(nil), chunks...)
	return nil
}

func (m *MockIndexProvider) Search(ctx context.Context, name string, query []float32, k int) ([]domain.RetrievedChunk, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searchCalls++
	if m.SearchErr != nil {
		return nil, m.SearchErr
	}

	if results, ok := m.preset[name]; ok {
		if len(results) > k {
			results = results[:k]
		}
		return results, nil
	}

	chunks := m.indexes[name]
	if len(chunks) > k {
		chunks = chunks[:k]
	}
	results := make([]domain.RetrievedChunk, 0, len(chunks))
	for _, c := range chunks {
		results = append(results, domain.RetrievedChunk{Chunk: c, Score: 1})
	}
	return results, nil
}

// Helper methods for testing

// SetSearchResults makes Search on name return results.
func (m *MockIndexProvider) SetSearchResults(name string, results []domain.RetrievedChunk) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.preset[name] = results
}

// Chunks returns the chunks stored under name.
func (m *MockIndexProvider) Chunks(name string) []domain.Chunk {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.indexes[name]
}

func (m *MockIndexProvider) HasCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hasCalls
}

func (m *MockIndexProvider) CreateCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.createCalls
}

func (m *MockIndexProvider) SearchCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.searchCalls
}
