// Package memory holds process-local adapters for single-instance deployments and demos.
// Everything is lost when the process exits.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/docucortex/internal/core/domain"
	"github.com/custodia-labs/docucortex/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore keeps documents in a map owned by the instance.
type DocumentStore struct {
	mu        sync.RWMutex
	documents map[string]domain.Document
}

// NewDocumentStore creates an empty DocumentStore.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{documents: make(map[string]domain.Document)}
}

// Save stores a copy of doc. Saving an existing ID is an error.
func (s *DocumentStore) Save(ctx context.Context, doc *domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.documents[doc.ID]; exists {
		return fmt.Errorf("document %s already exists", doc.ID)
	}
	s.documents[doc.ID] = *doc
	return nil
}

func (s *DocumentStore) GetText(ctx context.Context, id string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return "", domain.ErrNotFound
	}
	return doc.Text, nil
}

func (s *DocumentStore) Ping(ctx context.Context) error {
	return nil
}
