package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/docucortex/internal/core/domain"
)

// MockDocumentStore is a mock implementation of DocumentStore for testing
type MockDocumentStore struct {
	mu        sync.RWMutex
	documents map[string]*domain.Document
	getCalls  int

	// Optional error injection
	GetErr  error
	SaveErr error
	PingErr error
}

// NewMockDocumentStore creates a new MockDocumentStore
func NewMockDocumentStore() *MockDocumentStore {
	return &MockDocumentStore{
		documents: make(map[string]*domain.Document),
	}
}

func (m *MockDocumentStore) Save(ctx context.Context, doc *domain.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	if _, exists := m.documents[doc.ID]; exists {
		return fmt.Errorf("document %s already exists", doc.ID)
	}
	m.documents[doc.ID] = doc
	return nil
}

func (m *MockDocumentStore) GetText(ctx context.Context, id string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalls++
	if m.GetErr != nil {
		return "", m.GetErr
	}
	doc, ok := m.documents[id]
	if !ok {
		return "", domain.ErrNotFound
	}
	return doc.Text, nil
}

func (m *MockDocumentStore) Ping(ctx context.Context) error {
	return m.PingErr
}

// Helper methods for testing

// Put stores text under id, bypassing Save.
func (m *MockDocumentStore) Put(id, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.documents[id] = &domain.Document{ID: id, ContentType: domain.ContentTypeText, Text: text}
}

// Document returns a stored document or nil.
func (m *MockDocumentStore) Document(id string) *domain.Document {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.documents[id]
}

// Count returns the number of stored documents.
func (m *MockDocumentStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.documents)
}

// GetCalls returns how many times GetText was called.
func (m *MockDocumentStore) GetCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getCalls
}
