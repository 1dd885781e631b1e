package mocks

import (
	"context"
	"sync"

	"github.com/custodia-labs/docucortex/internal/core/domain"
)

// MockModerationService flags the texts it was told to flag.
type MockModerationService struct {
	mu      sync.Mutex
	flagged map[string]bool
	inputs  []string

	// Err is returned by every Moderate call when set
	Err error
}

// NewMockModerationService creates a MockModerationService that flags nothing
func NewMockModerationService() *MockModerationService {
	return &MockModerationService{flagged: make(map[string]bool)}
}

func (m *MockModerationService) Moderate(ctx context.Context, text string) (*domain.ModerationResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inputs = append(m.inputs, text)
	if m.Err != nil {
		return nil, m.Err
	}
	if m.flagged[text] {
		return &domain.ModerationResult{Flagged: true, Categories: []string{"harassment"}}, nil
	}
	return &domain.ModerationResult{}, nil
}

func (m *MockModerationService) Model() string {
	return "mock-moderation"
}

// Helper methods for testing

// Flag makes Moderate flag text.
func (m *MockModerationService) Flag(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flagged[text] = true
}

// Calls returns how many times Moderate was called.
func (m *MockModerationService) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.inputs)
}

// Inputs returns every moderated text in call order.
func (m *MockModerationService) Inputs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.inputs...)
}
