package mocks

import (
	"context"
	"sync"
)

// MockLLMService is a mock implementation of LLMService for testing
type MockLLMService struct {
	mu      sync.Mutex
	prompts []string

	// Response is returned by Complete unless CompleteFn is set
	Response   string
	Err        error
	CompleteFn func(prompt string) (string, error)
}

// NewMockLLMService creates a MockLLMService that always answers response
func NewMockLLMService(response string) *MockLLMService {
	return &MockLLMService{Response: response}
}

func (m *MockLLMService) Complete(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	fn, resp, err := m.CompleteFn, m.Response, m.Err
	m.mu.Unlock()

	if fn != nil {
		return fn(prompt)
	}
	if err != nil {
		return "", err
	}
	return resp, nil
}

func (m *MockLLMService) Model() string {
	return "mock-llm"
}

func (m *MockLLMService) Ping(ctx context.Context) error {
	return nil
}

func (m *MockLLMService) Close() error {
	return nil
}

// Calls returns how many times Complete was called.
func (m *MockLLMService) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

// LastPrompt returns the most recent prompt, or "".
func (m *MockLLMService) LastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.prompts) == 0 {
		return ""
	}
	return m.prompts[len(m.prompts)-1]
}
