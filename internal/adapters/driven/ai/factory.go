package ai

import (
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/docucortex/internal/core/ports/driven"
)

// ErrInvalidProvider indicates an unknown AI provider name
var ErrInvalidProvider = errors.New("invalid AI provider")

// ProviderOpenAI is the only provider wired today. OPENAI_BASE_URL can
// point it at any compatible server.
const ProviderOpenAI = "openai"

// Settings configures the AI providers.
type Settings struct {
	Provider        string
	APIKey          string
	BaseURL         string
	LLMModel        string
	EmbeddingModel  string
	ModerationModel string
	Timeout         time.Duration
	Policy          Policy
}

// Providers bundles the services the pipeline calls.
type Providers struct {
	Embedding  driven.EmbeddingService
	LLM        driven.LLMService
	Moderation driven.ModerationService
}

// Close releases provider resources.
func (p *Providers) Close() error {
	return errors.Join(p.Embedding.Close(), p.LLM.Close())
}

// Factory creates AI services based on configuration
type Factory struct{}

// NewFactory creates a new AI service factory
func NewFactory() *Factory {
	return &Factory{}
}

// CreateEmbeddingService creates a resilient embedding service from settings
func (f *Factory) CreateEmbeddingService(s Settings) (driven.EmbeddingService, error) {
	switch provider(s) {
	case ProviderOpenAI:
		svc, err := NewOpenAIEmbedding(s.APIKey, s.EmbeddingModel, s.BaseURL, s.Timeout)
		if err != nil {
			return nil, err
		}
		return NewResilientEmbedding(svc, s.Policy), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidProvider, s.Provider)
	}
}

// CreateLLMService creates a resilient LLM service from settings
func (f *Factory) CreateLLMService(s Settings) (driven.LLMService, error) {
	switch provider(s) {
	case ProviderOpenAI:
		svc, err := NewOpenAILLM(s.APIKey, s.LLMModel, s.BaseURL, s.Timeout)
		if err != nil {
			return nil, err
		}
		return NewResilientLLM(svc, s.Policy), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidProvider, s.Provider)
	}
}

// CreateModerationService creates a resilient moderation service from settings
func (f *Factory) CreateModerationService(s Settings) (driven.ModerationService, error) {
	switch provider(s) {
	case ProviderOpenAI:
		svc, err := NewOpenAIModeration(s.APIKey, s.ModerationModel, s.BaseURL, s.Timeout)
		if err != nil {
			return nil, err
		}
		return NewResilientModeration(svc, s.Policy), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidProvider, s.Provider)
	}
}

// CreateProviders creates all three services.
func (f *Factory) CreateProviders(s Settings) (*Providers, error) {
	embedding, err := f.CreateEmbeddingService(s)
	if err != nil {
		return nil, fmt.Errorf("embedding: %w", err)
	}
	llm, err := f.CreateLLMService(s)
	if err != nil {
		return nil, fmt.Errorf("llm: %w", err)
	}
	moderation, err := f.CreateModerationService(s)
	if err != nil {
		return nil, fmt.Errorf("moderation: %w", err)
	}
	return &Providers{Embedding: embedding, LLM: llm, Moderation: moderation}, nil
}

func provider(s Settings) string {
	if s.Provider == "" {
		return ProviderOpenAI
	}
	return s.Provider
}
