package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/custodia-labs/docucortex/internal/core/domain"
	"github.com/custodia-labs/docucortex/internal/core/ports/driven"
)

// Ensure OpenAIModeration implements ModerationService
var _ driven.ModerationService = (*OpenAIModeration)(nil)

const defaultModerationModel = "omni-moderation-latest"

// OpenAIModeration classifies text with the OpenAI moderation endpoint.
type OpenAIModeration struct {
	client *openai.Client
	model  string
}

// NewOpenAIModeration creates a new OpenAI moderation service
func NewOpenAIModeration(apiKey, model, baseURL string, timeout time.Duration) (*OpenAIModeration, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	if model == "" {
		model = defaultModerationModel
	}
	if timeout <= 0 {
		timeout = defaultProviderTimeout
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	cfg.HTTPClient = &http.Client{Timeout: timeout}

	return &OpenAIModeration{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}, nil
}

// Moderate returns flagged=true when any result is flagged.
// A reply without results is an error, which the safety gate treats as harmful.
func (m *OpenAIModeration) Moderate(ctx context.Context, text string) (*domain.ModerationResult, error) {
	resp, err := m.client.Moderations(ctx, openai.ModerationRequest{
		Input: text,
		Model: m.model,
	})
	if err != nil {
		return nil, fmt.Errorf("create openai moderation: %w", err)
	}
	if len(resp.Results) == 0 {
		return nil, fmt.Errorf("openai moderation returned no results")
	}

	result := &domain.ModerationResult{}
	for _, r := range resp.Results {
		if r.Flagged {
			result.Flagged = true
			result.Categories = append(result.Categories, flaggedCategories(r.Categories)...)
		}
	}
	return result, nil
}

// Model returns the moderation model name
func (m *OpenAIModeration) Model() string {
	return m.model
}

// flaggedCategories lists the true categories by their wire names.
func flaggedCategories(c openai.ResultCategories) []string {
	raw, err := json.Marshal(c)
	if err != nil {
		return nil
	}
	var flags map[string]bool
	if err := json.Unmarshal(raw, &flags); err != nil {
		return nil
	}

	var names []string
	for name, set := range flags {
		if set {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
