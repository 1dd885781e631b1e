package ai

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/custodia-labs/docucortex/internal/core/ports/driven"
)

// Ensure OpenAILLM implements LLMService
var _ driven.LLMService = (*OpenAILLM)(nil)

const defaultLLMModel = "gpt-4o"

// zeroTemperature is the smallest temperature the client will send.
// A literal 0 is dropped by omitempty and the server default applies.
const zeroTemperature = math.SmallestNonzeroFloat32

// OpenAILLM completes prompts with the chat completions API at temperature 0.
type OpenAILLM struct {
	client *openai.Client
	http   *http.Client
	model  string
}

// NewOpenAILLM creates a new OpenAI chat completion service
func NewOpenAILLM(apiKey, model, baseURL string, timeout time.Duration) (*OpenAILLM, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	if model == "" {
		model = defaultLLMModel
	}
	if timeout <= 0 {
		timeout = defaultProviderTimeout
	}

	httpClient := &http.Client{Timeout: timeout}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	cfg.HTTPClient = httpClient

	return &OpenAILLM{
		client: openai.NewClientWithConfig(cfg),
		http:   httpClient,
		model:  model,
	}, nil
}

// Complete sends prompt as a single user message and returns the reply text.
func (l *OpenAILLM) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := l.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       l.model,
		Temperature: zeroTemperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("create openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// Model returns the model name being used
func (l *OpenAILLM) Model() string {
	return l.model
}

// Ping checks the configured model is reachable
func (l *OpenAILLM) Ping(ctx context.Context) error {
	if _, err := l.client.GetModel(ctx, l.model); err != nil {
		return fmt.Errorf("get openai model %s: %w", l.model, err)
	}
	return nil
}

// Close releases idle connections
func (l *OpenAILLM) Close() error {
	l.http.CloseIdleConnections()
	return nil
}
