package driven

import (
	"context"
)

// LLMService provides text completion
type LLMService interface {
	// Complete sends a prompt and returns the raw text of the reply
	Complete(ctx context.Context, prompt string) (string, error)

	// Model returns the model name being used
	Model() string

	// Ping checks if the service is available
	Ping(ctx context.Context) error

	// Close releases resources
	Close() error
}
