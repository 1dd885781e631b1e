package driven

import (
	"context"

	"github.com/custodia-labs/docucortex/internal/core/domain"
)

// ModerationService classifies text against a content policy
type ModerationService interface {
	// Moderate returns the provider verdict for text
	Moderate(ctx context.Context, text string) (*domain.ModerationResult, error)

	// Model returns the moderation model name
	Model() string
}
