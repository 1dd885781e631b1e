package services

import (
	"context"
	"log/slog"

	"github.com/custodia-labs/docucortex/internal/core/ports/driven"
)

// SafetyGate classifies text through a moderation provider.
// It fails closed: when the provider cannot answer, the text counts as harmful.
type SafetyGate struct {
	moderation driven.ModerationService
	logger     *slog.Logger
}

// NewSafetyGate creates a new SafetyGate
func NewSafetyGate(moderation driven.ModerationService, logger *slog.Logger) *SafetyGate {
	if logger == nil {
		logger = slog.Default()
	}
	return &SafetyGate{
		moderation: moderation,
		logger:     logger,
	}
}

// IsHarmful reports whether text should be blocked. It never returns an error.
func (g *SafetyGate) IsHarmful(ctx context.Context, text string) bool {
	result, err := g.moderation.Moderate(ctx, text)
	if err != nil {
		g.logger.Warn("moderation failed, treating content as harmful", "error", err)
		return true
	}
	if result == nil {
		g.logger.Warn("moderation returned no verdict, treating content as harmful")
		return true
	}
	if result.Flagged {
		g.logger.Info("content flagged by moderation", "categories", result.Categories)
	}
	return result.Flagged
}
