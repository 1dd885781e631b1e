package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/custodia-labs/docucortex/internal/core/domain"
	"github.com/custodia-labs/docucortex/internal/core/ports/driven"
	"github.com/custodia-labs/docucortex/internal/core/ports/driving"
	"github.com/custodia-labs/docucortex/internal/prompts"
)

// Ensure analysisService implements the interface
var _ driving.AnalysisService = (*analysisService)(nil)

// analysisService summarizes whole documents with a single LLM call.
type analysisService struct {
	documents driven.DocumentStore
	llm       driven.LLMService
	prompts   driven.PromptStore
	logger    *slog.Logger
}

// NewAnalysisService creates a new AnalysisService
func NewAnalysisService(documents driven.DocumentStore, llm driven.LLMService, promptStore driven.PromptStore, logger *slog.Logger) driving.AnalysisService {
	if logger == nil {
		logger = slog.Default()
	}
	return &analysisService{
		documents: documents,
		llm:       llm,
		prompts:   promptStore,
		logger:    logger,
	}
}

// Summarize returns an LLM summary of the stored document text.
func (s *analysisService) Summarize(ctx context.Context, documentID string) (*domain.Summary, error) {
	if strings.TrimSpace(documentID) == "" {
		return nil, classify("summarize", fmt.Errorf("%w: document id is required", domain.ErrInvalidInput))
	}

	text, err := s.documents.GetText(ctx, documentID)
	if err != nil {
		return nil, classify("summarize", fmt.Errorf("document %s: %w", documentID, err))
	}

	tmpl, err := s.prompts.Get(driven.PromptSummary)
	if err != nil {
		return nil, classify("summarize", fmt.Errorf("load summary prompt: %w", err))
	}

	summary, err := s.llm.Complete(ctx, prompts.Render(tmpl, map[string]string{"document_text": text}))
	if err != nil {
		s.logger.Error("summary failed", "document_id", documentID, "error", err)
		return nil, classify("summarize", fmt.Errorf("complete summary: %w", err))
	}

	return &domain.Summary{DocumentID: documentID, Summary: summary}, nil
}
