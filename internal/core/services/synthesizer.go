package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/docucortex/internal/core/ports/driven"
	"github.com/custodia-labs/docucortex/internal/prompts"
)

// AnswerSynthesizer fills the answer prompt and asks the LLM.
type AnswerSynthesizer struct {
	llm     driven.LLMService
	prompts driven.PromptStore
}

// NewAnswerSynthesizer creates a new AnswerSynthesizer
func NewAnswerSynthesizer(llm driven.LLMService, promptStore driven.PromptStore) *AnswerSynthesizer {
	return &AnswerSynthesizer{
		llm:     llm,
		prompts: promptStore,
	}
}

// Synthesize returns the raw LLM answer for question given contextText.
func (s *AnswerSynthesizer) Synthesize(ctx context.Context, contextText, question string) (string, error) {
	tmpl, err := s.prompts.Get(driven.PromptAnswer)
	if err != nil {
		return "", fmt.Errorf("load answer prompt: %w", err)
	}

	prompt := prompts.Render(tmpl, map[string]string{
		"context":  contextText,
		"question": question,
	})

	answer, err := s.llm.Complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("complete answer: %w", err)
	}
	return answer, nil
}
