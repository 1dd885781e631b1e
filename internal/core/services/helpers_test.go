package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/custodia-labs/docucortex/internal/core/domain"
	"github.com/custodia-labs/docucortex/internal/core/ports/driven/mocks"
	"github.com/custodia-labs/docucortex/internal/core/ports/driving"
	"github.com/custodia-labs/docucortex/internal/prompts"
)

// pipeline bundles a chat service with the mocks behind it.
type pipeline struct {
	docs       *mocks.MockDocumentStore
	indexes    *mocks.MockIndexProvider
	embeddings *mocks.MockEmbeddingService
	llm        *mocks.MockLLMService
	moderation *mocks.MockModerationService
	builder    *IndexBuilder
	chat       driving.ChatService
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newPipeline(t *testing.T) *pipeline {
	t.Helper()

	store, err := prompts.NewStore()
	if err != nil {
		t.Fatalf("failed to load prompts: %v", err)
	}

	p := &pipeline{
		docs:       mocks.NewMockDocumentStore(),
		indexes:    mocks.NewMockIndexProvider(),
		embeddings: mocks.NewMockEmbeddingService(),
		llm:        mocks.NewMockLLMService("It jumps."),
		moderation: mocks.NewMockModerationService(),
	}
	logger := discardLogger()

	p.builder = NewIndexBuilder(IndexBuilderConfig{
		Documents:  p.docs,
		Indexes:    p.indexes,
		Embeddings: p.embeddings,
		Logger:     logger,
	})
	p.chat = NewChatService(ChatConfig{
		Safety:      NewSafetyGate(p.moderation, logger),
		Indexes:     p.builder,
		Retriever:   NewRetriever(p.indexes, p.embeddings),
		Synthesizer: NewAnswerSynthesizer(p.llm, store),
		Logger:      logger,
	})
	return p
}

// ask is a shorthand for p.chat.Ask with a background context.
func (p *pipeline) ask(documentID, question string) (*domain.ChatResponse, error) {
	return p.chat.Ask(context.Background(), documentID, question)
}
