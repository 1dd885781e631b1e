package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/custodia-labs/docucortex/internal/core/domain"
	"github.com/custodia-labs/docucortex/internal/core/ports/driving"
	"github.com/custodia-labs/docucortex/internal/metrics"
)

// Ensure chatService implements the interface
var _ driving.ChatService = (*chatService)(nil)

// ChatConfig wires the stages of the answer pipeline.
type ChatConfig struct {
	Safety      *SafetyGate
	Indexes     *IndexBuilder
	Retriever   *Retriever
	Synthesizer *AnswerSynthesizer

	TopK    int // default domain.DefaultTopK
	Metrics *metrics.Recorder
	Logger  *slog.Logger
}

// chatService answers questions about a single document.
type chatService struct {
	safety      *SafetyGate
	indexes     *IndexBuilder
	retriever   *Retriever
	synthesizer *AnswerSynthesizer
	topK        int
	metrics     *metrics.Recorder
	logger      *slog.Logger
}

// NewChatService creates a new ChatService
func NewChatService(cfg ChatConfig) driving.ChatService {
	topK := cfg.TopK
	if topK <= 0 {
		topK = domain.DefaultTopK
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &chatService{
		safety:      cfg.Safety,
		indexes:     cfg.Indexes,
		retriever:   cfg.Retriever,
		synthesizer: cfg.Synthesizer,
		topK:        topK,
		metrics:     cfg.Metrics,
		logger:      logger,
	}
}

// Ask runs moderation, index lookup, retrieval, synthesis and answer moderation.
func (s *chatService) Ask(ctx context.Context, documentID, question string) (*domain.ChatResponse, error) {
	start := time.Now()
	logger := s.logger.With("document_id", documentID)

	resp, outcome, err := s.ask(ctx, documentID, question)

	if err != nil {
		if errors.Is(err, domain.ErrHarmfulContent) {
			outcome = metrics.OutcomeRejected
		} else {
			outcome = metrics.OutcomeError
			logger.Error("chat failed", "error", err)
		}
	}
	s.metrics.ChatCompleted(outcome, time.Since(start))
	logger.Debug("chat completed", "outcome", outcome, "duration_ms", time.Since(start).Milliseconds())

	if err != nil {
		return nil, classify("ask", err)
	}
	return resp, nil
}

func (s *chatService) ask(ctx context.Context, documentID, question string) (*domain.ChatResponse, string, error) {
	if strings.TrimSpace(documentID) == "" {
		return nil, "", fmt.Errorf("%w: document id is required", domain.ErrInvalidInput)
	}

	if s.safety.IsHarmful(ctx, question) {
		s.metrics.Flagged("question")
		return nil, "", domain.ErrHarmfulContent
	}

	index, err := s.indexes.GetOrBuild(ctx, documentID)
	if err != nil {
		return nil, "", err
	}

	chunks, err := s.retriever.Retrieve(ctx, index, question, s.topK)
	if err != nil {
		return nil, "", err
	}

	if len(chunks) == 0 {
		return &domain.ChatResponse{
			Answer:     domain.FallbackAnswer,
			Sources:    []domain.Source{},
			DocumentID: documentID,
		}, metrics.OutcomeNoContext, nil
	}

	parents := uniqueParents(chunks)

	answer, err := s.synthesizer.Synthesize(ctx, joinSources(parents), question)
	if err != nil {
		return nil, "", err
	}

	outcome := metrics.OutcomeAnswered
	if s.safety.IsHarmful(ctx, answer) {
		s.metrics.Flagged("answer")
		answer = domain.FilteredAnswer
		outcome = metrics.OutcomeFiltered
	}

	sources := make([]domain.Source, 0, len(parents))
	for _, p := range parents {
		sources = append(sources, domain.Source{Content: p})
	}

	return &domain.ChatResponse{
		Answer:     answer,
		Sources:    sources,
		DocumentID: documentID,
	}, outcome, nil
}

// uniqueParents returns the distinct parent contents of chunks
// in order of first appearance.
func uniqueParents(chunks []domain.RetrievedChunk) []string {
	seen := make(map[string]struct{}, len(chunks))
	parents := make([]string, 0, len(chunks))
	for _, c := range chunks {
		if _, ok := seen[c.ParentContent]; ok {
			continue
		}
		seen[c.ParentContent] = struct{}{}
		parents = append(parents, c.ParentContent)
	}
	return parents
}

func joinSources(parents []string) string {
	return strings.Join(parents, domain.ContextDelimiter)
}
