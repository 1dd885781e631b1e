// Package postprocessors cleans split chunks before they are embedded.
package postprocessors

import (
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/custodia-labs/docucortex/internal/core/domain"
	"github.com/custodia-labs/docucortex/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.PostProcessorPipeline = (*Pipeline)(nil)

// Pipeline implements PostProcessorPipeline.
type Pipeline struct {
	mu         sync.Mutex
	processors []driven.PostProcessor
	sorted     bool
}

// NewPipeline creates an empty pipeline.
func NewPipeline() *Pipeline {
	return &Pipeline{}
}

// DefaultPipeline normalizes whitespace, then drops repeated chunks.
func DefaultPipeline() *Pipeline {
	p := NewPipeline()
	p.Add(NewWhitespaceNormalizer())
	p.Add(NewDeduplicator(DefaultDeduplicatorConfig()))
	return p
}

// Add adds a processor. Processors run sorted by Order().
func (p *Pipeline) Add(processor driven.PostProcessor) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.processors = append(p.processors, processor)
	p.sorted = false
}

// snapshot returns the processors in execution order.
func (p *Pipeline) snapshot() []driven.PostProcessor {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.sorted {
		sort.SliceStable(p.processors, func(i, j int) bool {
			return p.processors[i].Order() < p.processors[j].Order()
		})
		p.sorted = true
	}

	out := make([]driven.PostProcessor, len(p.processors))
	copy(out, p.processors)
	return out
}

// Process applies every processor, then renumbers positions from zero
// so that position order stays document order.
func (p *Pipeline) Process(chunks []domain.Chunk) []domain.Chunk {
	for _, proc := range p.snapshot() {
		chunks = proc.Process(chunks)
	}

	for i := range chunks {
		chunks[i].Position = i
	}
	return chunks
}

// List returns processor names in execution order.
func (p *Pipeline) List() []string {
	processors := p.snapshot()
	names := make([]string, len(processors))
	for i, proc := range processors {
		names[i] = proc.Name()
	}
	return names
}

// DeduplicatorConfig configures the deduplicator.
type DeduplicatorConfig struct {
	// MinDuplicateLength is the minimum chunk length, in characters, checked for duplicates.
	// Shorter chunks such as headings are always kept.
	MinDuplicateLength int
}

// DefaultDeduplicatorConfig returns a 50 character minimum.
func DefaultDeduplicatorConfig() DeduplicatorConfig {
	return DeduplicatorConfig{MinDuplicateLength: 50}
}

// Deduplicator drops chunks whose text repeats an earlier chunk,
// ignoring case and surrounding whitespace. Overlapping parent windows
// produce such repeats.
type Deduplicator struct {
	config DeduplicatorConfig
}

var _ driven.PostProcessor = (*Deduplicator)(nil)

// NewDeduplicator creates a new deduplicator with the given config.
func NewDeduplicator(config DeduplicatorConfig) *Deduplicator {
	return &Deduplicator{config: config}
}

// Process keeps the first occurrence of each chunk text.
func (d *Deduplicator) Process(chunks []domain.Chunk) []domain.Chunk {
	if len(chunks) <= 1 {
		return chunks
	}

	seen := make(map[string]struct{}, len(chunks))
	result := make([]domain.Chunk, 0, len(chunks))

	for _, chunk := range chunks {
		if utf8.RuneCountInString(chunk.Content) < d.config.MinDuplicateLength {
			result = append(result, chunk)
			continue
		}

		key := strings.ToLower(strings.TrimSpace(chunk.Content))
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, chunk)
	}

	return result
}

// Name returns the processor name.
func (d *Deduplicator) Name() string {
	return "deduplicator"
}

// Order returns 10, after whitespace normalization.
func (d *Deduplicator) Order() int {
	return 10
}

// WhitespaceNormalizer collapses runs of spaces and blank lines in the
// matched text of each chunk. Parent text is left as extracted since it
// is returned to the user. Chunks left empty are dropped.
type WhitespaceNormalizer struct{}

var _ driven.PostProcessor = (*WhitespaceNormalizer)(nil)

// NewWhitespaceNormalizer creates a new whitespace normalizer.
func NewWhitespaceNormalizer() *WhitespaceNormalizer {
	return &WhitespaceNormalizer{}
}

// Process normalizes whitespace in chunks.
func (w *WhitespaceNormalizer) Process(chunks []domain.Chunk) []domain.Chunk {
	result := make([]domain.Chunk, 0, len(chunks))

	for _, chunk := range chunks {
		content := normalizeWhitespace(chunk.Content)
		if content == "" {
			continue
		}
		chunk.Content = content
		result = append(result, chunk)
	}

	return result
}

// normalizeWhitespace unifies line endings, collapses spaces and tabs
// within lines and keeps at most one blank line between paragraphs.
func normalizeWhitespace(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	var b strings.Builder
	blank := 0
	for _, line := range strings.Split(s, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			blank++
			continue
		}
		if b.Len() > 0 {
			if blank > 0 {
				b.WriteString("\n\n")
			} else {
				b.WriteByte('\n')
			}
		}
		b.WriteString(line)
		blank = 0
	}
	return b.String()
}

// Name returns the processor name.
func (w *WhitespaceNormalizer) Name() string {
	return "whitespace-normalizer"
}

// Order returns 5.
func (w *WhitespaceNormalizer) Order() int {
	return 5
}
