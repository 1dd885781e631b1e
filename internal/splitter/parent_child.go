package splitter

import (
	"github.com/custodia-labs/docucortex/internal/core/domain"
)

// ParentChild produces child chunks for matching, each tagged with the
// parent window it was cut from. Children are derived from every parent
// window independently, so a child never spans two parents.
type ParentChild struct {
	parent *Splitter
	child  *Splitter
}

// ParentConfig returns the parent window configuration.
func ParentConfig() Config {
	return Config{
		ChunkSize:          2000,
		Overlap:            200,
		PreserveSentences:  true,
		PreserveParagraphs: true,
	}
}

// NewParentChild creates a parent/child splitter.
func NewParentChild(parent, child Config) *ParentChild {
	return &ParentChild{
		parent: New(parent),
		child:  New(child),
	}
}

// DefaultParentChild uses 2000/200 parent and 400/100 child windows.
func DefaultParentChild() *ParentChild {
	return NewParentChild(ParentConfig(), DefaultConfig())
}

// Split returns child chunks in document order with sequential positions.
func (p *ParentChild) Split(text string) []domain.Chunk {
	var chunks []domain.Chunk
	position := 0

	for _, parent := range p.parent.Split(text) {
		for _, child := range p.child.Split(parent.Content) {
			chunks = append(chunks, domain.Chunk{
				Position:      position,
				Content:       child.Content,
				ParentContent: parent.Content,
			})
			position++
		}
	}

	return chunks
}
