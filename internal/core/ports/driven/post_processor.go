package driven

import "github.com/custodia-labs/docucortex/internal/core/domain"

// PostProcessor transforms the chunks of a document before they are embedded.
type PostProcessor interface {
	// Process returns the transformed chunks. It may drop chunks.
	Process(chunks []domain.Chunk) []domain.Chunk

	// Name identifies the processor in logs.
	Name() string

	// Order sorts processors within a pipeline, lowest first.
	Order() int
}

// PostProcessorPipeline runs post-processors in order.
type PostProcessorPipeline interface {
	// Process applies every processor and renumbers the surviving
	// chunks with sequential positions.
	Process(chunks []domain.Chunk) []domain.Chunk

	// List returns the processor names in execution order.
	List() []string
}
