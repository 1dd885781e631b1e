package driven

import (
	"context"
)

// TextExtractor turns the raw bytes of an uploaded file into plain text.
type TextExtractor interface {
	// Extract returns the text content of data.
	// Malformed input yields an error wrapping domain.ErrInvalidInput.
	Extract(ctx context.Context, data []byte) (string, error)

	// SupportedTypes returns MIME types this extractor handles.
	SupportedTypes() []string

	// Priority returns the extractor priority (higher = more specific).
	Priority() int
}

// ExtractorRegistry manages text extractors.
// When multiple extractors match a MIME type, the highest priority one is used.
type ExtractorRegistry interface {
	// Get retrieves the best-matching extractor for a MIME type.
	// Returns nil if no extractor is registered for the type.
	Get(mimeType string) TextExtractor

	// Register registers an extractor.
	Register(extractor TextExtractor)

	// List returns all registered MIME types.
	List() []string
}
