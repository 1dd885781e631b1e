// Package extractors turns uploaded files into plain text.
package extractors

import (
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/docucortex/internal/core/domain"
	"github.com/custodia-labs/docucortex/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.ExtractorRegistry = (*Registry)(nil)

// Registry implements ExtractorRegistry with priority-based selection.
// When multiple extractors match a MIME type, the highest priority one is used.
type Registry struct {
	mu         sync.RWMutex
	extractors []driven.TextExtractor
}

// NewRegistry creates a new extractor registry.
func NewRegistry() *Registry {
	return &Registry{
		extractors: make([]driven.TextExtractor, 0),
	}
}

// Register registers an extractor.
func (r *Registry) Register(extractor driven.TextExtractor) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.extractors = append(r.extractors, extractor)
}

// Get retrieves the best-matching extractor for a MIME type.
// Returns nil if no extractor is registered for the type.
func (r *Registry) Get(mimeType string) driven.TextExtractor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matches []driven.TextExtractor
	for _, e := range r.extractors {
		if matchesMIMEType(e.SupportedTypes(), mimeType) {
			matches = append(matches, e)
		}
	}
	if len(matches) == 0 {
		return nil
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Priority() > matches[j].Priority()
	})
	return matches[0]
}

// List returns all registered MIME types.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	typeSet := make(map[string]struct{})
	for _, e := range r.extractors {
		for _, t := range e.SupportedTypes() {
			typeSet[t] = struct{}{}
		}
	}

	types := make([]string, 0, len(typeSet))
	for t := range typeSet {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// matchesMIMEType checks if any of the supported types match the given MIME type.
// Parameters such as charset are ignored. Supports "type/*" wildcards.
func matchesMIMEType(supportedTypes []string, mimeType string) bool {
	mimeType = domain.BaseMediaType(mimeType)
	if mimeType == "" {
		return false
	}

	for _, supported := range supportedTypes {
		supported = strings.ToLower(strings.TrimSpace(supported))

		if supported == mimeType {
			return true
		}

		if strings.HasSuffix(supported, "/*") {
			prefix := supported[:len(supported)-1] // "text/"
			if strings.HasPrefix(mimeType, prefix) {
				return true
			}
		}
	}

	return false
}

// DefaultRegistry creates a registry with the PDF and plain-text extractors.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&PlainTextExtractor{})
	r.Register(&PDFExtractor{})
	return r
}
