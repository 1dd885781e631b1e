package extractors

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/docucortex/internal/core/domain"
	"github.com/custodia-labs/docucortex/internal/core/ports/driven"
)

var _ driven.TextExtractor = (*PlainTextExtractor)(nil)

// PlainTextExtractor decodes UTF-8 text files.
type PlainTextExtractor struct{}

// Extract validates UTF-8 and normalises line endings.
func (e *PlainTextExtractor) Extract(ctx context.Context, data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: text file is not valid UTF-8", domain.ErrInvalidInput)
	}

	content := strings.TrimPrefix(string(data), "\ufeff")
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	return content, nil
}

func (e *PlainTextExtractor) SupportedTypes() []string {
	return []string{domain.ContentTypeText}
}

func (e *PlainTextExtractor) Priority() int {
	return 10
}
