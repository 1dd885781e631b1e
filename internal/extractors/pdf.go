package extractors

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/docucortex/internal/core/domain"
	"github.com/custodia-labs/docucortex/internal/core/ports/driven"
)

var _ driven.TextExtractor = (*PDFExtractor)(nil)

// PDFExtractor extracts the text layer of PDF files.
// Pages are concatenated in order; scanned pages without text contribute nothing.
type PDFExtractor struct{}

// Extract reads every page's plain text. The parser can panic on corrupt
// input, so panics are reported as invalid input.
func (e *PDFExtractor) Extract(ctx context.Context, data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("%w: unreadable PDF: %v", domain.ErrInvalidInput, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: unreadable PDF: %v", domain.ErrInvalidInput, err)
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("%w: page %d: %v", domain.ErrInvalidInput, i, err)
		}
		sb.WriteString(pageText)
	}

	return sb.String(), nil
}

func (e *PDFExtractor) SupportedTypes() []string {
	return []string{domain.ContentTypePDF}
}

func (e *PDFExtractor) Priority() int {
	return 50
}
