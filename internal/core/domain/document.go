package domain

import (
	"strings"
	"time"
)

// Supported upload content types
const (
	ContentTypePDF  = "application/pdf"
	ContentTypeText = "text/plain"
)

// DocumentIDPrefix prefixes every generated document ID.
const DocumentIDPrefix = "doc_"

// Document is the extracted text of an uploaded file.
// Text is immutable once stored.
type Document struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Text        string    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

// Upload is a raw file handed to the document service.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// MediaType returns the content type without parameters, lower-cased.
func (u Upload) MediaType() string {
	return BaseMediaType(u.ContentType)
}

// UploadResult describes a stored document.
type UploadResult struct {
	DocumentID  string `json:"documentId" example:"doc_a1b2c3d4"`
	Filename    string `json:"filename" example:"my_report.pdf"`
	ContentType string `json:"contentType" example:"application/pdf"`
}

// Summary is a whole-document summary.
type Summary struct {
	DocumentID string `json:"documentId" example:"doc_a1b2c3d4"`
	Summary    string `json:"summary"`
}

// BaseMediaType strips parameters such as charset from a MIME type.
func BaseMediaType(contentType string) string {
	mt := strings.ToLower(strings.TrimSpace(contentType))
	if idx := strings.Index(mt, ";"); idx != -1 {
		mt = strings.TrimSpace(mt[:idx])
	}
	return mt
}
