package domain

import "errors"

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested document has no stored text
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates the input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrHarmfulContent indicates the moderation gate flagged the input
	ErrHarmfulContent = errors.New("content flagged as harmful")

	// ErrUnsupportedType indicates an upload with a content type we cannot extract
	ErrUnsupportedType = errors.New("unsupported content type")

	// ErrEmptyDocument indicates the extracted text is empty
	ErrEmptyDocument = errors.New("document is empty")

	// ErrServiceUnavailable indicates an AI provider could not be reached after retries
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrInternal indicates an unexpected failure
	ErrInternal = errors.New("internal error")
)

// IsBadRequest reports whether err should be surfaced to the caller as a rejected request.
func IsBadRequest(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrHarmfulContent) ||
		errors.Is(err, ErrUnsupportedType) ||
		errors.Is(err, ErrEmptyDocument)
}
