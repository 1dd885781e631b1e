package domain

// Fixed answers
const (
	// FallbackAnswer is returned when retrieval finds no context.
	FallbackAnswer = "I could not find an answer to this question in the document. Please try rephrasing your question."

	// FilteredAnswer replaces a synthesized answer flagged by moderation.
	FilteredAnswer = "The generated answer was filtered because it may contain unsafe content."

	// ContextDelimiter separates parent excerpts in the synthesis context.
	ContextDelimiter = "\n\n---\n\n"
)

// DefaultTopK is the number of passages retrieved per question.
const DefaultTopK = 5

// ChatRequest asks a question about one document.
type ChatRequest struct {
	DocumentID string `json:"documentId" example:"doc_a1b2c3d4"`
	Question   string `json:"question" example:"What is the main conclusion?"`
}

// Source is a cited parent excerpt.
type Source struct {
	Content string `json:"content"`
}

// ChatResponse is the answer to a ChatRequest.
type ChatResponse struct {
	Answer     string   `json:"answer"`
	Sources    []Source `json:"sources"`
	DocumentID string   `json:"documentId"`
}

// ModerationResult is the verdict of a moderation provider.
type ModerationResult struct {
	Flagged    bool     `json:"flagged"`
	Categories []string `json:"categories,omitempty"`
}
