package driven

// Prompt names
const (
	PromptAnswer  = "answer"
	PromptSummary = "summary"
)

// PromptStore resolves named prompt templates.
// Templates use {placeholder} markers.
type PromptStore interface {
	// Get returns the template registered under name.
	Get(name string) (string, error)
}
