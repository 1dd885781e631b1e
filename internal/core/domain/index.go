package domain

// Chunk is a child passage used for matching.
// ParentContent holds the enclosing parent window, shown as a citation.
type Chunk struct {
	Position      int    `json:"position"`
	Content       string `json:"content"`
	ParentContent string `json:"parent_content"`
}

// IndexHandle refers to a built semantic index.
type IndexHandle struct {
	Name       string `json:"name"`
	DocumentID string `json:"document_id"`
	// Built is true only for the call that created the index. Callers that
	// waited on the same build get false.
	Built bool `json:"built"`
}

// RetrievedChunk is a chunk returned by a similarity search.
type RetrievedChunk struct {
	Chunk
	Score float64 `json:"score"`
}
