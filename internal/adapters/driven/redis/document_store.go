package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/docucortex/internal/core/domain"
	"github.com/custodia-labs/docucortex/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.DocumentStore = (*DocumentStore)(nil)

const documentPrefix = keyPrefix + "doc:"

// storedDocument is the JSON value kept per document.
type storedDocument struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Text        string    `json:"text"`
	CreatedAt   time.Time `json:"created_at"`
}

// DocumentStore implements driven.DocumentStore with one Redis key per document.
// With a TTL, expired documents can no longer be summarized or indexed for
// the first time. An index already built from them stays queryable.
type DocumentStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewDocumentStore creates a Redis-backed DocumentStore. A zero ttl keeps documents forever.
func NewDocumentStore(client redis.Cmdable, ttl time.Duration) *DocumentStore {
	return &DocumentStore{client: client, ttl: ttl}
}

// Save stores doc. Documents are immutable, so an existing ID is an error.
func (s *DocumentStore) Save(ctx context.Context, doc *domain.Document) error {
	data, err := json.Marshal(storedDocument{
		ID:          doc.ID,
		Filename:    doc.Filename,
		ContentType: doc.ContentType,
		Text:        doc.Text,
		CreatedAt:   doc.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	ok, err := s.client.SetNX(ctx, documentPrefix+doc.ID, data, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}
	if !ok {
		return fmt.Errorf("document %s already exists", doc.ID)
	}
	return nil
}

// GetText returns the text of a document
func (s *DocumentStore) GetText(ctx context.Context, id string) (string, error) {
	data, err := s.client.Get(ctx, documentPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get document: %w", err)
	}

	var doc storedDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return "", fmt.Errorf("failed to unmarshal document: %w", err)
	}
	return doc.Text, nil
}

// Ping checks if the Redis backend is healthy.
func (s *DocumentStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
