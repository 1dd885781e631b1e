package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/custodia-labs/docucortex/internal/core/domain"
	"github.com/custodia-labs/docucortex/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.DocumentStore = (*DocumentStore)(nil)

// uniqueViolation is the PostgreSQL error code for duplicate keys
const uniqueViolation = "23505"

// DocumentStore implements driven.DocumentStore using PostgreSQL
type DocumentStore struct {
	db *DB
}

// NewDocumentStore creates a new DocumentStore
func NewDocumentStore(db *DB) *DocumentStore {
	return &DocumentStore{db: db}
}

// Save inserts a document. Documents are immutable, so an existing ID is an error.
func (s *DocumentStore) Save(ctx context.Context, doc *domain.Document) error {
	query := `
		INSERT INTO documents (id, filename, content_type, text, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := s.db.ExecContext(ctx, query,
		doc.ID,
		doc.Filename,
		doc.ContentType,
		doc.Text,
		doc.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("document %s already exists", doc.ID)
		}
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

// GetText returns the text of a document
func (s *DocumentStore) GetText(ctx context.Context, id string) (string, error) {
	var text string
	err := s.db.QueryRowContext(ctx, `SELECT text FROM documents WHERE id = $1`, id).Scan(&text)
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("select document: %w", err)
	}
	return text, nil
}

// Ping checks if the database is reachable
func (s *DocumentStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
