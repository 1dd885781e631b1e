package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"github.com/custodia-labs/docucortex/internal/core/domain"
	"github.com/custodia-labs/docucortex/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.IndexProvider = (*VectorIndex)(nil)

// VectorIndex implements driven.IndexProvider with pgvector.
// An index is a catalog row plus its chunks, written in one transaction,
// so a visible catalog row always has all of its chunks.
type VectorIndex struct {
	db *DB
}

// NewVectorIndex creates a new VectorIndex
func NewVectorIndex(db *DB) *VectorIndex {
	return &VectorIndex{db: db}
}

// HasIndex reports whether the catalog has a row for name
func (v *VectorIndex) HasIndex(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := v.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM index_catalog WHERE name = $1)`, name,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("lookup index: %w", err)
	}
	return exists, nil
}

// ListIndexNames returns every index name in order
func (v *VectorIndex) ListIndexNames(ctx context.Context) ([]string, error) {
	rows, err := v.db.QueryContext(ctx, `SELECT name FROM index_catalog ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list indexes: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// CreateIndex writes the catalog row and chunks. If another writer created
// the index first, the conflicting insert does nothing and the call succeeds.
func (v *VectorIndex) CreateIndex(ctx context.Context, name, documentID string, chunks []domain.Chunk, embeddings [][]float32) error {
	if len(chunks) != len(embeddings) {
		return fmt.Errorf("%d chunks but %d embeddings", len(chunks), len(embeddings))
	}

	dimensions := 0
	if len(embeddings) > 0 {
		dimensions = len(embeddings[0])
	}

	return v.db.Transaction(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO index_catalog (name, document_id, chunk_count, dimensions)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (name) DO NOTHING
		`, name, documentID, len(chunks), dimensions)
		if err != nil {
			return fmt.Errorf("insert catalog row: %w", err)
		}
		inserted, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if inserted == 0 {
			return nil
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO index_chunks (index_name, position, content, parent_content, embedding)
			VALUES ($1, $2, $3, $4, $5)
		`)
		if err != nil {
			return fmt.Errorf("prepare chunk insert: %w", err)
		}
		defer stmt.Close()

		for i, c := range chunks {
			if len(embeddings[i]) != dimensions {
				return fmt.Errorf("chunk %d has %d dimensions, expected %d", i, len(embeddings[i]), dimensions)
			}
			if _, err := stmt.ExecContext(ctx, name, c.Position, c.Content, c.ParentContent, pgvector.NewVector(embeddings[i])); err != nil {
				return fmt.Errorf("insert chunk %d: %w", c.Position, err)
			}
		}
		return nil
	})
}

// Search orders chunks by cosine distance to query, ties by position.
// Score is cosine similarity.
func (v *VectorIndex) Search(ctx context.Context, name string, query []float32, k int) ([]domain.RetrievedChunk, error) {
	if k <= 0 || len(query) == 0 {
		return nil, nil
	}

	rows, err := v.db.QueryContext(ctx, `
		SELECT position, content, parent_content, 1 - (embedding <=> $2::vector) AS score
		FROM index_chunks
		WHERE index_name = $1
		ORDER BY embedding <=> $2::vector, position
		LIMIT $3
	`, name, pgvector.NewVector(query), k)
	if err != nil {
		return nil, fmt.Errorf("search index %s: %w", name, err)
	}
	defer rows.Close()

	results := make([]domain.RetrievedChunk, 0, k)
	for rows.Next() {
		var r domain.RetrievedChunk
		var score sql.NullFloat64
		if err := rows.Scan(&r.Position, &r.Content, &r.ParentContent, &score); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		// Zero vectors have no defined cosine distance
		r.Score = score.Float64
		results = append(results, r)
	}
	return results, rows.Err()
}
