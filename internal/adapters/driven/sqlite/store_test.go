package sqlite

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docucortex/internal/core/domain"
)

// setupTestStore creates a SQLite store in a temporary directory.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(filepath.Join(t.TempDir(), "data", "docucortex.db"))
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, store.Close()) })

	return store
}

func testDocument(id, text string) *domain.Document {
	return &domain.Document{
		ID:          id,
		Filename:    "notes.txt",
		ContentType: domain.ContentTypeText,
		Text:        text,
		CreatedAt:   time.Now(),
	}
}

func TestStore_SaveAndGetText(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testDocument("doc_1", "Paris is the capital of France.")))

	text, err := store.GetText(ctx, "doc_1")
	require.NoError(t, err)
	assert.Equal(t, "Paris is the capital of France.", text)
}

func TestStore_Save_Duplicate(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testDocument("doc_1", "original")))
	assert.Error(t, store.Save(ctx, testDocument("doc_1", "replaced")))

	text, err := store.GetText(ctx, "doc_1")
	require.NoError(t, err)
	assert.Equal(t, "original", text)
}

func TestStore_GetText_NotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.GetText(context.Background(), "doc_missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_PreservesUnicode(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	text := "Zürich 東京 ✓\n\nsecond paragraph"
	require.NoError(t, store.Save(ctx, testDocument("doc_u", text)))

	got, err := store.GetText(ctx, "doc_u")
	require.NoError(t, err)
	assert.Equal(t, text, got)
}

func TestStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docucortex.db")
	ctx := context.Background()

	store, err := NewStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, testDocument("doc_1", "kept")))
	require.NoError(t, store.Close())

	// Migrations already applied must not run again
	store, err = NewStore(path)
	require.NoError(t, err)
	defer store.Close()

	text, err := store.GetText(ctx, "doc_1")
	require.NoError(t, err)
	assert.Equal(t, "kept", text)
	assert.Equal(t, path, store.Path())
}

func TestStore_ConcurrentSave(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- store.Save(ctx, testDocument("doc_same", "text"))
		}()
	}
	wg.Wait()
	close(errs)

	saved := 0
	for err := range errs {
		if err == nil {
			saved++
		}
	}
	assert.Equal(t, 1, saved)
}

func TestStore_Ping(t *testing.T) {
	store := setupTestStore(t)
	assert.NoError(t, store.Ping(context.Background()))
}
