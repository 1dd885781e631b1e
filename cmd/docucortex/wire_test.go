package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docucortex/internal/config"
	"github.com/custodia-labs/docucortex/internal/core/domain"
)

// fakeOpenAI answers the three endpoints the providers call.
func fakeOpenAI(t *testing.T, flagged bool) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/moderations"):
			_ = json.NewEncoder(w).Encode(map[string]any{
				"id":      "modr-1",
				"model":   "omni-moderation-latest",
				"results": []map[string]any{{"flagged": flagged}},
			})
		case strings.HasSuffix(r.URL.Path, "/embeddings"):
			var req struct {
				Input []string `json:"input"`
			}
			_ = json.NewDecoder(r.Body).Decode(&req)
			data := make([]map[string]any, len(req.Input))
			for i := range req.Input {
				data[i] = map[string]any{"index": i, "embedding": []float32{1, float32(i)}}
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"data": data})
		case strings.HasSuffix(r.URL.Path, "/chat/completions"):
			_ = json.NewEncoder(w).Encode(map[string]any{
				"id": "chatcmpl-1",
				"choices": []map[string]any{{
					"index":   0,
					"message": map[string]any{"role": "assistant", "content": "It is about foxes."},
				}},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func testConfig(t *testing.T, baseURL string) *config.Config {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_BASE_URL", baseURL)
	t.Setenv("PROVIDER_MAX_ATTEMPTS", "1")
	t.Setenv("EXTRACT_WORKERS", "2")
	t.Setenv("INDEX_PROVIDER", "memory")
	return config.FromEnv()
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBuildApp_InvalidConfig(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	app, err := buildApp(context.Background(), config.FromEnv(), discardLogger())

	assert.Nil(t, app)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestBuildApp_MemoryBackends(t *testing.T) {
	server := fakeOpenAI(t, false)
	cfg := testConfig(t, server.URL)

	app, err := buildApp(context.Background(), cfg, discardLogger())
	require.NoError(t, err)
	defer func() { _ = app.Close() }()

	assert.Nil(t, app.Tokens)
	assert.NotNil(t, app.Serve)

	uploaded, err := app.Documents.Upload(context.Background(), domain.Upload{
		Filename:    "fox.txt",
		ContentType: "text/plain",
		Data:        []byte("The quick brown fox jumps over the lazy dog."),
	})
	require.NoError(t, err)

	resp, err := app.Chat.Ask(context.Background(), uploaded.DocumentID, "What is it about?")
	require.NoError(t, err)
	assert.Equal(t, "It is about foxes.", resp.Answer)
	assert.Equal(t, uploaded.DocumentID, resp.DocumentID)
	assert.NotEmpty(t, resp.Sources)

	names, err := app.Indexes.ListIndexNames(context.Background())
	require.NoError(t, err)
	assert.Len(t, names, 1)
}

func TestBuildApp_HarmfulQuestion(t *testing.T) {
	server := fakeOpenAI(t, true)
	cfg := testConfig(t, server.URL)

	app, err := buildApp(context.Background(), cfg, discardLogger())
	require.NoError(t, err)
	defer func() { _ = app.Close() }()

	_, err = app.Chat.Ask(context.Background(), "doc_any", "something bad")
	assert.ErrorIs(t, err, domain.ErrHarmfulContent)
}

func TestBuildApp_SQLiteStore(t *testing.T) {
	server := fakeOpenAI(t, false)
	t.Setenv("DOCUMENT_STORE", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "docs.db"))
	cfg := testConfig(t, server.URL)

	app, err := buildApp(context.Background(), cfg, discardLogger())
	require.NoError(t, err)
	defer func() { _ = app.Close() }()

	_, err = app.Documents.Upload(context.Background(), domain.Upload{
		Filename:    "a.txt",
		ContentType: "text/plain",
		Data:        []byte("stored on disk"),
	})
	assert.NoError(t, err)
}

func TestBuildApp_RedisBackends(t *testing.T) {
	mr := miniredis.RunT(t)
	server := fakeOpenAI(t, false)
	t.Setenv("DOCUMENT_STORE", "redis")
	t.Setenv("REDIS_URL", "redis://"+mr.Addr())
	t.Setenv("JWT_SECRET", "test-secret")
	cfg := testConfig(t, server.URL)

	app, err := buildApp(context.Background(), cfg, discardLogger())
	require.NoError(t, err)
	defer func() { _ = app.Close() }()

	assert.NotNil(t, app.Tokens)

	uploaded, err := app.Documents.Upload(context.Background(), domain.Upload{
		Filename:    "a.txt",
		ContentType: "text/plain",
		Data:        []byte("cached in redis"),
	})
	require.NoError(t, err)
	assert.True(t, mr.Exists("docucortex:doc:"+uploaded.DocumentID))
}

func TestBuildApp_RedisTTL_IndexOutlivesDocument(t *testing.T) {
	mr := miniredis.RunT(t)
	server := fakeOpenAI(t, false)
	t.Setenv("DOCUMENT_STORE", "redis")
	t.Setenv("REDIS_URL", "redis://"+mr.Addr())
	t.Setenv("DOCUMENT_TTL", "1m")
	cfg := testConfig(t, server.URL)

	app, err := buildApp(context.Background(), cfg, discardLogger())
	require.NoError(t, err)
	defer func() { _ = app.Close() }()

	ctx := context.Background()
	uploaded, err := app.Documents.Upload(ctx, domain.Upload{
		Filename:    "fox.txt",
		ContentType: "text/plain",
		Data:        []byte("The quick brown fox jumps over the lazy dog."),
	})
	require.NoError(t, err)

	_, err = app.Chat.Ask(ctx, uploaded.DocumentID, "What is it about?")
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)
	require.False(t, mr.Exists("docucortex:doc:"+uploaded.DocumentID))

	resp, err := app.Chat.Ask(ctx, uploaded.DocumentID, "What is it about?")
	require.NoError(t, err)
	assert.Equal(t, "It is about foxes.", resp.Answer)
	assert.NotEmpty(t, resp.Sources)

	_, err = app.Analysis.Summarize(ctx, uploaded.DocumentID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestChunkPipeline(t *testing.T) {
	cfg := &config.Config{}
	assert.Nil(t, chunkPipeline(cfg), "children are embedded as split by default")

	cfg.ChunkCleanup = true
	assert.NotNil(t, chunkPipeline(cfg))
}

func TestBuildApp_UnreachableRedis(t *testing.T) {
	server := fakeOpenAI(t, false)
	t.Setenv("REDIS_URL", "redis://127.0.0.1:1")
	cfg := testConfig(t, server.URL)

	app, err := buildApp(context.Background(), cfg, discardLogger())

	assert.Nil(t, app)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connect to redis")
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		level    string
		format   string
		expected slog.Level
	}{
		{"debug", "text", slog.LevelDebug},
		{"INFO", "json", slog.LevelInfo},
		{"warning", "text", slog.LevelWarn},
		{"error", "json", slog.LevelError},
		{"bogus", "text", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logger := newLogger(tt.level, tt.format)
			ctx := context.Background()
			assert.True(t, logger.Enabled(ctx, tt.expected))
			if tt.expected > slog.LevelDebug {
				assert.False(t, logger.Enabled(ctx, tt.expected-1))
			}
		})
	}
}
