package cli

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/custodia-labs/docucortex/internal/core/domain"
)

type fakeChat struct {
	askFn func(ctx context.Context, documentID, question string) (*domain.ChatResponse, error)
}

func (f *fakeChat) Ask(ctx context.Context, documentID, question string) (*domain.ChatResponse, error) {
	return f.askFn(ctx, documentID, question)
}

type fakeDocuments struct {
	uploads []domain.Upload
	err     error
}

func (f *fakeDocuments) Upload(_ context.Context, upload domain.Upload) (*domain.UploadResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.uploads = append(f.uploads, upload)
	return &domain.UploadResult{
		DocumentID:  "doc-1",
		Filename:    upload.Filename,
		ContentType: upload.ContentType,
	}, nil
}

type fakeAnalysis struct {
	summary string
	err     error
}

func (f *fakeAnalysis) Summarize(_ context.Context, documentID string) (*domain.Summary, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Summary{DocumentID: documentID, Summary: f.summary}, nil
}

type fakeIndexes struct {
	names []string
}

func (f *fakeIndexes) HasIndex(context.Context, string) (bool, error) { return false, nil }

func (f *fakeIndexes) ListIndexNames(context.Context) ([]string, error) { return f.names, nil }

func (f *fakeIndexes) CreateIndex(context.Context, string, string, []domain.Chunk, [][]float32) error {
	return nil
}

func (f *fakeIndexes) Search(context.Context, string, []float32, int) ([]domain.RetrievedChunk, error) {
	return nil, nil
}

type fakeTokens struct {
	claims *domain.TokenClaims
}

func (f *fakeTokens) GenerateToken(claims *domain.TokenClaims) (string, error) {
	f.claims = claims
	return "signed-token", nil
}

func (f *fakeTokens) ParseToken(string) (*domain.TokenClaims, error) {
	return f.claims, nil
}

// setupTestApp installs a by-default healthy App and returns it with a cleanup func.
func setupTestApp(t *testing.T) *App {
	t.Helper()

	a := &App{
		Chat: &fakeChat{askFn: func(_ context.Context, documentID, _ string) (*domain.ChatResponse, error) {
			return &domain.ChatResponse{
				Answer:     "The answer.",
				DocumentID: documentID,
				Sources:    []domain.Source{{Content: "first passage"}, {Content: "second passage"}},
			}, nil
		}},
		Documents: &fakeDocuments{},
		Analysis:  &fakeAnalysis{summary: "A short summary."},
		Indexes:   &fakeIndexes{},
		Tokens:    &fakeTokens{},
	}

	resetApp()
	bootstrap = func(context.Context) (*App, error) { return a, nil }
	t.Cleanup(func() {
		resetApp()
		bootstrap = nil
		askDocument, askQuestion, askJSON = "", "", false
		uploadContentType, uploadJSON, summarizeJSON = "", false, false
		tokenSubject, tokenTTL = "", 24*time.Hour
		rootCmd.SetArgs(nil)
	})
	return a
}

// run executes the root command with args and returns the combined output.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}
