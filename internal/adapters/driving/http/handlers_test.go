package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	_ "github.com/custodia-labs/docucortex/docs"
	"github.com/custodia-labs/docucortex/internal/core/domain"
)

// Mock services for testing

type mockChatService struct {
	askFn func(ctx context.Context, documentID, question string) (*domain.ChatResponse, error)
}

func (m *mockChatService) Ask(ctx context.Context, documentID, question string) (*domain.ChatResponse, error) {
	if m.askFn != nil {
		return m.askFn(ctx, documentID, question)
	}
	return nil, errors.New("not implemented")
}

type mockDocumentService struct {
	uploadFn func(ctx context.Context, upload domain.Upload) (*domain.UploadResult, error)
}

func (m *mockDocumentService) Upload(ctx context.Context, upload domain.Upload) (*domain.UploadResult, error) {
	if m.uploadFn != nil {
		return m.uploadFn(ctx, upload)
	}
	return nil, errors.New("not implemented")
}

type mockAnalysisService struct {
	summarizeFn func(ctx context.Context, documentID string) (*domain.Summary, error)
}

func (m *mockAnalysisService) Summarize(ctx context.Context, documentID string) (*domain.Summary, error) {
	if m.summarizeFn != nil {
		return m.summarizeFn(ctx, documentID)
	}
	return nil, errors.New("not implemented")
}

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(ctx context.Context) error {
	return m.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestServer wires mock services into a server with default config.
func newTestServer(chat *mockChatService, docs *mockDocumentService, analysis *mockAnalysisService) *Server {
	cfg := DefaultConfig()
	cfg.Version = "1.2.3"
	return NewServer(cfg, Services{
		Chat:      chat,
		Documents: docs,
		Analysis:  analysis,
	}, discardLogger())
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var resp ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	return resp.Error
}

// Health endpoints

func TestHandleHealth(t *testing.T) {
	s := newTestServer(nil, nil, nil)

	rr := serve(s, httptest.NewRequest("GET", "/health", nil))

	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"status":"ok"`) {
		t.Errorf("unexpected body: %s", rr.Body.String())
	}
}

func TestHandleVersion(t *testing.T) {
	s := newTestServer(nil, nil, nil)

	rr := serve(s, httptest.NewRequest("GET", "/version", nil))

	var resp VersionResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Name != "DocuCortex" || resp.Version != "1.2.3" {
		t.Errorf("unexpected version response: %+v", resp)
	}
}

func TestHandleReady(t *testing.T) {
	tests := []struct {
		name       string
		checks     map[string]Pinger
		wantStatus int
		wantState  map[string]string
	}{
		{"no checks", nil, http.StatusOK, map[string]string{}},
		{
			"all healthy",
			map[string]Pinger{"documents": &mockPinger{}, "lock": &mockPinger{}},
			http.StatusOK,
			map[string]string{"documents": "ok", "lock": "ok"},
		},
		{
			"one down",
			map[string]Pinger{"documents": &mockPinger{}, "index": &mockPinger{err: errors.New("connection refused")}},
			http.StatusServiceUnavailable,
			map[string]string{"documents": "ok", "index": "unavailable"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewServer(DefaultConfig(), Services{Checks: tt.checks}, discardLogger())

			rr := serve(s, httptest.NewRequest("GET", "/ready", nil))

			if rr.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rr.Code)
			}
			var resp ReadyResponse
			if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if len(resp.Components) != len(tt.wantState) {
				t.Fatalf("expected %d components, got %v", len(tt.wantState), resp.Components)
			}
			for name, state := range tt.wantState {
				if resp.Components[name] != state {
					t.Errorf("component %s: expected %s, got %s", name, state, resp.Components[name])
				}
			}
			if strings.Contains(rr.Body.String(), "connection refused") {
				t.Error("ping error detail must not leak")
			}
		})
	}
}

func TestHandleMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_events_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Inc()

	s := NewServer(DefaultConfig(), Services{Gatherer: reg}, discardLogger())
	rr := serve(s, httptest.NewRequest("GET", "/metrics", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "test_events_total 1") {
		t.Errorf("expected counter in output, got %s", rr.Body.String())
	}
}

func TestHandleMetrics_Disabled(t *testing.T) {
	s := newTestServer(nil, nil, nil)

	rr := serve(s, httptest.NewRequest("GET", "/metrics", nil))
	if rr.Code != http.StatusNotFound {
		t.Errorf("expected 404 without a gatherer, got %d", rr.Code)
	}
}

func TestHandleSwagger(t *testing.T) {
	s := newTestServer(nil, nil, nil)

	rr := serve(s, httptest.NewRequest("GET", "/swagger/doc.json", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &doc); err != nil {
		t.Fatalf("expected valid JSON, got %v", err)
	}
	paths, _ := doc["paths"].(map[string]interface{})
	for _, p := range []string{"/chat", "/documents", "/documents/{id}/summary"} {
		if _, ok := paths[p]; !ok {
			t.Errorf("expected path %s in api description", p)
		}
	}
}

// Chat endpoint

func TestHandleChat_Success(t *testing.T) {
	var gotDoc, gotQuestion string
	chat := &mockChatService{
		askFn: func(ctx context.Context, documentID, question string) (*domain.ChatResponse, error) {
			gotDoc, gotQuestion = documentID, question
			return &domain.ChatResponse{
				Answer:     "Paris.",
				Sources:    []domain.Source{{Content: "Paris is the capital of France."}},
				DocumentID: documentID,
			}, nil
		},
	}
	s := newTestServer(chat, nil, nil)

	body := `{"documentId":"doc_1","question":"What is the capital?"}`
	rr := serve(s, httptest.NewRequest("POST", "/api/v1/chat", strings.NewReader(body)))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if gotDoc != "doc_1" || gotQuestion != "What is the capital?" {
		t.Errorf("unexpected arguments %q, %q", gotDoc, gotQuestion)
	}

	var resp domain.ChatResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Answer != "Paris." || resp.DocumentID != "doc_1" || len(resp.Sources) != 1 {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestHandleChat_EmptySourcesSerializeAsArray(t *testing.T) {
	chat := &mockChatService{
		askFn: func(ctx context.Context, documentID, question string) (*domain.ChatResponse, error) {
			return &domain.ChatResponse{Answer: domain.FallbackAnswer, Sources: []domain.Source{}, DocumentID: documentID}, nil
		},
	}
	s := newTestServer(chat, nil, nil)

	rr := serve(s, httptest.NewRequest("POST", "/api/v1/chat", strings.NewReader(`{"documentId":"doc_1","question":"q"}`)))

	if !strings.Contains(rr.Body.String(), `"sources":[]`) {
		t.Errorf("expected empty sources array, got %s", rr.Body.String())
	}
}

func TestHandleChat_BadRequests(t *testing.T) {
	called := false
	chat := &mockChatService{
		askFn: func(ctx context.Context, documentID, question string) (*domain.ChatResponse, error) {
			called = true
			return nil, nil
		},
	}
	s := newTestServer(chat, nil, nil)

	bodies := map[string]string{
		"malformed json":   `{"documentId":`,
		"missing question": `{"documentId":"doc_1"}`,
		"blank question":   `{"documentId":"doc_1","question":"   "}`,
		"missing document": `{"question":"q"}`,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			rr := serve(s, httptest.NewRequest("POST", "/api/v1/chat", strings.NewReader(body)))
			if rr.Code != http.StatusBadRequest {
				t.Errorf("expected status 400, got %d", rr.Code)
			}
		})
	}
	if called {
		t.Error("service must not be called for invalid requests")
	}
}

func TestHandleChat_BodyTooLarge(t *testing.T) {
	called := false
	chat := &mockChatService{
		askFn: func(ctx context.Context, documentID, question string) (*domain.ChatResponse, error) {
			called = true
			return nil, nil
		},
	}
	s := newTestServer(chat, nil, nil)

	body := `{"documentId":"doc_1","question":"` + strings.Repeat("a", maxChatBodyBytes+1) + `"}`
	rr := serve(s, httptest.NewRequest("POST", "/api/v1/chat", strings.NewReader(body)))

	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected status 413, got %d", rr.Code)
	}
	if got := decodeError(t, rr); got != "request body too large" {
		t.Errorf("unexpected error %q", got)
	}
	if called {
		t.Error("service must not be called for oversized requests")
	}
}

func TestHandleChat_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{"not found", fmt.Errorf("ask: %w", domain.ErrNotFound), http.StatusNotFound, "document not found"},
		{"harmful", fmt.Errorf("ask: %w", domain.ErrHarmfulContent), http.StatusBadRequest, "request rejected: content flagged as harmful"},
		{"invalid", fmt.Errorf("ask: %w", domain.ErrInvalidInput), http.StatusBadRequest, "invalid input"},
		{"unavailable", fmt.Errorf("ask: embedding: %w: openai 503 upstream overloaded", domain.ErrServiceUnavailable), http.StatusInternalServerError, "internal server error"},
		{"internal", fmt.Errorf("ask: %w: pq: relation missing", domain.ErrInternal), http.StatusInternalServerError, "internal server error"},
		{"unclassified", errors.New("boom"), http.StatusInternalServerError, "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chat := &mockChatService{
				askFn: func(ctx context.Context, documentID, question string) (*domain.ChatResponse, error) {
					return nil, tt.err
				},
			}
			s := newTestServer(chat, nil, nil)

			rr := serve(s, httptest.NewRequest("POST", "/api/v1/chat", strings.NewReader(`{"documentId":"doc_1","question":"q"}`)))

			if rr.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rr.Code)
			}
			if got := decodeError(t, rr); got != tt.wantError {
				t.Errorf("expected error %q, got %q", tt.wantError, got)
			}
		})
	}
}

func TestHandleChat_RequestDeadline(t *testing.T) {
	chat := &mockChatService{
		askFn: func(ctx context.Context, documentID, question string) (*domain.ChatResponse, error) {
			if _, ok := ctx.Deadline(); !ok {
				t.Error("expected request context to carry a deadline")
			}
			return &domain.ChatResponse{Sources: []domain.Source{}, DocumentID: documentID}, nil
		},
	}
	s := newTestServer(chat, nil, nil)

	rr := serve(s, httptest.NewRequest("POST", "/api/v1/chat", strings.NewReader(`{"documentId":"doc_1","question":"q"}`)))
	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rr.Code)
	}
}

// Document endpoints

func multipartBody(t *testing.T, field, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	part, err := mw.CreatePart(h)
	if err != nil {
		t.Fatalf("failed to create part: %v", err)
	}
	_, _ = part.Write(data)
	if err := mw.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}
	return body, mw.FormDataContentType()
}

func TestHandleUploadDocument_Success(t *testing.T) {
	var got domain.Upload
	docs := &mockDocumentService{
		uploadFn: func(ctx context.Context, upload domain.Upload) (*domain.UploadResult, error) {
			got = upload
			return &domain.UploadResult{DocumentID: "doc_abc", Filename: upload.Filename, ContentType: domain.ContentTypeText}, nil
		},
	}
	s := newTestServer(nil, docs, nil)

	body, ct := multipartBody(t, "file", "notes.txt", "text/plain", []byte("hello world"))
	req := httptest.NewRequest("POST", "/api/v1/documents", body)
	req.Header.Set("Content-Type", ct)

	rr := serve(s, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if got.Filename != "notes.txt" || got.ContentType != "text/plain" || string(got.Data) != "hello world" {
		t.Errorf("unexpected upload: %+v", got)
	}

	var resp domain.UploadResult
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.DocumentID != "doc_abc" {
		t.Errorf("expected doc_abc, got %s", resp.DocumentID)
	}
}

func TestHandleUploadDocument_ContentTypeFallback(t *testing.T) {
	tests := []struct {
		filename string
		declared string
		expected string
	}{
		{"report.pdf", "application/octet-stream", "application/pdf"},
		{"report.PDF", "", "application/pdf"},
		{"notes.txt", "", "text/plain"},
		{"scan.pdf", "application/pdf", "application/pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			var got string
			docs := &mockDocumentService{
				uploadFn: func(ctx context.Context, upload domain.Upload) (*domain.UploadResult, error) {
					got = upload.MediaType()
					return &domain.UploadResult{}, nil
				},
			}
			s := newTestServer(nil, docs, nil)

			body, ct := multipartBody(t, "file", tt.filename, tt.declared, []byte("data"))
			req := httptest.NewRequest("POST", "/api/v1/documents", body)
			req.Header.Set("Content-Type", ct)
			serve(s, req)

			if got != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestHandleUploadDocument_MissingFile(t *testing.T) {
	s := newTestServer(nil, &mockDocumentService{}, nil)

	body, ct := multipartBody(t, "attachment", "notes.txt", "text/plain", []byte("hello"))
	req := httptest.NewRequest("POST", "/api/v1/documents", body)
	req.Header.Set("Content-Type", ct)

	rr := serve(s, req)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rr.Code)
	}

	rr = serve(s, httptest.NewRequest("POST", "/api/v1/documents", strings.NewReader("not multipart")))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected status 400 for non-multipart body, got %d", rr.Code)
	}
}

func TestHandleUploadDocument_TooLarge(t *testing.T) {
	called := false
	docs := &mockDocumentService{
		uploadFn: func(ctx context.Context, upload domain.Upload) (*domain.UploadResult, error) {
			called = true
			return &domain.UploadResult{}, nil
		},
	}
	cfg := DefaultConfig()
	cfg.MaxUploadBytes = 10
	s := NewServer(cfg, Services{Documents: docs}, discardLogger())

	body, ct := multipartBody(t, "file", "notes.txt", "text/plain", bytes.Repeat([]byte("a"), 100))
	req := httptest.NewRequest("POST", "/api/v1/documents", body)
	req.Header.Set("Content-Type", ct)

	rr := serve(s, req)

	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected status 413, got %d", rr.Code)
	}
	if called {
		t.Error("service must not be called for oversized uploads")
	}
}

func TestHandleUploadDocument_ErrorMapping(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
	}{
		{fmt.Errorf("upload: %w: image/png", domain.ErrUnsupportedType), http.StatusBadRequest},
		{fmt.Errorf("upload: %w", domain.ErrEmptyDocument), http.StatusBadRequest},
		{fmt.Errorf("upload: %w: malformed pdf", domain.ErrInvalidInput), http.StatusBadRequest},
		{fmt.Errorf("upload: %w", domain.ErrInternal), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			docs := &mockDocumentService{
				uploadFn: func(ctx context.Context, upload domain.Upload) (*domain.UploadResult, error) {
					return nil, tt.err
				},
			}
			s := newTestServer(nil, docs, nil)

			body, ct := multipartBody(t, "file", "image.png", "image/png", []byte("data"))
			req := httptest.NewRequest("POST", "/api/v1/documents", body)
			req.Header.Set("Content-Type", ct)

			rr := serve(s, req)
			if rr.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rr.Code)
			}
		})
	}
}

func TestHandleGetSummary(t *testing.T) {
	analysis := &mockAnalysisService{
		summarizeFn: func(ctx context.Context, documentID string) (*domain.Summary, error) {
			if documentID != "doc_1" {
				return nil, fmt.Errorf("summarize: %w", domain.ErrNotFound)
			}
			return &domain.Summary{DocumentID: documentID, Summary: "A short summary."}, nil
		},
	}
	s := newTestServer(nil, nil, analysis)

	rr := serve(s, httptest.NewRequest("GET", "/api/v1/documents/doc_1/summary", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	var resp domain.Summary
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Summary != "A short summary." {
		t.Errorf("unexpected summary: %+v", resp)
	}

	rr = serve(s, httptest.NewRequest("GET", "/api/v1/documents/doc_2/summary", nil))
	if rr.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rr.Code)
	}
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		err      error
		expected int
	}{
		{domain.ErrNotFound, http.StatusNotFound},
		{domain.ErrHarmfulContent, http.StatusBadRequest},
		{domain.ErrUnsupportedType, http.StatusBadRequest},
		{domain.ErrEmptyDocument, http.StatusBadRequest},
		{domain.ErrInvalidInput, http.StatusBadRequest},
		{domain.ErrServiceUnavailable, http.StatusInternalServerError},
		{domain.ErrInternal, http.StatusInternalServerError},
		{context.DeadlineExceeded, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got, _ := errorStatus(tt.err); got != tt.expected {
			t.Errorf("errorStatus(%v) = %d, expected %d", tt.err, got, tt.expected)
		}
	}
}
