package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/swaggo/swag"

	"github.com/custodia-labs/docucortex/internal/core/domain"
)

// multipartOverhead allows for boundaries and part headers around the file
const multipartOverhead = 1 << 20

// maxChatBodyBytes caps the JSON body of a chat request
const maxChatBodyBytes = 1 << 20

// readyTimeout bounds each readiness ping
const readyTimeout = 5 * time.Second

// ErrorResponse represents an API error response
// @Description API error response
type ErrorResponse struct {
	Error string `json:"error" example:"document not found"`
}

// StatusResponse represents a simple status response
// @Description Simple status response
type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}

// ReadyResponse reports component readiness
// @Description Readiness of each backing component
type ReadyResponse struct {
	Status     string            `json:"status" example:"ready"`
	Components map[string]string `json:"components,omitempty"`
}

// VersionResponse represents the API version response
// @Description API version response
type VersionResponse struct {
	Name    string `json:"name" example:"DocuCortex"`
	Version string `json:"version" example:"1.0.0"`
}

// Health endpoints

// handleHealth godoc
// @Summary      Health check
// @Description  Returns the health status of the API
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Router       /health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// handleReady godoc
// @Summary      Readiness check
// @Description  Pings the document store, index provider and lock backend
// @Tags         Health
// @Produce      json
// @Success      200  {object}  ReadyResponse
// @Failure      503  {object}  ReadyResponse
// @Router       /ready [get]
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	names := make([]string, 0, len(s.svc.Checks))
	for name := range s.svc.Checks {
		names = append(names, name)
	}
	sort.Strings(names)

	resp := ReadyResponse{Status: "ready", Components: make(map[string]string, len(names))}
	status := http.StatusOK
	for _, name := range names {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		err := s.svc.Checks[name].Ping(ctx)
		cancel()

		if err != nil {
			s.logger.Warn("readiness check failed", "component", name, "error", err)
			resp.Components[name] = "unavailable"
			resp.Status = "not ready"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Components[name] = "ok"
	}

	writeJSON(w, status, resp)
}

// handleVersion godoc
// @Summary      Get API version
// @Description  Returns the service name and version
// @Tags         Health
// @Produce      json
// @Success      200  {object}  VersionResponse
// @Router       /version [get]
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, VersionResponse{Name: s.cfg.AppName, Version: s.cfg.Version})
}

func (s *Server) handleSwagger(w http.ResponseWriter, r *http.Request) {
	doc, err := swag.ReadDoc()
	if err != nil {
		writeError(w, http.StatusNotFound, "api description not registered")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = io.WriteString(w, doc)
}

// Document endpoints

// handleUploadDocument godoc
// @Summary      Upload a document
// @Description  Extracts the text of a PDF or plain-text file and stores it under a new document ID
// @Tags         Documents
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file  formData  file  true  "PDF or plain-text file"
// @Success      201   {object}  domain.UploadResult
// @Failure      400   {object}  ErrorResponse  "Unsupported, malformed or empty file"
// @Failure      413   {object}  ErrorResponse  "File too large"
// @Failure      500   {object}  ErrorResponse  "Internal server error"
// @Router       /documents [post]
func (s *Server) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+multipartOverhead)

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		writeError(w, http.StatusBadRequest, "multipart field \"file\" is required")
		return
	}
	defer file.Close()

	if header.Size > s.cfg.MaxUploadBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "file too large")
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read file")
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "file too large")
		return
	}

	result, err := s.svc.Documents.Upload(r.Context(), domain.Upload{
		Filename:    header.Filename,
		ContentType: uploadContentType(header.Header.Get("Content-Type"), header.Filename, data),
		Data:        data,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// handleGetSummary godoc
// @Summary      Summarize a document
// @Description  Returns an LLM-generated summary of the whole document
// @Tags         Documents
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Document ID"
// @Success      200  {object}  domain.Summary
// @Failure      404  {object}  ErrorResponse  "Document not found"
// @Failure      500  {object}  ErrorResponse  "Internal server error"
// @Router       /documents/{id}/summary [get]
func (s *Server) handleGetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.svc.Analysis.Summarize(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// Chat endpoints

// handleChat godoc
// @Summary      Ask a question about a document
// @Description  Answers from passages retrieved from the document. Harmful questions are rejected and unsafe answers are filtered.
// @Tags         Chat
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      domain.ChatRequest  true  "Question"
// @Success      200      {object}  domain.ChatResponse
// @Failure      400      {object}  ErrorResponse  "Invalid request or harmful question"
// @Failure      404      {object}  ErrorResponse  "Document not found"
// @Failure      413      {object}  ErrorResponse  "Request body too large"
// @Failure      500      {object}  ErrorResponse  "Internal server error"
// @Router       /chat [post]
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxChatBodyBytes)

	var req domain.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.DocumentID) == "" || strings.TrimSpace(req.Question) == "" {
		writeError(w, http.StatusBadRequest, "documentId and question are required")
		return
	}

	resp, err := s.svc.Chat.Ask(r.Context(), req.DocumentID, req.Question)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// writeServiceError maps domain errors to status codes.
// Anything unclassified is a 500 whose detail stays in the log.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := errorStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeError(w, status, message)
}

func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "document not found"
	case errors.Is(err, domain.ErrHarmfulContent):
		return http.StatusBadRequest, "request rejected: content flagged as harmful"
	case errors.Is(err, domain.ErrUnsupportedType):
		return http.StatusBadRequest, "unsupported content type"
	case errors.Is(err, domain.ErrEmptyDocument):
		return http.StatusBadRequest, "document is empty"
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, "invalid input"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// uploadContentType prefers the part header, then the file extension, then sniffing.
func uploadContentType(declared, filename string, data []byte) string {
	if declared != "" && domain.BaseMediaType(declared) != "application/octet-stream" {
		return declared
	}
	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename))); byExt != "" {
		return byExt
	}
	return http.DetectContentType(data)
}

// Helper functions

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
