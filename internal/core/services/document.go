package services

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/docucortex/internal/core/domain"
	"github.com/custodia-labs/docucortex/internal/core/ports/driven"
	"github.com/custodia-labs/docucortex/internal/core/ports/driving"
	"github.com/custodia-labs/docucortex/internal/metrics"
)

// Ensure documentService implements the interface
var _ driving.DocumentService = (*documentService)(nil)

// Executor runs a named function, possibly on another goroutine, and
// returns its error. worker.Pool satisfies it.
type Executor interface {
	Submit(ctx context.Context, name string, fn func(ctx context.Context) error) error
}

// DocumentServiceConfig holds the collaborators of the document service.
type DocumentServiceConfig struct {
	Store      driven.DocumentStore
	Extractors driven.ExtractorRegistry

	// Executor offloads extraction. Nil runs extraction inline.
	Executor Executor

	Metrics *metrics.Recorder
	Logger  *slog.Logger

	// NewID and Now default to NewDocumentID and time.Now.
	NewID func() string
	Now   func() time.Time
}

type documentService struct {
	store      driven.DocumentStore
	extractors driven.ExtractorRegistry
	executor   Executor
	metrics    *metrics.Recorder
	logger     *slog.Logger
	newID      func() string
	now        func() time.Time
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(cfg DocumentServiceConfig) driving.DocumentService {
	s := &documentService{
		store:      cfg.Store,
		extractors: cfg.Extractors,
		executor:   cfg.Executor,
		metrics:    cfg.Metrics,
		logger:     cfg.Logger,
		newID:      cfg.NewID,
		now:        cfg.Now,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.newID == nil {
		s.newID = NewDocumentID
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// NewDocumentID returns "doc_" followed by 32 hex characters.
func NewDocumentID() string {
	id := uuid.New()
	return domain.DocumentIDPrefix + hex.EncodeToString(id[:])
}

// Upload extracts, validates and stores an uploaded file.
func (s *documentService) Upload(ctx context.Context, upload domain.Upload) (*domain.UploadResult, error) {
	mediaType := upload.MediaType()

	result, err := s.upload(ctx, upload, mediaType)
	s.metrics.Upload(s.uploadLabel(mediaType), err)
	if err != nil {
		return nil, classify("upload", err)
	}
	return result, nil
}

// uploadLabel keeps the metric label set to the registered media types.
func (s *documentService) uploadLabel(mediaType string) string {
	if s.extractors.Get(mediaType) == nil {
		return metrics.ContentTypeUnsupported
	}
	return mediaType
}

func (s *documentService) upload(ctx context.Context, upload domain.Upload, mediaType string) (*domain.UploadResult, error) {
	extractor := s.extractors.Get(mediaType)
	if extractor == nil {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedType, upload.ContentType)
	}
	if len(upload.Data) == 0 {
		return nil, domain.ErrEmptyDocument
	}

	text, err := s.extract(ctx, extractor, upload.Data)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrEmptyDocument
	}

	doc := &domain.Document{
		ID:          s.newID(),
		Filename:    cleanFilename(upload.Filename),
		ContentType: mediaType,
		Text:        text,
		CreatedAt:   s.now(),
	}
	if err := s.store.Save(ctx, doc); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}

	s.logger.Info("document stored",
		"document_id", doc.ID,
		"content_type", doc.ContentType,
		"characters", len([]rune(text)),
	)

	return &domain.UploadResult{
		DocumentID:  doc.ID,
		Filename:    doc.Filename,
		ContentType: doc.ContentType,
	}, nil
}

func (s *documentService) extract(ctx context.Context, extractor driven.TextExtractor, data []byte) (string, error) {
	if s.executor == nil {
		return extractor.Extract(ctx, data)
	}

	var text string
	err := s.executor.Submit(ctx, "extract", func(ctx context.Context) error {
		var err error
		text, err = extractor.Extract(ctx, data)
		return err
	})
	if err != nil {
		return "", err
	}
	return text, nil
}

// cleanFilename drops any directory components a client sent.
func cleanFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	base := filepath.Base(name)
	if base == "." || base == "/" {
		return ""
	}
	return base
}
