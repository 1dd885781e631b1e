package services

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/sync/singleflight"

	"github.com/custodia-labs/docucortex/internal/core/domain"
	"github.com/custodia-labs/docucortex/internal/core/ports/driven"
	"github.com/custodia-labs/docucortex/internal/metrics"
	"github.com/custodia-labs/docucortex/internal/splitter"
)

// Index naming prefixes. Clean IDs keep the plain prefix; IDs that needed
// sanitizing get a distinct prefix and a digest so names never collide.
const (
	indexPrefix          = "doc_"
	sanitizedIndexPrefix = "doch_"
)

// IndexName derives the semantic index name for a document ID.
func IndexName(documentID string) string {
	var b strings.Builder
	changed := false
	for _, r := range documentID {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
			changed = true
		}
	}

	if !changed {
		return indexPrefix + b.String()
	}

	sum := blake2b.Sum256([]byte(documentID))
	return sanitizedIndexPrefix + b.String() + "_" + hex.EncodeToString(sum[:8])
}

// IndexBuilderConfig holds the collaborators and tuning of an IndexBuilder.
type IndexBuilderConfig struct {
	Documents  driven.DocumentStore
	Indexes    driven.IndexProvider
	Embeddings driven.EmbeddingService

	// Lock coordinates builds across instances. Optional.
	Lock driven.DistributedLock

	// Splitter defaults to 2000/200 parent and 400/100 child windows.
	Splitter *splitter.ParentChild

	// Chunks post-processes split chunks before embedding. Optional.
	Chunks driven.PostProcessorPipeline

	LockTTL        time.Duration // default 10m
	BuildTimeout   time.Duration // default 5m
	PollInterval   time.Duration // default 250ms
	EmbedBatchSize int           // default 100

	Metrics *metrics.Recorder
	Logger  *slog.Logger
}

// IndexBuilder returns a document's semantic index, building it on first use.
// At most one build per index runs in this process; with a Lock configured,
// at most one runs across instances.
type IndexBuilder struct {
	documents  driven.DocumentStore
	indexes    driven.IndexProvider
	embeddings driven.EmbeddingService
	lock       driven.DistributedLock
	splitter   *splitter.ParentChild
	chunks     driven.PostProcessorPipeline

	lockTTL      time.Duration
	buildTimeout time.Duration
	pollInterval time.Duration
	batchSize    int

	group   singleflight.Group
	metrics *metrics.Recorder
	logger  *slog.Logger
}

// NewIndexBuilder creates a new IndexBuilder
func NewIndexBuilder(cfg IndexBuilderConfig) *IndexBuilder {
	b := &IndexBuilder{
		documents:    cfg.Documents,
		indexes:      cfg.Indexes,
		embeddings:   cfg.Embeddings,
		lock:         cfg.Lock,
		splitter:     cfg.Splitter,
		chunks:       cfg.Chunks,
		lockTTL:      cfg.LockTTL,
		buildTimeout: cfg.BuildTimeout,
		pollInterval: cfg.PollInterval,
		batchSize:    cfg.EmbedBatchSize,
		metrics:      cfg.Metrics,
		logger:       cfg.Logger,
	}

	if b.splitter == nil {
		b.splitter = splitter.DefaultParentChild()
	}
	if b.lockTTL <= 0 {
		b.lockTTL = 10 * time.Minute
	}
	if b.buildTimeout <= 0 {
		b.buildTimeout = 5 * time.Minute
	}
	if b.pollInterval <= 0 {
		b.pollInterval = 250 * time.Millisecond
	}
	if b.batchSize <= 0 {
		b.batchSize = 100
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}

	return b
}

// GetOrBuild returns the index for documentID, building it if absent.
// An existing index is never rebuilt. Fails with domain.ErrNotFound when
// the document has no stored text; that failure is not remembered.
func (b *IndexBuilder) GetOrBuild(ctx context.Context, documentID string) (*domain.IndexHandle, error) {
	name := IndexName(documentID)

	exists, err := b.indexes.HasIndex(ctx, name)
	if err != nil {
		b.metrics.IndexLookup(metrics.IndexError)
		return nil, fmt.Errorf("check index %s: %w", name, err)
	}
	if exists {
		b.metrics.IndexLookup(metrics.IndexReused)
		return &domain.IndexHandle{Name: name, DocumentID: documentID}, nil
	}

	// The build outlives any single caller so latecomers sharing it are not
	// failed by the first caller going away. Only the caller whose function
	// ran sees ran set.
	ran := false
	ch := b.group.DoChan(name, func() (interface{}, error) {
		ran = true
		buildCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), b.buildTimeout)
		defer cancel()
		return b.build(buildCtx, documentID, name)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			if !errors.Is(res.Err, domain.ErrNotFound) {
				b.metrics.IndexLookup(metrics.IndexError)
			}
			return nil, res.Err
		}
		handle := *res.Val.(*domain.IndexHandle)
		handle.Built = handle.Built && ran
		return &handle, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// build runs inside the singleflight group.
func (b *IndexBuilder) build(ctx context.Context, documentID, name string) (*domain.IndexHandle, error) {
	logger := b.logger.With("document_id", documentID, "index", name)

	if b.lock != nil {
		release, builtElsewhere, err := b.acquire(ctx, name, logger)
		if err != nil {
			return nil, err
		}
		if builtElsewhere {
			b.metrics.IndexLookup(metrics.IndexReused)
			return &domain.IndexHandle{Name: name, DocumentID: documentID}, nil
		}
		if release != nil {
			defer release()
		}
	}

	// Another flight or instance may have finished since the first check
	exists, err := b.indexes.HasIndex(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("check index %s: %w", name, err)
	}
	if exists {
		b.metrics.IndexLookup(metrics.IndexReused)
		return &domain.IndexHandle{Name: name, DocumentID: documentID}, nil
	}

	start := time.Now()

	text, err := b.documents.GetText(ctx, documentID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("document %s: %w", documentID, err)
		}
		return nil, fmt.Errorf("load document %s: %w", documentID, err)
	}

	chunks := b.splitter.Split(text)
	if b.chunks != nil {
		chunks = b.chunks.Process(chunks)
	}

	embeddings, err := b.embed(ctx, chunks)
	if err != nil {
		return nil, fmt.Errorf("embed chunks: %w", err)
	}

	if err := b.indexes.CreateIndex(ctx, name, documentID, chunks, embeddings); err != nil {
		return nil, fmt.Errorf("create index %s: %w", name, err)
	}

	logger.Info("semantic index built",
		"chunks", len(chunks),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	b.metrics.IndexLookup(metrics.IndexBuilt)

	return &domain.IndexHandle{Name: name, DocumentID: documentID, Built: true}, nil
}

// acquire takes the cross-instance build lock, polling while another
// instance holds it. builtElsewhere is true when the index appeared while
// waiting. A failing lock backend degrades to an unlocked build, which is
// safe because CreateIndex is idempotent.
func (b *IndexBuilder) acquire(ctx context.Context, name string, logger *slog.Logger) (release func(), builtElsewhere bool, err error) {
	lockName := "index:" + name
	ticker := time.NewTicker(b.pollInterval)
	defer ticker.Stop()

	for {
		acquired, err := b.lock.Acquire(ctx, lockName, b.lockTTL)
		if err != nil {
			logger.Warn("build lock unavailable, building without it", "error", err)
			return nil, false, nil
		}
		if acquired {
			return func() {
				if err := b.lock.Release(context.WithoutCancel(ctx), lockName); err != nil {
					logger.Warn("failed to release build lock", "error", err)
				}
			}, false, nil
		}

		exists, err := b.indexes.HasIndex(ctx, name)
		if err != nil {
			return nil, false, fmt.Errorf("check index %s: %w", name, err)
		}
		if exists {
			return nil, true, nil
		}

		logger.Debug("waiting for build lock held by another instance")
		select {
		case <-ctx.Done():
			return nil, false, ctx.Err()
		case <-ticker.C:
		}
	}
}

// embed embeds chunk contents in batches, preserving order.
func (b *IndexBuilder) embed(ctx context.Context, chunks []domain.Chunk) ([][]float32, error) {
	vectors := make([][]float32, 0, len(chunks))

	for start := 0; start < len(chunks); start += b.batchSize {
		end := min(start+b.batchSize, len(chunks))

		texts := make([]string, 0, end-start)
		for _, c := range chunks[start:end] {
			texts = append(texts, c.Content)
		}

		batch, err := b.embeddings.Embed(ctx, texts)
		if err != nil {
			return nil, err
		}
		if len(batch) != len(texts) {
			return nil, fmt.Errorf("%w: embedding provider returned %d vectors for %d texts",
				domain.ErrInternal, len(batch), len(texts))
		}
		vectors = append(vectors, batch...)
	}

	return vectors, nil
}
