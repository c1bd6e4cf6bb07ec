package indexer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"blograg/internal/domain"
	"blograg/internal/metrics"
	"blograg/internal/vectorstore"
	"blograg/internal/vectorstore/memory"
)

// Generation is one immutable build of the search index.
type Generation struct {
	Version   uint64
	Index     vectorstore.Index
	Documents int
	Chunks    int
	BuiltAt   time.Time
}

// Controller owns the current index generation. Builds are serialized;
// readers load the current generation without locking and keep using it
// for the rest of their request.
type Controller struct {
	source   domain.DocumentSource
	chunker  domain.Chunker
	embedder domain.Embedder
	log      *zap.Logger
	metrics  *metrics.Metrics
	async    bool

	mu      sync.Mutex
	version uint64
	current atomic.Pointer[Generation]
	pending chan struct{}
}

// Option configures a Controller.
type Option func(*Controller)

func WithLogger(log *zap.Logger) Option { return func(c *Controller) { c.log = log } }

func WithMetrics(m *metrics.Metrics) Option { return func(c *Controller) { c.metrics = m } }

// WithAsync makes Schedule queue a background refresh instead of building
// inline. Run must be started for queued refreshes to happen.
func WithAsync(async bool) Option { return func(c *Controller) { c.async = async } }

func New(source domain.DocumentSource, chunker domain.Chunker, embedder domain.Embedder, opts ...Option) *Controller {
	c := &Controller{
		source:   source,
		chunker:  chunker,
		embedder: embedder,
		log:      zap.NewNop(),
		pending:  make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Current returns the serving generation, or nil when no index exists.
func (c *Controller) Current() *Generation { return c.current.Load() }

// Refresh rebuilds the index from every stored document and publishes it.
// An empty store publishes "no index" and returns domain.ErrNoData. Any
// other failure leaves the previous generation serving.
func (c *Controller) Refresh(ctx context.Context) (gen *Generation, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	start := time.Now()
	ctx, span := metrics.StartSpan(ctx, "indexer.Refresh")
	defer func() {
		c.metrics.ObserveRefresh(outcome(err), time.Since(start))
		if errors.Is(err, domain.ErrNoData) {
			metrics.EndSpan(span, nil)
			return
		}
		metrics.EndSpan(span, err)
	}()

	docs, err := c.source.ListDocuments(ctx)
	if err != nil {
		c.log.Error("refresh failed: list documents", zap.Error(err))
		return nil, fmt.Errorf("list documents: %w", err)
	}
	var chunks []domain.Chunk
	for _, doc := range docs {
		chunks = append(chunks, c.chunker.Split(doc)...)
	}

	idx, err := memory.Build(ctx, c.embedder, chunks)
	if errors.Is(err, domain.ErrEmptyCorpus) {
		c.current.Store(nil)
		c.metrics.SetIndex(0, 0)
		c.log.Info("no documents to index", zap.Int("documents", len(docs)))
		return nil, domain.ErrNoData
	}
	if err != nil {
		c.log.Error("refresh failed: build index", zap.Int("chunks", len(chunks)), zap.Error(err))
		return nil, fmt.Errorf("build index: %w", err)
	}

	c.version++
	gen = &Generation{
		Version:   c.version,
		Index:     idx,
		Documents: len(docs),
		Chunks:    idx.Len(),
		BuiltAt:   time.Now(),
	}
	c.current.Store(gen)
	c.metrics.SetIndex(gen.Version, gen.Chunks)
	span.SetAttributes(attribute.Int64("index.version", int64(gen.Version)), attribute.Int("index.chunks", gen.Chunks))
	c.log.Info("index refreshed",
		zap.Uint64("version", gen.Version),
		zap.Int("documents", gen.Documents),
		zap.Int("chunks", gen.Chunks),
		zap.Duration("took", time.Since(start)),
	)
	return gen, nil
}

// Trigger queues a background refresh. Triggers that arrive while one is
// already queued are merged into it.
func (c *Controller) Trigger() {
	select {
	case c.pending <- struct{}{}:
	default:
	}
}

// Schedule refreshes after a document write: inline by default, or queued
// with Trigger in async mode. An empty store is not an error here.
func (c *Controller) Schedule(ctx context.Context) error {
	if c.async {
		c.Trigger()
		return nil
	}
	_, err := c.Refresh(ctx)
	if errors.Is(err, domain.ErrNoData) {
		return nil
	}
	return err
}

// Run serves queued refreshes until ctx is done.
func (c *Controller) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.pending:
			if _, err := c.Refresh(ctx); err != nil && !errors.Is(err, domain.ErrNoData) && ctx.Err() == nil {
				c.log.Warn("background refresh failed, previous index still serving", zap.Error(err))
			}
		}
	}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrNoData):
		return "no_data"
	default:
		return "error"
	}
}
