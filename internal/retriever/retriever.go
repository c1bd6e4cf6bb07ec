package retriever

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"blograg/internal/domain"
	"blograg/internal/indexer"
	"blograg/internal/metrics"
)

// GenerationSource provides the serving index generation.
type GenerationSource interface {
	Current() *indexer.Generation
}

// Retriever embeds a query and searches the current index generation.
type Retriever struct {
	source   GenerationSource
	embedder domain.Embedder
	metrics  *metrics.Metrics
}

func New(source GenerationSource, embedder domain.Embedder, m *metrics.Metrics) *Retriever {
	return &Retriever{source: source, embedder: embedder, metrics: m}
}

// Retrieve returns up to k chunks closest to query. The generation is read
// once, so the whole result comes from a single index build.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) (results []domain.SearchResult, err error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: query is required", domain.ErrInvalidInput)
	}
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", domain.ErrInvalidInput, k)
	}
	gen := r.source.Current()
	if gen == nil {
		return nil, fmt.Errorf("%w: index is empty, seed some documents first", domain.ErrNoData)
	}

	start := time.Now()
	ctx, span := metrics.StartSpan(ctx, "retriever.Retrieve",
		attribute.Int("k", k),
		attribute.Int64("index.version", int64(gen.Version)),
	)
	defer func() {
		r.metrics.ObserveRetrieval(time.Since(start))
		metrics.EndSpan(span, err)
	}()

	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		if !errors.Is(err, domain.ErrDependencyUnavailable) {
			err = fmt.Errorf("%w: embed query: %w", domain.ErrDependencyUnavailable, err)
		}
		return nil, err
	}
	return gen.Index.Search(vec, k)
}

// Ready reports whether an index generation is serving.
func (r *Retriever) Ready() bool { return r.source.Current() != nil }
