package embedding

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"blograg/internal/domain"
)

// BatchFunc embeds one batch of texts and returns vectors in input order.
type BatchFunc func(ctx context.Context, texts []string) ([][]float32, error)

// Batch splits texts into groups of at most size and runs fn over them with
// at most concurrency calls in flight. The result keeps input order. The
// first failure cancels the remaining batches and is returned.
func Batch(ctx context.Context, texts []string, size, concurrency int, fn BatchFunc) ([][]float32, error) {
	if size <= 0 {
		size = len(texts)
	}
	if concurrency <= 0 {
		concurrency = 1
	}
	out := make([][]float32, len(texts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for from := 0; from < len(texts); from += size {
		to := min(from+size, len(texts))
		g.Go(func() error {
			vecs, err := fn(gctx, texts[from:to])
			if err != nil {
				return err
			}
			if len(vecs) != to-from {
				return fmt.Errorf("embedding batch returned %d vectors for %d texts", len(vecs), to-from)
			}
			copy(out[from:to], vecs)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// NormalizeL2 scales v in place to unit length. Zero vectors are left as is.
func NormalizeL2(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	inv := float32(1.0 / math.Sqrt(sum))
	for i := range v {
		v[i] *= inv
	}
}

// Guarded bounds query embedding by a timeout and marks any failure as
// domain.ErrDependencyUnavailable. Batch calls are not given an overall
// deadline; remote providers bound each request they send instead.
type Guarded struct {
	inner   domain.Embedder
	timeout time.Duration
}

// Guard wraps inner. A zero timeout leaves deadlines to the caller's context.
func Guard(inner domain.Embedder, timeout time.Duration) *Guarded {
	return &Guarded{inner: inner, timeout: timeout}
}

func (g *Guarded) Name() string   { return g.inner.Name() }
func (g *Guarded) Dimension() int { return g.inner.Dimension() }

func (g *Guarded) Embed(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := g.bound(ctx)
	defer cancel()
	v, err := g.inner.Embed(ctx, text)
	if err != nil {
		return nil, g.wrap(err)
	}
	return v, nil
}

func (g *Guarded) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vs, err := g.inner.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, g.wrap(err)
	}
	return vs, nil
}

func (g *Guarded) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, g.timeout)
}

func (g *Guarded) wrap(err error) error {
	if errors.Is(err, domain.ErrDependencyUnavailable) {
		return err
	}
	return fmt.Errorf("%w: embedder %s: %w", domain.ErrDependencyUnavailable, g.inner.Name(), err)
}
