package memory

import (
	"context"
	"fmt"
	"math"
	"sort"

	"blograg/internal/domain"
)

// Index is an immutable in-memory vector index using brute-force cosine
// similarity. It is never modified after Build returns.
type Index struct {
	dimension int
	vectors   [][]float32
	norms     []float64
	chunks    []domain.Chunk
}

// Build embeds every chunk and returns a ready index. The embedder is
// called once for the whole corpus; any failure aborts the build.
func Build(ctx context.Context, emb domain.Embedder, chunks []domain.Chunk) (*Index, error) {
	if len(chunks) == 0 {
		return nil, domain.ErrEmptyCorpus
	}
	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Text
	}
	vectors, err := emb.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, err
	}
	return New(chunks, vectors)
}

// New assembles an index from precomputed vectors aligned with chunks.
func New(chunks []domain.Chunk, vectors [][]float32) (*Index, error) {
	if len(chunks) == 0 {
		return nil, domain.ErrEmptyCorpus
	}
	if len(chunks) != len(vectors) {
		return nil, fmt.Errorf("chunks and vectors length mismatch: %d vs %d", len(chunks), len(vectors))
	}
	dim := len(vectors[0])
	if dim == 0 {
		return nil, fmt.Errorf("embedding for chunk 0 is empty")
	}
	idx := &Index{
		dimension: dim,
		vectors:   make([][]float32, len(vectors)),
		norms:     make([]float64, len(vectors)),
		chunks:    make([]domain.Chunk, len(chunks)),
	}
	copy(idx.chunks, chunks)
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("vector dimension mismatch at chunk %d: got %d, want %d", i, len(v), dim)
		}
		idx.vectors[i] = append([]float32(nil), v...)
		idx.norms[i] = norm(v)
	}
	return idx, nil
}

func (x *Index) Len() int       { return len(x.chunks) }
func (x *Index) Dimension() int { return x.dimension }

// Search returns the k nearest chunks by cosine distance (1 - cosine).
// Ties keep insertion order.
func (x *Index) Search(query []float32, k int) ([]domain.SearchResult, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", domain.ErrInvalidInput, k)
	}
	if len(query) != x.dimension {
		return nil, fmt.Errorf("%w: query dimension %d, index dimension %d", domain.ErrInvalidInput, len(query), x.dimension)
	}
	qn := norm(query)
	results := make([]domain.SearchResult, len(x.chunks))
	for i := range x.vectors {
		results[i] = domain.SearchResult{Chunk: x.chunks[i], Distance: 1 - cosine(x.vectors[i], x.norms[i], query, qn)}
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Distance < results[j].Distance })
	if k < len(results) {
		results = results[:k]
	}
	return results, nil
}

func cosine(a []float32, an float64, b []float32, bn float64) float64 {
	if an == 0 || bn == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot / (an * bn)
}

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}
