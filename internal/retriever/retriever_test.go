package retriever

import (
	"context"
	"errors"
	"testing"

	"blograg/internal/domain"
	"blograg/internal/embedding"
	"blograg/internal/embedding/hashing"
	"blograg/internal/indexer"
	"blograg/internal/vectorstore/memory"
)

type staticSource struct{ gen *indexer.Generation }

func (s staticSource) Current() *indexer.Generation { return s.gen }

type brokenEmbedder struct{ domain.Embedder }

func (brokenEmbedder) Embed(context.Context, string) ([]float32, error) {
	return nil, errors.New("connection reset")
}

func buildGeneration(t *testing.T, emb domain.Embedder, texts ...string) *indexer.Generation {
	t.Helper()
	chunks := make([]domain.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = domain.Chunk{Text: text, DocumentID: domain.DocumentID(text)}
	}
	idx, err := memory.Build(context.Background(), emb, chunks)
	if err != nil {
		t.Fatal(err)
	}
	return &indexer.Generation{Version: 1, Index: idx, Chunks: idx.Len()}
}

func TestRetrieveRanksByRelevance(t *testing.T) {
	emb := hashing.NewEmbedder(256)
	gen := buildGeneration(t, emb,
		"cooking pho with beef broth",
		"machine learning with neural networks",
		"travel tips for Da Lat",
	)
	r := New(staticSource{gen}, emb, nil)

	res, err := r.Retrieve(context.Background(), "neural networks", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(res) != 2 {
		t.Fatalf("got %d results, want 2", len(res))
	}
	if res[0].Chunk.Text != "machine learning with neural networks" {
		t.Errorf("top result = %q", res[0].Chunk.Text)
	}
	if res[0].Distance > res[1].Distance {
		t.Error("results not sorted by distance")
	}
}

func TestRetrieveErrors(t *testing.T) {
	emb := hashing.NewEmbedder(64)
	gen := buildGeneration(t, emb, "hello world")

	tests := []struct {
		name  string
		r     *Retriever
		query string
		k     int
		want  error
	}{
		{"blank query", New(staticSource{gen}, emb, nil), "  ", 3, domain.ErrInvalidInput},
		{"zero k", New(staticSource{gen}, emb, nil), "hello", 0, domain.ErrInvalidInput},
		{"no index", New(staticSource{}, emb, nil), "hello", 3, domain.ErrNoData},
		{"embedder down", New(staticSource{gen}, brokenEmbedder{emb}, nil), "hello", 3, domain.ErrDependencyUnavailable},
		{"guarded embedder down", New(staticSource{gen}, embedding.Guard(brokenEmbedder{emb}, 0), nil), "hello", 3, domain.ErrDependencyUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.r.Retrieve(context.Background(), tt.query, tt.k)
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}
