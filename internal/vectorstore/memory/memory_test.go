package memory

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"blograg/internal/domain"
	"blograg/internal/vectorstore"
)

var _ vectorstore.Index = (*Index)(nil)

type tableEmbedder struct {
	vectors map[string][]float32
	calls   int
}

func (e *tableEmbedder) Name() string   { return "table" }
func (e *tableEmbedder) Dimension() int { return 2 }
func (e *tableEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	v, ok := e.vectors[text]
	if !ok {
		return nil, fmt.Errorf("no vector for %q", text)
	}
	return v, nil
}
func (e *tableEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	e.calls++
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := e.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func chunks(texts ...string) []domain.Chunk {
	out := make([]domain.Chunk, len(texts))
	for i, t := range texts {
		out[i] = domain.Chunk{Text: t, DocumentID: domain.DocumentID(t), Index: 0}
	}
	return out
}

func ids(rs []domain.SearchResult) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Chunk.Text
	}
	return out
}

func TestSearchOrdersByDistance(t *testing.T) {
	emb := &tableEmbedder{vectors: map[string][]float32{
		"east":      {1, 0},
		"north":     {0, 1},
		"northeast": {1, 1},
		"west":      {-1, 0},
	}}
	idx, err := Build(context.Background(), emb, chunks("north", "west", "east", "northeast"))
	if err != nil {
		t.Fatal(err)
	}
	if emb.calls != 1 {
		t.Errorf("EmbedBatch calls = %d, want 1", emb.calls)
	}

	got, err := idx.Search([]float32{2, 0}, 4)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"east", "northeast", "north", "west"}, ids(got)); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	wantDist := []float64{0, 1 - 1/math.Sqrt2, 1, 2}
	for i, r := range got {
		if math.Abs(r.Distance-wantDist[i]) > 1e-6 {
			t.Errorf("result %d distance = %f, want %f", i, r.Distance, wantDist[i])
		}
	}
}

func TestSearchTiesKeepInsertionOrder(t *testing.T) {
	emb := &tableEmbedder{vectors: map[string][]float32{"a": {1, 0}, "b": {2, 0}, "c": {0, 1}, "d": {3, 0}}}
	idx, err := Build(context.Background(), emb, chunks("c", "b", "a", "d"))
	if err != nil {
		t.Fatal(err)
	}
	got, _ := idx.Search([]float32{1, 0}, 3)
	if diff := cmp.Diff([]string{"b", "a", "d"}, ids(got)); diff != "" {
		t.Errorf("tie order mismatch (-want +got):\n%s", diff)
	}
}

func TestSearchCapsAtCorpusSize(t *testing.T) {
	idx, err := New(chunks("a", "b"), [][]float32{{1, 0}, {0, 1}})
	if err != nil {
		t.Fatal(err)
	}
	got, err := idx.Search([]float32{1, 0}, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("got %d results, want 2", len(got))
	}
}

func TestSearchRejectsBadInput(t *testing.T) {
	idx, _ := New(chunks("a"), [][]float32{{1, 0}})
	for _, k := range []int{0, -3} {
		if _, err := idx.Search([]float32{1, 0}, k); !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("k=%d: error = %v, want invalid input", k, err)
		}
	}
	if _, err := idx.Search([]float32{1, 0, 0}, 1); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("dimension mismatch error = %v", err)
	}
}

func TestBuildEmptyCorpus(t *testing.T) {
	_, err := Build(context.Background(), &tableEmbedder{}, nil)
	if !errors.Is(err, domain.ErrEmptyCorpus) {
		t.Errorf("error = %v, want empty corpus", err)
	}
}

func TestBuildPropagatesEmbedderFailure(t *testing.T) {
	emb := &tableEmbedder{vectors: map[string][]float32{"a": {1, 0}}}
	if _, err := Build(context.Background(), emb, chunks("a", "missing")); err == nil {
		t.Error("expected error when a chunk cannot be embedded")
	}
}

func TestNewRejectsMixedDimensions(t *testing.T) {
	if _, err := New(chunks("a", "b"), [][]float32{{1, 0}, {1, 0, 0}}); err == nil {
		t.Error("expected dimension mismatch error")
	}
	if _, err := New(chunks("a"), nil); err == nil {
		t.Error("expected length mismatch error")
	}
}

func TestIndexIsIsolatedFromInputs(t *testing.T) {
	vecs := [][]float32{{1, 0}, {0, 1}}
	cs := chunks("a", "b")
	idx, _ := New(cs, vecs)
	vecs[0][0] = -1
	cs[0].Text = "mutated"

	got, _ := idx.Search([]float32{1, 0}, 1)
	if got[0].Chunk.Text != "a" || got[0].Distance != 0 {
		t.Errorf("index changed after caller mutated inputs: %+v", got[0])
	}
}

func TestConcurrentSearch(t *testing.T) {
	idx, _ := New(chunks("a", "b", "c"), [][]float32{{1, 0}, {0, 1}, {1, 1}})
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := idx.Search([]float32{1, 0}, 2); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()
}
