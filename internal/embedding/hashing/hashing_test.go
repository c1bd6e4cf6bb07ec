package hashing

import (
	"context"
	"math"
	"testing"
)

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func TestEmbedIsDeterministicAndNormalized(t *testing.T) {
	e := NewEmbedder(64)
	ctx := context.Background()

	a, err := e.Embed(ctx, "Go concurrency with goroutines and channels")
	if err != nil {
		t.Fatal(err)
	}
	b, err := e.Embed(ctx, "Go concurrency with goroutines and channels")
	if err != nil {
		t.Fatal(err)
	}
	if len(a) != 64 || e.Dimension() != 64 {
		t.Fatalf("dimension = %d/%d, want 64", len(a), e.Dimension())
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("component %d differs between calls", i)
		}
	}
	var norm float64
	for _, v := range a {
		norm += float64(v) * float64(v)
	}
	if math.Abs(norm-1) > 1e-5 {
		t.Errorf("squared norm = %f, want 1", norm)
	}
}

func TestEmbedRanksRelatedTextHigher(t *testing.T) {
	e := NewEmbedder(DefaultDimension)
	ctx := context.Background()
	q, _ := e.Embed(ctx, "machine learning models")
	near, _ := e.Embed(ctx, "Title: ML\n\nContent: machine learning builds models from data")
	far, _ := e.Embed(ctx, "Title: Pho\n\nContent: a bowl of noodle soup with beef broth")

	if cosine(q, near) <= cosine(q, far) {
		t.Errorf("related text scored %f, unrelated %f", cosine(q, near), cosine(q, far))
	}
}

func TestEmbedRejectsEmptyText(t *testing.T) {
	if _, err := NewEmbedder(0).Embed(context.Background(), "   "); err == nil {
		t.Error("expected error for blank text")
	}
}

func TestEmbedBatchKeepsOrder(t *testing.T) {
	e := NewEmbedder(32)
	ctx := context.Background()
	texts := []string{"alpha beta", "gamma delta", "epsilon"}

	batch, err := e.EmbedBatch(ctx, texts)
	if err != nil {
		t.Fatal(err)
	}
	for i, text := range texts {
		single, _ := e.Embed(ctx, text)
		for j := range single {
			if single[j] != batch[i][j] {
				t.Fatalf("batch vector %d differs from single embed", i)
			}
		}
	}
}

func TestEmbedBatchFailsWhole(t *testing.T) {
	out, err := NewEmbedder(32).EmbedBatch(context.Background(), []string{"ok", ""})
	if err == nil || out != nil {
		t.Errorf("got %v, %v; want nil result and an error", out, err)
	}
}
