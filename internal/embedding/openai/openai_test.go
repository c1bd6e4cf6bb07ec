package openai

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

type embeddingsRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	t.Setenv("TEST_EMBED_KEY", "sk-test")
	c, err := NewClient(Config{BaseURL: srv.URL, APIKeyEnv: "TEST_EMBED_KEY", Model: "test-embed", BatchSize: 2, Concurrency: 2})
	if err != nil {
		t.Fatal(err)
	}
	return c
}

// echoHandler returns, for input i, a vector [i+1, 0] listed in reverse order.
func echoHandler(calls *atomic.Int32) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path != "/embeddings" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		var req embeddingsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		data := make([]map[string]any, 0, len(req.Input))
		for i := len(req.Input) - 1; i >= 0; i-- {
			var marker float64
			for _, ch := range req.Input[i] {
				marker += float64(ch)
			}
			data = append(data, map[string]any{"object": "embedding", "index": i, "embedding": []float64{marker, 0}})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"object": "list", "model": req.Model, "data": data})
	}
}

func TestEmbedNormalizesAndLearnsDimension(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, echoHandler(&calls))

	if c.Dimension() != 0 {
		t.Fatalf("dimension before first call = %d", c.Dimension())
	}
	v, err := c.Embed(context.Background(), "abc")
	if err != nil {
		t.Fatal(err)
	}
	if len(v) != 2 || math.Abs(float64(v[0])-1) > 1e-6 || v[1] != 0 {
		t.Errorf("vector = %v, want unit [1 0]", v)
	}
	if c.Dimension() != 2 {
		t.Errorf("dimension = %d, want 2", c.Dimension())
	}
	if c.Name() != "openai:test-embed" {
		t.Errorf("name = %q", c.Name())
	}
}

func TestEmbedBatchOrdersByIndex(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		var req embeddingsRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		data := make([]map[string]any, 0, len(req.Input))
		for i := len(req.Input) - 1; i >= 0; i-- {
			vec := []float64{0, 1}
			if req.Input[i] == "x" {
				vec = []float64{1, 0}
			}
			data = append(data, map[string]any{"object": "embedding", "index": i, "embedding": vec})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"object": "list", "data": data})
	})

	vecs, err := c.EmbedBatch(context.Background(), []string{"x", "y", "x", "y", "x"})
	if err != nil {
		t.Fatal(err)
	}
	if calls.Load() != 3 {
		t.Errorf("requests = %d, want 3 with batch size 2", calls.Load())
	}
	for i, v := range vecs {
		wantX := i%2 == 0
		if (v[0] == 1) != wantX {
			t.Errorf("vector %d = %v out of order", i, v)
		}
	}
}

func TestEmbedBatchFailsOnServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"overloaded"}}`, http.StatusServiceUnavailable)
	})
	out, err := c.EmbedBatch(context.Background(), []string{"a", "b", "c"})
	if err == nil || out != nil {
		t.Errorf("got %v, %v; want nil and an error", out, err)
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	t.Setenv("EMPTY_EMBED_KEY", "")
	if _, err := NewClient(Config{APIKeyEnv: "EMPTY_EMBED_KEY"}); err == nil {
		t.Error("expected error without API key")
	}
}
