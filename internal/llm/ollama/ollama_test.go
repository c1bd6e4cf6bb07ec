package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCompleteUsesGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			http.NotFound(w, r)
			return
		}
		var req struct {
			Model  string `json:"model"`
			Prompt string `json:"prompt"`
			Stream *bool  `json:"stream"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.Stream == nil || *req.Stream {
			http.Error(w, "expected non-streaming request", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"model": req.Model, "response": "reply to " + req.Prompt + "\n", "done": true})
	}))
	defer srv.Close()

	g, err := New(Config{BaseURL: srv.URL, Model: "tiny"})
	if err != nil {
		t.Fatal(err)
	}
	out, err := g.Complete(context.Background(), "hi")
	if err != nil {
		t.Fatal(err)
	}
	if out != "reply to hi" {
		t.Errorf("completion = %q", out)
	}
	if g.Name() != "ollama:tiny" {
		t.Errorf("name = %q", g.Name())
	}
}

func TestCompleteReportsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"model crashed"}`))
	}))
	defer srv.Close()

	g, _ := New(Config{BaseURL: srv.URL})
	if _, err := g.Complete(context.Background(), "hi"); err == nil {
		t.Error("expected error")
	}
}
