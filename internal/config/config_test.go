package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("defaults differ (-want +got):\n%s", diff)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
	if cfg.Chunker.Size != 1000 || cfg.Chunker.Overlap != 200 || cfg.Server.Addr != ":5000" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadFillsProviderDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := "llm:\n  type: openai\nembedder:\n  type: openai\nstore:\n  type: mongo\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LLM.BaseURL != "https://api.groq.com/openai/v1" || cfg.LLM.APIKeyEnv != "GROQ_API_KEY" || cfg.LLM.Model != "llama-3.3-70b-versatile" {
		t.Errorf("llm defaults = %+v", cfg.LLM)
	}
	if cfg.Embedder.APIKeyEnv != "OPENAI_API_KEY" || cfg.Embedder.BatchSize != 32 {
		t.Errorf("embedder defaults = %+v", cfg.Embedder)
	}
	if cfg.Index.RefreshMode != RefreshSync {
		t.Errorf("refresh mode = %q", cfg.Index.RefreshMode)
	}
}

func TestSaveLoadKeepsValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Store = StoreConfig{Type: "file", Path: "/tmp/blog.json"}
	cfg.Index.RefreshMode = RefreshAsync
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(cfg, got); diff != "" {
		t.Errorf("config changed on save/load (-want +got):\n%s", diff)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*AppConfig)
		want   string
	}{
		{"unknown store", func(c *AppConfig) { c.Store.Type = "redis" }, "store.type"},
		{"unknown llm", func(c *AppConfig) { c.LLM.Type = "gpt" }, "llm.type"},
		{"overlap too large", func(c *AppConfig) { c.Chunker.Overlap = c.Chunker.Size }, "overlap"},
		{"file store without path", func(c *AppConfig) { c.Store.Type = "file" }, "store.path"},
		{"bad refresh mode", func(c *AppConfig) { c.Index.RefreshMode = "lazy" }, "refresh_mode"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate() = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("BLOGRAG_ADDR", ":9999")
	t.Setenv("MONGO_URI", "mongodb://db:27017")
	t.Setenv("OLLAMA_HOST", "http://gpu:11434")
	cfg := Default()
	cfg.LLM.Type = "ollama"
	cfg.ApplyEnv()
	if cfg.Server.Addr != ":9999" || cfg.Store.URI != "mongodb://db:27017" || cfg.LLM.BaseURL != "http://gpu:11434" {
		t.Errorf("env not applied: %+v", cfg)
	}
	if cfg.Embedder.BaseURL != "" {
		t.Errorf("hashing embedder got a base url %q", cfg.Embedder.BaseURL)
	}
}
