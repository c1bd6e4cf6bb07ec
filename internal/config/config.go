package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr               string  `yaml:"addr"`
	RequestTimeoutSecs int     `yaml:"request_timeout_secs"`
	RateLimit          float64 `yaml:"rate_limit"`
	RateBurst          int     `yaml:"rate_burst"`
}

// StoreConfig selects the document store: memory, file or mongo.
type StoreConfig struct {
	Type     string `yaml:"type"`
	Path     string `yaml:"path,omitempty"`
	URI      string `yaml:"uri,omitempty"`
	Database string `yaml:"database,omitempty"`
}

// ChunkerConfig configures how documents are split into chunks.
type ChunkerConfig struct {
	Type              string `yaml:"type"`
	Size              int    `yaml:"size"`
	Overlap           int    `yaml:"overlap"`
	SentencesPerChunk int    `yaml:"sentences_per_chunk,omitempty"`
	OverlapSentences  int    `yaml:"overlap_sentences,omitempty"`
}

// EmbedderConfig selects and configures the text embedder: hashing, openai
// or ollama.
type EmbedderConfig struct {
	Type        string `yaml:"type"`
	Model       string `yaml:"model,omitempty"`
	BaseURL     string `yaml:"base_url,omitempty"`
	APIKeyEnv   string `yaml:"api_key_env,omitempty"`
	Dimension   int    `yaml:"dimension,omitempty"`
	BatchSize   int    `yaml:"batch_size,omitempty"`
	Concurrency int    `yaml:"concurrency,omitempty"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// LLMConfig selects and configures the generative model: openai (any
// OpenAI-compatible API, Groq by default), ollama or extractive.
type LLMConfig struct {
	Type         string  `yaml:"type"`
	Model        string  `yaml:"model,omitempty"`
	BaseURL      string  `yaml:"base_url,omitempty"`
	APIKeyEnv    string  `yaml:"api_key_env,omitempty"`
	Temperature  float32 `yaml:"temperature"`
	MaxTokens    int     `yaml:"max_tokens,omitempty"`
	TimeoutSecs  int     `yaml:"timeout_secs"`
	MaxRetries   int     `yaml:"max_retries"`
	MaxSentences int     `yaml:"max_sentences,omitempty"`
}

// IndexConfig controls when the index is rebuilt after writes.
type IndexConfig struct {
	RefreshMode string `yaml:"refresh_mode"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Server   ServerConfig   `yaml:"server"`
	Store    StoreConfig    `yaml:"store"`
	Chunker  ChunkerConfig  `yaml:"chunker"`
	Embedder EmbedderConfig `yaml:"embedder"`
	LLM      LLMConfig      `yaml:"llm"`
	Index    IndexConfig    `yaml:"index"`
	Log      LogConfig      `yaml:"log"`
}

const (
	RefreshSync  = "sync"
	RefreshAsync = "async"
)

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/blograg/config.yaml.
// If neither exists, it writes defaults to ~/.config/blograg/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := Default()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ApplyEnv overrides endpoints from the environment. API keys are never
// stored in the file; providers read them from the env var named by
// api_key_env.
func (c *AppConfig) ApplyEnv() {
	if v := os.Getenv("BLOGRAG_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("MONGO_URI"); v != "" {
		c.Store.URI = v
	}
	if v := os.Getenv("OLLAMA_HOST"); v != "" {
		if c.Embedder.Type == "ollama" && c.Embedder.BaseURL == "" {
			c.Embedder.BaseURL = v
		}
		if c.LLM.Type == "ollama" && c.LLM.BaseURL == "" {
			c.LLM.BaseURL = v
		}
	}
}

// Validate rejects unknown provider names and impossible chunk geometry.
func (c *AppConfig) Validate() error {
	var errs []error
	check := func(field, value string, allowed ...string) {
		for _, a := range allowed {
			if value == a {
				return
			}
		}
		errs = append(errs, fmt.Errorf("%s: unknown value %q (want one of %v)", field, value, allowed))
	}
	check("store.type", c.Store.Type, "memory", "file", "mongo")
	check("chunker.type", c.Chunker.Type, "recursive", "sentence")
	check("embedder.type", c.Embedder.Type, "hashing", "openai", "ollama")
	check("llm.type", c.LLM.Type, "openai", "ollama", "extractive")
	check("index.refresh_mode", c.Index.RefreshMode, RefreshSync, RefreshAsync)
	if c.Chunker.Overlap < 0 || c.Chunker.Overlap >= c.Chunker.Size {
		errs = append(errs, fmt.Errorf("chunker: overlap %d must be in [0, size %d)", c.Chunker.Overlap, c.Chunker.Size))
	}
	if c.Store.Type == "file" && c.Store.Path == "" {
		errs = append(errs, errors.New("store.path is required for the file store"))
	}
	return errors.Join(errs...)
}

func (c ServerConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSecs) * time.Second
}

func (c EmbedderConfig) Timeout() time.Duration { return time.Duration(c.TimeoutSecs) * time.Second }

func (c LLMConfig) Timeout() time.Duration { return time.Duration(c.TimeoutSecs) * time.Second }

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "blograg", "config.yaml"), nil
}

// Default returns a configuration that runs fully offline.
func Default() *AppConfig {
	cfg := &AppConfig{
		Server:   ServerConfig{Addr: ":5000"},
		Store:    StoreConfig{Type: "memory"},
		Chunker:  ChunkerConfig{Type: "recursive"},
		Embedder: EmbedderConfig{Type: "hashing"},
		LLM:      LLMConfig{Type: "extractive", Temperature: 0.7},
		Index:    IndexConfig{RefreshMode: RefreshSync},
		Log:      LogConfig{Level: "info"},
	}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":5000"
	}
	if cfg.Server.RequestTimeoutSecs == 0 {
		cfg.Server.RequestTimeoutSecs = 120
	}
	if cfg.Server.RateLimit == 0 {
		cfg.Server.RateLimit = 10
	}
	if cfg.Server.RateBurst == 0 {
		cfg.Server.RateBurst = 20
	}
	if cfg.Store.Type == "" {
		cfg.Store.Type = "memory"
	}
	if cfg.Chunker.Type == "" {
		cfg.Chunker.Type = "recursive"
	}
	if cfg.Chunker.Size == 0 {
		cfg.Chunker.Size = 1000
	}
	if cfg.Chunker.Type == "recursive" && cfg.Chunker.Overlap == 0 {
		cfg.Chunker.Overlap = 200
	}
	if cfg.Chunker.Type == "sentence" {
		if cfg.Chunker.SentencesPerChunk == 0 {
			cfg.Chunker.SentencesPerChunk = 5
		}
		if cfg.Chunker.OverlapSentences == 0 {
			cfg.Chunker.OverlapSentences = 1
		}
	}
	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = "hashing"
	}
	if cfg.Embedder.TimeoutSecs == 0 {
		cfg.Embedder.TimeoutSecs = 30
	}
	switch cfg.Embedder.Type {
	case "hashing":
		if cfg.Embedder.Dimension == 0 {
			cfg.Embedder.Dimension = 512
		}
	case "openai":
		if cfg.Embedder.BaseURL == "" {
			cfg.Embedder.BaseURL = "https://api.openai.com/v1"
		}
		if cfg.Embedder.APIKeyEnv == "" {
			cfg.Embedder.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.Embedder.Model == "" {
			cfg.Embedder.Model = "text-embedding-3-small"
		}
		if cfg.Embedder.BatchSize == 0 {
			cfg.Embedder.BatchSize = 32
		}
	case "ollama":
		if cfg.Embedder.Model == "" {
			cfg.Embedder.Model = "nomic-embed-text"
		}
	}
	if cfg.LLM.Type == "" {
		cfg.LLM.Type = "extractive"
	}
	if cfg.LLM.TimeoutSecs == 0 {
		cfg.LLM.TimeoutSecs = 60
	}
	if cfg.LLM.Type == "openai" {
		if cfg.LLM.BaseURL == "" {
			cfg.LLM.BaseURL = "https://api.groq.com/openai/v1"
		}
		if cfg.LLM.APIKeyEnv == "" {
			cfg.LLM.APIKeyEnv = "GROQ_API_KEY"
		}
		if cfg.LLM.Model == "" {
			cfg.LLM.Model = "llama-3.3-70b-versatile"
		}
		if cfg.LLM.MaxRetries == 0 {
			cfg.LLM.MaxRetries = 2
		}
	}
	if cfg.Index.RefreshMode == "" {
		cfg.Index.RefreshMode = RefreshSync
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}
