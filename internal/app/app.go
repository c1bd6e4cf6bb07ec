// Package app assembles the service from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"blograg/internal/api"
	"blograg/internal/chunker"
	"blograg/internal/config"
	"blograg/internal/domain"
	"blograg/internal/embedding"
	"blograg/internal/embedding/hashing"
	embollama "blograg/internal/embedding/ollama"
	embopenai "blograg/internal/embedding/openai"
	"blograg/internal/indexer"
	"blograg/internal/llm"
	"blograg/internal/llm/extractive"
	llmollama "blograg/internal/llm/ollama"
	llmopenai "blograg/internal/llm/openai"
	"blograg/internal/metrics"
	"blograg/internal/retriever"
	"blograg/internal/service"
	"blograg/internal/store/file"
	"blograg/internal/store/memory"
	"blograg/internal/store/mongo"
)

// App holds the wired components of one process.
type App struct {
	Config    *config.AppConfig
	Log       *zap.Logger
	Metrics   *metrics.Metrics
	Store     domain.DocumentStore
	Embedder  domain.Embedder
	Generator domain.Generator
	Indexer   *indexer.Controller
	RAG       *service.RAGService
}

// New builds every component named by cfg. Nothing is indexed yet; call
// Start before serving.
func New(ctx context.Context, cfg *config.AppConfig, log *zap.Logger) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	m := metrics.New()

	ch, err := newChunker(cfg.Chunker)
	if err != nil {
		return nil, err
	}
	emb, err := newEmbedder(cfg.Embedder)
	if err != nil {
		return nil, err
	}
	gen, err := newGenerator(cfg.LLM)
	if err != nil {
		return nil, err
	}
	st, err := newStore(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}

	guardedEmb := embedding.Guard(emb, cfg.Embedder.Timeout())
	guardedGen := llm.Guard(gen, cfg.LLM.Timeout(), cfg.LLM.MaxRetries, log, m)
	ctl := indexer.New(st, ch, guardedEmb,
		indexer.WithLogger(log),
		indexer.WithMetrics(m),
		indexer.WithAsync(cfg.Index.RefreshMode == config.RefreshAsync),
	)
	rag := service.NewRAGService(retriever.New(ctl, guardedEmb, m), st, guardedGen, log)

	log.Info("components ready",
		zap.String("store", cfg.Store.Type),
		zap.String("chunker", cfg.Chunker.Type),
		zap.String("embedder", emb.Name()),
		zap.String("llm", gen.Name()),
		zap.String("refresh_mode", cfg.Index.RefreshMode),
	)
	return &App{
		Config:    cfg,
		Log:       log,
		Metrics:   m,
		Store:     st,
		Embedder:  guardedEmb,
		Generator: guardedGen,
		Indexer:   ctl,
		RAG:       rag,
	}, nil
}

// Start builds the first index generation and, in async mode, starts the
// refresh worker, which stops with ctx. An empty store is not an error; a
// failed first build is logged and left to the next refresh.
func (a *App) Start(ctx context.Context) {
	if a.Config.Index.RefreshMode == config.RefreshAsync {
		go a.Indexer.Run(ctx)
	}
	if _, err := a.Indexer.Refresh(ctx); err != nil && !errors.Is(err, domain.ErrNoData) {
		a.Log.Warn("initial index build failed", zap.Error(err))
	}
}

// Server returns the HTTP server for this app.
func (a *App) Server() *api.Server {
	return api.NewServer(api.Deps{
		Store:          a.Store,
		Indexer:        a.Indexer,
		RAG:            a.RAG,
		Log:            a.Log,
		Metrics:        a.Metrics,
		Limiter:        api.NewRateLimiter(a.Config.Server.RateLimit, a.Config.Server.RateBurst),
		RequestTimeout: a.Config.Server.RequestTimeout(),
	})
}

// Close releases the document store.
func (a *App) Close(ctx context.Context) error {
	return a.Store.Close(ctx)
}

func newChunker(cfg config.ChunkerConfig) (domain.Chunker, error) {
	switch cfg.Type {
	case "recursive", "":
		return chunker.NewRecursiveChunker(cfg.Size, cfg.Overlap)
	case "sentence":
		return chunker.NewSentenceChunker(cfg.SentencesPerChunk, cfg.OverlapSentences), nil
	default:
		return nil, fmt.Errorf("unknown chunker: %s", cfg.Type)
	}
}

func newEmbedder(cfg config.EmbedderConfig) (domain.Embedder, error) {
	switch cfg.Type {
	case "hashing", "":
		return hashing.NewEmbedder(cfg.Dimension), nil
	case "openai":
		c, err := embopenai.NewClient(embopenai.Config{
			BaseURL:     cfg.BaseURL,
			APIKeyEnv:   cfg.APIKeyEnv,
			Model:       cfg.Model,
			Timeout:     cfg.Timeout(),
			BatchSize:   cfg.BatchSize,
			Concurrency: cfg.Concurrency,
		})
		if err != nil {
			return nil, fmt.Errorf("openai embedder init failed: %w", err)
		}
		return c, nil
	case "ollama":
		e, err := embollama.New(embollama.Config{
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Timeout:     cfg.Timeout(),
			BatchSize:   cfg.BatchSize,
			Concurrency: cfg.Concurrency,
		})
		if err != nil {
			return nil, fmt.Errorf("ollama embedder init failed: %w", err)
		}
		return e, nil
	default:
		return nil, fmt.Errorf("unknown embedder: %s", cfg.Type)
	}
}

func newGenerator(cfg config.LLMConfig) (domain.Generator, error) {
	switch cfg.Type {
	case "extractive", "":
		return extractive.New(cfg.MaxSentences), nil
	case "openai":
		c, err := llmopenai.New(llmopenai.Config{
			BaseURL:     cfg.BaseURL,
			APIKeyEnv:   cfg.APIKeyEnv,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
		})
		if err != nil {
			return nil, fmt.Errorf("openai llm init failed: %w", err)
		}
		return c, nil
	case "ollama":
		g, err := llmollama.New(llmollama.Config{
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
		})
		if err != nil {
			return nil, fmt.Errorf("ollama llm init failed: %w", err)
		}
		return g, nil
	default:
		return nil, fmt.Errorf("unknown llm: %s", cfg.Type)
	}
}

const storeConnectTimeout = 10 * time.Second

func newStore(ctx context.Context, cfg config.StoreConfig) (domain.DocumentStore, error) {
	switch cfg.Type {
	case "memory", "":
		return memory.New(), nil
	case "file":
		return file.Open(cfg.Path)
	case "mongo":
		ctx, cancel := context.WithTimeout(ctx, storeConnectTimeout)
		defer cancel()
		return mongo.Open(ctx, cfg.URI, cfg.Database)
	default:
		return nil, fmt.Errorf("unknown store: %s", cfg.Type)
	}
}
