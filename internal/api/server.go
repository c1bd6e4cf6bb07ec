package api

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"blograg/internal/domain"
	"blograg/internal/indexer"
	"blograg/internal/metrics"
	"blograg/internal/service"
)

// Indexer is the part of the refresh controller the HTTP layer drives.
type Indexer interface {
	Current() *indexer.Generation
	Refresh(ctx context.Context) (*indexer.Generation, error)
	Schedule(ctx context.Context) error
}

// RAG is the question answering surface.
type RAG interface {
	Answer(ctx context.Context, query string) (string, error)
	SmartSearch(ctx context.Context, query string) (service.SmartSearchResult, error)
	Recommend(ctx context.Context, id domain.DocumentID) ([]service.Recommendation, error)
	Summarize(ctx context.Context, id domain.DocumentID) (string, error)
	Analyze(ctx context.Context, id domain.DocumentID) (service.Analysis, error)
	Generate(ctx context.Context, topic, style string) (string, error)
}

// Deps are the collaborators of the HTTP server.
type Deps struct {
	Store   domain.DocumentStore
	Indexer Indexer
	RAG     RAG
	Log     *zap.Logger
	Metrics *metrics.Metrics
	Limiter *RateLimiter
	// RequestTimeout bounds each request's context; zero disables it.
	RequestTimeout time.Duration
}

// Server exposes documents, users, seeding and the RAG operations as JSON
// over HTTP.
type Server struct {
	store   domain.DocumentStore
	indexer Indexer
	rag     RAG
	log     *zap.Logger
	metrics *metrics.Metrics
	limiter *RateLimiter
	timeout time.Duration
}

func NewServer(d Deps) *Server {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		store:   d.Store,
		indexer: d.Indexer,
		rag:     d.RAG,
		log:     log.Named("http"),
		metrics: d.Metrics,
		limiter: d.Limiter,
		timeout: d.RequestTimeout,
	}
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.health)

	mux.HandleFunc("GET /api/blogs", s.listBlogs)
	mux.HandleFunc("GET /api/blogs/{id}", s.getBlog)
	mux.HandleFunc("POST /api/blogs", s.createBlog)
	mux.HandleFunc("POST /api/users", s.createUser)
	mux.HandleFunc("POST /api/seed", s.seed)
	mux.HandleFunc("POST /api/reindex", s.reindex)

	mux.HandleFunc("POST /api/chat/search", s.search)
	mux.HandleFunc("POST /api/chat/smart-search", s.smartSearch)
	mux.HandleFunc("POST /api/chat/recommend", s.recommend)
	mux.HandleFunc("POST /api/chat/summarize", s.summarize)
	mux.HandleFunc("POST /api/chat/analyze", s.analyze)
	mux.HandleFunc("POST /api/chat/generate", s.generate)

	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}
	// The access log sits inside the timeout so it sees the request the mux
	// fills in with the matched pattern. Requests refused by the rate limiter
	// never reach the mux and are labelled rate_limited.
	return s.withRequestID(s.withTimeout(s.withAccessLog(s.withRateLimit(mux))))
}
