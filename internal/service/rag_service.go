package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"blograg/internal/domain"
	"blograg/internal/metrics"
)

const (
	AnswerTopK         = 3
	SmartSearchTopK    = 5
	RecommendTopK      = 4
	MaxRecommendations = 3
	CorpusSummaryDocs  = 5
	DefaultStyle       = "professional"
)

// Text limits, in characters (runes).
const (
	SnippetLength    = 200
	RecommendExcerpt = 200
	CorpusExcerpt    = 500
)

// NothingFound is the smart search answer when no source matched.
const NothingFound = "Sorry, I couldn't find any blog matching your question."

// Retriever finds the chunks closest to a query in the serving index.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]domain.SearchResult, error)
	Ready() bool
}

// Source is one deduplicated document behind a smart search answer.
type Source struct {
	DocumentID domain.DocumentID `json:"document_id"`
	Title      string            `json:"title"`
	Category   string            `json:"category"`
	Snippet    string            `json:"snippet"`
}

type SmartSearchResult struct {
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources"`
	Query   string   `json:"query"`
}

type Recommendation struct {
	Title      string            `json:"title"`
	DocumentID domain.DocumentID `json:"document_id"`
}

type Analysis struct {
	Analysis string `json:"analysis"`
	Title    string `json:"blog_title"`
}

// RAGService answers questions about the stored documents with retrieval
// plus a generative model.
type RAGService struct {
	retriever Retriever
	docs      domain.DocumentSource
	llm       domain.Generator
	log       *zap.Logger
}

func NewRAGService(retriever Retriever, docs domain.DocumentSource, llm domain.Generator, log *zap.Logger) *RAGService {
	if log == nil {
		log = zap.NewNop()
	}
	return &RAGService{retriever: retriever, docs: docs, llm: llm, log: log.Named("rag")}
}

// Answer retrieves the closest chunks and asks the model to answer from
// them only.
func (s *RAGService) Answer(ctx context.Context, query string) (answer string, err error) {
	ctx, span := metrics.StartSpan(ctx, "rag.Answer")
	defer func() { metrics.EndSpan(span, err) }()

	results, err := s.retriever.Retrieve(ctx, query, AnswerTopK)
	if err != nil {
		return "", err
	}
	texts := make([]string, len(results))
	for i, r := range results {
		texts[i] = r.Chunk.Text
	}
	s.log.Debug("answering", zap.String("query", query), zap.Int("chunks", len(results)))
	return s.llm.Complete(ctx, answerPrompt(strings.Join(texts, "\n\n"), query))
}

// SmartSearch returns the distinct documents behind the closest chunks and
// a short model-written note on why they match. The model is not called
// when nothing matched.
func (s *RAGService) SmartSearch(ctx context.Context, query string) (res SmartSearchResult, err error) {
	ctx, span := metrics.StartSpan(ctx, "rag.SmartSearch")
	defer func() { metrics.EndSpan(span, err) }()

	results, err := s.retriever.Retrieve(ctx, query, SmartSearchTopK)
	if err != nil {
		return SmartSearchResult{}, err
	}
	res = SmartSearchResult{Sources: dedupeSources(results), Query: query}
	span.SetAttributes(attribute.Int("sources", len(res.Sources)))
	if len(res.Sources) == 0 {
		res.Answer = NothingFound
		return res, nil
	}
	res.Answer, err = s.llm.Complete(ctx, smartSearchPrompt(query, res.Sources))
	if err != nil {
		return SmartSearchResult{}, err
	}
	return res, nil
}

// Recommend finds up to MaxRecommendations other documents similar to id,
// using its title and opening as the query.
func (s *RAGService) Recommend(ctx context.Context, id domain.DocumentID) (recs []Recommendation, err error) {
	ctx, span := metrics.StartSpan(ctx, "rag.Recommend", attribute.String("document.id", id.String()))
	defer func() { metrics.EndSpan(span, err) }()

	if id == "" {
		return nil, fmt.Errorf("%w: document id is required", domain.ErrInvalidInput)
	}
	if !s.retriever.Ready() {
		return nil, fmt.Errorf("%w: index is empty, seed some documents first", domain.ErrNoData)
	}
	doc, err := s.docs.FindDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	results, err := s.retriever.Retrieve(ctx, doc.Title+" "+prefix(doc.Body, RecommendExcerpt), RecommendTopK)
	if err != nil {
		return nil, err
	}
	recs = []Recommendation{}
	seen := map[domain.DocumentID]bool{id: true}
	for _, r := range results {
		if seen[r.Chunk.DocumentID] {
			continue
		}
		seen[r.Chunk.DocumentID] = true
		recs = append(recs, Recommendation{Title: r.Chunk.Title, DocumentID: r.Chunk.DocumentID})
		if len(recs) == MaxRecommendations {
			break
		}
	}
	return recs, nil
}

// Summarize summarizes one document, or the first CorpusSummaryDocs
// documents when id is empty.
func (s *RAGService) Summarize(ctx context.Context, id domain.DocumentID) (summary string, err error) {
	ctx, span := metrics.StartSpan(ctx, "rag.Summarize")
	defer func() { metrics.EndSpan(span, err) }()

	var content string
	if id != "" {
		doc, err := s.docs.FindDocument(ctx, id)
		if err != nil {
			return "", err
		}
		content = documentSummaryText(doc)
	} else {
		docs, err := s.docs.ListDocuments(ctx)
		if err != nil {
			return "", fmt.Errorf("list documents: %w", err)
		}
		if len(docs) == 0 {
			return "", fmt.Errorf("%w: no documents to summarize", domain.ErrNoData)
		}
		content = corpusSummaryText(docs[:min(len(docs), CorpusSummaryDocs)], CorpusExcerpt)
	}
	return s.llm.Complete(ctx, summarizePrompt(content))
}

// Analyze asks the model for sentiment, topics, keywords and a quality
// assessment of one document.
func (s *RAGService) Analyze(ctx context.Context, id domain.DocumentID) (a Analysis, err error) {
	ctx, span := metrics.StartSpan(ctx, "rag.Analyze")
	defer func() { metrics.EndSpan(span, err) }()

	if id == "" {
		return Analysis{}, fmt.Errorf("%w: document id is required", domain.ErrInvalidInput)
	}
	doc, err := s.docs.FindDocument(ctx, id)
	if err != nil {
		return Analysis{}, err
	}
	out, err := s.llm.Complete(ctx, analyzePrompt(doc))
	if err != nil {
		return Analysis{}, err
	}
	return Analysis{Analysis: out, Title: doc.Title}, nil
}

// Generate drafts a new post on topic. An empty style means DefaultStyle.
func (s *RAGService) Generate(ctx context.Context, topic, style string) (content string, err error) {
	ctx, span := metrics.StartSpan(ctx, "rag.Generate")
	defer func() { metrics.EndSpan(span, err) }()

	topic = strings.TrimSpace(topic)
	if topic == "" {
		return "", fmt.Errorf("%w: topic is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(style) == "" {
		style = DefaultStyle
	}
	return s.llm.Complete(ctx, generatePrompt(topic, style))
}

// dedupeSources keeps the first chunk of each document, in rank order.
func dedupeSources(results []domain.SearchResult) []Source {
	sources := []Source{}
	seen := make(map[domain.DocumentID]bool, len(results))
	for _, r := range results {
		if r.Chunk.DocumentID == "" || seen[r.Chunk.DocumentID] {
			continue
		}
		seen[r.Chunk.DocumentID] = true
		sources = append(sources, Source{
			DocumentID: r.Chunk.DocumentID,
			Title:      r.Chunk.Title,
			Category:   r.Chunk.Category,
			Snippet:    truncate(r.Chunk.Text, SnippetLength),
		})
	}
	return sources
}

// prefix returns the first n runes of s.
func prefix(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// truncate is prefix with "..." appended when s was cut.
func truncate(s string, n int) string {
	if p := prefix(s, n); len(p) < len(s) {
		return p + "..."
	}
	return s
}
