package api

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"blograg/internal/domain"
	"blograg/internal/seed"
	"blograg/internal/service"
)

type healthResponse struct {
	Status       string `json:"status"`
	Message      string `json:"message"`
	IndexVersion uint64 `json:"index_version"`
	Documents    int    `json:"documents"`
	Chunks       int    `json:"chunks"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Message: "server is running"}
	if gen := s.indexer.Current(); gen != nil {
		resp.IndexVersion = gen.Version
		resp.Documents = gen.Documents
		resp.Chunks = gen.Chunks
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) listBlogs(w http.ResponseWriter, r *http.Request) {
	docs, err := s.store.ListDocuments(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if docs == nil {
		docs = []domain.Document{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"blogs": docs})
}

// getBlog returns the document as stored before this view is counted.
func (s *Server) getBlog(w http.ResponseWriter, r *http.Request) {
	id := domain.DocumentID(r.PathValue("id"))
	doc, err := s.store.FindDocument(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.store.IncrementViews(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"blog": doc})
}

type createBlogRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Author   string `json:"author"`
	Category string `json:"category"`
}

type createBlogResponse struct {
	Message string            `json:"message"`
	BlogID  domain.DocumentID `json:"blog_id"`
	Indexed bool              `json:"indexed"`
}

// createBlog stores the post and then refreshes the index. A failed refresh
// does not undo the write; the post is picked up by the next refresh.
func (s *Server) createBlog(w http.ResponseWriter, r *http.Request) {
	var req createBlogRequest
	if err := decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	id, err := s.store.InsertDocument(r.Context(), domain.NewDocument(req.Title, req.Content, req.Author, req.Category))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	resp := createBlogResponse{Message: "blog created", BlogID: id, Indexed: true}
	if err := s.indexer.Schedule(r.Context()); err != nil {
		s.log.Warn("refresh after create failed, previous index still serving",
			zap.String("request_id", RequestID(r.Context())),
			zap.String("blog_id", id.String()),
			zap.Error(err))
		resp.Indexed = false
	}
	writeJSON(w, http.StatusOK, resp)
}

type createUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	id, err := s.store.InsertUser(r.Context(), domain.User{Username: req.Username, Email: req.Email})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "user created", "user_id": id})
}

type seedResponse struct {
	Message string `json:"message"`
	seed.Result
}

func (s *Server) seed(w http.ResponseWriter, r *http.Request) {
	res, err := seed.Run(r.Context(), s.store)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.indexer.Schedule(r.Context()); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, seedResponse{Message: "sample data created", Result: res})
}

type reindexResponse struct {
	Message   string `json:"message"`
	Version   uint64 `json:"version"`
	Documents int    `json:"documents"`
	Chunks    int    `json:"chunks"`
}

// reindex always rebuilds inline so the response reports the new generation.
// An empty store is a successful reindex with nothing in it.
func (s *Server) reindex(w http.ResponseWriter, r *http.Request) {
	gen, err := s.indexer.Refresh(r.Context())
	if err != nil && !errors.Is(err, domain.ErrNoData) {
		s.fail(w, r, err)
		return
	}
	resp := reindexResponse{Message: "index rebuilt"}
	if gen != nil {
		resp.Version, resp.Documents, resp.Chunks = gen.Version, gen.Documents, gen.Chunks
	}
	writeJSON(w, http.StatusOK, resp)
}

type queryRequest struct {
	Query string `json:"query"`
}

type answerResponse struct {
	Answer string `json:"answer"`
	Query  string `json:"query"`
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := required("query", req.Query); err != nil {
		s.fail(w, r, err)
		return
	}
	answer, err := s.rag.Answer(r.Context(), req.Query)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, answerResponse{Answer: answer, Query: req.Query})
}

func (s *Server) smartSearch(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := required("query", req.Query); err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.rag.SmartSearch(r.Context(), req.Query)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if res.Sources == nil {
		res.Sources = []service.Source{}
	}
	writeJSON(w, http.StatusOK, res)
}

// blogRequest accepts both the historical blog_id field and document_id.
type blogRequest struct {
	BlogID     domain.DocumentID `json:"blog_id"`
	DocumentID domain.DocumentID `json:"document_id"`
}

func (b blogRequest) id() domain.DocumentID {
	if b.BlogID != "" {
		return b.BlogID
	}
	return b.DocumentID
}

func (s *Server) recommend(w http.ResponseWriter, r *http.Request) {
	var req blogRequest
	if err := decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	recs, err := s.rag.Recommend(r.Context(), req.id())
	if err != nil {
		s.failWith(w, r, err, http.StatusBadRequest)
		return
	}
	if recs == nil {
		recs = []service.Recommendation{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"recommendations": recs})
}

func (s *Server) summarize(w http.ResponseWriter, r *http.Request) {
	var req blogRequest
	if err := decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	summary, err := s.rag.Summarize(r.Context(), req.id())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"summary": summary})
}

func (s *Server) analyze(w http.ResponseWriter, r *http.Request) {
	var req blogRequest
	if err := decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	a, err := s.rag.Analyze(r.Context(), req.id())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

type generateRequest struct {
	Topic string `json:"topic"`
	Style string `json:"style"`
}

type generateResponse struct {
	GeneratedContent string `json:"generated_content"`
	Topic            string `json:"topic"`
}

func (s *Server) generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := required("topic", req.Topic); err != nil {
		s.fail(w, r, err)
		return
	}
	content, err := s.rag.Generate(r.Context(), req.Topic, req.Style)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, generateResponse{GeneratedContent: content, Topic: req.Topic})
}
