package service

import (
	"context"
	"errors"
	"testing"

	"blograg/internal/chunker"
	"blograg/internal/domain"
	"blograg/internal/embedding/hashing"
	"blograg/internal/indexer"
	"blograg/internal/llm/extractive"
	"blograg/internal/retriever"
)

func newPipeline(t *testing.T, docs ...domain.Document) (*RAGService, *indexer.Controller) {
	t.Helper()
	src := &fakeDocs{docs: docs}
	ch, err := chunker.NewRecursiveChunker(chunker.DefaultChunkSize, chunker.DefaultOverlap)
	if err != nil {
		t.Fatal(err)
	}
	emb := hashing.NewEmbedder(hashing.DefaultDimension)
	ctl := indexer.New(src, ch, emb)
	if _, err := ctl.Refresh(context.Background()); err != nil && !errors.Is(err, domain.ErrNoData) {
		t.Fatal(err)
	}
	return NewRAGService(retriever.New(ctl, emb, nil), src, extractive.New(2), nil), ctl
}

func TestScenarioEmptyCorpusHasNoData(t *testing.T) {
	svc, ctl := newPipeline(t)
	if ctl.Current() != nil {
		t.Fatal("empty corpus built an index")
	}
	if _, err := svc.Answer(context.Background(), "anything"); !errors.Is(err, domain.ErrNoData) {
		t.Errorf("Answer error = %v, want ErrNoData", err)
	}
	if _, err := svc.SmartSearch(context.Background(), "anything"); !errors.Is(err, domain.ErrNoData) {
		t.Errorf("SmartSearch error = %v, want ErrNoData", err)
	}
}

func TestScenarioSmartSearchAlwaysFindsSomethingInNonEmptyCorpus(t *testing.T) {
	a := domain.NewDocument("A", "hello world", "tester", "")
	a.ID = "a"
	svc, _ := newPipeline(t, a)

	res, err := svc.SmartSearch(context.Background(), "x")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Sources) != 1 || res.Sources[0].DocumentID != "a" {
		t.Errorf("sources = %+v, want the only document", res.Sources)
	}
	if res.Answer == NothingFound {
		t.Error("non-empty corpus answered nothing found")
	}
}

func TestScenarioAnswerFromSeededCorpus(t *testing.T) {
	ml := domain.NewDocument("Machine Learning", "Machine learning lets computers learn patterns from data. Supervised learning uses labeled examples.", "nguyen_van_a", "technology")
	ml.ID = "ml"
	pho := domain.NewDocument("Pho", "Pho is a Vietnamese noodle soup. The broth simmers for hours with ginger and star anise.", "tran_thi_b", "food")
	pho.ID = "pho"
	svc, _ := newPipeline(t, ml, pho)

	res, err := svc.SmartSearch(context.Background(), "noodle soup broth")
	if err != nil {
		t.Fatal(err)
	}
	if res.Sources[0].DocumentID != "pho" {
		t.Errorf("top source = %s, want pho", res.Sources[0].DocumentID)
	}
	recs, err := svc.Recommend(context.Background(), "pho")
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 || recs[0].DocumentID != "ml" {
		t.Errorf("recommendations = %+v", recs)
	}
}
