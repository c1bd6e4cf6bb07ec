package metrics

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveRefresh("ok", time.Second)
	m.SetIndex(3, 10)
	m.ObserveRetrieval(time.Millisecond)
	m.CountLLMCall("error")
	m.ObserveHTTP("/api/health", 200, time.Millisecond)
}

func TestMetricsRecord(t *testing.T) {
	m := New()
	m.ObserveRefresh("ok", 20*time.Millisecond)
	m.ObserveRefresh("ok", 30*time.Millisecond)
	m.ObserveRefresh("no_data", time.Millisecond)
	m.SetIndex(2, 17)
	m.CountLLMCall("ok")

	if got := testutil.ToFloat64(m.refreshTotal.WithLabelValues("ok")); got != 2 {
		t.Errorf("ok refreshes = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.indexChunks); got != 17 {
		t.Errorf("index chunks = %v, want 17", got)
	}
	if got := testutil.ToFloat64(m.indexGeneration); got != 2 {
		t.Errorf("index generation = %v, want 2", got)
	}
}

func TestHandlerExposesRegistry(t *testing.T) {
	m := New()
	m.ObserveHTTP("POST /api/chat/search", 404, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `blograg_http_requests_total{code="404",route="POST /api/chat/search"} 1`) {
		t.Errorf("metrics output missing request counter:\n%s", body)
	}
}

func TestSpansWithoutProvider(t *testing.T) {
	ctx, span := StartSpan(context.Background(), "test")
	if ctx == nil {
		t.Fatal("nil context")
	}
	EndSpan(span, errors.New("boom"))
}
