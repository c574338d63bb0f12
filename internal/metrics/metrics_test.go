package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.IncrementClaimVerdict("Supported", true)
	m.IncrementClaimVerdict("Supported", true)
	m.IncrementClaimVerdict("Insufficient evidence", false)
	m.IncrementTemporal("stale")
	m.AddPreFiltered(3)
	m.AddPreFiltered(0)
	m.IncrementDocument("news", "CREDIBLE")

	if got := testutil.ToFloat64(m.ClaimVerdicts.WithLabelValues("Supported", "true")); got != 2 {
		t.Errorf("Expected 2 supported verdicts, got %v", got)
	}
	if got := testutil.ToFloat64(m.ClaimVerdicts.WithLabelValues("Insufficient evidence", "false")); got != 1 {
		t.Errorf("Expected 1 insufficient verdict, got %v", got)
	}
	if got := testutil.ToFloat64(m.EvidenceTemporal.WithLabelValues("stale")); got != 1 {
		t.Errorf("Expected 1 stale item, got %v", got)
	}
	if got := testutil.ToFloat64(m.PreFiltered); got != 3 {
		t.Errorf("Expected 3 pre-filtered, got %v", got)
	}
	if got := testutil.ToFloat64(m.DocumentVerdicts.WithLabelValues("news", "CREDIBLE")); got != 1 {
		t.Errorf("Expected 1 document verdict, got %v", got)
	}
}

func TestMetrics_Histograms(t *testing.T) {
	m := New()

	m.ObserveLLM("stance", 2*time.Second, nil)
	m.ObserveLLM("stance", time.Second, errors.New("boom"))
	m.ObserveSearch("authoritative", 500*time.Millisecond)
	m.ObserveDocumentLatency(3 * time.Second)

	if got := testutil.CollectAndCount(m.LLMLatency); got != 2 {
		t.Errorf("Expected 2 LLM series, got %d", got)
	}
	if got := testutil.CollectAndCount(m.SearchLatency); got != 1 {
		t.Errorf("Expected 1 search series, got %d", got)
	}
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics

	m.ObserveLLM("extract", time.Second, nil)
	m.ObserveSearch("general", time.Second)
	m.IncrementClaimVerdict("Supported", false)
	m.IncrementTemporal("relevant")
	m.AddPreFiltered(1)
	m.IncrementDocument("general", "HIGH")
	m.ObserveDocumentLatency(time.Second)

	if m.Registry() != nil {
		t.Error("Expected nil registry")
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 from nil metrics handler, got %d", rec.Code)
	}
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.IncrementDocument("news", "MISLEADING")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `credence_document_verdicts_total{mode="news",verdict="MISLEADING"} 1`) {
		t.Errorf("Expected document verdict in output, got:\n%s", rec.Body.String())
	}
}

func TestMetrics_SeparateRegistries(t *testing.T) {
	a, b := New(), New()
	a.AddPreFiltered(5)

	if got := testutil.ToFloat64(b.PreFiltered); got != 0 {
		t.Errorf("Expected independent registries, got %v", got)
	}
}
