package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func readCounter(t *testing.T, v *prometheus.CounterVec, labels ...string) float64 {
	t.Helper()

	m := &dto.Metric{}
	if err := v.WithLabelValues(labels...).Write(m); err != nil {
		t.Fatalf("Counter.Write() error = %v", err)
	}
	return m.GetCounter().GetValue()
}

func TestMetrics_Recorder(t *testing.T) {
	m, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	m.CacheMiss("champions")
	m.CacheHit("champions")
	m.CacheHit("champions")
	m.ObserveQuery("champions", 3*time.Millisecond)

	if got := readCounter(t, m.cacheRequests, "champions", "hit"); got != 2 {
		t.Errorf("hits: got %v, want 2", got)
	}
	if got := readCounter(t, m.cacheRequests, "champions", "miss"); got != 1 {
		t.Errorf("misses: got %v, want 1", got)
	}

	h := &dto.Metric{}
	metric, ok := m.queryDuration.WithLabelValues("champions").(prometheus.Metric)
	if !ok {
		t.Fatalf("HistogramVec.WithLabelValues(...) does not implement prometheus.Metric")
	}
	if err := metric.Write(h); err != nil {
		t.Fatalf("Histogram.Write() error = %v", err)
	}
	if h.GetHistogram().GetSampleCount() != 1 {
		t.Errorf("histogram samples: got %d, want 1", h.GetHistogram().GetSampleCount())
	}
}

func TestMetrics_ObserveLoad(t *testing.T) {
	m, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	m.ObserveLoad("file", 42, nil)
	m.ObserveLoad("url", 0, errors.New("boom"))

	if got := readCounter(t, m.loads, "file", "ok"); got != 1 {
		t.Errorf("ok loads: got %v", got)
	}
	if got := readCounter(t, m.loads, "url", "error"); got != 1 {
		t.Errorf("failed loads: got %v", got)
	}

	g := &dto.Metric{}
	if err := m.datasetRows.Write(g); err != nil {
		t.Fatalf("Gauge.Write() error = %v", err)
	}
	if g.GetGauge().GetValue() != 42 {
		t.Errorf("dataset rows: got %v, want 42", g.GetGauge().GetValue())
	}
}

func TestMetrics_Handler(t *testing.T) {
	m, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	m.CacheHit("runes")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `aram_cache_requests_total{query="runes",result="hit"} 1`) {
		t.Errorf("metrics output missing cache counter:\n%s", body)
	}
}
