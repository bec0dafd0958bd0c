// Package metrics exposes the aggregation service's Prometheus collectors.
// All collectors live on a private registry that is served on /metrics.
package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
)

type Metrics struct {
	reg *prometheus.Registry

	cacheRequests *prometheus.CounterVec   // aram_cache_requests_total
	queryDuration *prometheus.HistogramVec // aram_query_duration_seconds
	loads         *prometheus.CounterVec   // aram_dataset_loads_total
	datasetRows   prometheus.Gauge         // aram_dataset_rows
}

func New() (*Metrics, error) {
	reg := prometheus.NewRegistry()

	cacheRequests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aram_cache_requests_total",
			Help: "Memo cache lookups per query and result (hit, miss).",
		},
		[]string{"query", "result"},
	)
	queryDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aram_query_duration_seconds",
			Help:    "Time spent computing a statistics table on a cache miss.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
		},
		[]string{"query"},
	)
	loads := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aram_dataset_loads_total",
			Help: "Dataset loads per source kind and status.",
		},
		[]string{"source", "status"},
	)
	datasetRows := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "aram_dataset_rows",
			Help: "Participant rows in the currently loaded table.",
		},
	)

	for name, c := range map[string]prometheus.Collector{
		"cache requests": cacheRequests,
		"query duration": queryDuration,
		"dataset loads":  loads,
		"dataset rows":   datasetRows,
	} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register %s collector: %w", name, err)
		}
	}

	return &Metrics{
		reg:           reg,
		cacheRequests: cacheRequests,
		queryDuration: queryDuration,
		loads:         loads,
		datasetRows:   datasetRows,
	}, nil
}

func (m *Metrics) CacheHit(query string) {
	m.cacheRequests.WithLabelValues(query, "hit").Inc()
}

func (m *Metrics) CacheMiss(query string) {
	m.cacheRequests.WithLabelValues(query, "miss").Inc()
}

func (m *Metrics) ObserveQuery(query string, d time.Duration) {
	m.queryDuration.WithLabelValues(query).Observe(d.Seconds())
}

// ObserveLoad records one dataset load attempt. rows is only applied on
// success.
func (m *Metrics) ObserveLoad(source string, rows int, err error) {
	if err != nil {
		m.loads.WithLabelValues(source, "error").Inc()
		return
	}
	m.loads.WithLabelValues(source, "ok").Inc()
	m.datasetRows.Set(float64(rows))
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

var Module = fx.Provide(New)
