// Package metrics owns the explorer's Prometheus collectors.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "contract_explorer"

// Metrics groups the collectors registered on a private registry, so several
// apps can live in one process (tests do this).
type Metrics struct {
	registry *prometheus.Registry

	contractLoads    *prometheus.CounterVec
	contractLoadTime *prometheus.HistogramVec
	loadedContracts  prometheus.Gauge
	failedContracts  prometheus.Gauge

	metadataFetches *prometheus.CounterVec
	signatureChecks *prometheus.CounterVec

	requestCounter  *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// New creates and registers all collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		contractLoads: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "loader",
			Name:      "contracts_total",
			Help:      "Contract modules processed, by outcome.",
		}, []string{"result"}),
		contractLoadTime: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "loader",
			Name:      "contract_duration_seconds",
			Help:      "Time spent resolving one contract module.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"result"}),
		loadedContracts: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "loader",
			Name:      "loaded_contracts",
			Help:      "Contract modules loaded by the last load.",
		}),
		failedContracts: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "loader",
			Name:      "failed_contracts",
			Help:      "Contract modules that failed in the last load.",
		}),
		metadataFetches: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "metadata",
			Name:      "fetches_total",
			Help:      "Contract metadata requests, by outcome.",
		}, []string{"result"}),
		signatureChecks: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "signatures",
			Name:      "checks_total",
			Help:      "Transaction signature checks, by outcome.",
		}, []string{"result"}),
		requestCounter: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total number of API requests.",
		}, []string{"method", "path", "status"}),
		requestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "API request duration in seconds.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
		}, []string{"method", "path"}),
	}
}

func outcome(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}

// ObserveContract matches loader.Observer.
func (m *Metrics) ObserveContract(_ string, ok bool, elapsed time.Duration) {
	m.contractLoads.WithLabelValues(outcome(ok)).Inc()
	m.contractLoadTime.WithLabelValues(outcome(ok)).Observe(elapsed.Seconds())
}

// SetContracts records the totals of the last load.
func (m *Metrics) SetContracts(loaded, failed int) {
	m.loadedContracts.Set(float64(loaded))
	m.failedContracts.Set(float64(failed))
}

// MetadataFetched counts one metadata request.
func (m *Metrics) MetadataFetched(ok bool) {
	m.metadataFetches.WithLabelValues(outcome(ok)).Inc()
}

// SignaturesChecked counts one signature check.
func (m *Metrics) SignaturesChecked(ok bool) {
	m.signatureChecks.WithLabelValues(outcome(ok)).Inc()
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(method, path string, status int, elapsed time.Duration) {
	m.requestCounter.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }
