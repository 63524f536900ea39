// Package metrics exposes gateway counters and latencies to Prometheus.
//
// Thread Safety: Safe for concurrent use by multiple goroutines.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so tests can build as many as they like
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	backendCalls    *prometheus.CounterVec
	backendDuration *prometheus.HistogramVec
	checkouts       *prometheus.CounterVec
	activeSockets   prometheus.Gauge
}

// New registers every gateway metric under the given namespace
func New(namespace string) *Metrics {
	if namespace == "" {
		namespace = "bookstore"
	}

	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "requests_total",
			Help:      "Requests served by the gateway, by route and status.",
		}, []string{"route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "request_duration_seconds",
			Help:      "Gateway request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		backendCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "backend",
			Name:      "calls_total",
			Help:      "Calls made to the bookstore REST backend, by operation and outcome.",
		}, []string{"operation", "outcome"}),
		backendDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "backend",
			Name:      "call_duration_seconds",
			Help:      "Backend call latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		checkouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cart",
			Name:      "checkouts_total",
			Help:      "Checkout attempts, by payment method and outcome.",
		}, []string{"payment_method", "outcome"}),
		activeSockets: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ws",
			Name:      "active_connections",
			Help:      "Open websocket connections.",
		}),
	}

	m.registry.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.backendCalls,
		m.backendDuration,
		m.checkouts,
		m.activeSockets,
	)
	return m
}

func outcome(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}

// ObserveBackendCall records one REST call. Nil receivers are ignored.
func (m *Metrics) ObserveBackendCall(operation string, ok bool, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.backendCalls.WithLabelValues(operation, outcome(ok)).Inc()
	m.backendDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// ObserveCheckout records one checkout attempt
func (m *Metrics) ObserveCheckout(paymentMethod string, ok bool) {
	if m == nil {
		return
	}
	m.checkouts.WithLabelValues(paymentMethod, outcome(ok)).Inc()
}

// SocketOpened and SocketClosed track live websocket clients
func (m *Metrics) SocketOpened() {
	if m != nil {
		m.activeSockets.Inc()
	}
}

func (m *Metrics) SocketClosed() {
	if m != nil {
		m.activeSockets.Dec()
	}
}

// Middleware counts every request by its matched route template
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry is exposed for tests and additional collectors
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
