// Package metricsx collects and exposes Prometheus metrics for the API.
package metricsx

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector aggregates the counters the service emits. Services record
// outcomes through it; the HTTP layer records responses via Middleware.
type Collector struct {
	logins        *prometheus.CounterVec
	refreshes     *prometheus.CounterVec
	rejections    *prometheus.CounterVec
	httpResponses *prometheus.CounterVec
	httpLatency   prometheus.Histogram
}

// NewCollector registers the service metrics on the given registry.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chefpilot_logins_total",
			Help: "Login attempts by outcome (ok, invalid_credentials, error).",
		}, []string{"outcome"}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chefpilot_token_refresh_total",
			Help: "Refresh attempts by outcome (ok, invalid_refresh, error).",
		}, []string{"outcome"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chefpilot_authz_rejections_total",
			Help: "Gate rejections by outcome keyword.",
		}, []string{"reason"}),
		httpResponses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chefpilot_http_responses_total",
			Help: "HTTP responses by status code.",
		}, []string{"status_code"}),
		httpLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "chefpilot_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(c.logins, c.refreshes, c.rejections, c.httpResponses, c.httpLatency)
	return c
}

// RecordLogin records a login attempt outcome.
func (c *Collector) RecordLogin(outcome string) {
	c.logins.WithLabelValues(outcome).Inc()
}

// RecordRefresh records a refresh attempt outcome.
func (c *Collector) RecordRefresh(outcome string) {
	c.refreshes.WithLabelValues(outcome).Inc()
}

// RecordRejection records an authn/authz gate rejection.
func (c *Collector) RecordRejection(reason string) {
	c.rejections.WithLabelValues(reason).Inc()
}

// Middleware records response codes and latency for every request.
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)

		c.httpResponses.WithLabelValues(strconv.Itoa(rw.status)).Inc()
		c.httpLatency.Observe(time.Since(start).Seconds())
	})
}

// Handler returns the Prometheus scrape handler for the registry.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

type statusRecorder struct {
	http.ResponseWriter

	status int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}
