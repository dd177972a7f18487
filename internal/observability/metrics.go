package observability

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels recorded for upstream requests.
const (
	OutcomeOK        = "ok"
	OutcomeStatus    = "status"
	OutcomeTransport = "transport"
	OutcomeUnusable  = "unusable"
)

// Metrics contains the Prometheus collectors for upstream fetches and fallback renders.
type Metrics struct {
	UpstreamRequests *prometheus.CounterVec
	UpstreamDuration *prometheus.HistogramVec
	FallbackRenders  *prometheus.CounterVec
	Renders          *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on the supplied registerer.
func NewMetrics(registerer prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "blog_upstream_requests_total",
			Help: "Total number of requests sent to the blog API by resource and outcome",
		}, []string{"resource", "outcome"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "blog_upstream_request_duration_seconds",
			Help:    "Latency of blog API requests in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 10),
		}, []string{"resource"}),
		FallbackRenders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "blog_fallback_renders_total",
			Help: "Total number of pages rendered from compiled-in fallback content",
		}, []string{"page"}),
		Renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "blog_renders_total",
			Help: "Total number of page renders by page",
		}, []string{"page"}),
	}
	if registerer == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.UpstreamRequests, m.UpstreamDuration, m.FallbackRenders, m.Renders} {
		if err := registerer.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register blog metrics: %w", err)
		}
	}
	return m, nil
}

// ObserveUpstream records one upstream request. Nil receivers are ignored.
func (m *Metrics) ObserveUpstream(resource, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.UpstreamRequests.WithLabelValues(resource, outcome).Inc()
	m.UpstreamDuration.WithLabelValues(resource).Observe(elapsed.Seconds())
}

// ObserveRender records a page render and whether fallback content was used.
func (m *Metrics) ObserveRender(page string, fallback bool) {
	if m == nil {
		return
	}
	m.Renders.WithLabelValues(page).Inc()
	if fallback {
		m.FallbackRenders.WithLabelValues(page).Inc()
	}
}
