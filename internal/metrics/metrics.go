package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "gym_console"

// Metrics groups the collectors of the console server. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	backendRequests *prometheus.CounterVec
	backendDuration *prometheus.HistogramVec
	statsFallbacks  *prometheus.CounterVec

	jobDuration *prometheus.HistogramVec
	jobSuccess  *prometheus.CounterVec
	jobFailure  *prometheus.CounterVec
}

// New registers every collector on reg.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return &Metrics{}
	}
	m := &Metrics{
		backendRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backend_requests_total",
			Help:      "Backend REST calls by resource and outcome.",
		}, []string{"resource", "outcome"}),
		backendDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "backend_request_duration_seconds",
			Help:      "Latency of backend REST calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"resource"}),
		statsFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stats_fallback_total",
			Help:      "Dashboard statistics served from a fallback source.",
		}, []string{"view", "source"}),
		jobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "job_duration_seconds",
			Help:      "Duration of cron jobs in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"job"}),
		jobSuccess: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_success_total",
			Help:      "Successful cron job executions.",
		}, []string{"job"}),
		jobFailure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_failure_total",
			Help:      "Failed cron job executions.",
		}, []string{"job"}),
	}
	reg.MustRegister(
		m.backendRequests, m.backendDuration, m.statsFallbacks,
		m.jobDuration, m.jobSuccess, m.jobFailure,
	)
	return m
}

// ObserveBackendRequest records one backend call.
func (m *Metrics) ObserveBackendRequest(resource, outcome string, elapsed time.Duration) {
	if m == nil || m.backendRequests == nil {
		return
	}
	resource = normalizeLabel(resource)
	m.backendRequests.WithLabelValues(resource, normalizeLabel(outcome)).Inc()
	m.backendDuration.WithLabelValues(resource).Observe(elapsed.Seconds())
}

// IncStatsFallback counts a statistics view served from source ("cache" or
// "placeholder") instead of the backend.
func (m *Metrics) IncStatsFallback(view, source string) {
	if m == nil || m.statsFallbacks == nil {
		return
	}
	m.statsFallbacks.WithLabelValues(normalizeLabel(view), normalizeLabel(source)).Inc()
}

// ObserveJob records the outcome and duration of a scheduled job run.
func (m *Metrics) ObserveJob(job string, elapsed time.Duration, err error) {
	if m == nil || m.jobDuration == nil {
		return
	}
	job = normalizeLabel(job)
	m.jobDuration.WithLabelValues(job).Observe(elapsed.Seconds())
	if err != nil {
		m.jobFailure.WithLabelValues(job).Inc()
		return
	}
	m.jobSuccess.WithLabelValues(job).Inc()
}

// Handler exposes the collectors gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
