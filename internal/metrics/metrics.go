// Package metrics exposes Prometheus metrics for Ayra.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ayrahq/ayra/internal/playback"
)

const namespace = "ayra"

// Collector owns a private registry and every Ayra metric.
type Collector struct {
	registry *prometheus.Registry

	sessionsStarted *prometheus.CounterVec
	sessionsEnded   *prometheus.CounterVec
	sessionsActive  prometheus.Gauge
	stepsRevealed   *prometheus.CounterVec
	loopRestarts    *prometheus.CounterVec

	demoQuestions *prometheus.CounterVec
	signups       prometheus.Counter
	themeChanges  *prometheus.CounterVec

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	rpcRequests  *prometheus.CounterVec
}

// NewCollector registers every metric on a fresh registry.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Collector{
		registry: registry,
		sessionsStarted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "playback_sessions_started_total",
			Help:      "Playback sessions started, by scenario.",
		}, []string{"scenario"}),
		sessionsEnded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "playback_sessions_ended_total",
			Help:      "Playback sessions ended, by scenario and final state.",
		}, []string{"scenario", "state"}),
		sessionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "playback_sessions_active",
			Help:      "Playback sessions currently running.",
		}),
		stepsRevealed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "playback_steps_revealed_total",
			Help:      "Chat steps revealed, by scenario.",
		}, []string{"scenario"}),
		loopRestarts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "playback_loop_restarts_total",
			Help:      "Loop restarts, by scenario.",
		}, []string{"scenario"}),
		demoQuestions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "demo_questions_total",
			Help:      "Demo chat questions, by surface.",
		}, []string{"surface"}),
		signups: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "waitlist_signups_total",
			Help:      "New waitlist signups.",
		}),
		themeChanges: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "theme_changes_total",
			Help:      "Theme changes, by resulting theme.",
		}, []string{"theme"}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests, by route, method and status.",
		}, []string{"route", "method", "status"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency, by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		rpcRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_requests_total",
			Help:      "gRPC requests, by method and code.",
		}, []string{"method", "code"}),
	}
}

// Registry returns the registry backing the collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

var _ playback.Recorder = (*Collector)(nil)

func (c *Collector) SessionStarted(scenario string) {
	c.sessionsStarted.WithLabelValues(scenario).Inc()
	c.sessionsActive.Inc()
}

func (c *Collector) StepRevealed(scenario string) {
	c.stepsRevealed.WithLabelValues(scenario).Inc()
}

func (c *Collector) LoopRestarted(scenario string) {
	c.loopRestarts.WithLabelValues(scenario).Inc()
}

func (c *Collector) SessionEnded(scenario string, final playback.State) {
	c.sessionsEnded.WithLabelValues(scenario, final.String()).Inc()
	c.sessionsActive.Dec()
}

// DemoAsked counts a demo chat question.
func (c *Collector) DemoAsked(surface string) {
	c.demoQuestions.WithLabelValues(surface).Inc()
}

// SignupCreated counts a new waitlist signup.
func (c *Collector) SignupCreated() {
	c.signups.Inc()
}

// ThemeChanged counts a theme change.
func (c *Collector) ThemeChanged(theme string) {
	c.themeChanges.WithLabelValues(theme).Inc()
}

// ObserveHTTP records one HTTP request.
func (c *Collector) ObserveHTTP(route, method string, status int, elapsed time.Duration) {
	c.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	c.httpDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// ObserveRPC records one gRPC call.
func (c *Collector) ObserveRPC(method, code string) {
	c.rpcRequests.WithLabelValues(method, code).Inc()
}
