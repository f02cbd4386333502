// Package metrics provides counters, Prometheus collectors, and HTTP
// handlers for exporting Dockdeck runtime metrics.
package metrics

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Internal state, kept alongside the Prometheus collectors so the JSON
// snapshot endpoint does not need to scrape the registry.
var (
	renders       int64
	renderErrors  int64
	actions       int64
	actionsFailed int64
	engineErrors  int64
	lastFetch     int64
	engineUp      int64
)

const counterInc int64 = 1

var (
	promRenders = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dockdeck_page_renders_total",
			Help: "Total page renders by page name",
		},
		[]string{"page"},
	)
	promRenderErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dockdeck_page_render_errors_total",
			Help: "Total page renders that surfaced an error banner",
		},
	)
	promActions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dockdeck_actions_total",
			Help: "Total user-triggered engine actions by kind and status",
		},
		[]string{"action", "status"},
	)
	promEngineErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dockdeck_engine_call_errors_total",
			Help: "Total failed calls to the container engine",
		},
	)
	promRenderDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dockdeck_page_render_duration_seconds",
			Help:    "Duration of full page render passes",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
	)
	promLastFetch = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "dockdeck_last_fetch_timestamp_seconds",
			Help: "Unix timestamp of the last successful state fetch",
		},
	)
	promEngineUp = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "dockdeck_engine_reachable",
			Help: "Whether the last engine call succeeded (1) or failed (0)",
		},
	)
)

func init() {
	prometheus.MustRegister(
		promRenders,
		promRenderErrors,
		promActions,
		promEngineErrors,
		promRenderDuration,
		promLastFetch,
		promEngineUp,
	)
}

// IncRender counts one render pass of the named page.
func IncRender(page string) {
	atomic.AddInt64(&renders, counterInc)
	promRenders.WithLabelValues(page).Inc()
}

// IncRenderError counts a render pass that displayed an error banner.
func IncRenderError() {
	atomic.AddInt64(&renderErrors, counterInc)
	promRenderErrors.Inc()
}

// IncAction counts a user-triggered engine action and its outcome.
func IncAction(action string, ok bool) {
	atomic.AddInt64(&actions, counterInc)
	status := "success"
	if !ok {
		atomic.AddInt64(&actionsFailed, counterInc)
		status = "failure"
	}
	promActions.WithLabelValues(action, status).Inc()
}

// IncEngineError counts a failed engine call.
func IncEngineError() {
	atomic.AddInt64(&engineErrors, counterInc)
	promEngineErrors.Inc()
}

// ObserveRenderDuration records the duration (in seconds) of a render pass.
func ObserveRenderDuration(seconds float64) {
	promRenderDuration.Observe(seconds)
}

// SetLastFetch stores the provided time as the last successful fetch and
// updates the corresponding Prometheus gauge.
func SetLastFetch(t time.Time) {
	atomic.StoreInt64(&lastFetch, t.Unix())
	promLastFetch.Set(float64(t.Unix()))
}

// SetEngineReachable flips the engine reachability gauge.
func SetEngineReachable(up bool) {
	var v int64
	if up {
		v = 1
	}
	atomic.StoreInt64(&engineUp, v)
	promEngineUp.Set(float64(v))
}

// StatsSnapshot is a snapshot of metrics for JSON encoding.
type StatsSnapshot struct {
	Renders        int64  `json:"renders"`
	RenderErrors   int64  `json:"render_errors"`
	Actions        int64  `json:"actions"`
	ActionsFailed  int64  `json:"actions_failed"`
	EngineErrors   int64  `json:"engine_errors"`
	EngineUp       bool   `json:"engine_reachable"`
	LastFetch      int64  `json:"last_fetch_timestamp"`
	LastFetchHuman string `json:"last_fetch_human"`
}

// GetSnapshot returns a StatsSnapshot with the current values of all
// internal counters and timestamps.
func GetSnapshot() StatsSnapshot {
	ts := atomic.LoadInt64(&lastFetch)
	return StatsSnapshot{
		Renders:        atomic.LoadInt64(&renders),
		RenderErrors:   atomic.LoadInt64(&renderErrors),
		Actions:        atomic.LoadInt64(&actions),
		ActionsFailed:  atomic.LoadInt64(&actionsFailed),
		EngineErrors:   atomic.LoadInt64(&engineErrors),
		EngineUp:       atomic.LoadInt64(&engineUp) == 1,
		LastFetch:      ts,
		LastFetchHuman: time.Unix(ts, 0).Format(time.RFC3339),
	}
}

// PromHandler returns an HTTP handler that exposes Prometheus metrics.
func PromHandler() http.Handler { return promhttp.Handler() }

// JSONHandler returns an HTTP handler that serves the current metrics as
// a JSON-encoded StatsSnapshot.
func JSONHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(GetSnapshot())
	})
}
