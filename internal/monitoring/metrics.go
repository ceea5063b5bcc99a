package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/prometheus/client_golang/prometheus"
)

// NewMetricsHandler returns the HTTP handler a driver mounts on its
// Prometheus port to expose the gauges and counters below.
func NewMetricsHandler() http.Handler {
	return promhttp.Handler()
}

var (
	// RegimeState reports the current MAP state (0 or 1) per symbol.
	RegimeState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "regime_state",
			Help: "Current MAP regime state (0 or 1)",
		},
		[]string{"symbol"},
	)

	// RegimePosterior reports the live p_state1 / p_regime2 probability
	// the window machine gates on.
	RegimePosterior = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "regime_posterior_p1",
			Help: "Current state-1 / regime-2 (target) posterior probability",
		},
		[]string{"symbol"},
	)

	// WindowOpensTotal counts OPEN events emitted by the window state
	// machine.
	WindowOpensTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "regime_window_opens_total",
			Help: "Total number of regime windows opened",
		},
		[]string{"symbol", "label"},
	)

	// WindowClosesTotal counts CLOSE events emitted by the window state
	// machine.
	WindowClosesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "regime_window_closes_total",
			Help: "Total number of regime windows closed",
		},
		[]string{"symbol", "label"},
	)

	// WindowDurationBars records the bar-count length of each closed
	// window.
	WindowDurationBars = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "regime_window_duration_bars",
			Help:    "Length in bars of closed regime windows",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		},
		[]string{"symbol", "label"},
	)

	// DCEventsTotal counts directional-change events emitted by the DC
	// updater.
	DCEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "regime_dc_events_total",
			Help: "Total number of directional-change events",
		},
		[]string{"symbol"},
	)
)

// RecordWindowOpen increments the open counter for symbol/label.
func RecordWindowOpen(symbol, label string) {
	WindowOpensTotal.WithLabelValues(symbol, label).Inc()
}

// RecordWindowClose increments the close counter and observes the
// window's duration in bars.
func RecordWindowClose(symbol, label string, durationBars int) {
	WindowClosesTotal.WithLabelValues(symbol, label).Inc()
	WindowDurationBars.WithLabelValues(symbol, label).Observe(float64(durationBars))
}

// RecordPosterior updates the live state/posterior gauges.
func RecordPosterior(symbol string, mapState int, p1 float64) {
	RegimeState.WithLabelValues(symbol).Set(float64(mapState))
	RegimePosterior.WithLabelValues(symbol).Set(p1)
}

// RecordDCEvent increments the DC event counter for symbol.
func RecordDCEvent(symbol string) {
	DCEventsTotal.WithLabelValues(symbol).Inc()
}
