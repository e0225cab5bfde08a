// Package telemetry exposes the master's Prometheus metrics, grounded on
// the promauto.NewCounterVec/NewGaugeVec/NewHistogramVec pattern used
// throughout the example pack's auth gateway.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// SlavesByState counts slaves currently in each lifecycle state.
	SlavesByState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "loadcoord_slaves",
			Help: "Number of slaves currently in each lifecycle state.",
		},
		[]string{"state"})

	// PingDurationSeconds tracks how long a liveness probe round took.
	PingDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "loadcoord_ping_duration_seconds",
			Help: "Duration of a liveness-probe round against all slaves.",
		})

	// ProgressReportsTotal counts accepted progress reports.
	ProgressReportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loadcoord_progress_reports_total",
			Help: "Number of progress reports accepted from slaves.",
		},
		[]string{"slave"})

	// MergeErrorsTotal counts failed sketch merges, by stat name.
	MergeErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loadcoord_merge_errors_total",
			Help: "Number of sketch merge failures, by stat name.",
		},
		[]string{"stat"})

	// RunsCompletedTotal counts runs that reached all-slaves-terminal.
	RunsCompletedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "loadcoord_runs_completed_total",
			Help: "Number of runs whose slaves all reached a terminal state.",
		})
)

// Handler returns the /metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
