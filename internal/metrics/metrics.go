package metrics

import "github.com/prometheus/client_golang/prometheus"

// Prometheus metrics for the report pipeline
var (
	ReportsEnqueuedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "reports_enqueued_total",
			Help: "Total number of report events queued for submission",
		},
	)

	ReportsSubmittedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "reports_submitted_total",
			Help: "Total number of reports accepted by the backend",
		},
	)

	ReportsRejectedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "reports_rejected_total",
			Help: "Total number of reports permanently rejected by the backend",
		},
	)

	ReportsRetriedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "reports_retried_total",
			Help: "Total number of reports rescheduled after a transient failure",
		},
	)

	ReportsDroppedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "reports_dropped_total",
			Help: "Total number of reports dropped without a successful submission",
		},
	)

	ReportSubmitDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "report_submit_duration_seconds",
			Help:    "Duration of report submissions to the backend",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// Register registers all Prometheus metrics
func Register() {
	prometheus.MustRegister(ReportsEnqueuedTotal)
	prometheus.MustRegister(ReportsSubmittedTotal)
	prometheus.MustRegister(ReportsRejectedTotal)
	prometheus.MustRegister(ReportsRetriedTotal)
	prometheus.MustRegister(ReportsDroppedTotal)
	prometheus.MustRegister(ReportSubmitDuration)
}
