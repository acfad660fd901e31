package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	BatchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "panelcalc_batch_duration_seconds",
			Help:    "Batch compliance run duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		},
	)

	SolutionsEvaluated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "panelcalc_solutions_evaluated_total",
			Help: "Solutions evaluated, by verdict",
		},
		[]string{"verdict"},
	)

	SitePeaksComputed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "panelcalc_site_peaks_computed_total",
			Help: "Historical site peaks computed (cache misses within a batch)",
		},
	)

	GapsDetected = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "panelcalc_gaps_detected_total",
			Help: "Data gaps reported by the gap detector",
		},
	)

	RowsDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "panelcalc_rows_dropped_total",
			Help: "Input rows dropped during normalization",
		},
	)
)

// Init registers the engine collectors with the default registry. The host
// application decides whether and how to expose them.
func Init() {
	prometheus.MustRegister(BatchDuration)
	prometheus.MustRegister(SolutionsEvaluated)
	prometheus.MustRegister(SitePeaksComputed)
	prometheus.MustRegister(GapsDetected)
	prometheus.MustRegister(RowsDropped)
}
