package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	DatasetRecordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "moodset",
			Name:      "dataset_records_total",
			Help:      "Labeled dataset rows produced, by mood label",
		},
		[]string{"label"},
	)

	TrackClaimsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "moodset",
			Name:      "track_claims_total",
			Help:      "Track id claims during enumeration",
		},
		[]string{"result"}, // "claimed" / "duplicate"
	)

	PhaseFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "moodset",
			Name:      "phase_failures_total",
			Help:      "Remote call failures by pipeline phase",
		},
		[]string{"phase"},
	)

	RunDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "moodset",
			Name:      "run_duration_seconds",
			Help:      "Wall time of a full collection run",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		},
	)
)

// ObserveClaims adds claimed and duplicate counts from one playlist.
func ObserveClaims(claimed, duplicates int) {
	TrackClaimsTotal.WithLabelValues("claimed").Add(float64(claimed))
	TrackClaimsTotal.WithLabelValues("duplicate").Add(float64(duplicates))
}

// ObserveRun records the run's duration and per-label row counts.
func ObserveRun(elapsed time.Duration, labelCounts map[string]int) {
	RunDuration.Observe(elapsed.Seconds())
	for label, n := range labelCounts {
		DatasetRecordsTotal.WithLabelValues(label).Add(float64(n))
	}
}
