// SPDX-License-Identifier: MIT
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Result label values.
const (
	ResultSuccess = "success"
	ResultError   = "error"
	// ResultPartial is a reload that skipped undecodable records.
	ResultPartial = "partial"
)

var (
	// Guide metrics
	GuideProgramsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dvrguide_guide_programs_total",
		Help: "Programs seen while building the guide, by resolution result",
	}, []string{"result"}) // result=mapped|unmatched|malformed

	guideChannels = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dvrguide_guide_channels",
		Help: "Channels in the last guide response",
	})

	// DVR metrics
	RecordingsClassifiedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dvrguide_recordings_classified_total",
		Help: "Recordings placed into each DVR bucket",
	}, []string{"bucket"}) // bucket=in_progress|upcoming|completed

	staleRuleOccurrences = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dvrguide_stale_rule_occurrences_total",
		Help: "Future occurrences found on disabled recurring rules",
	})

	// Snapshot metrics
	SnapshotReloadTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dvrguide_snapshot_reload_total",
		Help: "Snapshot reloads by outcome",
	}, []string{"result"})

	SnapshotRecordsSkippedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dvrguide_snapshot_records_skipped_total",
		Help: "Snapshot records dropped because they did not decode",
	}, []string{"file"})

	snapshotLastReload = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dvrguide_snapshot_last_reload_timestamp_seconds",
		Help: "Unix time of the last successful snapshot reload",
	})

	// Request coalescing metrics
	BatchFlushTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dvrguide_batch_flush_total",
		Help: "Coalesced batch flushes by batcher and outcome",
	}, []string{"batcher", "result"})

	batchFlushKeys = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dvrguide_batch_flush_keys",
		Help:    "Keys per coalesced batch",
		Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 250},
	}, []string{"batcher"})

	// View cache metrics
	ViewCacheTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dvrguide_view_cache_total",
		Help: "View cache lookups by view and result",
	}, []string{"view", "result"}) // result=hit|miss

	// Breaker metrics
	BreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "dvrguide_breaker_state",
		Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
	}, []string{"name"})

	BreakerTripsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dvrguide_breaker_trips_total",
		Help: "Circuit breaker trips by reason",
	}, []string{"name", "reason"})
)

// RecordGuide records one guide build.
func RecordGuide(channels, mapped, unmatched, malformed int) {
	guideChannels.Set(float64(channels))
	GuideProgramsTotal.WithLabelValues("mapped").Add(float64(mapped))
	GuideProgramsTotal.WithLabelValues("unmatched").Add(float64(unmatched))
	GuideProgramsTotal.WithLabelValues("malformed").Add(float64(malformed))
}

// RecordClassification records the bucket sizes of one classification.
func RecordClassification(inProgress, upcoming, completed int) {
	RecordingsClassifiedTotal.WithLabelValues("in_progress").Add(float64(inProgress))
	RecordingsClassifiedTotal.WithLabelValues("upcoming").Add(float64(upcoming))
	RecordingsClassifiedTotal.WithLabelValues("completed").Add(float64(completed))
}

func AddStaleRuleOccurrences(n int) {
	if n > 0 {
		staleRuleOccurrences.Add(float64(n))
	}
}

// RecordSnapshotReload records a reload attempt. skipped maps file names
// to records dropped during a successful reload; unixSeconds is ignored on
// failure.
func RecordSnapshotReload(err error, skipped map[string]int, unixSeconds float64) {
	if err != nil {
		SnapshotReloadTotal.WithLabelValues(ResultError).Inc()
		return
	}
	result := ResultSuccess
	for file, n := range skipped {
		if n <= 0 {
			continue
		}
		result = ResultPartial
		SnapshotRecordsSkippedTotal.WithLabelValues(file).Add(float64(n))
	}
	SnapshotReloadTotal.WithLabelValues(result).Inc()
	snapshotLastReload.Set(unixSeconds)
}

// RecordBatchFlush records one flush of a coalescing batcher.
func RecordBatchFlush(batcher, result string, keys int) {
	BatchFlushTotal.WithLabelValues(batcher, result).Inc()
	batchFlushKeys.WithLabelValues(batcher).Observe(float64(keys))
}

// RecordViewCache records one cache lookup for a rendered view.
func RecordViewCache(view string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	ViewCacheTotal.WithLabelValues(view, result).Inc()
}

// SetBreakerState publishes a breaker state. Unknown states are ignored.
func SetBreakerState(name, state string) {
	var v float64
	switch state {
	case "closed":
		v = 0
	case "half-open":
		v = 1
	case "open":
		v = 2
	default:
		return
	}
	BreakerState.WithLabelValues(name).Set(v)
}

// RecordBreakerTrip counts a transition to open.
func RecordBreakerTrip(name, reason string) {
	BreakerTripsTotal.WithLabelValues(name, reason).Inc()
}
