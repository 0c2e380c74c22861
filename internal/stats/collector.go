// Package stats provides a unified interface for collecting metrics.
package stats

// Metric names used throughout the library.
const (
	// Exploration metrics.
	MetricOracleQueries     = "bookminer_oracle_queries_total"
	MetricEvalCalls         = "bookminer_eval_calls_total"
	MetricReplyCacheHits    = "bookminer_reply_cache_hits_total"
	MetricLinesEmitted      = "bookminer_lines_emitted_total"
	MetricPositionsExplored = "bookminer_positions_explored_total"
	MetricPositionsPruned   = "bookminer_positions_pruned_total"
	MetricCandidatesSkipped = "bookminer_candidates_skipped_total"
	MetricCheckpointSaves   = "bookminer_checkpoint_saves_total"

	// Oracle memo metrics.
	MetricOracleCacheHits   = "bookminer_oracle_cache_hits_total"
	MetricOracleCacheMisses = "bookminer_oracle_cache_misses_total"
)

// Collector defines the interface for collecting metrics.
type Collector interface {
	// IncCounter increments a counter metric by delta.
	IncCounter(name string, delta int64)

	// SetGauge sets a gauge metric to value.
	SetGauge(name string, value int64)

	// ObserveHistogram records a value in a histogram metric.
	ObserveHistogram(name string, value float64)
}
