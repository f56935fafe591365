package metrics

// Collector receives render records and answers aggregate queries.
// Implementations must be safe for concurrent use.
type Collector interface {
	// Record stores a finished render.
	Record(rec RenderRecord)

	// Summary returns totals over every recorded render.
	Summary() RenderMetrics

	// StageSummary returns per-stage statistics keyed by stage name.
	StageSummary() map[string]StageStats

	// Recent returns up to n records, most recent first.
	Recent(n int) []RenderRecord
}
