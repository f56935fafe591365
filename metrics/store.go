package metrics

import (
	"sync"
)

// DefaultHistoryCapacity is the number of records a Store keeps when
// NewStore is given a non-positive capacity.
const DefaultHistoryCapacity = 100

// Store is an in-memory Collector. It retains the most recent records in a
// ring buffer and keeps running aggregates over all records ever seen.
//
// Usage:
//
//	store := metrics.NewStore(100)
//	store.Record(rec)
//	for stage, stats := range store.StageSummary() { ... }
type Store struct {
	mu sync.RWMutex

	history []RenderRecord
	head    int
	size    int

	totals RenderMetrics
	stages map[string]*StageStats
}

// NewStore creates a Store that keeps the last capacity records.
func NewStore(capacity int) *Store {
	if capacity < 1 {
		capacity = DefaultHistoryCapacity
	}
	return &Store{
		history: make([]RenderRecord, capacity),
		stages:  make(map[string]*StageStats),
	}
}

// Record stores a finished render and folds it into the aggregates.
// Stage timings are aggregated for successful renders only.
func (s *Store) Record(rec RenderRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history[s.head] = rec
	s.head = (s.head + 1) % len(s.history)
	if s.size < len(s.history) {
		s.size++
	}

	s.totals.TotalRenders++
	if rec.Status != RenderStatusSuccess {
		s.totals.TotalErrors++
		return
	}
	s.totals.TotalSuccess++
	s.totals.TotalPixels += int64(rec.Pixels())
	s.totals.TotalDuration += rec.Duration

	for _, st := range rec.Stages {
		stats, ok := s.stages[st.Stage]
		if !ok {
			stats = &StageStats{Min: st.Duration, Max: st.Duration}
			s.stages[st.Stage] = stats
		}
		stats.Count++
		stats.Total += st.Duration
		stats.Min = min(stats.Min, st.Duration)
		stats.Max = max(stats.Max, st.Duration)
	}
}

// Summary returns totals over every recorded render.
func (s *Store) Summary() RenderMetrics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.totals
}

// StageSummary returns a copy of the per-stage statistics.
func (s *Store) StageSummary() map[string]StageStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]StageStats, len(s.stages))
	for name, stats := range s.stages {
		result[name] = *stats
	}
	return result
}

// Recent returns up to n records, most recent first.
func (s *Store) Recent(n int) []RenderRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if n <= 0 || s.size == 0 {
		return []RenderRecord{}
	}
	n = min(n, s.size)

	capacity := len(s.history)
	result := make([]RenderRecord, n)
	for i := range result {
		result[i] = s.history[(s.head-1-i+capacity)%capacity]
	}
	return result
}

var _ Collector = (*Store)(nil)
