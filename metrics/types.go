// Package metrics keeps in-memory statistics about recent renders and the
// time spent in each pipeline stage.
package metrics

import "time"

// StageTiming is the wall time of one pipeline stage within a render.
type StageTiming struct {
	Stage    string        `json:"stage"`
	Duration time.Duration `json:"duration"`
}

// RenderRecord describes one completed render attempt.
type RenderRecord struct {
	// ID is the render job identifier
	ID string `json:"id"`

	// Input is the source image path or name
	Input string `json:"input"`

	// Preset is the parameter preset used
	Preset string `json:"preset"`

	// Status is RenderStatusSuccess or RenderStatusError
	Status string `json:"status"`

	// StartTime is when the render began
	StartTime time.Time `json:"start_time"`

	// Duration is the total time including decode and encode
	Duration time.Duration `json:"duration"`

	// Width and Height are the processed image dimensions
	Width  int `json:"width"`
	Height int `json:"height"`

	// Stages holds per-stage timings in execution order
	Stages []StageTiming `json:"stages,omitempty"`

	// ErrorMsg contains error details if Status is "error"
	ErrorMsg string `json:"error_msg,omitempty"`
}

// Pixels returns Width*Height.
func (r RenderRecord) Pixels() int {
	return r.Width * r.Height
}

// StageStats aggregates the timings of one stage across renders.
type StageStats struct {
	Count int64         `json:"count"`
	Total time.Duration `json:"total"`
	Min   time.Duration `json:"min"`
	Max   time.Duration `json:"max"`
}

// Avg returns the mean stage duration.
func (s StageStats) Avg() time.Duration {
	if s.Count == 0 {
		return 0
	}
	return s.Total / time.Duration(s.Count)
}

// RenderMetrics is the aggregate view of every recorded render.
type RenderMetrics struct {
	TotalRenders int64 `json:"total_renders"`
	TotalSuccess int64 `json:"total_success"`
	TotalErrors  int64 `json:"total_errors"`

	// TotalPixels counts pixels of successful renders
	TotalPixels int64 `json:"total_pixels"`

	// TotalDuration sums Duration of successful renders
	TotalDuration time.Duration `json:"total_duration"`
}

// MegapixelsPerSecond returns the throughput of successful renders.
func (m RenderMetrics) MegapixelsPerSecond() float64 {
	if m.TotalDuration <= 0 {
		return 0
	}
	return float64(m.TotalPixels) / 1e6 / m.TotalDuration.Seconds()
}

// Status constants for RenderRecord
const (
	RenderStatusSuccess = "success"
	RenderStatusError   = "error"
)
