package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Render status values stored in render_history.status.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

const timestampLayout = "2006-01-02 15:04:05"

// StageRecord is the duration of one pipeline stage within a render.
type StageRecord struct {
	Name     string
	Duration time.Duration
}

// RenderRecord is one row of render_history plus its stage timings.
type RenderRecord struct {
	ID           int64
	JobID        string
	InputPath    string
	Preset       string
	Status       string
	Width        int
	Height       int
	Workers      int
	Duration     time.Duration
	SketchPath   string
	ColoredPath  string
	OutputBytes  int64
	ErrorMessage string
	Stages       []StageRecord
	// CreatedAt defaults to the current time when zero.
	CreatedAt time.Time
}

// HistoryStats aggregates render_history.
type HistoryStats struct {
	Total        int64
	Succeeded    int64
	Failed       int64
	AvgDuration  time.Duration
	TotalPixels  int64
	OutputBytes  int64
	LastRenderAt time.Time
}

// StageAverage is the mean duration of a stage across stored renders.
type StageAverage struct {
	Name    string
	Count   int64
	Average time.Duration
}

// Repository reads and writes render history.
//
// When an AsyncWriter is supplied and started, inserts are queued and
// applied in the background.
type Repository struct {
	db          *Database
	asyncWriter *AsyncWriter
}

// NewRepository creates a Repository. asyncWriter may be nil, in which
// case all writes are synchronous.
func NewRepository(db *Database, asyncWriter *AsyncWriter) *Repository {
	return &Repository{db: db, asyncWriter: asyncWriter}
}

// InsertRender stores rec and its stages in one transaction.
// Returns the inserted row ID, or 0 when the write was queued.
func (r *Repository) InsertRender(ctx context.Context, rec RenderRecord) (int64, error) {
	if rec.JobID == "" {
		return 0, fmt.Errorf("render record requires a job id")
	}
	if rec.Status != StatusSuccess && rec.Status != StatusError {
		return 0, fmt.Errorf("invalid render status %q", rec.Status)
	}

	if r.asyncWriter != nil && r.asyncWriter.IsStarted() {
		err := r.asyncWriter.Enqueue(func(ctx context.Context) error {
			_, err := r.insertRender(ctx, rec)
			return err
		})
		if err == nil {
			return 0, nil
		}
		if !errors.Is(err, ErrQueueFull) && !errors.Is(err, ErrWriterStopped) {
			return 0, err
		}
	}
	return r.insertRender(ctx, rec)
}

func (r *Repository) insertRender(ctx context.Context, rec RenderRecord) (int64, error) {
	conn, err := r.db.conn()
	if err != nil {
		return 0, err
	}

	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO render_history (
			job_id, input_path, preset, status, width, height, workers,
			duration_ms, sketch_path, colored_path, output_bytes, error_message, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.JobID, rec.InputPath, rec.Preset, rec.Status, rec.Width, rec.Height, rec.Workers,
		rec.Duration.Milliseconds(), nullString(rec.SketchPath), nullString(rec.ColoredPath),
		rec.OutputBytes, nullString(rec.ErrorMessage), createdAt.UTC().Format(timestampLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert render %s: %w", rec.JobID, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w", err)
	}

	for i, stage := range rec.Stages {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO render_stages (render_id, stage, position, duration_us) VALUES (?, ?, ?, ?)`,
			id, stage.Name, i, stage.Duration.Microseconds(),
		); err != nil {
			return 0, fmt.Errorf("failed to insert stage %s: %w", stage.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit render %s: %w", rec.JobID, err)
	}
	return id, nil
}

// RecentRenders returns up to limit renders, newest first. Stage timings
// are not loaded; use RenderStages for a single render.
func (r *Repository) RecentRenders(ctx context.Context, limit int) ([]RenderRecord, error) {
	conn, err := r.db.conn()
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := conn.QueryContext(ctx, `
		SELECT id, job_id, input_path, preset, status, width, height, workers, duration_ms,
			COALESCE(sketch_path, ''), COALESCE(colored_path, ''), output_bytes,
			COALESCE(error_message, ''), strftime('%Y-%m-%d %H:%M:%S', created_at)
		FROM render_history
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query render history: %w", err)
	}
	defer rows.Close()

	var records []RenderRecord
	for rows.Next() {
		var (
			rec        RenderRecord
			durationMS int64
			createdAt  string
		)
		if err := rows.Scan(
			&rec.ID, &rec.JobID, &rec.InputPath, &rec.Preset, &rec.Status,
			&rec.Width, &rec.Height, &rec.Workers, &durationMS,
			&rec.SketchPath, &rec.ColoredPath, &rec.OutputBytes,
			&rec.ErrorMessage, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan render row: %w", err)
		}
		rec.Duration = time.Duration(durationMS) * time.Millisecond
		rec.CreatedAt, _ = time.ParseInLocation(timestampLayout, createdAt, time.UTC)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating render rows: %w", err)
	}
	return records, nil
}

// RenderStages returns the stage timings of one render in pipeline order.
func (r *Repository) RenderStages(ctx context.Context, renderID int64) ([]StageRecord, error) {
	conn, err := r.db.conn()
	if err != nil {
		return nil, err
	}

	rows, err := conn.QueryContext(ctx,
		`SELECT stage, duration_us FROM render_stages WHERE render_id = ? ORDER BY position`, renderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query stages: %w", err)
	}
	defer rows.Close()

	var stages []StageRecord
	for rows.Next() {
		var (
			s  StageRecord
			us int64
		)
		if err := rows.Scan(&s.Name, &us); err != nil {
			return nil, fmt.Errorf("failed to scan stage row: %w", err)
		}
		s.Duration = time.Duration(us) * time.Microsecond
		stages = append(stages, s)
	}
	return stages, rows.Err()
}

// Stats aggregates all stored renders. Average duration and pixel totals
// cover successful renders only.
func (r *Repository) Stats(ctx context.Context) (HistoryStats, error) {
	var stats HistoryStats
	conn, err := r.db.conn()
	if err != nil {
		return stats, err
	}

	var (
		avgMS float64
		last  sql.NullString
	)
	err = conn.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN status = 'success' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'error' THEN 1 ELSE 0 END), 0),
			COALESCE(AVG(CASE WHEN status = 'success' THEN duration_ms END), 0.0),
			COALESCE(SUM(CASE WHEN status = 'success' THEN width * height ELSE 0 END), 0),
			COALESCE(SUM(output_bytes), 0),
			strftime('%Y-%m-%d %H:%M:%S', MAX(created_at))
		FROM render_history`,
	).Scan(&stats.Total, &stats.Succeeded, &stats.Failed, &avgMS, &stats.TotalPixels, &stats.OutputBytes, &last)
	if err != nil {
		return stats, fmt.Errorf("failed to aggregate render history: %w", err)
	}

	stats.AvgDuration = time.Duration(avgMS * float64(time.Millisecond))
	if last.Valid {
		stats.LastRenderAt, _ = time.ParseInLocation(timestampLayout, last.String, time.UTC)
	}
	return stats, nil
}

// StageAverages returns the mean duration of each stage in pipeline order.
func (r *Repository) StageAverages(ctx context.Context) ([]StageAverage, error) {
	conn, err := r.db.conn()
	if err != nil {
		return nil, err
	}

	rows, err := conn.QueryContext(ctx, `
		SELECT stage, COUNT(*), AVG(duration_us)
		FROM render_stages
		GROUP BY stage
		ORDER BY MIN(position), stage`)
	if err != nil {
		return nil, fmt.Errorf("failed to query stage averages: %w", err)
	}
	defer rows.Close()

	var out []StageAverage
	for rows.Next() {
		var (
			s     StageAverage
			avgUS float64
		)
		if err := rows.Scan(&s.Name, &s.Count, &avgUS); err != nil {
			return nil, fmt.Errorf("failed to scan stage average: %w", err)
		}
		s.Average = time.Duration(avgUS * float64(time.Microsecond))
		out = append(out, s)
	}
	return out, rows.Err()
}

// CountRenders returns the number of stored renders.
func (r *Repository) CountRenders(ctx context.Context) (int64, error) {
	conn, err := r.db.conn()
	if err != nil {
		return 0, err
	}
	var n int64
	if err := conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM render_history`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count renders: %w", err)
	}
	return n, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
