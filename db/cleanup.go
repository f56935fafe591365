package db

import (
	"context"
	"fmt"
	"time"
)

// CleanupResult describes one retention pass.
type CleanupResult struct {
	RendersDeleted int64
	StagesDeleted  int64
	Duration       time.Duration
}

// Cleanup deletes renders older than retentionDays, then runs VACUUM.
// A retentionDays of 0 deletes everything created before now.
//
// Example:
//
//	result, err := database.Cleanup(ctx, 30)
//	if err != nil {
//	    log.Printf("cleanup failed: %v", err)
//	}
func (d *Database) Cleanup(ctx context.Context, retentionDays int) (CleanupResult, error) {
	if retentionDays < 0 {
		return CleanupResult{}, fmt.Errorf("retentionDays must be non-negative, got %d", retentionDays)
	}
	return d.DeleteBefore(ctx, time.Now().AddDate(0, 0, -retentionDays))
}

// DeleteBefore deletes renders created before cutoff and their stage rows
// in one transaction.
func (d *Database) DeleteBefore(ctx context.Context, cutoff time.Time) (CleanupResult, error) {
	start := time.Now()
	var result CleanupResult

	if err := ctx.Err(); err != nil {
		return result, err
	}

	conn, err := d.conn()
	if err != nil {
		return result, err
	}

	cutoffStr := cutoff.UTC().Format(timestampLayout)

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return result, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		DELETE FROM render_stages
		WHERE render_id IN (SELECT id FROM render_history WHERE created_at < ?)`, cutoffStr)
	if err != nil {
		return result, fmt.Errorf("failed to delete stages: %w", err)
	}
	result.StagesDeleted, _ = res.RowsAffected()

	res, err = tx.ExecContext(ctx, `DELETE FROM render_history WHERE created_at < ?`, cutoffStr)
	if err != nil {
		return result, fmt.Errorf("failed to delete renders: %w", err)
	}
	result.RendersDeleted, _ = res.RowsAffected()

	if err := tx.Commit(); err != nil {
		return result, fmt.Errorf("failed to commit cleanup: %w", err)
	}

	// VACUUM cannot run inside a transaction.
	if result.RendersDeleted > 0 {
		if _, err := conn.ExecContext(ctx, "VACUUM"); err != nil {
			return result, fmt.Errorf("cleanup succeeded but VACUUM failed: %w", err)
		}
	}

	result.Duration = time.Since(start)
	return result, nil
}

// CleanupSchedulerConfig configures StartCleanupScheduler.
type CleanupSchedulerConfig struct {
	RetentionDays int
	Interval      time.Duration
	// OnCleanup is called after each pass. May be nil.
	OnCleanup func(result CleanupResult, err error)
}

// StartCleanupScheduler runs Cleanup immediately and then every Interval
// until ctx is cancelled. The returned channel is closed when the
// scheduler goroutine exits.
func (d *Database) StartCleanupScheduler(ctx context.Context, config CleanupSchedulerConfig) <-chan struct{} {
	if config.Interval <= 0 {
		config.Interval = 24 * time.Hour
	}
	done := make(chan struct{})

	run := func() {
		result, err := d.Cleanup(ctx, config.RetentionDays)
		if config.OnCleanup != nil {
			config.OnCleanup(result, err)
		}
	}

	go func() {
		defer close(done)
		run()

		ticker := time.NewTicker(config.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				run()
			}
		}
	}()
	return done
}
