package db

import (
	"context"
	"testing"
	"time"
)

func TestCleanup(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)
	repo := NewRepository(database, nil)

	old := sampleRender("old", StatusSuccess)
	old.CreatedAt = time.Now().AddDate(0, 0, -40)
	recent := sampleRender("recent", StatusSuccess)
	recent.CreatedAt = time.Now().AddDate(0, 0, -1)
	for _, rec := range []RenderRecord{old, recent} {
		if _, err := repo.InsertRender(ctx, rec); err != nil {
			t.Fatalf("InsertRender(%s) error = %v", rec.JobID, err)
		}
	}

	result, err := database.Cleanup(ctx, 30)
	if err != nil {
		t.Fatalf("Cleanup() error = %v", err)
	}
	if result.RendersDeleted != 1 {
		t.Errorf("RendersDeleted = %d, want 1", result.RendersDeleted)
	}
	if result.StagesDeleted != int64(len(old.Stages)) {
		t.Errorf("StagesDeleted = %d, want %d", result.StagesDeleted, len(old.Stages))
	}

	got, err := repo.RecentRenders(ctx, 10)
	if err != nil {
		t.Fatalf("RecentRenders() error = %v", err)
	}
	if len(got) != 1 || got[0].JobID != "recent" {
		t.Errorf("remaining renders = %+v, want only recent", got)
	}

	// Nothing left to delete.
	result, err = database.Cleanup(ctx, 30)
	if err != nil {
		t.Fatalf("second Cleanup() error = %v", err)
	}
	if result.RendersDeleted != 0 {
		t.Errorf("second RendersDeleted = %d, want 0", result.RendersDeleted)
	}
}

func TestCleanupErrors(t *testing.T) {
	database := openTestDB(t)

	if _, err := database.Cleanup(context.Background(), -1); err == nil {
		t.Error("Cleanup(-1) expected error")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := database.Cleanup(ctx, 30); err == nil {
		t.Error("Cleanup() with cancelled context expected error")
	}
}

func TestStartCleanupScheduler(t *testing.T) {
	database := openTestDB(t)
	repo := NewRepository(database, nil)

	old := sampleRender("old", StatusSuccess)
	old.CreatedAt = time.Now().AddDate(0, 0, -10)
	if _, err := repo.InsertRender(context.Background(), old); err != nil {
		t.Fatalf("InsertRender() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	results := make(chan CleanupResult, 4)
	done := database.StartCleanupScheduler(ctx, CleanupSchedulerConfig{
		RetentionDays: 5,
		Interval:      time.Hour,
		OnCleanup: func(result CleanupResult, err error) {
			if err == nil {
				results <- result
			}
		},
	})

	select {
	case r := <-results:
		if r.RendersDeleted != 1 {
			t.Errorf("initial pass RendersDeleted = %d, want 1", r.RendersDeleted)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not run initial cleanup")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}
}
