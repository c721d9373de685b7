package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/skillwave/skillwave-backend/pkg/logger"
)

func TestCartAbandonJobMarksExpiredCarts(t *testing.T) {
	now := time.Date(2026, 2, 1, 6, 0, 0, 0, time.UTC)
	repo := &fakeCartSweepRepo{markedRows: 7}
	jobIface, err := NewCartAbandonJob(CartAbandonJobParams{
		Logger:     logger.New(logger.Options{ServiceName: "test"}),
		Repository: repo,
	})
	if err != nil {
		t.Fatalf("NewCartAbandonJob: %v", err)
	}
	job := jobIface.(*cartAbandonJob)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !repo.lastMarkCutoff.Equal(now) {
		t.Fatalf("expected cutoff %s, got %s", now, repo.lastMarkCutoff)
	}
	if repo.markCalls != 1 {
		t.Fatalf("expected one sweep, got %d", repo.markCalls)
	}
}

func TestCartAbandonJobPropagatesErrors(t *testing.T) {
	repo := &fakeCartSweepRepo{err: errors.New("boom")}
	jobIface, err := NewCartAbandonJob(CartAbandonJobParams{
		Logger:     logger.New(logger.Options{ServiceName: "test"}),
		Repository: repo,
	})
	if err != nil {
		t.Fatalf("NewCartAbandonJob: %v", err)
	}
	if err := jobIface.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestCartCleanupJobUsesRetentionWindow(t *testing.T) {
	now := time.Date(2026, 2, 1, 6, 0, 0, 0, time.UTC)
	repo := &fakeCartSweepRepo{deletedRows: 3}
	jobIface, err := NewCartCleanupJob(CartCleanupJobParams{
		Logger:     logger.New(logger.Options{ServiceName: "test"}),
		Repository: repo,
		Retention:  14,
	})
	if err != nil {
		t.Fatalf("NewCartCleanupJob: %v", err)
	}
	job := jobIface.(*cartCleanupJob)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	wantStale := now.Add(-14 * 24 * time.Hour)
	if !repo.lastStaleBefore.Equal(wantStale) {
		t.Fatalf("expected stale cutoff %s, got %s", wantStale, repo.lastStaleBefore)
	}
	if !repo.lastDeleteNow.Equal(now) {
		t.Fatalf("expected now %s, got %s", now, repo.lastDeleteNow)
	}
}

func TestCartCleanupJobDefaultsRetention(t *testing.T) {
	repo := &fakeCartSweepRepo{}
	jobIface, err := NewCartCleanupJob(CartCleanupJobParams{
		Logger:     logger.New(logger.Options{ServiceName: "test"}),
		Repository: repo,
	})
	if err != nil {
		t.Fatalf("NewCartCleanupJob: %v", err)
	}
	job := jobIface.(*cartCleanupJob)
	if job.retention != defaultAbandonedRetentionDays {
		t.Fatalf("expected default retention, got %d", job.retention)
	}
}

type fakeCartSweepRepo struct {
	markedRows      int64
	deletedRows     int64
	err             error
	markCalls       int
	lastMarkCutoff  time.Time
	lastDeleteNow   time.Time
	lastStaleBefore time.Time
}

func (f *fakeCartSweepRepo) MarkAbandoned(ctx context.Context, expiredBefore time.Time) (int64, error) {
	f.markCalls++
	f.lastMarkCutoff = expiredBefore
	if f.err != nil {
		return 0, f.err
	}
	return f.markedRows, nil
}

func (f *fakeCartSweepRepo) DeleteExpired(ctx context.Context, now time.Time, staleBefore time.Time) (int64, error) {
	f.lastDeleteNow = now
	f.lastStaleBefore = staleBefore
	if f.err != nil {
		return 0, f.err
	}
	return f.deletedRows, nil
}
