package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/skillwave/skillwave-backend/pkg/logger"
)

const defaultAbandonedRetentionDays = 30

type cartCleanupRepo interface {
	DeleteExpired(ctx context.Context, now time.Time, staleBefore time.Time) (int64, error)
}

// CartCleanupJobParams configure the expired cart purge.
type CartCleanupJobParams struct {
	Logger     *logger.Logger
	Repository cartCleanupRepo
	Retention  int
}

// NewCartCleanupJob deletes carts past their expiry along with abandoned
// carts untouched for the retention window. Items cascade with the cart.
func NewCartCleanupJob(params CartCleanupJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	retention := params.Retention
	if retention <= 0 {
		retention = defaultAbandonedRetentionDays
	}
	return &cartCleanupJob{
		logg:      params.Logger,
		repo:      params.Repository,
		retention: retention,
		now:       time.Now,
	}, nil
}

type cartCleanupJob struct {
	logg      *logger.Logger
	repo      cartCleanupRepo
	retention int
	now       func() time.Time
}

func (j *cartCleanupJob) Name() string { return "cart-cleanup" }

func (j *cartCleanupJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	staleBefore := now.Add(-time.Duration(j.retention) * 24 * time.Hour)
	deleted, err := j.repo.DeleteExpired(ctx, now, staleBefore)
	if err != nil {
		return fmt.Errorf("cart cleanup: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"stale_before":   staleBefore,
		"retention_days": j.retention,
		"rows_deleted":   deleted,
	})
	j.logg.Info(logCtx, "cart cleanup complete")
	return nil
}
