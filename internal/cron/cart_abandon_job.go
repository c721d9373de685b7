package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/skillwave/skillwave-backend/pkg/logger"
)

type cartAbandonRepo interface {
	MarkAbandoned(ctx context.Context, expiredBefore time.Time) (int64, error)
}

// CartAbandonJobParams configure the abandonment sweep.
type CartAbandonJobParams struct {
	Logger     *logger.Logger
	Repository cartAbandonRepo
}

// NewCartAbandonJob flags active carts past their expiry as abandoned so
// they stop resolving for owner lookups and age into cleanup.
func NewCartAbandonJob(params CartAbandonJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	return &cartAbandonJob{
		logg: params.Logger,
		repo: params.Repository,
		now:  time.Now,
	}, nil
}

type cartAbandonJob struct {
	logg *logger.Logger
	repo cartAbandonRepo
	now  func() time.Time
}

func (j *cartAbandonJob) Name() string { return "cart-abandon" }

func (j *cartAbandonJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC()
	marked, err := j.repo.MarkAbandoned(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("cart abandon sweep: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":      cutoff,
		"rows_marked": marked,
	})
	j.logg.Info(logCtx, "cart abandon sweep complete")
	return nil
}
