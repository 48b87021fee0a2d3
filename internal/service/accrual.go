package service

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"playhub/internal/period"
	"playhub/internal/storage"
)

// TargetAccrual routes billed amounts into the daily/weekly/monthly revenue
// target buckets.
type TargetAccrual struct {
	store  storage.Store
	logger *zap.Logger
}

// NewTargetAccrual builds the accrual engine.
func NewTargetAccrual(store storage.Store, logger *zap.Logger) *TargetAccrual {
	return &TargetAccrual{store: store, logger: logger}
}

// Accrue adds amount to each target bucket current at the given instant.
// Buckets with no provisioned target row are skipped; accrual never creates
// target rows.
func (a *TargetAccrual) Accrue(ctx context.Context, amount decimal.Decimal, now time.Time) error {
	for _, kind := range period.Kinds {
		periodID := period.Resolve(kind, now)
		target, err := a.store.GetTargetByPeriod(ctx, kind, periodID)
		if errors.Is(err, storage.ErrTargetNotFound) {
			a.logger.Debug("no target provisioned for period, skipping accrual",
				zap.String("type", kind),
				zap.String("period", periodID),
			)
			continue
		}
		if err != nil {
			return err
		}
		if err := a.store.AddToTarget(ctx, target.ID, amount); err != nil {
			return err
		}
	}
	return nil
}
