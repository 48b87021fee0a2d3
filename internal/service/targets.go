package service

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"playhub/internal/models"
	"playhub/internal/period"
	"playhub/internal/storage"
)

// TargetAmounts holds the default goal per bucket kind, used when
// provisioning the current period's rows.
type TargetAmounts struct {
	Daily   decimal.Decimal
	Weekly  decimal.Decimal
	Monthly decimal.Decimal
}

func (a TargetAmounts) forKind(kind string) decimal.Decimal {
	switch kind {
	case period.Daily:
		return a.Daily
	case period.Weekly:
		return a.Weekly
	case period.Monthly:
		return a.Monthly
	default:
		return decimal.Zero
	}
}

// TargetService provisions and lists revenue targets.
type TargetService struct {
	store  storage.Store
	logger *zap.Logger
}

// NewTargetService builds the service.
func NewTargetService(store storage.Store, logger *zap.Logger) *TargetService {
	return &TargetService{store: store, logger: logger}
}

// Create validates and inserts a target row.
func (s *TargetService) Create(ctx context.Context, target *models.RevenueTarget) error {
	switch target.Type {
	case period.Daily, period.Weekly, period.Monthly:
	default:
		return ErrInvalidTargetType
	}
	if target.TargetAmount.Sign() <= 0 {
		return ErrInvalidTargetAmount
	}
	if target.Period == "" {
		return errors.New("service: target period is required")
	}
	return s.store.CreateTarget(ctx, target)
}

// List returns all target rows.
func (s *TargetService) List(ctx context.Context) ([]models.RevenueTarget, error) {
	return s.store.ListTargets(ctx)
}

// EnsureCurrent provisions the daily/weekly/monthly rows for the buckets
// current at the given instant, if they do not exist yet. Called at startup;
// accrual itself never creates rows.
func (s *TargetService) EnsureCurrent(ctx context.Context, amounts TargetAmounts, now time.Time) error {
	for _, kind := range period.Kinds {
		periodID := period.Resolve(kind, now)
		_, err := s.store.GetTargetByPeriod(ctx, kind, periodID)
		if err == nil {
			continue
		}
		if !errors.Is(err, storage.ErrTargetNotFound) {
			return err
		}
		amount := amounts.forKind(kind)
		if amount.Sign() <= 0 {
			continue
		}
		target := &models.RevenueTarget{
			Type:         kind,
			Period:       periodID,
			TargetAmount: amount,
		}
		if err := s.store.CreateTarget(ctx, target); err != nil {
			return err
		}
		s.logger.Info("provisioned revenue target",
			zap.String("type", kind),
			zap.String("period", periodID),
			zap.String("amount", amount.StringFixed(2)),
		)
	}
	return nil
}
