// Package export assembles the end-of-day summary and hands it to an
// external sink. Delivery is fire-and-forget: failures are logged and never
// touch core state.
package export

import (
	"context"
	"time"

	"go.uber.org/zap"

	"playhub/internal/models"
	"playhub/internal/period"
	"playhub/internal/service"
	"playhub/internal/storage"
)

// DailySummary is the object delivered to the sink.
type DailySummary struct {
	Date       string                    `json:"date"`
	Metrics    *service.DashboardMetrics `json:"metrics"`
	Sessions   []models.Session          `json:"sessions"`
	Targets    []models.RevenueTarget    `json:"targets"`
	ExportedAt time.Time                 `json:"exported_at"`
}

// Sink receives daily summaries.
type Sink interface {
	Enabled() bool
	Export(ctx context.Context, summary DailySummary) error
}

// Exporter builds and schedules daily summary deliveries.
type Exporter struct {
	store     storage.Store
	dashboard *service.Dashboard
	sink      Sink
	logger    *zap.Logger
	now       func() time.Time
}

// NewExporter builds the exporter.
func NewExporter(store storage.Store, dashboard *service.Dashboard, sink Sink, logger *zap.Logger) *Exporter {
	return &Exporter{
		store:     store,
		dashboard: dashboard,
		sink:      sink,
		logger:    logger,
		now:       time.Now,
	}
}

// ExportDay assembles and delivers the summary for the given calendar day.
func (e *Exporter) ExportDay(ctx context.Context, day time.Time) error {
	if e.sink == nil || !e.sink.Enabled() {
		e.logger.Debug("export sink not configured, skipping")
		return nil
	}

	start, end := period.DayBounds(day)
	sessions, err := e.store.SessionsBetween(ctx, start, end)
	if err != nil {
		return err
	}
	metrics, err := e.dashboard.Metrics(ctx)
	if err != nil {
		return err
	}
	targets, err := e.store.ListTargets(ctx)
	if err != nil {
		return err
	}

	summary := DailySummary{
		Date:       start.Format("2006-01-02"),
		Metrics:    metrics,
		Sessions:   sessions,
		Targets:    targets,
		ExportedAt: e.now(),
	}
	if err := e.sink.Export(ctx, summary); err != nil {
		return err
	}

	e.logger.Info("daily summary exported",
		zap.String("date", summary.Date),
		zap.Int("sessions", len(sessions)),
	)
	return nil
}

// Run exports the just-finished day shortly after each midnight until ctx is
// done. Failures are logged; the loop keeps going.
func (e *Exporter) Run(ctx context.Context) {
	if e.sink == nil || !e.sink.Enabled() {
		e.logger.Info("daily export disabled, sink not configured")
		return
	}

	for {
		now := e.now()
		_, nextMidnight := period.DayBounds(now)
		timer := time.NewTimer(nextMidnight.Sub(now))

		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			if err := e.ExportDay(ctx, e.now().AddDate(0, 0, -1)); err != nil {
				e.logger.Error("daily export failed", zap.Error(err))
			}
		}
	}
}
