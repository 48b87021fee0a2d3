// Package alerts implements the operational alert rule engine: revenue
// target shortfall and achievement checks, low occupancy during peak hours,
// and long-running session detection, each with its own de-duplication
// policy over the alert log.
package alerts

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"playhub/internal/models"
	"playhub/internal/period"
	"playhub/internal/storage"
)

// Evaluation thresholds. Hours are local wall-clock hours.
const (
	dailyCriticalHour = 18
	dailyCriticalPct  = 70
	dailyErrorPct     = 30
	dailyAtRiskHour   = 15
	dailyAtRiskPct    = 40

	weeklyLagPct      = 20
	weeklyLagErrorPct = 40

	monthlyLagPct      = 15
	monthlyLagErrorPct = 30

	peakStartHour   = 17
	peakEndHour     = 22
	lowOccupancyPct = 20
	occupancyErrPct = 10
	occupancyDedup  = 2 * time.Hour

	longSessionAfter   = 4 * time.Hour
	longSessionWarnHrs = 6
)

// Publisher pushes freshly raised alerts to live dashboard subscribers.
type Publisher interface {
	Publish(eventType string, payload interface{})
}

// Evaluator inspects targets, occupancy and open sessions and appends
// alerts. Every invocation re-evaluates all rules; the dedup scans keep the
// alert log quiet.
type Evaluator struct {
	store     storage.Store
	publisher Publisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewEvaluator builds the rule engine. publisher may be nil.
func NewEvaluator(store storage.Store, publisher Publisher, logger *zap.Logger) *Evaluator {
	return &Evaluator{
		store:     store,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// SetNow overrides the evaluator clock, for tests.
func (e *Evaluator) SetNow(now func() time.Time) {
	e.now = now
}

// RunSweep evaluates the timer-driven rules. Each top-level check is
// isolated: a failure in one is logged and does not stop the others.
func (e *Evaluator) RunSweep(ctx context.Context) {
	if err := e.checkRevenueTargets(ctx); err != nil {
		e.logger.Error("revenue target check failed", zap.Error(err))
	}
	if err := e.checkOccupancy(ctx); err != nil {
		e.logger.Error("occupancy check failed", zap.Error(err))
	}
	if err := e.checkLongSessions(ctx); err != nil {
		e.logger.Error("long session check failed", zap.Error(err))
	}
}

// CheckAchievements is the inline post-close check: it celebrates targets in
// the 85%+ bands. It carries no dedup window, matching the dashboard's
// historical behavior; every qualifying close re-emits.
func (e *Evaluator) CheckAchievements(ctx context.Context) {
	targets, err := e.store.ListTargets(ctx)
	if err != nil {
		e.logger.Error("achievement check failed", zap.Error(err))
		return
	}

	for _, target := range targets {
		pct := target.Percentage()
		label := capitalize(target.Type)
		switch {
		case pct >= 100:
			e.emit(ctx, models.AlertRevenueTarget, models.SeverityInfo,
				fmt.Sprintf("🎉 %s target achieved!", label))
		case pct >= 90:
			e.emit(ctx, models.AlertRevenueTarget, models.SeverityWarning,
				fmt.Sprintf("%s target %d%% achieved - Almost there!", label, roundPct(pct)))
		case pct >= 85:
			e.emit(ctx, models.AlertRevenueTarget, models.SeverityInfo,
				fmt.Sprintf("%s target %d%% achieved", label, roundPct(pct)))
		}
	}
}

func (e *Evaluator) checkRevenueTargets(ctx context.Context) error {
	targets, err := e.store.ListTargets(ctx)
	if err != nil {
		return err
	}
	existing, err := e.store.ListAlerts(ctx)
	if err != nil {
		return err
	}

	now := e.now()
	hour := now.Hour()

	for _, target := range targets {
		// At most one shortfall alert per target type per calendar day.
		if hasRevenueAlertToday(existing, target.Type, now) {
			continue
		}

		pct := target.Percentage()
		var severity, message string

		switch target.Type {
		case period.Daily:
			if hour >= dailyCriticalHour && pct < dailyCriticalPct {
				severity = models.SeverityWarning
				if pct < dailyErrorPct {
					severity = models.SeverityError
				}
				message = fmt.Sprintf("Daily revenue target critical - only ₹%s of ₹%s achieved (%d%%)",
					target.CurrentAmount.StringFixed(0), target.TargetAmount.StringFixed(0), roundPct(pct))
			} else if hour >= dailyAtRiskHour && pct < dailyAtRiskPct {
				severity = models.SeverityWarning
				message = fmt.Sprintf("Daily revenue target at risk - only ₹%s of ₹%s achieved (%d%%)",
					target.CurrentAmount.StringFixed(0), target.TargetAmount.StringFixed(0), roundPct(pct))
			}

		case period.Weekly:
			expected := float64(period.DaysIntoWeek(now)) / 7 * 100
			if pct < expected-weeklyLagPct {
				severity = models.SeverityWarning
				if pct < expected-weeklyLagErrorPct {
					severity = models.SeverityError
				}
				message = fmt.Sprintf("Weekly revenue target behind schedule - ₹%s of ₹%s (%d%% vs expected %d%%)",
					target.CurrentAmount.StringFixed(0), target.TargetAmount.StringFixed(0), roundPct(pct), roundPct(expected))
			}

		case period.Monthly:
			expected := float64(now.Day()) / float64(period.DaysInMonth(now)) * 100
			if pct < expected-monthlyLagPct {
				severity = models.SeverityWarning
				if pct < expected-monthlyLagErrorPct {
					severity = models.SeverityError
				}
				message = fmt.Sprintf("Monthly revenue target behind schedule - ₹%s of ₹%s (%d%% vs expected %d%%)",
					target.CurrentAmount.StringFixed(0), target.TargetAmount.StringFixed(0), roundPct(pct), roundPct(expected))
			}
		}

		if message == "" {
			continue
		}
		alert := e.emit(ctx, models.AlertRevenueTarget, severity, message)
		if alert != nil {
			existing = append(existing, *alert)
		}
	}
	return nil
}

func (e *Evaluator) checkOccupancy(ctx context.Context) error {
	now := e.now()
	hour := now.Hour()
	if hour < peakStartHour || hour > peakEndHour {
		return nil
	}

	stations, err := e.store.ListStations(ctx)
	if err != nil {
		return err
	}
	if len(stations) == 0 {
		return nil
	}
	active, err := e.store.ListActiveSessions(ctx)
	if err != nil {
		return err
	}

	occupied := len(active)
	total := len(stations)
	rate := float64(occupied) / float64(total) * 100
	if rate >= lowOccupancyPct {
		return nil
	}

	existing, err := e.store.ListAlerts(ctx)
	if err != nil {
		return err
	}
	cutoff := now.Add(-occupancyDedup)
	for _, alert := range existing {
		if alert.Type == models.AlertLowOccupancy && alert.CreatedAt.After(cutoff) {
			return nil
		}
	}

	severity := models.SeverityWarning
	if rate < occupancyErrPct {
		severity = models.SeverityError
	}
	e.emit(ctx, models.AlertLowOccupancy, severity,
		fmt.Sprintf("Low occupancy during peak hours - only %d of %d stations occupied (%d%%)",
			occupied, total, roundPct(rate)))
	return nil
}

func (e *Evaluator) checkLongSessions(ctx context.Context) error {
	active, err := e.store.ListActiveSessions(ctx)
	if err != nil {
		return err
	}
	existing, err := e.store.ListAlerts(ctx)
	if err != nil {
		return err
	}

	now := e.now()
	threshold := now.Add(-longSessionAfter)

	for _, session := range active {
		if !session.StartTime.Before(threshold) {
			continue
		}
		// At most one alert per session, ever: the message carries the
		// session id and any prior mention suppresses re-emission.
		if hasLongSessionAlert(existing, session.ID) {
			continue
		}

		elapsed := int(math.Round(now.Sub(session.StartTime).Hours()))
		severity := models.SeverityInfo
		if elapsed > longSessionWarnHrs {
			severity = models.SeverityWarning
		}

		stationName := session.StationID
		if station, err := e.store.GetStation(ctx, session.StationID); err == nil {
			stationName = station.Name
		}

		alert := e.emit(ctx, models.AlertLongSession, severity,
			fmt.Sprintf("Customer has been playing for %d hours on %s - consider checking in (session %s)",
				elapsed, stationName, session.ID))
		if alert != nil {
			existing = append(existing, *alert)
		}
	}
	return nil
}

// emit appends an alert, publishes it to subscribers and logs it. Insert
// failures are logged and swallowed; alerting is best-effort.
func (e *Evaluator) emit(ctx context.Context, alertType, severity, message string) *models.Alert {
	alert := &models.Alert{
		Type:     alertType,
		Message:  message,
		Severity: severity,
	}
	if err := e.store.CreateAlert(ctx, alert); err != nil {
		e.logger.Error("failed to create alert", zap.String("type", alertType), zap.Error(err))
		return nil
	}
	if e.publisher != nil {
		e.publisher.Publish("alert", alert)
	}
	e.logger.Info("alert raised",
		zap.String("type", alertType),
		zap.String("severity", severity),
		zap.String("message", message),
	)
	return alert
}

func hasRevenueAlertToday(alerts []models.Alert, targetType string, now time.Time) bool {
	for _, alert := range alerts {
		if alert.Type == models.AlertRevenueTarget &&
			period.SameDay(alert.CreatedAt, now) &&
			strings.Contains(strings.ToLower(alert.Message), targetType) {
			return true
		}
	}
	return false
}

func hasLongSessionAlert(alerts []models.Alert, sessionID string) bool {
	for _, alert := range alerts {
		if alert.Type == models.AlertLongSession && strings.Contains(alert.Message, sessionID) {
			return true
		}
	}
	return false
}

func roundPct(pct float64) int {
	return int(math.Round(pct))
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
