package alerts

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"playhub/internal/models"
	"playhub/internal/period"
	"playhub/internal/storage"
)

func newTestEvaluator(store storage.Store, now time.Time) *Evaluator {
	e := NewEvaluator(store, nil, zap.NewNop())
	e.SetNow(func() time.Time { return now })
	return e
}

func addTarget(t *testing.T, store *storage.Memory, kind string, now time.Time, target, current string) {
	t.Helper()
	row := &models.RevenueTarget{
		Type:          kind,
		Period:        period.Resolve(kind, now),
		TargetAmount:  decimal.RequireFromString(target),
		CurrentAmount: decimal.RequireFromString(current),
	}
	require.NoError(t, store.CreateTarget(context.Background(), row))
}

func addStations(t *testing.T, store *storage.Memory, n int) []string {
	t.Helper()
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		station := &models.Station{
			Name:       fmt.Sprintf("PC-%02d", i+1),
			Type:       models.StationTypePC,
			HourlyRate: decimal.RequireFromString("100"),
			IsActive:   true,
		}
		require.NoError(t, store.CreateStation(context.Background(), station))
		ids = append(ids, station.ID)
	}
	return ids
}

func openSession(t *testing.T, store *storage.Memory, stationID string, start time.Time) *models.Session {
	t.Helper()
	session := &models.Session{
		CustomerID: "customer",
		StationID:  stationID,
		StartTime:  start,
	}
	require.NoError(t, store.CreateSession(context.Background(), session))
	return session
}

func alertsOfType(t *testing.T, store storage.Store, alertType string) []models.Alert {
	t.Helper()
	all, err := store.ListAlerts(context.Background())
	require.NoError(t, err)
	var out []models.Alert
	for _, alert := range all {
		if alert.Type == alertType {
			out = append(out, alert)
		}
	}
	return out
}

func TestDailyTargetHealthyEveningNoAlert(t *testing.T) {
	store := storage.NewMemory()
	now := time.Date(2026, 3, 19, 19, 0, 0, 0, time.UTC)
	store.Now = func() time.Time { return now }
	// 11000/15000 = 73.3%, above the 70% evening floor.
	addTarget(t, store, period.Daily, now, "15000", "11000")

	newTestEvaluator(store, now).RunSweep(context.Background())

	assert.Empty(t, alertsOfType(t, store, models.AlertRevenueTarget))
}

func TestDailyTargetCriticalWarning(t *testing.T) {
	store := storage.NewMemory()
	now := time.Date(2026, 3, 19, 19, 0, 0, 0, time.UTC)
	store.Now = func() time.Time { return now }
	// 9000/15000 = 60%: below 70% after 18:00 but above the 30% error floor.
	addTarget(t, store, period.Daily, now, "15000", "9000")

	newTestEvaluator(store, now).RunSweep(context.Background())

	raised := alertsOfType(t, store, models.AlertRevenueTarget)
	require.Len(t, raised, 1)
	assert.Equal(t, models.SeverityWarning, raised[0].Severity)
	assert.Contains(t, raised[0].Message, "Daily revenue target critical")
	assert.Contains(t, raised[0].Message, "₹9000 of ₹15000")
	assert.Contains(t, raised[0].Message, "(60%)")
}

func TestDailyTargetCriticalError(t *testing.T) {
	store := storage.NewMemory()
	now := time.Date(2026, 3, 19, 19, 0, 0, 0, time.UTC)
	store.Now = func() time.Time { return now }
	// 4000/15000 = 26.7%, under the 30% error floor.
	addTarget(t, store, period.Daily, now, "15000", "4000")

	newTestEvaluator(store, now).RunSweep(context.Background())

	raised := alertsOfType(t, store, models.AlertRevenueTarget)
	require.Len(t, raised, 1)
	assert.Equal(t, models.SeverityError, raised[0].Severity)
}

func TestDailyTargetAtRiskAfternoon(t *testing.T) {
	store := storage.NewMemory()
	now := time.Date(2026, 3, 19, 16, 0, 0, 0, time.UTC)
	store.Now = func() time.Time { return now }
	// 5250/15000 = 35%: under 40% after 15:00 triggers the at-risk warning.
	addTarget(t, store, period.Daily, now, "15000", "5250")

	newTestEvaluator(store, now).RunSweep(context.Background())

	raised := alertsOfType(t, store, models.AlertRevenueTarget)
	require.Len(t, raised, 1)
	assert.Equal(t, models.SeverityWarning, raised[0].Severity)
	assert.Contains(t, raised[0].Message, "at risk")
}

func TestDailyTargetMorningSilence(t *testing.T) {
	store := storage.NewMemory()
	now := time.Date(2026, 3, 19, 10, 0, 0, 0, time.UTC)
	store.Now = func() time.Time { return now }
	// 5% complete but it's 10:00; the daily rule is hour-gated.
	addTarget(t, store, period.Daily, now, "15000", "750")

	newTestEvaluator(store, now).RunSweep(context.Background())

	assert.Empty(t, alertsOfType(t, store, models.AlertRevenueTarget))
}

func TestDailyTargetOncePerDay(t *testing.T) {
	store := storage.NewMemory()
	now := time.Date(2026, 3, 19, 19, 0, 0, 0, time.UTC)
	store.Now = func() time.Time { return now }
	addTarget(t, store, period.Daily, now, "15000", "9000")

	evaluator := newTestEvaluator(store, now)
	evaluator.RunSweep(context.Background())
	evaluator.SetNow(func() time.Time { return now.Add(15 * time.Minute) })
	evaluator.RunSweep(context.Background())

	assert.Len(t, alertsOfType(t, store, models.AlertRevenueTarget), 1)
}

func TestDailyTargetFiresAgainNextDay(t *testing.T) {
	store := storage.NewMemory()
	now := time.Date(2026, 3, 19, 19, 0, 0, 0, time.UTC)
	store.Now = func() time.Time { return now }
	addTarget(t, store, period.Daily, now, "15000", "9000")

	evaluator := newTestEvaluator(store, now)
	evaluator.RunSweep(context.Background())

	nextDay := now.AddDate(0, 0, 1)
	store.Now = func() time.Time { return nextDay }
	evaluator.SetNow(func() time.Time { return nextDay })
	evaluator.RunSweep(context.Background())

	assert.Len(t, alertsOfType(t, store, models.AlertRevenueTarget), 2)
}

func TestWeeklyTargetBehindSchedule(t *testing.T) {
	store := storage.NewMemory()
	// Thursday: expected pace is 4/7 = 57.1%.
	now := time.Date(2026, 3, 19, 12, 0, 0, 0, time.UTC)
	store.Now = func() time.Time { return now }
	// 27000/90000 = 30%, more than 20 points behind.
	addTarget(t, store, period.Weekly, now, "90000", "27000")

	newTestEvaluator(store, now).RunSweep(context.Background())

	raised := alertsOfType(t, store, models.AlertRevenueTarget)
	require.Len(t, raised, 1)
	assert.Equal(t, models.SeverityWarning, raised[0].Severity)
	assert.Contains(t, raised[0].Message, "Weekly revenue target behind schedule")
	assert.Contains(t, raised[0].Message, "(30% vs expected 57%)")
}

func TestWeeklyTargetFarBehindIsError(t *testing.T) {
	store := storage.NewMemory()
	now := time.Date(2026, 3, 19, 12, 0, 0, 0, time.UTC)
	store.Now = func() time.Time { return now }
	// 9000/90000 = 10%, more than 40 points behind Thursday's 57.1%.
	addTarget(t, store, period.Weekly, now, "90000", "9000")

	newTestEvaluator(store, now).RunSweep(context.Background())

	raised := alertsOfType(t, store, models.AlertRevenueTarget)
	require.Len(t, raised, 1)
	assert.Equal(t, models.SeverityError, raised[0].Severity)
}

func TestWeeklyTargetOnPaceNoAlert(t *testing.T) {
	store := storage.NewMemory()
	now := time.Date(2026, 3, 19, 12, 0, 0, 0, time.UTC)
	store.Now = func() time.Time { return now }
	// 45000/90000 = 50%, within 20 points of 57.1%.
	addTarget(t, store, period.Weekly, now, "90000", "45000")

	newTestEvaluator(store, now).RunSweep(context.Background())

	assert.Empty(t, alertsOfType(t, store, models.AlertRevenueTarget))
}

func TestMonthlyTargetBehindSchedule(t *testing.T) {
	store := storage.NewMemory()
	// April 15th of a 30-day month: expected pace is 50%.
	now := time.Date(2026, 4, 15, 12, 0, 0, 0, time.UTC)
	store.Now = func() time.Time { return now }
	// 105000/350000 = 30%, more than 15 points behind.
	addTarget(t, store, period.Monthly, now, "350000", "105000")

	newTestEvaluator(store, now).RunSweep(context.Background())

	raised := alertsOfType(t, store, models.AlertRevenueTarget)
	require.Len(t, raised, 1)
	assert.Equal(t, models.SeverityWarning, raised[0].Severity)
	assert.Contains(t, raised[0].Message, "Monthly revenue target behind schedule")
	assert.Contains(t, raised[0].Message, "(30% vs expected 50%)")
}

func TestMonthlyTargetFarBehindIsError(t *testing.T) {
	store := storage.NewMemory()
	now := time.Date(2026, 4, 15, 12, 0, 0, 0, time.UTC)
	store.Now = func() time.Time { return now }
	// 52500/350000 = 15%, more than 30 points behind 50%.
	addTarget(t, store, period.Monthly, now, "350000", "52500")

	newTestEvaluator(store, now).RunSweep(context.Background())

	raised := alertsOfType(t, store, models.AlertRevenueTarget)
	require.Len(t, raised, 1)
	assert.Equal(t, models.SeverityError, raised[0].Severity)
}

func TestSeparateDedupPerTargetType(t *testing.T) {
	store := storage.NewMemory()
	now := time.Date(2026, 3, 19, 19, 0, 0, 0, time.UTC)
	store.Now = func() time.Time { return now }
	addTarget(t, store, period.Daily, now, "15000", "4000")
	addTarget(t, store, period.Weekly, now, "90000", "9000")

	newTestEvaluator(store, now).RunSweep(context.Background())

	// One shortfall alert per target type on the same sweep.
	assert.Len(t, alertsOfType(t, store, models.AlertRevenueTarget), 2)
}

func TestAchievementBands(t *testing.T) {
	now := time.Date(2026, 3, 19, 21, 0, 0, 0, time.UTC)

	cases := []struct {
		name     string
		current  string
		severity string
		fragment string
	}{
		{"full", "15000", models.SeverityInfo, "🎉 Daily target achieved!"},
		{"ninety", "13800", models.SeverityWarning, "Daily target 92% achieved - Almost there!"},
		{"eightyfive", "12900", models.SeverityInfo, "Daily target 86% achieved"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := storage.NewMemory()
			store.Now = func() time.Time { return now }
			addTarget(t, store, period.Daily, now, "15000", tc.current)

			newTestEvaluator(store, now).CheckAchievements(context.Background())

			raised := alertsOfType(t, store, models.AlertRevenueTarget)
			require.Len(t, raised, 1)
			assert.Equal(t, tc.severity, raised[0].Severity)
			assert.Contains(t, raised[0].Message, tc.fragment)
		})
	}
}

func TestAchievementBelowBandIsSilent(t *testing.T) {
	store := storage.NewMemory()
	now := time.Date(2026, 3, 19, 21, 0, 0, 0, time.UTC)
	store.Now = func() time.Time { return now }
	addTarget(t, store, period.Daily, now, "15000", "12000") // 80%

	newTestEvaluator(store, now).CheckAchievements(context.Background())

	assert.Empty(t, alertsOfType(t, store, models.AlertRevenueTarget))
}

func TestAchievementsAreNotDeduplicated(t *testing.T) {
	store := storage.NewMemory()
	now := time.Date(2026, 3, 19, 21, 0, 0, 0, time.UTC)
	store.Now = func() time.Time { return now }
	addTarget(t, store, period.Daily, now, "15000", "15000")

	evaluator := newTestEvaluator(store, now)
	evaluator.CheckAchievements(context.Background())
	evaluator.CheckAchievements(context.Background())

	assert.Len(t, alertsOfType(t, store, models.AlertRevenueTarget), 2)
}

func TestLowOccupancyDuringPeak(t *testing.T) {
	store := storage.NewMemory()
	now := time.Date(2026, 3, 19, 18, 0, 0, 0, time.UTC)
	store.Now = func() time.Time { return now }
	ids := addStations(t, store, 23)
	openSession(t, store, ids[0], now.Add(-time.Hour))
	openSession(t, store, ids[1], now.Add(-time.Hour))

	newTestEvaluator(store, now).RunSweep(context.Background())

	raised := alertsOfType(t, store, models.AlertLowOccupancy)
	require.Len(t, raised, 1)
	// 2/23 = 8.7%, under the 10% error floor.
	assert.Equal(t, models.SeverityError, raised[0].Severity)
	assert.Contains(t, raised[0].Message, "only 2 of 23 stations occupied (9%)")
}

func TestLowOccupancyWarningBand(t *testing.T) {
	store := storage.NewMemory()
	now := time.Date(2026, 3, 19, 18, 0, 0, 0, time.UTC)
	store.Now = func() time.Time { return now }
	ids := addStations(t, store, 20)
	openSession(t, store, ids[0], now.Add(-time.Hour))
	openSession(t, store, ids[1], now.Add(-time.Hour))
	openSession(t, store, ids[2], now.Add(-time.Hour))

	newTestEvaluator(store, now).RunSweep(context.Background())

	raised := alertsOfType(t, store, models.AlertLowOccupancy)
	require.Len(t, raised, 1)
	// 3/20 = 15%: low but above the error floor.
	assert.Equal(t, models.SeverityWarning, raised[0].Severity)
}

func TestLowOccupancyOutsidePeakHours(t *testing.T) {
	store := storage.NewMemory()
	now := time.Date(2026, 3, 19, 12, 0, 0, 0, time.UTC)
	store.Now = func() time.Time { return now }
	addStations(t, store, 23)

	newTestEvaluator(store, now).RunSweep(context.Background())

	assert.Empty(t, alertsOfType(t, store, models.AlertLowOccupancy))
}

func TestLowOccupancySlidingDedup(t *testing.T) {
	store := storage.NewMemory()
	now := time.Date(2026, 3, 19, 18, 0, 0, 0, time.UTC)
	store.Now = func() time.Time { return now }
	addStations(t, store, 23)

	evaluator := newTestEvaluator(store, now)
	evaluator.RunSweep(context.Background())

	// Half an hour later: inside the 2h window, suppressed.
	evaluator.SetNow(func() time.Time { return now.Add(30 * time.Minute) })
	evaluator.RunSweep(context.Background())
	assert.Len(t, alertsOfType(t, store, models.AlertLowOccupancy), 1)

	// 2.5h later (still peak at 20:30): the window has passed, fires again.
	later := now.Add(2*time.Hour + 30*time.Minute)
	store.Now = func() time.Time { return later }
	evaluator.SetNow(func() time.Time { return later })
	evaluator.RunSweep(context.Background())
	assert.Len(t, alertsOfType(t, store, models.AlertLowOccupancy), 2)
}

func TestLowOccupancyNoStationsIsSilent(t *testing.T) {
	store := storage.NewMemory()
	now := time.Date(2026, 3, 19, 18, 0, 0, 0, time.UTC)
	store.Now = func() time.Time { return now }

	newTestEvaluator(store, now).RunSweep(context.Background())

	assert.Empty(t, alertsOfType(t, store, models.AlertLowOccupancy))
}

func TestLongSessionInfo(t *testing.T) {
	store := storage.NewMemory()
	now := time.Date(2026, 3, 19, 14, 0, 0, 0, time.UTC)
	store.Now = func() time.Time { return now }
	ids := addStations(t, store, 1)
	openSession(t, store, ids[0], now.Add(-5*time.Hour))

	newTestEvaluator(store, now).RunSweep(context.Background())

	raised := alertsOfType(t, store, models.AlertLongSession)
	require.Len(t, raised, 1)
	assert.Equal(t, models.SeverityInfo, raised[0].Severity)
	assert.Contains(t, raised[0].Message, "playing for 5 hours on PC-01")
}

func TestLongSessionWarningAfterSixHours(t *testing.T) {
	store := storage.NewMemory()
	now := time.Date(2026, 3, 19, 16, 0, 0, 0, time.UTC)
	store.Now = func() time.Time { return now }
	ids := addStations(t, store, 1)
	openSession(t, store, ids[0], now.Add(-7*time.Hour))

	newTestEvaluator(store, now).RunSweep(context.Background())

	raised := alertsOfType(t, store, models.AlertLongSession)
	require.Len(t, raised, 1)
	assert.Equal(t, models.SeverityWarning, raised[0].Severity)
}

func TestLongSessionUnderThresholdIsSilent(t *testing.T) {
	store := storage.NewMemory()
	now := time.Date(2026, 3, 19, 14, 0, 0, 0, time.UTC)
	store.Now = func() time.Time { return now }
	ids := addStations(t, store, 1)
	openSession(t, store, ids[0], now.Add(-3*time.Hour))

	newTestEvaluator(store, now).RunSweep(context.Background())

	assert.Empty(t, alertsOfType(t, store, models.AlertLongSession))
}

func TestLongSessionAlertOncePerSession(t *testing.T) {
	store := storage.NewMemory()
	now := time.Date(2026, 3, 19, 14, 0, 0, 0, time.UTC)
	store.Now = func() time.Time { return now }
	ids := addStations(t, store, 1)
	openSession(t, store, ids[0], now.Add(-5*time.Hour))

	evaluator := newTestEvaluator(store, now)
	evaluator.RunSweep(context.Background())

	// Hours later the session is still open; no second alert for it.
	later := now.Add(3 * time.Hour)
	store.Now = func() time.Time { return later }
	evaluator.SetNow(func() time.Time { return later })
	evaluator.RunSweep(context.Background())

	assert.Len(t, alertsOfType(t, store, models.AlertLongSession), 1)
}

func TestLongSessionAlertsPerSessionNotGlobal(t *testing.T) {
	store := storage.NewMemory()
	now := time.Date(2026, 3, 19, 14, 0, 0, 0, time.UTC)
	store.Now = func() time.Time { return now }
	ids := addStations(t, store, 2)
	openSession(t, store, ids[0], now.Add(-5*time.Hour))
	openSession(t, store, ids[1], now.Add(-5*time.Hour))

	newTestEvaluator(store, now).RunSweep(context.Background())

	assert.Len(t, alertsOfType(t, store, models.AlertLongSession), 2)
}

// failingTargets wraps a Store and breaks the target listing, to prove that
// one broken check does not take down the others.
type failingTargets struct {
	storage.Store
}

func (f *failingTargets) ListTargets(context.Context) ([]models.RevenueTarget, error) {
	return nil, errors.New("boom")
}

func TestSweepIsolatesCheckFailures(t *testing.T) {
	mem := storage.NewMemory()
	now := time.Date(2026, 3, 19, 18, 0, 0, 0, time.UTC)
	mem.Now = func() time.Time { return now }
	addStations(t, mem, 23)

	evaluator := NewEvaluator(&failingTargets{Store: mem}, nil, zap.NewNop())
	evaluator.SetNow(func() time.Time { return now })
	evaluator.RunSweep(context.Background())

	// The revenue check blew up; the occupancy check still ran.
	assert.Len(t, alertsOfType(t, mem, models.AlertLowOccupancy), 1)
}
