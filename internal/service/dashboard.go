package service

import (
	"context"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"playhub/internal/models"
	"playhub/internal/period"
	"playhub/internal/storage"
)

// DashboardMetrics is the headline snapshot the dashboard polls.
type DashboardMetrics struct {
	TodayRevenue        decimal.Decimal `json:"today_revenue"`
	ActiveCustomers     int             `json:"active_customers"`
	TotalCustomersToday int             `json:"total_customers_today"`
	OccupiedStations    int             `json:"occupied_stations"`
	TotalStations       int             `json:"total_stations"`
	OccupancyRate       int             `json:"occupancy_rate"`
	AvgSessionMinutes   int             `json:"avg_session_minutes"`
}

// RevenueSeries is a labeled series for the revenue chart.
type RevenueSeries struct {
	Labels []string          `json:"labels"`
	Data   []decimal.Decimal `json:"data"`
}

// StationUtilization breaks occupancy down by station type.
type StationUtilization struct {
	Occupied        int `json:"occupied"`
	Available       int `json:"available"`
	PCOccupied      int `json:"pc_occupied"`
	PCTotal         int `json:"pc_total"`
	ConsoleOccupied int `json:"console_occupied"`
	ConsoleTotal    int `json:"console_total"`
}

// Dashboard computes aggregations by summing and filtering sessions.
type Dashboard struct {
	store  storage.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewDashboard builds the aggregation service.
func NewDashboard(store storage.Store, logger *zap.Logger) *Dashboard {
	return &Dashboard{store: store, logger: logger, now: time.Now}
}

// SetNow overrides the clock, for tests.
func (d *Dashboard) SetNow(now func() time.Time) {
	d.now = now
}

// Metrics returns today's headline numbers. Revenue counts sessions closed
// within [start-of-day, start-of-tomorrow): an overnight session billed at
// 01:00 belongs to today regardless of when it started.
func (d *Dashboard) Metrics(ctx context.Context) (*DashboardMetrics, error) {
	now := d.now()
	start, end := period.DayBounds(now)

	startedToday, err := d.store.SessionsBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}
	closedToday, err := d.store.SessionsClosedBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}

	revenue := decimal.Zero
	completed := 0
	totalMinutes := 0.0
	for _, session := range closedToday {
		if !session.TotalAmount.Valid {
			continue
		}
		revenue = revenue.Add(session.TotalAmount.Decimal)
		completed++
		totalMinutes += session.EndTime.Sub(session.StartTime).Minutes()
	}

	active, err := d.store.ListActiveSessions(ctx)
	if err != nil {
		return nil, err
	}
	stations, err := d.store.ListStations(ctx)
	if err != nil {
		return nil, err
	}

	occupancy := 0
	if len(stations) > 0 {
		occupancy = int(math.Round(float64(len(active)) / float64(len(stations)) * 100))
	}
	avgMinutes := 0
	if completed > 0 {
		avgMinutes = int(math.Round(totalMinutes / float64(completed)))
	}

	return &DashboardMetrics{
		TodayRevenue:        revenue,
		ActiveCustomers:     len(active),
		TotalCustomersToday: len(startedToday),
		OccupiedStations:    len(active),
		TotalStations:       len(stations),
		OccupancyRate:       occupancy,
		AvgSessionMinutes:   avgMinutes,
	}, nil
}

// Revenue returns the last seven days of billed revenue, oldest first.
func (d *Dashboard) Revenue(ctx context.Context) (*RevenueSeries, error) {
	now := d.now()
	series := &RevenueSeries{}

	for i := 6; i >= 0; i-- {
		day := now.AddDate(0, 0, -i)
		start, end := period.DayBounds(day)
		sessions, err := d.store.SessionsClosedBetween(ctx, start, end)
		if err != nil {
			return nil, err
		}
		revenue := decimal.Zero
		for _, session := range sessions {
			if session.TotalAmount.Valid {
				revenue = revenue.Add(session.TotalAmount.Decimal)
			}
		}
		series.Labels = append(series.Labels, day.Format("Mon"))
		series.Data = append(series.Data, revenue)
	}
	return series, nil
}

// Utilization returns live occupancy split by station type.
func (d *Dashboard) Utilization(ctx context.Context) (*StationUtilization, error) {
	stations, err := d.store.ListStations(ctx)
	if err != nil {
		return nil, err
	}
	active, err := d.store.ListActiveSessions(ctx)
	if err != nil {
		return nil, err
	}

	occupiedByStation := make(map[string]bool, len(active))
	for _, session := range active {
		occupiedByStation[session.StationID] = true
	}

	util := &StationUtilization{
		Occupied:  len(active),
		Available: len(stations) - len(active),
	}
	for _, station := range stations {
		switch station.Type {
		case models.StationTypePC:
			util.PCTotal++
			if occupiedByStation[station.ID] {
				util.PCOccupied++
			}
		case models.StationTypeConsole:
			util.ConsoleTotal++
			if occupiedByStation[station.ID] {
				util.ConsoleOccupied++
			}
		}
	}
	return util, nil
}
