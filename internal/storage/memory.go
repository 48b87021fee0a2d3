package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"playhub/internal/models"
)

// Memory is a mutex-guarded in-process Store. It backs tests and the
// zero-dependency dev mode; behavior matches the Postgres backend.
type Memory struct {
	mu         sync.Mutex
	customers  map[string]*models.Customer
	stations   map[string]*models.Station
	sessions   map[string]*models.Session
	targets    map[string]*models.RevenueTarget
	alerts     map[string]*models.Alert
	activities map[string]*models.Activity

	// Now supplies insertion timestamps; tests override it.
	Now func() time.Time
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		customers:  make(map[string]*models.Customer),
		stations:   make(map[string]*models.Station),
		sessions:   make(map[string]*models.Session),
		targets:    make(map[string]*models.RevenueTarget),
		alerts:     make(map[string]*models.Alert),
		activities: make(map[string]*models.Activity),
		Now:        time.Now,
	}
}

// CreateCustomer inserts a customer, assigning id and creation time.
func (m *Memory) CreateCustomer(_ context.Context, customer *models.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	customer.ID = uuid.NewString()
	customer.CreatedAt = m.Now()
	cp := *customer
	m.customers[customer.ID] = &cp
	return nil
}

func (m *Memory) GetCustomer(_ context.Context, id string) (*models.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	customer, ok := m.customers[id]
	if !ok {
		return nil, ErrCustomerNotFound
	}
	cp := *customer
	return &cp, nil
}

func (m *Memory) GetCustomerByPhone(_ context.Context, phone string) (*models.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, customer := range m.customers {
		if customer.Phone != "" && customer.Phone == phone {
			cp := *customer
			return &cp, nil
		}
	}
	return nil, ErrCustomerNotFound
}

func (m *Memory) ListCustomers(_ context.Context) ([]models.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Customer, 0, len(m.customers))
	for _, customer := range m.customers {
		out = append(out, *customer)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// CreateStation inserts a station; names are unique.
func (m *Memory) CreateStation(_ context.Context, station *models.Station) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.stations {
		if existing.Name == station.Name {
			return ErrDuplicateStation
		}
	}
	station.ID = uuid.NewString()
	cp := *station
	m.stations[station.ID] = &cp
	return nil
}

func (m *Memory) GetStation(_ context.Context, id string) (*models.Station, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	station, ok := m.stations[id]
	if !ok {
		return nil, ErrStationNotFound
	}
	cp := *station
	return &cp, nil
}

func (m *Memory) GetStationByName(_ context.Context, name string) (*models.Station, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, station := range m.stations {
		if station.Name == name {
			cp := *station
			return &cp, nil
		}
	}
	return nil, ErrStationNotFound
}

func (m *Memory) ListStations(_ context.Context) ([]models.Station, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Station, 0, len(m.stations))
	for _, station := range m.stations {
		out = append(out, *station)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *Memory) UpdateStation(_ context.Context, station *models.Station) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.stations[station.ID]; !ok {
		return ErrStationNotFound
	}
	cp := *station
	m.stations[station.ID] = &cp
	return nil
}

// DeleteStation removes a station unless open sessions still reference it.
func (m *Memory) DeleteStation(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.stations[id]; !ok {
		return ErrStationNotFound
	}
	for _, session := range m.sessions {
		if session.StationID == id && session.IsActive {
			return ErrStationBusy
		}
	}
	delete(m.stations, id)
	return nil
}

// CreateSession inserts an open session. At most one open session may
// reference a station at a time.
func (m *Memory) CreateSession(_ context.Context, session *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.sessions {
		if existing.StationID == session.StationID && existing.IsActive {
			return ErrStationOccupied
		}
	}
	session.ID = uuid.NewString()
	session.IsActive = true
	if session.StartTime.IsZero() {
		session.StartTime = m.Now()
	}
	cp := *session
	m.sessions[session.ID] = &cp
	return nil
}

func (m *Memory) GetSession(_ context.Context, id string) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	cp := *session
	return &cp, nil
}

func (m *Memory) OpenSessionForStation(_ context.Context, stationID string) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, session := range m.sessions {
		if session.StationID == stationID && session.IsActive {
			cp := *session
			return &cp, nil
		}
	}
	return nil, ErrSessionNotFound
}

func (m *Memory) ListActiveSessions(_ context.Context) ([]models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Session
	for _, session := range m.sessions {
		if session.IsActive {
			out = append(out, *session)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

// SessionsBetween returns sessions whose start time falls in [start, end).
func (m *Memory) SessionsBetween(_ context.Context, start, end time.Time) ([]models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Session
	for _, session := range m.sessions {
		if !session.StartTime.Before(start) && session.StartTime.Before(end) {
			out = append(out, *session)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

// SessionsClosedBetween returns completed sessions whose end time falls in
// [start, end).
func (m *Memory) SessionsClosedBetween(_ context.Context, start, end time.Time) ([]models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Session
	for _, session := range m.sessions {
		if session.EndTime == nil {
			continue
		}
		if !session.EndTime.Before(start) && session.EndTime.Before(end) {
			out = append(out, *session)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EndTime.Before(*out[j].EndTime) })
	return out, nil
}

// CompleteSession finalizes an open session with its end time and bill.
func (m *Memory) CompleteSession(_ context.Context, id string, endTime time.Time, total decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	if !session.IsActive {
		return ErrSessionClosed
	}
	session.EndTime = &endTime
	session.TotalAmount = decimal.NewNullDecimal(total)
	session.IsActive = false
	return nil
}

func (m *Memory) CreateTarget(_ context.Context, target *models.RevenueTarget) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	target.ID = uuid.NewString()
	target.CreatedAt = m.Now()
	cp := *target
	m.targets[target.ID] = &cp
	return nil
}

func (m *Memory) GetTargetByPeriod(_ context.Context, kind, periodID string) (*models.RevenueTarget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, target := range m.targets {
		if target.Type == kind && target.Period == periodID {
			cp := *target
			return &cp, nil
		}
	}
	return nil, ErrTargetNotFound
}

// AddToTarget increments a target's accumulated amount in place.
func (m *Memory) AddToTarget(_ context.Context, id string, amount decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	target, ok := m.targets[id]
	if !ok {
		return ErrTargetNotFound
	}
	target.CurrentAmount = target.CurrentAmount.Add(amount)
	return nil
}

func (m *Memory) ListTargets(_ context.Context) ([]models.RevenueTarget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.RevenueTarget, 0, len(m.targets))
	for _, target := range m.targets {
		out = append(out, *target)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) CreateAlert(_ context.Context, alert *models.Alert) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	alert.ID = uuid.NewString()
	alert.CreatedAt = m.Now()
	cp := *alert
	m.alerts[alert.ID] = &cp
	return nil
}

func (m *Memory) ListAlerts(_ context.Context) ([]models.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Alert, 0, len(m.alerts))
	for _, alert := range m.alerts {
		out = append(out, *alert)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) ListUnreadAlerts(_ context.Context) ([]models.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Alert
	for _, alert := range m.alerts {
		if !alert.IsRead {
			out = append(out, *alert)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) MarkAlertRead(_ context.Context, id string) (*models.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	alert, ok := m.alerts[id]
	if !ok {
		return nil, ErrAlertNotFound
	}
	alert.IsRead = true
	cp := *alert
	return &cp, nil
}

func (m *Memory) CreateActivity(_ context.Context, activity *models.Activity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	activity.ID = uuid.NewString()
	activity.CreatedAt = m.Now()
	cp := *activity
	m.activities[activity.ID] = &cp
	return nil
}

func (m *Memory) RecentActivities(_ context.Context, limit int) ([]models.Activity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit <= 0 {
		limit = 10
	}
	out := make([]models.Activity, 0, len(m.activities))
	for _, activity := range m.activities {
		out = append(out, *activity)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
