package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"playhub/internal/models"
	"playhub/internal/storage"
	"playhub/internal/storage/redisstore"
)

// RevenueAlertChecker runs the inline post-close revenue check. Implemented
// by the alert evaluator; failures are logged there, never surfaced here.
type RevenueAlertChecker interface {
	CheckAchievements(ctx context.Context)
}

// Publisher pushes events to live dashboard subscribers.
type Publisher interface {
	Publish(eventType string, payload interface{})
}

// SessionCache is the hot-path view of open sessions keyed by station.
// Presence is trusted for the fast occupied check; absence never is, the
// store stays authoritative.
type SessionCache interface {
	Save(ctx context.Context, session redisstore.ActiveSession) error
	Get(ctx context.Context, stationID string) (*redisstore.ActiveSession, error)
	Delete(ctx context.Context, stationID string) error
}

// SessionLedger owns the check-in/check-out lifecycle and the billing
// computation on close.
type SessionLedger struct {
	store     storage.Store
	cache     SessionCache
	accrual   *TargetAccrual
	alerts    RevenueAlertChecker
	publisher Publisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewSessionLedger builds the ledger. cache, alerts and publisher may be nil.
func NewSessionLedger(
	store storage.Store,
	cache SessionCache,
	accrual *TargetAccrual,
	alerts RevenueAlertChecker,
	publisher Publisher,
	logger *zap.Logger,
) *SessionLedger {
	return &SessionLedger{
		store:     store,
		cache:     cache,
		accrual:   accrual,
		alerts:    alerts,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// SetNow overrides the ledger clock, for tests.
func (s *SessionLedger) SetNow(now func() time.Time) {
	s.now = now
}

// CheckInInput describes a front-desk check-in. Either CustomerID or a
// name (with optional phone for reuse on return visits) must be given.
type CheckInInput struct {
	CustomerID   string
	CustomerName string
	Phone        string
	Email        string
	StationID    string
}

// CheckIn opens a session on a station, creating or reusing the customer.
func (s *SessionLedger) CheckIn(ctx context.Context, input CheckInInput) (*models.Session, error) {
	if strings.TrimSpace(input.StationID) == "" {
		return nil, ErrStationRequired
	}

	station, err := s.store.GetStation(ctx, input.StationID)
	if err != nil {
		return nil, err
	}
	if !station.IsActive {
		return nil, ErrStationInactive
	}
	if s.cachedOccupied(ctx, station.ID) {
		return nil, storage.ErrStationOccupied
	}

	customer, err := s.resolveCustomer(ctx, input)
	if err != nil {
		return nil, err
	}

	session := &models.Session{
		CustomerID: customer.ID,
		StationID:  station.ID,
		StartTime:  s.now(),
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, err
	}

	activity := &models.Activity{
		Type:        models.ActivityCheckIn,
		Description: fmt.Sprintf("%s checked in to %s", customer.Name, station.Name),
		CustomerID:  customer.ID,
		SessionID:   session.ID,
	}
	if err := s.store.CreateActivity(ctx, activity); err != nil {
		s.logger.Warn("failed to record check-in activity", zap.Error(err))
	}

	s.cacheSave(ctx, session)
	s.publish("check_in", activity)

	return session, nil
}

func (s *SessionLedger) resolveCustomer(ctx context.Context, input CheckInInput) (*models.Customer, error) {
	if input.CustomerID != "" {
		return s.store.GetCustomer(ctx, input.CustomerID)
	}
	if input.Phone != "" {
		customer, err := s.store.GetCustomerByPhone(ctx, input.Phone)
		if err == nil {
			return customer, nil
		}
		if !errors.Is(err, storage.ErrCustomerNotFound) {
			return nil, err
		}
	}
	if strings.TrimSpace(input.CustomerName) == "" {
		return nil, ErrCustomerNameRequired
	}
	customer := &models.Customer{
		Name:  input.CustomerName,
		Phone: input.Phone,
		Email: input.Email,
	}
	if err := s.store.CreateCustomer(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

// CloseSession checks a customer out. The bill is the elapsed time priced at
// the station's hourly rate as of now, rounded half-up to two places.
// Closing an already-closed session returns (nil, nil) without touching any
// state.
func (s *SessionLedger) CloseSession(ctx context.Context, id string) (*models.Session, error) {
	session, err := s.store.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if !session.IsActive {
		return nil, nil
	}

	now := s.now()
	station, err := s.store.GetStation(ctx, session.StationID)
	if err != nil {
		return nil, err
	}

	hours := decimal.NewFromFloat(now.Sub(session.StartTime).Hours())
	total := hours.Mul(station.HourlyRate).Round(2)

	if err := s.store.CompleteSession(ctx, id, now, total); err != nil {
		if errors.Is(err, storage.ErrSessionClosed) {
			// Lost a race with another close; that one billed.
			return nil, nil
		}
		return nil, err
	}
	session.EndTime = &now
	session.TotalAmount = decimal.NewNullDecimal(total)
	session.IsActive = false

	customerName := session.CustomerID
	if customer, err := s.store.GetCustomer(ctx, session.CustomerID); err == nil {
		customerName = customer.Name
	}
	activity := &models.Activity{
		Type:        models.ActivityCheckOut,
		Description: fmt.Sprintf("%s completed session - ₹%s earned", customerName, total.StringFixed(0)),
		CustomerID:  session.CustomerID,
		SessionID:   session.ID,
	}
	if err := s.store.CreateActivity(ctx, activity); err != nil {
		s.logger.Warn("failed to record check-out activity", zap.Error(err))
	}

	if err := s.accrual.Accrue(ctx, total, now); err != nil {
		s.logger.Warn("target accrual failed", zap.String("session_id", id), zap.Error(err))
	}

	if s.alerts != nil {
		s.alerts.CheckAchievements(ctx)
	}

	s.cacheDelete(ctx, session.StationID)
	s.publish("check_out", activity)

	s.logger.Info("session closed",
		zap.String("session_id", session.ID),
		zap.String("station_id", session.StationID),
		zap.String("total_amount", total.StringFixed(2)),
	)
	return session, nil
}

// ActiveSessions returns open sessions joined with customer and station
// details for the dashboard.
func (s *SessionLedger) ActiveSessions(ctx context.Context) ([]models.ActiveSession, error) {
	sessions, err := s.store.ListActiveSessions(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	out := make([]models.ActiveSession, 0, len(sessions))
	for _, session := range sessions {
		customer, err := s.store.GetCustomer(ctx, session.CustomerID)
		if err != nil {
			continue
		}
		station, err := s.store.GetStation(ctx, session.StationID)
		if err != nil {
			continue
		}
		out = append(out, models.ActiveSession{
			Session:         session,
			CustomerName:    customer.Name,
			StationName:     station.Name,
			StationType:     station.Type,
			HourlyRate:      station.HourlyRate,
			DurationMinutes: int(now.Sub(session.StartTime).Minutes()),
		})
	}
	return out, nil
}

// cachedOccupied consults the active-session cache before the open-session
// insert. Cache misses and errors fall through to the store's own guard.
func (s *SessionLedger) cachedOccupied(ctx context.Context, stationID string) bool {
	if s.cache == nil {
		return false
	}
	cached, err := s.cache.Get(ctx, stationID)
	return err == nil && cached != nil
}

func (s *SessionLedger) cacheSave(ctx context.Context, session *models.Session) {
	if s.cache == nil {
		return
	}
	err := s.cache.Save(ctx, redisstore.ActiveSession{
		SessionID:  session.ID,
		CustomerID: session.CustomerID,
		StationID:  session.StationID,
		StartTime:  session.StartTime,
	})
	if err != nil {
		s.logger.Warn("failed to cache active session", zap.Error(err))
	}
}

func (s *SessionLedger) cacheDelete(ctx context.Context, stationID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, stationID); err != nil {
		s.logger.Warn("failed to evict active session cache", zap.Error(err))
	}
}

func (s *SessionLedger) publish(eventType string, payload interface{}) {
	if s.publisher != nil {
		s.publisher.Publish(eventType, payload)
	}
}
