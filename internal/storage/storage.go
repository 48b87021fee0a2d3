// Package storage defines the persistence contract shared by the in-memory
// and Postgres backends.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"playhub/internal/models"
)

// Sentinel errors shared by all backends.
var (
	ErrCustomerNotFound = errors.New("storage: customer not found")
	ErrStationNotFound  = errors.New("storage: station not found")
	ErrSessionNotFound  = errors.New("storage: session not found")
	ErrTargetNotFound   = errors.New("storage: revenue target not found")
	ErrAlertNotFound    = errors.New("storage: alert not found")

	// ErrSessionClosed rejects completing a session that is already closed,
	// so two racing closes cannot both bill.
	ErrSessionClosed = errors.New("storage: session already closed")

	// ErrStationOccupied rejects a second open session on the same station.
	ErrStationOccupied = errors.New("storage: station already has an open session")
	// ErrStationBusy rejects deleting a station that open sessions reference.
	ErrStationBusy = errors.New("storage: station has open sessions")
	// ErrDuplicateStation rejects a second station with the same name.
	ErrDuplicateStation = errors.New("storage: station name already exists")
)

// Store is the persistence surface consumed by the services. Both backends
// generate record IDs and creation timestamps on insert.
type Store interface {
	CreateCustomer(ctx context.Context, customer *models.Customer) error
	GetCustomer(ctx context.Context, id string) (*models.Customer, error)
	GetCustomerByPhone(ctx context.Context, phone string) (*models.Customer, error)
	ListCustomers(ctx context.Context) ([]models.Customer, error)

	CreateStation(ctx context.Context, station *models.Station) error
	GetStation(ctx context.Context, id string) (*models.Station, error)
	GetStationByName(ctx context.Context, name string) (*models.Station, error)
	ListStations(ctx context.Context) ([]models.Station, error)
	UpdateStation(ctx context.Context, station *models.Station) error
	DeleteStation(ctx context.Context, id string) error

	CreateSession(ctx context.Context, session *models.Session) error
	GetSession(ctx context.Context, id string) (*models.Session, error)
	OpenSessionForStation(ctx context.Context, stationID string) (*models.Session, error)
	ListActiveSessions(ctx context.Context) ([]models.Session, error)
	SessionsBetween(ctx context.Context, start, end time.Time) ([]models.Session, error)
	SessionsClosedBetween(ctx context.Context, start, end time.Time) ([]models.Session, error)
	CompleteSession(ctx context.Context, id string, endTime time.Time, total decimal.Decimal) error

	CreateTarget(ctx context.Context, target *models.RevenueTarget) error
	GetTargetByPeriod(ctx context.Context, kind, periodID string) (*models.RevenueTarget, error)
	AddToTarget(ctx context.Context, id string, amount decimal.Decimal) error
	ListTargets(ctx context.Context) ([]models.RevenueTarget, error)

	CreateAlert(ctx context.Context, alert *models.Alert) error
	ListAlerts(ctx context.Context) ([]models.Alert, error)
	ListUnreadAlerts(ctx context.Context) ([]models.Alert, error)
	MarkAlertRead(ctx context.Context, id string) (*models.Alert, error)

	CreateActivity(ctx context.Context, activity *models.Activity) error
	RecentActivities(ctx context.Context, limit int) ([]models.Activity, error)
}
