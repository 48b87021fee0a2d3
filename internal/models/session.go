package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Session represents a timed occupancy of one station by one customer.
// EndTime and TotalAmount stay unset while the session is open; a closed
// session is never modified again.
type Session struct {
	ID          string              `db:"id" json:"id"`
	CustomerID  string              `db:"customer_id" json:"customer_id"`
	StationID   string              `db:"station_id" json:"station_id"`
	StartTime   time.Time           `db:"start_time" json:"start_time"`
	EndTime     *time.Time          `db:"end_time" json:"end_time,omitempty"`
	TotalAmount decimal.NullDecimal `db:"total_amount" json:"total_amount,omitempty"`
	IsActive    bool                `db:"is_active" json:"is_active"`
}

// ActiveSession is a session joined with customer and station details for
// the dashboard's live view.
type ActiveSession struct {
	Session
	CustomerName    string          `json:"customer_name"`
	StationName     string          `json:"station_name"`
	StationType     string          `json:"station_type"`
	HourlyRate      decimal.Decimal `json:"hourly_rate"`
	DurationMinutes int             `json:"duration_minutes"`
}
