package models

import "time"

// Alert types.
const (
	AlertRevenueTarget = "revenue_target"
	AlertLowOccupancy  = "low_occupancy"
	AlertLongSession   = "long_session"
)

// Alert severities.
const (
	SeverityInfo    = "info"
	SeverityWarning = "warning"
	SeverityError   = "error"
)

// Alert is an operational notification raised by the evaluator. The message
// carries all numeric detail; only the read flag is ever mutated.
type Alert struct {
	ID        string    `db:"id" json:"id"`
	Type      string    `db:"type" json:"type"`
	Message   string    `db:"message" json:"message"`
	Severity  string    `db:"severity" json:"severity"`
	IsRead    bool      `db:"is_read" json:"is_read"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
