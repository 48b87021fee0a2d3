package models

import "time"

// Activity types.
const (
	ActivityCheckIn  = "check_in"
	ActivityCheckOut = "check_out"
)

// Activity is an append-only audit trail entry.
type Activity struct {
	ID          string    `db:"id" json:"id"`
	Type        string    `db:"type" json:"type"`
	Description string    `db:"description" json:"description"`
	CustomerID  string    `db:"customer_id" json:"customer_id,omitempty"`
	SessionID   string    `db:"session_id" json:"session_id,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
