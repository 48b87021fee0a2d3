package models

import "github.com/shopspring/decimal"

// Station type labels.
const (
	StationTypePC      = "PC"
	StationTypeConsole = "Console"
	StationTypeVR      = "VR"
	StationTypeArcade  = "Arcade"
)

// Station represents a bookable gaming seat with its billing rate.
type Station struct {
	ID         string          `db:"id" json:"id"`
	Name       string          `db:"name" json:"name"`
	Type       string          `db:"type" json:"type"`
	HourlyRate decimal.Decimal `db:"hourly_rate" json:"hourly_rate"`
	IsActive   bool            `db:"is_active" json:"is_active"`
}
