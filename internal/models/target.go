package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RevenueTarget holds a revenue goal for one daily/weekly/monthly bucket.
// CurrentAmount only ever grows within a period; accrual is routed by
// matching Period against the bucket id resolved from the clock.
type RevenueTarget struct {
	ID            string          `db:"id" json:"id"`
	Type          string          `db:"type" json:"type"`
	Period        string          `db:"period" json:"period"`
	TargetAmount  decimal.Decimal `db:"target_amount" json:"target_amount"`
	CurrentAmount decimal.Decimal `db:"current_amount" json:"current_amount"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
}
