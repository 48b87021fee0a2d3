package models

// Percentage returns CurrentAmount as a share of TargetAmount in percent.
// A zero or negative target amount yields 0 rather than dividing by it.
func (t RevenueTarget) Percentage() float64 {
	if t.TargetAmount.Sign() <= 0 {
		return 0
	}
	pct, _ := t.CurrentAmount.Div(t.TargetAmount).Float64()
	return pct * 100
}
