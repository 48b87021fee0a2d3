// Package period resolves wall-clock instants into revenue target bucket
// identifiers. All functions are pure: time is always an explicit argument,
// never read from the process clock.
package period

import "time"

// Target bucket kinds. Values match RevenueTarget.Type.
const (
	Daily   = "daily"
	Weekly  = "weekly"
	Monthly = "monthly"
)

// Kinds lists all bucket kinds in accrual order.
var Kinds = []string{Daily, Weekly, Monthly}

const dayLayout = "2006-01-02"

// Resolve returns the bucket identifier for kind at the given instant:
// daily -> "2006-01-02", weekly -> the Monday of that week as "2006-01-02",
// monthly -> "2006-01".
func Resolve(kind string, now time.Time) string {
	switch kind {
	case Daily:
		return now.Format(dayLayout)
	case Weekly:
		return WeekStart(now).Format(dayLayout)
	case Monthly:
		return now.Format("2006-01")
	default:
		return ""
	}
}

// WeekStart returns midnight of the Monday of now's week. Sundays anchor to
// the previous Monday, not the upcoming one.
func WeekStart(now time.Time) time.Time {
	shift := int(now.Weekday()) - 1
	if now.Weekday() == time.Sunday {
		shift = 6
	}
	y, m, d := now.AddDate(0, 0, -shift).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}

// DaysIntoWeek returns 1 for Monday through 7 for Sunday.
func DaysIntoWeek(now time.Time) int {
	if now.Weekday() == time.Sunday {
		return 7
	}
	return int(now.Weekday())
}

// DaysInMonth returns the number of days in now's month.
func DaysInMonth(now time.Time) int {
	y, m, _ := now.Date()
	return time.Date(y, m+1, 0, 0, 0, 0, 0, now.Location()).Day()
}

// DayBounds returns [start of day, start of next day) for the given instant.
func DayBounds(now time.Time) (time.Time, time.Time) {
	y, m, d := now.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	return start, start.AddDate(0, 0, 1)
}

// SameDay reports whether two instants fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
