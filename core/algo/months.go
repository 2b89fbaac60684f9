// Package algo has the small numeric algorithms behind scoring and ranking.
package algo

import "time"

// CompletedMonths returns the number of whole calendar months from start to end.
// A month counts only once its day-of-month boundary has been reached, so
// Jan 31 to Feb 28 is 0 and Jan 15 to Feb 15 is 1. It returns 0 when end is before start.
func CompletedMonths(start, end time.Time) int {
	if end.Before(start) {
		return 0
	}
	y1, m1, d1 := start.Date()
	y2, m2, d2 := end.Date()
	months := (y2-y1)*12 + int(m2-m1)
	if d2 < d1 {
		months--
	}
	return max(months, 0)
}
