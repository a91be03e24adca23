package forecast

import "time"

// BusinessDays returns n consecutive Monday–Friday dates at UTC midnight,
// starting the calendar day after last's UTC date.
func BusinessDays(last time.Time, n int) []time.Time {
	if n <= 0 {
		return nil
	}
	u := last.UTC()
	day := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)

	out := make([]time.Time, 0, n)
	for len(out) < n {
		day = day.AddDate(0, 0, 1)
		switch day.Weekday() {
		case time.Saturday, time.Sunday:
			continue
		}
		out = append(out, day)
	}
	return out
}
