package services

import "time"

// ResolveDates converts an instant into the user's local calendar date and
// the prior calendar date. Both are returned as UTC midnights of the local
// dates so gap math is whole-day subtraction, independent of DST clock-hour
// length. An unresolvable timezone falls back to UTC instead of failing: a
// user with a corrupted timezone value must still be processable.
func ResolveDates(now time.Time, timezone string) (today, yesterday time.Time) {
	loc := time.UTC
	if timezone != "" {
		if l, err := time.LoadLocation(timezone); err == nil {
			loc = l
		}
	}
	local := now.In(loc)
	today = time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
	yesterday = today.AddDate(0, 0, -1)
	return today, yesterday
}

// daysBetween counts whole calendar days from one UTC-midnight date to another.
func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}

// sameDay reports whether two UTC-midnight dates are the same calendar day.
func sameDay(a, b time.Time) bool {
	return a.Equal(b)
}
