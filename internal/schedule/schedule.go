package schedule

import (
	"time"
)

// Due reports whether a job last run at last is due again at now. A zero
// last means it never ran.
func Due(last time.Time, interval time.Duration, now time.Time) bool {
	if last.IsZero() {
		return true
	}
	return !now.Before(last.Add(interval))
}

// Next is when a job last run at last should fire again; never earlier than now.
func Next(last time.Time, interval time.Duration, now time.Time) time.Time {
	if last.IsZero() {
		return now
	}
	next := last.Add(interval)
	if next.Before(now) {
		return now
	}
	return next
}
