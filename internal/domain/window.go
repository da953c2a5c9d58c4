package domain

import (
	"iter"
	"time"
)

// ValidStarts returns the lazy, restartable sequence of every date s such
// that startBound <= s and s + tripLengthDays - 1 <= endBound. These are
// the only dates a pick or candidate may use as its start.
//
// The sequence is finite and yields dates in ascending order. It performs
// no I/O and allocates nothing until ranged over; ranging twice replays it
// from the beginning.
func ValidStarts(startBound, endBound time.Time, tripLengthDays int) iter.Seq[time.Time] {
	start := DateOnly(startBound)
	end := DateOnly(endBound)
	return func(yield func(time.Time) bool) {
		if tripLengthDays < 1 {
			return
		}
		for s := start; !s.AddDate(0, 0, tripLengthDays-1).After(end); s = s.AddDate(0, 0, 1) {
			if !yield(s) {
				return
			}
		}
	}
}

// ValidStarts enumerates the trip's valid window starts.
func (t Trip) ValidStarts() iter.Seq[time.Time] {
	return ValidStarts(t.StartBound, t.EndBound, t.TripLengthDays)
}

// IsValidStart reports whether s is a member of the trip's valid-start set.
func (t Trip) IsValidStart(s time.Time) bool {
	s = DateOnly(s)
	if t.TripLengthDays < 1 {
		return false
	}
	if s.Before(DateOnly(t.StartBound)) {
		return false
	}
	return !t.WindowEnd(s).After(DateOnly(t.EndBound))
}

// BoundsAdmitWindow reports whether the trip's date range can fit at least
// one full window. Trips violating this must fail creation.
func (t Trip) BoundsAdmitWindow() bool {
	if t.TripLengthDays < 1 {
		return false
	}
	return !DateOnly(t.StartBound).AddDate(0, 0, t.TripLengthDays-1).After(DateOnly(t.EndBound))
}
