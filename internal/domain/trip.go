// Package domain contains the core data types and the pure scheduling logic
// for the trip date-consensus service. This package has no dependencies on
// the database or HTTP layers and is imported by every other internal package
// (repo, service, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// TripKind distinguishes how a trip's dates get decided.
type TripKind string

const (
	// KindCollaborative trips run the full consensus flow:
	// members submit picks, the leader opens voting and locks a winner.
	KindCollaborative TripKind = "collaborative"

	// KindHosted trips have their dates fixed by the creator at creation
	// time. They are born locked and never enter the scheduling flow.
	KindHosted TripKind = "hosted"
)

// Trip is the scheduling aggregate. It exclusively owns its picks, votes,
// and the ballot snapshot; deleting a trip removes all of them.
type Trip struct {
	ID             uuid.UUID  `json:"id"`
	Name           string     `json:"name"`
	Kind           TripKind   `json:"kind"`
	LeaderID       uuid.UUID  `json:"leader_id"`
	TripLengthDays int        `json:"trip_length_days"`
	StartBound     time.Time  `json:"start_bound"`
	EndBound       time.Time  `json:"end_bound"`
	Status         TripStatus `json:"status"`

	// LockedStart/LockedEnd are non-nil iff Status == StatusLocked.
	// LockedEnd is always LockedStart + TripLengthDays - 1.
	LockedStart *time.Time `json:"locked_start,omitempty"`
	LockedEnd   *time.Time `json:"locked_end,omitempty"`

	// Ballot is the candidate list frozen at the moment voting opened.
	// nil until then; immutable afterwards.
	Ballot []Candidate `json:"ballot,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WindowEnd returns the inclusive last day of the fixed-length window
// starting at start.
func (t Trip) WindowEnd(start time.Time) time.Time {
	return start.AddDate(0, 0, t.TripLengthDays-1)
}

// BallotContains reports whether key is one of the snapshotted candidates.
func (t Trip) BallotContains(key string) bool {
	for _, c := range t.Ballot {
		if c.OptionKey == key {
			return true
		}
	}
	return false
}

// Progress is the leader-visible response indicator: how many members have
// responded in the trip's current phase (picked during scheduling, voted
// during voting).
type Progress struct {
	Status    TripStatus `json:"status"`
	Responded int        `json:"responded"`
}

// DateOnly truncates ts to midnight UTC. All scheduler dates are
// day-granularity; normalizing once keeps comparisons and arithmetic exact.
func DateOnly(ts time.Time) time.Time {
	y, m, d := ts.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
