package domain

import (
	"time"

	"github.com/google/uuid"
)

// Rank is a member's preference level for a picked window.
// Lower rank means stronger preference.
type Rank int

const (
	// RankLove is the member's first choice ("love these dates").
	RankLove Rank = 1
	// RankCan is the member's second choice ("can do these dates").
	RankCan Rank = 2
	// RankMight is the member's third choice ("might work").
	RankMight Rank = 3
)

// Valid reports whether r is one of the three known ranks.
func (r Rank) Valid() bool {
	return r >= RankLove && r <= RankMight
}

// Weight returns the scoring weight of the rank: love 3, can 2, might 1.
func (r Rank) Weight() int {
	switch r {
	case RankLove:
		return 3
	case RankCan:
		return 2
	case RankMight:
		return 1
	}
	return 0
}

// Pick is one member's ranked preference for a candidate window.
// A member holds at most one pick per rank per trip, and no two of a
// member's picks may share a start date. The window end is always derived
// from the trip's length, never stored.
type Pick struct {
	TripID    uuid.UUID `json:"trip_id"`
	MemberID  uuid.UUID `json:"member_id"`
	Rank      Rank      `json:"rank"`
	StartDate time.Time `json:"start_date"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Covers reports whether day falls inside the pick's window on a trip of
// the given length. Both endpoints are inclusive.
func (p Pick) Covers(day time.Time, tripLengthDays int) bool {
	end := p.StartDate.AddDate(0, 0, tripLengthDays-1)
	return !day.Before(p.StartDate) && !day.After(end)
}
