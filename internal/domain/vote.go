package domain

import (
	"time"

	"github.com/google/uuid"
)

// Vote is one member's single choice among the trip's snapshotted ballot.
// A member holds zero or one vote per trip and may overwrite it while the
// trip is in the voting phase. Votes are advisory: the leader may lock any
// ballot candidate regardless of vote counts.
type Vote struct {
	TripID    uuid.UUID `json:"trip_id"`
	MemberID  uuid.UUID `json:"member_id"`
	OptionKey string    `json:"option_key"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
