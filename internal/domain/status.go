package domain

// TripStatus is the phase of a trip's date-consensus flow.
//
// The source of truth for what moves a trip between phases is the service
// layer's single transition path; nothing else writes Status. Keeping the
// legal transitions here as a closed table means an illegal move is rejected
// by the same code regardless of which operation attempted it.
type TripStatus string

const (
	// StatusProposed is the initial phase of a collaborative trip.
	// No member has submitted a pick yet.
	StatusProposed TripStatus = "proposed"

	// StatusScheduling means at least one pick exists and members are
	// still free to add, change, or clear their picks.
	StatusScheduling TripStatus = "scheduling"

	// StatusVoting means the leader has frozen the ballot. Picks are
	// read-only; members vote on the snapshotted candidates.
	StatusVoting TripStatus = "voting"

	// StatusLocked is terminal. The trip's dates are fixed forever.
	StatusLocked TripStatus = "locked"
)

// transitions is the complete edge set of the consensus state machine.
// There is no edge out of voting except locked, and none out of locked
// at all.
var transitions = map[TripStatus]TripStatus{
	StatusProposed:   StatusScheduling,
	StatusScheduling: StatusVoting,
	StatusVoting:     StatusLocked,
}

// Valid reports whether s is one of the four known phases.
func (s TripStatus) Valid() bool {
	switch s {
	case StatusProposed, StatusScheduling, StatusVoting, StatusLocked:
		return true
	}
	return false
}

// CanTransition reports whether the machine permits moving from s to next.
func (s TripStatus) CanTransition(next TripStatus) bool {
	return transitions[s] == next
}

// Writable reports whether picks may still be created or changed in phase s.
func (s TripStatus) Writable() bool {
	return s == StatusProposed || s == StatusScheduling
}
