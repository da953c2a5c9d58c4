package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/askelund/tripdates/internal/domain"
	"github.com/askelund/tripdates/internal/repo"
)

// ScheduleService implements the date-consensus flow for collaborative
// trips: pick and vote writes, scoring reads, and the two leader-only phase
// transitions. It is the only writer of trip status.
//
// Every operation is a single bounded computation over at most a few hundred
// picks and votes; nothing blocks or retries. The two transitions are
// compare-and-set at the repo layer, so concurrent leader actions resolve to
// exactly one winner.
type ScheduleService struct {
	trips repo.TripRepo
	picks repo.PickRepo
	votes repo.VoteRepo

	// ballotSize is how many top candidates get frozen when voting opens.
	ballotSize int
}

// NewScheduleService constructs a ScheduleService with the default ballot
// size of domain.DefaultCandidateLimit.
func NewScheduleService(trips repo.TripRepo, picks repo.PickRepo, votes repo.VoteRepo) *ScheduleService {
	return &ScheduleService{
		trips:      trips,
		picks:      picks,
		votes:      votes,
		ballotSize: domain.DefaultCandidateLimit,
	}
}

// ValidStarts returns every date that can start an in-bounds window for the
// trip. These are the only dates SubmitPick accepts.
func (s *ScheduleService) ValidStarts(ctx context.Context, tripID uuid.UUID) ([]time.Time, error) {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.ScheduleService.ValidStarts: %w", err)
	}

	starts := []time.Time{}
	for d := range trip.ValidStarts() {
		starts = append(starts, d)
	}
	return starts, nil
}

// SubmitPick upserts the member's pick for the given rank.
//
// Legal only while the trip is proposed or scheduling; the first successful
// pick on a proposed trip advances it to scheduling. The start date must be
// a valid window start, and the member must not already hold the same start
// under another rank. Submitting identical arguments twice is idempotent.
func (s *ScheduleService) SubmitPick(ctx context.Context, tripID, memberID uuid.UUID, rank domain.Rank, start time.Time) (domain.Pick, error) {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return domain.Pick{}, fmt.Errorf("service.ScheduleService.SubmitPick: %w", err)
	}
	if trip.Kind == domain.KindHosted || !trip.Status.Writable() {
		return domain.Pick{}, domain.NewStateError("submit pick", trip.Status,
			domain.StatusProposed, domain.StatusScheduling)
	}
	if !rank.Valid() {
		return domain.Pick{}, fmt.Errorf("%w: rank must be 1 (love), 2 (can), or 3 (might)", domain.ErrValidation)
	}

	start = domain.DateOnly(start)
	if !trip.IsValidStart(start) {
		return domain.Pick{}, fmt.Errorf(
			"%w: %s cannot start a %d-day window inside %s to %s",
			domain.ErrInvalidWindow,
			start.Format(time.DateOnly), trip.TripLengthDays,
			trip.StartBound.Format(time.DateOnly), trip.EndBound.Format(time.DateOnly))
	}

	// Same member, same start, different rank is meaningless and rejected.
	// The picks_member_start_uq index backs this check under races.
	existing, err := s.picks.ListByTrip(ctx, tripID)
	if err != nil {
		return domain.Pick{}, fmt.Errorf("service.ScheduleService.SubmitPick: %w", err)
	}
	for _, p := range existing {
		if p.MemberID == memberID && p.Rank != rank && domain.DateOnly(p.StartDate).Equal(start) {
			return domain.Pick{}, fmt.Errorf(
				"%w: you already picked %s at rank %d",
				domain.ErrDuplicateWindow, start.Format(time.DateOnly), p.Rank)
		}
	}

	// First pick write moves the trip out of proposed. Losing this race to
	// a concurrent pick is fine — the trip lands in scheduling either way.
	if trip.Status == domain.StatusProposed {
		if err := s.trips.MarkScheduling(ctx, tripID); err != nil {
			return domain.Pick{}, fmt.Errorf("service.ScheduleService.SubmitPick: %w", err)
		}
	}

	pick := domain.Pick{
		TripID:    tripID,
		MemberID:  memberID,
		Rank:      rank,
		StartDate: start,
	}
	result, err := s.picks.Upsert(ctx, pick)
	if err != nil {
		return domain.Pick{}, fmt.Errorf("service.ScheduleService.SubmitPick: %w", err)
	}
	return result, nil
}

// ClearPicks removes all of the member's picks so they can restart their
// selection. Legal only while picks are still writable.
func (s *ScheduleService) ClearPicks(ctx context.Context, tripID, memberID uuid.UUID) error {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return fmt.Errorf("service.ScheduleService.ClearPicks: %w", err)
	}
	if trip.Kind == domain.KindHosted || !trip.Status.Writable() {
		return domain.NewStateError("clear picks", trip.Status,
			domain.StatusProposed, domain.StatusScheduling)
	}

	if err := s.picks.DeleteByMember(ctx, tripID, memberID); err != nil {
		return fmt.Errorf("service.ScheduleService.ClearPicks: %w", err)
	}
	return nil
}

// SubmitVote upserts the member's single choice among the frozen ballot.
// Legal only during voting; the option key must be on the ballot.
func (s *ScheduleService) SubmitVote(ctx context.Context, tripID, memberID uuid.UUID, optionKey string) (domain.Vote, error) {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return domain.Vote{}, fmt.Errorf("service.ScheduleService.SubmitVote: %w", err)
	}
	if trip.Status != domain.StatusVoting {
		return domain.Vote{}, domain.NewStateError("submit vote", trip.Status, domain.StatusVoting)
	}
	if !trip.BallotContains(optionKey) {
		return domain.Vote{}, fmt.Errorf("%w: %q is not on the ballot", domain.ErrInvalidOption, optionKey)
	}

	vote := domain.Vote{
		TripID:    tripID,
		MemberID:  memberID,
		OptionKey: optionKey,
	}
	result, err := s.votes.Upsert(ctx, vote)
	if err != nil {
		return domain.Vote{}, fmt.Errorf("service.ScheduleService.SubmitVote: %w", err)
	}
	return result, nil
}

// DayIntensity returns the 0..1 heat value for every day in the trip's
// range. activeMembers sets the normalization ceiling; when it is not
// supplied (<= 0) the distinct pick-submitting member count is used.
// Advisory only — candidate ranking is what locking operates on.
func (s *ScheduleService) DayIntensity(ctx context.Context, tripID uuid.UUID, activeMembers int) (map[string]float64, error) {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.ScheduleService.DayIntensity: %w", err)
	}
	picks, err := s.picks.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.ScheduleService.DayIntensity: %w", err)
	}

	if activeMembers <= 0 {
		activeMembers = domain.DistinctMembers(picks)
	}
	return domain.DayIntensity(trip, picks, activeMembers), nil
}

// Candidates returns the current top-k scored windows. An empty list means
// no consensus yet (zero picks), which is not an error.
func (s *ScheduleService) Candidates(ctx context.Context, tripID uuid.UUID, k int) ([]domain.Candidate, error) {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.ScheduleService.Candidates: %w", err)
	}
	picks, err := s.picks.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.ScheduleService.Candidates: %w", err)
	}

	ranked := domain.RankCandidates(trip, picks, k)
	if ranked == nil {
		ranked = []domain.Candidate{}
	}
	return ranked, nil
}

// OpenVoting freezes the current candidate ranking as the trip's ballot and
// moves scheduling → voting. Leader only. No minimum response count is
// required — the vote proceeds with whoever participated.
//
// The transition is a compare-and-set: losing it to a concurrent leader
// action surfaces as a conflict (or "already locked" when the race went all
// the way to a lock), never as a silent overwrite.
func (s *ScheduleService) OpenVoting(ctx context.Context, tripID, callerID uuid.UUID) (domain.Trip, error) {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.ScheduleService.OpenVoting: %w", err)
	}
	if callerID != trip.LeaderID {
		return domain.Trip{}, fmt.Errorf("%w: only the trip leader can open voting", domain.ErrPermission)
	}
	if trip.Status != domain.StatusScheduling {
		return domain.Trip{}, domain.NewStateError("open voting", trip.Status, domain.StatusScheduling)
	}

	picks, err := s.picks.ListByTrip(ctx, tripID)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.ScheduleService.OpenVoting: %w", err)
	}
	ballot := domain.RankCandidates(trip, picks, s.ballotSize)
	if len(ballot) == 0 {
		return domain.Trip{}, fmt.Errorf("%w: no picks yet, nothing to vote on", domain.ErrValidation)
	}

	updated, err := s.trips.OpenVoting(ctx, tripID, ballot)
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return domain.Trip{}, s.casLoss(ctx, tripID, "open voting", err)
		}
		return domain.Trip{}, fmt.Errorf("service.ScheduleService.OpenVoting: %w", err)
	}
	return updated, nil
}

// Lock fixes the trip's dates to the given ballot option and moves
// voting → locked, the single irreversible transition. Leader only.
//
// The leader may lock any snapshotted candidate, not just the one with the
// most votes — votes are advisory preference, not a binding majority rule.
// Under N concurrent lock calls exactly one wins; the rest observe the
// locked trip.
func (s *ScheduleService) Lock(ctx context.Context, tripID, callerID uuid.UUID, optionKey string) (domain.Trip, error) {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.ScheduleService.Lock: %w", err)
	}
	if callerID != trip.LeaderID {
		return domain.Trip{}, fmt.Errorf("%w: only the trip leader can lock dates", domain.ErrPermission)
	}
	if trip.Status != domain.StatusVoting {
		return domain.Trip{}, domain.NewStateError("lock", trip.Status, domain.StatusVoting)
	}

	var winner *domain.Candidate
	for i := range trip.Ballot {
		if trip.Ballot[i].OptionKey == optionKey {
			winner = &trip.Ballot[i]
			break
		}
	}
	if winner == nil {
		return domain.Trip{}, fmt.Errorf("%w: %q is not on the ballot", domain.ErrInvalidOption, optionKey)
	}

	updated, err := s.trips.Lock(ctx, tripID, *winner)
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return domain.Trip{}, s.casLoss(ctx, tripID, "lock", err)
		}
		return domain.Trip{}, fmt.Errorf("service.ScheduleService.Lock: %w", err)
	}
	return updated, nil
}

// Progress reports how many members have responded in the current phase:
// distinct pick submitters while scheduling, voters while voting or locked.
func (s *ScheduleService) Progress(ctx context.Context, tripID uuid.UUID) (domain.Progress, error) {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return domain.Progress{}, fmt.Errorf("service.ScheduleService.Progress: %w", err)
	}

	var n int
	switch trip.Status {
	case domain.StatusVoting, domain.StatusLocked:
		n, err = s.votes.CountByTrip(ctx, tripID)
	default:
		n, err = s.picks.CountDistinctMembers(ctx, tripID)
	}
	if err != nil {
		return domain.Progress{}, fmt.Errorf("service.ScheduleService.Progress: %w", err)
	}

	return domain.Progress{Status: trip.Status, Responded: n}, nil
}

// casLoss turns a lost compare-and-set into the error the caller should
// see: a state error when the trip is now locked (permanent), otherwise the
// conflict itself (retryable after a re-read).
func (s *ScheduleService) casLoss(ctx context.Context, tripID uuid.UUID, op string, casErr error) error {
	current, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return fmt.Errorf("service.ScheduleService: %s: %w", op, err)
	}
	if current.Status == domain.StatusLocked {
		return domain.NewStateError(op, current.Status, domain.StatusVoting)
	}
	return fmt.Errorf("service.ScheduleService: %s: %w", op, casErr)
}
