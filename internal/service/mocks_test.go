package service_test

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/askelund/tripdates/internal/domain"
	"github.com/askelund/tripdates/internal/repo"
)

// Hand-written test doubles, one per repo interface. Each method is a
// function field — set only the ones your test needs; an unset method that
// gets called panics, which points straight at the missing stub.

type mockTripRepo struct {
	create         func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	getByID        func(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	list           func(ctx context.Context) ([]domain.Trip, error)
	delete         func(ctx context.Context, id uuid.UUID) error
	markScheduling func(ctx context.Context, id uuid.UUID) error
	openVoting     func(ctx context.Context, id uuid.UUID, ballot []domain.Candidate) (domain.Trip, error)
	lock           func(ctx context.Context, id uuid.UUID, winner domain.Candidate) (domain.Trip, error)
}

func (m *mockTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	return m.create(ctx, trip)
}
func (m *mockTripRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	return m.getByID(ctx, id)
}
func (m *mockTripRepo) List(ctx context.Context) ([]domain.Trip, error) {
	return m.list(ctx)
}
func (m *mockTripRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}
func (m *mockTripRepo) MarkScheduling(ctx context.Context, id uuid.UUID) error {
	return m.markScheduling(ctx, id)
}
func (m *mockTripRepo) OpenVoting(ctx context.Context, id uuid.UUID, ballot []domain.Candidate) (domain.Trip, error) {
	return m.openVoting(ctx, id, ballot)
}
func (m *mockTripRepo) Lock(ctx context.Context, id uuid.UUID, winner domain.Candidate) (domain.Trip, error) {
	return m.lock(ctx, id, winner)
}

var _ repo.TripRepo = (*mockTripRepo)(nil)

type mockPickRepo struct {
	upsert               func(ctx context.Context, pick domain.Pick) (domain.Pick, error)
	deleteByMember       func(ctx context.Context, tripID, memberID uuid.UUID) error
	listByTrip           func(ctx context.Context, tripID uuid.UUID) ([]domain.Pick, error)
	countDistinctMembers func(ctx context.Context, tripID uuid.UUID) (int, error)
}

func (m *mockPickRepo) Upsert(ctx context.Context, pick domain.Pick) (domain.Pick, error) {
	return m.upsert(ctx, pick)
}
func (m *mockPickRepo) DeleteByMember(ctx context.Context, tripID, memberID uuid.UUID) error {
	return m.deleteByMember(ctx, tripID, memberID)
}
func (m *mockPickRepo) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Pick, error) {
	return m.listByTrip(ctx, tripID)
}
func (m *mockPickRepo) CountDistinctMembers(ctx context.Context, tripID uuid.UUID) (int, error) {
	return m.countDistinctMembers(ctx, tripID)
}

var _ repo.PickRepo = (*mockPickRepo)(nil)

type mockVoteRepo struct {
	upsert      func(ctx context.Context, vote domain.Vote) (domain.Vote, error)
	listByTrip  func(ctx context.Context, tripID uuid.UUID) ([]domain.Vote, error)
	countByTrip func(ctx context.Context, tripID uuid.UUID) (int, error)
}

func (m *mockVoteRepo) Upsert(ctx context.Context, vote domain.Vote) (domain.Vote, error) {
	return m.upsert(ctx, vote)
}
func (m *mockVoteRepo) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Vote, error) {
	return m.listByTrip(ctx, tripID)
}
func (m *mockVoteRepo) CountByTrip(ctx context.Context, tripID uuid.UUID) (int, error) {
	return m.countByTrip(ctx, tripID)
}

var _ repo.VoteRepo = (*mockVoteRepo)(nil)

// memTripRepo is a mutex-guarded in-memory TripRepo whose OpenVoting and
// Lock honor the real compare-and-set contract. It backs the concurrency
// tests, which need the race itself rather than canned answers.
type memTripRepo struct {
	mu   sync.Mutex
	trip domain.Trip
}

func (m *memTripRepo) Create(_ context.Context, trip domain.Trip) (domain.Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trip = trip
	return trip, nil
}

func (m *memTripRepo) GetByID(_ context.Context, _ uuid.UUID) (domain.Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.trip, nil
}

func (m *memTripRepo) List(_ context.Context) ([]domain.Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return []domain.Trip{m.trip}, nil
}

func (m *memTripRepo) Delete(_ context.Context, _ uuid.UUID) error {
	return nil
}

func (m *memTripRepo) MarkScheduling(_ context.Context, _ uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.trip.Status == domain.StatusProposed {
		m.trip.Status = domain.StatusScheduling
	}
	return nil
}

func (m *memTripRepo) OpenVoting(_ context.Context, _ uuid.UUID, ballot []domain.Candidate) (domain.Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.trip.Status != domain.StatusScheduling {
		return domain.Trip{}, domain.ErrConflict
	}
	m.trip.Status = domain.StatusVoting
	m.trip.Ballot = ballot
	return m.trip, nil
}

func (m *memTripRepo) Lock(_ context.Context, _ uuid.UUID, winner domain.Candidate) (domain.Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.trip.Status != domain.StatusVoting {
		return domain.Trip{}, domain.ErrConflict
	}
	start, end := winner.StartDate, winner.EndDate
	m.trip.Status = domain.StatusLocked
	m.trip.LockedStart = &start
	m.trip.LockedEnd = &end
	return m.trip, nil
}

var _ repo.TripRepo = (*memTripRepo)(nil)

// ---- fixtures --------------------------------------------------------------

func day(s string) time.Time {
	t, err := time.ParseInLocation(time.DateOnly, s, time.UTC)
	if err != nil {
		panic("bad test date: " + s)
	}
	return t
}

// juneTrip is the reference scenario trip: 3-day windows in June 1–10.
func juneTrip(status domain.TripStatus) domain.Trip {
	return domain.Trip{
		ID:             uuid.New(),
		Name:           "Coast Week",
		Kind:           domain.KindCollaborative,
		LeaderID:       uuid.New(),
		TripLengthDays: 3,
		StartBound:     day("2025-06-01"),
		EndBound:       day("2025-06-10"),
		Status:         status,
	}
}

// tripRepoReturning stubs GetByID to always return trip.
func tripRepoReturning(trip domain.Trip) *mockTripRepo {
	return &mockTripRepo{
		getByID: func(_ context.Context, _ uuid.UUID) (domain.Trip, error) { return trip, nil },
		markScheduling: func(_ context.Context, _ uuid.UUID) error { return nil },
	}
}

// echoPickRepo upserts by echoing and lists nothing.
func echoPickRepo() *mockPickRepo {
	return &mockPickRepo{
		upsert:     func(_ context.Context, p domain.Pick) (domain.Pick, error) { return p, nil },
		listByTrip: func(_ context.Context, _ uuid.UUID) ([]domain.Pick, error) { return nil, nil },
	}
}

// echoVoteRepo upserts by echoing.
func echoVoteRepo() *mockVoteRepo {
	return &mockVoteRepo{
		upsert: func(_ context.Context, v domain.Vote) (domain.Vote, error) { return v, nil },
	}
}
