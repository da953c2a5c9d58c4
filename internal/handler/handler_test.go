package handler_test

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/askelund/tripdates/internal/domain"
	"github.com/askelund/tripdates/internal/handler"
)

// Hand-written func-field mocks for the two servicer interfaces. Only the
// methods a test stubs get bodies; calling anything else panics and points
// at the missing stub.

type mockTripServicer struct {
	create  func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	getByID func(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	list    func(ctx context.Context) ([]domain.Trip, error)
	delete  func(ctx context.Context, id uuid.UUID) error
}

func (m *mockTripServicer) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	return m.create(ctx, trip)
}
func (m *mockTripServicer) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	return m.getByID(ctx, id)
}
func (m *mockTripServicer) List(ctx context.Context) ([]domain.Trip, error) {
	return m.list(ctx)
}
func (m *mockTripServicer) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

var _ handler.TripServicer = (*mockTripServicer)(nil)

type mockScheduleServicer struct {
	validStarts  func(ctx context.Context, tripID uuid.UUID) ([]time.Time, error)
	submitPick   func(ctx context.Context, tripID, memberID uuid.UUID, rank domain.Rank, start time.Time) (domain.Pick, error)
	clearPicks   func(ctx context.Context, tripID, memberID uuid.UUID) error
	submitVote   func(ctx context.Context, tripID, memberID uuid.UUID, optionKey string) (domain.Vote, error)
	dayIntensity func(ctx context.Context, tripID uuid.UUID, activeMembers int) (map[string]float64, error)
	candidates   func(ctx context.Context, tripID uuid.UUID, k int) ([]domain.Candidate, error)
	openVoting   func(ctx context.Context, tripID, callerID uuid.UUID) (domain.Trip, error)
	lock         func(ctx context.Context, tripID, callerID uuid.UUID, optionKey string) (domain.Trip, error)
	progress     func(ctx context.Context, tripID uuid.UUID) (domain.Progress, error)
}

func (m *mockScheduleServicer) ValidStarts(ctx context.Context, tripID uuid.UUID) ([]time.Time, error) {
	return m.validStarts(ctx, tripID)
}
func (m *mockScheduleServicer) SubmitPick(ctx context.Context, tripID, memberID uuid.UUID, rank domain.Rank, start time.Time) (domain.Pick, error) {
	return m.submitPick(ctx, tripID, memberID, rank, start)
}
func (m *mockScheduleServicer) ClearPicks(ctx context.Context, tripID, memberID uuid.UUID) error {
	return m.clearPicks(ctx, tripID, memberID)
}
func (m *mockScheduleServicer) SubmitVote(ctx context.Context, tripID, memberID uuid.UUID, optionKey string) (domain.Vote, error) {
	return m.submitVote(ctx, tripID, memberID, optionKey)
}
func (m *mockScheduleServicer) DayIntensity(ctx context.Context, tripID uuid.UUID, activeMembers int) (map[string]float64, error) {
	return m.dayIntensity(ctx, tripID, activeMembers)
}
func (m *mockScheduleServicer) Candidates(ctx context.Context, tripID uuid.UUID, k int) ([]domain.Candidate, error) {
	return m.candidates(ctx, tripID, k)
}
func (m *mockScheduleServicer) OpenVoting(ctx context.Context, tripID, callerID uuid.UUID) (domain.Trip, error) {
	return m.openVoting(ctx, tripID, callerID)
}
func (m *mockScheduleServicer) Lock(ctx context.Context, tripID, callerID uuid.UUID, optionKey string) (domain.Trip, error) {
	return m.lock(ctx, tripID, callerID, optionKey)
}
func (m *mockScheduleServicer) Progress(ctx context.Context, tripID uuid.UUID) (domain.Progress, error) {
	return m.progress(ctx, tripID)
}

var _ handler.ScheduleServicer = (*mockScheduleServicer)(nil)

// ---- shared helpers --------------------------------------------------------

func day(s string) time.Time {
	t, err := time.ParseInLocation(time.DateOnly, s, time.UTC)
	if err != nil {
		panic("bad test date: " + s)
	}
	return t
}

func sampleTrip(status domain.TripStatus) domain.Trip {
	return domain.Trip{
		ID:             uuid.New(),
		Name:           "Coast Week",
		Kind:           domain.KindCollaborative,
		LeaderID:       uuid.New(),
		TripLengthDays: 3,
		StartBound:     day("2025-06-01"),
		EndBound:       day("2025-06-10"),
		Status:         status,
		CreatedAt:      time.Now().UTC(),
		UpdatedAt:      time.Now().UTC(),
	}
}

// doRequest runs one request through the full chi router and returns the
// recorder. memberID, when non-nil, is attached as the X-Member-ID header.
func doRequest(t *testing.T, trips handler.TripServicer, schedule handler.ScheduleServicer,
	method, target, body string, memberID *uuid.UUID) *httptest.ResponseRecorder {
	t.Helper()

	var rdr *strings.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	} else {
		rdr = strings.NewReader("")
	}
	req := httptest.NewRequest(method, target, rdr)
	if memberID != nil {
		req.Header.Set("X-Member-ID", memberID.String())
	}

	rec := httptest.NewRecorder()
	handler.NewServer(trips, schedule).Routes().ServeHTTP(rec, req)
	return rec
}
