// Package repo contains all database access for the date-consensus service.
// Each resource has its own file with an interface and a Postgres
// implementation. No business logic lives here — only SQL and type mapping.
package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/askelund/tripdates/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and
// pgx.Tx. Accepting this instead of a concrete pool lets integration tests
// pass a transaction that is rolled back after each test, giving free
// per-test isolation without manual cleanup.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TripRepo defines persistence for trips, including the two conditional
// phase transitions. The service layer depends on this interface, not the
// Postgres implementation, so it can be unit-tested with a mock.
type TripRepo interface {
	// Create inserts a new trip and returns the persisted record with
	// DB-generated id and timestamps populated.
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// GetByID retrieves a trip by primary key.
	// Returns domain.ErrNotFound if no trip with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error)

	// List returns all trips ordered by created_at descending.
	List(ctx context.Context) ([]domain.Trip, error)

	// Delete removes a trip and, through the schema's cascades, all of
	// its picks and votes. Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// MarkScheduling advances proposed → scheduling. Losing the race to a
	// concurrent first pick is not an error: the trip is already where the
	// caller wanted it.
	MarkScheduling(ctx context.Context, id uuid.UUID) error

	// OpenVoting performs the scheduling → voting compare-and-set,
	// freezing ballot onto the trip. Returns domain.ErrConflict when the
	// trip was no longer in scheduling at commit time.
	OpenVoting(ctx context.Context, id uuid.UUID, ballot []domain.Candidate) (domain.Trip, error)

	// Lock performs the voting → locked compare-and-set, the single
	// irreversible transition. Returns domain.ErrConflict when the trip
	// was no longer in voting at commit time.
	Lock(ctx context.Context, id uuid.UUID, winner domain.Candidate) (domain.Trip, error)
}

// pgTripRepo is the Postgres implementation of TripRepo.
type pgTripRepo struct {
	db db
}

// NewTripRepo constructs a TripRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx.
func NewTripRepo(db db) TripRepo {
	return &pgTripRepo{db: db}
}

const tripColumns = `id, name, kind, leader_id, trip_length_days,
		start_bound, end_bound, status, locked_start, locked_end, ballot,
		created_at, updated_at`

func (r *pgTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	const q = `
		INSERT INTO trips (name, kind, leader_id, trip_length_days,
			start_bound, end_bound, status, locked_start, locked_end)
		VALUES (@name, @kind, @leader_id, @trip_length_days,
			@start_bound, @end_bound, @status, @locked_start, @locked_end)
		RETURNING ` + tripColumns

	args := pgx.NamedArgs{
		"name":             trip.Name,
		"kind":             string(trip.Kind),
		"leader_id":        trip.LeaderID,
		"trip_length_days": trip.TripLengthDays,
		"start_bound":      trip.StartBound,
		"end_bound":        trip.EndBound,
		"status":           string(trip.Status),
		"locked_start":     trip.LockedStart, // nil becomes NULL
		"locked_end":       trip.LockedEnd,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanTrip(row)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgTripRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	const q = `SELECT ` + tripColumns + ` FROM trips WHERE id = @id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	result, err := scanTrip(row)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgTripRepo) List(ctx context.Context) ([]domain.Trip, error) {
	const q = `SELECT ` + tripColumns + ` FROM trips ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.TripRepo.List: %w", err)
	}
	defer rows.Close()

	var trips []domain.Trip
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.TripRepo.List: scan: %w", err)
		}
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.TripRepo.List: rows: %w", err)
	}

	return trips, nil
}

func (r *pgTripRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM trips WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.TripRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TripRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// MarkScheduling conditionally advances proposed → scheduling.
// Zero rows affected means another pick already advanced the trip (or it
// has moved past scheduling entirely); the caller's own status gate has
// already dealt with the latter, so this is not an error here.
func (r *pgTripRepo) MarkScheduling(ctx context.Context, id uuid.UUID) error {
	const q = `
		UPDATE trips
		SET status = @to, updated_at = now()
		WHERE id = @id AND status = @from`

	args := pgx.NamedArgs{
		"id":   id,
		"from": string(domain.StatusProposed),
		"to":   string(domain.StatusScheduling),
	}
	if _, err := r.db.Exec(ctx, q, args); err != nil {
		return fmt.Errorf("repo.TripRepo.MarkScheduling: %w", err)
	}
	return nil
}

// OpenVoting is a single atomic conditional update: the trip moves to
// voting and receives its frozen ballot only if it is still in scheduling.
func (r *pgTripRepo) OpenVoting(ctx context.Context, id uuid.UUID, ballot []domain.Candidate) (domain.Trip, error) {
	ballotJSON, err := json.Marshal(ballot)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.OpenVoting: encode ballot: %w", err)
	}

	const q = `
		UPDATE trips
		SET status = @to, ballot = @ballot, updated_at = now()
		WHERE id = @id AND status = @from
		RETURNING ` + tripColumns

	args := pgx.NamedArgs{
		"id":     id,
		"from":   string(domain.StatusScheduling),
		"to":     string(domain.StatusVoting),
		"ballot": ballotJSON,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanTrip(row)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Trip{}, r.casFailure(ctx, id, "OpenVoting")
		}
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.OpenVoting: %w", err)
	}
	return result, nil
}

// Lock is the voting → locked compare-and-set. Exactly one concurrent
// caller can win it; everyone else sees domain.ErrConflict.
func (r *pgTripRepo) Lock(ctx context.Context, id uuid.UUID, winner domain.Candidate) (domain.Trip, error) {
	const q = `
		UPDATE trips
		SET status = @to,
		    locked_start = @locked_start,
		    locked_end = @locked_end,
		    updated_at = now()
		WHERE id = @id AND status = @from
		RETURNING ` + tripColumns

	args := pgx.NamedArgs{
		"id":           id,
		"from":         string(domain.StatusVoting),
		"to":           string(domain.StatusLocked),
		"locked_start": winner.StartDate,
		"locked_end":   winner.EndDate,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanTrip(row)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Trip{}, r.casFailure(ctx, id, "Lock")
		}
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Lock: %w", err)
	}
	return result, nil
}

// casFailure distinguishes "trip gone" from "trip changed state under us"
// after a conditional update matched zero rows.
func (r *pgTripRepo) casFailure(ctx context.Context, id uuid.UUID, op string) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("repo.TripRepo.%s: %w", op, domain.ErrNotFound)
		}
		return fmt.Errorf("repo.TripRepo.%s: %w", op, err)
	}
	return fmt.Errorf("repo.TripRepo.%s: %w", op, domain.ErrConflict)
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing scanTrip to
// be reused for QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// scanTrip maps a database row into a domain.Trip, handling the UUID,
// nullable date, and jsonb ballot conversions.
func scanTrip(s scanner) (domain.Trip, error) {
	var (
		t           domain.Trip
		id, leader  pgtype.UUID
		kind        string
		status      string
		startBound  pgtype.Date
		endBound    pgtype.Date
		lockedStart pgtype.Date
		lockedEnd   pgtype.Date
		ballotRaw   []byte
	)

	err := s.Scan(&id, &t.Name, &kind, &leader, &t.TripLengthDays,
		&startBound, &endBound, &status, &lockedStart, &lockedEnd, &ballotRaw,
		&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Trip{}, domain.ErrNotFound
		}
		return domain.Trip{}, err
	}

	t.ID = uuid.UUID(id.Bytes)
	t.LeaderID = uuid.UUID(leader.Bytes)
	t.Kind = domain.TripKind(kind)
	t.Status = domain.TripStatus(status)
	t.StartBound = startBound.Time
	t.EndBound = endBound.Time
	if lockedStart.Valid {
		ls := lockedStart.Time
		t.LockedStart = &ls
	}
	if lockedEnd.Valid {
		le := lockedEnd.Time
		t.LockedEnd = &le
	}
	if len(ballotRaw) > 0 {
		if err := json.Unmarshal(ballotRaw, &t.Ballot); err != nil {
			return domain.Trip{}, fmt.Errorf("decode ballot: %w", err)
		}
	}

	return t, nil
}
