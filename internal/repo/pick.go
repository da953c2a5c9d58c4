package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/askelund/tripdates/internal/domain"
)

// uniqueViolation is the Postgres error code for a unique constraint hit.
const uniqueViolation = "23505"

// pickMemberStartUnique is the index enforcing "no two picks by the same
// member share a start date" at the storage level.
const pickMemberStartUnique = "picks_member_start_uq"

// PickRepo defines persistence for members' ranked picks.
type PickRepo interface {
	// Upsert inserts or overwrites the pick keyed by (trip, member, rank).
	// Returns domain.ErrDuplicateWindow when the member already holds that
	// start date under another rank.
	Upsert(ctx context.Context, pick domain.Pick) (domain.Pick, error)

	// DeleteByMember removes all of a member's picks for a trip. Removing
	// zero picks is not an error — the member simply had none.
	DeleteByMember(ctx context.Context, tripID, memberID uuid.UUID) error

	// ListByTrip returns every pick for a trip, ordered by member then rank.
	ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Pick, error)

	// CountDistinctMembers counts how many members have at least one pick
	// on the trip. Feeds the leader-visible response-count indicator.
	CountDistinctMembers(ctx context.Context, tripID uuid.UUID) (int, error)
}

type pgPickRepo struct {
	db db
}

// NewPickRepo constructs a PickRepo backed by the provided db connection.
func NewPickRepo(db db) PickRepo {
	return &pgPickRepo{db: db}
}

func (r *pgPickRepo) Upsert(ctx context.Context, pick domain.Pick) (domain.Pick, error) {
	const q = `
		INSERT INTO picks (trip_id, member_id, rank, start_date)
		VALUES (@trip_id, @member_id, @rank, @start_date)
		ON CONFLICT (trip_id, member_id, rank)
		DO UPDATE SET start_date = EXCLUDED.start_date, updated_at = now()
		RETURNING trip_id, member_id, rank, start_date, created_at, updated_at`

	args := pgx.NamedArgs{
		"trip_id":    pick.TripID,
		"member_id":  pick.MemberID,
		"rank":       int(pick.Rank),
		"start_date": pick.StartDate,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanPick(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == pickMemberStartUnique {
			return domain.Pick{}, fmt.Errorf("repo.PickRepo.Upsert: %w", domain.ErrDuplicateWindow)
		}
		return domain.Pick{}, fmt.Errorf("repo.PickRepo.Upsert: %w", err)
	}
	return result, nil
}

func (r *pgPickRepo) DeleteByMember(ctx context.Context, tripID, memberID uuid.UUID) error {
	const q = `DELETE FROM picks WHERE trip_id = @trip_id AND member_id = @member_id`

	args := pgx.NamedArgs{"trip_id": tripID, "member_id": memberID}
	if _, err := r.db.Exec(ctx, q, args); err != nil {
		return fmt.Errorf("repo.PickRepo.DeleteByMember: %w", err)
	}
	return nil
}

func (r *pgPickRepo) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Pick, error) {
	const q = `
		SELECT trip_id, member_id, rank, start_date, created_at, updated_at
		FROM picks
		WHERE trip_id = @trip_id
		ORDER BY member_id, rank`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, fmt.Errorf("repo.PickRepo.ListByTrip: %w", err)
	}
	defer rows.Close()

	var picks []domain.Pick
	for rows.Next() {
		p, err := scanPick(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.PickRepo.ListByTrip: scan: %w", err)
		}
		picks = append(picks, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.PickRepo.ListByTrip: rows: %w", err)
	}

	return picks, nil
}

func (r *pgPickRepo) CountDistinctMembers(ctx context.Context, tripID uuid.UUID) (int, error) {
	const q = `SELECT count(DISTINCT member_id) FROM picks WHERE trip_id = @trip_id`

	var n int
	if err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"trip_id": tripID}).Scan(&n); err != nil {
		return 0, fmt.Errorf("repo.PickRepo.CountDistinctMembers: %w", err)
	}
	return n, nil
}

// scanPick maps a database row into a domain.Pick.
func scanPick(s scanner) (domain.Pick, error) {
	var (
		p              domain.Pick
		tripID, member pgtype.UUID
		rank           int
		startDate      pgtype.Date
	)

	err := s.Scan(&tripID, &member, &rank, &startDate, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Pick{}, domain.ErrNotFound
		}
		return domain.Pick{}, err
	}

	p.TripID = uuid.UUID(tripID.Bytes)
	p.MemberID = uuid.UUID(member.Bytes)
	p.Rank = domain.Rank(rank)
	p.StartDate = startDate.Time

	return p, nil
}
