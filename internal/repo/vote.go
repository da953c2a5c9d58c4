package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/askelund/tripdates/internal/domain"
)

// VoteRepo defines persistence for members' ballot choices.
type VoteRepo interface {
	// Upsert inserts or overwrites the vote keyed by (trip, member).
	// Option validity against the ballot is the service layer's concern.
	Upsert(ctx context.Context, vote domain.Vote) (domain.Vote, error)

	// ListByTrip returns every vote for a trip.
	ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Vote, error)

	// CountByTrip counts votes cast on the trip — one per member by
	// construction. Feeds the leader-visible response-count indicator
	// during the voting phase.
	CountByTrip(ctx context.Context, tripID uuid.UUID) (int, error)
}

type pgVoteRepo struct {
	db db
}

// NewVoteRepo constructs a VoteRepo backed by the provided db connection.
func NewVoteRepo(db db) VoteRepo {
	return &pgVoteRepo{db: db}
}

func (r *pgVoteRepo) Upsert(ctx context.Context, vote domain.Vote) (domain.Vote, error) {
	const q = `
		INSERT INTO votes (trip_id, member_id, option_key)
		VALUES (@trip_id, @member_id, @option_key)
		ON CONFLICT (trip_id, member_id)
		DO UPDATE SET option_key = EXCLUDED.option_key, updated_at = now()
		RETURNING trip_id, member_id, option_key, created_at, updated_at`

	args := pgx.NamedArgs{
		"trip_id":    vote.TripID,
		"member_id":  vote.MemberID,
		"option_key": vote.OptionKey,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanVote(row)
	if err != nil {
		return domain.Vote{}, fmt.Errorf("repo.VoteRepo.Upsert: %w", err)
	}
	return result, nil
}

func (r *pgVoteRepo) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Vote, error) {
	const q = `
		SELECT trip_id, member_id, option_key, created_at, updated_at
		FROM votes
		WHERE trip_id = @trip_id
		ORDER BY member_id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, fmt.Errorf("repo.VoteRepo.ListByTrip: %w", err)
	}
	defer rows.Close()

	var votes []domain.Vote
	for rows.Next() {
		v, err := scanVote(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.VoteRepo.ListByTrip: scan: %w", err)
		}
		votes = append(votes, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.VoteRepo.ListByTrip: rows: %w", err)
	}

	return votes, nil
}

func (r *pgVoteRepo) CountByTrip(ctx context.Context, tripID uuid.UUID) (int, error) {
	const q = `SELECT count(*) FROM votes WHERE trip_id = @trip_id`

	var n int
	if err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"trip_id": tripID}).Scan(&n); err != nil {
		return 0, fmt.Errorf("repo.VoteRepo.CountByTrip: %w", err)
	}
	return n, nil
}

// scanVote maps a database row into a domain.Vote.
func scanVote(s scanner) (domain.Vote, error) {
	var (
		v              domain.Vote
		tripID, member pgtype.UUID
	)

	err := s.Scan(&tripID, &member, &v.OptionKey, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Vote{}, domain.ErrNotFound
		}
		return domain.Vote{}, err
	}

	v.TripID = uuid.UUID(tripID.Bytes)
	v.MemberID = uuid.UUID(member.Bytes)

	return v, nil
}
