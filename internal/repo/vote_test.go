package repo_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askelund/tripdates/internal/domain"
	"github.com/askelund/tripdates/internal/repo"
)

func newVoteFixture(t *testing.T) (repo.VoteRepo, domain.Trip) {
	t.Helper()
	tx := newTestTx(t)
	trip := mustCreateTrip(t, repo.NewTripRepo(tx), tripFixture())
	return repo.NewVoteRepo(tx), trip
}

func TestVoteRepo_Upsert(t *testing.T) {
	r, trip := newVoteFixture(t)
	ctx := context.Background()

	input := domain.Vote{
		TripID:    trip.ID,
		MemberID:  uuid.New(),
		OptionKey: "2025-06-03|2025-06-05",
	}
	got, err := r.Upsert(ctx, input)

	require.NoError(t, err)
	assert.Equal(t, input.TripID, got.TripID)
	assert.Equal(t, input.MemberID, got.MemberID)
	assert.Equal(t, input.OptionKey, got.OptionKey)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestVoteRepo_Upsert_ChangesMind(t *testing.T) {
	r, trip := newVoteFixture(t)
	ctx := context.Background()

	input := domain.Vote{
		TripID:    trip.ID,
		MemberID:  uuid.New(),
		OptionKey: "2025-06-03|2025-06-05",
	}
	_, err := r.Upsert(ctx, input)
	require.NoError(t, err)

	input.OptionKey = "2025-06-01|2025-06-03"
	got, err := r.Upsert(ctx, input)

	require.NoError(t, err)
	assert.Equal(t, "2025-06-01|2025-06-03", got.OptionKey)

	votes, err := r.ListByTrip(ctx, trip.ID)
	require.NoError(t, err)
	require.Len(t, votes, 1, "revoting replaces the member's existing vote")
	assert.Equal(t, "2025-06-01|2025-06-03", votes[0].OptionKey)
}

func TestVoteRepo_ListByTrip_Empty(t *testing.T) {
	r, trip := newVoteFixture(t)

	votes, err := r.ListByTrip(context.Background(), trip.ID)

	require.NoError(t, err)
	assert.Empty(t, votes)
}

func TestVoteRepo_CountByTrip(t *testing.T) {
	r, trip := newVoteFixture(t)
	ctx := context.Background()

	for range 3 {
		_, err := r.Upsert(ctx, domain.Vote{
			TripID:    trip.ID,
			MemberID:  uuid.New(),
			OptionKey: "2025-06-03|2025-06-05",
		})
		require.NoError(t, err)
	}

	n, err := r.CountByTrip(ctx, trip.ID)

	require.NoError(t, err)
	assert.Equal(t, 3, n)
}
