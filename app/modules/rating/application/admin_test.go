package ratingservice

import (
	"context"
	"errors"
	"testing"

	ratingdomain "github.com/Black-And-White-Club/runrank-bot/app/modules/rating/domain"
	ratingdb "github.com/Black-And-White-Club/runrank-bot/app/modules/rating/infrastructure/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func TestAdjustRating(t *testing.T) {
	tests := []struct {
		name         string
		userID       ratingdomain.RunnerID
		ratingPoints int
		wantFailure  error
		wantPosition int
		wantTier     ratingdomain.Tier
	}{
		{
			name:         "jump to the top",
			userID:       "a",
			ratingPoints: 800,
			wantPosition: 1,
			wantTier:     ratingdomain.TierUsainBolt,
		},
		{
			name:         "drop to zero",
			userID:       "b",
			ratingPoints: 0,
			wantPosition: 2,
			wantTier:     ratingdomain.TierBronze,
		},
		{
			name:         "negative",
			userID:       "a",
			ratingPoints: -1,
			wantFailure:  ErrNegativeValue,
		},
		{
			name:         "unknown runner",
			userID:       "ghost",
			ratingPoints: 10,
			wantFailure:  ErrRunnerNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewFakeRatingRepository(runner("a", 0, 2), runner("b", 100, 1))
			s := newTestService(repo)

			res, err := s.AdjustRating(context.Background(), tt.userID, tt.ratingPoints)
			require.NoError(t, err)

			if tt.wantFailure != nil {
				require.True(t, res.IsFailure())
				assert.ErrorIs(t, *res.Failure, tt.wantFailure)
				assert.NotContains(t, repo.Trace(), "UpdateRunner")
				return
			}

			require.True(t, res.IsSuccess())
			p := *res.Success
			assert.Equal(t, tt.ratingPoints, p.RatingPoints)
			assert.Equal(t, tt.wantPosition, p.LeaderboardPosition)
			assert.Equal(t, tt.wantTier, p.Tier.Tier)
			assert.Equal(t, tt.ratingPoints, repo.Runner(tt.userID).RatingPoints)
		})
	}
}

func TestSetStreak(t *testing.T) {
	repo := NewFakeRatingRepository(runner("a", 0, 1))
	s := newTestService(repo)

	res, err := s.SetStreak(context.Background(), "a", 9)
	require.NoError(t, err)
	require.True(t, res.IsSuccess())
	assert.Equal(t, 9, (*res.Success).LongestStreak)
	assert.Equal(t, 9, repo.Runner("a").LongestStreak)
	assert.NotContains(t, repo.Trace(), "UpdateLeaderboardPositions", "streak does not move the board")

	// streak 9 -> 10 on the next run: floor(log3(10)) = 2
	run, err := s.LogRun(context.Background(), "a", 1)
	require.NoError(t, err)
	assert.Equal(t, 2, (*run.Success).Outcome.StreakBonus)

	res, err = s.SetStreak(context.Background(), "a", -3)
	require.NoError(t, err)
	require.True(t, res.IsFailure())
	assert.ErrorIs(t, *res.Failure, ErrNegativeValue)
}

func TestDeleteRunner(t *testing.T) {
	t.Run("closes the gap", func(t *testing.T) {
		repo := NewFakeRatingRepository(runner("a", 300, 1), runner("b", 200, 2), runner("c", 100, 3))
		s := newTestService(repo)

		res, err := s.DeleteRunner(context.Background(), "b")
		require.NoError(t, err)
		require.True(t, res.IsSuccess())
		assert.Equal(t, ratingdomain.RunnerID("b"), *res.Success)

		assert.Nil(t, repo.Runner("b"))
		assert.Equal(t, 2, repo.Runner("c").LeaderboardPosition)
	})

	t.Run("unknown runner", func(t *testing.T) {
		s := newTestService(NewFakeRatingRepository())

		res, err := s.DeleteRunner(context.Background(), "ghost")
		require.NoError(t, err)
		require.True(t, res.IsFailure())
		assert.ErrorIs(t, *res.Failure, ErrRunnerNotFound)
	})
}

func TestRecomputeLeaderboard(t *testing.T) {
	t.Run("repairs stale positions", func(t *testing.T) {
		repo := NewFakeRatingRepository(
			runner("b", 500, 1),
			runner("a", 500, 1),
			runner("c", 900, 0),
		)
		s := newTestService(repo)

		res, err := s.RecomputeLeaderboard(context.Background())
		require.NoError(t, err)
		board := *res.Success
		require.Len(t, board, 3)

		assert.Equal(t, ratingdomain.RunnerID("c"), board[0].UserID)
		assert.Equal(t, ratingdomain.TierUsainBolt, board[0].Tier.Tier)
		assert.Equal(t, ratingdomain.RunnerID("a"), board[1].UserID, "ties break by id")
		assert.Equal(t, ratingdomain.RunnerID("b"), board[2].UserID)
	})

	t.Run("store failure", func(t *testing.T) {
		repo := NewFakeRatingRepository(runner("a", 1, 1))
		repo.UpdateLeaderboardPositionsFunc = func(ctx context.Context, db bun.IDB, p map[ratingdomain.RunnerID]int) error {
			return errors.New("disk full")
		}
		s := newTestService(repo)

		_, err := s.RecomputeLeaderboard(context.Background())
		require.Error(t, err)
	})

	t.Run("corrupt rating surfaces as error", func(t *testing.T) {
		repo := NewFakeRatingRepository()
		repo.GetAllRunnersFunc = func(ctx context.Context, db bun.IDB) ([]*ratingdb.Runner, error) {
			return []*ratingdb.Runner{runner("a", -5, 1)}, nil
		}
		s := newTestService(repo)

		_, err := s.RecomputeLeaderboard(context.Background())
		require.Error(t, err)
		assert.ErrorIs(t, err, ratingdomain.ErrInvalidInput)
	})
}
