package ratingservice

import (
	"context"
	"errors"
	"fmt"

	ratingdomain "github.com/Black-And-White-Club/runrank-bot/app/modules/rating/domain"
	ratingdb "github.com/Black-And-White-Club/runrank-bot/app/modules/rating/infrastructure/repositories"
	"github.com/uptrace/bun"
)

// AdjustRating sets a runner's RR to an exact value and rewrites the leaderboard.
func (s *RatingService) AdjustRating(ctx context.Context, userID ratingdomain.RunnerID, ratingPoints int) (ProfileResult, error) {
	return withTelemetry(s, ctx, "AdjustRating", string(userID), func(ctx context.Context) (ProfileResult, error) {
		if ratingPoints < 0 {
			return failure[*RunnerProfile](fmt.Errorf("%w: rating points %d", ErrNegativeValue, ratingPoints)), nil
		}

		result, before, err := s.updateProfile(ctx, userID, func(r *ratingdb.Runner) (*ratingdb.RunnerUpdateFields, error) {
			return &ratingdb.RunnerUpdateFields{RatingPoints: &ratingPoints}, nil
		})
		if err != nil || result.IsFailure() {
			return result, err
		}

		profile := *result.Success
		profile.LeaderboardPosition = s.recomputeAfterUpdate(ctx, userID, profile.LeaderboardPosition)
		tier, err := ratingdomain.ClassifyInfo(profile.RatingPoints, profile.LeaderboardPosition)
		if err != nil {
			return ProfileResult{}, err
		}
		profile.Tier = tier

		s.metrics.RecordRatingDelta(ctx, "adjust", profile.RatingPoints-before.RatingPoints)
		if oldTier, err := ratingdomain.ClassifyInfo(before.RatingPoints, before.LeaderboardPosition); err == nil {
			s.recordTierChange(ctx, oldTier, tier)
		}
		return success(profile), nil
	})
}

// SetStreak overwrites a runner's streak. RR and positions are untouched.
func (s *RatingService) SetStreak(ctx context.Context, userID ratingdomain.RunnerID, streak int) (ProfileResult, error) {
	return withTelemetry(s, ctx, "SetStreak", string(userID), func(ctx context.Context) (ProfileResult, error) {
		if streak < 0 {
			return failure[*RunnerProfile](fmt.Errorf("%w: streak %d", ErrNegativeValue, streak)), nil
		}

		result, _, err := s.updateProfile(ctx, userID, func(r *ratingdb.Runner) (*ratingdb.RunnerUpdateFields, error) {
			return &ratingdb.RunnerUpdateFields{LongestStreak: &streak}, nil
		})
		return result, err
	})
}

// updateProfile runs a single-runner update under the runner's lock and returns the new profile.
func (s *RatingService) updateProfile(ctx context.Context, userID ratingdomain.RunnerID, apply updateFunc) (ProfileResult, *ratingdb.Runner, error) {
	unlock := s.runnerLocks.Lock(userID)
	defer unlock()

	s.boardMu.RLock()
	defer s.boardMu.RUnlock()

	var before *ratingdb.Runner
	result, err := runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (ProfileResult, error) {
		b, after, err := s.applyUpdate(ctx, db, userID, apply)
		if err != nil {
			if isDomainFailure(err) {
				return failure[*RunnerProfile](err), nil
			}
			return ProfileResult{}, err
		}
		before = b

		profile, err := toProfile(after)
		if err != nil {
			return ProfileResult{}, err
		}
		return success(profile), nil
	})
	return result, before, err
}

// DeleteRunner removes a runner and closes the gap in the leaderboard.
func (s *RatingService) DeleteRunner(ctx context.Context, userID ratingdomain.RunnerID) (DeleteResult, error) {
	return withTelemetry(s, ctx, "DeleteRunner", string(userID), func(ctx context.Context) (DeleteResult, error) {
		s.boardMu.Lock()
		defer s.boardMu.Unlock()

		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (DeleteResult, error) {
			if err := s.repo.DeleteRunner(ctx, db, userID); err != nil {
				if errors.Is(err, ratingdb.ErrNotFound) {
					return failure[ratingdomain.RunnerID](ErrRunnerNotFound), nil
				}
				return DeleteResult{}, fmt.Errorf("failed to delete runner: %w", err)
			}
			if _, err := s.recomputeTx(ctx, db); err != nil {
				return DeleteResult{}, err
			}
			return success(userID), nil
		})
	})
}

// RecomputeLeaderboard rewrites every position from current RR and returns the new board.
func (s *RatingService) RecomputeLeaderboard(ctx context.Context) (LeaderboardResult, error) {
	return withTelemetry(s, ctx, "RecomputeLeaderboard", "all", func(ctx context.Context) (LeaderboardResult, error) {
		s.boardMu.Lock()
		defer s.boardMu.Unlock()

		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (LeaderboardResult, error) {
			if _, err := s.recomputeTx(ctx, db); err != nil {
				return LeaderboardResult{}, err
			}
			return s.leaderboardTx(ctx, db)
		})
	})
}

func (s *RatingService) leaderboardTx(ctx context.Context, db bun.IDB) (LeaderboardResult, error) {
	runners, err := s.repo.GetLeaderboard(ctx, db, 0)
	if err != nil {
		return LeaderboardResult{}, fmt.Errorf("failed to get leaderboard: %w", err)
	}
	entries, err := toLeaderboard(runners)
	if err != nil {
		return LeaderboardResult{}, err
	}
	return success(entries), nil
}
