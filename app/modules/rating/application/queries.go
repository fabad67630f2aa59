package ratingservice

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	ratingdomain "github.com/Black-And-White-Club/runrank-bot/app/modules/rating/domain"
	ratingdb "github.com/Black-And-White-Club/runrank-bot/app/modules/rating/infrastructure/repositories"
	"github.com/Black-And-White-Club/runrank-bot/internal/results"
)

// GetProfile returns a runner with their derived tier and average distance.
func (s *RatingService) GetProfile(ctx context.Context, userID ratingdomain.RunnerID) (ProfileResult, error) {
	return withTelemetry(s, ctx, "GetProfile", string(userID), func(ctx context.Context) (ProfileResult, error) {
		runner, err := s.repo.GetRunner(ctx, nil, userID)
		if err != nil {
			if errors.Is(err, ratingdb.ErrNotFound) {
				return failure[*RunnerProfile](ErrRunnerNotFound), nil
			}
			return ProfileResult{}, fmt.Errorf("failed to get runner: %w", err)
		}

		profile, err := toProfile(runner)
		if err != nil {
			return ProfileResult{}, err
		}
		return success(profile), nil
	})
}

// GetLeaderboard returns the top limit runners by position; limit <= 0 returns everyone.
func (s *RatingService) GetLeaderboard(ctx context.Context, limit int) (LeaderboardResult, error) {
	return withTelemetry(s, ctx, "GetLeaderboard", strconv.Itoa(limit), func(ctx context.Context) (LeaderboardResult, error) {
		runners, err := s.repo.GetLeaderboard(ctx, nil, limit)
		if err != nil {
			return LeaderboardResult{}, fmt.Errorf("failed to get leaderboard: %w", err)
		}
		entries, err := toLeaderboard(runners)
		if err != nil {
			return LeaderboardResult{}, err
		}
		return success(entries), nil
	})
}

// ListSeasons returns archived seasons, most recent first.
func (s *RatingService) ListSeasons(ctx context.Context, limit int) ([]*ratingdb.Season, error) {
	result, err := withTelemetry(s, ctx, "ListSeasons", strconv.Itoa(limit), func(ctx context.Context) (results.OperationResult[[]*ratingdb.Season, error], error) {
		seasons, err := s.repo.ListSeasons(ctx, nil, limit)
		if err != nil {
			return results.OperationResult[[]*ratingdb.Season, error]{}, fmt.Errorf("failed to list seasons: %w", err)
		}
		return success(seasons), nil
	})
	if err != nil {
		return nil, err
	}
	return *result.Success, nil
}
