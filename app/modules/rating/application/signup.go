package ratingservice

import (
	"context"
	"errors"
	"fmt"
	"strings"

	ratingdomain "github.com/Black-And-White-Club/runrank-bot/app/modules/rating/domain"
	ratingdb "github.com/Black-And-White-Club/runrank-bot/app/modules/rating/infrastructure/repositories"
	"github.com/uptrace/bun"
)

// SignUp registers a runner with 0 RR at the bottom of the leaderboard.
func (s *RatingService) SignUp(ctx context.Context, userID ratingdomain.RunnerID, displayName string) (ProfileResult, error) {
	return withTelemetry(s, ctx, "SignUp", string(userID), func(ctx context.Context) (ProfileResult, error) {
		if strings.TrimSpace(string(userID)) == "" {
			return failure[*RunnerProfile](fmt.Errorf("%w: empty user id", ratingdomain.ErrInvalidInput)), nil
		}

		// Position assignment reads the last position, so sign-ups are serialized with recomputes.
		s.boardMu.Lock()
		defer s.boardMu.Unlock()

		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (ProfileResult, error) {
			return s.signUpLogic(ctx, db, userID, strings.TrimSpace(displayName))
		})
	})
}

func (s *RatingService) signUpLogic(ctx context.Context, db bun.IDB, userID ratingdomain.RunnerID, displayName string) (ProfileResult, error) {
	_, err := s.repo.GetRunner(ctx, db, userID)
	switch {
	case err == nil:
		return failure[*RunnerProfile](ErrRunnerAlreadyExists), nil
	case !errors.Is(err, ratingdb.ErrNotFound):
		return ProfileResult{}, fmt.Errorf("failed to check existing runner: %w", err)
	}

	last, err := s.repo.GetLastPosition(ctx, db)
	if err != nil {
		return ProfileResult{}, fmt.Errorf("failed to get last leaderboard position: %w", err)
	}

	if displayName == "" {
		displayName = string(userID)
	}
	runner := &ratingdb.Runner{
		UserID:              userID,
		DisplayName:         displayName,
		LeaderboardPosition: last + 1,
	}
	if err := s.repo.CreateRunner(ctx, db, runner); err != nil {
		if errors.Is(err, ratingdb.ErrAlreadyExists) {
			return failure[*RunnerProfile](ErrRunnerAlreadyExists), nil
		}
		return ProfileResult{}, fmt.Errorf("failed to create runner: %w", err)
	}

	if n, err := s.repo.CountRunners(ctx, db); err == nil {
		s.metrics.SetRunnerCount(ctx, n)
	}

	profile, err := toProfile(runner)
	if err != nil {
		return ProfileResult{}, err
	}
	return success(profile), nil
}
