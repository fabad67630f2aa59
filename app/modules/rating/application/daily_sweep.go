package ratingservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	ratingdomain "github.com/Black-And-White-Club/runrank-bot/app/modules/rating/domain"
	ratingdb "github.com/Black-And-White-Club/runrank-bot/app/modules/rating/infrastructure/repositories"
	"github.com/Black-And-White-Club/runrank-bot/internal/observability/attr"
	"github.com/uptrace/bun"
)

// ApplyDailyPenalties penalizes every runner with no run on or after date,
// then rewrites the leaderboard. The calendar day is read in date's own location.
// The whole sweep is one transaction and each date is swept at most once;
// a second sweep of the same date is an ErrDayAlreadySwept failure.
func (s *RatingService) ApplyDailyPenalties(ctx context.Context, date time.Time) (DaySweepResult, error) {
	day := civilDate(date, date.Location())

	return withTelemetry(s, ctx, "ApplyDailyPenalties", day.Format(time.DateOnly), func(ctx context.Context) (DaySweepResult, error) {
		s.boardMu.Lock()
		defer s.boardMu.Unlock()

		result, err := runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (DaySweepResult, error) {
			return s.dailySweepLogic(ctx, db, day)
		})
		if err != nil || result.IsFailure() {
			return result, err
		}

		sweep := *result.Success
		for _, p := range sweep.Penalized {
			s.metrics.RecordRatingDelta(ctx, "penalty", p.NewRatingPoints-p.OldRatingPoints)
			s.recordTierChange(ctx, p.OldTier, p.NewTier)
		}
		s.logger.InfoContext(ctx, "Daily sweep applied",
			attr.ExtractCorrelationID(ctx),
			attr.String("date", day.Format(time.DateOnly)),
			attr.Int("missed", sweep.Missed),
			attr.Int("penalized", len(sweep.Penalized)),
		)
		return result, nil
	})
}

// errNothingToDo skips a runner in the sweep without writing.
var errNothingToDo = errors.New("nothing to do")

func (s *RatingService) dailySweepLogic(ctx context.Context, db bun.IDB, day time.Time) (DaySweepResult, error) {
	claimed, err := s.repo.MarkDaySwept(ctx, db, day)
	if err != nil {
		return DaySweepResult{}, fmt.Errorf("failed to record sweep: %w", err)
	}
	if !claimed {
		return failure[*DaySweep](fmt.Errorf("%w: %s", ErrDayAlreadySwept, day.Format(time.DateOnly))), nil
	}

	missed, err := s.repo.GetRunnersNotLoggedOn(ctx, db, day)
	if err != nil {
		return DaySweepResult{}, fmt.Errorf("failed to get runners without a run: %w", err)
	}

	penalized := make([]PenaltyChange, 0, len(missed))
	for _, m := range missed {
		before, after, err := s.applyUpdate(ctx, db, m.UserID, func(r *ratingdb.Runner) (*ratingdb.RunnerUpdateFields, error) {
			// A run logged after the day ended may have been for that day.
			if r.LoggedOnOrAfter(day) {
				return nil, errNothingToDo
			}
			// Positions do not move until the recompute below, so every penalty
			// is taken against the standings the day ended with.
			newRR, err := ratingdomain.PenaltyForNoLog(r.Snapshot())
			if err != nil {
				return nil, err
			}
			if newRR == r.RatingPoints {
				return nil, errNothingToDo
			}
			return &ratingdb.RunnerUpdateFields{RatingPoints: &newRR}, nil
		})
		switch {
		case errors.Is(err, errNothingToDo), errors.Is(err, ErrRunnerNotFound):
			continue
		case err != nil:
			return DaySweepResult{}, fmt.Errorf("failed to penalize %s: %w", m.UserID, err)
		}

		oldTier, err := ratingdomain.ClassifyInfo(before.RatingPoints, before.LeaderboardPosition)
		if err != nil {
			return DaySweepResult{}, err
		}
		penalized = append(penalized, PenaltyChange{
			UserID:          after.UserID,
			DisplayName:     after.DisplayName,
			OldRatingPoints: before.RatingPoints,
			NewRatingPoints: after.RatingPoints,
			OldTier:         oldTier,
		})
	}

	positions, err := s.recomputeTx(ctx, db)
	if err != nil {
		return DaySweepResult{}, err
	}
	for i := range penalized {
		p := &penalized[i]
		p.NewTier, err = ratingdomain.ClassifyInfo(p.NewRatingPoints, positions[p.UserID])
		if err != nil {
			return DaySweepResult{}, err
		}
	}

	board, err := s.leaderboardTx(ctx, db)
	if err != nil {
		return DaySweepResult{}, err
	}

	return success(&DaySweep{
		Date:        day,
		Missed:      len(missed),
		Penalized:   penalized,
		Leaderboard: *board.Success,
	}), nil
}
