package ratingservice

import (
	"context"
	"math"
	"time"

	ratingdomain "github.com/Black-And-White-Club/runrank-bot/app/modules/rating/domain"
	ratingdb "github.com/Black-And-White-Club/runrank-bot/app/modules/rating/infrastructure/repositories"
	"github.com/Black-And-White-Club/runrank-bot/internal/observability/attr"
	"github.com/uptrace/bun"
)

func validDistance(d float64) bool {
	return d > 0 && !math.IsNaN(d) && !math.IsInf(d, 0)
}

// LogRun records today's run for a runner and rewards it.
func (s *RatingService) LogRun(ctx context.Context, userID ratingdomain.RunnerID, distance float64) (RunLogResult, error) {
	return withTelemetry(s, ctx, "LogRun", string(userID), func(ctx context.Context) (RunLogResult, error) {
		if !validDistance(distance) {
			return failure[*RunLog](ErrInvalidDistance), nil
		}
		return s.logRun(ctx, userID, distance, s.Today(), true)
	})
}

// ForceLogRun records a run on an arbitrary date, bypassing the once-per-day rule.
func (s *RatingService) ForceLogRun(ctx context.Context, userID ratingdomain.RunnerID, distance float64, dateExpr string) (RunLogResult, error) {
	return withTelemetry(s, ctx, "ForceLogRun", string(userID), func(ctx context.Context) (RunLogResult, error) {
		if !validDistance(distance) {
			return failure[*RunLog](ErrInvalidDistance), nil
		}
		date, err := s.parseDate(dateExpr)
		if err != nil {
			return failure[*RunLog](err), nil
		}
		return s.logRun(ctx, userID, distance, date, false)
	})
}

func (s *RatingService) logRun(ctx context.Context, userID ratingdomain.RunnerID, distance float64, date time.Time, oncePerDay bool) (RunLogResult, error) {
	unlock := s.runnerLocks.Lock(userID)
	defer unlock()

	s.boardMu.RLock()
	result, err := runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (RunLogResult, error) {
		return s.logRunLogic(ctx, db, userID, distance, date, oncePerDay)
	})
	s.boardMu.RUnlock()

	if err != nil || result.IsFailure() {
		return result, err
	}

	run := *result.Success
	run.NewPosition = s.recomputeAfterUpdate(ctx, userID, run.NewPosition)
	newTier, err := ratingdomain.ClassifyInfo(run.Outcome.NewRatingPoints, run.NewPosition)
	if err != nil {
		return RunLogResult{}, err
	}
	run.NewTier = newTier

	s.metrics.RecordRatingDelta(ctx, "run", run.Outcome.Delta)
	s.recordTierChange(ctx, run.OldTier, run.NewTier)

	s.logger.InfoContext(ctx, "Run logged",
		attr.ExtractCorrelationID(ctx),
		attr.RunnerID(userID),
		attr.Float64("distance", distance),
		attr.Int("delta", run.Outcome.Delta),
		attr.Int("rating_points", run.Outcome.NewRatingPoints),
		attr.Int("position", run.NewPosition),
	)

	return success(run), nil
}

func (s *RatingService) logRunLogic(ctx context.Context, db bun.IDB, userID ratingdomain.RunnerID, distance float64, date time.Time, oncePerDay bool) (RunLogResult, error) {
	var outcome ratingdomain.RunOutcome

	before, after, err := s.applyUpdate(ctx, db, userID, func(r *ratingdb.Runner) (*ratingdb.RunnerUpdateFields, error) {
		if oncePerDay && r.LoggedOn(date) {
			return nil, ErrAlreadyLoggedToday
		}

		var err error
		outcome, err = ratingdomain.ScoreRun(r.Snapshot(), distance)
		if err != nil {
			return nil, err
		}

		streak := r.LongestStreak + 1
		runs := r.RunsLogged + 1
		total := r.TotalDistance + distance
		fields := &ratingdb.RunnerUpdateFields{
			LongestStreak: &streak,
			RatingPoints:  &outcome.NewRatingPoints,
			RunsLogged:    &runs,
			TotalDistance: &total,
		}
		// A back-dated run never moves the last logged date backwards.
		if r.LastLoggedDate == nil || date.After(*r.LastLoggedDate) {
			d := date
			fields.LastLoggedDate = &d
		}
		return fields, nil
	})
	if err != nil {
		if isDomainFailure(err) {
			return failure[*RunLog](err), nil
		}
		return RunLogResult{}, err
	}

	oldTier, err := ratingdomain.ClassifyInfo(before.RatingPoints, before.LeaderboardPosition)
	if err != nil {
		return RunLogResult{}, err
	}

	return success(&RunLog{
		UserID:          after.UserID,
		DisplayName:     after.DisplayName,
		Distance:        distance,
		LoggedOn:        date,
		Streak:          after.LongestStreak,
		Outcome:         outcome,
		OldRatingPoints: before.RatingPoints,
		OldTier:         oldTier,
		NewTier:         oldTier,
		NewPosition:     after.LeaderboardPosition,
	}), nil
}
