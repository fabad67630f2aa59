package ratingservice

import (
	"context"
	"time"

	ratingdomain "github.com/Black-And-White-Club/runrank-bot/app/modules/rating/domain"
	ratingdb "github.com/Black-And-White-Club/runrank-bot/app/modules/rating/infrastructure/repositories"
	"github.com/Black-And-White-Club/runrank-bot/internal/results"
)

// Result aliases keep the generic signatures readable.
type (
	ProfileResult     = results.OperationResult[*RunnerProfile, error]
	RunLogResult      = results.OperationResult[*RunLog, error]
	LeaderboardResult = results.OperationResult[[]LeaderboardEntry, error]
	DaySweepResult    = results.OperationResult[*DaySweep, error]
	SeasonResult      = results.OperationResult[*SeasonSummary, error]
	DeleteResult      = results.OperationResult[ratingdomain.RunnerID, error]
)

// Service defines the rating operations exposed to handlers, jobs and the HTTP API.
//
// Domain failures (unknown runner, duplicate sign-up, second log on the same day,
// invalid input) come back as failure results with a nil error. A non-nil error
// means an infrastructure problem the caller may retry.
type Service interface {
	SignUp(ctx context.Context, userID ratingdomain.RunnerID, displayName string) (ProfileResult, error)
	LogRun(ctx context.Context, userID ratingdomain.RunnerID, distance float64) (RunLogResult, error)
	// ForceLogRun logs a run on the date described by dateExpr ("yesterday", "2026-03-04"),
	// or today when dateExpr is empty. It ignores the once-per-day rule.
	ForceLogRun(ctx context.Context, userID ratingdomain.RunnerID, distance float64, dateExpr string) (RunLogResult, error)
	GetProfile(ctx context.Context, userID ratingdomain.RunnerID) (ProfileResult, error)
	GetLeaderboard(ctx context.Context, limit int) (LeaderboardResult, error)
	ListTiers() []ratingdomain.TierInfo

	ApplyDailyPenalties(ctx context.Context, date time.Time) (DaySweepResult, error)
	RecomputeLeaderboard(ctx context.Context) (LeaderboardResult, error)
	AdjustRating(ctx context.Context, userID ratingdomain.RunnerID, ratingPoints int) (ProfileResult, error)
	SetStreak(ctx context.Context, userID ratingdomain.RunnerID, streak int) (ProfileResult, error)
	DeleteRunner(ctx context.Context, userID ratingdomain.RunnerID) (DeleteResult, error)
	ResetSeason(ctx context.Context) (SeasonResult, error)
	ListSeasons(ctx context.Context, limit int) ([]*ratingdb.Season, error)

	// Today is the current civil date in the configured timezone.
	Today() time.Time
	Location() *time.Location
}
