package ratinghandlers

import (
	"context"
	"time"

	ratingservice "github.com/Black-And-White-Club/runrank-bot/app/modules/rating/application"
	ratingdomain "github.com/Black-And-White-Club/runrank-bot/app/modules/rating/domain"
	ratingdb "github.com/Black-And-White-Club/runrank-bot/app/modules/rating/infrastructure/repositories"
)

// ------------------------
// Fake Rating Service
// ------------------------

// FakeRatingService provides a programmable stub for the ratingservice.Service interface.
type FakeRatingService struct {
	trace []string

	SignUpFunc               func(ctx context.Context, userID ratingdomain.RunnerID, displayName string) (ratingservice.ProfileResult, error)
	LogRunFunc               func(ctx context.Context, userID ratingdomain.RunnerID, distance float64) (ratingservice.RunLogResult, error)
	ForceLogRunFunc          func(ctx context.Context, userID ratingdomain.RunnerID, distance float64, dateExpr string) (ratingservice.RunLogResult, error)
	GetProfileFunc           func(ctx context.Context, userID ratingdomain.RunnerID) (ratingservice.ProfileResult, error)
	GetLeaderboardFunc       func(ctx context.Context, limit int) (ratingservice.LeaderboardResult, error)
	ApplyDailyPenaltiesFunc  func(ctx context.Context, date time.Time) (ratingservice.DaySweepResult, error)
	RecomputeLeaderboardFunc func(ctx context.Context) (ratingservice.LeaderboardResult, error)
	AdjustRatingFunc         func(ctx context.Context, userID ratingdomain.RunnerID, ratingPoints int) (ratingservice.ProfileResult, error)
	SetStreakFunc            func(ctx context.Context, userID ratingdomain.RunnerID, streak int) (ratingservice.ProfileResult, error)
	DeleteRunnerFunc         func(ctx context.Context, userID ratingdomain.RunnerID) (ratingservice.DeleteResult, error)
	ResetSeasonFunc          func(ctx context.Context) (ratingservice.SeasonResult, error)
	ListSeasonsFunc          func(ctx context.Context, limit int) ([]*ratingdb.Season, error)

	TodayValue time.Time
	Loc        *time.Location
}

// NewFakeRatingService initializes a new FakeRatingService.
func NewFakeRatingService() *FakeRatingService {
	return &FakeRatingService{
		trace:      []string{},
		TodayValue: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		Loc:        time.UTC,
	}
}

func (f *FakeRatingService) record(step string) {
	f.trace = append(f.trace, step)
}

// Trace returns the sequence of service methods called.
func (f *FakeRatingService) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

// --- Service Interface Implementation ---

func (f *FakeRatingService) SignUp(ctx context.Context, userID ratingdomain.RunnerID, displayName string) (ratingservice.ProfileResult, error) {
	f.record("SignUp")
	if f.SignUpFunc != nil {
		return f.SignUpFunc(ctx, userID, displayName)
	}
	return ratingservice.ProfileResult{}, nil
}

func (f *FakeRatingService) LogRun(ctx context.Context, userID ratingdomain.RunnerID, distance float64) (ratingservice.RunLogResult, error) {
	f.record("LogRun")
	if f.LogRunFunc != nil {
		return f.LogRunFunc(ctx, userID, distance)
	}
	return ratingservice.RunLogResult{}, nil
}

func (f *FakeRatingService) ForceLogRun(ctx context.Context, userID ratingdomain.RunnerID, distance float64, dateExpr string) (ratingservice.RunLogResult, error) {
	f.record("ForceLogRun")
	if f.ForceLogRunFunc != nil {
		return f.ForceLogRunFunc(ctx, userID, distance, dateExpr)
	}
	return ratingservice.RunLogResult{}, nil
}

func (f *FakeRatingService) GetProfile(ctx context.Context, userID ratingdomain.RunnerID) (ratingservice.ProfileResult, error) {
	f.record("GetProfile")
	if f.GetProfileFunc != nil {
		return f.GetProfileFunc(ctx, userID)
	}
	return ratingservice.ProfileResult{}, nil
}

func (f *FakeRatingService) GetLeaderboard(ctx context.Context, limit int) (ratingservice.LeaderboardResult, error) {
	f.record("GetLeaderboard")
	if f.GetLeaderboardFunc != nil {
		return f.GetLeaderboardFunc(ctx, limit)
	}
	return ratingservice.LeaderboardResult{}, nil
}

func (f *FakeRatingService) ListTiers() []ratingdomain.TierInfo {
	f.record("ListTiers")
	return ratingdomain.Tiers()
}

func (f *FakeRatingService) ApplyDailyPenalties(ctx context.Context, date time.Time) (ratingservice.DaySweepResult, error) {
	f.record("ApplyDailyPenalties")
	if f.ApplyDailyPenaltiesFunc != nil {
		return f.ApplyDailyPenaltiesFunc(ctx, date)
	}
	return ratingservice.DaySweepResult{}, nil
}

func (f *FakeRatingService) RecomputeLeaderboard(ctx context.Context) (ratingservice.LeaderboardResult, error) {
	f.record("RecomputeLeaderboard")
	if f.RecomputeLeaderboardFunc != nil {
		return f.RecomputeLeaderboardFunc(ctx)
	}
	return ratingservice.LeaderboardResult{}, nil
}

func (f *FakeRatingService) AdjustRating(ctx context.Context, userID ratingdomain.RunnerID, ratingPoints int) (ratingservice.ProfileResult, error) {
	f.record("AdjustRating")
	if f.AdjustRatingFunc != nil {
		return f.AdjustRatingFunc(ctx, userID, ratingPoints)
	}
	return ratingservice.ProfileResult{}, nil
}

func (f *FakeRatingService) SetStreak(ctx context.Context, userID ratingdomain.RunnerID, streak int) (ratingservice.ProfileResult, error) {
	f.record("SetStreak")
	if f.SetStreakFunc != nil {
		return f.SetStreakFunc(ctx, userID, streak)
	}
	return ratingservice.ProfileResult{}, nil
}

func (f *FakeRatingService) DeleteRunner(ctx context.Context, userID ratingdomain.RunnerID) (ratingservice.DeleteResult, error) {
	f.record("DeleteRunner")
	if f.DeleteRunnerFunc != nil {
		return f.DeleteRunnerFunc(ctx, userID)
	}
	return ratingservice.DeleteResult{}, nil
}

func (f *FakeRatingService) ResetSeason(ctx context.Context) (ratingservice.SeasonResult, error) {
	f.record("ResetSeason")
	if f.ResetSeasonFunc != nil {
		return f.ResetSeasonFunc(ctx)
	}
	return ratingservice.SeasonResult{}, nil
}

func (f *FakeRatingService) ListSeasons(ctx context.Context, limit int) ([]*ratingdb.Season, error) {
	f.record("ListSeasons")
	if f.ListSeasonsFunc != nil {
		return f.ListSeasonsFunc(ctx, limit)
	}
	return nil, nil
}

func (f *FakeRatingService) Today() time.Time {
	return f.TodayValue
}

func (f *FakeRatingService) Location() *time.Location {
	return f.Loc
}

// Ensure the fake satisfies the Service interface
var _ ratingservice.Service = (*FakeRatingService)(nil)
