package ratingservice

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	ratingdomain "github.com/Black-And-White-Club/runrank-bot/app/modules/rating/domain"
	ratingdb "github.com/Black-And-White-Club/runrank-bot/app/modules/rating/infrastructure/repositories"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Rating Repo
// ------------------------

// FakeRatingRepository is a programmable stub for ratingdb.Repository.
// Without a Func override each method works against an in-memory table,
// including the optimistic version check.
type FakeRatingRepository struct {
	mu      sync.Mutex
	trace   []string
	runners map[ratingdomain.RunnerID]*ratingdb.Runner
	seasons []*ratingdb.Season
	swept   map[time.Time]bool

	GetRunnerFunc                  func(ctx context.Context, db bun.IDB, userID ratingdomain.RunnerID) (*ratingdb.Runner, error)
	GetAllRunnersFunc              func(ctx context.Context, db bun.IDB) ([]*ratingdb.Runner, error)
	GetRunnersNotLoggedOnFunc      func(ctx context.Context, db bun.IDB, date time.Time) ([]*ratingdb.Runner, error)
	CreateRunnerFunc               func(ctx context.Context, db bun.IDB, runner *ratingdb.Runner) error
	UpdateRunnerFunc               func(ctx context.Context, db bun.IDB, userID ratingdomain.RunnerID, expectedVersion int64, fields *ratingdb.RunnerUpdateFields) (*ratingdb.Runner, error)
	UpdateLeaderboardPositionsFunc func(ctx context.Context, db bun.IDB, positions map[ratingdomain.RunnerID]int) error
	SaveSeasonFunc                 func(ctx context.Context, db bun.IDB, season *ratingdb.Season) error
	MarkDaySweptFunc               func(ctx context.Context, db bun.IDB, date time.Time) (bool, error)
}

func NewFakeRatingRepository(runners ...*ratingdb.Runner) *FakeRatingRepository {
	f := &FakeRatingRepository{
		trace:   []string{},
		runners: make(map[ratingdomain.RunnerID]*ratingdb.Runner),
		swept:   make(map[time.Time]bool),
	}
	for _, r := range runners {
		if r.Version == 0 {
			r.Version = 1
		}
		f.runners[r.UserID] = r
	}
	return f
}

func (f *FakeRatingRepository) record(step string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, step)
}

// Trace returns the sequence of method calls made to the fake.
func (f *FakeRatingRepository) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

// Runner returns a copy of the stored runner, or nil.
func (f *FakeRatingRepository) Runner(id ratingdomain.RunnerID) *ratingdb.Runner {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.runners[id]
	if !ok {
		return nil
	}
	c := *r
	return &c
}

func (f *FakeRatingRepository) sorted(less func(a, b *ratingdb.Runner) int) []*ratingdb.Runner {
	out := make([]*ratingdb.Runner, 0, len(f.runners))
	for _, r := range f.runners {
		c := *r
		out = append(out, &c)
	}
	slices.SortFunc(out, less)
	return out
}

func byRatingPoints(a, b *ratingdb.Runner) int {
	if a.RatingPoints != b.RatingPoints {
		return b.RatingPoints - a.RatingPoints
	}
	return strings.Compare(string(a.UserID), string(b.UserID))
}

// --- Repository Interface Implementation ---

func (f *FakeRatingRepository) GetRunner(ctx context.Context, db bun.IDB, userID ratingdomain.RunnerID) (*ratingdb.Runner, error) {
	f.record("GetRunner")
	if f.GetRunnerFunc != nil {
		return f.GetRunnerFunc(ctx, db, userID)
	}
	if r := f.Runner(userID); r != nil {
		return r, nil
	}
	return nil, ratingdb.ErrNotFound
}

func (f *FakeRatingRepository) GetAllRunnersOrderedByRatingPoints(ctx context.Context, db bun.IDB) ([]*ratingdb.Runner, error) {
	f.record("GetAllRunnersOrderedByRatingPoints")
	if f.GetAllRunnersFunc != nil {
		return f.GetAllRunnersFunc(ctx, db)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sorted(byRatingPoints), nil
}

func (f *FakeRatingRepository) GetLeaderboard(ctx context.Context, db bun.IDB, limit int) ([]*ratingdb.Runner, error) {
	f.record("GetLeaderboard")
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.sorted(func(a, b *ratingdb.Runner) int {
		if a.LeaderboardPosition != b.LeaderboardPosition {
			return a.LeaderboardPosition - b.LeaderboardPosition
		}
		return strings.Compare(string(a.UserID), string(b.UserID))
	})
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (f *FakeRatingRepository) GetRunnersNotLoggedOn(ctx context.Context, db bun.IDB, date time.Time) ([]*ratingdb.Runner, error) {
	f.record("GetRunnersNotLoggedOn")
	if f.GetRunnersNotLoggedOnFunc != nil {
		return f.GetRunnersNotLoggedOnFunc(ctx, db, date)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*ratingdb.Runner
	for _, r := range f.sorted(byRatingPoints) {
		if !r.LoggedOnOrAfter(date) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *FakeRatingRepository) GetLastPosition(ctx context.Context, db bun.IDB) (int, error) {
	f.record("GetLastPosition")
	f.mu.Lock()
	defer f.mu.Unlock()
	last := 0
	for _, r := range f.runners {
		last = max(last, r.LeaderboardPosition)
	}
	return last, nil
}

func (f *FakeRatingRepository) CountRunners(ctx context.Context, db bun.IDB) (int, error) {
	f.record("CountRunners")
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.runners), nil
}

func (f *FakeRatingRepository) CreateRunner(ctx context.Context, db bun.IDB, runner *ratingdb.Runner) error {
	f.record("CreateRunner")
	if f.CreateRunnerFunc != nil {
		return f.CreateRunnerFunc(ctx, db, runner)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.runners[runner.UserID]; ok {
		return ratingdb.ErrAlreadyExists
	}
	runner.ID = int64(len(f.runners) + 1)
	runner.Version = 1
	c := *runner
	f.runners[runner.UserID] = &c
	return nil
}

func (f *FakeRatingRepository) UpdateRunner(ctx context.Context, db bun.IDB, userID ratingdomain.RunnerID, expectedVersion int64, fields *ratingdb.RunnerUpdateFields) (*ratingdb.Runner, error) {
	f.record("UpdateRunner")
	if f.UpdateRunnerFunc != nil {
		return f.UpdateRunnerFunc(ctx, db, userID, expectedVersion, fields)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.runners[userID]
	if !ok || r.Version != expectedVersion {
		return nil, ratingdb.ErrNoRowsAffected
	}
	if fields.DisplayName != nil {
		r.DisplayName = *fields.DisplayName
	}
	if fields.LongestStreak != nil {
		r.LongestStreak = *fields.LongestStreak
	}
	if fields.LastLoggedDate != nil {
		d := *fields.LastLoggedDate
		r.LastLoggedDate = &d
	}
	if fields.RatingPoints != nil {
		r.RatingPoints = *fields.RatingPoints
	}
	if fields.RunsLogged != nil {
		r.RunsLogged = *fields.RunsLogged
	}
	if fields.TotalDistance != nil {
		r.TotalDistance = *fields.TotalDistance
	}
	r.Version++
	c := *r
	return &c, nil
}

func (f *FakeRatingRepository) UpdateLeaderboardPositions(ctx context.Context, db bun.IDB, positions map[ratingdomain.RunnerID]int) error {
	f.record("UpdateLeaderboardPositions")
	if f.UpdateLeaderboardPositionsFunc != nil {
		return f.UpdateLeaderboardPositionsFunc(ctx, db, positions)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, p := range positions {
		if r, ok := f.runners[id]; ok {
			r.LeaderboardPosition = p
		}
	}
	return nil
}

func (f *FakeRatingRepository) ResetAllRatingPoints(ctx context.Context, db bun.IDB) (int, error) {
	f.record("ResetAllRatingPoints")
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.runners {
		r.RatingPoints = 0
		r.Version++
	}
	return len(f.runners), nil
}

func (f *FakeRatingRepository) DeleteRunner(ctx context.Context, db bun.IDB, userID ratingdomain.RunnerID) error {
	f.record("DeleteRunner")
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.runners[userID]; !ok {
		return ratingdb.ErrNotFound
	}
	delete(f.runners, userID)
	return nil
}

func (f *FakeRatingRepository) SaveSeason(ctx context.Context, db bun.IDB, season *ratingdb.Season) error {
	f.record("SaveSeason")
	if f.SaveSeasonFunc != nil {
		return f.SaveSeasonFunc(ctx, db, season)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seasons = append(f.seasons, season)
	return nil
}

func (f *FakeRatingRepository) ListSeasons(ctx context.Context, db bun.IDB, limit int) ([]*ratingdb.Season, error) {
	f.record("ListSeasons")
	f.mu.Lock()
	defer f.mu.Unlock()
	out := slices.Clone(f.seasons)
	slices.Reverse(out)
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (f *FakeRatingRepository) MarkDaySwept(ctx context.Context, db bun.IDB, date time.Time) (bool, error) {
	f.record("MarkDaySwept")
	if f.MarkDaySweptFunc != nil {
		return f.MarkDaySweptFunc(ctx, db, date)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	key := date.UTC()
	if f.swept[key] {
		return false, nil
	}
	f.swept[key] = true
	return true, nil
}

// Ensure the fake actually satisfies the interface
var _ ratingdb.Repository = (*FakeRatingRepository)(nil)

// ------------------------
// Fake Clock
// ------------------------

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }
