package ratingdb

import (
	"context"
	"time"

	ratingdomain "github.com/Black-And-White-Club/runrank-bot/app/modules/rating/domain"
	"github.com/uptrace/bun"
)

// Repository defines the persistence contract for runners.
// Every method takes the bun.IDB to run against so callers can pass a transaction;
// a nil db falls back to the repository's own handle.
//
// Error semantics:
//   - ErrNotFound: requested runner does not exist (Get* methods, DeleteRunner)
//   - ErrNoRowsAffected: UPDATE matched no rows (unknown runner or stale version)
//   - ErrAlreadyExists: CreateRunner hit the unique user id
//   - other errors: infrastructure failures
type Repository interface {
	// Reads
	GetRunner(ctx context.Context, db bun.IDB, userID ratingdomain.RunnerID) (*Runner, error)
	GetAllRunnersOrderedByRatingPoints(ctx context.Context, db bun.IDB) ([]*Runner, error)
	GetLeaderboard(ctx context.Context, db bun.IDB, limit int) ([]*Runner, error)
	// GetRunnersNotLoggedOn returns runners with no run on or after date.
	GetRunnersNotLoggedOn(ctx context.Context, db bun.IDB, date time.Time) ([]*Runner, error)
	GetLastPosition(ctx context.Context, db bun.IDB) (int, error)
	CountRunners(ctx context.Context, db bun.IDB) (int, error)

	// Writes
	CreateRunner(ctx context.Context, db bun.IDB, runner *Runner) error
	// UpdateRunner applies fields only when the stored version equals expectedVersion,
	// bumps the version and returns the stored row.
	UpdateRunner(ctx context.Context, db bun.IDB, userID ratingdomain.RunnerID, expectedVersion int64, fields *RunnerUpdateFields) (*Runner, error)
	UpdateLeaderboardPositions(ctx context.Context, db bun.IDB, positions map[ratingdomain.RunnerID]int) error
	ResetAllRatingPoints(ctx context.Context, db bun.IDB) (int, error)
	DeleteRunner(ctx context.Context, db bun.IDB, userID ratingdomain.RunnerID) error

	// Seasons
	SaveSeason(ctx context.Context, db bun.IDB, season *Season) error
	ListSeasons(ctx context.Context, db bun.IDB, limit int) ([]*Season, error)

	// Day sweeps
	MarkDaySwept(ctx context.Context, db bun.IDB, date time.Time) (bool, error)
}
