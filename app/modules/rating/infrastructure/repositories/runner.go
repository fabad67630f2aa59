package ratingdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	ratingdomain "github.com/Black-And-White-Club/runrank-bot/app/modules/rating/domain"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

const uniqueViolation = "23505"

// Impl is the bun-backed Repository.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a runner repository on the given handle.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

func (r *Impl) conn(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

// GetRunner retrieves a runner by their external user id.
func (r *Impl) GetRunner(ctx context.Context, db bun.IDB, userID ratingdomain.RunnerID) (*Runner, error) {
	runner := new(Runner)
	err := r.conn(db).NewSelect().
		Model(runner).
		Where("r.user_id = ?", userID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ratingdb.GetRunner: %w", err)
	}
	return runner, nil
}

// GetAllRunnersOrderedByRatingPoints returns every runner, highest RR first, ties by user id.
func (r *Impl) GetAllRunnersOrderedByRatingPoints(ctx context.Context, db bun.IDB) ([]*Runner, error) {
	var runners []*Runner
	err := r.conn(db).NewSelect().
		Model(&runners).
		OrderExpr("r.rating_points DESC").
		OrderExpr("r.user_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("ratingdb.GetAllRunnersOrderedByRatingPoints: %w", err)
	}
	return runners, nil
}

// GetLeaderboard returns runners by leaderboard position. Unranked runners come last.
// A non-positive limit returns everyone.
func (r *Impl) GetLeaderboard(ctx context.Context, db bun.IDB, limit int) ([]*Runner, error) {
	var runners []*Runner
	q := r.conn(db).NewSelect().
		Model(&runners).
		OrderExpr("CASE WHEN r.leaderboard_position = 0 THEN 1 ELSE 0 END").
		OrderExpr("r.leaderboard_position ASC").
		OrderExpr("r.user_id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("ratingdb.GetLeaderboard: %w", err)
	}
	return runners, nil
}

// GetRunnersNotLoggedOn returns runners whose last logged date is before the given
// civil date, including runners who never logged.
func (r *Impl) GetRunnersNotLoggedOn(ctx context.Context, db bun.IDB, date time.Time) ([]*Runner, error) {
	var runners []*Runner
	err := r.conn(db).NewSelect().
		Model(&runners).
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("r.last_logged_date IS NULL").
				WhereOr("r.last_logged_date < ?::date", date.Format(time.DateOnly))
		}).
		OrderExpr("r.user_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("ratingdb.GetRunnersNotLoggedOn: %w", err)
	}
	return runners, nil
}

// GetLastPosition returns the highest assigned leaderboard position, 0 when empty.
func (r *Impl) GetLastPosition(ctx context.Context, db bun.IDB) (int, error) {
	var last int
	err := r.conn(db).NewSelect().
		Model((*Runner)(nil)).
		ColumnExpr("COALESCE(MAX(r.leaderboard_position), 0)").
		Scan(ctx, &last)
	if err != nil {
		return 0, fmt.Errorf("ratingdb.GetLastPosition: %w", err)
	}
	return last, nil
}

// CountRunners returns the number of signed-up runners.
func (r *Impl) CountRunners(ctx context.Context, db bun.IDB) (int, error) {
	n, err := r.conn(db).NewSelect().Model((*Runner)(nil)).Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("ratingdb.CountRunners: %w", err)
	}
	return n, nil
}

// CreateRunner inserts a runner and fills the generated columns.
func (r *Impl) CreateRunner(ctx context.Context, db bun.IDB, runner *Runner) error {
	_, err := r.conn(db).NewInsert().
		Model(runner).
		ExcludeColumn("id").
		Returning("*").
		Exec(ctx)
	if err != nil {
		var pgErr pgdriver.Error
		if errors.As(err, &pgErr) && pgErr.Field('C') == uniqueViolation {
			return ErrAlreadyExists
		}
		return fmt.Errorf("ratingdb.CreateRunner: %w", err)
	}
	return nil
}

// UpdateRunner applies a partial update guarded by the optimistic version column.
func (r *Impl) UpdateRunner(ctx context.Context, db bun.IDB, userID ratingdomain.RunnerID, expectedVersion int64, fields *RunnerUpdateFields) (*Runner, error) {
	if fields.IsEmpty() {
		return nil, fmt.Errorf("ratingdb.UpdateRunner: no fields to update")
	}

	updated := new(Runner)
	q := r.conn(db).NewUpdate().
		Model(updated).
		Set("version = r.version + 1").
		Set("updated_at = ?", time.Now().UTC())

	if fields.DisplayName != nil {
		q = q.Set("display_name = ?", *fields.DisplayName)
	}
	if fields.LongestStreak != nil {
		q = q.Set("longest_streak = ?", *fields.LongestStreak)
	}
	if fields.LastLoggedDate != nil {
		q = q.Set("last_logged_date = ?::date", fields.LastLoggedDate.Format(time.DateOnly))
	}
	if fields.RatingPoints != nil {
		q = q.Set("rating_points = ?", *fields.RatingPoints)
	}
	if fields.RunsLogged != nil {
		q = q.Set("runs_logged = ?", *fields.RunsLogged)
	}
	if fields.TotalDistance != nil {
		q = q.Set("total_distance = ?", *fields.TotalDistance)
	}

	err := q.
		Where("r.user_id = ?", userID).
		Where("r.version = ?", expectedVersion).
		Returning("*").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoRowsAffected
		}
		return nil, fmt.Errorf("ratingdb.UpdateRunner: %w", err)
	}
	return updated, nil
}

// UpdateLeaderboardPositions rewrites the position of every runner in the map in one statement.
func (r *Impl) UpdateLeaderboardPositions(ctx context.Context, db bun.IDB, positions map[ratingdomain.RunnerID]int) error {
	if len(positions) == 0 {
		return nil
	}

	ids := make([]string, 0, len(positions))
	pos := make([]int64, 0, len(positions))
	for id, p := range positions {
		ids = append(ids, string(id))
		pos = append(pos, int64(p))
	}

	_, err := r.conn(db).NewRaw(`
		UPDATE runners AS r
		SET leaderboard_position = d.position
		FROM unnest(?::text[], ?::bigint[]) AS d(user_id, position)
		WHERE r.user_id = d.user_id
	`, pgdialect.Array(ids), pgdialect.Array(pos)).Exec(ctx)
	if err != nil {
		return fmt.Errorf("ratingdb.UpdateLeaderboardPositions: %w", err)
	}
	return nil
}

// ResetAllRatingPoints sets every runner's RR to zero and returns how many rows changed.
func (r *Impl) ResetAllRatingPoints(ctx context.Context, db bun.IDB) (int, error) {
	res, err := r.conn(db).NewRaw(`
		UPDATE runners
		SET rating_points = 0, version = version + 1, updated_at = NOW()
	`).Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("ratingdb.ResetAllRatingPoints: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("ratingdb.ResetAllRatingPoints: rows affected: %w", err)
	}
	return int(n), nil
}

// DeleteRunner removes a runner.
func (r *Impl) DeleteRunner(ctx context.Context, db bun.IDB, userID ratingdomain.RunnerID) error {
	res, err := r.conn(db).NewDelete().
		Model((*Runner)(nil)).
		Where("user_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("ratingdb.DeleteRunner: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("ratingdb.DeleteRunner: rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// SaveSeason archives a finished season.
func (r *Impl) SaveSeason(ctx context.Context, db bun.IDB, season *Season) error {
	if _, err := r.conn(db).NewInsert().Model(season).Exec(ctx); err != nil {
		return fmt.Errorf("ratingdb.SaveSeason: %w", err)
	}
	return nil
}

// ListSeasons returns archived seasons, most recent first.
func (r *Impl) ListSeasons(ctx context.Context, db bun.IDB, limit int) ([]*Season, error) {
	var seasons []*Season
	q := r.conn(db).NewSelect().
		Model(&seasons).
		OrderExpr("s.ended_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("ratingdb.ListSeasons: %w", err)
	}
	return seasons, nil
}

// MarkDaySwept records date as swept. It reports false when the date was already recorded.
func (r *Impl) MarkDaySwept(ctx context.Context, db bun.IDB, date time.Time) (bool, error) {
	res, err := r.conn(db).NewInsert().
		Model(&SweptDay{Date: date}).
		ExcludeColumn("swept_at").
		On("CONFLICT (date) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("ratingdb.MarkDaySwept: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("ratingdb.MarkDaySwept: rows affected: %w", err)
	}
	return n == 1, nil
}
