package ratingdb

import (
	"time"

	ratingdomain "github.com/Black-And-White-Club/runrank-bot/app/modules/rating/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Runner is a signed-up participant and their persisted rating state.
type Runner struct {
	bun.BaseModel       `bun:"table:runners,alias:r"`
	ID                  int64                 `bun:"id,pk,autoincrement" json:"id"`
	UserID              ratingdomain.RunnerID `bun:"user_id,unique,notnull" json:"user_id"`
	DisplayName         string                `bun:"display_name,notnull,default:''" json:"display_name"`
	LongestStreak       int                   `bun:"longest_streak,notnull,default:0" json:"longest_streak"`
	LastLoggedDate      *time.Time            `bun:"last_logged_date,type:date,nullzero" json:"last_logged_date,omitempty"`
	RatingPoints        int                   `bun:"rating_points,notnull,default:0" json:"rating_points"`
	LeaderboardPosition int                   `bun:"leaderboard_position,notnull,default:0" json:"leaderboard_position"`
	RunsLogged          int                   `bun:"runs_logged,notnull,default:0" json:"runs_logged"`
	TotalDistance       float64               `bun:"total_distance,notnull,default:0" json:"total_distance"`
	Version             int64                 `bun:"version,notnull,default:1" json:"version"`
	CreatedAt           time.Time             `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt           time.Time             `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}

// Snapshot returns the fields the rating calculators read.
func (r *Runner) Snapshot() ratingdomain.RunnerSnapshot {
	return ratingdomain.RunnerSnapshot{
		ID:                  r.UserID,
		RatingPoints:        r.RatingPoints,
		LongestStreak:       r.LongestStreak,
		LeaderboardPosition: r.LeaderboardPosition,
	}
}

// LoggedOn reports whether the runner's last logged run falls on the given civil date.
func (r *Runner) LoggedOn(date time.Time) bool {
	if r.LastLoggedDate == nil {
		return false
	}
	y1, m1, d1 := r.LastLoggedDate.Date()
	y2, m2, d2 := date.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// LoggedOnOrAfter reports whether the runner's last logged run falls on or after
// the given civil date. Only the last date is stored, so a later run also counts.
func (r *Runner) LoggedOnOrAfter(date time.Time) bool {
	if r.LastLoggedDate == nil {
		return false
	}
	return !civilDay(*r.LastLoggedDate).Before(civilDay(date))
}

func civilDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// RunnerUpdateFields represents the updateable fields of a runner.
// Nil fields are left untouched.
type RunnerUpdateFields struct {
	DisplayName    *string
	LongestStreak  *int
	LastLoggedDate *time.Time
	RatingPoints   *int
	RunsLogged     *int
	TotalDistance  *float64
}

// IsEmpty reports whether any fields are set for update.
func (u *RunnerUpdateFields) IsEmpty() bool {
	if u == nil {
		return true
	}
	return u.DisplayName == nil &&
		u.LongestStreak == nil &&
		u.LastLoggedDate == nil &&
		u.RatingPoints == nil &&
		u.RunsLogged == nil &&
		u.TotalDistance == nil
}

// Season is the archived result of a finished season.
type Season struct {
	bun.BaseModel `bun:"table:rating_seasons,alias:s"`
	ID            uuid.UUID        `bun:"id,pk,type:uuid" json:"id"`
	EndedAt       time.Time        `bun:"ended_at,notnull" json:"ended_at"`
	Standings     []SeasonStanding `bun:"standings,type:jsonb,notnull" json:"standings"`
	CreatedAt     time.Time        `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}

// SeasonStanding is one runner's final placing in a season.
type SeasonStanding struct {
	UserID       ratingdomain.RunnerID `json:"user_id"`
	DisplayName  string                `json:"display_name"`
	RatingPoints int                   `json:"rating_points"`
	Position     int                   `json:"position"`
	Tier         string                `json:"tier"`
}

// SweptDay records a civil date the end-of-day sweep has already penalized.
type SweptDay struct {
	bun.BaseModel `bun:"table:rating_day_sweeps,alias:ds"`
	Date          time.Time `bun:"date,pk,type:date" json:"date"`
	SweptAt       time.Time `bun:"swept_at,notnull,default:current_timestamp" json:"swept_at"`
}
