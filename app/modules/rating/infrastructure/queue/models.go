package ratingqueue

// DailySweepJob penalizes every runner who did not log a run on Date.
// Date is a civil date (YYYY-MM-DD) in the configured timezone.
type DailySweepJob struct {
	Date string `json:"date"`
}

// Kind returns the job type identifier for River
func (DailySweepJob) Kind() string { return "rating_daily_sweep" }

// SeasonResetJob archives the season that ended on the day before Month.
// Month is the first day (YYYY-MM-DD) of the month that just started.
type SeasonResetJob struct {
	Month string `json:"month"`
}

// Kind returns the job type identifier for River
func (SeasonResetJob) Kind() string { return "rating_season_reset" }

// JobInfo represents information about a rating job (for debugging/monitoring)
type JobInfo struct {
	ID          int64  `json:"id"`
	Kind        string `json:"kind"`
	State       string `json:"state"`
	ScheduledAt string `json:"scheduled_at"`
	Attempt     int    `json:"attempt"`
	MaxAttempts int    `json:"max_attempts"`
}
