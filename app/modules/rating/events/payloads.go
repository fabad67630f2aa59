package ratingevents

import (
	"time"

	ratingdomain "github.com/Black-And-White-Club/runrank-bot/app/modules/rating/domain"
)

// TierPayloadV1 is the display form of a tier.
type TierPayloadV1 struct {
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Range string `json:"range"`
}

// NewTierPayload renders a tier for events.
func NewTierPayload(t ratingdomain.TierInfo) TierPayloadV1 {
	return TierPayloadV1{Name: t.Name, Icon: t.Icon, Range: t.RangeLabel()}
}

// RunnerPayloadV1 is a runner's public profile.
type RunnerPayloadV1 struct {
	UserID              ratingdomain.RunnerID `json:"user_id"`
	DisplayName         string                `json:"display_name"`
	RatingPoints        int                   `json:"rating_points"`
	LeaderboardPosition int                   `json:"leaderboard_position"`
	Tier                TierPayloadV1         `json:"tier"`
	LongestStreak       int                   `json:"longest_streak"`
	LastLoggedDate      string                `json:"last_logged_date,omitempty"`
	RunsLogged          int                   `json:"runs_logged"`
	TotalDistance       float64               `json:"total_distance"`
	AverageDistance     float64               `json:"average_distance"`
}

// LeaderboardEntryPayloadV1 is one leaderboard row.
type LeaderboardEntryPayloadV1 struct {
	Position     int                   `json:"position"`
	UserID       ratingdomain.RunnerID `json:"user_id"`
	DisplayName  string                `json:"display_name"`
	RatingPoints int                   `json:"rating_points"`
	Tier         TierPayloadV1         `json:"tier"`
}

// FailurePayloadV1 reports a request that was understood but refused.
type FailurePayloadV1 struct {
	UserID ratingdomain.RunnerID `json:"user_id,omitempty"`
	Reason string                `json:"reason"`
}

// ---------------------------------------------------------------------------
// Requests
// ---------------------------------------------------------------------------

// RunnerSignupRequestedPayloadV1 asks to register a runner.
type RunnerSignupRequestedPayloadV1 struct {
	UserID      ratingdomain.RunnerID `json:"user_id"`
	DisplayName string                `json:"display_name"`
}

// RunLogRequestedPayloadV1 asks to log today's run.
type RunLogRequestedPayloadV1 struct {
	UserID   ratingdomain.RunnerID `json:"user_id"`
	Distance float64               `json:"distance"`
}

// ProfileRequestedPayloadV1 asks for a runner's profile.
type ProfileRequestedPayloadV1 struct {
	UserID ratingdomain.RunnerID `json:"user_id"`
}

// LeaderboardRequestedPayloadV1 asks for the top of the leaderboard; Limit <= 0 means everyone.
type LeaderboardRequestedPayloadV1 struct {
	Limit int `json:"limit"`
}

// TiersRequestedPayloadV1 asks for the tier table.
type TiersRequestedPayloadV1 struct{}

// AdminForceLogRequestedPayloadV1 logs a run on behalf of a runner, optionally back-dated.
type AdminForceLogRequestedPayloadV1 struct {
	RequestedBy string                `json:"requested_by"`
	UserID      ratingdomain.RunnerID `json:"user_id"`
	Distance    float64               `json:"distance"`
	Date        string                `json:"date,omitempty"`
}

// AdminRatingAdjustRequestedPayloadV1 sets a runner's RR.
type AdminRatingAdjustRequestedPayloadV1 struct {
	RequestedBy  string                `json:"requested_by"`
	UserID       ratingdomain.RunnerID `json:"user_id"`
	RatingPoints int                   `json:"rating_points"`
}

// AdminStreakSetRequestedPayloadV1 sets a runner's streak.
type AdminStreakSetRequestedPayloadV1 struct {
	RequestedBy string                `json:"requested_by"`
	UserID      ratingdomain.RunnerID `json:"user_id"`
	Streak      int                   `json:"streak"`
}

// AdminRunnerDeleteRequestedPayloadV1 removes a runner.
type AdminRunnerDeleteRequestedPayloadV1 struct {
	RequestedBy string                `json:"requested_by"`
	UserID      ratingdomain.RunnerID `json:"user_id"`
}

// AdminRequestPayloadV1 is the body of admin requests that carry no arguments.
type AdminRequestPayloadV1 struct {
	RequestedBy string `json:"requested_by"`
}

// AdminDaySweepRequestedPayloadV1 runs the end-of-day sweep on demand. An empty
// Date sweeps today.
type AdminDaySweepRequestedPayloadV1 struct {
	RequestedBy string `json:"requested_by"`
	Date        string `json:"date,omitempty"`
}

// ---------------------------------------------------------------------------
// Results
// ---------------------------------------------------------------------------

// RunnerSignupSucceededPayloadV1 confirms a sign-up.
type RunnerSignupSucceededPayloadV1 struct {
	Runner RunnerPayloadV1 `json:"runner"`
}

// RunLoggedPayloadV1 describes an accepted run.
type RunLoggedPayloadV1 struct {
	UserID          ratingdomain.RunnerID `json:"user_id"`
	DisplayName     string                `json:"display_name"`
	Distance        float64               `json:"distance"`
	LoggedOn        string                `json:"logged_on"`
	Streak          int                   `json:"streak"`
	StreakBonus     int                   `json:"streak_bonus"`
	DistanceBonus   int                   `json:"distance_bonus"`
	Delta           int                   `json:"delta"`
	OldRatingPoints int                   `json:"old_rating_points"`
	NewRatingPoints int                   `json:"new_rating_points"`
	OldTier         TierPayloadV1         `json:"old_tier"`
	NewTier         TierPayloadV1         `json:"new_tier"`
	NewPosition     int                   `json:"new_position"`
	Forced          bool                  `json:"forced,omitempty"`
}

// ProfileRetrievedPayloadV1 carries a runner's profile.
type ProfileRetrievedPayloadV1 struct {
	Runner RunnerPayloadV1 `json:"runner"`
}

// LeaderboardRetrievedPayloadV1 carries leaderboard rows.
type LeaderboardRetrievedPayloadV1 struct {
	Entries []LeaderboardEntryPayloadV1 `json:"entries"`
}

// TiersRetrievedPayloadV1 carries the tier table.
type TiersRetrievedPayloadV1 struct {
	Tiers []TierPayloadV1 `json:"tiers"`
}

// AdminOperationSucceededPayloadV1 confirms an admin operation.
type AdminOperationSucceededPayloadV1 struct {
	Operation   string                `json:"operation"`
	RequestedBy string                `json:"requested_by"`
	UserID      ratingdomain.RunnerID `json:"user_id,omitempty"`
	Runner      *RunnerPayloadV1      `json:"runner,omitempty"`
}

// AdminOperationFailedPayloadV1 reports a refused admin operation.
type AdminOperationFailedPayloadV1 struct {
	Operation   string                `json:"operation"`
	RequestedBy string                `json:"requested_by"`
	UserID      ratingdomain.RunnerID `json:"user_id,omitempty"`
	Reason      string                `json:"reason"`
}

// PenaltyPayloadV1 is one runner's RR loss at the end of a day.
type PenaltyPayloadV1 struct {
	UserID          ratingdomain.RunnerID `json:"user_id"`
	DisplayName     string                `json:"display_name"`
	OldRatingPoints int                   `json:"old_rating_points"`
	NewRatingPoints int                   `json:"new_rating_points"`
	OldTier         TierPayloadV1         `json:"old_tier"`
	NewTier         TierPayloadV1         `json:"new_tier"`
	TierChanged     bool                  `json:"tier_changed"`
}

// DayEndedPayloadV1 reports the end-of-day sweep.
type DayEndedPayloadV1 struct {
	Date        string                      `json:"date"`
	Missed      int                         `json:"missed"`
	Penalties   []PenaltyPayloadV1          `json:"penalties"`
	Leaderboard []LeaderboardEntryPayloadV1 `json:"leaderboard"`
}

// SeasonStandingPayloadV1 is one final placing.
type SeasonStandingPayloadV1 struct {
	Position     int                   `json:"position"`
	UserID       ratingdomain.RunnerID `json:"user_id"`
	DisplayName  string                `json:"display_name"`
	RatingPoints int                   `json:"rating_points"`
	Tier         string                `json:"tier"`
}

// SeasonEndedPayloadV1 reports a season reset.
type SeasonEndedPayloadV1 struct {
	SeasonID     string                    `json:"season_id"`
	EndedAt      time.Time                 `json:"ended_at"`
	Winners      []SeasonStandingPayloadV1 `json:"winners"`
	RunnersReset int                       `json:"runners_reset"`
}

// LeaderboardUpdatedPayloadV1 announces a rewritten leaderboard.
type LeaderboardUpdatedPayloadV1 struct {
	Reason  string                      `json:"reason"`
	Entries []LeaderboardEntryPayloadV1 `json:"entries"`
}
