package ratingservice

import (
	"time"

	ratingdomain "github.com/Black-And-White-Club/runrank-bot/app/modules/rating/domain"
	ratingdb "github.com/Black-And-White-Club/runrank-bot/app/modules/rating/infrastructure/repositories"
	"github.com/google/uuid"
)

// RunnerProfile is a runner with the derived values the bot shows.
type RunnerProfile struct {
	UserID              ratingdomain.RunnerID
	DisplayName         string
	RatingPoints        int
	LeaderboardPosition int
	Tier                ratingdomain.TierInfo
	LongestStreak       int
	LastLoggedDate      *time.Time
	RunsLogged          int
	TotalDistance       float64
	AverageDistance     float64
}

// LeaderboardEntry is one leaderboard row.
type LeaderboardEntry struct {
	Position     int
	UserID       ratingdomain.RunnerID
	DisplayName  string
	RatingPoints int
	Tier         ratingdomain.TierInfo
}

// RunLog describes an accepted run and what it did to the runner.
type RunLog struct {
	UserID          ratingdomain.RunnerID
	DisplayName     string
	Distance        float64
	LoggedOn        time.Time
	Streak          int
	Outcome         ratingdomain.RunOutcome
	OldRatingPoints int
	OldTier         ratingdomain.TierInfo
	NewTier         ratingdomain.TierInfo
	NewPosition     int
}

// PenaltyChange is one runner's RR loss in a daily sweep.
type PenaltyChange struct {
	UserID          ratingdomain.RunnerID
	DisplayName     string
	OldRatingPoints int
	NewRatingPoints int
	OldTier         ratingdomain.TierInfo
	NewTier         ratingdomain.TierInfo
}

// TierChanged reports whether the penalty moved the runner to another tier.
func (p PenaltyChange) TierChanged() bool {
	return p.OldTier.Tier != p.NewTier.Tier
}

// DaySweep is the outcome of the end-of-day penalty sweep for one date.
type DaySweep struct {
	Date        time.Time
	Missed      int
	Penalized   []PenaltyChange
	Leaderboard []LeaderboardEntry
}

// SeasonSummary is the outcome of a season reset.
type SeasonSummary struct {
	SeasonID     uuid.UUID
	EndedAt      time.Time
	Standings    []ratingdb.SeasonStanding
	Winners      []ratingdb.SeasonStanding
	RunnersReset int
}

// seasonWinnerCount is how many top finishers a season announces.
const seasonWinnerCount = 3

func averageDistance(r *ratingdb.Runner) float64 {
	if r.RunsLogged == 0 {
		return 0
	}
	return r.TotalDistance / float64(r.RunsLogged)
}

func toProfile(r *ratingdb.Runner) (*RunnerProfile, error) {
	tier, err := ratingdomain.ClassifyInfo(r.RatingPoints, r.LeaderboardPosition)
	if err != nil {
		return nil, err
	}
	return &RunnerProfile{
		UserID:              r.UserID,
		DisplayName:         r.DisplayName,
		RatingPoints:        r.RatingPoints,
		LeaderboardPosition: r.LeaderboardPosition,
		Tier:                tier,
		LongestStreak:       r.LongestStreak,
		LastLoggedDate:      r.LastLoggedDate,
		RunsLogged:          r.RunsLogged,
		TotalDistance:       r.TotalDistance,
		AverageDistance:     averageDistance(r),
	}, nil
}

func toLeaderboard(runners []*ratingdb.Runner) ([]LeaderboardEntry, error) {
	entries := make([]LeaderboardEntry, 0, len(runners))
	for _, r := range runners {
		tier, err := ratingdomain.ClassifyInfo(r.RatingPoints, r.LeaderboardPosition)
		if err != nil {
			return nil, err
		}
		entries = append(entries, LeaderboardEntry{
			Position:     r.LeaderboardPosition,
			UserID:       r.UserID,
			DisplayName:  r.DisplayName,
			RatingPoints: r.RatingPoints,
			Tier:         tier,
		})
	}
	return entries, nil
}
