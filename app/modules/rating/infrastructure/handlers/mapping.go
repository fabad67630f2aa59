package ratinghandlers

import (
	"time"

	ratingservice "github.com/Black-And-White-Club/runrank-bot/app/modules/rating/application"
	ratingevents "github.com/Black-And-White-Club/runrank-bot/app/modules/rating/events"
	ratingdb "github.com/Black-And-White-Club/runrank-bot/app/modules/rating/infrastructure/repositories"
	"github.com/Black-And-White-Club/runrank-bot/internal/handlerwrapper"
)

// RunnerPayload converts a profile for publishing.
func RunnerPayload(p *ratingservice.RunnerProfile) ratingevents.RunnerPayloadV1 {
	out := ratingevents.RunnerPayloadV1{
		UserID:              p.UserID,
		DisplayName:         p.DisplayName,
		RatingPoints:        p.RatingPoints,
		LeaderboardPosition: p.LeaderboardPosition,
		Tier:                ratingevents.NewTierPayload(p.Tier),
		LongestStreak:       p.LongestStreak,
		RunsLogged:          p.RunsLogged,
		TotalDistance:       p.TotalDistance,
		AverageDistance:     p.AverageDistance,
	}
	if p.LastLoggedDate != nil {
		out.LastLoggedDate = p.LastLoggedDate.Format(time.DateOnly)
	}
	return out
}

// LeaderboardPayload converts leaderboard rows for publishing.
func LeaderboardPayload(entries []ratingservice.LeaderboardEntry) []ratingevents.LeaderboardEntryPayloadV1 {
	out := make([]ratingevents.LeaderboardEntryPayloadV1, len(entries))
	for i, e := range entries {
		out[i] = ratingevents.LeaderboardEntryPayloadV1{
			Position:     e.Position,
			UserID:       e.UserID,
			DisplayName:  e.DisplayName,
			RatingPoints: e.RatingPoints,
			Tier:         ratingevents.NewTierPayload(e.Tier),
		}
	}
	return out
}

// RunLoggedPayload converts an accepted run for publishing.
func RunLoggedPayload(r *ratingservice.RunLog, forced bool) *ratingevents.RunLoggedPayloadV1 {
	return &ratingevents.RunLoggedPayloadV1{
		UserID:          r.UserID,
		DisplayName:     r.DisplayName,
		Distance:        r.Distance,
		LoggedOn:        r.LoggedOn.Format(time.DateOnly),
		Streak:          r.Streak,
		StreakBonus:     r.Outcome.StreakBonus,
		DistanceBonus:   r.Outcome.DistanceBonus,
		Delta:           r.Outcome.Delta,
		OldRatingPoints: r.OldRatingPoints,
		NewRatingPoints: r.Outcome.NewRatingPoints,
		OldTier:         ratingevents.NewTierPayload(r.OldTier),
		NewTier:         ratingevents.NewTierPayload(r.NewTier),
		NewPosition:     r.NewPosition,
		Forced:          forced,
	}
}

// DayEndedPayload converts a daily sweep for publishing.
func DayEndedPayload(s *ratingservice.DaySweep) *ratingevents.DayEndedPayloadV1 {
	penalties := make([]ratingevents.PenaltyPayloadV1, len(s.Penalized))
	for i, p := range s.Penalized {
		penalties[i] = ratingevents.PenaltyPayloadV1{
			UserID:          p.UserID,
			DisplayName:     p.DisplayName,
			OldRatingPoints: p.OldRatingPoints,
			NewRatingPoints: p.NewRatingPoints,
			OldTier:         ratingevents.NewTierPayload(p.OldTier),
			NewTier:         ratingevents.NewTierPayload(p.NewTier),
			TierChanged:     p.TierChanged(),
		}
	}
	return &ratingevents.DayEndedPayloadV1{
		Date:        s.Date.Format(time.DateOnly),
		Missed:      s.Missed,
		Penalties:   penalties,
		Leaderboard: LeaderboardPayload(s.Leaderboard),
	}
}

// SeasonEndedPayload converts a season reset for publishing.
func SeasonEndedPayload(s *ratingservice.SeasonSummary) *ratingevents.SeasonEndedPayloadV1 {
	return &ratingevents.SeasonEndedPayloadV1{
		SeasonID:     s.SeasonID.String(),
		EndedAt:      s.EndedAt,
		Winners:      standingsPayload(s.Winners),
		RunnersReset: s.RunnersReset,
	}
}

func standingsPayload(standings []ratingdb.SeasonStanding) []ratingevents.SeasonStandingPayloadV1 {
	out := make([]ratingevents.SeasonStandingPayloadV1, len(standings))
	for i, st := range standings {
		out[i] = ratingevents.SeasonStandingPayloadV1{
			Position:     st.Position,
			UserID:       st.UserID,
			DisplayName:  st.DisplayName,
			RatingPoints: st.RatingPoints,
			Tier:         st.Tier,
		}
	}
	return out
}

// DaySweepResults maps a sweep outcome to the messages it announces.
func DaySweepResults(result ratingservice.DaySweepResult) []handlerwrapper.Result {
	if result.IsSuccess() {
		return single(ratingevents.DayEndedV1, DayEndedPayload(*result.Success))
	}
	return nil
}

// SeasonResults maps a season reset outcome to the messages it announces.
func SeasonResults(result ratingservice.SeasonResult) []handlerwrapper.Result {
	if result.IsSuccess() {
		return single(ratingevents.SeasonEndedV1, SeasonEndedPayload(*result.Success))
	}
	return nil
}
