package ratingdomain

import (
	"fmt"
	"math"
)

// RunnerID identifies a runner. It is the external member id the bot sees.
type RunnerID string

// RunnerSnapshot is the part of a runner the rating calculators read.
type RunnerSnapshot struct {
	ID                  RunnerID
	RatingPoints        int
	LongestStreak       int
	LeaderboardPosition int
}

// RunOutcome is the full breakdown of a reward computation.
type RunOutcome struct {
	Tier            Tier
	StreakBonus     int
	DistanceBonus   int
	Multiplier      float64
	Delta           int
	NewRatingPoints int
}

// DistanceMultiplier scales the reward for a run. Runs under one mile map
// linearly onto [-1, 0); a full mile or more counts fully.
func DistanceMultiplier(distance float64) float64 {
	if distance < 1.0 {
		return -(1.0 - distance)
	}
	return 1.0
}

// DistanceBonus rewards longer runs, capped at 3.
func DistanceBonus(distance float64) int {
	switch {
	case distance <= 1.0:
		return 0
	case distance <= 2.0:
		return 1
	case distance <= 5.0:
		return 2
	default:
		return 3
	}
}

// ScoreRun computes the RR change for a logged run.
// The streak bonus uses the streak including the day being logged.
func ScoreRun(r RunnerSnapshot, distance float64) (RunOutcome, error) {
	if math.IsNaN(distance) || math.IsInf(distance, 0) || distance <= 0 {
		return RunOutcome{}, fmt.Errorf("%w: distance must be a positive number, got %v", ErrInvalidInput, distance)
	}

	tier, err := Classify(r.RatingPoints, r.LeaderboardPosition)
	if err != nil {
		return RunOutcome{}, err
	}
	if r.LongestStreak < 0 {
		return RunOutcome{}, fmt.Errorf("%w: negative streak %d", ErrInvalidInput, r.LongestStreak)
	}

	streakBonus, err := StreakBonus(r.LongestStreak + 1)
	if err != nil {
		return RunOutcome{}, err
	}

	multiplier := DistanceMultiplier(distance)
	distanceBonus := DistanceBonus(distance)
	base := tierTable[tier].BaseReward

	delta := int(math.Ceil(float64(base+streakBonus+distanceBonus) * multiplier))

	return RunOutcome{
		Tier:            tier,
		StreakBonus:     streakBonus,
		DistanceBonus:   distanceBonus,
		Multiplier:      multiplier,
		Delta:           delta,
		NewRatingPoints: max(0, r.RatingPoints+delta),
	}, nil
}

// RewardForRun returns the runner's RR after logging a run of the given distance.
func RewardForRun(r RunnerSnapshot, distance float64) (int, error) {
	outcome, err := ScoreRun(r, distance)
	if err != nil {
		return 0, err
	}
	return outcome.NewRatingPoints, nil
}

// PenaltyForNoLog returns the runner's RR after a day without a logged run.
func PenaltyForNoLog(r RunnerSnapshot) (int, error) {
	tier, err := Classify(r.RatingPoints, r.LeaderboardPosition)
	if err != nil {
		return 0, err
	}
	return max(0, r.RatingPoints-tierTable[tier].BasePenalty), nil
}
