package ratingdomain

import (
	"fmt"
	"strconv"
)

// Tier is a runner's rank band. The zero value is Bronze.
type Tier int

const (
	TierBronze Tier = iota
	TierSilver
	TierGold
	TierPlatinum
	TierDiamond
	TierMaster
	TierGrandmaster
	TierUsainBolt
)

// NoUpperBound marks a tier whose RR range is open at the top.
const NoUpperBound = -1

// TopTierMinRatingPoints is the RR needed for Grandmaster and, at position 1, Usain Bolt.
const TopTierMinRatingPoints = 750

// TierInfo is the static definition of a tier.
type TierInfo struct {
	Tier        Tier   `json:"tier"`
	Name        string `json:"name"`
	Icon        string `json:"icon"`
	MinRR       int    `json:"min_rr"`
	MaxRR       int    `json:"max_rr"`
	BaseReward  int    `json:"base_reward"`
	BasePenalty int    `json:"base_penalty"`
}

var tierTable = [...]TierInfo{
	TierBronze:      {Tier: TierBronze, Name: "Bronze", Icon: "🥉", MinRR: 0, MaxRR: 99, BaseReward: 25, BasePenalty: 0},
	TierSilver:      {Tier: TierSilver, Name: "Silver", Icon: "🥈", MinRR: 100, MaxRR: 199, BaseReward: 24, BasePenalty: 0},
	TierGold:        {Tier: TierGold, Name: "Gold", Icon: "🥇", MinRR: 200, MaxRR: 299, BaseReward: 23, BasePenalty: 0},
	TierPlatinum:    {Tier: TierPlatinum, Name: "Platinum", Icon: "💿", MinRR: 300, MaxRR: 399, BaseReward: 22, BasePenalty: 5},
	TierDiamond:     {Tier: TierDiamond, Name: "Diamond", Icon: "💎", MinRR: 400, MaxRR: 499, BaseReward: 20, BasePenalty: 7},
	TierMaster:      {Tier: TierMaster, Name: "Master", Icon: "👑", MinRR: 500, MaxRR: 749, BaseReward: 18, BasePenalty: 12},
	TierGrandmaster: {Tier: TierGrandmaster, Name: "Grandmaster", Icon: "🏆", MinRR: TopTierMinRatingPoints, MaxRR: NoUpperBound, BaseReward: 17, BasePenalty: 17},
	TierUsainBolt:   {Tier: TierUsainBolt, Name: "Usain Bolt", Icon: "⚡", MinRR: TopTierMinRatingPoints, MaxRR: NoUpperBound, BaseReward: 17, BasePenalty: 22},
}

// Valid reports whether t is one of the defined tiers.
func (t Tier) Valid() bool {
	return t >= TierBronze && int(t) < len(tierTable)
}

func (t Tier) String() string {
	if !t.Valid() {
		return "Unknown Tier"
	}
	return tierTable[t].Name
}

// Lookup returns the table entry for t.
func Lookup(t Tier) (TierInfo, error) {
	if !t.Valid() {
		return TierInfo{}, fmt.Errorf("%w: unknown tier %d", ErrInvalidInput, int(t))
	}
	return tierTable[t], nil
}

// Tiers returns every tier definition, lowest first.
func Tiers() []TierInfo {
	out := make([]TierInfo, len(tierTable))
	copy(out, tierTable[:])
	return out
}

// Bounded reports whether the tier has a finite upper RR bound.
func (ti TierInfo) Bounded() bool {
	return ti.MaxRR != NoUpperBound
}

// Contains reports whether rr falls inside the tier's RR range.
// The position constraint of the top tier is not considered here.
func (ti TierInfo) Contains(rr int) bool {
	if rr < ti.MinRR {
		return false
	}
	return !ti.Bounded() || rr <= ti.MaxRR
}

// RangeLabel renders the RR range as "100 - 199" or "750+".
func (ti TierInfo) RangeLabel() string {
	if !ti.Bounded() {
		return strconv.Itoa(ti.MinRR) + "+"
	}
	return fmt.Sprintf("%d - %d", ti.MinRR, ti.MaxRR)
}

// Classify maps a rating and leaderboard position to a tier.
//
// Below TopTierMinRatingPoints the tier is chosen by RR alone. At or above it,
// only the runner holding position 1 is Usain Bolt; everyone else is Grandmaster.
// Position 0 means "not ranked yet" and never yields the top tier.
func Classify(ratingPoints, leaderboardPosition int) (Tier, error) {
	if ratingPoints < 0 {
		return 0, fmt.Errorf("%w: negative rating points %d", ErrInvalidInput, ratingPoints)
	}
	if leaderboardPosition < 0 {
		return 0, fmt.Errorf("%w: negative leaderboard position %d", ErrInvalidInput, leaderboardPosition)
	}

	if ratingPoints >= TopTierMinRatingPoints {
		if leaderboardPosition == 1 {
			return TierUsainBolt, nil
		}
		return TierGrandmaster, nil
	}

	for t := TierMaster; t >= TierBronze; t-- {
		if tierTable[t].Contains(ratingPoints) {
			return t, nil
		}
	}

	// Unreachable while the table covers 0..749 without gaps.
	return 0, fmt.Errorf("%w: no tier covers %d RR", ErrInvalidInput, ratingPoints)
}

// ClassifyInfo is Classify followed by Lookup.
func ClassifyInfo(ratingPoints, leaderboardPosition int) (TierInfo, error) {
	t, err := Classify(ratingPoints, leaderboardPosition)
	if err != nil {
		return TierInfo{}, err
	}
	return tierTable[t], nil
}
