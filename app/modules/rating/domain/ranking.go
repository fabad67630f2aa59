package ratingdomain

import (
	"cmp"
	"fmt"
	"slices"
)

// RankEntry is the input to Recompute.
type RankEntry struct {
	ID           RunnerID
	RatingPoints int
}

// Standing is one row of a recomputed leaderboard.
type Standing struct {
	ID           RunnerID
	RatingPoints int
	Position     int
}

// Rank orders runners by RR descending with ascending id as the tie-break
// and assigns positions 1..N. The input slice is not modified.
func Rank(entries []RankEntry) ([]Standing, error) {
	seen := make(map[RunnerID]struct{}, len(entries))
	for _, e := range entries {
		if e.RatingPoints < 0 {
			return nil, fmt.Errorf("%w: runner %s has negative rating points %d", ErrInvalidInput, e.ID, e.RatingPoints)
		}
		if _, dup := seen[e.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate runner id %s", ErrInvalidInput, e.ID)
		}
		seen[e.ID] = struct{}{}
	}

	sorted := make([]RankEntry, len(entries))
	copy(sorted, entries)

	slices.SortFunc(sorted, func(a, b RankEntry) int {
		if c := cmp.Compare(b.RatingPoints, a.RatingPoints); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	standings := make([]Standing, len(sorted))
	for i, e := range sorted {
		standings[i] = Standing{ID: e.ID, RatingPoints: e.RatingPoints, Position: i + 1}
	}
	return standings, nil
}

// Recompute returns the new leaderboard position of every runner.
// Every call rewrites every position; it is not incremental.
func Recompute(entries []RankEntry) (map[RunnerID]int, error) {
	standings, err := Rank(entries)
	if err != nil {
		return nil, err
	}

	positions := make(map[RunnerID]int, len(standings))
	for _, s := range standings {
		positions[s.ID] = s.Position
	}
	return positions, nil
}
