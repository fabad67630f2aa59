package ratingdomain

import "fmt"

// StreakBonus returns floor(log3(streak)), and 0 for a streak of 0.
//
// Integer division keeps exact powers of three (27, 243, ...) on the right side
// of the boundary, which a float log does not guarantee.
func StreakBonus(longestStreak int) (int, error) {
	if longestStreak < 0 {
		return 0, fmt.Errorf("%w: negative streak %d", ErrInvalidInput, longestStreak)
	}

	bonus := 0
	for n := longestStreak; n >= 3; n /= 3 {
		bonus++
	}
	return bonus, nil
}
