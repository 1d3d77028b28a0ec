package progression

import "time"

const day = 24 * time.Hour

// StreakUpdate is the outcome of a streak check.
type StreakUpdate struct {
	NewStreak    int64
	ShouldUpdate bool
}

// ComputeStreakUpdate decides the next streak value for an activity at now.
// Calendar dates are compared in now's location.
func ComputeStreakUpdate(lastActive, now time.Time, currentStreak int64) StreakUpdate {
	unchanged := StreakUpdate{NewStreak: currentStreak}

	last := lastActive.In(now.Location())
	if SameDate(last, now) {
		return unchanged
	}

	// Duration division truncates toward zero; negative gaps land in the <= 0 branch either way.
	dayDifference := int64(now.Sub(last) / day)
	switch {
	case dayDifference == 1:
		return StreakUpdate{NewStreak: currentStreak + 1, ShouldUpdate: true}
	case dayDifference > 1:
		return StreakUpdate{NewStreak: 1, ShouldUpdate: true}
	default:
		// clock skew or a sub-24h gap across midnight
		return unchanged
	}
}

// SameDate reports whether a and b fall on the same calendar date.
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
