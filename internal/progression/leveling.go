// Package progression holds the pure XP, level and streak rules.
package progression

// XPPerLevel is the linear threshold multiplier: level N needs N*XPPerLevel XP.
const XPPerLevel = 100

// LevelResult is the outcome of applying an XP delta.
type LevelResult struct {
	NewXP     int64
	NewLevel  int64
	LeveledUp bool
}

// Threshold returns the cumulative XP at which level advances past the given level.
func Threshold(level int64) int64 {
	return level * XPPerLevel
}

// ApplyXP adds delta to currentXP and advances the level at most once.
//
// The check is single-step: a delta crossing several thresholds still moves
// the user up by one level only.
func ApplyXP(currentXP, currentLevel, delta int64) LevelResult {
	newXP := currentXP + delta
	newLevel := currentLevel
	if newXP >= Threshold(currentLevel) {
		newLevel = currentLevel + 1
	}
	return LevelResult{
		NewXP:     newXP,
		NewLevel:  newLevel,
		LeveledUp: newLevel > currentLevel,
	}
}

// ProgressInfo is a display heuristic for the level bar.
type ProgressInfo struct {
	XPForNextLevel int64 `json:"xpForNextLevel"`
	Percentage     int64 `json:"xpPercentage"`
}

// Progress computes the progress bar values from cumulative XP.
// It takes XP modulo the next threshold, so it is not an accounting identity.
func Progress(xp, level int64) ProgressInfo {
	next := Threshold(level)
	if next <= 0 {
		return ProgressInfo{XPForNextLevel: next}
	}
	pct := (xp % next) * 100 / next
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	return ProgressInfo{XPForNextLevel: next, Percentage: pct}
}

var ranks = []string{
	"Novice",
	"Adventurer",
	"Explorer",
	"Challenger",
	"Champion",
	"Hero",
	"Legend",
	"Mythic",
	"Grandmaster",
	"Divine",
}

// levelsPerRank is how many levels share one rank title.
const levelsPerRank = 3

// RankTitle returns the display rank for a level.
func RankTitle(level int64) string {
	idx := (level - 1) / levelsPerRank
	if idx < 0 {
		idx = 0
	}
	if idx >= int64(len(ranks)) {
		idx = int64(len(ranks)) - 1
	}
	return ranks[idx]
}
