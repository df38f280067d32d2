package xp

const (
	// FirstLevelThreshold is the XP needed to go from level 1 to 2.
	FirstLevelThreshold = 100

	// ThresholdGrowth is the factor each successive threshold grows by.
	ThresholdGrowth = 1.3
)

// Level describes where a cumulative XP total sits on the level curve.
type Level struct {
	Level     int     `json:"level" yaml:"level"`
	XPInLevel int     `json:"xp_in_level" yaml:"xp_in_level"`
	XPForNext int     `json:"xp_for_next" yaml:"xp_for_next"`
	Progress  float64 `json:"progress" yaml:"progress"`
	TotalXP   int     `json:"total_xp" yaml:"total_xp"`
}

// NextThreshold returns the threshold following t, truncated to an integer.
func NextThreshold(t int) int {
	return int(float64(t) * ThresholdGrowth)
}

// LevelOf derives the level from total XP. Thresholds start at 100 and grow
// by 30% per level, so the loop always terminates.
func LevelOf(totalXP int) Level {
	if totalXP < 0 {
		totalXP = 0
	}

	level := 1
	remaining := totalXP
	threshold := FirstLevelThreshold
	for remaining >= threshold {
		remaining -= threshold
		level++
		threshold = NextThreshold(threshold)
	}

	return Level{
		Level:     level,
		XPInLevel: remaining,
		XPForNext: threshold,
		Progress:  float64(remaining) / float64(threshold),
		TotalXP:   totalXP,
	}
}

// XPForLevel returns the cumulative XP required to reach level n.
func XPForLevel(n int) int {
	total := 0
	threshold := FirstLevelThreshold
	for l := 1; l < n; l++ {
		total += threshold
		threshold = NextThreshold(threshold)
	}
	return total
}
