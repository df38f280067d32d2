package streak

// BaseMilestone is the first streak length worth celebrating.
const BaseMilestone = 5

// NextMilestone returns the next streak milestone above the current streak length.
func NextMilestone(current int) int {
	thresholds := []int{5, 10, 15, 20}
	for _, t := range thresholds {
		if t > current {
			return t
		}
	}
	// Beyond 20, every 5 days.
	return ((current / 5) + 1) * 5
}

// IsMilestone reports whether n is itself a milestone.
func IsMilestone(n int) bool {
	return n >= BaseMilestone && n%5 == 0
}
