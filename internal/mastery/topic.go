// Package mastery rolls per-item correctness up into per-topic mastery
// ratios consumed by dashboards and the adaptive difficulty selector.
package mastery

import "github.com/abhisek/studyforge/internal/difficulty"

// DefaultTopic labels items that were registered without a topic.
const DefaultTopic = "General"

// TopicMastery is the derived mastery of a single topic.
type TopicMastery struct {
	Topic          string          `json:"topic" yaml:"topic"`
	TotalAttempted int             `json:"total_attempted" yaml:"total_attempted"`
	TotalCorrect   int             `json:"total_correct" yaml:"total_correct"`
	Mastery        float64         `json:"mastery" yaml:"mastery"`
	Suggested      difficulty.Tier `json:"suggested_difficulty" yaml:"suggested_difficulty"`
}

// Ratio returns correct / max(1, attempted). It is the single ratio rule
// used for every accuracy figure, so zero attempts yield 0.
func Ratio(correct, attempted int) float64 {
	if attempted < 1 {
		attempted = 1
	}
	return float64(correct) / float64(attempted)
}

// RoundPercent converts a [0,1] ratio to a percentage with one decimal.
func RoundPercent(ratio float64) float64 {
	return float64(int(ratio*1000+0.5)) / 10
}
