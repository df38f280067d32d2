package spacedrep

import (
	"math"
	"time"

	"github.com/abhisek/studyforge/internal/difficulty"
)

// ReviewState holds the spaced repetition state for a single item of a learner.
type ReviewState struct {
	LearnerID    string          `json:"learner_id" yaml:"learner_id"`
	ItemID       string          `json:"item_id" yaml:"item_id"`
	QuizID       string          `json:"quiz_id,omitempty" yaml:"quiz_id,omitempty"`
	Topic        string          `json:"topic" yaml:"topic"`
	Difficulty   difficulty.Tier `json:"difficulty" yaml:"difficulty"`
	Attempts     int             `json:"attempts" yaml:"attempts"`
	Correct      bool            `json:"correct" yaml:"correct"`
	HintsUsed    int             `json:"hints_used" yaml:"hints_used"`
	AnsweredAt   *time.Time      `json:"answered_at,omitempty" yaml:"answered_at,omitempty"`
	EaseFactor   float64         `json:"ease_factor" yaml:"ease_factor"`
	IntervalDays int             `json:"interval_days" yaml:"interval_days"`
	NextReview   *time.Time      `json:"next_review,omitempty" yaml:"next_review,omitempty"`
	Repetitions  int             `json:"repetitions" yaml:"repetitions"`
}

// NewReviewState returns the default state for a newly answerable item.
func NewReviewState(learnerID, itemID, topic string, tier difficulty.Tier) *ReviewState {
	return &ReviewState{
		LearnerID:    learnerID,
		ItemID:       itemID,
		Topic:        topic,
		Difficulty:   tier,
		EaseFactor:   DefaultEaseFactor,
		IntervalDays: DefaultIntervalDays,
	}
}

// Answered reports whether the item has been answered at least once.
func (rs *ReviewState) Answered() bool {
	return rs.AnsweredAt != nil
}

// Record applies one answer to the state: it counts the attempt, stores
// the outcome and reschedules the item. The state is left untouched when
// the quality is invalid.
func (rs *ReviewState) Record(quality int, correct bool, now time.Time) error {
	res, err := Schedule(quality, rs.EaseFactor, rs.IntervalDays, rs.Repetitions, now)
	if err != nil {
		return err
	}

	rs.Attempts++
	rs.Correct = correct
	answeredAt := now
	rs.AnsweredAt = &answeredAt

	rs.EaseFactor = res.EaseFactor
	rs.IntervalDays = res.IntervalDays
	rs.Repetitions = res.Repetitions
	next := res.NextReview
	rs.NextReview = &next
	return nil
}

// IsDue returns true if the item has been answered and its review date
// has been reached.
func (rs *ReviewState) IsDue(now time.Time) bool {
	if rs.NextReview == nil || !rs.Answered() {
		return false
	}
	return !now.Before(*rs.NextReview)
}

// OverdueDays returns how many days past due the item is. Returns 0 if not yet due.
func (rs *ReviewState) OverdueDays(now time.Time) float64 {
	if !rs.IsDue(now) {
		return 0
	}
	return now.Sub(*rs.NextReview).Hours() / 24.0
}

// IsOverdueThreshold returns true once the item has been due for longer
// than half of its current interval.
func (rs *ReviewState) IsOverdueThreshold(now time.Time) bool {
	if !rs.IsDue(now) {
		return false
	}
	graceHours := float64(rs.IntervalDays) * 0.5 * 24.0
	threshold := rs.NextReview.Add(time.Duration(graceHours * float64(time.Hour)))
	return now.After(threshold)
}

// ReviewStatus describes an item's review status for display.
type ReviewStatus string

const (
	ReviewNew     ReviewStatus = "new"
	ReviewNotDue  ReviewStatus = "not_due"
	ReviewDue     ReviewStatus = "due"
	ReviewOverdue ReviewStatus = "overdue"
)

// Status returns the review status for UI display.
func (rs *ReviewState) Status(now time.Time) ReviewStatus {
	if !rs.Answered() {
		return ReviewNew
	}
	if rs.IsOverdueThreshold(now) {
		return ReviewOverdue
	}
	if rs.IsDue(now) {
		return ReviewDue
	}
	return ReviewNotDue
}

// DaysUntilReview returns the number of days until the next review,
// rounded up. Returns 0 if already due or never scheduled.
func (rs *ReviewState) DaysUntilReview(now time.Time) int {
	if rs.NextReview == nil || rs.IsDue(now) {
		return 0
	}
	return int(math.Ceil(rs.NextReview.Sub(now).Hours() / 24.0))
}
