package spacedrep

import (
	"errors"
	"testing"
	"time"

	"github.com/abhisek/studyforge/internal/difficulty"
)

func answeredState(next time.Time, interval int) *ReviewState {
	answered := next.AddDate(0, 0, -interval)
	return &ReviewState{
		ItemID:       "q1",
		EaseFactor:   DefaultEaseFactor,
		IntervalDays: interval,
		AnsweredAt:   &answered,
		NextReview:   &next,
	}
}

func TestNewReviewState_Defaults(t *testing.T) {
	rs := NewReviewState("learner", "q1", "Biology", difficulty.Hard)
	if rs.EaseFactor != DefaultEaseFactor {
		t.Errorf("EaseFactor = %v, want %v", rs.EaseFactor, DefaultEaseFactor)
	}
	if rs.IntervalDays != DefaultIntervalDays {
		t.Errorf("IntervalDays = %d, want %d", rs.IntervalDays, DefaultIntervalDays)
	}
	if rs.Answered() {
		t.Error("new state should not be answered")
	}
	if rs.NextReview != nil {
		t.Error("new state should have no review date")
	}
}

func TestRecord_Pass(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	rs := NewReviewState("learner", "q1", "", difficulty.Medium)

	if err := rs.Record(5, true, now); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if rs.Attempts != 1 || !rs.Correct || rs.Repetitions != 1 {
		t.Errorf("unexpected state after pass: %+v", rs)
	}
	if rs.NextReview == nil || !rs.NextReview.Equal(now.AddDate(0, 0, 1)) {
		t.Errorf("NextReview = %v, want now+1d", rs.NextReview)
	}
	if rs.AnsweredAt == nil || !rs.AnsweredAt.Equal(now) {
		t.Errorf("AnsweredAt = %v, want %v", rs.AnsweredAt, now)
	}
}

func TestRecord_SequenceGrowsInterval(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	rs := NewReviewState("learner", "q1", "", difficulty.Medium)

	want := []int{1, 6, 16}
	for i, w := range want {
		if err := rs.Record(5, true, now); err != nil {
			t.Fatalf("Record %d: %v", i, err)
		}
		if rs.IntervalDays != w {
			t.Errorf("step %d: IntervalDays = %d, want %d", i, rs.IntervalDays, w)
		}
		now = *rs.NextReview
	}
}

func TestRecord_InvalidQualityLeavesStateUntouched(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	rs := NewReviewState("learner", "q1", "", difficulty.Medium)
	before := *rs

	err := rs.Record(9, true, now)
	if !errors.Is(err, ErrInvalidQuality) {
		t.Fatalf("expected ErrInvalidQuality, got %v", err)
	}
	if *rs != before {
		t.Errorf("state mutated on invalid quality: %+v", rs)
	}
}

func TestIsDue(t *testing.T) {
	next := time.Date(2025, 1, 2, 12, 0, 0, 0, time.UTC)
	rs := answeredState(next, 1)

	if rs.IsDue(next.Add(-time.Hour)) {
		t.Error("expected not due before review date")
	}
	if !rs.IsDue(next) {
		t.Error("expected due on review date")
	}
	if !rs.IsDue(next.Add(48 * time.Hour)) {
		t.Error("expected due after review date")
	}
}

func TestIsDue_NeverAnswered(t *testing.T) {
	rs := NewReviewState("learner", "q1", "", difficulty.Easy)
	if rs.IsDue(time.Now()) {
		t.Error("unanswered item should never be due")
	}
}

func TestOverdueDays(t *testing.T) {
	next := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	rs := answeredState(next, 1)

	if got := rs.OverdueDays(next.Add(-time.Hour)); got != 0 {
		t.Errorf("OverdueDays() = %f, want 0", got)
	}
	got := rs.OverdueDays(next.Add(3 * 24 * time.Hour))
	if got < 2.99 || got > 3.01 {
		t.Errorf("OverdueDays() = %f, want ~3.0", got)
	}
}

func TestStatus(t *testing.T) {
	next := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		now  time.Time
		want ReviewStatus
	}{
		// 6-day interval -> 3-day grace before overdue.
		{"not due", next.Add(-24 * time.Hour), ReviewNotDue},
		{"due within grace", next.Add(2 * 24 * time.Hour), ReviewDue},
		{"overdue past grace", next.Add(4 * 24 * time.Hour), ReviewOverdue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs := answeredState(next, 6)
			if got := rs.Status(tt.now); got != tt.want {
				t.Errorf("Status() = %q, want %q", got, tt.want)
			}
		})
	}

	fresh := NewReviewState("learner", "q2", "", difficulty.Easy)
	if got := fresh.Status(next); got != ReviewNew {
		t.Errorf("Status() = %q, want %q", got, ReviewNew)
	}
}

func TestDaysUntilReview(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	// 4.5 days in the future rounds up to 5
	rs := answeredState(now.Add(108*time.Hour), 6)
	if got := rs.DaysUntilReview(now); got != 5 {
		t.Errorf("DaysUntilReview() = %d, want 5", got)
	}

	exact := answeredState(now.AddDate(0, 0, 6), 6)
	if got := exact.DaysUntilReview(now); got != 6 {
		t.Errorf("DaysUntilReview() = %d, want 6", got)
	}

	due := answeredState(now.Add(-24*time.Hour), 1)
	if got := due.DaysUntilReview(now); got != 0 {
		t.Errorf("DaysUntilReview() = %d, want 0", got)
	}
}
