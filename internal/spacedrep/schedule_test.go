package spacedrep

import (
	"errors"
	"math"
	"testing"
	"time"
)

var testNow = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestSchedule_FirstPass(t *testing.T) {
	got, err := Schedule(5, 2.5, 1, 0, testNow)
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if !approxEqual(got.EaseFactor, 2.6) {
		t.Errorf("EaseFactor = %v, want 2.6", got.EaseFactor)
	}
	if got.IntervalDays != 1 {
		t.Errorf("IntervalDays = %d, want 1", got.IntervalDays)
	}
	if got.Repetitions != 1 {
		t.Errorf("Repetitions = %d, want 1", got.Repetitions)
	}
}

func TestSchedule_SecondPassUsesFixedStep(t *testing.T) {
	got, err := Schedule(5, 2.6, 6, 1, testNow)
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if got.IntervalDays != 6 {
		t.Errorf("IntervalDays = %d, want 6", got.IntervalDays)
	}
	if got.Repetitions != 2 {
		t.Errorf("Repetitions = %d, want 2", got.Repetitions)
	}
}

func TestSchedule_ThirdPassMultipliesByEase(t *testing.T) {
	got, err := Schedule(5, 2.6, 6, 2, testNow)
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if got.IntervalDays != 15 {
		t.Errorf("IntervalDays = %d, want 15", got.IntervalDays)
	}
	if got.Repetitions != 3 {
		t.Errorf("Repetitions = %d, want 3", got.Repetitions)
	}
}

func TestSchedule_FailureResets(t *testing.T) {
	got, err := Schedule(1, 2.5, 10, 3, testNow)
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if got.IntervalDays != 1 {
		t.Errorf("IntervalDays = %d, want 1", got.IntervalDays)
	}
	if got.Repetitions != 0 {
		t.Errorf("Repetitions = %d, want 0", got.Repetitions)
	}
	if got.EaseFactor != 2.5 {
		t.Errorf("EaseFactor = %v, want unchanged 2.5", got.EaseFactor)
	}
}

func TestSchedule_NextReviewIsNowPlusInterval(t *testing.T) {
	tests := []struct {
		name        string
		quality     int
		interval    int
		repetitions int
		wantDays    int
	}{
		{"pass first", 5, 1, 0, 1},
		{"pass second", 4, 1, 1, 6},
		{"pass later", 5, 6, 2, 15},
		{"fail", 0, 30, 5, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Schedule(tt.quality, 2.5, tt.interval, tt.repetitions, testNow)
			if err != nil {
				t.Fatalf("Schedule: %v", err)
			}
			want := testNow.AddDate(0, 0, got.IntervalDays)
			if !got.NextReview.Equal(want) {
				t.Errorf("NextReview = %v, want %v", got.NextReview, want)
			}
			if got.IntervalDays != tt.wantDays {
				t.Errorf("IntervalDays = %d, want %d", got.IntervalDays, tt.wantDays)
			}
		})
	}
}

func TestSchedule_EaseUpdateByQuality(t *testing.T) {
	tests := []struct {
		quality int
		want    float64
	}{
		{5, 2.6},
		{4, 2.5},
		{3, 2.36},
	}
	for _, tt := range tests {
		got, err := Schedule(tt.quality, 2.5, 1, 0, testNow)
		if err != nil {
			t.Fatalf("Schedule(%d): %v", tt.quality, err)
		}
		if !approxEqual(got.EaseFactor, tt.want) {
			t.Errorf("quality %d: EaseFactor = %v, want %v", tt.quality, got.EaseFactor, tt.want)
		}
	}
}

func TestSchedule_EaseNeverBelowFloor(t *testing.T) {
	for q := MinQuality; q <= MaxQuality; q++ {
		ease := DefaultEaseFactor
		interval := 1
		reps := 0
		for i := 0; i < 50; i++ {
			res, err := Schedule(q, ease, interval, reps, testNow)
			if err != nil {
				t.Fatalf("Schedule(%d): %v", q, err)
			}
			if res.EaseFactor < MinEaseFactor {
				t.Fatalf("quality %d step %d: ease %v below floor", q, i, res.EaseFactor)
			}
			if res.IntervalDays < 1 {
				t.Fatalf("quality %d step %d: interval %d not positive", q, i, res.IntervalDays)
			}
			ease, interval, reps = res.EaseFactor, res.IntervalDays, res.Repetitions
		}
	}
}

func TestSchedule_FloorAtMinimumEase(t *testing.T) {
	got, err := Schedule(3, 1.35, 10, 4, testNow)
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if got.EaseFactor != MinEaseFactor {
		t.Errorf("EaseFactor = %v, want %v", got.EaseFactor, MinEaseFactor)
	}
	if got.IntervalDays != 13 {
		t.Errorf("IntervalDays = %d, want floor(10*1.35) = 13", got.IntervalDays)
	}
}

func TestSchedule_InvalidQuality(t *testing.T) {
	for _, q := range []int{-1, 6, 100} {
		_, err := Schedule(q, 2.5, 1, 0, testNow)
		if !errors.Is(err, ErrInvalidQuality) {
			t.Errorf("Schedule(%d): expected ErrInvalidQuality, got %v", q, err)
		}
	}
}

func TestSchedule_Deterministic(t *testing.T) {
	a, errA := Schedule(4, 2.2, 9, 3, testNow)
	b, errB := Schedule(4, 2.2, 9, 3, testNow)
	if errA != nil || errB != nil {
		t.Fatalf("unexpected errors: %v, %v", errA, errB)
	}
	if a != b {
		t.Errorf("Schedule not deterministic: %+v vs %+v", a, b)
	}
}

func TestQualityFor(t *testing.T) {
	tests := []struct {
		correct bool
		score   float64
		want    int
	}{
		{true, 1.0, QualityPerfect},
		{true, 0.0, QualityPerfect},
		{false, 0.5, QualityPartial},
		{false, 0.8, QualityPartial},
		{false, 0.49, QualityFailed},
		{false, 0, QualityFailed},
	}
	for _, tt := range tests {
		if got := QualityFor(tt.correct, tt.score); got != tt.want {
			t.Errorf("QualityFor(%v, %v) = %d, want %d", tt.correct, tt.score, got, tt.want)
		}
	}
}
