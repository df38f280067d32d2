// Package streak tracks a learner's daily engagement streak at UTC
// calendar-day granularity.
package streak

import "time"

// Outcome tags what a touch means for the stored streak.
type Outcome int

const (
	// Started is the first-ever activity: the streak becomes 1.
	Started Outcome = iota
	// Unchanged is activity on a day already counted.
	Unchanged
	// Extended is activity on the day after the last active day.
	Extended
	// Reset is activity after a gap of two or more days: the streak becomes 1.
	Reset
)

func (o Outcome) String() string {
	switch o {
	case Started:
		return "started"
	case Unchanged:
		return "unchanged"
	case Extended:
		return "extended"
	case Reset:
		return "reset"
	default:
		return "unknown"
	}
}

// Result is the outcome of one touch.
type Result struct {
	Outcome Outcome
}

// Maintained reports whether the previous streak survived this touch.
func (r Result) Maintained() bool {
	return r.Outcome != Reset
}

// Changed reports whether the caller has to write a new streak value.
func (r Result) Changed() bool {
	return r.Outcome != Unchanged
}

// Apply returns the streak after this touch given the current stored value.
func (r Result) Apply(current int) int {
	switch r.Outcome {
	case Unchanged:
		return current
	case Extended:
		return current + 1
	default:
		return 1
	}
}

// Delta returns the numeric change Apply makes to current.
func (r Result) Delta(current int) int {
	return r.Apply(current) - current
}

// Touch classifies activity at now against the last active time.
// Day boundaries are UTC midnight. A lastActive on a later day than now
// (clock skew) counts as already accounted for.
func Touch(lastActive *time.Time, now time.Time) Result {
	if lastActive == nil {
		return Result{Outcome: Started}
	}

	last := Day(*lastActive)
	today := Day(now)

	switch {
	case !last.Before(today):
		return Result{Outcome: Unchanged}
	case last.Equal(today.AddDate(0, 0, -1)):
		return Result{Outcome: Extended}
	default:
		return Result{Outcome: Reset}
	}
}

// Longest returns the longest streak after a streak update.
func Longest(longest, current int) int {
	if current > longest {
		return current
	}
	return longest
}

// Day truncates t to UTC midnight.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
