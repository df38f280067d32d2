package spacedrep

import (
	"errors"
	"fmt"
	"math"
	"time"
)

const (
	// DefaultEaseFactor is the ease assigned to a newly answerable item.
	DefaultEaseFactor = 2.5

	// MinEaseFactor is the floor the ease factor never drops below.
	MinEaseFactor = 1.3

	// DefaultIntervalDays is the interval assigned to a newly answerable item.
	DefaultIntervalDays = 1

	// SecondIntervalDays is the fixed step after the second consecutive pass.
	SecondIntervalDays = 6

	// MinQuality and MaxQuality bound the recall quality rating.
	MinQuality = 0
	MaxQuality = 5

	// PassQuality is the lowest rating counted as a successful recall.
	PassQuality = 3
)

// Conventional quality ratings produced by QualityFor.
const (
	QualityPerfect = 5
	QualityPartial = 3
	QualityFailed  = 1
)

// ErrInvalidQuality is returned when a quality rating is outside [0,5].
var ErrInvalidQuality = errors.New("invalid quality")

// Result is the outcome of one scheduling step.
type Result struct {
	EaseFactor   float64
	IntervalDays int
	Repetitions  int
	NextReview   time.Time
}

// Schedule runs one SM-2 step. It is a pure function of its inputs.
// A quality outside [0,5] is rejected rather than clamped.
func Schedule(quality int, ease float64, interval, repetitions int, now time.Time) (Result, error) {
	if quality < MinQuality || quality > MaxQuality {
		return Result{}, fmt.Errorf("%w: %d not in [%d,%d]", ErrInvalidQuality, quality, MinQuality, MaxQuality)
	}

	res := Result{EaseFactor: ease}

	if quality >= PassQuality {
		switch repetitions {
		case 0:
			res.IntervalDays = DefaultIntervalDays
		case 1:
			res.IntervalDays = SecondIntervalDays
		default:
			res.IntervalDays = int(math.Floor(float64(interval) * ease))
		}
		if res.IntervalDays < 1 {
			res.IntervalDays = 1
		}

		q := float64(MaxQuality - quality)
		res.EaseFactor = math.Max(MinEaseFactor, ease+0.1-q*(0.08+q*0.02))
		res.Repetitions = repetitions + 1
	} else {
		res.IntervalDays = DefaultIntervalDays
		res.Repetitions = 0
	}

	res.NextReview = now.AddDate(0, 0, res.IntervalDays)
	return res, nil
}

// QualityFor maps a graded answer onto the SM-2 quality scale: a correct
// answer is perfect, a partially correct one (score >= 0.5) passes
// narrowly, anything else fails.
func QualityFor(correct bool, score float64) int {
	switch {
	case correct:
		return QualityPerfect
	case score >= 0.5:
		return QualityPartial
	default:
		return QualityFailed
	}
}
