// Package xp converts answer outcomes into experience points and derives a
// learner's level from cumulative XP.
package xp

import (
	"math"

	"github.com/abhisek/studyforge/internal/difficulty"
)

const (
	// BaseXP is the XP for a correct answer before the difficulty multiplier.
	BaseXP = 10

	// ParticipationXP is the flat credit for an incorrect answer.
	ParticipationXP = 2

	// HintPenalty is the XP deducted per hint used.
	HintPenalty = 2

	// MinCorrectXP is the floor for a correct answer after hint penalties.
	MinCorrectXP = 5

	// StreakBonusPerDay is the bonus rate added per streak day.
	StreakBonusPerDay = 0.05

	// MaxStreakBonus caps the streak bonus rate.
	MaxStreakBonus = 0.5
)

// Reason strings attached to a Breakdown.
const (
	ReasonCorrect   = "correct answer"
	ReasonIncorrect = "attempt without success"
)

// Breakdown explains how an award was computed.
type Breakdown struct {
	Base        int             `json:"base"`
	HintPenalty int             `json:"hint_penalty"`
	StreakBonus int             `json:"streak_bonus"`
	Difficulty  difficulty.Tier `json:"difficulty,omitempty"`
	Reason      string          `json:"reason"`
}

// Result is the XP earned for one answer.
type Result struct {
	XPEarned  int       `json:"xp_earned"`
	Breakdown Breakdown `json:"breakdown"`
}

// StreakBonusRate returns the bonus rate for a daily streak, capped at 50%.
func StreakBonusRate(streak int) float64 {
	if streak <= 0 {
		return 0
	}
	return math.Min(float64(streak)*StreakBonusPerDay, MaxStreakBonus)
}

// Award computes the XP for one answer. An incorrect answer earns the
// flat participation credit regardless of difficulty, hints or streak.
func Award(correct bool, hintsUsed int, tier difficulty.Tier, streak int) Result {
	if !correct {
		return Result{
			XPEarned: ParticipationXP,
			Breakdown: Breakdown{
				Base:   ParticipationXP,
				Reason: ReasonIncorrect,
			},
		}
	}

	if hintsUsed < 0 {
		hintsUsed = 0
	}

	base := int(math.Round(BaseXP * tier.Multiplier()))
	penalty := HintPenalty * hintsUsed
	afterPenalty := base - penalty
	if afterPenalty < MinCorrectXP {
		afterPenalty = MinCorrectXP
	}

	bonus := int(math.Floor(float64(afterPenalty) * StreakBonusRate(streak)))

	if !tier.Valid() {
		tier = difficulty.Medium
	}

	return Result{
		XPEarned: afterPenalty + bonus,
		Breakdown: Breakdown{
			Base:        base,
			HintPenalty: penalty,
			StreakBonus: bonus,
			Difficulty:  tier,
			Reason:      ReasonCorrect,
		},
	}
}
