// Package difficulty defines the quiz difficulty tiers and the adaptive
// selector that maps a topic's mastery ratio to the tier offered next.
package difficulty

import (
	"errors"
	"fmt"
	"strings"
)

// Tier is the declared difficulty of a quiz or item.
type Tier string

const (
	Easy   Tier = "easy"
	Medium Tier = "medium"
	Hard   Tier = "hard"
)

// Mastery thresholds separating the tiers. Each band includes its lower bound.
const (
	MediumThreshold = 0.3
	HardThreshold   = 0.7
)

// ErrInvalidDifficulty is returned by Parse for an unrecognized tag.
// It is not fatal: Parse still returns Medium alongside it.
var ErrInvalidDifficulty = errors.New("invalid difficulty")

// AllTiers returns the tiers in ascending order.
func AllTiers() []Tier {
	return []Tier{Easy, Medium, Hard}
}

// Parse maps a difficulty tag to a Tier. Unknown tags fall back to Medium
// and report ErrInvalidDifficulty so the caller can log it.
func Parse(s string) (Tier, error) {
	switch Tier(strings.ToLower(strings.TrimSpace(s))) {
	case Easy:
		return Easy, nil
	case Medium:
		return Medium, nil
	case Hard:
		return Hard, nil
	}
	return Medium, fmt.Errorf("%w: %q", ErrInvalidDifficulty, s)
}

// Valid reports whether t is one of the known tiers.
func (t Tier) Valid() bool {
	return t == Easy || t == Medium || t == Hard
}

// Multiplier returns the XP multiplier for the tier.
func (t Tier) Multiplier() float64 {
	switch t {
	case Easy:
		return 1.0
	case Hard:
		return 2.0
	default:
		return 1.5
	}
}

// Select picks the tier to offer for a topic with the given mastery ratio.
func Select(mastery float64) Tier {
	switch {
	case mastery < MediumThreshold:
		return Easy
	case mastery < HardThreshold:
		return Medium
	default:
		return Hard
	}
}

func (t Tier) String() string {
	return string(t)
}
