// Package leaderboard ranks learners by total XP and by longest streak.
package leaderboard

import (
	"context"
	"fmt"
	"strings"
)

// Kind selects which ranking a query reads.
type Kind string

const (
	KindXP     Kind = "xp"
	KindStreak Kind = "streak"
)

// DefaultLimit is the number of entries returned when no limit is given.
const DefaultLimit = 10

// ParseKind converts a route or flag value into a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindXP:
		return KindXP, nil
	case KindStreak:
		return KindStreak, nil
	}
	return "", fmt.Errorf("unknown leaderboard %q", s)
}

// Entry is one ranked learner.
type Entry struct {
	LearnerID string `json:"learner_id"`
	Score     int64  `json:"score"` // xp or longest streak, depending on the board
	Rank      int64  `json:"rank"`
}

// Standing carries the values a learner is ranked by.
type Standing struct {
	LearnerID     string
	XP            int
	LongestStreak int
}

// Board is a leaderboard backend.
type Board interface {
	// Update records the learner's current standing.
	Update(ctx context.Context, s Standing) error

	// Top returns the best-ranked learners, highest first.
	Top(ctx context.Context, kind Kind, limit int) ([]Entry, error)

	// Position returns one learner's entry. Unranked learners get rank 0
	// and score 0.
	Position(ctx context.Context, kind Kind, learnerID string) (Entry, error)

	// Remove drops a learner from every ranking.
	Remove(ctx context.Context, learnerID string) error
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return limit
}
