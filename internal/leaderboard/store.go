package leaderboard

import (
	"context"
	"errors"
	"fmt"

	"github.com/abhisek/studyforge/internal/store"
)

// StoreBoard ranks learners straight from the learner_stats table. It is
// used when no Redis address is configured.
type StoreBoard struct {
	repo store.ProgressRepo
}

// NewStoreBoard creates a board that reads rankings from repo.
func NewStoreBoard(repo store.ProgressRepo) *StoreBoard {
	return &StoreBoard{repo: repo}
}

// Update is a no-op: the learner row is the ranking source.
func (b *StoreBoard) Update(context.Context, Standing) error { return nil }

// Remove is a no-op: deleting the learner row removes the ranking.
func (b *StoreBoard) Remove(context.Context, string) error { return nil }

func orderFor(kind Kind) (store.LeaderboardOrder, error) {
	switch kind {
	case KindXP:
		return store.OrderByXP, nil
	case KindStreak:
		return store.OrderByLongestStreak, nil
	}
	return "", fmt.Errorf("unknown leaderboard %q", kind)
}

func scoreOf(kind Kind, r *store.LearnerRecord) int64 {
	if kind == KindStreak {
		return int64(r.LongestStreak)
	}
	return int64(r.XP)
}

func (b *StoreBoard) Top(ctx context.Context, kind Kind, limit int) ([]Entry, error) {
	order, err := orderFor(kind)
	if err != nil {
		return nil, err
	}

	recs, err := b.repo.TopLearners(ctx, order, normalizeLimit(limit))
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, len(recs))
	for i := range recs {
		entries[i] = Entry{LearnerID: recs[i].LearnerID, Score: scoreOf(kind, &recs[i]), Rank: int64(i) + 1}
	}
	return entries, nil
}

func (b *StoreBoard) Position(ctx context.Context, kind Kind, learnerID string) (Entry, error) {
	order, err := orderFor(kind)
	if err != nil {
		return Entry{}, err
	}

	rank, rec, err := b.repo.LearnerRank(ctx, order, learnerID)
	if errors.Is(err, store.ErrNotFound) {
		return Entry{LearnerID: learnerID}, nil
	}
	if err != nil {
		return Entry{}, err
	}
	return Entry{LearnerID: learnerID, Score: scoreOf(kind, rec), Rank: rank}, nil
}
