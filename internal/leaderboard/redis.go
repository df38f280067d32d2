package leaderboard

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	// XPKey is the sorted set holding total XP per learner.
	XPKey = "studyforge:leaderboard:xp"
	// StreakKey is the sorted set holding the longest streak per learner.
	StreakKey = "studyforge:leaderboard:streak"
)

// RedisBoard keeps both rankings in Redis sorted sets.
type RedisBoard struct {
	client redis.UniversalClient
}

// NewRedisBoard creates a board on top of an existing client.
func NewRedisBoard(client redis.UniversalClient) *RedisBoard {
	return &RedisBoard{client: client}
}

func keyFor(kind Kind) (string, error) {
	switch kind {
	case KindXP:
		return XPKey, nil
	case KindStreak:
		return StreakKey, nil
	}
	return "", fmt.Errorf("unknown leaderboard %q", kind)
}

// Update writes both scores in one round trip.
func (b *RedisBoard) Update(ctx context.Context, s Standing) error {
	pipe := b.client.TxPipeline()
	pipe.ZAdd(ctx, XPKey, redis.Z{Score: float64(s.XP), Member: s.LearnerID})
	pipe.ZAdd(ctx, StreakKey, redis.Z{Score: float64(s.LongestStreak), Member: s.LearnerID})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("update leaderboard for %q: %w", s.LearnerID, err)
	}
	return nil
}

func (b *RedisBoard) Top(ctx context.Context, kind Kind, limit int) ([]Entry, error) {
	key, err := keyFor(kind)
	if err != nil {
		return nil, err
	}
	limit = normalizeLimit(limit)

	// ZREVRANGE returns highest to lowest.
	results, err := b.client.ZRevRangeWithScores(ctx, key, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("read %s leaderboard: %w", kind, err)
	}

	entries := make([]Entry, len(results))
	for i, z := range results {
		member, _ := z.Member.(string)
		entries[i] = Entry{
			LearnerID: member,
			Score:     int64(z.Score),
			Rank:      int64(i) + 1,
		}
	}
	return entries, nil
}

// Rank returns the 1-indexed rank of a learner, or 0 if unranked.
func (b *RedisBoard) Rank(ctx context.Context, kind Kind, learnerID string) (int64, error) {
	key, err := keyFor(kind)
	if err != nil {
		return 0, err
	}
	rank, err := b.client.ZRevRank(ctx, key, learnerID).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("rank %q: %w", learnerID, err)
	}
	return rank + 1, nil
}

// Score returns the learner's score on a board, or 0 if unranked.
func (b *RedisBoard) Score(ctx context.Context, kind Kind, learnerID string) (int64, error) {
	key, err := keyFor(kind)
	if err != nil {
		return 0, err
	}
	score, err := b.client.ZScore(ctx, key, learnerID).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("score %q: %w", learnerID, err)
	}
	return int64(score), nil
}

// Position combines Rank and Score.
func (b *RedisBoard) Position(ctx context.Context, kind Kind, learnerID string) (Entry, error) {
	rank, err := b.Rank(ctx, kind, learnerID)
	if err != nil || rank == 0 {
		return Entry{LearnerID: learnerID}, err
	}
	score, err := b.Score(ctx, kind, learnerID)
	if err != nil {
		return Entry{LearnerID: learnerID}, err
	}
	return Entry{LearnerID: learnerID, Score: score, Rank: rank}, nil
}

func (b *RedisBoard) Remove(ctx context.Context, learnerID string) error {
	pipe := b.client.TxPipeline()
	pipe.ZRem(ctx, XPKey, learnerID)
	pipe.ZRem(ctx, StreakKey, learnerID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("remove %q from leaderboard: %w", learnerID, err)
	}
	return nil
}
