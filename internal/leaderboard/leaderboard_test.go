package leaderboard

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/studyforge/internal/store"
)

func newRedisBoard(t *testing.T) (*RedisBoard, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisBoard(client), mr
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"xp", KindXP, false},
		{" Streak ", KindStreak, false},
		{"hints", "", true},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestRedisBoard_TopOrdersHighestFirst(t *testing.T) {
	b, _ := newRedisBoard(t)
	ctx := context.Background()

	require.NoError(t, b.Update(ctx, Standing{LearnerID: "ana", XP: 120, LongestStreak: 3}))
	require.NoError(t, b.Update(ctx, Standing{LearnerID: "ben", XP: 340, LongestStreak: 1}))
	require.NoError(t, b.Update(ctx, Standing{LearnerID: "cai", XP: 80, LongestStreak: 7}))

	xp, err := b.Top(ctx, KindXP, 2)
	require.NoError(t, err)
	assert.Equal(t, []Entry{
		{LearnerID: "ben", Score: 340, Rank: 1},
		{LearnerID: "ana", Score: 120, Rank: 2},
	}, xp)

	streaks, err := b.Top(ctx, KindStreak, 0)
	require.NoError(t, err)
	require.Len(t, streaks, 3)
	assert.Equal(t, "cai", streaks[0].LearnerID)
	assert.Equal(t, int64(7), streaks[0].Score)
}

func TestRedisBoard_UpdateOverwrites(t *testing.T) {
	b, _ := newRedisBoard(t)
	ctx := context.Background()

	require.NoError(t, b.Update(ctx, Standing{LearnerID: "ana", XP: 10}))
	require.NoError(t, b.Update(ctx, Standing{LearnerID: "ana", XP: 25}))

	score, err := b.Score(ctx, KindXP, "ana")
	require.NoError(t, err)
	assert.Equal(t, int64(25), score)
}

func TestRedisBoard_RankAndRemove(t *testing.T) {
	b, _ := newRedisBoard(t)
	ctx := context.Background()

	require.NoError(t, b.Update(ctx, Standing{LearnerID: "ana", XP: 10}))
	require.NoError(t, b.Update(ctx, Standing{LearnerID: "ben", XP: 20}))

	rank, err := b.Rank(ctx, KindXP, "ana")
	require.NoError(t, err)
	assert.Equal(t, int64(2), rank)

	require.NoError(t, b.Remove(ctx, "ana"))

	rank, err = b.Rank(ctx, KindXP, "ana")
	require.NoError(t, err)
	assert.Zero(t, rank, "removed learner is unranked")

	score, err := b.Score(ctx, KindStreak, "ana")
	require.NoError(t, err)
	assert.Zero(t, score)
}

func TestRedisBoard_ConnectionFailure(t *testing.T) {
	b, mr := newRedisBoard(t)
	mr.Close()

	err := b.Update(context.Background(), Standing{LearnerID: "ana", XP: 1})
	assert.Error(t, err)
}

func TestRedisBoard_UnknownKind(t *testing.T) {
	b, _ := newRedisBoard(t)
	_, err := b.Top(context.Background(), Kind("hints"), 5)
	assert.Error(t, err)
}

func TestStoreBoard_Top(t *testing.T) {
	s, err := store.Open("file:leaderboard-test?mode=memory&cache=shared")
	require.NoError(t, err)
	defer s.Close()

	repo := s.ProgressRepo()
	ctx := context.Background()
	require.NoError(t, repo.SaveLearner(ctx, &store.LearnerRecord{LearnerID: "ana", XP: 50, LongestStreak: 9}))
	require.NoError(t, repo.SaveLearner(ctx, &store.LearnerRecord{LearnerID: "ben", XP: 70, LongestStreak: 2}))

	b := NewStoreBoard(repo)
	require.NoError(t, b.Update(ctx, Standing{LearnerID: "ana"}))

	xp, err := b.Top(ctx, KindXP, 5)
	require.NoError(t, err)
	require.Len(t, xp, 2)
	assert.Equal(t, Entry{LearnerID: "ben", Score: 70, Rank: 1}, xp[0])

	streaks, err := b.Top(ctx, KindStreak, 1)
	require.NoError(t, err)
	assert.Equal(t, []Entry{{LearnerID: "ana", Score: 9, Rank: 1}}, streaks)
}

func TestRedisBoard_Position(t *testing.T) {
	b, _ := newRedisBoard(t)
	ctx := context.Background()

	require.NoError(t, b.Update(ctx, Standing{LearnerID: "ana", XP: 10, LongestStreak: 4}))
	require.NoError(t, b.Update(ctx, Standing{LearnerID: "ben", XP: 20, LongestStreak: 1}))

	got, err := b.Position(ctx, KindXP, "ana")
	require.NoError(t, err)
	assert.Equal(t, Entry{LearnerID: "ana", Score: 10, Rank: 2}, got)

	got, err = b.Position(ctx, KindStreak, "ana")
	require.NoError(t, err)
	assert.Equal(t, Entry{LearnerID: "ana", Score: 4, Rank: 1}, got)

	got, err = b.Position(ctx, KindXP, "zoe")
	require.NoError(t, err)
	assert.Equal(t, Entry{LearnerID: "zoe"}, got)
}

func TestStoreBoard_Position(t *testing.T) {
	s, err := store.Open("file:leaderboard-position-test?mode=memory&cache=shared")
	require.NoError(t, err)
	defer s.Close()

	repo := s.ProgressRepo()
	ctx := context.Background()
	require.NoError(t, repo.SaveLearner(ctx, &store.LearnerRecord{LearnerID: "ana", XP: 50, LongestStreak: 9}))
	require.NoError(t, repo.SaveLearner(ctx, &store.LearnerRecord{LearnerID: "ben", XP: 70, LongestStreak: 2}))
	require.NoError(t, repo.SaveLearner(ctx, &store.LearnerRecord{LearnerID: "abe", XP: 50, LongestStreak: 1}))

	b := NewStoreBoard(repo)

	// Ties rank by learner ID, matching Top.
	top, err := b.Top(ctx, KindXP, 5)
	require.NoError(t, err)
	for _, e := range top {
		got, err := b.Position(ctx, KindXP, e.LearnerID)
		require.NoError(t, err)
		assert.Equal(t, e, got)
	}

	got, err := b.Position(ctx, KindStreak, "ana")
	require.NoError(t, err)
	assert.Equal(t, Entry{LearnerID: "ana", Score: 9, Rank: 1}, got)

	got, err = b.Position(ctx, KindXP, "zoe")
	require.NoError(t, err)
	assert.Equal(t, Entry{LearnerID: "zoe"}, got)

	_, err = b.Position(ctx, Kind("hints"), "ana")
	assert.Error(t, err)
}
