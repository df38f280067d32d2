package cmd

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/abhisek/studyforge/internal/leaderboard"
	"github.com/abhisek/studyforge/internal/progress"
	"github.com/abhisek/studyforge/internal/store"
)

// runtime bundles the handles a command needs. Close releases them.
type runtime struct {
	store  *store.Store
	redis  *redis.Client
	engine *progress.Engine
}

// openRuntime opens the store, picks a leaderboard backend and builds the
// engine. Redis is used when redis.addr is configured; otherwise rankings
// are read from the database.
func openRuntime(ctx context.Context, o *globalOptions) (*runtime, error) {
	dbPath, err := o.resolveDBPath()
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	rt := &runtime{store: st}
	repo := st.ProgressRepo()

	var board leaderboard.Board = leaderboard.NewStoreBoard(repo)
	if addr := o.cfg.Redis.Addr; addr != "" {
		rt.redis = redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: o.cfg.Redis.Password,
			DB:       o.cfg.Redis.DB,
		})
		if err := rt.redis.Ping(ctx).Err(); err != nil {
			o.logger.Warn("redis unreachable, leaderboard updates will be retried on each answer", "addr", addr, "error", err)
		}
		board = leaderboard.NewRedisBoard(rt.redis)
	}

	rt.engine = progress.NewEngine(repo, progress.Options{
		QueueLimit:       o.cfg.Engine.QueueLimit,
		StrictInvariants: o.cfg.Engine.StrictInvariants,
		Board:            board,
		Logger:           o.logger,
	})
	o.logger.Debug("store opened", "path", dbPath, "redis", o.cfg.Redis.Addr != "")
	return rt, nil
}

func (rt *runtime) Close() error {
	if rt.redis != nil {
		rt.redis.Close()
	}
	return rt.store.Close()
}
