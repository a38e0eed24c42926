package snapshot

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/zahid-01/Running-Tracker/internal/config"
)

// Open builds the Store selected by cfg.SnapshotBackend. The returned close
// function releases any connections held by the store.
func Open(ctx context.Context, cfg config.Config, logger *zap.Logger) (Store, func(), error) {
	noop := func() {}
	switch cfg.SnapshotBackend {
	case config.BackendMemory:
		return NewMemoryStore(), noop, nil

	case config.BackendFile:
		store, err := NewFileStore(cfg.SnapshotDir)
		if err != nil {
			return nil, noop, err
		}
		return store, noop, nil

	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			client.Close()
			return nil, noop, fmt.Errorf("connect to redis: %w", err)
		}
		return NewRedisStore(client), func() { _ = client.Close() }, nil

	case config.BackendPostgres:
		connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		pool, err := pgxpool.New(connectCtx, cfg.PostgresURL)
		if err != nil {
			return nil, noop, fmt.Errorf("connect to postgres: %w", err)
		}
		if err := pool.Ping(connectCtx); err != nil {
			pool.Close()
			return nil, noop, fmt.Errorf("ping postgres: %w", err)
		}
		store := NewPostgresStore(pool)
		if err := store.EnsureSchema(connectCtx); err != nil {
			pool.Close()
			return nil, noop, fmt.Errorf("ensure snapshot schema: %w", err)
		}
		return store, pool.Close, nil

	default:
		return nil, noop, fmt.Errorf("unknown snapshot backend %q", cfg.SnapshotBackend)
	}
}
