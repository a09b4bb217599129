package main

import (
	"context"
	"fmt"

	redis "github.com/redis/go-redis/v9"

	"github.com/yourusername/blog-forge/internal/auth"
	"github.com/yourusername/blog-forge/internal/config"
	"github.com/yourusername/blog-forge/internal/logutil"
)

// setupAttempts はログイン試行制限の保存先を用意します。
// 制限が無効なら nil を返し、REDIS_URL が設定されていれば Redis を使います。
func setupAttempts(ctx context.Context, cfg *config.Config) (auth.AttemptStore, func(), error) {
	noop := func() {}
	limits := auth.Limits{
		MaxAttempts: cfg.MaxLoginAttempts,
		Window:      cfg.LoginWindow,
		LockFor:     cfg.LoginLockout,
	}
	if !limits.Enabled() {
		return nil, noop, nil
	}
	if cfg.RedisURL == "" {
		return auth.NewMemoryAttempts(limits), noop, nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, noop, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	redisClient := redis.NewClient(opt)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		_ = redisClient.Close()
		return nil, noop, fmt.Errorf("connect redis: %w", err)
	}
	log := logutil.GetOrDefault(ctx)
	log.Info().Str("redis.addr", opt.Addr).Msg("Login attempts are stored in Redis")
	return auth.NewRedisAttempts(redisClient, limits), func() { _ = redisClient.Close() }, nil
}
