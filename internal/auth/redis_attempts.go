package auth

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const attemptKeyPrefix = "login_attempts:"

// RedisAttempts は失敗回数を Redis に保存します。複数プロセスで制限を共有できます。
type RedisAttempts struct {
	rdb    *redis.Client
	limits Limits
	now    func() time.Time
}

func NewRedisAttempts(rdb *redis.Client, limits Limits) *RedisAttempts {
	return &RedisAttempts{rdb: rdb, limits: limits, now: time.Now}
}

func (s *RedisAttempts) ttl() time.Duration {
	if s.limits.LockFor > s.limits.Window {
		return s.limits.LockFor
	}
	return s.limits.Window
}

func (s *RedisAttempts) LockedFor(ctx context.Context, key string) (time.Duration, error) {
	state, err := s.load(ctx, s.rdb, attemptKey(key))
	if err != nil || state == nil {
		return 0, err
	}
	now := s.now()
	if !now.Before(state.LockedUntil) {
		return 0, nil
	}
	return state.LockedUntil.Sub(now), nil
}

// RecordFailure は WATCH による楽観ロックで状態を更新します。競合した場合はやり直します。
func (s *RedisAttempts) RecordFailure(ctx context.Context, key string) (int, error) {
	rkey := attemptKey(key)
	for {
		var remaining int
		err := s.rdb.Watch(ctx, func(tx *redis.Tx) error {
			state, err := s.load(ctx, tx, rkey)
			if err != nil {
				return err
			}
			if state == nil {
				state = &attemptState{}
			}
			remaining = s.limits.fail(state, s.now())

			payload, err := json.Marshal(state)
			if err != nil {
				return err
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, rkey, payload, s.ttl())
				return nil
			})
			return err
		}, rkey)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return remaining, err
	}
}

func (s *RedisAttempts) Reset(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, attemptKey(key)).Err()
}

type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (s *RedisAttempts) load(ctx context.Context, c stringGetter, key string) (*attemptState, error) {
	data, err := c.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var state attemptState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func attemptKey(key string) string {
	return attemptKeyPrefix + key
}
