package auth

import (
	"context"
	"sync"
	"time"
)

// Limits はログイン試行の制限値です。MaxAttempts が 0 以下なら制限しません。
type Limits struct {
	MaxAttempts int
	Window      time.Duration
	LockFor     time.Duration
}

// Enabled は制限が有効かどうかを返します。
func (l Limits) Enabled() bool { return l.MaxAttempts > 0 }

// AttemptStore はクライアントごとのログイン失敗回数を保持します。
type AttemptStore interface {
	// LockedFor はロック中であれば残り時間を返します。ロックされていなければ 0 です。
	LockedFor(ctx context.Context, key string) (time.Duration, error)
	// RecordFailure は失敗を 1 回記録し、ロックまでの残り回数を返します。
	RecordFailure(ctx context.Context, key string) (int, error)
	Reset(ctx context.Context, key string) error
}

type attemptState struct {
	Count        int       `json:"count"`
	FirstAttempt time.Time `json:"firstAttempt"`
	LockedUntil  time.Time `json:"lockedUntil"`
}

// fail は失敗を記録した後の状態と残り回数を返します。
func (l Limits) fail(state *attemptState, now time.Time) int {
	lockExpired := !state.LockedUntil.IsZero() && !now.Before(state.LockedUntil)
	if state.FirstAttempt.IsZero() || now.Sub(state.FirstAttempt) > l.Window || lockExpired {
		*state = attemptState{FirstAttempt: now}
	}

	state.Count++
	if state.Count >= l.MaxAttempts {
		state.LockedUntil = now.Add(l.LockFor)
		state.Count = l.MaxAttempts
	}

	remaining := l.MaxAttempts - state.Count
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

// MemoryAttempts はプロセス内のマップで失敗回数を保持します。
type MemoryAttempts struct {
	limits   Limits
	now      func() time.Time
	lock     sync.Mutex
	attempts map[string]*attemptState
}

func NewMemoryAttempts(limits Limits) *MemoryAttempts {
	return &MemoryAttempts{
		limits:   limits,
		now:      time.Now,
		attempts: make(map[string]*attemptState),
	}
}

func (m *MemoryAttempts) LockedFor(_ context.Context, key string) (time.Duration, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	state, ok := m.attempts[key]
	if !ok {
		return 0, nil
	}
	now := m.now()
	if !now.Before(state.LockedUntil) {
		return 0, nil
	}
	return state.LockedUntil.Sub(now), nil
}

func (m *MemoryAttempts) RecordFailure(_ context.Context, key string) (int, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	state, ok := m.attempts[key]
	if !ok {
		state = &attemptState{}
		m.attempts[key] = state
	}
	return m.limits.fail(state, m.now()), nil
}

func (m *MemoryAttempts) Reset(_ context.Context, key string) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	delete(m.attempts, key)
	return nil
}
