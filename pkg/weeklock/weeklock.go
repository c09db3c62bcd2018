// Package weeklock 提供按键互斥的锁，用于串行化同一员工同一 ISO 周的重算。
// 不同键之间互不阻塞。
package weeklock

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Locker 按键加锁；返回的 release 可重复调用
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// ── 进程内锁 ──

type slot struct {
	ch   chan struct{}
	refs int
}

// LocalLocker 进程内按键互斥，等待时响应 ctx 取消
type LocalLocker struct {
	mu    sync.Mutex
	slots map[string]*slot
}

// NewLocalLocker 创建进程内锁
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{slots: make(map[string]*slot)}
}

func (l *LocalLocker) Acquire(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	s, ok := l.slots[key]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		l.slots[key] = s
	}
	s.refs++
	l.mu.Unlock()

	select {
	case s.ch <- struct{}{}:
	case <-ctx.Done():
		l.drop(key, s)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-s.ch
			l.drop(key, s)
		})
	}, nil
}

func (l *LocalLocker) drop(key string, s *slot) {
	l.mu.Lock()
	s.refs--
	if s.refs == 0 {
		delete(l.slots, key)
	}
	l.mu.Unlock()
}

// size 当前持有或等待中的键数量（测试用）
func (l *LocalLocker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.slots)
}

// ── Redis 分布式锁 ──

// Store 分布式锁后端（由 pkg/redis.Client 实现）
type Store interface {
	TryLock(ctx context.Context, key, token string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key, token string) error
}

// RedisLocker 基于 SET NX 的跨实例锁，轮询直到成功或 ctx 结束
type RedisLocker struct {
	store  Store
	ttl    time.Duration
	retry  time.Duration
	logger *zap.Logger
}

// NewRedisLocker 创建分布式锁
func NewRedisLocker(store Store, ttl, retry time.Duration, logger *zap.Logger) *RedisLocker {
	if retry <= 0 {
		retry = 50 * time.Millisecond
	}
	return &RedisLocker{store: store, ttl: ttl, retry: retry, logger: logger}
}

func (r *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	token := uuid.NewString()
	ticker := time.NewTicker(r.retry)
	defer ticker.Stop()

	for {
		ok, err := r.store.TryLock(ctx, key, token, r.ttl)
		if err != nil {
			return nil, err
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// 请求 ctx 可能已取消，释放使用独立超时
			releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := r.store.Unlock(releaseCtx, key, token); err != nil {
				r.logger.Warn("释放周锁失败", zap.String("key", key), zap.Error(err))
			}
		})
	}, nil
}

// ── 组合 ──

type chain []Locker

// Chain 依次获取多把锁，释放顺序相反；任一失败则释放已持有的锁
func Chain(lockers ...Locker) Locker {
	return chain(lockers)
}

func (c chain) Acquire(ctx context.Context, key string) (func(), error) {
	releases := make([]func(), 0, len(c))
	releaseAll := func() {
		for i := len(releases) - 1; i >= 0; i-- {
			releases[i]()
		}
	}
	for _, l := range c {
		release, err := l.Acquire(ctx, key)
		if err != nil {
			releaseAll()
			return nil, err
		}
		releases = append(releases, release)
	}
	var once sync.Once
	return func() { once.Do(releaseAll) }, nil
}
