package redis

import (
	"context"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Limiter is a fixed-window counter: at most Limit hits per key per Window.
type Limiter interface {
	// Allow records a hit. When the hit is over the limit it returns false and
	// the time until the window resets.
	Allow(ctx context.Context, key string) (bool, time.Duration, error)
}

type LimitConfig struct {
	Limit  int
	Window time.Duration
}

type redisLimiter struct {
	rdb    *goredis.Client
	prefix string
	cfg    LimitConfig
}

func NewLimiter(rdb *goredis.Client, prefix string, cfg LimitConfig) Limiter {
	return &redisLimiter{rdb: rdb, prefix: prefix, cfg: cfg}
}

func (l *redisLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	if l.cfg.Limit <= 0 {
		return true, 0, nil
	}
	k := prefixed(l.prefix, "rl:"+key)
	pipe := l.rdb.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.ExpireNX(ctx, k, l.cfg.Window)
	ttl := pipe.PTTL(ctx, k)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, err
	}
	if incr.Val() > int64(l.cfg.Limit) {
		wait := ttl.Val()
		if wait < 0 {
			wait = l.cfg.Window
		}
		return false, wait, nil
	}
	return true, 0, nil
}

type window struct {
	count int
	reset time.Time
}

type memoryLimiter struct {
	mu      sync.Mutex
	cfg     LimitConfig
	windows map[string]*window
	now     func() time.Time
}

func NewMemoryLimiter(cfg LimitConfig) Limiter {
	return &memoryLimiter{cfg: cfg, windows: map[string]*window{}, now: time.Now}
}

func (l *memoryLimiter) Allow(_ context.Context, key string) (bool, time.Duration, error) {
	if l.cfg.Limit <= 0 {
		return true, 0, nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[key]
	if !ok || !now.Before(w.reset) {
		w = &window{reset: now.Add(l.cfg.Window)}
		l.windows[key] = w
		l.sweep(now)
	}
	w.count++
	if w.count > l.cfg.Limit {
		return false, w.reset.Sub(now), nil
	}
	return true, 0, nil
}

// sweep drops expired windows so the map does not grow with every client IP.
func (l *memoryLimiter) sweep(now time.Time) {
	if len(l.windows) < 1024 {
		return
	}
	for k, w := range l.windows {
		if !now.Before(w.reset) {
			delete(l.windows, k)
		}
	}
}
