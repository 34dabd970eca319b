package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/marmora-backend/internal/platform/logger"
)

// Invalidation tells every process to drop a cached scope, e.g. "settings"
// or "content:fr".
type Invalidation struct {
	Scope string `json:"scope"`
	Key   string `json:"key,omitempty"`
}

type Bus interface {
	Publish(ctx context.Context, msg Invalidation) error
	StartForwarder(ctx context.Context, onMsg func(m Invalidation)) error
	Close() error
}

type redisBus struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
}

func NewBus(log *logger.Logger, rdb *goredis.Client, channel string) Bus {
	if channel == "" {
		channel = "cache-invalidation"
	}
	return &redisBus{log: log.With("service", "RedisBus"), rdb: rdb, channel: channel}
}

func (b *redisBus) Publish(ctx context.Context, msg Invalidation) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("redis bus not initialized")
	}
	raw, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, b.channel, raw).Err()
}

func (b *redisBus) StartForwarder(ctx context.Context, onMsg func(m Invalidation)) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("redis bus not initialized")
	}
	if onMsg == nil {
		return fmt.Errorf("onMsg callback required")
	}

	sub := b.rdb.Subscribe(ctx, b.channel)

	// ensures subscription actually started
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close()
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					_ = sub.Close()
					return
				}
				var msg Invalidation
				if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
					b.log.Warn("bad redis invalidation payload", "error", err)
					continue
				}
				onMsg(msg)
			}
		}
	}()

	return nil
}

func (b *redisBus) Close() error { return nil }

type localBus struct {
	mu   sync.RWMutex
	subs []func(Invalidation)
}

// NewLocalBus delivers invalidations within this process only.
func NewLocalBus() Bus { return &localBus{} }

func (b *localBus) Publish(_ context.Context, msg Invalidation) error {
	b.mu.RLock()
	subs := append([]func(Invalidation){}, b.subs...)
	b.mu.RUnlock()
	for _, fn := range subs {
		fn(msg)
	}
	return nil
}

func (b *localBus) StartForwarder(ctx context.Context, onMsg func(m Invalidation)) error {
	if onMsg == nil {
		return fmt.Errorf("onMsg callback required")
	}
	b.mu.Lock()
	b.subs = append(b.subs, onMsg)
	b.mu.Unlock()
	return nil
}

func (b *localBus) Close() error { return nil }
