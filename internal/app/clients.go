package app

import (
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/marmora-backend/internal/clients/redis"
	"github.com/yungbote/marmora-backend/internal/platform/logger"
	"github.com/yungbote/marmora-backend/internal/platform/recaptcha"
)

type Clients struct {
	Redis        *goredis.Client
	Cache        redis.Cache
	Bus          redis.Bus
	FormLimiter  redis.Limiter
	LoginLimiter redis.Limiter
	Recaptcha    recaptcha.Verifier
	Storage      *ObjectStorage
}

// wireClients uses redis when REDIS_ADDR is set and in-process fallbacks
// otherwise.
func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	rdb, err := redis.NewClient(redis.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		Prefix:   cfg.RedisPrefix,
	})
	if err != nil {
		return Clients{}, fmt.Errorf("init redis: %w", err)
	}

	formLimit := redis.LimitConfig{Limit: cfg.FormRateLimit, Window: cfg.FormRateWindow}
	loginLimit := redis.LimitConfig{Limit: cfg.LoginRateLimit, Window: cfg.LoginRateWindow}

	out := Clients{Redis: rdb}
	if rdb != nil {
		log.Info("Redis connected", "addr", cfg.RedisAddr)
		out.Cache = redis.NewCache(log, rdb, cfg.RedisPrefix)
		out.Bus = redis.NewBus(log, rdb, cfg.RedisPrefix+":invalidate")
		out.FormLimiter = redis.NewLimiter(rdb, cfg.RedisPrefix+":rl", formLimit)
		out.LoginLimiter = redis.NewLimiter(rdb, cfg.RedisPrefix+":rl", loginLimit)
	} else {
		log.Info("REDIS_ADDR not set; using in-process cache and rate limits")
		out.Cache = redis.NewMemoryCache()
		out.Bus = redis.NewLocalBus()
		out.FormLimiter = redis.NewMemoryLimiter(formLimit)
		out.LoginLimiter = redis.NewMemoryLimiter(loginLimit)
	}

	out.Recaptcha = recaptcha.New(log, recaptcha.Config{VerifyURL: cfg.RecaptchaURL, MinScore: cfg.RecaptchaScore})

	storage, err := resolveObjectStorage(log, cfg)
	if err != nil {
		out.Close()
		return Clients{}, err
	}
	out.Storage = storage
	return out, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Bus != nil {
		_ = c.Bus.Close()
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}
