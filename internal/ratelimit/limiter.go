package ratelimit

import (
	"context"

	redis "github.com/redis/go-redis/v9"
	"github.com/stockroomhq/stockroom/internal/config"
)

// Limiter is the per-client request limiter the HTTP layer consults. It is
// disabled, and allows everything, when no redis address is configured.
type Limiter struct {
	bucket *TokenBucket
	rate   float64
	burst  int
}

func NewLimiter(cfg config.Config) *Limiter {
	if cfg.Redis.Addr == "" {
		return &Limiter{}
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	return &Limiter{
		bucket: NewTokenBucket(client),
		rate:   float64(cfg.RateLimitPerMinute) / 60,
		burst:  cfg.RateLimitBurst,
	}
}

func (l *Limiter) Enabled() bool {
	return l != nil && l.bucket != nil
}

func (l *Limiter) Allow(ctx context.Context, key string) (Result, error) {
	if !l.Enabled() {
		return Result{Allowed: true}, nil
	}
	return l.bucket.Allow(ctx, "ratelimit:"+key, l.rate, l.burst)
}
