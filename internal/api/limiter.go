package api

import (
	"context"
	"sync"
	"time"

	"campus_scheduler/internal/config"
	"campus_scheduler/internal/domain"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// rateLimiter keeps one token bucket per client key. When a shared limiter
// is set (Redis with in-memory failover) it is consulted first and the
// local buckets only serve when it errors.
type rateLimiter struct {
	limiters sync.Map
	cfg      config.APIRateLimitConfig
	shared   domain.RateLimiter
	log      *zerolog.Logger
}

func newRateLimiter(cfg config.APIRateLimitConfig, shared domain.RateLimiter, logger *zerolog.Logger) *rateLimiter {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &rateLimiter{
		cfg:    cfg,
		shared: shared,
		log:    logger,
	}
}

func (l *rateLimiter) enabled() bool {
	return l.cfg.RPS > 0
}

// Allow reports whether key may make one more request now.
func (l *rateLimiter) Allow(ctx context.Context, key string) bool {
	if !l.enabled() {
		return true
	}

	if l.shared != nil {
		allowed, err := l.shared.CheckRateLimit(ctx, key, l.burst(), time.Second)
		if err == nil {
			return allowed
		}
		l.log.Warn().Err(err).Str("client", key).Msg("Shared rate limiter failed, using local bucket")
	}

	return l.getLimiter(key).Allow()
}

func (l *rateLimiter) burst() int {
	if l.cfg.Burst <= 0 {
		return 5
	}
	return l.cfg.Burst
}

func (l *rateLimiter) getLimiter(key string) *rate.Limiter {
	if v, ok := l.limiters.Load(key); ok {
		if lim, ok := v.(*rate.Limiter); ok {
			return lim
		}
	}

	lim := rate.NewLimiter(rate.Limit(l.cfg.RPS), l.burst())
	actual, loaded := l.limiters.LoadOrStore(key, lim)
	if loaded {
		if actualLim, ok := actual.(*rate.Limiter); ok {
			return actualLim
		}
	}
	return lim
}
