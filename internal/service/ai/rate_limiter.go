package ai

import (
	"context"
	"sync"

	"golang.org/x/time/rate"

	"mutarjim/internal/logger"
)

// RateLimiter guards outbound AI calls with a process-wide QPS ceiling.
// A non-positive QPS means unlimited.
type RateLimiter struct {
	limiter *rate.Limiter
	mu      sync.RWMutex
}

// NewRateLimiter creates a new rate limiter with the given QPS.
func NewRateLimiter(qps int) *RateLimiter {
	return &RateLimiter{limiter: newLimiter(qps)}
}

func newLimiter(qps int) *rate.Limiter {
	if qps <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Limit(qps), qps) // burst = qps
}

// Wait blocks until a token is available or context is cancelled.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.RLock()
	limiter := r.limiter
	r.mu.RUnlock()
	return limiter.Wait(ctx)
}

// SetLimit updates the rate limit dynamically.
func (r *RateLimiter) SetLimit(qps int) {
	r.mu.Lock()
	r.limiter = newLimiter(qps)
	r.mu.Unlock()
	logger.Info("ai rate limit updated", "module", "ai", "action", "update", "resource", "ai", "result", "ok", "qps", qps)
}

// GetLimit returns the current rate limit, 0 when unlimited.
func (r *RateLimiter) GetLimit() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.limiter.Limit() == rate.Inf {
		return 0
	}
	return int(r.limiter.Limit())
}
