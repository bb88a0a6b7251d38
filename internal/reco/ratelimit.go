package reco

import (
	"time"

	"github.com/5ivekayri/DWv2/internal/cache"
)

// RateLimiter is a fixed-window counter built on the cache primitive,
// mirroring the Redis INCR+EXPIRE idiom: the first hit in a window creates
// the counter and arms its expiry, subsequent hits only increment.
type RateLimiter struct {
	cache  *cache.Cache
	key    string
	max    int64
	window time.Duration
}

// NewRateLimiter allows max requests per window under the given cache key.
func NewRateLimiter(c *cache.Cache, key string, max int64, window time.Duration) *RateLimiter {
	return &RateLimiter{
		cache:  c,
		key:    key,
		max:    max,
		window: window,
	}
}

// Allow consumes one slot and reports whether the request may proceed.
func (r *RateLimiter) Allow() bool {
	n := r.cache.Incr(r.key)
	if n == 1 {
		r.cache.Expire(r.key, r.window)
	}
	return n <= r.max
}

// Remaining returns how many requests are left in the current window.
func (r *RateLimiter) Remaining() int64 {
	if r.cache.TTL(r.key) == -2 {
		return r.max
	}
	v, ok := r.cache.Get(r.key)
	if !ok {
		return r.max
	}
	n, _ := v.(int64)
	left := r.max - n
	if left < 0 {
		return 0
	}
	return left
}
