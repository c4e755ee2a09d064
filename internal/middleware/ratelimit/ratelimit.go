// Package ratelimit throttles clients with a token bucket per key.
package ratelimit

import (
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"streamtally/internal/cache"
)

// Limiter hands out one token bucket per client key. Idle buckets expire
// from a bounded LRU so the visitor set cannot grow without limit.
type Limiter struct {
	visitors *cache.LRUCache[*rate.Limiter]
	interval time.Duration
	burst    int
	hits     atomic.Int64
}

// Config holds rate limiter configuration
type Config struct {
	RequestsPerMinute int
	// MaxClients bounds the number of tracked clients.
	MaxClients int
	// IdleTTL drops a client's bucket after this long without requests.
	IdleTTL time.Duration
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		RequestsPerMinute: 60,
		MaxClients:        10000,
		IdleTTL:           10 * time.Minute,
	}
}

// NewLimiter creates a new rate limiter
func NewLimiter(config Config) *Limiter {
	def := DefaultConfig()
	if config.RequestsPerMinute <= 0 {
		config.RequestsPerMinute = def.RequestsPerMinute
	}
	if config.MaxClients <= 0 {
		config.MaxClients = def.MaxClients
	}
	if config.IdleTTL <= 0 {
		config.IdleTTL = def.IdleTTL
	}
	return &Limiter{
		visitors: cache.NewLRUCache[*rate.Limiter](config.MaxClients, config.IdleTTL),
		interval: time.Minute / time.Duration(config.RequestsPerMinute),
		burst:    config.RequestsPerMinute,
	}
}

// Allow reports whether a request from key may proceed now.
func (rl *Limiter) Allow(key string) bool {
	lim := rl.visitors.GetOrCreate(key, func() *rate.Limiter {
		return rate.NewLimiter(rate.Every(rl.interval), rl.burst)
	})
	if lim.Allow() {
		return true
	}
	rl.hits.Add(1)
	return false
}

// RetryAfter is the number of whole seconds until one token refills.
func (rl *Limiter) RetryAfter() int {
	return int((rl.interval + time.Second - 1) / time.Second)
}

// Visitors exposes the bucket cache so its expired entries can be swept.
func (rl *Limiter) Visitors() cache.Cleaner {
	return rl.visitors
}

// Metrics for monitoring rate limit performance
type Metrics struct {
	TotalHits   int64
	ClientCount int64
}

// GetMetrics returns current rate limiting metrics
func (rl *Limiter) GetMetrics() Metrics {
	return Metrics{
		TotalHits:   rl.hits.Load(),
		ClientCount: int64(rl.visitors.Size()),
	}
}

// Middleware throttles mutating requests. Safe methods pass through.
func (rl *Limiter) Middleware(extractIP func(*http.Request) string, onLimit func(http.ResponseWriter, *http.Request)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}

			if !rl.Allow(extractIP(r)) {
				w.Header().Set("Retry-After", strconv.Itoa(rl.RetryAfter()))
				if onLimit != nil {
					onLimit(w, r)
				} else {
					http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
				}
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
