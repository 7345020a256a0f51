package rpcd

import (
	"context"
	"sort"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/ayrahq/ayra/internal/clock"
)

// RateLimit is a token bucket configuration.
type RateLimit struct {
	// RequestsPerSecond is the refill rate.
	RequestsPerSecond float64

	// Burst is the bucket capacity.
	Burst int
}

// DefaultRateLimits are the per-method limits. Play limits stream creation,
// not reveal messages.
var DefaultRateLimits = map[string]RateLimit{
	MethodPlay:          {RequestsPerSecond: 5, Burst: 10},
	MethodAsk:           {RequestsPerSecond: 20, Burst: 40},
	MethodListScenarios: {RequestsPerSecond: 100, Burst: 200},
}

type tokenBucket struct {
	clock clock.Clock

	mu         sync.Mutex
	tokens     float64
	lastUpdate time.Time
	rate       float64
	capacity   float64
	requests   int64
	denied     int64
}

func newTokenBucket(cfg RateLimit, clk clock.Clock) *tokenBucket {
	return &tokenBucket{
		clock:      clk,
		tokens:     float64(cfg.Burst),
		lastUpdate: clk.Now(),
		rate:       cfg.RequestsPerSecond,
		capacity:   float64(cfg.Burst),
	}
}

// refillLocked must be called with mu held.
func (tb *tokenBucket) refillLocked() {
	now := tb.clock.Now()
	tb.tokens += now.Sub(tb.lastUpdate).Seconds() * tb.rate
	if tb.tokens > tb.capacity {
		tb.tokens = tb.capacity
	}
	tb.lastUpdate = now
}

func (tb *tokenBucket) allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.requests++
	tb.refillLocked()
	if tb.tokens >= 1 {
		tb.tokens--
		return true
	}
	tb.denied++
	return false
}

func (tb *tokenBucket) stats() (available float64, requests, denied int64) {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.refillLocked()
	return tb.tokens, tb.requests, tb.denied
}

// RateLimiter holds one bucket per method plus an optional global bucket.
type RateLimiter struct {
	clock clock.Clock

	mu      sync.RWMutex
	enabled bool
	limits  map[string]RateLimit
	buckets map[string]*tokenBucket
	global  *tokenBucket
}

// RateLimiterOption configures a RateLimiter.
type RateLimiterOption func(*RateLimiter)

// WithMethodLimits overrides or adds per-method limits.
func WithMethodLimits(limits map[string]RateLimit) RateLimiterOption {
	return func(rl *RateLimiter) {
		for method, cfg := range limits {
			rl.limits[method] = cfg
		}
	}
}

// WithGlobalLimit adds a bucket shared by every method.
func WithGlobalLimit(cfg RateLimit) RateLimiterOption {
	return func(rl *RateLimiter) {
		rl.global = newTokenBucket(cfg, rl.clock)
	}
}

// WithEnabled turns limiting on or off.
func WithEnabled(enabled bool) RateLimiterOption {
	return func(rl *RateLimiter) {
		rl.enabled = enabled
	}
}

// WithLimiterClock sets the clock used for refills. It must come before
// WithGlobalLimit.
func WithLimiterClock(c clock.Clock) RateLimiterOption {
	return func(rl *RateLimiter) {
		if c != nil {
			rl.clock = c
		}
	}
}

// NewRateLimiter creates a limiter seeded with DefaultRateLimits.
func NewRateLimiter(opts ...RateLimiterOption) *RateLimiter {
	rl := &RateLimiter{
		clock:   clock.Real(),
		enabled: true,
		limits:  make(map[string]RateLimit, len(DefaultRateLimits)),
		buckets: make(map[string]*tokenBucket),
	}
	for method, cfg := range DefaultRateLimits {
		rl.limits[method] = cfg
	}
	for _, opt := range opts {
		opt(rl)
	}
	return rl
}

// Allow reports whether a call to method may proceed and consumes a token.
// Methods without a configured limit are only subject to the global bucket.
func (rl *RateLimiter) Allow(method string) bool {
	if !rl.Enabled() {
		return true
	}
	if rl.global != nil && !rl.global.allow() {
		return false
	}
	bucket := rl.bucket(method)
	if bucket == nil {
		return true
	}
	return bucket.allow()
}

func (rl *RateLimiter) bucket(method string) *tokenBucket {
	rl.mu.RLock()
	bucket, ok := rl.buckets[method]
	rl.mu.RUnlock()
	if ok {
		return bucket
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if bucket, ok = rl.buckets[method]; ok {
		return bucket
	}
	cfg, ok := rl.limits[method]
	if !ok {
		return nil
	}
	bucket = newTokenBucket(cfg, rl.clock)
	rl.buckets[method] = bucket
	return bucket
}

// SetEnabled turns limiting on or off at runtime.
func (rl *RateLimiter) SetEnabled(enabled bool) {
	rl.mu.Lock()
	rl.enabled = enabled
	rl.mu.Unlock()
}

// Enabled reports whether limiting is on.
func (rl *RateLimiter) Enabled() bool {
	rl.mu.RLock()
	defer rl.mu.RUnlock()
	return rl.enabled
}

// MethodStats summarizes one bucket.
type MethodStats struct {
	Method    string
	Available float64
	Requests  int64
	Denied    int64
}

// Stats returns per-method statistics sorted by method name.
func (rl *RateLimiter) Stats() []MethodStats {
	rl.mu.RLock()
	defer rl.mu.RUnlock()

	stats := make([]MethodStats, 0, len(rl.limits))
	for method, cfg := range rl.limits {
		ms := MethodStats{Method: method, Available: float64(cfg.Burst)}
		if bucket, ok := rl.buckets[method]; ok {
			ms.Available, ms.Requests, ms.Denied = bucket.stats()
		}
		stats = append(stats, ms)
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Method < stats[j].Method })
	return stats
}

// UnaryServerInterceptor rejects calls over the limit with ResourceExhausted.
func (rl *RateLimiter) UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if !rl.Allow(info.FullMethod) {
			return nil, status.Errorf(codes.ResourceExhausted, "rate limit exceeded for method %s", info.FullMethod)
		}
		return handler(ctx, req)
	}
}

// StreamServerInterceptor limits the rate of stream creation.
func (rl *RateLimiter) StreamServerInterceptor() grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		if !rl.Allow(info.FullMethod) {
			return status.Errorf(codes.ResourceExhausted, "rate limit exceeded for stream %s", info.FullMethod)
		}
		return handler(srv, ss)
	}
}
