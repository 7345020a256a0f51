package rpcd

import (
	"context"
	"sync"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/ayrahq/ayra/internal/clock"
)

var epoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func TestTokenBucketBurstAndRefill(t *testing.T) {
	fake := clock.NewFake(epoch)
	bucket := newTokenBucket(RateLimit{RequestsPerSecond: 10, Burst: 5}, fake)

	for i := 0; i < 5; i++ {
		if !bucket.allow() {
			t.Fatalf("request %d should be allowed within burst", i)
		}
	}
	if bucket.allow() {
		t.Fatal("request 6 should be denied once the burst is spent")
	}

	fake.Advance(100 * time.Millisecond)
	if !bucket.allow() {
		t.Fatal("one token should be refilled after 100ms at 10/s")
	}
	if bucket.allow() {
		t.Fatal("only one token should have been refilled")
	}

	// Refill is capped at the burst size.
	fake.Advance(time.Hour)
	available, requests, denied := bucket.stats()
	if available != 5 {
		t.Fatalf("available = %.2f, want 5", available)
	}
	if requests != 8 || denied != 2 {
		t.Fatalf("requests/denied = %d/%d, want 8/2", requests, denied)
	}
}

func TestRateLimiterDefaults(t *testing.T) {
	rl := NewRateLimiter()
	if !rl.Enabled() {
		t.Fatal("rate limiter should be enabled by default")
	}
	for method := range DefaultRateLimits {
		if !rl.Allow(method) {
			t.Errorf("first request to %s should be allowed", method)
		}
	}
	if !rl.Allow("/ayra.v1.Playback/Unknown") {
		t.Error("methods without a limit should be allowed")
	}
}

func TestRateLimiterDisabled(t *testing.T) {
	rl := NewRateLimiter(WithEnabled(false), WithMethodLimits(map[string]RateLimit{
		MethodPlay: {RequestsPerSecond: 1, Burst: 1},
	}))
	for i := 0; i < 100; i++ {
		if !rl.Allow(MethodPlay) {
			t.Fatalf("request %d should be allowed while disabled", i)
		}
	}

	rl.SetEnabled(true)
	rl.Allow(MethodPlay)
	if rl.Allow(MethodPlay) {
		t.Fatal("limit should apply after SetEnabled(true)")
	}
}

func TestRateLimiterGlobalLimit(t *testing.T) {
	fake := clock.NewFake(epoch)
	rl := NewRateLimiter(
		WithLimiterClock(fake),
		WithGlobalLimit(RateLimit{RequestsPerSecond: 1, Burst: 3}),
	)

	allowed := 0
	for _, method := range []string{MethodAsk, MethodListScenarios, MethodPlay, MethodAsk} {
		if rl.Allow(method) {
			allowed++
		}
	}
	if allowed != 3 {
		t.Fatalf("allowed = %d, want 3 (global burst)", allowed)
	}
}

func TestRateLimiterStats(t *testing.T) {
	fake := clock.NewFake(epoch)
	rl := NewRateLimiter(WithLimiterClock(fake), WithMethodLimits(map[string]RateLimit{
		MethodAsk: {RequestsPerSecond: 1, Burst: 2},
	}))
	for i := 0; i < 3; i++ {
		rl.Allow(MethodAsk)
	}

	stats := rl.Stats()
	if len(stats) != len(DefaultRateLimits) {
		t.Fatalf("stats = %d entries, want %d", len(stats), len(DefaultRateLimits))
	}
	for i := 1; i < len(stats); i++ {
		if stats[i-1].Method > stats[i].Method {
			t.Fatalf("stats not sorted: %q before %q", stats[i-1].Method, stats[i].Method)
		}
	}
	for _, st := range stats {
		if st.Method != MethodAsk {
			continue
		}
		if st.Requests != 3 || st.Denied != 1 {
			t.Fatalf("ask stats = %+v, want 3 requests and 1 denied", st)
		}
	}
}

func TestRateLimiterConcurrent(t *testing.T) {
	rl := NewRateLimiter(WithLimiterClock(clock.NewFake(epoch)), WithMethodLimits(map[string]RateLimit{
		MethodAsk: {RequestsPerSecond: 1, Burst: 50},
	}))

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if rl.Allow(MethodAsk) {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowed != 50 {
		t.Fatalf("allowed = %d, want exactly the burst of 50", allowed)
	}
}

func TestUnaryServerInterceptor(t *testing.T) {
	rl := NewRateLimiter(WithLimiterClock(clock.NewFake(epoch)), WithMethodLimits(map[string]RateLimit{
		MethodAsk: {RequestsPerSecond: 1, Burst: 1},
	}))
	interceptor := rl.UnaryServerInterceptor()
	info := &grpc.UnaryServerInfo{FullMethod: MethodAsk}
	handler := func(ctx context.Context, req any) (any, error) { return "ok", nil }

	resp, err := interceptor(context.Background(), nil, info, handler)
	if err != nil || resp != "ok" {
		t.Fatalf("first call = %v, %v; want ok", resp, err)
	}

	_, err = interceptor(context.Background(), nil, info, handler)
	if status.Code(err) != codes.ResourceExhausted {
		t.Fatalf("second call code = %v, want ResourceExhausted", status.Code(err))
	}
}

type mockServerStream struct {
	grpc.ServerStream
}

func (mockServerStream) Context() context.Context { return context.Background() }

func TestStreamServerInterceptor(t *testing.T) {
	rl := NewRateLimiter(WithLimiterClock(clock.NewFake(epoch)), WithMethodLimits(map[string]RateLimit{
		MethodPlay: {RequestsPerSecond: 1, Burst: 1},
	}))
	interceptor := rl.StreamServerInterceptor()
	info := &grpc.StreamServerInfo{FullMethod: MethodPlay, IsServerStream: true}
	handler := func(srv any, stream grpc.ServerStream) error { return nil }

	if err := interceptor(nil, mockServerStream{}, info, handler); err != nil {
		t.Fatalf("first stream error = %v", err)
	}
	err := interceptor(nil, mockServerStream{}, info, handler)
	if status.Code(err) != codes.ResourceExhausted {
		t.Fatalf("second stream code = %v, want ResourceExhausted", status.Code(err))
	}
}
