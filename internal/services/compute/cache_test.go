package compute

import (
	"context"
	"fmt"
	"testing"
	"time"

	pkgcache "OscLens/pkg/cache"
)

type nopMetrics struct {
	hits   int
	misses int
}

func (m *nopMetrics) RecordRequest(string, string)        {}
func (m *nopMetrics) RecordNormalization(string, float64) {}
func (m *nopMetrics) RecordCacheHit(string)               { m.hits++ }
func (m *nopMetrics) RecordCacheMiss(string)              { m.misses++ }
func (m *nopMetrics) RecordIngest(string)                 {}
func (m *nopMetrics) RecordError(string)                  {}
func (m *nopMetrics) RecordLatency(string, float64)       {}

func TestKey(t *testing.T) {
	got := Key("oscillator", "composite", "btc", "30")
	want := "compute:oscillator:composite:btc:30"
	if got != want {
		t.Fatalf("Key = %q, want %q", got, want)
	}
}

func TestDoCachesResult(t *testing.T) {
	m := &nopMetrics{}
	c := New(pkgcache.NewMemoryCache(), m)
	ctx := context.Background()

	calls := 0
	fn := func(ctx context.Context) (map[string]int, error) {
		calls++
		return map[string]int{"n": 42}, nil
	}

	first, err := DoTyped(ctx, c, Key("t", "a"), time.Minute, fn)
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	second, err := DoTyped(ctx, c, Key("t", "a"), time.Minute, fn)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if calls != 1 {
		t.Fatalf("fn ran %d times, want 1", calls)
	}
	if first["n"] != 42 || second["n"] != 42 {
		t.Fatalf("unexpected values: %v %v", first, second)
	}
	if m.hits != 1 || m.misses != 1 {
		t.Fatalf("hits=%d misses=%d, want 1/1", m.hits, m.misses)
	}
}

func TestDoPropagatesError(t *testing.T) {
	c := New(pkgcache.NewMemoryCache(), &nopMetrics{})

	_, err := DoTyped(context.Background(), c, Key("t", "err"), time.Minute,
		func(ctx context.Context) (int, error) {
			return 0, fmt.Errorf("upstream down")
		})
	if err == nil {
		t.Fatalf("expected error")
	}

	// errors must not be cached
	v, err := DoTyped(context.Background(), c, Key("t", "err"), time.Minute,
		func(ctx context.Context) (int, error) {
			return 7, nil
		})
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if v != 7 {
		t.Fatalf("retry value = %d, want 7", v)
	}
}

func TestInvalidate(t *testing.T) {
	c := New(pkgcache.NewMemoryCache(), &nopMetrics{})
	ctx := context.Background()
	key := Key("t", "inv")

	calls := 0
	fn := func(ctx context.Context) (int, error) {
		calls++
		return calls, nil
	}

	if _, err := DoTyped(ctx, c, key, time.Minute, fn); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := c.Invalidate(ctx, key); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	v, err := DoTyped(ctx, c, key, time.Minute, fn)
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if v != 2 {
		t.Fatalf("expected recompute after invalidate, got %d", v)
	}
}
