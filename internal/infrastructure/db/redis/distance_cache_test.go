package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ---------------------------------------------------------------------------
// In-memory stand-in for *redis.Client
// ---------------------------------------------------------------------------

type memKV struct {
	data   map[string]string
	ttls   map[string]time.Duration
	getErr error
}

func newMemKV() *memKV {
	return &memKV{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memKV) Get(_ context.Context, key string) *redis.StringCmd {
	if m.getErr != nil {
		return redis.NewStringResult("", m.getErr)
	}
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *memKV) Set(_ context.Context, key string, value interface{}, ttl time.Duration) *redis.StatusCmd {
	m.data[key] = value.(string)
	m.ttls[key] = ttl
	return redis.NewStatusResult("OK", nil)
}

type countingProvider struct {
	calls int
	km    float64
	err   error
}

func (p *countingProvider) Distance(context.Context, string, string) (float64, error) {
	p.calls++
	return p.km, p.err
}

func TestDistanceCache_MissThenHit(t *testing.T) {
	store := newMemKV()
	next := &countingProvider{km: 12.5}
	c := NewDistanceCache(store, next, time.Hour, zerolog.Nop())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		km, err := c.Distance(ctx, "Calgary, Alberta, Canada", " 1 Main St, Airdrie ")
		if err != nil {
			t.Fatalf("Distance returned error: %v", err)
		}
		if km != 12.5 {
			t.Fatalf("expected 12.5, got %v", km)
		}
	}
	if next.calls != 1 {
		t.Errorf("provider should be called once, got %d", next.calls)
	}
	key := "distance:calgary, alberta, canada|1 main st, airdrie"
	if store.ttls[key] != time.Hour {
		t.Errorf("expected key %q cached for 1h, got %v", key, store.ttls)
	}
}

func TestDistanceCache_ProviderErrorNotCached(t *testing.T) {
	store := newMemKV()
	next := &countingProvider{err: errors.New("no route")}
	c := NewDistanceCache(store, next, 0, zerolog.Nop())

	if _, err := c.Distance(context.Background(), "a", "b"); err == nil {
		t.Fatal("expected provider error")
	}
	if len(store.data) != 0 {
		t.Errorf("errors must not be cached")
	}
}

func TestDistanceCache_ReadFailureFallsThrough(t *testing.T) {
	store := newMemKV()
	store.getErr = errors.New("connection refused")
	next := &countingProvider{km: 3}
	c := NewDistanceCache(store, next, 0, zerolog.Nop())

	km, err := c.Distance(context.Background(), "a", "b")
	if err != nil || km != 3 {
		t.Fatalf("expected fallback to provider, got %v %v", km, err)
	}
}
