// Package ratelimit throttles contact submissions per client.
package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// Limiter reports whether key may make another request now. When Allow
// returns an error the bool still holds the decision to apply; callers
// should log the error and carry on.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

const (
	idleTTL    = 10 * time.Minute
	pruneAbove = 1024
)

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Memory keeps one token bucket per key in process.
type Memory struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	limit   rate.Limit
	burst   int
	now     func() time.Time
}

// NewMemory allows perMinute requests per key with bursts of up to burst.
func NewMemory(perMinute, burst int) *Memory {
	if burst < 1 {
		burst = 1
	}
	limit := rate.Inf
	if perMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(perMinute))
	}
	return &Memory{
		buckets: make(map[string]*bucket),
		limit:   limit,
		burst:   burst,
		now:     time.Now,
	}
}

func (m *Memory) Allow(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	b, ok := m.buckets[key]
	if !ok {
		if len(m.buckets) >= pruneAbove {
			m.prune(now)
		}
		b = &bucket{limiter: rate.NewLimiter(m.limit, m.burst)}
		m.buckets[key] = b
	}
	b.lastSeen = now
	return b.limiter.AllowN(now, 1), nil
}

// prune drops buckets idle long enough to have refilled. Callers hold mu.
func (m *Memory) prune(now time.Time) {
	for k, b := range m.buckets {
		if now.Sub(b.lastSeen) > idleTTL {
			delete(m.buckets, k)
		}
	}
}

func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.buckets)
}

const keyPrefix = "portfolio:ratelimit:"

// Redis is a fixed one-minute window shared by every instance using the same
// server. Redis failures fail open.
type Redis struct {
	client *redis.Client
	limit  int64
	window time.Duration
	now    func() time.Time
}

// NewRedis allows perMinute+burst requests per key per minute. A perMinute of
// zero or less disables the limit, as it does for Memory.
func NewRedis(client *redis.Client, perMinute, burst int) *Redis {
	limit := int64(perMinute + burst)
	if perMinute <= 0 {
		limit = 0
	}
	return &Redis{
		client: client,
		limit:  limit,
		window: time.Minute,
		now:    time.Now,
	}
}

func (r *Redis) Allow(ctx context.Context, key string) (bool, error) {
	if r.limit <= 0 {
		return true, nil
	}

	window := r.now().UnixNano() / int64(r.window)
	k := keyPrefix + key + ":" + strconv.FormatInt(window, 10)

	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.Expire(ctx, k, 2*r.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return true, fmt.Errorf("rate limit %s: %w", key, err)
	}
	return incr.Val() <= r.limit, nil
}
