package bucket

import (
	"container/list"
	"context"
	"hash/fnv"
	"sync"
	"time"

	"votecheck/internal/ratelimit/models"
)

const (
	defaultShardCount         = 32
	defaultMaxBucketsPerShard = 10_000
)

// InMemoryBucketStore implements a sliding-window limiter local to this
// process. Keys are spread over shards, each bounded by an LRU so that a flood
// of distinct client IPs cannot grow memory without limit.
type InMemoryBucketStore struct {
	shards      []*shard
	maxPerShard int
	now         func() time.Time
}

type shard struct {
	mu      sync.Mutex
	buckets map[string]*list.Element
	lru     *list.List // front = most recently used
}

type entry struct {
	key    string
	window *slidingWindow
}

// slidingWindow tracks request timestamps for sliding window rate limiting.
type slidingWindow struct {
	timestamps []time.Time
	window     time.Duration
}

// Option configures the in-memory store.
type Option func(*InMemoryBucketStore)

// WithMaxBucketsPerShard bounds how many keys each shard keeps.
func WithMaxBucketsPerShard(n int) Option {
	return func(s *InMemoryBucketStore) {
		if n > 0 {
			s.maxPerShard = n
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *InMemoryBucketStore) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates an in-memory bucket store.
func New(opts ...Option) *InMemoryBucketStore {
	s := &InMemoryBucketStore{
		shards:      make([]*shard, defaultShardCount),
		maxPerShard: defaultMaxBucketsPerShard,
		now:         time.Now,
	}
	for i := range s.shards {
		s.shards[i] = &shard{buckets: make(map[string]*list.Element), lru: list.New()}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Allow checks if a request is allowed and increments the counter.
func (s *InMemoryBucketStore) Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.RateLimitResult, error) {
	return s.AllowN(ctx, key, 1, limit, window)
}

// AllowN checks if a request with custom cost is allowed.
func (s *InMemoryBucketStore) AllowN(_ context.Context, key string, cost int, limit int, window time.Duration) (*models.RateLimitResult, error) {
	sh := s.shardFor(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	now := s.now()
	sw := s.getOrCreateBucket(sh, key, window)
	sw.cleanup(now)

	if len(sw.timestamps)+cost <= limit {
		for range cost {
			sw.timestamps = append(sw.timestamps, now)
		}
		return &models.RateLimitResult{
			Allowed:   true,
			Limit:     limit,
			Remaining: limit - len(sw.timestamps),
			ResetAt:   sw.timestamps[0].Add(window),
		}, nil
	}

	resetAt := now.Add(window)
	if len(sw.timestamps) > 0 {
		resetAt = sw.timestamps[0].Add(window)
	}
	return &models.RateLimitResult{
		Allowed:    false,
		Limit:      limit,
		Remaining:  0,
		ResetAt:    resetAt,
		RetryAfter: retryAfterSeconds(resetAt.Sub(now)),
	}, nil
}

// Reset clears the rate limit counter for a key.
func (s *InMemoryBucketStore) Reset(_ context.Context, key string) error {
	sh := s.shardFor(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if el, ok := sh.buckets[key]; ok {
		sh.lru.Remove(el)
		delete(sh.buckets, key)
	}
	return nil
}

// GetCurrentCount returns the current request count for a key.
func (s *InMemoryBucketStore) GetCurrentCount(_ context.Context, key string) (int, error) {
	sh := s.shardFor(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	el, ok := sh.buckets[key]
	if !ok {
		return 0, nil
	}
	sw := el.Value.(*entry).window
	sw.cleanup(s.now())
	return len(sw.timestamps), nil
}

// Stats returns the number of tracked keys in total and per shard.
func (s *InMemoryBucketStore) Stats() (total int, perShard []int) {
	perShard = make([]int, len(s.shards))
	for i, sh := range s.shards {
		sh.mu.Lock()
		perShard[i] = len(sh.buckets)
		sh.mu.Unlock()
		total += perShard[i]
	}
	return total, perShard
}

func (s *InMemoryBucketStore) shardFor(key string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return s.shards[h.Sum32()%uint32(len(s.shards))]
}

// getOrCreateBucket returns the key's window, marking it most recently used.
// Must be called while holding sh.mu.
func (s *InMemoryBucketStore) getOrCreateBucket(sh *shard, key string, window time.Duration) *slidingWindow {
	if el, ok := sh.buckets[key]; ok {
		sh.lru.MoveToFront(el)
		return el.Value.(*entry).window
	}
	for sh.lru.Len() >= s.maxPerShard {
		oldest := sh.lru.Back()
		sh.lru.Remove(oldest)
		delete(sh.buckets, oldest.Value.(*entry).key)
	}
	sw := &slidingWindow{timestamps: []time.Time{}, window: window}
	sh.buckets[key] = sh.lru.PushFront(&entry{key: key, window: sw})
	return sw
}

// cleanup removes expired timestamps from a sliding window.
func (sw *slidingWindow) cleanup(now time.Time) {
	cutoff := now.Add(-sw.window)
	i := 0
	for ; i < len(sw.timestamps); i++ {
		if sw.timestamps[i].After(cutoff) {
			break
		}
	}
	sw.timestamps = sw.timestamps[i:]
}

func retryAfterSeconds(d time.Duration) int {
	secs := int((d + time.Second - 1) / time.Second)
	if secs < 1 {
		return 1
	}
	return secs
}
