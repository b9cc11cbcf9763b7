//go:build integration

package bucket_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"votecheck/internal/ratelimit/store/bucket"
	"votecheck/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *bucket.RedisBucketStore
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.store = bucket.NewRedis(s.redis.Client)
}

func (s *RedisStoreSuite) TearDownSuite() {
	s.redis.Terminate(context.Background())
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisStoreSuite) TestAllowUpToLimit() {
	ctx := context.Background()
	for i := range 3 {
		result, err := s.store.Allow(ctx, "rl:ip:198.51.100.1", 3, time.Minute)
		s.Require().NoError(err)
		s.True(result.Allowed)
		s.Equal(3-(i+1), result.Remaining)
		s.WithinDuration(time.Now().Add(time.Minute), result.ResetAt, 2*time.Second)
	}

	result, err := s.store.Allow(ctx, "rl:ip:198.51.100.1", 3, time.Minute)
	s.Require().NoError(err)
	s.False(result.Allowed)
	s.Positive(result.RetryAfter)

	count, err := s.store.GetCurrentCount(ctx, "rl:ip:198.51.100.1")
	s.Require().NoError(err)
	s.Equal(4, count)
}

func (s *RedisStoreSuite) TestWindowExpires() {
	ctx := context.Background()
	_, err := s.store.AllowN(ctx, "rl:ip:198.51.100.2", 2, 2, 500*time.Millisecond)
	s.Require().NoError(err)

	s.Eventually(func() bool {
		result, err := s.store.Allow(ctx, "rl:ip:198.51.100.2", 2, 500*time.Millisecond)
		return err == nil && result.Allowed
	}, 3*time.Second, 100*time.Millisecond)
}

func (s *RedisStoreSuite) TestReset() {
	ctx := context.Background()
	_, err := s.store.AllowN(ctx, "rl:ip:198.51.100.3", 5, 5, time.Minute)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Reset(ctx, "rl:ip:198.51.100.3"))

	count, err := s.store.GetCurrentCount(ctx, "rl:ip:198.51.100.3")
	s.Require().NoError(err)
	s.Zero(count)
}

// Concurrent callers across what would be separate instances never admit more
// than the limit.
func (s *RedisStoreSuite) TestConcurrentAllow() {
	ctx := context.Background()
	const limit = 10
	var allowed atomic.Int32
	var wg sync.WaitGroup

	for range 50 {
		wg.Go(func() {
			result, err := s.store.Allow(ctx, "rl:ip:198.51.100.4", limit, time.Minute)
			if err == nil && result.Allowed {
				allowed.Add(1)
			}
		})
	}
	wg.Wait()
	s.Equal(int32(limit), allowed.Load())
}
