package clock

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	claimsDomain "github.com/allisson/claims/internal/claims/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestMemoryClock(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryClock(10)

	now, err := c.Now(ctx)
	require.NoError(t, err)
	assert.Equal(t, claimsDomain.LogicalTime(10), now)

	next, err := c.Advance(ctx)
	require.NoError(t, err)
	assert.Equal(t, claimsDomain.LogicalTime(11), next)

	c.Set(5)
	now, _ = c.Now(ctx)
	assert.Equal(t, claimsDomain.LogicalTime(11), now)

	c.Set(20)
	now, _ = c.Now(ctx)
	assert.Equal(t, claimsDomain.LogicalTime(20), now)
}

func TestMemoryClock_ConcurrentAdvance(t *testing.T) {
	c := NewMemoryClock(0)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = c.Advance(context.Background())
		}()
	}
	wg.Wait()

	now, _ := c.Now(context.Background())
	assert.Equal(t, claimsDomain.LogicalTime(100), now)
}

type flakyAdvancer struct {
	calls atomic.Int32
}

func (f *flakyAdvancer) Advance(ctx context.Context) (claimsDomain.LogicalTime, error) {
	n := f.calls.Add(1)
	if n == 1 {
		return 0, errors.New("temporary failure")
	}
	return claimsDomain.LogicalTime(n), nil
}

func TestProducer_Start(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("advances until canceled", func(t *testing.T) {
		c := NewMemoryClock(0)
		p := NewProducer(c, 5*time.Millisecond, logger)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- p.Start(ctx) }()

		assert.Eventually(t, func() bool {
			now, _ := c.Now(context.Background())
			return now >= 3
		}, time.Second, 5*time.Millisecond)

		cancel()
		assert.ErrorIs(t, <-done, context.Canceled)
	})

	t.Run("keeps running after a failed tick", func(t *testing.T) {
		advancer := &flakyAdvancer{}
		p := NewProducer(advancer, 5*time.Millisecond, logger)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- p.Start(ctx) }()

		assert.Eventually(t, func() bool {
			return advancer.calls.Load() >= 3
		}, time.Second, 5*time.Millisecond)

		cancel()
		<-done
	})

	t.Run("returns immediately on canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := NewProducer(NewMemoryClock(0), time.Hour, logger).Start(ctx)
		assert.Equal(t, context.Canceled, err)
	})
}

func TestRedisClock(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		url = "redis://localhost:6380/0"
	}

	ctx := context.Background()
	client, err := NewRedisClient(ctx, url)
	if err != nil {
		t.Skipf("redis not available: %v", err)
	}
	defer client.Close() //nolint:errcheck

	key := "claims:test:block_height:" + time.Now().Format("150405.000000000")
	defer client.Del(ctx, key)

	c := NewRedisClock(client, key)

	now, err := c.Now(ctx)
	require.NoError(t, err)
	assert.Equal(t, claimsDomain.LogicalTime(0), now)

	next, err := c.Advance(ctx)
	require.NoError(t, err)
	assert.Equal(t, claimsDomain.LogicalTime(1), next)

	now, err = c.Now(ctx)
	require.NoError(t, err)
	assert.Equal(t, claimsDomain.LogicalTime(1), now)
}

func TestRedisClock_ConnectionError(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 50 * time.Millisecond})
	defer client.Close() //nolint:errcheck

	c := NewRedisClock(client, "height")

	_, err := c.Now(context.Background())
	assert.ErrorContains(t, err, "failed to read block height")

	_, err = c.Advance(context.Background())
	assert.ErrorContains(t, err, "failed to advance block height")
}

func TestNewRedisClient_InvalidURL(t *testing.T) {
	_, err := NewRedisClient(context.Background(), "not-a-url")
	assert.ErrorContains(t, err, "parse redis URL")
}
