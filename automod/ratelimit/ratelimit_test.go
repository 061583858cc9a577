package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	lk  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.lk.Lock()
	defer c.lk.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.lk.Lock()
	defer c.lk.Unlock()
	c.now = c.now.Add(d)
}

func TestMemLimiterBoundary(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	lim := NewMemLimiter(60, time.Minute)
	lim.Now = clock.Now

	// first request at t=0, the rest spread over the next 59 seconds
	assert.True(lim.Admit(ctx, "client1"))
	for i := 1; i < 60; i++ {
		clock.Advance(time.Second)
		assert.True(lim.Admit(ctx, "client1"), "request %d", i+1)
	}
	// 61st request within the window is rejected, and rejection doesn't consume a slot
	assert.False(lim.Admit(ctx, "client1"))
	assert.False(lim.Admit(ctx, "client1"))

	// other clients are independent
	assert.True(lim.Admit(ctx, "client2"))

	// at t=60s the first timestamp ages out: exactly one more is admitted
	clock.Advance(time.Second)
	assert.True(lim.Admit(ctx, "client1"))
	assert.False(lim.Admit(ctx, "client1"))
}

func TestMemLimiterAnonymousBucket(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	lim := NewMemLimiter(2, time.Minute)
	assert.True(lim.Admit(ctx, ""))
	assert.True(lim.Admit(ctx, AnonymousClient))
	assert.False(lim.Admit(ctx, ""))
	assert.Equal(1, lim.Clients())
}

func TestMemLimiterSweep(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	lim := NewMemLimiter(5, time.Minute)
	lim.Now = clock.Now
	lim.SweepEvery = 0

	for i := 0; i < 10; i++ {
		assert.True(lim.Admit(ctx, fmt.Sprintf("10.0.0.%d", i)))
	}
	clock.Advance(30 * time.Second)
	assert.True(lim.Admit(ctx, "10.0.0.0"))
	assert.Equal(10, lim.Clients())

	// nothing has expired yet
	assert.Equal(0, lim.Sweep())

	// the nine idle clients age out; the one seen 30s later stays
	clock.Advance(31 * time.Second)
	assert.Equal(9, lim.Sweep())
	assert.Equal(1, lim.Clients())

	// a swept client starts over with a full window
	for i := 0; i < 5; i++ {
		assert.True(lim.Admit(ctx, "10.0.0.5"))
	}
	assert.False(lim.Admit(ctx, "10.0.0.5"))
}

func TestMemLimiterSweepsWhileAdmitting(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	lim := NewMemLimiter(5, time.Minute)
	lim.Now = clock.Now
	lim.SweepEvery = 4

	for i := 0; i < 3; i++ {
		lim.Admit(ctx, fmt.Sprintf("client-%d", i))
	}
	assert.Equal(3, lim.Clients())

	// the fourth call runs a sweep after its own admission
	clock.Advance(2 * time.Minute)
	assert.True(lim.Admit(ctx, "fresh"))
	assert.Equal(1, lim.Clients())
}

func TestMemLimiterConcurrent(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	lim := NewMemLimiter(50, time.Hour)
	var admitted atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if lim.Admit(ctx, "busy-client") {
				admitted.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(int64(50), admitted.Load())
}

func TestRedisLimiterBasics(t *testing.T) {
	t.Skip("live test, need redis running locally")
	assert := assert.New(t)
	ctx := context.Background()

	lim, err := NewRedisLimiter("redis://localhost:6379/0", 3, time.Minute, nil)
	if err != nil {
		t.Fatal(err)
	}
	client := "test-" + time.Now().String()
	for i := 0; i < 3; i++ {
		assert.True(lim.Admit(ctx, client))
	}
	assert.False(lim.Admit(ctx, client))
}
