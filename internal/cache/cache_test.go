package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clock is a manually advanced time source.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock {
	return &clock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// counting returns a fetch that counts calls and returns the call number.
func counting(calls *atomic.Int32) FetchFunc[int] {
	return func(context.Context) (int, error) {
		return int(calls.Add(1)), nil
	}
}

func TestGet_ServesLiveEntry(t *testing.T) {
	clk := newClock()
	c := New[int]("groups", 20*time.Second, WithClock(clk.Now))
	ctx := context.Background()
	var calls atomic.Int32

	v, err := c.Get(ctx, "", counting(&calls))
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	clk.Advance(19 * time.Second)
	v, err = c.Get(ctx, "", counting(&calls))
	require.NoError(t, err)
	assert.Equal(t, 1, v, "entry is still live")

	clk.Advance(time.Second)
	v, err = c.Get(ctx, "", counting(&calls))
	require.NoError(t, err)
	assert.Equal(t, 2, v, "entry expires exactly at TTL")
	assert.Equal(t, int32(2), calls.Load())
}

func TestGet_Force(t *testing.T) {
	c := New[int]("me", 30*time.Second)
	ctx := context.Background()
	var calls atomic.Int32

	_, err := c.Get(ctx, "", counting(&calls))
	require.NoError(t, err)

	v, err := c.Get(ctx, "", counting(&calls), WithForce(true))
	require.NoError(t, err)
	assert.Equal(t, 2, v)

	v, err = c.Get(ctx, "", counting(&calls))
	require.NoError(t, err)
	assert.Equal(t, 2, v, "forced result replaces the entry")
}

func TestGet_DeduplicatesConcurrentReads(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	c := New[string]("balances", 12*time.Second, WithMetrics(metrics))

	started := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	fetch := func(context.Context) (string, error) {
		if calls.Add(1) == 1 {
			close(started)
		}
		<-release
		return "balances-g1", nil
	}

	const readers = 10
	results := make([]string, readers)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], _ = c.Get(context.Background(), "g1", fetch)
	}()
	<-started

	for i := 1; i < readers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], _ = c.Get(context.Background(), "g1", fetch)
		}()
	}
	require.Eventually(t, func() bool {
		return testutil.ToFloat64(metrics.sharedWaits.WithLabelValues("balances")) == readers-1
	}, time.Second, time.Millisecond)

	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, r := range results {
		assert.Equal(t, "balances-g1", r)
	}
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.misses.WithLabelValues("balances")))
}

func TestGet_FailureIsSharedButNotCached(t *testing.T) {
	c := New[int]("debts", 12*time.Second)
	ctx := context.Background()
	boom := errors.New("boom")

	release := make(chan struct{})
	var calls atomic.Int32
	failing := func(context.Context) (int, error) {
		calls.Add(1)
		<-release
		return 0, boom
	}

	errs := make(chan error, 2)
	for range 2 {
		go func() {
			_, err := c.Get(ctx, "g1", failing)
			errs <- err
		}()
	}
	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(10 * time.Millisecond)
	close(release)

	assert.ErrorIs(t, <-errs, boom)
	assert.ErrorIs(t, <-errs, boom)
	assert.Equal(t, int32(1), calls.Load())
	assert.Zero(t, c.Len())

	v, err := c.Get(ctx, "g1", func(context.Context) (int, error) { return 7, nil })
	require.NoError(t, err, "ticket must be cleared after a failure")
	assert.Equal(t, 7, v)
}

func TestGet_PanicBecomesError(t *testing.T) {
	c := New[int]("members", 15*time.Second)
	_, err := c.Get(context.Background(), "g1", func(context.Context) (int, error) {
		panic("bad payload")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad payload")

	v, err := c.Get(context.Background(), "g1", func(context.Context) (int, error) { return 3, nil })
	require.NoError(t, err)
	assert.Equal(t, 3, v)
}

func TestGet_CallerCancellationDoesNotCancelFetch(t *testing.T) {
	c := New[string]("activity", 10*time.Second)

	release := make(chan struct{})
	var fetchCtxErr atomic.Value
	fetch := func(ctx context.Context) (string, error) {
		<-release
		fetchCtxErr.Store(ctx.Err() == nil)
		return "feed", nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancelled := make(chan error, 1)
	go func() {
		_, err := c.Get(ctx, "g1", fetch)
		cancelled <- err
	}()

	other := make(chan string, 1)
	require.Eventually(t, func() bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		return len(c.tickets) == 1
	}, time.Second, time.Millisecond)
	go func() {
		v, _ := c.Get(context.Background(), "g1", fetch)
		other <- v
	}()

	cancel()
	assert.ErrorIs(t, <-cancelled, context.Canceled)

	close(release)
	assert.Equal(t, "feed", <-other)
	assert.Equal(t, true, fetchCtxErr.Load(), "fetch context must outlive the caller")
	assert.Equal(t, 1, c.Len(), "result is stored for later readers")
}

func TestInvalidate_Scoped(t *testing.T) {
	c := New[int]("expenses", 12*time.Second)
	ctx := context.Background()
	keys := []string{
		Key("g1", "10", "0"),
		Key("g1", "10", "10"),
		Key("g1"),
		Key("g10", "10", "0"),
		Key("g2", "10", "0"),
	}
	for i, k := range keys {
		_, err := c.Get(ctx, k, func(context.Context) (int, error) { return i, nil })
		require.NoError(t, err)
	}

	c.Invalidate(Key("g1"))
	assert.Equal(t, 2, c.Len(), "only g1 keys are dropped")

	var calls atomic.Int32
	_, err := c.Get(ctx, Key("g10", "10", "0"), counting(&calls))
	require.NoError(t, err)
	assert.Zero(t, calls.Load(), "g10 shares a textual prefix with g1 but is a different scope")

	_, err = c.Get(ctx, Key("g1", "10", "0"), counting(&calls))
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())

	c.Invalidate()
	assert.Zero(t, c.Len())
}

func TestInvalidate_InFlightResultNotStored(t *testing.T) {
	c := New[string]("settlements", 12*time.Second)
	ctx := context.Background()

	release := make(chan struct{})
	result := make(chan string, 1)
	go func() {
		v, _ := c.Get(ctx, "g1", func(context.Context) (string, error) {
			<-release
			return "stale", nil
		})
		result <- v
	}()
	require.Eventually(t, func() bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		return len(c.tickets) == 1
	}, time.Second, time.Millisecond)

	c.Invalidate("g1")
	close(release)
	assert.Equal(t, "stale", <-result, "attached waiter still receives the result")

	v, err := c.Get(ctx, "g1", func(context.Context) (string, error) { return "fresh", nil })
	require.NoError(t, err)
	assert.Equal(t, "fresh", v)
}

func TestSet(t *testing.T) {
	c := New[string]("expense_detail", 15*time.Second)
	c.Set(Key("g1", "e1"), "seeded")

	v, err := c.Get(context.Background(), Key("g1", "e1"), func(context.Context) (string, error) {
		t.Error("seeded entry should be served without fetching")
		return "", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "seeded", v)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "g1:10:0", Key("g1", "10", "0"))
	assert.NotEqual(t, Key("a:b", "c"), Key("a", "b:c"))
	assert.NotEqual(t, Key("a%3Ab"), Key("a:b"))
	assert.Equal(t, Key("x", "y"), Key("x", "y"))
	assert.Equal(t, "", Key())
}
