package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/worklane/worklane-cli/internal/core"
)

func TestAcquireDelaysBeyondLimit(t *testing.T) {
	limiter := NewLimiter(map[string]ClassConfig{
		"test": {Limit: 2, Window: time.Second},
	})

	ctx := context.Background()
	start := time.Now()

	require.NoError(t, limiter.Acquire(ctx, "test"))
	require.NoError(t, limiter.Acquire(ctx, "test"))
	require.NoError(t, limiter.Acquire(ctx, "test"))

	require.GreaterOrEqual(t, time.Since(start), time.Second,
		"third admission must wait out the window opened by the first")
}

func TestAcquireSlidingWindowProperty(t *testing.T) {
	const (
		limit  = 3
		window = 250 * time.Millisecond
	)
	limiter := NewLimiter(map[string]ClassConfig{
		"test": {Limit: limit, Window: window},
	})

	ctx := context.Background()
	admitted := make([]time.Time, 0, 9)
	for i := 0; i < 9; i++ {
		require.NoError(t, limiter.Acquire(ctx, "test"))
		admitted = append(admitted, time.Now())
	}

	for i := 0; i+limit < len(admitted); i++ {
		gap := admitted[i+limit].Sub(admitted[i])
		require.GreaterOrEqual(t, gap, window-20*time.Millisecond,
			"admissions %d and %d fall inside one window", i, i+limit)
	}
}

func TestAcquireConcurrentHoldsCeiling(t *testing.T) {
	const window = 200 * time.Millisecond
	limiter := NewLimiter(map[string]ClassConfig{
		"test": {Limit: 2, Window: window},
	})

	start := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = limiter.Acquire(context.Background(), "test")
		}()
	}
	wg.Wait()

	// Six admissions at two per window need at least two full windows.
	require.GreaterOrEqual(t, time.Since(start), 2*window)
}

func TestAcquireCancelledLeavesWindowIntact(t *testing.T) {
	limiter := NewLimiter(map[string]ClassConfig{
		"test": {Limit: 1, Window: time.Minute},
	})

	require.NoError(t, limiter.Acquire(context.Background(), "test"))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := limiter.Acquire(ctx, "test")
	require.ErrorIs(t, err, context.DeadlineExceeded)

	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	require.Len(t, limiter.windows["test"], 1, "cancelled acquire must not append a timestamp")
}

func TestBackoffDelayBounds(t *testing.T) {
	base := 100 * time.Millisecond
	for attempt := 0; attempt < 5; attempt++ {
		floor := base * (1 << attempt)
		for i := 0; i < 20; i++ {
			delay := backoffDelay(base, attempt)
			require.GreaterOrEqual(t, delay, floor)
			require.Less(t, delay, floor+base)
		}
	}
}

func TestDoExhaustsRetryBudget(t *testing.T) {
	limiter := NewLimiter(map[string]ClassConfig{
		"test": {Limit: 100, Window: time.Second, MaxRetries: 2, BaseDelay: 5 * time.Millisecond},
	})

	calls := 0
	err := limiter.Do(context.Background(), "test", func(context.Context) error {
		calls++
		return &core.ThrottledError{}
	})

	require.Equal(t, 3, calls, "initial attempt plus two retries")
	require.True(t, core.IsRateLimited(err))

	var rateErr *core.RateLimitError
	require.ErrorAs(t, err, &rateErr)
	require.Equal(t, 3, rateErr.Attempts)
	require.Equal(t, "test", rateErr.Class)
}

func TestDoHonorsRetryAfterHint(t *testing.T) {
	limiter := NewLimiter(map[string]ClassConfig{
		"test": {Limit: 100, Window: time.Second, MaxRetries: 3, BaseDelay: time.Millisecond},
	})

	hint := 200 * time.Millisecond
	calls := 0
	start := time.Now()
	err := limiter.Do(context.Background(), "test", func(context.Context) error {
		calls++
		if calls == 1 {
			return &core.ThrottledError{RetryAfter: hint}
		}
		return nil
	})

	require.NoError(t, err)
	require.Equal(t, 2, calls)
	require.GreaterOrEqual(t, time.Since(start), hint,
		"server hint overrides the exponential default")
}

func TestDoPassesThroughOtherErrors(t *testing.T) {
	limiter := NewLimiter(nil)

	boom := errors.New("boom")
	calls := 0
	err := limiter.Do(context.Background(), ClassRegular, func(context.Context) error {
		calls++
		return boom
	})

	require.ErrorIs(t, err, boom)
	require.Equal(t, 1, calls, "only throttled responses are retried")
}

func TestNewLimiterMergesOverrides(t *testing.T) {
	limiter := NewLimiter(map[string]ClassConfig{
		ClassRegular: {Limit: 50},
		"exports":    {Limit: 5, Window: time.Minute},
	})

	regular := limiter.classConfig(ClassRegular)
	require.Equal(t, 50, regular.Limit)
	require.Equal(t, 10*time.Second, regular.Window, "window falls back to the default class")
	require.Equal(t, DefaultMaxRetries, regular.MaxRetries)

	exports := limiter.classConfig("exports")
	require.Equal(t, 5, exports.Limit)
	require.Equal(t, time.Minute, exports.Window)
	require.Equal(t, DefaultBaseDelay, exports.BaseDelay)

	reports := limiter.classConfig(ClassReports)
	require.Equal(t, 10, reports.Limit)
	require.Equal(t, 30*time.Second, reports.Window)
}

func TestSnapshotCountsWindow(t *testing.T) {
	limiter := NewLimiter(map[string]ClassConfig{
		"test": {Limit: 10, Window: time.Minute},
	})

	require.NoError(t, limiter.Acquire(context.Background(), "test"))
	require.NoError(t, limiter.Acquire(context.Background(), "test"))

	var found bool
	for _, status := range limiter.Snapshot() {
		if status.Class == "test" {
			found = true
			require.Equal(t, 2, status.InWindow)
			require.Equal(t, 10, status.Limit)
		}
	}
	require.True(t, found)
}

func TestClassForEndpoint(t *testing.T) {
	require.Equal(t, ClassReports, ClassForEndpoint("/reports/time"))
	require.Equal(t, ClassRegular, ClassForEndpoint("/projects"))
	require.Equal(t, ClassRegular, ClassForEndpoint("/time_entries"))
}
