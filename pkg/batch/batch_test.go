package batch

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunKeepsInputOrder(t *testing.T) {
	inputs := make([]int, 50)
	for i := range inputs {
		inputs[i] = i
	}
	var active, peak int32
	out, err := Run(context.Background(), inputs, func(_ context.Context, n int) (int, error) {
		cur := atomic.AddInt32(&active, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if cur <= p || atomic.CompareAndSwapInt32(&peak, p, cur) {
				break
			}
		}
		time.Sleep(time.Millisecond)
		atomic.AddInt32(&active, -1)
		return n * n, nil
	}, WithWorkers(4))

	require.NoError(t, err)
	require.Len(t, out, 50)
	for i, v := range out {
		assert.Equal(t, i*i, v)
	}
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(4))
}

func TestRunEmpty(t *testing.T) {
	out, err := Run(context.Background(), []string{}, func(_ context.Context, s string) (string, error) {
		return s, nil
	}, WithWorkers(3))
	assert.NoError(t, err)
	assert.Empty(t, out)
}

func TestRunStopsOnFirstError(t *testing.T) {
	boom := errors.New("boom")
	var calls int32
	_, err := Run(context.Background(), []int{1, 2, 3, 4, 5}, func(_ context.Context, n int) (int, error) {
		atomic.AddInt32(&calls, 1)
		if n == 1 {
			return 0, boom
		}
		return n, nil
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Less(t, atomic.LoadInt32(&calls), int32(5))
}

func TestRetry(t *testing.T) {
	ctx := context.Background()

	t.Run("SuccessAfterRetries", func(t *testing.T) {
		var attempts int32
		out, err := Run(ctx, []string{"item1"}, func(_ context.Context, _ string) (string, error) {
			if atomic.AddInt32(&attempts, 1) < 3 {
				return "", errors.New("fail")
			}
			return "success", nil
		}, WithRetry(3, ConstantBackoff(10*time.Millisecond)))

		assert.NoError(t, err)
		assert.Equal(t, []string{"success"}, out)
		assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
	})

	t.Run("FailAfterMaxRetries", func(t *testing.T) {
		var attempts int32
		_, err := Run(ctx, []string{"item1"}, func(_ context.Context, _ string) (string, error) {
			atomic.AddInt32(&attempts, 1)
			return "", errors.New("permanent fail")
		}, WithRetry(3, ConstantBackoff(time.Millisecond)))

		assert.EqualError(t, err, "job 0: permanent fail")
		assert.Equal(t, int32(4), atomic.LoadInt32(&attempts))
	})

	t.Run("ExponentialBackoff", func(t *testing.T) {
		backoff := ExponentialBackoff(10*time.Millisecond, 50*time.Millisecond)
		assert.Equal(t, 10*time.Millisecond, backoff(0))
		assert.Equal(t, 10*time.Millisecond, backoff(1))
		assert.Equal(t, 20*time.Millisecond, backoff(2))
		assert.Equal(t, 40*time.Millisecond, backoff(3))
		assert.Equal(t, 50*time.Millisecond, backoff(4))
		assert.Equal(t, 50*time.Millisecond, backoff(30))

		uncapped := ExponentialBackoff(time.Millisecond, 0)
		assert.Equal(t, 8*time.Millisecond, uncapped(4))
	})
}

func TestDo(t *testing.T) {
	ctx := context.Background()

	t.Run("RetriesUntilSuccess", func(t *testing.T) {
		var attempts int32
		out, err := Do(ctx, func(context.Context) (string, error) {
			if atomic.AddInt32(&attempts, 1) < 2 {
				return "", errors.New("transient")
			}
			return "rows", nil
		}, WithRetry(2, ConstantBackoff(time.Millisecond)))

		require.NoError(t, err)
		assert.Equal(t, "rows", out)
		assert.Equal(t, int32(2), atomic.LoadInt32(&attempts))
	})

	t.Run("NoRetryByDefault", func(t *testing.T) {
		var attempts int32
		_, err := Do(ctx, func(context.Context) (int, error) {
			atomic.AddInt32(&attempts, 1)
			return 0, errors.New("down")
		})
		assert.EqualError(t, err, "down")
		assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
	})

	t.Run("StopsWhenCancelled", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		var attempts int32
		_, err := Do(cctx, func(context.Context) (int, error) {
			atomic.AddInt32(&attempts, 1)
			cancel()
			return 0, errors.New("down")
		}, WithRetry(5, ConstantBackoff(time.Hour)))
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
	})
}

func TestRunHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, []int{1, 2}, func(ctx context.Context, n int) (int, error) {
		return n, nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}
