package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-risk-engine/internal/domain"
)

// recordingPolicy returns a policy whose waits are recorded instead of slept.
func recordingPolicy(maxAttempts int, base time.Duration, waits *[]time.Duration) Policy {
	return Policy{
		MaxAttempts: maxAttempts,
		BaseDelay:   base,
		sleep: func(_ context.Context, d time.Duration) error {
			*waits = append(*waits, d)
			return nil
		},
	}
}

func TestDo_SucceedsAfterFailures(t *testing.T) {
	for k := 0; k < 3; k++ {
		t.Run(fmt.Sprintf("fail_%d", k), func(t *testing.T) {
			var waits []time.Duration
			calls := 0

			v, err := Do(context.Background(), recordingPolicy(3, time.Second, &waits), func(context.Context) (string, error) {
				calls++
				if calls <= k {
					return "", fmt.Errorf("attempt %d failed", calls)
				}
				return "ok", nil
			})

			require.NoError(t, err)
			assert.Equal(t, "ok", v)
			assert.Equal(t, k+1, calls)
			assert.Len(t, waits, k)
		})
	}
}

func TestDo_ExhaustsAndReturnsLastError(t *testing.T) {
	var waits []time.Duration
	var errs []error
	calls := 0

	_, err := Do(context.Background(), recordingPolicy(3, time.Second, &waits), func(context.Context) (int, error) {
		calls++
		e := fmt.Errorf("failure #%d", calls)
		errs = append(errs, e)
		return 0, e
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Same(t, errs[len(errs)-1], err, "last error must be returned unwrapped")
}

func TestDo_LinearBackoff(t *testing.T) {
	var waits []time.Duration

	_, _ = Do(context.Background(), recordingPolicy(4, 100*time.Millisecond, &waits), func(context.Context) (int, error) {
		return 0, errors.New("boom")
	})

	assert.Equal(t, []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		300 * time.Millisecond,
	}, waits)
}

func TestDo_PermanentErrorNotRetried(t *testing.T) {
	var waits []time.Duration
	calls := 0

	_, err := Do(context.Background(), recordingPolicy(3, time.Second, &waits), func(context.Context) (int, error) {
		calls++
		return 0, fmt.Errorf("lookup: %w", domain.ErrNotFound)
	})

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 1, calls)
	assert.Empty(t, waits)
}

func TestDo_CustomRetryable(t *testing.T) {
	calls := 0
	p := Policy{
		MaxAttempts: 5,
		BaseDelay:   time.Millisecond,
		Retryable:   func(error) bool { return false },
	}

	_, err := Do(context.Background(), p, func(context.Context) (int, error) {
		calls++
		return 0, errors.New("boom")
	})

	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_OnRetryCallback(t *testing.T) {
	var seen []int
	p := Policy{
		MaxAttempts: 3,
		BaseDelay:   time.Millisecond,
		OnRetry:     func(attempt int, _ error) { seen = append(seen, attempt) },
	}

	_, _ = Do(context.Background(), p, func(context.Context) (int, error) {
		return 0, errors.New("boom")
	})

	assert.Equal(t, []int{1, 2}, seen)
}

func TestDo_ContextCancelledDuringWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	p := Policy{MaxAttempts: 3, BaseDelay: time.Hour}

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := Do(ctx, p, func(context.Context) (int, error) {
		calls++
		return 0, errors.New("boom")
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestPolicy_Defaults(t *testing.T) {
	var p Policy
	assert.Equal(t, DefaultMaxAttempts, p.attempts())
	assert.Equal(t, 2*DefaultBaseDelay, p.Delay(2))
	assert.Equal(t, Default().MaxAttempts, 3)
}
