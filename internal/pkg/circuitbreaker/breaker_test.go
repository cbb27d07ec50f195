package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDependency = errors.New("dependency down")

type transition struct{ from, to State }

func newTestBreaker(maxFailures int) (*Breaker, *time.Time, *[]transition) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var transitions []transition

	b := New(Config{
		Name:        "test",
		MaxFailures: maxFailures,
		Cooldown:    time.Second,
		OnStateChange: func(_ string, from, to State) {
			transitions = append(transitions, transition{from, to})
		},
	})
	b.now = func() time.Time { return now }

	return b, &now, &transitions
}

func fail(context.Context) error    { return errDependency }
func succeed(context.Context) error { return nil }

func TestBreaker(t *testing.T) {
	ctx := context.Background()

	t.Run("opens after consecutive failures", func(t *testing.T) {
		b, _, transitions := newTestBreaker(3)

		for i := 0; i < 3; i++ {
			assert.ErrorIs(t, b.Do(ctx, fail), errDependency)
		}

		assert.Equal(t, StateOpen, b.State())
		assert.Equal(t, []transition{{StateClosed, StateOpen}}, *transitions)

		called := false
		err := b.Do(ctx, func(context.Context) error { called = true; return nil })
		assert.ErrorIs(t, err, ErrOpen)
		assert.False(t, called)
	})

	t.Run("success resets the failure count", func(t *testing.T) {
		b, _, _ := newTestBreaker(2)

		_ = b.Do(ctx, fail)
		require.NoError(t, b.Do(ctx, succeed))
		_ = b.Do(ctx, fail)

		assert.Equal(t, StateClosed, b.State())
	})

	t.Run("trial call closes after cooldown", func(t *testing.T) {
		b, now, transitions := newTestBreaker(1)

		_ = b.Do(ctx, fail)
		require.Equal(t, StateOpen, b.State())

		*now = now.Add(time.Second)
		require.NoError(t, b.Do(ctx, succeed))

		assert.Equal(t, StateClosed, b.State())
		assert.Equal(t, []transition{
			{StateClosed, StateOpen},
			{StateOpen, StateHalfOpen},
			{StateHalfOpen, StateClosed},
		}, *transitions)
	})

	t.Run("failed trial call reopens", func(t *testing.T) {
		b, now, _ := newTestBreaker(1)

		_ = b.Do(ctx, fail)
		*now = now.Add(time.Second)
		_ = b.Do(ctx, fail)

		assert.Equal(t, StateOpen, b.State())
		assert.ErrorIs(t, b.Do(ctx, succeed), ErrOpen)
	})

	t.Run("one trial call at a time", func(t *testing.T) {
		b, now, _ := newTestBreaker(1)

		_ = b.Do(ctx, fail)
		*now = now.Add(time.Second)

		err := b.Do(ctx, func(ctx context.Context) error {
			assert.ErrorIs(t, b.Do(ctx, succeed), ErrTrialInFlight)
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, StateClosed, b.State())
	})

	t.Run("caller cancellation is not a failure", func(t *testing.T) {
		b, _, _ := newTestBreaker(1)

		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		assert.ErrorIs(t, b.Do(cancelled, func(ctx context.Context) error { return ctx.Err() }), context.Canceled)
		assert.Equal(t, StateClosed, b.State())
	})

	t.Run("cancelled trial call leaves the breaker open", func(t *testing.T) {
		b, now, transitions := newTestBreaker(1)

		_ = b.Do(ctx, fail)
		*now = now.Add(time.Second)

		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		err := b.Do(cancelled, func(ctx context.Context) error { return ctx.Err() })
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, StateOpen, b.State())
		assert.Equal(t, []transition{
			{StateClosed, StateOpen},
			{StateOpen, StateHalfOpen},
			{StateHalfOpen, StateOpen},
		}, *transitions)

		// The cooldown is not restarted, so the next call is the trial.
		require.NoError(t, b.Do(ctx, succeed))
		assert.Equal(t, StateClosed, b.State())
	})

	t.Run("only the trial call decides a half-open breaker", func(t *testing.T) {
		b, now, _ := newTestBreaker(1)

		late, err := b.acquire()
		require.NoError(t, err)
		require.False(t, late)

		_ = b.Do(ctx, fail)
		*now = now.Add(time.Second)

		trial, err := b.acquire()
		require.NoError(t, err)
		require.True(t, trial)

		b.release(late, false, false)
		assert.Equal(t, StateHalfOpen, b.State())
		assert.ErrorIs(t, b.Do(ctx, succeed), ErrTrialInFlight)

		b.release(trial, true, false)
		assert.Equal(t, StateOpen, b.State())
	})
}

func TestNewDefaults(t *testing.T) {
	b := New(Config{Name: "cache"})

	assert.Equal(t, 5, b.config.MaxFailures)
	assert.Equal(t, 10*time.Second, b.config.Cooldown)
	assert.Equal(t, StateClosed, b.State())
	assert.Equal(t, "half-open", StateHalfOpen.String())
}
