package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPacerFirstCallDoesNotWait(t *testing.T) {
	p := NewPacer(time.Second)
	var slept time.Duration
	p.sleep = func(ctx context.Context, d time.Duration) error {
		slept = d
		return nil
	}
	require.NoError(t, p.Wait(context.Background()))
	assert.Zero(t, slept)
}

func TestPacerEnforcesSpacing(t *testing.T) {
	p := NewPacer(time.Second)
	var slept time.Duration
	p.sleep = func(ctx context.Context, d time.Duration) error {
		slept = d
		return nil
	}

	p.Done()
	require.NoError(t, p.Wait(context.Background()))
	// remaining gap plus the settle interval, never more than spacing+settle
	assert.Greater(t, slept, 500*time.Millisecond)
	assert.LessOrEqual(t, slept, time.Second+250*time.Millisecond)
}

func TestPacerSkipsWhenSpacingElapsed(t *testing.T) {
	p := NewPacer(10 * time.Millisecond)
	var calls int
	p.sleep = func(ctx context.Context, d time.Duration) error {
		calls++
		return nil
	}
	p.Done()
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, p.Wait(context.Background()))
	assert.Zero(t, calls)
}

func TestPacerHonorsCancellation(t *testing.T) {
	p := NewPacer(time.Second)
	p.Done()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := p.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDelayerDisabledByDefault(t *testing.T) {
	for _, r := range [][]float64{nil, {}, {3, 1}, {-1, 2}} {
		d := NewDelayer(r)
		assert.False(t, d.Enabled(), "range %v must disable the delayer", r)
		assert.NoError(t, d.Wait(context.Background()))
	}
}

func TestDelayerStaysInRange(t *testing.T) {
	d := NewDelayer([]float64{1, 3})
	require.True(t, d.Enabled())

	for i := 0; i < 20; i++ {
		var slept time.Duration
		d.sleep = func(ctx context.Context, dur time.Duration) error {
			slept = dur
			return nil
		}
		require.NoError(t, d.Wait(context.Background()))
		assert.GreaterOrEqual(t, slept, time.Second)
		assert.LessOrEqual(t, slept, 3*time.Second)
	}
}

func TestSleepReturnsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	err := Sleep(ctx, 5*time.Second)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}

func TestSleepZeroReturnsImmediately(t *testing.T) {
	assert.NoError(t, Sleep(context.Background(), 0))
}

func TestCancelledContextFailsZeroDelayPaths(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// none of these would otherwise sleep, but cancellation must still win
	assert.ErrorIs(t, Sleep(ctx, 0), context.Canceled)
	assert.ErrorIs(t, NewPacer(time.Second).Wait(ctx), context.Canceled)
	assert.ErrorIs(t, NewDelayer(nil).Wait(ctx), context.Canceled)
}
