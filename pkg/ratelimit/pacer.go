// Package ratelimit provides the self-imposed request pacing used by both
// dispatch channels: a minimum inter-request spacing (not a token bucket)
// plus an optional caller-configured random pre-dispatch delay.
package ratelimit

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// MinSpacing is the per-channel minimum gap between a response completing
// and the next request going out.
const MinSpacing = time.Second

// Pacer enforces minimum inter-request spacing on one channel. The
// last-response timestamp is channel-shared mutable state, so it is guarded;
// response data itself is request-scoped and never stored here.
type Pacer struct {
	mu      sync.Mutex
	last    time.Time
	spacing time.Duration

	// sleep is swappable in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewPacer returns a pacer with the given spacing; zero uses MinSpacing.
func NewPacer(spacing time.Duration) *Pacer {
	if spacing <= 0 {
		spacing = MinSpacing
	}
	return &Pacer{spacing: spacing, sleep: Sleep}
}

// Wait blocks until the spacing since the previous Done has elapsed. When
// the previous response completed less than the spacing ago, it sleeps a
// small settle interval on top, emulating app behavior. Honors ctx.
func (p *Pacer) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	last := p.last
	p.mu.Unlock()
	if last.IsZero() {
		return nil
	}
	elapsed := time.Since(last)
	if elapsed >= p.spacing {
		return nil
	}
	remaining := p.spacing - elapsed
	// small random settle on top, 0.75..3.75s scaled down to the gap
	settle := time.Duration(rand.Int63n(int64(250 * time.Millisecond)))
	return p.sleep(ctx, remaining+settle)
}

// Done records the completion time of the latest response. Called after
// every dispatch, success or failure.
func (p *Pacer) Done() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.last = time.Now()
}

// Last returns the recorded completion time of the previous response.
func (p *Pacer) Last() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

// Delayer applies the caller's delay-range jitter uniformly before each
// dispatch. A nil or empty range disables it.
type Delayer struct {
	min, max float64
	sleep    func(ctx context.Context, d time.Duration) error
}

// NewDelayer builds a delayer from a [min, max] range in seconds.
func NewDelayer(delayRange []float64) *Delayer {
	d := &Delayer{sleep: Sleep}
	if len(delayRange) == 2 && delayRange[1] >= delayRange[0] && delayRange[0] >= 0 {
		d.min, d.max = delayRange[0], delayRange[1]
	}
	return d
}

// Enabled reports whether a jitter range is configured.
func (d *Delayer) Enabled() bool { return d.max > 0 }

// Wait sleeps a uniform random duration inside the range. Honors ctx.
func (d *Delayer) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !d.Enabled() {
		return nil
	}
	span := d.max - d.min
	secs := d.min + rand.Float64()*span
	return d.sleep(ctx, time.Duration(secs*float64(time.Second)))
}

// Sleep waits for d or until ctx is cancelled. Every suspension point in
// the dispatch path funnels through here so cancellation is cooperative.
func Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
