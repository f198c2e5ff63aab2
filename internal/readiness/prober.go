// Package readiness implements bounded-retry readiness probing of
// external dependencies.
//
// A probe attempts a check up to a fixed number of times with a fixed
// sleep between attempts. There is no backoff and no jitter: the elapsed
// time on the failure path is bounded by maxAttempts * interval, which is
// what the deployment tooling budgets for.
package readiness

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/autobus-platform/autobus/internal/metrics"
)

var (
	// ErrInvalidConfig reports non-positive attempt or interval settings.
	ErrInvalidConfig = errors.New("readiness: invalid probe configuration")

	// ErrExhausted reports that every attempt failed.
	ErrExhausted = errors.New("readiness: attempts exhausted")
)

// CheckFunc performs one readiness attempt. A nil return means the
// dependency is ready.
type CheckFunc func(ctx context.Context) error

// Prober runs bounded fixed-interval readiness probes.
type Prober struct {
	// Sleep is the wait between attempts. Overridable for tests; the
	// default waits on the wall clock but returns early when the context
	// is cancelled.
	Sleep func(ctx context.Context, d time.Duration)
}

// NewProber returns a Prober using wall-clock sleeps.
func NewProber() *Prober {
	return &Prober{Sleep: sleepCtx}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// Probe runs check up to maxAttempts times, sleeping interval between
// attempts. It returns nil as soon as a check succeeds, without a
// trailing sleep. When all attempts fail it returns ErrExhausted wrapping
// the last check error, having slept exactly maxAttempts times.
func (p *Prober) Probe(ctx context.Context, name string, check CheckFunc, maxAttempts int, interval time.Duration) error {
	if maxAttempts < 1 || interval <= 0 {
		return fmt.Errorf("%w: attempts=%d interval=%s", ErrInvalidConfig, maxAttempts, interval)
	}

	start := time.Now()
	var lastErr error
	for attempt := 1; ; attempt++ {
		lastErr = check(ctx)
		metrics.ObserveProbeAttempt(name, lastErr == nil)
		if lastErr == nil {
			metrics.ObserveProbeOutcome(name, "ready", time.Since(start))
			return nil
		}

		p.Sleep(ctx, interval)
		if attempt >= maxAttempts {
			metrics.ObserveProbeOutcome(name, "exhausted", time.Since(start))
			return fmt.Errorf("%w after %d attempts: %w", ErrExhausted, maxAttempts, lastErr)
		}
	}
}
