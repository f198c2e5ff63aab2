package readiness

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProber returns a Prober whose sleeps are counted, not slept.
func fakeProber() (*Prober, *int) {
	sleeps := 0
	p := &Prober{Sleep: func(ctx context.Context, d time.Duration) { sleeps++ }}
	return p, &sleeps
}

func TestProbeInvalidConfig(t *testing.T) {
	p, _ := fakeProber()
	calls := 0
	check := func(ctx context.Context) error { calls++; return nil }

	tests := []struct {
		name     string
		attempts int
		interval time.Duration
	}{
		{"zero attempts", 0, time.Second},
		{"negative attempts", -3, time.Second},
		{"zero interval", 5, 0},
		{"negative interval", 5, -time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := p.Probe(context.Background(), "t", check, tt.attempts, tt.interval)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig))
		})
	}
	assert.Zero(t, calls, "check must not run with invalid configuration")
}

func TestProbeExhaustionSleepsExactlyMaxAttempts(t *testing.T) {
	for _, maxAttempts := range []int{1, 2, 15, 30} {
		p, sleeps := fakeProber()
		calls := 0
		alwaysDown := func(ctx context.Context) error {
			calls++
			return errors.New("connection refused")
		}

		err := p.Probe(context.Background(), "t", alwaysDown, maxAttempts, time.Second)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrExhausted))
		assert.Equal(t, maxAttempts, calls, "one check per attempt")
		assert.Equal(t, maxAttempts, *sleeps, "one sleep per failed attempt")
	}
}

func TestProbeSucceedsOnAttemptK(t *testing.T) {
	for _, k := range []int{1, 2, 5} {
		p, sleeps := fakeProber()
		calls := 0
		check := func(ctx context.Context) error {
			calls++
			if calls < k {
				return errors.New("not yet")
			}
			return nil
		}

		err := p.Probe(context.Background(), "t", check, 30, time.Second)
		require.NoError(t, err)
		assert.Equal(t, k, calls, "check invoked exactly k times")
		assert.Equal(t, k-1, *sleeps, "ready on attempt k sleeps k-1 times")
	}
}

func TestProbeImmediateSuccessNeverSleeps(t *testing.T) {
	p, sleeps := fakeProber()
	up := func(ctx context.Context) error { return nil }

	require.NoError(t, p.Probe(context.Background(), "t", up, 1, time.Second))
	assert.Zero(t, *sleeps)
}

func TestProbeWrapsLastCheckError(t *testing.T) {
	p, _ := fakeProber()
	cause := errors.New("NOAUTH Authentication required")
	down := func(ctx context.Context) error { return cause }

	err := p.Probe(context.Background(), "cache", down, 3, time.Second)
	require.Error(t, err)
	assert.True(t, errors.Is(err, cause))
}

func TestDefaultSleepHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	sleepCtx(ctx, time.Minute)
	assert.Less(t, time.Since(start), time.Second, "cancelled context returns immediately")
}
