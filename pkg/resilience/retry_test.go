package resilience_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notedesk/pkg/resilience"
)

var errTransient = errors.New("connection refused")

func fastConfig(attempts int) resilience.RetryConfig {
	cfg := resilience.DefaultRetryConfig()
	cfg.MaxAttempts = attempts
	cfg.InitialBackoff = time.Millisecond
	cfg.MaxBackoff = 5 * time.Millisecond
	return cfg
}

func TestRetryExecute(t *testing.T) {
	tests := []struct {
		name         string
		attempts     int
		failures     int
		wantErr      bool
		wantAttempts int
	}{
		{name: "first attempt succeeds", attempts: 3, failures: 0, wantAttempts: 1},
		{name: "succeeds after transient failures", attempts: 3, failures: 2, wantAttempts: 3},
		{name: "gives up after max attempts", attempts: 3, failures: 10, wantErr: true, wantAttempts: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			r := resilience.NewRetry("test", fastConfig(tt.attempts))

			err := r.Execute(context.Background(), func(context.Context) error {
				calls++
				if calls <= tt.failures {
					return errTransient
				}
				return nil
			})

			if tt.wantErr {
				require.ErrorIs(t, err, errTransient)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantAttempts, calls)
		})
	}
}

func TestRetryStopsOnNonRetryableError(t *testing.T) {
	calls := 0
	r := resilience.NewRetry("test", fastConfig(5))

	err := r.Execute(context.Background(), func(context.Context) error {
		calls++
		return context.Canceled
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestRetryHonoursContext(t *testing.T) {
	cfg := fastConfig(5)
	cfg.InitialBackoff = time.Hour
	r := resilience.NewRetry("test", cfg)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	err := r.Execute(ctx, func(context.Context) error { return errTransient })

	require.ErrorIs(t, err, resilience.ErrContextCanceled)
}
