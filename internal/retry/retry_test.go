package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/ipkg/internal/retry"
)

var errBoom = errors.New("boom")

func TestPolicy_Do(t *testing.T) {
	tests := []struct {
		name      string
		retries   int
		failures  int
		transient bool
		calls     int
		wantErr   bool
	}{
		{name: "first attempt succeeds", retries: 3, failures: 0, transient: true, calls: 1},
		{name: "recovers after transient failures", retries: 3, failures: 2, transient: true, calls: 3},
		{name: "gives up after retries", retries: 2, failures: 5, transient: true, calls: 3, wantErr: true},
		{name: "permanent error is not retried", retries: 3, failures: 5, transient: false, calls: 1, wantErr: true},
		{name: "negative retries still runs once", retries: -1, failures: 5, transient: true, calls: 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := retry.Policy{Retries: tt.retries, Delay: time.Millisecond}.Do(context.Background(), func(context.Context) error {
				calls++
				if calls <= tt.failures {
					if tt.transient {
						return retry.Transient(errBoom)
					}
					return errBoom
				}
				return nil
			})

			assert.Equal(t, tt.calls, calls)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, errBoom)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestPolicy_Do_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := retry.Policy{Retries: 5, Delay: time.Hour}.Do(ctx, func(context.Context) error {
		calls++
		return retry.Transient(errBoom)
	})

	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTransient(t *testing.T) {
	assert.NoError(t, retry.Transient(nil))
	assert.True(t, retry.IsTransient(retry.Transient(errBoom)))
	assert.False(t, retry.IsTransient(errBoom))
}
