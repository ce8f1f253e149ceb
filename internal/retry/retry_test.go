package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestExecuteSucceedsAfterFailures(t *testing.T) {
	calls := 0
	err := Execute(context.Background(), &Config{Attempts: 3, Interval: time.Millisecond}, zaptest.NewLogger(t),
		func(context.Context) error {
			calls++
			if calls < 3 {
				return errors.New("connection refused")
			}
			return nil
		})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestExecuteExhausted(t *testing.T) {
	boom := errors.New("connection refused")
	calls := 0
	err := Execute(context.Background(), &Config{Attempts: 2, Interval: time.Millisecond}, nil,
		func(context.Context) error {
			calls++
			return boom
		})

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls)
}

func TestExecuteNilConfigRunsOnce(t *testing.T) {
	calls := 0
	err := Execute(context.Background(), nil, nil, func(context.Context) error {
		calls++
		return errors.New("nope")
	})
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestExecuteStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Execute(ctx, &Config{Attempts: 10, Interval: time.Hour}, nil, func(context.Context) error {
		calls++
		cancel()
		return errors.New("nope")
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultRetryConfig().Validate())
	assert.Error(t, (&Config{Attempts: 0}).Validate())
	assert.Error(t, (&Config{Attempts: 1, Interval: -time.Second}).Validate())
	assert.Error(t, (&Config{Attempts: 1, Interval: time.Minute, MaxInterval: time.Second}).Validate())

	var nilCfg *Config
	assert.NoError(t, nilCfg.Validate())
}
