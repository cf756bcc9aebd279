package ingestion

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetryWithBackoff_SucceedsAfterFailures(t *testing.T) {
	attempts := 0
	err := retryWithBackoff(context.Background(), quietLogger(), func() error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	}, 3, time.Millisecond)

	assert.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetryWithBackoff_ReturnsLastError(t *testing.T) {
	attempts := 0
	err := retryWithBackoff(context.Background(), quietLogger(), func() error {
		attempts++
		return errors.New("always fails")
	}, 2, time.Millisecond)

	assert.EqualError(t, err, "always fails")
	assert.Equal(t, 2, attempts)
}

func TestRetryWithBackoff_InvalidAttempts(t *testing.T) {
	err := retryWithBackoff(context.Background(), quietLogger(), func() error { return nil }, 0, 0)
	assert.ErrorIs(t, err, ErrInvalidMaxAttempts)
}

func TestRetryWithBackoff_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	err := retryWithBackoff(ctx, quietLogger(), func() error {
		attempts++
		cancel()
		return errors.New("fails")
	}, 5, time.Hour)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}
