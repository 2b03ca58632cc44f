package database

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsBusyError(t *testing.T) {
	t.Parallel()

	assert.False(t, isBusyError(nil))
	assert.False(t, isBusyError(errors.New("some other error")))
	assert.True(t, isBusyError(errors.New("database is locked")))
	assert.True(t, isBusyError(errors.New("database table is locked")))
	assert.True(t, isBusyError(errors.New("SQLITE_BUSY: cannot start transaction")))
	assert.True(t, isBusyError(errors.New("sqlite error (5): database busy")))
}

func TestWithRetry_SucceedsFirstTry(t *testing.T) {
	t.Parallel()

	calls := 0
	err := withRetry(context.Background(), 3, func() error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestWithRetry_RetriesBusyErrors(t *testing.T) {
	t.Parallel()

	calls := 0
	err := withRetry(context.Background(), 3, func() error {
		calls++
		if calls < 3 {
			return errors.New("database is locked")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestWithRetry_GivesUpAfterMaxRetries(t *testing.T) {
	t.Parallel()

	calls := 0
	err := withRetry(context.Background(), 2, func() error {
		calls++
		return errors.New("database is locked")
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestWithRetry_DoesNotRetryOtherErrors(t *testing.T) {
	t.Parallel()

	calls := 0
	err := withRetry(context.Background(), 3, func() error {
		calls++
		return errors.New("syntax error")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}
