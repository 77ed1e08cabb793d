//go:build unix

package flock

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockUnlock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	f, err := Lock(context.Background(), path)
	require.NoError(t, err)
	require.NotNil(t, f)
	require.NoError(t, Unlock(f))
}

func TestLockContention(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	first, err := Lock(context.Background(), path)
	require.NoError(t, err)

	// a second acquisition must fail once its deadline passes
	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	_, err = Lock(ctx, path)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, Unlock(first))

	// and succeed again once the holder released
	second, err := Lock(context.Background(), path)
	require.NoError(t, err)
	require.NoError(t, Unlock(second))
}

func TestUnlockNil(t *testing.T) {
	require.NoError(t, Unlock(nil))
}
