//go:build unix

package flock

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

const retryInterval = 50 * time.Millisecond

// Lock acquires an exclusive advisory lock on path+".lock". It polls with
// non-blocking flock attempts until the lock is acquired or the context
// expires, so a dead or wedged peer never blocks the caller indefinitely.
// The returned file must be passed to Unlock.
func Lock(ctx context.Context, path string) (*os.File, error) {
	f, err := os.OpenFile(path+".lock", os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}

	for {
		err = unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
		if err == nil {
			return f, nil
		}
		if err != unix.EWOULDBLOCK && err != unix.EINTR {
			_ = f.Close()
			return nil, fmt.Errorf("flock: %w", err)
		}

		select {
		case <-ctx.Done():
			_ = f.Close()
			return nil, fmt.Errorf("acquire lock %s: %w", path, ctx.Err())
		case <-time.After(retryInterval):
		}
	}
}

// Unlock releases the lock and closes the handle. Safe to call with a nil
// file, which means no lock was held.
func Unlock(f *os.File) error {
	if f == nil {
		return nil
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_UN); err != nil {
		_ = f.Close()
		return fmt.Errorf("unlock: %w", err)
	}
	return f.Close()
}
