package state

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/flock"
)

// ErrLockHeld is returned when another process holds the base directory lock.
var ErrLockHeld = errors.New("base directory is locked by another process")

const (
	// DefaultLockRetry is how often a blocked lock attempt is retried.
	DefaultLockRetry = 250 * time.Millisecond

	// DefaultLockWait bounds how long LockLayout waits for another pass.
	DefaultLockWait = 5 * time.Second
)

// DirLock is an advisory lock over a Layout's base directory. Only one
// validation pass may write into the same base directory at a time.
type DirLock struct {
	lock *flock.Flock
}

// LockLayout acquires the lock for l. It waits at most wait (DefaultLockWait
// when wait is not positive) or until ctx is done, then fails with
// ErrLockHeld.
func LockLayout(ctx context.Context, l Layout, wait time.Duration) (*DirLock, error) {
	if err := EnsureDir(l.Base); err != nil {
		return nil, err
	}

	if wait <= 0 {
		wait = DefaultLockWait
	}
	ctx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	fl := flock.New(l.LockPath())
	locked, err := fl.TryLockContext(ctx, DefaultLockRetry)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", ErrLockHeld, ctx.Err())
		}
		return nil, fmt.Errorf("acquire lock %s: %w", l.LockPath(), err)
	}
	if !locked {
		return nil, ErrLockHeld
	}

	return &DirLock{lock: fl}, nil
}

// TryLockLayout acquires the lock for l without waiting.
func TryLockLayout(l Layout) (*DirLock, error) {
	if err := EnsureDir(l.Base); err != nil {
		return nil, err
	}

	fl := flock.New(l.LockPath())
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", l.LockPath(), err)
	}
	if !locked {
		return nil, ErrLockHeld
	}
	return &DirLock{lock: fl}, nil
}

// Unlock releases the lock. It is safe to call more than once.
func (d *DirLock) Unlock() error {
	if d == nil || d.lock == nil {
		return nil
	}
	return d.lock.Unlock()
}

// Path returns the lock file path.
func (d *DirLock) Path() string {
	return d.lock.Path()
}
