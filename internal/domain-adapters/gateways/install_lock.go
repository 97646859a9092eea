package gateways

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"go.trai.ch/zerr"

	"github.com/jwuxan/homebrew-lofetch/internal/domain/entities"
)

const lockRetryDelay = 100 * time.Millisecond

// InstallLocker serializes installs of one formula across processes with a file lock
type InstallLocker struct {
	lockDir string
	timeout time.Duration
}

// NewInstallLocker creates a locker storing lock files under prefix/var/lock
func NewInstallLocker(prefix string, timeout time.Duration) *InstallLocker {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &InstallLocker{
		lockDir: filepath.Join(prefix, "var", "lock"),
		timeout: timeout,
	}
}

// Lock acquires the exclusive lock for formula, waiting up to the configured timeout
func (l *InstallLocker) Lock(ctx context.Context, formula string) (func() error, error) {
	if err := os.MkdirAll(l.lockDir, 0755); err != nil {
		return nil, fmt.Errorf("creating lock directory: %w", err)
	}

	lock := flock.New(filepath.Join(l.lockDir, formula+".lock"))

	lockCtx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	locked, err := lock.TryLockContext(lockCtx, lockRetryDelay)
	if err != nil && lockCtx.Err() == nil {
		return nil, fmt.Errorf("acquiring lock: %w", err)
	}
	if !locked {
		return nil, zerr.With(zerr.Wrap(entities.ErrInstallLocked, "acquire install lock"), "formula", formula)
	}

	return lock.Unlock, nil
}
