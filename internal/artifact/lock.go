package artifact

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// LockFile is the name of the cache lock inside a model directory.
const LockFile = ".lock"

// Lock obtains an exclusive file lock on dir so only one process trains or
// writes artifacts at a time. The returned func releases it.
func Lock(ctx context.Context, dir string, timeout time.Duration) (func(), error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return func() {}, fmt.Errorf("cannot create model dir %s: %w", dir, err)
	}
	lockPath := filepath.Join(dir, LockFile)
	l := flock.New(lockPath)
	deadline := time.Now().Add(timeout)
	for {
		locked, err := l.TryLock()
		if err != nil {
			return func() {}, fmt.Errorf("cannot acquire model lock: %w", err)
		}
		if locked {
			return func() { _ = l.Unlock() }, nil
		}
		if time.Now().After(deadline) {
			return func() {}, fmt.Errorf("model cache is busy (lock: %s)", lockPath)
		}
		select {
		case <-ctx.Done():
			return func() {}, ctx.Err()
		case <-time.After(200 * time.Millisecond):
		}
	}
}
