package download

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
	ioutils "github.com/handiism/shelfsync/internal/io"
)

// LockFileName is created in the destination root while a batch runs.
const LockFileName = ".shelfsync.lock"

// ErrLocked is returned when another process is downloading into the same
// destination.
var ErrLocked = errors.New("destination is locked by another shelfsync process")

func lockDestination(dest string) (*flock.Flock, error) {
	if err := ioutils.EnsureDir(dest); err != nil {
		return nil, fmt.Errorf("create destination: %w", err)
	}

	lock := flock.New(filepath.Join(dest, LockFileName))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, dest)
	}
	return lock, nil
}
