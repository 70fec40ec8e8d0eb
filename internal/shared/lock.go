package shared

import (
	"fmt"

	"github.com/gofrs/flock"
)

// LockOutput takes an exclusive, non-blocking lock beside the dataset file at path.
//
// A second collect writing to the same file gets [ErrLocked]. Call Unlock on the returned lock when done.
func LockOutput(path string) (*flock.Flock, error) {
	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to lock %s: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrLocked, path)
	}
	return lock, nil
}
