// Package lock guards a data file against concurrent use by more than one
// engine instance.
package lock

import (
	"errors"
	"fmt"

	"github.com/gofrs/flock"
)

// ErrLocked is returned when another holder already owns the lock.
var ErrLocked = errors.New("lock: file already in use by another bitcask instance")

// LockFile attempts to acquire an exclusive, non-blocking advisory lock on
// the file at path.
//
// On Unix systems this is flock(2) with LOCK_EX|LOCK_NB on a descriptor
// private to the returned handle, so the lock follows the inode: renaming
// another file over path does not transfer it. The lock only excludes other
// cooperating callers of LockFile.
//
// The returned handle must be kept until UnlockFile is called.
func LockFile(path string) (*flock.Flock, error) {
	fl := flock.New(path)

	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("unable to lock %s: %w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, path)
	}

	return fl, nil
}

// UnlockFile releases a lock acquired via LockFile and closes its descriptor.
func UnlockFile(fl *flock.Flock) error {
	if fl == nil {
		return nil
	}
	return fl.Unlock()
}
