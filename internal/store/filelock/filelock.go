// Package filelock guards the schema file against concurrent-process opens
// using an advisory flock(2), since the in-process Handle (internal/store)
// only arbitrates goroutines within one running server (§5 "Resource
// policy": "the schema file handle is held for the lifetime of the
// Database").
package filelock

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Lock takes an exclusive advisory lock on f's underlying file descriptor.
// It blocks until the lock is available.
func Lock(f *os.File) error {
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX); err != nil {
		return fmt.Errorf("filelock: lock %s: %w", f.Name(), err)
	}
	return nil
}

// Unlock releases the advisory lock taken by Lock.
func Unlock(f *os.File) error {
	if err := unix.Flock(int(f.Fd()), unix.LOCK_UN); err != nil {
		return fmt.Errorf("filelock: unlock %s: %w", f.Name(), err)
	}
	return nil
}
