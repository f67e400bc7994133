// Package flock implements advisory whole-file locks for coordination with
// external editors (e.g. an IDE holding a cluster's XML file open while the
// core re-saves it). The core itself never calls these: they exist purely
// as an external interface, a thin scoped-acquisition/release wrapper
// around the underlying flock(2) syscall.
package flock

import (
	"os"

	"golang.org/x/sys/unix"
)

// Lock holds an open file descriptor under an advisory flock(2) lock.
// Callers must call Unlock to release it; leaking a Lock leaks the
// underlying *os.File.
type Lock struct {
	f *os.File
}

// LockFileRead opens path and takes a shared (read) advisory lock, blocking
// until it is available.
func LockFileRead(path string) (*Lock, error) {
	return lock(path, os.O_RDONLY, unix.LOCK_SH)
}

// LockFileWrite opens path and takes an exclusive (write) advisory lock,
// blocking until it is available. The file is created if it does not
// exist, matching the writer's "open for this save" use.
func LockFileWrite(path string) (*Lock, error) {
	return lock(path, os.O_RDWR|os.O_CREATE, unix.LOCK_EX)
}

func lock(path string, flag int, how int) (*Lock, error) {
	f, err := os.OpenFile(path, flag, 0644)
	if err != nil {
		return nil, err
	}
	if err := unix.Flock(int(f.Fd()), how); err != nil {
		f.Close()
		return nil, err
	}
	return &Lock{f: f}, nil
}

// UnlockFile releases l's advisory lock and closes the underlying file.
func UnlockFile(l *Lock) error {
	if l == nil || l.f == nil {
		return nil
	}
	err := unix.Flock(int(l.f.Fd()), unix.LOCK_UN)
	if cerr := l.f.Close(); err == nil {
		err = cerr
	}
	return err
}
