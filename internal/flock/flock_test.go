package flock

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteLockCreatesAndReleases(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cluster.xml")

	l, err := LockFileWrite(path)
	if err != nil {
		t.Fatalf("LockFileWrite: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("lock file not created: %v", err)
	}
	if err := UnlockFile(l); err != nil {
		t.Fatalf("UnlockFile: %v", err)
	}
}

func TestReadLocksShare(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cluster.xml")
	if err := os.WriteFile(path, []byte("<cluster/>"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	l1, err := LockFileRead(path)
	if err != nil {
		t.Fatalf("first LockFileRead: %v", err)
	}
	// A second shared lock on the same file must not block.
	l2, err := LockFileRead(path)
	if err != nil {
		t.Fatalf("second LockFileRead: %v", err)
	}

	if err := UnlockFile(l1); err != nil {
		t.Fatalf("UnlockFile l1: %v", err)
	}
	if err := UnlockFile(l2); err != nil {
		t.Fatalf("UnlockFile l2: %v", err)
	}
}

func TestUnlockNilIsNoOp(t *testing.T) {
	if err := UnlockFile(nil); err != nil {
		t.Fatalf("UnlockFile(nil): %v", err)
	}
}
