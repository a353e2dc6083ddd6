package service

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"

	"github.com/KaramelBytes/ingestor/internal/gatherer"
)

// instanceLock keeps a second ingestor from scanning the same import root.
type instanceLock struct {
	flock *flock.Flock
	path  string
}

func newInstanceLock(path string) *instanceLock {
	return &instanceLock{flock: flock.New(path), path: path}
}

// TryLock acquires the lock without blocking. It reports false when another
// process holds it.
func (l *instanceLock) TryLock() (bool, error) {
	ok, err := l.flock.TryLock()
	if err != nil {
		return false, fmt.Errorf("failed to try lock on %s: %w", l.path, err)
	}
	return ok, nil
}

func (l *instanceLock) Unlock() error {
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock on %s: %w", l.path, err)
	}
	return nil
}

// LockPath returns the configured lock file, or a per-root file in the
// system temp directory named after the import root's digest.
func LockPath(lockFile, importDir string) (string, error) {
	if lockFile != "" {
		return lockFile, nil
	}
	abs, err := filepath.Abs(importDir)
	if err != nil {
		return "", fmt.Errorf("resolve import dir: %w", err)
	}
	sum, err := gatherer.Hash(strings.NewReader(abs))
	if err != nil {
		return "", err
	}
	return filepath.Join(os.TempDir(), "ingestor-"+sum[:12]+".lock"), nil
}
