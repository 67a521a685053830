// Package exportimport implements spec.md §6's "Import/Export" external
// interface: atomic file-level copies of the live bbolt environment to and
// from a sidecar export path, serialized against concurrent export/import
// calls with an advisory gofrs/flock lock — mirroring the way the teacher's
// cmd/bd/sync.go guards its own database mutations with a `.sync.lock`
// sidecar file.
package exportimport

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/untoldecay/grove/internal/store"
)

// lockTimeout bounds how long Export/Import wait for the advisory lock
// before giving up, matching the teacher's TryLock-then-fail pattern rather
// than blocking forever.
const lockTimeout = 5 * time.Second

func lockPathFor(dbPath string) string {
	return dbPath + ".lock"
}

func withLock(dbPath string, fn func() error) error {
	lock := flock.New(lockPathFor(dbPath))
	ctx, cancel := context.WithTimeout(context.Background(), lockTimeout)
	defer cancel()
	locked, err := lock.TryLockContext(ctx, 50*time.Millisecond)
	if err != nil {
		return fmt.Errorf("exportimport: acquire lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("exportimport: another export/import is in progress")
	}
	defer func() { _ = lock.Unlock() }()
	return fn()
}

// Export copies the live environment at liveDB to exportPath, atomically:
// the copy is written to a temp file in exportPath's directory first, then
// renamed over exportPath so a reader never observes a partial file.
func Export(liveDB, exportPath string) error {
	return withLock(liveDB, func() error {
		if _, err := os.Stat(liveDB); err != nil {
			return fmt.Errorf("exportimport: export: %w", err)
		}
		return atomicCopy(liveDB, exportPath)
	})
}

// Import replaces the live environment at liveDB with the contents of
// exportPath, rebinding e in place: exportPath is copied to a temp file
// beside liveDB, e's live bbolt.DB handle is closed, the temp file is
// renamed over liveDB, and e is reopened against the same path - so the
// caller keeps using the same *store.Engine it already holds rather than
// being handed a new one. Once e has been closed, Import reopens it whether
// or not the rename itself succeeded; on a failure during the rename,
// liveDB's prior contents are what e ends up reopened against. Failures
// before the close leave e open as it was. Two cases leave e closed: a
// failed close (Import returns without reopening) and a failed reopen.
func Import(exportPath, liveDB string, e *store.Engine) error {
	return withLock(liveDB, func() error {
		if _, err := os.Stat(exportPath); err != nil {
			return fmt.Errorf("exportimport: import: %w", err)
		}
		tmpPath, err := copyToTempBeside(exportPath, liveDB)
		if err != nil {
			return err
		}
		defer os.Remove(tmpPath)

		if err := e.Close(); err != nil {
			return fmt.Errorf("exportimport: close before import: %w", err)
		}
		renameErr := os.Rename(tmpPath, liveDB)
		if reopenErr := e.Reopen(); reopenErr != nil {
			if renameErr != nil {
				return fmt.Errorf("exportimport: rename %s to %s: %v, then reopen failed: %w", tmpPath, liveDB, renameErr, reopenErr)
			}
			return fmt.Errorf("exportimport: reopen after import: %w", reopenErr)
		}
		if renameErr != nil {
			return fmt.Errorf("exportimport: rename %s to %s: %w", tmpPath, liveDB, renameErr)
		}
		return nil
	})
}

// atomicCopy copies src to dst via a temp file in dst's directory followed
// by a rename, so dst is only ever observed fully written or not at all.
func atomicCopy(src, dst string) error {
	tmpPath, err := copyToTempBeside(src, dst)
	if err != nil {
		return err
	}
	defer os.Remove(tmpPath)
	if err := os.Rename(tmpPath, dst); err != nil {
		return fmt.Errorf("exportimport: rename %s to %s: %w", tmpPath, dst, err)
	}
	return nil
}

// copyToTempBeside copies src into a new temp file in dst's directory and
// returns its path, without renaming it over dst - the caller decides when
// the rename happens (immediately, for Export; after closing an open
// Engine handle, for Import).
func copyToTempBeside(src, dst string) (tmpPath string, err error) {
	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("exportimport: open %s: %w", src, err)
	}
	defer in.Close()

	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("exportimport: mkdir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".grove-copy-*")
	if err != nil {
		return "", fmt.Errorf("exportimport: create temp file: %w", err)
	}
	tmpPath = tmp.Name()

	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("exportimport: copy %s to %s: %w", src, tmpPath, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("exportimport: sync %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("exportimport: close %s: %w", tmpPath, err)
	}
	return tmpPath, nil
}
