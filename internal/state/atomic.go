package state

import (
	"fmt"
	"os"
	"path/filepath"
)

// AtomicWrite replaces the file at path with data.
//
// The data goes to a temp file in the target directory, is fsynced, and is
// then renamed over path. Readers see either the old document or the new one,
// never a truncated file. The parent directory is created if missing.
func AtomicWrite(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := EnsureDir(dir); err != nil {
		return fmt.Errorf("failed to ensure parent directory: %w", err)
	}

	tmp, err := CreateSibling(path)
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}

	if err := CommitSibling(tmp, path, perm); err != nil {
		return err
	}

	committed = true
	return nil
}

// CreateSibling opens a temp file next to path. The rename performed by
// CommitSibling stays on one filesystem because of that.
func CreateSibling(path string) (*os.File, error) {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	return f, nil
}

// CommitSibling syncs and closes tmp, then renames it to path.
// On error the caller still owns tmp and should remove it.
func CommitSibling(tmp *os.File, path string, perm os.FileMode) error {
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Chmod(tmp.Name(), perm); err != nil {
		return fmt.Errorf("failed to set permissions on temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to rename temp file to target: %w", err)
	}

	return nil
}
