package state

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// AtomicWrite writes data to path through a temp file in the same directory,
// so readers never observe a partially written file.
func AtomicWrite(path string, data []byte, perm os.FileMode) error {
	_, err := AtomicWriteFrom(path, bytes.NewReader(data), perm)
	return err
}

// AtomicWriteFrom streams r into path using the same temp file, fsync and
// rename sequence as AtomicWrite. It returns the number of bytes written.
// On failure the previous content of path, if any, is left untouched.
func AtomicWriteFrom(path string, r io.Reader, perm os.FileMode) (int64, error) {
	dir := filepath.Dir(path)
	if err := EnsureDir(dir); err != nil {
		return 0, fmt.Errorf("ensure parent directory: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			_ = tmpFile.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	n, err := io.Copy(tmpFile, r)
	if err != nil {
		return n, fmt.Errorf("write temp file: %w", err)
	}

	if err := tmpFile.Sync(); err != nil {
		return n, fmt.Errorf("sync temp file: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return n, fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Chmod(tmpPath, perm); err != nil {
		return n, fmt.Errorf("set permissions on temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return n, fmt.Errorf("rename temp file to target: %w", err)
	}

	success = true
	return n, nil
}
