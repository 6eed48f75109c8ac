// Whole-file read, replace and remove.

package jsondb

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// readFile returns the content of path, or nil if it does not exist.
func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is derived from a validated identity
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

// replaceFile writes data to a temporary file next to path and renames it
// into place, so readers see either the old or the new content.
func replaceFile(path string, data []byte) error {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		return errors.Join(fmt.Errorf("failed to write temp file: %w", err), f.Close(), os.Remove(tmp))
	}
	if err := f.Sync(); err != nil {
		return errors.Join(fmt.Errorf("failed to sync temp file: %w", err), f.Close(), os.Remove(tmp))
	}
	if err := f.Close(); err != nil {
		return errors.Join(fmt.Errorf("failed to close temp file: %w", err), os.Remove(tmp))
	}
	if err := os.Chmod(tmp, 0o644); err != nil { //nolint:gosec // G302: data file
		return errors.Join(fmt.Errorf("failed to chmod temp file: %w", err), os.Remove(tmp))
	}
	if err := os.Rename(tmp, path); err != nil {
		return errors.Join(fmt.Errorf("failed to rename temp file: %w", err), os.Remove(tmp))
	}
	return nil
}

// overwriteFile truncates path and writes data in place. A concurrent reader
// or a crash can observe a partial file.
func overwriteFile(path string, data []byte) error {
	return os.WriteFile(path, data, 0o644) //nolint:gosec // G306: data file
}

// removeFile deletes path. A missing file is not an error.
func removeFile(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
