package utils

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// WriteFileAtomic streams write into a temporary file next to path and renames
// it over the destination once write and fsync succeed. The destination is
// left untouched when anything fails.
func WriteFileAtomic(path string, write func(w io.Writer) error) error {
	dir := filepath.Dir(path)
	filename := filepath.Base(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filename+".tmp.*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	tmpClosed := false

	success := false
	defer func() {
		if !success {
			if !tmpClosed {
				_ = tmp.Close()
			}
			_ = os.Remove(tmpName)
		}
	}()

	if err := write(tmp); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	tmpClosed = true

	if err := os.Rename(tmpName, path); err != nil {
		// On Windows, os.Rename can fail if destination exists.
		if _, statErr := os.Stat(path); statErr != nil {
			return fmt.Errorf("failed to rename temp file: %w", err)
		}
		backupPath := path + ".bak.tmp"
		_ = os.Remove(backupPath)
		if backupErr := os.Rename(path, backupPath); backupErr != nil {
			return fmt.Errorf("failed to backup existing file: %w (original rename err: %v)", backupErr, err)
		}
		if renameErr := os.Rename(tmpName, path); renameErr != nil {
			_ = os.Rename(backupPath, path)
			return fmt.Errorf("failed to rename temp file after backup: %w", renameErr)
		}
		_ = os.Remove(backupPath)
	}

	success = true
	return nil
}

// WriteBytesAtomic is WriteFileAtomic for an in-memory payload.
func WriteBytesAtomic(path string, payload []byte) error {
	return WriteFileAtomic(path, func(w io.Writer) error {
		_, err := io.Copy(w, bytes.NewReader(payload))
		return err
	})
}
