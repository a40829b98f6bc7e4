// Package file provides file operations that survive crossing filesystem
// boundaries and interrupted writes.
package file

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Rename renames the file from src to dst. If src and dst can't be renamed
// regularly, the data is copied from src to dst. dst will be overwritten
// if it already exists. src will be removed after all data has been copied
// successfully. Both files exist during copying.
func Rename(src, dst string) error {
	// First try to rename the file
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	// If renaming the file fails, copy the data
	source, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}

	destination, err := os.Create(dst)
	if err != nil {
		source.Close()
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	defer destination.Close()

	if _, err := io.Copy(destination, source); err != nil {
		source.Close()
		os.Remove(dst)
		return fmt.Errorf("failed to copy data from source to destination: %w", err)
	}

	source.Close()

	if err := os.Remove(src); err != nil {
		os.Remove(dst)
		return fmt.Errorf("failed to remove source file: %w", err)
	}

	return nil
}

// WriteSafe writes data to a temporary file next to path and renames it to
// path afterwards. A reader of path sees either the old or the new content.
func WriteSafe(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)

	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	tmpname := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpname)
		return fmt.Errorf("failed to write temporary file: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpname)
		return fmt.Errorf("failed to sync temporary file: %w", err)
	}

	tmp.Close()

	if err := os.Chmod(tmpname, perm); err != nil {
		os.Remove(tmpname)
		return fmt.Errorf("failed to change mode: %w", err)
	}

	if err := Rename(tmpname, path); err != nil {
		os.Remove(tmpname)
		return err
	}

	return nil
}
