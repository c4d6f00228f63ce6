/*
Copyright © 2025 Logicos Software

atomic.go implements atomic file writes for parameter records.

Parameter files hold the only copy of a card's secrets. A torn write
(power loss, full disk) of an admin-key or lock-key file would make a
provisioned card permanently inaccessible, so records are written to a
temporary file in the same directory and renamed into place.
*/
package cmd

import (
	"os"
	"path/filepath"
)

// AtomicWriter writes to a temporary file and atomically renames it to
// the target path on Commit.
type AtomicWriter struct {
	targetPath string
	tempPath   string
	tempFile   *os.File
	committed  bool
}

// NewAtomicWriter creates an AtomicWriter for the given target path.
// The temporary file is created in the same directory as the target so
// the final rename stays on one filesystem, with mode 0600 since every
// record written through it contains secrets.
func NewAtomicWriter(targetPath string) (*AtomicWriter, error) {
	dir := filepath.Dir(targetPath)
	base := filepath.Base(targetPath)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &ConfigError{Path: dir, Op: "write", Cause: err}
	}

	tempPath := filepath.Join(dir, "."+base+".tmp")
	tempFile, err := os.OpenFile(tempPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, &ConfigError{Path: tempPath, Op: "write", Cause: err}
	}

	return &AtomicWriter{
		targetPath: targetPath,
		tempPath:   tempPath,
		tempFile:   tempFile,
	}, nil
}

// Write implements io.Writer.
func (w *AtomicWriter) Write(p []byte) (int, error) {
	return w.tempFile.Write(p)
}

// Commit syncs, closes and atomically renames the temp file onto the
// target path.
func (w *AtomicWriter) Commit() error {
	if w.committed {
		return nil
	}
	if err := w.tempFile.Sync(); err != nil {
		return &ConfigError{Path: w.targetPath, Op: "write", Cause: err}
	}
	if err := w.tempFile.Close(); err != nil {
		return &ConfigError{Path: w.targetPath, Op: "write", Cause: err}
	}
	if err := os.Rename(w.tempPath, w.targetPath); err != nil {
		os.Remove(w.tempPath)
		return &ConfigError{Path: w.targetPath, Op: "write", Cause: err}
	}
	w.committed = true
	return nil
}

// Abort cancels the write and removes the temp file. Safe to defer
// alongside Commit: it does nothing once committed.
func (w *AtomicWriter) Abort() {
	if w.committed {
		return
	}
	w.tempFile.Close()
	os.Remove(w.tempPath)
}

// WriteFileAtomic writes data to path atomically with mode 0600.
func WriteFileAtomic(path string, data []byte) error {
	w, err := NewAtomicWriter(path)
	if err != nil {
		return err
	}
	defer w.Abort()

	if _, err := w.Write(data); err != nil {
		return &ConfigError{Path: path, Op: "write", Cause: err}
	}
	return w.Commit()
}
