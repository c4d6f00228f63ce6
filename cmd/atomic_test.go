/*
Copyright © 2025 Logicos Software

atomic_test.go contains unit tests for atomic parameter-file writes.
*/
package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()

	t.Run("basic write", func(t *testing.T) {
		path := filepath.Join(dir, "record.toml")
		data := []byte("key = \"value\"\n")

		if err := WriteFileAtomic(path, data); err != nil {
			t.Fatalf("WriteFileAtomic failed: %v", err)
		}

		got, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("ReadFile failed: %v", err)
		}
		if !bytes.Equal(got, data) {
			t.Errorf("file contents = %q, want %q", got, data)
		}

		// Records hold secrets, so the file must not be world
		// readable.
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("Stat failed: %v", err)
		}
		if perm := info.Mode().Perm(); perm != 0o600 {
			t.Errorf("file mode = %o, want 600", perm)
		}

		// And the temp file must be gone.
		tempPath := filepath.Join(dir, ".record.toml.tmp")
		if _, err := os.Stat(tempPath); !os.IsNotExist(err) {
			t.Error("temp file still exists after commit")
		}
	})

	t.Run("overwrites existing record", func(t *testing.T) {
		path := filepath.Join(dir, "record2.toml")
		if err := WriteFileAtomic(path, []byte("old")); err != nil {
			t.Fatalf("first write failed: %v", err)
		}
		if err := WriteFileAtomic(path, []byte("new")); err != nil {
			t.Fatalf("second write failed: %v", err)
		}
		got, _ := os.ReadFile(path)
		if string(got) != "new" {
			t.Errorf("file contents = %q, want %q", got, "new")
		}
	})

	t.Run("creates missing directories", func(t *testing.T) {
		path := filepath.Join(dir, "sub", "dir", "record.toml")
		if err := WriteFileAtomic(path, []byte("x")); err != nil {
			t.Fatalf("WriteFileAtomic failed: %v", err)
		}
		if _, err := os.Stat(path); err != nil {
			t.Errorf("file not created: %v", err)
		}
	})

	t.Run("abort leaves no trace", func(t *testing.T) {
		path := filepath.Join(dir, "aborted.toml")
		w, err := NewAtomicWriter(path)
		if err != nil {
			t.Fatalf("NewAtomicWriter failed: %v", err)
		}
		w.Write([]byte("partial"))
		w.Abort()

		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Error("target file exists after abort")
		}
		tempPath := filepath.Join(dir, ".aborted.toml.tmp")
		if _, err := os.Stat(tempPath); !os.IsNotExist(err) {
			t.Error("temp file exists after abort")
		}
	})
}
