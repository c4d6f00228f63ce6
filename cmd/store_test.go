/*
Copyright © 2025 Logicos Software

store_test.go contains unit tests for parameter record persistence and
the load-or-generate semantics.
*/
package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadOrGenerateGPParameters(t *testing.T) {
	log := NewLogger(false)

	t.Run("missing file generates and persists", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "gp.toml")

		first, err := LoadOrGenerateGPParameters(log, path)
		if err != nil {
			t.Fatalf("first LoadOrGenerateGPParameters failed: %v", err)
		}
		if err := first.CheckRequirements(); err != nil {
			t.Errorf("generated record fails validation: %v", err)
		}
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("record was not persisted: %v", err)
		}

		// A second call must load the persisted record, not
		// generate a new one.
		second, err := LoadOrGenerateGPParameters(log, path)
		if err != nil {
			t.Fatalf("second LoadOrGenerateGPParameters failed: %v", err)
		}
		if !first.Equal(second) {
			t.Errorf("reload differs from generation: %q vs %q", first.Key, second.Key)
		}
	})

	t.Run("loaded record is case-normalized", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "gp.toml")
		content := "key = \"404142434445464748494a4b4c4d4e4f\"\n"
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("writing record: %v", err)
		}

		p, err := LoadOrGenerateGPParameters(log, path)
		if err != nil {
			t.Fatalf("LoadOrGenerateGPParameters failed: %v", err)
		}
		if p.Key != DefaultGPKey {
			t.Errorf("key = %q, want normalized %q", p.Key, DefaultGPKey)
		}
	})

	t.Run("corrupt file is fatal, not regenerated", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "gp.toml")
		corrupt := []byte("key = \"40414243\nnot toml at all")
		if err := os.WriteFile(path, corrupt, 0o600); err != nil {
			t.Fatalf("writing record: %v", err)
		}

		_, err := LoadOrGenerateGPParameters(log, path)
		var cerr *ConfigError
		if !errors.As(err, &cerr) {
			t.Fatalf("got %v, want ConfigError", err)
		}
		if cerr.Op != "parse" {
			t.Errorf("ConfigError op = %q, want parse", cerr.Op)
		}

		// The corrupt file must be untouched: it may be a mangled
		// copy of real card secrets.
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("reading record back: %v", err)
		}
		if string(data) != string(corrupt) {
			t.Error("corrupt record was overwritten")
		}
	})

	t.Run("invalid loaded value is a ValidationError", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "gp.toml")
		if err := os.WriteFile(path, []byte("key = \"too-short\"\n"), 0o600); err != nil {
			t.Fatalf("writing record: %v", err)
		}

		_, err := LoadOrGenerateGPParameters(log, path)
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("got %v, want ValidationError", err)
		}
	})
}

func TestLoadGPParametersRequiresFile(t *testing.T) {
	log := NewLogger(false)
	path := filepath.Join(t.TempDir(), "current.toml")

	_, err := LoadGPParameters(log, path)
	var cerr *ConfigError
	if !errors.As(err, &cerr) {
		t.Fatalf("got %v, want ConfigError", err)
	}
	if cerr.Op != "require" {
		t.Errorf("ConfigError op = %q, want require", cerr.Op)
	}

	// And nothing was generated in its place.
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Error("load-required created a file")
	}
}

func TestLoadOrGenerateGidsParameters(t *testing.T) {
	log := NewLogger(false)
	path := filepath.Join(t.TempDir(), "gids.toml")

	first, err := LoadOrGenerateGidsParameters(log, path)
	if err != nil {
		t.Fatalf("LoadOrGenerateGidsParameters failed: %v", err)
	}

	second, err := LoadOrGenerateGidsParameters(log, path)
	if err != nil {
		t.Fatalf("second LoadOrGenerateGidsParameters failed: %v", err)
	}
	if *first != *second {
		t.Errorf("reload differs from generation: %+v vs %+v", first, second)
	}

	// The persisted file uses the snake_case field names operators
	// edit by hand.
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading record: %v", err)
	}
	for _, key := range []string{"admin_key", "sn", "pin"} {
		if !strings.Contains(string(data), key) {
			t.Errorf("persisted record missing %q key:\n%s", key, data)
		}
	}
}

func TestLoadOrGenerateOpenPGPRecords(t *testing.T) {
	log := NewLogger(false)

	t.Run("install parameters", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "install.toml")
		first, err := LoadOrGenerateOpenPGPInstallParameters(log, path)
		if err != nil {
			t.Fatalf("LoadOrGenerateOpenPGPInstallParameters failed: %v", err)
		}
		if first.ManufacturerCode != DefaultManufacturerCode {
			t.Errorf("manufacturer code = %q, want %q", first.ManufacturerCode, DefaultManufacturerCode)
		}
		second, err := LoadOrGenerateOpenPGPInstallParameters(log, path)
		if err != nil {
			t.Fatalf("second load failed: %v", err)
		}
		if *first != *second {
			t.Errorf("reload differs from generation: %+v vs %+v", first, second)
		}
	})

	t.Run("pins", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "pins.toml")
		first, err := LoadOrGenerateOpenPGPPins(log, path)
		if err != nil {
			t.Fatalf("LoadOrGenerateOpenPGPPins failed: %v", err)
		}
		second, err := LoadOrGenerateOpenPGPPins(log, path)
		if err != nil {
			t.Fatalf("second load failed: %v", err)
		}
		if !first.Equal(second) {
			t.Errorf("reload differs from generation: %+v vs %+v", first, second)
		}
	})

	t.Run("current pins are load-only", func(t *testing.T) {
		_, err := LoadOpenPGPPins(log, filepath.Join(t.TempDir(), "pins.toml"))
		var cerr *ConfigError
		if !errors.As(err, &cerr) {
			t.Fatalf("got %v, want ConfigError", err)
		}
	})
}
