/*
Copyright © 2025 Logicos Software

store.go implements load-or-generate persistence of parameter records.

Records are human-editable TOML files, one file per record, with
snake_case keys. The read path distinguishes three outcomes:

  - loaded: file existed and parsed; the record is re-validated
  - not found: only this outcome may trigger generation
  - read/parse error: always fatal; the file may hold the only copy of
    the secrets on an already-provisioned card and is never overwritten

"Required" loads (the parameters currently on a card) never generate:
there is no sensible default for a key that is already on the card.
*/
package cmd

import (
	"errors"
	"io/fs"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// readRecord reads and parses a TOML record from path. It returns
// (false, nil) if the file does not exist, (true, nil) on success, and
// a *ConfigError for every other outcome.
func readRecord(path string, rec Record) (bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, &ConfigError{Path: path, Op: "read", Cause: err}
	}
	if err := toml.Unmarshal(data, rec); err != nil {
		return false, &ConfigError{Path: path, Op: "parse", Cause: err}
	}
	return true, nil
}

// writeRecord persists a record to path as TOML, atomically.
func writeRecord(path string, rec Record) error {
	data, err := toml.Marshal(rec)
	if err != nil {
		return &ConfigError{Path: path, Op: "write", Cause: err}
	}
	return WriteFileAtomic(path, data)
}

// loadOrGenerate loads the record at path into rec, or, only when the
// file does not exist, generates a fresh record with gen and persists
// it immediately so a later run recovers the exact values used. The
// returned bool reports whether the record was generated.
func loadOrGenerate(log *Logger, path string, rec Record, gen func() (Record, error)) (Record, bool, error) {
	log.Debug("attempting to load parameters", "path", path)
	found, err := readRecord(path, rec)
	if err != nil {
		return nil, false, err
	}
	if found {
		if err := rec.CheckRequirements(); err != nil {
			return nil, false, err
		}
		log.Info("loaded parameters", "path", path)
		return rec, false, nil
	}

	log.Info("generating random parameters", "path", path)
	generated, err := gen()
	if err != nil {
		return nil, false, err
	}
	if err := writeRecord(path, generated); err != nil {
		return nil, false, err
	}
	return generated, true, nil
}

// loadRequired loads the record at path into rec and fails if the file
// does not exist.
func loadRequired(log *Logger, path string, rec Record) error {
	log.Debug("loading required parameters", "path", path)
	found, err := readRecord(path, rec)
	if err != nil {
		return err
	}
	if !found {
		return &ConfigError{Path: path, Op: "require", Cause: fs.ErrNotExist}
	}
	if err := rec.CheckRequirements(); err != nil {
		return err
	}
	log.Info("loaded parameters", "path", path)
	return nil
}

// LoadOrGenerateGPParameters resolves a GlobalPlatform lock-key record.
func LoadOrGenerateGPParameters(log *Logger, path string) (*GPParameters, error) {
	rec, _, err := loadOrGenerate(log, path, &GPParameters{}, func() (Record, error) {
		return GenerateGPParameters()
	})
	if err != nil {
		return nil, err
	}
	return rec.(*GPParameters), nil
}

// LoadGPParameters loads an existing GlobalPlatform lock-key record and
// never generates one. Used for the "current" parameters: the key
// already on the card cannot be invented.
func LoadGPParameters(log *Logger, path string) (*GPParameters, error) {
	var p GPParameters
	if err := loadRequired(log, path, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// LoadOrGenerateGidsParameters resolves a GIDS applet init record.
func LoadOrGenerateGidsParameters(log *Logger, path string) (*GidsParameters, error) {
	rec, _, err := loadOrGenerate(log, path, &GidsParameters{}, func() (Record, error) {
		return GenerateGidsParameters()
	})
	if err != nil {
		return nil, err
	}
	return rec.(*GidsParameters), nil
}

// LoadOrGenerateOpenPGPInstallParameters resolves an OpenPGP install
// record. Generation is only possible under a manufacturer code in the
// random-assignment range; see GenerateOpenPGPInstallParameters.
func LoadOrGenerateOpenPGPInstallParameters(log *Logger, path string) (*OpenPGPInstallParameters, error) {
	rec, _, err := loadOrGenerate(log, path, &OpenPGPInstallParameters{}, func() (Record, error) {
		return GenerateOpenPGPInstallParameters(DefaultManufacturerCode)
	})
	if err != nil {
		return nil, err
	}
	return rec.(*OpenPGPInstallParameters), nil
}

// LoadOrGenerateOpenPGPPins resolves an OpenPGP PIN record.
func LoadOrGenerateOpenPGPPins(log *Logger, path string) (*OpenPGPPins, error) {
	rec, _, err := loadOrGenerate(log, path, &OpenPGPPins{}, func() (Record, error) {
		return GenerateOpenPGPPins()
	})
	if err != nil {
		return nil, err
	}
	return rec.(*OpenPGPPins), nil
}

// LoadOpenPGPPins loads an existing OpenPGP PIN record and never
// generates one. Used for the PINs currently set on the card.
func LoadOpenPGPPins(log *Logger, path string) (*OpenPGPPins, error) {
	var p OpenPGPPins
	if err := loadRequired(log, path, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
