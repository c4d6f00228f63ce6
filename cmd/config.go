/*
Copyright © 2025 Logicos Software

config.go implements the procedure configuration files.

A procedure file is the declarative desired-state description for one
card family: which files hold the current and desired parameter
records, whether to (re)install the applet, and (GIDS) the ordered list
of keys to import. It is parsed strictly, exactly once, at the CLI
boundary; nothing downstream ever inspects untyped data.
*/
package cmd

import (
	"bytes"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// GPConfig names the parameter files for GlobalPlatform lock-key
// reconciliation. Both fields are optional:
//
//   - no desired file: restore the factory-default lock key
//   - no current file: the card still uses the factory-default key
type GPConfig struct {
	CurrentParametersFilename string `toml:"current_parameters_filename"`
	DesiredParametersFilename string `toml:"desired_parameters_filename"`
}

// PinConfig names the parameter files for OpenPGP PIN reconciliation,
// with the same optionality semantics as GPConfig.
type PinConfig struct {
	CurrentPinsFilename string `toml:"current_pins_filename"`
	DesiredPinsFilename string `toml:"desired_pins_filename"`
}

// GidsProcedureConfig describes a card-production procedure for the
// GIDS applet.
type GidsProcedureConfig struct {
	GidsParametersFilename string       `toml:"gids_parameters_filename"`
	InstallAndInit         bool         `toml:"install_and_init"`
	CapFile                string       `toml:"cap_file"`    // optional, defaults to DefaultGidsCapFile
	GPCommand              []string     `toml:"gp_command"`  // optional, defaults to "java -jar gp.jar"
	GP                     GPConfig     `toml:"gp_config"`
	KeyLoading             []KeyLoading `toml:"key_loading"`
}

// SmartPGPProcedureConfig describes a card-production procedure for the
// SmartPGP applet.
type SmartPGPProcedureConfig struct {
	OpenPGPInstallParametersFilename string    `toml:"openpgp_install_parameters_filename"`
	InstallSmartPGP                  bool      `toml:"install_smartpgp"`
	CapFile                          string    `toml:"cap_file"`
	GPCommand                        []string  `toml:"gp_command"`
	GP                               GPConfig  `toml:"gp_config"`
	Pins                             PinConfig `toml:"pin_config"`
}

// readConfig strictly decodes a procedure file. Unknown keys are
// rejected: a typo in a procedure file must not silently change what
// happens to the card.
func readConfig(path string, cfg any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &ConfigError{Path: path, Op: "read", Cause: err}
	}
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return &ConfigError{Path: path, Op: "parse", Cause: err}
	}
	return nil
}

// LoadGidsProcedureConfig reads and validates a GIDS procedure file.
func LoadGidsProcedureConfig(path string) (*GidsProcedureConfig, error) {
	var cfg GidsProcedureConfig
	if err := readConfig(path, &cfg); err != nil {
		return nil, err
	}
	if cfg.GidsParametersFilename == "" {
		return nil, &ConfigError{Path: path, Op: "parse",
			Cause: fmt.Errorf("gids_parameters_filename is required")}
	}
	for i, loading := range cfg.KeyLoading {
		if loading.Label == "" || loading.Key.Filename == "" {
			return nil, &ConfigError{Path: path, Op: "parse",
				Cause: fmt.Errorf("key_loading entry %d needs a label and a key filename", i)}
		}
	}
	return &cfg, nil
}

// LoadSmartPGPProcedureConfig reads and validates a SmartPGP procedure
// file.
func LoadSmartPGPProcedureConfig(path string) (*SmartPGPProcedureConfig, error) {
	var cfg SmartPGPProcedureConfig
	if err := readConfig(path, &cfg); err != nil {
		return nil, err
	}
	if cfg.OpenPGPInstallParametersFilename == "" {
		return nil, &ConfigError{Path: path, Op: "parse",
			Cause: fmt.Errorf("openpgp_install_parameters_filename is required")}
	}
	return &cfg, nil
}
