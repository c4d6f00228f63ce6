/*
Copyright © 2025 Logicos Software

gids.go implements GIDS applet parameters and the gids-tool wrapper.

The GIDS applet is a generic PKI credential applet. Initialization sets
the admin key, user PIN and card serial number; keys and certificates
are imported afterwards from PKCS#12 bundles via pkcs15-init.
*/
package cmd

import (
	"fmt"
	"os"
)

// DefaultGidsCapFile is the CAP file name the GIDS applet normally
// ships as.
const DefaultGidsCapFile = "GidsApplet-import4k-1.3-20231219.cap"

// GidsParameters holds the values required to initialize a card
// running the GIDS applet.
type GidsParameters struct {
	AdminKey     string `toml:"admin_key"` // 48 hex characters, uppercase
	SerialNumber string `toml:"sn"`        // 32 hex characters, uppercase
	PIN          string `toml:"pin"`       // 6 decimal digits
}

// CheckRequirements normalizes the hex fields to uppercase and
// validates every field. Safe to call repeatedly.
func (p *GidsParameters) CheckRequirements() error {
	adminKey, err := checkHexField("GIDS admin key", p.AdminKey, 48)
	if err != nil {
		return err
	}
	sn, err := checkHexField("GIDS serial number", p.SerialNumber, 32)
	if err != nil {
		return err
	}
	if err := checkDigitField("GIDS PIN", p.PIN, 6, 6); err != nil {
		return err
	}
	p.AdminKey = adminKey
	p.SerialNumber = sn
	return nil
}

// GenerateGidsParameters returns fresh random init parameters.
func GenerateGidsParameters() (*GidsParameters, error) {
	adminKey, err := randomHex(48)
	if err != nil {
		return nil, err
	}
	sn, err := randomHex(32)
	if err != nil {
		return nil, err
	}
	pin, err := randomPIN(6)
	if err != nil {
		return nil, err
	}
	return &GidsParameters{AdminKey: adminKey, SerialNumber: sn, PIN: pin}, nil
}

// GidsApplet wraps gids-tool and the pkcs15-init key import for a card
// running the GIDS applet.
type GidsApplet struct {
	capFile string
	runner  Runner
	verbose bool
	log     *Logger
}

// NewGidsApplet creates the GIDS applet wrapper. The CAP file must
// exist: discovering a missing CAP file mid-sequence would leave the
// card half-provisioned.
func NewGidsApplet(log *Logger, runner Runner, capFile string, verbose bool) (*GidsApplet, error) {
	if capFile == "" {
		capFile = DefaultGidsCapFile
	}
	if _, err := os.Stat(capFile); err != nil {
		return nil, &ConfigError{Path: capFile, Op: "require", Cause: fmt.Errorf("GIDS applet cap file: %w", err)}
	}
	a := &GidsApplet{
		capFile: capFile,
		runner:  runner,
		verbose: verbose,
		log:     log.WithComponent("gids"),
	}
	a.log.Debug("will use cap file", "cap", capFile)
	return a, nil
}

// CapFile returns the applet CAP file path for install/uninstall.
func (a *GidsApplet) CapFile() string {
	return a.capFile
}

// InitCard initializes the applet with the given parameters. Re-running
// initialize on an already-initialized applet is the documented
// recovery path, not an error. wait makes gids-tool block until a card
// is inserted, for the reinsert step after install.
func (a *GidsApplet) InitCard(params *GidsParameters, wait bool) error {
	if err := params.CheckRequirements(); err != nil {
		return err
	}
	a.log.Info("initializing GIDS applet")
	args := a.commonArgs(wait)
	args = append(args,
		"--initialize",
		"--admin-key", params.AdminKey,
		"--pin", params.PIN,
		"--serial-number", params.SerialNumber,
	)
	return a.runner.Run("gids-tool", args...)
}

// ImportKey stores the private key and certificate from a PKCS#12
// bundle on the card under the request's label, authenticating with the
// card PIN.
func (a *GidsApplet) ImportKey(params *GidsParameters, loading KeyLoading, passphrase string) error {
	if err := params.CheckRequirements(); err != nil {
		return err
	}
	a.log.Info("importing key", "label", loading.Label, "file", loading.Key.Filename)
	args := []string{
		"--store-private-key", loading.Key.Filename,
		"--format", "pkcs12",
		"--label", loading.Label,
		"--pin", params.PIN,
	}
	if passphrase != "" {
		args = append(args, "--passphrase", passphrase)
	}
	if a.verbose {
		args = append(args, "--verbose")
	}
	return a.runner.Run("pkcs15-init", args...)
}

// commonArgs builds the gids-tool switches shared by all operations.
func (a *GidsApplet) commonArgs(wait bool) []string {
	var args []string
	if a.verbose {
		args = append(args, "--verbose")
	}
	if wait {
		args = append(args, "--wait")
	}
	return args
}
