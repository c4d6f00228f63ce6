/*
Copyright © 2025 Logicos Software

openpgp.go implements SmartPGP applet parameters and tool wrappers.

An OpenPGP applet's application identifier (AID) embeds a manufacturer
code and a serial number. Codes 0xFFF0 through 0xFFFE are reserved for
unmanaged random serial-number assignment; 0xFFFF and every code
outside that range belong to registered manufacturers and must never be
generated locally.

PIN changes go through scripted ISO 7816 CHANGE REFERENCE DATA APDUs
fed to opensc-tool, since neither gp nor openpgp-tool can change both
PINs non-interactively.
*/
package cmd

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// DefaultSmartPGPCapFile is the CAP file name the SmartPGP applet
// normally ships as.
const DefaultSmartPGPCapFile = "SmartPGP-v1.22.2-jc304-without_sm-rsa_up_to_4096.cap"

// DefaultManufacturerCode is the manufacturer code used for generated
// install parameters. It lies in the random-assignment range.
const DefaultManufacturerCode = "fff5"

// Manufacturer codes reserved for unmanaged random serial-number
// assignment, inclusive on both ends. 0xFFFF itself is reserved and
// excluded.
const (
	manufacturerRandomLo = 0xFFF0
	manufacturerRandomHi = 0xFFFE
)

// openpgpAIDPrefix is the fixed RID + application + version prefix of
// the OpenPGP card AID (D2 76 00 01 24 = FSF Europe, 01 = OpenPGP
// application, 03 04 = spec version 3.4).
const openpgpAIDPrefix = "d276000124010304"

// Factory-default OpenPGP PINs, used as the reconciliation target when
// no desired PIN record is configured and as the assumed current PINs
// on a freshly initialized applet.
const (
	DefaultOpenPGPPIN      = "123456"
	DefaultOpenPGPAdminPIN = "12345678"
)

// OpenPGPInstallParameters holds the identity baked into the applet AID
// at install time.
type OpenPGPInstallParameters struct {
	SerialNumber     string `toml:"sn"`                // 8 hex characters, uppercase
	ManufacturerCode string `toml:"manufacturer_code"` // 4 hex characters, lowercase
}

// CheckRequirements normalizes the serial number to uppercase and the
// manufacturer code to lowercase, and validates both. A registered
// (non-random-range) manufacturer code is accepted here with a warning
// path left to the caller; only generation refuses it.
func (p *OpenPGPInstallParameters) CheckRequirements() error {
	sn, err := checkHexField("OpenPGP serial number", p.SerialNumber, 8)
	if err != nil {
		return err
	}
	mfr, err := checkHexField("OpenPGP manufacturer code", p.ManufacturerCode, 4)
	if err != nil {
		return err
	}
	p.SerialNumber = sn
	p.ManufacturerCode = strings.ToLower(mfr)
	return nil
}

// ManufacturerReservedForRandomSN reports whether the manufacturer code
// lies in the unmanaged random-assignment range 0xFFF0..0xFFFE.
func (p *OpenPGPInstallParameters) ManufacturerReservedForRandomSN() (bool, error) {
	if err := p.CheckRequirements(); err != nil {
		return false, err
	}
	code, err := strconv.ParseUint(p.ManufacturerCode, 16, 16)
	if err != nil {
		return false, &ValidationError{
			Field:    "OpenPGP manufacturer code",
			Expected: "exactly 4 hex digits",
			Value:    p.ManufacturerCode,
		}
	}
	return code >= manufacturerRandomLo && code <= manufacturerRandomHi, nil
}

// AID returns the full application identifier for installing the
// applet with this identity.
func (p *OpenPGPInstallParameters) AID() string {
	return openpgpAIDPrefix + p.ManufacturerCode + strings.ToLower(p.SerialNumber) + "0000"
}

// GenerateOpenPGPInstallParameters returns install parameters with a
// random serial number under the given manufacturer code. It fails
// loudly for any code outside the random-assignment range: serial
// numbers under registered codes are assigned by the manufacturer, not
// invented here.
func GenerateOpenPGPInstallParameters(manufacturerCode string) (*OpenPGPInstallParameters, error) {
	sn, err := randomHex(8)
	if err != nil {
		return nil, err
	}
	p := &OpenPGPInstallParameters{
		SerialNumber:     sn,
		ManufacturerCode: manufacturerCode,
	}
	reserved, err := p.ManufacturerReservedForRandomSN()
	if err != nil {
		return nil, err
	}
	if !reserved {
		return nil, &ValidationError{
			Field:    "OpenPGP manufacturer code",
			Expected: "a code in the random-assignment range fff0..fffe",
			Value:    manufacturerCode,
		}
	}
	return p, nil
}

// OpenPGPPins holds the user and admin PINs for the applet's
// cardholder verification.
type OpenPGPPins struct {
	PIN      string `toml:"pin"`       // 6 to 127 decimal digits
	AdminPIN string `toml:"admin_pin"` // 8 to 127 decimal digits
}

// DefaultOpenPGPPins returns the factory-default PIN pair.
func DefaultOpenPGPPins() *OpenPGPPins {
	return &OpenPGPPins{PIN: DefaultOpenPGPPIN, AdminPIN: DefaultOpenPGPAdminPIN}
}

// CheckRequirements validates both PINs. Safe to call repeatedly.
func (p *OpenPGPPins) CheckRequirements() error {
	if err := checkDigitField("OpenPGP PIN", p.PIN, 6, 127); err != nil {
		return err
	}
	return checkDigitField("OpenPGP admin PIN", p.AdminPIN, 8, 127)
}

// Equal reports structural equality. It drives PIN reconciliation.
func (p *OpenPGPPins) Equal(o *OpenPGPPins) bool {
	if p == nil || o == nil {
		return p == o
	}
	return p.PIN == o.PIN && p.AdminPIN == o.AdminPIN
}

// GenerateOpenPGPPins returns fresh random PINs of the customary
// minimum widths.
func GenerateOpenPGPPins() (*OpenPGPPins, error) {
	pin, err := randomPIN(6)
	if err != nil {
		return nil, err
	}
	adminPIN, err := randomPIN(8)
	if err != nil {
		return nil, err
	}
	return &OpenPGPPins{PIN: pin, AdminPIN: adminPIN}, nil
}

// SmartPGPApplet wraps the tools used against a card running the
// SmartPGP applet.
type SmartPGPApplet struct {
	capFile string
	runner  Runner
	verbose bool
	log     *Logger
}

// NewSmartPGPApplet creates the SmartPGP applet wrapper. The CAP file
// must exist up front, as for GIDS.
func NewSmartPGPApplet(log *Logger, runner Runner, capFile string, verbose bool) (*SmartPGPApplet, error) {
	if capFile == "" {
		capFile = DefaultSmartPGPCapFile
	}
	if _, err := os.Stat(capFile); err != nil {
		return nil, &ConfigError{Path: capFile, Op: "require", Cause: fmt.Errorf("SmartPGP applet cap file: %w", err)}
	}
	a := &SmartPGPApplet{
		capFile: capFile,
		runner:  runner,
		verbose: verbose,
		log:     log.WithComponent("smartpgp"),
	}
	a.log.Debug("will use cap file", "cap", capFile)
	return a, nil
}

// CapFile returns the applet CAP file path for install/uninstall.
func (a *SmartPGPApplet) CapFile() string {
	return a.capFile
}

// InstallArgs computes the extra GlobalPlatformPro install arguments
// that create the applet instance under its full AID.
func (a *SmartPGPApplet) InstallArgs(install *OpenPGPInstallParameters) ([]string, error) {
	if err := install.CheckRequirements(); err != nil {
		return nil, err
	}
	return []string{"--create", install.AID()}, nil
}

// InitCard verifies the freshly installed applet answers, blocking for
// card insertion when wait is set. openpgp-tool reading the card info
// forces the applet to finish its first-select initialization.
func (a *SmartPGPApplet) InitCard(wait bool) error {
	a.log.Info("initializing SmartPGP applet")
	args := []string{"--card-info"}
	if a.verbose {
		args = append(args, "--verbose")
	}
	if wait {
		args = append(args, "--wait")
	}
	return a.runner.Run("openpgp-tool", args...)
}

// ChangePins sets both PINs to desired, authenticating with current
// (factory defaults when current is nil). The change is performed with
// scripted CHANGE REFERENCE DATA APDUs: P2 81 selects the user PIN
// (PW1), P2 83 the admin PIN (PW3).
func (a *SmartPGPApplet) ChangePins(desired, current *OpenPGPPins) error {
	if current == nil {
		current = DefaultOpenPGPPins()
	}
	if err := desired.CheckRequirements(); err != nil {
		return err
	}
	if err := current.CheckRequirements(); err != nil {
		return err
	}
	a.log.Info("changing OpenPGP PINs")
	args := []string{
		"--send-apdu", openpgpSelectAPDU,
		"--send-apdu", changePinAPDU(0x81, current.PIN, desired.PIN),
		"--send-apdu", changePinAPDU(0x83, current.AdminPIN, desired.AdminPIN),
	}
	if a.verbose {
		args = append(args, "--verbose")
	}
	return a.runner.Run("opensc-tool", args...)
}

// openpgpSelectAPDU selects the OpenPGP applet by its truncated AID
// before the PIN-change commands.
const openpgpSelectAPDU = "00:A4:04:00:06:D2:76:00:01:24:01"

// changePinAPDU builds a CHANGE REFERENCE DATA APDU (INS 24) for the
// PIN addressed by p2. The data field is the current PIN immediately
// followed by the new PIN, both as ASCII.
func changePinAPDU(p2 byte, current, desired string) string {
	data := hex.EncodeToString([]byte(current + desired))
	var b strings.Builder
	fmt.Fprintf(&b, "00:24:00:%02X:%02X", p2, len(current)+len(desired))
	for i := 0; i < len(data); i += 2 {
		b.WriteByte(':')
		b.WriteString(strings.ToUpper(data[i : i+2]))
	}
	return b.String()
}
