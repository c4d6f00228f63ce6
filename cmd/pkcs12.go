/*
Copyright © 2025 Logicos Software

pkcs12.go implements the PKCS#12 bundle reference used by key loading.

Bundles are verified locally before any card operation starts: decoding
the file with the configured passphrase catches a wrong path or wrong
passphrase while the card is still untouched, instead of after the
applet has been reinstalled. If the configured passphrase is wrong and
stdin is a terminal, the operator is prompted once for the correct one.
*/
package cmd

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/pkcs12"
	"golang.org/x/term"
)

// Pkcs12 references a PKCS#12 bundle holding a private key and
// certificate to import onto a card.
type Pkcs12 struct {
	Filename   string `toml:"filename"`
	Passphrase string `toml:"passphrase"` // optional; prompted for when wrong or missing
}

// KeyLoading is one key-import request: the credential label the key
// will be stored under, and the bundle to import.
type KeyLoading struct {
	Label string `toml:"label"`
	Key   Pkcs12 `toml:"key"`
}

// Verify decodes the bundle locally and returns the passphrase that
// worked. The configured passphrase (possibly empty) is tried first;
// on failure the operator is prompted once if stdin is a terminal.
func (p *Pkcs12) Verify(log *Logger) (string, error) {
	data, err := os.ReadFile(p.Filename)
	if err != nil {
		return "", &ConfigError{Path: p.Filename, Op: "require", Cause: err}
	}

	if _, err := pkcs12.ToPEM(data, p.Passphrase); err == nil {
		log.Debug("verified PKCS#12 bundle", "file", p.Filename)
		return p.Passphrase, nil
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", &ConfigError{
			Path:  p.Filename,
			Op:    "parse",
			Cause: fmt.Errorf("PKCS#12 bundle could not be decoded with the configured passphrase"),
		}
	}

	passphrase, err := PromptHidden(fmt.Sprintf("Passphrase for %s: ", p.Filename))
	if err != nil {
		return "", err
	}
	if _, err := pkcs12.ToPEM(data, passphrase); err != nil {
		return "", &ConfigError{
			Path:  p.Filename,
			Op:    "parse",
			Cause: fmt.Errorf("PKCS#12 bundle could not be decoded: %w", err),
		}
	}
	log.Debug("verified PKCS#12 bundle", "file", p.Filename)
	return passphrase, nil
}

// PromptHidden prompts the user for input without echoing to the
// terminal. Falls back to normal reading if stdin is not a terminal
// (e.g. piped input).
func PromptHidden(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	if term.IsTerminal(int(os.Stdin.Fd())) {
		b, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}
	var s string
	_, err := fmt.Fscanln(os.Stdin, &s)
	return strings.TrimSpace(s), err
}
