/*
Copyright © 2025 Logicos Software

gids_test.go contains unit tests for GIDS applet parameters and the
gids-tool wrapper.
*/
package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func validGidsParameters() *GidsParameters {
	return &GidsParameters{
		AdminKey:     strings.Repeat("A0", 24),
		SerialNumber: strings.Repeat("B1", 16),
		PIN:          "123456",
	}
}

func TestGidsParametersCheckRequirements(t *testing.T) {
	t.Run("valid parameters pass and normalize", func(t *testing.T) {
		p := validGidsParameters()
		p.AdminKey = strings.ToLower(p.AdminKey)
		p.SerialNumber = strings.ToLower(p.SerialNumber)
		if err := p.CheckRequirements(); err != nil {
			t.Fatalf("valid parameters rejected: %v", err)
		}
		if p.AdminKey != strings.Repeat("A0", 24) {
			t.Errorf("admin key not normalized: %q", p.AdminKey)
		}
		if p.SerialNumber != strings.Repeat("B1", 16) {
			t.Errorf("serial number not normalized: %q", p.SerialNumber)
		}
	})

	bad := []struct {
		name   string
		mutate func(*GidsParameters)
		field  string
	}{
		{"short admin key", func(p *GidsParameters) { p.AdminKey = "ABCD" }, "GIDS admin key"},
		{"non-hex admin key", func(p *GidsParameters) { p.AdminKey = strings.Repeat("G0", 24) }, "GIDS admin key"},
		{"short serial", func(p *GidsParameters) { p.SerialNumber = "1234" }, "GIDS serial number"},
		{"short pin", func(p *GidsParameters) { p.PIN = "12345" }, "GIDS PIN"},
		{"alpha pin", func(p *GidsParameters) { p.PIN = "12345a" }, "GIDS PIN"},
	}
	for _, tc := range bad {
		t.Run(tc.name, func(t *testing.T) {
			p := validGidsParameters()
			tc.mutate(p)
			err := p.CheckRequirements()
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("got %v, want ValidationError", err)
			}
			if verr.Field != tc.field {
				t.Errorf("error names field %q, want %q", verr.Field, tc.field)
			}
		})
	}
}

func TestGenerateGidsParameters(t *testing.T) {
	p, err := GenerateGidsParameters()
	if err != nil {
		t.Fatalf("GenerateGidsParameters failed: %v", err)
	}
	if err := p.CheckRequirements(); err != nil {
		t.Errorf("generated parameters fail validation: %v", err)
	}
	if len(p.AdminKey) != 48 || len(p.SerialNumber) != 32 || len(p.PIN) != 6 {
		t.Errorf("generated widths wrong: %d/%d/%d", len(p.AdminKey), len(p.SerialNumber), len(p.PIN))
	}
}

func TestNewGidsAppletRequiresCapFile(t *testing.T) {
	log := NewLogger(false)
	runner := &fakeRunner{}

	_, err := NewGidsApplet(log, runner, filepath.Join(t.TempDir(), "missing.cap"), false)
	var cerr *ConfigError
	if !errors.As(err, &cerr) {
		t.Fatalf("got %v, want ConfigError for missing cap file", err)
	}
}

func TestGidsAppletInitCard(t *testing.T) {
	log := NewLogger(false)
	runner := &fakeRunner{}
	capFile := writeTempCapFile(t)

	gids, err := NewGidsApplet(log, runner, capFile, false)
	if err != nil {
		t.Fatalf("NewGidsApplet failed: %v", err)
	}

	params := validGidsParameters()
	if err := gids.InitCard(params, true); err != nil {
		t.Fatalf("InitCard failed: %v", err)
	}

	call := runner.onlyCall(t)
	if call[0] != "gids-tool" {
		t.Fatalf("tool = %q, want gids-tool", call[0])
	}
	for _, want := range []string{"--wait", "--initialize", "--admin-key", params.AdminKey, "--pin", params.PIN, "--serial-number", params.SerialNumber} {
		if !callContains(call, want) {
			t.Errorf("init invocation missing %q: %v", want, call)
		}
	}
}

func TestGidsAppletImportKey(t *testing.T) {
	log := NewLogger(false)
	runner := &fakeRunner{}
	capFile := writeTempCapFile(t)

	gids, err := NewGidsApplet(log, runner, capFile, false)
	if err != nil {
		t.Fatalf("NewGidsApplet failed: %v", err)
	}

	params := validGidsParameters()
	loading := KeyLoading{Label: "mykey", Key: Pkcs12{Filename: "bundle.p12"}}
	if err := gids.ImportKey(params, loading, "secret"); err != nil {
		t.Fatalf("ImportKey failed: %v", err)
	}

	call := runner.onlyCall(t)
	if call[0] != "pkcs15-init" {
		t.Fatalf("tool = %q, want pkcs15-init", call[0])
	}
	for _, want := range []string{"--store-private-key", "bundle.p12", "--format", "pkcs12", "--label", "mykey", "--pin", params.PIN, "--passphrase", "secret"} {
		if !callContains(call, want) {
			t.Errorf("import invocation missing %q: %v", want, call)
		}
	}
}

// writeTempCapFile creates a placeholder cap file for applet wrapper
// construction.
func writeTempCapFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "applet.cap")
	if err := os.WriteFile(path, []byte("cap"), 0o600); err != nil {
		t.Fatalf("writing cap file: %v", err)
	}
	return path
}
