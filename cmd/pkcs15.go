/*
Copyright © 2025 Logicos Software

pkcs15.go implements the pkcs15-tool wrapper used for idempotence
checks: the labels of the certificates already present on the card
decide which key-loading requests are skipped.
*/
package cmd

import (
	"bufio"
	"bytes"
	"regexp"
	"strings"
)

// certLabelRE matches the label lines of `pkcs15-tool
// --list-certificates` output, e.g. `X.509 Certificate [mykey]`.
var certLabelRE = regexp.MustCompile(`^X\.509 Certificate \[(.+)]$`)

// Pkcs15Tool wraps generic pkcs15-tool interaction.
type Pkcs15Tool struct {
	runner  Runner
	verbose bool
	log     *Logger
}

// NewPkcs15Tool creates the pkcs15-tool wrapper.
func NewPkcs15Tool(log *Logger, runner Runner, verbose bool) *Pkcs15Tool {
	return &Pkcs15Tool{
		runner:  runner,
		verbose: verbose,
		log:     log.WithComponent("pkcs15"),
	}
}

// EnumerateCertificates returns the labels of the certificates
// currently on the card, in the order the tool reports them.
func (t *Pkcs15Tool) EnumerateCertificates() ([]string, error) {
	args := []string{"--list-certificates"}
	if t.verbose {
		args = append(args, "--verbose")
	}
	out, err := t.runner.Output("pkcs15-tool", args...)
	if err != nil {
		return nil, err
	}
	return parseCertificateLabels(out), nil
}

// parseCertificateLabels extracts credential labels from pkcs15-tool
// output.
func parseCertificateLabels(out []byte) []string {
	var labels []string
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if m := certLabelRE.FindStringSubmatch(line); m != nil {
			labels = append(labels, m[1])
		}
	}
	return labels
}
