/*
Copyright © 2025 Logicos Software

pkcs15_test.go contains unit tests for pkcs15-tool output parsing.
*/
package cmd

import (
	"reflect"
	"testing"
)

func TestParseCertificateLabels(t *testing.T) {
	out := []byte(`Using reader with a card: Generic Reader 00 00
X.509 Certificate [mykey]
	Object Flags   : [0x0]
	Authority      : no
	Path           : 3f00
X.509 Certificate [backup key]
	Object Flags   : [0x0]
`)
	got := parseCertificateLabels(out)
	want := []string{"mykey", "backup key"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("parseCertificateLabels = %v, want %v", got, want)
	}
}

func TestParseCertificateLabelsEmpty(t *testing.T) {
	if got := parseCertificateLabels([]byte("Using reader with a card\n")); len(got) != 0 {
		t.Errorf("parseCertificateLabels = %v, want empty", got)
	}
}

func TestEnumerateCertificates(t *testing.T) {
	log := NewLogger(false)
	runner := &fakeRunner{
		outputs: map[string][]byte{
			"pkcs15-tool": []byte("X.509 Certificate [one]\nX.509 Certificate [two]\n"),
		},
	}
	p15 := NewPkcs15Tool(log, runner, false)

	labels, err := p15.EnumerateCertificates()
	if err != nil {
		t.Fatalf("EnumerateCertificates failed: %v", err)
	}
	if !reflect.DeepEqual(labels, []string{"one", "two"}) {
		t.Errorf("labels = %v, want [one two]", labels)
	}

	call := runner.onlyCall(t)
	if !callContains(call, "--list-certificates") {
		t.Errorf("invocation missing --list-certificates: %v", call)
	}
}
