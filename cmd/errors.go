/*
Copyright © 2025 Logicos Software

errors.go implements the structured error types used across cardprod.

This module provides:
  - ValidationError: a parameter value does not have the required shape
  - ConfigError: a required file is missing or a file failed to parse
  - ToolExecutionError: a native card tool exited non-zero
  - User-friendly hints for the common failure cases
  - Exit helpers used by all command handlers

None of these errors are retried automatically. They propagate to the
CLI boundary, are printed with a hint where one exists, and become a
non-zero process exit.
*/
package cmd

import (
	"errors"
	"fmt"
	"os"
)

// ValidationError reports a parameter value that does not meet its
// requirements. Field names the offending value, Expected describes the
// required shape (length and character class), Value is the rejected
// input.
type ValidationError struct {
	Field    string
	Expected string
	Value    string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: must be %s, got %q", e.Field, e.Expected, e.Value)
}

// ConfigError reports a missing required file or a file that could not
// be read or parsed. A parse failure of an existing parameter file is
// always fatal: silently regenerating over it would destroy the only
// copy of the secrets on an already-provisioned card.
type ConfigError struct {
	Path  string
	Op    string // "read", "parse", "write" or "require"
	Cause error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Cause)
	}
	return fmt.Sprintf("%s %s", e.Op, e.Path)
}

// Unwrap returns the underlying cause for error chain inspection.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// ToolExecutionError reports a native tool that exited non-zero (or
// could not be started, in which case ExitCode is -1).
type ToolExecutionError struct {
	Tool     string
	ExitCode int
	Cause    error
}

// Error implements the error interface.
func (e *ToolExecutionError) Error() string {
	if e.ExitCode < 0 {
		return fmt.Sprintf("%s could not be run: %v", e.Tool, e.Cause)
	}
	return fmt.Sprintf("%s exited with code %d", e.Tool, e.ExitCode)
}

// Unwrap returns the underlying cause for error chain inspection.
func (e *ToolExecutionError) Unwrap() error {
	return e.Cause
}

// Hint returns a troubleshooting hint for the error, or "" if there is
// nothing useful to add beyond the message itself.
func Hint(err error) string {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return "Edit the offending parameter or configuration file. Values are hex or decimal strings of a fixed width; see the documentation for each field."
	}

	var cerr *ConfigError
	if errors.As(err, &cerr) {
		switch cerr.Op {
		case "require":
			return "This file holds the parameters currently on the card and is never generated. If the card was provisioned elsewhere, copy its parameter file here."
		case "parse":
			return "The file exists but could not be parsed. It is NOT regenerated automatically: fix it by hand, it may hold the only copy of the card's secrets."
		}
		return ""
	}

	var terr *ToolExecutionError
	if errors.As(err, &terr) {
		return "Check that the card is inserted, the reader is connected, and the tool is on PATH. Re-running the procedure is safe: completed steps are skipped or harmless to repeat."
	}

	return ""
}

// ExitWithError prints an error message to stderr and exits with code 1.
// Does nothing if err is nil.
//
// This is the standard way to handle fatal errors in cardprod commands.
func ExitWithError(err error) {
	if err == nil {
		return
	}
	fmt.Fprintln(os.Stderr, "error:", err)
	if hint := Hint(err); hint != "" {
		fmt.Fprintln(os.Stderr, "\nHint:", hint)
	}
	os.Exit(1)
}

// ExitWithErrorMsg formats and prints an error message to stderr, then
// exits with code 1. Uses fmt.Sprintf-style formatting.
func ExitWithErrorMsg(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}
