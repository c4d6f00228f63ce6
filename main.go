/*
Copyright © 2025 Logicos Software

cardprod - Smartcard Production Tool

This is the main entry point for the cardprod command-line tool.
cardprod provisions GlobalPlatform Java Cards with either the GIDS
PKI applet or the SmartPGP OpenPGP applet by driving the native
card-management tools (GlobalPlatformPro, gids-tool, openpgp-tool,
pkcs15-init, pkcs15-tool, opensc-tool) in a fixed, re-runnable
sequence described by a declarative procedure file.

Operating model:
  - Card secrets (admin keys, PINs, serial numbers, lock keys) are
    generated once, persisted to parameter files, and reused on
    every later run against the same card
  - Destructive operations are only performed when the persisted
    state says they are needed
  - Any native tool failure aborts the run; re-running the procedure
    is always safe
*/
package main

import "cardprod/cmd"

// main is the entry point for the cardprod application.
// It delegates all command handling to the cmd package which uses
// the Cobra library for CLI argument parsing and command execution.
func main() {
	cmd.Execute()
}
