/*
Copyright © 2025 Logicos Software

Package cmd implements all CLI commands for cardprod using the Cobra library.

This package provides:
  - generate: Resolve (load or generate) every parameter file a procedure references
  - produce-gids: Provision a card with the GIDS PKI applet and import keys
  - produce-smartpgp: Provision a card with the SmartPGP OpenPGP applet
  - version: Display version information

All card operations are performed by invoking the native card-management
tools (GlobalPlatformPro, gids-tool, openpgp-tool, pkcs15-init,
pkcs15-tool, opensc-tool); cardprod itself never speaks to the card.
*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands.
// It serves as the parent for all cardprod subcommands and defines
// global flags that are inherited by child commands.
var rootCmd = &cobra.Command{
	Use:   "cardprod",
	Short: "Provision GlobalPlatform Java Cards with GIDS or SmartPGP applets",
	Long: `cardprod is a command-line tool that provisions smartcards by driving
the native card-management tools in a fixed, re-runnable sequence.

Card secrets (admin keys, PINs, serial numbers, GlobalPlatform lock keys)
are generated once, saved to parameter files next to the procedure file,
and reused on every later run. Keep those files: they are the only copy
of the secrets on a provisioned card.

Quick usage:
  cardprod generate procedure.toml        # Pre-generate all parameter files
  cardprod produce-gids procedure.toml    # Provision a GIDS card
  cardprod produce-smartpgp procedure.toml # Provision a SmartPGP card`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
// If an error occurs during command execution, the program exits with status code 1.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// init registers global flags that are available to all subcommands.
// The --verbose flag raises the log level to debug and is also passed
// through to every native tool that supports a verbose switch.
func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose logging (also passed to native tools)")
}
