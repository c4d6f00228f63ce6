/*
Copyright © 2025 Logicos Software

produce_gids.go implements the 'produce-gids' command.

This command provisions a card with the GIDS PKI applet according to a
procedure file: it resolves all parameter records, optionally
reinstalls and initializes the applet, reconciles the GlobalPlatform
lock key, and imports the configured keys, skipping any already on the
card.
*/
package cmd

import (
	"github.com/spf13/cobra"
)

// produceGidsCmd represents the 'produce-gids' command.
var produceGidsCmd = &cobra.Command{
	Use:   "produce-gids <procedure.toml>",
	Short: "Set up a card with the GIDS applet and keys/certificates",
	Long: `Set up a card with the GIDS applet and keys/certificates.

The procedure file names the parameter files to use. Missing "desired"
parameter files are generated with fresh random values and saved before
the card is touched; missing "current" files are a fatal error. The
whole sequence is safe to re-run after a failure.`,
	Example: `  # Provision a card, generating parameters on first run
  cardprod produce-gids procedure.toml

  # Same, with native tool output
  cardprod produce-gids -v procedure.toml`,
	Args: cobra.ExactArgs(1),
	Run:  runProduceGids,
}

// init registers the 'produce-gids' command with the root command.
func init() {
	rootCmd.AddCommand(produceGidsCmd)
}

// runProduceGids handles the 'produce-gids' command execution. It
// parses and resolves everything first (configuration, parameter
// records, local PKCS#12 verification) so every failure that can be
// caught before the card is touched is.
func runProduceGids(cmd *cobra.Command, args []string) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	log := NewLogger(verbose)

	cfg, err := LoadGidsProcedureConfig(args[0])
	if err != nil {
		ExitWithError(err)
	}

	verified, err := verifyKeyLoading(log, cfg.KeyLoading)
	if err != nil {
		ExitWithError(err)
	}

	runner := NewRunner(log)
	if err := runGidsProcedure(log, runner, cfg, verified); err != nil {
		ExitWithError(err)
	}
}

// runGidsProcedure executes the GIDS production sequence:
//
//  1. Resolve desired GP lock parameters (generate-or-load)
//  2. Resolve current GP lock parameters (load-only)
//  3. Resolve GIDS applet init parameters (generate-or-load)
//  4. If configured: uninstall, install, operator reinsert, initialize
//  5. Reconcile the GP lock key
//  6. Import keys not already on the card
//
// Steps 4-6 are re-runnable; any tool failure aborts the remainder.
func runGidsProcedure(log *Logger, runner Runner, cfg *GidsProcedureConfig, verified []verifiedKeyLoading) error {
	current, desired, err := resolveGPParameters(log, cfg.GP)
	if err != nil {
		return err
	}

	gidsParams, err := LoadOrGenerateGidsParameters(log, cfg.GidsParametersFilename)
	if err != nil {
		return err
	}

	gids, err := NewGidsApplet(log, runner, cfg.CapFile, log.Verbose())
	if err != nil {
		return err
	}
	gp := NewGP(log, runner, cfg.GPCommand, log.Verbose())

	if cfg.InstallAndInit {
		// Uninstall first in case the applet already exists; a failure
		// here usually just means it was never installed.
		if err := gp.Uninstall(gids.CapFile(), current, true); err != nil {
			return err
		}
		if err := gp.Install(gids.CapFile(), current, true); err != nil {
			return err
		}
		promptReinsert()
		if err := gids.InitCard(gidsParams, true); err != nil {
			return err
		}
	} else {
		log.Info("skipping applet uninstall/reinstall")
	}

	if err := reconcileLockKey(log, gp, desired, current); err != nil {
		return err
	}

	p15 := NewPkcs15Tool(log, runner, log.Verbose())
	return loadKeys(log, gids, p15, gidsParams, verified)
}
