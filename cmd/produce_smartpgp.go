/*
Copyright © 2025 Logicos Software

produce_smartpgp.go implements the 'produce-smartpgp' command.

This command provisions a card with the SmartPGP OpenPGP applet: it
resolves the install identity (serial number + manufacturer code),
optionally reinstalls the applet under its AID, reconciles the
GlobalPlatform lock key, and reconciles the user and admin PINs.
*/
package cmd

import (
	"github.com/spf13/cobra"
)

// produceSmartPGPCmd represents the 'produce-smartpgp' command.
var produceSmartPGPCmd = &cobra.Command{
	Use:   "produce-smartpgp <procedure.toml>",
	Short: "Set up a card with the SmartPGP OpenPGP applet",
	Long: `Set up a card with the SmartPGP OpenPGP applet.

The applet is installed under an AID embedding the manufacturer code
and serial number from the install-parameters file. Serial numbers are
only generated under manufacturer codes fff0..fffe, the range reserved
for unmanaged random assignment; other codes must be provisioned with
manually registered serial numbers. The whole sequence is safe to
re-run after a failure.`,
	Example: `  # Provision a card, generating parameters on first run
  cardprod produce-smartpgp procedure.toml`,
	Args: cobra.ExactArgs(1),
	Run:  runProduceSmartPGP,
}

// init registers the 'produce-smartpgp' command with the root command.
func init() {
	rootCmd.AddCommand(produceSmartPGPCmd)
}

// runProduceSmartPGP handles the 'produce-smartpgp' command execution.
func runProduceSmartPGP(cmd *cobra.Command, args []string) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	log := NewLogger(verbose)

	cfg, err := LoadSmartPGPProcedureConfig(args[0])
	if err != nil {
		ExitWithError(err)
	}

	runner := NewRunner(log)
	if err := runSmartPGPProcedure(log, runner, cfg); err != nil {
		ExitWithError(err)
	}
}

// runSmartPGPProcedure executes the SmartPGP production sequence:
//
//  1. Resolve desired GP lock parameters (generate-or-load)
//  2. Resolve current GP lock parameters (load-only)
//  3. Resolve install parameters (generate-or-load)
//  4. If configured: uninstall, install under the AID, operator
//     reinsert, initialize
//  5. Reconcile the GP lock key
//  6. Resolve and reconcile the PINs
//
// Steps 4-6 are re-runnable; any tool failure aborts the remainder.
func runSmartPGPProcedure(log *Logger, runner Runner, cfg *SmartPGPProcedureConfig) error {
	current, desired, err := resolveGPParameters(log, cfg.GP)
	if err != nil {
		return err
	}

	installParams, err := LoadOrGenerateOpenPGPInstallParameters(log, cfg.OpenPGPInstallParametersFilename)
	if err != nil {
		return err
	}
	reserved, err := installParams.ManufacturerReservedForRandomSN()
	if err != nil {
		return err
	}
	if !reserved {
		log.Warn("manufacturer code is not in the unmanaged random assignment range and must be registered",
			"manufacturer_code", installParams.ManufacturerCode)
	}

	var currentPins, desiredPins *OpenPGPPins
	if cfg.Pins.DesiredPinsFilename != "" {
		desiredPins, err = LoadOrGenerateOpenPGPPins(log, cfg.Pins.DesiredPinsFilename)
		if err != nil {
			return err
		}
	}
	if cfg.Pins.CurrentPinsFilename != "" {
		currentPins, err = LoadOpenPGPPins(log, cfg.Pins.CurrentPinsFilename)
		if err != nil {
			return err
		}
	}

	pgp, err := NewSmartPGPApplet(log, runner, cfg.CapFile, log.Verbose())
	if err != nil {
		return err
	}
	gp := NewGP(log, runner, cfg.GPCommand, log.Verbose())

	if cfg.InstallSmartPGP {
		if err := gp.Uninstall(pgp.CapFile(), current, true); err != nil {
			return err
		}
		installArgs, err := pgp.InstallArgs(installParams)
		if err != nil {
			return err
		}
		log.Info("installing SmartPGP", "sn", installParams.SerialNumber)
		if err := gp.Install(pgp.CapFile(), current, true, installArgs...); err != nil {
			return err
		}
		promptReinsert()
		if err := pgp.InitCard(true); err != nil {
			return err
		}
	} else {
		log.Info("skipping applet uninstall/reinstall")
	}

	if err := reconcileLockKey(log, gp, desired, current); err != nil {
		return err
	}

	return reconcilePins(log, pgp, desiredPins, currentPins)
}
