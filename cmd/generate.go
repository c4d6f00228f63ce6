/*
Copyright © 2025 Logicos Software

generate.go implements the 'generate' command.

This command resolves every generatable parameter file a procedure
references (desired GP lock parameters, applet init/install
parameters, desired PINs) without touching a card. It lets a batch of
parameter files be produced and backed up ahead of the actual
production runs. Files that already exist are left exactly as they are.
*/
package cmd

import (
	"github.com/spf13/cobra"
)

// generateCmd represents the 'generate' command.
var generateCmd = &cobra.Command{
	Use:   "generate <procedure.toml>",
	Short: "Generate the parameter files a procedure references",
	Long: `Generate the parameter files a procedure references, without touching
a card.

Each referenced "desired" or applet parameter file that does not exist
yet is filled with fresh random values, exactly as a production run
would on first use. Existing files are loaded and validated but never
overwritten. "Current" parameter files are not generated: they describe
what is already on a card.`,
	Example: `  # Pre-generate all parameter files for a GIDS procedure
  cardprod generate procedure.toml

  # Same for a SmartPGP procedure
  cardprod generate --family smartpgp procedure.toml`,
	Args: cobra.ExactArgs(1),
	Run:  runGenerate,
}

// init registers the 'generate' command and its --family flag.
func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().String("family", "gids", "Procedure family: gids or smartpgp")
}

// runGenerate handles the 'generate' command execution.
func runGenerate(cmd *cobra.Command, args []string) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	family, _ := cmd.Flags().GetString("family")
	log := NewLogger(verbose)

	switch family {
	case "gids":
		cfg, err := LoadGidsProcedureConfig(args[0])
		if err != nil {
			ExitWithError(err)
		}
		if err := generateGidsParameterFiles(log, cfg); err != nil {
			ExitWithError(err)
		}
	case "smartpgp":
		cfg, err := LoadSmartPGPProcedureConfig(args[0])
		if err != nil {
			ExitWithError(err)
		}
		if err := generateSmartPGPParameterFiles(log, cfg); err != nil {
			ExitWithError(err)
		}
	default:
		ExitWithErrorMsg("unknown family %q (use 'gids' or 'smartpgp')", family)
	}
}

// generateGidsParameterFiles resolves the generatable records of a GIDS
// procedure.
func generateGidsParameterFiles(log *Logger, cfg *GidsProcedureConfig) error {
	if cfg.GP.DesiredParametersFilename != "" {
		if _, err := LoadOrGenerateGPParameters(log, cfg.GP.DesiredParametersFilename); err != nil {
			return err
		}
	}
	_, err := LoadOrGenerateGidsParameters(log, cfg.GidsParametersFilename)
	return err
}

// generateSmartPGPParameterFiles resolves the generatable records of a
// SmartPGP procedure.
func generateSmartPGPParameterFiles(log *Logger, cfg *SmartPGPProcedureConfig) error {
	if cfg.GP.DesiredParametersFilename != "" {
		if _, err := LoadOrGenerateGPParameters(log, cfg.GP.DesiredParametersFilename); err != nil {
			return err
		}
	}
	if _, err := LoadOrGenerateOpenPGPInstallParameters(log, cfg.OpenPGPInstallParametersFilename); err != nil {
		return err
	}
	if cfg.Pins.DesiredPinsFilename != "" {
		if _, err := LoadOrGenerateOpenPGPPins(log, cfg.Pins.DesiredPinsFilename); err != nil {
			return err
		}
	}
	return nil
}
