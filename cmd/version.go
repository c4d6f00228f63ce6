/*
Copyright © 2025 Logicos Software

version.go implements the 'version' command.

This command displays version information for cardprod, including:
  - Semantic version number
  - Git commit hash
  - Build timestamp
  - Go compiler version

Version information is embedded at build time via ldflags:

	go build -ldflags "-X cardprod/cmd.Version=1.0.0 \
	                   -X cardprod/cmd.GitCommit=$(git rev-parse HEAD) \
	                   -X cardprod/cmd.BuildTime=$(date -Iseconds) \
	                   -X cardprod/cmd.GoVersion=$(go version)"
*/
package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// Version information variables.
// These are set via ldflags during the build process.
var (
	Version   = "dev"     // Semantic version (e.g., "1.0.0")
	BuildTime = "unknown" // Build timestamp
	GitCommit = "unknown" // Git commit hash
	GoVersion = "unknown" // Go compiler version
)

// versionCmd represents the 'version' command.
// It displays build and version information for cardprod.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version information",
	Long:  `Print the version information for cardprod.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("cardprod - smartcard production tool")
		fmt.Printf("Version:    %s\n", Version)
		fmt.Printf("Git Commit: %s\n", GitCommit)
		fmt.Printf("Built:      %s\n", BuildTime)
		fmt.Printf("Go Version: %s\n", GoVersion)
		fmt.Println()
		fmt.Printf("Copyright © 2024-%d Logicos Software\n", time.Now().Year())
		fmt.Println("Licensed under the MIT License")
	},
}

// init registers the 'version' command with the root command.
func init() {
	rootCmd.AddCommand(versionCmd)
}
