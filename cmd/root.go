package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// Version information - set via ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "swiftfetch",
	Short: "A download manager driven by an external transfer engine",
	Long: `SwiftFetch orchestrates downloads through an external aria2 engine:
it submits transfers over JSON-RPC, polls their progress, adapts segment
counts to observed throughput, and keeps every task durable across restarts.`,
	Version: Version,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.SetVersionTemplate("swiftfetch version {{.Version}}\n")
}
