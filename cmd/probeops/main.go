package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Set via ldflags at build time.
var version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "probeops",
	Short: "Scheduled health probing for HTTP APIs",
	Long: "probeops probes registered API endpoints on a schedule, logs every\n" +
		"outcome and serves cycle summaries, uptime and endpoint administration\n" +
		"over HTTP.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default ./probeops.yaml)")

	rootCmd.Version = version
	rootCmd.SetVersionTemplate(fmt.Sprintf("probeops version %s\n", version))

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newCheckCmd())
}
