package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "meridian",
	Short: "Meridian - decision governance with a tamper-evident audit ledger",
	Long: `Meridian evaluates proposed actions against a declarative policy and
records every decision in a hash-chained, Ed25519-signed append-only ledger.

It provides:
  - Policy-based allow/deny/escalate/require_confirmation decisions
  - Hash-chained, signed audit entries with gap-free sequences
  - Chain verification detecting tampering, truncation, and forgery
  - Signed, reproducible export packages for external auditors`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
