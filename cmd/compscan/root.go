// Package main provides the entry point for the CompScan CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for CompScan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compscan",
		Short: "Competitor content monitoring and change intelligence",
		Long: `CompScan monitors competitor public pages and reports how their content
evolves over time. Each run captures every configured page, compares it
against the most recent archived baseline using embedding similarity, and
writes a dated markdown intelligence report.

Strategic shifts (similarity below the configured threshold) are
highlighted in the report; smaller edits are recorded as minor updates.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewRunCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
