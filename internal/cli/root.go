// Package cli implements the agentdeck CLI commands.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/agentdeck-io/agentdeck/internal/tui"
)

var rootCmd = &cobra.Command{
	Use:   "agentdeck",
	Short: "Console for supervising an autonomous agent backend",
	Long: `Agentdeck is a terminal console for a multi-agent backend. It polls the
backend's status endpoint, renders the run as a structured message tree with
progress stages, and manages named sessions bound to backend workspaces.

Running agentdeck with no arguments opens the console.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return tui.Run()
	},
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Add subcommands (alphabetical)
	rootCmd.AddCommand(consoleCmd)
	rootCmd.AddCommand(mockCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(versionCmd)
}
