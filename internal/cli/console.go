package cli

import (
	"github.com/spf13/cobra"

	"github.com/agentdeck-io/agentdeck/internal/tui"
)

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Open the interactive console",
	Long: `Open the interactive console. This is the default when agentdeck is run
with no arguments.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return tui.Run()
	},
}
