package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/agentdeck-io/agentdeck/internal/buildinfo"
)

var versionCmd = &cobra.Command{
	Use:     "version",
	Aliases: []string{"v"},
	Short:   "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("%s %s\n",
			styleBrand.Render("Agentdeck"),
			styleVersion.Render(buildinfo.Version),
		)
		fmt.Printf("  %s %s\n", styleLabel.Render("Commit:"), buildinfo.CommitHash)
		fmt.Printf("  %s %s\n", styleLabel.Render("Built:"), buildinfo.BuildDate)
		fmt.Printf("  %s %s/%s\n", styleLabel.Render("OS/Arch:"), runtime.GOOS, runtime.GOARCH)
		fmt.Printf("  %s %s\n", styleLabel.Render("Go:"), runtime.Version())
	},
}
