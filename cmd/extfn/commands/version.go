package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teranos/extfn/display"
	"github.com/teranos/extfn/version"
)

// VersionCmd represents the version command
var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show extfn version information",
	Long:  `Display version, build time, commit hash, and platform information for the extfn binary.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		info := version.Get()

		if display.ShouldOutputJSON(cmd) {
			return display.OutputJSON(out, info)
		}

		fmt.Fprintln(out, info.String())
		fmt.Fprintf(out, "Platform: %s\n", info.Platform)
		fmt.Fprintf(out, "Go: %s\n", info.GoVersion)
		return nil
	},
}
