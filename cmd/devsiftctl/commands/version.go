package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/devsift/internal/version"
)

// VersionCmd prints build metadata.
var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show devsiftctl version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonOutput, _ := cmd.Flags().GetBool("json")
		info := version.Get()
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), info)
		}
		fmt.Fprintln(cmd.OutOrStdout(), info.String())
		fmt.Fprintf(cmd.OutOrStdout(), "Platform: %s\nGo: %s\n", info.Platform, info.GoVersion)
		return nil
	},
}

func init() {
	VersionCmd.Flags().BoolP("json", "j", false, "Output version info as JSON")
}
