package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/devsift/cmd/devsiftctl/commands"
)

var rootCmd = &cobra.Command{
	Use:   "devsiftctl",
	Short: "devsiftctl - query device inventories from the command line",
	Long: `devsiftctl loads a device inventory and runs queries against it locally.

Locators may be http(s) URLs, file paths (optionally file://) or redis://<key>
when --redis-addr is set.

Examples:
  devsiftctl query devices.json --q sonoff
  devsiftctl query devices.json --enum online=true --sort brandName --sort ordinal:desc
  devsiftctl distinct https://example.com/devices.json
  devsiftctl export devices.json --enum online=true --out online.parquet
  devsiftctl push devices.json redis://devices:prod --redis-addr localhost:6379`,
	SilenceUsage: true,
}

func init() {
	commands.AddGlobalFlags(rootCmd)

	rootCmd.AddCommand(commands.QueryCmd)
	rootCmd.AddCommand(commands.ExportCmd)
	rootCmd.AddCommand(commands.DistinctCmd)
	rootCmd.AddCommand(commands.PushCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
