package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/devsift/internal/export"
	logpkg "github.com/kailas-cloud/devsift/internal/logger"
)

var (
	exportOut     string
	exportSecrets bool
)

// ExportCmd runs a query and writes the rows to a parquet file.
var ExportCmd = &cobra.Command{
	Use:   "export <locator>",
	Short: "Write query results to a parquet file",
	Long: `Load the inventory behind <locator>, run the query described by the flags
and write the matching rows, in result order, to a parquet file.

apikey and devicekey are left out unless --include-secrets is set.

Examples:
  devsiftctl export devices.json --out devices.parquet
  devsiftctl export devices.json --enum online=true --sort brandName --out online.parquet`,
	Args: cobra.ExactArgs(1),
	RunE: runExportCommand,
}

func init() {
	addQueryFlags(ExportCmd)
	f := ExportCmd.Flags()
	f.StringVarP(&exportOut, "out", "o", "", "Output file (required)")
	f.BoolVar(&exportSecrets, "include-secrets", false, "Keep apikey and devicekey columns")
	_ = ExportCmd.MarkFlagRequired("out")
}

func runExportCommand(cmd *cobra.Command, args []string) (err error) {
	res, err := loadAndQuery(cmd, args[0])
	if err != nil {
		return err
	}

	// Written beside the target, then renamed into place.
	tmp, err := os.CreateTemp(filepath.Dir(exportOut), ".devsift-export-*")
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	n, err := export.WriteParquet(tmp, res.Rows(), export.Options{IncludeSecrets: exportSecrets})
	if err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	if err = os.Rename(tmp.Name(), exportOut); err != nil {
		return fmt.Errorf("rename output: %w", err)
	}

	log := logpkg.NewCLILogger(verbose)
	defer func() { _ = log.Sync() }()
	log.Info("exported", zap.String("file", exportOut), zap.Int("rows", n))

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "wrote %d rows to %s\n", n, exportOut)
	return err
}
