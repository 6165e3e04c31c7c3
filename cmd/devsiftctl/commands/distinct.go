package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/devsift/internal/domain/device"
)

// DistinctCmd prints the distinct facet values of an inventory.
var DistinctCmd = &cobra.Command{
	Use:   "distinct <locator>",
	Short: "List the distinct values of every facet field",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		if _, err := s.engine.Load(ctx, args[0]); err != nil {
			return fmt.Errorf("failed to load %s: %w", args[0], err)
		}
		d, err := s.engine.Distinct(ctx)
		if err != nil {
			return err
		}

		out := make(map[string]any, len(device.FacetFields))
		for _, f := range device.FacetFields {
			values := d.Values(f)
			plain := make([]any, len(values))
			for i, v := range values {
				plain[i] = v.Any()
			}
			out[string(f)] = plain
		}
		return printJSON(cmd.OutOrStdout(), out)
	},
}
