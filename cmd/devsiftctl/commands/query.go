package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/devsift/internal/domain/device"
	"github.com/kailas-cloud/devsift/internal/domain/search/result"
)

var (
	queryText   string
	queryMode   string
	queryEnums  []string
	queryRanges []string
	querySorts  []string
	queryRows   bool
)

// QueryCmd loads a locator and prints the rows matching the flags.
var QueryCmd = &cobra.Command{
	Use:   "query <locator>",
	Short: "Search, filter and sort a device inventory",
	Long: `Load the inventory behind <locator> and print the matching rows as JSON.

Examples:
  devsiftctl query devices.json --q "basic r2"
  devsiftctl query devices.json --q abc123 --mode equals
  devsiftctl query devices.json --enum online=true --enum brandName=Sonoff
  devsiftctl query devices.json --range uiid=10:20 --sort brandName --sort ordinal:desc`,
	Args: cobra.ExactArgs(1),
	RunE: runQueryCommand,
}

func init() {
	addQueryFlags(QueryCmd)
	QueryCmd.Flags().BoolVar(&queryRows, "rows-only", false, "Print only the rows array")
}

// addQueryFlags registers the search, filter and sort flags on cmd.
func addQueryFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&queryText, "q", "q", "", "Search text")
	f.StringVarP(&queryMode, "mode", "m", "contains", "Match mode: contains, startsWith, endsWith, equals")
	f.StringArrayVarP(&queryEnums, "enum", "e", nil, "Facet filter field=value (repeatable)")
	f.StringArrayVarP(&queryRanges, "range", "r", nil, "Range filter field=min:max; either bound may be empty (repeatable)")
	f.StringArrayVarP(&querySorts, "sort", "s", nil, "Sort key field[:desc] (repeatable, in priority order)")
}

type queryOutput struct {
	Rows       []*device.Row `json:"rows"`
	Total      int           `json:"total"`
	Generation uint64        `json:"generation"`
}

func runQueryCommand(cmd *cobra.Command, args []string) error {
	res, err := loadAndQuery(cmd, args[0])
	if err != nil {
		return err
	}

	rows := res.Rows()
	if rows == nil {
		rows = []*device.Row{}
	}
	if queryRows {
		return printJSON(cmd.OutOrStdout(), rows)
	}
	return printJSON(cmd.OutOrStdout(), queryOutput{Rows: rows, Total: res.Total(), Generation: res.Generation()})
}

// loadAndQuery loads locator into a fresh engine and runs the query the
// flags describe.
func loadAndQuery(cmd *cobra.Command, locator string) (result.Result, error) {
	in, err := buildInput(queryText, queryMode, queryEnums, queryRanges, querySorts)
	if err != nil {
		return result.Result{}, err
	}
	req, err := in.Build()
	if err != nil {
		return result.Result{}, err
	}

	s, err := openSession()
	if err != nil {
		return result.Result{}, err
	}
	defer s.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	sum, err := s.engine.Load(ctx, locator)
	if err != nil {
		return result.Result{}, fmt.Errorf("failed to load %s: %w", locator, err)
	}
	s.log.Debug("loaded", zap.String("locator", locator), zap.Int("rows", sum.Count))

	res, err := s.engine.Query(ctx, &req)
	if err != nil {
		return result.Result{}, fmt.Errorf("query failed: %w", err)
	}
	return res, nil
}
