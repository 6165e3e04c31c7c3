package commands

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/devsift/internal/domain/device"
	logpkg "github.com/kailas-cloud/devsift/internal/logger"
	"github.com/kailas-cloud/devsift/internal/source"
)

var pushTTL time.Duration

// PushCmd validates a local inventory file and publishes it under a redis key.
var PushCmd = &cobra.Command{
	Use:   "push <file> <redis://key>",
	Short: "Publish an inventory file to Redis for redis:// locators",
	Long: `Validate <file> as an inventory and store it under the given Redis key,
so servers and other clients can load it with redis://<key>.

Requires --redis-addr.`,
	Args: cobra.ExactArgs(2),
	RunE: runPushCommand,
}

func init() {
	PushCmd.Flags().DurationVar(&pushTTL, "ttl", 0, "Expire the key after this duration (0 keeps it)")
}

func runPushCommand(cmd *cobra.Command, args []string) error {
	path, target := args[0], args[1]
	if source.Scheme(target) != source.SchemeRedis {
		return fmt.Errorf("target %q must be a redis:// locator", target)
	}
	key, ok := source.Key(target)
	if !ok {
		return fmt.Errorf("target %q has no key", target)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	records, err := device.DecodeRecords(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("refusing to publish %s: %w", path, err)
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	if store == nil {
		return fmt.Errorf("push requires --redis-addr")
	}
	defer store.Close()

	log := logpkg.NewCLILogger(verbose)
	defer func() { _ = log.Sync() }()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if pushTTL > 0 {
		err = store.SetWithTTL(ctx, key, data, pushTTL)
	} else {
		err = store.Set(ctx, key, data)
	}
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", key, err)
	}

	log.Info("published", zap.String("key", key), zap.Int("records", len(records)), zap.Duration("ttl", pushTTL))
	return printJSON(cmd.OutOrStdout(), map[string]any{"key": key, "records": len(records)})
}
