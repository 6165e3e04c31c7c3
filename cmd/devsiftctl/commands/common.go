// Package commands implements the devsiftctl subcommands.
package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/devsift/internal/db"
	dbRedis "github.com/kailas-cloud/devsift/internal/db/redis"
	logpkg "github.com/kailas-cloud/devsift/internal/logger"
	"github.com/kailas-cloud/devsift/internal/source"
	"github.com/kailas-cloud/devsift/internal/usecase/query"
)

var (
	verbose       bool
	timeout       time.Duration
	redisAddr     string
	redisPassword string
	threshold     float64
)

// AddGlobalFlags registers the flags shared by every subcommand.
func AddGlobalFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.BoolVarP(&verbose, "verbose", "v", false, "Log progress to stderr")
	f.DurationVar(&timeout, "timeout", 30*time.Second, "Timeout for fetching the locator")
	f.StringVar(&redisAddr, "redis-addr", "", "Redis address; enables redis:// locators")
	f.StringVar(&redisPassword, "redis-password", "", "Redis password")
	f.Float64Var(&threshold, "threshold", 0, "Fuzzy match threshold in (0, 1]; 0 selects the default")
}

// session is one engine plus the resources it was built from.
type session struct {
	engine *query.Engine
	store  db.Store
	log    *zap.Logger
}

func (s *session) Close() {
	_ = s.engine.Close()
	if s.store != nil {
		s.store.Close()
	}
	_ = s.log.Sync()
}

func openStore() (db.Store, error) {
	if redisAddr == "" {
		return nil, nil
	}
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    []string{redisAddr},
		Password: redisPassword,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return store, nil
}

// openSession builds a local engine over every locator scheme available.
func openSession() (*session, error) {
	log := logpkg.NewCLILogger(verbose)

	store, err := openStore()
	if err != nil {
		return nil, err
	}
	opts := source.Options{Timeout: timeout}
	if store != nil {
		opts.KV = store
	}

	engine := query.New(source.New(opts), nil, log, query.Config{FuzzyThreshold: threshold})
	return &session{engine: engine, store: store, log: log}, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
