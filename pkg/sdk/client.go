package devsift

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/kailas-cloud/devsift/internal/db"
	dbRedis "github.com/kailas-cloud/devsift/internal/db/redis"
	"github.com/kailas-cloud/devsift/internal/domain/device"
	"github.com/kailas-cloud/devsift/internal/domain/search/request"
	"github.com/kailas-cloud/devsift/internal/domain/search/result"
	"github.com/kailas-cloud/devsift/internal/source"
	healthuc "github.com/kailas-cloud/devsift/internal/usecase/health"
	"github.com/kailas-cloud/devsift/internal/usecase/query"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultTimeout          = 30 * time.Second
)

// Internal interface, swapped in tests.
type engineUseCase interface {
	Load(ctx context.Context, locator string) (query.LoadSummary, error)
	LoadRecords(ctx context.Context, records []device.RawRecord) (query.LoadSummary, error)
	Query(ctx context.Context, req *request.Request) (result.Result, error)
	Distinct(ctx context.Context) (result.Distinct, error)
	Row(ctx context.Context, ordinal int) (device.Row, device.RawRecord, error)
	Status(ctx context.Context) (query.Status, error)
	Close() error
}

// Client is the devsift SDK entry point. It is safe for concurrent use;
// calls are answered one at a time in issue order.
type Client struct {
	store     db.Store
	engine    engineUseCase
	healthSvc healthUseCase
	obs       *observer
}

// New creates a Client. When WithRedis is set the provided context is used
// for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{timeout: defaultTimeout}
	for _, o := range opts {
		o.apply(cfg)
	}
	if cfg.fuzzyThreshold < 0 || cfg.fuzzyThreshold > 1 {
		return nil, fmt.Errorf("devsift: fuzzy threshold must be in (0, 1], got %g", cfg.fuzzyThreshold)
	}
	if cfg.cacheSize < 0 {
		return nil, fmt.Errorf("devsift: cache size must not be negative, got %d", cfg.cacheSize)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	var store db.Store
	if len(cfg.redisAddrs) > 0 {
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.redisAddrs,
			Password: cfg.redisPassword,
		})
		if err != nil {
			return nil, fmt.Errorf("devsift: create redis store: %w", err)
		}
		if err := s.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
			s.Close()
			return nil, fmt.Errorf("devsift: redis not ready: %w", err)
		}
		store = s
	}

	return wireClient(store, cfg, obs), nil
}

func wireClient(store db.Store, cfg *clientConfig, obs *observer) *Client {
	srcOpts := source.Options{HTTPClient: cfg.httpClient, Timeout: cfg.timeout}
	var pinger healthuc.Pinger
	if store != nil {
		srcOpts.KV = store
		pinger = store
	}

	engine := query.New(source.New(srcOpts), obs, nil, query.Config{
		FuzzyThreshold: cfg.fuzzyThreshold,
		CacheSize:      cfg.cacheSize,
		MaxQueryLength: cfg.maxQueryLength,
		Flatten:        cfg.flatten,
	})

	return &Client{
		store:     store,
		engine:    engine,
		healthSvc: healthuc.New(engine, pinger),
		obs:       obs,
	}
}

// Close stops the engine and releases all resources. Calls after Close fail
// with ErrClosed.
func (c *Client) Close() {
	_ = c.engine.Close()
	if c.store != nil {
		c.store.Close()
	}
}

// Load fetches the inventory behind locator and installs it as the new
// generation. On failure the previous generation stays active.
func (c *Client) Load(ctx context.Context, locator string) (LoadSummary, error) {
	sum, err := c.engine.Load(ctx, locator)
	if err != nil {
		return LoadSummary{}, fmt.Errorf("load: %w", err)
	}
	return LoadSummary{Count: sum.Count, Generation: sum.Generation}, nil
}

// LoadRecords installs already decoded records as the new generation.
func (c *Client) LoadRecords(ctx context.Context, records []Record) (LoadSummary, error) {
	sum, err := c.engine.LoadRecords(ctx, records)
	if err != nil {
		return LoadSummary{}, fmt.Errorf("load records: %w", err)
	}
	return LoadSummary{Count: sum.Count, Generation: sum.Generation}, nil
}

// DecodeRecords reads a JSON array of records. A record that is not a JSON
// object fails with a MalformedInputError naming its position.
func DecodeRecords(r io.Reader) ([]Record, error) {
	return device.DecodeRecords(r)
}

// Query runs one query against the active generation.
func (c *Client) Query(ctx context.Context, in QueryInput) (QueryResult, error) {
	start := time.Now()
	req, err := in.Build()
	if err != nil {
		c.obs.observe(query.OpQuery, start, err)
		return QueryResult{}, fmt.Errorf("query: %w", err)
	}

	res, err := c.engine.Query(ctx, &req)
	if err != nil {
		return QueryResult{}, fmt.Errorf("query: %w", err)
	}
	return QueryResult{Rows: res.Rows(), Total: res.Total(), Generation: res.Generation()}, nil
}

// Distinct lists the distinct values of every facet field. It is unaffected
// by previous queries.
func (c *Client) Distinct(ctx context.Context) (Distinct, error) {
	d, err := c.engine.Distinct(ctx)
	if err != nil {
		return Distinct{}, fmt.Errorf("distinct: %w", err)
	}
	return distinctFromResult(&d), nil
}

// Row returns the row at ordinal and the record it was flattened from.
func (c *Client) Row(ctx context.Context, ordinal int) (Row, Record, error) {
	row, rec, err := c.engine.Row(ctx, ordinal)
	if err != nil {
		return Row{}, Record{}, fmt.Errorf("row: %w", err)
	}
	return row, rec, nil
}

// Status describes the active generation.
func (c *Client) Status(ctx context.Context) (Status, error) {
	st, err := c.engine.Status(ctx)
	if err != nil {
		return Status{}, fmt.Errorf("status: %w", err)
	}
	return Status(st), nil
}

func distinctFromResult(d *result.Distinct) Distinct {
	strs := func(f device.Field) []string {
		values := d.Values(f)
		out := make([]string, len(values))
		for i, v := range values {
			out[i] = v.Str()
		}
		return out
	}
	online := d.Values(device.Online)
	bools := make([]bool, len(online))
	for i, v := range online {
		bools[i] = v.Truth()
	}
	return Distinct{
		Online:       bools,
		Model:        strs(device.Model),
		UI:           strs(device.UI),
		BrandName:    strs(device.BrandName),
		ProductModel: strs(device.ProductModel),
		Type:         strs(device.Type),
		ParentID:     strs(device.ParentID),
		Generation:   d.Generation(),
	}
}
