package query

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/devsift/internal/domain"
	"github.com/kailas-cloud/devsift/internal/domain/device"
	"github.com/kailas-cloud/devsift/internal/domain/search/request"
	"github.com/kailas-cloud/devsift/internal/domain/search/result"
	"github.com/kailas-cloud/devsift/internal/fuzzy"
	"github.com/kailas-cloud/devsift/internal/store"
)

// Operation names reported to the Observer.
const (
	OpLoad     = "load"
	OpQuery    = "query"
	OpDistinct = "distinct"
	OpRow      = "row"
	OpStatus   = "status"
)

// InlineLocator is reported as the locator of generations built by LoadRecords.
const InlineLocator = "inline"

const defaultQueueSize = 64

// Config tunes an Engine.
type Config struct {
	// FuzzyThreshold is the text stage match threshold (0 selects the default).
	FuzzyThreshold float64
	// CacheSize is the per-generation query result cache capacity. 0 disables it.
	CacheSize int
	// QueueSize bounds pending requests before callers block.
	QueueSize int
	// MaxQueryLength caps search text length in characters. 0 keeps the request limit.
	MaxQueryLength int
	// Flatten projects records to rows. nil selects device.Flatten.
	Flatten device.FlattenFunc
}

// LoadSummary describes a successfully installed generation.
type LoadSummary struct {
	Count      int
	Generation uint64
}

// Status is a point-in-time view of the active generation.
type Status struct {
	Loaded     bool
	Generation uint64
	Rows       int
	Locator    string
	LoadedAt   time.Time
}

// generation bundles a snapshot with the state derived from it. It is
// replaced as a whole on every successful load.
type generation struct {
	snap     *store.Snapshot
	locator  string
	loadedAt time.Time
	distinct *result.Distinct
	cache    *lru.Cache[uint64, result.Result]
}

type task struct {
	op   string
	fn   func() error
	done chan error
}

// Engine answers load, query and distinct requests one at a time, in issue
// order, on a single worker goroutine.
type Engine struct {
	src Source
	obs Observer
	log *zap.Logger
	cfg Config

	mu      sync.RWMutex
	closed  bool
	tasks   chan task
	stopped chan struct{}

	// owned by the worker
	gen    *generation
	lastID uint64
}

// New starts an Engine. obs and log may be nil.
func New(src Source, obs Observer, log *zap.Logger, cfg Config) *Engine {
	if obs == nil {
		obs = nopObserver{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	e := &Engine{
		src:     src,
		obs:     obs,
		log:     log,
		cfg:     cfg,
		tasks:   make(chan task, cfg.QueueSize),
		stopped: make(chan struct{}),
	}
	go e.loop()
	return e
}

func (e *Engine) loop() {
	defer close(e.stopped)
	for t := range e.tasks {
		start := time.Now()
		err := e.run(t)
		e.obs.ObserveOperation(t.op, err, time.Since(start))
		t.done <- err
	}
}

func (e *Engine) run(t task) (err error) {
	defer func() {
		if p := recover(); p != nil {
			e.log.Error("engine task panicked", zap.String("op", t.op), zap.Any("panic", p), zap.Stack("stack"))
			err = fmt.Errorf("%s: internal error: %v", t.op, p)
		}
	}()
	return t.fn()
}

// submit enqueues fn and blocks until the worker has run it.
func (e *Engine) submit(op string, fn func() error) error {
	done := make(chan error, 1)

	e.mu.RLock()
	if e.closed {
		e.mu.RUnlock()
		return domain.ErrEngineClosed
	}
	e.tasks <- task{op: op, fn: fn, done: done}
	e.mu.RUnlock()

	return <-done
}

// Close stops accepting requests, lets queued ones finish and stops the worker.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	close(e.tasks)
	e.mu.Unlock()

	<-e.stopped
	return nil
}

// Load fetches locator through the Source and installs it as a new
// generation. On failure the active generation is left untouched.
// ctx only bounds the fetch.
func (e *Engine) Load(ctx context.Context, locator string) (LoadSummary, error) {
	var sum LoadSummary
	err := e.submit(OpLoad, func() error {
		records, err := e.src.Load(ctx, locator)
		if err != nil {
			if !errors.Is(err, domain.ErrLoad) {
				err = domain.NewLoadError(locator, 0, err)
			}
			e.log.Warn("load failed", zap.String("locator", locator), zap.Error(err))
			return err
		}
		sum, err = e.install(records, locator)
		return err
	})
	return sum, err
}

// LoadRecords installs already decoded records as a new generation. The
// engine works on its own copy; callers keep ownership of records.
func (e *Engine) LoadRecords(_ context.Context, records []device.RawRecord) (LoadSummary, error) {
	owned := make([]device.RawRecord, len(records))
	for i := range records {
		owned[i] = records[i].Clone()
	}
	var sum LoadSummary
	err := e.submit(OpLoad, func() (err error) {
		sum, err = e.install(owned, InlineLocator)
		return err
	})
	return sum, err
}

func (e *Engine) install(records []device.RawRecord, locator string) (LoadSummary, error) {
	id := e.lastID + 1
	snap, err := store.Build(id, records, e.cfg.Flatten, fuzzy.Options{Threshold: e.cfg.FuzzyThreshold})
	if err != nil {
		e.log.Warn("load failed", zap.String("locator", locator), zap.Error(err))
		return LoadSummary{}, err
	}

	g := &generation{snap: snap, locator: locator, loadedAt: time.Now()}
	if e.cfg.CacheSize > 0 {
		g.cache, err = lru.New[uint64, result.Result](e.cfg.CacheSize)
		if err != nil {
			return LoadSummary{}, fmt.Errorf("query cache: %w", err)
		}
	}

	e.lastID = id
	e.gen = g
	e.obs.ObserveGeneration(id, snap.Len())
	e.log.Info("generation installed",
		zap.Uint64("generation", id),
		zap.Int("rows", snap.Len()),
		zap.String("locator", locator),
	)
	return LoadSummary{Count: snap.Len(), Generation: id}, nil
}

// Query runs req against the active generation.
func (e *Engine) Query(_ context.Context, req *request.Request) (result.Result, error) {
	var res result.Result
	err := e.submit(OpQuery, func() (err error) {
		res, err = e.query(req)
		return err
	})
	return res, err
}

// Distinct returns the facet values of the active generation. The values do
// not depend on any query.
func (e *Engine) Distinct(_ context.Context) (result.Distinct, error) {
	var d result.Distinct
	err := e.submit(OpDistinct, func() error {
		g := e.gen
		if g == nil {
			return domain.ErrNotLoaded
		}
		if g.distinct == nil {
			v := result.CollectDistinct(g.snap.Rows(), g.snap.ID())
			g.distinct = &v
		}
		d = *g.distinct
		return nil
	})
	return d, err
}

// Row returns copies of the row at ordinal and of its source record.
func (e *Engine) Row(_ context.Context, ordinal int) (device.Row, device.RawRecord, error) {
	var (
		row device.Row
		rec device.RawRecord
	)
	err := e.submit(OpRow, func() error {
		g := e.gen
		if g == nil {
			return domain.ErrNotLoaded
		}
		r, raw, ok := g.snap.Row(ordinal)
		if !ok {
			return fmt.Errorf("%w: ordinal %d", domain.ErrRowNotFound, ordinal)
		}
		row, rec = *r.Clone(), raw.Clone()
		return nil
	})
	return row, rec, err
}

// Status reports the active generation.
func (e *Engine) Status(_ context.Context) (Status, error) {
	var st Status
	err := e.submit(OpStatus, func() error {
		if g := e.gen; g != nil {
			st = Status{
				Loaded:     true,
				Generation: g.snap.ID(),
				Rows:       g.snap.Len(),
				Locator:    g.locator,
				LoadedAt:   g.loadedAt,
			}
		}
		return nil
	})
	return st, err
}
