package devsift

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kailas-cloud/devsift/internal/domain"
	"github.com/kailas-cloud/devsift/internal/domain/device"
	"github.com/kailas-cloud/devsift/internal/domain/search/request"
	"github.com/kailas-cloud/devsift/internal/domain/search/result"
	healthuc "github.com/kailas-cloud/devsift/internal/usecase/health"
	"github.com/kailas-cloud/devsift/internal/usecase/query"
)

const devicesJSON = `[
  {"index": 0, "itemData": {"name": "Hall", "deviceid": "d0", "brandName": "Sonoff", "online": true,
    "extra": {"model": "ABC123", "uiid": 15}, "params": {"type": "switch"}}},
  {"index": 1, "itemData": {"name": "Porch", "deviceid": "d1", "brandName": "Tuya", "online": false,
    "extra": {"model": "QRS900", "uiid": 25}}},
  {"index": 2, "itemData": {"name": "Attic", "deviceid": "d2", "online": true, "extra": {"model": "XYZ"}},
    "vendor": {"opaque": true}}
]`

func newTestClient(t *testing.T, opts ...Option) *Client {
	t.Helper()
	c, err := New(context.Background(), opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

func serveDevices(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/devices.json" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(devicesJSON))
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestClientOptions(t *testing.T) {
	cfg := &clientConfig{}

	WithRedis("localhost:6380", "pass").apply(cfg)
	if len(cfg.redisAddrs) != 1 || cfg.redisAddrs[0] != "localhost:6380" || cfg.redisPassword != "pass" {
		t.Errorf("redis = %v/%q", cfg.redisAddrs, cfg.redisPassword)
	}

	WithTimeout(5 * time.Second).apply(cfg)
	WithFuzzyThreshold(0.2).apply(cfg)
	WithCacheSize(32).apply(cfg)
	WithMaxQueryLength(40).apply(cfg)
	if cfg.timeout != 5*time.Second || cfg.fuzzyThreshold != 0.2 || cfg.cacheSize != 32 || cfg.maxQueryLength != 40 {
		t.Errorf("unexpected config: %+v", cfg)
	}

	hc := &http.Client{}
	WithHTTPClient(hc).apply(cfg)
	if cfg.httpClient != hc {
		t.Error("expected http client to be set")
	}

	WithFlatten(device.Flatten).apply(cfg)
	if cfg.flatten == nil {
		t.Error("expected flatten to be set")
	}

	logger := slog.Default()
	WithLogger(logger).apply(cfg)
	if cfg.logger != logger {
		t.Error("expected logger to be set")
	}

	reg := prometheus.NewRegistry()
	WithPrometheus(reg).apply(cfg)
	if cfg.metricsReg != reg {
		t.Error("expected metricsReg to be set")
	}
}

func TestNew_InvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{"threshold above one", WithFuzzyThreshold(1.5)},
		{"negative threshold", WithFuzzyThreshold(-0.1)},
		{"negative cache", WithCacheSize(-1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(context.Background(), tt.opt); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestClient_EndToEnd(t *testing.T) {
	ts := serveDevices(t)
	c := newTestClient(t, WithHTTPClient(ts.Client()), WithCacheSize(4))
	ctx := context.Background()

	if _, err := c.Query(ctx, QueryInput{}); !errors.Is(err, ErrNotLoaded) {
		t.Fatalf("query before load: expected ErrNotLoaded, got %v", err)
	}

	sum, err := c.Load(ctx, ts.URL+"/devices.json")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if sum.Count != 3 || sum.Generation != 1 {
		t.Errorf("summary = %+v", sum)
	}

	res, err := c.Query(ctx, QueryInput{
		Enums: EnumFilters{Online: []bool{true}},
		Sort:  []SortSpec{{ID: "ordinal", Desc: true}},
	})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if res.Total != 2 || res.Rows[0].Ordinal != 2 || res.Rows[1].Ordinal != 0 {
		t.Errorf("unexpected rows: %+v", res.Rows)
	}

	res, err = c.Query(ctx, QueryInput{Q: "abc123", Mode: ModeEquals})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if res.Total != 1 || *res.Rows[0].Name != "Hall" {
		t.Errorf("equals query: %+v", res.Rows)
	}

	d, err := c.Distinct(ctx)
	if err != nil {
		t.Fatalf("Distinct: %v", err)
	}
	if strings.Join(d.Model, ",") != "ABC123,QRS900,XYZ" || len(d.Online) != 2 || d.Generation != 1 {
		t.Errorf("distinct = %+v", d)
	}

	row, rec, err := c.Row(ctx, 2)
	if err != nil {
		t.Fatalf("Row: %v", err)
	}
	if *row.Name != "Attic" || !strings.Contains(string(rec.Raw()), `"vendor"`) {
		t.Errorf("row = %+v, raw = %s", row, rec.Raw())
	}
	if _, _, err := c.Row(ctx, 3); !errors.Is(err, ErrRowNotFound) {
		t.Errorf("expected ErrRowNotFound, got %v", err)
	}

	st, err := c.Status(ctx)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if !st.Loaded || st.Rows != 3 || st.Locator != ts.URL+"/devices.json" {
		t.Errorf("status = %+v", st)
	}

	if h := c.Health(ctx); h.Status != "ok" || h.Checks["engine"] != "ok" {
		t.Errorf("health = %+v", h)
	}
}

func TestClient_LoadFailureKeepsGeneration(t *testing.T) {
	ts := serveDevices(t)
	c := newTestClient(t, WithHTTPClient(ts.Client()))
	ctx := context.Background()

	if _, err := c.Load(ctx, ts.URL+"/devices.json"); err != nil {
		t.Fatalf("Load: %v", err)
	}

	_, err := c.Load(ctx, ts.URL+"/missing.json")
	if !errors.Is(err, ErrLoad) {
		t.Fatalf("expected ErrLoad, got %v", err)
	}
	var le *LoadError
	if !errors.As(err, &le) || le.Status != http.StatusNotFound {
		t.Errorf("expected LoadError with status 404, got %v", err)
	}

	res, err := c.Query(ctx, QueryInput{})
	if err != nil || res.Total != 3 || res.Generation != 1 {
		t.Errorf("previous generation lost: %+v, %v", res, err)
	}
}

func TestClient_LoadRecords(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	records, err := DecodeRecords(strings.NewReader(devicesJSON))
	if err != nil {
		t.Fatalf("DecodeRecords: %v", err)
	}
	sum, err := c.LoadRecords(ctx, records)
	if err != nil {
		t.Fatalf("LoadRecords: %v", err)
	}
	if sum.Count != 3 {
		t.Errorf("count = %d, want 3", sum.Count)
	}

	st, err := c.Status(ctx)
	if err != nil || st.Locator != query.InlineLocator {
		t.Errorf("status = %+v, %v", st, err)
	}
}

func TestDecodeRecords_Malformed(t *testing.T) {
	_, err := DecodeRecords(strings.NewReader(`[{"index": 0}, 42]`))
	var mie *MalformedInputError
	if !errors.As(err, &mie) || mie.Position != 1 {
		t.Fatalf("expected MalformedInputError at 1, got %v", err)
	}
}

func TestClient_QueryInvalidInput(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := newTestClient(t, WithPrometheus(reg))

	_, err := c.Query(context.Background(), QueryInput{Sort: []SortSpec{{ID: "color"}}})
	if !errors.Is(err, ErrInvalidQuery) {
		t.Fatalf("expected ErrInvalidQuery, got %v", err)
	}
	var qe *QueryError
	if !errors.As(err, &qe) || qe.Field != "sort" {
		t.Errorf("expected QueryError on sort, got %v", err)
	}

	got := testutil.ToFloat64(c.obs.metrics.operations.WithLabelValues(query.OpQuery, "invalid_query"))
	if got != 1 {
		t.Errorf("invalid query counter = %v, want 1", got)
	}
}

func TestClient_Close(t *testing.T) {
	c, err := New(context.Background())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	c.Close()

	if _, err := c.Query(context.Background(), QueryInput{}); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}

func TestClient_MockEngine(t *testing.T) {
	eng := &mockEngine{
		queryFn: func(_ context.Context, req *request.Request) (result.Result, error) {
			if req.Text() != "hall" {
				t.Errorf("text = %q", req.Text())
			}
			return result.New([]*device.Row{{Ordinal: 7}}, 4), nil
		},
		distinctFn: func(context.Context) (result.Distinct, error) {
			return result.NewDistinct(map[device.Field][]device.Value{
				device.Online: {device.BoolValue(false)},
				device.Type:   {device.StringValue("light")},
			}, 4), nil
		},
		statusFn: func(context.Context) (query.Status, error) {
			return query.Status{}, domain.ErrEngineClosed
		},
	}
	c := &Client{engine: eng, healthSvc: &mockHealthUC{report: healthuc.Report{Status: healthuc.Degraded}}}
	ctx := context.Background()

	res, err := c.Query(ctx, QueryInput{Q: "hall"})
	if err != nil || res.Total != 1 || res.Rows[0].Ordinal != 7 || res.Generation != 4 {
		t.Errorf("query = %+v, %v", res, err)
	}

	d, err := c.Distinct(ctx)
	if err != nil {
		t.Fatalf("Distinct: %v", err)
	}
	if len(d.Online) != 1 || d.Online[0] || len(d.Type) != 1 || d.Type[0] != "light" || len(d.Model) != 0 {
		t.Errorf("distinct = %+v", d)
	}

	if _, err := c.Status(ctx); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
	if h := c.Health(ctx); h.Status != "degraded" {
		t.Errorf("health = %+v", h)
	}

	c.Close()
	if !eng.closed {
		t.Error("engine not closed")
	}
}

func TestObserver_NilSafe(t *testing.T) {
	var obs *observer
	obs.observe("test", time.Now(), nil)
	obs.ObserveGeneration(1, 2)
	obs.ObserveCache(true)
}

func TestObserver_WithPrometheus(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs, err := newObserver(nil, reg)
	if err != nil {
		t.Fatalf("newObserver: %v", err)
	}

	obs.ObserveOperation(query.OpLoad, nil, 10*time.Millisecond)
	obs.ObserveOperation(query.OpLoad, domain.NewLoadError("file:///x", 0, errors.New("gone")), time.Millisecond)
	obs.ObserveGeneration(3, 120)
	obs.ObserveCache(true)
	obs.ObserveCache(false)
	obs.ObserveCache(false)

	if n := testutil.CollectAndCount(obs.metrics.operations, "devsift_sdk_operations_total"); n != 2 {
		t.Errorf("operations samples = %d, want 2", n)
	}
	if v := testutil.ToFloat64(obs.metrics.generation); v != 3 {
		t.Errorf("generation = %v, want 3", v)
	}
	if v := testutil.ToFloat64(obs.metrics.rows); v != 120 {
		t.Errorf("rows = %v, want 120", v)
	}
	if v := testutil.ToFloat64(obs.metrics.cache.WithLabelValues(query.CacheResult(false))); v != 2 {
		t.Errorf("cache misses = %v, want 2", v)
	}
}

func TestObserver_ReusesRegisteredMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := newObserver(nil, reg)
	if err != nil {
		t.Fatalf("first observer: %v", err)
	}
	second, err := newObserver(nil, reg)
	if err != nil {
		t.Fatalf("second observer: %v", err)
	}

	second.ObserveGeneration(9, 1)
	if v := testutil.ToFloat64(first.metrics.generation); v != 9 {
		t.Errorf("metrics not shared: generation = %v", v)
	}
}

func TestObserver_WithLogger(t *testing.T) {
	obs, err := newObserver(slog.Default(), nil)
	if err != nil {
		t.Fatalf("newObserver: %v", err)
	}
	obs.observe("test.op", time.Now(), nil)
	obs.observe("test.op", time.Now(), errors.New("test error"))
	obs.ObserveGeneration(1, 1)
}

func TestClient_ResultsAreIsolated(t *testing.T) {
	c := newTestClient(t, WithCacheSize(16))
	ctx := context.Background()

	records, err := DecodeRecords(strings.NewReader(`[
	  {"itemData": {"deviceid": "ABC123"}},
	  {"itemData": {"deviceid": "xyz789"}}
	]`))
	if err != nil {
		t.Fatalf("DecodeRecords: %v", err)
	}
	if _, err := c.LoadRecords(ctx, records); err != nil {
		t.Fatalf("LoadRecords: %v", err)
	}
	*records[0].ItemData.DeviceID = "from-caller"

	res, err := c.Query(ctx, QueryInput{})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	res.Rows[0], res.Rows[1] = res.Rows[1], res.Rows[0]
	*res.Rows[1].DeviceID = "changed"

	again, err := c.Query(ctx, QueryInput{})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if again.Rows[0].Ordinal != 0 || again.Rows[1].Ordinal != 1 {
		t.Errorf("second query({}) ordinals: %d,%d", again.Rows[0].Ordinal, again.Rows[1].Ordinal)
	}

	row, _, err := c.Row(ctx, 0)
	if err != nil {
		t.Fatalf("Row: %v", err)
	}
	if *row.DeviceID != "ABC123" {
		t.Errorf("Row(0).DeviceID = %q, want ABC123", *row.DeviceID)
	}

	eq, err := c.Query(ctx, QueryInput{Q: "abc123", Mode: ModeEquals})
	if err != nil || eq.Total != 1 {
		t.Errorf("equals abc123 total = %d, err = %v", eq.Total, err)
	}
}
