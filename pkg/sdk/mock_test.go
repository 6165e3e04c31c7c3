package devsift

import (
	"context"

	"github.com/kailas-cloud/devsift/internal/domain/device"
	"github.com/kailas-cloud/devsift/internal/domain/search/request"
	"github.com/kailas-cloud/devsift/internal/domain/search/result"
	healthuc "github.com/kailas-cloud/devsift/internal/usecase/health"
	"github.com/kailas-cloud/devsift/internal/usecase/query"
)

// --- engineUseCase mock ---

type mockEngine struct {
	loadFn        func(ctx context.Context, locator string) (query.LoadSummary, error)
	loadRecordsFn func(ctx context.Context, records []device.RawRecord) (query.LoadSummary, error)
	queryFn       func(ctx context.Context, req *request.Request) (result.Result, error)
	distinctFn    func(ctx context.Context) (result.Distinct, error)
	rowFn         func(ctx context.Context, ordinal int) (device.Row, device.RawRecord, error)
	statusFn      func(ctx context.Context) (query.Status, error)
	closed        bool
}

func (m *mockEngine) Load(ctx context.Context, locator string) (query.LoadSummary, error) {
	return m.loadFn(ctx, locator)
}

func (m *mockEngine) LoadRecords(ctx context.Context, records []device.RawRecord) (query.LoadSummary, error) {
	return m.loadRecordsFn(ctx, records)
}

func (m *mockEngine) Query(ctx context.Context, req *request.Request) (result.Result, error) {
	return m.queryFn(ctx, req)
}

func (m *mockEngine) Distinct(ctx context.Context) (result.Distinct, error) {
	return m.distinctFn(ctx)
}

func (m *mockEngine) Row(ctx context.Context, ordinal int) (device.Row, device.RawRecord, error) {
	return m.rowFn(ctx, ordinal)
}

func (m *mockEngine) Status(ctx context.Context) (query.Status, error) {
	return m.statusFn(ctx)
}

func (m *mockEngine) Close() error {
	m.closed = true
	return nil
}

// --- healthUseCase mock ---

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(_ context.Context) healthuc.Report {
	return m.report
}
