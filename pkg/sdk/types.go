package devsift

import (
	"time"

	"github.com/kailas-cloud/devsift/internal/domain/device"
	"github.com/kailas-cloud/devsift/internal/domain/search/mode"
	"github.com/kailas-cloud/devsift/internal/domain/search/request"
)

// Query input shapes.
type (
	// QueryInput describes one query: search text, match mode, facet and
	// range filters and sort keys. The zero value returns every row.
	QueryInput = request.Input
	// EnumFilters lists the allowed values per facet field.
	EnumFilters = request.EnumFilters
	// RangeFilters holds inclusive numeric bounds.
	RangeFilters = request.RangeFilters
	// Bounds is an inclusive interval; either end may be nil.
	Bounds = request.Bounds
	// SortSpec is one sort key.
	SortSpec = request.SortSpec
)

// Record and row shapes.
type (
	// Record is one source record; its original JSON is kept verbatim.
	Record = device.RawRecord
	// Row is the flat projection of a Record.
	Row = device.Row
	// FlattenFunc projects a Record onto a Row.
	FlattenFunc = device.FlattenFunc
)

// Match modes for QueryInput.Mode.
const (
	ModeContains   = string(mode.Contains)
	ModeStartsWith = string(mode.StartsWith)
	ModeEndsWith   = string(mode.EndsWith)
	ModeEquals     = string(mode.Equals)
)

// LoadSummary describes the generation a load installed.
type LoadSummary struct {
	Count      int
	Generation uint64
}

// QueryResult is the ordered list of matching rows.
type QueryResult struct {
	Rows       []*Row
	Total      int
	Generation uint64
}

// Distinct lists the distinct values per facet field in first-seen order.
type Distinct struct {
	Online       []bool
	Model        []string
	UI           []string
	BrandName    []string
	ProductModel []string
	Type         []string
	ParentID     []string
	Generation   uint64
}

// Status describes the active generation.
type Status struct {
	Loaded     bool
	Generation uint64
	Rows       int
	Locator    string
	LoadedAt   time.Time
}
