package request

import (
	"github.com/kailas-cloud/devsift/internal/domain"
	"github.com/kailas-cloud/devsift/internal/domain/device"
	"github.com/kailas-cloud/devsift/internal/domain/search/filter"
	"github.com/kailas-cloud/devsift/internal/domain/search/mode"
	"github.com/kailas-cloud/devsift/internal/domain/search/order"
)

// Input is the wire shape of a query.
type Input struct {
	Q      string       `json:"q,omitempty"`
	Mode   string       `json:"mode,omitempty"`
	Enums  EnumFilters  `json:"enums,omitempty"`
	Ranges RangeFilters `json:"ranges,omitempty"`
	Sort   []SortSpec   `json:"sort,omitempty"`
}

// EnumFilters lists the allowed values per facet field.
type EnumFilters struct {
	Online       []bool   `json:"online,omitempty"`
	Model        []string `json:"model,omitempty"`
	UI           []string `json:"ui,omitempty"`
	BrandName    []string `json:"brandName,omitempty"`
	ProductModel []string `json:"productModel,omitempty"`
	Type         []string `json:"type,omitempty"`
	ParentID     []string `json:"parentid,omitempty"`
}

// RangeFilters holds the inclusive bounds per numeric field.
type RangeFilters struct {
	UIID     *Bounds `json:"uiid,omitempty"`
	IndexTop *Bounds `json:"indexTop,omitempty"`
	Ordinal  *Bounds `json:"ordinal,omitempty"`
}

// Bounds is an inclusive interval; either end may be omitted.
type Bounds struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// SortSpec is one sort key. ID accepts field names and dotted record paths.
type SortSpec struct {
	ID   string `json:"id"`
	Desc bool   `json:"desc,omitempty"`
}

// Build validates the input and converts it into a Request.
func (in Input) Build() (Request, error) {
	facets, err := in.Enums.facets()
	if err != nil {
		return Request{}, err
	}
	ranges, err := in.Ranges.ranges()
	if err != nil {
		return Request{}, err
	}
	expr, err := filter.NewExpression(facets, ranges)
	if err != nil {
		return Request{}, err
	}

	keys := make([]order.Key, 0, len(in.Sort))
	for _, s := range in.Sort {
		f, ok := device.ParseField(s.ID)
		if !ok {
			return Request{}, domain.NewQueryError("sort", "unknown field "+s.ID)
		}
		k, err := order.NewKey(f, s.Desc)
		if err != nil {
			return Request{}, err
		}
		keys = append(keys, k)
	}

	return New(in.Q, mode.Mode(in.Mode), expr, keys)
}

func (e EnumFilters) facets() ([]filter.Facet, error) {
	var out []filter.Facet
	add := func(f device.Field, values []device.Value) error {
		if len(values) == 0 {
			return nil
		}
		facet, err := filter.NewFacet(f, values)
		if err != nil {
			return err
		}
		out = append(out, facet)
		return nil
	}

	if len(e.Online) > 0 {
		values := make([]device.Value, len(e.Online))
		for i, b := range e.Online {
			values[i] = device.BoolValue(b)
		}
		if err := add(device.Online, values); err != nil {
			return nil, err
		}
	}
	for _, sf := range []struct {
		field  device.Field
		values []string
	}{
		{device.Model, e.Model},
		{device.UI, e.UI},
		{device.BrandName, e.BrandName},
		{device.ProductModel, e.ProductModel},
		{device.Type, e.Type},
		{device.ParentID, e.ParentID},
	} {
		if err := add(sf.field, stringValues(sf.values)); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r RangeFilters) ranges() ([]filter.Range, error) {
	var out []filter.Range
	for _, rf := range []struct {
		field  device.Field
		bounds *Bounds
	}{
		{device.UIID, r.UIID},
		{device.Index, r.IndexTop},
		{device.Ordinal, r.Ordinal},
	} {
		if rf.bounds == nil {
			continue
		}
		rng, err := filter.NewRange(rf.field, rf.bounds.Min, rf.bounds.Max)
		if err != nil {
			return nil, err
		}
		out = append(out, rng)
	}
	return out, nil
}

func stringValues(ss []string) []device.Value {
	if len(ss) == 0 {
		return nil
	}
	values := make([]device.Value, len(ss))
	for i, s := range ss {
		values[i] = device.StringValue(s)
	}
	return values
}
