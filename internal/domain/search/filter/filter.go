package filter

import (
	"fmt"

	"github.com/kailas-cloud/devsift/internal/domain"
	"github.com/kailas-cloud/devsift/internal/domain/device"
)

// Expression is the conjunction of every facet and range filter of a query.
type Expression struct {
	facets []Facet
	ranges []Range
}

// NewExpression creates an Expression. Each field may appear at most once per group.
func NewExpression(facets []Facet, ranges []Range) (Expression, error) {
	seen := make(map[device.Field]bool, len(facets))
	for _, f := range facets {
		if seen[f.field] {
			return Expression{}, domain.NewQueryError(string(f.field), "duplicate facet filter")
		}
		seen[f.field] = true
	}
	clear(seen)
	for _, r := range ranges {
		if seen[r.field] {
			return Expression{}, domain.NewQueryError(string(r.field), "duplicate range filter")
		}
		seen[r.field] = true
	}
	return Expression{facets: facets, ranges: ranges}, nil
}

// Facets returns the facet filters.
func (e Expression) Facets() []Facet { return e.facets }

// Ranges returns the range filters.
func (e Expression) Ranges() []Range { return e.ranges }

// IsEmpty reports whether the expression has no filters at all.
func (e Expression) IsEmpty() bool { return len(e.facets) == 0 && len(e.ranges) == 0 }

// Passes reports whether the row passes every facet and every range.
func (e Expression) Passes(row *device.Row) bool {
	return PassesFacets(row, e.facets) && PassesRanges(row, e.ranges)
}

// Facet restricts a field to a finite allowed-value set.
// An empty set matches everything.
type Facet struct {
	field   device.Field
	allowed []device.Value
}

// NewFacet validates and creates a Facet. Values must have the field's kind.
func NewFacet(f device.Field, values []device.Value) (Facet, error) {
	if !f.IsFacet() {
		return Facet{}, domain.NewQueryError(string(f), "not a facet field")
	}
	for _, v := range values {
		if v.Kind() != f.Kind() {
			return Facet{}, domain.NewQueryError(string(f),
				fmt.Sprintf("expected %s values, got %s", f.Kind(), v.Kind()))
		}
	}
	return Facet{field: f, allowed: values}, nil
}

// Field returns the filtered field.
func (f Facet) Field() device.Field { return f.field }

// Values returns the allowed values.
func (f Facet) Values() []device.Value { return f.allowed }

// IsNoop reports whether the facet matches every row.
func (f Facet) IsNoop() bool { return len(f.allowed) == 0 }

// Allows reports whether the row's value is in the allowed set.
// Boolean fields treat an absent value as false; other absent values never match.
func (f Facet) Allows(row *device.Row) bool {
	if f.IsNoop() {
		return true
	}
	v, ok := row.Value(f.field)
	if !ok {
		if f.field.Kind() != device.KindBool {
			return false
		}
		v = device.BoolValue(false)
	}
	for _, a := range f.allowed {
		if a.Equal(v) {
			return true
		}
	}
	return false
}

// Range restricts a numeric field to the inclusive interval [min, max].
// Either bound may be nil; with neither bound the range matches everything.
type Range struct {
	field device.Field
	min   *float64
	max   *float64
}

// NewRange validates and creates a Range.
func NewRange(f device.Field, minVal, maxVal *float64) (Range, error) {
	if !f.IsRange() {
		return Range{}, domain.NewQueryError(string(f), "not a range field")
	}
	return Range{field: f, min: minVal, max: maxVal}, nil
}

// Field returns the filtered field.
func (r Range) Field() device.Field { return r.field }

// Min returns the inclusive lower bound.
func (r Range) Min() *float64 { return r.min }

// Max returns the inclusive upper bound.
func (r Range) Max() *float64 { return r.max }

// IsNoop reports whether the range has no bound.
func (r Range) IsNoop() bool { return r.min == nil && r.max == nil }

// Contains reports whether the row's value lies within the range.
// A row without the field is outside any bounded range.
func (r Range) Contains(row *device.Row) bool {
	if r.IsNoop() {
		return true
	}
	v, ok := row.Value(r.field)
	if !ok {
		return false
	}
	n := v.Num()
	if r.min != nil && n < *r.min {
		return false
	}
	if r.max != nil && n > *r.max {
		return false
	}
	return true
}

// PassesFacets reports whether the row passes every facet.
func PassesFacets(row *device.Row, facets []Facet) bool {
	for _, f := range facets {
		if !f.Allows(row) {
			return false
		}
	}
	return true
}

// PassesRanges reports whether the row passes every range.
func PassesRanges(row *device.Row, ranges []Range) bool {
	for _, r := range ranges {
		if !r.Contains(row) {
			return false
		}
	}
	return true
}
