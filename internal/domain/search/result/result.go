package result

import (
	"slices"

	"github.com/kailas-cloud/devsift/internal/domain/device"
)

// Result is the ordered outcome of one query against one generation.
type Result struct {
	rows       []*device.Row
	generation uint64
}

// New creates a query result. rows may point into a generation; they are
// only read.
func New(rows []*device.Row, generation uint64) Result {
	return Result{rows: rows, generation: generation}
}

// Rows returns copies of the matching rows in result order. Changing them
// has no effect on the result or the generation it came from.
func (r *Result) Rows() []*device.Row {
	if r.rows == nil {
		return nil
	}
	out := make([]*device.Row, len(r.rows))
	for i, row := range r.rows {
		out[i] = row.Clone()
	}
	return out
}

// Total returns the number of matching rows.
func (r *Result) Total() int { return len(r.rows) }

// Generation returns the generation the result was computed against.
func (r *Result) Generation() uint64 { return r.generation }

// Distinct holds, per facet field, the present values of a generation
// deduplicated in first-seen order.
type Distinct struct {
	values     map[device.Field][]device.Value
	generation uint64
}

// NewDistinct creates a Distinct result.
func NewDistinct(values map[device.Field][]device.Value, generation uint64) Distinct {
	return Distinct{values: values, generation: generation}
}

// Values returns a copy of the distinct values of f. Never nil for a facet
// field.
func (d *Distinct) Values(f device.Field) []device.Value {
	if v, ok := d.values[f]; ok {
		return slices.Clone(v)
	}
	if f.IsFacet() {
		return []device.Value{}
	}
	return nil
}

// Generation returns the generation the values were collected from.
func (d *Distinct) Generation() uint64 { return d.generation }

// CollectDistinct scans rows once and gathers the distinct present value of
// every facet field. Absent values are skipped, including absent booleans.
func CollectDistinct(rows []device.Row, generation uint64) Distinct {
	values := make(map[device.Field][]device.Value, len(device.FacetFields))
	seen := make(map[device.Field]map[device.Value]struct{}, len(device.FacetFields))
	for _, f := range device.FacetFields {
		values[f] = []device.Value{}
		seen[f] = make(map[device.Value]struct{})
	}

	for i := range rows {
		for _, f := range device.FacetFields {
			v, ok := rows[i].Value(f)
			if !ok {
				continue
			}
			if _, dup := seen[f][v]; dup {
				continue
			}
			seen[f][v] = struct{}{}
			values[f] = append(values[f], v)
		}
	}
	return NewDistinct(values, generation)
}
