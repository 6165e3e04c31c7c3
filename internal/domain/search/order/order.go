package order

import (
	"slices"

	"github.com/kailas-cloud/devsift/internal/domain"
	"github.com/kailas-cloud/devsift/internal/domain/device"
)

// Key is one sort criterion. Keys are applied left to right.
type Key struct {
	field device.Field
	desc  bool
}

// NewKey validates and creates a Key.
func NewKey(f device.Field, desc bool) (Key, error) {
	if !f.IsKnown() {
		return Key{}, domain.NewQueryError(string(f), "unknown sort field")
	}
	return Key{field: f, desc: desc}, nil
}

// Field returns the sorted field.
func (k Key) Field() device.Field { return k.field }

// Desc reports whether the key sorts descending.
func (k Key) Desc() bool { return k.desc }

// compare orders a before b for this key. Absent values sort after every
// present value before the direction is applied.
func (k Key) compare(a, b *device.Row) int {
	av, aok := a.Value(k.field)
	bv, bok := b.Value(k.field)

	var c int
	switch {
	case !aok && !bok:
		return 0
	case !aok:
		c = 1
	case !bok:
		c = -1
	default:
		c = av.Compare(bv)
	}
	if k.desc {
		return -c
	}
	return c
}

// Sort orders rows by keys in place with a stable sort and returns them.
// With no keys the input is returned untouched.
func Sort(rows []*device.Row, keys []Key) []*device.Row {
	if len(keys) == 0 {
		return rows
	}
	slices.SortStableFunc(rows, func(a, b *device.Row) int {
		for _, k := range keys {
			if c := k.compare(a, b); c != 0 {
				return c
			}
		}
		return 0
	})
	return rows
}
