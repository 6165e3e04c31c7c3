// Package store materializes decoded records into immutable, generation
// tagged row snapshots.
package store

import (
	"fmt"

	"github.com/kailas-cloud/devsift/internal/domain"
	"github.com/kailas-cloud/devsift/internal/domain/device"
	"github.com/kailas-cloud/devsift/internal/fuzzy"
)

// Materialize flattens every record into a row stamped with its position.
// A nil flatten selects device.Flatten. A flatten function that panics
// fails the whole batch with a MalformedInputError at that position.
func Materialize(records []device.RawRecord, flatten device.FlattenFunc) (rows []device.Row, err error) {
	if flatten == nil {
		flatten = device.Flatten
	}
	rows = make([]device.Row, len(records))

	i := 0
	defer func() {
		if p := recover(); p != nil {
			rows = nil
			err = domain.NewMalformedInput(i, fmt.Errorf("flatten: %v", p))
		}
	}()
	for ; i < len(records); i++ {
		rows[i] = device.Bind(flatten(&records[i]), i, &records[i])
	}
	return rows, nil
}

// Snapshot is one immutable load generation: the records, their rows and the
// fuzzy index built over them.
type Snapshot struct {
	id      uint64
	records []device.RawRecord
	rows    []device.Row
	index   *fuzzy.Index
}

// NewSnapshot assembles a snapshot. rows[i] must be the projection of
// records[i] and index must be built from rows for the same generation.
func NewSnapshot(id uint64, records []device.RawRecord, rows []device.Row, index *fuzzy.Index) *Snapshot {
	return &Snapshot{id: id, records: records, rows: rows, index: index}
}

// Build materializes records and indexes the searchable fields in one step.
func Build(
	id uint64,
	records []device.RawRecord,
	flatten device.FlattenFunc,
	opts fuzzy.Options,
) (*Snapshot, error) {
	rows, err := Materialize(records, flatten)
	if err != nil {
		return nil, err
	}
	index := fuzzy.Build(id, rows, device.SearchFields, opts)
	return NewSnapshot(id, records, rows, index), nil
}

// ID returns the generation id.
func (s *Snapshot) ID() uint64 { return s.id }

// Len returns the number of rows.
func (s *Snapshot) Len() int { return len(s.rows) }

// Rows returns all rows in ordinal order. Callers must not modify them.
func (s *Snapshot) Rows() []device.Row { return s.rows }

// Index returns the fuzzy index of the generation.
func (s *Snapshot) Index() *fuzzy.Index { return s.index }

// Row resolves an ordinal to its row and source record.
func (s *Snapshot) Row(ordinal int) (*device.Row, *device.RawRecord, bool) {
	if ordinal < 0 || ordinal >= len(s.rows) {
		return nil, nil, false
	}
	row := &s.rows[ordinal]
	return row, row.Record(), true
}
