// Package fuzzy implements the approximate text stage of a query: a
// per-generation index over the searchable row fields, ranked by edit
// distance to the best matching substring.
package fuzzy

import (
	"cmp"
	"slices"
	"strings"

	"github.com/kailas-cloud/devsift/internal/domain/device"
)

// DefaultThreshold is the maximum errors-per-pattern-character a field may
// have and still count as a match.
const DefaultThreshold = 0.3

// Options configures an Index.
type Options struct {
	// Threshold in [0, 1]. Zero or negative values select DefaultThreshold;
	// values above 1 are clamped.
	Threshold float64
}

func (o Options) threshold() float64 {
	switch {
	case o.Threshold <= 0:
		return DefaultThreshold
	case o.Threshold > 1:
		return 1
	default:
		return o.Threshold
	}
}

// Hit is one matching row. Lower scores are closer matches; 0 is an exact
// case-insensitive substring match.
type Hit struct {
	Ordinal int
	Score   float64
	Field   device.Field
}

type entry struct {
	ordinal int
	texts   [][]rune // lowercased, aligned with Index.fields; nil when absent
}

// Index is an immutable fuzzy index over one generation of rows.
type Index struct {
	generation uint64
	threshold  float64
	fields     []device.Field
	entries    []entry
}

// Build indexes the given fields of rows. Non-string and unknown fields are
// ignored.
func Build(generation uint64, rows []device.Row, fields []device.Field, opts Options) *Index {
	keep := make([]device.Field, 0, len(fields))
	for _, f := range fields {
		if f.IsKnown() && f.Kind() == device.KindString {
			keep = append(keep, f)
		}
	}

	ix := &Index{
		generation: generation,
		threshold:  opts.threshold(),
		fields:     keep,
		entries:    make([]entry, len(rows)),
	}
	for i := range rows {
		texts := make([][]rune, len(keep))
		for j, f := range keep {
			if s, ok := rows[i].Text(f); ok {
				texts[j] = []rune(strings.ToLower(s))
			}
		}
		ix.entries[i] = entry{ordinal: rows[i].Ordinal, texts: texts}
	}
	return ix
}

// Generation returns the generation the index was built for.
func (ix *Index) Generation() uint64 { return ix.generation }

// Len returns the number of indexed rows.
func (ix *Index) Len() int { return len(ix.entries) }

// Threshold returns the effective match threshold.
func (ix *Index) Threshold() float64 { return ix.threshold }

// Search returns the rows with at least one field within the threshold of
// text, best score first, ties by ordinal. Blank text returns nil.
func (ix *Index) Search(text string) []Hit {
	pattern := []rune(strings.ToLower(strings.TrimSpace(text)))
	if len(pattern) == 0 {
		return nil
	}
	budget := int(ix.threshold*float64(len(pattern)) + 1e-9)
	m := newMatcher(pattern)

	var hits []Hit
	for i := range ix.entries {
		e := &ix.entries[i]
		best := budget + 1
		var bestField device.Field
		for j, t := range e.texts {
			if t == nil {
				continue
			}
			if d := m.distance(t, min(best-1, budget)); d < best {
				best = d
				bestField = ix.fields[j]
				if d == 0 {
					break
				}
			}
		}
		if best > budget {
			continue
		}
		hits = append(hits, Hit{
			Ordinal: e.ordinal,
			Score:   float64(best) / float64(len(pattern)),
			Field:   bestField,
		})
	}

	slices.SortFunc(hits, func(a, b Hit) int {
		if c := cmp.Compare(a.Score, b.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.Ordinal, b.Ordinal)
	})
	return hits
}
