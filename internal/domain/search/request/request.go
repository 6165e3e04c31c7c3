package request

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"

	"github.com/kailas-cloud/devsift/internal/domain"
	"github.com/kailas-cloud/devsift/internal/domain/search/filter"
	"github.com/kailas-cloud/devsift/internal/domain/search/mode"
	"github.com/kailas-cloud/devsift/internal/domain/search/order"
)

// MaxQueryLength is the maximum allowed search text length in characters.
const MaxQueryLength = 4096

// Request is a validated query. The zero value matches every row.
type Request struct {
	text    string
	mode    mode.Mode
	filters filter.Expression
	keys    []order.Key
}

// New validates and normalizes query parameters.
// The text is trimmed; an empty mode defaults to contains.
func New(text string, m mode.Mode, filters filter.Expression, keys []order.Key) (Request, error) {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) > MaxQueryLength {
		return Request{}, domain.NewQueryError("q", "search text too long (max "+strconv.Itoa(MaxQueryLength)+" chars)")
	}
	if m == "" {
		m = mode.Contains
	}
	if !m.IsValid() {
		return Request{}, domain.NewQueryError("mode", "unknown match mode "+strconv.Quote(string(m)))
	}
	return Request{text: text, mode: m, filters: filters, keys: keys}, nil
}

// Text returns the trimmed search text. Empty means no text stage.
func (r *Request) Text() string { return r.text }

// HasText reports whether the query carries search text.
func (r *Request) HasText() bool { return r.text != "" }

// Mode returns the exact-match narrowing mode.
func (r *Request) Mode() mode.Mode {
	if r.mode == "" {
		return mode.Contains
	}
	return r.mode
}

// Filters returns the facet and range filters.
func (r *Request) Filters() filter.Expression { return r.filters }

// SortKeys returns the ordered sort keys.
func (r *Request) SortKeys() []order.Key { return r.keys }

// Checksum returns a 64-bit digest of the canonical form of the request.
// Requests differing only in filter order share a checksum.
func (r *Request) Checksum() uint64 {
	d := xxhash.New()
	w := func(parts ...string) {
		for _, p := range parts {
			_, _ = d.WriteString(p)
			_, _ = d.WriteString("\x00")
		}
	}

	w("q", r.text, "m", string(r.Mode()))

	facets := slices.Clone(r.filters.Facets())
	slices.SortFunc(facets, func(a, b filter.Facet) int { return cmp.Compare(a.Field(), b.Field()) })
	for _, f := range facets {
		if f.IsNoop() {
			continue
		}
		vals := make([]string, 0, len(f.Values()))
		for _, v := range f.Values() {
			vals = append(vals, v.String())
		}
		slices.Sort(vals)
		vals = slices.Compact(vals)
		w("f", string(f.Field()), strconv.Itoa(len(vals)))
		w(vals...)
	}

	ranges := slices.Clone(r.filters.Ranges())
	slices.SortFunc(ranges, func(a, b filter.Range) int { return cmp.Compare(a.Field(), b.Field()) })
	for _, rg := range ranges {
		if rg.IsNoop() {
			continue
		}
		w("r", string(rg.Field()), bound(rg.Min()), bound(rg.Max()))
	}

	for _, k := range r.keys {
		dir := "asc"
		if k.Desc() {
			dir = "desc"
		}
		w("s", string(k.Field()), dir)
	}
	return d.Sum64()
}

func bound(p *float64) string {
	if p == nil {
		return "-"
	}
	return strconv.FormatFloat(*p, 'g', -1, 64)
}
