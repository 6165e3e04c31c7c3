package query

import (
	"strconv"
	"unicode/utf8"

	"github.com/kailas-cloud/devsift/internal/domain"
	"github.com/kailas-cloud/devsift/internal/domain/device"
	"github.com/kailas-cloud/devsift/internal/domain/search/mode"
	"github.com/kailas-cloud/devsift/internal/domain/search/order"
	"github.com/kailas-cloud/devsift/internal/domain/search/request"
	"github.com/kailas-cloud/devsift/internal/domain/search/result"
	"github.com/kailas-cloud/devsift/internal/store"
)

func (e *Engine) query(req *request.Request) (result.Result, error) {
	g := e.gen
	if g == nil {
		return result.Result{}, domain.ErrNotLoaded
	}
	if limit := e.cfg.MaxQueryLength; limit > 0 && utf8.RuneCountInString(req.Text()) > limit {
		return result.Result{}, domain.NewQueryError("q", "search text too long (max "+strconv.Itoa(limit)+" chars)")
	}

	var key uint64
	if g.cache != nil {
		key = req.Checksum()
		if res, ok := g.cache.Get(key); ok {
			e.obs.ObserveCache(true)
			return res, nil
		}
		e.obs.ObserveCache(false)
	}

	rows := candidates(g.snap, req)

	filters := req.Filters()
	if !filters.IsEmpty() {
		kept := rows[:0]
		for _, r := range rows {
			if filters.Passes(r) {
				kept = append(kept, r)
			}
		}
		rows = kept
	}

	rows = order.Sort(rows, req.SortKeys())

	res := result.New(rows, g.snap.ID())
	if g.cache != nil {
		g.cache.Add(key, res)
	}
	return res, nil
}

// candidates returns the rows entering the filter stage: fuzzy hits narrowed
// by the exact mode in relevance order, or every row in ordinal order when
// the request has no text.
func candidates(snap *store.Snapshot, req *request.Request) []*device.Row {
	if !req.HasText() {
		all := snap.Rows()
		rows := make([]*device.Row, len(all))
		for i := range all {
			rows[i] = &all[i]
		}
		return rows
	}

	text := req.Text()
	m := req.Mode()
	hits := snap.Index().Search(text)
	rows := make([]*device.Row, 0, len(hits))
	for _, h := range hits {
		row, _, ok := snap.Row(h.Ordinal)
		if !ok {
			continue
		}
		if matchesMode(row, m, text) {
			rows = append(rows, row)
		}
	}
	return rows
}

// matchesMode reports whether any searchable field satisfies m against text.
func matchesMode(row *device.Row, m mode.Mode, text string) bool {
	for _, f := range device.SearchFields {
		if v, ok := row.Text(f); ok && m.Match(v, text) {
			return true
		}
	}
	return false
}
