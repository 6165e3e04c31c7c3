package fuzzy

// matcher computes the edit distance between a pattern and its closest
// substring of a text (Sellers' algorithm). The match may start anywhere in
// the text, so only the edits inside the matched window count.
type matcher struct {
	pattern []rune
	col     []int
}

func newMatcher(pattern []rune) *matcher {
	return &matcher{pattern: pattern, col: make([]int, len(pattern)+1)}
}

// distance returns the smallest edit distance between the pattern and any
// substring of text, or limit+1 once it is known to exceed limit.
func (m *matcher) distance(text []rune, limit int) int {
	p := m.pattern
	col := m.col
	for i := range col {
		col[i] = i
	}
	best := col[len(p)]
	if best == 0 {
		return 0
	}

	for _, c := range text {
		diag := col[0] // col[0] stays 0: free start position
		for i := 1; i <= len(p); i++ {
			cost := 1
			if p[i-1] == c {
				cost = 0
			}
			next := min(col[i]+1, col[i-1]+1, diag+cost)
			diag = col[i]
			col[i] = next
		}
		if col[len(p)] < best {
			best = col[len(p)]
			if best == 0 {
				return 0
			}
		}
	}
	if best > limit {
		return limit + 1
	}
	return best
}
