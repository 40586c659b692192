package csvexport

import (
	"sort"

	"github.com/arcanaland/altered-scribe/internal/card"
)

// SubtypeColumns assigns every subtype a zero-based column so that two
// subtypes found together on a card never share a column.
//
// Subtypes are placed greedily in order of decreasing frequency (ties by id),
// each taking the lowest column not already held by a subtype it co-occurs
// with.
func SubtypeColumns(cards []*card.Card) map[string]int {
	counts := make(map[string]int)
	together := make(map[string]map[string]bool)

	for _, c := range cards {
		for i, a := range c.Subtypes {
			counts[a]++
			for _, b := range c.Subtypes[i+1:] {
				if a == b {
					continue
				}
				link(together, a, b)
				link(together, b, a)
			}
		}
	}

	ordered := make([]string, 0, len(counts))
	for st := range counts {
		ordered = append(ordered, st)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if counts[ordered[i]] != counts[ordered[j]] {
			return counts[ordered[i]] > counts[ordered[j]]
		}
		return ordered[i] < ordered[j]
	})

	cols := make(map[string]int, len(ordered))
	for _, st := range ordered {
		taken := make(map[int]bool)
		for other := range together[st] {
			if col, ok := cols[other]; ok {
				taken[col] = true
			}
		}
		col := 0
		for taken[col] {
			col++
		}
		cols[st] = col
	}
	return cols
}

func link(m map[string]map[string]bool, a, b string) {
	if m[a] == nil {
		m[a] = make(map[string]bool)
	}
	m[a][b] = true
}

// columnCount returns how many subtype columns cols needs.
func columnCount(cols map[string]int) int {
	n := 0
	for _, c := range cols {
		if c+1 > n {
			n = c + 1
		}
	}
	return n
}
