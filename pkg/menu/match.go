package menu

import (
	"sort"
	"strings"

	"github.com/junegunn/fzf/src/algo"
	"github.com/junegunn/fzf/src/util"
)

// FuzzyMatchV2 reads fzf's character class and bonus tables, which stay
// zeroed until a scoring scheme is loaded.
func init() {
	algo.Init("default")
}

// Rank returns the indices of labels that fuzzy-match query, best first.
// Ties keep label order. An empty query matches everything in order.
func Rank(query string, labels []string) []int {
	query = strings.TrimSpace(query)
	if query == "" {
		all := make([]int, len(labels))
		for i := range labels {
			all[i] = i
		}
		return all
	}

	caseSensitive := query != strings.ToLower(query)
	pattern := []rune(query)
	slab := util.MakeSlab(100*1024, 2048)

	type scored struct {
		index int
		score int
	}
	var hits []scored
	for i, label := range labels {
		chars := util.ToChars([]byte(label))
		res, _ := algo.FuzzyMatchV2(caseSensitive, false, true, &chars, pattern, false, slab)
		if res.Start < 0 {
			continue
		}
		hits = append(hits, scored{index: i, score: int(res.Score)})
	}
	sort.SliceStable(hits, func(a, b int) bool { return hits[a].score > hits[b].score })

	out := make([]int, len(hits))
	for i, h := range hits {
		out[i] = h.index
	}
	return out
}

// BestMatch maps text returned by a menu back to one of labels: an exact
// match wins, otherwise the best fuzzy match.
func BestMatch(text string, labels []string) (int, bool) {
	for i, l := range labels {
		if l == text {
			return i, true
		}
	}
	trimmed := strings.TrimSpace(text)
	for i, l := range labels {
		if strings.TrimSpace(l) == trimmed {
			return i, true
		}
	}
	ranked := Rank(text, labels)
	if len(ranked) == 0 {
		return 0, false
	}
	return ranked[0], true
}
