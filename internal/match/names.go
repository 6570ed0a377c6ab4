package match

import (
	"sort"
	"strings"
	"unicode"
)

// MinSuggestionScore is the similarity below which Suggest drops a candidate.
const MinSuggestionScore = 0.5

// NormalizeIdent lowercases s and strips separators, so that "OrderID",
// "orderId", "order_id" and "Order.ID" all normalize to "orderid".
func NormalizeIdent(s string) string {
	var b strings.Builder

	b.Grow(len(s))

	for _, r := range s {
		if isSeparator(r) {
			continue
		}

		b.WriteRune(unicode.ToLower(r))
	}

	return b.String()
}

// SameIdent reports whether a and b name the same thing: either exactly, or
// after normalization.
func SameIdent(a, b string) bool {
	if a == b {
		return true
	}

	return a != "" && NormalizeIdent(a) == NormalizeIdent(b)
}

// Suggest returns up to limit candidates most similar to name, best first.
// Candidates scoring below MinSuggestionScore are dropped.
func Suggest(name string, candidates []string, limit int) []string {
	type scored struct {
		name  string
		score float64
	}

	var ranked []scored

	for _, c := range candidates {
		score := Similarity(name, c)
		if score >= MinSuggestionScore {
			ranked = append(ranked, scored{name: c, score: score})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}

	out := make([]string, len(ranked))
	for i, r := range ranked {
		out[i] = r.name
	}

	return out
}

// Similarity scores two identifiers between 0 and 1 after normalization.
func Similarity(a, b string) float64 {
	na, nb := NormalizeIdent(a), NormalizeIdent(b)
	if na == "" && nb == "" {
		return 1.0
	}

	return 1.0 - float64(Levenshtein(na, nb))/float64(max(len(na), len(nb)))
}

// Levenshtein computes the edit distance between a and b using two rolling rows.
func Levenshtein(a, b string) int {
	if len(a) > len(b) {
		a, b = b, a
	}

	prev := make([]int, len(a)+1)
	curr := make([]int, len(a)+1)

	for i := range prev {
		prev[i] = i
	}

	for j := 1; j <= len(b); j++ {
		curr[0] = j

		for i := 1; i <= len(a); i++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}

			curr[i] = min(prev[i]+1, curr[i-1]+1, prev[i-1]+cost)
		}

		prev, curr = curr, prev
	}

	return prev[len(a)]
}

func isSeparator(r rune) bool {
	return r == '_' || r == '-' || r == ' ' || r == '.'
}
