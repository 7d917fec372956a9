package lookup

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"lexcase-backend/extract"
)

const minKeywordRunes = 4

// ExtractKeywords returns up to n of the most frequent words in text that are
// longer than three letters and not Polish stopwords. Equal counts keep the
// order of first occurrence.
func ExtractKeywords(text string, n int) []string {
	if n <= 0 {
		return []string{}
	}

	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})

	counts := make(map[string]int)
	var order []string
	for _, w := range words {
		if utf8.RuneCountInString(w) < minKeywordRunes || extract.IsStopword(w) {
			continue
		}
		if counts[w] == 0 {
			order = append(order, w)
		}
		counts[w]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > n {
		order = order[:n]
	}
	if order == nil {
		return []string{}
	}
	return order
}
