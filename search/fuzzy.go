package search

import (
	"math"
	"regexp"
	"strings"
	"unicode/utf8"
)

var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}]+`)

type token struct {
	term       string
	start, end int
}

func tokenize(text string) []token {
	locs := tokenPattern.FindAllStringIndex(text, -1)
	tokens := make([]token, 0, len(locs))
	for _, loc := range locs {
		tokens = append(tokens, token{
			term:  strings.ToLower(text[loc[0]:loc[1]]),
			start: loc[0],
			end:   loc[1],
		})
	}
	return tokens
}

func queryTerms(text string) []string {
	seen := make(map[string]bool)
	var terms []string
	for _, t := range tokenize(text) {
		if !seen[t.term] {
			seen[t.term] = true
			terms = append(terms, t.term)
		}
	}
	return terms
}

// autoFuzziness mirrors Elasticsearch "AUTO": 0 edits up to 2 runes, 1 up to
// 5, 2 beyond.
func autoFuzziness(term string) int {
	switch n := utf8.RuneCountInString(term); {
	case n <= 2:
		return 0
	case n <= 5:
		return 1
	default:
		return 2
	}
}

// editDistance is the optimal-string-alignment distance (Damerau with
// adjacent transpositions), capped: it returns limit+1 once the bound is exceeded.
func editDistance(a, b string, limit int) int {
	ra, rb := []rune(a), []rune(b)
	if d := len(ra) - len(rb); d > limit || -d > limit {
		return limit + 1
	}

	prev2 := make([]int, len(rb)+1)
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		rowMin := cur[0]
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
			if i > 1 && j > 1 && ra[i-1] == rb[j-2] && ra[i-2] == rb[j-1] {
				cur[j] = min(cur[j], prev2[j-2]+1)
			}
			rowMin = min(rowMin, cur[j])
		}
		if rowMin > limit {
			return limit + 1
		}
		prev2, prev, cur = prev, cur, prev2
	}
	return prev[len(rb)]
}

// matchQuality scores how well a field token matches a query term:
// 1 for an exact match, decreasing with edit distance, 0 beyond AUTO fuzziness.
func matchQuality(queryTerm, fieldTerm string) float64 {
	if queryTerm == fieldTerm {
		return 1
	}
	limit := autoFuzziness(queryTerm)
	if limit == 0 {
		return 0
	}
	d := editDistance(queryTerm, fieldTerm, limit)
	if d > limit {
		return 0
	}
	return 1 - float64(d)/float64(utf8.RuneCountInString(queryTerm)+1)
}

// fieldScore sums, per query term, the best match quality weighted by a
// saturating term frequency; matched token positions are reported for
// highlighting.
func fieldScore(terms []string, tokens []token) (float64, []bool) {
	matched := make([]bool, len(tokens))
	score := 0.0
	for _, term := range terms {
		best, tf := 0.0, 0
		for i, tok := range tokens {
			q := matchQuality(term, tok.term)
			if q == 0 {
				continue
			}
			matched[i] = true
			tf++
			if q > best {
				best = q
			}
		}
		if tf > 0 {
			score += best * (1 + math.Log(float64(tf)))
		}
	}
	if len(tokens) > 0 && score > 0 {
		// shorter fields rank higher for the same matches
		score /= math.Sqrt(math.Log(float64(len(tokens)) + math.E))
	}
	return score, matched
}

const (
	fragmentContext = 8 // tokens of context on each side of a match
	maxFragments    = 5
)

// highlightFragments returns up to maxFragments snippets of text around the
// matched tokens, with matches wrapped in the highlight markers.
func highlightFragments(text string, tokens []token, matched []bool) []string {
	var fragments []string
	for i := 0; i < len(tokens) && len(fragments) < maxFragments; i++ {
		if !matched[i] {
			continue
		}
		from := max(0, i-fragmentContext)
		to := min(len(tokens)-1, i+fragmentContext)
		// extend the window while further matches fall inside it
		for j := i + 1; j < len(tokens) && j <= to; j++ {
			if matched[j] {
				to = min(len(tokens)-1, j+fragmentContext)
			}
		}

		var sb strings.Builder
		pos := tokens[from].start
		for j := from; j <= to; j++ {
			sb.WriteString(text[pos:tokens[j].start])
			if matched[j] {
				sb.WriteString(HighlightPre)
				sb.WriteString(text[tokens[j].start:tokens[j].end])
				sb.WriteString(HighlightPost)
			} else {
				sb.WriteString(text[tokens[j].start:tokens[j].end])
			}
			pos = tokens[j].end
		}
		fragments = append(fragments, sb.String())
		i = to
	}
	return fragments
}
