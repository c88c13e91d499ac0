package services

import (
	"sort"
	"strings"
	"unicode"

	"sdg-dashboard/models"
)

// stopwords are dropped before counting, like a word-cloud renderer would.
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {}, "by": {},
	"for": {}, "from": {}, "in": {}, "is": {}, "it": {}, "of": {}, "on": {}, "or": {},
	"per": {}, "than": {}, "that": {}, "the": {}, "their": {}, "to": {}, "who": {},
	"with": {}, "within": {}, "without": {},
}

// LabelText joins every non-missing indicator label in the table with
// spaces. This is the text fed to the word-cloud renderer.
func LabelText(table *models.MergedTable) string {
	if table == nil {
		return ""
	}
	parts := make([]string, 0, len(table.Records))
	for _, r := range table.Records {
		if r.IndicatorLabel != nil {
			parts = append(parts, *r.IndicatorLabel)
		}
	}
	return strings.Join(parts, " ")
}

// WordFrequencies tokenizes text into lowercase words, drops stopwords,
// single characters and pure numbers, and returns the topN most frequent
// words (all of them when topN <= 0). Ties are broken alphabetically.
func WordFrequencies(text string, topN int) []models.WordWeight {
	counts := make(map[string]int)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		if len([]rune(w)) < 2 || isNumber(w) {
			continue
		}
		if _, skip := stopwords[w]; skip {
			continue
		}
		counts[w]++
	}

	out := make([]models.WordWeight, 0, len(counts))
	for w, c := range counts {
		out = append(out, models.WordWeight{Word: w, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Word < out[j].Word
	})
	if topN > 0 && len(out) > topN {
		out = out[:topN]
	}
	return out
}

func isNumber(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
