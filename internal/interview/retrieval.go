package interview

import (
	"sort"
	"strings"
	"unicode"
)

// stopwords excluded from relevance scoring.
var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "that": {}, "this": {},
	"you": {}, "are": {}, "will": {}, "have": {}, "our": {}, "your": {},
	"from": {}, "who": {}, "what": {}, "work": {}, "role": {}, "job": {},
}

// SplitSections breaks the resume into sections on blank lines.
func SplitSections(resume string) []string {
	var sections []string
	for _, block := range strings.Split(resume, "\n\n") {
		block = strings.TrimSpace(block)
		if block != "" {
			sections = append(sections, block)
		}
	}
	return sections
}

// TopSections returns the n resume sections most relevant to the query,
// ranked by distinct-token overlap. Ties keep the resume's original order.
// Sections with no overlap at all are omitted.
func TopSections(sections []string, query string, n int) []string {
	queryTokens := tokenize(query)
	if len(queryTokens) == 0 || n <= 0 {
		return nil
	}

	type scored struct {
		index int
		score int
	}
	var ranked []scored
	for i, section := range sections {
		score := 0
		sectionTokens := tokenize(section)
		for tok := range queryTokens {
			if _, ok := sectionTokens[tok]; ok {
				score++
			}
		}
		if score > 0 {
			ranked = append(ranked, scored{index: i, score: score})
		}
	}

	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].score > ranked[b].score
	})

	if len(ranked) > n {
		ranked = ranked[:n]
	}

	result := make([]string, 0, len(ranked))
	for _, r := range ranked {
		result = append(result, sections[r.index])
	}
	return result
}

// tokenize lowercases text and returns its distinct alphanumeric tokens of
// three or more characters, minus stopwords.
func tokenize(text string) map[string]struct{} {
	tokens := make(map[string]struct{})
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, f := range fields {
		if len(f) < 3 {
			continue
		}
		if _, ok := stopwords[f]; ok {
			continue
		}
		tokens[f] = struct{}{}
	}
	return tokens
}
