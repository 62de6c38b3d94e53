package relevance

import (
	"sort"
	"strings"
	"unicode"
)

// stopwords is the filter applied before computing lexical overlap. The list
// covers common English function words; domain terms like "engineer" or
// "safety" always survive.
var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "are": {}, "but": {}, "not": {},
	"you": {}, "all": {}, "any": {}, "can": {}, "had": {}, "her": {},
	"was": {}, "one": {}, "our": {}, "out": {}, "has": {}, "his": {},
	"him": {}, "she": {}, "they": {}, "them": {}, "their": {}, "this": {},
	"that": {}, "these": {}, "those": {}, "with": {}, "from": {}, "have": {},
	"been": {}, "were": {}, "will": {}, "would": {}, "could": {}, "should": {},
	"shall": {}, "may": {}, "might": {}, "must": {}, "into": {}, "onto": {},
	"upon": {}, "about": {}, "above": {}, "below": {}, "under": {}, "over": {},
	"between": {}, "through": {}, "during": {}, "before": {}, "after": {},
	"while": {}, "where": {}, "when": {}, "what": {}, "which": {}, "who": {},
	"whom": {}, "whose": {}, "why": {}, "how": {}, "than": {}, "then": {},
	"there": {}, "here": {}, "such": {}, "some": {}, "more": {}, "most": {},
	"other": {}, "also": {}, "each": {}, "both": {}, "because": {}, "does": {},
	"did": {}, "doing": {}, "being": {}, "its": {}, "itself": {}, "only": {},
	"very": {}, "same": {}, "too": {}, "against": {}, "further": {},
}

// tokenize lowercases text, splits on non-alphanumeric runes, and drops
// stopwords and tokens of length 2 or less.
func tokenize(text string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, word := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if len(word) <= 2 {
			continue
		}
		if _, stop := stopwords[word]; stop {
			continue
		}
		tokens[word] = struct{}{}
	}
	return tokens
}

// TermOverlap computes the Jaccard similarity between the stopword-filtered
// token sets of the two texts, along with the sorted shared terms. An empty
// union scores 0.0, never NaN.
func TermOverlap(sectionText, statementText string) (float64, []string) {
	a := tokenize(sectionText)
	b := tokenize(statementText)

	if len(a) == 0 && len(b) == 0 {
		return 0.0, nil
	}

	shared := make([]string, 0, len(a))
	for tok := range a {
		if _, ok := b[tok]; ok {
			shared = append(shared, tok)
		}
	}
	sort.Strings(shared)

	union := len(a) + len(b) - len(shared)
	if union == 0 {
		return 0.0, nil
	}
	return float64(len(shared)) / float64(union), shared
}
