// Package citation implements the two-stage code-provision citation pipeline:
// regex-based candidate generation over case text, then LLM-backed semantic
// validation that weeds out false positives such as a matching pattern under
// the wrong provision heading.
package citation

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/cr625/proethica-sub007/internal/domain/provision"
	"github.com/cr625/proethica-sub007/internal/infrastructure/monitoring/logging"
)

// Pattern-family confidence priors. These rank how unambiguous each notation
// is, not how likely any given hit is genuine; the validator owns that call.
const (
	confidenceExact      = 0.95
	confidencePrefix     = 0.85
	confidenceHyphenated = 0.80
	confidenceFlexible   = 0.75
	confidenceWritten    = 0.70
)

// dedupeWindow is the character distance within which two candidate matches
// are considered the same underlying citation.
const dedupeWindow = 50

// contextWindow is how many characters of surrounding text each side of a hit
// contributes to the excerpt.
const contextWindow = 200

// prefixWords are the citation lead-ins recognised by the prefix family.
var prefixWords = []string{
	"Section", "section", "SECTION",
	"Provision", "provision",
	"Code", "code",
	"Paragraph", "paragraph",
	"NSPE Code", "Code of Ethics", "Ethics Code",
}

// PatternMatcher scans case sections for textual mentions of a provision.
type PatternMatcher struct {
	logger logging.Logger
}

// NewPatternMatcher builds a matcher.
func NewPatternMatcher(log logging.Logger) *PatternMatcher {
	return &PatternMatcher{logger: log.Named("citation.matcher")}
}

type patternSpec struct {
	re         *regexp.Regexp
	matchType  provision.MatchType
	confidence float64
}

// buildPatterns generates the pattern families for one provision reference.
func buildPatterns(ref provision.Ref) []patternSpec {
	roman := regexp.QuoteMeta(ref.Roman)
	number := regexp.QuoteMeta(ref.Number)
	letter := regexp.QuoteMeta(ref.Letter)

	var specs []patternSpec

	dotted := roman + `\.` + number
	if letter != "" {
		dotted += `\.` + letter
	}

	// Exact: the literal dotted identifier, optionally followed by a period.
	specs = append(specs, patternSpec{
		re:         regexp.MustCompile(`(?i)\b` + dotted + `\.?(?:\b|$)`),
		matchType:  provision.MatchExact,
		confidence: confidenceExact,
	})

	// Prefix: the identifier preceded by a citation lead-in word.
	quoted := make([]string, len(prefixWords))
	for i, w := range prefixWords {
		quoted[i] = regexp.QuoteMeta(w)
	}
	specs = append(specs, patternSpec{
		re:         regexp.MustCompile(`(?i)(?:` + strings.Join(quoted, "|") + `)\s+` + dotted + `\.?`),
		matchType:  provision.MatchPrefix,
		confidence: confidencePrefix,
	})

	// Hyphenated: II-1-e and II-1e forms.
	if letter != "" {
		specs = append(specs, patternSpec{
			re:         regexp.MustCompile(`(?i)\b` + roman + `-` + number + `-?` + letter + `\b`),
			matchType:  provision.MatchHyphenated,
			confidence: confidenceHyphenated,
		})
	} else {
		specs = append(specs, patternSpec{
			re:         regexp.MustCompile(`(?i)\b` + roman + `-` + number + `\b`),
			matchType:  provision.MatchHyphenated,
			confidence: confidenceHyphenated,
		})
	}

	// Flexible: components separated by optional whitespace around the
	// literal periods, tolerating "II . 1 . e".
	flexible := roman + `\s*\.\s*` + number
	if letter != "" {
		flexible += `\s*\.\s*` + letter
	}
	specs = append(specs, patternSpec{
		re:         regexp.MustCompile(`(?i)\b` + flexible + `\b`),
		matchType:  provision.MatchFlexible,
		confidence: confidenceFlexible,
	})

	// Written: long-form phrasing plus a bare space-separated fallback.
	if letter != "" {
		specs = append(specs, patternSpec{
			re: regexp.MustCompile(`(?i)section\s+` + roman + `\s*,?\s*paragraph\s+` + number +
				`\s*,?\s*(?:sub-?paragraph\s+)?` + letter + `\b`),
			matchType:  provision.MatchWritten,
			confidence: confidenceWritten,
		})
		specs = append(specs, patternSpec{
			re:         regexp.MustCompile(`(?i)\b` + roman + `\s+` + number + `\s+` + letter + `\b`),
			matchType:  provision.MatchWritten,
			confidence: confidenceWritten,
		})
	} else {
		specs = append(specs, patternSpec{
			re:         regexp.MustCompile(`(?i)section\s+` + roman + `\s*,?\s*paragraph\s+` + number + `\b`),
			matchType:  provision.MatchWritten,
			confidence: confidenceWritten,
		})
		specs = append(specs, patternSpec{
			re:         regexp.MustCompile(`(?i)\b` + roman + `\s+` + number + `\b`),
			matchType:  provision.MatchWritten,
			confidence: confidenceWritten,
		})
	}

	return specs
}

// FindAllMentions scans every section's text with every pattern family for
// the provision and returns the per-section deduplicated candidates, sorted
// by section then position. An unparseable provision id yields an empty
// result, never an error: the scoring pipeline tolerates sparse input.
func (m *PatternMatcher) FindAllMentions(caseSections map[string]string, provisionID, provisionText string) []*provision.CandidateMatch {
	ref, err := provision.ParseRef(provisionID)
	if err != nil {
		m.logger.Warn("unparseable provision id, skipping citation scan",
			logging.String("provision_id", provisionID),
			logging.Err(err),
		)
		return nil
	}
	_ = provisionText // carried by the caller into validation; not needed for matching

	specs := buildPatterns(ref)

	// Deterministic section order keeps the output stable across runs.
	kinds := make([]string, 0, len(caseSections))
	for kind := range caseSections {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)

	var out []*provision.CandidateMatch
	for _, kind := range kinds {
		text := caseSections[kind]
		if strings.TrimSpace(text) == "" {
			continue
		}

		var candidates []*provision.CandidateMatch
		for _, spec := range specs {
			for _, loc := range spec.re.FindAllStringIndex(text, -1) {
				candidates = append(candidates, &provision.CandidateMatch{
					Section:     kind,
					Excerpt:     excerpt(text, loc[0], loc[1]),
					MatchedText: text[loc[0]:loc[1]],
					MatchType:   spec.matchType,
					Confidence:  spec.confidence,
					Position:    loc[0],
				})
			}
		}
		out = append(out, dedupe(candidates)...)
	}

	m.logger.Debug("citation scan complete",
		logging.String("provision_id", ref.String()),
		logging.Int("candidates", len(out)),
	)
	return out
}

// dedupe keeps at most one candidate per citation site within a section.
// Candidates are sorted by position, then greedily merged: two candidates
// whose positions fall within dedupeWindow characters are the same citation
// seen by different pattern families, and the higher-confidence one wins.
func dedupe(candidates []*provision.CandidateMatch) []*provision.CandidateMatch {
	if len(candidates) == 0 {
		return nil
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Position != candidates[j].Position {
			return candidates[i].Position < candidates[j].Position
		}
		return candidates[i].Confidence > candidates[j].Confidence
	})

	kept := []*provision.CandidateMatch{candidates[0]}
	for _, c := range candidates[1:] {
		last := kept[len(kept)-1]
		if c.Position-last.Position < dedupeWindow {
			if c.Confidence > last.Confidence {
				kept[len(kept)-1] = c
			}
			continue
		}
		kept = append(kept, c)
	}
	return kept
}

// excerpt returns the context window around [start,end), with each side
// trimmed to the nearest sentence boundary when one exists inside the window.
func excerpt(text string, start, end int) string {
	lo := start - contextWindow
	if lo < 0 {
		lo = 0
	}
	hi := end + contextWindow
	if hi > len(text) {
		hi = len(text)
	}

	left := text[lo:start]
	if i := strings.LastIndexAny(left, ".!?\n"); i >= 0 && i+1 < len(left) {
		left = left[i+1:]
	}
	right := text[end:hi]
	if i := strings.IndexAny(right, ".!?\n"); i >= 0 {
		right = right[:i+1]
	}

	return strings.TrimSpace(fmt.Sprintf("%s%s%s", left, text[start:end], right))
}
