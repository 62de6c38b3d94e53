// Package provision defines the entities of the code-provision citation
// pipeline: provisions of a professional ethics code, candidate textual
// matches found by the pattern matcher, and validation verdicts from the
// LLM-backed validator.
package provision

import (
	"regexp"
	"strings"

	apperrors "github.com/cr625/proethica-sub007/pkg/errors"
)

// Provision is a numbered clause of a code of ethics, e.g. "II.1.e".
type Provision struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Ref is a parsed provision identifier. Letter is empty for two-part
// identifiers such as "I.4".
type Ref struct {
	Roman  string
	Number string
	Letter string
}

var refPattern = regexp.MustCompile(`^([IVXivx]+)\.(\d+)(?:\.([a-zA-Z]))?$`)

// ParseRef splits a provision identifier on periods into its roman, number,
// and optional letter components. The identifier must look like "II.1.e" or
// "I.4"; anything else is rejected so the matcher can fall back to empty
// results instead of scanning with nonsense patterns.
func ParseRef(id string) (Ref, error) {
	m := refPattern.FindStringSubmatch(strings.TrimSpace(id))
	if m == nil {
		return Ref{}, apperrors.New(apperrors.CodeProvisionInvalid, "provision id must be roman.number[.letter]").
			WithDetail("id=" + id)
	}
	return Ref{Roman: m[1], Number: m[2], Letter: strings.ToLower(m[3])}, nil
}

// String reassembles the canonical dotted form.
func (r Ref) String() string {
	if r.Letter == "" {
		return r.Roman + "." + r.Number
	}
	return r.Roman + "." + r.Number + "." + r.Letter
}

// MatchType names the pattern family that produced a candidate match.
type MatchType string

const (
	MatchExact      MatchType = "exact"
	MatchPrefix     MatchType = "prefix"
	MatchHyphenated MatchType = "hyphenated"
	MatchFlexible   MatchType = "flexible"
	MatchWritten    MatchType = "written"
)

// CandidateMatch is one pattern hit inside a section's text. Candidates are
// transient: they flow straight from the matcher into the validator and are
// not persisted.
type CandidateMatch struct {
	// Section is the kind of the section the hit occurred in.
	Section string `json:"section"`

	// Excerpt is the context window around the hit, trimmed to sentence
	// boundaries where possible.
	Excerpt string `json:"excerpt"`

	// MatchedText is the literal substring the pattern captured.
	MatchedText string `json:"matched_text"`

	MatchType MatchType `json:"match_type"`

	// Confidence is the pattern family's intrinsic prior, not a judgment
	// about this particular occurrence.
	Confidence float64 `json:"confidence"`

	// Position is the character offset of the hit within the section text.
	Position int `json:"position"`
}

// MatchQuality is the validator's verdict class for one candidate.
type MatchQuality string

const (
	QualityExact         MatchQuality = "exact"
	QualityRelated       MatchQuality = "related"
	QualityTangential    MatchQuality = "tangential"
	QualityFalsePositive MatchQuality = "false_positive"
	// QualityUnvalidated marks the conservative fallback applied when the
	// validator was unavailable or its reply could not be used.
	QualityUnvalidated MatchQuality = "unvalidated"
)

// ValidationResult is the validator's outcome for one surviving candidate.
// The pattern-stage match type and confidence are carried through for audit.
type ValidationResult struct {
	IsMatch      bool         `json:"is_match"`
	Confidence   float64      `json:"confidence"`
	MatchQuality MatchQuality `json:"match_quality"`
	Reasoning    string       `json:"reasoning"`

	PatternMatchType  MatchType `json:"pattern_match_type"`
	PatternConfidence float64   `json:"pattern_confidence"`

	Candidate *CandidateMatch `json:"candidate,omitempty"`
}
