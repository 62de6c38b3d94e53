// Package relevance defines the assessment entities produced by the
// guideline-to-section relevance engine.
package relevance

import (
	"time"

	"github.com/google/uuid"
)

// Relationship is the qualitative label derived from the final score.
type Relationship string

const (
	RelatedTo          Relationship = "related_to"
	StronglyRelatedTo  Relationship = "strongly_related_to"
	DirectlyImplements Relationship = "directly_implements"
)

// RelationshipFor maps a final score onto its label. The 0.95 branch is
// checked before the 0.8 branch so that directly_implements is reachable;
// 0.8 < score <= 0.95 yields strongly_related_to.
func RelationshipFor(finalScore float64) Relationship {
	switch {
	case finalScore > 0.95:
		return DirectlyImplements
	case finalScore > 0.8:
		return StronglyRelatedTo
	default:
		return RelatedTo
	}
}

// Judgment is the semantic judge's qualitative opinion on one
// (section, statement) pair.
type Judgment struct {
	// IsRelevant is the judge's boolean relevance verdict. When Degraded is
	// set the verdict defaults to false and must not be read as a real
	// opinion.
	IsRelevant bool `json:"is_relevant"`

	// Reasoning is the judge's free-text explanation. In degraded mode it
	// describes why the judge was unavailable instead.
	Reasoning string `json:"reasoning"`

	// Patterns names the ethical patterns the judge recognised in the pair.
	Patterns []string `json:"patterns,omitempty"`

	// Degraded marks a judgment synthesised after a judge failure
	// (unavailable client, timeout, malformed reply). Degraded judgments
	// contribute a neutral 0.5 agreement score.
	Degraded bool `json:"degraded,omitempty"`
}

// Score returns the judge verdict as a numeric signal: 1.0 for relevant,
// 0.0 otherwise.
func (j *Judgment) Score() float64 {
	if j != nil && j.IsRelevant {
		return 1.0
	}
	return 0.0
}

// Assessment is the engine's scored verdict on how strongly one section
// relates to one guideline statement. Assessments are immutable: a re-run
// produces fresh rows that replace the section's previous set.
type Assessment struct {
	ID           uuid.UUID `json:"id"`
	SectionID    uuid.UUID `json:"section_id"`
	StatementURI string    `json:"statement_uri"`

	// Numeric signals, each in [0,1].
	VectorSimilarity    float64  `json:"vector_similarity"`
	TermOverlap         float64  `json:"term_overlap"`
	SharedTerms         []string `json:"shared_terms,omitempty"`
	StructuralRelevance float64  `json:"structural_relevance"`

	// PreliminaryScore is the pre-judge weighted combination; it is the
	// value compared against the escalation threshold and the value the
	// agreement score is measured against.
	PreliminaryScore float64 `json:"preliminary_score"`

	Judgment       *Judgment `json:"judgment,omitempty"`
	AgreementScore float64   `json:"agreement_score"`

	// FinalScore is the agreement-adjusted weighted blend, clamped to [0,1].
	FinalScore   float64      `json:"final_score"`
	Relationship Relationship `json:"relationship"`

	// Calculation is the human-readable breakdown of every weighted term and
	// the agreement bucket applied. Required output, not cosmetic: it is the
	// only way to audit a score after the fact.
	Calculation string `json:"calculation"`

	CreatedAt time.Time `json:"created_at"`
}
