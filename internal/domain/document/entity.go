// Package document holds the case-document entities the relevance engine
// reads. Documents and their sections are produced by the ingestion pipeline
// and are read-only here; the engine only appends relevance assessments to a
// section's metadata.
package document

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// SectionKind classifies a section of a case document. Ingestion may emit
// suffixed variants such as "facts_2" or "question_restatement"; Normalized
// collapses those onto the base kind.
type SectionKind string

const (
	KindFacts      SectionKind = "facts"
	KindDiscussion SectionKind = "discussion"
	KindConclusion SectionKind = "conclusion"
	KindQuestion   SectionKind = "question"
	KindReferences SectionKind = "references"
	KindDissent    SectionKind = "dissent"
)

// Normalized returns the lowercase prefix before the first underscore, which
// is the key the structural relevance table is indexed by.
func (k SectionKind) Normalized() string {
	s := strings.ToLower(string(k))
	if i := strings.Index(s, "_"); i >= 0 {
		return s[:i]
	}
	return s
}

// Section is one titled unit of a document's text. Immutable once generated;
// the engine never rewrites Text or Embedding, only attaches assessments.
type Section struct {
	ID         uuid.UUID   `json:"id"`
	DocumentID uuid.UUID   `json:"document_id"`
	Kind       SectionKind `json:"kind"`
	Title      string      `json:"title"`
	Text       string      `json:"text"`
	// Embedding is the section's sentence embedding, nil when the embedding
	// pipeline has not processed the section yet.
	Embedding []float32 `json:"-"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}

// Document is a case study with its ordered sections.
type Document struct {
	ID        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	Source    string     `json:"source,omitempty"`
	CaseYear  int        `json:"case_year,omitempty"`
	Sections  []*Section `json:"sections,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
