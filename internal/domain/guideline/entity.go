// Package guideline holds the ontology-sourced entities the relevance engine
// scores sections against. Statements are read-only input; they originate in
// the ethics ontology store.
package guideline

import "strings"

// StatementKind tags the ontology entity class of a statement's object.
type StatementKind string

const (
	KindGuideline  StatementKind = "guideline"
	KindAction     StatementKind = "action"
	KindCondition  StatementKind = "condition"
	KindPrinciple  StatementKind = "principle"
	KindObligation StatementKind = "obligation"
	KindCapability StatementKind = "capability"
)

// Normalized returns the lowercase form used as the statement axis of the
// structural relevance table.
func (k StatementKind) Normalized() string {
	return strings.ToLower(string(k))
}

// Statement is a subject/predicate/object assertion drawn from the ontology,
// representing a named guideline concept.
type Statement struct {
	// URI identifies the concept in the ontology.
	URI string `json:"uri"`

	Subject   string `json:"subject"`
	Predicate string `json:"predicate"`
	Object    string `json:"object"`

	// Label is the concept's display name, e.g. "Public Safety Guideline".
	Label string `json:"label"`

	// Description is the optional prose definition of the concept. When
	// present it is the text scored against section text.
	Description string `json:"description,omitempty"`

	Kind StatementKind `json:"kind"`
}

// ScoringText returns the text used for lexical and semantic comparison:
// the description when present, otherwise the label.
func (s *Statement) ScoringText() string {
	if s.Description != "" {
		return s.Description
	}
	return s.Label
}
