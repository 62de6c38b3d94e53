package relevance

import (
	"github.com/cr625/proethica-sub007/internal/domain/document"
	"github.com/cr625/proethica-sub007/internal/domain/guideline"
)

// defaultStructural is the prior applied when either axis is absent from the
// table.
const defaultStructural = 0.5

// structuralTable encodes the prior belief about which ontology entity kinds
// matter to which section kinds: guideline concepts are most salient to
// conclusions, factual conditions to the facts section, actions to the
// discussion of what the engineer did.
var structuralTable = map[string]map[string]float64{
	"facts": {
		"condition":  0.9,
		"action":     0.7,
		"capability": 0.6,
		"guideline":  0.5,
		"principle":  0.5,
		"obligation": 0.6,
	},
	"discussion": {
		"action":     0.8,
		"principle":  0.8,
		"guideline":  0.8,
		"obligation": 0.7,
		"condition":  0.6,
		"capability": 0.6,
	},
	"conclusion": {
		"guideline":  0.9,
		"principle":  0.9,
		"obligation": 0.8,
		"action":     0.7,
		"condition":  0.5,
		"capability": 0.5,
	},
	"question": {
		"condition":  0.8,
		"obligation": 0.8,
		"guideline":  0.7,
		"principle":  0.7,
		"action":     0.6,
		"capability": 0.5,
	},
	"references": {
		"guideline": 0.6,
		"principle": 0.6,
	},
}

// StructuralRelevance looks up the prior for a (section kind, statement kind)
// pair. Both axes are normalized first; missing combinations default to 0.5.
func StructuralRelevance(sectionKind document.SectionKind, statementKind guideline.StatementKind) float64 {
	row, ok := structuralTable[sectionKind.Normalized()]
	if !ok {
		return defaultStructural
	}
	prior, ok := row[statementKind.Normalized()]
	if !ok {
		return defaultStructural
	}
	return prior
}
