package relevance

// PreliminaryWeights blends the three cheap signals into the score that
// decides whether a pair is worth an LLM call.
type PreliminaryWeights struct {
	Vector     float64 `mapstructure:"vector"`
	Term       float64 `mapstructure:"term"`
	Structural float64 `mapstructure:"structural"`
}

// DefaultPreliminaryWeights returns the production blend: vector similarity
// dominates, lexical overlap refines, the structural prior nudges.
func DefaultPreliminaryWeights() PreliminaryWeights {
	return PreliminaryWeights{Vector: 0.60, Term: 0.25, Structural: 0.15}
}

// Preliminary computes the pre-judge combined score. Inputs are assumed to be
// in [0,1]; the weights sum to 1 so no clamp is needed here.
func (w PreliminaryWeights) Preliminary(vectorSim, termOverlap, structural float64) float64 {
	return w.Vector*vectorSim + w.Term*termOverlap + w.Structural*structural
}

// DefaultEscalationThreshold is the preliminary score a pair must exceed to
// be escalated to the semantic judge. The judge call is the expensive step;
// this bound keeps the number of LLM calls proportional to promising pairs
// rather than the full cross product.
const DefaultEscalationThreshold = 0.3
