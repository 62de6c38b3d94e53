package relevance

import (
	"fmt"

	domain "github.com/cr625/proethica-sub007/internal/domain/relevance"
)

// FinalWeights blends the four signals into the final score. The judge's
// verdict carries the same weight as vector similarity; the cheap signals are
// discounted relative to the preliminary blend because the judge now covers
// part of their evidence.
type FinalWeights struct {
	Vector     float64 `mapstructure:"vector"`
	Term       float64 `mapstructure:"term"`
	Structural float64 `mapstructure:"structural"`
	Judge      float64 `mapstructure:"judge"`
}

// DefaultFinalWeights returns the production blend.
func DefaultFinalWeights() FinalWeights {
	return FinalWeights{Vector: 0.35, Term: 0.20, Structural: 0.10, Judge: 0.35}
}

// Agreement adjustment bounds. Strong agreement between the numeric metrics
// and the judge earns a bonus; strong disagreement means at least one signal
// is wrong, so confidence drops.
const (
	agreementBonusThreshold   = 0.75
	agreementPenaltyThreshold = 0.25
	agreementBonusFactor      = 1.15
	agreementPenaltyFactor    = 0.85
)

// Agreement measures how closely the judge's verdict tracks the preliminary
// combined score: 1 - |judgeScore - preliminary|. A degraded judgment yields
// the neutral 0.5 regardless of the preliminary value.
func Agreement(judgment *domain.Judgment, preliminary float64) float64 {
	if judgment == nil || judgment.Degraded {
		return 0.5
	}
	diff := judgment.Score() - preliminary
	if diff < 0 {
		diff = -diff
	}
	return 1.0 - diff
}

// Finalize computes the agreement-adjusted final score, its relationship
// label, and the human-readable calculation breakdown. The returned score is
// clamped to [0,1]; the ×1.15 bonus must never push it past 1.
func (w FinalWeights) Finalize(vectorSim, termOverlap, structural float64, judgment *domain.Judgment, preliminary float64) (score float64, rel domain.Relationship, agreement float64, calculation string) {
	judgeScore := judgment.Score()
	agreement = Agreement(judgment, preliminary)

	base := w.Vector*vectorSim + w.Term*termOverlap + w.Structural*structural + w.Judge*judgeScore

	factor := 1.0
	bucket := "neutral"
	switch {
	case agreement > agreementBonusThreshold:
		factor = agreementBonusFactor
		bucket = "bonus"
	case agreement < agreementPenaltyThreshold:
		factor = agreementPenaltyFactor
		bucket = "penalty"
	}

	score = base * factor
	if score > 1.0 {
		score = 1.0
	}
	if score < 0.0 {
		score = 0.0
	}

	calculation = fmt.Sprintf(
		"final = %.2f*vector(%.3f) + %.2f*terms(%.3f) + %.2f*structural(%.3f) + %.2f*judge(%.1f) = %.3f; "+
			"agreement=%.3f vs preliminary=%.3f -> %s (x%.2f); clamped final=%.3f",
		w.Vector, vectorSim, w.Term, termOverlap, w.Structural, structural, w.Judge, judgeScore, base,
		agreement, preliminary, bucket, factor, score,
	)

	return score, domain.RelationshipFor(score), agreement, calculation
}
