package citation

import (
	"context"
	"fmt"
	"strings"

	"github.com/cr625/proethica-sub007/internal/domain/provision"
	"github.com/cr625/proethica-sub007/internal/infrastructure/monitoring/logging"
	"github.com/cr625/proethica-sub007/internal/intelligence/llm"
)

// defaultBatchSize bounds how many candidates share one validation prompt,
// keeping the prompt inside the model's context window.
const defaultBatchSize = 10

// fallbackDiscount is applied to the pattern confidence when a candidate
// cannot be validated. The candidate survives — discarding it silently would
// hide real citations behind transient model failures — but its confidence
// drops and its quality is marked unvalidated so strict callers can filter.
const fallbackDiscount = 0.8

// DefaultConfidenceThreshold is the caller-facing filter bound: results at or
// below it are dropped by FilterValidated.
const DefaultConfidenceThreshold = 0.5

// ValidatorMetrics is the instrumentation port for the validator.
type ValidatorMetrics interface {
	ValidationBatch(size int, fallbacks int)
}

// Validator judges candidate citation matches against the provision they
// claim to cite. Its central job is catching the false positive the pattern
// stage cannot: a textually perfect hit that sits under a different provision
// number.
type Validator struct {
	completer llm.Completer
	batchSize int
	metrics   ValidatorMetrics
	logger    logging.Logger
}

// ValidatorOption tunes a Validator.
type ValidatorOption func(*Validator)

// WithBatchSize overrides the per-prompt candidate count.
func WithBatchSize(n int) ValidatorOption {
	return func(v *Validator) {
		if n > 0 {
			v.batchSize = n
		}
	}
}

// WithValidatorMetrics attaches instrumentation.
func WithValidatorMetrics(m ValidatorMetrics) ValidatorOption {
	return func(v *Validator) { v.metrics = m }
}

// NewValidator builds a validator. completer may be nil, in which case every
// candidate falls back to unvalidated.
func NewValidator(completer llm.Completer, log logging.Logger, opts ...ValidatorOption) *Validator {
	v := &Validator{
		completer: completer,
		batchSize: defaultBatchSize,
		logger:    log.Named("citation.validator"),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// validationReply is the JSON shape the prompt asks for.
type validationReply struct {
	Results []struct {
		Index        int     `json:"index"`
		IsMatch      *bool   `json:"is_match"`
		Confidence   float64 `json:"confidence"`
		MatchQuality string  `json:"match_quality"`
		Reasoning    string  `json:"reasoning"`
	} `json:"results"`
}

// ValidateBatch judges every candidate against the provision, in batches of
// the configured size, and returns one result per candidate in input order.
// It never returns an error: any failure downgrades the affected candidates
// to the conservative unvalidated fallback.
func (v *Validator) ValidateBatch(ctx context.Context, candidates []*provision.CandidateMatch, prov provision.Provision) []*provision.ValidationResult {
	if len(candidates) == 0 {
		return nil
	}

	out := make([]*provision.ValidationResult, 0, len(candidates))
	for start := 0; start < len(candidates); start += v.batchSize {
		end := start + v.batchSize
		if end > len(candidates) {
			end = len(candidates)
		}
		out = append(out, v.validateOne(ctx, candidates[start:end], prov)...)
	}
	return out
}

// validateOne handles a single prompt-sized batch.
func (v *Validator) validateOne(ctx context.Context, batch []*provision.CandidateMatch, prov provision.Provision) []*provision.ValidationResult {
	if v.completer == nil {
		v.logger.Warn("validator not configured, falling back to unvalidated",
			logging.Int("candidates", len(batch)),
		)
		return v.fallbackAll(batch, "citation validator not configured")
	}

	reply, err := v.completer.Complete(ctx, buildValidationPrompt(batch, prov))
	if err != nil {
		v.logger.Warn("validation call failed, falling back to unvalidated",
			logging.String("provision", prov.ID),
			logging.Err(err),
		)
		return v.fallbackAll(batch, fmt.Sprintf("validator unavailable: %v", err))
	}

	var parsed validationReply
	if err := llm.DecodeLoose(reply, &parsed); err != nil {
		v.logger.Warn("validation reply unparseable, falling back to unvalidated",
			logging.String("provision", prov.ID),
			logging.Err(err),
		)
		return v.fallbackAll(batch, "validator reply was not valid JSON")
	}

	// Map judgments back to candidates by index. An out-of-range or repeated
	// index is a contract violation by the model: warn and leave the affected
	// candidate on its fallback.
	byIndex := make(map[int]*provision.ValidationResult, len(parsed.Results))
	for _, r := range parsed.Results {
		if r.Index < 0 || r.Index >= len(batch) {
			v.logger.Warn("validator returned out-of-range candidate index",
				logging.Int("index", r.Index),
				logging.Int("batch_size", len(batch)),
			)
			continue
		}
		if r.IsMatch == nil {
			continue
		}
		c := batch[r.Index]
		byIndex[r.Index] = &provision.ValidationResult{
			IsMatch:           *r.IsMatch,
			Confidence:        clamp01(r.Confidence),
			MatchQuality:      parseQuality(r.MatchQuality),
			Reasoning:         strings.TrimSpace(r.Reasoning),
			PatternMatchType:  c.MatchType,
			PatternConfidence: c.Confidence,
			Candidate:         c,
		}
	}

	fallbacks := 0
	out := make([]*provision.ValidationResult, len(batch))
	for i, c := range batch {
		if r, ok := byIndex[i]; ok {
			out[i] = r
			continue
		}
		fallbacks++
		out[i] = fallbackResult(c, "validator reply missing a judgment for this candidate")
	}
	if v.metrics != nil {
		v.metrics.ValidationBatch(len(batch), fallbacks)
	}
	return out
}

// FilterValidated applies the caller-facing confidence filter, keeping
// results whose confidence exceeds threshold. Pass threshold <= 0 to use
// DefaultConfidenceThreshold.
func FilterValidated(results []*provision.ValidationResult, threshold float64) []*provision.ValidationResult {
	if threshold <= 0 {
		threshold = DefaultConfidenceThreshold
	}
	kept := make([]*provision.ValidationResult, 0, len(results))
	for _, r := range results {
		if r.Confidence > threshold {
			kept = append(kept, r)
		}
	}
	return kept
}

func (v *Validator) fallbackAll(batch []*provision.CandidateMatch, reason string) []*provision.ValidationResult {
	out := make([]*provision.ValidationResult, len(batch))
	for i, c := range batch {
		out[i] = fallbackResult(c, reason)
	}
	if v.metrics != nil {
		v.metrics.ValidationBatch(len(batch), len(batch))
	}
	return out
}

// fallbackResult is the conservative outcome for an unvalidatable candidate:
// kept as a match, confidence discounted from the pattern prior, quality
// marked unvalidated.
func fallbackResult(c *provision.CandidateMatch, reason string) *provision.ValidationResult {
	return &provision.ValidationResult{
		IsMatch:           true,
		Confidence:        clamp01(c.Confidence * fallbackDiscount),
		MatchQuality:      provision.QualityUnvalidated,
		Reasoning:         reason,
		PatternMatchType:  c.MatchType,
		PatternConfidence: c.Confidence,
		Candidate:         c,
	}
}

func buildValidationPrompt(batch []*provision.CandidateMatch, prov provision.Provision) string {
	var b strings.Builder
	b.WriteString("You are validating citations of a professional code of ethics found in case text.\n\n")
	fmt.Fprintf(&b, "## Target Provision\nID: %s\nText: %s\n\n", prov.ID, prov.Text)
	b.WriteString("## Candidate Mentions\n")
	for i, c := range batch {
		fmt.Fprintf(&b, "[%d] section=%s matched=%q\nexcerpt: %s\n\n", i, c.Section, c.MatchedText, c.Excerpt)
	}
	b.WriteString("For each candidate, judge whether the excerpt genuinely cites the target provision.\n")
	b.WriteString("Mark match_quality as one of: exact, related, tangential, false_positive.\n")
	fmt.Fprintf(&b, "IMPORTANT: if the excerpt discusses a DIFFERENT provision number than %s ", prov.ID)
	b.WriteString("(for example a heading or citation of another provision), mark it false_positive with confidence 0.0, even though the text pattern matched.\n\n")
	b.WriteString("Answer with a JSON object only:\n")
	b.WriteString(`{"results": [{"index": 0, "is_match": true|false, "confidence": 0.0-1.0, "match_quality": "exact|related|tangential|false_positive", "reasoning": "one sentence"}]}`)
	b.WriteString("\n")
	return b.String()
}

func parseQuality(s string) provision.MatchQuality {
	switch provision.MatchQuality(strings.ToLower(strings.TrimSpace(s))) {
	case provision.QualityExact:
		return provision.QualityExact
	case provision.QualityRelated:
		return provision.QualityRelated
	case provision.QualityTangential:
		return provision.QualityTangential
	case provision.QualityFalsePositive:
		return provision.QualityFalsePositive
	default:
		return provision.QualityUnvalidated
	}
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
