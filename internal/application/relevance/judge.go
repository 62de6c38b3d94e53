package relevance

import (
	"context"
	"fmt"
	"strings"

	"github.com/cr625/proethica-sub007/internal/domain/document"
	"github.com/cr625/proethica-sub007/internal/domain/guideline"
	domain "github.com/cr625/proethica-sub007/internal/domain/relevance"
	"github.com/cr625/proethica-sub007/internal/infrastructure/monitoring/logging"
	"github.com/cr625/proethica-sub007/internal/intelligence/llm"
)

// defaultSectionWindow bounds how much section text reaches the judge prompt.
const defaultSectionWindow = 1000

// SemanticJudge asks the model for a qualitative relevance opinion on one
// (section, statement) pair. A nil completer or any call/parse failure
// degrades to a synthetic not-relevant judgment rather than surfacing an
// error; the assessment pipeline must never fail because an enrichment step
// did.
type SemanticJudge struct {
	completer     llm.Completer
	sectionWindow int
	logger        logging.Logger
}

// JudgeOption tunes a SemanticJudge.
type JudgeOption func(*SemanticJudge)

// WithSectionWindow overrides the section-text truncation length.
func WithSectionWindow(chars int) JudgeOption {
	return func(j *SemanticJudge) {
		if chars > 0 {
			j.sectionWindow = chars
		}
	}
}

// NewSemanticJudge builds a judge. completer may be nil, in which case every
// judgment is degraded.
func NewSemanticJudge(completer llm.Completer, log logging.Logger, opts ...JudgeOption) *SemanticJudge {
	j := &SemanticJudge{
		completer:     completer,
		sectionWindow: defaultSectionWindow,
		logger:        log.Named("judge"),
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// judgeReply is the JSON shape the prompt asks for.
type judgeReply struct {
	IsRelevant *bool    `json:"is_relevant"`
	Reasoning  string   `json:"reasoning"`
	Patterns   []string `json:"patterns"`
}

// Judge returns the model's relevance opinion. The returned judgment is
// always non-nil; check Degraded before trusting IsRelevant.
func (j *SemanticJudge) Judge(ctx context.Context, section *document.Section, statement *guideline.Statement) *domain.Judgment {
	if j.completer == nil {
		return degradedJudgment("semantic judge not configured")
	}

	prompt := j.buildPrompt(section, statement)
	reply, err := j.completer.Complete(ctx, prompt)
	if err != nil {
		j.logger.Warn("judge call failed, degrading to neutral",
			logging.String("section_id", section.ID.String()),
			logging.String("statement", statement.URI),
			logging.Err(err),
		)
		return degradedJudgment(fmt.Sprintf("judge unavailable: %v", err))
	}

	var parsed judgeReply
	if err := llm.DecodeLoose(reply, &parsed); err != nil || parsed.IsRelevant == nil {
		j.logger.Warn("judge reply unparseable, degrading to neutral",
			logging.String("statement", statement.URI),
			logging.Err(err),
		)
		return degradedJudgment("judge reply was not valid JSON with an is_relevant field")
	}

	return &domain.Judgment{
		IsRelevant: *parsed.IsRelevant,
		Reasoning:  strings.TrimSpace(parsed.Reasoning),
		Patterns:   parsed.Patterns,
	}
}

func degradedJudgment(reason string) *domain.Judgment {
	return &domain.Judgment{
		IsRelevant: false,
		Reasoning:  reason,
		Degraded:   true,
	}
}

func (j *SemanticJudge) buildPrompt(section *document.Section, statement *guideline.Statement) string {
	text := section.Text
	if len(text) > j.sectionWindow {
		text = text[:j.sectionWindow]
	}

	var b strings.Builder
	b.WriteString("You are an ethics analyst relating sections of an engineering ethics case to guideline concepts from a professional code of ethics.\n\n")
	fmt.Fprintf(&b, "## Case Section (%s)\n%s\n\n", section.Kind, text)
	fmt.Fprintf(&b, "## Guideline Concept\nLabel: %s\n", statement.Label)
	if statement.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", statement.Description)
	}
	fmt.Fprintf(&b, "Assertion: %s %s %s\n\n", statement.Subject, statement.Predicate, statement.Object)
	b.WriteString("Is this guideline concept relevant to the section? Answer with a JSON object only:\n")
	b.WriteString(`{"is_relevant": true|false, "reasoning": "one or two sentences", "patterns": ["named ethical patterns present, if any"]}`)
	b.WriteString("\n")
	return b.String()
}
