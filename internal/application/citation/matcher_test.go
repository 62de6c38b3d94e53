package citation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cr625/proethica-sub007/internal/domain/provision"
	"github.com/cr625/proethica-sub007/internal/infrastructure/monitoring/logging"
)

func newTestMatcher(t *testing.T) *PatternMatcher {
	t.Helper()
	return NewPatternMatcher(logging.NewNopLogger())
}

func TestFindAllMentions_NotationCoverage(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		text     string
		wantType provision.MatchType
	}{
		{"dotted", "The board held that II.1.e controls the outcome.", provision.MatchExact},
		// Dedupe prefers the exact family over prefix at the same site.
		{"prefixed", "Under Section II.1.e the engineer must decline.", provision.MatchExact},
		{"hyphenated", "The provision II-1-e applies to this conduct.", provision.MatchHyphenated},
		{"hyphenated compact", "Compare II-1e in the earlier opinion.", provision.MatchHyphenated},
		{"spaced dots", "The text of II . 1 . e applies here.", provision.MatchFlexible},
		{"written out", "Section II, paragraph 1, subparagraph e forbids this.", provision.MatchWritten},
	}

	m := newTestMatcher(t)
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := m.FindAllMentions(map[string]string{"discussion": tc.text}, "II.1.e", "")
			require.Len(t, got, 1, "expected exactly one deduplicated candidate")
			assert.Equal(t, "discussion", got[0].Section)
			assert.Equal(t, tc.wantType, got[0].MatchType)
			assert.GreaterOrEqual(t, got[0].Confidence, confidenceWritten)
		})
	}
}

func TestFindAllMentions_WrittenFormWithoutKeywords(t *testing.T) {
	t.Parallel()

	m := newTestMatcher(t)
	got := m.FindAllMentions(map[string]string{
		"discussion": "As discussed in section II, paragraph 1, e of the code.",
	}, "II.1.e", "")
	require.NotEmpty(t, got)
	assert.Equal(t, provision.MatchWritten, got[0].MatchType)
	assert.Equal(t, confidenceWritten, got[0].Confidence)
}

func TestFindAllMentions_DedupesOverlappingFamilies(t *testing.T) {
	t.Parallel()

	// "Section II.1.e" is hit by the exact, prefix, and flexible families at
	// nearly the same position; only the highest-confidence one survives.
	m := newTestMatcher(t)
	got := m.FindAllMentions(map[string]string{
		"discussion": "Section II.1.e requires engineers to decline such work.",
	}, "II.1.e", "")

	require.Len(t, got, 1)
	assert.Equal(t, provision.MatchExact, got[0].MatchType)
	assert.Equal(t, confidenceExact, got[0].Confidence)
}

func TestFindAllMentions_DistantMentionsSurvive(t *testing.T) {
	t.Parallel()

	text := "II.1.e appears early in the discussion. " +
		"Much later, after a long digression about the facts of the matter and the prior rulings of the board, " +
		"the opinion returns to II.1.e a second time."

	m := newTestMatcher(t)
	got := m.FindAllMentions(map[string]string{"discussion": text}, "II.1.e", "")
	assert.Len(t, got, 2)
	assert.Less(t, got[0].Position, got[1].Position)
}

func TestFindAllMentions_TwoPartProvision(t *testing.T) {
	t.Parallel()

	m := newTestMatcher(t)
	got := m.FindAllMentions(map[string]string{
		"conclusion": "The conduct violated I.1 of the code. Decades of board opinions issued before the renumbering refer to the same obligation as I-1 instead.",
	}, "I.1", "")
	assert.Len(t, got, 2)
}

func TestFindAllMentions_InvalidProvisionID(t *testing.T) {
	t.Parallel()

	m := newTestMatcher(t)
	assert.Nil(t, m.FindAllMentions(map[string]string{"facts": "II.1.e mentioned"}, "not-a-ref", ""))
	assert.Nil(t, m.FindAllMentions(map[string]string{"facts": "text"}, "", ""))
}

func TestFindAllMentions_EmptySections(t *testing.T) {
	t.Parallel()

	m := newTestMatcher(t)
	assert.Empty(t, m.FindAllMentions(nil, "II.1.e", ""))
	assert.Empty(t, m.FindAllMentions(map[string]string{"facts": "   "}, "II.1.e", ""))
}

func TestFindAllMentions_NoFalseHitOnDifferentRef(t *testing.T) {
	t.Parallel()

	// Scanning for II.1.e must not hit II.1.a or III.1.e.
	m := newTestMatcher(t)
	got := m.FindAllMentions(map[string]string{
		"discussion": "The board cited II.1.a and III.1.e but never the provision at issue.",
	}, "II.1.e", "")
	assert.Empty(t, got)
}

func TestFindAllMentions_DeterministicAcrossSections(t *testing.T) {
	t.Parallel()

	sections := map[string]string{
		"facts":      "The complaint invoked II.1.e at the outset.",
		"discussion": "Section II.1.e requires full disclosure.",
		"conclusion": "II.1.e was violated.",
	}

	m := newTestMatcher(t)
	first := m.FindAllMentions(sections, "II.1.e", "")
	require.Len(t, first, 3)
	for i := 0; i < 5; i++ {
		again := m.FindAllMentions(sections, "II.1.e", "")
		assert.Equal(t, first, again)
	}
	// Sections come back in sorted kind order.
	assert.Equal(t, "conclusion", first[0].Section)
	assert.Equal(t, "discussion", first[1].Section)
	assert.Equal(t, "facts", first[2].Section)
}

func TestExcerpt_TrimsToSentenceBoundaries(t *testing.T) {
	t.Parallel()

	text := "An unrelated opening sentence. The engineer relied on II.1.e when declining. A trailing sentence follows."
	m := newTestMatcher(t)
	got := m.FindAllMentions(map[string]string{"discussion": text}, "II.1.e", "")

	require.Len(t, got, 1)
	assert.Equal(t, "The engineer relied on II.1.e when declining.", got[0].Excerpt)
	assert.NotContains(t, got[0].Excerpt, "unrelated opening")
	assert.NotContains(t, got[0].Excerpt, "trailing sentence")
}

func TestExcerpt_WindowBoundsAtTextEdges(t *testing.T) {
	t.Parallel()

	m := newTestMatcher(t)
	got := m.FindAllMentions(map[string]string{"discussion": "II.1.e"}, "II.1.e", "")
	require.Len(t, got, 1)
	assert.Equal(t, "II.1.e", got[0].Excerpt)
}
