package otpatch

import (
	"testing"

	"github.com/npillmayer/ligpatch/internal/fonttest"
	"github.com/npillmayer/ligpatch/ot"
	"github.com/npillmayer/ligpatch/otedit"
	"github.com/npillmayer/ligpatch/otgsub"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type glyphs = []ot.GlyphIndex

func TestIgnoreRules(t *testing.T) {
	eq, gt, lt := ot.GlyphIndex(1), ot.GlyphIndex(2), ot.GlyphIndex(3)
	all := [][]ot.GlyphIndex{{eq, eq, gt}, {eq, gt, gt}, {lt, eq, gt}, {eq, gt}, {lt, lt}}
	rules := IgnoreRules(glyphs{eq, gt}, all)
	assert.Equal(t, []otgsub.ChainedSequenceRule{
		{Backtrack: glyphs{eq}, Lookahead: glyphs{gt}},
		{Lookahead: glyphs{gt, gt}},
		{Backtrack: glyphs{lt}, Lookahead: glyphs{gt}},
	}, rules)
	rules = IgnoreRules(glyphs{eq, eq}, [][]ot.GlyphIndex{{eq, eq, eq}})
	assert.Equal(t, []otgsub.ChainedSequenceRule{
		{Lookahead: glyphs{eq, eq}},
		{Backtrack: glyphs{eq}, Lookahead: glyphs{eq}},
	}, rules)
	assert.Empty(t, IgnoreRules(glyphs{eq, eq, gt}, all))
	for _, r := range IgnoreRules(glyphs{eq, gt}, all) {
		assert.Empty(t, r.Records)
	}
}

func TestIgnoreRulesReverseBacktrack(t *testing.T) {
	rules := IgnoreRules(glyphs{1, 2}, [][]ot.GlyphIndex{{3, 4, 1, 2}})
	require.Len(t, rules, 1)
	assert.Equal(t, glyphs{4, 3}, rules[0].Backtrack)
	assert.Equal(t, glyphs{2}, rules[0].Lookahead)
}

func TestSubstRegistry(t *testing.T) {
	s := NewSynthesis()
	a := s.Registry.Get(1, 2)
	b := s.Registry.Get(1, 3)
	assert.Equal(t, a, s.Registry.Get(1, 2))
	assert.NotEqual(t, a, b)
	assert.Equal(t, 2, s.Registry.Len())
	require.Len(t, s.Lookups, 2)
	single := s.Lookups[b].Subtables[0].(*otgsub.SingleSubst)
	assert.Equal(t, map[ot.GlyphIndex]ot.GlyphIndex{1: 3}, single.Mapping)
	assert.Empty(t, s.FeatureLookups())
}

func TestLigatureChain(t *testing.T) {
	s := NewSynthesis()
	ignore := []otgsub.ChainedSequenceRule{{Backtrack: glyphs{3}, Lookahead: glyphs{2}}}
	chain := s.LigatureChain(glyphs{1, 2}, 8, 9, ignore)
	// single 1→9, chain 1, single 2→8, chain 2
	assert.Equal(t, []int{1, 3}, chain)
	assert.Equal(t, []int{1, 3}, s.FeatureLookups())
	first := s.Lookups[1].Subtables[0].(*otgsub.ChainedSequenceContext)
	require.Len(t, first.Rules[1], 2)
	assert.Equal(t, ignore[0], first.Rules[1][0])
	assert.Equal(t, otgsub.ChainedSequenceRule{
		Lookahead: glyphs{2},
		Records:   []otgsub.SequenceLookupRecord{{LookupListIndex: 0}},
	}, first.Rules[1][1])
	last := s.Lookups[3].Subtables[0].(*otgsub.ChainedSequenceContext)
	assert.Equal(t, []otgsub.ChainedSequenceRule{{
		Backtrack: glyphs{9},
		Records:   []otgsub.SequenceLookupRecord{{LookupListIndex: 2}},
	}}, last.Rules[2])
}

func TestRunBlocking(t *testing.T) {
	s := NewSynthesis()
	s.RunBlocking(1, 2, 3, 4, 5)
	// two registry lookups precede the seed
	assert.Equal(t, 2, s.Seed)
	assert.Equal(t, []int{3, 4, 5, 6, 7}, s.Passes)
	assert.Equal(t, []int{2, 3, 4, 5, 6, 7}, s.FeatureLookups())
	seed := s.Lookups[s.Seed].Subtables[0].(*otgsub.ChainedSequenceContext)
	require.Len(t, seed.Rules[1], 3)
	assert.Equal(t, glyphs{1, 1}, seed.Rules[1][0].Backtrack)
	assert.Equal(t, glyphs{2, 2, 2}, seed.Rules[1][2].Lookahead)
	prop := s.Lookups[s.Passes[0]].Subtables[0].(*otgsub.ChainedSequenceContext)
	assert.Len(t, prop.Rules[1], 2)
	assert.Len(t, prop.Rules[2], 2)
	assert.Equal(t, glyphs{4}, prop.Rules[2][1].Backtrack)
}

// preparedTarget returns the fixture target font with all glyphs needed for
// synthesis, but without rules.
func preparedTarget(t *testing.T) *otedit.Font {
	t.Helper()
	f, err := otedit.Parse(fonttest.MustBuild(t, fonttest.TargetSpec()))
	require.NoError(t, err)
	_, err = EnsurePaddingGlyph(f, "SPC", "equal")
	require.NoError(t, err)
	_, err = EnsureNoLigaGlyphs(f, []string{"equal", "greater", "less", "hyphen", "bar"})
	require.NoError(t, err)
	for _, seq := range fonttest.Ligatures {
		_, err = f.AddGlyph(fonttest.LigatureName(seq), nil, ot.HMetric{Advance: fonttest.TargetWidth})
		require.NoError(t, err)
	}
	return f
}

func TestSynthesizeLayout(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.patch")
	defer teardown()
	//
	f := preparedTarget(t)
	s, err := Synthesize(f, DefaultOptions())
	require.NoError(t, err)
	assert.Empty(t, s.Skipped)
	eq, _ := f.GlyphID("equal")
	eqNoLiga, _ := f.GlyphID("equal.noliga")
	first := s.Lookups[0].Subtables[0].(*otgsub.SingleSubst)
	assert.Equal(t, map[ot.GlyphIndex]ot.GlyphIndex{eq: eqNoLiga}, first.Mapping)
	assert.Equal(t, 2, s.Seed)
	assert.Len(t, s.Passes, 20)
	require.Len(t, s.Chains, 17)
	// '<' → SPC and '=' → SPC are created with the first chain
	assert.Equal(t, []int{24, 26, 27, 29}, s.Chains[0])
	assert.Len(t, s.FeatureLookups(), 1+20+4+15*3+2)
	// registry: 2 marks, 5 characters to padding, 17 to ligatures
	assert.Equal(t, 24, s.Registry.Len())
	assert.Len(t, s.Lookups, 72+24)
	feature := s.FeatureLookups()
	for i := 1; i < len(feature); i++ {
		assert.Less(t, feature[i-1], feature[i])
	}
}

func TestSynthesizeSkipsMissingGlyphs(t *testing.T) {
	f, err := otedit.Parse(fonttest.MustBuild(t, fonttest.TargetSpec()))
	require.NoError(t, err)
	_, err = Synthesize(f, DefaultOptions())
	assert.ErrorIs(t, err, ErrGlyphMissing)
	_, err = EnsurePaddingGlyph(f, "SPC", "equal")
	require.NoError(t, err)
	_, err = f.AddGlyph("equal_greater.liga", nil, ot.HMetric{Advance: 500})
	require.NoError(t, err)
	s, err := Synthesize(f, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, -1, s.Seed, "no .noliga glyphs, no run blocking")
	assert.Len(t, s.Skipped, 16)
	require.Len(t, s.Chains, 1)
	assert.Len(t, s.Lookups, 4)
}
