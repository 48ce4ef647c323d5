package otlayout

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

func rec(seq, lookup int) otgsub.SequenceLookupRecord {
	return otgsub.SequenceLookupRecord{SequenceIndex: uint16(seq), LookupListIndex: uint16(lookup)}
}

func tableOf(subtables ...otgsub.Subtable) *otgsub.Table {
	gsub := otgsub.NewTable()
	for _, st := range subtables {
		gsub.AddLookup(otgsub.NewLookup(st))
	}
	return gsub
}

var calt = map[ot.Tag]bool{ot.T("calt"): true}

func TestGlyphSlice(t *testing.T) {
	b := GlyphSlice{1, 2, 3, 4}
	b = b.Replace(1, 2, glyphs{7, 8})
	assert.Equal(t, GlyphSlice{1, 7, 8, 3, 4}, b)
	b = b.Delete(0, 2)
	assert.Equal(t, GlyphSlice{8, 3, 4}, b)
	b = b.Insert(3, glyphs{9})
	assert.Equal(t, GlyphSlice{8, 3, 4, 9}, b)
	assert.True(t, b.matchAt(1, glyphs{3, 4}))
	assert.False(t, b.matchAt(3, glyphs{9, 9}))
	assert.True(t, b.matchBefore(2, glyphs{3, 8}))
	assert.False(t, b.matchBefore(1, glyphs{8, 8}))
}

func TestLigatureAndMultiple(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.layout")
	defer teardown()
	//
	gsub := tableOf(
		&otgsub.LigatureSubst{Ligatures: map[ot.GlyphIndex][]otgsub.Ligature{
			1: {{Components: glyphs{2, 3}, Glyph: 9}, {Components: glyphs{2}, Glyph: 8}},
		}},
		&otgsub.MultipleSubst{Sequences: map[ot.GlyphIndex][]ot.GlyphIndex{1: {4, 5}, 2: {}}},
	)
	assert.Equal(t, GlyphSlice{9, 8, 4}, ApplyLookup(gsub, 0, GlyphSlice{1, 2, 3, 1, 2, 4}))
	assert.Equal(t, GlyphSlice{4, 5, 4, 5}, ApplyLookup(gsub, 1, GlyphSlice{1, 2, 1}))
	assert.Equal(t, GlyphSlice{4, 5}, ApplyLookup(gsub, 1, GlyphSlice{2, 2, 1}))
}

func TestRuleWithoutRecordsConsumesInput(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.layout")
	defer teardown()
	//
	gsub := otgsub.NewTable()
	l := otgsub.NewLookup(&otgsub.SequenceContext{Rules: map[ot.GlyphIndex][]otgsub.SequenceRule{
		1: {{Input: glyphs{1}}},
	}})
	l.Subtables = append(l.Subtables, otgsub.NewSingleSubst(1, 5))
	gsub.AddLookup(l)
	assert.Equal(t, GlyphSlice{1, 1, 5}, ApplyLookup(gsub, 0, GlyphSlice{1, 1, 1}))
}

func TestFirstMatchingRuleWins(t *testing.T) {
	ctx := otgsub.NewChainedSequenceContext()
	ctx.AddRule(1, otgsub.ChainedSequenceRule{Lookahead: glyphs{2}})
	ctx.AddRule(1, otgsub.ChainedSequenceRule{Records: []otgsub.SequenceLookupRecord{rec(0, 1)}})
	gsub := tableOf(ctx, otgsub.NewSingleSubst(1, 3))
	assert.Equal(t, GlyphSlice{1, 2}, ApplyLookup(gsub, 0, GlyphSlice{1, 2}))
	assert.Equal(t, GlyphSlice{3, 3}, ApplyLookup(gsub, 0, GlyphSlice{1, 1}))
}

func TestBacktrackSeesSubstitutions(t *testing.T) {
	ctx := otgsub.NewChainedSequenceContext()
	ctx.AddRule(1, otgsub.ChainedSequenceRule{Backtrack: glyphs{3}, Records: []otgsub.SequenceLookupRecord{rec(0, 1)}})
	ctx.AddRule(2, otgsub.ChainedSequenceRule{Lookahead: glyphs{1}, Records: []otgsub.SequenceLookupRecord{rec(0, 2)}})
	gsub := tableOf(ctx, otgsub.NewSingleSubst(1, 3), otgsub.NewSingleSubst(2, 3))
	assert.Equal(t, GlyphSlice{3, 3, 3, 3}, ApplyLookup(gsub, 0, GlyphSlice{2, 1, 1, 1}))
}

func TestNestedLookupChangingLength(t *testing.T) {
	ctx := &otgsub.SequenceContext{Rules: map[ot.GlyphIndex][]otgsub.SequenceRule{
		1: {{Input: glyphs{2}, Records: []otgsub.SequenceLookupRecord{rec(1, 1)}}},
		3: {{Records: []otgsub.SequenceLookupRecord{rec(0, 2)}}},
	}}
	gsub := tableOf(ctx,
		&otgsub.MultipleSubst{Sequences: map[ot.GlyphIndex][]ot.GlyphIndex{2: {6, 7}}},
		otgsub.NewSingleSubst(3, 9),
	)
	assert.Equal(t, GlyphSlice{1, 6, 7, 9}, ApplyLookup(gsub, 0, GlyphSlice{1, 2, 3}))
}

func TestClassAndCoverageContexts(t *testing.T) {
	classes := &otgsub.ChainedClassContext{
		Coverage:         otgsub.Coverage{1},
		BacktrackClasses: otgsub.ClassDef{5: 1},
		InputClasses:     otgsub.ClassDef{1: 1},
		Rules: [][]otgsub.ChainedClassRule{
			nil,
			{{Backtrack: []uint16{1}, Records: []otgsub.SequenceLookupRecord{rec(0, 2)}}},
		},
	}
	coverages := &otgsub.ChainedCoverageContext{
		Input:     []otgsub.Coverage{{1, 2}},
		Lookahead: []otgsub.Coverage{{4}},
		Records:   []otgsub.SequenceLookupRecord{rec(0, 2)},
	}
	gsub := tableOf(classes, coverages,
		&otgsub.SingleSubst{Mapping: map[ot.GlyphIndex]ot.GlyphIndex{1: 9, 2: 9}})
	assert.Equal(t, GlyphSlice{5, 9, 6, 1}, ApplyLookup(gsub, 0, GlyphSlice{5, 1, 6, 1}))
	assert.Equal(t, GlyphSlice{9, 4, 9, 4, 1}, ApplyLookup(gsub, 1, GlyphSlice{1, 4, 2, 4, 1}))
}

func TestReverseChain(t *testing.T) {
	gsub := tableOf(&otgsub.ReverseChainSubst{
		Lookahead:   []otgsub.Coverage{{2}},
		Substitutes: map[ot.GlyphIndex]ot.GlyphIndex{1: 7},
	})
	assert.Equal(t, GlyphSlice{1, 7, 2}, ApplyLookup(gsub, 0, GlyphSlice{1, 1, 2}))
}

func TestShapeTargetFont(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.layout")
	defer teardown()
	//
	f, err := otedit.Parse(fonttest.MustBuild(t, fonttest.TargetSpec()))
	require.NoError(t, err)
	assert.Equal(t, []int{0}, FeatureLookups(f.GSUB(), calt))
	assert.Empty(t, FeatureLookups(f.GSUB(), map[ot.Tag]bool{ot.T("liga"): true}))
	assert.Equal(t, []string{"x.alt", "y", "space", "x"}, GlyphNames(f, Shape(f, "xy x", calt)))
	assert.Equal(t, []string{"x", "y", "space", "x"}, GlyphNames(f, Shape(f, "xy x", nil)))
	assert.Equal(t, []string{".notdef", "equal"}, GlyphNames(f, Shape(f, "ä=", calt)))
}

func TestShapeSourceFont(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.layout")
	defer teardown()
	//
	f, err := otedit.Parse(fonttest.MustBuild(t, fonttest.SourceSpec()))
	require.NoError(t, err)
	assert.Equal(t, []int{0, 3}, FeatureLookups(f.GSUB(), calt))
	assert.Equal(t, []string{"equal.spacer", "equal_greater.liga", "equal"},
		GlyphNames(f, Shape(f, "=>=", calt)))
	assert.Equal(t, []string{"hyphen"}, GlyphNames(f, Shape(f, "<", map[ot.Tag]bool{ot.T("liga"): true})))
}
