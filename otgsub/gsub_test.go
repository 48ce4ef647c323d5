package otgsub

import (
	"testing"

	"github.com/npillmayer/ligpatch/ot"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type glyphs = []ot.GlyphIndex

func rec(seq, lookup uint16) []SequenceLookupRecord {
	return []SequenceLookupRecord{{SequenceIndex: seq, LookupListIndex: lookup}}
}

// allSubtables returns one subtable of every supported type and format.
func allSubtables() []Subtable {
	return []Subtable{
		&SingleSubst{Mapping: map[ot.GlyphIndex]ot.GlyphIndex{3: 13, 4: 14, 5: 15}},
		&SingleSubst{Mapping: map[ot.GlyphIndex]ot.GlyphIndex{3: 7, 4: 20}},
		&MultipleSubst{Sequences: map[ot.GlyphIndex][]ot.GlyphIndex{6: {7, 8}, 9: {10, 11, 12}}},
		&AlternateSubst{Alternates: map[ot.GlyphIndex][]ot.GlyphIndex{6: {30, 31}}},
		&LigatureSubst{Ligatures: map[ot.GlyphIndex][]Ligature{
			4: {{Components: glyphs{4, 5}, Glyph: 40}, {Components: glyphs{5}, Glyph: 41}},
			5: {{Components: glyphs{5}, Glyph: 42}},
		}},
		&SequenceContext{Rules: map[ot.GlyphIndex][]SequenceRule{
			4: {{Input: glyphs{5}, Records: rec(0, 0)}},
		}},
		&ClassSequenceContext{
			Coverage: Coverage{4, 5},
			Classes:  ClassDef{4: 1, 5: 2, 6: 2},
			Rules:    [][]ClassSequenceRule{nil, {{Input: []uint16{2}, Records: rec(1, 0)}}},
		},
		&CoverageSequenceContext{Input: []Coverage{{4}, {5, 6}}, Records: rec(0, 1)},
		&ChainedSequenceContext{Rules: map[ot.GlyphIndex][]ChainedSequenceRule{
			4: {{Backtrack: glyphs{3}, Input: glyphs{4}, Lookahead: glyphs{5, 6}, Records: rec(0, 0)}},
		}},
		&ChainedClassContext{
			Coverage:         Coverage{4},
			BacktrackClasses: ClassDef{3: 1},
			InputClasses:     ClassDef{4: 1},
			LookaheadClasses: ClassDef{5: 1, 100: 2},
			Rules: [][]ChainedClassRule{nil, {
				{Backtrack: []uint16{1}, Input: []uint16{1}, Lookahead: []uint16{2}, Records: rec(0, 0)},
			}},
		},
		&ChainedCoverageContext{
			Backtrack: []Coverage{{3}},
			Input:     []Coverage{{4}},
			Lookahead: []Coverage{{5}, {6, 7, 8, 9}},
			Records:   rec(0, 0),
		},
		&ReverseChainSubst{
			Backtrack:   []Coverage{{3}},
			Lookahead:   []Coverage{{5}},
			Substitutes: map[ot.GlyphIndex]ot.GlyphIndex{4: 44},
		},
	}
}

func sampleTable() *Table {
	t := NewTable()
	t.Scripts = []ScriptRecord{
		{Tag: ot.T("latn"), Script: &Script{
			Default:   &LangSys{RequiredFeature: NoRequiredFeature, Features: []uint16{0}},
			Languages: []LangSysRecord{{Tag: ot.T("DEU"), LangSys: &LangSys{RequiredFeature: 1, Features: []uint16{0, 1}}}},
		}},
		{Tag: ot.DFLT, Script: &Script{
			Default: &LangSys{RequiredFeature: NoRequiredFeature, Features: []uint16{1}},
		}},
	}
	t.Features = []FeatureRecord{
		{Tag: ot.T("liga"), Feature: &Feature{Lookups: []uint16{0, 1}}},
		{Tag: ot.T("ss01"), Feature: &Feature{Params: []byte{0, 0, 1, 2}, Lookups: []uint16{2}}},
	}
	for _, st := range allSubtables() {
		t.AddLookup(NewLookup(st))
	}
	t.Lookups[1].Flag = IgnoreMarks | UseMarkFilteringSet
	t.Lookups[1].MarkFilteringSet = 3
	return t
}

func TestRoundTrip(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.gsub")
	defer teardown()
	//
	table := sampleTable()
	data, err := table.Encode()
	require.NoError(t, err)
	parsed, err := Parse(data)
	require.NoError(t, err)
	//
	require.Len(t, parsed.Scripts, 2)
	assert.Equal(t, ot.DFLT, parsed.Scripts[0].Tag, "scripts are sorted by tag")
	latn := parsed.Scripts[1].Script
	assert.Equal(t, []uint16{0}, latn.Default.Features)
	require.Len(t, latn.Languages, 1)
	assert.Equal(t, ot.T("DEU"), latn.Languages[0].Tag)
	assert.Equal(t, uint16(1), latn.Languages[0].LangSys.RequiredFeature)
	//
	require.Len(t, parsed.Features, 2)
	assert.Equal(t, []uint16{0, 1}, parsed.Features[0].Feature.Lookups)
	assert.Equal(t, []byte{0, 0, 1, 2}, parsed.Features[1].Feature.Params)
	//
	require.Len(t, parsed.Lookups, len(table.Lookups))
	for i, l := range table.Lookups {
		p := parsed.Lookups[i]
		assert.Equal(t, l.Type, p.Type, "lookup %d", i)
		assert.Equal(t, l.Flag, p.Flag, "lookup %d", i)
		assert.Equal(t, l.MarkFilteringSet, p.MarkFilteringSet, "lookup %d", i)
		assert.False(t, p.Extension)
		require.Len(t, p.Subtables, 1)
		assert.Equal(t, l.Subtables[0], p.Subtables[0], "lookup %d (%s)", i, l.Type)
	}
}

func TestSingleSubstFormats(t *testing.T) {
	uniform, err := EncodeSubtable(&SingleSubst{Mapping: map[ot.GlyphIndex]ot.GlyphIndex{3: 13, 4: 14}})
	require.NoError(t, err)
	assert.Equal(t, byte(1), uniform[1], "equal deltas use format 1")
	mixed, err := EncodeSubtable(&SingleSubst{Mapping: map[ot.GlyphIndex]ot.GlyphIndex{3: 13, 4: 4}})
	require.NoError(t, err)
	assert.Equal(t, byte(2), mixed[1])
}

func TestCoverageFormats(t *testing.T) {
	ranged := encodeCoverage(Coverage{10, 11, 12, 13, 14, 15, 3})
	assert.Equal(t, []byte{0, 2, 0, 2, 0, 3, 0, 3, 0, 0, 0, 10, 0, 15, 0, 1}, ranged)
	listed := encodeCoverage(Coverage{9, 3, 3})
	assert.Equal(t, []byte{0, 1, 0, 2, 0, 3, 0, 9}, listed)
	cov, err := parseCoverage(ranged, 0)
	require.NoError(t, err)
	assert.Equal(t, Coverage{3, 10, 11, 12, 13, 14, 15}, cov)
}

func TestClassDefFormats(t *testing.T) {
	dense := ClassDef{10: 1, 11: 2, 12: 1, 13: 2}
	data := encodeClassDef(dense)
	assert.Equal(t, byte(1), data[1], "alternating classes use format 1")
	// offset 0 is a NULL offset, so the class definition goes behind a header
	cd, err := parseClassDef(append([]byte{0, 0}, data...), 2)
	require.NoError(t, err)
	assert.Equal(t, dense, cd)
	sparse := ClassDef{10: 1, 11: 1, 500: 2}
	data = encodeClassDef(sparse)
	assert.Equal(t, byte(2), data[1])
	cd, err = parseClassDef(append([]byte{0, 0}, data...), 2)
	require.NoError(t, err)
	assert.Equal(t, sparse, cd)
	cd, err = parseClassDef(data, 0)
	require.NoError(t, err)
	assert.Empty(t, cd, "NULL offset")
}

func largeTable(lookups int) *Table {
	t := NewTable()
	for i := 0; i < lookups; i++ {
		m := make(map[ot.GlyphIndex]ot.GlyphIndex)
		for g := 0; g < 600; g++ {
			m[ot.GlyphIndex(2*g+1)] = ot.GlyphIndex((g*7+i)%1000 + 1)
		}
		t.AddLookup(NewLookup(&SingleSubst{Mapping: m}))
	}
	t.AddFeature(ot.T("calt"), []uint16{0})
	t.RegisterFeature(0)
	return t
}

func TestExtensionPromotion(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.gsub")
	defer teardown()
	//
	table := largeTable(40)
	data, err := table.Encode()
	require.NoError(t, err)
	assert.Greater(t, len(data), 0xffff)
	parsed, err := Parse(data)
	require.NoError(t, err)
	require.Len(t, parsed.Lookups, 40)
	for i, l := range parsed.Lookups {
		assert.True(t, l.Extension, "lookup %d", i)
		assert.Equal(t, SingleType, l.Type)
		assert.Equal(t, table.Lookups[i].Subtables[0], l.Subtables[0])
	}
}

func TestExtensionKept(t *testing.T) {
	table := NewTable()
	l := NewLookup(NewSingleSubst(1, 2))
	l.Extension = true
	table.AddLookup(l)
	table.AddLookup(NewLookup(NewSingleSubst(3, 4)))
	data, err := table.Encode()
	require.NoError(t, err)
	parsed, err := Parse(data)
	require.NoError(t, err)
	assert.True(t, parsed.Lookups[0].Extension)
	assert.False(t, parsed.Lookups[1].Extension)
	assert.Equal(t, NewSingleSubst(1, 2), parsed.Lookups[0].Subtables[0])
}

func TestUnknownSubtableFormat(t *testing.T) {
	table := NewTable()
	table.AddLookup(NewLookup(NewSingleSubst(1, 2)))
	data, err := table.Encode()
	require.NoError(t, err)
	seg := ot.Segment(data)
	list, _ := seg.U16(8)
	lookup, _ := seg.U16(int(list) + 2)
	at := int(list) + int(lookup)
	subtable, _ := seg.U16(at + 6)
	data[at+int(subtable)+1] = 9
	_, err = Parse(data)
	assert.ErrorIs(t, err, ot.ErrUnsupportedFormat)
}

func TestVariationsRoundTrip(t *testing.T) {
	table := NewTable()
	table.AddLookup(NewLookup(NewSingleSubst(1, 2)))
	table.AddLookup(NewLookup(NewSingleSubst(1, 3)))
	table.AddFeature(ot.T("rvrn"), []uint16{0})
	table.Variations = &FeatureVariations{Records: []*FeatureVariationRecord{{
		Conditions:    [][]byte{{0, 1, 0, 0, 0x20, 0, 0x40, 0}},
		Substitutions: []FeatureSubstitution{{FeatureIndex: 0, Feature: &Feature{Lookups: []uint16{1}}}},
	}}}
	data, err := table.Encode()
	require.NoError(t, err)
	parsed, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, uint16(1), parsed.MinorVersion)
	require.NotNil(t, parsed.Variations)
	assert.Equal(t, table.Variations, parsed.Variations)
	//
	parsed.RemapFeatureLookups(func(i int) int { return i + 5 })
	assert.Equal(t, []uint16{5}, parsed.Features[0].Feature.Lookups)
	assert.Equal(t, []uint16{6}, parsed.Variations.Records[0].Substitutions[0].Feature.Lookups)
}
