package fonttest

import (
	"strings"

	"github.com/npillmayer/ligpatch/ot"
	"github.com/npillmayer/ligpatch/otgsub"
)

// Widths of the fixture fonts.
const (
	TargetWidth = 500
	SourceWidth = 600
)

// Ligatures are the character sequences of the fixture source font's
// ligature glyphs.
var Ligatures = []string{
	"<==>", "==>", "=>>", "<<=", ">>=", "<=<", ">=>", "<==", "<=>", "<=|",
	"|=>", "=<<", "<-<", ">->", "-<<", ">>-", "=>",
}

var charNames = map[rune]string{
	'=': "equal", '>': "greater", '<': "less", '-': "hyphen", '|': "bar",
}

// LigatureName returns the glyph name of a ligature sequence.
func LigatureName(seq string) string {
	parts := make([]string, 0, len(seq))
	for _, r := range seq {
		parts = append(parts, charNames[r])
	}
	return strings.Join(parts, "_") + ".liga"
}

func equalOutline(x int) *ot.Glyph {
	g := &ot.Glyph{Contours: []ot.Contour{
		Rect(x+50, 200, x+550, 260).Contours[0],
		Rect(x+50, 340, x+550, 400).Contours[0],
	}}
	g.RecalcBounds()
	return g
}

// sourceOutline returns the outline of a base character at x offset x.
func sourceOutline(r rune, x int) *ot.Glyph {
	switch r {
	case '=':
		return equalOutline(x)
	case '>':
		return Triangle(x+100, 100, x+500, 500, true)
	case '<':
		return Triangle(x+100, 100, x+500, 500, false)
	case '-':
		return Rect(x+100, 270, x+500, 330)
	case '|':
		return Rect(x+270, -100, x+330, 700)
	}
	return &ot.Glyph{}
}

// SourceGlyphs are the base glyphs of the fixture source font, by name.
var SourceGlyphs = []string{".notdef", "equal", "greater", "less", "hyphen", "bar", "equal.spacer"}

// SourceSpec describes a font of width 600 with glyphs for all fixture
// ligatures. Ligature "equal_greater.liga" is a composite of offset
// components, "less_equal_greater.liga" places its last component by point
// matching. All others are simple glyphs.
//
// Its GSUB table has lookups
//
//	0: chained context, equal' greater → lookup 2
//	1: single, less → hyphen (feature 'liga')
//	2: single, equal → equal.spacer
//	3: chained context, equal.spacer greater' → lookup 4 (extension)
//	4: single, greater → equal_greater.liga
//
// Feature 'calt' selects lookups 0 and 3.
func SourceSpec() Spec {
	spec := Spec{Glyphs: []Glyph{
		{Name: ".notdef", Outline: Rect(50, 0, 550, 700), Advance: SourceWidth},
		{Name: "equal", Rune: '=', Outline: sourceOutline('=', 0), Advance: SourceWidth},
		{Name: "greater", Rune: '>', Outline: sourceOutline('>', 0), Advance: SourceWidth},
		{Name: "less", Rune: '<', Outline: sourceOutline('<', 0), Advance: SourceWidth},
		{Name: "hyphen", Rune: '-', Outline: sourceOutline('-', 0), Advance: SourceWidth},
		{Name: "bar", Rune: '|', Outline: sourceOutline('|', 0), Advance: SourceWidth},
		{Name: "equal.spacer", Outline: Rect(0, 280, 600, 320), Advance: SourceWidth},
	}}
	for _, seq := range Ligatures {
		name := LigatureName(seq)
		width := uint16(SourceWidth * len(seq))
		var g *ot.Glyph
		switch name {
		case "equal_greater.liga":
			g = Composite([4]int16{50, 100, 1100, 500}, Offset(1, 0, 0), Offset(2, 600, 0))
		case "less_equal_greater.liga":
			match := ot.Component{Glyph: 2, Arg1: 1, Arg2: 1, Transform: ot.IdentityTransform}
			g = Composite([4]int16{100, 100, 1150, 500}, Offset(3, 0, 0), Offset(1, 600, 0), match)
		default:
			g = &ot.Glyph{}
			for k, r := range seq {
				g.Contours = append(g.Contours, sourceOutline(r, SourceWidth*k).Contours...)
			}
			g.RecalcBounds()
		}
		spec.Glyphs = append(spec.Glyphs, Glyph{Name: name, Outline: g, Advance: width})
	}
	id := func(name string) ot.GlyphIndex {
		for i, g := range spec.Glyphs {
			if g.Name == name {
				return ot.GlyphIndex(i)
			}
		}
		panic("fixture glyph missing: " + name)
	}
	equal, greater, less, hyphen := id("equal"), id("greater"), id("less"), id("hyphen")
	spacer, eqgt := id("equal.spacer"), id("equal_greater.liga")
	gsub := otgsub.NewTable()
	gsub.AddLookup(otgsub.NewLookup(&otgsub.ChainedCoverageContext{
		Input:     []otgsub.Coverage{{equal}},
		Lookahead: []otgsub.Coverage{{greater}},
		Records:   []otgsub.SequenceLookupRecord{{SequenceIndex: 0, LookupListIndex: 2}},
	}))
	gsub.AddLookup(otgsub.NewLookup(otgsub.NewSingleSubst(less, hyphen)))
	gsub.AddLookup(otgsub.NewLookup(otgsub.NewSingleSubst(equal, spacer)))
	chain := otgsub.NewChainedSequenceContext()
	chain.AddRule(greater, otgsub.ChainedSequenceRule{
		Backtrack: []ot.GlyphIndex{spacer},
		Records:   []otgsub.SequenceLookupRecord{{SequenceIndex: 0, LookupListIndex: 4}},
	})
	ext := otgsub.NewLookup(chain)
	ext.Extension = true
	gsub.AddLookup(ext)
	gsub.AddLookup(otgsub.NewLookup(otgsub.NewSingleSubst(greater, eqgt)))
	gsub.RegisterFeature(gsub.AddFeature(ot.T("calt"), []uint16{0, 3}))
	gsub.RegisterFeature(gsub.AddFeature(ot.T("liga"), []uint16{1}))
	spec.GSUB = gsub
	return spec
}

// TargetSpec describes a font of width 500 with the base glyphs, but no
// ligatures. Its GSUB table has an existing 'calt' feature:
//
//	0: chained context, x' y → lookup 1
//	1: single, x → x.alt
//
// registered for scripts 'DFLT' and 'latn', the latter with language 'DEU'.
func TargetSpec() Spec {
	w := TargetWidth
	spec := Spec{Glyphs: []Glyph{
		{Name: ".notdef", Outline: Rect(50, 0, 450, 700), Advance: TargetWidth},
		{Name: "space", Rune: ' ', Advance: TargetWidth},
		{Name: "equal", Rune: '=', Outline: &ot.Glyph{Contours: []ot.Contour{
			Rect(50, 200, w-50, 260).Contours[0], Rect(50, 340, w-50, 400).Contours[0],
		}}, Advance: TargetWidth},
		{Name: "greater", Rune: '>', Outline: Triangle(80, 100, 420, 500, true), Advance: TargetWidth},
		{Name: "less", Rune: '<', Outline: Triangle(80, 100, 420, 500, false), Advance: TargetWidth},
		{Name: "hyphen", Rune: '-', Outline: Rect(80, 270, 420, 330), Advance: TargetWidth},
		{Name: "bar", Rune: '|', Outline: Rect(220, -100, 280, 700), Advance: TargetWidth},
		{Name: "x", Rune: 'x', Outline: Rect(100, 0, 400, 500), Advance: TargetWidth},
		{Name: "y", Rune: 'y', Outline: Rect(100, -200, 400, 500), Advance: TargetWidth},
		{Name: "x.alt", Outline: Rect(120, 0, 380, 500), Advance: TargetWidth},
	}}
	spec.Glyphs[2].Outline.RecalcBounds()
	gsub := otgsub.NewTable()
	chain := otgsub.NewChainedSequenceContext()
	chain.AddRule(7, otgsub.ChainedSequenceRule{
		Lookahead: []ot.GlyphIndex{8},
		Records:   []otgsub.SequenceLookupRecord{{SequenceIndex: 0, LookupListIndex: 1}},
	})
	gsub.AddLookup(otgsub.NewLookup(chain))
	gsub.AddLookup(otgsub.NewLookup(otgsub.NewSingleSubst(7, 9)))
	deu := &otgsub.LangSys{RequiredFeature: otgsub.NoRequiredFeature}
	gsub.Scripts = []otgsub.ScriptRecord{
		{Tag: ot.DFLT, Script: &otgsub.Script{Default: &otgsub.LangSys{RequiredFeature: otgsub.NoRequiredFeature}}},
		{Tag: ot.T("latn"), Script: &otgsub.Script{
			Default:   &otgsub.LangSys{RequiredFeature: otgsub.NoRequiredFeature},
			Languages: []otgsub.LangSysRecord{{Tag: ot.T("DEU"), LangSys: deu}},
		}},
	}
	gsub.RegisterFeature(gsub.AddFeature(ot.T("calt"), []uint16{0}))
	spec.GSUB = gsub
	return spec
}
