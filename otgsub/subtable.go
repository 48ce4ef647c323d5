package otgsub

import (
	"sort"

	"github.com/npillmayer/ligpatch/ot"
)

// Subtable is one of the subtable types of a GSUB lookup. The set of types
// is closed: it is implemented by the types of this package only.
type Subtable interface {
	Type() LookupType
	Accept(Visitor)
}

// Visitor has one method per subtable type.
type Visitor interface {
	VisitSingle(*SingleSubst)
	VisitMultiple(*MultipleSubst)
	VisitAlternate(*AlternateSubst)
	VisitLigature(*LigatureSubst)
	VisitSequenceContext(*SequenceContext)
	VisitClassSequenceContext(*ClassSequenceContext)
	VisitCoverageSequenceContext(*CoverageSequenceContext)
	VisitChainedSequenceContext(*ChainedSequenceContext)
	VisitChainedClassContext(*ChainedClassContext)
	VisitChainedCoverageContext(*ChainedCoverageContext)
	VisitReverseChain(*ReverseChainSubst)
}

// Coverage is a set of glyphs. Encoding sorts and deduplicates it.
type Coverage []ot.GlyphIndex

// Contains reports whether g is covered.
func (c Coverage) Contains(g ot.GlyphIndex) bool {
	for _, cg := range c {
		if cg == g {
			return true
		}
	}
	return false
}

// normalized returns a sorted copy of c without duplicates.
func (c Coverage) normalized() Coverage {
	n := append(Coverage(nil), c...)
	sort.Slice(n, func(i, j int) bool { return n[i] < n[j] })
	out := n[:0]
	for i, g := range n {
		if i == 0 || g != n[i-1] {
			out = append(out, g)
		}
	}
	return out
}

// ClassDef assigns classes to glyphs. Glyphs not listed are in class 0.
type ClassDef map[ot.GlyphIndex]uint16

// Class returns the class of g.
func (cd ClassDef) Class(g ot.GlyphIndex) uint16 {
	return cd[g]
}

// --- Type 1 -----------------------------------------------------------------

// SingleSubst replaces one glyph by another.
type SingleSubst struct {
	Mapping map[ot.GlyphIndex]ot.GlyphIndex
}

func (*SingleSubst) Type() LookupType   { return SingleType }
func (s *SingleSubst) Accept(v Visitor) { v.VisitSingle(s) }

// --- Type 2 -----------------------------------------------------------------

// MultipleSubst replaces one glyph by a sequence of glyphs.
type MultipleSubst struct {
	Sequences map[ot.GlyphIndex][]ot.GlyphIndex
}

func (*MultipleSubst) Type() LookupType   { return MultipleType }
func (s *MultipleSubst) Accept(v Visitor) { v.VisitMultiple(s) }

// --- Type 3 -----------------------------------------------------------------

// AlternateSubst offers alternates for a glyph.
type AlternateSubst struct {
	Alternates map[ot.GlyphIndex][]ot.GlyphIndex
}

func (*AlternateSubst) Type() LookupType   { return AlternateType }
func (s *AlternateSubst) Accept(v Visitor) { v.VisitAlternate(s) }

// --- Type 4 -----------------------------------------------------------------

// Ligature replaces a first glyph and its Components by Glyph.
type Ligature struct {
	Components []ot.GlyphIndex // without the first glyph
	Glyph      ot.GlyphIndex
}

// LigatureSubst holds ligatures by first glyph, in order of preference.
type LigatureSubst struct {
	Ligatures map[ot.GlyphIndex][]Ligature
}

func (*LigatureSubst) Type() LookupType   { return LigatureType }
func (s *LigatureSubst) Accept(v Visitor) { v.VisitLigature(s) }

// --- Type 5 -----------------------------------------------------------------

// SequenceRule matches an input sequence starting at a covered glyph.
type SequenceRule struct {
	Input   []ot.GlyphIndex // without the first glyph
	Records []SequenceLookupRecord
}

// SequenceContext is a contextual substitution, format 1: rule sets by first glyph.
type SequenceContext struct {
	Rules map[ot.GlyphIndex][]SequenceRule
}

func (*SequenceContext) Type() LookupType   { return ContextType }
func (s *SequenceContext) Accept(v Visitor) { v.VisitSequenceContext(s) }

// ClassSequenceRule matches an input sequence of glyph classes.
type ClassSequenceRule struct {
	Input   []uint16 // classes, without the first glyph
	Records []SequenceLookupRecord
}

// ClassSequenceContext is a contextual substitution, format 2: rule sets by
// class of the first glyph.
type ClassSequenceContext struct {
	Coverage Coverage
	Classes  ClassDef
	Rules    [][]ClassSequenceRule // indexed by class
}

func (*ClassSequenceContext) Type() LookupType   { return ContextType }
func (s *ClassSequenceContext) Accept(v Visitor) { v.VisitClassSequenceContext(s) }

// CoverageSequenceContext is a contextual substitution, format 3: one rule
// with a coverage per input position.
type CoverageSequenceContext struct {
	Input   []Coverage
	Records []SequenceLookupRecord
}

func (*CoverageSequenceContext) Type() LookupType   { return ContextType }
func (s *CoverageSequenceContext) Accept(v Visitor) { v.VisitCoverageSequenceContext(s) }

// --- Type 6 -----------------------------------------------------------------

// ChainedSequenceRule matches backtrack, input and lookahead glyphs.
// Backtrack is stored nearest glyph first.
type ChainedSequenceRule struct {
	Backtrack []ot.GlyphIndex
	Input     []ot.GlyphIndex // without the first glyph
	Lookahead []ot.GlyphIndex
	Records   []SequenceLookupRecord
}

// ChainedSequenceContext is a chained contextual substitution, format 1:
// rule sets by first glyph.
type ChainedSequenceContext struct {
	Rules map[ot.GlyphIndex][]ChainedSequenceRule
}

func (*ChainedSequenceContext) Type() LookupType   { return ChainContextType }
func (s *ChainedSequenceContext) Accept(v Visitor) { v.VisitChainedSequenceContext(s) }

// ChainedClassRule matches backtrack, input and lookahead glyph classes.
type ChainedClassRule struct {
	Backtrack []uint16
	Input     []uint16 // without the first glyph
	Lookahead []uint16
	Records   []SequenceLookupRecord
}

// ChainedClassContext is a chained contextual substitution, format 2.
type ChainedClassContext struct {
	Coverage         Coverage
	BacktrackClasses ClassDef
	InputClasses     ClassDef
	LookaheadClasses ClassDef
	Rules            [][]ChainedClassRule // indexed by input class
}

func (*ChainedClassContext) Type() LookupType   { return ChainContextType }
func (s *ChainedClassContext) Accept(v Visitor) { v.VisitChainedClassContext(s) }

// ChainedCoverageContext is a chained contextual substitution, format 3.
// Backtrack is stored nearest glyph first.
type ChainedCoverageContext struct {
	Backtrack []Coverage
	Input     []Coverage
	Lookahead []Coverage
	Records   []SequenceLookupRecord
}

func (*ChainedCoverageContext) Type() LookupType   { return ChainContextType }
func (s *ChainedCoverageContext) Accept(v Visitor) { v.VisitChainedCoverageContext(s) }

// --- Type 8 -----------------------------------------------------------------

// ReverseChainSubst is a reverse chaining contextual single substitution.
type ReverseChainSubst struct {
	Backtrack   []Coverage
	Lookahead   []Coverage
	Substitutes map[ot.GlyphIndex]ot.GlyphIndex
}

func (*ReverseChainSubst) Type() LookupType   { return ReverseChainType }
func (s *ReverseChainSubst) Accept(v Visitor) { v.VisitReverseChain(s) }

// --- Helpers for rule construction -------------------------------------------

// NewSingleSubst creates a single substitution from one glyph to another.
func NewSingleSubst(from, to ot.GlyphIndex) *SingleSubst {
	return &SingleSubst{Mapping: map[ot.GlyphIndex]ot.GlyphIndex{from: to}}
}

// NewChainedSequenceContext creates an empty format 1 chained context.
func NewChainedSequenceContext() *ChainedSequenceContext {
	return &ChainedSequenceContext{Rules: make(map[ot.GlyphIndex][]ChainedSequenceRule)}
}

// AddRule appends a rule to the rule set of glyph first.
func (s *ChainedSequenceContext) AddRule(first ot.GlyphIndex, rule ChainedSequenceRule) {
	s.Rules[first] = append(s.Rules[first], rule)
}
