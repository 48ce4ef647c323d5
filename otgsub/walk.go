package otgsub

import (
	"sort"

	"github.com/npillmayer/ligpatch/ot"
)

// --- Nested lookup references -----------------------------------------------

// ForEachRecord calls fn for every sequence lookup record of a contextual
// subtable. fn may modify the record in place.
func ForEachRecord(st Subtable, fn func(*SequenceLookupRecord)) {
	st.Accept(&recordWalker{fn: fn})
}

type recordWalker struct {
	fn func(*SequenceLookupRecord)
}

func (rw *recordWalker) each(recs []SequenceLookupRecord) {
	for i := range recs {
		rw.fn(&recs[i])
	}
}

func (rw *recordWalker) VisitSingle(*SingleSubst)       {}
func (rw *recordWalker) VisitMultiple(*MultipleSubst)   {}
func (rw *recordWalker) VisitAlternate(*AlternateSubst) {}
func (rw *recordWalker) VisitLigature(*LigatureSubst)   {}

func (rw *recordWalker) VisitReverseChain(*ReverseChainSubst) {}

func (rw *recordWalker) VisitSequenceContext(s *SequenceContext) {
	for _, g := range sortedKeys(s.Rules) {
		for _, rule := range s.Rules[g] {
			rw.each(rule.Records)
		}
	}
}

func (rw *recordWalker) VisitClassSequenceContext(s *ClassSequenceContext) {
	for _, set := range s.Rules {
		for _, rule := range set {
			rw.each(rule.Records)
		}
	}
}

func (rw *recordWalker) VisitCoverageSequenceContext(s *CoverageSequenceContext) {
	rw.each(s.Records)
}

func (rw *recordWalker) VisitChainedSequenceContext(s *ChainedSequenceContext) {
	for _, g := range sortedKeys(s.Rules) {
		for _, rule := range s.Rules[g] {
			rw.each(rule.Records)
		}
	}
}

func (rw *recordWalker) VisitChainedClassContext(s *ChainedClassContext) {
	for _, set := range s.Rules {
		for _, rule := range set {
			rw.each(rule.Records)
		}
	}
}

func (rw *recordWalker) VisitChainedCoverageContext(s *ChainedCoverageContext) {
	rw.each(s.Records)
}

// LookupRefs returns the sorted indices of all lookups referenced by nested
// lookup records of l.
func LookupRefs(l *Lookup) []int {
	seen := make(map[int]bool)
	var refs []int
	for _, st := range l.Subtables {
		ForEachRecord(st, func(rec *SequenceLookupRecord) {
			inx := int(rec.LookupListIndex)
			if !seen[inx] {
				seen[inx] = true
				refs = append(refs, inx)
			}
		})
	}
	sort.Ints(refs)
	return refs
}

// RemapLookupRefs rewrites nested lookup references of lookups with fn.
func RemapLookupRefs(lookups []*Lookup, fn func(int) int) {
	for _, l := range lookups {
		for _, st := range l.Subtables {
			ForEachRecord(st, func(rec *SequenceLookupRecord) {
				rec.LookupListIndex = uint16(fn(int(rec.LookupListIndex)))
			})
		}
	}
}

// RemapFeatureLookups rewrites the lookup indices of all features, including
// substitute features of feature variations, with fn.
func (t *Table) RemapFeatureLookups(fn func(int) int) {
	remap := func(f *Feature) {
		if f == nil {
			return
		}
		for i, inx := range f.Lookups {
			f.Lookups[i] = uint16(fn(int(inx)))
		}
	}
	for _, rec := range t.Features {
		remap(rec.Feature)
	}
	if t.Variations != nil {
		for _, rec := range t.Variations.Records {
			for _, subst := range rec.Substitutions {
				remap(subst.Feature)
			}
		}
	}
}

// --- Glyphs -----------------------------------------------------------------

// GlyphSet is a set of glyph indices.
type GlyphSet map[ot.GlyphIndex]struct{}

// Add adds glyphs to the set.
func (gs GlyphSet) Add(glyphs ...ot.GlyphIndex) {
	for _, g := range glyphs {
		gs[g] = struct{}{}
	}
}

// Sorted returns the members of the set in ascending order.
func (gs GlyphSet) Sorted() []ot.GlyphIndex {
	return sortedKeys(gs)
}

// Glyphs adds every glyph a subtable mentions, as input, context or output,
// to set.
func Glyphs(st Subtable, set GlyphSet) {
	st.Accept(&glyphCollector{set: set})
}

type glyphCollector struct {
	set GlyphSet
}

func (gc *glyphCollector) coverages(covs []Coverage) {
	for _, cov := range covs {
		gc.set.Add(cov...)
	}
}

func (gc *glyphCollector) classes(cds ...ClassDef) {
	for _, cd := range cds {
		for g := range cd {
			gc.set.Add(g)
		}
	}
}

func (gc *glyphCollector) VisitSingle(s *SingleSubst) {
	for from, to := range s.Mapping {
		gc.set.Add(from, to)
	}
}

func (gc *glyphCollector) VisitMultiple(s *MultipleSubst) {
	for g, seq := range s.Sequences {
		gc.set.Add(g)
		gc.set.Add(seq...)
	}
}

func (gc *glyphCollector) VisitAlternate(s *AlternateSubst) {
	for g, alts := range s.Alternates {
		gc.set.Add(g)
		gc.set.Add(alts...)
	}
}

func (gc *glyphCollector) VisitLigature(s *LigatureSubst) {
	for g, ligs := range s.Ligatures {
		gc.set.Add(g)
		for _, lig := range ligs {
			gc.set.Add(lig.Glyph)
			gc.set.Add(lig.Components...)
		}
	}
}

func (gc *glyphCollector) VisitSequenceContext(s *SequenceContext) {
	for g, rules := range s.Rules {
		gc.set.Add(g)
		for _, rule := range rules {
			gc.set.Add(rule.Input...)
		}
	}
}

func (gc *glyphCollector) VisitClassSequenceContext(s *ClassSequenceContext) {
	gc.set.Add(s.Coverage...)
	gc.classes(s.Classes)
}

func (gc *glyphCollector) VisitCoverageSequenceContext(s *CoverageSequenceContext) {
	gc.coverages(s.Input)
}

func (gc *glyphCollector) VisitChainedSequenceContext(s *ChainedSequenceContext) {
	for g, rules := range s.Rules {
		gc.set.Add(g)
		for _, rule := range rules {
			gc.set.Add(rule.Backtrack...)
			gc.set.Add(rule.Input...)
			gc.set.Add(rule.Lookahead...)
		}
	}
}

func (gc *glyphCollector) VisitChainedClassContext(s *ChainedClassContext) {
	gc.set.Add(s.Coverage...)
	gc.classes(s.BacktrackClasses, s.InputClasses, s.LookaheadClasses)
}

func (gc *glyphCollector) VisitChainedCoverageContext(s *ChainedCoverageContext) {
	gc.coverages(s.Backtrack)
	gc.coverages(s.Input)
	gc.coverages(s.Lookahead)
}

func (gc *glyphCollector) VisitReverseChain(s *ReverseChainSubst) {
	gc.coverages(s.Backtrack)
	gc.coverages(s.Lookahead)
	for from, to := range s.Substitutes {
		gc.set.Add(from, to)
	}
}

// --- Glyph remapping --------------------------------------------------------

// GlyphMapper maps a glyph to another glyph index. ok is false if the glyph
// has no counterpart.
type GlyphMapper func(g ot.GlyphIndex) (mapped ot.GlyphIndex, ok bool)

// RemapGlyphs returns a copy of st with all glyphs mapped by fn. Matched
// glyphs without a counterpart are dropped, together with the rules and
// ligatures that need them. Output glyphs without a counterpart become
// glyph 0.
func RemapGlyphs(st Subtable, fn GlyphMapper) Subtable {
	gm := &glyphMapper{fn: fn}
	st.Accept(gm)
	return gm.out
}

func cloneSubtable(st Subtable) Subtable {
	return RemapGlyphs(st, func(g ot.GlyphIndex) (ot.GlyphIndex, bool) { return g, true })
}

type glyphMapper struct {
	fn  GlyphMapper
	out Subtable
}

// output maps an output glyph, falling back to .notdef.
func (gm *glyphMapper) output(g ot.GlyphIndex) ot.GlyphIndex {
	if m, ok := gm.fn(g); ok {
		return m
	}
	return 0
}

func (gm *glyphMapper) outputs(glyphs []ot.GlyphIndex) []ot.GlyphIndex {
	out := make([]ot.GlyphIndex, len(glyphs))
	for i, g := range glyphs {
		out[i] = gm.output(g)
	}
	return out
}

// sequence maps glyphs to be matched. ok is false if one of them is lost.
func (gm *glyphMapper) sequence(glyphs []ot.GlyphIndex) ([]ot.GlyphIndex, bool) {
	if glyphs == nil {
		return nil, true
	}
	out := make([]ot.GlyphIndex, len(glyphs))
	for i, g := range glyphs {
		m, ok := gm.fn(g)
		if !ok {
			return nil, false
		}
		out[i] = m
	}
	return out, true
}

func (gm *glyphMapper) coverage(cov Coverage) Coverage {
	out := make(Coverage, 0, len(cov))
	for _, g := range cov {
		if m, ok := gm.fn(g); ok {
			out = append(out, m)
		}
	}
	return out
}

func (gm *glyphMapper) coverages(covs []Coverage) []Coverage {
	if covs == nil {
		return nil
	}
	out := make([]Coverage, len(covs))
	for i, cov := range covs {
		out[i] = gm.coverage(cov)
	}
	return out
}

func (gm *glyphMapper) classDef(cd ClassDef) ClassDef {
	out := make(ClassDef, len(cd))
	for g, c := range cd {
		if m, ok := gm.fn(g); ok {
			out[m] = c
		}
	}
	return out
}

func copyRecords(recs []SequenceLookupRecord) []SequenceLookupRecord {
	return append([]SequenceLookupRecord(nil), recs...)
}

func copyClasses(cs []uint16) []uint16 {
	if cs == nil {
		return nil
	}
	return append([]uint16(nil), cs...)
}

func (gm *glyphMapper) VisitSingle(s *SingleSubst) {
	out := &SingleSubst{Mapping: make(map[ot.GlyphIndex]ot.GlyphIndex, len(s.Mapping))}
	for from, to := range s.Mapping {
		if m, ok := gm.fn(from); ok {
			out.Mapping[m] = gm.output(to)
		}
	}
	gm.out = out
}

func (gm *glyphMapper) VisitMultiple(s *MultipleSubst) {
	out := &MultipleSubst{Sequences: make(map[ot.GlyphIndex][]ot.GlyphIndex, len(s.Sequences))}
	for g, seq := range s.Sequences {
		if m, ok := gm.fn(g); ok {
			out.Sequences[m] = gm.outputs(seq)
		}
	}
	gm.out = out
}

func (gm *glyphMapper) VisitAlternate(s *AlternateSubst) {
	out := &AlternateSubst{Alternates: make(map[ot.GlyphIndex][]ot.GlyphIndex, len(s.Alternates))}
	for g, alts := range s.Alternates {
		if m, ok := gm.fn(g); ok {
			out.Alternates[m] = gm.outputs(alts)
		}
	}
	gm.out = out
}

func (gm *glyphMapper) VisitLigature(s *LigatureSubst) {
	out := &LigatureSubst{Ligatures: make(map[ot.GlyphIndex][]Ligature, len(s.Ligatures))}
	for g, ligs := range s.Ligatures {
		m, ok := gm.fn(g)
		if !ok {
			continue
		}
		for _, lig := range ligs {
			comps, ok := gm.sequence(lig.Components)
			if !ok {
				continue
			}
			out.Ligatures[m] = append(out.Ligatures[m], Ligature{Components: comps, Glyph: gm.output(lig.Glyph)})
		}
	}
	gm.out = out
}

func (gm *glyphMapper) VisitSequenceContext(s *SequenceContext) {
	out := &SequenceContext{Rules: make(map[ot.GlyphIndex][]SequenceRule, len(s.Rules))}
	for _, g := range sortedKeys(s.Rules) {
		m, ok := gm.fn(g)
		if !ok {
			continue
		}
		for _, rule := range s.Rules[g] {
			input, ok := gm.sequence(rule.Input)
			if !ok {
				continue
			}
			out.Rules[m] = append(out.Rules[m], SequenceRule{Input: input, Records: copyRecords(rule.Records)})
		}
	}
	gm.out = out
}

func (gm *glyphMapper) VisitClassSequenceContext(s *ClassSequenceContext) {
	out := &ClassSequenceContext{
		Coverage: gm.coverage(s.Coverage),
		Classes:  gm.classDef(s.Classes),
		Rules:    make([][]ClassSequenceRule, len(s.Rules)),
	}
	for i, set := range s.Rules {
		for _, rule := range set {
			out.Rules[i] = append(out.Rules[i], ClassSequenceRule{
				Input:   copyClasses(rule.Input),
				Records: copyRecords(rule.Records),
			})
		}
	}
	gm.out = out
}

func (gm *glyphMapper) VisitCoverageSequenceContext(s *CoverageSequenceContext) {
	gm.out = &CoverageSequenceContext{
		Input:   gm.coverages(s.Input),
		Records: copyRecords(s.Records),
	}
}

func (gm *glyphMapper) VisitChainedSequenceContext(s *ChainedSequenceContext) {
	out := NewChainedSequenceContext()
	for _, g := range sortedKeys(s.Rules) {
		m, ok := gm.fn(g)
		if !ok {
			continue
		}
		for _, rule := range s.Rules[g] {
			bt, ok1 := gm.sequence(rule.Backtrack)
			in, ok2 := gm.sequence(rule.Input)
			la, ok3 := gm.sequence(rule.Lookahead)
			if !ok1 || !ok2 || !ok3 {
				continue
			}
			out.AddRule(m, ChainedSequenceRule{
				Backtrack: bt,
				Input:     in,
				Lookahead: la,
				Records:   copyRecords(rule.Records),
			})
		}
	}
	gm.out = out
}

func (gm *glyphMapper) VisitChainedClassContext(s *ChainedClassContext) {
	out := &ChainedClassContext{
		Coverage:         gm.coverage(s.Coverage),
		BacktrackClasses: gm.classDef(s.BacktrackClasses),
		InputClasses:     gm.classDef(s.InputClasses),
		LookaheadClasses: gm.classDef(s.LookaheadClasses),
		Rules:            make([][]ChainedClassRule, len(s.Rules)),
	}
	for i, set := range s.Rules {
		for _, rule := range set {
			out.Rules[i] = append(out.Rules[i], ChainedClassRule{
				Backtrack: copyClasses(rule.Backtrack),
				Input:     copyClasses(rule.Input),
				Lookahead: copyClasses(rule.Lookahead),
				Records:   copyRecords(rule.Records),
			})
		}
	}
	gm.out = out
}

func (gm *glyphMapper) VisitChainedCoverageContext(s *ChainedCoverageContext) {
	gm.out = &ChainedCoverageContext{
		Backtrack: gm.coverages(s.Backtrack),
		Input:     gm.coverages(s.Input),
		Lookahead: gm.coverages(s.Lookahead),
		Records:   copyRecords(s.Records),
	}
}

func (gm *glyphMapper) VisitReverseChain(s *ReverseChainSubst) {
	out := &ReverseChainSubst{
		Backtrack:   gm.coverages(s.Backtrack),
		Lookahead:   gm.coverages(s.Lookahead),
		Substitutes: make(map[ot.GlyphIndex]ot.GlyphIndex, len(s.Substitutes)),
	}
	for from, to := range s.Substitutes {
		if m, ok := gm.fn(from); ok {
			out.Substitutes[m] = gm.output(to)
		}
	}
	gm.out = out
}
