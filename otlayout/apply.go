package otlayout

import (
	"github.com/npillmayer/ligpatch/ot"
	"github.com/npillmayer/ligpatch/otgsub"
)

// maxNesting bounds the depth of lookups invoked by contextual rules.
const maxNesting = 64

// ApplyLookup runs lookup inx of gsub as a full pass over buf and returns the
// resulting buffer. Reverse chaining lookups run from the end of the buffer.
func ApplyLookup(gsub *otgsub.Table, inx int, buf GlyphSlice) GlyphSlice {
	if inx < 0 || inx >= len(gsub.Lookups) {
		tracer().Errorf("no lookup %d", inx)
		return buf
	}
	l := gsub.Lookups[inx]
	if l.Type == otgsub.ReverseChainType {
		for pos := len(buf) - 1; pos >= 0; pos-- {
			buf, _, _ = applyAt(gsub, l, buf, pos, 0)
		}
		return buf
	}
	for pos := 0; pos < len(buf); {
		n := len(buf)
		var next int
		var ok bool
		buf, next, ok = applyAt(gsub, l, buf, pos, 0)
		switch {
		case ok && next > pos:
			pos = next
		case ok && len(buf) < n: // glyph at pos deleted
		default:
			pos++
		}
	}
	return buf
}

// applyAt tries the subtables of l at position pos, in order. It returns the
// buffer, the position to continue from and whether a subtable applied.
func applyAt(gsub *otgsub.Table, l *otgsub.Lookup, buf GlyphSlice, pos, depth int) (GlyphSlice, int, bool) {
	if pos >= len(buf) {
		return buf, pos, false
	}
	for _, st := range l.Subtables {
		if out, next, ok := applySubtable(gsub, st, buf, pos, depth); ok {
			return out, next, true
		}
	}
	return buf, pos, false
}

func applySubtable(gsub *otgsub.Table, st otgsub.Subtable, buf GlyphSlice, pos, depth int) (GlyphSlice, int, bool) {
	g := buf[pos]
	switch s := st.(type) {
	case *otgsub.SingleSubst:
		if to, ok := s.Mapping[g]; ok {
			tracer().Debugf("single subst %d -> %d at %d", g, to, pos)
			buf[pos] = to
			return buf, pos + 1, true
		}
	case *otgsub.MultipleSubst:
		if seq, ok := s.Sequences[g]; ok {
			return buf.Replace(pos, pos+1, seq), pos + len(seq), true
		}
	case *otgsub.AlternateSubst:
		if alts, ok := s.Alternates[g]; ok && len(alts) > 0 {
			buf[pos] = alts[0]
			return buf, pos + 1, true
		}
	case *otgsub.LigatureSubst:
		for _, lig := range s.Ligatures[g] {
			if buf.matchAt(pos+1, lig.Components) {
				tracer().Debugf("ligature %d at %d", lig.Glyph, pos)
				return buf.Replace(pos, pos+1+len(lig.Components), []ot.GlyphIndex{lig.Glyph}), pos + 1, true
			}
		}
	case *otgsub.SequenceContext:
		for _, rule := range s.Rules[g] {
			if buf.matchAt(pos+1, rule.Input) {
				return applyRecords(gsub, buf, pos, 1+len(rule.Input), rule.Records, depth)
			}
		}
	case *otgsub.ClassSequenceContext:
		if !s.Coverage.Contains(g) {
			break
		}
		cls := int(s.Classes.Class(g))
		if cls >= len(s.Rules) {
			break
		}
		for _, rule := range s.Rules[cls] {
			if matchClasses(buf, pos+1, rule.Input, s.Classes) {
				return applyRecords(gsub, buf, pos, 1+len(rule.Input), rule.Records, depth)
			}
		}
	case *otgsub.CoverageSequenceContext:
		if matchCoverages(buf, pos, s.Input) {
			return applyRecords(gsub, buf, pos, len(s.Input), s.Records, depth)
		}
	case *otgsub.ChainedSequenceContext:
		for _, rule := range s.Rules[g] {
			n := 1 + len(rule.Input)
			if buf.matchAt(pos+1, rule.Input) && buf.matchBefore(pos, rule.Backtrack) &&
				buf.matchAt(pos+n, rule.Lookahead) {
				return applyRecords(gsub, buf, pos, n, rule.Records, depth)
			}
		}
	case *otgsub.ChainedClassContext:
		if !s.Coverage.Contains(g) {
			break
		}
		cls := int(s.InputClasses.Class(g))
		if cls >= len(s.Rules) {
			break
		}
		for _, rule := range s.Rules[cls] {
			n := 1 + len(rule.Input)
			if matchClasses(buf, pos+1, rule.Input, s.InputClasses) &&
				matchClassesBefore(buf, pos, rule.Backtrack, s.BacktrackClasses) &&
				matchClasses(buf, pos+n, rule.Lookahead, s.LookaheadClasses) {
				return applyRecords(gsub, buf, pos, n, rule.Records, depth)
			}
		}
	case *otgsub.ChainedCoverageContext:
		n := len(s.Input)
		if matchCoverages(buf, pos, s.Input) && matchCoveragesBefore(buf, pos, s.Backtrack) &&
			matchCoverages(buf, pos+n, s.Lookahead) {
			return applyRecords(gsub, buf, pos, n, s.Records, depth)
		}
	case *otgsub.ReverseChainSubst:
		if to, ok := s.Substitutes[g]; ok && matchCoveragesBefore(buf, pos, s.Backtrack) &&
			matchCoverages(buf, pos+1, s.Lookahead) {
			buf[pos] = to
			return buf, pos, true
		}
	}
	return buf, pos, false
}

// applyRecords invokes the lookups of a matched contextual rule. The input
// sequence starts at pos and has n glyphs; nested lookups changing the
// number of glyphs move the end of the sequence. Rules without records
// apply nonetheless and consume their input.
func applyRecords(gsub *otgsub.Table, buf GlyphSlice, pos, n int, records []otgsub.SequenceLookupRecord,
	depth int) (GlyphSlice, int, bool) {
	//
	end := pos + n
	if depth >= maxNesting {
		tracer().Errorf("lookups nested deeper than %d", maxNesting)
		return buf, end, true
	}
	for _, rec := range records {
		inx := int(rec.LookupListIndex)
		at := pos + int(rec.SequenceIndex)
		if inx >= len(gsub.Lookups) || at >= end {
			tracer().Errorf("invalid lookup record %d@%d", inx, rec.SequenceIndex)
			continue
		}
		before := len(buf)
		buf, _, _ = applyAt(gsub, gsub.Lookups[inx], buf, at, depth+1)
		end += len(buf) - before
	}
	if end < pos {
		end = pos
	}
	return buf, end, true
}

func matchClasses(buf GlyphSlice, i int, classes []uint16, cd otgsub.ClassDef) bool {
	if i+len(classes) > len(buf) {
		return false
	}
	for k, c := range classes {
		if cd.Class(buf[i+k]) != c {
			return false
		}
	}
	return true
}

func matchClassesBefore(buf GlyphSlice, i int, classes []uint16, cd otgsub.ClassDef) bool {
	if i-len(classes) < 0 {
		return false
	}
	for k, c := range classes {
		if cd.Class(buf[i-1-k]) != c {
			return false
		}
	}
	return true
}

func matchCoverages(buf GlyphSlice, i int, covs []otgsub.Coverage) bool {
	if i+len(covs) > len(buf) {
		return false
	}
	for k, cov := range covs {
		if !cov.Contains(buf[i+k]) {
			return false
		}
	}
	return true
}

func matchCoveragesBefore(buf GlyphSlice, i int, covs []otgsub.Coverage) bool {
	if i-len(covs) < 0 {
		return false
	}
	for k, cov := range covs {
		if !cov.Contains(buf[i-1-k]) {
			return false
		}
	}
	return true
}
