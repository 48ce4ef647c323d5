package otgsub

import (
	"fmt"

	"github.com/npillmayer/ligpatch/ot"
)

// reader reads sequentially from a segment. The first error sticks;
// subsequent reads return zero values.
type reader struct {
	seg ot.Segment
	pos int
	err error
}

func newReader(seg ot.Segment, pos int) *reader {
	return &reader{seg: seg, pos: pos}
}

func (r *reader) u16() uint16 {
	if r.err != nil {
		return 0
	}
	n, err := r.seg.U16(r.pos)
	r.err = err
	r.pos += 2
	return n
}

func (r *reader) u32() uint32 {
	if r.err != nil {
		return 0
	}
	n, err := r.seg.U32(r.pos)
	r.err = err
	r.pos += 4
	return n
}

func (r *reader) u16s(n int) []uint16 {
	if r.err != nil {
		return nil
	}
	v, err := r.seg.U16s(r.pos, n)
	r.err = err
	r.pos += 2 * n
	return v
}

func (r *reader) glyphs(n int) []ot.GlyphIndex {
	if r.err != nil {
		return nil
	}
	v, err := r.seg.Glyphs(r.pos, n)
	r.err = err
	r.pos += 2 * n
	return v
}

func (r *reader) records(n int) []SequenceLookupRecord {
	recs := make([]SequenceLookupRecord, 0, n)
	for i := 0; i < n && r.err == nil; i++ {
		recs = append(recs, SequenceLookupRecord{SequenceIndex: r.u16(), LookupListIndex: r.u16()})
	}
	return recs
}

// sub returns the segment at offset off from the start of seg.
func sub(seg ot.Segment, off int) (ot.Segment, error) {
	return seg.From(off)
}

func parseErr(section string, err error, format string, args ...any) error {
	return ot.Errorf(ot.TagGSUB, section, err, format, args...)
}

// --- Table ------------------------------------------------------------------

// Parse decodes a GSUB table.
func Parse(data []byte) (*Table, error) {
	seg := ot.Segment(data)
	r := newReader(seg, 0)
	t := &Table{MajorVersion: r.u16(), MinorVersion: r.u16()}
	scriptOff, featureOff, lookupOff := r.u16(), r.u16(), r.u16()
	var variationsOff uint32
	if t.MinorVersion >= 1 {
		variationsOff = r.u32()
	}
	if r.err != nil {
		return nil, parseErr("Header", r.err, "GSUB header")
	}
	if t.MajorVersion != 1 {
		return nil, parseErr("Header", ot.ErrUnsupportedFormat, "GSUB version %d.%d", t.MajorVersion, t.MinorVersion)
	}
	var err error
	if scriptOff != 0 {
		if t.Scripts, err = parseScriptList(seg, int(scriptOff)); err != nil {
			return nil, err
		}
	}
	if featureOff != 0 {
		if t.Features, err = parseFeatureList(seg, int(featureOff)); err != nil {
			return nil, err
		}
	}
	if lookupOff != 0 {
		if t.Lookups, err = parseLookupList(seg, int(lookupOff)); err != nil {
			return nil, err
		}
	}
	if variationsOff != 0 {
		if t.Variations, err = parseFeatureVariations(seg, int(variationsOff)); err != nil {
			return nil, err
		}
	}
	tracer().Debugf("GSUB %d.%d: %d scripts, %d features, %d lookups",
		t.MajorVersion, t.MinorVersion, len(t.Scripts), len(t.Features), len(t.Lookups))
	return t, nil
}

// --- Scripts and features ---------------------------------------------------

func parseScriptList(seg ot.Segment, off int) ([]ScriptRecord, error) {
	list, err := sub(seg, off)
	if err != nil {
		return nil, parseErr("ScriptList", err, "script list offset")
	}
	r := newReader(list, 0)
	n := int(r.u16())
	records := make([]ScriptRecord, 0, n)
	for i := 0; i < n && r.err == nil; i++ {
		tag, soff := ot.Tag(r.u32()), r.u16()
		script, err := parseScript(list, int(soff))
		if err != nil {
			return nil, err
		}
		records = append(records, ScriptRecord{Tag: tag, Script: script})
	}
	if r.err != nil {
		return nil, parseErr("ScriptList", r.err, "script records")
	}
	return records, nil
}

func parseScript(list ot.Segment, off int) (*Script, error) {
	seg, err := sub(list, off)
	if err != nil {
		return nil, parseErr("Script", err, "script offset")
	}
	r := newReader(seg, 0)
	script := &Script{}
	if defOff := r.u16(); defOff != 0 {
		if script.Default, err = parseLangSys(seg, int(defOff)); err != nil {
			return nil, err
		}
	}
	n := int(r.u16())
	for i := 0; i < n && r.err == nil; i++ {
		tag, loff := ot.Tag(r.u32()), r.u16()
		ls, err := parseLangSys(seg, int(loff))
		if err != nil {
			return nil, err
		}
		script.Languages = append(script.Languages, LangSysRecord{Tag: tag, LangSys: ls})
	}
	if r.err != nil {
		return nil, parseErr("Script", r.err, "language records")
	}
	return script, nil
}

func parseLangSys(script ot.Segment, off int) (*LangSys, error) {
	seg, err := sub(script, off)
	if err != nil {
		return nil, parseErr("LangSys", err, "langsys offset")
	}
	r := newReader(seg, 2) // skip lookupOrderOffset
	ls := &LangSys{RequiredFeature: r.u16()}
	ls.Features = r.u16s(int(r.u16()))
	if r.err != nil {
		return nil, parseErr("LangSys", r.err, "feature indices")
	}
	return ls, nil
}

func parseFeatureList(seg ot.Segment, off int) ([]FeatureRecord, error) {
	list, err := sub(seg, off)
	if err != nil {
		return nil, parseErr("FeatureList", err, "feature list offset")
	}
	r := newReader(list, 0)
	n := int(r.u16())
	records := make([]FeatureRecord, 0, n)
	for i := 0; i < n && r.err == nil; i++ {
		tag, foff := ot.Tag(r.u32()), r.u16()
		feature, err := parseFeature(list, int(foff), tag)
		if err != nil {
			return nil, err
		}
		records = append(records, FeatureRecord{Tag: tag, Feature: feature})
	}
	if r.err != nil {
		return nil, parseErr("FeatureList", r.err, "feature records")
	}
	return records, nil
}

func parseFeature(list ot.Segment, off int, tag ot.Tag) (*Feature, error) {
	seg, err := sub(list, off)
	if err != nil {
		return nil, parseErr("Feature", err, "feature offset")
	}
	r := newReader(seg, 0)
	paramsOff := r.u16()
	f := &Feature{Lookups: r.u16s(int(r.u16()))}
	if r.err != nil {
		return nil, parseErr("Feature", r.err, "feature '%s' lookup indices", tag)
	}
	if paramsOff != 0 {
		f.Params = parseFeatureParams(seg, int(paramsOff), tag)
	}
	return f, nil
}

// parseFeatureParams extracts the raw FeatureParams table of features
// 'size', 'ssXX' and 'cvXX'. Parameters of other features are dropped.
func parseFeatureParams(feature ot.Segment, off int, tag ot.Tag) []byte {
	name := tag.String()
	var n int
	switch {
	case name == "size":
		n = 10
	case name[:2] == "ss":
		n = 4
	case name[:2] == "cv":
		chars, err := feature.U16(off + 12)
		if err != nil {
			break
		}
		n = 14 + 3*int(chars)
	}
	if n > 0 {
		if params, err := feature.View(off, n); err == nil {
			return append([]byte(nil), params...)
		}
	}
	tracer().Infof("dropping feature parameters of feature '%s'", tag)
	return nil
}

// --- Lookups ----------------------------------------------------------------

func parseLookupList(seg ot.Segment, off int) ([]*Lookup, error) {
	list, err := sub(seg, off)
	if err != nil {
		return nil, parseErr("LookupList", err, "lookup list offset")
	}
	r := newReader(list, 0)
	offsets := r.u16s(int(r.u16()))
	if r.err != nil {
		return nil, parseErr("LookupList", r.err, "lookup offsets")
	}
	lookups := make([]*Lookup, len(offsets))
	for i, loff := range offsets {
		if lookups[i], err = parseLookup(list, int(loff)); err != nil {
			return nil, fmt.Errorf("lookup %d: %w", i, err)
		}
	}
	return lookups, nil
}

func parseLookup(list ot.Segment, off int) (*Lookup, error) {
	seg, err := sub(list, off)
	if err != nil {
		return nil, parseErr("Lookup", err, "lookup offset")
	}
	r := newReader(seg, 0)
	l := &Lookup{Type: LookupType(r.u16()), Flag: r.u16()}
	offsets := r.u16s(int(r.u16()))
	if l.Flag&UseMarkFilteringSet != 0 {
		l.MarkFilteringSet = r.u16()
	}
	if r.err != nil {
		return nil, parseErr("Lookup", r.err, "lookup header")
	}
	if l.Type == ExtensionType {
		l.Extension = true
		l.Type = 0
	}
	for _, soff := range offsets {
		stseg, err := sub(seg, int(soff))
		if err != nil {
			return nil, parseErr("Lookup", err, "subtable offset")
		}
		lt := l.Type
		if l.Extension {
			er := newReader(stseg, 0)
			format, extType, extOff := er.u16(), LookupType(er.u16()), er.u32()
			if er.err != nil || format != 1 {
				return nil, parseErr("Extension", ot.ErrUnsupportedFormat, "extension subtable format %d", format)
			}
			if lt == 0 {
				l.Type = extType
			} else if extType != lt {
				return nil, parseErr("Extension", ot.ErrUnsupportedFormat, "mixed extension types %d and %d", lt, extType)
			}
			lt = extType
			if stseg, err = sub(stseg, int(extOff)); err != nil {
				return nil, parseErr("Extension", err, "extension offset")
			}
		}
		st, err := parseSubtable(lt, stseg)
		if err != nil {
			return nil, err
		}
		l.Subtables = append(l.Subtables, st)
	}
	return l, nil
}

func parseSubtable(lt LookupType, seg ot.Segment) (Subtable, error) {
	format, err := seg.U16(0)
	if err != nil {
		return nil, parseErr(lt.String(), err, "subtable format")
	}
	var st Subtable
	switch {
	case lt == SingleType && format == 1:
		st, err = parseSingle1(seg)
	case lt == SingleType && format == 2:
		st, err = parseSingle2(seg)
	case lt == MultipleType && format == 1:
		var seqs map[ot.GlyphIndex][]ot.GlyphIndex
		seqs, err = parseGlyphSequences(seg)
		st = &MultipleSubst{Sequences: seqs}
	case lt == AlternateType && format == 1:
		var alts map[ot.GlyphIndex][]ot.GlyphIndex
		alts, err = parseGlyphSequences(seg)
		st = &AlternateSubst{Alternates: alts}
	case lt == LigatureType && format == 1:
		st, err = parseLigature(seg)
	case lt == ContextType && format == 1:
		st, err = parseContext1(seg)
	case lt == ContextType && format == 2:
		st, err = parseContext2(seg)
	case lt == ContextType && format == 3:
		st, err = parseContext3(seg)
	case lt == ChainContextType && format == 1:
		st, err = parseChain1(seg)
	case lt == ChainContextType && format == 2:
		st, err = parseChain2(seg)
	case lt == ChainContextType && format == 3:
		st, err = parseChain3(seg)
	case lt == ReverseChainType && format == 1:
		st, err = parseReverseChain(seg)
	default:
		return nil, parseErr(lt.String(), ot.ErrUnsupportedFormat, "lookup type %d format %d", lt, format)
	}
	if err != nil {
		return nil, err
	}
	return st, nil
}

// --- Coverage and class definitions -----------------------------------------

func parseCoverage(parent ot.Segment, off int) (Coverage, error) {
	seg, err := sub(parent, off)
	if err != nil {
		return nil, parseErr("Coverage", err, "coverage offset")
	}
	r := newReader(seg, 0)
	format, n := r.u16(), int(r.u16())
	var cov Coverage
	switch format {
	case 1:
		cov = r.glyphs(n)
	case 2:
		for i := 0; i < n && r.err == nil; i++ {
			start, end, _ := r.u16(), r.u16(), r.u16()
			for g := uint32(start); g <= uint32(end); g++ {
				cov = append(cov, ot.GlyphIndex(g))
			}
		}
	default:
		return nil, parseErr("Coverage", ot.ErrUnsupportedFormat, "coverage format %d", format)
	}
	if r.err != nil {
		return nil, parseErr("Coverage", r.err, "coverage format %d", format)
	}
	return cov, nil
}

func parseCoverages(parent ot.Segment, offsets []uint16) ([]Coverage, error) {
	covs := make([]Coverage, len(offsets))
	for i, off := range offsets {
		cov, err := parseCoverage(parent, int(off))
		if err != nil {
			return nil, err
		}
		covs[i] = cov
	}
	return covs, nil
}

func parseClassDef(parent ot.Segment, off int) (ClassDef, error) {
	cd := make(ClassDef)
	if off == 0 {
		return cd, nil
	}
	seg, err := sub(parent, off)
	if err != nil {
		return nil, parseErr("ClassDef", err, "class definition offset")
	}
	r := newReader(seg, 0)
	switch format := r.u16(); format {
	case 1:
		start := r.u16()
		for i, class := range r.u16s(int(r.u16())) {
			if class != 0 {
				cd[ot.GlyphIndex(int(start)+i)] = class
			}
		}
	case 2:
		n := int(r.u16())
		for i := 0; i < n && r.err == nil; i++ {
			start, end, class := r.u16(), r.u16(), r.u16()
			if class == 0 {
				continue
			}
			for g := uint32(start); g <= uint32(end); g++ {
				cd[ot.GlyphIndex(g)] = class
			}
		}
	default:
		return nil, parseErr("ClassDef", ot.ErrUnsupportedFormat, "class definition format %d", format)
	}
	if r.err != nil {
		return nil, parseErr("ClassDef", r.err, "class definition")
	}
	return cd, nil
}

// --- Substitution subtables -------------------------------------------------

func parseSingle1(seg ot.Segment) (Subtable, error) {
	r := newReader(seg, 2)
	covOff, delta := r.u16(), r.u16()
	if r.err != nil {
		return nil, parseErr("Single", r.err, "format 1 header")
	}
	cov, err := parseCoverage(seg, int(covOff))
	if err != nil {
		return nil, err
	}
	s := &SingleSubst{Mapping: make(map[ot.GlyphIndex]ot.GlyphIndex, len(cov))}
	for _, g := range cov {
		s.Mapping[g] = ot.GlyphIndex(uint16(g) + delta)
	}
	return s, nil
}

func parseSingle2(seg ot.Segment) (Subtable, error) {
	r := newReader(seg, 2)
	covOff := r.u16()
	substitutes := r.glyphs(int(r.u16()))
	if r.err != nil {
		return nil, parseErr("Single", r.err, "format 2 substitutes")
	}
	cov, err := parseCoverage(seg, int(covOff))
	if err != nil {
		return nil, err
	}
	if len(cov) != len(substitutes) {
		return nil, parseErr("Single", ot.ErrBufferBounds, "coverage size %d does not match %d substitutes", len(cov), len(substitutes))
	}
	s := &SingleSubst{Mapping: make(map[ot.GlyphIndex]ot.GlyphIndex, len(cov))}
	for i, g := range cov {
		s.Mapping[g] = substitutes[i]
	}
	return s, nil
}

// parseCoveredSets reads a coverage followed by an array of offsets to sets,
// one per covered glyph, and calls fn for every non-null set.
func parseCoveredSets(seg ot.Segment, section string, fn func(ot.GlyphIndex, ot.Segment) error) error {
	r := newReader(seg, 2)
	covOff := r.u16()
	offsets := r.u16s(int(r.u16()))
	if r.err != nil {
		return parseErr(section, r.err, "set offsets")
	}
	cov, err := parseCoverage(seg, int(covOff))
	if err != nil {
		return err
	}
	if len(cov) < len(offsets) {
		return parseErr(section, ot.ErrBufferBounds, "%d sets for %d covered glyphs", len(offsets), len(cov))
	}
	for i, off := range offsets {
		if off == 0 {
			continue
		}
		set, err := sub(seg, int(off))
		if err != nil {
			return parseErr(section, err, "set offset")
		}
		if err = fn(cov[i], set); err != nil {
			return err
		}
	}
	return nil
}

// parseOffsetList calls fn for each non-null entry of an offset array
// which starts with its count at position 0 of seg.
func parseOffsetList(seg ot.Segment, section string, fn func(ot.Segment) error) error {
	r := newReader(seg, 0)
	offsets := r.u16s(int(r.u16()))
	if r.err != nil {
		return parseErr(section, r.err, "offsets")
	}
	for _, off := range offsets {
		if off == 0 {
			continue
		}
		item, err := sub(seg, int(off))
		if err != nil {
			return parseErr(section, err, "offset")
		}
		if err = fn(item); err != nil {
			return err
		}
	}
	return nil
}

func parseGlyphSequences(seg ot.Segment) (map[ot.GlyphIndex][]ot.GlyphIndex, error) {
	seqs := make(map[ot.GlyphIndex][]ot.GlyphIndex)
	err := parseCoveredSets(seg, "Sequence", func(g ot.GlyphIndex, set ot.Segment) error {
		r := newReader(set, 0)
		glyphs := r.glyphs(int(r.u16()))
		if r.err != nil {
			return parseErr("Sequence", r.err, "glyph sequence")
		}
		seqs[g] = glyphs
		return nil
	})
	return seqs, err
}

func parseLigature(seg ot.Segment) (Subtable, error) {
	s := &LigatureSubst{Ligatures: make(map[ot.GlyphIndex][]Ligature)}
	err := parseCoveredSets(seg, "LigatureSet", func(g ot.GlyphIndex, set ot.Segment) error {
		return parseOffsetList(set, "Ligature", func(lig ot.Segment) error {
			r := newReader(lig, 0)
			glyph, n := ot.GlyphIndex(r.u16()), int(r.u16())
			if n == 0 {
				return parseErr("Ligature", ot.ErrBufferBounds, "ligature without components")
			}
			comps := r.glyphs(n - 1)
			if r.err != nil {
				return parseErr("Ligature", r.err, "components")
			}
			s.Ligatures[g] = append(s.Ligatures[g], Ligature{Components: comps, Glyph: glyph})
			return nil
		})
	})
	return s, err
}

// --- Contextual subtables ---------------------------------------------------

func parseContext1(seg ot.Segment) (Subtable, error) {
	s := &SequenceContext{Rules: make(map[ot.GlyphIndex][]SequenceRule)}
	err := parseCoveredSets(seg, "SequenceRuleSet", func(g ot.GlyphIndex, set ot.Segment) error {
		rules := []SequenceRule{}
		err := parseOffsetList(set, "SequenceRule", func(rule ot.Segment) error {
			r := newReader(rule, 0)
			n, m := int(r.u16()), int(r.u16())
			if n == 0 {
				return parseErr("SequenceRule", ot.ErrBufferBounds, "empty input sequence")
			}
			input := r.glyphs(n - 1)
			records := r.records(m)
			if r.err != nil {
				return parseErr("SequenceRule", r.err, "rule")
			}
			rules = append(rules, SequenceRule{Input: input, Records: records})
			return nil
		})
		s.Rules[g] = rules
		return err
	})
	return s, err
}

func parseClassRules(set ot.Segment) ([]ClassSequenceRule, error) {
	rules := []ClassSequenceRule{}
	err := parseOffsetList(set, "ClassSequenceRule", func(rule ot.Segment) error {
		r := newReader(rule, 0)
		n, m := int(r.u16()), int(r.u16())
		if n == 0 {
			return parseErr("ClassSequenceRule", ot.ErrBufferBounds, "empty input sequence")
		}
		input := r.u16s(n - 1)
		records := r.records(m)
		if r.err != nil {
			return parseErr("ClassSequenceRule", r.err, "rule")
		}
		rules = append(rules, ClassSequenceRule{Input: input, Records: records})
		return nil
	})
	return rules, err
}

func parseContext2(seg ot.Segment) (Subtable, error) {
	r := newReader(seg, 2)
	covOff, cdOff := r.u16(), r.u16()
	offsets := r.u16s(int(r.u16()))
	if r.err != nil {
		return nil, parseErr("ClassSequenceContext", r.err, "header")
	}
	var err error
	s := &ClassSequenceContext{Rules: make([][]ClassSequenceRule, len(offsets))}
	if s.Coverage, err = parseCoverage(seg, int(covOff)); err != nil {
		return nil, err
	}
	if s.Classes, err = parseClassDef(seg, int(cdOff)); err != nil {
		return nil, err
	}
	for class, off := range offsets {
		if off == 0 {
			continue
		}
		set, err := sub(seg, int(off))
		if err != nil {
			return nil, parseErr("ClassSequenceRuleSet", err, "offset")
		}
		if s.Rules[class], err = parseClassRules(set); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func parseContext3(seg ot.Segment) (Subtable, error) {
	r := newReader(seg, 2)
	n, m := int(r.u16()), int(r.u16())
	offsets := r.u16s(n)
	records := r.records(m)
	if r.err != nil {
		return nil, parseErr("CoverageSequenceContext", r.err, "header")
	}
	input, err := parseCoverages(seg, offsets)
	if err != nil {
		return nil, err
	}
	return &CoverageSequenceContext{Input: input, Records: records}, nil
}

func parseChain1(seg ot.Segment) (Subtable, error) {
	s := NewChainedSequenceContext()
	err := parseCoveredSets(seg, "ChainedSequenceRuleSet", func(g ot.GlyphIndex, set ot.Segment) error {
		rules := []ChainedSequenceRule{}
		err := parseOffsetList(set, "ChainedSequenceRule", func(rule ot.Segment) error {
			r := newReader(rule, 0)
			var cr ChainedSequenceRule
			cr.Backtrack = r.glyphs(int(r.u16()))
			n := int(r.u16())
			if n == 0 && r.err == nil {
				return parseErr("ChainedSequenceRule", ot.ErrBufferBounds, "empty input sequence")
			}
			cr.Input = r.glyphs(max(n-1, 0))
			cr.Lookahead = r.glyphs(int(r.u16()))
			cr.Records = r.records(int(r.u16()))
			if r.err != nil {
				return parseErr("ChainedSequenceRule", r.err, "rule")
			}
			rules = append(rules, cr)
			return nil
		})
		s.Rules[g] = rules
		return err
	})
	return s, err
}

func parseChain2(seg ot.Segment) (Subtable, error) {
	r := newReader(seg, 2)
	covOff, btOff, inOff, laOff := r.u16(), r.u16(), r.u16(), r.u16()
	offsets := r.u16s(int(r.u16()))
	if r.err != nil {
		return nil, parseErr("ChainedClassContext", r.err, "header")
	}
	var err error
	s := &ChainedClassContext{Rules: make([][]ChainedClassRule, len(offsets))}
	if s.Coverage, err = parseCoverage(seg, int(covOff)); err != nil {
		return nil, err
	}
	if s.BacktrackClasses, err = parseClassDef(seg, int(btOff)); err != nil {
		return nil, err
	}
	if s.InputClasses, err = parseClassDef(seg, int(inOff)); err != nil {
		return nil, err
	}
	if s.LookaheadClasses, err = parseClassDef(seg, int(laOff)); err != nil {
		return nil, err
	}
	for class, off := range offsets {
		if off == 0 {
			continue
		}
		set, err := sub(seg, int(off))
		if err != nil {
			return nil, parseErr("ChainedClassRuleSet", err, "offset")
		}
		rules := []ChainedClassRule{}
		err = parseOffsetList(set, "ChainedClassRule", func(rule ot.Segment) error {
			r := newReader(rule, 0)
			var cr ChainedClassRule
			cr.Backtrack = r.u16s(int(r.u16()))
			n := int(r.u16())
			if n == 0 && r.err == nil {
				return parseErr("ChainedClassRule", ot.ErrBufferBounds, "empty input sequence")
			}
			cr.Input = r.u16s(max(n-1, 0))
			cr.Lookahead = r.u16s(int(r.u16()))
			cr.Records = r.records(int(r.u16()))
			if r.err != nil {
				return parseErr("ChainedClassRule", r.err, "rule")
			}
			rules = append(rules, cr)
			return nil
		})
		if err != nil {
			return nil, err
		}
		s.Rules[class] = rules
	}
	return s, nil
}

func parseChain3(seg ot.Segment) (Subtable, error) {
	r := newReader(seg, 2)
	btOffs := r.u16s(int(r.u16()))
	inOffs := r.u16s(int(r.u16()))
	laOffs := r.u16s(int(r.u16()))
	records := r.records(int(r.u16()))
	if r.err != nil {
		return nil, parseErr("ChainedCoverageContext", r.err, "header")
	}
	s := &ChainedCoverageContext{Records: records}
	var err error
	if s.Backtrack, err = parseCoverages(seg, btOffs); err != nil {
		return nil, err
	}
	if s.Input, err = parseCoverages(seg, inOffs); err != nil {
		return nil, err
	}
	if s.Lookahead, err = parseCoverages(seg, laOffs); err != nil {
		return nil, err
	}
	return s, nil
}

func parseReverseChain(seg ot.Segment) (Subtable, error) {
	r := newReader(seg, 2)
	covOff := r.u16()
	btOffs := r.u16s(int(r.u16()))
	laOffs := r.u16s(int(r.u16()))
	substitutes := r.glyphs(int(r.u16()))
	if r.err != nil {
		return nil, parseErr("ReverseChain", r.err, "header")
	}
	cov, err := parseCoverage(seg, int(covOff))
	if err != nil {
		return nil, err
	}
	if len(cov) != len(substitutes) {
		return nil, parseErr("ReverseChain", ot.ErrBufferBounds, "coverage size %d does not match %d substitutes", len(cov), len(substitutes))
	}
	s := &ReverseChainSubst{Substitutes: make(map[ot.GlyphIndex]ot.GlyphIndex, len(cov))}
	for i, g := range cov {
		s.Substitutes[g] = substitutes[i]
	}
	if s.Backtrack, err = parseCoverages(seg, btOffs); err != nil {
		return nil, err
	}
	if s.Lookahead, err = parseCoverages(seg, laOffs); err != nil {
		return nil, err
	}
	return s, nil
}
