package otgsub

import (
	"errors"
	"fmt"
	"sort"

	"github.com/npillmayer/ligpatch/ot"
)

// writer builds a table with a header followed by child tables. Offsets to
// children are 16 bit, relative to the start of the table.
type writer struct {
	buf []byte
	err error
}

func (w *writer) u16(v uint16) {
	w.buf = ot.AppendU16(w.buf, v)
}

func (w *writer) u32(v uint32) {
	w.buf = ot.AppendU32(w.buf, v)
}

func (w *writer) glyphs(gs []ot.GlyphIndex) {
	w.buf = ot.AppendGlyphs(w.buf, gs)
}

func (w *writer) classes(cs []uint16) {
	for _, c := range cs {
		w.u16(c)
	}
}

func (w *writer) records(recs []SequenceLookupRecord) {
	for _, rec := range recs {
		w.u16(rec.SequenceIndex)
		w.u16(rec.LookupListIndex)
	}
}

// reserve writes a null offset and returns its position.
func (w *writer) reserve() int {
	w.buf = append(w.buf, 0, 0)
	return len(w.buf) - 2
}

// link appends child and patches the offset at position at.
func (w *writer) link(at int, child []byte) {
	if w.err != nil {
		return
	}
	if len(w.buf) > 0xffff {
		w.err = ot.ErrOffsetOverflow
		return
	}
	ot.PutU16(w.buf, at, uint16(len(w.buf)))
	w.buf = append(w.buf, child...)
}

func (w *writer) bytes() ([]byte, error) {
	return w.buf, w.err
}

// --- Table ------------------------------------------------------------------

// Encode writes the GSUB table. If 16-bit offsets to lookup subtables
// overflow, all lookups are written as extension lookups.
func (t *Table) Encode() ([]byte, error) {
	data, err := t.encode(false)
	if errors.Is(err, ot.ErrOffsetOverflow) {
		tracer().Infof("GSUB offsets overflow, using extension lookups")
		data, err = t.encode(true)
	}
	return data, err
}

func (t *Table) encode(forceExtension bool) ([]byte, error) {
	minor := t.MinorVersion
	if t.Variations != nil {
		minor = 1
	}
	w := &writer{}
	w.u16(1)
	w.u16(minor)
	scriptAt, featureAt, lookupAt := w.reserve(), w.reserve(), w.reserve()
	variationsAt := -1
	if minor >= 1 {
		variationsAt = len(w.buf)
		w.u32(0)
	}
	w.link(scriptAt, t.encodeScriptList())
	features, err := t.encodeFeatureList()
	if err != nil {
		return nil, err
	}
	w.link(featureAt, features)
	lookups, err := t.encodeLookupList(forceExtension)
	if err != nil {
		return nil, err
	}
	w.link(lookupAt, lookups)
	if w.err != nil {
		return nil, fmt.Errorf("GSUB: %w", w.err)
	}
	if variationsAt >= 0 && t.Variations != nil {
		ot.PutU32(w.buf, variationsAt, uint32(len(w.buf)))
		w.buf = append(w.buf, t.Variations.encode()...)
	}
	return w.buf, nil
}

func (t *Table) encodeScriptList() []byte {
	scripts := append([]ScriptRecord(nil), t.Scripts...)
	sort.SliceStable(scripts, func(i, j int) bool { return scripts[i].Tag < scripts[j].Tag })
	w := &writer{}
	w.u16(uint16(len(scripts)))
	at := make([]int, len(scripts))
	for i, rec := range scripts {
		w.u32(uint32(rec.Tag))
		at[i] = w.reserve()
	}
	for i, rec := range scripts {
		w.link(at[i], encodeScript(rec.Script))
	}
	return w.buf
}

func encodeScript(s *Script) []byte {
	langs := append([]LangSysRecord(nil), s.Languages...)
	sort.SliceStable(langs, func(i, j int) bool { return langs[i].Tag < langs[j].Tag })
	w := &writer{}
	defAt := w.reserve()
	w.u16(uint16(len(langs)))
	at := make([]int, len(langs))
	for i, rec := range langs {
		w.u32(uint32(rec.Tag))
		at[i] = w.reserve()
	}
	if s.Default != nil {
		w.link(defAt, encodeLangSys(s.Default))
	}
	for i, rec := range langs {
		w.link(at[i], encodeLangSys(rec.LangSys))
	}
	return w.buf
}

func encodeLangSys(ls *LangSys) []byte {
	w := &writer{}
	w.u16(0)
	w.u16(ls.RequiredFeature)
	w.u16(uint16(len(ls.Features)))
	w.classes(ls.Features)
	return w.buf
}

func (t *Table) encodeFeatureList() ([]byte, error) {
	w := &writer{}
	w.u16(uint16(len(t.Features)))
	at := make([]int, len(t.Features))
	for i, rec := range t.Features {
		w.u32(uint32(rec.Tag))
		at[i] = w.reserve()
	}
	for i, rec := range t.Features {
		w.link(at[i], encodeFeature(rec.Feature))
	}
	return w.bytes()
}

func encodeFeature(f *Feature) []byte {
	w := &writer{}
	paramsAt := w.reserve()
	w.u16(uint16(len(f.Lookups)))
	w.classes(f.Lookups)
	if len(f.Params) > 0 {
		w.link(paramsAt, f.Params)
	}
	return w.buf
}

// extensionStub remembers an extension subtable whose 32-bit offset is
// patched once the position of the wrapped subtable is known.
type extensionStub struct {
	at   int // position of the stub within the lookup list
	data []byte
}

func (t *Table) encodeLookupList(forceExtension bool) ([]byte, error) {
	w := &writer{}
	w.u16(uint16(len(t.Lookups)))
	at := make([]int, len(t.Lookups))
	for i := range t.Lookups {
		at[i] = w.reserve()
	}
	var stubs []extensionStub
	for i, l := range t.Lookups {
		subtables := make([][]byte, len(l.Subtables))
		for j, st := range l.Subtables {
			data, err := EncodeSubtable(st)
			if err != nil {
				return nil, fmt.Errorf("lookup %d, subtable %d: %w", i, j, err)
			}
			subtables[j] = data
		}
		start := len(w.buf)
		if l.Extension || forceExtension {
			lw, offsets := encodeLookupHeader(l, ExtensionType, len(subtables))
			for j, data := range subtables {
				stub := len(lw.buf)
				ot.PutU16(lw.buf, offsets[j], uint16(stub))
				lw.u16(1)
				lw.u16(uint16(l.Type))
				lw.u32(0)
				stubs = append(stubs, extensionStub{at: start + stub, data: data})
			}
			w.link(at[i], lw.buf)
		} else {
			lw, offsets := encodeLookupHeader(l, l.Type, len(subtables))
			for j, data := range subtables {
				lw.link(offsets[j], data)
			}
			data, err := lw.bytes()
			if err != nil {
				return nil, fmt.Errorf("lookup %d: %w", i, err)
			}
			w.link(at[i], data)
		}
	}
	if w.err != nil {
		return nil, w.err
	}
	for _, stub := range stubs {
		ot.PutU32(w.buf, stub.at+4, uint32(len(w.buf)-stub.at))
		w.buf = append(w.buf, stub.data...)
	}
	return w.buf, nil
}

func encodeLookupHeader(l *Lookup, lt LookupType, n int) (*writer, []int) {
	w := &writer{}
	w.u16(uint16(lt))
	w.u16(l.Flag)
	w.u16(uint16(n))
	offsets := make([]int, n)
	for j := range offsets {
		offsets[j] = w.reserve()
	}
	if l.Flag&UseMarkFilteringSet != 0 {
		w.u16(l.MarkFilteringSet)
	}
	return w, offsets
}

// --- Coverage and class definitions -----------------------------------------

func encodeCoverage(cov Coverage) []byte {
	glyphs := cov.normalized()
	type rng struct{ start, end ot.GlyphIndex }
	var ranges []rng
	for _, g := range glyphs {
		if n := len(ranges); n > 0 && ranges[n-1].end+1 == g {
			ranges[n-1].end = g
			continue
		}
		ranges = append(ranges, rng{g, g})
	}
	w := &writer{}
	if 6*len(ranges) < 2*len(glyphs) {
		w.u16(2)
		w.u16(uint16(len(ranges)))
		inx := 0
		for _, r := range ranges {
			w.u16(uint16(r.start))
			w.u16(uint16(r.end))
			w.u16(uint16(inx))
			inx += int(r.end-r.start) + 1
		}
		return w.buf
	}
	w.u16(1)
	w.u16(uint16(len(glyphs)))
	w.glyphs(glyphs)
	return w.buf
}

func encodeClassDef(cd ClassDef) []byte {
	glyphs := make([]ot.GlyphIndex, 0, len(cd))
	for g, c := range cd {
		if c != 0 {
			glyphs = append(glyphs, g)
		}
	}
	sort.Slice(glyphs, func(i, j int) bool { return glyphs[i] < glyphs[j] })
	type rng struct {
		start, end ot.GlyphIndex
		class      uint16
	}
	var ranges []rng
	for _, g := range glyphs {
		if n := len(ranges); n > 0 && ranges[n-1].end+1 == g && ranges[n-1].class == cd[g] {
			ranges[n-1].end = g
			continue
		}
		ranges = append(ranges, rng{g, g, cd[g]})
	}
	w := &writer{}
	if len(glyphs) > 0 {
		span := int(glyphs[len(glyphs)-1]-glyphs[0]) + 1
		if 2*span+4 < 6*len(ranges) {
			w.u16(1)
			w.u16(uint16(glyphs[0]))
			w.u16(uint16(span))
			for g := glyphs[0]; int(g-glyphs[0]) < span; g++ {
				w.u16(cd[g])
			}
			return w.buf
		}
	}
	w.u16(2)
	w.u16(uint16(len(ranges)))
	for _, r := range ranges {
		w.u16(uint16(r.start))
		w.u16(uint16(r.end))
		w.u16(r.class)
	}
	return w.buf
}

// sortedKeys returns the keys of a glyph-keyed map in ascending order.
func sortedKeys[V any](m map[ot.GlyphIndex]V) []ot.GlyphIndex {
	keys := make([]ot.GlyphIndex, 0, len(m))
	for g := range m {
		keys = append(keys, g)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// --- Subtables --------------------------------------------------------------

// EncodeSubtable writes a lookup subtable, without extension wrapping.
func EncodeSubtable(st Subtable) ([]byte, error) {
	enc := &subtableEncoder{w: &writer{}}
	st.Accept(enc)
	return enc.w.bytes()
}

// subtableEncoder implements Visitor to encode subtables.
type subtableEncoder struct {
	w *writer
}

// coveredSets writes format, coverage offset and one offset per covered
// glyph, linking the coverage and the non-empty sets.
func (enc *subtableEncoder) coveredSets(format uint16, keys []ot.GlyphIndex, set func(ot.GlyphIndex) []byte) {
	w := enc.w
	w.u16(format)
	covAt := w.reserve()
	w.u16(uint16(len(keys)))
	at := make([]int, len(keys))
	for i := range keys {
		at[i] = w.reserve()
	}
	w.link(covAt, encodeCoverage(keys))
	for i, g := range keys {
		if data := set(g); data != nil {
			w.link(at[i], data)
		}
	}
}

// offsetList writes a count followed by offsets to items.
func offsetList(items [][]byte) ([]byte, error) {
	w := &writer{}
	w.u16(uint16(len(items)))
	at := make([]int, len(items))
	for i := range items {
		at[i] = w.reserve()
	}
	for i, item := range items {
		w.link(at[i], item)
	}
	return w.bytes()
}

func (enc *subtableEncoder) setErr(err error) {
	if err != nil && enc.w.err == nil {
		enc.w.err = err
	}
}

func (enc *subtableEncoder) VisitSingle(s *SingleSubst) {
	keys := sortedKeys(s.Mapping)
	w := enc.w
	delta, uniform := uint16(0), true
	for i, g := range keys {
		d := uint16(s.Mapping[g]) - uint16(g)
		if i == 0 {
			delta = d
		} else if d != delta {
			uniform = false
		}
	}
	if uniform && len(keys) > 0 {
		w.u16(1)
		covAt := w.reserve()
		w.u16(delta)
		w.link(covAt, encodeCoverage(keys))
		return
	}
	w.u16(2)
	covAt := w.reserve()
	w.u16(uint16(len(keys)))
	for _, g := range keys {
		w.u16(uint16(s.Mapping[g]))
	}
	w.link(covAt, encodeCoverage(keys))
}

func encodeGlyphSequence(glyphs []ot.GlyphIndex) []byte {
	w := &writer{}
	w.u16(uint16(len(glyphs)))
	w.glyphs(glyphs)
	return w.buf
}

func (enc *subtableEncoder) VisitMultiple(s *MultipleSubst) {
	enc.coveredSets(1, sortedKeys(s.Sequences), func(g ot.GlyphIndex) []byte {
		return encodeGlyphSequence(s.Sequences[g])
	})
}

func (enc *subtableEncoder) VisitAlternate(s *AlternateSubst) {
	enc.coveredSets(1, sortedKeys(s.Alternates), func(g ot.GlyphIndex) []byte {
		return encodeGlyphSequence(s.Alternates[g])
	})
}

func (enc *subtableEncoder) VisitLigature(s *LigatureSubst) {
	enc.coveredSets(1, sortedKeys(s.Ligatures), func(g ot.GlyphIndex) []byte {
		items := make([][]byte, len(s.Ligatures[g]))
		for i, lig := range s.Ligatures[g] {
			w := &writer{}
			w.u16(uint16(lig.Glyph))
			w.u16(uint16(len(lig.Components) + 1))
			w.glyphs(lig.Components)
			items[i] = w.buf
		}
		data, err := offsetList(items)
		enc.setErr(err)
		return data
	})
}

func (enc *subtableEncoder) VisitSequenceContext(s *SequenceContext) {
	enc.coveredSets(1, sortedKeys(s.Rules), func(g ot.GlyphIndex) []byte {
		rules := s.Rules[g]
		if len(rules) == 0 {
			return nil
		}
		items := make([][]byte, len(rules))
		for i, rule := range rules {
			w := &writer{}
			w.u16(uint16(len(rule.Input) + 1))
			w.u16(uint16(len(rule.Records)))
			w.glyphs(rule.Input)
			w.records(rule.Records)
			items[i] = w.buf
		}
		data, err := offsetList(items)
		enc.setErr(err)
		return data
	})
}

func (enc *subtableEncoder) classRuleSets(n int, set func(int) [][]byte) {
	w := enc.w
	at := make([]int, n)
	for i := range at {
		at[i] = w.reserve()
	}
	for i := range at {
		items := set(i)
		if len(items) == 0 {
			continue
		}
		data, err := offsetList(items)
		enc.setErr(err)
		w.link(at[i], data)
	}
}

func (enc *subtableEncoder) VisitClassSequenceContext(s *ClassSequenceContext) {
	w := enc.w
	w.u16(2)
	covAt, cdAt := w.reserve(), w.reserve()
	w.u16(uint16(len(s.Rules)))
	enc.classRuleSets(len(s.Rules), func(class int) [][]byte {
		items := make([][]byte, len(s.Rules[class]))
		for i, rule := range s.Rules[class] {
			rw := &writer{}
			rw.u16(uint16(len(rule.Input) + 1))
			rw.u16(uint16(len(rule.Records)))
			rw.classes(rule.Input)
			rw.records(rule.Records)
			items[i] = rw.buf
		}
		return items
	})
	w.link(covAt, encodeCoverage(s.Coverage))
	w.link(cdAt, encodeClassDef(s.Classes))
}

func (enc *subtableEncoder) coverages(covs []Coverage) []int {
	at := make([]int, len(covs))
	for i := range covs {
		at[i] = enc.w.reserve()
	}
	return at
}

func (enc *subtableEncoder) linkCoverages(at []int, covs []Coverage) {
	for i, cov := range covs {
		enc.w.link(at[i], encodeCoverage(cov))
	}
}

func (enc *subtableEncoder) VisitCoverageSequenceContext(s *CoverageSequenceContext) {
	w := enc.w
	w.u16(3)
	w.u16(uint16(len(s.Input)))
	w.u16(uint16(len(s.Records)))
	at := enc.coverages(s.Input)
	w.records(s.Records)
	enc.linkCoverages(at, s.Input)
}

func (enc *subtableEncoder) VisitChainedSequenceContext(s *ChainedSequenceContext) {
	enc.coveredSets(1, sortedKeys(s.Rules), func(g ot.GlyphIndex) []byte {
		rules := s.Rules[g]
		if len(rules) == 0 {
			return nil
		}
		items := make([][]byte, len(rules))
		for i, rule := range rules {
			w := &writer{}
			w.u16(uint16(len(rule.Backtrack)))
			w.glyphs(rule.Backtrack)
			w.u16(uint16(len(rule.Input) + 1))
			w.glyphs(rule.Input)
			w.u16(uint16(len(rule.Lookahead)))
			w.glyphs(rule.Lookahead)
			w.u16(uint16(len(rule.Records)))
			w.records(rule.Records)
			items[i] = w.buf
		}
		data, err := offsetList(items)
		enc.setErr(err)
		return data
	})
}

func (enc *subtableEncoder) VisitChainedClassContext(s *ChainedClassContext) {
	w := enc.w
	w.u16(2)
	covAt, btAt, inAt, laAt := w.reserve(), w.reserve(), w.reserve(), w.reserve()
	w.u16(uint16(len(s.Rules)))
	enc.classRuleSets(len(s.Rules), func(class int) [][]byte {
		items := make([][]byte, len(s.Rules[class]))
		for i, rule := range s.Rules[class] {
			rw := &writer{}
			rw.u16(uint16(len(rule.Backtrack)))
			rw.classes(rule.Backtrack)
			rw.u16(uint16(len(rule.Input) + 1))
			rw.classes(rule.Input)
			rw.u16(uint16(len(rule.Lookahead)))
			rw.classes(rule.Lookahead)
			rw.u16(uint16(len(rule.Records)))
			rw.records(rule.Records)
			items[i] = rw.buf
		}
		return items
	})
	w.link(covAt, encodeCoverage(s.Coverage))
	w.link(btAt, encodeClassDef(s.BacktrackClasses))
	w.link(inAt, encodeClassDef(s.InputClasses))
	w.link(laAt, encodeClassDef(s.LookaheadClasses))
}

func (enc *subtableEncoder) VisitChainedCoverageContext(s *ChainedCoverageContext) {
	w := enc.w
	w.u16(3)
	w.u16(uint16(len(s.Backtrack)))
	btAt := enc.coverages(s.Backtrack)
	w.u16(uint16(len(s.Input)))
	inAt := enc.coverages(s.Input)
	w.u16(uint16(len(s.Lookahead)))
	laAt := enc.coverages(s.Lookahead)
	w.u16(uint16(len(s.Records)))
	w.records(s.Records)
	enc.linkCoverages(btAt, s.Backtrack)
	enc.linkCoverages(inAt, s.Input)
	enc.linkCoverages(laAt, s.Lookahead)
}

func (enc *subtableEncoder) VisitReverseChain(s *ReverseChainSubst) {
	w := enc.w
	keys := sortedKeys(s.Substitutes)
	w.u16(1)
	covAt := w.reserve()
	w.u16(uint16(len(s.Backtrack)))
	btAt := enc.coverages(s.Backtrack)
	w.u16(uint16(len(s.Lookahead)))
	laAt := enc.coverages(s.Lookahead)
	w.u16(uint16(len(keys)))
	for _, g := range keys {
		w.u16(uint16(s.Substitutes[g]))
	}
	w.link(covAt, encodeCoverage(keys))
	enc.linkCoverages(btAt, s.Backtrack)
	enc.linkCoverages(laAt, s.Lookahead)
}
