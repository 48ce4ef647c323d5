package otpatch

import (
	"fmt"

	"github.com/npillmayer/ligpatch/ot"
	"github.com/npillmayer/ligpatch/otedit"
	"github.com/npillmayer/ligpatch/otgsub"
)

// Synthesis collects synthesized lookups. Lookup indices are local to
// Lookups, starting at 0; references between them use local indices as well.
type Synthesis struct {
	Lookups  []*otgsub.Lookup
	Registry *SubstRegistry
	Seed     int      // index of the run blocking seed lookup, or -1
	Passes   []int    // propagation lookups
	Chains   [][]int  // chain lookups per ligature
	Skipped  []string // ligatures without rules
	feature  []int
}

// NewSynthesis creates an empty synthesis.
func NewSynthesis() *Synthesis {
	s := &Synthesis{Seed: -1}
	s.Registry = NewSubstRegistry(s.add)
	return s
}

func (s *Synthesis) add(l *otgsub.Lookup) int {
	s.Lookups = append(s.Lookups, l)
	return len(s.Lookups) - 1
}

// FeatureLookups returns the lookups to activate by the feature, in
// application order. Registry lookups are invoked by rules only.
func (s *Synthesis) FeatureLookups() []int {
	return append([]int(nil), s.feature...)
}

// --- Single substitution registry -------------------------------------------

// SubstRegistry shares single substitution lookups between rules. The lookup
// for a pair (from, to) is created on first use.
type SubstRegistry struct {
	index map[[2]ot.GlyphIndex]int
	add   func(*otgsub.Lookup) int
}

// NewSubstRegistry creates a registry which creates lookups with add.
// add returns the index of the new lookup.
func NewSubstRegistry(add func(*otgsub.Lookup) int) *SubstRegistry {
	return &SubstRegistry{index: make(map[[2]ot.GlyphIndex]int), add: add}
}

// Get returns the index of the lookup substituting from by to.
func (r *SubstRegistry) Get(from, to ot.GlyphIndex) int {
	key := [2]ot.GlyphIndex{from, to}
	if inx, ok := r.index[key]; ok {
		return inx
	}
	inx := r.add(otgsub.NewLookup(otgsub.NewSingleSubst(from, to)))
	r.index[key] = inx
	return inx
}

// Len returns the number of registered substitutions.
func (r *SubstRegistry) Len() int {
	return len(r.index)
}

// --- Rules ------------------------------------------------------------------

// IgnoreRules returns rules suppressing a ligature sequence seq wherever it is
// part of a longer sequence. For every occurrence of seq at position i in a
// longer sequence L, the rule's backtrack is L[:i] (nearest first) and its
// lookahead is L[i+1:]. Rules have no lookup records. Sequences of equal or
// shorter length are ignored.
func IgnoreRules(seq []ot.GlyphIndex, all [][]ot.GlyphIndex) []otgsub.ChainedSequenceRule {
	var rules []otgsub.ChainedSequenceRule
	for _, long := range all {
		if len(long) <= len(seq) {
			continue
		}
		for i := 0; i+len(seq) <= len(long); i++ {
			if !equalGlyphs(long[i:i+len(seq)], seq) {
				continue
			}
			rule := otgsub.ChainedSequenceRule{
				Backtrack: reversed(long[:i]),
				Lookahead: append([]ot.GlyphIndex(nil), long[i+1:]...),
			}
			if len(rule.Backtrack) > 0 || len(rule.Lookahead) > 0 {
				rules = append(rules, rule)
			}
		}
	}
	return rules
}

func equalGlyphs(a, b []ot.GlyphIndex) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func reversed(glyphs []ot.GlyphIndex) []ot.GlyphIndex {
	if len(glyphs) == 0 {
		return nil
	}
	r := make([]ot.GlyphIndex, len(glyphs))
	for i, g := range glyphs {
		r[len(glyphs)-1-i] = g
	}
	return r
}

func repeated(g ot.GlyphIndex, n int) []ot.GlyphIndex {
	if n == 0 {
		return nil
	}
	r := make([]ot.GlyphIndex, n)
	for i := range r {
		r[i] = g
	}
	return r
}

// LigatureChain adds one chained context lookup per glyph of seq. Lookup k
// matches seq[k] after k padding glyphs and before seq[k+1:], and replaces
// seq[k] by pad, or by liga for the last glyph. The ignore rules precede the
// substitution in the first lookup. LigatureChain returns the indices of the
// lookups added.
func (s *Synthesis) LigatureChain(seq []ot.GlyphIndex, liga, pad ot.GlyphIndex,
	ignore []otgsub.ChainedSequenceRule) []int {
	//
	chain := make([]int, len(seq))
	for k, g := range seq {
		target := pad
		if k == len(seq)-1 {
			target = liga
		}
		ctx := otgsub.NewChainedSequenceContext()
		if k == 0 {
			for _, rule := range ignore {
				ctx.AddRule(g, rule)
			}
		}
		ctx.AddRule(g, otgsub.ChainedSequenceRule{
			Backtrack: repeated(pad, k),
			Lookahead: append([]ot.GlyphIndex(nil), seq[k+1:]...),
			Records:   []otgsub.SequenceLookupRecord{{LookupListIndex: uint16(s.Registry.Get(g, target))}},
		})
		chain[k] = s.add(otgsub.NewLookup(ctx))
	}
	s.Chains = append(s.Chains, chain)
	s.feature = append(s.feature, chain...)
	return chain
}

// RunBlocking adds lookups which mark runs of eq and gt glyphs too long for
// any ligature. The seed lookup replaces an eq by eqNoLiga if it is preceded
// by two eq and followed by a gt, preceded by one eq and followed by two gt,
// or followed by three gt. Each of the passes propagation lookups replaces
// eq and gt next to a marked glyph by their marked variants: eq glyphs look
// ahead, gt glyphs look back.
func (s *Synthesis) RunBlocking(eq, gt, eqNoLiga, gtNoLiga ot.GlyphIndex, passes int) {
	markEq := []otgsub.SequenceLookupRecord{{LookupListIndex: uint16(s.Registry.Get(eq, eqNoLiga))}}
	markGt := []otgsub.SequenceLookupRecord{{LookupListIndex: uint16(s.Registry.Get(gt, gtNoLiga))}}
	seed := otgsub.NewChainedSequenceContext()
	seed.AddRule(eq, otgsub.ChainedSequenceRule{
		Backtrack: []ot.GlyphIndex{eq, eq}, Lookahead: []ot.GlyphIndex{gt}, Records: markEq,
	})
	seed.AddRule(eq, otgsub.ChainedSequenceRule{
		Backtrack: []ot.GlyphIndex{eq}, Lookahead: []ot.GlyphIndex{gt, gt}, Records: markEq,
	})
	seed.AddRule(eq, otgsub.ChainedSequenceRule{
		Lookahead: []ot.GlyphIndex{gt, gt, gt}, Records: markEq,
	})
	s.Seed = s.add(otgsub.NewLookup(seed))
	s.feature = append(s.feature, s.Seed)
	for range passes {
		prop := otgsub.NewChainedSequenceContext()
		for _, marked := range []ot.GlyphIndex{eqNoLiga, gtNoLiga} {
			prop.AddRule(eq, otgsub.ChainedSequenceRule{Lookahead: []ot.GlyphIndex{marked}, Records: markEq})
		}
		for _, marked := range []ot.GlyphIndex{eqNoLiga, gtNoLiga} {
			prop.AddRule(gt, otgsub.ChainedSequenceRule{Backtrack: []ot.GlyphIndex{marked}, Records: markGt})
		}
		inx := s.add(otgsub.NewLookup(prop))
		s.Passes = append(s.Passes, inx)
		s.feature = append(s.feature, inx)
	}
}

// --- Driver -----------------------------------------------------------------

// Synthesize builds the lookups for the ligatures of opts in font f. All
// glyphs involved, including ligature glyphs, the padding glyph and the
// ".noliga" variants, must already be present in f. Ligatures with a glyph
// missing from f are skipped and listed in Skipped.
func Synthesize(f *otedit.Font, opts Options) (*Synthesis, error) {
	opts = opts.withDefaults()
	s := NewSynthesis()
	pad, ok := f.GlyphID(opts.Padding)
	if !ok {
		return nil, fmt.Errorf("%w: padding glyph %s", ErrGlyphMissing, opts.Padding)
	}
	if opts.BlockRuns {
		if err := s.blockRuns(f, opts); err != nil {
			tracer().Infof("no run blocking: %v", err)
		}
	}
	type resolved struct {
		lig  Ligature
		seq  []ot.GlyphIndex
		liga ot.GlyphIndex
	}
	var ligs []resolved
	for _, lig := range opts.Ligatures {
		seq, err := sequenceGlyphs(f, opts, lig.Sequence)
		liga, ok := f.GlyphID(lig.Glyph)
		if err != nil || !ok {
			tracer().Errorf("skipping ligature %q: glyphs missing", lig.Sequence)
			s.Skipped = append(s.Skipped, lig.Sequence)
			continue
		}
		ligs = append(ligs, resolved{lig: lig, seq: seq, liga: liga})
	}
	all := make([][]ot.GlyphIndex, len(ligs))
	for i, r := range ligs {
		all[i] = r.seq
	}
	for _, r := range ligs {
		ignore := IgnoreRules(r.seq, all)
		chain := s.LigatureChain(r.seq, r.liga, pad, ignore)
		tracer().Debugf("ligature %q: lookups %v, %d ignore rules", r.lig.Sequence, chain, len(ignore))
	}
	if len(s.Lookups) > 0xffff {
		return nil, fmt.Errorf("%w: %d synthesized lookups", ErrTooManyLookups, len(s.Lookups))
	}
	tracer().Infof("synthesized %d lookups for %d ligatures", len(s.Lookups), len(ligs))
	return s, nil
}

func (s *Synthesis) blockRuns(f *otedit.Font, opts Options) error {
	var ids [4]ot.GlyphIndex
	eqName, ok1 := opts.charGlyph('=')
	gtName, ok2 := opts.charGlyph('>')
	if !ok1 || !ok2 {
		return fmt.Errorf("no glyphs configured for '=' and '>'")
	}
	for i, name := range []string{eqName, gtName, NoLigaName(eqName), NoLigaName(gtName)} {
		gid, ok := f.GlyphID(name)
		if !ok {
			return fmt.Errorf("%w: %s", ErrGlyphMissing, name)
		}
		ids[i] = gid
	}
	// registry lookups for the marks come first
	s.Registry.Get(ids[0], ids[2])
	s.Registry.Get(ids[1], ids[3])
	s.RunBlocking(ids[0], ids[1], ids[2], ids[3], opts.PropagationPasses)
	return nil
}

// sequenceGlyphs resolves the characters of a ligature sequence to glyphs.
func sequenceGlyphs(f *otedit.Font, opts Options, sequence string) ([]ot.GlyphIndex, error) {
	var seq []ot.GlyphIndex
	for _, r := range sequence {
		name, ok := opts.charGlyph(r)
		if !ok {
			return nil, fmt.Errorf("no glyph for character %q", r)
		}
		gid, ok := f.GlyphID(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrGlyphMissing, name)
		}
		seq = append(seq, gid)
	}
	return seq, nil
}
