package otpatch

import (
	"errors"
	"fmt"
	"sort"

	"github.com/npillmayer/ligpatch/ot"
	"github.com/npillmayer/ligpatch/otedit"
)

// ErrNothingToPatch flags a source font without any of the requested glyphs.
var ErrNothingToPatch = errors.New("nothing to patch")

// Report summarizes a pipeline run.
type Report struct {
	Feature        ot.Tag
	ItalicAngle    float64  // slant applied to imported glyphs
	Imported       []string // glyphs copied from the source font
	Added          []string // glyphs created in the target font
	Missing        []string // glyphs required but absent from the source font
	Skipped        []string // ligature sequences without rules
	LookupsAdded   int
	FeatureLookups []int // lookup indices activated by the feature, in the target
}

// PatchLigatures copies the ligature glyphs of opts from source into target
// and synthesizes contextual rules for them. The new lookups are inserted at
// the front of target's lookup list and prepended to the feature of opts.
//
// The target gets an empty padding glyph and ".noliga" copies of the
// ligature characters, unless already present. Ligatures whose glyph is
// missing from source are left out and reported.
func PatchLigatures(target, source *otedit.Font, opts Options) (*Report, error) {
	opts = opts.withDefaults()
	report := &Report{Feature: opts.Feature}
	targetWidth, sourceWidth, err := referenceWidths(target, source, opts.ReferenceGlyph)
	if err != nil {
		return nil, err
	}
	report.ItalicAngle = italicAngle(target, opts)
	found := false
	for _, lig := range opts.Ligatures {
		found = found || source.HasGlyph(lig.Glyph)
	}
	if !found {
		return nil, fmt.Errorf("%w: source has no ligature glyphs", ErrNothingToPatch)
	}
	if _, err = EnsurePaddingGlyph(target, opts.Padding, opts.ReferenceGlyph); err != nil {
		return nil, err
	}
	bases := make([]string, len(opts.Chars))
	for i, cg := range opts.Chars {
		bases[i] = cg.Glyph
	}
	if report.Added, err = EnsureNoLigaGlyphs(target, bases); err != nil {
		return nil, err
	}
	for _, lig := range opts.Ligatures {
		if !source.HasGlyph(lig.Glyph) {
			tracer().Errorf("source font has no glyph %s", lig.Glyph)
			report.Missing = append(report.Missing, lig.Glyph)
			continue
		}
		if _, err = ImportGlyph(target, lig.Glyph, source, lig.Glyph, targetWidth, sourceWidth, report.ItalicAngle); err != nil {
			return nil, err
		}
		report.Imported = append(report.Imported, lig.Glyph)
	}
	synth, err := Synthesize(target, opts)
	if err != nil {
		return nil, err
	}
	report.Skipped = synth.Skipped
	gsub := target.EnsureGSUB()
	if err = InsertLookups(gsub, 0, synth.Lookups); err != nil {
		return nil, err
	}
	report.FeatureLookups = synth.FeatureLookups()
	report.LookupsAdded = len(synth.Lookups)
	InstallFeature(gsub, opts.Feature, report.FeatureLookups, Prepend)
	return report, nil
}

// TransplantFeature copies the feature of opts from source into target,
// with every lookup it reaches and every glyph those lookups reference. Glyphs
// already present in target, by name, are kept. The copied lookups are
// appended to target's lookup list and replace the lookups of target's
// feature.
func TransplantFeature(target, source *otedit.Font, opts Options) (*Report, error) {
	opts = opts.withDefaults()
	report := &Report{Feature: opts.Feature}
	direct, closure, err := FindFeatureLookups(source.GSUB(), opts.Feature)
	if err != nil {
		return nil, err
	}
	targetWidth, sourceWidth, err := referenceWidths(target, source, opts.ReferenceGlyph)
	if err != nil {
		return nil, err
	}
	report.ItalicAngle = italicAngle(target, opts)
	referenced, dangling := CollectReferencedGlyphs(source.GSUB(), source.GlyphOrder(), closure)
	for _, g := range dangling {
		report.Missing = append(report.Missing, fmt.Sprintf("glyph%05d", g))
	}
	var needed []string
	for name := range referenced {
		if !target.HasGlyph(name) {
			needed = append(needed, name)
		}
	}
	sort.Slice(needed, func(i, j int) bool {
		a, _ := source.GlyphID(needed[i])
		b, _ := source.GlyphID(needed[j])
		return a < b
	})
	for _, name := range needed {
		if _, err = ImportGlyph(target, name, source, name, targetWidth, sourceWidth, report.ItalicAngle); err != nil {
			if errors.Is(err, ErrComposite) {
				tracer().Errorf("cannot import %s: %v", name, err)
				report.Missing = append(report.Missing, name)
				continue
			}
			return nil, err
		}
		report.Imported = append(report.Imported, name)
	}
	gsub := target.EnsureGSUB()
	if len(gsub.Lookups)+len(closure) > 0xffff {
		return nil, fmt.Errorf("%w: %d + %d", ErrTooManyLookups, len(gsub.Lookups), len(closure))
	}
	mapping := AppendMapping(closure, len(gsub.Lookups))
	copies := CopyLookups(source, target, closure)
	RemapCopied(copies, mapping)
	gsub.Lookups = append(gsub.Lookups, copies...)
	report.LookupsAdded = len(copies)
	for _, i := range direct {
		report.FeatureLookups = append(report.FeatureLookups, mapping[i])
	}
	InstallFeature(gsub, opts.Feature, report.FeatureLookups, Replace)
	return report, nil
}

// referenceWidths returns the advance widths of the reference glyph in
// target and source.
func referenceWidths(target, source *otedit.Font, ref string) (int, int, error) {
	tid, ok := target.GlyphID(ref)
	if !ok {
		return 0, 0, fmt.Errorf("%w: %s in target font", ErrGlyphMissing, ref)
	}
	sid, ok := source.GlyphID(ref)
	if !ok {
		return 0, 0, fmt.Errorf("%w: %s in source font", ErrGlyphMissing, ref)
	}
	tw, sw := int(target.Metrics(tid).Advance), int(source.Metrics(sid).Advance)
	tracer().Debugf("character width %d, source width %d", tw, sw)
	return tw, sw, nil
}

func italicAngle(target *otedit.Font, opts Options) float64 {
	if opts.ItalicAngle != nil {
		return *opts.ItalicAngle
	}
	return DetectItalicAngle(target)
}
