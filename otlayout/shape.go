package otlayout

import (
	"sort"

	"github.com/npillmayer/ligpatch/ot"
	"github.com/npillmayer/ligpatch/otedit"
	"github.com/npillmayer/ligpatch/otgsub"
	"golang.org/x/text/unicode/norm"
)

// Shape maps text to glyphs of f and applies the GSUB lookups of all
// enabled features. Text is normalized to NFC first; characters missing
// from the cmap map to .notdef.
func Shape(f *otedit.Font, text string, features map[ot.Tag]bool) GlyphSlice {
	text = norm.NFC.String(text)
	cmap := f.CMap()
	buf := make(GlyphSlice, 0, len(text))
	for _, r := range text {
		buf = append(buf, cmap.Lookup(r))
	}
	gsub := f.GSUB()
	if gsub == nil {
		return buf
	}
	lookups := FeatureLookups(gsub, features)
	tracer().Debugf("shaping %q with lookups %v", text, lookups)
	for _, inx := range lookups {
		buf = ApplyLookup(gsub, inx, buf)
	}
	return buf
}

// FeatureLookups returns the lookups of the enabled features, sorted and
// without duplicates. Features are taken from the default language system of
// script 'DFLT', or of the first script if there is no 'DFLT'. A table
// without scripts activates all of its feature records.
func FeatureLookups(gsub *otgsub.Table, features map[ot.Tag]bool) []int {
	var indices []int
	if ls := defaultLangSys(gsub); ls != nil {
		if ls.RequiredFeature != otgsub.NoRequiredFeature {
			indices = append(indices, int(ls.RequiredFeature))
		}
		for _, fi := range ls.Features {
			indices = append(indices, int(fi))
		}
	} else {
		for i := range gsub.Features {
			indices = append(indices, i)
		}
	}
	seen := make(map[int]bool)
	var lookups []int
	for _, fi := range indices {
		if fi >= len(gsub.Features) || !features[gsub.Features[fi].Tag] {
			continue
		}
		for _, inx := range gsub.Features[fi].Feature.Lookups {
			if !seen[int(inx)] {
				seen[int(inx)] = true
				lookups = append(lookups, int(inx))
			}
		}
	}
	sort.Ints(lookups)
	return lookups
}

func defaultLangSys(gsub *otgsub.Table) *otgsub.LangSys {
	if len(gsub.Scripts) == 0 {
		return nil
	}
	for _, rec := range gsub.Scripts {
		if rec.Tag == ot.DFLT {
			return rec.Script.Default
		}
	}
	return gsub.Scripts[0].Script.Default
}

// GlyphNames returns the names of glyphs in f.
func GlyphNames(f *otedit.Font, glyphs []ot.GlyphIndex) []string {
	names := make([]string, len(glyphs))
	for i, g := range glyphs {
		names[i] = f.GlyphName(g)
	}
	return names
}
