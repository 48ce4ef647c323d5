package otedit

import (
	"fmt"

	"github.com/npillmayer/ligpatch/ot"
	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// Validate cross-checks a font binary with an independent decoder.
// It compares glyph count, glyph names, advance widths and character
// mapping, and loads every glyph outline. Failing to decode the binary
// at all is returned as an error; findings are returned in the collector.
func Validate(data []byte) (*ot.ErrorCollector, error) {
	f, err := Parse(data)
	if err != nil {
		return nil, err
	}
	sf, err := sfnt.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("font rejected by sfnt: %w", err)
	}
	ec := &ot.ErrorCollector{}
	if n := sf.NumGlyphs(); n != f.NumGlyphs() {
		ec.AddError(ot.TagMaxP, "NumGlyphs", fmt.Sprintf("sfnt sees %d glyphs, expected %d", n, f.NumGlyphs()),
			ot.SeverityCritical, 0)
		return ec, nil
	}
	var buf sfnt.Buffer
	upem := fixed.Int26_6(f.UnitsPerEm()) << 6
	for gid := 0; gid < f.NumGlyphs(); gid++ {
		x := sfnt.GlyphIndex(gid)
		name, err := sf.GlyphName(&buf, x)
		if err != nil {
			ec.AddError(ot.TagPost, "GlyphName", fmt.Sprintf("glyph %d: %v", gid, err), ot.SeverityCritical, 0)
		} else if name != f.names[gid] {
			ec.AddError(ot.TagPost, "GlyphName", fmt.Sprintf("glyph %d named %q, expected %q", gid, name, f.names[gid]),
				ot.SeverityCritical, 0)
		}
		adv, err := sf.GlyphAdvance(&buf, x, upem, font.HintingNone)
		if err != nil {
			ec.AddError(ot.TagHMtx, "Advance", fmt.Sprintf("glyph %d: %v", gid, err), ot.SeverityCritical, 0)
		} else if want := fixed.I(int(f.metrics[gid].Advance)); adv != want {
			ec.AddError(ot.TagHMtx, "Advance", fmt.Sprintf("glyph %d: advance %v, expected %v", gid, adv, want),
				ot.SeverityCritical, 0)
		}
		if _, err := sf.LoadGlyph(&buf, x, upem, nil); err != nil {
			// sfnt does not support every composite glyph flavour
			ec.AddError(ot.TagGlyf, "Outline", fmt.Sprintf("glyph %q: %v", f.names[gid], err), ot.SeverityMajor, 0)
		}
	}
	for r, want := range f.cmap {
		got, err := sf.GlyphIndex(&buf, r)
		if err != nil || ot.GlyphIndex(got) != want {
			ec.AddWarning(ot.TagCMap, fmt.Sprintf("code point %U maps to %d, expected %d", r, got, want), 0)
		}
	}
	tracer().Debugf("validated font: %d errors, %d warnings", len(ec.Errors()), len(ec.Warnings()))
	return ec, nil
}
