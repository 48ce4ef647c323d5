package otpatch

import (
	"errors"
	"fmt"
	"math"

	"github.com/npillmayer/ligpatch/ot"
	"github.com/npillmayer/ligpatch/otedit"
)

// maxComponentDepth bounds the nesting of composite glyphs.
const maxComponentDepth = 8

var (
	// ErrGlyphMissing flags a glyph required by a pipeline but absent from a font.
	ErrGlyphMissing = otedit.ErrGlyphMissing
	// ErrComposite flags a composite glyph which cannot be decomposed.
	ErrComposite = errors.New("cannot decompose composite glyph")
)

// ImportGlyph copies glyph sourceName of source into target under name.
//
// Composite glyphs are decomposed into a simple glyph. x-coordinates are
// scaled by targetWidth/sourceWidth, y-coordinates are kept. With a
// non-zero italicAngle (degrees), points are sheared by x += y·tan(angle).
// Hinting instructions are dropped. The glyph gets advance width targetWidth
// and the source's left side bearing, scaled.
//
// If target already has a glyph called name, its outline and metrics are
// replaced; otherwise the glyph is appended to the glyph order.
func ImportGlyph(target *otedit.Font, name string, source *otedit.Font, sourceName string,
	targetWidth, sourceWidth int, italicAngle float64) (ot.GlyphIndex, error) {
	//
	if sourceWidth <= 0 || targetWidth <= 0 {
		return 0, fmt.Errorf("cannot import %s: bad widths %d/%d", sourceName, targetWidth, sourceWidth)
	}
	srcID, ok := source.GlyphID(sourceName)
	if !ok {
		return 0, fmt.Errorf("%w: %s in source font", ErrGlyphMissing, sourceName)
	}
	contours, err := decompose(source, srcID, 0)
	if err != nil {
		return 0, fmt.Errorf("glyph %s: %w", sourceName, err)
	}
	g := &ot.Glyph{Contours: contours}
	scale := float64(targetWidth) / float64(sourceWidth)
	g.Transform(func(p ot.Point) ot.Point {
		p.X = round(float64(p.X) * scale)
		return p
	})
	if italicAngle != 0 {
		slant := math.Tan(italicAngle * math.Pi / 180)
		g.Transform(func(p ot.Point) ot.Point {
			p.X = round(float64(p.X) + float64(p.Y)*slant)
			return p
		})
	}
	g.RecalcBounds()
	m := ot.HMetric{
		Advance: uint16(targetWidth),
		LSB:     int16(round(float64(source.Metrics(srcID).LSB) * scale)),
	}
	if gid, ok := target.GlyphID(name); ok {
		tracer().Debugf("replacing glyph %s (#%d)", name, gid)
		if err = target.SetGlyph(gid, g); err != nil {
			return 0, err
		}
		return gid, target.SetMetrics(gid, m)
	}
	return target.AddGlyph(name, g, m)
}

// decompose returns the outline of a glyph with all components resolved.
// Returned contours are fresh copies.
func decompose(f *otedit.Font, gid ot.GlyphIndex, depth int) ([]ot.Contour, error) {
	if depth > maxComponentDepth {
		return nil, fmt.Errorf("%w: nesting deeper than %d", ErrComposite, maxComponentDepth)
	}
	g, err := f.Glyph(gid)
	if err != nil {
		return nil, err
	}
	if !g.IsComposite() {
		return g.Clone().Contours, nil
	}
	var out []ot.Contour
	for _, c := range g.Components {
		parts, err := decompose(f, c.Glyph, depth+1)
		if err != nil {
			return nil, err
		}
		for _, contour := range parts {
			for i, p := range contour {
				contour[i] = c.Apply(p)
			}
		}
		dx, dy, err := componentOffset(c, out, parts)
		if err != nil {
			return nil, fmt.Errorf("component %d of glyph %d: %w", c.Glyph, gid, err)
		}
		for _, contour := range parts {
			for i := range contour {
				contour[i].X += dx
				contour[i].Y += dy
			}
		}
		out = append(out, parts...)
	}
	return out, nil
}

// componentOffset returns the translation of a transformed component.
// For point matching, point Arg2 of the component is moved onto point Arg1
// of the outline assembled so far.
func componentOffset(c ot.Component, assembled, component []ot.Contour) (int, int, error) {
	if c.Flags&ot.ArgsAreXYValues != 0 {
		if c.Flags&ot.ScaledComponentOffset != 0 {
			p := c.Apply(ot.Point{X: c.Arg1, Y: c.Arg2})
			return p.X, p.Y, nil
		}
		return c.Arg1, c.Arg2, nil
	}
	anchor, ok := nthPoint(assembled, c.Arg1)
	if !ok {
		return 0, 0, fmt.Errorf("%w: no parent point %d", ErrComposite, c.Arg1)
	}
	p, ok := nthPoint(component, c.Arg2)
	if !ok {
		return 0, 0, fmt.Errorf("%w: no component point %d", ErrComposite, c.Arg2)
	}
	return anchor.X - p.X, anchor.Y - p.Y, nil
}

func nthPoint(contours []ot.Contour, n int) (ot.Point, bool) {
	if n < 0 {
		return ot.Point{}, false
	}
	for _, c := range contours {
		if n < len(c) {
			return c[n], true
		}
		n -= len(c)
	}
	return ot.Point{}, false
}

func round(x float64) int {
	return int(math.Round(x))
}

// DetectItalicAngle returns the slant to apply to glyphs imported into f, in
// degrees. Fonts reporting a negative (clockwise) italic angle in table
// 'post' yield the angle's magnitude. Otherwise, fonts flagged italic in
// table 'OS/2' are assumed to be slanted by 11.8°.
func DetectItalicAngle(f *otedit.Font) float64 {
	if a := f.ItalicAngle(); a != 0 {
		return -a
	}
	if fsSel, ok := f.FSSelection(); ok && fsSel&1 != 0 {
		return 11.8
	}
	return 0
}

// EnsurePaddingGlyph makes sure f has an empty glyph called name, with the
// advance width of glyph ref. It returns the padding glyph's ID.
func EnsurePaddingGlyph(f *otedit.Font, name, ref string) (ot.GlyphIndex, error) {
	if gid, ok := f.GlyphID(name); ok {
		return gid, nil
	}
	refID, ok := f.GlyphID(ref)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrGlyphMissing, ref)
	}
	adv := f.Metrics(refID).Advance
	tracer().Infof("adding padding glyph %s, advance %d", name, adv)
	return f.AddGlyph(name, nil, ot.HMetric{Advance: adv})
}

// NoLigaName is the name of the ".noliga" variant of a glyph.
func NoLigaName(base string) string {
	return base + ".noliga"
}

// EnsureNoLigaGlyphs makes sure f has a ".noliga" copy of every base glyph.
// A copy shares the outline and metrics of its base glyph. Base glyphs
// absent from f are skipped. EnsureNoLigaGlyphs returns the names of the
// glyphs added.
func EnsureNoLigaGlyphs(f *otedit.Font, bases []string) ([]string, error) {
	var added []string
	for _, base := range bases {
		name := NoLigaName(base)
		if f.HasGlyph(name) {
			continue
		}
		baseID, ok := f.GlyphID(base)
		if !ok {
			tracer().Infof("no glyph %s, skipping %s", base, name)
			continue
		}
		g, err := f.Glyph(baseID)
		if err != nil {
			return added, err
		}
		if _, err = f.AddGlyph(name, g.Clone(), f.Metrics(baseID)); err != nil {
			return added, err
		}
		added = append(added, name)
	}
	return added, nil
}
