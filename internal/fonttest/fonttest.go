/*
Package fonttest builds small TrueType fonts for tests.

Fonts are assembled from a Spec with the same table codecs ligpatch uses
for writing fonts. They carry every table an editing round-trip needs,
plus 'OS/2', 'cmap' and 'name'.
*/
package fonttest

import (
	"math"
	"testing"

	"github.com/npillmayer/ligpatch/ot"
	"github.com/npillmayer/ligpatch/otgsub"
)

// Glyph describes a glyph of a test font.
type Glyph struct {
	Name    string
	Rune    rune // 0 if unmapped
	Outline *ot.Glyph
	Advance uint16
}

// Spec describes a test font.
type Spec struct {
	UnitsPerEm  uint16
	ItalicAngle float64
	FsSelection uint16
	NoNames     bool // write 'post' version 3, without glyph names
	Glyphs      []Glyph
	GSUB        *otgsub.Table
	Extra       map[ot.Tag][]byte
}

// Build encodes a font from a spec.
func Build(spec Spec) ([]byte, error) {
	upem := spec.UnitsPerEm
	if upem == 0 {
		upem = 1000
	}
	n := len(spec.Glyphs)
	descriptions := make([][]byte, n)
	metrics := make([]ot.HMetric, n)
	names := make([]string, n)
	cmap := make(ot.CMap)
	var maxPoints, maxContours int
	for i, g := range spec.Glyphs {
		names[i] = g.Name
		if g.Rune != 0 {
			cmap[g.Rune] = ot.GlyphIndex(i)
		}
		var lsb int16
		if g.Outline != nil {
			descriptions[i] = g.Outline.Encode()
			lsb = g.Outline.XMin
			maxPoints = max(maxPoints, g.Outline.NumPoints())
			maxContours = max(maxContours, len(g.Outline.Contours))
		}
		metrics[i] = ot.HMetric{Advance: g.Advance, LSB: lsb}
	}
	b := ot.NewFontBuilder()
	glyf, loca, long := ot.BuildGlyf(descriptions)
	b.AddTable(ot.TagGlyf, glyf)
	b.AddTable(ot.TagLoca, loca)
	hmtx, numHMetrics := ot.EncodeHMtx(metrics)
	b.AddTable(ot.TagHMtx, hmtx)
	b.AddTable(ot.TagHead, head(upem, long))
	b.AddTable(ot.TagHHea, hhea(upem, numHMetrics))
	b.AddTable(ot.TagMaxP, maxp(n, maxPoints, maxContours))
	b.AddTable(ot.TagOS2, os2(spec.FsSelection))
	b.AddTable(ot.TagCMap, cmap.Encode())
	b.AddTable(ot.TagName, []byte{0, 0, 0, 0, 0, 6})
	post, err := post(spec.ItalicAngle, n, names, spec.NoNames)
	if err != nil {
		return nil, err
	}
	b.AddTable(ot.TagPost, post)
	if spec.GSUB != nil {
		gsub, err := spec.GSUB.Encode()
		if err != nil {
			return nil, err
		}
		b.AddTable(ot.TagGSUB, gsub)
	}
	for tag, data := range spec.Extra {
		b.AddTable(tag, data)
	}
	return b.Build()
}

// MustBuild encodes a font from a spec and fails the test on error.
func MustBuild(t testing.TB, spec Spec) []byte {
	t.Helper()
	data, err := Build(spec)
	if err != nil {
		t.Fatalf("cannot build test font: %v", err)
	}
	return data
}

func head(upem uint16, long bool) []byte {
	b := make([]byte, 54)
	ot.PutU32(b, 0, 0x00010000)
	ot.PutU32(b, 4, 0x00010000)
	ot.PutU32(b, 12, 0x5F0F3CF5)
	ot.PutU16(b, 16, 0x000B)
	ot.PutU16(b, 18, upem)
	ot.PutU16(b, 46, 8)
	ot.PutU16(b, 48, 2)
	if long {
		ot.PutU16(b, 50, 1)
	}
	return b
}

func hhea(upem uint16, numHMetrics uint16) []byte {
	b := make([]byte, 36)
	ot.PutU32(b, 0, 0x00010000)
	ot.PutU16(b, 4, upem*4/5)
	ot.PutU16(b, 6, uint16(-int16(upem/5)))
	ot.PutU16(b, 18, 1)
	ot.PutU16(b, 34, numHMetrics)
	return b
}

func maxp(n, points, contours int) []byte {
	b := make([]byte, 32)
	ot.PutU32(b, 0, 0x00010000)
	ot.PutU16(b, 4, uint16(n))
	ot.PutU16(b, 6, uint16(points))
	ot.PutU16(b, 8, uint16(contours))
	ot.PutU16(b, 14, 2)
	ot.PutU16(b, 28, 2)
	ot.PutU16(b, 30, 1)
	return b
}

func os2(fsSelection uint16) []byte {
	b := make([]byte, 96)
	ot.PutU16(b, 0, 4)
	ot.PutU16(b, 4, 400)
	ot.PutU16(b, 6, 5)
	ot.PutU16(b, 62, fsSelection)
	return b
}

func post(italicAngle float64, n int, names []string, noNames bool) ([]byte, error) {
	b := make([]byte, 32)
	ot.PutU32(b, 0, 0x00030000)
	ot.PutU32(b, 4, uint32(int32(math.Round(italicAngle*65536))))
	ot.PutU32(b, 12, 1) // isFixedPitch
	if noNames {
		return b, nil
	}
	p, err := ot.ParsePost(b, n)
	if err != nil {
		return nil, err
	}
	return p.EncodeV2(names), nil
}

// --- Outlines ---------------------------------------------------------------

// Rect returns a glyph with one rectangular contour.
func Rect(x0, y0, x1, y1 int) *ot.Glyph {
	g := &ot.Glyph{Contours: []ot.Contour{{
		{X: x0, Y: y0, OnCurve: true},
		{X: x0, Y: y1, OnCurve: true},
		{X: x1, Y: y1, OnCurve: true},
		{X: x1, Y: y0, OnCurve: true},
	}}}
	g.RecalcBounds()
	return g
}

// Bars returns a glyph with one rectangle per given x range, at height y0 to y1.
func Bars(y0, y1 int, xs ...int) *ot.Glyph {
	g := &ot.Glyph{}
	for i := 0; i+1 < len(xs); i += 2 {
		g.Contours = append(g.Contours, Rect(xs[i], y0, xs[i+1], y1).Contours[0])
	}
	g.RecalcBounds()
	return g
}

// Triangle returns a glyph with one triangular contour.
func Triangle(x0, y0, x1, y1 int, pointRight bool) *ot.Glyph {
	tip, back := x1, x0
	if !pointRight {
		tip, back = x0, x1
	}
	g := &ot.Glyph{Contours: []ot.Contour{{
		{X: back, Y: y0, OnCurve: true},
		{X: back, Y: y1, OnCurve: true},
		{X: tip, Y: (y0 + y1) / 2, OnCurve: true},
	}}}
	g.RecalcBounds()
	return g
}

// Composite returns a composite glyph of components placed at x offsets.
// Bounds are given explicitly, as composites do not carry points.
func Composite(bounds [4]int16, parts ...ot.Component) *ot.Glyph {
	g := &ot.Glyph{Components: parts}
	g.XMin, g.YMin, g.XMax, g.YMax = bounds[0], bounds[1], bounds[2], bounds[3]
	return g
}

// Offset returns a component placed by an x/y offset.
func Offset(gid ot.GlyphIndex, dx, dy int) ot.Component {
	return ot.Component{
		Glyph:     gid,
		Flags:     ot.ArgsAreXYValues | ot.RoundXYToGrid,
		Arg1:      dx,
		Arg2:      dy,
		Transform: ot.IdentityTransform,
	}
}
