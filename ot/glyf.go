package ot

import (
	"math"
)

// Flags of simple glyph points.
const (
	onCurvePoint            uint8 = 0x01
	xShortVector            uint8 = 0x02
	yShortVector            uint8 = 0x04
	repeatFlag              uint8 = 0x08
	xIsSameOrPositiveVector uint8 = 0x10
	yIsSameOrPositiveVector uint8 = 0x20
	overlapSimple           uint8 = 0x40
)

// Flags of composite glyph components.
const (
	ArgsAreWords          uint16 = 0x0001
	ArgsAreXYValues       uint16 = 0x0002
	RoundXYToGrid         uint16 = 0x0004
	WeHaveAScale          uint16 = 0x0008
	MoreComponents        uint16 = 0x0020
	WeHaveAnXAndYScale    uint16 = 0x0040
	WeHaveATwoByTwo       uint16 = 0x0080
	WeHaveInstructions    uint16 = 0x0100
	UseMyMetrics          uint16 = 0x0200
	OverlapCompound       uint16 = 0x0400
	ScaledComponentOffset uint16 = 0x0800
)

const transformFlags = WeHaveAScale | WeHaveAnXAndYScale | WeHaveATwoByTwo

// Point is a point of a glyph outline in font units.
type Point struct {
	X, Y    int
	OnCurve bool
}

// Contour is a closed sequence of outline points.
type Contour []Point

// Component is a reference to another glyph within a composite glyph.
//
// With ArgsAreXYValues set, Arg1 and Arg2 are the x and y offsets of the
// component. Otherwise they are point numbers: point Arg2 of the component is
// moved onto point Arg1 of the glyph assembled so far.
// Transform is the 2x2 matrix (xx, yx, xy, yy) with
//
//	x' = xx·x + xy·y
//	y' = yx·x + yy·y
type Component struct {
	Glyph      GlyphIndex
	Flags      uint16
	Arg1, Arg2 int
	Transform  [4]float64
}

// IdentityTransform is the transform of an unscaled component.
var IdentityTransform = [4]float64{1, 0, 0, 1}

// Apply transforms a point by the component's matrix, without the offset.
func (c Component) Apply(p Point) Point {
	t := c.Transform
	x := t[0]*float64(p.X) + t[2]*float64(p.Y)
	y := t[1]*float64(p.X) + t[3]*float64(p.Y)
	return Point{X: int(math.Round(x)), Y: int(math.Round(y)), OnCurve: p.OnCurve}
}

// Glyph is a decoded entry of table 'glyf'. A glyph is either empty,
// simple (Contours) or composite (Components).
type Glyph struct {
	Contours     []Contour
	Components   []Component
	Instructions []byte
	XMin, YMin   int16
	XMax, YMax   int16
	Overlap      bool
}

// IsEmpty is true for glyphs without outline, such as a space.
func (g *Glyph) IsEmpty() bool {
	return len(g.Contours) == 0 && len(g.Components) == 0
}

// IsComposite is true for glyphs assembled from other glyphs.
func (g *Glyph) IsComposite() bool {
	return len(g.Components) > 0
}

// NumPoints returns the number of outline points of a simple glyph.
func (g *Glyph) NumPoints() int {
	n := 0
	for _, c := range g.Contours {
		n += len(c)
	}
	return n
}

// Points returns all outline points of a simple glyph, in order.
func (g *Glyph) Points() []Point {
	pts := make([]Point, 0, g.NumPoints())
	for _, c := range g.Contours {
		pts = append(pts, c...)
	}
	return pts
}

// Clone returns a deep copy of g.
func (g *Glyph) Clone() *Glyph {
	c := &Glyph{
		XMin: g.XMin, YMin: g.YMin, XMax: g.XMax, YMax: g.YMax,
		Overlap: g.Overlap,
	}
	for _, contour := range g.Contours {
		c.Contours = append(c.Contours, append(Contour(nil), contour...))
	}
	c.Components = append(c.Components, g.Components...)
	c.Instructions = append(c.Instructions, g.Instructions...)
	return c
}

// RecalcBounds sets the bounding box from the outline points of a simple glyph.
// Composite glyphs keep their bounds.
func (g *Glyph) RecalcBounds() {
	if g.IsComposite() {
		return
	}
	first := true
	for _, c := range g.Contours {
		for _, p := range c {
			x, y := int16(p.X), int16(p.Y)
			if first {
				g.XMin, g.XMax, g.YMin, g.YMax = x, x, y, y
				first = false
				continue
			}
			g.XMin, g.XMax = min(g.XMin, x), max(g.XMax, x)
			g.YMin, g.YMax = min(g.YMin, y), max(g.YMax, y)
		}
	}
	if first {
		g.XMin, g.YMin, g.XMax, g.YMax = 0, 0, 0, 0
	}
}

// Transform maps every outline point of a simple glyph through fn.
func (g *Glyph) Transform(fn func(Point) Point) {
	for _, c := range g.Contours {
		for i := range c {
			c[i] = fn(c[i])
		}
	}
}

// --- Decoding --------------------------------------------------------------

// ParseGlyph decodes a glyph description of table 'glyf'.
// An empty slice decodes to an empty glyph.
func ParseGlyph(b Segment) (*Glyph, error) {
	g := &Glyph{}
	if len(b) == 0 {
		return g, nil
	}
	if len(b) < 10 {
		return nil, Errorf(TagGlyf, "GlyphHeader", ErrBufferBounds, "glyph too short: %d bytes", len(b))
	}
	numContours, _ := b.I16(0)
	g.XMin, _ = b.I16(2)
	g.YMin, _ = b.I16(4)
	g.XMax, _ = b.I16(6)
	g.YMax, _ = b.I16(8)
	if numContours >= 0 {
		return g, g.parseSimple(b, int(numContours))
	}
	return g, g.parseComposite(b)
}

func (g *Glyph) parseSimple(b Segment, numContours int) error {
	if numContours == 0 {
		return nil
	}
	endPts, err := b.U16s(10, numContours)
	if err != nil {
		return Errorf(TagGlyf, "EndPoints", err, "contour end points")
	}
	numPoints := int(endPts[numContours-1]) + 1
	off := 10 + 2*numContours
	instrLen, err := b.U16(off)
	if err != nil {
		return Errorf(TagGlyf, "Instructions", err, "instruction length")
	}
	off += 2
	instr, err := b.View(off, int(instrLen))
	if err != nil {
		return Errorf(TagGlyf, "Instructions", err, "instructions")
	}
	g.Instructions = append([]byte(nil), instr...)
	off += int(instrLen)
	flags := make([]uint8, 0, numPoints)
	for len(flags) < numPoints {
		flag, err := b.U8(off)
		if err != nil {
			return Errorf(TagGlyf, "Flags", err, "point flags")
		}
		off++
		flags = append(flags, flag)
		if flag&repeatFlag != 0 {
			count, err := b.U8(off)
			if err != nil {
				return Errorf(TagGlyf, "Flags", err, "repeat count")
			}
			off++
			for ; count > 0 && len(flags) < numPoints; count-- {
				flags = append(flags, flag)
			}
		}
	}
	if flags[0]&overlapSimple != 0 {
		g.Overlap = true
	}
	xs, off, err := readCoordinates(b, off, flags, xShortVector, xIsSameOrPositiveVector)
	if err != nil {
		return err
	}
	ys, _, err := readCoordinates(b, off, flags, yShortVector, yIsSameOrPositiveVector)
	if err != nil {
		return err
	}
	start := 0
	for _, end := range endPts {
		if int(end) < start || int(end) >= numPoints {
			return Errorf(TagGlyf, "EndPoints", ErrBufferBounds, "contour end point %d out of order", end)
		}
		contour := make(Contour, 0, int(end)-start+1)
		for i := start; i <= int(end); i++ {
			contour = append(contour, Point{X: xs[i], Y: ys[i], OnCurve: flags[i]&onCurvePoint != 0})
		}
		g.Contours = append(g.Contours, contour)
		start = int(end) + 1
	}
	return nil
}

func readCoordinates(b Segment, off int, flags []uint8, short, same uint8) ([]int, int, error) {
	coords := make([]int, len(flags))
	v := 0
	for i, flag := range flags {
		switch {
		case flag&short != 0:
			d, err := b.U8(off)
			if err != nil {
				return nil, off, Errorf(TagGlyf, "Coordinates", err, "short coordinate")
			}
			off++
			if flag&same != 0 {
				v += int(d)
			} else {
				v -= int(d)
			}
		case flag&same == 0:
			d, err := b.I16(off)
			if err != nil {
				return nil, off, Errorf(TagGlyf, "Coordinates", err, "coordinate")
			}
			off += 2
			v += int(d)
		}
		coords[i] = v
	}
	return coords, off, nil
}

func (g *Glyph) parseComposite(b Segment) error {
	off := 10
	for {
		flags, err := b.U16(off)
		if err != nil {
			return Errorf(TagGlyf, "Component", err, "component flags")
		}
		gid, err := b.U16(off + 2)
		if err != nil {
			return Errorf(TagGlyf, "Component", err, "component glyph")
		}
		off += 4
		c := Component{Glyph: GlyphIndex(gid), Flags: flags, Transform: IdentityTransform}
		if flags&ArgsAreWords != 0 {
			a1, err1 := b.I16(off)
			a2, err2 := b.I16(off + 2)
			if err1 != nil || err2 != nil {
				return Errorf(TagGlyf, "Component", ErrBufferBounds, "component arguments")
			}
			if flags&ArgsAreXYValues != 0 {
				c.Arg1, c.Arg2 = int(a1), int(a2)
			} else {
				c.Arg1, c.Arg2 = int(uint16(a1)), int(uint16(a2))
			}
			off += 4
		} else {
			a, err := b.View(off, 2)
			if err != nil {
				return Errorf(TagGlyf, "Component", err, "component arguments")
			}
			if flags&ArgsAreXYValues != 0 {
				c.Arg1, c.Arg2 = int(int8(a[0])), int(int8(a[1]))
			} else {
				c.Arg1, c.Arg2 = int(a[0]), int(a[1])
			}
			off += 2
		}
		var n int
		switch {
		case flags&WeHaveAScale != 0:
			n = 1
		case flags&WeHaveAnXAndYScale != 0:
			n = 2
		case flags&WeHaveATwoByTwo != 0:
			n = 4
		}
		var v [4]float64
		for i := 0; i < n; i++ {
			f, err := b.I16(off)
			if err != nil {
				return Errorf(TagGlyf, "Component", err, "component transform")
			}
			v[i] = float64(f) / 16384
			off += 2
		}
		switch n {
		case 1:
			c.Transform = [4]float64{v[0], 0, 0, v[0]}
		case 2:
			c.Transform = [4]float64{v[0], 0, 0, v[1]}
		case 4:
			c.Transform = v
		}
		g.Components = append(g.Components, c)
		if flags&MoreComponents == 0 {
			if flags&WeHaveInstructions != 0 {
				n, err := b.U16(off)
				if err != nil {
					return Errorf(TagGlyf, "Instructions", err, "instruction length")
				}
				instr, err := b.View(off+2, int(n))
				if err != nil {
					return Errorf(TagGlyf, "Instructions", err, "instructions")
				}
				g.Instructions = append([]byte(nil), instr...)
			}
			return nil
		}
	}
}

// --- Encoding --------------------------------------------------------------

// Encode returns the binary glyph description. Empty glyphs encode to zero bytes.
func (g *Glyph) Encode() []byte {
	if g.IsEmpty() {
		return nil
	}
	out := make([]byte, 10, 64)
	if g.IsComposite() {
		PutU16(out, 0, 0xffff)
	} else {
		PutU16(out, 0, uint16(len(g.Contours)))
	}
	PutU16(out, 2, uint16(g.XMin))
	PutU16(out, 4, uint16(g.YMin))
	PutU16(out, 6, uint16(g.XMax))
	PutU16(out, 8, uint16(g.YMax))
	if g.IsComposite() {
		return g.encodeComposite(out)
	}
	return g.encodeSimple(out)
}

func (g *Glyph) encodeSimple(out []byte) []byte {
	end := -1
	for _, c := range g.Contours {
		end += len(c)
		out = AppendU16(out, uint16(end))
	}
	out = AppendU16(out, uint16(len(g.Instructions)))
	out = append(out, g.Instructions...)
	pts := g.Points()
	flags := make([]uint8, len(pts))
	var xs, ys []byte
	px, py := 0, 0
	for i, p := range pts {
		var flag uint8
		if p.OnCurve {
			flag |= onCurvePoint
		}
		if i == 0 && g.Overlap {
			flag |= overlapSimple
		}
		flag, xs = encodeDelta(flag, xs, p.X-px, xShortVector, xIsSameOrPositiveVector)
		flag, ys = encodeDelta(flag, ys, p.Y-py, yShortVector, yIsSameOrPositiveVector)
		flags[i] = flag
		px, py = p.X, p.Y
	}
	for i := 0; i < len(flags); {
		j := i + 1
		for j < len(flags) && flags[j] == flags[i] && j-i <= 255 {
			j++
		}
		if repeats := j - i - 1; repeats > 0 {
			out = append(out, flags[i]|repeatFlag, uint8(repeats))
		} else {
			out = append(out, flags[i])
		}
		i = j
	}
	out = append(out, xs...)
	return append(out, ys...)
}

func encodeDelta(flag uint8, buf []byte, d int, short, same uint8) (uint8, []byte) {
	switch {
	case d == 0:
		flag |= same
	case d > -256 && d < 256:
		flag |= short
		if d > 0 {
			flag |= same
			buf = append(buf, uint8(d))
		} else {
			buf = append(buf, uint8(-d))
		}
	default:
		buf = AppendU16(buf, uint16(int16(d)))
	}
	return flag, buf
}

func (g *Glyph) encodeComposite(out []byte) []byte {
	for i, c := range g.Components {
		flags := c.Flags &^ (ArgsAreWords | MoreComponents | WeHaveInstructions | transformFlags)
		if i < len(g.Components)-1 {
			flags |= MoreComponents
		} else if len(g.Instructions) > 0 {
			flags |= WeHaveInstructions
		}
		var words bool
		if c.Flags&ArgsAreXYValues != 0 {
			words = c.Arg1 < -128 || c.Arg1 > 127 || c.Arg2 < -128 || c.Arg2 > 127
		} else {
			words = c.Arg1 > 255 || c.Arg2 > 255
		}
		if words {
			flags |= ArgsAreWords
		}
		t := c.Transform
		var scale []float64
		switch {
		case t == IdentityTransform || t == [4]float64{}:
		case t[1] == 0 && t[2] == 0 && t[0] == t[3]:
			flags |= WeHaveAScale
			scale = t[:1]
		case t[1] == 0 && t[2] == 0:
			flags |= WeHaveAnXAndYScale
			scale = []float64{t[0], t[3]}
		default:
			flags |= WeHaveATwoByTwo
			scale = t[:]
		}
		out = AppendU16(out, flags)
		out = AppendU16(out, uint16(c.Glyph))
		if words {
			out = AppendU16(out, uint16(int16(c.Arg1)))
			out = AppendU16(out, uint16(int16(c.Arg2)))
		} else {
			out = append(out, uint8(c.Arg1), uint8(c.Arg2))
		}
		for _, s := range scale {
			out = AppendU16(out, uint16(int16(math.Round(s*16384))))
		}
	}
	if len(g.Instructions) > 0 {
		out = AppendU16(out, uint16(len(g.Instructions)))
		out = append(out, g.Instructions...)
	}
	return out
}

// --- loca ------------------------------------------------------------------

// ParseLoca decodes table 'loca' into numGlyphs+1 byte offsets into 'glyf'.
func ParseLoca(b Segment, numGlyphs int, long bool) ([]uint32, error) {
	offsets := make([]uint32, numGlyphs+1)
	for i := range offsets {
		if long {
			off, err := b.U32(4 * i)
			if err != nil {
				return nil, Errorf(TagLoca, "Offsets", err, "loca entry %d", i)
			}
			offsets[i] = off
		} else {
			off, err := b.U16(2 * i)
			if err != nil {
				return nil, Errorf(TagLoca, "Offsets", err, "loca entry %d", i)
			}
			offsets[i] = 2 * uint32(off)
		}
	}
	return offsets, nil
}

// GlyphData slices the glyph descriptions of table 'glyf' along loca offsets.
func GlyphData(glyf Segment, loca []uint32) ([][]byte, error) {
	data := make([][]byte, len(loca)-1)
	for i := range data {
		from, to := int(loca[i]), int(loca[i+1])
		if to < from {
			return nil, Errorf(TagLoca, "Offsets", ErrBufferBounds, "glyph %d: offsets out of order", i)
		}
		b, err := glyf.View(from, to-from)
		if err != nil {
			return nil, Errorf(TagGlyf, "Glyph", err, "glyph %d", i)
		}
		data[i] = b
	}
	return data, nil
}

// BuildGlyf concatenates glyph descriptions into tables 'glyf' and 'loca'.
// Glyph data is padded to 4 bytes. The short loca format is used if all
// offsets fit.
func BuildGlyf(glyphs [][]byte) (glyf, loca []byte, long bool) {
	offsets := make([]uint32, 0, len(glyphs)+1)
	for _, g := range glyphs {
		offsets = append(offsets, uint32(len(glyf)))
		glyf = Pad4(append(glyf, g...))
	}
	offsets = append(offsets, uint32(len(glyf)))
	long = len(glyf) >= 0x20000
	for _, off := range offsets {
		if long {
			loca = AppendU32(loca, off)
		} else {
			loca = AppendU16(loca, uint16(off/2))
		}
	}
	return glyf, loca, long
}

// --- hmtx ------------------------------------------------------------------

// HMetric is the horizontal metric of a glyph.
type HMetric struct {
	Advance uint16
	LSB     int16
}

// ParseHMtx decodes table 'hmtx'. Glyphs past numHMetrics share the last advance.
func ParseHMtx(b Segment, numHMetrics, numGlyphs int) ([]HMetric, error) {
	if numHMetrics == 0 || numHMetrics > numGlyphs {
		return nil, Errorf(TagHMtx, "Header", ErrBufferBounds, "bad number of metrics: %d", numHMetrics)
	}
	metrics := make([]HMetric, numGlyphs)
	for i := 0; i < numHMetrics; i++ {
		adv, err1 := b.U16(4 * i)
		lsb, err2 := b.I16(4*i + 2)
		if err1 != nil || err2 != nil {
			return nil, Errorf(TagHMtx, "LongHorMetric", ErrBufferBounds, "metric %d", i)
		}
		metrics[i] = HMetric{Advance: adv, LSB: lsb}
	}
	last := metrics[numHMetrics-1].Advance
	for i := numHMetrics; i < numGlyphs; i++ {
		lsb, err := b.I16(4*numHMetrics + 2*(i-numHMetrics))
		if err != nil {
			return nil, Errorf(TagHMtx, "LeftSideBearing", err, "bearing %d", i)
		}
		metrics[i] = HMetric{Advance: last, LSB: lsb}
	}
	return metrics, nil
}

// EncodeHMtx encodes table 'hmtx'. A trailing run of glyphs with equal
// advances is folded into left side bearings only.
func EncodeHMtx(metrics []HMetric) (data []byte, numHMetrics uint16) {
	n := len(metrics)
	for n > 1 && metrics[n-1].Advance == metrics[n-2].Advance {
		n--
	}
	for i, m := range metrics {
		if i < n {
			data = AppendU16(data, m.Advance)
		}
		data = AppendU16(data, uint16(m.LSB))
	}
	return data, uint16(n)
}
