package ot

import "sort"

// CMap maps Unicode code points to glyphs.
type CMap map[rune]GlyphIndex

// Lookup returns the glyph for r, or 0 (.notdef).
func (m CMap) Lookup(r rune) GlyphIndex {
	return m[r]
}

// Reverse returns one code point per mapped glyph, the smallest if several map to it.
func (m CMap) Reverse() map[GlyphIndex]rune {
	rev := make(map[GlyphIndex]rune, len(m))
	for r, g := range m {
		if prev, ok := rev[g]; !ok || r < prev {
			rev[g] = r
		}
	}
	return rev
}

// cmap encoding records in order of preference: (platform, encoding).
var cmapPreference = [][2]uint16{
	{3, 10}, {0, 6}, {0, 4}, {3, 1}, {0, 3}, {0, 2}, {0, 1}, {0, 0}, {3, 0},
}

// ParseCMap decodes the preferred Unicode subtable of table 'cmap'.
// Supported subtable formats are 0, 4, 6 and 12.
func ParseCMap(b Segment) (CMap, error) {
	count, err := b.U16(2)
	if err != nil {
		return nil, Errorf(TagCMap, "Header", err, "table too short")
	}
	offsets := make(map[[2]uint16]int)
	for i := 0; i < int(count); i++ {
		rec, err := b.View(4+8*i, 8)
		if err != nil {
			return nil, Errorf(TagCMap, "EncodingRecord", err, "record %d", i)
		}
		offsets[[2]uint16{u16(rec), u16(rec[2:])}] = int(u32(rec[4:]))
	}
	for _, pe := range cmapPreference {
		off, ok := offsets[pe]
		if !ok {
			continue
		}
		sub, err := b.From(off)
		if err != nil {
			return nil, Errorf(TagCMap, "Subtable", err, "subtable offset %d", off)
		}
		format, err := sub.U16(0)
		if err != nil {
			return nil, Errorf(TagCMap, "Subtable", err, "subtable format")
		}
		var m CMap
		switch format {
		case 0:
			m, err = parseCMap0(sub)
		case 4:
			m, err = parseCMap4(sub)
		case 6:
			m, err = parseCMap6(sub)
		case 12:
			m, err = parseCMap12(sub)
		default:
			tracer().Debugf("skipping cmap subtable (%d,%d) format %d", pe[0], pe[1], format)
			continue
		}
		if err != nil {
			return nil, err
		}
		tracer().Debugf("using cmap subtable (%d,%d) format %d with %d entries", pe[0], pe[1], format, len(m))
		return m, nil
	}
	return nil, Errorf(TagCMap, "Subtable", ErrUnsupportedFormat, "no supported Unicode subtable")
}

func parseCMap0(b Segment) (CMap, error) {
	glyphs, err := b.View(6, 256)
	if err != nil {
		return nil, Errorf(TagCMap, "Format0", err, "glyph array")
	}
	m := make(CMap)
	for c, g := range glyphs {
		if g != 0 {
			m[rune(c)] = GlyphIndex(g)
		}
	}
	return m, nil
}

func parseCMap4(b Segment) (CMap, error) {
	segX2, err := b.U16(6)
	if err != nil {
		return nil, Errorf(TagCMap, "Format4", err, "segment count")
	}
	n := int(segX2 / 2)
	ends, err1 := b.U16s(14, n)
	starts, err2 := b.U16s(16+2*n, n)
	deltas, err3 := b.U16s(16+4*n, n)
	rangeOffsets, err4 := b.U16s(16+6*n, n)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return nil, Errorf(TagCMap, "Format4", ErrBufferBounds, "segment arrays")
	}
	m := make(CMap)
	for i := 0; i < n; i++ {
		if starts[i] == 0xffff {
			continue
		}
		for c := uint32(starts[i]); c <= uint32(ends[i]); c++ {
			var g uint16
			if rangeOffsets[i] == 0 {
				g = uint16(c) + deltas[i]
			} else {
				// glyphIdArray is addressed relative to the idRangeOffset entry itself
				at := 16 + 6*n + 2*i + int(rangeOffsets[i]) + 2*int(c-uint32(starts[i]))
				v, err := b.U16(at)
				if err != nil {
					return nil, Errorf(TagCMap, "Format4", err, "glyph id array")
				}
				if v != 0 {
					g = v + deltas[i]
				}
			}
			if g != 0 {
				m[rune(c)] = GlyphIndex(g)
			}
		}
	}
	return m, nil
}

func parseCMap6(b Segment) (CMap, error) {
	first, err1 := b.U16(6)
	count, err2 := b.U16(8)
	if err1 != nil || err2 != nil {
		return nil, Errorf(TagCMap, "Format6", ErrBufferBounds, "header")
	}
	glyphs, err := b.Glyphs(10, int(count))
	if err != nil {
		return nil, Errorf(TagCMap, "Format6", err, "glyph array")
	}
	m := make(CMap)
	for i, g := range glyphs {
		if g != 0 {
			m[rune(int(first)+i)] = g
		}
	}
	return m, nil
}

func parseCMap12(b Segment) (CMap, error) {
	n, err := b.U32(12)
	if err != nil {
		return nil, Errorf(TagCMap, "Format12", err, "group count")
	}
	m := make(CMap)
	for i := 0; i < int(n); i++ {
		grp, err := b.View(16+12*i, 12)
		if err != nil {
			return nil, Errorf(TagCMap, "Format12", err, "group %d", i)
		}
		start, end, g := u32(grp), u32(grp[4:]), u32(grp[8:])
		if end < start || end > 0x10ffff {
			return nil, Errorf(TagCMap, "Format12", ErrBufferBounds, "group %d: bad range", i)
		}
		for c := start; c <= end; c++ {
			m[rune(c)] = GlyphIndex(g + c - start)
		}
	}
	return m, nil
}

// Encode writes table 'cmap' with a (3,1) format 4 subtable for the BMP and,
// if needed, a (3,10) format 12 subtable for all code points.
func (m CMap) Encode() []byte {
	runes := make([]rune, 0, len(m))
	supplementary := false
	for r := range m {
		runes = append(runes, r)
		supplementary = supplementary || r > 0xffff
	}
	sort.Slice(runes, func(i, j int) bool { return runes[i] < runes[j] })
	sub4 := encodeCMap4(m, runes)
	out := AppendU16(nil, 0)
	if !supplementary {
		out = AppendU16(out, 1)
		out = append(out, 0, 3, 0, 1)
		out = AppendU32(out, 12)
		return append(out, sub4...)
	}
	out = AppendU16(out, 2)
	out = append(out, 0, 3, 0, 1)
	out = AppendU32(out, 20)
	out = append(out, 0, 3, 0, 10)
	out = AppendU32(out, uint32(20+len(sub4)))
	out = append(out, sub4...)
	return append(out, encodeCMap12(m, runes)...)
}

// cmapRun is a run of consecutive code points with consecutive glyphs.
type cmapRun struct {
	start, end rune
	glyph      GlyphIndex
}

func cmapRuns(m CMap, runes []rune, limit rune) []cmapRun {
	var runs []cmapRun
	for _, r := range runes {
		if r > limit {
			break
		}
		g := m[r]
		if n := len(runs); n > 0 && runs[n-1].end+1 == r &&
			runs[n-1].glyph+GlyphIndex(r-runs[n-1].start) == g {
			runs[n-1].end = r
			continue
		}
		runs = append(runs, cmapRun{start: r, end: r, glyph: g})
	}
	return runs
}

func encodeCMap4(m CMap, runes []rune) []byte {
	runs := cmapRuns(m, runes, 0xfffe)
	runs = append(runs, cmapRun{start: 0xffff, end: 0xffff, glyph: 0})
	n := len(runs)
	searchRange, entrySelector, rangeShift := searchParams(n)
	out := AppendU16(nil, 4)
	out = AppendU16(out, uint16(16+8*n))
	out = AppendU16(out, 0)
	out = AppendU16(out, uint16(2*n))
	out = AppendU16(out, searchRange/8)
	out = AppendU16(out, entrySelector)
	out = AppendU16(out, rangeShift/8)
	for _, run := range runs {
		out = AppendU16(out, uint16(run.end))
	}
	out = AppendU16(out, 0)
	for _, run := range runs {
		out = AppendU16(out, uint16(run.start))
	}
	for _, run := range runs {
		out = AppendU16(out, uint16(run.glyph)-uint16(run.start))
	}
	for range runs {
		out = AppendU16(out, 0)
	}
	return out
}

func encodeCMap12(m CMap, runes []rune) []byte {
	runs := cmapRuns(m, runes, 0x10ffff)
	out := AppendU16(nil, 12)
	out = AppendU16(out, 0)
	out = AppendU32(out, uint32(16+12*len(runs)))
	out = AppendU32(out, 0)
	out = AppendU32(out, uint32(len(runs)))
	for _, run := range runs {
		out = AppendU32(out, uint32(run.start))
		out = AppendU32(out, uint32(run.end))
		out = AppendU32(out, uint32(run.glyph))
	}
	return out
}
