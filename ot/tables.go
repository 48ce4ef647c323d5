package ot

// Fixed-layout tables. Each table keeps its raw bytes and exposes the fields
// an editing round-trip updates. Encode patches these fields into a copy of
// the raw bytes, leaving everything else untouched.

// --- head ------------------------------------------------------------------

// HeadTable gives global information about the font.
type HeadTable struct {
	raw              []byte
	UnitsPerEm       uint16
	XMin, YMin       int16
	XMax, YMax       int16
	MacStyle         uint16
	IndexToLocFormat int16 // 0 for short offsets, 1 for long
}

// ParseHead decodes table 'head'.
func ParseHead(b Segment) (*HeadTable, error) {
	if len(b) < 54 {
		return nil, Errorf(TagHead, "Header", ErrBufferBounds, "table too short: %d bytes", len(b))
	}
	if magic, _ := b.U32(12); magic != 0x5F0F3CF5 {
		return nil, Errorf(TagHead, "Header", ErrUnsupportedFormat, "bad magic number %x", magic)
	}
	h := &HeadTable{raw: append([]byte(nil), b...)}
	h.UnitsPerEm, _ = b.U16(18)
	h.XMin, _ = b.I16(36)
	h.YMin, _ = b.I16(38)
	h.XMax, _ = b.I16(40)
	h.YMax, _ = b.I16(42)
	h.MacStyle, _ = b.U16(44)
	h.IndexToLocFormat, _ = b.I16(50)
	return h, nil
}

// Encode returns the binary form of the table. checksumAdjustment is zeroed,
// FontBuilder will set it.
func (h *HeadTable) Encode() []byte {
	out := append([]byte(nil), h.raw...)
	PutU32(out, 8, 0)
	PutU16(out, 18, h.UnitsPerEm)
	PutU16(out, 36, uint16(h.XMin))
	PutU16(out, 38, uint16(h.YMin))
	PutU16(out, 40, uint16(h.XMax))
	PutU16(out, 42, uint16(h.YMax))
	PutU16(out, 44, h.MacStyle)
	PutU16(out, 50, uint16(h.IndexToLocFormat))
	return out
}

// --- hhea ------------------------------------------------------------------

// HHeaTable contains information for horizontal layout.
type HHeaTable struct {
	raw                 []byte
	Ascender, Descender int16
	AdvanceWidthMax     uint16
	MinLeftSideBearing  int16
	MinRightSideBearing int16
	XMaxExtent          int16
	NumberOfHMetrics    uint16
}

// ParseHHea decodes table 'hhea'.
func ParseHHea(b Segment) (*HHeaTable, error) {
	if len(b) < 36 {
		return nil, Errorf(TagHHea, "Header", ErrBufferBounds, "table too short: %d bytes", len(b))
	}
	h := &HHeaTable{raw: append([]byte(nil), b...)}
	h.Ascender, _ = b.I16(4)
	h.Descender, _ = b.I16(6)
	h.AdvanceWidthMax, _ = b.U16(10)
	h.MinLeftSideBearing, _ = b.I16(12)
	h.MinRightSideBearing, _ = b.I16(14)
	h.XMaxExtent, _ = b.I16(16)
	h.NumberOfHMetrics, _ = b.U16(34)
	return h, nil
}

// Encode returns the binary form of the table.
func (h *HHeaTable) Encode() []byte {
	out := append([]byte(nil), h.raw...)
	PutU16(out, 4, uint16(h.Ascender))
	PutU16(out, 6, uint16(h.Descender))
	PutU16(out, 10, h.AdvanceWidthMax)
	PutU16(out, 12, uint16(h.MinLeftSideBearing))
	PutU16(out, 14, uint16(h.MinRightSideBearing))
	PutU16(out, 16, uint16(h.XMaxExtent))
	PutU16(out, 34, h.NumberOfHMetrics)
	return out
}

// --- maxp ------------------------------------------------------------------

// MaxPTable establishes the memory requirements for the font.
// Version 0.5 tables (CFF fonts) only carry NumGlyphs.
type MaxPTable struct {
	raw         []byte
	NumGlyphs   uint16
	MaxPoints   uint16
	MaxContours uint16
}

// ParseMaxP decodes table 'maxp'.
func ParseMaxP(b Segment) (*MaxPTable, error) {
	if len(b) < 6 {
		return nil, Errorf(TagMaxP, "Header", ErrBufferBounds, "table too short: %d bytes", len(b))
	}
	m := &MaxPTable{raw: append([]byte(nil), b...)}
	m.NumGlyphs, _ = b.U16(4)
	if len(b) >= 32 {
		m.MaxPoints, _ = b.U16(6)
		m.MaxContours, _ = b.U16(8)
	}
	return m, nil
}

// Encode returns the binary form of the table.
func (m *MaxPTable) Encode() []byte {
	out := append([]byte(nil), m.raw...)
	PutU16(out, 4, m.NumGlyphs)
	if len(out) >= 32 {
		PutU16(out, 6, m.MaxPoints)
		PutU16(out, 8, m.MaxContours)
	}
	return out
}

// --- OS/2 ------------------------------------------------------------------

// OS2Table holds the fields of table 'OS/2' we need for font editing.
type OS2Table struct {
	Version      uint16
	AvgCharWidth int16
	FsSelection  uint16
}

// ParseOS2 decodes the fields of table 'OS/2' up to fsSelection.
func ParseOS2(b Segment) (*OS2Table, error) {
	if len(b) < 64 {
		return nil, Errorf(TagOS2, "Header", ErrBufferBounds, "table too short: %d bytes", len(b))
	}
	t := &OS2Table{}
	t.Version, _ = b.U16(0)
	t.AvgCharWidth, _ = b.I16(2)
	t.FsSelection, _ = b.U16(62)
	return t, nil
}

// IsItalic reports fsSelection bit 0.
func (t *OS2Table) IsItalic() bool {
	return t.FsSelection&1 != 0
}
