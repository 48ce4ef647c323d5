package ot

import (
	"encoding/binary"
	"errors"
)

// Reading and writing bytes of a font's binary representation

// ErrBufferBounds flags a read outside of a table's data.
var ErrBufferBounds = errors.New("font data: buffer bounds error")

func u16(b []byte) uint16 {
	_ = b[1] // Bounds check hint to compiler
	return uint16(b[0])<<8 | uint16(b[1])<<0
}

func u32(b []byte) uint32 {
	_ = b[3] // Bounds check hint to compiler
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])<<0
}

// Segment is a segment of byte data, usually a table or a sub-table of a font.
// All accessors are bounds-checked and return ErrBufferBounds on violation.
type Segment []byte

// Size returns the size of the segment in bytes.
func (b Segment) Size() int {
	return len(b)
}

// View returns n bytes at the given offset.
// The byte segment returned is a sub-slice of b.
func (b Segment) View(offset, n int) (Segment, error) {
	if offset < 0 || n < 0 || offset+n > len(b) {
		return nil, ErrBufferBounds
	}
	return b[offset : offset+n], nil
}

// From returns the tail of b starting at offset.
func (b Segment) From(offset int) (Segment, error) {
	if offset < 0 || offset > len(b) {
		return nil, ErrBufferBounds
	}
	return b[offset:], nil
}

// U8 returns the byte at offset i.
func (b Segment) U8(i int) (uint8, error) {
	if i < 0 || i >= len(b) {
		return 0, ErrBufferBounds
	}
	return b[i], nil
}

// U16 returns the uint16 in b at the relative offset i.
func (b Segment) U16(i int) (uint16, error) {
	buf, err := b.View(i, 2)
	if err != nil {
		return 0, err
	}
	return u16(buf), nil
}

// I16 returns the int16 in b at the relative offset i.
func (b Segment) I16(i int) (int16, error) {
	n, err := b.U16(i)
	return int16(n), err
}

// U32 returns the uint32 in b at the relative offset i.
func (b Segment) U32(i int) (uint32, error) {
	buf, err := b.View(i, 4)
	if err != nil {
		return 0, err
	}
	return u32(buf), nil
}

// Glyphs reads count glyph indices starting at offset i.
func (b Segment) Glyphs(i, count int) ([]GlyphIndex, error) {
	buf, err := b.View(i, 2*count)
	if err != nil {
		return nil, err
	}
	glyphs := make([]GlyphIndex, count)
	for j := range glyphs {
		glyphs[j] = GlyphIndex(u16(buf[2*j:]))
	}
	return glyphs, nil
}

// U16s reads count uint16 values starting at offset i.
func (b Segment) U16s(i, count int) ([]uint16, error) {
	buf, err := b.View(i, 2*count)
	if err != nil {
		return nil, err
	}
	r := make([]uint16, count)
	for j := range r {
		r[j] = u16(buf[2*j:])
	}
	return r, nil
}

// --- Writing ---------------------------------------------------------------

// AppendU16 appends a big-endian uint16 to b.
func AppendU16(b []byte, n uint16) []byte {
	return binary.BigEndian.AppendUint16(b, n)
}

// AppendU32 appends a big-endian uint32 to b.
func AppendU32(b []byte, n uint32) []byte {
	return binary.BigEndian.AppendUint32(b, n)
}

// AppendGlyphs appends a list of glyph indices to b.
func AppendGlyphs(b []byte, glyphs []GlyphIndex) []byte {
	for _, g := range glyphs {
		b = AppendU16(b, uint16(g))
	}
	return b
}

// PutU16 writes a big-endian uint16 at offset i of b.
func PutU16(b []byte, i int, n uint16) {
	binary.BigEndian.PutUint16(b[i:], n)
}

// PutU32 writes a big-endian uint32 at offset i of b.
func PutU32(b []byte, i int, n uint32) {
	binary.BigEndian.PutUint32(b[i:], n)
}

// Pad4 pads b with zeros to a multiple of 4 bytes.
func Pad4(b []byte) []byte {
	for len(b)%4 != 0 {
		b = append(b, 0)
	}
	return b
}
