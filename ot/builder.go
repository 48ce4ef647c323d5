package ot

import (
	"errors"
	"sort"
)

// ErrNoTables is returned when building a font without tables.
var ErrNoTables = errors.New("font builder: no tables")

// FontBuilder assembles a font binary from encoded tables.
type FontBuilder struct {
	fontType uint32
	tables   map[Tag][]byte
}

// NewFontBuilder creates a builder for a TrueType-flavoured font.
func NewFontBuilder() *FontBuilder {
	return &FontBuilder{
		fontType: 0x00010000,
		tables:   make(map[Tag][]byte),
	}
}

// AddTable adds or replaces a table.
func (b *FontBuilder) AddTable(tag Tag, data []byte) {
	b.tables[tag] = data
}

// HasTable returns true if a table for tag has been added.
func (b *FontBuilder) HasTable(tag Tag) bool {
	_, ok := b.tables[tag]
	return ok
}

// Build lays out the table directory and table data. Tables are sorted by
// tag and padded to 4-byte boundaries. Checksums are calculated for every
// table, and the 'head' table's checksumAdjustment is set for the whole font.
func (b *FontBuilder) Build() ([]byte, error) {
	if len(b.tables) == 0 {
		return nil, ErrNoTables
	}
	tags := make([]Tag, 0, len(b.tables))
	for tag := range b.tables {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	n := len(tags)
	searchRange, entrySelector, rangeShift := searchParams(n)
	size := 12 + 16*n
	for _, tag := range tags {
		size += (len(b.tables[tag]) + 3) &^ 3
	}
	out := make([]byte, 12+16*n, size)
	PutU32(out, 0, b.fontType)
	PutU16(out, 4, uint16(n))
	PutU16(out, 6, searchRange)
	PutU16(out, 8, entrySelector)
	PutU16(out, 10, rangeShift)
	headAt := -1
	for i, tag := range tags {
		data := b.tables[tag]
		if tag == TagHead && len(data) >= 12 {
			data = append([]byte(nil), data...)
			PutU32(data, 8, 0)
			headAt = len(out)
		}
		rec := 12 + 16*i
		PutU32(out, rec, uint32(tag))
		PutU32(out, rec+4, checksum(data))
		PutU32(out, rec+8, uint32(len(out)))
		PutU32(out, rec+12, uint32(len(data)))
		out = Pad4(append(out, data...))
	}
	if headAt >= 0 {
		PutU32(out, headAt+8, 0xB1B0AFBA-checksum(out))
	}
	tracer().Debugf("built font with %d tables, %d bytes", n, len(out))
	return out, nil
}

func searchParams(n int) (searchRange, entrySelector, rangeShift uint16) {
	power := 1
	for power*2 <= n {
		power *= 2
		entrySelector++
	}
	searchRange = uint16(power * 16)
	rangeShift = uint16(n*16) - searchRange
	return
}

// checksum is the sum of the data as uint32 values, with zero padding.
func checksum(data []byte) uint32 {
	var sum uint32
	i := 0
	for ; i+4 <= len(data); i += 4 {
		sum += u32(data[i:])
	}
	if i < len(data) {
		var last [4]byte
		copy(last[:], data[i:])
		sum += u32(last[:])
	}
	return sum
}
