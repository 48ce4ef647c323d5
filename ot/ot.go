package ot

import (
	"fmt"
	"sort"
)

// GlyphIndex is a glyph index in a font.
type GlyphIndex uint16

// --- Tag -------------------------------------------------------------------

// Tag is defined by the spec as:
// Array of four uint8s (length = 32 bits) used to identify a table, design-variation axis,
// script, language system, feature, or baseline
type Tag uint32

// MakeTag creates a Tag from 4 bytes, e.g.,
// If b is shorter or longer, it will be silently extended or cut as appropriate
//
//	MakeTag([]byte("cmap"))
func MakeTag(b []byte) Tag {
	if b == nil {
		b = []byte{0, 0, 0, 0}
	} else if len(b) > 4 {
		b = b[:4]
	} else if len(b) < 4 {
		b = append([]byte{0, 0, 0, 0}[:4-len(b)], b...)
	}
	return Tag(u32(b))
}

// T returns a Tag from a (4-letter) string.
// If t is shorter or longer, it will be silently extended or cut as appropriate
func T(t string) Tag {
	t = (t + "    ")[:4]
	return Tag(u32([]byte(t)))
}

func (t Tag) String() string {
	bytes := []byte{
		byte(t >> 24 & 0xff),
		byte(t >> 16 & 0xff),
		byte(t >> 8 & 0xff),
		byte(t & 0xff),
	}
	return string(bytes)
}

// DFLT is the default script tag, dflt the default language tag.
var (
	DFLT = T("DFLT")
	dflt = T("dflt")
)

// DefaultLanguage returns the tag 'dflt'.
func DefaultLanguage() Tag {
	return dflt
}

// Table tags handled by this module.
var (
	TagHead = T("head")
	TagHHea = T("hhea")
	TagMaxP = T("maxp")
	TagHMtx = T("hmtx")
	TagLoca = T("loca")
	TagGlyf = T("glyf")
	TagPost = T("post")
	TagCMap = T("cmap")
	TagOS2  = T("OS/2")
	TagName = T("name")
	TagGSUB = T("GSUB")
	TagDSIG = T("DSIG")
	TagHdmx = T("hdmx")
	TagLTSH = T("LTSH")
)

// --- Font ------------------------------------------------------------------

// Font is the table directory of an SFNT font binary. Table data are
// sub-slices of the binary and must not be modified.
type Font struct {
	FontType uint32
	tables   map[Tag]Segment
}

// Parse reads the table directory of a font binary.
func Parse(font []byte) (*Font, error) {
	src := Segment(font)
	fontType, err := src.U32(0)
	if err != nil {
		return nil, Errorf(0, "Header", err, "font header too short")
	}
	tracer().Debugf("font type = %x|%s", fontType, Tag(fontType).String())
	switch fontType {
	case 0x00010000, 0x74727565: // TrueType, 'true'
	case 0x4f54544f: // OTTO
		return nil, Errorf(0, "Header", ErrUnsupportedFormat, "CFF outlines not supported")
	default:
		return nil, Errorf(0, "Header", ErrUnsupportedFormat, "font type not supported: %x", fontType)
	}
	count, _ := src.U16(4)
	// "The Offset Table is followed immediately by the Table Record entries …
	// sorted in ascending order by tag", 16 bytes each.
	buf, err := src.View(12, 16*int(count))
	if err != nil {
		return nil, Errorf(0, "TableRecords", err, "table record entries")
	}
	otf := &Font{FontType: fontType, tables: make(map[Tag]Segment, count)}
	for b := buf; len(b) > 0; b = b[16:] {
		tag := MakeTag(b)
		off, size := int(u32(b[8:12])), int(u32(b[12:16]))
		data, err := src.View(off, size)
		if err != nil {
			return nil, Errorf(tag, "Bounds", err, "bounds [%d:%d] exceed font size %d", off, off+size, len(src))
		}
		otf.tables[tag] = data
	}
	tracer().Debugf("font has %d tables", len(otf.tables))
	return otf, nil
}

// Table returns the data of the table for a given tag, or nil.
func (otf *Font) Table(tag Tag) Segment {
	return otf.tables[tag]
}

// HasTable returns true if the font contains a table for tag.
func (otf *Font) HasTable(tag Tag) bool {
	_, ok := otf.tables[tag]
	return ok
}

// TableTags returns the tags of all tables of the font, in ascending order.
func (otf *Font) TableTags() []Tag {
	var tags = make([]Tag, 0, len(otf.tables))
	for tag := range otf.tables {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}

// RequireTables checks for the presence of tables.
func (otf *Font) RequireTables(tags ...Tag) error {
	for _, tag := range tags {
		if !otf.HasTable(tag) {
			return fmt.Errorf("%w: %s", ErrMissingTable, tag)
		}
	}
	return nil
}
