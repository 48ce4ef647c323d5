package otedit

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/npillmayer/ligpatch/ot"
	"github.com/npillmayer/ligpatch/otgsub"
)

var (
	// ErrGlyphMissing flags a glyph name not present in a font.
	ErrGlyphMissing = errors.New("glyph missing")
	// ErrGlyphExists flags an attempt to add a glyph under a name already in use.
	ErrGlyphExists = errors.New("glyph name already in use")
)

// requiredTables are the tables a font has to carry to be editable.
var requiredTables = []ot.Tag{
	ot.TagHead, ot.TagHHea, ot.TagMaxP, ot.TagHMtx, ot.TagLoca, ot.TagGlyf, ot.TagPost,
}

// Font is a TrueType font opened for editing.
type Font struct {
	Path    string // file the font was loaded from, if any
	tables  map[ot.Tag][]byte
	head    *ot.HeadTable
	hhea    *ot.HHeaTable
	maxp    *ot.MaxPTable
	post    *ot.PostTable
	os2     *ot.OS2Table
	cmap    ot.CMap
	gsub    *otgsub.Table
	names   []string
	ids     map[string]ot.GlyphIndex
	glyphs  []glyphSlot
	metrics []ot.HMetric
	errs    ot.ErrorCollector // non-fatal findings while loading
}

// glyphSlot holds a glyph's description, either raw or decoded.
type glyphSlot struct {
	raw   []byte
	glyph *ot.Glyph
}

// LoadFont reads and parses a font file.
func LoadFont(path string) (*Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	f.Path = path
	return f, nil
}

// Parse decodes a font binary for editing.
func Parse(data []byte) (*Font, error) {
	otf, err := ot.Parse(data)
	if err != nil {
		return nil, err
	}
	if err = otf.RequireTables(requiredTables...); err != nil {
		return nil, err
	}
	f := &Font{tables: make(map[ot.Tag][]byte)}
	for _, tag := range otf.TableTags() {
		f.tables[tag] = otf.Table(tag)
	}
	if f.head, err = ot.ParseHead(otf.Table(ot.TagHead)); err != nil {
		return nil, err
	}
	if f.hhea, err = ot.ParseHHea(otf.Table(ot.TagHHea)); err != nil {
		return nil, err
	}
	if f.maxp, err = ot.ParseMaxP(otf.Table(ot.TagMaxP)); err != nil {
		return nil, err
	}
	n := int(f.maxp.NumGlyphs)
	if f.post, err = ot.ParsePost(otf.Table(ot.TagPost), n); err != nil {
		return nil, err
	}
	if otf.HasTable(ot.TagOS2) {
		if f.os2, err = ot.ParseOS2(otf.Table(ot.TagOS2)); err != nil {
			return nil, err
		}
	}
	if otf.HasTable(ot.TagCMap) {
		if f.cmap, err = ot.ParseCMap(otf.Table(ot.TagCMap)); err != nil {
			return nil, err
		}
	}
	if otf.HasTable(ot.TagGSUB) {
		if f.gsub, err = otgsub.Parse(otf.Table(ot.TagGSUB)); err != nil {
			return nil, err
		}
	}
	if f.metrics, err = ot.ParseHMtx(otf.Table(ot.TagHMtx), int(f.hhea.NumberOfHMetrics), n); err != nil {
		return nil, err
	}
	loca, err := ot.ParseLoca(otf.Table(ot.TagLoca), n, f.head.IndexToLocFormat == 1)
	if err != nil {
		return nil, err
	}
	glyphData, err := ot.GlyphData(otf.Table(ot.TagGlyf), loca)
	if err != nil {
		return nil, err
	}
	f.glyphs = make([]glyphSlot, n)
	for i, raw := range glyphData {
		f.glyphs[i].raw = raw
	}
	f.setGlyphOrder(f.post.Names)
	tracer().Debugf("font with %d glyphs, %d units per em", n, f.head.UnitsPerEm)
	return f, nil
}

// setGlyphOrder installs glyph names, synthesizing names where the font has
// none. Duplicate names are made unique with a numeric suffix.
func (f *Font) setGlyphOrder(names []string) {
	n := len(f.glyphs)
	f.names = make([]string, n)
	f.ids = make(map[string]ot.GlyphIndex, n)
	var reverse map[ot.GlyphIndex]rune
	if len(names) < n {
		reverse = f.cmap.Reverse()
	}
	for gid := 0; gid < n; gid++ {
		var name string
		if gid < len(names) && names[gid] != "" {
			name = names[gid]
		} else if gid > 0 && len(names) > 0 {
			name = synthesizeName(ot.GlyphIndex(gid), reverse)
			f.errs.AddWarning(ot.TagPost, fmt.Sprintf("glyph %d without name, using %q", gid, name), 0)
		} else {
			name = synthesizeName(ot.GlyphIndex(gid), reverse)
		}
		if _, dup := f.ids[name]; dup {
			base := name
			for k := 1; ; k++ {
				name = fmt.Sprintf("%s#%d", base, k)
				if _, dup = f.ids[name]; !dup {
					break
				}
			}
			tracer().Debugf("duplicate glyph name %q renamed to %q", base, name)
			f.errs.AddWarning(ot.TagPost, fmt.Sprintf("duplicate glyph name %q renamed to %q", base, name), 0)
		}
		f.names[gid] = name
		f.ids[name] = ot.GlyphIndex(gid)
	}
}

// NumGlyphs returns the number of glyphs.
func (f *Font) NumGlyphs() int {
	return len(f.glyphs)
}

// GlyphOrder returns the glyph names, indexed by glyph ID.
func (f *Font) GlyphOrder() []string {
	return append([]string(nil), f.names...)
}

// GlyphName returns the name of a glyph, or "" for an invalid ID.
func (f *Font) GlyphName(gid ot.GlyphIndex) string {
	if int(gid) >= len(f.names) {
		return ""
	}
	return f.names[gid]
}

// GlyphID returns the ID of a named glyph.
func (f *Font) GlyphID(name string) (ot.GlyphIndex, bool) {
	gid, ok := f.ids[name]
	return gid, ok
}

// HasGlyph is true if the font has a glyph of this name.
func (f *Font) HasGlyph(name string) bool {
	_, ok := f.ids[name]
	return ok
}

// Glyph returns the decoded outline of a glyph. Callers may modify it in
// place; the modification is part of the next Encode.
func (f *Font) Glyph(gid ot.GlyphIndex) (*ot.Glyph, error) {
	if int(gid) >= len(f.glyphs) {
		return nil, fmt.Errorf("%w: glyph ID %d", ErrGlyphMissing, gid)
	}
	slot := &f.glyphs[gid]
	if slot.glyph == nil {
		g, err := ot.ParseGlyph(slot.raw)
		if err != nil {
			return nil, fmt.Errorf("glyph %q: %w", f.names[gid], err)
		}
		slot.glyph = g
	}
	return slot.glyph, nil
}

// GlyphByName returns the decoded outline of a named glyph.
func (f *Font) GlyphByName(name string) (*ot.Glyph, error) {
	gid, ok := f.ids[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrGlyphMissing, name)
	}
	return f.Glyph(gid)
}

// SetGlyph replaces the outline of a glyph.
func (f *Font) SetGlyph(gid ot.GlyphIndex, g *ot.Glyph) error {
	if int(gid) >= len(f.glyphs) {
		return fmt.Errorf("%w: glyph ID %d", ErrGlyphMissing, gid)
	}
	f.glyphs[gid] = glyphSlot{glyph: g}
	return nil
}

// AddGlyph appends a glyph to the end of the glyph order and returns its ID.
func (f *Font) AddGlyph(name string, g *ot.Glyph, m ot.HMetric) (ot.GlyphIndex, error) {
	if _, ok := f.ids[name]; ok {
		return 0, fmt.Errorf("%w: %s", ErrGlyphExists, name)
	}
	if len(f.glyphs) >= 0xffff {
		return 0, fmt.Errorf("cannot add glyph %s: font has %d glyphs", name, len(f.glyphs))
	}
	if g == nil {
		g = &ot.Glyph{}
	}
	gid := ot.GlyphIndex(len(f.glyphs))
	f.glyphs = append(f.glyphs, glyphSlot{glyph: g})
	f.metrics = append(f.metrics, m)
	f.names = append(f.names, name)
	f.ids[name] = gid
	tracer().Debugf("added glyph %s as #%d", name, gid)
	return gid, nil
}

// Metrics returns the horizontal metrics of a glyph.
func (f *Font) Metrics(gid ot.GlyphIndex) ot.HMetric {
	if int(gid) >= len(f.metrics) {
		return ot.HMetric{}
	}
	return f.metrics[gid]
}

// SetMetrics sets the horizontal metrics of a glyph.
func (f *Font) SetMetrics(gid ot.GlyphIndex, m ot.HMetric) error {
	if int(gid) >= len(f.metrics) {
		return fmt.Errorf("%w: glyph ID %d", ErrGlyphMissing, gid)
	}
	f.metrics[gid] = m
	return nil
}

// GSUB returns the font's GSUB table, or nil.
func (f *Font) GSUB() *otgsub.Table {
	return f.gsub
}

// SetGSUB installs a GSUB table. A nil table removes GSUB from the font.
func (f *Font) SetGSUB(t *otgsub.Table) {
	f.gsub = t
}

// EnsureGSUB returns the font's GSUB table, creating an empty one if needed.
func (f *Font) EnsureGSUB() *otgsub.Table {
	if f.gsub == nil {
		tracer().Infof("font has no GSUB table, creating one")
		f.gsub = otgsub.NewTable()
	}
	return f.gsub
}

// UnitsPerEm returns the design units per em.
func (f *Font) UnitsPerEm() uint16 {
	return f.head.UnitsPerEm
}

// ItalicAngle returns the italic angle of table 'post', in degrees
// counter-clockwise from vertical.
func (f *Font) ItalicAngle() float64 {
	return f.post.ItalicAngle
}

// FSSelection returns the fsSelection flags of table 'OS/2'. ok is false
// if the font has no such table.
func (f *Font) FSSelection() (flags uint16, ok bool) {
	if f.os2 == nil {
		return 0, false
	}
	return f.os2.FsSelection, true
}

// CMap returns the character map. It may be empty.
func (f *Font) CMap() ot.CMap {
	return f.cmap
}

// HasTable is true if the font carries a table with this tag.
func (f *Font) HasTable(tag ot.Tag) bool {
	if tag == ot.TagGSUB {
		return f.gsub != nil
	}
	_, ok := f.tables[tag]
	return ok
}

// TableTags returns the tags of the tables the font was loaded with,
// sorted. GSUB is included if the font has a GSUB table now.
func (f *Font) TableTags() []ot.Tag {
	tags := make([]ot.Tag, 0, len(f.tables)+1)
	for tag := range f.tables {
		if tag != ot.TagGSUB {
			tags = append(tags, tag)
		}
	}
	if f.gsub != nil {
		tags = append(tags, ot.TagGSUB)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}

// Warnings returns the non-fatal problems found while loading the font.
func (f *Font) Warnings() []ot.FontWarning {
	return f.errs.Warnings()
}
