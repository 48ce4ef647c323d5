package otedit

import (
	"fmt"
	"os"

	"github.com/npillmayer/ligpatch/ot"
)

// droppedTables would be stale after editing glyphs or metrics. Most of
// them hold one entry per glyph.
var droppedTables = map[ot.Tag]bool{
	ot.TagDSIG:   true,
	ot.TagHdmx:   true,
	ot.TagLTSH:   true,
	ot.T("vhea"): true,
	ot.T("vmtx"): true,
	ot.T("VORG"): true,
	ot.T("gvar"): true,
}

// Save encodes the font and writes it to path.
func (f *Font) Save(path string) error {
	data, err := f.Encode()
	if err != nil {
		return err
	}
	if err = os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	tracer().Infof("wrote %d bytes to %s", len(data), path)
	return nil
}

// Encode writes the font to a binary.
func (f *Font) Encode() ([]byte, error) {
	b := ot.NewFontBuilder()
	for tag, data := range f.tables {
		if droppedTables[tag] {
			tracer().Errorf("dropping table '%s', it would not match the edited glyphs", tag)
			continue
		}
		if tag == ot.TagGSUB {
			continue // written from the model below
		}
		b.AddTable(tag, data)
	}
	descriptions := make([][]byte, len(f.glyphs))
	bounds := boundsAccumulator{}
	maxPoints, maxContours := f.maxp.MaxPoints, f.maxp.MaxContours
	for gid, slot := range f.glyphs {
		data := slot.raw
		if slot.glyph != nil {
			data = slot.glyph.Encode()
			if !slot.glyph.IsComposite() {
				maxPoints = max(maxPoints, uint16(slot.glyph.NumPoints()))
				maxContours = max(maxContours, uint16(len(slot.glyph.Contours)))
			}
		}
		descriptions[gid] = data
		bounds.add(data, f.metrics[gid])
	}
	glyf, loca, long := ot.BuildGlyf(descriptions)
	b.AddTable(ot.TagGlyf, glyf)
	b.AddTable(ot.TagLoca, loca)
	//
	hmtx, numHMetrics := ot.EncodeHMtx(f.metrics)
	b.AddTable(ot.TagHMtx, hmtx)
	hhea := *f.hhea
	hhea.NumberOfHMetrics = numHMetrics
	bounds.updateHHea(&hhea)
	b.AddTable(ot.TagHHea, hhea.Encode())
	//
	maxp := *f.maxp
	maxp.NumGlyphs = uint16(len(f.glyphs))
	maxp.MaxPoints, maxp.MaxContours = maxPoints, maxContours
	b.AddTable(ot.TagMaxP, maxp.Encode())
	//
	head := *f.head
	head.IndexToLocFormat = 0
	if long {
		head.IndexToLocFormat = 1
	}
	bounds.updateHead(&head)
	b.AddTable(ot.TagHead, head.Encode())
	b.AddTable(ot.TagPost, f.post.EncodeV2(f.names))
	//
	if f.gsub != nil {
		gsub, err := f.gsub.Encode()
		if err != nil {
			return nil, fmt.Errorf("encoding GSUB: %w", err)
		}
		b.AddTable(ot.TagGSUB, gsub)
	}
	return b.Build()
}

// boundsAccumulator collects the font-wide extents of all non-empty glyphs.
type boundsAccumulator struct {
	seen                   bool
	xMin, yMin, xMax, yMax int16
	advanceMax             uint16
	minLSB, minRSB         int16
	xMaxExtent             int16
}

// add accounts for one glyph description. The bounding box is read from the
// glyph header.
func (acc *boundsAccumulator) add(data []byte, m ot.HMetric) {
	acc.advanceMax = max(acc.advanceMax, m.Advance)
	if len(data) < 10 {
		return
	}
	seg := ot.Segment(data)
	xMin, _ := seg.I16(2)
	yMin, _ := seg.I16(4)
	xMax, _ := seg.I16(6)
	yMax, _ := seg.I16(8)
	rsb := int16(int(m.Advance) - int(m.LSB) - int(xMax-xMin))
	extent := m.LSB + (xMax - xMin)
	if !acc.seen {
		acc.seen = true
		acc.xMin, acc.yMin, acc.xMax, acc.yMax = xMin, yMin, xMax, yMax
		acc.minLSB, acc.minRSB, acc.xMaxExtent = m.LSB, rsb, extent
		return
	}
	acc.xMin, acc.yMin = min(acc.xMin, xMin), min(acc.yMin, yMin)
	acc.xMax, acc.yMax = max(acc.xMax, xMax), max(acc.yMax, yMax)
	acc.minLSB, acc.minRSB = min(acc.minLSB, m.LSB), min(acc.minRSB, rsb)
	acc.xMaxExtent = max(acc.xMaxExtent, extent)
}

func (acc *boundsAccumulator) updateHHea(h *ot.HHeaTable) {
	h.AdvanceWidthMax = acc.advanceMax
	if acc.seen {
		h.MinLeftSideBearing = acc.minLSB
		h.MinRightSideBearing = acc.minRSB
		h.XMaxExtent = acc.xMaxExtent
	}
}

func (acc *boundsAccumulator) updateHead(h *ot.HeadTable) {
	if acc.seen {
		h.XMin, h.YMin, h.XMax, h.YMax = acc.xMin, acc.yMin, acc.xMax, acc.yMax
	}
}
