package ligpatch

import (
	"fmt"
	"os"

	"golang.org/x/image/font/sfnt"
)

// ScalableFont is an internal representation of an outline-font of type
// TTF of OTF.
type ScalableFont struct {
	Fontname string
	Filepath string     // file path
	Binary   []byte     // raw data
	SFNT     *sfnt.Font // the font's container
}

// LoadOpenTypeFont loads an OpenType font (TTF or OTF) from a file.
func LoadOpenTypeFont(fontfile string) (*ScalableFont, error) {
	bytez, err := os.ReadFile(fontfile)
	if err != nil {
		return nil, err
	}
	f, err := ParseOpenTypeFont(bytez)
	if err != nil {
		return nil, err
	}
	f.Filepath = fontfile
	return f, nil
}

// ParseOpenTypeFont loads an OpenType font (TTF or OTF) from memory.
func ParseOpenTypeFont(fbytes []byte) (f *ScalableFont, err error) {
	f = &ScalableFont{Binary: fbytes}
	f.SFNT, err = sfnt.Parse(f.Binary)
	if err != nil {
		return nil, err
	}
	if f.Fontname, err = f.SFNT.Name(nil, sfnt.NameIDFull); err == nil {
		tracer().Debugf("loaded and parsed SFNT %s", f.Fontname)
	} else {
		f.Fontname, err = "", nil
	}
	return
}

// GlyphName returns the name of the glyph a character maps to. It returns
// an error if the font has no glyph for r.
func (f *ScalableFont) GlyphName(r rune) (string, error) {
	var buf sfnt.Buffer
	gid, err := f.SFNT.GlyphIndex(&buf, r)
	if err != nil {
		return "", err
	}
	if gid == 0 {
		return "", fmt.Errorf("no glyph for %q", r)
	}
	return f.SFNT.GlyphName(&buf, gid)
}

// CharGlyphs maps the characters of the ligature sequences to glyph names,
// as found in the font's character map. Characters without a glyph are
// returned in missing.
func (f *ScalableFont) CharGlyphs(sequences []string) (names map[rune]string, missing []rune) {
	names = make(map[rune]string)
	seen := make(map[rune]bool)
	for _, seq := range sequences {
		for _, r := range seq {
			if seen[r] {
				continue
			}
			seen[r] = true
			if name, err := f.GlyphName(r); err == nil {
				names[r] = name
			} else {
				missing = append(missing, r)
			}
		}
	}
	return
}
