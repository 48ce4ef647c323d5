package otedit

import (
	"fmt"

	"github.com/npillmayer/ligpatch/ot"
)

// asciiNames are the Adobe Glyph List names of printable ASCII.
var asciiNames = [...]string{
	"space", "exclam", "quotedbl", "numbersign", "dollar", "percent", "ampersand", "quotesingle",
	"parenleft", "parenright", "asterisk", "plus", "comma", "hyphen", "period", "slash",
	"zero", "one", "two", "three", "four", "five", "six", "seven", "eight", "nine",
	"colon", "semicolon", "less", "equal", "greater", "question", "at",
	"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K", "L", "M",
	"N", "O", "P", "Q", "R", "S", "T", "U", "V", "W", "X", "Y", "Z",
	"bracketleft", "backslash", "bracketright", "asciicircum", "underscore", "grave",
	"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l", "m",
	"n", "o", "p", "q", "r", "s", "t", "u", "v", "w", "x", "y", "z",
	"braceleft", "bar", "braceright", "asciitilde",
}

// NameForRune returns the conventional glyph name for a character.
func NameForRune(r rune) string {
	switch {
	case r >= 0x20 && r <= 0x7e:
		return asciiNames[r-0x20]
	case r <= 0xffff:
		return fmt.Sprintf("uni%04X", r)
	}
	return fmt.Sprintf("u%05X", r)
}

// synthesizeName names a glyph of a font without glyph names, from the
// character it is mapped to if there is one.
func synthesizeName(gid ot.GlyphIndex, reverse map[ot.GlyphIndex]rune) string {
	if gid == 0 {
		return ".notdef"
	}
	if r, ok := reverse[gid]; ok {
		return NameForRune(r)
	}
	return fmt.Sprintf("glyph%05d", gid)
}
