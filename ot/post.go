package ot

import "fmt"

// PostTable holds the header of table 'post' and, for formats 1 and 2,
// the glyph names.
type PostTable struct {
	raw         []byte // 32-byte header
	Version     uint32
	ItalicAngle float64 // degrees, counter-clockwise from vertical
	Names       []string
}

// HasNames is true if the table provides glyph names.
func (p *PostTable) HasNames() bool {
	return len(p.Names) > 0
}

// ParsePost decodes table 'post'. Version 3 tables carry no names,
// version 1 tables use the standard Macintosh glyph order.
func ParsePost(b Segment, numGlyphs int) (*PostTable, error) {
	if len(b) < 32 {
		return nil, Errorf(TagPost, "Header", ErrBufferBounds, "table too short: %d bytes", len(b))
	}
	p := &PostTable{raw: append([]byte(nil), b[:32]...)}
	p.Version, _ = b.U32(0)
	angle, _ := b.U32(4)
	p.ItalicAngle = float64(int32(angle)) / 65536
	switch p.Version {
	case 0x00010000:
		n := min(numGlyphs, len(macRomanNames))
		p.Names = append([]string(nil), macRomanNames[:n]...)
	case 0x00020000:
		names, err := parsePostNames(b, numGlyphs)
		if err != nil {
			return nil, err
		}
		p.Names = names
	default:
		tracer().Debugf("post table version %x carries no glyph names", p.Version)
	}
	return p, nil
}

func parsePostNames(b Segment, numGlyphs int) ([]string, error) {
	count, err := b.U16(32)
	if err != nil {
		return nil, Errorf(TagPost, "NumGlyphs", err, "glyph count")
	}
	if int(count) != numGlyphs {
		tracer().Debugf("post table names %d glyphs, font has %d", count, numGlyphs)
	}
	indices, err := b.U16s(34, int(count))
	if err != nil {
		return nil, Errorf(TagPost, "GlyphNameIndex", err, "name indices")
	}
	var custom []string
	for off := 34 + 2*int(count); off < len(b); {
		l := int(b[off])
		s, err := b.View(off+1, l)
		if err != nil {
			return nil, Errorf(TagPost, "Names", err, "pascal string at %d", off)
		}
		custom = append(custom, string(s))
		off += 1 + l
	}
	names := make([]string, numGlyphs)
	for gid := range names {
		if gid >= len(indices) {
			names[gid] = fmt.Sprintf("glyph%05d", gid)
			continue
		}
		inx := int(indices[gid])
		switch {
		case inx < len(macRomanNames):
			names[gid] = macRomanNames[inx]
		case inx-len(macRomanNames) < len(custom):
			names[gid] = custom[inx-len(macRomanNames)]
		default:
			return nil, Errorf(TagPost, "GlyphNameIndex", ErrBufferBounds, "glyph %d: name index %d", gid, inx)
		}
	}
	return names, nil
}

// EncodeV2 writes table 'post' in format 2 with the given glyph names,
// keeping all other header fields.
func (p *PostTable) EncodeV2(names []string) []byte {
	out := append([]byte(nil), p.raw...)
	PutU32(out, 0, 0x00020000)
	// memory usage fields are undefined for a rewritten font
	for i := 16; i < 32; i++ {
		out[i] = 0
	}
	out = AppendU16(out, uint16(len(names)))
	custom := make(map[string]int)
	var strs []string
	for _, name := range names {
		if inx, ok := macRomanIndex[name]; ok {
			out = AppendU16(out, uint16(inx))
			continue
		}
		inx, ok := custom[name]
		if !ok {
			inx = len(strs)
			custom[name] = inx
			strs = append(strs, name)
		}
		out = AppendU16(out, uint16(len(macRomanNames)+inx))
	}
	for _, s := range strs {
		if len(s) > 255 {
			s = s[:255]
		}
		out = append(out, uint8(len(s)))
		out = append(out, s...)
	}
	return out
}

var macRomanIndex = func() map[string]int {
	m := make(map[string]int, len(macRomanNames))
	for i, name := range macRomanNames {
		m[name] = i
	}
	return m
}()

// macRomanNames contains the 258 standard glyph names used in post format 1.0 and 2.0.
var macRomanNames = [258]string{
	".notdef", ".null", "nonmarkingreturn", "space", "exclam",
	"quotedbl", "numbersign", "dollar", "percent", "ampersand",
	"quotesingle", "parenleft", "parenright", "asterisk", "plus",
	"comma", "hyphen", "period", "slash", "zero",
	"one", "two", "three", "four", "five",
	"six", "seven", "eight", "nine", "colon",
	"semicolon", "less", "equal", "greater", "question",
	"at", "A", "B", "C", "D",
	"E", "F", "G", "H", "I",
	"J", "K", "L", "M", "N",
	"O", "P", "Q", "R", "S",
	"T", "U", "V", "W", "X",
	"Y", "Z", "bracketleft", "backslash", "bracketright",
	"asciicircum", "underscore", "grave", "a", "b",
	"c", "d", "e", "f", "g",
	"h", "i", "j", "k", "l",
	"m", "n", "o", "p", "q",
	"r", "s", "t", "u", "v",
	"w", "x", "y", "z", "braceleft",
	"bar", "braceright", "asciitilde", "Adieresis", "Aring",
	"Ccedilla", "Eacute", "Ntilde", "Odieresis", "Udieresis",
	"aacute", "agrave", "acircumflex", "adieresis", "atilde",
	"aring", "ccedilla", "eacute", "egrave", "ecircumflex",
	"edieresis", "iacute", "igrave", "icircumflex", "idieresis",
	"ntilde", "oacute", "ograve", "ocircumflex", "odieresis",
	"otilde", "uacute", "ugrave", "ucircumflex", "udieresis",
	"dagger", "degree", "cent", "sterling", "section",
	"bullet", "paragraph", "germandbls", "registered", "copyright",
	"trademark", "acute", "dieresis", "notequal", "AE",
	"Oslash", "infinity", "plusminus", "lessequal", "greaterequal",
	"yen", "mu", "partialdiff", "summation", "product",
	"pi", "integral", "ordfeminine", "ordmasculine", "Omega",
	"ae", "oslash", "questiondown", "exclamdown", "logicalnot",
	"radical", "florin", "approxequal", "Delta", "guillemotleft",
	"guillemotright", "ellipsis", "nonbreakingspace", "Agrave", "Atilde",
	"Otilde", "OE", "oe", "endash", "emdash",
	"quotedblleft", "quotedblright", "quoteleft", "quoteright", "divide",
	"lozenge", "ydieresis", "Ydieresis", "fraction", "currency",
	"guilsinglleft", "guilsinglright", "fi", "fl", "daggerdbl",
	"periodcentered", "quotesinglbase", "quotedblbase", "perthousand", "Acircumflex",
	"Ecircumflex", "Aacute", "Edieresis", "Egrave", "Iacute",
	"Icircumflex", "Idieresis", "Igrave", "Oacute", "Ocircumflex",
	"apple", "Ograve", "Uacute", "Ucircumflex", "Ugrave",
	"dotlessi", "circumflex", "tilde", "macron", "breve",
	"dotaccent", "ring", "cedilla", "hungarumlaut", "ogonek",
	"caron", "Lslash", "lslash", "Scaron", "scaron",
	"Zcaron", "zcaron", "brokenbar", "Eth", "eth",
	"Yacute", "yacute", "Thorn", "thorn", "minus",
	"multiply", "onesuperior", "twosuperior", "threesuperior", "onehalf",
	"onequarter", "threequarters", "franc", "Gbreve", "gbreve",
	"Idotaccent", "Scedilla", "scedilla", "Cacute", "cacute",
	"Ccaron", "ccaron", "dcroat",
}
