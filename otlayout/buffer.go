package otlayout

import "github.com/npillmayer/ligpatch/ot"

// GlyphSlice is a mutable sequence of glyph IDs.
//
// Replace, Insert and Delete follow slice semantics and return the
// resulting slice. Callers must always use the returned value.
// Out-of-range indices panic.
type GlyphSlice []ot.GlyphIndex

// Replace replaces the range [i:j) with repl.
func (b GlyphSlice) Replace(i, j int, repl []ot.GlyphIndex) GlyphSlice {
	if len(repl) == j-i {
		copy(b[i:j], repl)
		return b
	}
	out := make(GlyphSlice, 0, len(b)-(j-i)+len(repl))
	out = append(out, b[:i]...)
	out = append(out, repl...)
	return append(out, b[j:]...)
}

// Insert inserts glyphs before index i.
func (b GlyphSlice) Insert(i int, glyphs []ot.GlyphIndex) GlyphSlice {
	return b.Replace(i, i, glyphs)
}

// Delete removes the range [i:j).
func (b GlyphSlice) Delete(i, j int) GlyphSlice {
	return b.Replace(i, j, nil)
}

// matchAt reports whether glyphs occur at position i of b.
func (b GlyphSlice) matchAt(i int, glyphs []ot.GlyphIndex) bool {
	if i < 0 || i+len(glyphs) > len(b) {
		return false
	}
	for k, g := range glyphs {
		if b[i+k] != g {
			return false
		}
	}
	return true
}

// matchBefore reports whether glyphs precede position i of b, nearest first.
func (b GlyphSlice) matchBefore(i int, glyphs []ot.GlyphIndex) bool {
	if i-len(glyphs) < 0 {
		return false
	}
	for k, g := range glyphs {
		if b[i-1-k] != g {
			return false
		}
	}
	return true
}
