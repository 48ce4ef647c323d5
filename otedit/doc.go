/*
Package otedit holds a mutable TrueType font for editing.

A Font is decoded from a font binary, edited in memory and encoded back. It
carries the glyph order with glyph names, glyph outlines, horizontal
metrics, the character map and an editable GSUB table. Glyph outlines are
decoded on first access; untouched glyphs are written back byte for byte.

Appending glyphs never changes the index of existing glyphs, so existing
lookups and the character map stay valid across edits. Encoding rebuilds
tables 'glyf', 'loca', 'hmtx', 'hhea', 'maxp', 'head', 'post' and 'GSUB'.
Tables 'DSIG', 'hdmx' and 'LTSH' are dropped, as they would be stale after
editing. All other tables are passed through unchanged.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package otedit

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'font.edit'
func tracer() tracing.Trace {
	return tracing.Select("font.edit")
}
