/*
Package ot reads and writes the binary tables of TrueType-flavoured OpenType fonts.

Package ot is the low-level layer of ligpatch. It splits a font binary into its
tables and offers codecs for the tables an editing round-trip has to touch:
'head', 'hhea', 'maxp', 'hmtx', 'loca', 'glyf', 'post', 'cmap' and 'OS/2'.
Every codec decodes into plain Go structs and encodes them back; tables
without a codec are carried as raw bytes by clients. Writing a font from its
tables is the job of FontBuilder.

Only fonts with TrueType outlines ('glyf') are supported. Fonts with CFF
outlines ('OTTO') are rejected with ErrUnsupportedFormat.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package ot

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'font.opentype'
func tracer() tracing.Trace {
	return tracing.Select("font.opentype")
}
