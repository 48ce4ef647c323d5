/*
Package otlayout applies GSUB features to a string, for verification of
edited fonts.

Shape maps characters to glyphs with a font's cmap and runs the lookups of
all enabled features, in lookup list order, over the glyph buffer. Every
lookup is a full pass over the buffer. At each position the subtables of a
lookup are tried in order and the first rule that matches is applied. A
contextual rule without lookup records still counts as applied: it
consumes its input, which keeps later rules of the same lookup from
matching there.

Glyph positioning, mark filtering and lookup flags are not implemented;
the package covers what is needed to check substitutions, not to
typeset text.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package otlayout

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'font.layout'
func tracer() tracing.Trace {
	return tracing.Select("font.layout")
}
