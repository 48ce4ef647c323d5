/*
Package otgsub holds an editable model of an OpenType 'GSUB' table.

A GSUB table is a graph of lookups which reference each other by position in
the table's lookup list. Features select lookups by index, and contextual
lookups invoke other lookups by index through sequence lookup records.
Package otgsub keeps lookups in a single slice (the arena) and all
references as plain integer indices, so inserting or relocating lookups is
a matter of rewriting indices.

Lookup subtables form a closed set of types implementing Subtable. Every
concern that has to touch all subtable formats (walking lookup records,
collecting glyphs, remapping glyphs, encoding) is implemented as a Visitor,
with one method per subtable type. Adding a subtable type therefore breaks
compilation of every concern until it is handled.

Extension subtables (lookup type 7) are unwrapped when parsing; Lookup.Extension
remembers the wrapping, and Encode re-introduces it when offsets would
overflow.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package otgsub

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'font.gsub'
func tracer() tracing.Trace {
	return tracing.Select("font.gsub")
}
