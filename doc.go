/*
Package ligpatch is for patching programming ligatures into TrueType fonts.

Ligatures like "=>" or "<==>" are copied as glyphs from a source font into
a target font, together with contextual substitution rules which replace
the characters of a sequence by padding glyphs and the ligature glyph. The
work is done by package otpatch; this package offers loading of fonts for
inspection and a file-to-file entry point.

There is a certain confusion with the nomenclature of typesetting. We will
stick to the following definitions:

▪︎ A "typeface" is a family of fonts. An example is "Helvetica".
This corresponds to a TrueType "collection" (*.ttc).

▪︎ A "scalable font" is a font, i.e. a variant of a typeface with a
certain weight, slant, etc.  An example is "Helvetica regular".

Please note that Go (Golang) does use the terms "font" and "face"
differently–actually more or less in an opposite manner.

# Status

Font collections (*.ttc) and CFF outlines are not supported.

# Links

OpenType explained:
https://docs.microsoft.com/en-us/typography/opentype/

______________________________________________________________________

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package ligpatch

import "github.com/npillmayer/schuko/tracing"

// tracer writes to trace with key 'font.opentype'
func tracer() tracing.Trace {
	return tracing.Select("font.opentype")
}
