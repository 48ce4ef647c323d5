/*
Package otpatch transplants ligatures from one TrueType font into another.

Two pipelines are offered. PatchLigatures copies a set of ligature glyphs
from a source font and synthesizes contextual substitution rules for them
in the target font. TransplantFeature copies a complete GSUB feature,
together with every lookup it reaches and every glyph those lookups
mention, from the source font into the target font.

Both pipelines run the same four stages:

▪︎ The importer copies glyph outlines and metrics, scaled to the target's
character width and optionally slanted. Composite glyphs are decomposed and
hinting instructions are dropped.

▪︎ The synthesizer builds new lookups from scratch, or the collector finds
a feature's transitive lookup closure in the source font.

▪︎ The remapper rewrites lookup indices, as GSUB lookups reference each
other by position in the lookup list.

▪︎ The installer wires the new lookups into the target's feature list.

# Synthesized rules

A ligature c₀…cₙ₋₁ is encoded as n chained contextual lookups. Lookup k
matches cₖ with k padding glyphs as backtrack and cₖ₊₁…cₙ₋₁ as lookahead,
and replaces cₖ by the padding glyph, or by the ligature glyph for the last
character. Shorter ligatures contained in longer ones are guarded by ignore
rules (rules without substitution), and ligatures are processed longest
first.

Runs of '=' and '>' longer than any ligature are blocked: a seed lookup
marks an '=' which starts or continues such a run by its ".noliga" variant,
and a fixed number of propagation lookups spread the marking over the whole
run. The number of passes bounds the length of runs which are blocked
completely.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package otpatch

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'font.patch'
func tracer() tracing.Trace {
	return tracing.Select("font.patch")
}
