package otpatch

import (
	"errors"
	"fmt"

	"github.com/npillmayer/ligpatch/ot"
	"github.com/npillmayer/ligpatch/otedit"
	"github.com/npillmayer/ligpatch/otgsub"
)

// ErrTooManyLookups flags a lookup list exceeding 65535 entries.
var ErrTooManyLookups = errors.New("too many lookups")

// InsertMapping returns the index mapping for inserting n lookups at
// position at of a lookup list of length oldLen: indices below at are kept,
// all others move up by n.
func InsertMapping(oldLen, at, n int) []int {
	mapping := make([]int, oldLen)
	for i := range mapping {
		if i < at {
			mapping[i] = i
		} else {
			mapping[i] = i + n
		}
	}
	return mapping
}

// AppendMapping returns the index mapping for appending the given lookups,
// in ascending order, to a lookup list of length base.
func AppendMapping(lookups []int, base int) map[int]int {
	mapping := make(map[int]int, len(lookups))
	for rank, i := range lookups {
		mapping[i] = base + rank
	}
	return mapping
}

// InsertLookups inserts lookups into gsub's lookup list at position at.
// References held by features, feature variations and existing lookups are
// rewritten. References inside the inserted lookups are relative to the
// inserted list and are shifted by at.
func InsertLookups(gsub *otgsub.Table, at int, lookups []*otgsub.Lookup) error {
	if at < 0 || at > len(gsub.Lookups) {
		return fmt.Errorf("cannot insert lookups at %d of %d", at, len(gsub.Lookups))
	}
	if len(gsub.Lookups)+len(lookups) > 0xffff {
		return fmt.Errorf("%w: %d + %d", ErrTooManyLookups, len(gsub.Lookups), len(lookups))
	}
	n := len(lookups)
	mapping := InsertMapping(len(gsub.Lookups), at, n)
	shift := func(i int) int {
		if i < len(mapping) {
			return mapping[i]
		}
		tracer().Errorf("dangling lookup reference %d", i)
		return i + n
	}
	gsub.RemapFeatureLookups(shift)
	otgsub.RemapLookupRefs(gsub.Lookups, shift)
	otgsub.RemapLookupRefs(lookups, func(i int) int { return i + at })
	merged := make([]*otgsub.Lookup, 0, len(gsub.Lookups)+n)
	merged = append(merged, gsub.Lookups[:at]...)
	merged = append(merged, lookups...)
	merged = append(merged, gsub.Lookups[at:]...)
	gsub.Lookups = merged
	tracer().Debugf("inserted %d lookups at %d", n, at)
	return nil
}

// RemapCopied rewrites references inside copied lookups by mapping. A
// reference without a mapping entry is kept and traced.
func RemapCopied(lookups []*otgsub.Lookup, mapping map[int]int) {
	otgsub.RemapLookupRefs(lookups, func(i int) int {
		if m, ok := mapping[i]; ok {
			return m
		}
		tracer().Errorf("copied lookup references lookup %d outside the copy", i)
		return i
	})
}

// CopyLookups returns deep copies of source lookups, with glyphs mapped from
// source to target by name. Rules matching glyphs unknown to target are
// dropped; unknown output glyphs become .notdef.
func CopyLookups(source, target *otedit.Font, lookups []int) []*otgsub.Lookup {
	mapGlyph := func(g ot.GlyphIndex) (ot.GlyphIndex, bool) {
		if int(g) >= source.NumGlyphs() {
			return 0, false
		}
		return target.GlyphID(source.GlyphName(g))
	}
	gsub := source.GSUB()
	copies := make([]*otgsub.Lookup, 0, len(lookups))
	for _, i := range lookups {
		l := gsub.Lookups[i]
		c := *l
		c.Subtables = make([]otgsub.Subtable, len(l.Subtables))
		for k, st := range l.Subtables {
			c.Subtables[k] = otgsub.RemapGlyphs(st, mapGlyph)
		}
		copies = append(copies, &c)
	}
	return copies
}
