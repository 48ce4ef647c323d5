package otpatch

import (
	"errors"
	"fmt"
	"sort"

	"github.com/npillmayer/ligpatch/ot"
	"github.com/npillmayer/ligpatch/otgsub"
)

// ErrNoFeature flags a feature tag not present in a GSUB table.
var ErrNoFeature = errors.New("feature not found")

// FindFeatureLookups returns the lookups a feature activates (direct) and the
// transitive closure of lookups reachable from them through lookup records
// (closure, including direct). Both are sorted ascending. References to
// lookups past the end of the lookup list are left out and traced.
func FindFeatureLookups(gsub *otgsub.Table, tag ot.Tag) (direct, closure []int, err error) {
	if gsub == nil || gsub.FeatureIndex(tag) < 0 {
		return nil, nil, fmt.Errorf("%w: '%s'", ErrNoFeature, tag)
	}
	seen := make(map[int]bool)
	var queue []int
	for _, inx := range gsub.FeatureLookups(tag) {
		i := int(inx)
		if i >= len(gsub.Lookups) {
			tracer().Errorf("feature '%s' references missing lookup %d", tag, i)
			continue
		}
		if !seen[i] {
			seen[i] = true
			direct = append(direct, i)
			queue = append(queue, i)
		}
	}
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		for _, ref := range otgsub.LookupRefs(gsub.Lookups[i]) {
			if ref >= len(gsub.Lookups) {
				tracer().Errorf("lookup %d references missing lookup %d", i, ref)
				continue
			}
			if !seen[ref] {
				seen[ref] = true
				queue = append(queue, ref)
			}
		}
	}
	for i := range seen {
		closure = append(closure, i)
	}
	sort.Ints(direct)
	sort.Ints(closure)
	return direct, closure, nil
}

// CollectReferencedGlyphs returns the names of all glyphs matched or produced
// by the given lookups. names is the glyph order of the font gsub belongs to.
// Glyph IDs outside the glyph order are returned as dangling.
func CollectReferencedGlyphs(gsub *otgsub.Table, names []string, lookups []int) (map[string]struct{}, []ot.GlyphIndex) {
	set := make(otgsub.GlyphSet)
	for _, i := range lookups {
		if i < 0 || i >= len(gsub.Lookups) {
			continue
		}
		for _, st := range gsub.Lookups[i].Subtables {
			otgsub.Glyphs(st, set)
		}
	}
	referenced := make(map[string]struct{}, len(set))
	var dangling []ot.GlyphIndex
	for _, g := range set.Sorted() {
		if int(g) >= len(names) {
			dangling = append(dangling, g)
			continue
		}
		referenced[names[g]] = struct{}{}
	}
	return referenced, dangling
}
