package otpatch

import (
	"fmt"

	"github.com/npillmayer/ligpatch/ot"
	"github.com/npillmayer/ligpatch/otgsub"
)

// Strategy determines how lookups are installed into an existing feature.
type Strategy int

const (
	// Prepend puts the new lookups in front of the feature's lookups.
	Prepend Strategy = iota
	// Replace makes the new lookups the feature's only lookups.
	Replace
)

func (s Strategy) String() string {
	switch s {
	case Prepend:
		return "prepend"
	case Replace:
		return "replace"
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

// InstallFeature activates lookups by feature tag. Every feature record with
// tag is updated according to strategy. If gsub has no such feature, a
// feature record is added and registered with all language systems.
// InstallFeature returns the number of feature records touched.
func InstallFeature(gsub *otgsub.Table, tag ot.Tag, lookups []int, strategy Strategy) int {
	indices := make([]uint16, len(lookups))
	for i, l := range lookups {
		indices[i] = uint16(l)
	}
	touched := 0
	for _, rec := range gsub.Features {
		if rec.Tag != tag {
			continue
		}
		switch strategy {
		case Replace:
			rec.Feature.Lookups = append([]uint16(nil), indices...)
		default:
			rec.Feature.Lookups = append(append([]uint16(nil), indices...), rec.Feature.Lookups...)
		}
		touched++
	}
	if touched > 0 {
		tracer().Infof("installed %d lookups into feature '%s' (%s)", len(lookups), tag, strategy)
		return touched
	}
	inx := gsub.AddFeature(tag, indices)
	gsub.RegisterFeature(inx)
	tracer().Infof("created feature '%s' with %d lookups", tag, len(lookups))
	return 1
}
