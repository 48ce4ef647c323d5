package otgsub

import (
	"fmt"
	"sort"

	"github.com/npillmayer/ligpatch/ot"
)

// LookupType identifies the kind of substitution a lookup performs.
type LookupType uint16

// GSUB lookup types.
const (
	SingleType       LookupType = 1
	MultipleType     LookupType = 2
	AlternateType    LookupType = 3
	LigatureType     LookupType = 4
	ContextType      LookupType = 5
	ChainContextType LookupType = 6
	ExtensionType    LookupType = 7
	ReverseChainType LookupType = 8
)

func (lt LookupType) String() string {
	switch lt {
	case SingleType:
		return "Single"
	case MultipleType:
		return "Multiple"
	case AlternateType:
		return "Alternate"
	case LigatureType:
		return "Ligature"
	case ContextType:
		return "Context"
	case ChainContextType:
		return "ChainContext"
	case ExtensionType:
		return "Extension"
	case ReverseChainType:
		return "ReverseChain"
	}
	return fmt.Sprintf("LookupType(%d)", uint16(lt))
}

// Lookup flags.
const (
	RightToLeft         uint16 = 0x0001
	IgnoreBaseGlyphs    uint16 = 0x0002
	IgnoreLigatures     uint16 = 0x0004
	IgnoreMarks         uint16 = 0x0008
	UseMarkFilteringSet uint16 = 0x0010
)

// NoRequiredFeature marks a LangSys without a required feature.
const NoRequiredFeature = 0xffff

// Table is an editable GSUB table.
type Table struct {
	MajorVersion uint16
	MinorVersion uint16
	Scripts      []ScriptRecord
	Features     []FeatureRecord
	Lookups      []*Lookup
	Variations   *FeatureVariations // GSUB 1.1 only
}

// NewTable creates an empty GSUB table version 1.0.
func NewTable() *Table {
	return &Table{MajorVersion: 1}
}

// ScriptRecord is an entry of the script list.
type ScriptRecord struct {
	Tag    ot.Tag
	Script *Script
}

// Script lists the language systems of a script.
type Script struct {
	Default   *LangSys
	Languages []LangSysRecord
}

// LangSysRecord is a language-specific LangSys of a script.
type LangSysRecord struct {
	Tag     ot.Tag
	LangSys *LangSys
}

// LangSys activates features for a language system, by feature index.
type LangSys struct {
	RequiredFeature uint16 // NoRequiredFeature if absent
	Features        []uint16
}

// FeatureRecord is an entry of the feature list.
type FeatureRecord struct {
	Tag     ot.Tag
	Feature *Feature
}

// Feature selects lookups by index. Order of lookups is not significant for
// shaping engines, which apply lookups in lookup list order.
type Feature struct {
	Params  []byte // raw FeatureParams table, if any
	Lookups []uint16
}

// Lookup is an entry of the lookup list.
type Lookup struct {
	Type             LookupType // never ExtensionType
	Flag             uint16
	MarkFilteringSet uint16
	Subtables        []Subtable
	Extension        bool // encode with extension subtables
}

// SequenceLookupRecord invokes lookup LookupListIndex at position
// SequenceIndex of a matched input sequence.
type SequenceLookupRecord struct {
	SequenceIndex   uint16
	LookupListIndex uint16
}

// --- Features ---------------------------------------------------------------

// FeatureIndex returns the index of the first feature record with tag, or -1.
func (t *Table) FeatureIndex(tag ot.Tag) int {
	for i, rec := range t.Features {
		if rec.Tag == tag {
			return i
		}
	}
	return -1
}

// FeatureLookups returns the lookup indices of all feature records with tag,
// in order of appearance and without duplicates. Fonts may carry several
// records for one tag, e.g. for different scripts.
func (t *Table) FeatureLookups(tag ot.Tag) []uint16 {
	var lookups []uint16
	seen := make(map[uint16]bool)
	for _, rec := range t.Features {
		if rec.Tag != tag {
			continue
		}
		for _, inx := range rec.Feature.Lookups {
			if !seen[inx] {
				seen[inx] = true
				lookups = append(lookups, inx)
			}
		}
	}
	return lookups
}

// AddFeature inserts a new feature record, keeping the feature list sorted by
// tag. Feature indices in all language systems and feature variations are
// renumbered. AddFeature returns the index of the new record.
func (t *Table) AddFeature(tag ot.Tag, lookups []uint16) int {
	at := sort.Search(len(t.Features), func(i int) bool { return t.Features[i].Tag > tag })
	rec := FeatureRecord{Tag: tag, Feature: &Feature{Lookups: append([]uint16(nil), lookups...)}}
	t.Features = append(t.Features, FeatureRecord{})
	copy(t.Features[at+1:], t.Features[at:])
	t.Features[at] = rec
	shift := func(inx uint16) uint16 {
		if inx != NoRequiredFeature && int(inx) >= at {
			return inx + 1
		}
		return inx
	}
	t.forEachLangSys(func(ls *LangSys) {
		ls.RequiredFeature = shift(ls.RequiredFeature)
		for i := range ls.Features {
			ls.Features[i] = shift(ls.Features[i])
		}
	})
	if t.Variations != nil {
		for _, rec := range t.Variations.Records {
			for i := range rec.Substitutions {
				rec.Substitutions[i].FeatureIndex = shift(rec.Substitutions[i].FeatureIndex)
			}
		}
	}
	tracer().Debugf("added feature '%s' at index %d", tag, at)
	return at
}

// RegisterFeature activates feature index in the default and every
// language-specific LangSys of every script. If the table has no scripts,
// script 'DFLT' with a default LangSys is created.
func (t *Table) RegisterFeature(index int) {
	if len(t.Scripts) == 0 {
		t.Scripts = append(t.Scripts, ScriptRecord{
			Tag:    ot.DFLT,
			Script: &Script{Default: &LangSys{RequiredFeature: NoRequiredFeature}},
		})
	}
	for _, rec := range t.Scripts {
		if rec.Script.Default == nil {
			rec.Script.Default = &LangSys{RequiredFeature: NoRequiredFeature}
		}
	}
	t.forEachLangSys(func(ls *LangSys) {
		for _, f := range ls.Features {
			if int(f) == index {
				return
			}
		}
		ls.Features = append(ls.Features, uint16(index))
	})
}

func (t *Table) forEachLangSys(fn func(*LangSys)) {
	seen := make(map[*LangSys]bool)
	visit := func(ls *LangSys) {
		if ls != nil && !seen[ls] {
			seen[ls] = true
			fn(ls)
		}
	}
	for _, rec := range t.Scripts {
		visit(rec.Script.Default)
		for _, lang := range rec.Script.Languages {
			visit(lang.LangSys)
		}
	}
}

// --- Lookups ----------------------------------------------------------------

// AddLookup appends a lookup to the lookup list and returns its index.
func (t *Table) AddLookup(l *Lookup) int {
	t.Lookups = append(t.Lookups, l)
	return len(t.Lookups) - 1
}

// NewLookup creates a lookup of a given type with one subtable.
func NewLookup(st Subtable) *Lookup {
	return &Lookup{Type: st.Type(), Subtables: []Subtable{st}}
}

// Clone returns a deep copy of the lookup.
func (l *Lookup) Clone() *Lookup {
	c := *l
	c.Subtables = make([]Subtable, len(l.Subtables))
	for i, st := range l.Subtables {
		c.Subtables[i] = cloneSubtable(st)
	}
	return &c
}
