package otpatch

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/npillmayer/ligpatch/ot"
	"gopkg.in/yaml.v3"
)

// Ligature maps a character sequence to a ligature glyph.
type Ligature struct {
	Sequence string `yaml:"sequence"`
	Glyph    string `yaml:"glyph"`
}

// CharGlyph names the glyph of a character taking part in ligatures.
type CharGlyph struct {
	Char  rune
	Glyph string
}

// DefaultChars are the characters of the default ligature set.
var DefaultChars = []CharGlyph{
	{'=', "equal"}, {'>', "greater"}, {'<', "less"}, {'-', "hyphen"}, {'|', "bar"},
}

// DefaultLigatures are the arrow and comparison ligatures of JetBrains Mono,
// longest first.
var DefaultLigatures = []Ligature{
	{"<==>", "less_equal_equal_greater.liga"},
	{"==>", "equal_equal_greater.liga"},
	{"=>>", "equal_greater_greater.liga"},
	{"<<=", "less_less_equal.liga"},
	{">>=", "greater_greater_equal.liga"},
	{"<=<", "less_equal_less.liga"},
	{">=>", "greater_equal_greater.liga"},
	{"<==", "less_equal_equal.liga"},
	{"<=>", "less_equal_greater.liga"},
	{"<=|", "less_equal_bar.liga"},
	{"|=>", "bar_equal_greater.liga"},
	{"=<<", "equal_less_less.liga"},
	{"<-<", "less_hyphen_less.liga"},
	{">->", "greater_hyphen_greater.liga"},
	{"-<<", "hyphen_less_less.liga"},
	{">>-", "greater_greater_hyphen.liga"},
	{"=>", "equal_greater.liga"},
}

// Options configure both pipelines.
type Options struct {
	Ligatures         []Ligature
	Chars             []CharGlyph
	Feature           ot.Tag   // feature to install into, default 'calt'
	PropagationPasses int      // passes of run blocking, default 20
	BlockRuns         bool     // synthesize run blocking for '=' and '>'
	Padding           string   // name of the padding glyph, default "SPC"
	ReferenceGlyph    string   // glyph defining the character width, default "equal"
	ItalicAngle       *float64 // overrides detection of the target's italic angle
}

// DefaultOptions returns options with the default ligature set.
func DefaultOptions() Options {
	return Options{
		Ligatures:         append([]Ligature(nil), DefaultLigatures...),
		Chars:             append([]CharGlyph(nil), DefaultChars...),
		Feature:           ot.T("calt"),
		PropagationPasses: 20,
		BlockRuns:         true,
		Padding:           "SPC",
		ReferenceGlyph:    "equal",
	}
}

// withDefaults fills unset fields and orders ligatures longest first.
func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.Ligatures == nil {
		o.Ligatures = def.Ligatures
	}
	if o.Chars == nil {
		o.Chars = def.Chars
	}
	if o.Feature == 0 {
		o.Feature = def.Feature
	}
	if o.PropagationPasses <= 0 {
		o.PropagationPasses = def.PropagationPasses
	}
	if o.Padding == "" {
		o.Padding = def.Padding
	}
	if o.ReferenceGlyph == "" {
		o.ReferenceGlyph = def.ReferenceGlyph
	}
	o.Ligatures = LongestFirst(o.Ligatures)
	return o
}

// charGlyph returns the glyph name for a character.
func (o Options) charGlyph(r rune) (string, bool) {
	for _, cg := range o.Chars {
		if cg.Char == r {
			return cg.Glyph, true
		}
	}
	return "", false
}

// LongestFirst returns ligatures sorted by decreasing sequence length,
// keeping the order of ligatures of equal length.
func LongestFirst(ligs []Ligature) []Ligature {
	sorted := append([]Ligature(nil), ligs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return utf8.RuneCountInString(sorted[i].Sequence) > utf8.RuneCountInString(sorted[j].Sequence)
	})
	return sorted
}

// ErrLigatureSet flags an invalid ligature set file.
var ErrLigatureSet = errors.New("invalid ligature set")

// LigatureSet is the content of a ligature set file:
//
//	chars:
//	  "=": equal
//	  ">": greater
//	ligatures:
//	  - sequence: "==>"
//	    glyph: equal_equal_greater.liga
type LigatureSet struct {
	Chars     map[string]string `yaml:"chars"`
	Ligatures []Ligature        `yaml:"ligatures"`
}

// LoadLigatureSet reads a ligature set in YAML format. Without a chars
// section, the default characters are used. Ligature glyph names may be
// omitted; they default to the character glyph names joined by '_' with
// suffix ".liga".
func LoadLigatureSet(r io.Reader) ([]Ligature, []CharGlyph, error) {
	var set LigatureSet
	if err := yaml.NewDecoder(r).Decode(&set); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrLigatureSet, err)
	}
	chars := DefaultChars
	if len(set.Chars) > 0 {
		chars = make([]CharGlyph, 0, len(set.Chars))
		for s, name := range set.Chars {
			r, n := utf8.DecodeRuneInString(s)
			if n == 0 || n != len(s) || name == "" {
				return nil, nil, fmt.Errorf("%w: bad character entry %q: %q", ErrLigatureSet, s, name)
			}
			chars = append(chars, CharGlyph{Char: r, Glyph: name})
		}
		sort.Slice(chars, func(i, j int) bool { return chars[i].Char < chars[j].Char })
	}
	opts := Options{Chars: chars}
	ligs := make([]Ligature, 0, len(set.Ligatures))
	for _, lig := range set.Ligatures {
		if utf8.RuneCountInString(lig.Sequence) < 2 {
			return nil, nil, fmt.Errorf("%w: sequence %q too short", ErrLigatureSet, lig.Sequence)
		}
		names := make([]string, 0, len(lig.Sequence))
		for _, r := range lig.Sequence {
			name, ok := opts.charGlyph(r)
			if !ok {
				return nil, nil, fmt.Errorf("%w: no glyph for character %q of %q", ErrLigatureSet, r, lig.Sequence)
			}
			names = append(names, name)
		}
		if lig.Glyph == "" {
			lig.Glyph = strings.Join(names, "_") + ".liga"
		}
		ligs = append(ligs, lig)
	}
	if len(ligs) == 0 {
		return nil, nil, fmt.Errorf("%w: no ligatures", ErrLigatureSet)
	}
	return LongestFirst(ligs), chars, nil
}
