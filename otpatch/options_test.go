package otpatch

import (
	"strings"
	"testing"

	"github.com/npillmayer/ligpatch/internal/fonttest"
	"github.com/npillmayer/ligpatch/ot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	require.Len(t, opts.Ligatures, len(fonttest.Ligatures))
	for i, lig := range opts.Ligatures {
		assert.Equal(t, fonttest.Ligatures[i], lig.Sequence)
		assert.Equal(t, fonttest.LigatureName(lig.Sequence), lig.Glyph)
	}
	assert.Equal(t, ot.T("calt"), opts.Feature)
	assert.Equal(t, 20, opts.PropagationPasses)
	assert.True(t, opts.BlockRuns)
	name, ok := opts.charGlyph('|')
	assert.True(t, ok)
	assert.Equal(t, "bar", name)
}

func TestWithDefaults(t *testing.T) {
	opts := Options{Ligatures: []Ligature{{"=>", "a"}, {"<==>", "b"}, {"<=", "c"}, {"==>", "d"}}}
	opts = opts.withDefaults()
	assert.Equal(t, []Ligature{{"<==>", "b"}, {"==>", "d"}, {"=>", "a"}, {"<=", "c"}}, opts.Ligatures)
	assert.Equal(t, "SPC", opts.Padding)
	assert.Equal(t, "equal", opts.ReferenceGlyph)
	assert.Equal(t, ot.T("calt"), opts.Feature)
	assert.Equal(t, 20, opts.PropagationPasses)
	assert.False(t, opts.BlockRuns)
}

func TestLoadLigatureSet(t *testing.T) {
	ligs, chars, err := LoadLigatureSet(strings.NewReader(`
ligatures:
  - sequence: "=>"
  - sequence: "<=>"
    glyph: arrow.both
`))
	require.NoError(t, err)
	assert.Equal(t, DefaultChars, chars)
	assert.Equal(t, []Ligature{{"<=>", "arrow.both"}, {"=>", "equal_greater.liga"}}, ligs)
	//
	ligs, chars, err = LoadLigatureSet(strings.NewReader(`
chars:
  "~": asciitilde
  ">": greater
ligatures:
  - sequence: "~>"
`))
	require.NoError(t, err)
	assert.Equal(t, []CharGlyph{{'>', "greater"}, {'~', "asciitilde"}}, chars)
	assert.Equal(t, []Ligature{{"~>", "asciitilde_greater.liga"}}, ligs)
}

func TestLoadLigatureSetErrors(t *testing.T) {
	for _, doc := range []string{
		"ligatures: [",
		"ligatures: []",
		"ligatures:\n  - sequence: \"=\"\n",
		"ligatures:\n  - sequence: \"=~\"\n",
		"chars:\n  \"ab\": x\nligatures:\n  - sequence: \"ab\"\n",
	} {
		_, _, err := LoadLigatureSet(strings.NewReader(doc))
		assert.ErrorIs(t, err, ErrLigatureSet, "document %q", doc)
	}
}
