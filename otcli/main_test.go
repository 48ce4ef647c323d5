package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/npillmayer/ligpatch/internal/fonttest"
	"github.com/npillmayer/ligpatch/ot"
	"github.com/npillmayer/ligpatch/otedit"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFixtures writes target and source font into a temporary directory.
func writeFixtures(t *testing.T) (dir, target, source string) {
	dir = t.TempDir()
	target = filepath.Join(dir, "target.ttf")
	source = filepath.Join(dir, "source.ttf")
	require.NoError(t, os.WriteFile(target, fonttest.MustBuild(t, fonttest.TargetSpec()), 0o644))
	require.NoError(t, os.WriteFile(source, fonttest.MustBuild(t, fonttest.SourceSpec()), 0o644))
	return
}

func TestRunPatch(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.cli")
	defer teardown()
	//
	dir, target, source := writeFixtures(t)
	out := filepath.Join(dir, "out.ttf")
	code := run([]string{"-summary", target, source, out}, io.Discard)
	require.Equal(t, exitOK, code)
	f, err := otedit.LoadFont(out)
	require.NoError(t, err)
	assert.True(t, f.HasGlyph(fonttest.LigatureName("=>")))
	assert.True(t, f.HasGlyph("SPC"))
	assert.NotEmpty(t, f.GSUB().FeatureLookups(ot.T("calt")))
}

func TestRunWithLigatureFile(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.cli")
	defer teardown()
	//
	dir, target, source := writeFixtures(t)
	set := filepath.Join(dir, "ligatures.yaml")
	doc := "ligatures:\n  - sequence: \"=>\"\n    glyph: " + fonttest.LigatureName("=>") + "\n"
	require.NoError(t, os.WriteFile(set, []byte(doc), 0o644))
	out := filepath.Join(dir, "out.ttf")
	code := run([]string{"-ligatures", set, "-passes", "4", target, source, out}, io.Discard)
	require.Equal(t, exitOK, code)
	f, err := otedit.LoadFont(out)
	require.NoError(t, err)
	assert.True(t, f.HasGlyph(fonttest.LigatureName("=>")))
	assert.False(t, f.HasGlyph(fonttest.LigatureName("<=>")))
}

func TestRunTransplant(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.cli")
	defer teardown()
	//
	dir, target, source := writeFixtures(t)
	out := filepath.Join(dir, "out.ttf")
	code := run([]string{"-mode", "transplant", target, source, out}, io.Discard)
	assert.Equal(t, exitOK, code)
	_, err := os.Stat(out)
	assert.NoError(t, err)
}

func TestRunExitCodes(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.cli")
	defer teardown()
	//
	dir, target, source := writeFixtures(t)
	out := filepath.Join(dir, "out.ttf")
	missing := filepath.Join(dir, "missing.ttf")
	for _, tc := range []struct {
		name string
		args []string
		code int
	}{
		{"no arguments", nil, exitUsage},
		{"too few fonts", []string{target, source}, exitUsage},
		{"bad mode", []string{"-mode", "merge", target, source, out}, exitUsage},
		{"bad feature tag", []string{"-feature", "ca", target, source, out}, exitUsage},
		{"bad trace level", []string{"-trace", "Loud", target, source, out}, exitUsage},
		{"bad italic angle", []string{"-italic", "steep", target, source, out}, exitUsage},
		{"missing ligature file", []string{"-ligatures", missing, target, source, out}, exitUsage},
		{"inspect without font", []string{"inspect"}, exitUsage},
		{"nothing to patch", []string{target, target, out}, exitPatch},
		{"missing feature", []string{"-mode", "transplant", "-feature", "ss01", target, source, out}, exitPatch},
		{"missing target", []string{missing, source, out}, exitLoad},
		{"missing source", []string{target, missing, out}, exitLoad},
		{"inspect missing font", []string{"inspect", missing}, exitLoad},
		{"unwritable output", []string{target, source, filepath.Join(dir, "no", "out.ttf")}, exitSave},
	} {
		assert.Equal(t, tc.code, run(tc.args, io.Discard), tc.name)
	}
}

func TestParseFlagsErrors(t *testing.T) {
	for _, tc := range []struct {
		args []string
		msg  string
	}{
		{[]string{"-feature", "ca", "a", "b", "c"}, "feature tag must have 4 characters: 'ca'"},
		{[]string{"-feature", "calt1", "a", "b", "c"}, "feature tag must have 4 characters"},
		{[]string{"a", "b"}, "expected target, source and output font"},
		{[]string{"-mode", "merge", "a", "b", "c"}, "invalid mode: merge"},
	} {
		_, err := parseFlags(tc.args, io.Discard)
		require.Error(t, err, tc.args)
		assert.Contains(t, err.Error(), tc.msg)
	}
	c, err := parseFlags([]string{"-feature", "liga", "a", "b", "c"}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, "liga", c.feature)
	assert.Equal(t, []string{"a", "b", "c"}, c.args)
}

func TestRunReportsFlagErrors(t *testing.T) {
	var stderr strings.Builder
	assert.Equal(t, exitUsage, run([]string{"-feature", "ca", "a", "b", "c"}, &stderr))
	assert.Contains(t, stderr.String(), "feature tag must have 4 characters")
	assert.NotContains(t, stderr.String(), "expected target, source and output font")
}

func TestParseCommand(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.cli")
	defer teardown()
	//
	intp := &Intp{}
	cmd := intp.parseCommand("lookup:3 LOOKUP:4")
	require.Len(t, cmd.ops, 2)
	assert.Equal(t, Op{code: LOOKUP, arg: "3"}, cmd.ops[0])
	assert.Equal(t, Op{code: LOOKUP, arg: "4"}, cmd.ops[1])
	//
	cmd = intp.parseCommand("features shape:x => y")
	require.Len(t, cmd.ops, 2)
	assert.Equal(t, FEATURES, cmd.ops[0].code)
	assert.Equal(t, Op{code: SHAPE, arg: "x => y"}, cmd.ops[1])
	//
	cmd = intp.parseCommand("frobnicate:1")
	require.Len(t, cmd.ops, 1)
	assert.Equal(t, Op{code: HELP}, cmd.ops[0])
}

func TestExecute(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.cli")
	defer teardown()
	//
	_, _, source := writeFixtures(t)
	font, err := otedit.LoadFont(source)
	require.NoError(t, err)
	intp := &Intp{font: font}
	stop, err := intp.execute(intp.parseCommand("features lookups lookup:0 closure:calt glyph:equal shape:=>"))
	assert.NoError(t, err)
	assert.False(t, stop)
	_, err = intp.execute(intp.parseCommand("lookup:999"))
	assert.Error(t, err)
	_, err = intp.execute(intp.parseCommand("lookup:x"))
	assert.Error(t, err)
	_, err = intp.execute(intp.parseCommand("glyph:nosuchglyph"))
	assert.ErrorIs(t, err, otedit.ErrGlyphMissing)
	stop, err = intp.execute(intp.parseCommand("quit lookups"))
	assert.NoError(t, err)
	assert.True(t, stop)
}

func TestExecuteWithoutGSUB(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.cli")
	defer teardown()
	//
	_, target, _ := writeFixtures(t)
	font, err := otedit.LoadFont(target)
	require.NoError(t, err)
	font.SetGSUB(nil)
	intp := &Intp{font: font}
	for _, line := range []string{"features", "lookups", "lookup:0", "closure:calt", "shape:=>"} {
		_, err = intp.execute(intp.parseCommand(line))
		assert.ErrorIs(t, err, errNoGSUB, line)
	}
}
