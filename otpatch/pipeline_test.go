package otpatch

import (
	"strings"
	"testing"

	"github.com/npillmayer/ligpatch/internal/fonttest"
	"github.com/npillmayer/ligpatch/ot"
	"github.com/npillmayer/ligpatch/otedit"
	"github.com/npillmayer/ligpatch/otgsub"
	"github.com/npillmayer/ligpatch/otlayout"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

var calt = map[ot.Tag]bool{ot.T("calt"): true}

// --- Test Suite Preparation ------------------------------------------------

type PatchTestEnviron struct {
	suite.Suite
	font   *otedit.Font
	report *Report
}

// listen for 'go test' command --> run test methods
func TestPatchLigatures(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.patch")
	defer teardown()
	suite.Run(t, new(PatchTestEnviron))
}

// run once, before test suite methods
func (env *PatchTestEnviron) SetupSuite() {
	tracing.Select("font.patch").SetTraceLevel(tracing.LevelError)
	target, source := loadFixtures(env.T())
	report, err := PatchLigatures(target, source, DefaultOptions())
	env.Require().NoError(err)
	// all further checks run on the written font
	data, err := target.Encode()
	env.Require().NoError(err)
	env.font, err = otedit.Parse(data)
	env.Require().NoError(err)
	env.report = report
	tracing.Select("font.patch").SetTraceLevel(tracing.LevelInfo)
}

func (env *PatchTestEnviron) shape(text string, features map[ot.Tag]bool) string {
	return strings.Join(otlayout.GlyphNames(env.font, otlayout.Shape(env.font, text, features)), " ")
}

func repeat(name string, n int) string {
	return strings.TrimSpace(strings.Repeat(name+" ", n))
}

// --- Tests -----------------------------------------------------------------

func (env *PatchTestEnviron) TestReport() {
	r := env.report
	env.Equal(ot.T("calt"), r.Feature)
	env.Len(r.Imported, 17)
	env.Empty(r.Missing)
	env.Empty(r.Skipped)
	env.Len(r.Added, 5)
	env.Equal(96, r.LookupsAdded)
	env.Len(r.FeatureLookups, 72)
	env.Zero(r.ItalicAngle)
	env.Equal(10+1+5+17, env.font.NumGlyphs())
}

func (env *PatchTestEnviron) TestFeatureLists() {
	gsub := env.font.GSUB()
	env.Len(gsub.Lookups, 96+2)
	lookups := gsub.FeatureLookups(ot.T("calt"))
	env.Require().Len(lookups, 73)
	env.Equal(uint16(2), lookups[0], "seed comes first")
	env.Equal(uint16(96), lookups[72], "former lookup 0 comes last")
	env.Equal([]int{97}, otgsub.LookupRefs(gsub.Lookups[96]))
}

func (env *PatchTestEnviron) TestLigatures() {
	env.Equal("SPC SPC equal_equal_greater.liga", env.shape("==>", calt))
	env.Equal("SPC SPC SPC less_equal_equal_greater.liga", env.shape("<==>", calt))
	env.Equal("SPC SPC equal_greater_greater.liga", env.shape("=>>", calt))
	env.Equal("SPC SPC less_equal_greater.liga", env.shape("<=>", calt))
	env.Equal("SPC SPC greater_greater_hyphen.liga", env.shape(">>-", calt))
	for _, seq := range fonttest.Ligatures {
		shaped := strings.Fields(env.shape(seq, calt))
		env.Require().Len(shaped, len(seq))
		env.Equal(fonttest.LigatureName(seq), shaped[len(seq)-1], "sequence %q", seq)
		env.Equal(repeat("SPC", len(seq)-1), strings.Join(shaped[:len(seq)-1], " "), "sequence %q", seq)
	}
}

func (env *PatchTestEnviron) TestLigatureInContext() {
	env.Equal("x space SPC equal_greater.liga space y", env.shape("x => y", calt))
	env.Equal("x space equal greater space y", env.shape("x => y", nil))
	env.Equal("less equal", env.shape("<=", calt))
}

func (env *PatchTestEnviron) TestLongRunsAreBlocked() {
	env.Equal("equal.noliga equal.noliga equal.noliga greater.noliga", env.shape("===>", calt))
	env.Equal("equal.noliga greater.noliga greater.noliga greater.noliga", env.shape("=>>>", calt))
	env.Equal("equal.noliga equal.noliga greater.noliga greater.noliga", env.shape("==>>", calt))
	env.Equal(repeat("equal.noliga", 10)+" greater.noliga", env.shape(strings.Repeat("=", 10)+">", calt))
}

func (env *PatchTestEnviron) TestExistingRulesKeepWorking() {
	env.Equal("x.alt y", env.shape("xy", calt))
	env.Equal("x y", env.shape("xy", nil))
}

func (env *PatchTestEnviron) TestWrittenFontValidates() {
	data, err := env.font.Encode()
	env.Require().NoError(err)
	ec, err := otedit.Validate(data)
	env.Require().NoError(err)
	env.False(ec.HasCriticalErrors(), "errors: %v", ec.Errors())
	env.Empty(ec.Errors())
	for _, seq := range fonttest.Ligatures {
		gid, ok := env.font.GlyphID(fonttest.LigatureName(seq))
		env.Require().True(ok)
		env.Equal(uint16(fonttest.TargetWidth), env.font.Metrics(gid).Advance)
	}
}

// --- Pipeline variants -----------------------------------------------------

func TestPatchWithMissingSourceGlyph(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.patch")
	defer teardown()
	//
	spec := fonttest.SourceSpec()
	spec.GSUB = nil
	var kept []fonttest.Glyph
	for _, g := range spec.Glyphs {
		if g.Name != "equal_equal_greater.liga" {
			kept = append(kept, g)
		}
	}
	spec.Glyphs = kept
	source, err := otedit.Parse(fonttest.MustBuild(t, spec))
	require.NoError(t, err)
	target, err := otedit.Parse(fonttest.MustBuild(t, fonttest.TargetSpec()))
	require.NoError(t, err)
	report, err := PatchLigatures(target, source, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"equal_equal_greater.liga"}, report.Missing)
	assert.Equal(t, []string{"==>"}, report.Skipped)
	assert.Len(t, report.Imported, 16)
	shaped := otlayout.GlyphNames(target, otlayout.Shape(target, "==>", calt))
	assert.Equal(t, []string{"equal", "SPC", "equal_greater.liga"}, shaped)
}

func TestPatchItalic(t *testing.T) {
	spec := fonttest.TargetSpec()
	spec.ItalicAngle = -10
	target, err := otedit.Parse(fonttest.MustBuild(t, spec))
	require.NoError(t, err)
	_, source := loadFixtures(t)
	opts := DefaultOptions()
	opts.Ligatures = opts.Ligatures[len(opts.Ligatures)-1:]
	report, err := PatchLigatures(target, source, opts)
	require.NoError(t, err)
	assert.Equal(t, 10.0, report.ItalicAngle)
	assert.Equal(t, []string{"equal_greater.liga"}, report.Imported)
	g, err := target.GlyphByName("equal_greater.liga")
	require.NoError(t, err)
	// first point of equal: (50, 200) → 42 + round(200·tan 10°)
	assert.Equal(t, 77, g.Contours[0][0].X)
	//
	upright := 0.0
	opts.ItalicAngle = &upright
	target, err = otedit.Parse(fonttest.MustBuild(t, spec))
	require.NoError(t, err)
	report, err = PatchLigatures(target, source, opts)
	require.NoError(t, err)
	assert.Zero(t, report.ItalicAngle)
}

func TestPatchWithoutGSUB(t *testing.T) {
	spec := fonttest.TargetSpec()
	spec.GSUB = nil
	target, err := otedit.Parse(fonttest.MustBuild(t, spec))
	require.NoError(t, err)
	_, source := loadFixtures(t)
	_, err = PatchLigatures(target, source, DefaultOptions())
	require.NoError(t, err)
	gsub := target.GSUB()
	require.NotNil(t, gsub)
	require.Len(t, gsub.Scripts, 1)
	assert.Equal(t, ot.DFLT, gsub.Scripts[0].Tag)
	assert.Equal(t, []string{"SPC", "SPC", "equal_equal_greater.liga"},
		otlayout.GlyphNames(target, otlayout.Shape(target, "==>", calt)))
}

func TestPatchNothingToPatch(t *testing.T) {
	spec := fonttest.SourceSpec()
	spec.GSUB = nil
	spec.Glyphs = spec.Glyphs[:len(fonttest.SourceGlyphs)]
	source, err := otedit.Parse(fonttest.MustBuild(t, spec))
	require.NoError(t, err)
	target, _ := loadFixtures(t)
	n := target.NumGlyphs()
	_, err = PatchLigatures(target, source, DefaultOptions())
	assert.ErrorIs(t, err, ErrNothingToPatch)
	assert.Equal(t, n, target.NumGlyphs(), "target untouched")
}

func TestTransplantFeature(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.patch")
	defer teardown()
	//
	target, source := loadFixtures(t)
	report, err := TransplantFeature(target, source, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"equal.spacer", "equal_greater.liga"}, report.Imported)
	assert.Empty(t, report.Missing)
	assert.Equal(t, 4, report.LookupsAdded)
	assert.Equal(t, []int{2, 4}, report.FeatureLookups)
	gsub := target.GSUB()
	require.Len(t, gsub.Lookups, 6)
	assert.Equal(t, []uint16{2, 4}, gsub.FeatureLookups(ot.T("calt")))
	assert.Equal(t, []int{3}, otgsub.LookupRefs(gsub.Lookups[2]))
	assert.Equal(t, []int{5}, otgsub.LookupRefs(gsub.Lookups[4]))
	assert.True(t, gsub.Lookups[4].Extension)
	//
	data, err := target.Encode()
	require.NoError(t, err)
	written, err := otedit.Parse(data)
	require.NoError(t, err)
	shaped := otlayout.GlyphNames(written, otlayout.Shape(written, "=>xy", calt))
	assert.Equal(t, []string{"equal.spacer", "equal_greater.liga", "x", "y"}, shaped)
	g, err := written.GlyphByName("equal_greater.liga")
	require.NoError(t, err)
	assert.False(t, g.IsComposite())
}

func TestTransplantMissingFeature(t *testing.T) {
	target, source := loadFixtures(t)
	opts := DefaultOptions()
	opts.Feature = ot.T("ss01")
	_, err := TransplantFeature(target, source, opts)
	assert.ErrorIs(t, err, ErrNoFeature)
}
