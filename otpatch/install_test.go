package otpatch

import (
	"testing"

	"github.com/npillmayer/ligpatch/ot"
	"github.com/npillmayer/ligpatch/otgsub"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptTable has scripts 'DFLT' and 'latn' (with language 'DEU') and
// feature 'ccmp'. Feature 'calt' has one record per script.
func scriptTable() *otgsub.Table {
	gsub := otgsub.NewTable()
	for i := 0; i < 4; i++ {
		gsub.AddLookup(otgsub.NewLookup(otgsub.NewSingleSubst(ot.GlyphIndex(i+1), 9)))
	}
	dflt := &otgsub.LangSys{RequiredFeature: otgsub.NoRequiredFeature}
	latn := &otgsub.LangSys{RequiredFeature: otgsub.NoRequiredFeature}
	deu := &otgsub.LangSys{RequiredFeature: otgsub.NoRequiredFeature}
	gsub.Scripts = []otgsub.ScriptRecord{
		{Tag: ot.DFLT, Script: &otgsub.Script{Default: dflt}},
		{Tag: ot.T("latn"), Script: &otgsub.Script{
			Default:   latn,
			Languages: []otgsub.LangSysRecord{{Tag: ot.T("DEU"), LangSys: deu}},
		}},
	}
	gsub.Features = []otgsub.FeatureRecord{
		{Tag: ot.T("calt"), Feature: &otgsub.Feature{Lookups: []uint16{0}}},
		{Tag: ot.T("calt"), Feature: &otgsub.Feature{Lookups: []uint16{1}}},
		{Tag: ot.T("ccmp"), Feature: &otgsub.Feature{Lookups: []uint16{2}}},
	}
	dflt.Features = []uint16{0, 2}
	latn.Features = []uint16{1, 2}
	deu.Features = []uint16{1, 2}
	return gsub
}

func allLangSys(gsub *otgsub.Table) []*otgsub.LangSys {
	var all []*otgsub.LangSys
	for _, rec := range gsub.Scripts {
		all = append(all, rec.Script.Default)
		for _, lang := range rec.Script.Languages {
			all = append(all, lang.LangSys)
		}
	}
	return all
}

func TestInstallFeatureReplace(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.patch")
	defer teardown()
	//
	gsub := scriptTable()
	n := InstallFeature(gsub, ot.T("calt"), []int{3, 2}, Replace)
	assert.Equal(t, 2, n, "every 'calt' record")
	assert.Equal(t, []uint16{3, 2}, gsub.Features[0].Feature.Lookups)
	assert.Equal(t, []uint16{3, 2}, gsub.Features[1].Feature.Lookups)
	assert.Equal(t, []uint16{2}, gsub.Features[2].Feature.Lookups, "'ccmp' untouched")
	assert.Len(t, gsub.Features, 3)
}

func TestInstallFeaturePrepend(t *testing.T) {
	gsub := scriptTable()
	n := InstallFeature(gsub, ot.T("calt"), []int{3}, Prepend)
	assert.Equal(t, 2, n)
	assert.Equal(t, []uint16{3, 0}, gsub.Features[0].Feature.Lookups)
	assert.Equal(t, []uint16{3, 1}, gsub.Features[1].Feature.Lookups)
}

func TestInstallMissingFeature(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.patch")
	defer teardown()
	//
	gsub := scriptTable()
	n := InstallFeature(gsub, ot.T("aalt"), []int{3}, Prepend)
	assert.Equal(t, 1, n)
	require.Len(t, gsub.Features, 4)
	assert.Equal(t, ot.T("aalt"), gsub.Features[0].Tag, "feature list stays sorted")
	assert.Equal(t, []uint16{3}, gsub.Features[0].Feature.Lookups)
	for i, ls := range allLangSys(gsub) {
		assert.Contains(t, ls.Features, uint16(0), "LangSys %d activates the new feature", i)
		assert.Contains(t, ls.Features, uint16(3), "LangSys %d keeps 'ccmp' at its new index", i)
	}
	assert.Equal(t, []uint16{3}, gsub.FeatureLookups(ot.T("aalt")))
	assert.Equal(t, []uint16{0, 1}, gsub.FeatureLookups(ot.T("calt")))
}

func TestInstallIntoEmptyTable(t *testing.T) {
	gsub := otgsub.NewTable()
	gsub.AddLookup(otgsub.NewLookup(otgsub.NewSingleSubst(1, 2)))
	InstallFeature(gsub, ot.T("calt"), []int{0}, Replace)
	require.Len(t, gsub.Scripts, 1)
	assert.Equal(t, ot.DFLT, gsub.Scripts[0].Tag)
	assert.Equal(t, []uint16{0}, gsub.Scripts[0].Script.Default.Features)
	assert.Equal(t, "replace", Replace.String())
	assert.Equal(t, "prepend", Prepend.String())
}
