package otpatch

import (
	"testing"

	"github.com/npillmayer/ligpatch/ot"
	"github.com/npillmayer/ligpatch/otgsub"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cyclicTable has lookups 0 and 1 calling each other. Lookup 1 also calls
// the missing lookup 7, and feature 'calt' names the missing lookup 9.
func cyclicTable() *otgsub.Table {
	gsub := otgsub.NewTable()
	gsub.AddLookup(otgsub.NewLookup(&otgsub.ChainedCoverageContext{
		Input:   []otgsub.Coverage{{1}},
		Records: records(1),
	}))
	gsub.AddLookup(otgsub.NewLookup(&otgsub.CoverageSequenceContext{
		Input: []otgsub.Coverage{{1}, {2}},
		Records: []otgsub.SequenceLookupRecord{
			{SequenceIndex: 0, LookupListIndex: 0},
			{SequenceIndex: 1, LookupListIndex: 7},
		},
	}))
	gsub.AddLookup(otgsub.NewLookup(otgsub.NewSingleSubst(1, 50)))
	gsub.RegisterFeature(gsub.AddFeature(ot.T("calt"), []uint16{1, 9, 1}))
	gsub.RegisterFeature(gsub.AddFeature(ot.T("liga"), []uint16{2}))
	return gsub
}

func TestFindFeatureLookups(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.patch")
	defer teardown()
	//
	gsub := cyclicTable()
	direct, closure, err := FindFeatureLookups(gsub, ot.T("calt"))
	require.NoError(t, err)
	assert.Equal(t, []int{1}, direct, "missing lookup 9 left out")
	assert.Equal(t, []int{0, 1}, closure, "cycle terminates, missing lookup 7 left out")
	//
	direct, closure, err = FindFeatureLookups(gsub, ot.T("liga"))
	require.NoError(t, err)
	assert.Equal(t, []int{2}, direct)
	assert.Equal(t, []int{2}, closure)
	//
	_, _, err = FindFeatureLookups(gsub, ot.T("ss01"))
	assert.ErrorIs(t, err, ErrNoFeature)
	_, _, err = FindFeatureLookups(nil, ot.T("calt"))
	assert.ErrorIs(t, err, ErrNoFeature)
}

func TestFindFeatureLookupsInFixture(t *testing.T) {
	_, source := loadFixtures(t)
	direct, closure, err := FindFeatureLookups(source.GSUB(), ot.T("calt"))
	require.NoError(t, err)
	assert.Equal(t, []int{0, 3}, direct)
	assert.Equal(t, []int{0, 2, 3, 4}, closure)
}

func TestCollectReferencedGlyphs(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.patch")
	defer teardown()
	//
	gsub := cyclicTable()
	names := []string{".notdef", "a", "b"}
	referenced, dangling := CollectReferencedGlyphs(gsub, names, []int{2})
	assert.Equal(t, map[string]struct{}{"a": {}}, referenced)
	assert.Equal(t, []ot.GlyphIndex{50}, dangling)
	//
	referenced, dangling = CollectReferencedGlyphs(gsub, names, []int{0, 1, 12})
	assert.Equal(t, map[string]struct{}{"a": {}, "b": {}}, referenced, "lookup 12 does not exist")
	assert.Empty(t, dangling)
}

func TestCollectReferencedGlyphsInFixture(t *testing.T) {
	_, source := loadFixtures(t)
	_, closure, err := FindFeatureLookups(source.GSUB(), ot.T("calt"))
	require.NoError(t, err)
	referenced, dangling := CollectReferencedGlyphs(source.GSUB(), source.GlyphOrder(), closure)
	assert.Empty(t, dangling)
	assert.Equal(t, map[string]struct{}{
		"equal": {}, "greater": {}, "equal.spacer": {}, "equal_greater.liga": {},
	}, referenced)
}
