package ot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostNames(t *testing.T) {
	header := make([]byte, 32)
	PutU32(header, 0, 0x00030000)
	angle := int32(-12 * 65536)
	PutU32(header, 4, uint32(angle))
	p, err := ParsePost(header, 3)
	require.NoError(t, err)
	assert.False(t, p.HasNames())
	assert.Equal(t, -12.0, p.ItalicAngle)
	names := []string{".notdef", "equal", "equal_greater.liga", "SPC", "equal_greater.liga"}
	data := p.EncodeV2(names)
	q, err := ParsePost(data, len(names))
	require.NoError(t, err)
	assert.Equal(t, names, q.Names)
	assert.Equal(t, -12.0, q.ItalicAngle)
}

func TestPostVersion1(t *testing.T) {
	header := make([]byte, 32)
	PutU32(header, 0, 0x00010000)
	p, err := ParsePost(header, 40)
	require.NoError(t, err)
	assert.Equal(t, "equal", p.Names[32])
}

func TestCMapRoundTrip(t *testing.T) {
	m := CMap{'=': 3, '>': 4, '<': 5, 'x': 9, 'y': 10, 0x1F600: 11}
	back, err := ParseCMap(m.Encode())
	require.NoError(t, err)
	assert.Equal(t, m, back)
	assert.Equal(t, '=', back.Reverse()[3])
	assert.Equal(t, GlyphIndex(0), back.Lookup('?'))
}

func TestHeaderTables(t *testing.T) {
	hhea := make([]byte, 36)
	PutU16(hhea, 34, 7)
	h, err := ParseHHea(hhea)
	require.NoError(t, err)
	assert.Equal(t, uint16(7), h.NumberOfHMetrics)
	h.NumberOfHMetrics = 9
	h.AdvanceWidthMax = 600
	h2, err := ParseHHea(h.Encode())
	require.NoError(t, err)
	assert.Equal(t, uint16(9), h2.NumberOfHMetrics)
	assert.Equal(t, uint16(600), h2.AdvanceWidthMax)

	maxp := make([]byte, 32)
	PutU32(maxp, 0, 0x00010000)
	m, err := ParseMaxP(maxp)
	require.NoError(t, err)
	m.NumGlyphs, m.MaxPoints = 12, 40
	m2, err := ParseMaxP(m.Encode())
	require.NoError(t, err)
	assert.Equal(t, uint16(12), m2.NumGlyphs)
	assert.Equal(t, uint16(40), m2.MaxPoints)

	os2 := make([]byte, 96)
	PutU16(os2, 62, 0x0041)
	o, err := ParseOS2(os2)
	require.NoError(t, err)
	assert.True(t, o.IsItalic())
}
