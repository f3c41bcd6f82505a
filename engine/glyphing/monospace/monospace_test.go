package monospace

import (
	"testing"

	"github.com/npillmayer/devatext/engine/glyphing"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonospaceShape(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "devatext.glyphs")
	defer teardown()
	//
	sh := Shaper(1, 1, nil)
	glyphs, err := glyphing.ShapeInto(sh, "ab cd", glyphing.Params{}, nil)
	require.NoError(t, err)
	require.Len(t, glyphs, 5)
	assert.Equal(t, 5, int(glyphing.Width(glyphs)))
	assert.Equal(t, uint32('a'), glyphs[0].GID)
	assert.Equal(t, 4, glyphs[4].Cluster)
}

func TestMonospaceGraphemes(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "devatext.glyphs")
	defer teardown()
	//
	sh := Shaper(0, 0, nil)
	assert.Equal(t, 1000, sh.UnitsPerEm())
	glyphs, err := glyphing.ShapeInto(sh, "éx", glyphing.Params{}, nil)
	require.NoError(t, err)
	require.Len(t, glyphs, 2, "combining accent belongs to its base")
	assert.Equal(t, 0, glyphs[0].Cluster)
	assert.Equal(t, 3, glyphs[1].Cluster)
}

func TestMonospaceSaturation(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "devatext.glyphs")
	defer teardown()
	//
	sh := Shaper(1, 1, nil)
	buf := make([]glyphing.ShapedGlyph, 2)
	n, err := sh.Shape("abc", glyphing.Params{}, buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestMonospaceMetrics(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "devatext.glyphs")
	defer teardown()
	//
	m := Shaper(1000, 1000, nil).Metrics()
	gm, ok := m.GlyphMetrics('x')
	require.True(t, ok)
	assert.True(t, gm.HasExtent())
	assert.Equal(t, 1000, int(gm.Advance))
	gm, ok = m.GlyphMetrics(' ')
	require.True(t, ok)
	assert.False(t, gm.HasExtent())
	_, ok = m.GlyphMetrics(0)
	assert.False(t, ok)
	assert.Equal(t, 1000, int(m.LineMetrics().LineHeight))
}
