package gotext

import (
	"testing"

	gtlang "github.com/go-text/typesetting/language"
	"github.com/npillmayer/devatext/core/font"
	"github.com/npillmayer/devatext/engine/glyphing"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestGoTextShape(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "devatext.glyphs")
	defer teardown()
	//
	sh, err := New(font.FallbackFont())
	require.NoError(t, err)
	defer sh.Close()
	glyphs, err := glyphing.ShapeInto(sh, "Hello", glyphing.Params{Language: language.English}, nil)
	require.NoError(t, err)
	require.Len(t, glyphs, 5)
	for i, g := range glyphs {
		assert.NotZero(t, g.GID)
		assert.Greater(t, int(g.XAdvance), 0)
		assert.Equal(t, i, g.Cluster)
	}
}

func TestGoTextAdvanceInDesignUnits(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "devatext.glyphs")
	defer teardown()
	//
	f := font.FallbackFont()
	sh, err := New(f)
	require.NoError(t, err)
	defer sh.Close()
	glyphs, err := glyphing.ShapeInto(sh, "H", glyphing.Params{}, nil)
	require.NoError(t, err)
	require.Len(t, glyphs, 1)
	gm, ok := font.NewMetrics(f).GlyphMetrics(glyphs[0].GID)
	require.True(t, ok)
	assert.InDelta(t, int(gm.Advance), int(glyphs[0].XAdvance), 1)
}

func TestGoTextByteClusters(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "devatext.glyphs")
	defer teardown()
	//
	sh, err := New(font.FallbackFont())
	require.NoError(t, err)
	defer sh.Close()
	glyphs, err := glyphing.ShapeInto(sh, "aäb", glyphing.Params{}, nil)
	require.NoError(t, err)
	require.Len(t, glyphs, 3)
	assert.Equal(t, []int{0, 1, 3}, []int{glyphs[0].Cluster, glyphs[1].Cluster, glyphs[2].Cluster})
}

func TestMapScript(t *testing.T) {
	assert.Equal(t, gtlang.Devanagari, mapScript(language.MustParseScript("Deva"), nil))
	assert.Equal(t, gtlang.Devanagari, mapScript(language.Script{}, []rune(" क")))
	assert.Equal(t, gtlang.Latin, mapScript(language.Script{}, nil))
}
