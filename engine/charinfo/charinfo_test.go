package charinfo

import (
	"image/color"
	"math"
	"testing"

	"github.com/npillmayer/devatext/core/dimen"
	"github.com/npillmayer/devatext/engine/glyphing"
	"github.com/npillmayer/devatext/engine/glyphing/monospace"
	"github.com/npillmayer/devatext/engine/lines"
	"github.com/npillmayer/devatext/engine/markup"
	"github.com/npillmayer/devatext/engine/remap"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var red = color.RGBA{R: 255, A: 255}

// layout shapes text with a monospace shaper of 10 units per cell at a font
// size of 10, i.e. one design unit equals one output unit.
func layout(t *testing.T, text string, styles []markup.StyledChar, geom Geometry) *Layout {
	sh := monospace.Shaper(10, 10, nil)
	geom.FontSize = 10
	geom.UnitsPerEm = sh.UnitsPerEm()
	if geom.Rect == (dimen.Rect{}) {
		geom.Rect = dimen.Rect{MinX: 0, MinY: 0, MaxX: 100, MaxY: 100}
	}
	b := lines.NewBreaker(sh, glyphing.Params{}, nil)
	b.SetStyles(styles)
	ll, err := b.Layout(text, geom.MaxLineWidth())
	require.NoError(t, err)
	tab := remap.NewIndexTable(text)
	return Build(ll, tab, styles, nil, sh.Metrics(), geom)
}

func TestGeometry(t *testing.T) {
	g := Geometry{
		UnitsPerEm: 1000, FontSize: 20,
		Rect:    dimen.Rect{MaxX: 120, MaxY: 50},
		Margins: Margins{Left: 10, Right: 10, Top: 5, Bottom: 5},
	}
	assert.Equal(t, 0.02, g.Scale())
	assert.Equal(t, 100.0, g.ContentWidth())
	assert.Equal(t, 40.0, g.ContentHeight())
	assert.InDelta(t, 5000.0, g.MaxLineWidth(), 1e-9)
	assert.True(t, math.IsInf(Geometry{FontSize: 10}.MaxLineWidth(), 1))
	g.UnitsPerEm = 0
	assert.True(t, math.IsInf(g.MaxLineWidth(), 1), "no silent default for units per em")
}

func TestGlyphPositions(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "devatext.lines")
	defer teardown()
	//
	l := layout(t, "ab cd", nil, Geometry{})
	require.Len(t, l.Glyphs, 5)
	require.Len(t, l.Lines, 1)
	assert.Equal(t, 92.0, l.Lines[0].Baseline, "top of box minus ascender")
	assert.Equal(t, 50.0, l.Lines[0].Width)
	g := l.Glyphs[1]
	assert.Equal(t, 10.0, g.X)
	assert.True(t, g.HasGeometry)
	assert.Equal(t, dimen.Rect{MinX: 11, MinY: 92, MaxX: 19, MaxY: 99}, g.Quad)
	assert.Equal(t, 1, g.GeometryIndex)
	assert.False(t, l.Glyphs[2].HasGeometry, "blank has no outline")
	assert.Equal(t, -1, l.Glyphs[2].GeometryIndex)
	assert.Equal(t, 2, l.Glyphs[3].GeometryIndex)
	assert.Equal(t, 4, l.GeometryCount)
	assert.Equal(t, 5, l.ResolvedGlyphs)
	assert.Equal(t, 0, l.MissingGlyphs)
}

func TestCharacterRecords(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "devatext.lines")
	defer teardown()
	//
	styles := []markup.StyledChar{markup.DefaultStyle, {Color: red, Scale: 1}, markup.DefaultStyle,
		markup.DefaultStyle, markup.DefaultStyle}
	l := layout(t, "ab\ncd", styles, Geometry{})
	require.Len(t, l.Chars, 5)
	require.Len(t, l.Lines, 2)
	b := l.Chars[1]
	assert.Equal(t, 0, b.LineNumber)
	assert.True(t, b.HasGeometry)
	assert.Equal(t, 1, b.FirstGeometryIndex)
	assert.Equal(t, red, b.Color)
	assert.Equal(t, 11.0, b.Box.MinX)
	// the line feed is not shaped
	lf := l.Chars[2]
	assert.True(t, lf.Synthetic)
	assert.False(t, lf.HasGeometry)
	assert.Equal(t, -1, lf.FirstGeometryIndex)
	assert.Equal(t, 20.0, lf.Box.MinX)
	assert.Equal(t, 0.0, lf.Box.Width())
	assert.Equal(t, 92.0, lf.Baseline)
	c := l.Chars[3]
	assert.Equal(t, 1, c.LineNumber)
	assert.Equal(t, 82.0, c.Baseline)
	assert.Equal(t, 1.0, c.Box.MinX)
}

func TestWrappedBlankGetsSyntheticRecord(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "devatext.lines")
	defer teardown()
	//
	l := layout(t, "ab cd efgh", nil, Geometry{Rect: dimen.Rect{MaxX: 50, MaxY: 100}})
	require.Len(t, l.Lines, 2)
	assert.Equal(t, 5, l.Lines[0].End)
	require.Len(t, l.Chars, 10)
	sp := l.Chars[5]
	assert.True(t, sp.Synthetic)
	assert.Equal(t, 0, sp.LineNumber)
	assert.Equal(t, 50.0, sp.Box.MinX)
	e := l.Chars[6]
	assert.Equal(t, 1, e.LineNumber)
	assert.False(t, e.Synthetic)
}

func TestAlignment(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "devatext.lines")
	defer teardown()
	//
	l := layout(t, "abcde", nil, Geometry{HAlign: AlignCenter, VAlign: AlignMiddle})
	assert.Equal(t, 25.0, l.Lines[0].X)
	assert.Equal(t, 47.0, l.Lines[0].Baseline)
	l = layout(t, "abcde", nil, Geometry{HAlign: AlignRight, VAlign: AlignBottom})
	assert.Equal(t, 50.0, l.Lines[0].X)
	assert.Equal(t, 2.0, l.Lines[0].Baseline)
}

func TestScaledGlyphs(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "devatext.lines")
	defer teardown()
	//
	big := markup.StyledChar{Color: markup.DefaultStyle.Color, Scale: 2}
	l := layout(t, "ab", []markup.StyledChar{big, markup.DefaultStyle}, Geometry{})
	assert.Equal(t, 30.0, l.Lines[0].Width)
	assert.Equal(t, 20.0, l.Glyphs[1].X)
	assert.Equal(t, 2.0, l.Chars[0].Scale)
	assert.Equal(t, 18.0, l.Chars[0].Box.MaxX)
}

func TestMissingGlyphs(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "devatext.lines")
	defer teardown()
	//
	sh := monospace.Shaper(10, 10, nil)
	line := lines.Line{Start: 0, End: 3, Glyphs: []glyphing.ShapedGlyph{
		{GID: 0, Cluster: 0, XAdvance: 10},
		{GID: 0, Cluster: 1, XAdvance: 10},
		{GID: 'x', Cluster: 2, XAdvance: 10},
	}}
	l := Build([]lines.Line{line}, remap.NewIndexTable("abc"), nil,
		[]markup.LinkSpan{{ID: "l", Start: 0, Length: 2}}, sh.Metrics(), Geometry{FontSize: 10})
	assert.Equal(t, 2, l.MissingGlyphs)
	assert.Equal(t, 1, l.ResolvedGlyphs)
	assert.True(t, l.MostlyMissing())
	assert.Equal(t, []markup.LinkSpan{{ID: "l", Start: 0, Length: 2}}, l.Links)
	l.ClearGeometry()
	assert.Empty(t, l.Glyphs)
	assert.Equal(t, 0, l.GeometryCount)
	require.Len(t, l.Chars, 3)
	assert.Equal(t, -1, l.Chars[2].FirstGeometryIndex)
}
