/*
Package charinfo reconstructs per-character metadata from shaped lines.

Build walks the glyphs of all lines with a pen, positions every glyph and
computes a visual quad for glyphs with an outline. Every character of the
shaped text receives a record holding its line, baseline, bounding box and
color. Hosts use these records for caret placement, selection and link
hit-testing.

Coordinates are output units with y pointing up, as for dimen.Rect.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package charinfo

import (
	"fmt"
	"image/color"
	"math"

	"github.com/npillmayer/devatext/core/dimen"
	"github.com/npillmayer/devatext/core/font"
	"github.com/npillmayer/devatext/engine/cluster"
	"github.com/npillmayer/devatext/engine/glyphing"
	"github.com/npillmayer/devatext/engine/lines"
	"github.com/npillmayer/devatext/engine/markup"
	"github.com/npillmayer/devatext/engine/remap"
)

// HAlign is the horizontal alignment of lines within the content rectangle.
type HAlign int

// Horizontal alignments.
const (
	AlignLeft HAlign = iota
	AlignCenter
	AlignRight
)

// VAlign is the vertical alignment of the text within the content rectangle.
type VAlign int

// Vertical alignments.
const (
	AlignTop VAlign = iota
	AlignMiddle
	AlignBottom
)

// Margins are insets of the content rectangle.
type Margins struct {
	Left, Top, Right, Bottom float64
}

// Geometry describes where and how large text is placed.
type Geometry struct {
	UnitsPerEm int              // design units per em of the font; 0 scales by dimen.DefaultUnitsPerEm
	FontSize   float64          // in output units
	Line       font.LineMetrics // in design units
	Rect       dimen.Rect       // box to place text in
	Margins    Margins
	HAlign     HAlign
	VAlign     VAlign
}

// Scale returns the factor from design units to output units for
// characters at scale 1.
func (g Geometry) Scale() float64 {
	return dimen.Scale(g.UnitsPerEm, g.FontSize)
}

// ContentWidth returns the width available for lines.
func (g Geometry) ContentWidth() float64 {
	return math.Max(0, g.Rect.Width()-g.Margins.Left-g.Margins.Right)
}

// ContentHeight returns the height available for lines.
func (g Geometry) ContentHeight() float64 {
	return math.Max(0, g.Rect.Height()-g.Margins.Top-g.Margins.Bottom)
}

// MaxLineWidth returns the content width converted to design units, as
// expected by lines.Breaker.Layout. It is +Inf for an empty content box and
// for a geometry without units per em, which disables wrapping.
func (g Geometry) MaxLineWidth() float64 {
	if g.UnitsPerEm <= 0 {
		tracer().Debugf("geometry without units per em, lines will not wrap")
		return math.Inf(1)
	}
	w, k := g.ContentWidth(), g.Scale()
	if w <= 0 || k <= 0 {
		return math.Inf(1)
	}
	return w / k
}

// PositionedGlyph is a glyph placed on the output plane.
type PositionedGlyph struct {
	Glyph         glyphing.ShapedGlyph
	Line          int
	X, Y          float64    // pen position at the glyph's origin
	Char          int        // first character of the glyph
	Quad          dimen.Rect // visual box, if HasGeometry
	HasGeometry   bool
	GeometryIndex int // index among glyphs with geometry, or -1
	Color         color.RGBA
}

// CharacterRecord holds the metadata of a character of the shaped text.
type CharacterRecord struct {
	LineNumber         int
	Baseline           float64
	Box                dimen.Rect
	HasGeometry        bool
	FirstGeometryIndex int // -1 if no glyph of the character has geometry
	Color              color.RGBA
	Scale              float64
	Synthetic          bool // not reached by any glyph
}

func (cr CharacterRecord) String() string {
	return fmt.Sprintf("[line %d baseline %.2f x %.2f-%.2f geom %d]",
		cr.LineNumber, cr.Baseline, cr.Box.MinX, cr.Box.MaxX, cr.FirstGeometryIndex)
}

// LineRecord holds the placement of a line.
type LineRecord struct {
	X, Baseline float64
	Width       float64 // in output units
	Start, End  int     // character range
}

// Layout is the result of Build.
type Layout struct {
	Glyphs         []PositionedGlyph
	Chars          []CharacterRecord
	Lines          []LineRecord
	Links          []markup.LinkSpan
	MissingGlyphs  int // glyphs with ID 0
	ResolvedGlyphs int // glyphs the metrics provider knows
	GeometryCount  int
}

// MostlyMissing is true if at least as many glyphs are missing as there are
// resolved ones. Such a layout should not be displayed.
func (l *Layout) MostlyMissing() bool {
	return l.ResolvedGlyphs > 0 && l.MissingGlyphs >= l.ResolvedGlyphs
}

// ClearGeometry drops all glyphs and geometry. Character records are kept.
func (l *Layout) ClearGeometry() {
	l.Glyphs = nil
	l.GeometryCount = 0
	for i := range l.Chars {
		l.Chars[i].HasGeometry = false
		l.Chars[i].FirstGeometryIndex = -1
	}
}

// Build positions the glyphs of lines and computes a record for every
// character of the text table has been built for. styles holds a style per
// character; links are passed through to the result.
func Build(ll []lines.Line, table *remap.IndexTable, styles []markup.StyledChar,
	links []markup.LinkSpan, metrics font.MetricsProvider, geom Geometry) *Layout {
	//
	b := newBuilder(table, styles, metrics, geom)
	b.layout.Links = links
	baseline := b.firstBaseline(len(ll))
	for lno, line := range ll {
		x := b.lineStart(line.Width * b.scale)
		b.layout.Lines = append(b.layout.Lines, LineRecord{
			X: x, Baseline: baseline, Width: line.Width * b.scale,
			Start: line.Start, End: line.End,
		})
		b.placeLine(lno, line, x, baseline)
		baseline -= b.lineAdvance
	}
	b.synthesize()
	tracer().Debugf("built %d glyphs, %d characters, %d missing, %d resolved",
		len(b.layout.Glyphs), len(b.layout.Chars), b.layout.MissingGlyphs, b.layout.ResolvedGlyphs)
	return b.layout
}

type builder struct {
	table       *remap.IndexTable
	styles      []markup.StyledChar
	metrics     font.MetricsProvider
	geom        Geometry
	scale       float64
	ascender    float64
	descender   float64
	lineAdvance float64
	touched     []bool
	penAfter    []float64
	layout      *Layout
}

func newBuilder(table *remap.IndexTable, styles []markup.StyledChar, metrics font.MetricsProvider,
	geom Geometry) *builder {
	//
	if geom.UnitsPerEm <= 0 && metrics != nil {
		geom.UnitsPerEm = metrics.UnitsPerEm()
	}
	if geom.Line == (font.LineMetrics{}) && metrics != nil {
		geom.Line = metrics.LineMetrics()
	}
	n := 0
	if table != nil {
		n = table.CharCount()
	}
	b := &builder{
		table:    table,
		styles:   styles,
		metrics:  metrics,
		geom:     geom,
		scale:    geom.Scale(),
		touched:  make([]bool, n),
		penAfter: make([]float64, n),
		layout:   &Layout{Chars: make([]CharacterRecord, n)},
	}
	b.ascender = geom.Line.Ascender.Float(b.scale)
	b.descender = geom.Line.Descender.Float(b.scale)
	b.lineAdvance = geom.Line.LineHeight.Float(b.scale)
	for i := range b.layout.Chars {
		b.layout.Chars[i].FirstGeometryIndex = -1
	}
	return b
}

func (b *builder) firstBaseline(lineCount int) float64 {
	g := b.geom
	total := (b.ascender - b.descender) + math.Max(0, float64(lineCount-1))*b.lineAdvance
	y := g.Rect.MaxY - g.Margins.Top - b.ascender
	switch g.VAlign {
	case AlignMiddle:
		y -= (g.ContentHeight() - total) / 2
	case AlignBottom:
		y -= g.ContentHeight() - total
	}
	return y
}

func (b *builder) lineStart(width float64) float64 {
	g := b.geom
	x := g.Rect.MinX + g.Margins.Left
	switch g.HAlign {
	case AlignCenter:
		x += (g.ContentWidth() - width) / 2
	case AlignRight:
		x += g.ContentWidth() - width
	}
	return x
}

func (b *builder) style(ch int) markup.StyledChar {
	if ch < 0 || ch >= len(b.styles) {
		return markup.DefaultStyle
	}
	return b.styles[ch]
}

func (b *builder) placeLine(lno int, line lines.Line, x, baseline float64) {
	spans := cluster.Resolve(line, b.table, len(b.layout.Chars))
	penX, penY := x, baseline
	for i, g := range line.Glyphs {
		ch := spans.CharOf(i)
		st := b.style(ch)
		k := b.scale * math.Max(st.Scale, markup.MinScale)
		pg := PositionedGlyph{
			Glyph: g, Line: lno, X: penX, Y: penY,
			Char: ch, Color: st.Color, GeometryIndex: -1,
		}
		if g.IsMissing() {
			b.layout.MissingGlyphs++
		}
		if b.metrics != nil {
			if gm, ok := b.metrics.GlyphMetrics(g.GID); ok {
				b.layout.ResolvedGlyphs++
				if gm.HasExtent() {
					x0 := penX + g.XOffset.Float(k) + gm.BearingX.Float(k)
					top := penY + g.YOffset.Float(k) + gm.BearingY.Float(k)
					pg.Quad = dimen.Rect{
						MinX: x0, MinY: top - gm.Height.Float(k),
						MaxX: x0 + gm.Width.Float(k), MaxY: top,
					}
					pg.HasGeometry = true
					pg.GeometryIndex = b.layout.GeometryCount
					b.layout.GeometryCount++
				}
			}
		}
		advX, advY := g.XAdvance.Float(k), g.YAdvance.Float(k)
		start, end := spans.SpanOf(i)
		for c := start; c < end && c < len(b.layout.Chars); c++ {
			b.touch(c, lno, baseline, &pg, penX+advX, st)
		}
		b.layout.Glyphs = append(b.layout.Glyphs, pg)
		penX += advX
		penY += advY
	}
}

// touch widens the record of character c by a glyph.
func (b *builder) touch(c, lno int, baseline float64, pg *PositionedGlyph, penAfter float64,
	glyphStyle markup.StyledChar) {
	//
	rec := &b.layout.Chars[c]
	if !b.touched[c] {
		b.touched[c] = true
		rec.LineNumber = lno
		rec.Baseline = baseline
		rec.Box = dimen.EmptyRect()
		rec.Scale = b.style(c).Scale
	}
	if pg.HasGeometry {
		rec.Box = rec.Box.Union(pg.Quad)
		if !rec.HasGeometry {
			rec.HasGeometry = true
			rec.FirstGeometryIndex = pg.GeometryIndex
		}
	} else {
		rec.Box = rec.Box.Include(pg.X, pg.Y).Include(penAfter, pg.Y)
	}
	rec.Color = glyphStyle.Color
	b.penAfter[c] = penAfter
}

// synthesize creates zero-width records for characters no glyph has
// reached, continuing the pen position of the preceding character.
func (b *builder) synthesize() {
	x, baseline, lno := b.lineStart(0), b.firstBaseline(len(b.layout.Lines)), 0
	if len(b.layout.Lines) > 0 {
		x = b.layout.Lines[0].X
	}
	for c := range b.layout.Chars {
		rec := &b.layout.Chars[c]
		if b.touched[c] {
			x, baseline, lno = b.penAfter[c], rec.Baseline, rec.LineNumber
			continue
		}
		st := b.style(c)
		*rec = CharacterRecord{
			LineNumber:         lno,
			Baseline:           baseline,
			Box:                dimen.Rect{MinX: x, MinY: baseline, MaxX: x, MaxY: baseline},
			FirstGeometryIndex: -1,
			Color:              st.Color,
			Scale:              st.Scale,
			Synthetic:          true,
		}
	}
}
