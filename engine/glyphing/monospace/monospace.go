package monospace

import (
	"strings"
	"unicode/utf8"

	"github.com/npillmayer/devatext/core/dimen"
	"github.com/npillmayer/devatext/core/font"
	"github.com/npillmayer/devatext/engine/glyphing"
	"github.com/npillmayer/uax/grapheme"
	"github.com/npillmayer/uax/segment"
	"github.com/npillmayer/uax/uax11"
)

// MSShaper is a shaper for monospace typesetting.
type MSShaper struct {
	em               dimen.DU
	upem             int
	graphemeSplitter *segment.Segmenter
	context          *uax11.Context
}

var _ glyphing.MetricsShaper = &MSShaper{}

// Shaper creates a shaper for monospace typesetting.
// An em-dimension may be given which will then be used as the width of a
// single cell. If it is zero, it will be set to dimen.DefaultUnitsPerEm.
// upem is the design unit size reported to clients; zero selects em.
func Shaper(em dimen.DU, upem int, context *uax11.Context) *MSShaper {
	if em == 0 {
		em = dimen.DefaultUnitsPerEm
	}
	if upem <= 0 {
		upem = int(em)
	}
	sh := &MSShaper{
		em:      em,
		upem:    upem,
		context: context,
	}
	if sh.context == nil {
		sh.context = uax11.LatinContext
	}
	grapheme.SetupGraphemeClasses()
	onGraphemes := grapheme.NewBreaker(1)
	sh.graphemeSplitter = segment.NewSegmenter(onGraphemes)
	return sh
}

// Shape creates a glyph for every grapheme of a text.
func (ms *MSShaper) Shape(text string, p glyphing.Params, buf []glyphing.ShapedGlyph) (int, error) {
	if text == "" || len(buf) == 0 {
		return 0, nil
	}
	ms.graphemeSplitter.Init(strings.NewReader(text))
	i, pos := 0, 0
	for ms.graphemeSplitter.Next() {
		grphm := ms.graphemeSplitter.Bytes()
		if len(grphm) == 0 {
			continue
		}
		if i == len(buf) {
			tracer().Debugf("monospace buffer saturated at %d glyphs", i)
			return i, nil
		}
		w := uax11.Width(grphm, ms.context)
		codepoint, _ := utf8.DecodeRune(grphm)
		buf[i] = glyphing.ShapedGlyph{
			GID:      uint32(codepoint),
			Cluster:  pos,
			XAdvance: dimen.DU(w) * ms.em,
		}
		pos += len(grphm)
		i++
	}
	return i, nil
}

// UnitsPerEm returns the design units per em reported to clients.
func (ms *MSShaper) UnitsPerEm() int {
	return ms.upem
}

// Close does not do anything for monospace shapers.
func (ms *MSShaper) Close() error {
	return nil
}

// Metrics returns a metrics provider for the glyphs of this shaper.
func (ms *MSShaper) Metrics() font.MetricsProvider {
	return msmetrics{ms}
}

type msmetrics struct {
	ms *MSShaper
}

func (m msmetrics) UnitsPerEm() int {
	return m.ms.upem
}

func (m msmetrics) LineMetrics() font.LineMetrics {
	em := m.ms.em
	return font.LineMetrics{
		Ascender:   em * 4 / 5,
		Descender:  -em / 5,
		LineHeight: em,
	}
}

// GlyphMetrics reports a box of one cell, spanning from the baseline to 70%
// of the em-size, for every printable code-point.
func (m msmetrics) GlyphMetrics(gid uint32) (font.GlyphMetrics, bool) {
	r := rune(gid)
	if gid == 0 || !utf8.ValidRune(r) {
		return font.GlyphMetrics{}, false
	}
	var b [utf8.UTFMax]byte
	n := utf8.EncodeRune(b[:], r)
	w := dimen.DU(uax11.Width(b[:n], m.ms.context)) * m.ms.em
	gm := font.GlyphMetrics{Advance: w}
	if r > ' ' && w > 0 {
		gm.BearingX = m.ms.em / 10
		gm.Width = w - 2*gm.BearingX
		gm.BearingY = m.ms.em * 7 / 10
		gm.Height = gm.BearingY
	}
	return gm, true
}
