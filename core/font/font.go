/*
Package font is for font handling and glyph metrics.

We stick to the following definitions:

* A "scalable font" is a font, i.e. a variant of a typeface with a
certain weight, slant, etc. An example is "Noto Sans Devanagari regular".
It is loaded from a font file or from raw font bytes.

* Glyph metrics are reported in font design units (DU). Scaling to an
output size is the business of the layout, not of the font.

Please note that Go (Golang) does use the terms "font" and "face"
differently–actually more or less in an opposite manner.

----------------------------------------------------------------------

BSD License

Copyright (c) 2017-21, Norbert Pillmayer

All rights reserved.

Redistribution and use in source and binary forms, with or without
modification, are permitted provided that the following conditions
are met:

1. Redistributions of source code must retain the above copyright
notice, this list of conditions and the following disclaimer.

2. Redistributions in binary form must reproduce the above copyright
notice, this list of conditions and the following disclaimer in the
documentation and/or other materials provided with the distribution.

3. Neither the name of this software nor the names of its contributors
may be used to endorse or promote products derived from this software
without specific prior written permission.

THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS
"AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT
LIMITED TO, THE IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR
A PARTICULAR PURPOSE ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT
HOLDER OR CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL,
SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT
LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR SERVICES; LOSS OF USE,
DATA, OR PROFITS; OR BUSINESS INTERRUPTION) HOWEVER CAUSED AND ON ANY
THEORY OF LIABILITY, WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT
(INCLUDING NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH DAMAGE. */
package font

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/npillmayer/devatext/core"
	"github.com/npillmayer/devatext/core/dimen"
	"github.com/npillmayer/schuko/tracing"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// tracer traces with key 'devatext.core'.
func tracer() tracing.Trace {
	return tracing.Select("devatext.core")
}

// ScalableFont is a parsed font. Fonts are immutable after loading and may
// be shared between text blocks; metrics providers are not.
type ScalableFont struct {
	Fontname string
	Filepath string     // file path, "internal" for the fallback font
	Binary   []byte     // raw data
	SFNT     *sfnt.Font // the font's container
}

// LoadOpenTypeFont loads and parses a font file.
func LoadOpenTypeFont(fontfile string) (*ScalableFont, error) {
	bytez, err := os.ReadFile(fontfile)
	if err != nil {
		return nil, core.WrapError(err, core.EMISSING, "cannot read font file %s", fontfile)
	}
	f, err := ParseOpenTypeFont(bytez)
	if err != nil {
		return nil, err
	}
	f.Filepath = fontfile
	if f.Fontname == "" {
		f.Fontname = filepath.Base(fontfile)
	}
	return f, nil
}

// ParseOpenTypeFont parses raw font bytes.
func ParseOpenTypeFont(fbytes []byte) (f *ScalableFont, err error) {
	if len(fbytes) == 0 {
		return nil, core.Error(core.EMISSING, "empty font data")
	}
	f = &ScalableFont{Binary: fbytes}
	f.SFNT, err = sfnt.Parse(f.Binary)
	if err != nil {
		return nil, core.WrapError(err, core.EINVALID, "cannot parse font data")
	}
	f.Fontname, _ = f.SFNT.Name(nil, sfnt.NameIDFull)
	return
}

// UnitsPerEm returns the design units per em of the font.
func (sf *ScalableFont) UnitsPerEm() int {
	if sf == nil || sf.SFNT == nil {
		return dimen.DefaultUnitsPerEm
	}
	if upem := int(sf.SFNT.UnitsPerEm()); upem > 0 {
		return upem
	}
	return dimen.DefaultUnitsPerEm
}

// Identity is a string identifying a font for cache invalidation.
func (sf *ScalableFont) Identity() string {
	if sf == nil {
		return ""
	}
	return NormalizeFontname(sf.Fontname) + "|" + sf.Filepath
}

// --- Metrics ---------------------------------------------------------------

// GlyphMetrics are the metrics of a single glyph in font design units.
// BearingY is the distance from the baseline to the top of the glyph.
type GlyphMetrics struct {
	BearingX dimen.DU
	BearingY dimen.DU
	Width    dimen.DU
	Height   dimen.DU
	Advance  dimen.DU
}

// HasExtent is true for glyphs which produce visible geometry.
func (gm GlyphMetrics) HasExtent() bool {
	return gm.Width > 0 && gm.Height > 0
}

// LineMetrics are the vertical metrics of a font in design units.
// Descender is negative for descents below the baseline.
type LineMetrics struct {
	Ascender   dimen.DU
	Descender  dimen.DU
	LineHeight dimen.DU
}

// MetricsProvider reports glyph metrics for glyph IDs. The second return
// value of GlyphMetrics is false for glyphs not present in a font.
type MetricsProvider interface {
	UnitsPerEm() int
	LineMetrics() LineMetrics
	GlyphMetrics(gid uint32) (GlyphMetrics, bool)
}

// Metrics is a MetricsProvider for a scalable font. Glyph metrics are
// computed on demand and kept resident afterwards.
// Metrics is not safe for concurrent use.
type Metrics struct {
	font     *ScalableFont
	buf      sfnt.Buffer
	cache    map[uint32]glyphEntry
	lineMtx  LineMetrics
	haveLine bool
}

type glyphEntry struct {
	metrics GlyphMetrics
	present bool
}

var _ MetricsProvider = &Metrics{}

// NewMetrics creates a metrics provider for a font. A nil font selects the
// fallback font.
func NewMetrics(sf *ScalableFont) *Metrics {
	if sf == nil || sf.SFNT == nil {
		sf = FallbackFont()
	}
	return &Metrics{
		font:  sf,
		cache: make(map[uint32]glyphEntry),
	}
}

// Font returns the font metrics are reported for.
func (m *Metrics) Font() *ScalableFont {
	return m.font
}

func (m *Metrics) UnitsPerEm() int {
	return m.font.UnitsPerEm()
}

// ppem is chosen so that 26.6 values returned by sfnt equal design units.
func (m *Metrics) ppem() fixed.Int26_6 {
	return fixed.Int26_6(m.UnitsPerEm())
}

// LineMetrics returns ascender, descender and line height of the font.
func (m *Metrics) LineMetrics() LineMetrics {
	if m.haveLine {
		return m.lineMtx
	}
	upem := dimen.DU(m.UnitsPerEm())
	fm, err := m.font.SFNT.Metrics(&m.buf, m.ppem(), xfont.HintingNone)
	if err == nil {
		m.lineMtx = LineMetrics{
			Ascender:   dimen.DU(fm.Ascent),
			Descender:  -dimen.DU(fm.Descent),
			LineHeight: dimen.DU(fm.Height),
		}
	} else {
		tracer().Errorf("cannot read line metrics of %s: %v", m.font.Fontname, err)
		m.lineMtx = LineMetrics{Ascender: upem * 4 / 5, Descender: -upem / 5, LineHeight: upem}
	}
	if m.lineMtx.LineHeight <= 0 {
		m.lineMtx.LineHeight = m.lineMtx.Ascender - m.lineMtx.Descender
	}
	m.haveLine = true
	return m.lineMtx
}

// GlyphMetrics returns the metrics of a glyph, loading them if not yet
// resident.
func (m *Metrics) GlyphMetrics(gid uint32) (GlyphMetrics, bool) {
	if e, ok := m.cache[gid]; ok {
		return e.metrics, e.present
	}
	e := m.load(gid)
	m.cache[gid] = e
	return e.metrics, e.present
}

func (m *Metrics) load(gid uint32) glyphEntry {
	if int(gid) >= m.font.SFNT.NumGlyphs() {
		return glyphEntry{}
	}
	bounds, adv, err := m.font.SFNT.GlyphBounds(&m.buf, sfnt.GlyphIndex(gid), m.ppem(), xfont.HintingNone)
	if err != nil {
		tracer().Debugf("no bounds for glyph %d: %v", gid, err)
		return glyphEntry{}
	}
	// sfnt has y pointing down
	gm := GlyphMetrics{
		BearingX: dimen.DU(bounds.Min.X),
		BearingY: dimen.DU(-bounds.Min.Y),
		Width:    dimen.DU(bounds.Max.X - bounds.Min.X),
		Height:   dimen.DU(bounds.Max.Y - bounds.Min.Y),
		Advance:  dimen.DU(adv),
	}
	return glyphEntry{metrics: gm, present: true}
}

// Resident returns the number of glyphs with cached metrics.
func (m *Metrics) Resident() int {
	return len(m.cache)
}

// --- Fallback font ---------------------------------------------------------

// FallbackFont returns a font to be used if everything else failes. It is
// always present. Currently we use Go Sans, which has no Devanagari glyphs.
func FallbackFont() *ScalableFont {
	fallbackFontLoading.Do(func() {
		fallbackFont = loadFallbackFont()
	})
	return fallbackFont
}

var fallbackFontLoading sync.Once

var fallbackFont *ScalableFont

func loadFallbackFont() *ScalableFont {
	var err error
	gofont := &ScalableFont{
		Fontname: "Go Sans",
		Filepath: "internal",
		Binary:   goregular.TTF,
	}
	gofont.SFNT, err = sfnt.Parse(gofont.Binary)
	if err != nil {
		panic("cannot load default font") // this cannot happen
	}
	return gofont
}

// ---------------------------------------------------------------------------

// NormalizeFontname returns a lower-case font name without file extension
// and with blanks replaced by underscores.
func NormalizeFontname(fname string) string {
	fname = strings.TrimSpace(fname)
	fname = strings.ReplaceAll(fname, " ", "_")
	if dot := strings.LastIndex(fname, "."); dot > 0 {
		switch strings.ToLower(fname[dot:]) {
		case ".ttf", ".otf", ".ttc":
			fname = fname[:dot]
		}
	}
	return strings.ToLower(fname)
}
