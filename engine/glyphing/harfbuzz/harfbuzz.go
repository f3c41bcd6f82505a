/*
Package harfbuzz uses HarfBuzz to convert text to sequences of glyphs.

The HarfBuzz port of github.com/benoitkugler/textlayout is used as the
shaping engine. A Shaper is bound to a single font; positions are reported
in the font's design units.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package harfbuzz

import (
	"bytes"
	"encoding/binary"
	"unicode"
	"unicode/utf8"

	hbtt "github.com/benoitkugler/textlayout/fonts/truetype"
	hb "github.com/benoitkugler/textlayout/harfbuzz"
	hblang "github.com/benoitkugler/textlayout/language"
	"github.com/npillmayer/devatext/core"
	"github.com/npillmayer/devatext/core/dimen"
	"github.com/npillmayer/devatext/core/font"
	"github.com/npillmayer/devatext/engine/glyphing"
	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/text/language"
)

// tracer traces with key 'devatext.glyphs'.
func tracer() tracing.Trace {
	return tracing.Select("devatext.glyphs")
}

// --- Type conversion -------------------------------------------------------

// Lang4HB returns a language tag as a HarfBuzz language.
func Lang4HB(l language.Tag) hblang.Language {
	return hblang.NewLanguage(l.String())
}

// Script4HB returns a script as a HarfBuzz script.
func Script4HB(s language.Script) hblang.Script {
	b := []byte(s.String())
	b[0] = byte(unicode.ToLower(rune(b[0])))
	h := binary.BigEndian.Uint32(b)
	return hblang.Script(h)
}

// Direction4HB translates a direction to a HarfBuzz direction.
func Direction4HB(d glyphing.Direction) hb.Direction {
	switch d {
	case glyphing.LeftToRight:
		return hb.LeftToRight
	case glyphing.RightToLeft:
		return hb.RightToLeft
	case glyphing.TopToBottom:
		return hb.TopToBottom
	case glyphing.BottomToTop:
		return hb.BottomToTop
	}
	return hb.LeftToRight
}

// --- Shaper ----------------------------------------------------------------

// Shaper is a shaping engine handle for one font.
type Shaper struct {
	font    *hb.Font
	upem    int
	offsets []int // rune index -> byte offset, scratch
}

var _ glyphing.Shaper = &Shaper{}

// New creates a HarfBuzz shaper for a font. Font faces are parsed once per
// shaper; clients should keep a shaper for as long as the font is in use.
func New(f *font.ScalableFont) (*Shaper, error) {
	if f == nil || len(f.Binary) == 0 {
		return nil, core.Error(core.EMISSING, "HarfBuzz shaper needs font data")
	}
	hbFace, err := hbtt.Parse(bytes.NewReader(f.Binary), true)
	if err != nil {
		return nil, core.WrapError(err, core.EINVALID, "HarfBuzz cannot parse font %s", f.Fontname)
	}
	sh := &Shaper{
		font: hb.NewFont(hbFace),
		upem: f.UnitsPerEm(),
	}
	tracer().Infof("HarfBuzz shaper created for font %s", f.Fontname)
	return sh, nil
}

// Shape calls the HarfBuzz shaper.
//
// Shape shapes a string, turning its Unicode characters into positioned glyphs.
// It will select a shape plan based on params and the properties of the
// input text. Cluster values returned are byte offsets into text.
func (sh *Shaper) Shape(text string, params glyphing.Params, buf []glyphing.ShapedGlyph) (int, error) {
	if sh == nil || sh.font == nil {
		return 0, core.Error(core.EINVALID, "HarfBuzz shaper is closed")
	}
	if text == "" || len(buf) == 0 {
		return 0, nil
	}
	runes := sh.prepareRunes(text)
	// Prepare HarfBuzz buffer
	hbBuf := hb.NewBuffer()
	convertParams(&hbBuf.Props, params, runes)
	hbBuf.AddRunes(runes, 0, len(runes))
	hbBuf.Shape(sh.font, nil)
	// move HarfBuzz output to glyph buffer
	n := len(hbBuf.Info)
	if n > len(buf) {
		n = len(buf)
	}
	for i := 0; i < n; i++ {
		ginfo := hbBuf.Info[i]
		gpos := &hbBuf.Pos[i]
		buf[i] = glyphing.ShapedGlyph{
			GID:      uint32(ginfo.Glyph),
			Cluster:  sh.byteOffset(ginfo.Cluster, len(text)),
			XAdvance: dimen.DU(gpos.XAdvance),
			YAdvance: dimen.DU(gpos.YAdvance),
			XOffset:  dimen.DU(gpos.XOffset),
			YOffset:  dimen.DU(gpos.YOffset),
		}
	}
	tracer().Debugf("HarfBuzz shaped %d runes into %d glyphs", len(runes), len(hbBuf.Info))
	return n, nil
}

// prepareRunes decodes text and remembers the byte offset of every rune.
func (sh *Shaper) prepareRunes(text string) []rune {
	runes := make([]rune, 0, utf8.RuneCountInString(text))
	sh.offsets = sh.offsets[:0]
	for pos, r := range text {
		runes = append(runes, r)
		sh.offsets = append(sh.offsets, pos)
	}
	return runes
}

// byteOffset translates a HarfBuzz cluster (a rune index) to a byte offset.
func (sh *Shaper) byteOffset(cluster int, textLen int) int {
	if cluster < 0 {
		return 0
	}
	if cluster >= len(sh.offsets) {
		return textLen
	}
	return sh.offsets[cluster]
}

// UnitsPerEm returns the design units of the font the shaper is bound to.
func (sh *Shaper) UnitsPerEm() int {
	return sh.upem
}

// Close releases the HarfBuzz font.
func (sh *Shaper) Close() error {
	sh.font = nil
	sh.offsets = nil
	return nil
}

// convertParams is a helper function to convert glyphing parameters to
// HarfBuzz's format. Without a script parameter the script is guessed
// from runes.
func convertParams(hbSegProps *hb.SegmentProperties, params glyphing.Params, runes []rune) {
	if params.Language != language.Und {
		hbSegProps.Language = Lang4HB(params.Language)
	}
	var none language.Script
	if params.Script != none {
		hbSegProps.Script = Script4HB(params.Script)
	} else {
		hbSegProps.Script = GuessScript(runes)
	}
	hbSegProps.Direction = Direction4HB(params.Direction)
}

// GuessScript returns the script of the first rune which belongs to a real
// script, i.e. neither Common nor Inherited. Text without such a rune is
// of script Common.
func GuessScript(runes []rune) hblang.Script {
	for _, r := range runes {
		if s := hblang.LookupScript(r); s.IsRealScript() {
			tracer().Debugf("guessed script %s from %q", s, r)
			return s
		}
	}
	return hblang.Common
}
