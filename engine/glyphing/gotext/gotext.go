/*
Package gotext shapes text with the HarfBuzz port of go-text/typesetting.

It is an alternative to package harfbuzz and implements the same shaping
engine contract. Clients choose between them when creating a text block.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

*/
package gotext

import (
	"bytes"
	"encoding/binary"
	"unicode/utf8"

	"github.com/go-text/typesetting/di"
	gtfont "github.com/go-text/typesetting/font"
	gtlang "github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"github.com/npillmayer/devatext/core"
	"github.com/npillmayer/devatext/core/dimen"
	"github.com/npillmayer/devatext/core/font"
	"github.com/npillmayer/devatext/engine/glyphing"
	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/language"
)

// tracer traces with key 'devatext.glyphs'.
func tracer() tracing.Trace {
	return tracing.Select("devatext.glyphs")
}

// Shaper is a go-text shaping engine handle for one font.
type Shaper struct {
	face    *gtfont.Face
	shaper  shaping.HarfbuzzShaper
	upem    int
	runes   []rune
	offsets []int
}

var _ glyphing.Shaper = &Shaper{}

// New creates a go-text shaper for a font.
func New(f *font.ScalableFont) (*Shaper, error) {
	if f == nil || len(f.Binary) == 0 {
		return nil, core.Error(core.EMISSING, "go-text shaper needs font data")
	}
	parsed, err := gtfont.ParseTTF(bytes.NewReader(f.Binary))
	if err != nil {
		return nil, core.WrapError(err, core.EINVALID, "go-text cannot parse font %s", f.Fontname)
	}
	sh := &Shaper{
		face: gtfont.NewFace(parsed.Font),
		upem: f.UnitsPerEm(),
	}
	tracer().Infof("go-text shaper created for font %s", f.Fontname)
	return sh, nil
}

// Shape implements glyphing.Shaper. The engine is asked to shape at a size
// of one em per design unit, so its output is in design units.
func (sh *Shaper) Shape(text string, params glyphing.Params, buf []glyphing.ShapedGlyph) (int, error) {
	if sh == nil || sh.face == nil {
		return 0, core.Error(core.EINVALID, "go-text shaper is closed")
	}
	if text == "" || len(buf) == 0 {
		return 0, nil
	}
	sh.decode(text)
	input := shaping.Input{
		Text:      sh.runes,
		RunStart:  0,
		RunEnd:    len(sh.runes),
		Direction: mapDirection(params.Direction),
		Face:      sh.face,
		Size:      fixed.I(sh.upem),
		Script:    mapScript(params.Script, sh.runes),
		Language:  gtlang.NewLanguage(params.Language.String()),
	}
	output := sh.shaper.Shape(input)
	n := len(output.Glyphs)
	if n > len(buf) {
		n = len(buf)
	}
	vertical := input.Direction.IsVertical()
	for i := 0; i < n; i++ {
		g := output.Glyphs[i]
		sg := glyphing.ShapedGlyph{
			GID:     uint32(g.GlyphID),
			Cluster: sh.byteOffset(g.TextIndex(), len(text)),
			XOffset: dimen.DU(g.XOffset.Round()),
			YOffset: dimen.DU(g.YOffset.Round()),
		}
		if vertical {
			sg.YAdvance = dimen.DU(g.Advance.Round())
		} else {
			sg.XAdvance = dimen.DU(g.Advance.Round())
		}
		buf[i] = sg
	}
	tracer().Debugf("go-text shaped %d runes into %d glyphs", len(sh.runes), len(output.Glyphs))
	return n, nil
}

func (sh *Shaper) decode(text string) {
	sh.runes = sh.runes[:0]
	sh.offsets = sh.offsets[:0]
	if cap(sh.runes) < utf8.RuneCountInString(text) {
		sh.runes = make([]rune, 0, utf8.RuneCountInString(text))
	}
	for pos, r := range text {
		sh.runes = append(sh.runes, r)
		sh.offsets = append(sh.offsets, pos)
	}
}

func (sh *Shaper) byteOffset(runeIndex int, textLen int) int {
	if runeIndex < 0 {
		return 0
	}
	if runeIndex >= len(sh.offsets) {
		return textLen
	}
	return sh.offsets[runeIndex]
}

// UnitsPerEm returns the design units of the font the shaper is bound to.
func (sh *Shaper) UnitsPerEm() int {
	return sh.upem
}

// Close drops the font face.
func (sh *Shaper) Close() error {
	sh.face = nil
	sh.runes, sh.offsets = nil, nil
	return nil
}

// mapDirection converts a glyphing direction to go-text's di.Direction.
func mapDirection(d glyphing.Direction) di.Direction {
	switch d {
	case glyphing.RightToLeft:
		return di.DirectionRTL
	case glyphing.TopToBottom:
		return di.DirectionTTB
	case glyphing.BottomToTop:
		return di.DirectionBTT
	default:
		return di.DirectionLTR
	}
}

// mapScript converts a forced script. Without one, the script of the first
// non-space rune is used.
func mapScript(s language.Script, runes []rune) gtlang.Script {
	var none language.Script
	if s != none {
		if b := []byte(s.String()); len(b) == 4 {
			return gtlang.Script(binary.BigEndian.Uint32(b))
		}
		tracer().Errorf("cannot convert script %s", s)
	}
	for _, r := range runes {
		if r == ' ' || r == '\t' || r == '\n' {
			continue
		}
		return gtlang.LookupScript(r)
	}
	return gtlang.Latin
}
