/*
Package glyphing defines the contract between text layout and a shaping engine.

A shaping engine turns a run of text into positioned glyphs, taken from a
single font. The engine is a black box to the layout: it receives UTF-8 text,
a language, an optional forced script and a writing direction, and reports
glyph records with advances, offsets and a cluster value. Cluster values are
byte offsets into the text handed to the engine.

Engines write into a buffer provided by the caller. If the number of glyphs
reported equals the capacity of the buffer, the output may have been
truncated and the caller has to retry with a larger buffer. ShapeInto does
exactly this.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package glyphing

import (
	"fmt"

	"github.com/npillmayer/devatext/core"
	"github.com/npillmayer/devatext/core/dimen"
	"github.com/npillmayer/devatext/core/font"
	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/bidi"
)

// tracer traces with key 'devatext.glyphs'.
func tracer() tracing.Trace {
	return tracing.Select("devatext.glyphs")
}

// Direction is the direction to typeset text in.
type Direction int

// Direction to typeset text in.
const (
	LeftToRight Direction = iota
	RightToLeft
	TopToBottom
	BottomToTop
)

func (d Direction) String() string {
	switch d {
	case LeftToRight:
		return "LTR"
	case RightToLeft:
		return "RTL"
	case TopToBottom:
		return "TTB"
	case BottomToTop:
		return "BTT"
	}
	return "Direction(?)"
}

// DirectionFromBidi converts a bidi direction to a writing direction.
func DirectionFromBidi(d bidi.Direction) Direction {
	if d == bidi.RightToLeft {
		return RightToLeft
	}
	return LeftToRight
}

// A ShapedGlyph lives in design space (result from the shaper, which lives in design space
// as well, at least its interface).
type ShapedGlyph struct {
	GID      uint32   // glyph index within font, 0 = missing glyph
	Cluster  int      // byte offset of the code-point(s) for this glyph
	XAdvance dimen.DU // advance after glyph has been set, in design units
	YAdvance dimen.DU //
	XOffset  dimen.DU // position of anchor dot for glyph, in design units
	YOffset  dimen.DU //
}

func (g ShapedGlyph) String() string {
	return fmt.Sprintf("(GID=%d, cluster=%d, advance=%s)", g.GID, g.Cluster, g.XAdvance)
}

// IsMissing is true for the '.notdef' glyph.
func (g ShapedGlyph) IsMissing() bool {
	return g.GID == 0
}

// Params collects shaping parameters.
type Params struct {
	Direction Direction       // writing direction
	Script    language.Script // 4-letter ISO 15924 script identifier, zero value = guess
	Language  language.Tag    // BCP 47 language tag
}

func (p Params) String() string {
	var none language.Script
	scr := "auto"
	if p.Script != none {
		scr = p.Script.String()
	}
	return fmt.Sprintf("[%s|%s|%s]", p.Language, scr, p.Direction)
}

// A Shaper creates a sequence of glyphs from a sequence of Unicode
// code-points. A shaper is bound to one font and reports in that font's
// design units.
//
// Shape writes at most len(buf) glyphs into buf and returns the number of
// glyphs written. A return value of len(buf) signals that the output may have
// been truncated.
//
// Shapers are not safe for concurrent use.
type Shaper interface {
	Shape(text string, params Params, buf []ShapedGlyph) (int, error)
	UnitsPerEm() int
	Close() error
}

// A MetricsShaper is a shaper which does not draw glyphs from a font file
// and therefore reports glyph metrics itself.
type MetricsShaper interface {
	Shaper
	Metrics() font.MetricsProvider
}

// Initial and maximum buffer sizes for ShapeInto.
const (
	MinBufferSize = 32
	MaxBufferSize = 1 << 20
)

// BufferSize returns the initial buffer size for shaping a text with
// byteLen bytes: max(32, 4*byteLen+8).
func BufferSize(byteLen int) int {
	n := 4*byteLen + 8
	if n < MinBufferSize {
		n = MinBufferSize
	}
	return n
}

// ShapeInto shapes text with a shaper, taking care of buffer sizing.
// buf may be provided to avoid allocations; it will be grown as needed and
// the result may alias it. The buffer is doubled and shaping repeated for as
// long as the shaper reports saturation.
func ShapeInto(sh Shaper, text string, params Params, buf []ShapedGlyph) ([]ShapedGlyph, error) {
	if sh == nil {
		return nil, core.Error(core.EMISSING, "no shaping engine")
	}
	if text == "" {
		return buf[:0], nil
	}
	size := BufferSize(len(text))
	for {
		if cap(buf) < size {
			buf = make([]ShapedGlyph, size)
		}
		buf = buf[:size]
		n, err := sh.Shape(text, params, buf)
		if err != nil {
			return buf[:0], core.WrapError(err, core.EFALLBACK, "shaping engine failed for %q", text)
		}
		if n < 0 {
			n = 0
		}
		if n < size {
			return buf[:n], nil
		}
		if size >= MaxBufferSize {
			return buf[:0], core.Error(core.EINTERNAL, "shaping output exceeds %d glyphs", MaxBufferSize)
		}
		tracer().Debugf("shaping buffer of %d saturated, retrying", size)
		size *= 2
	}
}

// Width returns the sum of the horizontal advances of a glyph sequence.
func Width(glyphs []ShapedGlyph) dimen.DU {
	var w dimen.DU
	for _, g := range glyphs {
		w += g.XAdvance
	}
	return w
}
