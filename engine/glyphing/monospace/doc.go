/*
Package monospace implements a simple shaper for monospace output.

Every grapheme cluster becomes one glyph with an advance of its cell width
(as of UAX#11) times the em size. Glyph IDs are the code-point of the first
rune of a cluster. The shaper does not need a font and reports its own glyph
metrics, which makes it a good stand-in for a real shaping engine in tests
and a last resort for the demo CLI.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package monospace

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'devatext.glyphs'.
func tracer() tracing.Trace {
	return tracing.Select("devatext.glyphs")
}
