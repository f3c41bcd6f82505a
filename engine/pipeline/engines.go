package pipeline

import (
	"github.com/npillmayer/devatext/core/dimen"
	"github.com/npillmayer/devatext/core/font"
	"github.com/npillmayer/devatext/engine/glyphing"
	"github.com/npillmayer/devatext/engine/glyphing/gotext"
	"github.com/npillmayer/devatext/engine/glyphing/harfbuzz"
	"github.com/npillmayer/devatext/engine/glyphing/monospace"
)

// EngineFactory acquires a shaping engine for a font. Engines are
// released by calling their Close method.
type EngineFactory func(f *font.ScalableFont) (glyphing.Shaper, error)

// HarfBuzz creates engines with the HarfBuzz port of textlayout.
func HarfBuzz(f *font.ScalableFont) (glyphing.Shaper, error) {
	sh, err := harfbuzz.New(f)
	if err != nil {
		return nil, err
	}
	return sh, nil
}

// GoText creates engines with the HarfBuzz port of go-text/typesetting.
func GoText(f *font.ScalableFont) (glyphing.Shaper, error) {
	sh, err := gotext.New(f)
	if err != nil {
		return nil, err
	}
	return sh, nil
}

// Monospace returns a factory for fixed-width engines which ignore the
// font. Every cell is em design units wide, with upem units per em.
func Monospace(em dimen.DU, upem int) EngineFactory {
	return func(*font.ScalableFont) (glyphing.Shaper, error) {
		return monospace.Shaper(em, upem, nil), nil
	}
}
