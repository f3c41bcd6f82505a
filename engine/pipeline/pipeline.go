package pipeline

import (
	"github.com/npillmayer/devatext/core"
	"github.com/npillmayer/devatext/core/dimen"
	"github.com/npillmayer/devatext/core/font"
	"github.com/npillmayer/devatext/core/font/fontregistry"
	"github.com/npillmayer/devatext/core/locate/resources"
	"github.com/npillmayer/devatext/core/parameters"
	"github.com/npillmayer/devatext/engine/charinfo"
	"github.com/npillmayer/devatext/engine/glyphing"
	"github.com/npillmayer/devatext/engine/lines"
	"github.com/npillmayer/devatext/engine/markup"
	"github.com/npillmayer/devatext/engine/nojoin"
	"github.com/npillmayer/devatext/engine/remap"
	"golang.org/x/text/unicode/bidi"
)

// Result is the outcome of a shaping pass.
type Result struct {
	Text     string              // text after markup stripping and no-join substitution
	Stripped string              // text after markup stripping
	Styles   []markup.StyledChar // one style per character of Text
	Lines    []lines.Line
	Layout   *charinfo.Layout
	Fallback bool // the host should render Stripped without shaping
}

// Block is a piece of text shaped with one font.
type Block struct {
	src      resources.FontSource
	resolver *resources.Resolver
	registry *fontregistry.Registry
	factory  EngineFactory
	regs     *parameters.TypesettingRegisters
	enabled  bool
	base     markup.StyledChar
	global   *nojoin.Settings
	local    []string
	geom     charinfo.Geometry
	font     *font.ScalableFont
	engine   glyphing.Shaper
	metrics  font.MetricsProvider
	cache    *lines.TokenCache
	shaping  bool // a pass is running
	warned   bool // a degradation has been logged since the last success
}

// NewBlock creates a text block for a font. factory may be nil, selecting
// HarfBuzz. regs may be nil, selecting default registers.
func NewBlock(src resources.FontSource, factory EngineFactory,
	regs *parameters.TypesettingRegisters) *Block {
	//
	if factory == nil {
		factory = HarfBuzz
	}
	if regs == nil {
		regs = parameters.NewTypesettingRegisters()
	}
	return &Block{
		src:      src,
		resolver: resources.NewResolver(nil),
		registry: fontregistry.GlobalRegistry(),
		factory:  factory,
		regs:     regs,
		enabled:  true,
		base:     markup.DefaultStyle,
		cache:    lines.NewTokenCache(lines.DefaultCacheSize),
	}
}

// Registers returns the typesetting registers of the block. Changes to the
// registers are effective with the next pass.
func (b *Block) Registers() *parameters.TypesettingRegisters {
	return b.regs
}

// Cache returns the token cache of the block.
func (b *Block) Cache() *lines.TokenCache {
	return b.cache
}

// SetResolver sets the resolver used to load fonts.
func (b *Block) SetResolver(r *resources.Resolver) {
	if r != nil {
		b.resolver = r
	}
}

// SetRegistry sets the registry fonts are loaded from. Blocks share the
// global registry by default.
func (b *Block) SetRegistry(fr *fontregistry.Registry) {
	if fr != nil {
		b.registry = fr
	}
}

// SetEnabled switches shaping on or off. A disabled block always falls back.
func (b *Block) SetEnabled(on bool) {
	b.enabled = on
}

// SetFont changes the font. The current engine is released.
func (b *Block) SetFont(src resources.FontSource) {
	if src.Identity() == b.src.Identity() {
		return
	}
	if err := b.release(); err != nil {
		tracer().Errorf("releasing shaping engine: %v", err)
	}
	b.src = src
	b.font = nil
}

// SetBaseStyle sets the style of text outside of markup.
func (b *Block) SetBaseStyle(st markup.StyledChar) {
	b.base = st
}

// SetLocalNoJoinWords sets the words this block displays without conjuncts.
func (b *Block) SetLocalNoJoinWords(words []string) {
	b.local = append([]string(nil), words...)
}

// SetGlobalSettings sets the application wide no-join settings. The block
// keeps a snapshot.
func (b *Block) SetGlobalSettings(s *nojoin.Settings) {
	b.global = s.Clone()
}

// SetBox sets the rectangle to place text in.
func (b *Block) SetBox(rect dimen.Rect, margins charinfo.Margins) {
	b.geom.Rect = rect
	b.geom.Margins = margins
}

// SetAlignment sets the alignment of lines within the box.
func (b *Block) SetAlignment(h charinfo.HAlign, v charinfo.VAlign) {
	b.geom.HAlign = h
	b.geom.VAlign = v
}

// SetLanguage sets the language register.
func (b *Block) SetLanguage(lang string) { b.regs.Push(parameters.P_LANGUAGE, lang) }

// SetScript sets the script register. An empty script lets the engine guess.
func (b *Block) SetScript(script string) { b.regs.Push(parameters.P_SCRIPT, script) }

// SetDirection sets the text direction register.
func (b *Block) SetDirection(d bidi.Direction) { b.regs.Push(parameters.P_TEXTDIRECTION, d) }

// SetFontSize sets the font size in output units.
func (b *Block) SetFontSize(size float64) { b.regs.Push(parameters.P_FONTSIZE, size) }

// SetWordWrap switches word wrapping at the content width.
func (b *Block) SetWordWrap(on bool) { b.regs.Push(parameters.P_WORDWRAP, on) }

// SetRichText switches interpretation of markup tags.
func (b *Block) SetRichText(on bool) { b.regs.Push(parameters.P_RICHTEXT, on) }

// SetNoJoin switches no-join substitution.
func (b *Block) SetNoJoin(on bool) { b.regs.Push(parameters.P_NOJOIN, on) }

// SetUseGlobalNoJoin includes the global settings in no-join substitution.
func (b *Block) SetUseGlobalNoJoin(on bool) { b.regs.Push(parameters.P_NOJOINGLOBAL, on) }

// SetFallbackAllowed permits dropping layouts the font cannot display.
func (b *Block) SetFallbackAllowed(on bool) { b.regs.Push(parameters.P_FALLBACK, on) }

// Close releases the shaping engine. The block may be used again
// afterwards; a new engine is acquired with the next pass.
func (b *Block) Close() error {
	return b.release()
}

func (b *Block) release() error {
	if b.engine == nil {
		return nil
	}
	err := b.engine.Close()
	tracer().Debugf("released shaping engine for %s", b.src)
	b.engine, b.metrics = nil, nil
	return err
}

// Shape runs a complete pass over raw text.
func (b *Block) Shape(raw string) (*Result, error) {
	if b.shaping {
		return nil, core.Error(core.EINVALID, "text block is already shaping")
	}
	b.shaping = true
	defer func() { b.shaping = false }()
	//
	regs := b.regs
	text := lines.NormalizeLineEndings(raw)
	stripped := markup.Strip(text, regs.B(parameters.P_RICHTEXT), b.base, regs.F(parameters.P_FONTSIZE))
	res := &Result{Text: stripped.Text, Stripped: stripped.Text, Styles: stripped.Styles}
	if !b.enabled {
		return b.degrade(res, core.Error(core.EFALLBACK, "shaping is disabled"))
	}
	if err := b.acquire(); err != nil {
		return b.degrade(res, err)
	}
	if res.Text == "" {
		res.Layout = &charinfo.Layout{}
		b.warned = false
		return res, nil
	}
	if regs.B(parameters.P_NOJOIN) {
		res.Text = nojoin.Apply(stripped.Text, b.global, b.local, regs.B(parameters.P_NOJOINGLOBAL))
	}
	var links []markup.LinkSpan
	res.Styles, links = remap.Project(stripped.Text, res.Text, stripped.Styles, stripped.Links, b.base)
	//
	params := b.params()
	b.cache.SetFingerprint(lines.Fingerprint{
		Font:      b.src.Identity() + "|" + b.font.Identity(),
		Language:  params.Language,
		Script:    params.Script,
		Direction: params.Direction,
	})
	geom := b.geom
	geom.FontSize = regs.F(parameters.P_FONTSIZE)
	geom.UnitsPerEm = b.engine.UnitsPerEm()
	breaker := lines.NewBreaker(b.engine, params, b.cache)
	breaker.SetWordWrap(regs.B(parameters.P_WORDWRAP))
	breaker.SetStyles(res.Styles)
	ll, err := breaker.Layout(res.Text, geom.MaxLineWidth())
	if err != nil {
		if core.Code(err) != core.EFALLBACK {
			err = core.WrapError(err, core.EFALLBACK, "shaping failed")
		}
		return b.degrade(res, err)
	}
	res.Lines = ll
	res.Layout = charinfo.Build(ll, remap.NewIndexTable(res.Text), res.Styles, links, b.metrics, geom)
	if err := b.check(res.Layout); err != nil {
		if regs.B(parameters.P_FALLBACK) {
			res.Layout.ClearGeometry()
			return b.degrade(res, err)
		}
		tracer().Debugf("fallback not allowed, keeping layout: %v", err)
	}
	tracer().Debugf("shaped %d characters into %d lines", len(res.Layout.Chars), len(ll))
	b.warned = false
	return res, nil
}

// acquire makes sure an engine for the current font is available.
func (b *Block) acquire() error {
	if b.engine != nil {
		return nil
	}
	if b.font == nil {
		if b.src.IsEmpty() {
			return core.Error(core.EFALLBACK, "no font assigned")
		}
		f, err := b.registry.Font(b.src, b.resolver)
		if err != nil {
			return core.WrapError(err, core.EFALLBACK, "cannot load font %s", b.src)
		}
		b.font = f
	}
	engine, err := b.factory(b.font)
	if err != nil {
		return core.WrapError(err, core.EFALLBACK, "cannot create shaping engine for %s", b.src)
	}
	b.engine = engine
	if ms, ok := engine.(glyphing.MetricsShaper); ok {
		b.metrics = ms.Metrics()
	} else {
		b.metrics = font.NewMetrics(b.font)
	}
	tracer().Infof("acquired shaping engine for font %s", b.font.Fontname)
	return nil
}

func (b *Block) params() glyphing.Params {
	p := glyphing.Params{
		Direction: glyphing.DirectionFromBidi(b.regs.Direction()),
		Language:  b.regs.Language(),
	}
	if scr, ok := b.regs.Script(); ok {
		p.Script = scr
	}
	return p
}

// check tells if a layout is fit for display.
func (b *Block) check(l *charinfo.Layout) error {
	if l.MostlyMissing() {
		return core.Error(core.EFALLBACK, "font cannot display text: %d of %d glyphs missing",
			l.MissingGlyphs, len(l.Glyphs))
	}
	if l.GeometryCount == 0 {
		return core.Error(core.EFALLBACK, "shaping produced no visible glyphs")
	}
	return nil
}

// degrade flags a result as fallback and logs err, once until the next
// successful pass.
func (b *Block) degrade(res *Result, err error) (*Result, error) {
	res.Fallback = true
	if !b.warned {
		tracer().Errorf("falling back to unshaped text: %v", err)
		b.warned = true
	} else {
		tracer().Debugf("falling back to unshaped text: %v", err)
	}
	return res, err
}
