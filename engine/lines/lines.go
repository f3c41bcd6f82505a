/*
Package lines breaks shaped text into lines.

Text is split into paragraphs at line feeds. Paragraphs are split at blanks
into tokens, where each token but the first one keeps its leading blank.
Tokens are shaped one by one, using a token cache of a text block, and packed
greedily into lines not wider than a given width.

Widths are measured in font design units, with every glyph's advance scaled
by the style scale of the character it belongs to. Cluster values of the
glyphs of a line are byte offsets into the complete text handed to Layout.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package lines

import (
	"math"
	"strings"

	"github.com/npillmayer/devatext/engine/glyphing"
	"github.com/npillmayer/devatext/engine/markup"
	"github.com/npillmayer/devatext/engine/remap"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'devatext.lines'.
func tracer() tracing.Trace {
	return tracing.Select("devatext.lines")
}

// Line is a line of shaped glyphs. Start and End are the range of
// characters [Start, End) of the text the line displays.
type Line struct {
	Glyphs    []glyphing.ShapedGlyph
	Width     float64 // scaled width in design units
	Start     int
	End       int
	Paragraph int
	Runs      []Run // in glyph order, covering all glyphs
}

// Run is a part of a line shaped in one call of the engine. Glyphs
// [GlyphStart, GlyphEnd) of the line display characters [Start, End).
type Run struct {
	GlyphStart, GlyphEnd int
	Start, End           int
	Degenerate           bool // all glyphs of the run share one cluster
}

// IsEmpty is true for lines without glyphs.
func (l Line) IsEmpty() bool {
	return len(l.Glyphs) == 0
}

// Breaker shapes text and breaks it into lines.
type Breaker struct {
	shaper glyphing.Shaper
	params glyphing.Params
	cache  *TokenCache
	wrap   bool
	styles []markup.StyledChar // per character of the text
	table  *remap.IndexTable
	buf    []glyphing.ShapedGlyph
}

// NewBreaker creates a line breaker for a shaper. If cache is nil, the
// breaker uses a cache of its own. Word wrap is enabled.
func NewBreaker(shaper glyphing.Shaper, params glyphing.Params, cache *TokenCache) *Breaker {
	if cache == nil {
		cache = NewTokenCache(0)
	}
	return &Breaker{
		shaper: shaper,
		params: params,
		cache:  cache,
		wrap:   true,
	}
}

// SetWordWrap enables or disables wrapping of paragraphs.
func (b *Breaker) SetWordWrap(on bool) {
	b.wrap = on
}

// SetStyles sets the character styles of the next text to lay out. Styles
// scale the advances of the glyphs of a character. Characters without a
// style have scale 1.
func (b *Breaker) SetStyles(styles []markup.StyledChar) {
	b.styles = styles
}

// Cache returns the token cache of the breaker.
func (b *Breaker) Cache() *TokenCache {
	return b.cache
}

// Layout shapes text into lines of at most maxLineWidth design units.
// Line endings are normalized to LF first. Every paragraph produces at
// least one line; empty paragraphs produce empty lines. If wrapping is
// disabled or maxLineWidth is not a positive number, every paragraph is
// shaped as a single line.
func (b *Breaker) Layout(text string, maxLineWidth float64) ([]Line, error) {
	text = NormalizeLineEndings(text)
	b.table = remap.NewIndexTable(text)
	wrap := b.wrap && maxLineWidth > 0 && !math.IsInf(maxLineWidth, 0) && !math.IsNaN(maxLineWidth)
	paragraphs := strings.Split(text, "\n")
	lines := make([]Line, 0, len(paragraphs))
	pstart := 0
	for pno, para := range paragraphs {
		var err error
		switch {
		case para == "":
			at := b.table.CharAt(pstart)
			lines = append(lines, Line{Start: at, End: at, Paragraph: pno})
		case !wrap:
			var line Line
			if line, err = b.shapeParagraph(para, pstart); err == nil {
				line.Paragraph = pno
				lines = append(lines, line)
			}
		default:
			var ll []Line
			if ll, err = b.wrapParagraph(para, pstart, maxLineWidth); err == nil {
				for i := range ll {
					ll[i].Paragraph = pno
				}
				lines = append(lines, ll...)
			}
		}
		if err != nil {
			return nil, err
		}
		pstart += len(para) + 1
	}
	tracer().Debugf("layout of %d paragraphs into %d lines", len(paragraphs), len(lines))
	return lines, nil
}

func (b *Breaker) shapeParagraph(para string, pstart int) (Line, error) {
	glyphs, w, degenerate, err := b.shapeToken(para, pstart)
	if err != nil {
		return Line{}, err
	}
	run := b.run(pstart, pstart+len(para), degenerate)
	run.GlyphEnd = len(glyphs)
	return Line{
		Glyphs: glyphs,
		Width:  w,
		Start:  run.Start,
		End:    run.End,
		Runs:   []Run{run},
	}, nil
}

// run creates a run for bytes [from, to) of the text.
func (b *Breaker) run(from, to int, degenerate bool) Run {
	return Run{Start: b.table.CharAt(from), End: b.table.CharAt(to), Degenerate: degenerate}
}

// lineBuilder collects tokens for a line. from and to are byte offsets.
type lineBuilder struct {
	line     Line
	from, to int
	tokens   int
}

func (lb *lineBuilder) add(glyphs []glyphing.ShapedGlyph, w float64, from, to int, run Run) {
	if lb.tokens == 0 {
		lb.from = from
	}
	run.GlyphStart = len(lb.line.Glyphs)
	lb.line.Glyphs = append(lb.line.Glyphs, glyphs...)
	run.GlyphEnd = len(lb.line.Glyphs)
	lb.line.Runs = append(lb.line.Runs, run)
	lb.line.Width += w
	lb.to = to
	lb.tokens++
}

func (b *Breaker) finish(lb *lineBuilder) Line {
	l := lb.line
	l.Start, l.End = b.table.CharAt(lb.from), b.table.CharAt(lb.to)
	return l
}

func (b *Breaker) wrapParagraph(para string, pstart int, maxWidth float64) ([]Line, error) {
	var lines []Line
	words := strings.Split(para, " ")
	lb := &lineBuilder{from: pstart, to: pstart}
	pos := pstart // byte position behind the previous token
	for w, word := range words {
		token, at := word, pos
		if w > 0 {
			token = " " + word
		}
		pos += len(token)
		if token == "" {
			continue
		}
		glyphs, width, degenerate, err := b.shapeToken(token, at)
		if err != nil {
			return nil, err
		}
		if len(lb.line.Glyphs) > 0 && lb.line.Width+width > maxWidth {
			lines = append(lines, b.finish(lb))
			lb = &lineBuilder{from: at, to: at}
			if token[0] == ' ' {
				token, at = token[1:], at+1
				lb.from, lb.to = at, at
				if token == "" {
					continue
				}
				if glyphs, width, degenerate, err = b.shapeToken(token, at); err != nil {
					return nil, err
				}
			}
		}
		lb.add(glyphs, width, at, at+len(token), b.run(at, at+len(token), degenerate))
	}
	lines = append(lines, b.finish(lb))
	return lines, nil
}

// shapeToken shapes a token located at byte offset at of the text. Glyph
// clusters are returned relative to the text. The width is scaled by the
// character styles. If the token is degenerate, its characters are
// distributed over its glyphs for looking up styles.
func (b *Breaker) shapeToken(token string, at int) ([]glyphing.ShapedGlyph, float64, bool, error) {
	tok, ok := b.cache.Get(token)
	if !ok {
		glyphs, err := glyphing.ShapeInto(b.shaper, token, b.params, b.buf)
		if err != nil {
			return nil, 0, false, err
		}
		b.buf = glyphs
		tok = Token{
			Glyphs: append([]glyphing.ShapedGlyph(nil), glyphs...),
			Width:  glyphing.Width(glyphs),
		}
		b.cache.Set(token, tok)
	}
	degenerate := tok.Degenerate()
	start, end := b.table.CharAt(at), b.table.CharAt(at+len(token))
	out := make([]glyphing.ShapedGlyph, len(tok.Glyphs))
	var w float64
	for i, g := range tok.Glyphs {
		g.Cluster += at
		out[i] = g
		char := b.table.CharAt(g.Cluster)
		if degenerate {
			char = ProportionalChar(i, len(out), start, end)
		}
		w += float64(g.XAdvance) * b.scaleAt(char)
	}
	return out, w, degenerate, nil
}

// ProportionalChar distributes characters [start, end) over n glyphs, for
// runs without usable cluster values. Glyph i of n is mapped to character
// start + round(i/(n-1) × (end-start-1)).
func ProportionalChar(i, n, start, end int) int {
	count := end - start
	if n < 2 || count < 2 {
		return start
	}
	return start + int(math.Round(float64(i)/float64(n-1)*float64(count-1)))
}

func (b *Breaker) scaleAt(char int) float64 {
	if char < 0 || char >= len(b.styles) {
		return 1
	}
	if s := b.styles[char].Scale; s >= markup.MinScale {
		return s
	}
	return markup.MinScale
}

// NormalizeLineEndings replaces CR LF and single CR by LF.
func NormalizeLineEndings(text string) string {
	if strings.IndexByte(text, '\r') < 0 {
		return text
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}

// MaxWidth returns the width of the widest line.
func MaxWidth(lines []Line) float64 {
	var w float64
	for _, l := range lines {
		w = math.Max(w, l.Width)
	}
	return w
}
