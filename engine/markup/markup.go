/*
Package markup strips inline rich-text markup from text.

Stripping produces plain text plus a style record per character of the plain
text and a list of link spans. All indices refer to characters (runes) of
the stripped text.

Recognized tags are (case-insensitive):

   <color=#RRGGBB> … </color>    also 3, 4 and 8 hex digits, '#' optional
   <size=150%> … </size>         percentage or absolute size
   <link=id> … </link>           also <a href=id> … </a>
   <br> <cr>                     line feed
   <nbsp> <zwsp> <zwj> <shy>     fixed Unicode characters
   <noparse> … </noparse>        content is copied verbatim

Other tags are consumed without effect. Malformed markup is never an error.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package markup

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/emirpasic/gods/stacks/arraystack"
	"github.com/npillmayer/devatext/core/dimen"
	"github.com/npillmayer/devatext/core/percent"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'devatext.markup'.
func tracer() tracing.Trace {
	return tracing.Select("devatext.markup")
}

// MinScale is the smallest scale a character may have.
const MinScale = 0.01

// StyledChar is the style of a single character.
type StyledChar struct {
	Color color.RGBA
	Scale float64
}

// DefaultStyle is opaque white at scale 1.
var DefaultStyle = StyledChar{Color: color.RGBA{R: 255, G: 255, B: 255, A: 255}, Scale: 1}

func (sc StyledChar) String() string {
	return fmt.Sprintf("#%02x%02x%02x%02x@%g", sc.Color.R, sc.Color.G, sc.Color.B, sc.Color.A, sc.Scale)
}

// LinkSpan is a run of characters belonging to a link.
type LinkSpan struct {
	ID     string
	Start  int // index of first character
	Length int // number of characters, always > 0
}

// End returns the index after the last character of a link.
func (l LinkSpan) End() int {
	return l.Start + l.Length
}

// Result is the outcome of stripping markup.
type Result struct {
	Text   string
	Styles []StyledChar // one per rune of Text
	Links  []LinkSpan
}

// Strip removes markup from raw text.
// If richText is false, raw is copied verbatim and every character receives
// the base style. baseFontSize is used to convert absolute sizes to scales.
func Strip(raw string, richText bool, base StyledChar, baseFontSize float64) Result {
	if base.Scale < MinScale {
		base.Scale = MinScale
	}
	if !richText || strings.IndexByte(raw, '<') < 0 {
		return verbatim(raw, base)
	}
	s := newStripper(raw, base, baseFontSize)
	s.run()
	return s.result()
}

func verbatim(raw string, base StyledChar) Result {
	r := Result{Text: raw}
	for range raw {
		r.Styles = append(r.Styles, base)
	}
	return r
}

// --- Stripper --------------------------------------------------------------

type openLink struct {
	id    string
	start int
}

type stripper struct {
	raw      string
	pos      int
	fontSize float64
	out      strings.Builder
	outLen   int // count of runes written
	styles   []StyledChar
	links    []LinkSpan
	colors   *arraystack.Stack // of color.RGBA
	scales   *arraystack.Stack // of float64
	linkOpen *arraystack.Stack // of openLink
}

func newStripper(raw string, base StyledChar, baseFontSize float64) *stripper {
	s := &stripper{
		raw:      raw,
		fontSize: baseFontSize,
		styles:   make([]StyledChar, 0, len(raw)),
		colors:   arraystack.New(),
		scales:   arraystack.New(),
		linkOpen: arraystack.New(),
	}
	s.colors.Push(base.Color)
	s.scales.Push(base.Scale)
	s.out.Grow(len(raw))
	return s
}

func (s *stripper) current() StyledChar {
	c, _ := s.colors.Peek()
	sc, _ := s.scales.Peek()
	return StyledChar{Color: c.(color.RGBA), Scale: sc.(float64)}
}

func (s *stripper) emit(r rune) {
	s.out.WriteRune(r)
	s.styles = append(s.styles, s.current())
	s.outLen++
}

func (s *stripper) emitString(str string) {
	for _, r := range str {
		s.emit(r)
	}
}

func (s *stripper) run() {
	for s.pos < len(s.raw) {
		lt := strings.IndexByte(s.raw[s.pos:], '<')
		if lt < 0 {
			s.emitString(s.raw[s.pos:])
			return
		}
		s.emitString(s.raw[s.pos : s.pos+lt])
		s.pos += lt
		end := findTagEnd(s.raw, s.pos)
		if end < 0 {
			tracer().Debugf("unterminated tag at byte %d swallows rest of input", s.pos)
			return
		}
		content := s.raw[s.pos+1 : end]
		s.pos = end + 1
		s.interpret(content)
	}
}

// findTagEnd returns the position of the '>' closing a tag which starts at
// position start, or -1. A '>' inside a quoted value does not close the tag.
func findTagEnd(raw string, start int) int {
	var quote byte
	for j := start + 1; j < len(raw); j++ {
		c := raw[j]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '>':
			return j
		}
	}
	return -1
}

func (s *stripper) interpret(content string) {
	name, value := splitTag(content)
	switch name {
	case "color":
		if c, ok := ParseColor(value); ok {
			s.colors.Push(c)
		} else {
			tracer().Debugf("ignoring invalid color %q", value)
		}
	case "/color":
		popAboveBase(s.colors)
	case "size":
		if sc, ok := parseScale(value, s.fontSize); ok {
			s.scales.Push(sc)
		} else {
			tracer().Debugf("ignoring invalid size %q", value)
		}
	case "/size":
		popAboveBase(s.scales)
	case "link":
		s.linkOpen.Push(openLink{id: value, start: s.outLen})
	case "a":
		s.linkOpen.Push(openLink{id: attribute(content, "href"), start: s.outLen})
	case "/link", "/a":
		if l, ok := s.linkOpen.Pop(); ok {
			s.closeLink(l.(openLink))
		}
	case "br", "cr":
		s.emit('\n')
	case "nbsp":
		s.emit('\u00A0')
	case "zwsp":
		s.emit('\u200B')
	case "zwj":
		s.emit('\u200D')
	case "shy":
		s.emit('\u00AD')
	case "noparse":
		s.noparse()
	default:
		tracer().Debugf("discarding tag <%s>", content)
	}
}

// noparse copies everything up to the closing </noparse> tag.
func (s *stripper) noparse() {
	const closing = "</noparse>"
	rest := s.raw[s.pos:]
	end := indexFold(rest, closing)
	if end < 0 {
		s.emitString(rest)
		s.pos = len(s.raw)
		return
	}
	s.emitString(rest[:end])
	s.pos += end + len(closing)
}

// indexFold is a case-insensitive strings.Index for an ASCII needle.
func indexFold(s, needle string) int {
	for i := 0; i+len(needle) <= len(s); i++ {
		if s[i] == needle[0] && strings.EqualFold(s[i:i+len(needle)], needle) {
			return i
		}
	}
	return -1
}

func (s *stripper) closeLink(l openLink) {
	if length := s.outLen - l.start; length > 0 {
		s.links = append(s.links, LinkSpan{ID: l.id, Start: l.start, Length: length})
	}
}

func (s *stripper) result() Result {
	for !s.linkOpen.Empty() {
		l, _ := s.linkOpen.Pop()
		s.closeLink(l.(openLink))
	}
	return Result{Text: s.out.String(), Styles: s.styles, Links: s.links}
}

// popAboveBase pops an entry from a style stack if it is not the base entry.
func popAboveBase(stack *arraystack.Stack) {
	if stack.Size() > 1 {
		stack.Pop()
	}
}

// --- Tag syntax ------------------------------------------------------------

// splitTag splits tag content into a lower-case name and an unquoted value.
// "color=#FF0000" gives ("color", "#FF0000"), "/size" gives ("/size", "").
func splitTag(content string) (name, value string) {
	content = strings.TrimSpace(content)
	content = strings.TrimSpace(strings.TrimSuffix(content, "/"))
	end := strings.IndexAny(content, "= \t")
	if end < 0 {
		return strings.ToLower(content), ""
	}
	name = strings.ToLower(content[:end])
	rest := strings.TrimSpace(content[end:])
	if strings.HasPrefix(rest, "=") {
		value = unquote(strings.TrimSpace(rest[1:]))
	}
	return name, value
}

// attribute finds a named attribute in tag content, e.g. href in
// `a href="x" target=y`.
func attribute(content, key string) string {
	lower := strings.ToLower(content)
	from := 0
	for {
		i := strings.Index(lower[from:], key)
		if i < 0 {
			return ""
		}
		i += from
		j := i + len(key)
		boundary := i == 0 || lower[i-1] == ' ' || lower[i-1] == '\t'
		rest := strings.TrimLeft(content[j:], " \t")
		if boundary && strings.HasPrefix(rest, "=") {
			return unquote(strings.TrimSpace(rest[1:]))
		}
		from = j
	}
}

// unquote returns a leading quoted string without its quotes, or the value
// up to the first blank.
func unquote(v string) string {
	if v == "" {
		return v
	}
	if q := v[0]; q == '"' || q == '\'' {
		if end := strings.IndexByte(v[1:], q); end >= 0 {
			return v[1 : end+1]
		}
		return v[1:]
	}
	if end := strings.IndexAny(v, " \t"); end >= 0 {
		return v[:end]
	}
	return v
}

// ParseColor parses a hex color with 3, 4, 6 or 8 digits, with or without a
// leading '#'. Colors without alpha are opaque.
func ParseColor(v string) (color.RGBA, bool) {
	v = strings.TrimPrefix(strings.TrimSpace(v), "#")
	var digits [8]byte
	switch len(v) {
	case 3, 4:
		for i := 0; i < len(v); i++ {
			digits[2*i], digits[2*i+1] = v[i], v[i]
		}
	case 6, 8:
		copy(digits[:], v)
	default:
		return color.RGBA{}, false
	}
	if len(v) == 3 || len(v) == 6 {
		digits[6], digits[7] = 'f', 'f'
	}
	var rgba [4]uint8
	for i := range rgba {
		hi, ok1 := hexval(digits[2*i])
		lo, ok2 := hexval(digits[2*i+1])
		if !ok1 || !ok2 {
			return color.RGBA{}, false
		}
		rgba[i] = hi<<4 | lo
	}
	return color.RGBA{R: rgba[0], G: rgba[1], B: rgba[2], A: rgba[3]}, true
}

func hexval(c byte) (uint8, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// parseScale converts a size value to a scale factor. "N%" is N/100, an
// absolute size is divided by the base font size.
func parseScale(v string, baseFontSize float64) (float64, bool) {
	var scale float64
	if p, isPercent, err := percent.FromString(v); err == nil && isPercent {
		scale = p.Ratio()
	} else {
		size, err := dimen.ParseSize(strings.TrimSpace(v))
		if err != nil {
			return 0, false
		}
		if baseFontSize <= 0 {
			baseFontSize = 1
		}
		scale = size / baseFontSize
	}
	if scale < MinScale {
		scale = MinScale
	}
	return scale, true
}
