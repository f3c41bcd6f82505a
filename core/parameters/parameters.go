/*
Package parameters holds the typesetting registers which configure a shaping
pass.

Registers may be grouped: values pushed inside a group shadow the base values
until the group ends. Clients usually create a set of registers from a
configuration and adapt it per text block.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package parameters

import (
	"strconv"
	"strings"

	"github.com/npillmayer/devatext/core/dimen"
	"github.com/npillmayer/schuko"
	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/bidi"
)

// tracer traces with key 'devatext.core'.
func tracer() tracing.Trace {
	return tracing.Select("devatext.core")
}

type TypesettingParameter int

const (
	none            TypesettingParameter = iota
	P_LANGUAGE                           // BCP 47 language tag, as string
	P_SCRIPT                             // ISO 15924 script forced on the shaper, "" = guess
	P_TEXTDIRECTION                      // bidi.Direction
	P_FONTSIZE                           // font size in output units (float64)
	P_WORDWRAP                           // enable simple word wrap (bool)
	P_RICHTEXT                           // interpret rich text markup (bool)
	P_NOJOIN                             // apply no-join word configuration (bool)
	P_NOJOINGLOBAL                       // include global no-join settings (bool)
	P_FALLBACK                           // caller may fall back to non-shaped rendering (bool)
	P_STOPPER
)

type ParameterGroup struct {
	params map[TypesettingParameter]interface{}
	level  int
	next   *ParameterGroup
}

type TypesettingRegisters struct {
	base       [P_STOPPER]interface{}
	groups     *ParameterGroup
	grouplevel int
}

// ----------------------------------------------------------------------

func NewTypesettingRegisters() *TypesettingRegisters {
	regs := &TypesettingRegisters{}
	initParameters(&regs.base)
	return regs
}

func initParameters(p *[P_STOPPER]interface{}) {
	p[P_LANGUAGE] = "hi"                  // a string
	p[P_SCRIPT] = "Deva"                  // a string
	p[P_TEXTDIRECTION] = bidi.LeftToRight //
	p[P_FONTSIZE] = 36.0                  // output units
	p[P_WORDWRAP] = true                  //
	p[P_RICHTEXT] = true                  //
	p[P_NOJOIN] = true                    //
	p[P_NOJOINGLOBAL] = true              //
	p[P_FALLBACK] = true                  //
}

func (regs *TypesettingRegisters) Begingroup() {
	regs.grouplevel++
}

func (regs *TypesettingRegisters) Endgroup() {
	if regs.grouplevel > 0 {
		if regs.groups != nil && regs.groups.level == regs.grouplevel {
			regs.groups = regs.groups.next
		}
		regs.grouplevel--
	}
}

func (regs *TypesettingRegisters) Push(key TypesettingParameter, value interface{}) {
	if key <= none || key >= P_STOPPER {
		tracer().Errorf("ignoring push of typesetting parameter %d: out of range", key)
		return
	}
	if regs.grouplevel > 0 {
		var g *ParameterGroup
		if regs.groups == nil || regs.groups.level < regs.grouplevel {
			g = &ParameterGroup{}
			g.params = make(map[TypesettingParameter]interface{})
			g.level = regs.grouplevel
			g.next = regs.groups
			regs.groups = g
		} else {
			g = regs.groups
		}
		g.params[key] = value
	} else {
		regs.base[key] = value
	}
}

func (regs *TypesettingRegisters) Get(key TypesettingParameter) interface{} {
	if key <= none || key >= P_STOPPER {
		panic("parameter key outside range of typesetting parameters")
	}
	var value interface{}
	if regs.grouplevel > 0 {
		for g := regs.groups; g != nil; g = g.next {
			value = g.params[key]
			if value != nil {
				break
			}
		}
	}
	if value == nil {
		value = regs.base[key]
	}
	return value
}

func (regs *TypesettingRegisters) S(key TypesettingParameter) string {
	s, _ := regs.Get(key).(string)
	return s
}

func (regs *TypesettingRegisters) B(key TypesettingParameter) bool {
	b, _ := regs.Get(key).(bool)
	return b
}

func (regs *TypesettingRegisters) F(key TypesettingParameter) float64 {
	switch f := regs.Get(key).(type) {
	case float64:
		return f
	case int:
		return float64(f)
	}
	return 0
}

// Language returns the language register as a language tag.
// Unparsable values yield language.Und.
func (regs *TypesettingRegisters) Language() language.Tag {
	tag, err := language.Parse(regs.S(P_LANGUAGE))
	if err != nil {
		return language.Und
	}
	return tag
}

// Script returns the forced script. The second return value is false if no
// script is forced and the shaper should guess it.
func (regs *TypesettingRegisters) Script() (language.Script, bool) {
	s := strings.TrimSpace(regs.S(P_SCRIPT))
	if s == "" {
		return language.Script{}, false
	}
	scr, err := language.ParseScript(s)
	if err != nil {
		tracer().Errorf("invalid script register value %q", s)
		return language.Script{}, false
	}
	return scr, true
}

// Direction returns the text direction register.
func (regs *TypesettingRegisters) Direction() bidi.Direction {
	d, _ := regs.Get(P_TEXTDIRECTION).(bidi.Direction)
	return d
}

// --- Configuration ---------------------------------------------------------

// Configuration keys read by FromConfig.
var configKeys = map[string]TypesettingParameter{
	"shaping.language":      P_LANGUAGE,
	"shaping.script":        P_SCRIPT,
	"shaping.direction":     P_TEXTDIRECTION,
	"shaping.fontsize":      P_FONTSIZE,
	"shaping.wordwrap":      P_WORDWRAP,
	"shaping.richtext":      P_RICHTEXT,
	"shaping.nojoin":        P_NOJOIN,
	"shaping.nojoin.global": P_NOJOINGLOBAL,
	"shaping.fallback":      P_FALLBACK,
}

// FromConfig creates typesetting registers with defaults, overridden by
// the values of a configuration. Invalid values are reported and skipped.
func FromConfig(conf schuko.Configuration) *TypesettingRegisters {
	regs := NewTypesettingRegisters()
	if conf == nil {
		return regs
	}
	for key, p := range configKeys {
		value := strings.TrimSpace(conf.GetString(key))
		if value == "" {
			continue
		}
		switch p {
		case P_LANGUAGE:
			if _, err := language.Parse(value); err != nil {
				tracer().Errorf("config %s: invalid language %q", key, value)
				continue
			}
			regs.Push(p, value)
		case P_SCRIPT:
			if strings.EqualFold(value, "auto") || strings.EqualFold(value, "none") {
				regs.Push(p, "")
				continue
			}
			if _, err := language.ParseScript(value); err != nil {
				tracer().Errorf("config %s: invalid script %q", key, value)
				continue
			}
			regs.Push(p, value)
		case P_TEXTDIRECTION:
			switch strings.ToLower(value) {
			case "rtl", "righttoleft":
				regs.Push(p, bidi.RightToLeft)
			default:
				regs.Push(p, bidi.LeftToRight)
			}
		case P_FONTSIZE:
			size, err := dimen.ParseSize(value)
			if err != nil || size <= 0 {
				tracer().Errorf("config %s: invalid size %q", key, value)
				continue
			}
			regs.Push(p, size)
		default:
			b, err := strconv.ParseBool(value)
			if err != nil {
				tracer().Errorf("config %s: invalid flag %q", key, value)
				continue
			}
			regs.Push(p, b)
		}
	}
	return regs
}
