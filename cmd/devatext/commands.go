package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/npillmayer/devatext/core/parameters"
	"github.com/npillmayer/devatext/engine/nojoin"
	"github.com/pterm/pterm"
)

const (
	QUIT int = iota
	HELP
	SHAPING
	WRAP
	RICH
	NOJOIN
	GLOBAL
	WORD
	FONT
	LANG
	SCRIPT
	WIDTH
	VARIANT
)

var opMap = map[string]int{
	"quit":    QUIT,
	"help":    HELP,
	"shaping": SHAPING,
	"wrap":    WRAP,
	"rich":    RICH,
	"nojoin":  NOJOIN,
	"global":  GLOBAL,
	"word":    WORD,
	"font":    FONT,
	"lang":    LANG,
	"script":  SCRIPT,
	"width":   WIDTH,
	"variant": VARIANT,
}

var commandFn = map[int]func(*Intp, string) (bool, error){
	QUIT:    quitOp,
	HELP:    helpOp,
	SHAPING: switchOp(func(intp *Intp, on bool) { intp.enabled = on; intp.block.SetEnabled(on) }),
	WRAP:    switchOp(func(intp *Intp, on bool) { intp.block.SetWordWrap(on) }),
	RICH:    switchOp(func(intp *Intp, on bool) { intp.block.SetRichText(on) }),
	NOJOIN:  switchOp(func(intp *Intp, on bool) { intp.block.SetNoJoin(on) }),
	GLOBAL:  switchOp(func(intp *Intp, on bool) { intp.block.SetUseGlobalNoJoin(on) }),
	WORD:    wordOp,
	FONT:    fontOp,
	LANG:    langOp,
	SCRIPT:  scriptOp,
	WIDTH:   widthOp,
	VARIANT: variantOp,
}

// parseCommand splits ":cmd argument" into an op-code and its argument.
// Unknown commands yield HELP.
func parseCommand(line string) (int, string) {
	line = strings.TrimPrefix(strings.TrimSpace(line), ":")
	name, arg, _ := strings.Cut(line, " ")
	code, ok := opMap[strings.ToLower(name)]
	if !ok {
		code = HELP
	}
	arg = strings.TrimSpace(arg)
	tracer().Debugf("parsed command: %s %q", name, arg)
	return code, arg
}

func (intp *Intp) execute(code int, arg string) (stop bool, err error) {
	f, ok := commandFn[code]
	if !ok {
		return false, fmt.Errorf("unknown command code: %d", code)
	}
	return f(intp, arg)
}

func quitOp(intp *Intp, arg string) (bool, error) {
	return true, nil
}

func helpOp(intp *Intp, arg string) (bool, error) {
	pterm.Info.Println("Commands")
	pterm.Println(`
	:shaping on|off    shape text or show the fallback
	:wrap on|off       word wrap at the box width
	:rich on|off       interpret markup tags
	:nojoin on|off     break conjuncts of configured words
	:global on|off     include global no-join settings
	:word w1, w2       set words to display without conjuncts
	:variant word      print the no-join variant of a word
	:font name|path    load another font
	:lang tag          set the language, e.g. 'hi' or 'mr'
	:script tag        force a script on the engine, '' to guess
	:width n           set the box width, 0 for no wrapping
	:quit              leave, as does <ctrl>D
	`)
	return false, nil
}

func switchOp(set func(*Intp, bool)) func(*Intp, string) (bool, error) {
	return func(intp *Intp, arg string) (bool, error) {
		on, err := parseOnOff(arg)
		if err != nil {
			return false, err
		}
		set(intp, on)
		return false, nil
	}
}

func parseOnOff(arg string) (bool, error) {
	switch strings.ToLower(arg) {
	case "on", "true", "yes", "1":
		return true, nil
	case "off", "false", "no", "0":
		return false, nil
	}
	return false, fmt.Errorf("expected on or off, have %q", arg)
}

func wordOp(intp *Intp, arg string) (bool, error) {
	intp.local = nojoin.ParseSeparatedTokens(arg)
	intp.block.SetLocalNoJoinWords(intp.local)
	pterm.Printf("local no-join words: %v\n", intp.local)
	return false, nil
}

func variantOp(intp *Intp, arg string) (bool, error) {
	word := nojoin.SanitizeWord(arg)
	if word == "" {
		return false, fmt.Errorf("no word given")
	}
	v := nojoin.NoJoinVariant(word)
	pterm.Printf("%s -> %s  %s\n", word, v, codepoints(v))
	return false, nil
}

func fontOp(intp *Intp, arg string) (bool, error) {
	intp.block.SetFont(fontSource(arg))
	pterm.Printf("font is %s\n", fontSource(arg))
	return false, nil
}

func langOp(intp *Intp, arg string) (bool, error) {
	intp.block.SetLanguage(arg)
	return false, nil
}

func scriptOp(intp *Intp, arg string) (bool, error) {
	intp.block.SetScript(strings.Trim(arg, `'"`))
	if _, ok := intp.regs.Script(); !ok {
		pterm.Println("script will be guessed")
	}
	return false, nil
}

func widthOp(intp *Intp, arg string) (bool, error) {
	w, err := strconv.ParseFloat(arg, 64)
	if err != nil {
		return false, fmt.Errorf("invalid width %q", arg)
	}
	intp.setWidth(w)
	pterm.Printf("box width is %g at font size %g\n", w, intp.regs.F(parameters.P_FONTSIZE))
	return false, nil
}
