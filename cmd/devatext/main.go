/*
Command devatext is an interactive playground for the shaping pipeline.

Lines typed at the prompt are shaped and printed character by character.
Lines starting with a colon are commands, e.g. ':nojoin off' or ':word <word>'.
Enter ':help' for a list of commands.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/npillmayer/devatext/core/dimen"
	"github.com/npillmayer/devatext/core/locate/resources"
	"github.com/npillmayer/devatext/core/parameters"
	"github.com/npillmayer/devatext/engine/charinfo"
	"github.com/npillmayer/devatext/engine/nojoin"
	"github.com/npillmayer/devatext/engine/pipeline"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/pterm/pterm"
	"golang.org/x/image/font/gofont/goregular"
)

// tracer traces with key 'devatext.pipeline'
func tracer() tracing.Trace {
	return tracing.Select("devatext.pipeline")
}

func main() {
	initDisplay()

	// set up logging
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{
		"tracing.adapter":         "go",
		"trace.devatext.pipeline": "Info",
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		fmt.Printf("error configuring tracing")
		os.Exit(1)
	}
	tracing.SetTraceSelector(trace2go.Selector())

	// command line flags
	tlevel := flag.String("trace", "Info", "Trace level [Debug|Info|Error]")
	fontname := flag.String("font", "", "Font to load, file path or system font name")
	engine := flag.String("engine", "harfbuzz", "Shaping engine [harfbuzz|gotext|mono]")
	lang := flag.String("lang", "hi", "Language tag")
	script := flag.String("script", "Deva", "Script to force on the shaping engine")
	size := flag.Float64("size", 36, "Font size")
	width := flag.Float64("width", 0, "Box width, 0 for no wrapping")
	settings := flag.String("nojoin", "", "YAML file with global no-join settings")
	flag.Parse()
	tracer().SetTraceLevel(tracing.LevelError)
	pterm.Info.Println("Welcome to devatext")
	//
	conf["shaping.language"] = *lang
	conf["shaping.script"] = *script
	conf["shaping.fontsize"] = fmt.Sprintf("%g", *size)
	intp, err := newIntp(*fontname, *engine, parameters.FromConfig(conf))
	if err != nil {
		tracer().Errorf(err.Error())
		os.Exit(3)
	}
	intp.setWidth(*width)
	if *settings != "" {
		s, err := nojoin.LoadSettings(*settings)
		if err != nil {
			tracer().Errorf(err.Error())
			os.Exit(4)
		}
		s.Normalize()
		intp.block.SetGlobalSettings(s)
		pterm.Printf("%d global no-join words, %d selective rules\n", len(s.Words), len(s.Rules))
	}
	//
	// set up REPL
	repl, err := readline.New("deva > ")
	if err != nil {
		tracer().Errorf(err.Error())
		os.Exit(3)
	}
	intp.repl = repl
	pterm.Info.Println("Quit with <ctrl>D")
	switch *tlevel {
	case "Debug":
		tracer().SetTraceLevel(tracing.LevelDebug)
	case "Info":
		tracer().SetTraceLevel(tracing.LevelInfo)
	case "Error":
		tracer().SetTraceLevel(tracing.LevelError)
	default:
		tracer().Errorf("Invalid trace level: %s", *tlevel)
		os.Exit(5)
	}
	tracer().Infof("Trace level is %s", *tlevel)
	intp.REPL()
	intp.block.Close()
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.EnableDebugMessages()
	pterm.Info.Prefix = pterm.Prefix{
		Text:  " !  ",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

// Intp is our interpreter object.
type Intp struct {
	repl    *readline.Instance
	block   *pipeline.Block
	regs    *parameters.TypesettingRegisters
	engine  string
	enabled bool
	local   []string
}

func newIntp(fontname, engine string, regs *parameters.TypesettingRegisters) (*Intp, error) {
	factory, err := engineFactory(engine)
	if err != nil {
		return nil, err
	}
	intp := &Intp{regs: regs, engine: engine, enabled: true}
	intp.block = pipeline.NewBlock(fontSource(fontname), factory, regs)
	return intp, nil
}

func engineFactory(name string) (pipeline.EngineFactory, error) {
	switch strings.ToLower(name) {
	case "harfbuzz", "hb", "":
		return pipeline.HarfBuzz, nil
	case "gotext":
		return pipeline.GoText, nil
	case "mono", "monospace":
		return pipeline.Monospace(500, 1000), nil
	}
	return nil, fmt.Errorf("unknown shaping engine: %s", name)
}

// fontSource interprets names containing a path separator or a font file
// extension as paths. Without a name the Go font is used, which does not
// cover Devanagari.
func fontSource(fontname string) resources.FontSource {
	fontname = strings.TrimSpace(fontname)
	if strings.ContainsRune(fontname, os.PathSeparator) || strings.HasSuffix(fontname, ".ttf") ||
		strings.HasSuffix(fontname, ".otf") {
		return resources.FontSource{Path: fontname}
	}
	if fontname == "" {
		return resources.FontSource{Bytes: goregular.TTF, Name: "Go Regular"}
	}
	return resources.FontSource{Name: fontname}
}

func (intp *Intp) setWidth(w float64) {
	if w <= 0 {
		intp.block.SetBox(dimen.Rect{}, charinfo.Margins{})
		return
	}
	intp.block.SetBox(dimen.Rect{MaxX: w, MaxY: 10 * intp.regs.F(parameters.P_FONTSIZE)}, charinfo.Margins{})
}

func (intp *Intp) String() string {
	onoff := func(b bool) string {
		if b {
			return "on"
		}
		return "off"
	}
	return fmt.Sprintf("( %s | %s shaping=%s wrap=%s rich=%s nojoin=%s global=%s )",
		intp.engine, intp.regs.Language(), onoff(intp.enabled),
		onoff(intp.regs.B(parameters.P_WORDWRAP)), onoff(intp.regs.B(parameters.P_RICHTEXT)),
		onoff(intp.regs.B(parameters.P_NOJOIN)), onoff(intp.regs.B(parameters.P_NOJOINGLOBAL)))
}

// REPL starts interactive mode.
func (intp *Intp) REPL() {
	for {
		pterm.Println(intp.String())
		line, err := intp.repl.Readline()
		if err != nil { // io.EOF
			break
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		if !strings.HasPrefix(line, ":") {
			intp.shape(line)
			continue
		}
		cmd, arg := parseCommand(line)
		stop, err := intp.execute(cmd, arg)
		if err != nil {
			pterm.Error.Println(err)
			continue
		}
		if stop {
			break
		}
	}
	pterm.Info.Println("Good bye!")
}
