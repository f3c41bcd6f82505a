package main

import (
	"fmt"
	"strings"

	"github.com/npillmayer/devatext/core"
	"github.com/npillmayer/devatext/engine/nojoin"
	"github.com/npillmayer/devatext/engine/pipeline"
	"github.com/pterm/pterm"
)

func (intp *Intp) shape(line string) {
	res, err := intp.block.Shape(line)
	if err != nil {
		if !core.IsFallback(err) || res == nil {
			pterm.Error.Println(err)
			return
		}
		pterm.Warning.Printf("%s\n", core.UserMessage(err))
	}
	if res.Text != res.Stripped {
		pterm.Printf("no-join: %s -> %s\n", res.Stripped, res.Text)
	}
	if res.Fallback {
		pterm.Printf("unshaped: %s\n", res.Stripped)
	}
	printLayout(res)
}

func printLayout(res *pipeline.Result) {
	if res.Layout == nil {
		return
	}
	l := res.Layout
	pterm.Printf("%d lines, %d glyphs (%d missing), %d characters\n",
		len(l.Lines), len(l.Glyphs), l.MissingGlyphs, len(l.Chars))
	data := [][]string{
		{"#", "Char", "Code", "Line", "X", "Width", "Glyph", "Color"},
	}
	i := 0
	for _, r := range res.Text {
		if i >= len(l.Chars) {
			break
		}
		rec := l.Chars[i]
		glyph := "-"
		if rec.HasGeometry {
			glyph = fmt.Sprintf("%d", rec.FirstGeometryIndex)
		} else if rec.Synthetic {
			glyph = "synthetic"
		}
		data = append(data, []string{
			fmt.Sprintf("%d", i),
			printable(r),
			fmt.Sprintf("U+%04X", r),
			fmt.Sprintf("%d", rec.LineNumber),
			fmt.Sprintf("%.1f", rec.Box.MinX),
			fmt.Sprintf("%.1f", rec.Box.Width()),
			glyph,
			fmt.Sprintf("#%02x%02x%02x%02x", rec.Color.R, rec.Color.G, rec.Color.B, rec.Color.A),
		})
		i++
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	for _, link := range l.Links {
		pterm.Printf("link %q covers characters %d-%d\n", link.ID, link.Start, link.End()-1)
	}
}

func printable(r rune) string {
	switch {
	case nojoin.IsJoinControl(r):
		return "(ctrl)"
	case r == '\n':
		return "(lf)"
	case r == ' ':
		return "(sp)"
	}
	return string(r)
}

func codepoints(s string) string {
	var sb strings.Builder
	for i, r := range s {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(fmt.Sprintf("U+%04X", r))
	}
	return sb.String()
}
