package resources

import (
	"bufio"
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/npillmayer/devatext/core"
	"github.com/npillmayer/devatext/core/font"
	"github.com/npillmayer/schuko"
)

// fontConfigEntry is a line of fc-list output.
type fontConfigEntry struct {
	Family string
	Path   string
	Style  string
}

func findFontConfigBinary(conf schuko.Configuration) string {
	fcpath := conf.GetString("fontconfig")
	if fcpath == "" {
		tracer().Debugf("fontconfig not configured: key 'fontconfig' should point to location of 'fc-list' binary")
		return ""
	}
	if !filepath.IsAbs(fcpath) {
		err := core.Error(core.EINVALID, "fontconfig binary fc-list must point to absolute path: %s", fcpath)
		tracer().Errorf(err.Error())
		return ""
	}
	if fi, err := os.Stat(fcpath); err != nil || (fi.Mode().Perm()&0100) == 0 {
		err = core.WrapError(err, core.EINVALID,
			"fontconfig configuration points to an invalid binary: %s", fcpath)
		tracer().Errorf(err.Error())
		return ""
	}
	return fcpath
}

func loadFontConfigList(conf schuko.Configuration) ([]fontConfigEntry, bool) {
	fcpath := findFontConfigBinary(conf)
	if fcpath == "" {
		return nil, false
	}
	var out bytes.Buffer
	fccmd := exec.Command(fcpath)
	fccmd.Stdout = &out
	if err := fccmd.Run(); err != nil {
		err = core.WrapError(err, core.EINVALID, "cannot run fontconfig binary %s", fcpath)
		tracer().Errorf(err.Error())
		return nil, false
	}
	return parseFontConfigList(out.Bytes()), true
}

// parseFontConfigList parses lines of the form
//
//    /path/to/font.ttf: Family Name:style=Regular
//
func parseFontConfigList(list []byte) []fontConfigEntry {
	var entries []fontConfigEntry
	ttc := 0
	scanner := bufio.NewScanner(bytes.NewReader(list))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Split(line, ":")
		if len(fields) < 2 {
			continue
		}
		fontpath := strings.TrimSpace(fields[0])
		if strings.HasSuffix(strings.ToLower(fontpath), ".ttc") {
			ttc++
			continue
		}
		family := strings.TrimPrefix(strings.TrimSpace(fields[1]), ".")
		if comma := strings.Index(family, ","); comma > 0 {
			family = family[:comma]
		}
		entry := fontConfigEntry{Family: family, Path: fontpath}
		if len(fields) > 2 {
			entry.Style = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(fields[2]), "style="))
		}
		entries = append(entries, entry)
	}
	if ttc > 0 {
		tracer().Infof("skipping %d platform fonts: TTC not supported", ttc)
	}
	return entries
}

var loadFontConfigListTask sync.Once
var fontConfigEntries []fontConfigEntry

// findFontConfigFont searches for a locally installed font using the fontconfig
// system (https://www.freedesktop.org/wiki/Software/fontconfig/).
// fontconfig has to be configured by setting the absolute path of the 'fc-list'
// binary as configuration key 'fontconfig'.
//
// We call the binary instead of using the C library because of possible version
// issues. If fontconfig is not configured, findFontConfigFont will silently
// return an empty path.
func findFontConfigFont(conf schuko.Configuration, name string) string {
	loadFontConfigListTask.Do(func() {
		fontConfigEntries, _ = loadFontConfigList(conf)
		tracer().Infof("loaded fontconfig list with %d entries", len(fontConfigEntries))
	})
	return matchFontConfigEntry(fontConfigEntries, name)
}

// matchFontConfigEntry prefers an exact family match with a regular style,
// then any exact family match, then a file name match.
func matchFontConfigEntry(entries []fontConfigEntry, name string) string {
	want := font.NormalizeFontname(name)
	var family, file string
	for _, e := range entries {
		if font.NormalizeFontname(e.Family) == want {
			if e.Style == "" || strings.Contains(e.Style, "regular") {
				return e.Path
			}
			if family == "" {
				family = e.Path
			}
		}
		if file == "" && font.NormalizeFontname(filepath.Base(e.Path)) == want {
			file = e.Path
		}
	}
	if family != "" {
		return family
	}
	return file
}
