package resources

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/flopp/go-findfont"
	"github.com/npillmayer/devatext/core"
	"github.com/npillmayer/devatext/core/font"
	"github.com/npillmayer/schuko"
)

// FontSource describes where to load a font from. Bytes take precedence
// over Path, Path takes precedence over Name.
type FontSource struct {
	Bytes []byte // raw font data
	Path  string // absolute path or path relative to one of the search folders
	Name  string // system font name, e.g. "Mangal" or "NotoSansDevanagari-Regular"
}

// IsEmpty is true if a source names no font at all.
func (src FontSource) IsEmpty() bool {
	return len(src.Bytes) == 0 && strings.TrimSpace(src.Path) == "" && strings.TrimSpace(src.Name) == ""
}

// Identity returns a string identifying the source, suitable for detecting
// font changes.
func (src FontSource) Identity() string {
	if len(src.Bytes) > 0 {
		return fmt.Sprintf("bytes:%d:%p", len(src.Bytes), &src.Bytes[0])
	}
	if src.Path != "" {
		return "path:" + src.Path
	}
	return "name:" + font.NormalizeFontname(src.Name)
}

func (src FontSource) String() string {
	if len(src.Bytes) > 0 {
		return fmt.Sprintf("<%d bytes>", len(src.Bytes))
	}
	if src.Path != "" {
		return src.Path
	}
	return src.Name
}

// NotFound returns an application error for a missing font.
func NotFound(res string) error {
	e := fmt.Errorf("resource missing: %v", res)
	return core.WrapError(e, core.EMISSING, "font not found: %s", res)
}

// Resolver loads fonts from font sources.
type Resolver struct {
	SearchPath []string             // folders for relative font paths
	conf       schuko.Configuration // optional, for fontconfig lookup
}

// NewResolver creates a resolver. Search folders are taken from the
// configuration key 'fontdirs' (separated by the OS list separator) and
// the current working directory. conf may be nil.
func NewResolver(conf schuko.Configuration) *Resolver {
	r := &Resolver{conf: conf}
	if conf != nil {
		for _, dir := range filepath.SplitList(conf.GetString("fontdirs")) {
			if dir = strings.TrimSpace(dir); dir != "" {
				r.SearchPath = append(r.SearchPath, dir)
			}
		}
	}
	if wd, err := os.Getwd(); err == nil {
		r.SearchPath = append(r.SearchPath, wd)
	}
	return r
}

// Resolve loads the font described by src.
func (r *Resolver) Resolve(src FontSource) (*font.ScalableFont, error) {
	switch {
	case len(src.Bytes) > 0:
		f, err := font.ParseOpenTypeFont(src.Bytes)
		if err != nil {
			return nil, err
		}
		if src.Name != "" {
			f.Fontname = src.Name
		}
		return f, nil
	case strings.TrimSpace(src.Path) != "":
		fpath, err := r.ResolvePath(src.Path)
		if err != nil {
			return nil, err
		}
		return font.LoadOpenTypeFont(fpath)
	case strings.TrimSpace(src.Name) != "":
		fpath, err := r.findSystemFont(strings.TrimSpace(src.Name))
		if err != nil {
			return nil, err
		}
		return font.LoadOpenTypeFont(fpath)
	}
	return nil, core.Error(core.EMISSING, "no font source given")
}

// ResolvePath locates a font file. Absolute paths are checked as they are,
// relative paths are tried against every search folder in turn.
func (r *Resolver) ResolvePath(p string) (string, error) {
	p = strings.TrimSpace(p)
	if filepath.IsAbs(p) {
		if isFile(p) {
			return p, nil
		}
		return "", NotFound(p)
	}
	for _, dir := range r.SearchPath {
		candidate := filepath.Join(dir, p)
		if isFile(candidate) {
			tracer().Debugf("font %s found in %s", p, dir)
			return candidate, nil
		}
	}
	return "", NotFound(p)
}

func (r *Resolver) findSystemFont(name string) (string, error) {
	candidates := []string{name}
	if filepath.Ext(name) == "" {
		candidates = append(candidates, name+".ttf", name+".otf")
	}
	for _, c := range candidates {
		if fpath, err := findfont.Find(c); err == nil && fpath != "" {
			tracer().Debugf("%s is a system font: %s", name, fpath)
			return fpath, nil
		}
	}
	if r.conf != nil {
		if fpath := findFontConfigFont(r.conf, name); fpath != "" {
			return fpath, nil
		}
	}
	return "", NotFound(name)
}

func isFile(p string) bool {
	fi, err := os.Stat(p)
	return err == nil && !fi.IsDir()
}
