package fontregistry

import (
	"sort"
	"sync"

	"github.com/npillmayer/devatext/core/font"
	"github.com/npillmayer/devatext/core/locate/resources"
	"github.com/npillmayer/schuko/tracing"
)

// Registry is a type for holding loaded fonts, keyed by the identity of
// their font source.
type Registry struct {
	sync.Mutex
	fonts map[string]*font.ScalableFont
}

var globalFontRegistry *Registry

var globalRegistryCreation sync.Once

// GlobalRegistry is an application-wide singleton to hold loaded fonts.
func GlobalRegistry() *Registry {
	globalRegistryCreation.Do(func() {
		globalFontRegistry = NewRegistry()
	})
	return globalFontRegistry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{fonts: make(map[string]*font.ScalableFont)}
}

// StoreFont pushes a font into the registry if it isn't contained yet.
// If key is already associated with a font, that font will not be
// overridden.
func (fr *Registry) StoreFont(key string, f *font.ScalableFont) {
	if f == nil {
		tracer().Errorf("registry cannot store null font")
		return
	}
	fr.Lock()
	defer fr.Unlock()
	if _, ok := fr.fonts[key]; !ok {
		tracer().Debugf("registry stores font %s as %s", f.Fontname, key)
		fr.fonts[key] = f
	}
}

// Font returns the font for a source. If the source has not been loaded
// before, it is resolved with r and stored. Failed loads are not
// remembered.
func (fr *Registry) Font(src resources.FontSource, r *resources.Resolver) (*font.ScalableFont, error) {
	key := src.Identity()
	fr.Lock()
	f, ok := fr.fonts[key]
	fr.Unlock()
	if ok {
		tracer().Debugf("registry found font %s", key)
		return f, nil
	}
	if r == nil {
		r = resources.NewResolver(nil)
	}
	f, err := r.Resolve(src)
	if err != nil {
		return nil, err
	}
	fr.StoreFont(key, f)
	fr.Lock()
	defer fr.Unlock()
	return fr.fonts[key], nil
}

// Len returns the number of fonts in the registry.
func (fr *Registry) Len() int {
	fr.Lock()
	defer fr.Unlock()
	return len(fr.fonts)
}

// LogFontList is a helper function to dump the list of known fonts
// in a registry to the trace-file (log-level Info).
func (fr *Registry) LogFontList() {
	fr.Lock()
	defer fr.Unlock()
	keys := make([]string, 0, len(fr.fonts))
	for k := range fr.fonts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	level := tracer().GetTraceLevel()
	tracer().SetTraceLevel(tracing.LevelInfo)
	tracer().Infof("--- registered fonts ---")
	for _, k := range keys {
		tracer().Infof("font [%s] = %v", k, fr.fonts[k].Fontname)
	}
	tracer().Infof("------------------------")
	tracer().SetTraceLevel(level)
}
