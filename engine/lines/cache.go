package lines

import (
	"fmt"
	"sort"

	"github.com/npillmayer/devatext/core/dimen"
	"github.com/npillmayer/devatext/engine/glyphing"
	"golang.org/x/text/language"
)

// Token is the shaped form of a token of text. Cluster values of a token's
// glyphs are relative to the start of the token. Width is the unscaled sum
// of advances.
type Token struct {
	Glyphs []glyphing.ShapedGlyph
	Width  dimen.DU
}

// Degenerate is true if the engine has reported the same cluster for all of
// the token's glyphs, though there are at least two of them.
func (t Token) Degenerate() bool {
	if len(t.Glyphs) < 2 {
		return false
	}
	for _, g := range t.Glyphs[1:] {
		if g.Cluster != t.Glyphs[0].Cluster {
			return false
		}
	}
	return true
}

// Fingerprint identifies the shaping setup tokens have been shaped with.
type Fingerprint struct {
	Font      string
	Language  language.Tag
	Script    language.Script
	Direction glyphing.Direction
}

func (fp Fingerprint) String() string {
	return fmt.Sprintf("%s[%s|%s|%s]", fp.Font, fp.Language, fp.Script, fp.Direction)
}

// DefaultCacheSize is the soft limit of token caches created with size 0.
const DefaultCacheSize = 1024

// TokenCache is a content-addressed cache of shaped tokens, keyed by the
// literal token text. When it exceeds its soft limit, the least recently
// used entries are evicted.
//
// Entries are not dropped when the text of a block changes. A token shapes
// the same wherever it occurs, so only a change of the fingerprint clears
// the cache.
//
// A token cache belongs to one text block and is not safe for concurrent
// use.
type TokenCache struct {
	entries   map[string]*tokenEntry
	softLimit int
	tick      int64 // monotonic access counter
	fp        Fingerprint
	hits      int
	misses    int
}

type tokenEntry struct {
	token Token
	atime int64
}

// NewTokenCache creates a cache with a soft limit. A soft limit of 0
// selects DefaultCacheSize, a negative limit means unlimited.
func NewTokenCache(softLimit int) *TokenCache {
	if softLimit == 0 {
		softLimit = DefaultCacheSize
	}
	return &TokenCache{
		entries:   make(map[string]*tokenEntry),
		softLimit: softLimit,
	}
}

// Get retrieves a token.
func (c *TokenCache) Get(text string) (Token, bool) {
	e, ok := c.entries[text]
	if !ok {
		c.misses++
		return Token{}, false
	}
	c.hits++
	c.tick++
	e.atime = c.tick
	return e.token, true
}

// Set stores a token. The cache takes ownership of the glyph slice.
func (c *TokenCache) Set(text string, tok Token) {
	c.tick++
	c.entries[text] = &tokenEntry{token: tok, atime: c.tick}
	if c.softLimit > 0 && len(c.entries) > c.softLimit {
		c.evictOldest()
	}
}

// Invalidate removes all entries.
func (c *TokenCache) Invalidate() {
	if len(c.entries) > 0 {
		tracer().Debugf("invalidating %d cached tokens", len(c.entries))
	}
	c.entries = make(map[string]*tokenEntry)
	c.tick = 0
}

// SetFingerprint sets the shaping setup for subsequent entries. If it
// differs from the current one, all entries are removed and true is
// returned.
func (c *TokenCache) SetFingerprint(fp Fingerprint) bool {
	if fp == c.fp {
		return false
	}
	tracer().Debugf("token cache fingerprint changes to %s", fp)
	c.fp = fp
	c.Invalidate()
	return true
}

// Fingerprint returns the current shaping setup.
func (c *TokenCache) Fingerprint() Fingerprint {
	return c.fp
}

// Len returns the number of cached tokens.
func (c *TokenCache) Len() int {
	return len(c.entries)
}

// Stats returns the number of cache hits and misses since creation.
func (c *TokenCache) Stats() (hits, misses int) {
	return c.hits, c.misses
}

// evictOldest removes a quarter of the entries, oldest first.
func (c *TokenCache) evictOldest() {
	target := c.softLimit * 3 / 4
	if target < 1 {
		target = 1
	}
	toEvict := len(c.entries) - target
	if toEvict <= 0 {
		return
	}
	type aged struct {
		key   string
		atime int64
	}
	all := make([]aged, 0, len(c.entries))
	for k, e := range c.entries {
		all = append(all, aged{k, e.atime})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].atime < all[j].atime })
	for i := 0; i < toEvict; i++ {
		delete(c.entries, all[i].key)
	}
	tracer().Debugf("evicted %d tokens from cache", toEvict)
}
