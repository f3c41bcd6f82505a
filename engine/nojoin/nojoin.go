/*
Package nojoin suppresses conjunct formation for configured Devanagari words.

A virama (U+094D) between two consonants usually makes a shaping engine form
a conjunct. Inserting a zero width non-joiner (ZWNJ, U+200C) after the virama
keeps the half form visible. Clients configure words which should always be
rendered this way, and selective rules which disjoin only parts of a word.

Replacements are applied to whole words only. A word boundary is any position
not adjacent to a letter, digit, combining mark, ZWNJ or ZWJ.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package nojoin

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/derekparker/trie"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'devatext.nojoin'.
func tracer() tracing.Trace {
	return tracing.Select("devatext.nojoin")
}

// Joining control characters.
const (
	Virama = '\u094D' // Devanagari sign virama, triggers conjuncts
	ZWNJ   = '\u200C' // zero width non-joiner, suppresses joining
	ZWJ    = '\u200D' // zero width joiner, forces joining
)

// IsJoinControl is true for ZWNJ and ZWJ.
func IsJoinControl(r rune) bool {
	return r == ZWNJ || r == ZWJ
}

// NoJoinVariant inserts a ZWNJ after every virama of word which is not yet
// followed by ZWNJ or ZWJ.
func NoJoinVariant(word string) string {
	if !strings.ContainsRune(word, Virama) {
		return word
	}
	var b strings.Builder
	b.Grow(len(word) + 3*strings.Count(word, string(Virama)))
	for i, r := range word {
		b.WriteRune(r)
		if r != Virama {
			continue
		}
		next, _ := utf8.DecodeRuneInString(word[i+utf8.RuneLen(r):])
		if !IsJoinControl(next) {
			b.WriteRune(ZWNJ)
		}
	}
	return b.String()
}

// SelectiveVariant disjoins only the listed patterns within word. patterns
// is free-form text as accepted by ParseSeparatedTokens. Longer patterns
// are applied first; patterns without a virama are ignored.
func SelectiveVariant(word, patterns string) string {
	if word == "" {
		return word
	}
	pp := ParseSeparatedTokens(patterns)
	sortLongestFirst(pp)
	result := word
	for _, p := range pp {
		if !strings.ContainsRune(p, Virama) {
			continue
		}
		result = strings.ReplaceAll(result, p, NoJoinVariant(p))
	}
	return result
}

// --- Replacement table -----------------------------------------------------

// Replacements is an effective table of whole-word replacements.
// A Replacements value is immutable once built and may be shared.
type Replacements struct {
	table *trie.Trie
	keys  []string // longest first
}

// BuildReplacements merges global settings and local words into a
// replacement table. Global words have the lowest priority and never
// overwrite an entry; global selective rules and local words overwrite
// entries for the same word. If useGlobal is false, global settings are
// not consulted.
func BuildReplacements(global *Settings, local []string, useGlobal bool) *Replacements {
	r := &Replacements{table: trie.New()}
	if useGlobal && global != nil {
		for _, w := range global.Words {
			w = SanitizeWord(w)
			r.add(w, NoJoinVariant(w), false)
		}
		for _, rule := range global.Rules {
			w := SanitizeWord(rule.Word)
			r.add(w, SelectiveVariant(w, rule.DisjoinPatterns), true)
		}
	}
	for _, w := range local {
		w = SanitizeWord(w)
		r.add(w, NoJoinVariant(w), true)
	}
	sortLongestFirst(r.keys)
	tracer().Debugf("no-join table has %d entries", len(r.keys))
	return r
}

func (r *Replacements) add(word, replacement string, overwrite bool) {
	if word == "" || replacement == "" || word == replacement {
		return
	}
	_, exists := r.table.Find(word)
	if exists && !overwrite {
		return
	}
	r.table.Add(word, replacement) // replaces the value of an existing node
	if !exists {
		r.keys = append(r.keys, word)
	}
}

// Len returns the number of entries.
func (r *Replacements) Len() int {
	if r == nil {
		return 0
	}
	return len(r.keys)
}

// Lookup returns the replacement for a word, if any.
func (r *Replacements) Lookup(word string) (string, bool) {
	if r == nil {
		return "", false
	}
	node, ok := r.table.Find(word)
	if !ok {
		return "", false
	}
	repl, ok := node.Meta().(string)
	return repl, ok
}

// Keys returns the words of the table, longest first.
func (r *Replacements) Keys() []string {
	if r == nil {
		return nil
	}
	return append([]string(nil), r.keys...)
}

// Apply replaces every whole-word occurrence of a configured word in text.
// Text without any match is returned unchanged.
func (r *Replacements) Apply(text string) string {
	if r.Len() == 0 || text == "" {
		return text
	}
	for _, k := range r.keys {
		repl, ok := r.Lookup(k)
		if !ok {
			tracer().Errorf("no-join table lost entry for %q", k)
			continue
		}
		text = replaceWholeWords(text, k, repl)
	}
	return text
}

// Apply is a convenience function which builds a replacement table from
// global settings and local words and applies it to text.
func Apply(text string, global *Settings, local []string, useGlobal bool) string {
	return BuildReplacements(global, local, useGlobal).Apply(text)
}

// replaceWholeWords replaces occurrences of word which are neither preceded
// nor followed by a word character. After every match, searching resumes
// behind the match, whether it has been replaced or not.
func replaceWholeWords(text, word, repl string) string {
	if !strings.Contains(text, word) {
		return text
	}
	var b strings.Builder
	last, from := 0, 0
	for from < len(text) {
		i := strings.Index(text[from:], word)
		if i < 0 {
			break
		}
		i += from
		end := i + len(word)
		if isBoundaryBefore(text, i) && isBoundaryAfter(text, end) {
			b.WriteString(text[last:i])
			b.WriteString(repl)
			last = end
		}
		from = end
	}
	if last == 0 {
		return text
	}
	b.WriteString(text[last:])
	return b.String()
}

func isBoundaryBefore(text string, pos int) bool {
	if pos <= 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:pos])
	return !IsWordChar(r)
}

func isBoundaryAfter(text string, pos int) bool {
	if pos >= len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[pos:])
	return !IsWordChar(r)
}

// IsWordChar is true for characters which continue a word: letters, digits,
// combining marks, ZWNJ and ZWJ.
func IsWordChar(r rune) bool {
	if IsJoinControl(r) {
		return true
	}
	return unicode.IsLetter(r) || unicode.IsDigit(r) ||
		unicode.In(r, unicode.Mn, unicode.Mc, unicode.Me)
}

// sortLongestFirst sorts by descending rune count, ties ordinal.
func sortLongestFirst(words []string) {
	sort.SliceStable(words, func(i, j int) bool {
		li, lj := utf8.RuneCountInString(words[i]), utf8.RuneCountInString(words[j])
		if li != lj {
			return li > lj
		}
		return words[i] < words[j]
	})
}
