package nojoin

import (
	"os"
	"sort"
	"strings"

	"github.com/npillmayer/devatext/core"
	"gopkg.in/yaml.v3"
)

// SelectiveRule disjoins selected patterns within a word. DisjoinPatterns
// is free-form text, patterns separated by commas, semicolons, tabs or
// line breaks.
type SelectiveRule struct {
	Word            string `yaml:"word"`
	DisjoinPatterns string `yaml:"disjoin_patterns"`
}

// Settings is a set of no-join words and selective rules, usually shared
// by all text blocks of an application. The shaping pipeline treats
// settings as a read-only snapshot.
type Settings struct {
	Words []string        `yaml:"nojoin_words"`
	Rules []SelectiveRule `yaml:"selective_rules"`
}

// IsEmpty is true if s has neither words nor rules.
func (s *Settings) IsEmpty() bool {
	return s == nil || (len(s.Words) == 0 && len(s.Rules) == 0)
}

// Clone returns a deep copy of s.
func (s *Settings) Clone() *Settings {
	if s == nil {
		return nil
	}
	c := &Settings{
		Words: append([]string(nil), s.Words...),
		Rules: append([]SelectiveRule(nil), s.Rules...),
	}
	return c
}

// Normalize cleans up user-maintained settings: words are sanitized,
// de-duplicated and sorted; rules for the same word are merged and their
// patterns united and sorted. Empty entries are dropped.
func (s *Settings) Normalize() {
	if s == nil {
		return
	}
	seen := make(map[string]bool, len(s.Words))
	words := make([]string, 0, len(s.Words))
	for _, w := range s.Words {
		if w = SanitizeWord(w); w != "" && !seen[w] {
			seen[w] = true
			words = append(words, w)
		}
	}
	sort.Strings(words)
	s.Words = words
	//
	patterns := make(map[string]map[string]bool)
	for _, r := range s.Rules {
		w := SanitizeWord(r.Word)
		if w == "" {
			continue
		}
		if patterns[w] == nil {
			patterns[w] = make(map[string]bool)
		}
		for _, p := range ParseSeparatedTokens(r.DisjoinPatterns) {
			patterns[w][p] = true
		}
	}
	rules := make([]SelectiveRule, 0, len(patterns))
	for w, pset := range patterns {
		pp := make([]string, 0, len(pset))
		for p := range pset {
			pp = append(pp, p)
		}
		sort.Strings(pp)
		rules = append(rules, SelectiveRule{Word: w, DisjoinPatterns: strings.Join(pp, ", ")})
	}
	sort.Slice(rules, func(i, j int) bool { return rules[i].Word < rules[j].Word })
	s.Rules = rules
}

// SanitizeWord trims a word. Whitespace-only words become empty.
func SanitizeWord(w string) string {
	return strings.TrimSpace(w)
}

// ParseSeparatedTokens splits free-form text at line breaks, commas,
// semicolons and tabs. Tokens are sanitized and empty tokens dropped.
func ParseSeparatedTokens(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		switch r {
		case '\r', '\n', ',', ';', '\t':
			return true
		}
		return false
	})
	tokens := fields[:0]
	for _, f := range fields {
		if f = SanitizeWord(f); f != "" {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// LoadSettings reads settings from a YAML file:
//
//    nojoin_words:
//      - क्या
//    selective_rules:
//      - word: उत्पन्न
//        disjoin_patterns: त्प
//
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, core.WrapError(err, core.EMISSING, "cannot read no-join settings %s", path)
	}
	return ParseSettings(data)
}

// ParseSettings decodes YAML settings. Empty input yields empty settings.
func ParseSettings(data []byte) (*Settings, error) {
	s := &Settings{}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, core.WrapError(err, core.EINVALID, "malformed no-join settings")
	}
	tracer().Debugf("loaded %d no-join words and %d selective rules", len(s.Words), len(s.Rules))
	return s, nil
}
