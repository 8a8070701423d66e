// Package match compiles the inventory's glob-style include/exclude
// patterns into filename predicates. Only '*' and '?' are wildcards; every
// other character matches literally and case-insensitively.
package match

import (
	"regexp"
	"strings"
)

// Matcher holds a compiled pattern set. The zero value matches nothing;
// use Compile.
type Matcher struct {
	patterns []*regexp.Regexp
	matchAll bool
}

// Compile builds a Matcher from glob patterns. Whitespace-only entries are
// ignored. An empty (or all-blank) set matches every filename.
func Compile(patterns []string) *Matcher {
	m := &Matcher{}
	for _, pat := range patterns {
		pat = strings.TrimSpace(pat)
		if pat == "" {
			continue
		}
		quoted := regexp.QuoteMeta(pat)
		quoted = strings.ReplaceAll(quoted, `\*`, `.*`)
		quoted = strings.ReplaceAll(quoted, `\?`, `.`)
		// Anchored so "*.log" cannot match a mere substring.
		re := regexp.MustCompile(`(?i)^` + quoted + `$`)
		m.patterns = append(m.patterns, re)
	}
	if len(m.patterns) == 0 {
		m.matchAll = true
	}
	return m
}

// Match reports whether name matches any pattern in the set.
func (m *Matcher) Match(name string) bool {
	if m.matchAll {
		return true
	}
	for _, re := range m.patterns {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}

// Empty reports whether the set compiled to no usable patterns.
func (m *Matcher) Empty() bool {
	return m.matchAll
}
