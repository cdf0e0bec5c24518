// Package naming provides the output naming rules and the per-batch
// registry that guarantees collision-free output filenames across
// concurrent workers.
package naming

import (
	"regexp"
	"strings"
)

// Rule transforms a source base name into the desired output base name.
type Rule string

const (
	// RuleOriginal keeps the source base name unchanged.
	RuleOriginal Rule = "original"
	// RuleStripBrackets removes every [...] span including its contents,
	// then collapses and trims whitespace.
	RuleStripBrackets Rule = "strip-brackets"
)

// fallbackName is used when a rule strips a base name down to nothing.
// An empty filename would not be openable, so this is policy, not an error.
const fallbackName = "untitled"

var (
	reBracketSpan = regexp.MustCompile(`\[[^\]]*\]`)
	reWhitespace  = regexp.MustCompile(`\s+`)
)

// Apply transforms base according to the rule. Unknown rules behave like
// RuleOriginal.
func (r Rule) Apply(base string) string {
	if r != RuleStripBrackets {
		return base
	}

	name := reBracketSpan.ReplaceAllString(base, "")
	name = reWhitespace.ReplaceAllString(name, " ")
	name = strings.TrimSpace(name)
	if name == "" {
		return fallbackName
	}
	return name
}
