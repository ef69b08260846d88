package subst

import (
	"regexp"

	"github.com/pkg/errors"
)

// placeholderPattern is the one grammar this package understands. The
// general form is ${command:path#field:-default} where the field selector
// and the default are optional, and a doubled dollar sign ($${...}) marks
// the placeholder as escaped.
//
// Path and field may not contain braces. That restriction is what makes
// nested placeholders work: in ${env:VAR_${env:VAR_1}} the outer form
// cannot match while the inner one is still present, so repeated scan
// passes resolve the innermost placeholder first.
const placeholderPattern = `\$(?P<escape>\$)?\{(?:\s*` +
	`(?P<command>[^:{}\s]+)\s*:\s*` +
	`(?P<path>[^{}]+?)\s*` +
	`(?:[#?](?P<field>[^{}]*?))??` +
	`(?::-(?P<default>.+))?` +
	`\s*?)?\}`

// Placeholder is a single match of the placeholder grammar in a piece of
// text. Field and Default are empty when the placeholder carries no
// selector or fallback; the grammar cannot produce either as present but
// empty.
type Placeholder struct {
	// Full is the complete matched text, escape marker included.
	Full string

	// Escaped is true for $${...} forms, which are never dispatched and
	// collapse to literal ${...} text after resolution.
	Escaped bool

	Command string
	Path    string
	Field   string
	Default string
}

// matcher holds the compiled grammar and the capture group indices,
// resolved once at construction.
type matcher struct {
	re *regexp.Regexp

	escape  int
	command int
	path    int
	field   int
	deflt   int
}

// newMatcher compiles the fixed placeholder grammar. Failure here is a
// construction-time condition only; it is never caused by input text.
func newMatcher() (*matcher, error) {
	re, err := regexp.Compile(placeholderPattern)
	if err != nil {
		return nil, errors.Wrap(err, "grammar compilation")
	}
	return &matcher{
		re:      re,
		escape:  re.SubexpIndex("escape"),
		command: re.SubexpIndex("command"),
		path:    re.SubexpIndex("path"),
		field:   re.SubexpIndex("field"),
		deflt:   re.SubexpIndex("default"),
	}, nil
}

// findAll returns every placeholder in s, non-overlapping, leftmost first,
// in document order.
func (m *matcher) findAll(s string) []Placeholder {
	groups := m.re.FindAllStringSubmatch(s, -1)
	if groups == nil {
		return nil
	}
	phs := make([]Placeholder, 0, len(groups))
	for _, g := range groups {
		phs = append(phs, Placeholder{
			Full:    g[0],
			Escaped: g[m.escape] != "",
			Command: g[m.command],
			Path:    g[m.path],
			Field:   g[m.field],
			Default: g[m.deflt],
		})
	}
	return phs
}
