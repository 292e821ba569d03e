package placeholder

import (
	"regexp"
	"strings"

	"com/lifenture/thai-field-engine/internal/fields"
)

var legacyPattern = regexp.MustCompile(`\{\{[^{}]*\}\}|\{([^{}]*)\}`)

// NormalizeLegacy rewrites single-brace {name} placeholders to {{name}}.
// Existing double-brace expressions and anything that is not a valid field name are kept,
// so applying it twice gives the same result.
func NormalizeLegacy(source string) string {
	matches := legacyPattern.FindAllStringSubmatchIndex(source, -1)
	if len(matches) == 0 {
		return source
	}

	var b strings.Builder
	b.Grow(len(source) + 2*len(matches))
	last := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		if m[2] < 0 || touchesBrace(source, start, end) {
			continue
		}
		name := fields.NormalizeName(source[m[2]:m[3]])
		if !fields.ValidName(name) {
			continue
		}
		b.WriteString(source[last:start])
		b.WriteString("{{")
		b.WriteString(name)
		b.WriteString("}}")
		last = end
	}
	b.WriteString(source[last:])

	return b.String()
}

// touchesBrace reports a single-brace match glued to another brace, e.g. the tail of "{{a}"
func touchesBrace(source string, start, end int) bool {
	return (start > 0 && source[start-1] == '{') || (end < len(source) && source[end] == '}')
}

// IsLegacy reports whether the source still contains convertible single-brace placeholders
func IsLegacy(source string) bool {
	return NormalizeLegacy(source) != source
}
