package extract

import (
	"fmt"
	"strings"

	"com/lifenture/thai-field-engine/internal/fields"
)

// PlaceholderContext is a double-brace placeholder with the text around it
type PlaceholderContext struct {
	Placeholder   string `json:"placeholder"`
	Name          string `json:"name"`
	ContextBefore string `json:"context_before"`
	ContextAfter  string `json:"context_after"`
	FullContext   string `json:"full_context"`
}

// ExtractWithContext returns each distinct {{name}} of flat text together with up to
// contextChars characters before and after it. Markup tags are stripped first.
func ExtractWithContext(text string, contextChars int) []PlaceholderContext {
	if contextChars < 0 {
		contextChars = 0
	}
	runes := []rune(collapseWhitespace(tagPattern.ReplaceAllString(text, " ")))
	results := []PlaceholderContext{}
	seen := make(map[string]bool)

	for pos := 0; pos+1 < len(runes); {
		start := indexPair(runes, pos, '{')
		if start < 0 {
			break
		}
		closing := indexPair(runes, start+2, '}')
		if closing < 0 {
			break
		}
		end := closing + 2
		pos = end

		inner := string(runes[start+2 : closing])
		if strings.ContainsAny(inner, "{}") {
			// opener was a stray; retry from the inner brace
			pos = start + 1
			continue
		}
		name := fields.NormalizeName(inner)
		if !fields.ValidName(name) || seen[name] {
			continue
		}
		seen[name] = true

		before := strings.TrimSpace(string(runes[max(0, start-contextChars):start]))
		after := strings.TrimSpace(string(runes[end:min(len(runes), end+contextChars)]))
		placeholder := string(runes[start:end])

		results = append(results, PlaceholderContext{
			Placeholder:   placeholder,
			Name:          name,
			ContextBefore: before,
			ContextAfter:  after,
			FullContext:   strings.TrimSpace(fmt.Sprintf("%s [%s] %s", before, placeholder, after)),
		})
	}

	return results
}

// indexPair finds the next doubled brace at or after from
func indexPair(runes []rune, from int, brace rune) int {
	for i := from; i+1 < len(runes); i++ {
		if runes[i] == brace && runes[i+1] == brace {
			return i
		}
	}
	return -1
}
