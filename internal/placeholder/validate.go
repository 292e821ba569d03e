package placeholder

import (
	"strings"

	"com/lifenture/thai-field-engine/internal/fields"
)

// Known is the set of registered field names a template is checked against
type Known interface {
	Has(name string) bool
}

// NameSet is a Known built from plain names
type NameSet map[string]struct{}

// NewNameSet normalizes and collects names
func NewNameSet(names ...string) NameSet {
	set := make(NameSet, len(names))
	for _, name := range names {
		set[fields.NormalizeName(name)] = struct{}{}
	}
	return set
}

// Has implements Known
func (s NameSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

type spanKind int

const (
	spanReference spanKind = iota
	spanEmpty
	spanUnclosed
	spanStray
	// spanBraced is {{ {a} }} or {{{a}}}: the name holds a brace no field can have
	spanBraced
)

// span is one classified brace expression; columns are 1-based, end exclusive
type span struct {
	kind  spanKind
	line  int
	start int
	end   int
	raw   string
	name  string
}

// scan walks the source once, line by line, and reports every brace expression.
// Expressions never cross lines; an unclosed opener ends the scan of its line.
func scan(source string, visit func(span)) {
	for lineIdx, line := range strings.Split(source, "\n") {
		runes := []rune(strings.TrimSuffix(line, "\r"))
		lineNo := lineIdx + 1

		for i := 0; i < len(runes); {
			if isPair(runes, i, '{') {
				closing := findPair(runes, i+2, '}')
				if closing < 0 {
					visit(span{kind: spanUnclosed, line: lineNo, start: i + 1, end: len(runes) + 1, raw: string(runes[i:])})
					break
				}

				end := closing + 2
				s := span{
					kind:  spanReference,
					line:  lineNo,
					start: i + 1,
					end:   end + 1,
					raw:   string(runes[i:end]),
					name:  fields.NormalizeName(string(runes[i+2 : closing])),
				}
				switch {
				case s.name == "":
					s.kind = spanEmpty
				case strings.ContainsAny(s.name, "{}"):
					s.kind = spanBraced
				}
				visit(s)
				i = end
				continue
			}

			if isPair(runes, i, '}') {
				visit(span{kind: spanStray, line: lineNo, start: i + 1, end: i + 3, raw: "}}"})
				i += 2
				continue
			}

			i++
		}
	}
}

func isPair(runes []rune, i int, brace rune) bool {
	return i+1 < len(runes) && runes[i] == brace && runes[i+1] == brace
}

func findPair(runes []rune, from int, brace rune) int {
	for j := from; j+1 < len(runes); j++ {
		if runes[j] == brace && runes[j+1] == brace {
			return j
		}
	}
	return -1
}

// Validate classifies every {{...}} expression of the source and returns the
// diagnostics in source order. The result is empty, never nil, for a clean template.
func Validate(source string, known Known) []TemplateError {
	errs := []TemplateError{}

	scan(source, func(s span) {
		switch s.kind {
		case spanUnclosed:
			errs = append(errs, newError(MsgUnclosed, s.line, s.start, s.end))
		case spanEmpty:
			errs = append(errs, newError(MsgEmpty, s.line, s.start, s.end))
		case spanStray:
			errs = append(errs, newError(MsgUnexpectedEnd, s.line, s.start, s.end))
		case spanBraced:
			errs = append(errs, newError(MsgBraceInName, s.line, s.start, s.end))
		case spanReference:
			if known == nil || !known.Has(s.name) {
				errs = append(errs, newError(UnknownFieldMessage(s.name), s.line, s.start, s.end))
			}
		}
	})

	return errs
}

// Placeholder is a well-formed {{name}} reference and its position
type Placeholder struct {
	Name        string `json:"name"`
	Raw         string `json:"raw"`
	Line        int    `json:"line"`
	StartColumn int    `json:"startColumn"`
	EndColumn   int    `json:"endColumn"`
}

// Scan returns the non-empty {{name}} references of the source in order,
// using the same positions as Validate
func Scan(source string) []Placeholder {
	refs := []Placeholder{}
	scan(source, func(s span) {
		if s.kind != spanReference {
			return
		}
		refs = append(refs, Placeholder{
			Name:        s.name,
			Raw:         s.raw,
			Line:        s.line,
			StartColumn: s.start,
			EndColumn:   s.end,
		})
	})
	return refs
}

// Names returns the distinct referenced names in first-seen order
func Names(source string) []string {
	names := []string{}
	seen := make(map[string]bool)
	for _, ref := range Scan(source) {
		if !seen[ref.Name] {
			seen[ref.Name] = true
			names = append(names, ref.Name)
		}
	}
	return names
}
