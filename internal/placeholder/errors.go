// Package placeholder scans template source for {{name}} expressions and reports
// positioned diagnostics for editors.
package placeholder

import "fmt"

const (
	MsgUnclosed       = "Unclosed template expression"
	MsgEmpty          = "Empty template expression"
	MsgUnexpectedEnd  = "Unexpected closing braces"
	MsgBraceInName    = "Field names cannot contain braces"
	msgUnknownPattern = "Unknown field %q"
)

// TemplateError is a positioned diagnostic. Lines and columns are 1-based,
// columns count characters and EndColumn points just past the offending span.
type TemplateError struct {
	Message     string `json:"message"`
	StartLine   int    `json:"startLine"`
	EndLine     int    `json:"endLine"`
	StartColumn int    `json:"startColumn"`
	EndColumn   int    `json:"endColumn"`
}

func (e TemplateError) Error() string {
	return fmt.Sprintf("template error at line %d, column %d: %s", e.StartLine, e.StartColumn, e.Message)
}

func newError(message string, line, startColumn, endColumn int) TemplateError {
	return TemplateError{
		Message:     message,
		StartLine:   line,
		EndLine:     line,
		StartColumn: startColumn,
		EndColumn:   endColumn,
	}
}

// UnknownFieldMessage formats the diagnostic for a name missing from the registry
func UnknownFieldMessage(name string) string {
	return fmt.Sprintf(msgUnknownPattern, name)
}

// HasErrors reports whether a validation pass produced any diagnostic
func HasErrors(errs []TemplateError) bool {
	return len(errs) > 0
}
