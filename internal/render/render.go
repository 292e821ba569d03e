package render

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"com/lifenture/thai-field-engine/internal/fields"
	"com/lifenture/thai-field-engine/internal/thaidate"
)

// UnfilledPolicy decides what a registered field without a value renders as
type UnfilledPolicy string

const (
	// UnfilledEmpty renders nothing
	UnfilledEmpty UnfilledPolicy = "empty"
	// UnfilledPlaceholder echoes the literal {name} so users see what is left to fill
	UnfilledPlaceholder UnfilledPolicy = "placeholder"
)

// ParseUnfilledPolicy reads a configured policy name
func ParseUnfilledPolicy(raw string) (UnfilledPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "empty", "blank", "":
		return UnfilledEmpty, nil
	case "placeholder", "literal", "echo":
		return UnfilledPlaceholder, nil
	}
	return "", fmt.Errorf("unknown unfilled policy %q", raw)
}

// expressionPattern recognizes {{ name }}; the name is trimmed before lookup
var expressionPattern = regexp.MustCompile(`\{\{([^{}]*)\}\}`)

// Renderer substitutes values into template source for one template's registry.
// It holds no mutable state, so one Renderer can serve concurrent renders.
type Renderer struct {
	registry   *fields.Registry
	unfilled   UnfilledPolicy
	dateOpts   thaidate.Options
	sampleDate time.Time
}

// Option configures a Renderer
type Option func(*Renderer)

// WithUnfilled sets the unfilled-field policy
func WithUnfilled(policy UnfilledPolicy) Option {
	return func(r *Renderer) { r.unfilled = policy }
}

// WithDateOptions sets how date fields are formatted
func WithDateOptions(opts thaidate.Options) Option {
	return func(r *Renderer) { r.dateOpts = opts }
}

// WithSampleDate shows the given date for date fields that have no value yet
func WithSampleDate(t time.Time) Option {
	return func(r *Renderer) { r.sampleDate = t }
}

// New creates a Renderer; unfilled fields render empty and dates use the short form by default
func New(registry *fields.Registry, opts ...Option) *Renderer {
	r := &Renderer{
		registry: registry,
		unfilled: UnfilledEmpty,
		dateOpts: thaidate.Options{Mode: thaidate.Short},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Result is the output of an HTML render
type Result struct {
	HTML string `json:"html"`
}

// Render produces escaped HTML with line breaks as <br>
func (r *Renderer) Render(source string, values fields.ValueMap) Result {
	var b strings.Builder
	r.substitute(&b, source, values, escapeHTML)
	return Result{HTML: sanitize(textToHTML(b.String()))}
}

// RenderText produces plain text for non-HTML consumers
func (r *Renderer) RenderText(source string, values fields.ValueMap) string {
	var b strings.Builder
	r.substitute(&b, source, values, func(s string) string { return s })
	return b.String()
}

// Knows reports whether the name is a registered field
func (r *Renderer) Knows(name string) bool {
	return r.registry.Has(name)
}

// Unfilled lists the registered fields referenced by the source that have no value,
// in first-seen order
func (r *Renderer) Unfilled(source string, values fields.ValueMap) []string {
	names := []string{}
	seen := make(map[string]bool)
	for _, m := range expressionPattern.FindAllStringSubmatch(source, -1) {
		field, ok := r.registry.Lookup(m[1])
		if !ok || seen[field.Name] {
			continue
		}
		seen[field.Name] = true
		if value, found := values.Lookup(field.Name); !found || fields.IsEmptyValue(value) {
			names = append(names, field.Name)
		}
	}
	return names
}

func (r *Renderer) substitute(b *strings.Builder, source string, values fields.ValueMap, escape func(string) string) {
	last := 0
	for _, m := range expressionPattern.FindAllStringSubmatchIndex(source, -1) {
		b.WriteString(escape(source[last:m[0]]))
		b.WriteString(escape(r.resolve(source[m[2]:m[3]], values)))
		last = m[1]
	}
	b.WriteString(escape(source[last:]))
}

// resolve returns the display text of one expression
func (r *Renderer) resolve(rawName string, values fields.ValueMap) string {
	field, ok := r.registry.Lookup(rawName)
	if !ok {
		return ""
	}

	value, found := values.Lookup(field.Name)
	if found && !fields.IsEmptyValue(value) {
		return formatValue(field.Type, value, r.dateOpts)
	}

	if field.Type == fields.FieldTypeDate && !r.sampleDate.IsZero() {
		return thaidate.Format(r.sampleDate, r.dateOpts)
	}
	if r.unfilled == UnfilledPlaceholder {
		return "{" + field.Name + "}"
	}
	return ""
}
