package fields

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"com/lifenture/thai-field-engine/internal/thaidate"
)

// MaxNameLength is the longest accepted field name in runes; longer captures are
// corrupted matches spanning unrelated text
const MaxNameLength = 100

// BuilderField represents a declared field of a template
type BuilderField struct {
	// Name is the field name/identifier used inside {{ }}
	Name string `json:"name"`

	// Label is the human readable caption shown in the fill form
	Label string `json:"label"`

	// Type indicates the expected data type
	Type FieldType `json:"type"`

	// Required indicates if this field must have a value
	Required bool `json:"required"`
}

// FieldType represents the data type of a field
type FieldType string

const (
	FieldTypeString  FieldType = "string"
	FieldTypeNumber  FieldType = "number"
	FieldTypeBoolean FieldType = "boolean"
	FieldTypeDate    FieldType = "date"
	FieldTypeUnknown FieldType = "unknown"
)

// ParseFieldType normalizes a free-text type coming from storage into the closed FieldType set.
// An empty string is the storage default and maps to FieldTypeString.
func ParseFieldType(raw string) FieldType {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "string", "text", "textarea":
		return FieldTypeString
	case "number", "int", "integer", "float", "decimal", "currency":
		return FieldTypeNumber
	case "bool", "boolean", "checkbox":
		return FieldTypeBoolean
	case "date", "datetime", "thai_date":
		return FieldTypeDate
	default:
		return FieldTypeUnknown
	}
}

// UnmarshalText lets JSON and YAML decoding go through ParseFieldType
func (ft *FieldType) UnmarshalText(text []byte) error {
	*ft = ParseFieldType(string(text))
	return nil
}

// IsKnown reports whether the type is one of the four concrete types
func (ft FieldType) IsKnown() bool {
	switch ft {
	case FieldTypeString, FieldTypeNumber, FieldTypeBoolean, FieldTypeDate:
		return true
	}
	return false
}

// NormalizeName trims a captured field name and brings it to NFC so that Thai names
// typed with different combining sequences compare equal
func NormalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// ValidName reports whether a normalized name is acceptable as a field name
func ValidName(name string) bool {
	if name == "" || utf8.RuneCountInString(name) > MaxNameLength {
		return false
	}
	return !strings.ContainsAny(name, "={}")
}

// HumanizeLabel builds the default label of a field: underscores become spaces and
// every word is capitalized
func HumanizeLabel(name string) string {
	spaced := strings.Join(strings.Fields(strings.ReplaceAll(name, "_", " ")), " ")
	// a Caser is stateful, so one is built per call
	return cases.Title(language.Und, cases.NoLower).String(spaced)
}

// NewBuilderField creates a field with default label and type
func NewBuilderField(name string) BuilderField {
	name = NormalizeName(name)
	return BuilderField{
		Name:     name,
		Label:    HumanizeLabel(name),
		Type:     FieldTypeString,
		Required: false,
	}
}

// String returns a string representation of the field
func (bf BuilderField) String() string {
	return fmt.Sprintf("BuilderField{Name: %s, Type: %s, Required: %v}", bf.Name, bf.Type, bf.Required)
}

// normalized fills defaults for fields read from storage
func (bf BuilderField) normalized() BuilderField {
	bf.Name = NormalizeName(bf.Name)
	if bf.Label == "" {
		bf.Label = HumanizeLabel(bf.Name)
	}
	bf.Type = ParseFieldType(string(bf.Type))
	return bf
}

// ValueMap represents the values supplied for a template at fill time
type ValueMap map[string]interface{}

// ValidationResult represents the result of value validation against a registry
type ValidationResult struct {
	// Valid indicates if the values can be rendered as is
	Valid bool `json:"valid"`

	// Errors contains validation error messages
	Errors []string `json:"errors,omitempty"`

	// Warnings contains validation warnings
	Warnings []string `json:"warnings,omitempty"`

	// MissingFields lists required fields that are missing
	MissingFields []string `json:"missing_fields,omitempty"`
}

// IsEmptyValue reports whether a value counts as unfilled
func IsEmptyValue(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	}
	return false
}

// Validate checks the supplied values against the registry. Values are found with
// ValueMap.Lookup, the same way the renderer finds them.
func (r *Registry) Validate(values ValueMap) ValidationResult {
	result := ValidationResult{
		Valid:         true,
		Errors:        []string{},
		Warnings:      []string{},
		MissingFields: []string{},
	}

	for _, field := range r.RequiredFields() {
		if value, exists := values.Lookup(field.Name); !exists || IsEmptyValue(value) {
			result.Valid = false
			result.MissingFields = append(result.MissingFields, field.Name)
			result.Errors = append(result.Errors, fmt.Sprintf("Required field '%s' is missing", field.Name))
		}
	}

	// keys matching no field are tolerated, the renderer ignores them
	for _, field := range r.Fields() {
		value, exists := values.Lookup(field.Name)
		if !exists || IsEmptyValue(value) {
			continue
		}
		if !field.Type.IsKnown() {
			result.Warnings = append(result.Warnings, fmt.Sprintf("Field '%s' has an unknown type; its value is rendered as text", field.Name))
			continue
		}
		if err := validateFieldValue(field, value); err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("Invalid value for field '%s': %s", field.Name, err.Error()))
		}
	}

	return result
}

// validateFieldValue validates a single field value against its type
func validateFieldValue(field BuilderField, value interface{}) error {
	if IsEmptyValue(value) {
		return nil
	}

	switch field.Type {
	case FieldTypeString:
		switch value.(type) {
		case string, float64, int, int64:
			// numbers typed into text fields are accepted
		default:
			return fmt.Errorf("expected string, got %T", value)
		}
	case FieldTypeNumber:
		switch value.(type) {
		case int, int64, float64, float32:
		default:
			return fmt.Errorf("expected number, got %T", value)
		}
	case FieldTypeDate:
		if _, err := thaidate.ToTime(value); err != nil {
			return fmt.Errorf("invalid date: %s", err.Error())
		}
	case FieldTypeBoolean:
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("expected boolean, got %T", value)
		}
	}

	return nil
}

// Lookup finds the value of a field: the exact key first, then a key equal to name
// after trimming and case folding
func (vm ValueMap) Lookup(name string) (interface{}, bool) {
	if value, ok := vm[name]; ok {
		return value, true
	}
	for _, key := range vm.Keys() {
		if strings.EqualFold(NormalizeName(key), name) {
			return vm[key], true
		}
	}
	return nil, false
}

// Keys returns all keys sorted for deterministic iteration
func (vm ValueMap) Keys() []string {
	keys := make([]string, 0, len(vm))
	for key := range vm {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
