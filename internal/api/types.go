package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"com/lifenture/thai-field-engine/internal/extract"
	"com/lifenture/thai-field-engine/internal/fields"
	"com/lifenture/thai-field-engine/internal/placeholder"
)

// PartPayload is one named markup part sent instead of a DOCX archive
type PartPayload struct {
	Name   string `json:"name"`
	Markup string `json:"markup"`
}

// ExtractRequest carries a base64 DOCX, raw markup parts or flat template text
type ExtractRequest struct {
	Docx   string        `json:"docx,omitempty"`
	Parts  []PartPayload `json:"parts,omitempty"`
	Source string        `json:"source,omitempty"`

	// Context asks for this many characters of surrounding text per placeholder of Source
	Context int `json:"context,omitempty"`
}

// ExtractResponse lists the discovered fields with default metadata
type ExtractResponse struct {
	Fields       []fields.BuilderField        `json:"fields"`
	Count        int                          `json:"count"`
	Placeholders []extract.PlaceholderContext `json:"placeholders,omitempty"`
}

// ValidateRequest checks template source against explicit names or a stored registry
type ValidateRequest struct {
	Source     string   `json:"source"`
	Fields     []string `json:"fields,omitempty"`
	TemplateID string   `json:"template_id,omitempty"`

	// Legacy converts single-brace placeholders before validating
	Legacy bool `json:"legacy,omitempty"`
}

// ValidateResponse carries the positioned diagnostics
type ValidateResponse struct {
	Valid  bool                        `json:"valid"`
	Errors []placeholder.TemplateError `json:"errors"`
	Drift  placeholder.Drift           `json:"drift"`
}

// RenderRequest substitutes values into template source
type RenderRequest struct {
	Source     string                `json:"source"`
	Fields     []fields.BuilderField `json:"fields,omitempty"`
	TemplateID string                `json:"template_id,omitempty"`
	Values     json.RawMessage       `json:"values,omitempty"`

	// Surface is "preview" (default) or "document"
	Surface string `json:"surface,omitempty"`

	// Format is "html" (default) or "text"
	Format string `json:"format,omitempty"`
	Legacy bool   `json:"legacy,omitempty"`
}

// RenderResponse holds either HTML or plain text
type RenderResponse struct {
	HTML     string   `json:"html,omitempty"`
	Text     string   `json:"text,omitempty"`
	Unfilled []string `json:"unfilled"`
	Warnings []string `json:"warnings,omitempty"`
}

// MergeRequest represents the request payload for merge operations
type MergeRequest struct {
	Docx       string                `json:"docx"`
	Fields     []fields.BuilderField `json:"fields,omitempty"`
	TemplateID string                `json:"template_id,omitempty"`
	Data       json.RawMessage       `json:"data,omitempty"`
}

// MergeResponse is the line list for the document generator plus value validation
type MergeResponse struct {
	Lines      []string                `json:"lines"`
	Skipped    []string                `json:"skipped"`
	Validation fields.ValidationResult `json:"validation"`
	MergeData  fields.ValueMap         `json:"merge_data"`
}

// FieldsRequest replaces a template's registry, or re-extracts it from a DOCX
type FieldsRequest struct {
	Fields []fields.BuilderField `json:"fields,omitempty"`
	Docx   string                `json:"docx,omitempty"`
}

// FieldsResponse is a template's registry
type FieldsResponse struct {
	TemplateID string                `json:"template_id"`
	Fields     []fields.BuilderField `json:"fields"`
}

// Error is a request failure with the HTTP status it maps to
type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func badRequest(message string, err error) error {
	return &Error{Status: http.StatusBadRequest, Message: message, Err: err}
}

func notFound(message string, err error) error {
	return &Error{Status: http.StatusNotFound, Message: message, Err: err}
}

func internalError(message string, err error) error {
	return &Error{Status: http.StatusInternalServerError, Message: message, Err: err}
}

// statusOf maps any error to an HTTP status and a client-safe message
func statusOf(err error) (int, string) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status, apiErr.Message
	}
	return http.StatusInternalServerError, "Internal error"
}
