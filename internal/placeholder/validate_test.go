package placeholder

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"com/lifenture/thai-field-engine/internal/fields"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		source string
		known  []string
		want   []TemplateError
	}{
		{
			name:   "known fields on two Thai lines",
			source: "เรียน {{fullname}}\nตำแหน่ง {{position}}",
			known:  []string{"fullname", "position"},
			want:   []TemplateError{},
		},
		{
			name:   "unknown field",
			source: "{{ghost}}",
			known:  []string{"fullname"},
			want:   []TemplateError{newError(`Unknown field "ghost"`, 1, 1, 10)},
		},
		{
			name:   "unclosed expression spans the line",
			source: "{{fullname",
			known:  []string{"fullname"},
			want:   []TemplateError{newError(MsgUnclosed, 1, 1, 11)},
		},
		{
			name:   "empty expression",
			source: "{{   }}",
			want:   []TemplateError{newError(MsgEmpty, 1, 1, 8)},
		},
		{
			name:   "adjacent expressions all known",
			source: "{{a}}{{b}}",
			known:  []string{"a", "b"},
			want:   []TemplateError{},
		},
		{
			name:   "adjacent expressions second unknown",
			source: "{{a}}{{b}}",
			known:  []string{"a"},
			want:   []TemplateError{newError(`Unknown field "b"`, 1, 6, 11)},
		},
		{
			name:   "triple braces",
			source: "{{{a}}}",
			known:  []string{"a"},
			want:   []TemplateError{newError(MsgBraceInName, 1, 1, 7)},
		},
		{
			name:   "brace inside the name",
			source: "เรียน {{ {ชื่อ} }}",
			known:  []string{"ชื่อ"},
			want:   []TemplateError{newError(MsgBraceInName, 1, 7, 19)},
		},
		{
			name:   "stray closing braces",
			source: "a }} b",
			want:   []TemplateError{newError(MsgUnexpectedEnd, 1, 3, 5)},
		},
		{
			name:   "columns count Thai characters",
			source: "ตำแหน่ง {{x}}",
			want:   []TemplateError{newError(`Unknown field "x"`, 1, 9, 14)},
		},
		{
			name:   "one unclosed error per line",
			source: "{{a}} {{b {{c",
			known:  []string{"a"},
			want:   []TemplateError{newError(MsgUnclosed, 1, 7, 14)},
		},
		{
			name:   "expressions do not span lines",
			source: "{{x\n}}",
			known:  []string{"x"},
			want: []TemplateError{
				newError(MsgUnclosed, 1, 1, 4),
				newError(MsgUnexpectedEnd, 2, 1, 3),
			},
		},
		{
			name:   "internal whitespace must match exactly",
			source: "{{ full name }} {{fullname}}",
			known:  []string{"full name"},
			want:   []TemplateError{newError(`Unknown field "fullname"`, 1, 17, 29)},
		},
		{
			name:   "carriage return is not a column",
			source: "{{a}}\r\n{{b",
			known:  []string{"a"},
			want:   []TemplateError{newError(MsgUnclosed, 2, 1, 4)},
		},
		{
			name:   "single braces are plain text",
			source: "{a} } {",
			want:   []TemplateError{},
		},
		{
			name:   "empty source",
			source: "",
			want:   []TemplateError{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Validate(tt.source, NewNameSet(tt.known...))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Validate() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestValidateAgainstRegistry(t *testing.T) {
	registry := fields.RegistryFromNames([]string{"ชื่อ", "วันที่"})

	errs := Validate("{{ชื่อ}} {{วันที่}} {{อายุ}}", registry)
	if len(errs) != 1 {
		t.Fatalf("expected one error, got %v", errs)
	}
	if !strings.Contains(errs[0].Message, "อายุ") {
		t.Errorf("expected message naming the field, got %q", errs[0].Message)
	}
	if !HasErrors(errs) {
		t.Error("HasErrors should be true")
	}

	var nilRegistry *fields.Registry
	if got := Validate("{{a}}", nilRegistry); len(got) != 1 {
		t.Errorf("expected every field unknown against a nil registry, got %v", got)
	}
}

func TestTemplateErrorJSON(t *testing.T) {
	data, err := json.Marshal(newError(MsgEmpty, 2, 3, 8))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	want := `{"message":"Empty template expression","startLine":2,"endLine":2,"startColumn":3,"endColumn":8}`
	if string(data) != want {
		t.Errorf("got %s, want %s", data, want)
	}
	if got := newError(MsgEmpty, 2, 3, 8).Error(); got != "template error at line 2, column 3: Empty template expression" {
		t.Errorf("unexpected Error() %q", got)
	}
}

func TestScan(t *testing.T) {
	got := Scan("{{a}} {{ }} }}\nเรียน {{ ชื่อ }} {{b")
	want := []Placeholder{
		{Name: "a", Raw: "{{a}}", Line: 1, StartColumn: 1, EndColumn: 6},
		{Name: "ชื่อ", Raw: "{{ ชื่อ }}", Line: 2, StartColumn: 7, EndColumn: 17},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Scan() mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff([]string{"a", "b"}, Names("{{a}} {{b}} {{ a }}")); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"b"}, Names("{{{a}}} {{b}}")); diff != "" {
		t.Errorf("Names() must skip braced names (-want +got):\n%s", diff)
	}
}
