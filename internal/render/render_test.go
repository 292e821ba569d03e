package render

import (
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"

	"com/lifenture/thai-field-engine/internal/fields"
	"com/lifenture/thai-field-engine/internal/thaidate"
)

func testRegistry() *fields.Registry {
	return fields.NewRegistry(
		fields.BuilderField{Name: "fullname", Type: fields.FieldTypeString},
		fields.BuilderField{Name: "age", Type: fields.FieldTypeNumber},
		fields.BuilderField{Name: "agree", Type: fields.FieldTypeBoolean},
		fields.BuilderField{Name: "วันที่", Type: fields.FieldTypeDate},
		fields.BuilderField{Name: "note", Type: fields.FieldTypeUnknown},
	)
}

func TestRenderEscapesValues(t *testing.T) {
	r := New(fields.NewRegistry(fields.BuilderField{Name: "fullname"}))

	got := r.Render("{{fullname}}", fields.ValueMap{"fullname": "<script>"}).HTML
	if !strings.Contains(got, "&lt;script&gt;") {
		t.Errorf("expected escaped value, got %q", got)
	}
	if strings.Contains(got, "<script>") {
		t.Errorf("raw markup leaked into %q", got)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(got))
	if err != nil {
		t.Fatalf("failed to parse rendered HTML: %v", err)
	}
	if n := doc.Find("script").Length(); n != 0 {
		t.Errorf("expected no script element, found %d", n)
	}
	if text := doc.Find("body").Text(); text != "<script>" {
		t.Errorf("visible text = %q, want %q", text, "<script>")
	}
}

func TestRenderSubstitution(t *testing.T) {
	values := fields.ValueMap{
		"fullname": "สมชาย ใจดี",
		"age":      float64(42),
		"agree":    false,
		"วันที่":   "2025-01-06",
		"note":     `"quoted" & 'single'`,
	}

	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"string", "เรียน {{ fullname }}", "เรียน สมชาย ใจดี"},
		{"number", "อายุ {{age}} ปี", "อายุ 42 ปี"},
		{"false is a value", "{{agree}}", "false"},
		{"thai date", "วันที่ {{วันที่}}", "วันที่ 6 มกราคม 2568"},
		{"unknown field renders empty", "[{{ghost}}]", "[]"},
		{"escaped quotes", "{{note}}", "&#34;quoted&#34; &amp; &#39;single&#39;"},
		{"template text is escaped too", "a < b {{age}}", "a &lt; b 42"},
		{"template newlines become breaks", "บรรทัด 1\nบรรทัด 2", "บรรทัด 1<br>บรรทัด 2"},
		{"single braces stay literal", "{fullname}", "{fullname}"},
	}

	r := New(testRegistry())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Render(tt.source, values).HTML; got != tt.want {
				t.Errorf("Render(%q) = %q, want %q", tt.source, got, tt.want)
			}
		})
	}
}

func TestRenderValueNewlines(t *testing.T) {
	r := New(testRegistry())
	values := fields.ValueMap{"fullname": "a\r\n<b>"}

	if got := r.Render("{{fullname}}", values).HTML; got != "a<br>&lt;b&gt;" {
		t.Errorf("Render() = %q", got)
	}
	if got := r.RenderText("{{fullname}}", values); got != "a\r\n<b>" {
		t.Errorf("RenderText() = %q", got)
	}
}

func TestRenderUnfilledPolicies(t *testing.T) {
	sample := time.Date(2025, time.January, 6, 0, 0, 0, 0, time.UTC)
	source := "{{fullname}}|{{วันที่}}|{{age}}"
	values := fields.ValueMap{"fullname": "", "age": 0}

	tests := []struct {
		name string
		opts []Option
		want string
	}{
		{"empty", []Option{WithUnfilled(UnfilledEmpty)}, "||0"},
		{"placeholder", []Option{WithUnfilled(UnfilledPlaceholder)}, "{fullname}|{วันที่}|0"},
		{
			"placeholder with sample date",
			[]Option{WithUnfilled(UnfilledPlaceholder), WithSampleDate(sample)},
			"{fullname}|6 มกราคม 2568|0",
		},
		{
			"full date with Thai numerals",
			[]Option{WithSampleDate(sample), WithDateOptions(thaidate.Options{Mode: thaidate.Full, ThaiNumerals: true})},
			"|วันจันทร์ที่ ๖ มกราคม ๒๕๖๘|0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := New(testRegistry(), tt.opts...).RenderText(source, values); got != tt.want {
				t.Errorf("RenderText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderInvalidDateDoesNotBlankDocument(t *testing.T) {
	r := New(testRegistry())
	got := r.RenderText("{{fullname}} {{วันที่}}", fields.ValueMap{"fullname": "ก", "วันที่": "not a date"})
	if got != "ก " {
		t.Errorf("RenderText() = %q, want %q", got, "ก ")
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	source := "{{fullname}} {{age}} {{Fullname}}\n{{วันที่}} {{ghost}}"
	values := fields.ValueMap{"FULLNAME": "x", "age": 7.5, "วันที่": time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)}

	first := New(testRegistry(), WithUnfilled(UnfilledPlaceholder)).Render(source, values)
	second := New(testRegistry(), WithUnfilled(UnfilledPlaceholder)).Render(source, values)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("renders differ (-first +second):\n%s", diff)
	}
	want := "x 7.5 <br>29 กุมภาพันธ์ 2567 "
	if first.HTML != want {
		t.Errorf("Render() = %q, want %q", first.HTML, want)
	}
}

func TestUnfilled(t *testing.T) {
	r := New(testRegistry())
	got := r.Unfilled("{{fullname}} {{age}} {{ghost}} {{agree}} {{ fullname }}", fields.ValueMap{"age": 1})
	if diff := cmp.Diff([]string{"fullname", "agree"}, got); diff != "" {
		t.Errorf("Unfilled() mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderAndValidateFindTheSameValues(t *testing.T) {
	registry := fields.NewRegistry(fields.BuilderField{Name: "FullName", Required: true})
	r := New(registry, WithUnfilled(UnfilledPlaceholder))

	tests := []struct {
		name      string
		values    fields.ValueMap
		wantText  string
		wantValid bool
	}{
		{"exact key", fields.ValueMap{"FullName": "สมชาย"}, "สมชาย", true},
		{"key differs in case", fields.ValueMap{"fullname": "lower"}, "lower", true},
		{"padded key", fields.ValueMap{" FULLNAME ": "upper"}, "upper", true},
		{"blank value", fields.ValueMap{"fullname": ""}, "{FullName}", false},
		{"no value", fields.ValueMap{"name": "x"}, "{FullName}", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.RenderText("{{FullName}}", tt.values); got != tt.wantText {
				t.Errorf("RenderText() = %q, want %q", got, tt.wantText)
			}
			if got := registry.Validate(tt.values).Valid; got != tt.wantValid {
				t.Errorf("Validate().Valid = %v, want %v", got, tt.wantValid)
			}
			if unfilled := r.Unfilled("{{FullName}}", tt.values); (len(unfilled) == 0) != tt.wantValid {
				t.Errorf("Unfilled() = %v disagrees with Validate", unfilled)
			}
		})
	}
}

func TestParseUnfilledPolicy(t *testing.T) {
	tests := []struct {
		raw     string
		want    UnfilledPolicy
		wantErr bool
	}{
		{"", UnfilledEmpty, false},
		{"Placeholder", UnfilledPlaceholder, false},
		{"literal", UnfilledPlaceholder, false},
		{"hide", "", true},
	}
	for _, tt := range tests {
		got, err := ParseUnfilledPolicy(tt.raw)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseUnfilledPolicy(%q) = %q, %v", tt.raw, got, err)
		}
	}
}
