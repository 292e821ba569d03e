package render

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"com/lifenture/thai-field-engine/internal/fields"
	"com/lifenture/thai-field-engine/internal/thaidate"
)

// formatValue stringifies a non-empty value for its declared type.
// Date fields go through the Thai formatter; an unreadable date renders empty.
func formatValue(fieldType fields.FieldType, value interface{}, dateOpts thaidate.Options) string {
	if fieldType == fields.FieldTypeDate {
		return thaidate.FormatValue(value, dateOpts)
	}

	switch v := value.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case json.Number:
		return v.String()
	case time.Time:
		return thaidate.Format(v, dateOpts)
	case fmt.Stringer:
		return v.String()
	}
	return fmt.Sprint(value)
}

// htmlEscaper uses the entity forms the sanitizer serializes text with,
// so the sanitizing pass leaves escaped output byte-identical
var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&#34;",
	"'", "&#39;",
)

func escapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// textToHTML turns line breaks of already escaped text into <br>
func textToHTML(escaped string) string {
	escaped = strings.ReplaceAll(escaped, "\r\n", "\n")
	escaped = strings.ReplaceAll(escaped, "\r", "\n")
	return strings.ReplaceAll(escaped, "\n", "<br>")
}

var (
	previewPolicyOnce sync.Once
	previewPolicy     *bluemonday.Policy
)

func previewSanitizer() *bluemonday.Policy {
	previewPolicyOnce.Do(func() {
		policy := bluemonday.StrictPolicy()
		policy.AllowElements("br")
		previewPolicy = policy
	})
	return previewPolicy
}

// sanitize strips anything but <br> from rendered preview HTML
func sanitize(html string) string {
	if html == "" {
		return ""
	}
	return previewSanitizer().Sanitize(html)
}
