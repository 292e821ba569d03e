package thaidate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Mode selects the output layout of a formatted date
type Mode int

const (
	// Short renders "<day> <month> <year>"
	Short Mode = iota
	// Full renders "วัน<weekday>ที่ <day> <month> <year>"
	Full
)

// ParseMode reads "short" or "full"; an empty name is Short
func ParseMode(raw string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "short":
		return Short, nil
	case "full", "long":
		return Full, nil
	}
	return Short, fmt.Errorf("unknown date mode %q", raw)
}

func (m Mode) String() string {
	if m == Full {
		return "full"
	}
	return "short"
}

// MarshalText encodes the mode by name
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText decodes a mode name in JSON and YAML documents
func (m *Mode) UnmarshalText(text []byte) error {
	mode, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

// BuddhistEraOffset is added to a Gregorian year to get the Buddhist Era year
const BuddhistEraOffset = 543

// Options controls date formatting
type Options struct {
	Mode Mode `json:"mode" yaml:"mode"`

	// ThaiNumerals transliterates every digit of the output to ๐-๙
	ThaiNumerals bool `json:"thai_numerals" yaml:"thai_numerals"`
}

var monthNames = [12]string{
	"มกราคม", "กุมภาพันธ์", "มีนาคม", "เมษายน", "พฤษภาคม", "มิถุนายน",
	"กรกฎาคม", "สิงหาคม", "กันยายน", "ตุลาคม", "พฤศจิกายน", "ธันวาคม",
}

var monthAbbreviations = [12]string{
	"ม.ค.", "ก.พ.", "มี.ค.", "เม.ย.", "พ.ค.", "มิ.ย.",
	"ก.ค.", "ส.ค.", "ก.ย.", "ต.ค.", "พ.ย.", "ธ.ค.",
}

// indexed by time.Weekday (Sunday = 0)
var weekdayNames = [7]string{
	"อาทิตย์", "จันทร์", "อังคาร", "พุธ", "พฤหัสบดี", "ศุกร์", "เสาร์",
}

// MonthName returns the Thai month name for a calendar month, or "" when out of range
func MonthName(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return monthNames[m-1]
}

// WeekdayName returns the Thai weekday name
func WeekdayName(d time.Weekday) string {
	if d < time.Sunday || d > time.Saturday {
		return ""
	}
	return weekdayNames[d]
}

// Format converts a calendar date to Buddhist-era Thai text.
// The zero time formats to an empty string.
func Format(t time.Time, opts Options) string {
	if t.IsZero() {
		return ""
	}

	day := strconv.Itoa(t.Day())
	year := strconv.Itoa(t.Year() + BuddhistEraOffset)
	if opts.ThaiNumerals {
		day = ToThaiDigits(day)
		year = ToThaiDigits(year)
	}

	short := day + " " + MonthName(t.Month()) + " " + year
	if opts.Mode == Full {
		return "วัน" + WeekdayName(t.Weekday()) + "ที่ " + short
	}
	return short
}

// FormatValue coerces a dynamically typed value to a date and formats it.
// Values that cannot be read as a date yield an empty string.
func FormatValue(value interface{}, opts Options) string {
	t, err := ToTime(value)
	if err != nil {
		return ""
	}
	return Format(t, opts)
}

// common layouts accepted for date values supplied as strings
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"02.01.2006",
}

// ToTime reads a date from a value supplied at fill time
func ToTime(value interface{}) (time.Time, error) {
	switch v := value.(type) {
	case nil:
		return time.Time{}, fmt.Errorf("cannot parse nil as date")
	case time.Time:
		if v.IsZero() {
			return time.Time{}, fmt.Errorf("zero time")
		}
		return v, nil
	case *time.Time:
		if v == nil {
			return time.Time{}, fmt.Errorf("cannot parse nil time pointer")
		}
		return ToTime(*v)
	case int:
		return fromUnix(int64(v)), nil
	case int64:
		return fromUnix(v), nil
	case float64:
		return fromUnix(int64(v)), nil
	case string:
		return parseString(v)
	default:
		return time.Time{}, fmt.Errorf("unsupported date value type %T", value)
	}
}

func fromUnix(v int64) time.Time {
	// values this large are milliseconds
	if v > 1e10 || v < -1e10 {
		return time.UnixMilli(v).UTC()
	}
	return time.Unix(v, 0).UTC()
}

func parseString(raw string) (time.Time, error) {
	s := strings.TrimSpace(FromThaiDigits(raw))
	if s == "" {
		return time.Time{}, fmt.Errorf("cannot parse empty string as date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return Parse(s)
}

var thaiDatePattern = regexp.MustCompile(`(\d{1,2})\s*([ก-๏\.]+)\s*(\d{4})`)

// Parse reads a Thai textual date such as "6 มกราคม 2568" or "๖ ม.ค. ๒๕๖๘".
// Years above 2400 are treated as Buddhist Era.
func Parse(s string) (time.Time, error) {
	normalized := FromThaiDigits(s)
	matches := thaiDatePattern.FindStringSubmatch(normalized)
	if matches == nil {
		return time.Time{}, fmt.Errorf("could not parse date string: %s", s)
	}

	day, err := strconv.Atoi(matches[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day %q: %w", matches[1], err)
	}
	month, ok := lookupMonth(matches[2])
	if !ok {
		return time.Time{}, fmt.Errorf("unknown Thai month %q", matches[2])
	}
	year, err := strconv.Atoi(matches[3])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid year %q: %w", matches[3], err)
	}
	if year > 2400 {
		year -= BuddhistEraOffset
	}

	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	// reject overflow such as 31 กุมภาพันธ์
	if t.Day() != day || t.Month() != month {
		return time.Time{}, fmt.Errorf("day %d out of range for month %s", day, matches[2])
	}
	return t, nil
}

func lookupMonth(raw string) (time.Month, bool) {
	name := strings.TrimSpace(raw)
	for i, full := range monthNames {
		if name == full {
			return time.Month(i + 1), true
		}
	}
	trimmed := strings.TrimSuffix(name, ".")
	for i, abbr := range monthAbbreviations {
		if trimmed == strings.TrimSuffix(abbr, ".") {
			return time.Month(i + 1), true
		}
	}
	return 0, false
}

const thaiZero = '๐'

// ToThaiDigits maps 0-9 to ๐-๙ digit by digit
func ToThaiDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return thaiZero + (r - '0')
		}
		return r
	}, s)
}

// FromThaiDigits maps ๐-๙ back to 0-9
func FromThaiDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= thaiZero && r <= thaiZero+9 {
			return '0' + (r - thaiZero)
		}
		return r
	}, s)
}
