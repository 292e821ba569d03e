package placeholder

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNormalizeLegacy(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"single brace", "เรียน {ชื่อ} และ {{ตำแหน่ง}}", "เรียน {{ชื่อ}} และ {{ตำแหน่ง}}"},
		{"trims inner whitespace", "{ full_name }", "{{full_name}}"},
		{"formula kept", "{a=b}", "{a=b}"},
		{"empty kept", "{ } {}", "{ } {}"},
		{"half open double kept", "{{a}", "{{a}"},
		{"half closed double kept", "{a}}", "{a}}"},
		{"plain text", "ไม่มีฟิลด์", "ไม่มีฟิลด์"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeLegacy(tt.source)
			if got != tt.want {
				t.Errorf("NormalizeLegacy(%q) = %q, want %q", tt.source, got, tt.want)
			}
			if again := NormalizeLegacy(got); again != got {
				t.Errorf("not idempotent: %q -> %q", got, again)
			}
		})
	}

	if !IsLegacy("{a}") || IsLegacy("{{a}}") {
		t.Error("IsLegacy misclassified sources")
	}
}

func TestCheckDrift(t *testing.T) {
	tests := []struct {
		name       string
		source     string
		registered []string
		want       Drift
	}{
		{
			name:       "in sync",
			source:     "{{a}} {{b}}",
			registered: []string{"b", "a"},
			want:       Drift{Unregistered: []string{}, Unused: []string{}},
		},
		{
			name:       "both directions",
			source:     "{{a}} {{b}} {{ a }} {{ghost}}",
			registered: []string{"a", "c", " c "},
			want:       Drift{Unregistered: []string{"b", "ghost"}, Unused: []string{"c"}},
		},
		{
			name:       "malformed expressions are not references",
			source:     "{{ }} {{x",
			registered: []string{"x"},
			want:       Drift{Unregistered: []string{}, Unused: []string{"x"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CheckDrift(tt.source, tt.registered)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("CheckDrift() mismatch (-want +got):\n%s", diff)
			}
			if got.IsEmpty() != (len(tt.want.Unregistered) == 0 && len(tt.want.Unused) == 0) {
				t.Error("IsEmpty disagrees with the lists")
			}
		})
	}
}
