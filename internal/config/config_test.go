package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"com/lifenture/thai-field-engine/internal/extract"
	"com/lifenture/thai-field-engine/internal/fields"
	"com/lifenture/thai-field-engine/internal/render"
	"com/lifenture/thai-field-engine/internal/thaidate"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(WithoutSystemEnv())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	cfg, err := Load(WithoutSystemEnv(), WithEnvMap(map[string]string{
		"LOG_LEVEL":           "debug",
		"HTTP_ADDR":           ":8080",
		"EXTRACT_STRATEGY":    "tagstrip",
		"EXTRACT_MERGEFIELDS": "yes",
		"FIELD_CACHE_TTL":     "30s",
		"THAI_NUMERALS":       "true",
		"DATE_MODE":           "full",
		"PREVIEW_UNFILLED":    "empty",
		"DOCUMENT_UNFILLED":   "placeholder",
	}))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	want := Config{
		LogLevel:      "debug",
		HTTPAddr:      ":8080",
		Extract:       ExtractConfig{Strategy: "tagstrip", MergeFields: true},
		FieldCacheTTL: 30 * time.Second,
		Dates:         thaidate.Options{Mode: thaidate.Full, ThaiNumerals: true},
		Preview:       SurfaceConfig{Unfilled: render.UnfilledEmpty, SampleDates: true},
		Document:      SurfaceConfig{Unfilled: render.UnfilledPlaceholder},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.yaml")
	content := `log_level: warn
extract:
  strategy: paragraph
  merge_fields: true
field_cache_ttl: 2m
dates:
  mode: full
preview:
  unfilled: empty
  sample_dates: false
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, err := Load(WithoutSystemEnv(), WithEnvMap(map[string]string{
		"CONFIG_FILE": path,
		"LOG_LEVEL":   "error",
	}))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.LogLevel != "error" {
		t.Errorf("env should win over file, got log level %q", cfg.LogLevel)
	}
	if !cfg.Extract.MergeFields || cfg.FieldCacheTTL != 2*time.Minute || cfg.Dates.Mode != thaidate.Full {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Preview.Unfilled != render.UnfilledEmpty || cfg.Preview.SampleDates {
		t.Errorf("preview surface not read from file: %+v", cfg.Preview)
	}
	if cfg.Document.Unfilled != render.UnfilledEmpty {
		t.Errorf("document surface should keep its default, got %+v", cfg.Document)
	}
}

func TestLoadInvalid(t *testing.T) {
	_, err := Load(WithoutSystemEnv(), WithEnvMap(map[string]string{
		"EXTRACT_STRATEGY": "ocr",
		"DATE_MODE":        "medium",
		"PREVIEW_UNFILLED": "hide",
	}))

	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	want := []string{"DATE_MODE", "EXTRACT_STRATEGY", "PREVIEW_UNFILLED"}
	if diff := cmp.Diff(want, validationErr.Fields()); diff != "" {
		t.Errorf("invalid fields mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(WithoutSystemEnv(), WithFile(filepath.Join(t.TempDir(), "missing.yaml")))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected a wrapped not-exist error, got %v", err)
	}
}

func TestParseSurface(t *testing.T) {
	tests := []struct {
		raw     string
		want    Surface
		wantErr bool
	}{
		{"", SurfacePreview, false},
		{"Document", SurfaceDocument, false},
		{"print", "", true},
	}
	for _, tt := range tests {
		got, err := ParseSurface(tt.raw)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseSurface(%q) = %q, %v", tt.raw, got, err)
		}
		if tt.wantErr && !errors.Is(err, ErrUnknownSurface) {
			t.Errorf("expected ErrUnknownSurface, got %v", err)
		}
	}
}

func TestRenderOptionsPerSurface(t *testing.T) {
	cfg := Default()
	registry := fields.NewRegistry(
		fields.NewBuilderField("ชื่อ"),
		fields.BuilderField{Name: "วันที่", Type: fields.FieldTypeDate},
	)
	now := time.Date(2025, time.January, 6, 9, 0, 0, 0, time.UTC)
	source := "{{ชื่อ}} {{วันที่}}"

	preview := render.New(registry, cfg.RenderOptions(SurfacePreview, now)...).RenderText(source, nil)
	if preview != "{ชื่อ} 6 มกราคม 2568" {
		t.Errorf("preview = %q", preview)
	}
	document := render.New(registry, cfg.RenderOptions(SurfaceDocument, now)...).RenderText(source, nil)
	if document != " " {
		t.Errorf("document = %q", document)
	}
}

func TestExtractOptions(t *testing.T) {
	cfg := Default()
	cfg.Extract.MergeFields = true
	part := extract.Part{
		Name:   "word/document.xml",
		Markup: `<w:p><w:fldSimple w:instr=" MERGEFIELD Email "/><w:r><w:t>{{ชื่อ}}</w:t></w:r></w:p>`,
	}

	got := extract.New(cfg.ExtractOptions()...).Extract(part)
	if diff := cmp.Diff([]string{"ชื่อ", "Email"}, got); diff != "" {
		t.Errorf("Extract() mismatch (-want +got):\n%s", diff)
	}
}
