package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"com/lifenture/thai-field-engine/internal/extract"
	"com/lifenture/thai-field-engine/internal/render"
	"com/lifenture/thai-field-engine/internal/thaidate"
)

const (
	defaultLogLevel        = "info"
	defaultExtractStrategy = "paragraph"
	defaultFieldCacheTTL   = 5 * time.Minute
)

// Surface names a rendering surface with its own unfilled-field policy
type Surface string

const (
	SurfacePreview  Surface = "preview"
	SurfaceDocument Surface = "document"
)

// Config captures runtime configuration
type Config struct {
	LogLevel      string           `yaml:"log_level"`
	HTTPAddr      string           `yaml:"http_addr"`
	Extract       ExtractConfig    `yaml:"extract"`
	FieldCacheTTL time.Duration    `yaml:"field_cache_ttl"`
	Dates         thaidate.Options `yaml:"dates"`
	Preview       SurfaceConfig    `yaml:"preview"`
	Document      SurfaceConfig    `yaml:"document"`
}

// ExtractConfig selects the extraction strategy
type ExtractConfig struct {
	Strategy    string `yaml:"strategy"`
	MergeFields bool   `yaml:"merge_fields"`
}

// SurfaceConfig is the rendering policy of one surface
type SurfaceConfig struct {
	Unfilled render.UnfilledPolicy `yaml:"unfilled"`

	// SampleDates shows today's date for date fields that have no value
	SampleDates bool `yaml:"sample_dates"`
}

// Default returns the built-in configuration: previews echo unfilled fields with sample
// dates, documents leave them empty
func Default() Config {
	return Config{
		LogLevel:      defaultLogLevel,
		Extract:       ExtractConfig{Strategy: defaultExtractStrategy},
		FieldCacheTTL: defaultFieldCacheTTL,
		Dates:         thaidate.Options{Mode: thaidate.Short},
		Preview:       SurfaceConfig{Unfilled: render.UnfilledPlaceholder, SampleDates: true},
		Document:      SurfaceConfig{Unfilled: render.UnfilledEmpty},
	}
}

// ValidationError lists configuration keys with invalid values
type ValidationError struct {
	fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the invalid key list
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option configures Load
type Option func(*loaderOptions)

type loaderOptions struct {
	envMap       map[string]string
	useSystemEnv bool
	file         string
}

// WithEnvMap injects explicit values that take precedence over the process environment
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) { o.envMap = values }
}

// WithoutSystemEnv disables reading the process environment
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) { o.useSystemEnv = false }
}

// WithFile reads a YAML file before applying environment overrides; it replaces CONFIG_FILE
func WithFile(path string) Option {
	return func(o *loaderOptions) { o.file = path }
}

// Load combines defaults, an optional YAML file (CONFIG_FILE) and environment variables,
// later sources winning
func Load(opts ...Option) (Config, error) {
	options := loaderOptions{useSystemEnv: true}
	for _, opt := range opts {
		opt(&options)
	}

	lookup := func(key string) (string, bool) {
		if options.envMap != nil {
			if value, ok := options.envMap[key]; ok {
				return value, true
			}
		}
		if options.useSystemEnv {
			return os.LookupEnv(key)
		}
		return "", false
	}

	cfg := Default()

	file := options.file
	if file == "" {
		file = stringWithDefault(lookup, "CONFIG_FILE", "")
	}
	if file != "" {
		if err := readFile(file, &cfg); err != nil {
			return Config{}, err
		}
	}

	var invalid []string
	cfg.LogLevel = stringWithDefault(lookup, "LOG_LEVEL", cfg.LogLevel)
	cfg.HTTPAddr = stringWithDefault(lookup, "HTTP_ADDR", cfg.HTTPAddr)
	cfg.Extract.Strategy = stringWithDefault(lookup, "EXTRACT_STRATEGY", cfg.Extract.Strategy)
	cfg.Extract.MergeFields = boolWithDefault(lookup, "EXTRACT_MERGEFIELDS", cfg.Extract.MergeFields)
	cfg.FieldCacheTTL = durationWithDefault(lookup, "FIELD_CACHE_TTL", cfg.FieldCacheTTL)
	cfg.Dates.ThaiNumerals = boolWithDefault(lookup, "THAI_NUMERALS", cfg.Dates.ThaiNumerals)
	cfg.Preview.SampleDates = boolWithDefault(lookup, "PREVIEW_SAMPLE_DATES", cfg.Preview.SampleDates)

	if raw, ok := lookup("DATE_MODE"); ok && raw != "" {
		mode, err := thaidate.ParseMode(raw)
		if err != nil {
			invalid = append(invalid, "DATE_MODE")
		}
		cfg.Dates.Mode = mode
	}
	for key, target := range map[string]*render.UnfilledPolicy{
		"PREVIEW_UNFILLED":  &cfg.Preview.Unfilled,
		"DOCUMENT_UNFILLED": &cfg.Document.Unfilled,
	} {
		raw, ok := lookup(key)
		if !ok || raw == "" {
			continue
		}
		policy, err := render.ParseUnfilledPolicy(raw)
		if err != nil {
			invalid = append(invalid, key)
			continue
		}
		*target = policy
	}

	invalid = append(invalid, validate(cfg)...)
	if len(invalid) > 0 {
		sort.Strings(invalid)
		return Config{}, &ValidationError{fields: invalid}
	}

	return cfg, nil
}

func readFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func validate(cfg Config) []string {
	var invalid []string
	switch strings.ToLower(strings.TrimSpace(cfg.Extract.Strategy)) {
	case "paragraph", "tagstrip", "tag-strip", "strip":
	default:
		invalid = append(invalid, "EXTRACT_STRATEGY")
	}
	if cfg.FieldCacheTTL < 0 {
		invalid = append(invalid, "FIELD_CACHE_TTL")
	}
	for key, policy := range map[string]render.UnfilledPolicy{
		"PREVIEW_UNFILLED":  cfg.Preview.Unfilled,
		"DOCUMENT_UNFILLED": cfg.Document.Unfilled,
	} {
		if policy != render.UnfilledEmpty && policy != render.UnfilledPlaceholder {
			invalid = append(invalid, key)
		}
	}
	return invalid
}

// ErrUnknownSurface is returned for a surface name that is not configured
var ErrUnknownSurface = errors.New("unknown render surface")

// ParseSurface reads a surface name; an empty name is the preview surface
func ParseSurface(raw string) (Surface, error) {
	switch Surface(strings.ToLower(strings.TrimSpace(raw))) {
	case "", SurfacePreview:
		return SurfacePreview, nil
	case SurfaceDocument:
		return SurfaceDocument, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSurface, raw)
}

// RenderOptions returns the renderer options of a surface. now supplies the sample date.
func (c Config) RenderOptions(surface Surface, now time.Time) []render.Option {
	sc := c.Preview
	if surface == SurfaceDocument {
		sc = c.Document
	}
	opts := []render.Option{
		render.WithUnfilled(sc.Unfilled),
		render.WithDateOptions(c.Dates),
	}
	if sc.SampleDates {
		opts = append(opts, render.WithSampleDate(now))
	}
	return opts
}

// ExtractOptions returns the extractor options for the configured strategy
func (c Config) ExtractOptions() []extract.Option {
	return []extract.Option{
		extract.WithFlattener(extract.FlattenerByName(c.Extract.Strategy)),
		extract.WithMergeFields(c.Extract.MergeFields),
	}
}
