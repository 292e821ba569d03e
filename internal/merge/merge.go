package merge

import (
	"context"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"com/lifenture/thai-field-engine/internal/extract"
	"com/lifenture/thai-field-engine/internal/fields"
	"com/lifenture/thai-field-engine/internal/logging"
	"com/lifenture/thai-field-engine/internal/render"
)

// Result is the line list handed to the document generator
type Result struct {
	// Lines holds one rendered plain-text line per paragraph, in document order
	Lines []string `json:"lines"`

	// Skipped lists registered fields that had no value, first seen first
	Skipped []string `json:"skipped"`
}

// guillemetPattern matches the «name» display text Word shows for a MERGEFIELD
var guillemetPattern = regexp.MustCompile(`«([^»]+)»`)

// Lines flattens every part into paragraphs and renders each one as plain text
func Lines(ctx context.Context, parts []extract.Part, renderer *render.Renderer, values fields.ValueMap) Result {
	logger := logging.FromContext(ctx)
	logger.Info("starting merge", zap.Int("parts", len(parts)), zap.Int("values", len(values)))

	blocks := extract.New(extract.WithLogger(logger)).Blocks(parts...)

	result := Result{Lines: make([]string, 0, len(blocks)), Skipped: []string{}}
	skipped := make(map[string]bool)

	for _, block := range blocks {
		source := mergeFieldsToPlaceholders(block, renderer)

		for _, name := range renderer.Unfilled(source, values) {
			if !skipped[name] {
				skipped[name] = true
				result.Skipped = append(result.Skipped, name)
			}
		}
		result.Lines = append(result.Lines, renderer.RenderText(source, values))
	}

	if len(result.Skipped) > 0 {
		logger.Info("fields skipped", zap.Strings("fields", result.Skipped))
	}
	logger.Info("merge completed", zap.Int("lines", len(result.Lines)), zap.Int("skipped", len(result.Skipped)))

	return result
}

// mergeFieldsToPlaceholders rewrites «name» to {{name}} for registered names only,
// other guillemet text is kept as written
func mergeFieldsToPlaceholders(block string, renderer *render.Renderer) string {
	if !strings.Contains(block, "«") {
		return block
	}
	return guillemetPattern.ReplaceAllStringFunc(block, func(match string) string {
		name := strings.TrimSuffix(strings.TrimPrefix(match, "«"), "»")
		if !renderer.Knows(name) {
			return match
		}
		return "{{" + fields.NormalizeName(name) + "}}"
	})
}
