package api

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"com/lifenture/thai-field-engine/internal/config"
	"com/lifenture/thai-field-engine/internal/docx"
	"com/lifenture/thai-field-engine/internal/extract"
	"com/lifenture/thai-field-engine/internal/fields"
	"com/lifenture/thai-field-engine/internal/logging"
	"com/lifenture/thai-field-engine/internal/merge"
	"com/lifenture/thai-field-engine/internal/placeholder"
	"com/lifenture/thai-field-engine/internal/render"
)

// Service implements the request operations shared by the Lambda and HTTP transports
type Service struct {
	cfg   config.Config
	store fields.RegistryStore
	cache *fields.RegistryCache
	now   func() time.Time
}

// NewService wires a service over a registry store; a nil store uses process memory
func NewService(cfg config.Config, store fields.RegistryStore) *Service {
	if store == nil {
		store = fields.NewMemoryStore()
	}
	return &Service{
		cfg:   cfg,
		store: store,
		cache: fields.NewRegistryCache(store, cfg.FieldCacheTTL),
		now:   time.Now,
	}
}

func (s *Service) extractor(ctx context.Context) *extract.Extractor {
	opts := append(s.cfg.ExtractOptions(), extract.WithLogger(logging.FromContext(ctx)))
	return extract.New(opts...)
}

// decodeDocx turns a base64 DOCX into its ordered markup parts
func decodeDocx(ctx context.Context, encoded string) ([]extract.Part, error) {
	if encoded == "" {
		return nil, badRequest("'docx' key missing", nil)
	}

	docxBytes, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, badRequest("Failed to decode base64 input", err)
	}

	doc, err := docx.ReadDocx(docxBytes)
	if err != nil {
		return nil, internalError("Failed to process document", err)
	}

	parts := doc.MarkupParts()
	logging.FromContext(ctx).Debug("decoded document", zap.Int("parts", len(parts)))
	return parts, nil
}

// Extract discovers the fields of a document
func (s *Service) Extract(ctx context.Context, req ExtractRequest) (ExtractResponse, error) {
	var (
		names        []string
		placeholders []extract.PlaceholderContext
	)
	switch {
	case req.Docx != "":
		parts, err := decodeDocx(ctx, req.Docx)
		if err != nil {
			return ExtractResponse{}, err
		}
		names = s.extractor(ctx).Extract(parts...)
	case len(req.Parts) > 0:
		parts := make([]extract.Part, len(req.Parts))
		for i, p := range req.Parts {
			parts[i] = extract.Part{Name: p.Name, Markup: p.Markup}
		}
		names = s.extractor(ctx).Extract(parts...)
	case req.Source != "":
		names = s.extractor(ctx).ExtractText(req.Source)
		if req.Context > 0 {
			placeholders = extract.ExtractWithContext(req.Source, req.Context)
		}
	default:
		return ExtractResponse{}, badRequest("one of 'docx', 'parts' or 'source' is required", nil)
	}

	declared := fields.RegistryFromNames(names).Fields()
	return ExtractResponse{Fields: declared, Count: len(declared), Placeholders: placeholders}, nil
}

// registryFor resolves the registry of a request: a stored template, declared fields,
// or, when neither is given, the fallback
func (s *Service) registryFor(ctx context.Context, templateID string, declared []fields.BuilderField, fallback func() []string) (*fields.Registry, error) {
	if templateID != "" {
		registry, err := s.cache.Get(ctx, templateID)
		if errors.Is(err, fields.ErrTemplateNotFound) {
			return nil, notFound(fmt.Sprintf("template %s not found", templateID), err)
		}
		if err != nil {
			return nil, internalError("Failed to load fields", err)
		}
		return registry, nil
	}
	if len(declared) > 0 {
		return fields.NewRegistry(declared...), nil
	}
	if fallback != nil {
		return fields.RegistryFromNames(fallback()), nil
	}
	return fields.NewRegistry(), nil
}

// Validate scans template source and reports diagnostics and registry drift
func (s *Service) Validate(ctx context.Context, req ValidateRequest) (ValidateResponse, error) {
	source := req.Source
	if req.Legacy {
		source = placeholder.NormalizeLegacy(source)
	}

	var registry *fields.Registry
	if req.TemplateID != "" {
		var err error
		if registry, err = s.registryFor(ctx, req.TemplateID, nil, nil); err != nil {
			return ValidateResponse{}, err
		}
	} else {
		registry = fields.RegistryFromNames(req.Fields)
	}

	errs := placeholder.Validate(source, registry)
	drift := placeholder.CheckDrift(source, registry.Names())
	if placeholder.HasErrors(errs) {
		logging.FromContext(ctx).Debug("template has errors", zap.Int("errors", len(errs)))
	}

	return ValidateResponse{
		Valid:  !placeholder.HasErrors(errs),
		Errors: errs,
		Drift:  drift,
	}, nil
}

// Render substitutes values into template source for a surface
func (s *Service) Render(ctx context.Context, req RenderRequest) (RenderResponse, error) {
	surface, err := config.ParseSurface(req.Surface)
	if err != nil {
		return RenderResponse{}, badRequest("Unknown surface", err)
	}
	format := strings.ToLower(strings.TrimSpace(req.Format))
	if format != "" && format != "html" && format != "text" {
		return RenderResponse{}, badRequest("Unknown format", nil)
	}

	values, err := fields.ParseValueMap(req.Values)
	if err != nil {
		return RenderResponse{}, badRequest("Failed to parse values", err)
	}

	warnings := duplicateWarnings(fields.DetectDuplicates(req.Values))
	source := req.Source
	if req.Legacy {
		source = placeholder.NormalizeLegacy(source)
	} else if placeholder.IsLegacy(source) {
		warnings = append(warnings, "Single-brace placeholders are rendered as text; set 'legacy' to convert them")
	}

	registry, err := s.registryFor(ctx, req.TemplateID, req.Fields, func() []string {
		return placeholder.Names(source)
	})
	if err != nil {
		return RenderResponse{}, err
	}

	renderer := render.New(registry, s.cfg.RenderOptions(surface, s.now())...)
	resp := RenderResponse{
		Unfilled: renderer.Unfilled(source, values),
		Warnings: warnings,
	}
	if format == "text" {
		resp.Text = renderer.RenderText(source, values)
	} else {
		resp.HTML = renderer.Render(source, values).HTML
	}
	return resp, nil
}

// Merge renders a DOCX into the line list for the document generator
func (s *Service) Merge(ctx context.Context, req MergeRequest) (MergeResponse, error) {
	logger := logging.FromContext(ctx)

	parts, err := decodeDocx(ctx, req.Docx)
	if err != nil {
		return MergeResponse{}, err
	}

	duplicates := fields.DetectDuplicates(req.Data)
	if len(duplicates) > 0 {
		logger.Warn("duplicate keys detected", zap.Strings("keys", duplicates))
	}
	values, err := fields.ParseValueMap(req.Data)
	if err != nil {
		return MergeResponse{}, badRequest("Failed to parse merge data", err)
	}

	registry, err := s.registryFor(ctx, req.TemplateID, req.Fields, func() []string {
		return s.extractor(ctx).Extract(parts...)
	})
	if err != nil {
		return MergeResponse{}, err
	}

	validation := registry.Validate(values)
	validation.Warnings = append(validation.Warnings, duplicateWarnings(duplicates)...)

	renderer := render.New(registry, s.cfg.RenderOptions(config.SurfaceDocument, s.now())...)
	result := merge.Lines(ctx, parts, renderer, values)

	return MergeResponse{
		Lines:      result.Lines,
		Skipped:    result.Skipped,
		Validation: validation,
		MergeData:  values,
	}, nil
}

// Status is 400 when the supplied values failed validation
func (r MergeResponse) Status() int {
	if !r.Validation.Valid {
		return http.StatusBadRequest
	}
	return http.StatusOK
}

// GetFields returns the stored registry of a template through the cache
func (s *Service) GetFields(ctx context.Context, templateID string) (FieldsResponse, error) {
	if strings.TrimSpace(templateID) == "" {
		return FieldsResponse{}, badRequest("template id missing", nil)
	}
	registry, err := s.registryFor(ctx, templateID, nil, nil)
	if err != nil {
		return FieldsResponse{}, err
	}
	return FieldsResponse{TemplateID: templateID, Fields: registry.Fields()}, nil
}

// PutFields replaces the registry of a template. With a DOCX the fields are re-extracted
// and the metadata of names that persist is kept.
func (s *Service) PutFields(ctx context.Context, templateID string, req FieldsRequest) (FieldsResponse, error) {
	if strings.TrimSpace(templateID) == "" {
		return FieldsResponse{}, badRequest("template id missing", nil)
	}

	var registry *fields.Registry
	switch {
	case req.Docx != "":
		parts, err := decodeDocx(ctx, req.Docx)
		if err != nil {
			return FieldsResponse{}, err
		}
		existing, err := s.store.Load(ctx, templateID)
		if err != nil && !errors.Is(err, fields.ErrTemplateNotFound) {
			return FieldsResponse{}, internalError("Failed to load fields", err)
		}
		registry = fields.NewRegistry(existing...).Merge(s.extractor(ctx).Extract(parts...))
	case req.Fields != nil:
		registry = fields.NewRegistry(req.Fields...)
	default:
		return FieldsResponse{}, badRequest("one of 'fields' or 'docx' is required", nil)
	}

	if err := s.store.Save(ctx, templateID, registry.Fields()); err != nil {
		return FieldsResponse{}, internalError("Failed to save fields", err)
	}
	s.cache.Invalidate(templateID)
	logging.FromContext(ctx).Info("template fields saved",
		zap.String("template_id", templateID), zap.Int("fields", registry.Len()))

	return FieldsResponse{TemplateID: templateID, Fields: registry.Fields()}, nil
}

type templateDeleter interface {
	Delete(ctx context.Context, templateID string) error
}

// DeleteFields drops a template's registry when the store supports deletion
func (s *Service) DeleteFields(ctx context.Context, templateID string) error {
	deleter, ok := s.store.(templateDeleter)
	if !ok {
		return &Error{Status: http.StatusMethodNotAllowed, Message: "store does not support deletion"}
	}
	if err := deleter.Delete(ctx, templateID); err != nil {
		return internalError("Failed to delete fields", err)
	}
	s.cache.Invalidate(templateID)
	return nil
}

func duplicateWarnings(keys []string) []string {
	warnings := make([]string, 0, len(keys))
	for _, key := range keys {
		warnings = append(warnings, fmt.Sprintf("Duplicate key '%s' detected in JSON data (first occurrence kept)", key))
	}
	return warnings
}
