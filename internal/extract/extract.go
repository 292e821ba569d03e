package extract

import (
	"regexp"
	"unicode/utf8"

	"go.uber.org/zap"

	"com/lifenture/thai-field-engine/internal/fields"
	"com/lifenture/thai-field-engine/internal/logging"
)

// Part is one named markup blob of a document, e.g. word/document.xml or word/header1.xml
type Part struct {
	Name   string
	Markup string
}

// placeholderPattern recognizes {{ name }} first and { name } second so that a
// double-brace placeholder is never read as a single-brace one with leftover braces
var placeholderPattern = regexp.MustCompile(`\{\{([^{}]*)\}\}|\{([^{}]*)\}`)

// Extractor finds the distinct field names referenced in document markup
type Extractor struct {
	flattener     Flattener
	mergeFields   bool
	maxNameLength int
	logger        *zap.Logger
}

// Option configures an Extractor
type Option func(*Extractor)

// WithFlattener selects the text flattening strategy
func WithFlattener(f Flattener) Option {
	return func(e *Extractor) {
		if f != nil {
			e.flattener = f
		}
	}
}

// WithMergeFields also collects Word MERGEFIELD instructions
func WithMergeFields(enabled bool) Option {
	return func(e *Extractor) { e.mergeFields = enabled }
}

// WithMaxNameLength overrides the sanity bound on captured names
func WithMaxNameLength(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.maxNameLength = n
		}
	}
}

// WithLogger sets the logger used to report unreadable parts
func WithLogger(logger *zap.Logger) Option {
	return func(e *Extractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New creates an Extractor; the default strategy is ParagraphFlattener
func New(opts ...Option) *Extractor {
	e := &Extractor{
		flattener:     ParagraphFlattener{},
		maxNameLength: fields.MaxNameLength,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logging.L()
	}
	return e
}

// Extract returns the ordered set of field names found in the given parts.
// A part that cannot be flattened contributes no names; the result is never nil.
func (e *Extractor) Extract(parts ...Part) []string {
	set := newOrderedSet()

	for _, part := range parts {
		blocks, err := e.flattener.Flatten(part.Markup)
		if err != nil {
			e.logger.Warn("skipping unreadable markup part",
				zap.String("part", part.Name), zap.Error(err))
			continue
		}

		partSet := newOrderedSet()
		for _, block := range blocks {
			e.collect(block, partSet)
		}
		if e.mergeFields {
			names, err := MergeFieldNames(part.Markup)
			if err != nil {
				e.logger.Warn("skipping merge fields of unreadable markup part",
					zap.String("part", part.Name), zap.Error(err))
			}
			for _, name := range names {
				e.add(name, partSet)
			}
		}
		set.addAll(partSet.items)

		if logging.IsDebugEnabled() {
			e.logger.Debug("extracted fields from part",
				zap.String("part", part.Name), zap.Int("count", len(partSet.items)))
		}
	}

	return set.items
}

// Blocks flattens the parts with the configured strategy, skipping unreadable parts
func (e *Extractor) Blocks(parts ...Part) []string {
	var blocks []string
	for _, part := range parts {
		partBlocks, err := e.flattener.Flatten(part.Markup)
		if err != nil {
			e.logger.Warn("skipping unreadable markup part",
				zap.String("part", part.Name), zap.Error(err))
			continue
		}
		blocks = append(blocks, partBlocks...)
	}
	return blocks
}

// ExtractText returns the ordered set of field names in already flat text
func (e *Extractor) ExtractText(text string) []string {
	set := newOrderedSet()
	e.collect(text, set)
	return set.items
}

// ExtractText runs the default extractor over flat text
func ExtractText(text string) []string {
	return New().ExtractText(text)
}

func (e *Extractor) collect(text string, set *orderedSet) {
	for _, m := range placeholderPattern.FindAllStringSubmatch(text, -1) {
		name := m[1]
		if name == "" {
			name = m[2]
		}
		e.add(name, set)
	}
}

func (e *Extractor) add(raw string, set *orderedSet) {
	name := fields.NormalizeName(raw)
	if !fields.ValidName(name) || utf8.RuneCountInString(name) > e.maxNameLength {
		return
	}
	set.add(name)
}

// orderedSet keeps insertion order for deterministic output
type orderedSet struct {
	items []string
	seen  map[string]struct{}
}

func newOrderedSet() *orderedSet {
	return &orderedSet{items: []string{}, seen: make(map[string]struct{})}
}

func (s *orderedSet) add(item string) {
	if _, ok := s.seen[item]; ok {
		return
	}
	s.seen[item] = struct{}{}
	s.items = append(s.items, item)
}

func (s *orderedSet) addAll(items []string) {
	for _, item := range items {
		s.add(item)
	}
}
