package fields

// Registry is the ordered set of declared fields of one template.
// Names are unique; the first declaration of a name wins.
type Registry struct {
	fields []BuilderField
	index  map[string]int
}

// NewRegistry builds a registry from declared fields, normalizing names and types
func NewRegistry(declared ...BuilderField) *Registry {
	r := &Registry{
		fields: make([]BuilderField, 0, len(declared)),
		index:  make(map[string]int, len(declared)),
	}
	for _, field := range declared {
		r.add(field.normalized())
	}
	return r
}

// RegistryFromNames builds a registry of default fields for extracted names
func RegistryFromNames(names []string) *Registry {
	r := NewRegistry()
	for _, name := range names {
		r.add(NewBuilderField(name))
	}
	return r
}

func (r *Registry) add(field BuilderField) {
	if !ValidName(field.Name) {
		return
	}
	if _, exists := r.index[field.Name]; exists {
		return
	}
	r.index[field.Name] = len(r.fields)
	r.fields = append(r.fields, field)
}

// Len returns the number of registered fields
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.fields)
}

// Fields returns a copy of the registered fields in declaration order
func (r *Registry) Fields() []BuilderField {
	if r == nil {
		return []BuilderField{}
	}
	out := make([]BuilderField, len(r.fields))
	copy(out, r.fields)
	return out
}

// Names returns the registered field names in declaration order
func (r *Registry) Names() []string {
	if r == nil {
		return []string{}
	}
	names := make([]string, len(r.fields))
	for i, field := range r.fields {
		names[i] = field.Name
	}
	return names
}

// Lookup returns the field registered under name
func (r *Registry) Lookup(name string) (BuilderField, bool) {
	if r == nil {
		return BuilderField{}, false
	}
	i, ok := r.index[NormalizeName(name)]
	if !ok {
		return BuilderField{}, false
	}
	return r.fields[i], true
}

// Has checks if a field with the given name is registered
func (r *Registry) Has(name string) bool {
	_, ok := r.Lookup(name)
	return ok
}

// RequiredFields returns only the required fields
func (r *Registry) RequiredFields() []BuilderField {
	var required []BuilderField
	for _, field := range r.Fields() {
		if field.Required {
			required = append(required, field)
		}
	}
	return required
}

// Merge returns the registry for a re-extraction result: names that persist keep their
// label, type and required flag, new names get defaults and vanished names are dropped.
// Order follows names.
func (r *Registry) Merge(names []string) *Registry {
	merged := NewRegistry()
	for _, name := range names {
		if existing, ok := r.Lookup(name); ok {
			merged.add(existing)
			continue
		}
		merged.add(NewBuilderField(name))
	}
	return merged
}
