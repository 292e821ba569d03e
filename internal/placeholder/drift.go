package placeholder

import "com/lifenture/thai-field-engine/internal/fields"

// Drift lists the differences between the names a template references and its registry
type Drift struct {
	Unregistered []string `json:"unregistered"`
	Unused       []string `json:"unused"`
}

// IsEmpty reports whether source and registry agree
func (d Drift) IsEmpty() bool {
	return len(d.Unregistered) == 0 && len(d.Unused) == 0
}

// CheckDrift compares referenced names (first-seen order) with registered names
// (registry order) in both directions
func CheckDrift(source string, registered []string) Drift {
	drift := Drift{Unregistered: []string{}, Unused: []string{}}

	referenced := Names(source)
	registeredSet := NewNameSet(registered...)
	for _, name := range referenced {
		if !registeredSet.Has(name) {
			drift.Unregistered = append(drift.Unregistered, name)
		}
	}

	referencedSet := NewNameSet(referenced...)
	seen := make(map[string]bool)
	for _, raw := range registered {
		name := fields.NormalizeName(raw)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		if !referencedSet.Has(name) {
			drift.Unused = append(drift.Unused, name)
		}
	}

	return drift
}
