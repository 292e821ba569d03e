package fields

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// DetectDuplicates parses raw JSON data and returns a slice of duplicate keys
// (second and later occurrences). Keys are compared after NormalizeName, so
// " ชื่อ" and "ชื่อ" collide.
func DetectDuplicates(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}

	decoder := json.NewDecoder(bytes.NewReader(raw))

	token, err := decoder.Token()
	if err != nil {
		return nil
	}
	if delim, ok := token.(json.Delim); !ok || delim != '{' {
		return nil
	}

	seen := make(map[string]bool)
	var duplicates []string

	for decoder.More() {
		token, err := decoder.Token()
		if err != nil {
			return duplicates
		}

		key, ok := token.(string)
		if !ok {
			return duplicates
		}

		normalizedKey := NormalizeName(key)
		if seen[normalizedKey] {
			duplicates = append(duplicates, key)
		} else {
			seen[normalizedKey] = true
		}

		// Skip the value for this key
		var dummy interface{}
		if err := decoder.Decode(&dummy); err != nil {
			return duplicates
		}
	}

	return duplicates
}

// ParseValueMap parses a raw JSON object into a ValueMap with duplicate-key "first-win" logic.
// Keys are stored normalized; when a key appears more than once only the first occurrence is kept.
func ParseValueMap(raw json.RawMessage) (ValueMap, error) {
	result := make(ValueMap)
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return result, nil
	}

	decoder := json.NewDecoder(bytes.NewReader(raw))

	token, err := decoder.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to read opening token: %w", err)
	}
	if delim, ok := token.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected opening brace, got %T: %v", token, token)
	}

	for decoder.More() {
		token, err := decoder.Token()
		if err != nil {
			return nil, fmt.Errorf("failed to read key token: %w", err)
		}

		key, ok := token.(string)
		if !ok {
			return nil, fmt.Errorf("expected string key, got %T: %v", token, token)
		}

		var value interface{}
		if err := decoder.Decode(&value); err != nil {
			return nil, fmt.Errorf("failed to decode value for key %s: %w", key, err)
		}

		normalizedKey := NormalizeName(key)
		if _, exists := result[normalizedKey]; exists {
			continue
		}
		result[normalizedKey] = value
	}

	token, err = decoder.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to read closing token: %w", err)
	}
	if delim, ok := token.(json.Delim); !ok || delim != '}' {
		return nil, fmt.Errorf("expected closing brace, got %T: %v", token, token)
	}

	return result, nil
}
