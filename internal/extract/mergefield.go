package extract

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const mergeFieldInstruction = "MERGEFIELD"

// MergeFieldNames returns the Word MERGEFIELD names of a markup part in document order.
// Both simple fields (w:fldSimple) and complex fields (w:fldChar begin .. w:instrText .. end)
// are recognized. Names found before a read error are returned with the error.
func MergeFieldNames(markup string) ([]string, error) {
	decoder := xml.NewDecoder(strings.NewReader(markup))
	set := newOrderedSet()

	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return set.items, fmt.Errorf("failed to read merge fields: %w", err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		switch start.Name.Local {
		case "fldSimple":
			if name, ok := mergeFieldName(attrValue(start, "instr")); ok {
				set.add(name)
			}
		case "fldChar":
			if attrValue(start, "fldCharType") != "begin" {
				continue
			}
			name, err := readComplexField(decoder)
			if name != "" {
				set.add(name)
			}
			if err != nil {
				return set.items, fmt.Errorf("failed to read merge fields: %w", err)
			}
		}
	}

	return set.items, nil
}

// readComplexField consumes tokens up to the closing fldChar and returns the field name
func readComplexField(decoder *xml.Decoder) (string, error) {
	var instr strings.Builder
	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			return "", nil
		}
		if err != nil {
			return "", err
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch start.Name.Local {
		case "instrText":
			// instructions can be split across runs
			var value string
			if err := decoder.DecodeElement(&value, &start); err != nil {
				return "", err
			}
			instr.WriteString(value)
		case "fldChar":
			if attrValue(start, "fldCharType") == "end" {
				name, _ := mergeFieldName(instr.String())
				return name, nil
			}
		}
	}
}

// mergeFieldName parses ` MERGEFIELD  Name  \* MERGEFORMAT ` and quoted names
func mergeFieldName(instr string) (string, bool) {
	idx := strings.Index(instr, mergeFieldInstruction)
	if idx < 0 {
		return "", false
	}
	rest := strings.TrimSpace(instr[idx+len(mergeFieldInstruction):])
	if strings.HasPrefix(rest, `"`) {
		if end := strings.Index(rest[1:], `"`); end >= 0 {
			name := strings.TrimSpace(rest[1 : end+1])
			return name, name != ""
		}
	}
	parts := strings.Fields(rest)
	if len(parts) == 0 || strings.HasPrefix(parts[0], `\`) {
		return "", false
	}
	return parts[0], true
}

func attrValue(token xml.StartElement, local string) string {
	for _, attr := range token.Attr {
		if attr.Name.Local == local {
			return attr.Value
		}
	}
	return ""
}
