package extract

import (
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"regexp"
	"strings"
)

// Flattener reconstructs plain text blocks from run-fragmented markup.
// Blocks are returned in document order; a placeholder never spans two blocks.
type Flattener interface {
	Flatten(markup string) ([]string, error)
}

// ParagraphFlattener walks the XML tree and joins the text of all w:t nodes that belong
// to one paragraph (w:p) or to a content control (w:sdt) outside any paragraph.
// Tabs and breaks inside a paragraph become spaces.
type ParagraphFlattener struct{}

// Flatten implements Flattener
func (ParagraphFlattener) Flatten(markup string) ([]string, error) {
	decoder := xml.NewDecoder(strings.NewReader(markup))

	var (
		blocks         []string
		current        strings.Builder
		inText         bool
		paragraphDepth int
	)

	flush := func() {
		if text := collapseWhitespace(current.String()); text != "" {
			blocks = append(blocks, text)
		}
		current.Reset()
	}

	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return blocks, fmt.Errorf("failed to read markup: %w", err)
		}

		switch token := tok.(type) {
		case xml.StartElement:
			switch token.Name.Local {
			case "p":
				paragraphDepth++
			case "t":
				inText = true
			case "tab", "br", "cr":
				current.WriteByte(' ')
			}
		case xml.EndElement:
			switch token.Name.Local {
			case "t":
				inText = false
			case "p":
				if paragraphDepth > 0 {
					paragraphDepth--
				}
				if paragraphDepth == 0 {
					flush()
				}
			case "sdt":
				if paragraphDepth == 0 {
					flush()
				}
			}
		case xml.CharData:
			if inText {
				current.Write(token)
			}
		}
	}
	flush()

	return blocks, nil
}

var tagPattern = regexp.MustCompile(`<[^>]+>`)

// TagStripFlattener removes every tag and keeps the concatenated character data as one block.
// Tags never occur inside character data, so split runs are rejoined; paragraph
// boundaries are lost.
type TagStripFlattener struct{}

// Flatten implements Flattener
func (TagStripFlattener) Flatten(markup string) ([]string, error) {
	text := collapseWhitespace(html.UnescapeString(tagPattern.ReplaceAllString(markup, "")))
	if text == "" {
		return nil, nil
	}
	return []string{text}, nil
}

// collapseWhitespace turns every run of whitespace, newlines included, into one space
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// FlattenerByName resolves a configured strategy name; unknown names use ParagraphFlattener
func FlattenerByName(name string) Flattener {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "tagstrip", "tag-strip", "strip":
		return TagStripFlattener{}
	default:
		return ParagraphFlattener{}
	}
}
