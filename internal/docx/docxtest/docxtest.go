// Package docxtest builds DOCX archives for tests.
package docxtest

import (
	"archive/zip"
	"bytes"
	"fmt"
	"testing"

	"com/lifenture/thai-field-engine/internal/docx"
)

const wordMainContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"

// NewWordDocument assembles the minimal set of parts a word processing document needs
// around the given body XML. Extra parts such as headers are added as is.
func NewWordDocument(documentXML string, extra map[string]string) *docx.DocxFile {
	doc := &docx.DocxFile{Files: map[string][]byte{
		docx.DocumentPart: []byte(documentXML),
		docx.ContentTypesPart: []byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
			`<Default Extension="xml" ContentType="application/xml"/>` +
			`<Override PartName="/word/document.xml" ContentType="` + wordMainContentType + `"/>` +
			`</Types>`),
		docx.RelationshipPart: []byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`),
	}}
	for name, content := range extra {
		doc.Files[name] = []byte(content)
	}
	return doc
}

// Zip writes a DocxFile into a ZIP archive.
// Files are written in name order so identical inputs give identical bytes.
func Zip(doc *docx.DocxFile) ([]byte, error) {
	var buf bytes.Buffer
	zipWriter := zip.NewWriter(&buf)

	for _, filename := range doc.ListFiles() {
		fileWriter, err := zipWriter.Create(filename)
		if err != nil {
			zipWriter.Close()
			return nil, fmt.Errorf("failed to create file %s in ZIP: %w", filename, err)
		}

		if _, err := fileWriter.Write(doc.Files[filename]); err != nil {
			zipWriter.Close()
			return nil, fmt.Errorf("failed to write content for file %s: %w", filename, err)
		}
	}

	if err := zipWriter.Close(); err != nil {
		return nil, fmt.Errorf("failed to close ZIP writer: %w", err)
	}

	return buf.Bytes(), nil
}

// Build returns the archive bytes of a word document, failing the test on error
func Build(t testing.TB, documentXML string, extra map[string]string) []byte {
	t.Helper()
	data, err := Zip(NewWordDocument(documentXML, extra))
	if err != nil {
		t.Fatalf("failed to build DOCX: %v", err)
	}
	return data
}
