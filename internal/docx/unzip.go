package docx

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"com/lifenture/thai-field-engine/internal/extract"
)

const (
	DocumentPart     = "word/document.xml"
	ContentTypesPart = "[Content_Types].xml"
	RelationshipPart = "_rels/.rels"

	wordMainContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"
)

// ErrPartNotFound is returned when a requested part is not in the archive
var ErrPartNotFound = errors.New("part not found in DOCX archive")

var (
	headerPartPattern = regexp.MustCompile(`^word/header(\d+)\.xml$`)
	footerPartPattern = regexp.MustCompile(`^word/footer(\d+)\.xml$`)
)

// DocxFile represents a DOCX file structure
type DocxFile struct {
	Files map[string][]byte
}

// UnzipDocx extracts the contents of a DOCX file from byte data
func UnzipDocx(data []byte) (*DocxFile, error) {
	reader := bytes.NewReader(data)
	zipReader, err := zip.NewReader(reader, int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to create zip reader: %w", err)
	}

	docx := &DocxFile{
		Files: make(map[string][]byte),
	}

	for _, file := range zipReader.File {
		if file.FileInfo().IsDir() {
			continue
		}

		content, err := readZipFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read file %s: %w", file.Name, err)
		}

		docx.Files[file.Name] = content
	}

	return docx, nil
}

// readZipFile reads the content of a single file from the zip archive
func readZipFile(file *zip.File) ([]byte, error) {
	reader, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	return io.ReadAll(reader)
}

// GetDocumentXML returns the main document XML content
func (d *DocxFile) GetDocumentXML() ([]byte, error) {
	return d.GetFile(DocumentPart)
}

// GetFile retrieves the content of a specific file from the DOCX archive
func (d *DocxFile) GetFile(filename string) ([]byte, error) {
	content, exists := d.Files[filename]
	if !exists {
		return nil, fmt.Errorf("%s: %w", filename, ErrPartNotFound)
	}
	return content, nil
}

// HasFile checks if a specific file exists in the DOCX archive
func (d *DocxFile) HasFile(filename string) bool {
	_, exists := d.Files[filename]
	return exists
}

// ListFiles returns the names of all files in the archive, sorted
func (d *DocxFile) ListFiles() []string {
	files := make([]string, 0, len(d.Files))
	for filename := range d.Files {
		files = append(files, filename)
	}
	sort.Strings(files)
	return files
}

// IsValidDocx performs basic validation to ensure this is a word processing document
func (d *DocxFile) IsValidDocx() bool {
	for _, file := range []string{DocumentPart, ContentTypesPart, RelationshipPart} {
		if !d.HasFile(file) {
			return false
		}
	}

	contentTypes, err := d.GetFile(ContentTypesPart)
	if err != nil {
		return false
	}

	return strings.Contains(string(contentTypes), wordMainContentType)
}

type orderedPart struct {
	name  string
	index int
}

// MarkupParts returns the field-bearing XML parts in reading order: the document body,
// then headers, then footers, each group by part number
func (d *DocxFile) MarkupParts() []extract.Part {
	var headers, footers []orderedPart
	for _, name := range d.ListFiles() {
		if m := headerPartPattern.FindStringSubmatch(name); m != nil {
			if idx, err := strconv.Atoi(m[1]); err == nil {
				headers = append(headers, orderedPart{name: name, index: idx})
			}
			continue
		}
		if m := footerPartPattern.FindStringSubmatch(name); m != nil {
			if idx, err := strconv.Atoi(m[1]); err == nil {
				footers = append(footers, orderedPart{name: name, index: idx})
			}
		}
	}
	byIndex := func(parts []orderedPart) func(i, j int) bool {
		return func(i, j int) bool { return parts[i].index < parts[j].index }
	}
	sort.SliceStable(headers, byIndex(headers))
	sort.SliceStable(footers, byIndex(footers))

	parts := make([]extract.Part, 0, 1+len(headers)+len(footers))
	if body, ok := d.Files[DocumentPart]; ok {
		parts = append(parts, extract.Part{Name: DocumentPart, Markup: string(body)})
	}
	for _, group := range [][]orderedPart{headers, footers} {
		for _, p := range group {
			parts = append(parts, extract.Part{Name: p.name, Markup: string(d.Files[p.name])})
		}
	}
	return parts
}

// ReadDocx opens DOCX bytes, validates the signature and structure, and returns the archive
func ReadDocx(buf []byte) (*DocxFile, error) {
	if len(buf) < 4 {
		return nil, fmt.Errorf("invalid DOCX file: too short")
	}

	// ZIP signature (PK header)
	if buf[0] != 0x50 || buf[1] != 0x4B {
		return nil, fmt.Errorf("invalid DOCX file: missing ZIP signature")
	}

	docx, err := UnzipDocx(buf)
	if err != nil {
		return nil, fmt.Errorf("failed to unzip DOCX: %w", err)
	}

	if !docx.IsValidDocx() {
		return nil, fmt.Errorf("invalid DOCX file: missing required DOCX structure")
	}

	return docx, nil
}
