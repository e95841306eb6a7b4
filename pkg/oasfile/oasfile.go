// Package oasfile reads OpenAPI documents from a filesystem.
package oasfile

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Format is the serialization of an OpenAPI document.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Document is an OpenAPI document as read from disk. Content is kept
// verbatim; the other fields are best-effort metadata.
type Document struct {
	Path    string
	Content string
	Format  Format

	// Swagger is set for Swagger 2.0 documents, OpenAPI for 3.x documents.
	Swagger string
	OpenAPI string

	Title   string
	Version string
}

// IsSwagger2 reports whether the document declares Swagger 2.0.
func (d *Document) IsSwagger2() bool {
	return strings.HasPrefix(d.Swagger, "2")
}

type header struct {
	Swagger string `yaml:"swagger"`
	OpenAPI string `yaml:"openapi"`
	Info    struct {
		Title   string `yaml:"title"`
		Version string `yaml:"version"`
	} `yaml:"info"`
}

// Load reads the document at path. An error is returned only when the file
// cannot be read; content that does not parse still loads, with empty
// metadata.
func Load(fs afero.Fs, path string) (*Document, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("error reading OAS file %q: %w", path, err)
	}

	return Parse(path, data), nil
}

// Parse builds a Document from raw content.
func Parse(path string, data []byte) *Document {
	doc := &Document{
		Path:    path,
		Content: string(data),
		Format:  detectFormat(data),
	}

	// JSON is a subset of YAML, so one decoder covers both formats.
	var h header
	if err := yaml.Unmarshal(data, &h); err == nil {
		doc.Swagger = h.Swagger
		doc.OpenAPI = h.OpenAPI
		doc.Title = h.Info.Title
		doc.Version = h.Info.Version
	}

	return doc
}

func detectFormat(data []byte) Format {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return FormatJSON
	}
	return FormatYAML
}
