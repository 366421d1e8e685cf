package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/BrainDriveAI/document-processing-service/internal/chunking"
)

// Content is a parsed document: a title plus the ordered element stream
// handed to the chunking engine. Elements carry a type and heading level
// where the format makes them explicit; untyped elements are classified
// downstream by heuristics.
type Content struct {
	Title    string
	Elements []chunking.InputElement
}

// Input converts the parsed content into the chunking engine's input shape.
func (c *Content) Input() chunking.Input {
	return chunking.Input{Elements: c.Elements}
}

// Text flattens the element stream for the structure-unaware strategies.
func (c *Content) Text() string {
	parts := make([]string, 0, len(c.Elements))
	for _, e := range c.Elements {
		if t := strings.TrimSpace(e.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n\n")
}

// Parser converts raw document bytes into parsed content.
type Parser interface {
	Parse(r io.Reader, filename string) (*Content, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".csv":
		return &CSVParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// titleFromFilename strips the extension to produce a fallback title.
func titleFromFilename(filename string) string {
	return strings.TrimSuffix(filename, filepath.Ext(filename))
}
