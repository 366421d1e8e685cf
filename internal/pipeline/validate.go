package pipeline

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/BrainDriveAI/document-processing-service/internal/parser"
)

// ValidateUpload rejects uploads before any parsing work: unsupported
// extensions, empty payloads, and payloads above the configured limit.
func ValidateUpload(filename string, size int64, maxBytes int64) error {
	if strings.TrimSpace(filename) == "" {
		return fmt.Errorf("filename is required")
	}
	if !parser.IsSupportedExtension(filename) {
		return fmt.Errorf("unsupported file type: %s", filename)
	}
	if size <= 0 {
		return fmt.Errorf("empty upload")
	}
	if maxBytes > 0 && size > maxBytes {
		return fmt.Errorf("upload of %d bytes exceeds limit of %d", size, maxBytes)
	}
	return nil
}

// ValidateText rejects bodies for the synchronous chunking endpoint that
// cannot be processed.
func ValidateText(text string, maxBytes int64) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("text is required")
	}
	if maxBytes > 0 && int64(len(text)) > maxBytes {
		return fmt.Errorf("text of %d bytes exceeds limit of %d", len(text), maxBytes)
	}
	if !utf8.ValidString(text) {
		return fmt.Errorf("text is not valid UTF-8")
	}
	return nil
}

var (
	slugInvalid = regexp.MustCompile(`[^a-z0-9-]`)
	slugDashes  = regexp.MustCompile(`-+`)
)

// Slugify converts a string to a URL/path-safe identifier. Used to
// normalize caller-provided collection and document ids.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = slugInvalid.ReplaceAllString(s, "-")
	s = slugDashes.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > 64 {
		s = strings.Trim(s[:64], "-")
	}
	return s
}
