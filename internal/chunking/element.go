package chunking

import (
	"strings"
	"unicode"
)

// ElementKind classifies a unit of source content.
type ElementKind string

const (
	KindHeading   ElementKind = "heading"
	KindParagraph ElementKind = "paragraph"
	KindList      ElementKind = "list"
	KindTable     ElementKind = "table"
)

// Element is a typed, ordered unit of source content prior to chunking.
type Element struct {
	Content string      `json:"content"`
	Kind    ElementKind `json:"kind"`
	Level   int         `json:"level,omitempty"` // heading depth, 1-based
	Page    int         `json:"page,omitempty"`
	BBox    []float64   `json:"bbox,omitempty"` // opaque layout box
}

// Input is the structured-content contract from the layout/extraction
// collaborator. Exactly one of the three shapes is expected per call;
// detection is priority-ordered: Elements, then Sections/Tables, then Text.
type Input struct {
	Text     string         `json:"text,omitempty"`
	Elements []InputElement `json:"elements,omitempty"`
	Sections []InputSection `json:"sections,omitempty"`
	Tables   []InputSection `json:"tables,omitempty"`
}

// InputElement is a pre-typed element from layout-aware extraction.
// Type may be empty, in which case classification heuristics decide.
type InputElement struct {
	Text  string    `json:"text"`
	Type  string    `json:"type,omitempty"`
	Level int       `json:"level,omitempty"`
	Page  int       `json:"page,omitempty"`
	BBox  []float64 `json:"bbox,omitempty"`
}

// InputSection is a section or table from the sections/tables input shape.
type InputSection struct {
	Text    string      `json:"text"`
	Label   string      `json:"label,omitempty"`
	Heading string      `json:"heading,omitempty"`
	Layout  *LayoutInfo `json:"layout_info,omitempty"`
}

// LayoutInfo carries page and bounding-box provenance for a section.
type LayoutInfo struct {
	Page int       `json:"page,omitempty"`
	BBox []float64 `json:"bbox,omitempty"`
}

// FlatText joins the input's content into one string, used by the flat
// (fixed-size, recursive) strategies.
func (in Input) FlatText() string {
	var parts []string
	switch {
	case len(in.Elements) > 0:
		for _, e := range in.Elements {
			if t := strings.TrimSpace(e.Text); t != "" {
				parts = append(parts, t)
			}
		}
	case len(in.Sections) > 0 || len(in.Tables) > 0:
		for _, s := range in.Sections {
			if t := strings.TrimSpace(s.Text); t != "" {
				parts = append(parts, t)
			}
		}
		for _, s := range in.Tables {
			if t := strings.TrimSpace(s.Text); t != "" {
				parts = append(parts, t)
			}
		}
	default:
		return in.Text
	}
	return strings.Join(parts, "\n\n")
}

// headingHeuristicMax bounds the length of text the heading heuristic will
// consider; longer blocks are never headings.
const headingHeuristicMax = 200

// classifyText guesses an element kind from bare text: short upper-case or
// single-line text reads as a heading, bullet or numbered prefixes as a
// list, and everything else as a paragraph.
func classifyText(text string) ElementKind {
	if len(text) < headingHeuristicMax && (isUpperDominant(text) || !strings.Contains(text, "\n")) {
		return KindHeading
	}
	if hasListMarker(text) {
		return KindList
	}
	return KindParagraph
}

// isUpperDominant reports whether the text contains letters and every cased
// letter is upper case.
func isUpperDominant(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			hasLetter = true
			if unicode.IsLower(r) {
				return false
			}
		}
	}
	return hasLetter
}

func hasListMarker(s string) bool {
	for _, marker := range []string{"•", "-", "*"} {
		if strings.HasPrefix(s, marker) {
			return true
		}
	}
	// Numbered list: one or more digits followed by a dot or paren.
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return i > 0 && i < len(s) && (s[i] == '.' || s[i] == ')')
}

// parseKind maps an explicit type string onto an ElementKind, or "" when the
// type is absent or unrecognized and heuristics should decide.
func parseKind(s string) ElementKind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "heading", "header", "title", "section_header":
		return KindHeading
	case "list", "list_item", "bullet", "item":
		return KindList
	case "table":
		return KindTable
	case "paragraph", "text", "body":
		return KindParagraph
	}
	return ""
}

// inferHeadingLevel reads a markdown-style level from leading '#' runes,
// capped at 6. Text without markers defaults to level 1.
func inferHeadingLevel(text string) int {
	n := 0
	for n < len(text) && text[n] == '#' {
		n++
	}
	if n == 0 {
		return 1
	}
	if n > 6 {
		n = 6
	}
	return n
}
