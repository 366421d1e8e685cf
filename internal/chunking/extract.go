package chunking

import (
	"fmt"
	"log/slog"
	"strings"
)

// Extractor normalizes heterogeneous structured input into an ordered
// sequence of typed elements, dropping those below the minimum size for the
// active measure.
type Extractor struct {
	measure    SizeMeasure
	minElement int
	log        *slog.Logger
}

func NewExtractor(measure SizeMeasure, minElement int, log *slog.Logger) *Extractor {
	if log == nil {
		log = slog.Default()
	}
	return &Extractor{measure: measure, minElement: minElement, log: log}
}

// Extract maps the input onto elements, trying shapes in priority order:
// explicit elements, then sections/tables, then plain text. The second
// return value counts elements dropped by the size filter.
func (e *Extractor) Extract(in Input) ([]Element, int, error) {
	var elements []Element
	switch {
	case len(in.Elements) > 0:
		for _, ie := range in.Elements {
			elements = append(elements, e.fromInputElement(ie))
		}
	case len(in.Sections) > 0 || len(in.Tables) > 0:
		for _, s := range in.Sections {
			elements = append(elements, e.fromSection(s, false))
		}
		for _, t := range in.Tables {
			// Tables keep their kind regardless of content heuristics.
			elements = append(elements, e.fromSection(t, true))
		}
	case strings.TrimSpace(in.Text) != "":
		elements = e.fromText(in.Text)
	default:
		return nil, 0, fmt.Errorf("%w: expected text, elements, or sections", ErrBadInput)
	}

	kept := elements[:0]
	dropped := 0
	for _, el := range elements {
		if el.Content == "" || (e.minElement > 0 && e.measure.Size(el.Content) < e.minElement) {
			dropped++
			continue
		}
		kept = append(kept, el)
	}
	if len(kept) == 0 {
		return nil, dropped, fmt.Errorf("%w: %d elements filtered", ErrEmptyInput, dropped)
	}
	if dropped > 0 {
		e.log.Debug("dropped undersized elements", "dropped", dropped, "kept", len(kept))
	}
	return kept, dropped, nil
}

func (e *Extractor) fromInputElement(ie InputElement) Element {
	content := strings.TrimSpace(ie.Text)
	kind := parseKind(ie.Type)
	if kind == "" {
		kind = classifyText(content)
	}
	level := ie.Level
	if kind == KindHeading && level <= 0 {
		level = inferHeadingLevel(content)
	}
	page := ie.Page
	if page <= 0 {
		page = 1
	}
	return Element{Content: content, Kind: kind, Level: level, Page: page, BBox: ie.BBox}
}

func (e *Extractor) fromSection(s InputSection, table bool) Element {
	content := strings.TrimSpace(s.Text)
	el := Element{Content: content, Kind: KindTable, Page: 1}
	if s.Layout != nil {
		if s.Layout.Page > 0 {
			el.Page = s.Layout.Page
		}
		el.BBox = s.Layout.BBox
	}
	if table {
		return el
	}

	el.Kind = sectionKind(s.Label, content)
	if el.Kind == KindHeading {
		el.Level = sectionHeadingLevel(s)
	}
	return el
}

func (e *Extractor) fromText(text string) []Element {
	var elements []Element
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		el := Element{Content: para, Kind: classifyText(para), Page: 1}
		if el.Kind == KindHeading {
			el.Level = inferHeadingLevel(para)
		}
		elements = append(elements, el)
	}
	return elements
}

// sectionKind prefers the layout label over content heuristics.
func sectionKind(label, content string) ElementKind {
	l := strings.ToLower(label)
	for _, w := range []string{"title", "heading", "header"} {
		if strings.Contains(l, w) {
			return KindHeading
		}
	}
	for _, w := range []string{"list", "item", "bullet"} {
		if strings.Contains(l, w) {
			return KindList
		}
	}
	return classifyText(content)
}

// sectionHeadingLevel reads an explicit level from the label ("h2",
// "heading3"), then from markdown markers in the heading text, then
// defaults to 1.
func sectionHeadingLevel(s InputSection) int {
	l := strings.ToLower(s.Label)
	for i := 1; i <= 6; i++ {
		if strings.Contains(l, fmt.Sprintf("h%d", i)) || strings.Contains(l, fmt.Sprintf("heading%d", i)) {
			return i
		}
	}
	if h := strings.TrimSpace(s.Heading); strings.HasPrefix(h, "#") {
		return inferHeadingLevel(h)
	}
	return 1
}
