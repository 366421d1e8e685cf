package parser

import (
	"strings"
	"testing"
)

func TestMarkdownParser_HeadingsAndLevels(t *testing.T) {
	input := `# Title

Intro text.

## Section A

Section A content.

### Subsection A1

Subsection A1 content.

## Section B

Section B content.
`
	p := &MarkdownParser{}
	content, err := p.Parse(strings.NewReader(input), "doc.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The h1 heading promotes itself to document title.
	if content.Title != "Title" {
		t.Errorf("expected title %q, got %q", "Title", content.Title)
	}

	type want struct {
		text  string
		typ   string
		level int
	}
	wants := []want{
		{"Title", "heading", 1},
		{"Intro text.", "paragraph", 0},
		{"Section A", "heading", 2},
		{"Section A content.", "paragraph", 0},
		{"Subsection A1", "heading", 3},
		{"Subsection A1 content.", "paragraph", 0},
		{"Section B", "heading", 2},
		{"Section B content.", "paragraph", 0},
	}
	if len(content.Elements) != len(wants) {
		t.Fatalf("got %d elements, want %d", len(content.Elements), len(wants))
	}
	for i, w := range wants {
		el := content.Elements[i]
		if el.Text != w.text || el.Type != w.typ || el.Level != w.level {
			t.Errorf("element %d = {%q %q %d}, want {%q %q %d}",
				i, el.Text, el.Type, el.Level, w.text, w.typ, w.level)
		}
	}
}

func TestMarkdownParser_NoHeadings(t *testing.T) {
	input := `Just some plain text.

Another paragraph here.`

	p := &MarkdownParser{}
	content, err := p.Parse(strings.NewReader(input), "plain.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if content.Title != "plain" {
		t.Errorf("expected title %q, got %q", "plain", content.Title)
	}
	if len(content.Elements) != 2 {
		t.Fatalf("got %d elements, want 2", len(content.Elements))
	}
	for i, el := range content.Elements {
		if el.Type != "paragraph" {
			t.Errorf("element %d type = %q, want paragraph", i, el.Type)
		}
	}
}

func TestMarkdownParser_Lists(t *testing.T) {
	input := "Steps:\n\n- first\n- second\n- third\n"
	p := &MarkdownParser{}
	content, err := p.Parse(strings.NewReader(input), "steps.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(content.Elements) != 2 {
		t.Fatalf("got %d elements, want 2", len(content.Elements))
	}
	list := content.Elements[1]
	if list.Type != "list" {
		t.Fatalf("element 1 type = %q, want list", list.Type)
	}
	if !strings.Contains(list.Text, "- first") || !strings.Contains(list.Text, "- third") {
		t.Errorf("list text = %q", list.Text)
	}
}

func TestMarkdownParser_CodeBlocksKept(t *testing.T) {
	input := "# API Reference\n\nSome intro.\n\n```\nGET /api/users\nPOST /api/users\n```\n\nMore text after code.\n"

	p := &MarkdownParser{}
	content, err := p.Parse(strings.NewReader(input), "api.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var all []string
	for _, el := range content.Elements {
		all = append(all, el.Text)
	}
	joined := strings.Join(all, "\n")
	if !strings.Contains(joined, "GET /api/users") {
		t.Errorf("code block content lost: %q", joined)
	}
	if !strings.Contains(joined, "More text after code.") {
		t.Errorf("post-code text lost: %q", joined)
	}
}

func TestMarkdownParser_EmptyInput(t *testing.T) {
	p := &MarkdownParser{}
	content, err := p.Parse(strings.NewReader(""), "empty.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(content.Elements) != 0 {
		t.Errorf("got %d elements for empty input, want 0", len(content.Elements))
	}
}

func TestMarkdownParser_TitleStripping(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"readme.md", "readme"},
		{"notes.markdown", "notes"},
		{"plain.md", "plain"},
	}
	p := &MarkdownParser{}
	for _, tt := range tests {
		content, err := p.Parse(strings.NewReader("text"), tt.filename)
		if err != nil {
			t.Fatalf("unexpected error for %s: %v", tt.filename, err)
		}
		if content.Title != tt.want {
			t.Errorf("filename=%q: expected title %q, got %q", tt.filename, tt.want, content.Title)
		}
	}
}

func TestForFile_MarkdownAliases(t *testing.T) {
	for _, name := range []string{"doc.md", "doc.markdown", "DOC.MARKDOWN"} {
		p, err := ForFile(name)
		if err != nil {
			t.Fatalf("ForFile(%q): %v", name, err)
		}
		if _, ok := p.(*MarkdownParser); !ok {
			t.Errorf("ForFile(%q): expected markdown parser, got %T", name, p)
		}
		if !IsSupportedExtension(name) {
			t.Errorf("expected %q to be a supported extension", name)
		}
	}
}
