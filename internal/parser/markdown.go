package parser

import (
	"bytes"
	"io"
	"strings"

	"github.com/BrainDriveAI/document-processing-service/internal/chunking"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files using goldmark.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*Content, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	reader := text.NewReader(src)
	doc := md.Parser().Parse(reader)

	content := &Content{Title: titleFromFilename(filename)}

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			title := string(node.Text(src))
			if title == "" {
				continue
			}
			content.Elements = append(content.Elements, chunking.InputElement{
				Text:  title,
				Type:  "heading",
				Level: node.Level,
			})
			// First top-level heading doubles as the document title.
			if node.Level == 1 && content.Title == titleFromFilename(filename) {
				content.Title = title
			}

		case *ast.List:
			if items := listItems(node, src); items != "" {
				content.Elements = append(content.Elements, chunking.InputElement{
					Text: items,
					Type: "list",
				})
			}

		default:
			if t := extractText(n, src); t != "" {
				content.Elements = append(content.Elements, chunking.InputElement{
					Text: t,
					Type: "paragraph",
				})
			}
		}
	}
	return content, nil
}

// listItems renders a goldmark list as one bullet-per-line block.
func listItems(list *ast.List, src []byte) string {
	var buf bytes.Buffer
	for item := list.FirstChild(); item != nil; item = item.NextSibling() {
		if t := extractText(item, src); t != "" {
			if buf.Len() > 0 {
				buf.WriteByte('\n')
			}
			buf.WriteString("- ")
			buf.WriteString(t)
		}
	}
	return buf.String()
}

// extractText gets the text content of a goldmark AST node.
func extractText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	if n.Type() == ast.TypeBlock {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(src))
		}
	}
	// Also handle inline children.
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte('\n')
			}
		} else {
			// Recurse for nested inlines.
			buf.WriteString(extractText(c, src))
		}
	}
	return strings.TrimSpace(buf.String())
}
