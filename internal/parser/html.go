package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/BrainDriveAI/document-processing-service/internal/chunking"
	"golang.org/x/net/html"
)

// HTMLParser handles HTML files.
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*Content, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	content := &Content{Title: titleFromFilename(filename)}
	if title := findTitle(doc); title != "" {
		content.Title = title
	}

	add := func(text, typ string, level int) {
		if text = strings.TrimSpace(text); text != "" {
			content.Elements = append(content.Elements, chunking.InputElement{
				Text:  text,
				Type:  typ,
				Level: level,
			})
		}
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if level := headingLevel(n.Data); level > 0 {
				add(textContent(n), "heading", level)
				return
			}
			switch n.Data {
			case "script", "style", "nav", "footer", "header":
				return
			case "table":
				add(tableText(n), "table", 0)
				return
			case "ul", "ol":
				add(listText(n), "list", 0)
				return
			case "p", "blockquote":
				add(textContent(n), "paragraph", 0)
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	// Walk <body> when present, the whole document otherwise.
	if body := findBody(doc); body != nil {
		walk(body)
	} else {
		walk(doc)
	}
	return content, nil
}

// tableText renders a table as one pipe-separated row per line.
func tableText(n *html.Node) string {
	var rows []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" {
			var cells []string
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
					cells = append(cells, textContent(c))
				}
			}
			if len(cells) > 0 {
				rows = append(rows, strings.Join(cells, " | "))
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(rows, "\n")
}

// listText renders list items as one bullet per line.
func listText(n *html.Node) string {
	var items []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "li" {
			if t := textContent(n); t != "" {
				items = append(items, "- "+t)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(items, "\n")
}

func headingLevel(tag string) int {
	switch tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	case "h5":
		return 5
	case "h6":
		return 6
	}
	return 0
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		return textContent(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
