package parser

import (
	"bufio"
	"io"
	"strings"

	"github.com/BrainDriveAI/document-processing-service/internal/chunking"
)

// TextParser handles plain text files. Elements are left untyped so the
// chunking heuristics decide what each paragraph is.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*Content, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	content := &Content{Title: titleFromFilename(filename)}
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			content.Elements = append(content.Elements, chunking.InputElement{
				Text: current.String(),
			})
			current.Reset()
		}
	}

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		if current.Len() > 0 {
			current.WriteString("\n")
		}
		current.WriteString(line)
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return content, nil
}
