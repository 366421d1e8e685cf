package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/BrainDriveAI/document-processing-service/internal/chunking"
)

// csvBatchRows is how many data rows go into one table element.
const csvBatchRows = 20

// CSVParser handles CSV files. Rows are grouped into table elements so the
// chunker sees them as indivisible units.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (*Content, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	content := &Content{Title: titleFromFilename(filename)}
	if len(records) == 0 {
		return content, nil
	}

	// First row is headers.
	headers := records[0]
	dataRows := records[1:]

	for i := 0; i < len(dataRows); i += csvBatchRows {
		end := i + csvBatchRows
		if end > len(dataRows) {
			end = len(dataRows)
		}

		var text strings.Builder
		text.WriteString("Headers: " + strings.Join(headers, ", ") + "\n")
		for _, row := range dataRows[i:end] {
			for j, cell := range row {
				if j < len(headers) {
					text.WriteString(headers[j] + ": " + cell)
				} else {
					text.WriteString(cell)
				}
				if j < len(row)-1 {
					text.WriteString(", ")
				}
			}
			text.WriteString("\n")
		}

		content.Elements = append(content.Elements, chunking.InputElement{
			Text: strings.TrimSpace(text.String()),
			Type: "table",
		})
	}
	return content, nil
}
