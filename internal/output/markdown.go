package output

import (
	"fmt"
	"strings"
)

// MarkdownFormatter renders documents as markdown tables.
type MarkdownFormatter struct{}

// Format renders the document as a markdown section with a table.
func (f *MarkdownFormatter) Format(doc *Document) (string, error) {
	if doc == nil {
		return "", nil
	}

	var sb strings.Builder
	if doc.Title != "" {
		sb.WriteString(fmt.Sprintf("## %s\n\n", escapeMarkdownCell(doc.Title)))
	}

	if len(doc.Header) > 0 {
		cells := make([]string, 0, len(doc.Header))
		separators := make([]string, 0, len(doc.Header))
		for _, cell := range doc.Header {
			cells = append(cells, escapeMarkdownCell(cell))
			width := len(cell)
			if width < 3 {
				width = 3
			}
			separators = append(separators, strings.Repeat("-", width+2))
		}
		sb.WriteString("| " + strings.Join(cells, " | ") + " |\n")
		sb.WriteString("|" + strings.Join(separators, "|") + "|\n")
	}

	for _, row := range doc.Rows {
		cells := make([]string, 0, len(row))
		for _, cell := range row {
			cells = append(cells, escapeMarkdownCell(cell))
		}
		sb.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}

	sb.WriteString(renderSections(doc.Sections, true))
	return sb.String(), nil
}

func escapeMarkdownCell(value string) string {
	return strings.ReplaceAll(value, "|", "\\|")
}
