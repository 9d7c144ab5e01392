package output

import (
	"github.com/jedib0t/go-pretty/v6/table"
)

// TableFormatter renders documents as ASCII tables.
type TableFormatter struct{}

// Format renders the document grid as a table with its sections below.
func (f *TableFormatter) Format(doc *Document) (string, error) {
	if doc == nil {
		return "", nil
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)

	if len(doc.Header) > 0 {
		header := make(table.Row, 0, len(doc.Header))
		for _, cell := range doc.Header {
			header = append(header, cell)
		}
		t.AppendHeader(header)
	}

	for _, row := range doc.Rows {
		cells := make(table.Row, 0, len(row))
		for _, cell := range row {
			cells = append(cells, cell)
		}
		t.AppendRow(cells)
	}

	rendered := t.Render()
	rendered += renderSections(doc.Sections, false)
	return rendered, nil
}
