package output

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Format represents an output format.
type Format string

const (
	FormatTable    Format = "table"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// Document is one renderable unit: a titled grid plus optional trailing
// sections. Raw carries the typed value used for JSON output.
type Document struct {
	Title    string
	Header   []string
	Rows     [][]string
	Sections []Section
	Raw      interface{}
}

// Section is a titled list of lines rendered after the grid.
type Section struct {
	Title string
	Lines []string
}

// Formatter renders documents.
type Formatter interface {
	Format(doc *Document) (string, error)
}

// ParseFormat validates and normalizes a format string.
func ParseFormat(value string) (Format, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	switch normalized {
	case "", string(FormatTable):
		return FormatTable, nil
	case string(FormatJSON):
		return FormatJSON, nil
	case string(FormatMarkdown):
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", value)
	}
}

// NewFormatter returns a formatter for the requested format.
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Indent: true}
	case FormatMarkdown:
		return &MarkdownFormatter{}
	default:
		return &TableFormatter{}
	}
}

// Render formats a single document.
func Render(format Format, doc *Document) (string, error) {
	return NewFormatter(format).Format(doc)
}

// RenderAll renders multiple documents using the requested format. JSON
// output collapses to one array of the raw values.
func RenderAll(format Format, docs []*Document) (string, error) {
	if format == FormatJSON {
		values := make([]interface{}, 0, len(docs))
		for _, doc := range docs {
			if doc == nil {
				continue
			}
			values = append(values, doc.jsonValue())
		}
		data, err := json.MarshalIndent(values, "", "  ")
		if err != nil {
			return "", err
		}
		return string(data), nil
	}

	formatter := NewFormatter(format)
	rendered := make([]string, 0, len(docs))
	for _, doc := range docs {
		if doc == nil {
			continue
		}
		value, err := formatter.Format(doc)
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(value) == "" {
			continue
		}
		rendered = append(rendered, value)
	}

	return strings.Join(rendered, "\n\n"), nil
}

func (d *Document) jsonValue() interface{} {
	if d == nil {
		return nil
	}
	if d.Raw != nil {
		return d.Raw
	}
	return d.Rows
}

// renderSections appends the trailing sections in either plain or
// markdown form.
func renderSections(sections []Section, markdown bool) string {
	if len(sections) == 0 {
		return ""
	}

	var sb strings.Builder
	for i, section := range sections {
		if i > 0 {
			sb.WriteString("\n")
		}
		if markdown {
			sb.WriteString(fmt.Sprintf("\n\n### %s\n", section.Title))
			for _, line := range section.Lines {
				sb.WriteString(fmt.Sprintf("- %s\n", line))
			}
		} else {
			sb.WriteString(fmt.Sprintf("\n\n%s:\n", section.Title))
			for _, line := range section.Lines {
				sb.WriteString(fmt.Sprintf("  %s\n", line))
			}
		}
	}
	return sb.String()
}
