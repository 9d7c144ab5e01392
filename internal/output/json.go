package output

import "encoding/json"

// JSONFormatter renders documents as JSON.
type JSONFormatter struct {
	Indent bool
}

// Format marshals the document's raw value, falling back to the grid rows.
func (f *JSONFormatter) Format(doc *Document) (string, error) {
	if doc == nil {
		return "", nil
	}

	data, err := f.marshal(doc.jsonValue())
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (f *JSONFormatter) marshal(v any) ([]byte, error) {
	if f.Indent {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}
