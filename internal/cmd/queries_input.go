package cmd

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// resolveQueries merges positional queries with --file input. The two
// sources are mutually exclusive.
func resolveQueries(positional []string, queriesFile string) ([]string, error) {
	trimmed := strings.TrimSpace(queriesFile)
	if trimmed != "" {
		if len(positional) > 0 {
			return nil, fmt.Errorf("cannot combine positional queries with --file")
		}
		return readQueriesFile(trimmed)
	}

	queries := make([]string, 0, len(positional))
	for _, raw := range positional {
		query := strings.TrimSpace(raw)
		if query == "" {
			continue
		}
		queries = append(queries, query)
	}
	if len(queries) == 0 {
		return nil, fmt.Errorf("at least one query is required")
	}
	return queries, nil
}

// readQueriesFile loads queries from a file or stdin ("-"). A YAML list
// ("- bob@example.com") is accepted; anything else is read line by line,
// skipping blanks and #-comments.
func readQueriesFile(path string) ([]string, error) {
	var data []byte
	if path == "-" {
		raw, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, err
		}
		data = raw
	} else {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		data = raw
	}

	if queries, ok := decodeQueryList(data); ok {
		return queries, nil
	}

	queries := make([]string, 0)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}
		queries = append(queries, raw)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if len(queries) == 0 {
		return nil, fmt.Errorf("no queries found")
	}
	return queries, nil
}

func decodeQueryList(data []byte) ([]string, bool) {
	var list []string
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, false
	}

	queries := make([]string, 0, len(list))
	for _, item := range list {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		queries = append(queries, item)
	}
	if len(queries) == 0 {
		return nil, false
	}
	return queries, true
}
