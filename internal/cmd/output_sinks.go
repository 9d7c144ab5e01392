package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// outputSink is where a command writes rendered output. An empty path
// and "-" both mean stdout; anything else names a file that is created
// (with parent directories) and truncated.
type outputSink struct {
	io.Writer
	path    string
	closeFn func() error
}

// Close releases the underlying file, if any. Closing a stdout sink is
// a no-op.
func (s *outputSink) Close() error {
	if s.closeFn == nil {
		return nil
	}
	return s.closeFn()
}

func openSink(path string) (*outputSink, error) {
	target := strings.TrimSpace(path)
	if target == "" || target == "-" {
		return &outputSink{Writer: os.Stdout, path: "-"}, nil
	}

	if dir := filepath.Dir(target); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create output directory: %w", err)
		}
	}
	file, err := os.Create(target)
	if err != nil {
		return nil, err
	}
	return &outputSink{Writer: file, path: target, closeFn: file.Close}, nil
}
