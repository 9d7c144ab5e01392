package integration

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// buildWorklaneBinary compiles cmd/worklane into dir and returns the
// binary path. The repo root is derived from go env so the test works
// from any package directory.
func buildWorklaneBinary(t *testing.T, dir string) string {
	t.Helper()

	goModPath, err := exec.Command("go", "env", "GOMOD").Output()
	require.NoError(t, err, "go env GOMOD")
	repoRoot := filepath.Dir(strings.TrimSpace(string(goModPath)))
	require.NotEqual(t, ".", repoRoot, "go env GOMOD returned empty")

	binaryPath := filepath.Join(dir, "worklane")
	build := exec.Command("go", "build", "-o", binaryPath, "./cmd/worklane")
	build.Dir = repoRoot
	build.Env = os.Environ()
	out, err := build.CombinedOutput()
	require.NoError(t, err, "go build: %s", string(out))
	return binaryPath
}

// The embedded app identity must make the binary self-sufficient: copied
// to a directory with no checkout or config around it, version and help
// still work.
func TestStandaloneBinaryRunsOutsideRepo(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("copy/exec test assumes unix file modes")
	}

	binaryPath := buildWorklaneBinary(t, t.TempDir())

	outside := t.TempDir()
	copied := filepath.Join(outside, "worklane")
	data, err := os.ReadFile(binaryPath)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(copied, data, 0o755))

	version := exec.Command(copied, "version")
	version.Dir = outside
	out, err := version.CombinedOutput()
	require.NoError(t, err, "version: %s", string(out))

	help := exec.Command(copied, "--help")
	help.Dir = outside
	out, err = help.CombinedOutput()
	require.NoError(t, err, "--help: %s", string(out))
	require.Contains(t, string(out), "resolve", "help should list the resolve command")
	require.Contains(t, string(out), "time-entries", "help should list resource commands")
}
