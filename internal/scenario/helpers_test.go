package scenario

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// testdataDir is the repository-level fixture directory.
const testdataDir = "../../testdata"

// specsDir returns the absolute path of the shared CUE fixtures.
func specsDir(t *testing.T) string {
	t.Helper()
	dir, err := filepath.Abs(filepath.Join(testdataDir, "specs"))
	require.NoError(t, err)
	return dir
}

// writeScenario writes a scenario file into a temp directory. The string
// SPECS in content is replaced with the shared fixture specs directory.
func writeScenario(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "scenario.yaml")
	content = strings.ReplaceAll(content, "SPECS", specsDir(t))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// loadInline writes and loads a scenario.
func loadInline(t *testing.T, content string) *Scenario {
	t.Helper()
	s, err := LoadScenario(writeScenario(t, content))
	require.NoError(t, err)
	return s
}

func boolPtr(b bool) *bool { return &b }

func intPtr(i int) *int { return &i }

func strPtr(s string) *string { return &s }
