package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/propharness/internal/schema"
)

const invalidSpecs = `package specs

component: Bad: kind: "sink"

component: Typo: property: A: validator: "positve_integer"

component: Store: {
	kind: "service"
	relationship: success: "never routed"
}
`

func invalidSpecsDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "bad.cue"), invalidSpecs)
	return dir
}

func TestValidateCommandValid(t *testing.T) {
	cmd := NewValidateCommand(&RootOptions{Format: "text"})
	out, _, err := execute(cmd, filepath.Join(testdataDir, "specs"))

	require.NoError(t, err)
	assert.Contains(t, out, "✓ All specs valid")
}

func TestValidateCommandValidJSON(t *testing.T) {
	cmd := NewValidateCommand(&RootOptions{Format: "json"})
	out, _, err := execute(cmd, filepath.Join(testdataDir, "specs"))
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	assert.Equal(t, []string{"Counter", "JSONWriter", "PutRecord"}, resp.Data.Components)
}

func TestValidateCommandMissingArgs(t *testing.T) {
	cmd := NewValidateCommand(&RootOptions{Format: "text"})
	_, _, err := execute(cmd)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestValidateCommandErrors(t *testing.T) {
	tests := []struct {
		name     string
		dir      func(t *testing.T) string
		code     string
		exitCode int
	}{
		{
			name:     "missing directory",
			dir:      func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope") },
			code:     schema.ErrCodeNotFound,
			exitCode: ExitCommandError,
		},
		{
			name:     "no CUE files",
			dir:      func(t *testing.T) string { return t.TempDir() },
			code:     schema.ErrCodeNoFiles,
			exitCode: ExitCommandError,
		},
		{
			name: "CUE syntax error",
			dir: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, filepath.Join(dir, "broken.cue"), "component: {\n")
				return dir
			},
			code:     schema.ErrCodeLoadFailed,
			exitCode: ExitCommandError,
		},
		{
			name:     "invalid definitions",
			dir:      invalidSpecsDir,
			code:     schema.ErrCodeCompile,
			exitCode: ExitFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewValidateCommand(&RootOptions{Format: "text"})
			out, _, err := execute(cmd, tt.dir(t))

			require.Error(t, err)
			assert.Equal(t, tt.exitCode, GetExitCode(err))
			assert.Contains(t, out, tt.code)
		})
	}
}

func TestValidateCommandReportsEveryProblem(t *testing.T) {
	cmd := NewValidateCommand(&RootOptions{Format: "text"})
	out, _, err := execute(cmd, invalidSpecsDir(t))

	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ Validation failed")
	assert.Contains(t, out, schema.ErrCodeCompile+": load: component.Bad: kind")
	assert.Contains(t, out, schema.ErrUnknownValidator+": component.Typo.property.A.validator")
	assert.Contains(t, out, schema.ErrRelationshipsNotRouted)
	assert.Contains(t, err.Error(), "3 error(s)")
}

func TestValidateCommandErrorsJSON(t *testing.T) {
	cmd := NewValidateCommand(&RootOptions{Format: "json"})
	out, _, err := execute(cmd, invalidSpecsDir(t))
	require.Error(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
		Error  *CLIError        `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.False(t, resp.Data.Valid)
	assert.Equal(t, []string{"Store", "Typo"}, resp.Data.Components)
	require.Len(t, resp.Data.Errors, 3)
	require.NotNil(t, resp.Error)
	assert.Equal(t, resp.Data.Errors[0].Code, resp.Error.Code)
}

func TestValidateCommandVerbose(t *testing.T) {
	cmd := NewValidateCommand(&RootOptions{Format: "json", Verbose: true})
	out, errOut, err := execute(cmd, filepath.Join(testdataDir, "specs"))

	require.NoError(t, err)
	assert.Contains(t, errOut, "Found 1 CUE file(s)")
	assert.Contains(t, errOut, "component PutRecord")
	assert.NotContains(t, out, "Found")
}

func TestValidateSpecsDir(t *testing.T) {
	result, problems, err := ValidateSpecsDir(filepath.Join(testdataDir, "specs"))
	require.NoError(t, err)
	assert.Empty(t, problems)
	assert.Len(t, result.Definitions, 3)

	_, _, err = ValidateSpecsDir(filepath.Join(t.TempDir(), "nope"))
	var loadErr *schema.LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, schema.ErrCodeNotFound, loadErr.Code)
}
