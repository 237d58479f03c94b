package cli

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/propharness/internal/scenario"
	"github.com/roach88/propharness/internal/schema"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Specs  string // definitions whose referenced scenarios also run
	Update bool   // regenerate golden files
	Filter string // scenario filter (glob pattern)
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name   string   `json:"name"`
	Path   string   `json:"path"`
	Pass   bool     `json:"pass"`
	Errors []string `json:"errors,omitempty"`
}

// TestResult holds the overall test result.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test [path...]",
		Short: "Run scenario files",
		Long: `Run YAML scenarios against their component definitions.

Each path is a scenario file or a directory searched for *.yaml files.
With --specs (or specs_dir in the config file), scenarios referenced by
the definitions in that directory run too.

When <dir>/golden/<name>.golden exists next to a scenario, its trace must
match it byte for byte. --update rewrites the golden files.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, etc.)

Examples:
  propharness test ./scenarios
  propharness test ./scenarios/put_record.yaml --update
  propharness test --specs ./specs
  propharness test ./scenarios --filter "put_*" --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Specs, "specs", "", "also run scenarios referenced by definitions in this directory")
	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")

	return cmd
}

func runTests(opts *TestOptions, paths []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	specsDir := opts.Specs
	if specsDir == "" {
		specsDir = opts.SpecsDir
	}
	if len(paths) == 0 && specsDir == "" {
		return commandError(formatter, ErrCodeScenarioSearch, "no scenario paths given and no specs directory configured")
	}

	files, err := collectScenarioFiles(paths, opts.Filter)
	if err != nil {
		return commandError(formatter, ErrCodeScenarioSearch, err.Error())
	}

	if specsDir != "" {
		referenced, err := referencedScenarios(specsDir, opts.Filter)
		if err != nil {
			var loadErr *schema.LoadError
			if errors.As(err, &loadErr) {
				return commandError(formatter, loadErr.Code, loadErr.Message)
			}
			return commandError(formatter, ErrCodeScenarioSearch, err.Error())
		}
		files = appendUnique(files, referenced...)
	}

	if len(files) == 0 {
		if opts.Format == "json" {
			return outputTestJSON(formatter, TestResult{Scenarios: []ScenarioResult{}})
		}
		fmt.Fprintln(formatter.Writer, "No scenarios found.")
		return nil
	}

	logger := opts.Logger(cmd.ErrOrStderr())
	result := TestResult{
		Scenarios: make([]ScenarioResult, 0, len(files)),
		Total:     len(files),
	}

	for _, file := range files {
		formatter.VerboseLog("Running %s", file)
		scenResult := runScenario(file, opts.Update, logger)
		result.Scenarios = append(result.Scenarios, scenResult)

		if scenResult.Pass {
			result.Passed++
		} else {
			result.Failed++
		}

		if opts.Format != "json" {
			writeScenarioResult(formatter, scenResult, opts.Update)
		}
	}

	if opts.Format == "json" {
		return outputTestJSON(formatter, result)
	}
	return outputTestText(formatter, result)
}

// collectScenarioFiles expands paths into scenario files. Directories are
// searched recursively for .yaml and .yml files; golden directories are
// skipped. Files named explicitly are never filtered.
func collectScenarioFiles(paths []string, filter string) ([]string, error) {
	var files []string

	for _, path := range paths {
		info, err := os.Stat(path)
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("scenario path not found: %s", path)
		}
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			files = appendUnique(files, path)
			continue
		}

		err = filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				if info.Name() == "golden" {
					return filepath.SkipDir
				}
				return nil
			}
			if !isScenarioFile(p) {
				return nil
			}
			ok, err := matchesFilter(p, filter)
			if err != nil || !ok {
				return err
			}
			files = appendUnique(files, p)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return files, nil
}

// referencedScenarios returns every scenario file referenced by the
// definitions in specsDir.
func referencedScenarios(specsDir, filter string) ([]string, error) {
	loaded, loadErrors := schema.Load(specsDir, schema.LoadModeFailFast)
	if len(loadErrors) > 0 {
		return nil, loadErrors[0]
	}

	var files []string
	for _, def := range loaded.Definitions {
		paths, err := schema.ExtractScenarios(def, specsDir)
		if err != nil {
			return nil, err
		}
		for _, p := range paths {
			ok, err := matchesFilter(p, filter)
			if err != nil {
				return nil, err
			}
			if ok {
				files = appendUnique(files, p)
			}
		}
	}
	return files, nil
}

func isScenarioFile(path string) bool {
	ext := filepath.Ext(path)
	return ext == ".yaml" || ext == ".yml"
}

func matchesFilter(path, filter string) (bool, error) {
	if filter == "" {
		return true, nil
	}
	matched, err := filepath.Match(filter, scenarioBaseName(path))
	if err != nil {
		return false, fmt.Errorf("invalid filter pattern: %w", err)
	}
	return matched, nil
}

// appendUnique appends paths not already present, comparing cleaned
// absolute paths.
func appendUnique(files []string, paths ...string) []string {
	seen := make(map[string]bool, len(files))
	for _, f := range files {
		seen[absPath(f)] = true
	}
	for _, p := range paths {
		key := absPath(p)
		if seen[key] {
			continue
		}
		seen[key] = true
		files = append(files, p)
	}
	return files
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}

func scenarioBaseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// runScenario executes a single scenario file and compares or rewrites its
// golden trace.
func runScenario(path string, update bool, logger *slog.Logger) ScenarioResult {
	res := ScenarioResult{Name: scenarioBaseName(path), Path: path}
	fail := func(format string, args ...any) ScenarioResult {
		res.Pass = false
		res.Errors = append(res.Errors, fmt.Sprintf(format, args...))
		return res
	}

	s, err := scenario.LoadScenario(path)
	if err != nil {
		return fail("failed to load scenario: %v", err)
	}
	res.Name = s.Name

	result, err := scenario.Run(s, scenario.WithLogger(logger))
	if err != nil {
		return fail("execution failed: %v", err)
	}

	snapshot, err := scenario.Snapshot(s, result)
	if err != nil {
		return fail("failed to snapshot trace: %v", err)
	}

	goldenPath := goldenFilePath(path)
	if update {
		if err := writeGolden(goldenPath, snapshot); err != nil {
			return fail("failed to update golden file: %v", err)
		}
	} else if want, err := os.ReadFile(goldenPath); err == nil {
		if !bytes.Equal(want, snapshot) {
			res.Errors = append(res.Errors, "trace does not match golden file (run with --update to regenerate)")
		}
	} else if !os.IsNotExist(err) {
		return fail("failed to read golden file: %v", err)
	}

	res.Errors = append(res.Errors, result.Errors...)
	res.Pass = len(res.Errors) == 0
	return res
}

// goldenFilePath returns the path to the golden file for a scenario.
func goldenFilePath(scenarioFile string) string {
	return filepath.Join(filepath.Dir(scenarioFile), "golden", scenarioBaseName(scenarioFile)+".golden")
}

func writeGolden(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create golden directory: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

func writeScenarioResult(formatter *OutputFormatter, r ScenarioResult, update bool) {
	w := formatter.Writer
	if r.Pass {
		if update {
			fmt.Fprintf(w, "✓ %s (golden updated)\n", r.Name)
		} else {
			fmt.Fprintf(w, "✓ %s\n", r.Name)
		}
		return
	}

	fmt.Fprintf(w, "✗ %s\n", r.Name)
	for _, e := range r.Errors {
		for _, line := range strings.Split(strings.TrimRight(e, "\n"), "\n") {
			fmt.Fprintf(w, "  %s\n", line)
		}
	}
}

// outputTestJSON outputs the test result as JSON.
func outputTestJSON(formatter *OutputFormatter, result TestResult) error {
	response := CLIResponse{Status: "ok", Data: result}
	if result.Failed > 0 {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    "E_TEST_FAILED",
			Message: fmt.Sprintf("%d scenario(s) failed", result.Failed),
		}
	}

	if err := formatter.Encode(response); err != nil {
		return err
	}

	if result.Failed > 0 {
		// Test failures = exit code 1
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}
	return nil
}

// outputTestText outputs the test summary as text.
func outputTestText(formatter *OutputFormatter, result TestResult) error {
	w := formatter.Writer

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Test Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)

	if result.Failed > 0 {
		// Test failures = exit code 1
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}

	fmt.Fprintln(w, "✓ All scenarios passed")
	return nil
}
