package scenario

import (
	"context"
	"fmt"

	"github.com/roach88/propharness/internal/schema"
)

// SuiteResult contains results from running the scenarios that component
// definitions reference.
type SuiteResult struct {
	TotalComponents int               `json:"total_components"`
	TotalScenarios  int               `json:"total_scenarios"`
	Passed          int               `json:"passed"`
	Failed          int               `json:"failed"`
	Skipped         int               `json:"skipped"` // Definitions without scenarios
	Failures        []ScenarioFailure `json:"failures,omitempty"`
}

// ScenarioFailure represents a scenario that could not be run or failed.
type ScenarioFailure struct {
	Component    string `json:"component"`
	ScenarioPath string `json:"scenario_path"`
	Error        string `json:"error"`
}

// RunDefinitions runs every scenario referenced by defs.
// Scenario paths are resolved relative to specDir.
//
// For each definition with scenarios:
// 1. Resolve scenario file paths
// 2. Load scenarios
// 3. Run scenarios
// 4. Collect and report results
func RunDefinitions(ctx context.Context, defs []*schema.Definition, specDir string, opts ...Option) (*SuiteResult, error) {
	result := &SuiteResult{}

	for _, def := range defs {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		result.TotalComponents++

		paths, err := schema.ExtractScenarios(def, specDir)
		if err != nil {
			result.Failed++
			result.Failures = append(result.Failures, ScenarioFailure{
				Component: def.Name,
				Error:     err.Error(),
			})
			continue
		}

		if len(paths) == 0 {
			result.Skipped++
			continue
		}

		for _, path := range paths {
			result.TotalScenarios++

			if msg := runOne(path, opts); msg != "" {
				result.Failed++
				result.Failures = append(result.Failures, ScenarioFailure{
					Component:    def.Name,
					ScenarioPath: path,
					Error:        msg,
				})
				continue
			}

			result.Passed++
		}
	}

	return result, nil
}

// runOne loads and runs one scenario file and returns a failure message,
// or "" when the scenario passed.
func runOne(path string, opts []Option) string {
	s, err := LoadScenario(path)
	if err != nil {
		return fmt.Sprintf("failed to load scenario: %v", err)
	}

	res, err := Run(s, opts...)
	if err != nil {
		return fmt.Sprintf("scenario execution failed: %v", err)
	}

	if !res.Pass {
		return fmt.Sprintf("scenario assertions failed: %v", res.Errors)
	}
	return ""
}
