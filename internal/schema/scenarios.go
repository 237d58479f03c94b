package schema

import (
	"fmt"
	"os"
	"path/filepath"
)

// ScenarioNotFoundError is returned when a referenced scenario file doesn't exist.
type ScenarioNotFoundError struct {
	Component    string
	ScenarioPath string
	ResolvedPath string
}

// Error implements the error interface.
func (e *ScenarioNotFoundError) Error() string {
	return fmt.Sprintf(
		"component %q references scenario file %q which does not exist (resolved to: %s)",
		e.Component,
		e.ScenarioPath,
		e.ResolvedPath,
	)
}

// ExtractScenarios resolves the scenario files a definition references.
// Relative paths are resolved from specDir. The first missing file is
// reported as a *ScenarioNotFoundError.
func ExtractScenarios(def *Definition, specDir string) ([]string, error) {
	paths := []string{}
	for _, ref := range def.Scenarios {
		path := ref
		if !filepath.IsAbs(path) {
			path = filepath.Join(specDir, path)
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, &ScenarioNotFoundError{
				Component:    def.Name,
				ScenarioPath: ref,
				ResolvedPath: path,
			}
		}
		paths = append(paths, path)
	}
	return paths, nil
}
