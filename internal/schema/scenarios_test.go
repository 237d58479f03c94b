package schema

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractScenarios(t *testing.T) {
	def := &Definition{Name: "PutRecord", Scenarios: []string{"../scenarios/put_record.yaml"}}

	paths, err := ExtractScenarios(def, fixtureSpecs)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(fixtureSpecs, "../scenarios/put_record.yaml")}, paths)
}

func TestExtractScenariosNone(t *testing.T) {
	paths, err := ExtractScenarios(&Definition{Name: "Counter"}, fixtureSpecs)
	require.NoError(t, err)
	assert.NotNil(t, paths)
	assert.Empty(t, paths)
}

func TestExtractScenariosAbsolute(t *testing.T) {
	abs, err := filepath.Abs(filepath.Join(fixtureSpecs, "../scenarios/counter_invalid.yaml"))
	require.NoError(t, err)

	paths, err := ExtractScenarios(&Definition{Name: "Counter", Scenarios: []string{abs}}, "/elsewhere")
	require.NoError(t, err)
	assert.Equal(t, []string{abs}, paths)
}

func TestExtractScenariosMissing(t *testing.T) {
	def := &Definition{Name: "PutRecord", Scenarios: []string{"missing.yaml"}}

	_, err := ExtractScenarios(def, fixtureSpecs)
	require.Error(t, err)

	var notFound *ScenarioNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "PutRecord", notFound.Component)
	assert.Equal(t, "missing.yaml", notFound.ScenarioPath)
	assert.Equal(t, filepath.Join(fixtureSpecs, "missing.yaml"), notFound.ResolvedPath)
	assert.Contains(t, err.Error(), `component "PutRecord" references scenario file "missing.yaml"`)
}
