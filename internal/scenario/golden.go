package scenario

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// TraceSnapshot captures the complete trace for a scenario execution.
type TraceSnapshot struct {
	ScenarioName string       `json:"scenario_name"`
	HarnessID    string       `json:"harness_id"`
	Pass         bool         `json:"pass"`
	Trace        []TraceEvent `json:"trace"`
}

func (s TraceSnapshot) marshal() ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// Snapshot renders the golden-file form of a scenario run.
func Snapshot(s *Scenario, r *Result) ([]byte, error) {
	return TraceSnapshot{
		ScenarioName: s.Name,
		HarnessID:    harnessID(s),
		Pass:         r.Pass,
		Trace:        r.Trace,
	}.marshal()
}

// RunWithGolden executes a scenario and compares the trace against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden unless
// opts override the fixture directory.
//
// To regenerate golden files, run:
//
//	go test ./... -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if trace doesn't match golden file.
func RunWithGolden(t testing.TB, s *Scenario, opts ...goldie.Option) error {
	t.Helper()

	result, err := Run(s)
	if err != nil {
		return err
	}

	data, err := Snapshot(s, result)
	if err != nil {
		return err
	}

	newGoldie(t, opts).Assert(t, s.Name, data)
	return nil
}

// AssertGolden compares the given result's trace against a golden file
// without re-running the scenario.
func AssertGolden(t testing.TB, scenarioName string, result *Result, opts ...goldie.Option) error {
	t.Helper()

	return assertSnapshot(t, TraceSnapshot{
		ScenarioName: scenarioName,
		Pass:         result.Pass,
		Trace:        result.Trace,
	}, opts)
}

func assertSnapshot(t testing.TB, snapshot TraceSnapshot, opts []goldie.Option) error {
	t.Helper()

	data, err := snapshot.marshal()
	if err != nil {
		return err
	}

	g := newGoldie(t, opts)
	g.Assert(t, snapshot.ScenarioName, data)
	return nil
}

// updateGolden writes the snapshot for a result as the new golden file.
func updateGolden(t testing.TB, snapshot TraceSnapshot, opts []goldie.Option) error {
	t.Helper()

	data, err := snapshot.marshal()
	if err != nil {
		return err
	}
	return newGoldie(t, opts).Update(t, snapshot.ScenarioName, data)
}

func newGoldie(t testing.TB, opts []goldie.Option) *goldie.Goldie {
	all := append([]goldie.Option{
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	}, opts...)
	return goldie.New(t, all...)
}
