package scenario

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/propharness/internal/journal"
)

// Scenario describes one configuration session against a component:
// which definitions to load, which services to register, which properties
// to set or remove and what must hold afterwards.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario checks.
	Description string `yaml:"description"`

	// Specs lists directories of CUE component definitions.
	// Paths are relative to the scenario file location.
	Specs []string `yaml:"specs"`

	// Component is the definition name of the component under test.
	Component string `yaml:"component"`

	// HarnessID fixes the harness identifier used as the journal key.
	// Defaults to "scenario-<name>".
	HarnessID string `yaml:"harness_id,omitempty"`

	// ExpressionValidation enables expression validation on the harness.
	ExpressionValidation bool `yaml:"expression_validation,omitempty"`

	// AnnotationData is set on the harness before any step runs.
	AnnotationData *string `yaml:"annotation_data,omitempty"`

	// Services are registered, in order, before any step runs.
	Services []ServiceSetup `yaml:"services,omitempty"`

	// Steps are executed in order.
	Steps []Step `yaml:"steps"`

	// Assertions are evaluated after the last step.
	Assertions []Assertion `yaml:"assertions"`
}

// ServiceSetup registers one controller service.
type ServiceSetup struct {
	ID             string            `yaml:"id"`
	Component      string            `yaml:"component"`
	Properties     map[string]string `yaml:"properties,omitempty"`
	AnnotationData *string           `yaml:"annotation_data,omitempty"`

	// Enabled services are enabled after every service is registered.
	// Enabling validates the service; an invalid service fails the run.
	Enabled bool `yaml:"enabled,omitempty"`
}

// Step is one action. Exactly one of the action fields must be set.
type Step struct {
	Set         *SetStep  `yaml:"set,omitempty"`
	Remove      string    `yaml:"remove,omitempty"`
	Unavailable *[]string `yaml:"unavailable,omitempty"`
	Validate    bool      `yaml:"validate,omitempty"`
	Annotate    *string   `yaml:"annotate,omitempty"`
	Enable      string    `yaml:"enable,omitempty"`
	Disable     string    `yaml:"disable,omitempty"`

	// Expect checks the outcome of the step. Optional.
	Expect *StepExpect `yaml:"expect,omitempty"`
}

// SetStep sets one property.
type SetStep struct {
	Property string `yaml:"property"`
	Value    string `yaml:"value"`
}

// StepExpect describes the expected outcome of a step.
type StepExpect struct {
	// Valid is the expected validity of a set or validate step.
	Valid *bool `yaml:"valid,omitempty"`

	// Removed is the expected result of a remove step.
	Removed *bool `yaml:"removed,omitempty"`

	// Explanation must appear in the set step's validation explanation.
	Explanation string `yaml:"explanation,omitempty"`

	// Error must appear in the error returned by the step.
	Error string `yaml:"error,omitempty"`
}

// Step kinds.
const (
	StepSet         = "set"
	StepRemove      = "remove"
	StepUnavailable = "unavailable"
	StepValidate    = "validate"
	StepAnnotate    = "annotate"
	StepEnable      = "enable"
	StepDisable     = "disable"
)

// Kind returns the kind of action the step performs, or "" when it
// declares none.
func (s Step) Kind() string {
	switch {
	case s.Set != nil:
		return StepSet
	case s.Remove != "":
		return StepRemove
	case s.Unavailable != nil:
		return StepUnavailable
	case s.Validate:
		return StepValidate
	case s.Annotate != nil:
		return StepAnnotate
	case s.Enable != "":
		return StepEnable
	case s.Disable != "":
		return StepDisable
	}
	return ""
}

func (s Step) actionCount() int {
	n := 0
	for _, set := range []bool{
		s.Set != nil, s.Remove != "", s.Unavailable != nil, s.Validate,
		s.Annotate != nil, s.Enable != "", s.Disable != "",
	} {
		if set {
			n++
		}
	}
	return n
}

// Assertion checks the state of the harness after the last step.
type Assertion struct {
	// Type specifies the assertion type:
	// - "valid": the whole configuration is (or is not) valid
	// - "violations": failing results by count and/or subject
	// - "property": the effective value of one property
	// - "relationships": the available relationship set
	// - "notifications": change notifications received for one property
	// - "journal": query a journal table and verify expected values
	Type string `yaml:"type"`

	// Valid is the expected validity (used by valid).
	Valid *bool `yaml:"valid,omitempty"`

	// Count is the expected number of violations, notifications or
	// matching journal rows.
	Count *int `yaml:"count,omitempty"`

	// Subjects are the expected violation subjects in order (used by violations).
	Subjects []string `yaml:"subjects,omitempty"`

	// Property names the property (used by property and notifications).
	Property string `yaml:"property,omitempty"`

	// Value is the expected effective value (used by property).
	Value *string `yaml:"value,omitempty"`

	// Unset expects the property to have no effective value (used by property).
	Unset bool `yaml:"unset,omitempty"`

	// Relationships is the expected available set (used by relationships).
	Relationships []string `yaml:"relationships,omitempty"`

	// Table is the journal table name (used by journal).
	Table string `yaml:"table,omitempty"`

	// Where specifies query filters (used by journal).
	// All fields must match exactly.
	Where map[string]any `yaml:"where,omitempty"`

	// Expect contains expected column values (used by journal).
	// Subset match - only specified columns are validated.
	Expect map[string]any `yaml:"expect,omitempty"`
}

// Assertion type constants.
const (
	AssertValid         = "valid"
	AssertViolations    = "violations"
	AssertProperty      = "property"
	AssertRelationships = "relationships"
	AssertNotifications = "notifications"
	AssertJournal       = "journal"
)

// LoadScenario reads and parses a scenario YAML file, resolving spec paths
// relative to the file's directory.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving spec paths relative to the provided base path.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict decoding catches typos like "assertion:" vs "assertions:"
	var s Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	for i, specPath := range s.Specs {
		if !filepath.IsAbs(specPath) && basePath != "" {
			s.Specs[i] = filepath.Join(basePath, specPath)
		}
	}

	if err := validateScenario(&s); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &s, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Component == "" {
		return fmt.Errorf("component is required")
	}

	if len(s.Specs) == 0 {
		return fmt.Errorf("specs list is required and must be non-empty")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for _, specPath := range s.Specs {
		if _, err := os.Stat(specPath); os.IsNotExist(err) {
			return fmt.Errorf("specs directory not found: %s", specPath)
		}
	}

	ids := make(map[string]bool, len(s.Services))
	for i, svc := range s.Services {
		if svc.ID == "" {
			return fmt.Errorf("services[%d]: id is required", i)
		}
		if svc.Component == "" {
			return fmt.Errorf("services[%d]: component is required", i)
		}
		if ids[svc.ID] {
			return fmt.Errorf("services[%d]: duplicate id %q", i, svc.ID)
		}
		ids[svc.ID] = true
	}

	for i, step := range s.Steps {
		switch step.actionCount() {
		case 0:
			return fmt.Errorf("steps[%d]: one of set, remove, unavailable, validate, annotate, enable or disable is required", i)
		case 1:
		default:
			return fmt.Errorf("steps[%d]: only one action is allowed per step", i)
		}
		if step.Set != nil && step.Set.Property == "" {
			return fmt.Errorf("steps[%d].set: property is required", i)
		}
		if step.Expect != nil {
			if step.Expect.Valid != nil && step.Kind() != StepSet && step.Kind() != StepValidate {
				return fmt.Errorf("steps[%d].expect: valid only applies to set and validate steps", i)
			}
			if step.Expect.Removed != nil && step.Kind() != StepRemove {
				return fmt.Errorf("steps[%d].expect: removed only applies to remove steps", i)
			}
			if step.Expect.Explanation != "" && step.Kind() != StepSet {
				return fmt.Errorf("steps[%d].expect: explanation only applies to set steps", i)
			}
		}
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertValid:
		if a.Valid == nil {
			return fmt.Errorf("assertions[%d]: valid is required for valid", index)
		}
	case AssertViolations:
		if a.Count == nil && a.Subjects == nil {
			return fmt.Errorf("assertions[%d]: count or subjects is required for violations", index)
		}
	case AssertProperty:
		if a.Property == "" {
			return fmt.Errorf("assertions[%d]: property is required for property", index)
		}
		if (a.Value == nil) == !a.Unset {
			return fmt.Errorf("assertions[%d]: exactly one of value or unset is required for property", index)
		}
	case AssertRelationships:
		if a.Relationships == nil {
			return fmt.Errorf("assertions[%d]: relationships list is required for relationships (use [] for none)", index)
		}
	case AssertNotifications:
		if a.Property == "" {
			return fmt.Errorf("assertions[%d]: property is required for notifications", index)
		}
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: non-negative count is required for notifications", index)
		}
	case AssertJournal:
		if a.Table == "" {
			return fmt.Errorf("assertions[%d]: table is required for journal", index)
		}
		if !journal.IsTable(a.Table) {
			return fmt.Errorf("assertions[%d]: unknown journal table %q (want one of %v)", index, a.Table, journal.Tables)
		}
		if len(a.Expect) == 0 && a.Count == nil {
			return fmt.Errorf("assertions[%d]: expect or count is required for journal", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
