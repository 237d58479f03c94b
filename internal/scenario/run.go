package scenario

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/roach88/propharness/internal/component"
	"github.com/roach88/propharness/internal/harness"
	"github.com/roach88/propharness/internal/journal"
	"github.com/roach88/propharness/internal/schema"
	"github.com/roach88/propharness/internal/testutil"
)

// Option configures a scenario run.
type Option func(*runner)

// WithLogger sets the logger handed to the harness under test.
func WithLogger(logger *slog.Logger) Option {
	return func(r *runner) {
		r.logger = logger
	}
}

// runner holds the state of one scenario execution.
type runner struct {
	scenario *Scenario
	harness  *harness.Harness
	journal  *journal.Journal
	seq      *testutil.Sequence
	result   *Result
	logger   *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs against a fresh in-memory journal and a fresh logical
// sequence, so two runs of the same scenario produce identical traces.
//
// Execution flow:
// 1. Load the component definitions from every specs directory
// 2. Instantiate the component and register services
// 3. Execute steps, checking each step's expectations
// 4. Evaluate assertions
//
// A non-nil error means the scenario could not be executed at all;
// failed expectations and assertions are reported in Result.Errors.
func Run(s *Scenario, opts ...Option) (*Result, error) {
	r := &runner{
		scenario: s,
		seq:      testutil.NewSequence(),
		result:   NewResult(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}
	for _, opt := range opts {
		opt(r)
	}

	defs, err := loadDefinitions(s.Specs)
	if err != nil {
		return nil, err
	}

	def, ok := defs[s.Component]
	if !ok {
		return nil, fmt.Errorf("component %q not found in specs", s.Component)
	}

	c, err := def.New(def.Name)
	if err != nil {
		return nil, fmt.Errorf("instantiate %s: %w", def.Name, err)
	}

	j, err := journal.OpenMemory()
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory journal: %w", err)
	}
	defer j.Close()
	r.journal = j

	harnessOpts := []harness.Option{
		harness.WithID(harnessID(s)),
		harness.WithJournal(j),
		harness.WithSequence(r.seq),
		harness.WithLogger(r.logger),
		harness.WithListener(r.result.addHarnessEvent),
	}
	if s.ExpressionValidation {
		harnessOpts = append(harnessOpts, harness.WithExpressionValidation())
	}

	h, err := harness.New(c, harnessOpts...)
	if err != nil {
		return nil, err
	}
	r.harness = h

	if s.AnnotationData != nil {
		h.SetAnnotationData(component.Some(*s.AnnotationData))
	}

	if err := r.setupServices(defs); err != nil {
		return nil, err
	}

	for i, step := range s.Steps {
		if err := r.executeStep(i, step); err != nil {
			r.result.AddError(err.Error())
		}
	}

	ctx := context.Background()
	for i, a := range s.Assertions {
		if err := r.evaluateAssertion(ctx, a); err != nil {
			r.result.AddError(fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}

	return r.result, nil
}

func harnessID(s *Scenario) string {
	if s.HarnessID != "" {
		return s.HarnessID
	}
	return "scenario-" + s.Name
}

// loadDefinitions loads every specs directory and indexes the definitions
// by name. A name defined twice is an error.
func loadDefinitions(dirs []string) (map[string]*schema.Definition, error) {
	defs := make(map[string]*schema.Definition)
	for _, dir := range dirs {
		loaded, errs := schema.Load(dir, schema.LoadModeFailFast)
		if len(errs) > 0 {
			return nil, fmt.Errorf("load specs %s: %w", dir, errs[0])
		}
		for _, def := range loaded.Definitions {
			if _, dup := defs[def.Name]; dup {
				return nil, fmt.Errorf("component %q is defined more than once", def.Name)
			}
			if problems := schema.Validate(def); len(problems) > 0 {
				return nil, fmt.Errorf("component %q: %w", def.Name, problems[0])
			}
			defs[def.Name] = def
		}
	}
	return defs, nil
}

// setupServices registers every service, then enables the ones marked
// enabled so that services may reference each other regardless of order.
func (r *runner) setupServices(defs map[string]*schema.Definition) error {
	for _, setup := range r.scenario.Services {
		def, ok := defs[setup.Component]
		if !ok {
			return fmt.Errorf("service %q: component %q not found in specs", setup.ID, setup.Component)
		}
		if def.Kind != schema.KindService {
			return fmt.Errorf("service %q: component %q is a %s, not a service", setup.ID, setup.Component, def.Kind)
		}

		c, err := def.New(setup.ID)
		if err != nil {
			return fmt.Errorf("service %q: %w", setup.ID, err)
		}
		svc, ok := c.(component.ControllerService)
		if !ok {
			return fmt.Errorf("service %q: component %q is not a controller service", setup.ID, setup.Component)
		}

		annotation := component.None
		if setup.AnnotationData != nil {
			annotation = component.Some(*setup.AnnotationData)
		}
		if err := r.harness.AddService(setup.ID, svc, setup.Properties, annotation); err != nil {
			return fmt.Errorf("service %q: %w", setup.ID, err)
		}
	}

	for _, setup := range r.scenario.Services {
		if !setup.Enabled {
			continue
		}
		if err := r.enable(setup.ID); err != nil {
			return fmt.Errorf("service %q: %w", setup.ID, err)
		}
	}
	return nil
}

func (r *runner) enable(id string) error {
	if err := r.harness.EnableService(id); err != nil {
		return err
	}
	r.result.addStepEvent(r.seq.Next(), TraceEnable, func(te *TraceEvent) {
		te.Service = id
	})
	return nil
}

func (r *runner) disable(id string) error {
	if err := r.harness.DisableService(id); err != nil {
		return err
	}
	r.result.addStepEvent(r.seq.Next(), TraceDisable, func(te *TraceEvent) {
		te.Service = id
	})
	return nil
}

// executeStep runs one step and checks its expectations.
func (r *runner) executeStep(index int, step Step) error {
	var (
		err         error
		valid       *bool
		removed     *bool
		explanation string
	)

	switch step.Kind() {
	case StepSet:
		var res component.ValidationResult
		res, err = r.harness.SetPropertyByName(step.Set.Property, step.Set.Value)
		if err == nil {
			valid = &res.Valid
			explanation = res.Explanation
		}

	case StepRemove:
		var ok bool
		ok, err = r.harness.RemovePropertyByName(step.Remove)
		if err == nil {
			removed = &ok
		}

	case StepUnavailable:
		rels := make([]component.Relationship, len(*step.Unavailable))
		for i, name := range *step.Unavailable {
			rels[i] = component.NewRelationship(name)
		}
		r.harness.SetUnavailableRelationships(rels...)
		names := component.RelationshipNames(r.harness.UnavailableRelationships())
		r.result.addStepEvent(r.seq.Next(), TraceUnavailable, func(te *TraceEvent) {
			te.Relationships = names
		})

	case StepValidate:
		ok := len(r.harness.Validate()) == 0
		valid = &ok

	case StepAnnotate:
		text := *step.Annotate
		r.harness.SetAnnotationData(component.Some(text))
		r.result.addStepEvent(r.seq.Next(), TraceAnnotate, func(te *TraceEvent) {
			te.Value = &text
		})

	case StepEnable:
		err = r.enable(step.Enable)

	case StepDisable:
		err = r.disable(step.Disable)
	}

	return checkExpect(index, step, err, valid, removed, explanation)
}

// checkExpect compares a step outcome against its expectations.
// An error the step did not expect fails the step.
func checkExpect(index int, step Step, err error, valid, removed *bool, explanation string) error {
	exp := step.Expect
	if exp == nil {
		exp = &StepExpect{}
	}

	if err != nil {
		if exp.Error == "" {
			return fmt.Errorf("steps[%d] (%s): unexpected error: %v", index, step.Kind(), err)
		}
		if !strings.Contains(err.Error(), exp.Error) {
			return fmt.Errorf("steps[%d] (%s): expected error containing %q, got %q", index, step.Kind(), exp.Error, err.Error())
		}
		return nil
	}
	if exp.Error != "" {
		return fmt.Errorf("steps[%d] (%s): expected error containing %q, got none", index, step.Kind(), exp.Error)
	}

	if exp.Valid != nil && valid != nil && *exp.Valid != *valid {
		return fmt.Errorf("steps[%d] (%s): expected valid=%t, got valid=%t", index, step.Kind(), *exp.Valid, *valid)
	}
	if exp.Removed != nil && removed != nil && *exp.Removed != *removed {
		return fmt.Errorf("steps[%d] (%s): expected removed=%t, got removed=%t", index, step.Kind(), *exp.Removed, *removed)
	}
	if exp.Explanation != "" && !strings.Contains(explanation, exp.Explanation) {
		return fmt.Errorf("steps[%d] (%s): expected explanation containing %q, got %q", index, step.Kind(), exp.Explanation, explanation)
	}
	return nil
}
