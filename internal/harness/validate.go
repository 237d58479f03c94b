package harness

import (
	"testing"

	"github.com/roach88/propharness/internal/component"
)

// Validate asks the component to check its configuration and returns every
// failing result. It never stops at the first problem. The run is emitted as
// an EventValidate and journaled.
func (h *Harness) Validate() []component.ValidationResult {
	failures := h.Violations()

	h.logger.Debug("validated",
		"harness", h.id,
		"failures", len(failures))

	h.emit(Event{Kind: EventValidate, Violations: failures})
	return failures
}

// Violations returns the same failures as Validate without emitting an
// event, journaling or advancing the sequence.
func (h *Harness) Violations() []component.ValidationResult {
	return component.Failures(h.component.Validate(h.newContext()))
}

// IsValid reports whether the configuration has no failures. It does not
// record a validation run.
func (h *Harness) IsValid() bool {
	return len(h.Violations()) == 0
}

// ValidityError returns nil when the configuration is valid, otherwise a
// *ValidationFailure listing every violation. It does not record a
// validation run.
func (h *Harness) ValidityError() error {
	failures := h.Violations()
	if len(failures) == 0 {
		return nil
	}
	return &ValidationFailure{Kind: h.name, Violations: failures}
}

// AssertValid fails the test when the configuration is invalid.
func (h *Harness) AssertValid(t testing.TB) {
	t.Helper()
	if err := h.ValidityError(); err != nil {
		t.Fatal(err.Error())
	}
}

// AssertNotValid fails the test when the configuration is valid.
func (h *Harness) AssertNotValid(t testing.TB) {
	t.Helper()
	if h.IsValid() {
		t.Fatalf("%s is valid but should not be", h.name)
	}
}
