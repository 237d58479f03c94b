package harness

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/propharness/internal/component"
)

var (
	// ErrNilComponent is returned when a harness or service is built around nil.
	ErrNilComponent = errors.New("component is nil")

	// ErrUnknownService is returned when an identifier is not registered.
	ErrUnknownService = errors.New("unknown controller service")

	// ErrUnknownProperty is returned when the component does not recognise a
	// property name. Configuring an undeclared property is a usage bug.
	ErrUnknownProperty = errors.New("unknown property")

	// ErrServiceEnabled is returned when an operation requires a disabled service.
	ErrServiceEnabled = errors.New("controller service is enabled")

	// ErrServiceDisabled is returned when disabling a service that is not enabled.
	ErrServiceDisabled = errors.New("controller service is not enabled")

	// ErrServiceInvalid is returned when enabling a service whose
	// configuration does not validate.
	ErrServiceInvalid = errors.New("controller service is invalid")
)

// LookupError reports a missing controller service.
type LookupError struct {
	ID string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("controller service %q is not registered", e.ID)
}

func (e *LookupError) Unwrap() error {
	return ErrUnknownService
}

// StateError reports an operation attempted in the wrong state.
type StateError struct {
	Op      string // e.g. "enable service"
	Subject string // service identifier or property name
	Err     error
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Op, e.Subject, e.Err)
}

func (e *StateError) Unwrap() error {
	return e.Err
}

// ValidationFailure lists every violation found by a validation pass.
type ValidationFailure struct {
	Kind       string
	Violations []component.ValidationResult
}

func (e *ValidationFailure) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s has %d validation failures:", e.Kind, len(e.Violations))
	for _, v := range e.Violations {
		b.WriteString("\n")
		b.WriteString(v.String())
	}
	return b.String()
}
