package component

import "fmt"

// ValidationResult is the outcome of validating one subject.
type ValidationResult struct {
	Subject     string `json:"subject"`
	Input       string `json:"input,omitempty"`
	Valid       bool   `json:"valid"`
	Explanation string `json:"explanation,omitempty"`
}

// Valid returns a passing result.
func Valid(subject, input string) ValidationResult {
	return ValidationResult{Subject: subject, Input: input, Valid: true}
}

// Invalid returns a failing result.
func Invalid(subject, input, explanation string) ValidationResult {
	return ValidationResult{Subject: subject, Input: input, Valid: false, Explanation: explanation}
}

// String renders the result the way violation reports print it.
func (r ValidationResult) String() string {
	if r.Valid {
		return fmt.Sprintf("'%s' validated against '%s' is valid", r.Subject, r.Input)
	}
	return fmt.Sprintf("'%s' validated against '%s' is invalid because %s", r.Subject, r.Input, r.Explanation)
}

// Failures returns the results that are not valid, preserving order.
func Failures(results []ValidationResult) []ValidationResult {
	var out []ValidationResult
	for _, r := range results {
		if !r.Valid {
			out = append(out, r)
		}
	}
	return out
}

// Validator checks a single property value.
type Validator interface {
	Validate(subject, input string, ctx ValidationContext) ValidationResult
}

// ValidatorFunc adapts a function to the Validator interface.
type ValidatorFunc func(subject, input string, ctx ValidationContext) ValidationResult

// Validate calls f.
func (f ValidatorFunc) Validate(subject, input string, ctx ValidationContext) ValidationResult {
	return f(subject, input, ctx)
}

// PropertyEntry pairs a descriptor with its configured value.
type PropertyEntry struct {
	Descriptor PropertyDescriptor `json:"descriptor"`
	Value      Value              `json:"value"`
}

// ValidationContext is the read-only view a component validates against.
type ValidationContext interface {
	// Property returns the effective value of d, resolved through the
	// component catalog. The bool is false for unknown properties.
	Property(d PropertyDescriptor) (PropertyValue, bool)

	// Properties returns the configured properties (defaults not substituted).
	Properties() []PropertyEntry

	AnnotationData() Value

	ServiceLookup() ServiceLookup

	// ValidateService validates the configuration of a registered
	// controller service and returns its failing results.
	ValidateService(id string) ([]ValidationResult, error)

	NewPropertyValue(raw string) PropertyValue
}

// ServiceLookup resolves controller services by identifier.
type ServiceLookup interface {
	Service(id string) (ControllerService, bool)
	IsServiceEnabled(id string) bool

	// ServiceIdentifiers lists registered identifiers, filtered by type when
	// serviceType is non-empty.
	ServiceIdentifiers(serviceType string) []string
}
