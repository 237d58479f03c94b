package component

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// PropertyValue wraps an effective property value for a component.
//
// When expression validation is active the harness attaches the resolved
// descriptor, and Evaluate refuses properties that do not support
// expressions. Evaluation itself is not performed: the raw value is returned.
type PropertyValue struct {
	raw        Value
	lookup     ServiceLookup
	descriptor *PropertyDescriptor
}

// NewPropertyValue returns a wrapper for raw. lookup and d may be nil.
func NewPropertyValue(raw Value, lookup ServiceLookup, d *PropertyDescriptor) PropertyValue {
	return PropertyValue{raw: raw, lookup: lookup, descriptor: d}
}

// Value returns the wrapped optional value.
func (p PropertyValue) Value() Value {
	return p.raw
}

// String returns the raw value, or "" when unset.
func (p PropertyValue) String() string {
	return p.raw.String()
}

// IsSet reports whether the effective value is present.
func (p PropertyValue) IsSet() bool {
	return p.raw.IsSet()
}

// Descriptor returns the attached descriptor, if any.
func (p PropertyValue) Descriptor() (PropertyDescriptor, bool) {
	if p.descriptor == nil {
		return PropertyDescriptor{}, false
	}
	return *p.descriptor, true
}

// Int parses the value as a base-10 integer.
func (p PropertyValue) Int() (int64, error) {
	s, ok := p.raw.Get()
	if !ok {
		return 0, ErrValueNotSet
	}
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse integer %q: %w", s, err)
	}
	return n, nil
}

// Bool parses the value as "true" or "false" (case-insensitive).
func (p PropertyValue) Bool() (bool, error) {
	s, ok := p.raw.Get()
	if !ok {
		return false, ErrValueNotSet
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, fmt.Errorf("parse boolean %q: must be true or false", s)
}

// Duration parses the value as a Go duration ("1m30s") or a time period
// such as "5 secs" or "10 mins".
func (p PropertyValue) Duration() (time.Duration, error) {
	s, ok := p.raw.Get()
	if !ok {
		return 0, ErrValueNotSet
	}
	return ParseDuration(s)
}

// Service resolves the value as a controller service identifier.
func (p PropertyValue) Service() (ControllerService, error) {
	id, ok := p.raw.Get()
	if !ok {
		return nil, ErrValueNotSet
	}
	if p.lookup == nil {
		return nil, ErrNoServiceLookup
	}
	svc, found := p.lookup.Service(id)
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrServiceNotFound, id)
	}
	return svc, nil
}

// Evaluate stands in for expression evaluation. It returns the value
// unchanged, or ErrExpressionNotSupported when an attached descriptor does
// not declare expression language support.
func (p PropertyValue) Evaluate() (PropertyValue, error) {
	if p.descriptor != nil && !p.descriptor.ExpressionLanguage {
		return PropertyValue{}, fmt.Errorf("%w: %s", ErrExpressionNotSupported, p.descriptor.Name)
	}
	return p, nil
}
