package component

import "errors"

var (
	// ErrValueNotSet is returned when a conversion is attempted on an absent value.
	ErrValueNotSet = errors.New("property value is not set")

	// ErrExpressionNotSupported is returned by PropertyValue.Evaluate when the
	// attached descriptor does not declare expression language support.
	ErrExpressionNotSupported = errors.New("property does not support expression language")

	// ErrNoServiceLookup is returned when a value is resolved as a controller
	// service but was created without a lookup.
	ErrNoServiceLookup = errors.New("no controller service lookup available")

	// ErrServiceNotFound is returned when a value names an unknown controller service.
	ErrServiceNotFound = errors.New("controller service not found")
)
