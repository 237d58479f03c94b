package component

// Component is the capability set the harness requires from anything it
// configures.
type Component interface {
	// Descriptor resolves a property name to the component's full descriptor.
	Descriptor(name string) (PropertyDescriptor, bool)

	// Descriptors returns the declared catalog in display order. An empty
	// catalog means the property set is unconstrained.
	Descriptors() []PropertyDescriptor

	// OnPropertyModified is called synchronously whenever a mutation changes
	// the effective value of a property. Absent values are None.
	OnPropertyModified(d PropertyDescriptor, oldValue, newValue Value)

	// Validate checks the whole configuration and returns results.
	// Implementations must report every problem rather than stopping early.
	Validate(ctx ValidationContext) []ValidationResult
}

// Router is implemented by components that route output to relationships.
type Router interface {
	Component
	Relationships() []Relationship
}

// ControllerService is a component other components reference by identifier.
type ControllerService interface {
	Component
	Identifier() string
}

// TypedService is implemented by services that advertise a type name which
// service-referencing descriptors can require.
type TypedService interface {
	ControllerService
	ServiceType() string
}
