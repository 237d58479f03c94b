package harness

import "github.com/roach88/propharness/internal/component"

// validationContext is the read-only view handed to validators.
type validationContext struct {
	h *Harness
}

func (h *Harness) newContext() component.ValidationContext {
	return validationContext{h: h}
}

func (c validationContext) Property(d component.PropertyDescriptor) (component.PropertyValue, bool) {
	return c.h.Property(d)
}

func (c validationContext) Properties() []component.PropertyEntry {
	return c.h.Properties()
}

func (c validationContext) AnnotationData() component.Value {
	return c.h.annotation
}

func (c validationContext) ServiceLookup() component.ServiceLookup {
	return c.h.ServiceLookup()
}

func (c validationContext) ValidateService(id string) ([]component.ValidationResult, error) {
	return c.h.ValidateService(id)
}

func (c validationContext) NewPropertyValue(raw string) component.PropertyValue {
	return c.h.NewPropertyValue(raw)
}
