package harness

import (
	"errors"
	"fmt"
	"slices"

	"github.com/roach88/propharness/internal/component"
)

// AddService registers svc under id with the given properties and
// annotation data, replacing any previous registration. Properties are not
// validated. Replacing an enabled service is refused.
func (h *Harness) AddService(id string, svc component.ControllerService, properties map[string]string, annotation component.Value) error {
	if svc == nil {
		return ErrNilComponent
	}
	if cfg, ok := h.services.Get(id); ok && cfg.enabled {
		return &StateError{Op: "add service", Subject: id, Err: ErrServiceEnabled}
	}

	h.services.Put(id, svc, properties, annotation)
	h.logger.Debug("service added",
		"harness", h.id,
		"service", id,
		"properties", len(properties))
	return nil
}

// ServiceConfiguration returns the configuration registered under id.
func (h *Harness) ServiceConfiguration(id string) (*ServiceConfiguration, error) {
	cfg, ok := h.services.Get(id)
	if !ok {
		return nil, &LookupError{ID: id}
	}
	return cfg, nil
}

// ServiceProperties returns the configured properties of service id.
func (h *Harness) ServiceProperties(id string) ([]component.PropertyEntry, error) {
	cfg, err := h.ServiceConfiguration(id)
	if err != nil {
		return nil, err
	}
	return cfg.Properties(), nil
}

// ServiceAnnotationData returns the annotation data of service id.
func (h *Harness) ServiceAnnotationData(id string) (component.Value, error) {
	cfg, err := h.ServiceConfiguration(id)
	if err != nil {
		return component.None, err
	}
	return cfg.annotation, nil
}

// SetServiceProperty validates and stores a property of a disabled service,
// notifying the service when its effective value changed.
func (h *Harness) SetServiceProperty(id string, d component.PropertyDescriptor, value string) (component.ValidationResult, error) {
	cfg, err := h.ServiceConfiguration(id)
	if err != nil {
		return component.ValidationResult{}, err
	}
	if cfg.enabled {
		return component.ValidationResult{}, &StateError{Op: "set service property", Subject: id, Err: ErrServiceEnabled}
	}

	nested, err := h.nestedFor(id, cfg)
	if err != nil {
		return component.ValidationResult{}, err
	}
	result, err := nested.SetProperty(d, value)
	if err != nil {
		return component.ValidationResult{}, err
	}
	cfg.properties = nested.properties
	return result, nil
}

// ServiceIdentifiers lists registered services in registration order.
func (h *Harness) ServiceIdentifiers() []string {
	return h.services.Identifiers()
}

// ServiceLookup exposes the registry to components.
func (h *Harness) ServiceLookup() component.ServiceLookup {
	return lookup{reg: h.services}
}

// LeaseService is accepted for compatibility with components that lease
// services before use. It does nothing.
func (h *Harness) LeaseService(id string) {}

// IsServiceEnabled reports whether id is registered and enabled.
func (h *Harness) IsServiceEnabled(id string) bool {
	return h.ServiceLookup().IsServiceEnabled(id)
}

// EnableService validates service id and marks it enabled.
func (h *Harness) EnableService(id string) error {
	cfg, err := h.ServiceConfiguration(id)
	if err != nil {
		return err
	}
	if cfg.enabled {
		return &StateError{Op: "enable service", Subject: id, Err: ErrServiceEnabled}
	}

	failures, err := h.ValidateService(id)
	if err != nil {
		return err
	}
	if len(failures) > 0 {
		failure := &ValidationFailure{Kind: kindOf(cfg.service), Violations: failures}
		return &StateError{Op: "enable service", Subject: id, Err: fmt.Errorf("%w: %w", ErrServiceInvalid, failure)}
	}

	cfg.enabled = true
	h.logger.Debug("service enabled", "harness", h.id, "service", id)
	return nil
}

// DisableService marks service id disabled.
func (h *Harness) DisableService(id string) error {
	cfg, err := h.ServiceConfiguration(id)
	if err != nil {
		return err
	}
	if !cfg.enabled {
		return &StateError{Op: "disable service", Subject: id, Err: ErrServiceDisabled}
	}
	cfg.enabled = false
	h.logger.Debug("service disabled", "harness", h.id, "service", id)
	return nil
}

// RemoveService unregisters a disabled service.
func (h *Harness) RemoveService(id string) error {
	cfg, err := h.ServiceConfiguration(id)
	if err != nil {
		return err
	}
	if cfg.enabled {
		return &StateError{Op: "remove service", Subject: id, Err: ErrServiceEnabled}
	}
	h.services.Delete(id)
	h.logger.Debug("service removed", "harness", h.id, "service", id)
	return nil
}

// ValidateService validates the configuration of service id in a nested
// harness and returns its failures. A service already being validated
// further up the reference chain is treated as valid.
func (h *Harness) ValidateService(id string) ([]component.ValidationResult, error) {
	if slices.Contains(h.chain, id) {
		return nil, nil
	}
	cfg, err := h.ServiceConfiguration(id)
	if err != nil {
		return nil, err
	}
	nested, err := h.nestedFor(id, cfg)
	if err != nil {
		return nil, err
	}
	nested.chain = append(slices.Clone(h.chain), id)
	return nested.Validate(), nil
}

// nestedFor builds the harness used to validate or configure the service
// registered under id. It is configured from cfg directly, so a service whose
// Identifier differs from its registration id still sees its properties.
// Nested harnesses are private: they do not journal, notify listeners or
// advance the parent's sequence.
func (h *Harness) nestedFor(id string, cfg *ServiceConfiguration) (*Harness, error) {
	nested, err := newChild(cfg.service, h,
		WithID(h.id+"/"+id),
		WithSequence(&counter{}),
		WithJournal(nil))
	if err != nil {
		return nil, err
	}
	nested.configureFrom(cfg, h)
	return nested, nil
}

// NewForService creates a harness for svc configured from parent: the
// annotation data and properties parent holds for svc.Identifier(), plus a
// deep copy of parent's whole service registry.
//
// If parent does not know svc, the harness starts empty: no annotation, no
// properties and no services. Components often register services
// incrementally, so this is not an error.
func NewForService(svc component.ControllerService, parent *Harness, opts ...Option) (*Harness, error) {
	if svc == nil {
		return nil, ErrNilComponent
	}
	if parent == nil {
		return New(svc, opts...)
	}

	h, err := newChild(svc, parent, opts...)
	if err != nil {
		return nil, err
	}

	cfg, err := parent.ServiceConfiguration(svc.Identifier())
	if err != nil {
		if errors.Is(err, ErrUnknownService) {
			parent.logger.Debug("service not registered, starting empty",
				"harness", parent.id,
				"service", svc.Identifier())
			return h, nil
		}
		return nil, err
	}

	h.configureFrom(cfg, parent)
	return h, nil
}

// newChild creates a harness for svc that inherits parent's generators,
// logger, expression settings and validation chain.
func newChild(svc component.ControllerService, parent *Harness, opts ...Option) (*Harness, error) {
	if svc == nil {
		return nil, ErrNilComponent
	}
	inherited := []Option{
		WithIDGenerator(parent.ids),
		WithSequence(parent.seq),
		WithLogger(parent.logger),
	}
	h, err := New(svc, append(inherited, opts...)...)
	if err != nil {
		return nil, err
	}
	h.expressionValidation = parent.expressionValidation
	h.allowExpressions = parent.allowExpressions
	h.chain = slices.Clone(parent.chain)
	return h, nil
}

// configureFrom copies cfg's annotation and properties and a deep copy of
// parent's registry into h.
func (h *Harness) configureFrom(cfg *ServiceConfiguration, parent *Harness) {
	h.annotation = cfg.annotation
	h.properties = cfg.properties.Clone()
	h.services = parent.services.Clone()
}
