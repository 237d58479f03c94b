package harness

import (
	"sort"

	"github.com/roach88/propharness/internal/component"
)

// ServiceConfiguration is the nested configuration of one registered
// controller service. It is owned by a ServiceRegistry.
type ServiceConfiguration struct {
	id         string
	service    component.ControllerService
	properties *PropertyStore
	annotation component.Value
	enabled    bool
}

// Identifier returns the key the service is registered under.
func (c *ServiceConfiguration) Identifier() string { return c.id }

// Service returns the service instance.
func (c *ServiceConfiguration) Service() component.ControllerService { return c.service }

// Properties returns the configured properties in insertion order.
func (c *ServiceConfiguration) Properties() []component.PropertyEntry {
	return c.properties.Entries()
}

// Property returns the configured value for name, or None.
func (c *ServiceConfiguration) Property(name string) component.Value {
	return c.properties.Get(component.Named(name))
}

// AnnotationData returns the service's annotation data.
func (c *ServiceConfiguration) AnnotationData() component.Value { return c.annotation }

// IsEnabled reports whether the service has been enabled.
func (c *ServiceConfiguration) IsEnabled() bool { return c.enabled }

func (c *ServiceConfiguration) clone() *ServiceConfiguration {
	return &ServiceConfiguration{
		id:         c.id,
		service:    c.service,
		properties: c.properties.Clone(),
		annotation: c.annotation,
		enabled:    c.enabled,
	}
}

// ServiceRegistry maps identifiers to service configurations in
// registration order.
type ServiceRegistry struct {
	order   []string
	configs map[string]*ServiceConfiguration
}

// NewServiceRegistry returns an empty registry.
func NewServiceRegistry() *ServiceRegistry {
	return &ServiceRegistry{configs: make(map[string]*ServiceConfiguration)}
}

// Put creates or replaces the configuration for id. Properties are stored
// without validation; names the service does not declare become dynamic
// descriptors. Map keys are stored in sorted order.
func (r *ServiceRegistry) Put(id string, svc component.ControllerService, properties map[string]string, annotation component.Value) *ServiceConfiguration {
	store := NewPropertyStore()
	names := make([]string, 0, len(properties))
	for name := range properties {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		d, ok := svc.Descriptor(name)
		if !ok {
			d = component.Dynamic(name)
		}
		store.Set(d, properties[name])
	}

	cfg := &ServiceConfiguration{
		id:         id,
		service:    svc,
		properties: store,
		annotation: annotation,
	}
	if _, exists := r.configs[id]; !exists {
		r.order = append(r.order, id)
	}
	r.configs[id] = cfg
	return cfg
}

// Get returns the configuration for id.
func (r *ServiceRegistry) Get(id string) (*ServiceConfiguration, bool) {
	cfg, ok := r.configs[id]
	return cfg, ok
}

// Delete removes id and reports whether it was registered.
func (r *ServiceRegistry) Delete(id string) bool {
	if _, ok := r.configs[id]; !ok {
		return false
	}
	delete(r.configs, id)
	for i, k := range r.order {
		if k == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// Identifiers returns registered identifiers in registration order.
func (r *ServiceRegistry) Identifiers() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of registered services.
func (r *ServiceRegistry) Len() int {
	return len(r.order)
}

// Clone deep-copies the registry. Service instances are shared; property
// stores are not.
func (r *ServiceRegistry) Clone() *ServiceRegistry {
	c := &ServiceRegistry{
		order:   make([]string, len(r.order)),
		configs: make(map[string]*ServiceConfiguration, len(r.configs)),
	}
	copy(c.order, r.order)
	for id, cfg := range r.configs {
		c.configs[id] = cfg.clone()
	}
	return c
}

// lookup adapts a registry to component.ServiceLookup.
type lookup struct {
	reg *ServiceRegistry
}

func (l lookup) Service(id string) (component.ControllerService, bool) {
	cfg, ok := l.reg.Get(id)
	if !ok {
		return nil, false
	}
	return cfg.service, true
}

func (l lookup) IsServiceEnabled(id string) bool {
	cfg, ok := l.reg.Get(id)
	return ok && cfg.enabled
}

func (l lookup) ServiceIdentifiers(serviceType string) []string {
	var out []string
	for _, id := range l.reg.order {
		if serviceType == "" {
			out = append(out, id)
			continue
		}
		if typed, ok := l.reg.configs[id].service.(component.TypedService); ok && typed.ServiceType() == serviceType {
			out = append(out, id)
		}
	}
	return out
}
