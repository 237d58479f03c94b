package harness

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/roach88/propharness/internal/component"
	"github.com/roach88/propharness/internal/journal"
)

// MaxConcurrentTasks is the fixed capacity a harness reports.
const MaxConcurrentTasks = 1

// Harness configures and validates one component under test.
type Harness struct {
	id        string
	name      string
	component component.Component

	properties *PropertyStore
	services   *ServiceRegistry
	annotation component.Value

	unavailable atomic.Pointer[[]component.Relationship]

	expressionValidation bool
	allowExpressions     bool
	yieldCalled          bool

	// chain holds the services whose validation led to this harness, so
	// reference cycles terminate.
	chain []string

	ids       IDGenerator
	seq       Sequencer
	logger    *slog.Logger
	journal   *journal.Journal
	listeners []Listener
}

// New creates a harness for c.
func New(c component.Component, opts ...Option) (*Harness, error) {
	if c == nil {
		return nil, ErrNilComponent
	}

	h := &Harness{
		component:        c,
		properties:       NewPropertyStore(),
		services:         NewServiceRegistry(),
		allowExpressions: true,
		ids:              UUIDv7Generator{},
		seq:              &counter{},
		logger:           slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(h)
	}

	if h.id == "" {
		h.id = h.ids.Generate()
	}
	if h.name == "" {
		h.name = kindOf(c)
	}

	return h, nil
}

// MustNew is New but panics on error.
func MustNew(c component.Component, opts ...Option) *Harness {
	h, err := New(c, opts...)
	if err != nil {
		panic(err)
	}
	return h
}

// ID returns the harness identifier.
func (h *Harness) ID() string { return h.id }

// Name returns the kind used in validation failure messages.
func (h *Harness) Name() string { return h.name }

// Component returns the component under test.
func (h *Harness) Component() component.Component { return h.component }

// Property returns the effective value of d: the configured value if
// present, otherwise the descriptor default. d may be partial; the full
// descriptor is resolved through the component. The bool is false when
// the component does not know the property.
func (h *Harness) Property(d component.PropertyDescriptor) (component.PropertyValue, bool) {
	full, ok := h.component.Descriptor(d.Name)
	if !ok {
		return component.PropertyValue{}, false
	}

	value := effective(h.properties.Get(full), full)

	var attached *component.PropertyDescriptor
	if h.expressionValidation && h.allowExpressions {
		attached = &full
	}
	return component.NewPropertyValue(value, h.ServiceLookup(), attached), true
}

// PropertyByName is Property(component.Named(name)).
func (h *Harness) PropertyByName(name string) (component.PropertyValue, bool) {
	return h.Property(component.Named(name))
}

// SetProperty validates value against d, stores it regardless of the
// outcome and notifies the component when the effective value changed.
// The validation result is returned for the caller to inspect.
func (h *Harness) SetProperty(d component.PropertyDescriptor, value string) (component.ValidationResult, error) {
	full, ok := h.component.Descriptor(d.Name)
	if !ok {
		return component.ValidationResult{}, &StateError{Op: "set property", Subject: d.Name, Err: ErrUnknownProperty}
	}

	result := full.Validate(value, h.newContext())

	old := effective(h.properties.Set(full, value), full)
	updated := component.Some(value)

	h.logger.Debug("property set",
		"harness", h.id,
		"property", full.Name,
		"valid", result.Valid)

	h.emit(Event{Kind: EventAttempt, Property: full.Name, Value: value, Result: result})

	if old != updated {
		h.component.OnPropertyModified(full, old, updated)
		h.emit(Event{Kind: EventChange, Property: full.Name, Old: old, New: updated})
	}

	return result, nil
}

// SetPropertyByName is SetProperty(component.Named(name), value).
func (h *Harness) SetPropertyByName(name, value string) (component.ValidationResult, error) {
	return h.SetProperty(component.Named(name), value)
}

// RemoveProperty removes the configured value of d and reports whether one
// was present. The component is notified with a None new value unless the
// removed value equalled the default.
func (h *Harness) RemoveProperty(d component.PropertyDescriptor) (bool, error) {
	full, ok := h.component.Descriptor(d.Name)
	if !ok {
		return false, &StateError{Op: "remove property", Subject: d.Name, Err: ErrUnknownProperty}
	}

	old, removed := h.properties.Remove(full)

	h.logger.Debug("property removed",
		"harness", h.id,
		"property", full.Name,
		"removed", removed)

	h.emit(Event{Kind: EventRemove, Property: full.Name, Removed: removed})

	if removed && old != full.Default {
		h.component.OnPropertyModified(full, old, component.None)
		h.emit(Event{Kind: EventChange, Property: full.Name, Old: old, New: component.None})
	}

	return removed, nil
}

// RemovePropertyByName is RemoveProperty(component.Named(name)).
func (h *Harness) RemovePropertyByName(name string) (bool, error) {
	return h.RemoveProperty(component.Named(name))
}

// Properties lists the configuration. With a declared catalog, every
// declared descriptor appears in catalog order with its configured value
// (None when unset), followed by configured properties outside the catalog.
// Without one, configured properties are listed in insertion order.
// Defaults are never substituted.
func (h *Harness) Properties() []component.PropertyEntry {
	declared := h.component.Descriptors()
	if len(declared) == 0 {
		return h.properties.Entries()
	}

	out := make([]component.PropertyEntry, 0, len(declared)+h.properties.Len())
	seen := make(map[string]bool, len(declared))
	for _, d := range declared {
		seen[d.Key()] = true
		out = append(out, component.PropertyEntry{Descriptor: d, Value: h.properties.Get(d)})
	}
	for _, e := range h.properties.Entries() {
		if !seen[e.Descriptor.Key()] {
			out = append(out, e)
		}
	}
	return out
}

// SetAnnotationData replaces the component's annotation data.
func (h *Harness) SetAnnotationData(v component.Value) {
	h.annotation = v
}

// AnnotationData returns the component's annotation data.
func (h *Harness) AnnotationData() component.Value {
	return h.annotation
}

// NewPropertyValue wraps raw the way the harness wraps configured values,
// without a descriptor.
func (h *Harness) NewPropertyValue(raw string) component.PropertyValue {
	return component.NewPropertyValue(component.Some(raw), h.ServiceLookup(), nil)
}

// EnableExpressionValidation attaches descriptors to returned property
// values so Evaluate rejects properties without expression support.
func (h *Harness) EnableExpressionValidation() {
	h.expressionValidation = true
}

// DisableExpressionValidation stops attaching descriptors.
func (h *Harness) DisableExpressionValidation() {
	h.expressionValidation = false
}

// SetValidateExpressionUsage allows or forbids expression validation even
// when it is enabled.
func (h *Harness) SetValidateExpressionUsage(allow bool) {
	h.allowExpressions = allow
}

// Yield records that the component asked to yield.
func (h *Harness) Yield() {
	h.yieldCalled = true
}

// IsYieldCalled reports whether Yield was called.
func (h *Harness) IsYieldCalled() bool {
	return h.yieldCalled
}

// MaxConcurrentTasks always returns 1.
func (h *Harness) MaxConcurrentTasks() int {
	return MaxConcurrentTasks
}

func kindOf(c component.Component) string {
	if n, ok := c.(interface{ Name() string }); ok && n.Name() != "" {
		return n.Name()
	}
	t := strings.TrimLeft(fmt.Sprintf("%T", c), "*")
	if i := strings.LastIndex(t, "."); i >= 0 {
		t = t[i+1:]
	}
	return t
}
