package testutil

import (
	"github.com/roach88/propharness/internal/component"
)

// Modification is one recorded OnPropertyModified call.
type Modification struct {
	Property string
	Old      component.Value
	New      component.Value
}

// Recorder collects change notifications in call order.
type Recorder struct {
	mods []Modification
}

// OnPropertyModified implements the notification half of component.Component.
func (r *Recorder) OnPropertyModified(d component.PropertyDescriptor, oldValue, newValue component.Value) {
	r.mods = append(r.mods, Modification{Property: d.Name, Old: oldValue, New: newValue})
}

// Modifications returns a copy of the recorded calls.
func (r *Recorder) Modifications() []Modification {
	out := make([]Modification, len(r.mods))
	copy(out, r.mods)
	return out
}

// Count returns how many notifications named property.
func (r *Recorder) Count(property string) int {
	n := 0
	for _, m := range r.mods {
		if component.Key(m.Property) == component.Key(property) {
			n++
		}
	}
	return n
}

// Reset forgets every recorded call.
func (r *Recorder) Reset() {
	r.mods = nil
}

// ValidateFunc adds component-level checks after per-property validation.
type ValidateFunc func(ctx component.ValidationContext) []component.ValidationResult

// Plain is a non-routing fixture component.
type Plain struct {
	component.Base
	Recorder
	Extra ValidateFunc
}

// NewPlain returns a fixture with the given catalog.
func NewPlain(descriptors ...component.PropertyDescriptor) *Plain {
	return &Plain{Base: component.NewBase(descriptors...)}
}

// NewDynamicPlain returns a fixture that accepts undeclared properties.
func NewDynamicPlain(descriptors ...component.PropertyDescriptor) *Plain {
	return &Plain{Base: component.NewDynamicBase(descriptors...)}
}

// Validate implements component.Component.
func (p *Plain) Validate(ctx component.ValidationContext) []component.ValidationResult {
	results := component.ValidateProperties(ctx, p.Descriptors())
	if p.Extra != nil {
		results = append(results, p.Extra(ctx)...)
	}
	return results
}

// Processor is a routing fixture component.
type Processor struct {
	Plain
	relationships []component.Relationship
}

// NewProcessor returns a routing fixture declaring the named relationships.
func NewProcessor(relationships []string, descriptors ...component.PropertyDescriptor) *Processor {
	rels := make([]component.Relationship, len(relationships))
	for i, name := range relationships {
		rels[i] = component.NewRelationship(name)
	}
	return &Processor{
		Plain:         Plain{Base: component.NewBase(descriptors...)},
		relationships: rels,
	}
}

// Relationships implements component.Router.
func (p *Processor) Relationships() []component.Relationship {
	out := make([]component.Relationship, len(p.relationships))
	copy(out, p.relationships)
	return out
}

// Service is a typed controller service fixture.
type Service struct {
	Plain
	id  string
	typ string
}

// NewService returns a service fixture with the given identifier and type.
func NewService(id, serviceType string, descriptors ...component.PropertyDescriptor) *Service {
	return &Service{
		Plain: Plain{Base: component.NewBase(descriptors...)},
		id:    id,
		typ:   serviceType,
	}
}

// Identifier implements component.ControllerService.
func (s *Service) Identifier() string { return s.id }

// ServiceType implements component.TypedService.
func (s *Service) ServiceType() string { return s.typ }
