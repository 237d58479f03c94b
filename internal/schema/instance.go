package schema

import (
	"fmt"

	"github.com/roach88/propharness/internal/component"
)

// Modification is one change notification received by an instance.
type Modification struct {
	Property string          `json:"property"`
	Old      component.Value `json:"old"`
	New      component.Value `json:"new"`
}

// Component is an instantiated definition.
type Component struct {
	component.Base
	def  *Definition
	mods []Modification
}

// Name returns the definition name.
func (c *Component) Name() string {
	return c.def.Name
}

// Definition returns the definition c was built from.
func (c *Component) Definition() *Definition {
	return c.def
}

// OnPropertyModified implements component.Component.
func (c *Component) OnPropertyModified(d component.PropertyDescriptor, oldValue, newValue component.Value) {
	c.mods = append(c.mods, Modification{Property: d.Name, Old: oldValue, New: newValue})
}

// Modifications returns every change notification in the order received.
func (c *Component) Modifications() []Modification {
	out := make([]Modification, len(c.mods))
	copy(out, c.mods)
	return out
}

// Validate implements component.Component: every property is checked,
// then every rule.
func (c *Component) Validate(ctx component.ValidationContext) []component.ValidationResult {
	results := component.ValidateProperties(ctx, c.Descriptors())
	for _, r := range c.def.Rules {
		results = append(results, evaluateRule(ctx, r)...)
	}
	return results
}

func evaluateRule(ctx component.ValidationContext, r Rule) []component.ValidationResult {
	when, ok := ctx.Property(component.Named(r.When))
	if !ok || !when.IsSet() {
		return nil
	}
	if r.Equals != "" && when.String() != r.Equals {
		return nil
	}

	condition := fmt.Sprintf("%s is set", r.When)
	if r.Equals != "" {
		condition = fmt.Sprintf("%s is %q", r.When, r.Equals)
	}

	var out []component.ValidationResult
	for _, name := range r.Require {
		pv, ok := ctx.Property(component.Named(name))
		if ok && pv.IsSet() {
			continue
		}
		out = append(out, component.Invalid(name, "", fmt.Sprintf("%s is required when %s", name, condition)))
	}
	return out
}

// Processor is an instantiated processor definition.
type Processor struct {
	Component
}

// Relationships implements component.Router.
func (p *Processor) Relationships() []component.Relationship {
	out := make([]component.Relationship, len(p.def.Relationships))
	for i, r := range p.def.Relationships {
		out[i] = component.Relationship{Name: r.Name, Description: r.Description}
	}
	return out
}

// Service is an instantiated controller service definition.
type Service struct {
	Component
	id string
}

// Identifier implements component.ControllerService.
func (s *Service) Identifier() string {
	return s.id
}

// ServiceType implements component.TypedService. It is the definition name.
func (s *Service) ServiceType() string {
	return s.def.Name
}
