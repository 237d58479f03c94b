package schema

import (
	"fmt"
	"regexp"

	"cuelang.org/go/cue/token"

	"github.com/roach88/propharness/internal/component"
)

// Kind selects which capabilities an instantiated definition has.
type Kind string

const (
	KindProcessor Kind = "processor"
	KindService   Kind = "service"
	KindComponent Kind = "component"
)

// Definition is a compiled component definition.
type Definition struct {
	Name          string            `json:"name"`
	Kind          Kind              `json:"kind"`
	Description   string            `json:"description,omitempty"`
	Dynamic       bool              `json:"dynamic_properties,omitempty"`
	Properties    []PropertyDef     `json:"properties"`
	Relationships []RelationshipDef `json:"relationships,omitempty"`
	Scenarios     []string          `json:"scenarios,omitempty"`
	Rules         []Rule            `json:"rules,omitempty"`
	Pos           token.Pos         `json:"-"`
}

// PropertyDef is the declared form of a property.
type PropertyDef struct {
	Name               string          `json:"name"`
	DisplayName        string          `json:"display_name,omitempty"`
	Description        string          `json:"description,omitempty"`
	Default            component.Value `json:"default"`
	Required           bool            `json:"required,omitempty"`
	Sensitive          bool            `json:"sensitive,omitempty"`
	ExpressionLanguage bool            `json:"expression_language,omitempty"`
	Validators         []string        `json:"validators,omitempty"`
	AllowableValues    []string        `json:"allowable_values,omitempty"`
	Pattern            string          `json:"pattern,omitempty"`
	Service            string          `json:"service,omitempty"`
	Pos                token.Pos       `json:"-"`
}

// RelationshipDef is a declared relationship.
type RelationshipDef struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Rule makes properties conditionally required: when property When has
// the effective value Equals (or any value when Equals is empty), every
// property in Require must have a value.
type Rule struct {
	When    string   `json:"when"`
	Equals  string   `json:"equals,omitempty"`
	Require []string `json:"require"`
}

// Descriptor builds the component descriptor for p.
func (p PropertyDef) Descriptor() (component.PropertyDescriptor, error) {
	d := component.PropertyDescriptor{
		Name:               p.Name,
		DisplayName:        p.DisplayName,
		Description:        p.Description,
		Default:            p.Default,
		Required:           p.Required,
		Sensitive:          p.Sensitive,
		ExpressionLanguage: p.ExpressionLanguage,
		AllowableValues:    p.AllowableValues,
		ServiceType:        p.Service,
	}

	for _, name := range p.Validators {
		v, ok := component.LookupValidator(name)
		if !ok {
			return component.PropertyDescriptor{}, fmt.Errorf("property %q: unknown validator %q", p.Name, name)
		}
		d.Validators = append(d.Validators, v)
	}

	if p.Pattern != "" {
		re, err := regexp.Compile(p.Pattern)
		if err != nil {
			return component.PropertyDescriptor{}, fmt.Errorf("property %q: invalid pattern: %w", p.Name, err)
		}
		d.Validators = append(d.Validators, component.MatchesPattern(re))
	}

	return d, nil
}

// Descriptors builds every property descriptor in declaration order.
func (d *Definition) Descriptors() ([]component.PropertyDescriptor, error) {
	out := make([]component.PropertyDescriptor, 0, len(d.Properties))
	for _, p := range d.Properties {
		desc, err := p.Descriptor()
		if err != nil {
			return nil, fmt.Errorf("component %s: %w", d.Name, err)
		}
		out = append(out, desc)
	}
	return out, nil
}

// Property returns the declared property with the given name.
func (d *Definition) Property(name string) (PropertyDef, bool) {
	key := component.Key(name)
	for _, p := range d.Properties {
		if component.Key(p.Name) == key {
			return p, true
		}
	}
	return PropertyDef{}, false
}

// New instantiates the definition. id is the service identifier for
// service definitions and is ignored otherwise.
//
// Processors are component.Router, services are component.TypedService
// whose type is the definition name, and anything else is a plain
// component.Component.
func (d *Definition) New(id string) (component.Component, error) {
	descriptors, err := d.Descriptors()
	if err != nil {
		return nil, err
	}

	base := component.NewBase(descriptors...)
	if d.Dynamic {
		base = component.NewDynamicBase(descriptors...)
	}
	c := Component{Base: base, def: d}

	switch d.Kind {
	case KindProcessor:
		return &Processor{Component: c}, nil
	case KindService:
		if id == "" {
			id = d.Name
		}
		return &Service{Component: c, id: id}, nil
	default:
		return &c, nil
	}
}
