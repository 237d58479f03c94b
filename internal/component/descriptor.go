package component

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// PropertyDescriptor identifies one configurable property of a component.
//
// Descriptors are compared by Key, never by pointer or full struct equality,
// so a stand-in carrying only a Name addresses the same property as the
// fully populated descriptor in the component's catalog.
type PropertyDescriptor struct {
	// Name is unique within a component.
	Name string `json:"name"`

	// DisplayName is used as the subject of validation results when set.
	DisplayName string `json:"display_name,omitempty"`

	Description string `json:"description,omitempty"`

	// Default is the effective value while the property is unset.
	Default Value `json:"default"`

	Required  bool `json:"required,omitempty"`
	Sensitive bool `json:"sensitive,omitempty"`

	// Dynamic marks descriptors synthesised for names outside the catalog.
	Dynamic bool `json:"dynamic,omitempty"`

	// ExpressionLanguage reports whether values may contain expressions.
	ExpressionLanguage bool `json:"expression_language,omitempty"`

	// AllowableValues restricts the value to a fixed set when non-empty.
	AllowableValues []string `json:"allowable_values,omitempty"`

	// ServiceType, when non-empty, makes the value a controller service
	// identifier that must resolve to a service of this type.
	ServiceType string `json:"service_type,omitempty"`

	Validators []Validator `json:"-"`
}

// Key returns the identity key for a property name.
// Names are NFC-normalised so visually identical names address one property.
func Key(name string) string {
	return norm.NFC.String(name)
}

// Key returns the descriptor's identity key.
func (d PropertyDescriptor) Key() string {
	return Key(d.Name)
}

// Same reports whether two descriptors address the same property.
func (d PropertyDescriptor) Same(other PropertyDescriptor) bool {
	return d.Key() == other.Key()
}

// Label returns the display name, falling back to the name.
func (d PropertyDescriptor) Label() string {
	if d.DisplayName != "" {
		return d.DisplayName
	}
	return d.Name
}

// IdentifiesService reports whether values of this property are controller
// service identifiers.
func (d PropertyDescriptor) IdentifiesService() bool {
	return d.ServiceType != ""
}

// Named returns a partial descriptor carrying only a name. It is enough to
// address a property; the harness resolves the full descriptor itself.
func Named(name string) PropertyDescriptor {
	return PropertyDescriptor{Name: name}
}

// Dynamic returns the descriptor used for a name outside a component's
// declared catalog when the component accepts dynamic properties.
func Dynamic(name string) PropertyDescriptor {
	return PropertyDescriptor{Name: name, Dynamic: true}
}

// Validate checks input against the allowable values, the controller
// service reference (if any) and every validator, in that order.
// The first failure is returned; a property yields one result.
func (d PropertyDescriptor) Validate(input string, ctx ValidationContext) ValidationResult {
	subject := d.Label()

	if len(d.AllowableValues) > 0 && !slices.Contains(d.AllowableValues, input) {
		return Invalid(subject, input,
			fmt.Sprintf("given value not found in allowed set '%s'", strings.Join(d.AllowableValues, ", ")))
	}

	if d.IdentifiesService() {
		if r := validateServiceReference(d, input, ctx); !r.Valid {
			return r
		}
	}

	for _, v := range d.Validators {
		if r := v.Validate(subject, input, ctx); !r.Valid {
			return r
		}
	}

	return Valid(subject, input)
}

// validateServiceReference resolves input as a service identifier and
// validates the referenced service's own configuration.
func validateServiceReference(d PropertyDescriptor, input string, ctx ValidationContext) ValidationResult {
	subject := d.Label()
	if ctx == nil || ctx.ServiceLookup() == nil {
		return Invalid(subject, input, "no controller service lookup is available")
	}

	svc, ok := ctx.ServiceLookup().Service(input)
	if !ok {
		return Invalid(subject, input,
			fmt.Sprintf("property references controller service %q which does not exist", input))
	}

	if typed, ok := svc.(TypedService); ok && typed.ServiceType() != d.ServiceType {
		return Invalid(subject, input,
			fmt.Sprintf("controller service %q is of type %s, expected %s", input, typed.ServiceType(), d.ServiceType))
	}

	problems, err := ctx.ValidateService(input)
	if err != nil {
		return Invalid(subject, input, fmt.Sprintf("controller service %q could not be validated: %v", input, err))
	}
	if len(problems) > 0 {
		return Invalid(subject, input,
			fmt.Sprintf("controller service %q is invalid: %d validation failures", input, len(problems)))
	}

	return Valid(subject, input)
}
