package schema

import (
	"fmt"
	"regexp"
	"slices"

	"cuelang.org/go/cue/token"

	"github.com/roach88/propharness/internal/component"
)

// Validation error codes (E100-E199)
const (
	ErrNilDefinition = "E100" // nothing to validate

	// Property errors (E101-E109)
	ErrUnknownValidator     = "E101" // validator name not registered
	ErrDuplicateProperty    = "E102" // two properties share an identity key
	ErrDefaultNotAllowed    = "E103" // default outside allowable values
	ErrDefaultInvalid       = "E104" // default fails its own validators
	ErrInvalidPattern       = "E105" // pattern does not compile
	ErrServiceDefault       = "E106" // service reference with a default
	ErrEmptyPropertyName    = "E107" // property name is blank
	ErrEmptyAllowableValues = "E108" // allowable_values declared but empty

	// Relationship errors (E110-E119)
	ErrRelationshipsNotRouted = "E110" // relationships on a non-processor
	ErrDuplicateRelationship  = "E111" // relationship declared twice

	// Rule errors (E120-E129)
	ErrRuleUnknownProperty = "E120" // rule refers to an undeclared property
	ErrRuleEmptyRequire    = "E121" // rule requires nothing
)

// ValidationError represents a definition authoring mistake.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a definition and returns every problem found.
func Validate(def *Definition) []ValidationError {
	if def == nil {
		return []ValidationError{{Field: "component", Message: "definition is nil", Code: ErrNilDefinition}}
	}

	var errs []ValidationError
	seen := make(map[string]bool, len(def.Properties))

	for _, p := range def.Properties {
		field := fmt.Sprintf("component.%s.property.%s", def.Name, p.Name)
		line := lineOf(p.Pos)

		if p.Name == "" {
			errs = append(errs, ValidationError{Field: field, Message: "property name must not be empty", Code: ErrEmptyPropertyName, Line: line})
		}

		key := component.Key(p.Name)
		if seen[key] {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("duplicate property name: %q", p.Name),
				Code:    ErrDuplicateProperty,
				Line:    line,
			})
		}
		seen[key] = true

		errs = append(errs, validateProperty(p, field, line)...)
	}

	if def.Kind != KindProcessor && len(def.Relationships) > 0 {
		errs = append(errs, ValidationError{
			Field:   fmt.Sprintf("component.%s.relationship", def.Name),
			Message: fmt.Sprintf("relationships are only allowed on processors, %s is a %s", def.Name, def.Kind),
			Code:    ErrRelationshipsNotRouted,
		})
	}

	rels := make(map[string]bool, len(def.Relationships))
	for _, r := range def.Relationships {
		if rels[r.Name] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("component.%s.relationship.%s", def.Name, r.Name),
				Message: fmt.Sprintf("duplicate relationship: %q", r.Name),
				Code:    ErrDuplicateRelationship,
			})
		}
		rels[r.Name] = true
	}

	for i, r := range def.Rules {
		field := fmt.Sprintf("component.%s.rule[%d]", def.Name, i)
		if len(r.Require) == 0 {
			errs = append(errs, ValidationError{Field: field + ".require", Message: "rule must require at least one property", Code: ErrRuleEmptyRequire})
		}
		for _, name := range append([]string{r.When}, r.Require...) {
			if _, ok := def.Property(name); !ok && !def.Dynamic {
				errs = append(errs, ValidationError{
					Field:   field,
					Message: fmt.Sprintf("rule refers to undeclared property %q", name),
					Code:    ErrRuleUnknownProperty,
				})
			}
		}
	}

	return errs
}

func lineOf(pos token.Pos) int {
	if !pos.IsValid() {
		return 0
	}
	return pos.Line()
}

func validateProperty(p PropertyDef, field string, line int) []ValidationError {
	var errs []ValidationError

	var validators []component.Validator
	for _, name := range p.Validators {
		v, ok := component.LookupValidator(name)
		if !ok {
			errs = append(errs, ValidationError{
				Field:   field + ".validator",
				Message: fmt.Sprintf("unknown validator %q (known: %v)", name, component.ValidatorNames()),
				Code:    ErrUnknownValidator,
				Line:    line,
			})
			continue
		}
		// Service lookups need a harness; defaults are checked without one.
		if name != "service" {
			validators = append(validators, v)
		}
	}

	if p.Pattern != "" {
		re, err := regexp.Compile(p.Pattern)
		if err != nil {
			errs = append(errs, ValidationError{
				Field:   field + ".pattern",
				Message: fmt.Sprintf("invalid pattern: %v", err),
				Code:    ErrInvalidPattern,
				Line:    line,
			})
		} else {
			validators = append(validators, component.MatchesPattern(re))
		}
	}

	if p.AllowableValues != nil && len(p.AllowableValues) == 0 {
		errs = append(errs, ValidationError{
			Field:   field + ".allowable_values",
			Message: "allowable_values must not be empty",
			Code:    ErrEmptyAllowableValues,
			Line:    line,
		})
	}

	def, hasDefault := p.Default.Get()
	if !hasDefault {
		return errs
	}

	if p.Service != "" {
		errs = append(errs, ValidationError{
			Field:   field + ".default",
			Message: "a controller service reference cannot have a default",
			Code:    ErrServiceDefault,
			Line:    line,
		})
	}

	if len(p.AllowableValues) > 0 && !slices.Contains(p.AllowableValues, def) {
		errs = append(errs, ValidationError{
			Field:   field + ".default",
			Message: fmt.Sprintf("default %q is not one of the allowable values %v", def, p.AllowableValues),
			Code:    ErrDefaultNotAllowed,
			Line:    line,
		})
	}

	for _, v := range validators {
		if r := v.Validate(p.Name, def, nil); !r.Valid {
			errs = append(errs, ValidationError{
				Field:   field + ".default",
				Message: fmt.Sprintf("default %q is invalid: %s", def, r.Explanation),
				Code:    ErrDefaultInvalid,
				Line:    line,
			})
		}
	}

	return errs
}
