package schema

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/propharness/internal/component"
)

// CompileComponent parses a CUE value into a Definition.
//
// The value should be the component struct itself:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`component: PutRecord: { ... }`)
//	def, err := CompileComponent(v.LookupPath(cue.ParsePath("component.PutRecord")))
func CompileComponent(v cue.Value) (*Definition, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	def := &Definition{Kind: KindComponent, Pos: v.Pos()}

	if sels := v.Path().Selectors(); len(sels) > 0 {
		def.Name = selectorName(sels[len(sels)-1])
	}

	kind, ok, err := optString(v, "kind")
	if err != nil {
		return nil, err
	}
	if ok {
		switch Kind(kind) {
		case KindProcessor, KindService, KindComponent:
			def.Kind = Kind(kind)
		default:
			return nil, &CompileError{
				Field:   "kind",
				Message: fmt.Sprintf("kind must be processor, service or component, got %q", kind),
				Pos:     v.LookupPath(cue.ParsePath("kind")).Pos(),
			}
		}
	}

	if def.Description, _, err = optString(v, "description"); err != nil {
		return nil, err
	}
	if def.Dynamic, _, err = optBool(v, "dynamic_properties"); err != nil {
		return nil, err
	}

	if def.Properties, err = parseProperties(v); err != nil {
		return nil, err
	}
	if def.Relationships, err = parseRelationships(v); err != nil {
		return nil, err
	}

	if scenarios := v.LookupPath(cue.ParsePath("scenario")); scenarios.Exists() {
		if def.Scenarios, err = stringOrList(scenarios, "scenario"); err != nil {
			return nil, err
		}
	}

	if def.Rules, err = parseRules(v); err != nil {
		return nil, err
	}

	return def, nil
}

// parseProperties extracts property declarations in declaration order.
func parseProperties(v cue.Value) ([]PropertyDef, error) {
	var props []PropertyDef

	propsVal := v.LookupPath(cue.ParsePath("property"))
	if !propsVal.Exists() {
		return props, nil
	}

	iter, err := propsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	for iter.Next() {
		name := selectorName(iter.Selector())
		pv := iter.Value()
		field := "property." + name

		p := PropertyDef{Name: name, Pos: pv.Pos()}

		if def, ok, err := optString(pv, "default"); err != nil {
			return nil, err
		} else if ok {
			p.Default = component.Some(def)
		}
		if p.DisplayName, _, err = optString(pv, "display_name"); err != nil {
			return nil, err
		}
		if p.Description, _, err = optString(pv, "description"); err != nil {
			return nil, err
		}
		if p.Required, _, err = optBool(pv, "required"); err != nil {
			return nil, err
		}
		if p.Sensitive, _, err = optBool(pv, "sensitive"); err != nil {
			return nil, err
		}
		if p.ExpressionLanguage, _, err = optBool(pv, "expression_language"); err != nil {
			return nil, err
		}
		if p.Pattern, _, err = optString(pv, "pattern"); err != nil {
			return nil, err
		}
		if p.Service, _, err = optString(pv, "service"); err != nil {
			return nil, err
		}

		if val := pv.LookupPath(cue.ParsePath("validator")); val.Exists() {
			if p.Validators, err = stringOrList(val, field+".validator"); err != nil {
				return nil, err
			}
		}
		if val := pv.LookupPath(cue.ParsePath("allowable_values")); val.Exists() {
			if p.AllowableValues, err = stringOrList(val, field+".allowable_values"); err != nil {
				return nil, err
			}
		}

		props = append(props, p)
	}

	return props, nil
}

// parseRelationships extracts relationship declarations. Each field maps a
// relationship name to its description.
func parseRelationships(v cue.Value) ([]RelationshipDef, error) {
	var rels []RelationshipDef

	relsVal := v.LookupPath(cue.ParsePath("relationship"))
	if !relsVal.Exists() {
		return rels, nil
	}

	iter, err := relsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	for iter.Next() {
		desc, err := iter.Value().String()
		if err != nil {
			return nil, &CompileError{
				Field:   "relationship." + selectorName(iter.Selector()),
				Message: "relationship description must be a string",
				Pos:     iter.Value().Pos(),
			}
		}
		rels = append(rels, RelationshipDef{Name: selectorName(iter.Selector()), Description: desc})
	}

	return rels, nil
}

// parseRules extracts conditional requirement rules.
func parseRules(v cue.Value) ([]Rule, error) {
	var rules []Rule

	rulesVal := v.LookupPath(cue.ParsePath("rule"))
	if !rulesVal.Exists() {
		return rules, nil
	}

	iter, err := rulesVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	for i := 0; iter.Next(); i++ {
		rv := iter.Value()
		field := fmt.Sprintf("rule[%d]", i)

		when, ok, err := optString(rv, "when")
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, &CompileError{Field: field + ".when", Message: "when is required", Pos: rv.Pos()}
		}

		r := Rule{When: when}
		if r.Equals, _, err = optString(rv, "equals"); err != nil {
			return nil, err
		}

		req := rv.LookupPath(cue.ParsePath("require"))
		if !req.Exists() {
			return nil, &CompileError{Field: field + ".require", Message: "require is required", Pos: rv.Pos()}
		}
		if r.Require, err = stringOrList(req, field+".require"); err != nil {
			return nil, err
		}

		rules = append(rules, r)
	}

	return rules, nil
}

// selectorName returns a field label without CUE quoting.
func selectorName(sel cue.Selector) string {
	if sel.IsString() {
		return sel.Unquoted()
	}
	return sel.String()
}

func optString(v cue.Value, path string) (string, bool, error) {
	f := v.LookupPath(cue.ParsePath(path))
	if !f.Exists() {
		return "", false, nil
	}
	s, err := f.String()
	if err != nil {
		return "", false, &CompileError{Field: path, Message: "must be a string", Pos: f.Pos()}
	}
	return s, true, nil
}

func optBool(v cue.Value, path string) (bool, bool, error) {
	f := v.LookupPath(cue.ParsePath(path))
	if !f.Exists() {
		return false, false, nil
	}
	b, err := f.Bool()
	if err != nil {
		return false, false, &CompileError{Field: path, Message: "must be a boolean", Pos: f.Pos()}
	}
	return b, true, nil
}

// stringOrList accepts a single string or a list of strings.
func stringOrList(v cue.Value, field string) ([]string, error) {
	if s, err := v.String(); err == nil {
		return []string{s}, nil
	}

	iter, err := v.List()
	if err != nil {
		return nil, &CompileError{Field: field, Message: "must be a string or a list of strings", Pos: v.Pos()}
	}

	out := []string{}
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, &CompileError{Field: field, Message: "list elements must be strings", Pos: iter.Value().Pos()}
		}
		out = append(out, s)
	}
	return out, nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
