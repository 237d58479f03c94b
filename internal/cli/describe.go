package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/propharness/internal/component"
	"github.com/roach88/propharness/internal/harness"
	"github.com/roach88/propharness/internal/schema"
)

// PropertyInfo describes one declared property.
type PropertyInfo struct {
	Name            string          `json:"name"`
	Default         component.Value `json:"default"`
	Required        bool            `json:"required,omitempty"`
	Sensitive       bool            `json:"sensitive,omitempty"`
	Validators      []string        `json:"validators,omitempty"`
	Pattern         string          `json:"pattern,omitempty"`
	AllowableValues []string        `json:"allowable_values,omitempty"`
	Service         string          `json:"service,omitempty"`
}

// DescribeResult is the describe command's output.
type DescribeResult struct {
	Name          string                       `json:"name"`
	Kind          schema.Kind                  `json:"kind"`
	Description   string                       `json:"description,omitempty"`
	Dynamic       bool                         `json:"dynamic_properties,omitempty"`
	Properties    []PropertyInfo               `json:"properties"`
	Relationships []string                     `json:"relationships"`
	Valid         bool                         `json:"valid"`
	Violations    []component.ValidationResult `json:"violations,omitempty"`
}

// NewDescribeCommand creates the describe command.
func NewDescribeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "describe <specs-dir> <component>",
		Short: "Describe a component definition",
		Long: `List a component's properties and relationships, and validate its
default configuration in a fresh harness.

Examples:
  propharness describe ./specs PutRecord
  propharness describe ./specs PutRecord --format json`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDescribe(rootOpts, args[0], args[1], cmd)
		},
	}

	return cmd
}

func runDescribe(opts *RootOptions, specsDir, name string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	loaded, loadErrors := schema.Load(specsDir, schema.LoadModeCollectAll)
	if loaded == nil {
		var loadErr *schema.LoadError
		if errors.As(loadErrors[0], &loadErr) {
			return commandError(formatter, loadErr.Code, loadErr.Message)
		}
		return commandError(formatter, schema.ErrCodeGeneric, loadErrors[0].Error())
	}
	for _, err := range loadErrors {
		formatter.VerboseLog("skipping: %v", err)
	}

	def, ok := loaded.Find(name)
	if !ok {
		return commandError(formatter, ErrCodeUnknownComponent,
			fmt.Sprintf("component %q not found in %s (have %s)", name, specsDir, strings.Join(loaded.Names(), ", ")))
	}

	result, err := describe(def, opts, cmd.ErrOrStderr())
	if err != nil {
		return commandError(formatter, ErrCodeInstantiate, err.Error())
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	writeDescription(formatter.Writer, result)
	return nil
}

// describe instantiates def in a fresh harness and reports its default
// configuration.
func describe(def *schema.Definition, opts *RootOptions, logw io.Writer) (*DescribeResult, error) {
	c, err := def.New(def.Name)
	if err != nil {
		return nil, err
	}

	hopts := []harness.Option{
		harness.WithName(def.Name),
		harness.WithLogger(opts.Logger(logw)),
	}
	if opts.ExpressionValidation {
		hopts = append(hopts, harness.WithExpressionValidation())
	}
	h, err := harness.New(c, hopts...)
	if err != nil {
		return nil, err
	}

	result := &DescribeResult{
		Name:          def.Name,
		Kind:          def.Kind,
		Description:   def.Description,
		Dynamic:       def.Dynamic,
		Properties:    make([]PropertyInfo, 0, len(def.Properties)),
		Relationships: component.RelationshipNames(h.AvailableRelationships()),
	}
	for _, p := range def.Properties {
		result.Properties = append(result.Properties, PropertyInfo{
			Name:            p.Name,
			Default:         p.Default,
			Required:        p.Required,
			Sensitive:       p.Sensitive,
			Validators:      p.Validators,
			Pattern:         p.Pattern,
			AllowableValues: p.AllowableValues,
			Service:         p.Service,
		})
	}

	result.Violations = h.Validate()
	result.Valid = len(result.Violations) == 0
	return result, nil
}

func writeDescription(w io.Writer, r *DescribeResult) {
	fmt.Fprintf(w, "%s (%s)\n", r.Name, r.Kind)
	if r.Description != "" {
		fmt.Fprintf(w, "  %s\n", r.Description)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Properties:")
	for _, p := range r.Properties {
		fmt.Fprintf(w, "  %s%s\n", p.Name, propertyAttributes(p))
	}
	if r.Dynamic {
		fmt.Fprintln(w, "  (dynamic properties allowed)")
	}

	if len(r.Relationships) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Relationships:")
		for _, rel := range r.Relationships {
			fmt.Fprintf(w, "  %s\n", rel)
		}
	}

	fmt.Fprintln(w)
	if r.Valid {
		fmt.Fprintln(w, "✓ Default configuration is valid")
		return
	}
	fmt.Fprintln(w, "✗ Default configuration is invalid")
	for _, v := range r.Violations {
		fmt.Fprintf(w, "  %s\n", v)
	}
}

func propertyAttributes(p PropertyInfo) string {
	var attrs []string
	if v, ok := p.Default.Get(); ok {
		if p.Sensitive {
			v = "********"
		}
		attrs = append(attrs, fmt.Sprintf("default=%q", v))
	}
	if p.Required {
		attrs = append(attrs, "required")
	}
	if p.Sensitive {
		attrs = append(attrs, "sensitive")
	}
	if len(p.Validators) > 0 {
		attrs = append(attrs, "validators="+strings.Join(p.Validators, ","))
	}
	if p.Pattern != "" {
		attrs = append(attrs, fmt.Sprintf("pattern=%q", p.Pattern))
	}
	if len(p.AllowableValues) > 0 {
		attrs = append(attrs, "allowable="+strings.Join(p.AllowableValues, "|"))
	}
	if p.Service != "" {
		attrs = append(attrs, "service="+p.Service)
	}
	if len(attrs) == 0 {
		return ""
	}
	return "  " + strings.Join(attrs, " ")
}
