package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/propharness/internal/component"
)

func codes(errs []ValidationError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Code
	}
	return out
}

func TestValidateValidDefinition(t *testing.T) {
	def := &Definition{
		Name: "PutRecord",
		Kind: KindProcessor,
		Properties: []PropertyDef{
			{Name: "Batch Size", Default: component.Some("10"), Validators: []string{"positive_integer"}},
			{Name: "Mode", Default: component.Some("single"), AllowableValues: []string{"single", "batch"}},
			{Name: "Record Writer", Service: "JSONWriter", Validators: []string{"service"}},
			{Name: "Prefix", Pattern: "^[a-z]+$", Default: component.Some("rec")},
		},
		Relationships: []RelationshipDef{{Name: "success"}, {Name: "failure"}},
		Rules:         []Rule{{When: "Mode", Equals: "batch", Require: []string{"Prefix"}}},
	}

	assert.Empty(t, Validate(def))
}

func TestValidateNil(t *testing.T) {
	errs := Validate(nil)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrNilDefinition, errs[0].Code)
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name string
		def  *Definition
		want []string
	}{
		{
			name: "unknown validator",
			def:  &Definition{Name: "X", Properties: []PropertyDef{{Name: "A", Validators: []string{"nope"}}}},
			want: []string{ErrUnknownValidator},
		},
		{
			name: "duplicate property ignoring case",
			def:  &Definition{Name: "X", Properties: []PropertyDef{{Name: "Batch Size"}, {Name: "batch size"}}},
			want: []string{ErrDuplicateProperty},
		},
		{
			name: "default not allowed",
			def: &Definition{Name: "X", Properties: []PropertyDef{
				{Name: "Mode", Default: component.Some("stream"), AllowableValues: []string{"single", "batch"}},
			}},
			want: []string{ErrDefaultNotAllowed},
		},
		{
			name: "default invalid",
			def: &Definition{Name: "X", Properties: []PropertyDef{
				{Name: "Size", Default: component.Some("ten"), Validators: []string{"positive_integer"}},
			}},
			want: []string{ErrDefaultInvalid},
		},
		{
			name: "default does not match pattern",
			def: &Definition{Name: "X", Properties: []PropertyDef{
				{Name: "Prefix", Default: component.Some("ABC"), Pattern: "^[a-z]+$"},
			}},
			want: []string{ErrDefaultInvalid},
		},
		{
			name: "invalid pattern",
			def:  &Definition{Name: "X", Properties: []PropertyDef{{Name: "P", Pattern: "("}}},
			want: []string{ErrInvalidPattern},
		},
		{
			name: "service default",
			def: &Definition{Name: "X", Properties: []PropertyDef{
				{Name: "Writer", Service: "JSONWriter", Default: component.Some("w")},
			}},
			want: []string{ErrServiceDefault},
		},
		{
			name: "empty name",
			def:  &Definition{Name: "X", Properties: []PropertyDef{{Name: ""}}},
			want: []string{ErrEmptyPropertyName},
		},
		{
			name: "empty allowable values",
			def:  &Definition{Name: "X", Properties: []PropertyDef{{Name: "A", AllowableValues: []string{}}}},
			want: []string{ErrEmptyAllowableValues},
		},
		{
			name: "relationships on a service",
			def:  &Definition{Name: "X", Kind: KindService, Relationships: []RelationshipDef{{Name: "success"}}},
			want: []string{ErrRelationshipsNotRouted},
		},
		{
			name: "duplicate relationship",
			def: &Definition{Name: "X", Kind: KindProcessor, Relationships: []RelationshipDef{
				{Name: "success"}, {Name: "success"},
			}},
			want: []string{ErrDuplicateRelationship},
		},
		{
			name: "rule unknown properties",
			def: &Definition{Name: "X", Properties: []PropertyDef{{Name: "A"}}, Rules: []Rule{
				{When: "Missing", Require: []string{"A", "Other"}},
			}},
			want: []string{ErrRuleUnknownProperty, ErrRuleUnknownProperty},
		},
		{
			name: "rule empty require",
			def: &Definition{Name: "X", Properties: []PropertyDef{{Name: "A"}}, Rules: []Rule{
				{When: "A"},
			}},
			want: []string{ErrRuleEmptyRequire},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, codes(Validate(tt.def)))
		})
	}
}

func TestValidateCollectsEveryProblem(t *testing.T) {
	def := &Definition{
		Name: "X",
		Kind: KindComponent,
		Properties: []PropertyDef{
			{Name: "A", Validators: []string{"nope"}},
			{Name: "a"},
		},
		Relationships: []RelationshipDef{{Name: "success"}},
	}

	assert.Equal(t, []string{ErrUnknownValidator, ErrDuplicateProperty, ErrRelationshipsNotRouted}, codes(Validate(def)))
}

func TestValidateDynamicRulesMayReferenceUndeclared(t *testing.T) {
	def := &Definition{
		Name:    "X",
		Dynamic: true,
		Rules:   []Rule{{When: "Header.Trace", Require: []string{"Header.Span"}}},
	}
	assert.Empty(t, Validate(def))
}

func TestValidationErrorFormat(t *testing.T) {
	withLine := ValidationError{Field: "component.X.property.A", Message: "bad", Code: ErrDefaultInvalid, Line: 7}
	assert.Equal(t, "[E104] line 7: component.X.property.A: bad", withLine.Error())

	withoutLine := ValidationError{Field: "component.X", Message: "bad", Code: ErrNilDefinition}
	assert.Equal(t, "[E100] component.X: bad", withoutLine.Error())
}
