package harness

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/propharness/internal/component"
	"github.com/roach88/propharness/internal/testutil"
)

func TestNew_NilComponent(t *testing.T) {
	h, err := New(nil)
	assert.Nil(t, h)
	assert.ErrorIs(t, err, ErrNilComponent)

	assert.Panics(t, func() { MustNew(nil) })
}

func TestNew_DefaultIDIsUUIDv7(t *testing.T) {
	h := MustNew(testutil.NewPlain())

	id, err := uuid.Parse(h.ID())
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())
}

func TestNew_FixedIDWinsOverGenerator(t *testing.T) {
	ids := testutil.NewFixedIDs("gen")

	assert.Equal(t, "gen", MustNew(testutil.NewPlain(), WithIDGenerator(ids)).ID())
	assert.Equal(t, "fixed", MustNew(testutil.NewPlain(), WithIDGenerator(ids), WithID("fixed")).ID())
	assert.Equal(t, "gen-2", MustNew(testutil.NewPlain(), WithIDGenerator(ids)).ID())
}

func TestNew_NameDefaultsToTypeName(t *testing.T) {
	assert.Equal(t, "Plain", MustNew(testutil.NewPlain()).Name())
	assert.Equal(t, "Custom", MustNew(testutil.NewPlain(), WithName("Custom")).Name())
}

func TestProperty_DefaultBeforeSet(t *testing.T) {
	h, _ := newPlainHarness(t)

	pv, ok := h.PropertyByName("Batch Size")
	require.True(t, ok)
	assert.True(t, pv.IsSet())
	assert.Equal(t, "10", pv.String())

	n, err := pv.Int()
	require.NoError(t, err)
	assert.Equal(t, int64(10), n)
}

func TestProperty_UnsetWithoutDefault(t *testing.T) {
	h, _ := newPlainHarness(t)

	pv, ok := h.PropertyByName("Host")
	require.True(t, ok)
	assert.False(t, pv.IsSet())
}

func TestProperty_UnknownName(t *testing.T) {
	h, _ := newPlainHarness(t)

	_, ok := h.PropertyByName("Nope")
	assert.False(t, ok)
}

func TestProperty_PartialDescriptorResolvesFull(t *testing.T) {
	h, _ := newPlainHarness(t)

	// A bare name carries no default; the component's descriptor does.
	pv, ok := h.Property(component.Named("Mode"))
	require.True(t, ok)
	assert.Equal(t, "single", pv.String())
}

func TestSetProperty_InvalidValueIsCommitted(t *testing.T) {
	h, c := newPlainHarness(t)

	result, err := h.SetPropertyByName("Batch Size", "abc")
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, "Batch Size", result.Subject)
	assert.Equal(t, "abc", result.Input)

	pv, _ := h.PropertyByName("Batch Size")
	assert.Equal(t, "abc", pv.String())

	mods := c.Modifications()
	require.Len(t, mods, 1)
	assert.Equal(t, testutil.Modification{
		Property: "Batch Size",
		Old:      component.Some("10"),
		New:      component.Some("abc"),
	}, mods[0])
}

func TestSetProperty_ValidValue(t *testing.T) {
	h, _ := newPlainHarness(t)

	result, err := h.SetPropertyByName("Mode", "batch")
	require.NoError(t, err)
	assert.True(t, result.Valid)

	result, err = h.SetPropertyByName("Mode", "bulk")
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, "given value not found in allowed set 'single, batch'", result.Explanation)
}

func TestSetProperty_ExactlyOneNotificationPerChange(t *testing.T) {
	h, c := newPlainHarness(t)

	_, err := h.SetPropertyByName("Batch Size", "20")
	require.NoError(t, err)
	_, err = h.SetPropertyByName("Batch Size", "20")
	require.NoError(t, err)

	assert.Equal(t, 1, c.Count("Batch Size"))
}

func TestSetProperty_SameAsDefaultDoesNotNotify(t *testing.T) {
	h, c := newPlainHarness(t)

	_, err := h.SetPropertyByName("Batch Size", "10")
	require.NoError(t, err)

	assert.Equal(t, 0, c.Count("Batch Size"))

	// The value is now configured even though it equals the default.
	props := h.Properties()
	assert.Equal(t, component.Some("10"), props[0].Value)
}

func TestSetProperty_UnknownPropertyIsAnError(t *testing.T) {
	h, c := newPlainHarness(t)

	_, err := h.SetPropertyByName("Nope", "x")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownProperty)

	var stateErr *StateError
	require.True(t, errors.As(err, &stateErr))
	assert.Equal(t, "Nope", stateErr.Subject)
	assert.Empty(t, c.Modifications())
}

func TestSetProperty_DynamicComponentAcceptsAnyName(t *testing.T) {
	c := testutil.NewDynamicPlain(batchSize)
	h := MustNew(c)

	result, err := h.SetPropertyByName("Header.X", "1")
	require.NoError(t, err)
	assert.True(t, result.Valid)

	pv, ok := h.PropertyByName("Header.X")
	require.True(t, ok)
	assert.Equal(t, "1", pv.String())
	assert.Equal(t, 1, c.Count("Header.X"))
}

func TestSetProperty_NormalisedNamesAddressOneProperty(t *testing.T) {
	c := testutil.NewPlain(component.PropertyDescriptor{Name: "caf\u00e9"})
	h := MustNew(c)

	_, err := h.SetPropertyByName("cafe\u0301", "x")
	require.NoError(t, err)

	pv, ok := h.PropertyByName("caf\u00e9")
	require.True(t, ok)
	assert.Equal(t, "x", pv.String())
}

func TestRemoveProperty_ConfiguredValue(t *testing.T) {
	h, c := newPlainHarness(t)
	_, err := h.SetPropertyByName("Batch Size", "20")
	require.NoError(t, err)
	c.Reset()

	removed, err := h.RemovePropertyByName("Batch Size")
	require.NoError(t, err)
	assert.True(t, removed)

	mods := c.Modifications()
	require.Len(t, mods, 1)
	assert.Equal(t, component.Some("20"), mods[0].Old)
	assert.Equal(t, component.None, mods[0].New)

	pv, _ := h.PropertyByName("Batch Size")
	assert.Equal(t, "10", pv.String(), "default applies again after removal")
}

func TestRemoveProperty_NotConfigured(t *testing.T) {
	h, c := newPlainHarness(t)

	removed, err := h.RemovePropertyByName("Batch Size")
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Empty(t, c.Modifications())
}

func TestRemoveProperty_DefaultValueDoesNotNotify(t *testing.T) {
	h, c := newPlainHarness(t)
	_, err := h.SetPropertyByName("Batch Size", "10")
	require.NoError(t, err)

	removed, err := h.RemovePropertyByName("Batch Size")
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Empty(t, c.Modifications())
}

func TestRemoveProperty_Unknown(t *testing.T) {
	h, _ := newPlainHarness(t)

	_, err := h.RemovePropertyByName("Nope")
	assert.ErrorIs(t, err, ErrUnknownProperty)
}

func TestProperties_CatalogOrderWithoutDefaults(t *testing.T) {
	h, _ := newPlainHarness(t)
	_, err := h.SetPropertyByName("Host", "example.org")
	require.NoError(t, err)

	props := h.Properties()
	require.Len(t, props, 3)
	assert.Equal(t, []string{"Batch Size", "Mode", "Host"},
		[]string{props[0].Descriptor.Name, props[1].Descriptor.Name, props[2].Descriptor.Name})
	assert.Equal(t, component.None, props[0].Value)
	assert.Equal(t, component.None, props[1].Value)
	assert.Equal(t, component.Some("example.org"), props[2].Value)
}

func TestProperties_DynamicEntriesFollowCatalog(t *testing.T) {
	h := MustNew(testutil.NewDynamicPlain(batchSize))
	_, err := h.SetPropertyByName("zeta", "1")
	require.NoError(t, err)
	_, err = h.SetPropertyByName("alpha", "2")
	require.NoError(t, err)

	props := h.Properties()
	require.Len(t, props, 3)
	assert.Equal(t, "Batch Size", props[0].Descriptor.Name)
	assert.Equal(t, "zeta", props[1].Descriptor.Name)
	assert.True(t, props[1].Descriptor.Dynamic)
	assert.Equal(t, "alpha", props[2].Descriptor.Name)
}

func TestProperties_EmptyCatalogInsertionOrder(t *testing.T) {
	h := MustNew(testutil.NewDynamicPlain())
	_, err := h.SetPropertyByName("b", "1")
	require.NoError(t, err)
	_, err = h.SetPropertyByName("a", "2")
	require.NoError(t, err)
	_, err = h.SetPropertyByName("b", "3")
	require.NoError(t, err)

	props := h.Properties()
	require.Len(t, props, 2)
	assert.Equal(t, "b", props[0].Descriptor.Name)
	assert.Equal(t, component.Some("3"), props[0].Value)
	assert.Equal(t, "a", props[1].Descriptor.Name)
}

func TestExpressionValidation_Toggle(t *testing.T) {
	el := component.PropertyDescriptor{Name: "Expr", Default: component.Some("${x}"), ExpressionLanguage: true}
	h := MustNew(testutil.NewPlain(batchSize, el))

	pv, _ := h.PropertyByName("Batch Size")
	_, err := pv.Evaluate()
	assert.NoError(t, err, "disabled by default")

	h.EnableExpressionValidation()
	pv, _ = h.PropertyByName("Batch Size")
	_, err = pv.Evaluate()
	assert.ErrorIs(t, err, component.ErrExpressionNotSupported)

	pv, _ = h.PropertyByName("Expr")
	_, err = pv.Evaluate()
	assert.NoError(t, err)

	h.SetValidateExpressionUsage(false)
	pv, _ = h.PropertyByName("Batch Size")
	_, attached := pv.Descriptor()
	assert.False(t, attached, "enabled but not allowed")

	h.SetValidateExpressionUsage(true)
	h.DisableExpressionValidation()
	pv, _ = h.PropertyByName("Batch Size")
	_, err = pv.Evaluate()
	assert.NoError(t, err)
}

func TestWithExpressionValidation(t *testing.T) {
	h := MustNew(testutil.NewPlain(batchSize), WithExpressionValidation())

	pv, _ := h.PropertyByName("Batch Size")
	d, ok := pv.Descriptor()
	require.True(t, ok)
	assert.Equal(t, "Batch Size", d.Name)
}

func TestAnnotationData(t *testing.T) {
	h, _ := newPlainHarness(t)
	assert.False(t, h.AnnotationData().IsSet())

	h.SetAnnotationData(component.Some("<config/>"))
	assert.Equal(t, component.Some("<config/>"), h.AnnotationData())
}

func TestYield(t *testing.T) {
	h, _ := newPlainHarness(t)
	assert.False(t, h.IsYieldCalled())
	h.Yield()
	assert.True(t, h.IsYieldCalled())
}

func TestMaxConcurrentTasks(t *testing.T) {
	h, _ := newPlainHarness(t)
	assert.Equal(t, 1, h.MaxConcurrentTasks())
}

func TestNewPropertyValue(t *testing.T) {
	h, _ := newPlainHarness(t)

	pv := h.NewPropertyValue("5 secs")
	d, err := pv.Duration()
	require.NoError(t, err)
	assert.Equal(t, "5s", d.String())

	_, attached := pv.Descriptor()
	assert.False(t, attached)
}
