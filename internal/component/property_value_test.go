package component

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPropertyValue_Conversions(t *testing.T) {
	n, err := NewPropertyValue(Some(" 42 "), nil, nil).Int()
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)

	b, err := NewPropertyValue(Some("True"), nil, nil).Bool()
	require.NoError(t, err)
	assert.True(t, b)

	d, err := NewPropertyValue(Some("30 secs"), nil, nil).Duration()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, d)

	_, err = NewPropertyValue(Some("abc"), nil, nil).Int()
	assert.Error(t, err)
}

func TestPropertyValue_UnsetConversions(t *testing.T) {
	pv := NewPropertyValue(None, nil, nil)
	assert.False(t, pv.IsSet())
	assert.Equal(t, "", pv.String())

	_, err := pv.Int()
	assert.ErrorIs(t, err, ErrValueNotSet)
	_, err = pv.Bool()
	assert.ErrorIs(t, err, ErrValueNotSet)
	_, err = pv.Duration()
	assert.ErrorIs(t, err, ErrValueNotSet)
	_, err = pv.Service()
	assert.ErrorIs(t, err, ErrValueNotSet)
}

func TestPropertyValue_Service(t *testing.T) {
	lookup := stubLookup{"writer": &stubService{id: "writer"}}

	svc, err := NewPropertyValue(Some("writer"), lookup, nil).Service()
	require.NoError(t, err)
	assert.Equal(t, "writer", svc.Identifier())

	_, err = NewPropertyValue(Some("missing"), lookup, nil).Service()
	assert.True(t, errors.Is(err, ErrServiceNotFound))

	_, err = NewPropertyValue(Some("writer"), nil, nil).Service()
	assert.ErrorIs(t, err, ErrNoServiceLookup)
}

func TestPropertyValue_Evaluate(t *testing.T) {
	// No descriptor attached: evaluation is always permitted.
	pv, err := NewPropertyValue(Some("${now()}"), nil, nil).Evaluate()
	require.NoError(t, err)
	assert.Equal(t, "${now()}", pv.String())

	supported := PropertyDescriptor{Name: "Path", ExpressionLanguage: true}
	_, err = NewPropertyValue(Some("${dir}"), nil, &supported).Evaluate()
	assert.NoError(t, err)

	unsupported := PropertyDescriptor{Name: "Mode"}
	_, err = NewPropertyValue(Some("${mode}"), nil, &unsupported).Evaluate()
	assert.ErrorIs(t, err, ErrExpressionNotSupported)
	assert.Contains(t, err.Error(), "Mode")
}

func TestPropertyValue_Descriptor(t *testing.T) {
	_, ok := NewPropertyValue(Some("x"), nil, nil).Descriptor()
	assert.False(t, ok)

	d := PropertyDescriptor{Name: "Path"}
	got, ok := NewPropertyValue(Some("x"), nil, &d).Descriptor()
	assert.True(t, ok)
	assert.Equal(t, "Path", got.Name)
}
