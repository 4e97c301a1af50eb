package preprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KenkenGoda/trapi/pkg/errors"
)

func TestLabelEncoder_FitTransform(t *testing.T) {
	codes, enc, err := LabelEncode([]string{"tokyo", "osaka", "tokyo", "nagoya"})
	require.NoError(t, err)

	assert.Equal(t, []string{"nagoya", "osaka", "tokyo"}, enc.Classes())
	assert.Equal(t, []int{2, 1, 2, 0}, codes)
	assert.Equal(t, 4, enc.NSamples())
	assert.Equal(t, "LabelEncoder(n_classes=3)", enc.String())
}

func TestLabelEncoder_TransformReusesMapping(t *testing.T) {
	_, enc, err := LabelEncode([]string{"b", "a", "c"})
	require.NoError(t, err)

	codes, err := enc.Transform([]string{"c", "c", "a"})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 2, 0}, codes)
}

func TestLabelEncoder_UnseenLabel(t *testing.T) {
	_, enc, err := LabelEncode([]string{"a", "b"})
	require.NoError(t, err)

	_, err = enc.Transform([]string{"a", "z"})
	require.Error(t, err)

	var unknown *errors.UnknownCategoryError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "z", unknown.Value)
	assert.Contains(t, err.Error(), "previously unseen label")
}

func TestLabelEncoder_NotFitted(t *testing.T) {
	enc := NewLabelEncoder()

	_, err := enc.Transform([]string{"a"})
	var notFitted *errors.NotFittedError
	require.True(t, errors.As(err, &notFitted))
	assert.Equal(t, "Transform", notFitted.Method)

	_, err = enc.InverseTransform([]int{0})
	require.True(t, errors.As(err, &notFitted))
	assert.Equal(t, "LabelEncoder()", enc.String())
}

func TestLabelEncoder_InverseTransform(t *testing.T) {
	_, enc, err := LabelEncode([]string{"x", "y", "z"})
	require.NoError(t, err)

	values, err := enc.InverseTransform([]int{2, 0})
	require.NoError(t, err)
	assert.Equal(t, []string{"z", "x"}, values)

	_, err = enc.InverseTransform([]int{3})
	var valueErr *errors.ValueError
	assert.True(t, errors.As(err, &valueErr))
}

func TestLabelEncoder_EmptyData(t *testing.T) {
	_, _, err := LabelEncode(nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrEmptyData))
}

func TestOrdinalEncoder(t *testing.T) {
	columns := [][]string{
		{"red", "blue", "red"},
		{"s", "m", "l"},
	}
	out, enc, err := OrdinalEncode(columns)
	require.NoError(t, err)

	r, c := out.Dims()
	assert.Equal(t, 3, r)
	assert.Equal(t, 2, c)
	assert.Equal(t, []float64{1, 0, 1}, []float64{out.At(0, 0), out.At(1, 0), out.At(2, 0)})
	assert.Equal(t, []float64{2, 1, 0}, []float64{out.At(0, 1), out.At(1, 1), out.At(2, 1)})
	assert.Equal(t, [][]string{{"blue", "red"}, {"l", "m", "s"}}, enc.Categories())

	_, err = enc.Transform([][]string{{"red"}})
	var dimErr *errors.DimensionError
	assert.True(t, errors.As(err, &dimErr))
}

func TestOrdinalEncoder_RaggedColumns(t *testing.T) {
	_, _, err := OrdinalEncode([][]string{{"a", "b"}, {"c"}})
	var dimErr *errors.DimensionError
	require.True(t, errors.As(err, &dimErr))
	assert.Equal(t, 2, dimErr.Expected)
	assert.Equal(t, 1, dimErr.Got)
}
