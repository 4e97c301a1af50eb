package preprocessing

import (
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/KenkenGoda/trapi/pkg/errors"
)

func TestHashEncode_Deterministic(t *testing.T) {
	values := []string{"apple", "banana", "apple", "cherry"}

	out, h, err := HashEncode(values, DefaultHashFeatures)
	require.NoError(t, err)
	r, c := out.Dims()
	assert.Equal(t, 4, r)
	assert.Equal(t, DefaultHashFeatures, c)
	assert.Equal(t, DefaultHashFeatures, h.NFeatures())

	// identical tokens hash identically
	assert.True(t, mat.Equal(out.RowView(0), out.RowView(2)))

	again, _, err := HashEncode(values, DefaultHashFeatures)
	require.NoError(t, err)
	assert.True(t, mat.Equal(out, again))
}

func TestHashEncode_OneNonZeroPerToken(t *testing.T) {
	out, h, err := HashEncode([]string{"a", "b", "c"}, 4)
	require.NoError(t, err)

	for i, tok := range []string{"a", "b", "c"} {
		idx, sign := h.Bucket(tok)
		for j := 0; j < 4; j++ {
			if j == idx {
				assert.Equal(t, sign, out.At(i, j))
			} else {
				assert.Equal(t, 0.0, out.At(i, j))
			}
		}
	}
}

func TestFeatureHasher_WithoutAlternateSign(t *testing.T) {
	h, err := NewFeatureHasher(8, WithAlternateSign(false))
	require.NoError(t, err)

	values := make([]string, 200)
	for i := range values {
		values[i] = "token-" + strconv.Itoa(i)
	}
	out, err := h.Transform(values)
	require.NoError(t, err)

	total := 0.0
	for i := range values {
		for j := 0; j < 8; j++ {
			assert.GreaterOrEqual(t, out.At(i, j), 0.0)
			total += out.At(i, j)
		}
	}
	assert.Equal(t, 200.0, total)
}

func TestFeatureHasher_TransformTokensAccumulates(t *testing.T) {
	h, err := NewFeatureHasher(3, WithAlternateSign(false))
	require.NoError(t, err)

	out, err := h.TransformTokens([][]string{{"a", "a", "b"}})
	require.NoError(t, err)
	sum := 0.0
	for j := 0; j < 3; j++ {
		sum += math.Abs(out.At(0, j))
	}
	assert.Equal(t, 3.0, sum)
}

func TestFeatureHasher_Validation(t *testing.T) {
	_, err := NewFeatureHasher(0)
	var vErr *errors.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "n_features", vErr.ParamName)

	h, err := NewFeatureHasher(2)
	require.NoError(t, err)
	_, err = h.Transform(nil)
	assert.True(t, errors.Is(err, errors.ErrEmptyData))
}
