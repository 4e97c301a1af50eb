package metrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KenkenGoda/trapi/pkg/errors"
)

func TestRegressionMetrics(t *testing.T) {
	tests := []struct {
		name    string
		fn      Func
		yTrue   []float64
		yPred   []float64
		want    float64
		wantErr bool
	}{
		{"mse perfect", MSE, []float64{1, 2, 3}, []float64{1, 2, 3}, 0, false},
		{"mse simple", MSE, []float64{1, 2, 3, 4}, []float64{1.5, 2.5, 2.5, 3.5}, 0.25, false},
		{"mse larger", MSE, []float64{10, 20, 30}, []float64{12, 18, 33}, 17.0 / 3.0, false},
		{"rmse", RMSE, []float64{10, 20, 30}, []float64{12, 18, 33}, math.Sqrt(17.0 / 3.0), false},
		{"mae", MAE, []float64{10, 20, 30}, []float64{12, 18, 33}, 7.0 / 3.0, false},
		{"r2 perfect", R2Score, []float64{1, 2, 3}, []float64{1, 2, 3}, 1, false},
		{"r2 mean predictor", R2Score, []float64{1, 2, 3}, []float64{2, 2, 2}, 0, false},
		{"r2 constant truth", R2Score, []float64{2, 2}, []float64{1, 3}, 0, true},
		{"mape skips zeros", MAPE, []float64{0, 100, 200}, []float64{5, 110, 180}, 10, false},
		{"mape all zero", MAPE, []float64{0, 0}, []float64{1, 1}, 0, true},
		{"dimension mismatch", MSE, []float64{1, 2, 3}, []float64{1, 2}, 0, true},
		{"empty", RMSE, nil, nil, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.fn(tt.yTrue, tt.yPred)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-10)
		})
	}
}

func TestDimensionErrorType(t *testing.T) {
	_, err := MAE([]float64{1, 2}, []float64{1})
	var dimErr *errors.DimensionError
	require.True(t, errors.As(err, &dimErr))
	assert.Equal(t, 2, dimErr.Expected)
	assert.Equal(t, 1, dimErr.Got)
}

func TestByName(t *testing.T) {
	f, err := ByName("rmse")
	require.NoError(t, err)
	got, err := f([]float64{0, 0}, []float64{3, 4})
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt(12.5), got, 1e-12)

	_, err = ByName("logloss")
	var vErr *errors.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Contains(t, err.Error(), "mae, mape, mse, r2, rmse")
}
