package aggregate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KenkenGoda/trapi/core/frame"
	"github.com/KenkenGoda/trapi/pkg/errors"
)

func cityFrame() *frame.Frame {
	return frame.MustNew(
		frame.NewString("city", []string{"A", "A", "B"}),
		frame.NewFloat("target", []float64{10, 20, 30}),
	)
}

func column(t *testing.T, f *frame.Frame, name string) []float64 {
	t.Helper()
	s, err := f.Col(name)
	require.NoError(t, err)
	return s.Floats()
}

func TestStatCompute(t *testing.T) {
	values := []float64{1, 2, 3, 4}
	tests := []struct {
		stat Stat
		want float64
	}{
		{Mean, 2.5},
		{Max, 4},
		{Min, 1},
		{Sum, 10},
		{Count, 4},
		{Median, 2.5},
		{Prod, 24},
		{Var, 5.0 / 3.0},
		{Std, math.Sqrt(5.0 / 3.0)},
		{Corr, 1},
	}
	for _, tt := range tests {
		t.Run(string(tt.stat), func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.stat.compute(values), 1e-12)
		})
	}
}

func TestStatCompute_SmallGroups(t *testing.T) {
	assert.True(t, math.IsNaN(Std.compute([]float64{5})))
	assert.True(t, math.IsNaN(Var.compute([]float64{5})))
	assert.True(t, math.IsNaN(Corr.compute([]float64{5})))
	assert.True(t, math.IsNaN(Mean.compute(nil)))
	assert.Equal(t, 0.0, Sum.compute(nil))
	assert.Equal(t, 1.0, Prod.compute(nil))
	assert.Equal(t, 0.0, Count.compute(nil))
	assert.Equal(t, 3.0, Median.compute([]float64{5, 1, 3}))
}

func TestParseStats(t *testing.T) {
	stats, err := ParseStats([]string{"mean", "corr"})
	require.NoError(t, err)
	assert.Equal(t, []Stat{Mean, Corr}, stats)

	for _, bad := range [][]string{nil, {"mode"}, {"mean", "mean"}} {
		_, err := ParseStats(bad)
		var vErr *errors.ValidationError
		assert.True(t, errors.As(err, &vErr), "%v", bad)
	}
}

func TestCompute_WithDerived(t *testing.T) {
	df := cityFrame()
	keys, err := df.Select("city")
	require.NoError(t, err)
	y, err := df.Col("target")
	require.NoError(t, err)

	table, err := Compute(keys, y, []Stat{Mean, Max, Min})
	require.NoError(t, err)
	table = table.WithDerived()

	assert.Equal(t, []string{"mean", "max", "min", "max-min", "max/min"}, table.Columns())
	assert.Equal(t, 2, table.NGroups())

	a, ok := table.Lookup("A")
	require.True(t, ok)
	assert.InDeltaSlice(t, []float64{15, 20, 10, 10, 2.0}, a, 1e-6)

	b, ok := table.Lookup("B")
	require.True(t, ok)
	assert.InDeltaSlice(t, []float64{30, 30, 30, 0, 1.0}, b, 1e-6)

	_, ok = table.Lookup("C")
	assert.False(t, ok)
}

func TestWithDerived_Ratios(t *testing.T) {
	df := frame.MustNew(
		frame.NewString("k", []string{"x", "x", "y"}),
		frame.NewFloat("v", []float64{10, 2, 4}),
	)
	keys, _ := df.Select("k")
	y, _ := df.Col("v")
	table, err := Compute(keys, y, []Stat{Mean, Max, Min, Std})
	require.NoError(t, err)
	table = table.WithDerived()
	assert.Equal(t, []string{"mean", "max", "min", "std", "max-min", "max/min", "mean/std"}, table.Columns())

	x, _ := table.Lookup("x")
	assert.Equal(t, 8.0, x[4])
	assert.InDelta(t, 5.0, x[5], 1e-6)

	// single-member group: std is NaN and counts as 0 in the ratio
	yv, _ := table.Lookup("y")
	assert.True(t, math.IsNaN(yv[3]))
	assert.False(t, math.IsInf(yv[6], 0))
	assert.InDelta(t, 4e9, yv[6], 1)
}

func TestCompute_MissingKeysAndTargets(t *testing.T) {
	city, err := frame.NewStringWithMissing("city", []string{"A", "", "A", "B"}, []bool{true, false, true, true})
	require.NoError(t, err)
	df := frame.MustNew(city, frame.NewFloat("target", []float64{1, 100, math.NaN(), math.NaN()}))
	keys, _ := df.Select("city")
	y, _ := df.Col("target")

	table, err := Compute(keys, y, []Stat{Sum, Count, Mean})
	require.NoError(t, err)
	assert.Equal(t, 2, table.NGroups())

	a, _ := table.Lookup("A")
	assert.Equal(t, []float64{1, 1, 1}, a)
	b, _ := table.Lookup("B")
	assert.Equal(t, 0.0, b[0])
	assert.Equal(t, 0.0, b[1])
	assert.True(t, math.IsNaN(b[2]))
}

func TestTable_Join(t *testing.T) {
	df := cityFrame()
	keys, _ := df.Select("city")
	y, _ := df.Col("target")
	table, err := Compute(keys, y, []Stat{Mean})
	require.NoError(t, err)

	input, err := frame.MustNew(frame.NewString("city", []string{"B", "C", "A"})).WithIndex([]int{7, 8, 9})
	require.NoError(t, err)

	out, err := table.Join(input, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{7, 8, 9}, out.Index())
	got := column(t, out, "mean")
	assert.Equal(t, 30.0, got[0])
	assert.True(t, math.IsNaN(got[1]))
	assert.Equal(t, 15.0, got[2])

	fill := -1.0
	out, err = table.Join(input, &fill)
	require.NoError(t, err)
	assert.Equal(t, []float64{30, -1, 15}, column(t, out, "mean"))

	_, err = table.Join(frame.MustNew(frame.NewString("town", []string{"A"})), nil)
	assert.True(t, errors.Is(err, errors.ErrColumnNotFound))
}

func TestTable_JoinNumericKeysFromStrings(t *testing.T) {
	keys := frame.MustNew(frame.NewFloat("code", []float64{1, 2, 3}))
	table, err := Compute(keys, frame.NewFloat("y", []float64{10, 20, 30}), []Stat{Mean})
	require.NoError(t, err)

	input := frame.MustNew(frame.NewString("code", []string{"1", "2.0", "3", "x"}))
	out, err := table.Join(input, nil)
	require.NoError(t, err)
	got := column(t, out, "mean")
	assert.Equal(t, []float64{10, 20, 30}, got[:3])
	assert.True(t, math.IsNaN(got[3]))
}

func TestAggregate(t *testing.T) {
	df := frame.MustNew(
		frame.NewString("shop", []string{"s2", "s1", "s2", "s1", "s1"}),
		frame.NewInt("month", []int64{1, 1, 1, 2, 2}),
		frame.NewFloat("sales", []float64{5, 1, 7, 3, 4}),
	)

	out, err := Aggregate(df, []string{"shop"}, "sales", []string{"sum", "count"})
	require.NoError(t, err)
	assert.Equal(t, []string{"sum", "count"}, out.Names())
	assert.Equal(t, []float64{8, 12}, column(t, out, "sum"))
	assert.Equal(t, []float64{3, 2}, column(t, out, "count"))

	out, err = Aggregate(df, []string{"shop", "month"}, "sales", []string{"max"},
		WithRenamedColumns("max_sales"), AsIndex())
	require.NoError(t, err)
	assert.Equal(t, []string{"shop", "month", "max_sales"}, out.Names())
	shops, _ := out.Col("shop")
	values, _ := shops.Strings()
	assert.Equal(t, []string{"s1", "s1", "s2"}, values)
	assert.Equal(t, []float64{1, 2, 1}, column(t, out, "month"))
	assert.Equal(t, []float64{1, 4, 7}, column(t, out, "max_sales"))
}

func TestAggregate_NumericKeysSortNumerically(t *testing.T) {
	df := frame.MustNew(
		frame.NewInt("k", []int64{10, 9, 10}),
		frame.NewFloat("v", []float64{1, 2, 3}),
	)
	out, err := Aggregate(df, []string{"k"}, "v", []string{"sum"}, AsIndex())
	require.NoError(t, err)
	assert.Equal(t, []float64{9, 10}, column(t, out, "k"))
	assert.Equal(t, []float64{2, 4}, column(t, out, "sum"))
}

func TestAggregate_Validation(t *testing.T) {
	df := cityFrame()

	_, err := Aggregate(df, []string{"city"}, "target", []string{"mean", "max"}, WithRenamedColumns("only_one"))
	var vErr *errors.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "renamed_columns", vErr.ParamName)
	assert.Contains(t, err.Error(), "length of methods: 2")

	_, err = Aggregate(df, nil, "target", []string{"mean"})
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "by", vErr.ParamName)

	_, err = Aggregate(df, []string{"city"}, "missing", []string{"mean"})
	assert.True(t, errors.Is(err, errors.ErrColumnNotFound))
}
