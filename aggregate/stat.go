// Package aggregate computes per-group statistics of a numeric column and
// joins them back onto a frame by key value.
package aggregate

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/KenkenGoda/trapi/pkg/errors"
)

// Stat names a per-group statistic.
type Stat string

const (
	Mean   Stat = "mean"
	Max    Stat = "max"
	Min    Stat = "min"
	Std    Stat = "std"
	Sum    Stat = "sum"
	Count  Stat = "count"
	Median Stat = "median"
	Prod   Stat = "prod"
	Corr   Stat = "corr"
	Var    Stat = "var"
)

// Derived column names added by Table.WithDerived.
const (
	MaxMinusMin = "max-min"
	MaxOverMin  = "max/min"
	MeanOverStd = "mean/std"
)

// DefaultStats is used when a block is configured without statistics.
var DefaultStats = []Stat{Mean, Max, Min, Std, Sum}

var knownStats = map[Stat]bool{
	Mean: true, Max: true, Min: true, Std: true, Sum: true,
	Count: true, Median: true, Prod: true, Corr: true, Var: true,
}

// ParseStats validates statistic names.
func ParseStats(names []string) ([]Stat, error) {
	if len(names) == 0 {
		return nil, errors.NewValidationError("aggs", "at least one statistic is required", names)
	}
	out := make([]Stat, len(names))
	seen := make(map[Stat]bool, len(names))
	for i, name := range names {
		s := Stat(name)
		if !knownStats[s] {
			return nil, errors.NewValidationError("aggs", "unknown statistic", name)
		}
		if seen[s] {
			return nil, errors.NewValidationError("aggs", "duplicate statistic", name)
		}
		seen[s] = true
		out[i] = s
	}
	return out, nil
}

func statNames(stats []Stat) []string {
	names := make([]string, len(stats))
	for i, s := range stats {
		names[i] = string(s)
	}
	return names
}

// compute evaluates s over the non-missing values of one group, in row order.
// Empty input follows pandas: sum is 0, prod is 1, count is 0 and the rest
// are NaN. std and var use ddof=1.
func (s Stat) compute(values []float64) float64 {
	n := len(values)
	switch s {
	case Count:
		return float64(n)
	case Sum:
		return floats.Sum(values)
	case Prod:
		if n == 0 {
			return 1
		}
		return floats.Prod(values)
	}
	if n == 0 {
		return math.NaN()
	}
	switch s {
	case Mean:
		return stat.Mean(values, nil)
	case Max:
		return floats.Max(values)
	case Min:
		return floats.Min(values)
	case Median:
		return median(values)
	case Std:
		if n < 2 {
			return math.NaN()
		}
		return stat.StdDev(values, nil)
	case Var:
		if n < 2 {
			return math.NaN()
		}
		return stat.Variance(values, nil)
	case Corr:
		// trend of the values against their position in the group
		if n < 2 {
			return math.NaN()
		}
		pos := make([]float64, n)
		for i := range pos {
			pos[i] = float64(i)
		}
		return stat.Correlation(pos, values, nil)
	}
	return math.NaN()
}

func median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
