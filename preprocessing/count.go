package preprocessing

import (
	"math"
	"sort"

	"github.com/KenkenGoda/trapi/core/model"
)

// ValueCount is one entry of CountEncoder.MostCommon.
type ValueCount struct {
	Value string
	Count int
}

// CountEncoder maps each category to its frequency in the fitted values.
type CountEncoder struct {
	model.BaseEstimator

	counts map[string]int
	order  []string // first-seen order
}

// NewCountEncoder creates an unfitted CountEncoder.
func NewCountEncoder() *CountEncoder {
	return &CountEncoder{}
}

// Fit counts the occurrences of every value.
func (c *CountEncoder) Fit(values []string) {
	counts := make(map[string]int)
	var order []string
	for _, v := range values {
		if _, seen := counts[v]; !seen {
			order = append(order, v)
		}
		counts[v]++
	}
	c.counts = counts
	c.order = order
	c.SetFitted(len(values))
}

// Transform returns the fitted count of each value, NaN for values never seen.
func (c *CountEncoder) Transform(values []string) ([]float64, error) {
	if err := c.RequireFitted("CountEncoder", "Transform"); err != nil {
		return nil, err
	}
	out := make([]float64, len(values))
	for i, v := range values {
		n, ok := c.counts[v]
		if !ok {
			out[i] = math.NaN()
			continue
		}
		out[i] = float64(n)
	}
	return out, nil
}

// Count returns the fitted count of v.
func (c *CountEncoder) Count(v string) (int, bool) {
	n, ok := c.counts[v]
	return n, ok
}

// MostCommon lists values by descending count. Values with equal counts keep
// the order in which they were first seen.
func (c *CountEncoder) MostCommon() []ValueCount {
	out := make([]ValueCount, len(c.order))
	for i, v := range c.order {
		out[i] = ValueCount{Value: v, Count: c.counts[v]}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// CountEncode fits a CountEncoder on values and returns the encoded values
// together with the encoder for reuse on new data.
func CountEncode(values []string) ([]float64, *CountEncoder) {
	enc := NewCountEncoder()
	enc.Fit(values)
	out, _ := enc.Transform(values)
	return out, enc
}
