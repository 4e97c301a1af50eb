package feature

import (
	"strings"

	"github.com/KenkenGoda/trapi/aggregate"
	"github.com/KenkenGoda/trapi/core/frame"
	"github.com/KenkenGoda/trapi/pkg/errors"
)

// AggregationBlock encodes the key formed by one or more columns with
// statistics of another column of the same frame. Output columns:
// <c1>_<c2>..._<target>_<stat>, plus the derived ratios.
type AggregationBlock struct {
	columns []string
	target  string
	stats   []aggregate.Stat
	opts    *settings

	table *aggregate.Table
}

// NewAggregationBlock creates an AggregationBlock. WithAggs, WithFillValue
// and WithReference are honored.
func NewAggregationBlock(columns []string, target string, opts ...Option) (*AggregationBlock, error) {
	s := newSettings(opts)
	stats, err := statsOrDefault(s.aggs)
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, errors.NewValidationError("columns", "at least one column is required", columns)
	}
	if target == "" {
		return nil, errors.NewValidationError("target", "must not be empty", target)
	}
	return &AggregationBlock{
		columns: append([]string(nil), columns...),
		target:  target,
		stats:   stats,
		opts:    s,
	}, nil
}

// Fit computes the statistics from the reference frame, or from input when
// there is none. y is not used.
func (b *AggregationBlock) Fit(input *frame.Frame, _ *frame.Series) (*frame.Frame, error) {
	src := b.opts.source(input)
	keys, err := src.Select(b.columns...)
	if err != nil {
		return nil, err
	}
	values, err := src.Col(b.target)
	if err != nil {
		return nil, err
	}
	table, err := aggregate.Compute(keys, values, b.stats)
	if err != nil {
		return nil, err
	}
	b.table = table.WithDerived()
	return b.Transform(input)
}

// Transform left-joins the fitted statistics onto the key columns. Keys
// absent from the fitted data give NaN, or the fill value.
func (b *AggregationBlock) Transform(input *frame.Frame) (*frame.Frame, error) {
	if b.table == nil {
		return nil, notFitted("AggregationBlock")
	}
	out, err := b.table.Join(input, b.opts.fill)
	if err != nil {
		return nil, err
	}
	return out.AddPrefix(strings.Join(b.columns, "_") + "_" + b.target + "_"), nil
}

func (b *AggregationBlock) String() string {
	return "AggregationBlock(" + strings.Join(b.columns, ",") + ", " + b.target + ")"
}
