package feature

import (
	"github.com/KenkenGoda/trapi/aggregate"
	"github.com/KenkenGoda/trapi/core/frame"
	"github.com/KenkenGoda/trapi/pkg/errors"
)

// TargetEncodingBlock encodes a category by statistics of the target over
// the rows of that category. Output columns: TE_<column>_<target>_<stat>,
// followed by the derived max-min, max/min and mean/std when their inputs are
// selected.
type TargetEncodingBlock struct {
	column string
	target string
	stats  []aggregate.Stat
	fill   *float64

	table *aggregate.Table
}

// NewTargetEncodingBlock creates a TargetEncodingBlock. WithAggs and
// WithFillValue are honored.
func NewTargetEncodingBlock(column, target string, opts ...Option) (*TargetEncodingBlock, error) {
	s := newSettings(opts)
	stats, err := statsOrDefault(s.aggs)
	if err != nil {
		return nil, err
	}
	if column == "" {
		return nil, errors.NewValidationError("column", "must not be empty", column)
	}
	if target == "" {
		return nil, errors.NewValidationError("target", "must not be empty", target)
	}
	return &TargetEncodingBlock{column: column, target: target, stats: stats, fill: s.fill}, nil
}

// Fit computes the statistics of y per category. y must be named after the
// target and carry the labels of input's rows.
func (b *TargetEncodingBlock) Fit(input *frame.Frame, y *frame.Series) (*frame.Frame, error) {
	if y == nil {
		return nil, errors.NewValidationError("y", "target series is required", nil)
	}
	if y.Name() != b.target {
		return nil, errors.NewValidationError("y", "series name must be "+b.target, y.Name())
	}
	aligned, err := y.Reindex(input.Index())
	if err != nil {
		return nil, errors.Wrap(err, "aligning target to input")
	}
	keys, err := input.Select(b.column)
	if err != nil {
		return nil, err
	}
	table, err := aggregate.Compute(keys, aligned, b.stats)
	if err != nil {
		return nil, err
	}
	b.table = table.WithDerived()
	return b.Transform(input)
}

// Transform left-joins the fitted statistics onto the column.
func (b *TargetEncodingBlock) Transform(input *frame.Frame) (*frame.Frame, error) {
	if b.table == nil {
		return nil, notFitted("TargetEncodingBlock")
	}
	out, err := b.table.Join(input, b.fill)
	if err != nil {
		return nil, err
	}
	return out.AddPrefix("TE_" + b.column + "_" + b.target + "_"), nil
}

func (b *TargetEncodingBlock) String() string {
	return "TargetEncodingBlock(" + b.column + ", " + b.target + ")"
}

func statsOrDefault(names []string) ([]aggregate.Stat, error) {
	if names == nil {
		return append([]aggregate.Stat(nil), aggregate.DefaultStats...), nil
	}
	return aggregate.ParseStats(names)
}
