package aggregate

import (
	"math"
	"strconv"

	"github.com/KenkenGoda/trapi/core/frame"
	"github.com/KenkenGoda/trapi/pkg/errors"
)

type options struct {
	renamed []string
	asIndex bool
}

// Option configures Aggregate.
type Option func(*options)

// WithRenamedColumns names the statistic columns. It must list exactly one
// name per method.
func WithRenamedColumns(names ...string) Option {
	return func(o *options) {
		o.renamed = names
	}
}

// AsIndex emits the group keys as the leading columns of the result.
func AsIndex() Option {
	return func(o *options) {
		o.asIndex = true
	}
}

// Aggregate groups df by the columns in by and computes methods over target.
// Available methods are sum, max, min, mean, count, std, var, median, prod
// and corr. The result has one row per group in key order.
//
//	out, err := aggregate.Aggregate(df, []string{"city"}, "price",
//		[]string{"mean", "max"}, aggregate.WithRenamedColumns("avg_price", "max_price"))
func Aggregate(df *frame.Frame, by []string, target string, methods []string, opts ...Option) (*frame.Frame, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	stats, err := ParseStats(methods)
	if err != nil {
		return nil, err
	}
	if o.renamed != nil && len(o.renamed) != len(methods) {
		return nil, errors.NewValidationError("renamed_columns",
			"length of methods: "+itoa(len(methods))+" is different from that of renamed_columns: "+itoa(len(o.renamed)),
			o.renamed)
	}
	if len(by) == 0 {
		return nil, errors.NewValidationError("by", "at least one key column is required", by)
	}

	keys, err := df.Select(by...)
	if err != nil {
		return nil, err
	}
	y, err := df.Col(target)
	if err != nil {
		return nil, err
	}
	table, err := Compute(keys, y, stats)
	if err != nil {
		return nil, err
	}
	if o.renamed != nil {
		if table, err = table.Rename(o.renamed); err != nil {
			return nil, err
		}
	}
	return table.Frame(o.asIndex)
}

func itoa(n int) string { return strconv.Itoa(n) }

func parseKey(k string) float64 {
	v, err := strconv.ParseFloat(k, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
