// Package performance shrinks frames in memory by downcasting numeric
// columns to the smallest dtype that still holds their range.
package performance

import (
	"fmt"
	"math"

	"github.com/x448/float16"

	"github.com/KenkenGoda/trapi/core/frame"
	"github.com/KenkenGoda/trapi/pkg/errors"
	"github.com/KenkenGoda/trapi/pkg/log"
)

const bytesPerMB = 1024 * 1024

var (
	float16Max = float64(float16.Frombits(0x7bff).Float32()) // 65504
	float32Max = float64(math.MaxFloat32)
)

// Report summarizes a ReduceMemUsage call.
type Report struct {
	StartMB   float64
	EndMB     float64
	Reduction float64 // percent
	Converted map[string]frame.DType
}

type reduceOptions struct {
	verbose bool
	logger  log.Logger
}

// ReduceOption configures ReduceMemUsage.
type ReduceOption func(*reduceOptions)

// WithVerbose logs the memory saved (default: true).
func WithVerbose(verbose bool) ReduceOption {
	return func(o *reduceOptions) {
		o.verbose = verbose
	}
}

// WithLogger sets the logger used when verbose (default log.GetLogger()).
func WithLogger(l log.Logger) ReduceOption {
	return func(o *reduceOptions) {
		o.logger = l
	}
}

// MemoryUsageMB returns the memory df occupies at its current dtypes.
func MemoryUsageMB(df *frame.Frame) float64 {
	return float64(df.MemoryUsage()) / bytesPerMB
}

// ReduceMemUsage returns df with every numeric column cast to the smallest
// dtype whose open range contains the column's min and max: int8, int16,
// int32 or int64 for integer columns and float16, float32 or float64 for
// float columns. Categorical and all-missing columns are kept as they are.
// A float16 cast that changes values raises a DataConversionWarning.
func ReduceMemUsage(df *frame.Frame, opts ...ReduceOption) (*frame.Frame, *Report, error) {
	o := &reduceOptions{verbose: true}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = log.GetLogger()
	}

	report := &Report{StartMB: MemoryUsageMB(df), Converted: make(map[string]frame.DType)}
	cols := df.Columns()
	out := make([]*frame.Series, len(cols))
	for i, c := range cols {
		out[i] = c
		target, ok := smallestDType(c)
		if !ok || target == c.DType() {
			continue
		}
		cast := c.AsType(target)
		if target == frame.Float16 && lossy(c, cast) {
			errors.Warn(errors.NewDataConversionWarning(c.Name(), c.DType().String(), target.String(), "values rounded to half precision"))
		}
		out[i] = cast
		report.Converted[c.Name()] = target
	}

	reduced := df
	if len(out) > 0 {
		var err error
		if reduced, err = frame.New(out...); err != nil {
			return nil, nil, err
		}
		if reduced, err = reduced.WithIndex(df.Index()); err != nil {
			return nil, nil, err
		}
	}

	report.EndMB = MemoryUsageMB(reduced)
	if report.StartMB > 0 {
		report.Reduction = 100 * (report.StartMB - report.EndMB) / report.StartMB
	}
	if o.verbose {
		o.logger.Info(
			fmt.Sprintf("Mem. usage decreased to %5.2f Mb (%.1f%% reduction)", report.EndMB, report.Reduction),
			log.MemoryMBKey, report.EndMB,
			log.ReductionKey, report.Reduction,
		)
	}
	return reduced, report, nil
}

func smallestDType(c *frame.Series) (frame.DType, bool) {
	if c.Kind() != frame.Float {
		return 0, false
	}
	lo, hi, ok := c.MinMax()
	if !ok {
		return 0, false
	}
	if c.DType().IsInt() {
		switch {
		case lo > math.MinInt8 && hi < math.MaxInt8:
			return frame.Int8, true
		case lo > math.MinInt16 && hi < math.MaxInt16:
			return frame.Int16, true
		case lo > math.MinInt32 && hi < math.MaxInt32:
			return frame.Int32, true
		}
		return frame.Int64, true
	}
	switch {
	case lo > -float16Max && hi < float16Max:
		return frame.Float16, true
	case lo > -float32Max && hi < float32Max:
		return frame.Float32, true
	}
	return frame.Float64, true
}

func lossy(before, after *frame.Series) bool {
	a, b := before.Floats(), after.Floats()
	for i := range a {
		if math.IsNaN(a[i]) {
			continue
		}
		if a[i] != b[i] {
			return true
		}
	}
	return false
}
