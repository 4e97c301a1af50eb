// Package feature provides composable feature blocks.
//
// A block turns the source columns of a frame into a small output fragment.
// Blocks that learn something from the training data implement Fitter; the
// rest only implement Transform. Fragments from many blocks are placed side by
// side with frame.HConcat, or by a Pipeline:
//
//	blocks := []feature.Block{
//		feature.NewRawValueBlock("age"),
//		feature.NewCountEncodingBlock("city"),
//		feature.NewLabelEncodingBlock("city"),
//	}
//	for _, b := range blocks {
//		trainPart, err := feature.Fit(b, train, y)
//		...
//		testPart, err := b.Transform(test)
//		...
//	}
package feature

import (
	"github.com/KenkenGoda/trapi/core/frame"
	"github.com/KenkenGoda/trapi/pkg/errors"
)

// Block produces an output fragment from the source columns of input.
// Transform must not modify input or any fitted state.
type Block interface {
	Transform(input *frame.Frame) (*frame.Frame, error)
}

// Fitter is a Block with a learning step. Fit replaces any previous fitted
// state and returns the transform of input.
type Fitter interface {
	Block
	Fit(input *frame.Frame, y *frame.Series) (*frame.Frame, error)
}

// Fit fits b on input when it is a Fitter and otherwise just transforms input.
func Fit(b Block, input *frame.Frame, y *frame.Series) (*frame.Frame, error) {
	if f, ok := b.(Fitter); ok {
		return f.Fit(input, y)
	}
	return b.Transform(input)
}

// Option configures the optional settings of a block. Options a block has no
// use for are ignored.
type Option func(*settings)

type settings struct {
	aggs      []string
	fill      *float64
	reference *frame.Frame
}

// WithAggs selects the statistics computed by target encoding and
// aggregation blocks. Default: mean, max, min, std, sum.
func WithAggs(aggs ...string) Option {
	return func(s *settings) {
		s.aggs = aggs
	}
}

// WithFillValue replaces missing values in the output of target encoding and
// aggregation blocks.
func WithFillValue(v float64) Option {
	return func(s *settings) {
		s.fill = &v
	}
}

// WithReference makes count encoding and aggregation blocks learn from df
// instead of the frame passed to Fit, typically train and test stacked with
// frame.VConcat.
func WithReference(df *frame.Frame) Option {
	return func(s *settings) {
		s.reference = df
	}
}

func newSettings(opts []Option) *settings {
	s := &settings{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// source returns the frame statistics are learned from.
func (s *settings) source(input *frame.Frame) *frame.Frame {
	if s.reference != nil {
		return s.reference
	}
	return input
}

// singleColumn wraps s into a one-column fragment aligned with input.
func singleColumn(input *frame.Frame, s *frame.Series) (*frame.Frame, error) {
	aligned, err := s.WithIndex(input.Index())
	if err != nil {
		return nil, err
	}
	return frame.New(aligned)
}

func notFitted(block string) error {
	return errors.NewNotFittedError(block, "Transform")
}
