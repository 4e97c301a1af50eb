package feature

import (
	"math"

	"github.com/KenkenGoda/trapi/core/frame"
	"github.com/KenkenGoda/trapi/preprocessing"
)

// CountEncodingBlock replaces each value with the number of times it occurs
// in the fitted data. Output column: CE_<column>.
type CountEncodingBlock struct {
	column string
	opts   *settings

	encoder *preprocessing.CountEncoder
}

// NewCountEncodingBlock creates a CountEncodingBlock. WithReference is honored.
func NewCountEncodingBlock(column string, opts ...Option) *CountEncodingBlock {
	return &CountEncodingBlock{column: column, opts: newSettings(opts)}
}

// Fit counts the non-missing values of the column in the reference frame, or
// in input when there is none.
func (b *CountEncodingBlock) Fit(input *frame.Frame, _ *frame.Series) (*frame.Frame, error) {
	col, err := b.opts.source(input).Col(b.column)
	if err != nil {
		return nil, err
	}
	values, valid := col.Strings()
	present := make([]string, 0, len(values))
	for i, v := range values {
		if valid[i] {
			present = append(present, v)
		}
	}
	enc := preprocessing.NewCountEncoder()
	enc.Fit(present)
	b.encoder = enc
	return b.Transform(input)
}

// Transform maps every row to its count. Unseen and missing values are NaN.
func (b *CountEncodingBlock) Transform(input *frame.Frame) (*frame.Frame, error) {
	if b.encoder == nil {
		return nil, notFitted("CountEncodingBlock")
	}
	col, err := input.Col(b.column)
	if err != nil {
		return nil, err
	}
	values, valid := col.Strings()
	counts, err := b.encoder.Transform(values)
	if err != nil {
		return nil, err
	}
	for i, ok := range valid {
		if !ok {
			counts[i] = math.NaN()
		}
	}
	return singleColumn(input, frame.NewFloat("CE_"+b.column, counts))
}

func (b *CountEncodingBlock) String() string { return "CountEncodingBlock(" + b.column + ")" }
