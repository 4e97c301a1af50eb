package feature

import (
	"fmt"

	"github.com/KenkenGoda/trapi/core/frame"
	"github.com/KenkenGoda/trapi/pkg/errors"
	"github.com/KenkenGoda/trapi/preprocessing"
)

// LabelEncodingBlock replaces each category with its integer code. Output
// column: LE_<column>.
type LabelEncodingBlock struct {
	column string

	encoder *preprocessing.LabelEncoder
}

// NewLabelEncodingBlock creates a LabelEncodingBlock for column.
func NewLabelEncodingBlock(column string) *LabelEncodingBlock {
	return &LabelEncodingBlock{column: column}
}

// Fit learns the sorted categories of the column.
func (b *LabelEncodingBlock) Fit(input *frame.Frame, _ *frame.Series) (*frame.Frame, error) {
	values, err := b.values(input, "Fit")
	if err != nil {
		return nil, err
	}
	enc := preprocessing.NewLabelEncoder()
	if err := enc.Fit(values); err != nil {
		return nil, err
	}
	b.encoder = enc
	return b.Transform(input)
}

// Transform encodes the column. A category not seen by Fit is an
// *errors.UnknownCategoryError.
func (b *LabelEncodingBlock) Transform(input *frame.Frame) (*frame.Frame, error) {
	if b.encoder == nil {
		return nil, notFitted("LabelEncodingBlock")
	}
	values, err := b.values(input, "Transform")
	if err != nil {
		return nil, err
	}
	codes, err := b.encoder.Transform(values)
	if err != nil {
		var unknown *errors.UnknownCategoryError
		if errors.As(err, &unknown) {
			return nil, errors.NewUnknownCategoryError("LabelEncodingBlock.Transform", b.column, unknown.Value)
		}
		return nil, err
	}
	out := make([]int64, len(codes))
	for i, c := range codes {
		out[i] = int64(c)
	}
	return singleColumn(input, frame.NewInt("LE_"+b.column, out))
}

func (b *LabelEncodingBlock) values(input *frame.Frame, method string) ([]string, error) {
	col, err := input.Col(b.column)
	if err != nil {
		return nil, err
	}
	values, valid := col.Strings()
	for _, ok := range valid {
		if !ok {
			return nil, errors.NewValueError("LabelEncodingBlock."+method, fmt.Sprintf("column %q contains missing values", b.column))
		}
	}
	return values, nil
}

func (b *LabelEncodingBlock) String() string { return "LabelEncodingBlock(" + b.column + ")" }
